package queue

import (
	"context"
	"fmt"
	"sort"
	"sync"

	appointmentRepo "clinicore/database/repository/appointment"
	"clinicore/models"
)

// fakeAppointmentRepo is an in-memory Repository. A single mutex stands in for
// the store's transactional serialization. failTokenAssigns makes the first N
// AssignNextToken calls report a token collision so retry paths can be tested.
type fakeAppointmentRepo struct {
	mu               sync.Mutex
	appts            []models.Appointment
	seq              int
	failTokenAssigns int
}

func newFakeAppointmentRepo(appts ...models.Appointment) *fakeAppointmentRepo {
	return &fakeAppointmentRepo{appts: appts}
}

func matches(a models.Appointment, f appointmentRepo.Filter) bool {
	if f.TenantID != "" && a.TenantID != f.TenantID {
		return false
	}
	if f.DoctorID != "" && a.DoctorID != f.DoctorID {
		return false
	}
	if f.Date != "" && a.Date != f.Date {
		return false
	}
	if f.StartTime != "" && a.StartTime != f.StartTime {
		return false
	}
	if len(f.Statuses) > 0 {
		ok := false
		for _, s := range f.Statuses {
			if a.Status == s {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if f.ExcludeID != "" && a.ID == f.ExcludeID {
		return false
	}
	if f.TokenBelow > 0 {
		if a.TokenNumber <= 0 || a.TokenNumber >= f.TokenBelow {
			return false
		}
	} else if f.HasToken && a.TokenNumber <= 0 {
		return false
	}
	return true
}

func (r *fakeAppointmentRepo) Insert(_ context.Context, appt *models.Appointment) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if appt.ID == "" {
		r.seq++
		appt.ID = fmt.Sprintf("appt-%03d", r.seq)
	}
	r.appts = append(r.appts, *appt)
	return appt, nil
}

func (r *fakeAppointmentRepo) GetByID(_ context.Context, tenantID, id string) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.appts {
		if a.TenantID == tenantID && a.ID == id {
			cp := a
			return &cp, nil
		}
	}
	return nil, appointmentRepo.ErrNotFound
}

func (r *fakeAppointmentRepo) Find(_ context.Context, f appointmentRepo.Filter) ([]models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Appointment
	for _, a := range r.appts {
		if matches(a, f) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TokenNumber != out[j].TokenNumber {
			return out[i].TokenNumber < out[j].TokenNumber
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

func (r *fakeAppointmentRepo) CountWhere(_ context.Context, f appointmentRepo.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, a := range r.appts {
		if matches(a, f) {
			n++
		}
	}
	return n, nil
}

func (r *fakeAppointmentRepo) UpdateByID(_ context.Context, tenantID, id string, patch models.AppointmentPatch) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.appts {
		if r.appts[i].TenantID != tenantID || r.appts[i].ID != id {
			continue
		}
		if patch.Date != nil {
			r.appts[i].Date = *patch.Date
		}
		if patch.StartTime != nil {
			r.appts[i].StartTime = *patch.StartTime
		}
		if patch.Status != nil {
			r.appts[i].Status = *patch.Status
		}
		if patch.Notes != nil {
			r.appts[i].Notes = *patch.Notes
		}
		if patch.EstimatedWaitMinutes != nil {
			r.appts[i].EstimatedWaitMinutes = *patch.EstimatedWaitMinutes
		}
		cp := r.appts[i]
		return &cp, nil
	}
	return nil, appointmentRepo.ErrNotFound
}

func (r *fakeAppointmentRepo) InsertIfSlotFree(ctx context.Context, appt *models.Appointment, maxPerSlot int) (*models.Appointment, error) {
	return r.Insert(ctx, appt)
}

func (r *fakeAppointmentRepo) MoveIfSlotFree(_ context.Context, tenantID, id, newDate, newStartTime string, _ int) (*models.Appointment, error) {
	return r.UpdateByID(context.Background(), tenantID, id, models.AppointmentPatch{Date: &newDate, StartTime: &newStartTime})
}

func (r *fakeAppointmentRepo) AssignNextToken(_ context.Context, tenantID, date, appointmentID string) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failTokenAssigns > 0 {
		r.failTokenAssigns--
		return nil, appointmentRepo.ErrTokenConflict
	}
	next := 1
	for _, a := range r.appts {
		if a.TenantID == tenantID && a.Date == date && a.TokenNumber >= next {
			next = a.TokenNumber + 1
		}
	}
	for i := range r.appts {
		if r.appts[i].TenantID != tenantID || r.appts[i].ID != appointmentID {
			continue
		}
		r.appts[i].TokenNumber = next
		r.appts[i].TokenDisplay = models.FormatTokenDisplay(next)
		r.appts[i].Status = models.StatusCheckedIn
		cp := r.appts[i]
		return &cp, nil
	}
	return nil, appointmentRepo.ErrNotFound
}

func (r *fakeAppointmentRepo) FindByToken(_ context.Context, tenantID, date string, token int) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.appts {
		if a.TenantID == tenantID && a.Date == date && a.TokenNumber == token {
			cp := a
			return &cp, nil
		}
	}
	return nil, appointmentRepo.ErrNotFound
}

func (r *fakeAppointmentRepo) EnsureIndexes(context.Context) error { return nil }
