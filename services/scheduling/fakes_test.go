package scheduling

import (
	"context"
	"fmt"
	"sort"
	"sync"

	appointmentRepo "clinicore/database/repository/appointment"
	clinicRepo "clinicore/database/repository/clinic"
	scheduleRepo "clinicore/database/repository/schedule"
	"clinicore/models"
)

type fakeScheduleRepo struct {
	mu        sync.Mutex
	templates map[string]*models.ScheduleTemplate // tenantID|doctorID
}

func newFakeScheduleRepo(tpls ...*models.ScheduleTemplate) *fakeScheduleRepo {
	r := &fakeScheduleRepo{templates: make(map[string]*models.ScheduleTemplate)}
	for _, tpl := range tpls {
		r.templates[tpl.TenantID+"|"+tpl.DoctorID] = tpl
	}
	return r
}

func (r *fakeScheduleRepo) GetByDoctor(_ context.Context, tenantID, doctorID string) (*models.ScheduleTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tpl, ok := r.templates[tenantID+"|"+doctorID]
	if !ok {
		return nil, scheduleRepo.ErrNotFound
	}
	cp := *tpl
	return &cp, nil
}

func (r *fakeScheduleRepo) Upsert(_ context.Context, tpl *models.ScheduleTemplate) (*models.ScheduleTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[tpl.TenantID+"|"+tpl.DoctorID] = tpl
	return tpl, nil
}

func (r *fakeScheduleRepo) Delete(_ context.Context, tenantID, doctorID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := tenantID + "|" + doctorID
	if _, ok := r.templates[key]; !ok {
		return scheduleRepo.ErrNotFound
	}
	delete(r.templates, key)
	return nil
}

func (r *fakeScheduleRepo) EnsureIndexes(context.Context) error { return nil }

type fakeClinicRepo struct {
	clinics map[string]*models.Clinic // by slug
}

func newFakeClinicRepo(clinics ...*models.Clinic) *fakeClinicRepo {
	r := &fakeClinicRepo{clinics: make(map[string]*models.Clinic)}
	for _, c := range clinics {
		r.clinics[c.BookingSlug] = c
	}
	return r
}

func (r *fakeClinicRepo) GetBySlug(_ context.Context, slug string) (*models.Clinic, error) {
	c, ok := r.clinics[slug]
	if !ok {
		return nil, clinicRepo.ErrNotFound
	}
	return c, nil
}

func (r *fakeClinicRepo) GetByID(_ context.Context, id string) (*models.Clinic, error) {
	for _, c := range r.clinics {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, clinicRepo.ErrNotFound
}

func (r *fakeClinicRepo) Create(_ context.Context, c *models.Clinic) (*models.Clinic, error) {
	r.clinics[c.BookingSlug] = c
	return c, nil
}

func (r *fakeClinicRepo) EnsureIndexes(context.Context) error { return nil }

// fakeAppointmentRepo is an in-memory Repository. A single mutex serializes
// every operation, giving the same atomicity the store transactions provide.
type fakeAppointmentRepo struct {
	mu    sync.Mutex
	appts []models.Appointment
	seq   int
}

func newFakeAppointmentRepo(appts ...models.Appointment) *fakeAppointmentRepo {
	return &fakeAppointmentRepo{appts: appts}
}

func (r *fakeAppointmentRepo) nextID() string {
	r.seq++
	return fmt.Sprintf("appt-%03d", r.seq)
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
		appt.ID = r.nextID()
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
	return r.patchLocked(tenantID, id, patch)
}

func (r *fakeAppointmentRepo) patchLocked(tenantID, id string, patch models.AppointmentPatch) (*models.Appointment, error) {
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

func (r *fakeAppointmentRepo) activeAtSlotLocked(tenantID, doctorID, date, startTime, excludeID string) int {
	n := 0
	for _, a := range r.appts {
		if a.TenantID != tenantID || a.DoctorID != doctorID || a.Date != date || a.StartTime != startTime {
			continue
		}
		if excludeID != "" && a.ID == excludeID {
			continue
		}
		for _, s := range models.ActiveStatuses {
			if a.Status == s {
				n++
				break
			}
		}
	}
	return n
}

func (r *fakeAppointmentRepo) InsertIfSlotFree(_ context.Context, appt *models.Appointment, maxPerSlot int) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.activeAtSlotLocked(appt.TenantID, appt.DoctorID, appt.Date, appt.StartTime, "") >= maxPerSlot {
		return nil, appointmentRepo.ErrSlotFull
	}
	if appt.ID == "" {
		appt.ID = r.nextID()
	}
	r.appts = append(r.appts, *appt)
	return appt, nil
}

func (r *fakeAppointmentRepo) MoveIfSlotFree(_ context.Context, tenantID, id, newDate, newStartTime string, maxPerSlot int) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var cur *models.Appointment
	for i := range r.appts {
		if r.appts[i].TenantID == tenantID && r.appts[i].ID == id {
			cur = &r.appts[i]
			break
		}
	}
	if cur == nil {
		return nil, appointmentRepo.ErrNotFound
	}
	if r.activeAtSlotLocked(tenantID, cur.DoctorID, newDate, newStartTime, id) >= maxPerSlot {
		return nil, appointmentRepo.ErrSlotFull
	}
	return r.patchLocked(tenantID, id, models.AppointmentPatch{Date: &newDate, StartTime: &newStartTime})
}

func (r *fakeAppointmentRepo) AssignNextToken(_ context.Context, tenantID, date, appointmentID string) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
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

func apptFilter(start string) appointmentRepo.Filter {
	return appointmentRepo.Filter{
		TenantID:  testTenant,
		DoctorID:  testDoctor,
		Date:      "2026-01-05",
		StartTime: start,
		Statuses:  models.ActiveStatuses,
	}
}

// fakeNotifier records events so tests can assert delivery never blocks or
// fails a booking.
type fakeNotifier struct {
	mu     sync.Mutex
	events []string
	fail   bool
}

func (n *fakeNotifier) record(event, id string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event+":"+id)
	if n.fail {
		return fmt.Errorf("delivery channel down")
	}
	return nil
}

func (n *fakeNotifier) NotifyBooked(_ context.Context, a *models.Appointment) error {
	return n.record(models.NotifyEventBooked, a.ID)
}

func (n *fakeNotifier) NotifyCancelled(_ context.Context, a *models.Appointment) error {
	return n.record(models.NotifyEventCancelled, a.ID)
}

func (n *fakeNotifier) NotifyRescheduled(_ context.Context, a *models.Appointment) error {
	return n.record(models.NotifyEventRescheduled, a.ID)
}
