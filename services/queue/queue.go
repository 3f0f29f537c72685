package queue

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	appointmentRepo "clinicore/database/repository/appointment"
	"clinicore/models"
	"clinicore/utils"
)

const defaultAssignRetries = 3

// legal transitions this manager performs; cancellation is owned by the
// booking resolver.
var allowedFrom = map[string][]string{
	models.StatusCheckedIn:  {models.StatusScheduled},
	models.StatusInProgress: {models.StatusCheckedIn},
	models.StatusCompleted:  {models.StatusInProgress},
	models.StatusNoShow:     {models.StatusScheduled, models.StatusCheckedIn},
}

// Manager assigns sequential daily queue tokens at check-in and tracks the
// queue's state transitions and wait estimates. Estimates are advisory and
// recomputed from live store state on every query.
type Manager struct {
	Appointments      appointmentRepo.Repository
	AvgConsultMinutes int

	// Now is the clock; overridable in tests.
	Now func() time.Time
	// AssignRetries bounds retries when concurrent check-ins collide on the
	// same token number.
	AssignRetries int
}

func (m *Manager) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now().UTC()
}

func (m *Manager) retries() int {
	if m.AssignRetries > 0 {
		return m.AssignRetries
	}
	return defaultAssignRetries
}

// CheckIn transitions a scheduled appointment into the day's queue and
// assigns the next token for the tenant's day.
func (m *Manager) CheckIn(ctx context.Context, tenantID, appointmentID string) (models.CheckInResult, error) {
	appt, err := m.Appointments.GetByID(ctx, tenantID, appointmentID)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrNotFound) {
			return models.CheckInResult{}, utils.NewNotFoundError("appointment %s not found", appointmentID)
		}
		return models.CheckInResult{}, utils.NewTransientError("failed to load appointment: %v", err)
	}
	if appt.Status != models.StatusScheduled {
		return models.CheckInResult{}, utils.NewConflictError("cannot check in a %s appointment", appt.Status)
	}

	return m.assignToken(ctx, tenantID, appt.Date, appt.ID)
}

// CheckInWalkIn creates a walk-in appointment for today and checks it in with
// a token in the same operation.
func (m *Manager) CheckInWalkIn(ctx context.Context, tenantID string, req models.WalkInRequest) (*models.Appointment, models.CheckInResult, error) {
	now := m.now()
	appt := &models.Appointment{
		TenantID:  tenantID,
		DoctorID:  req.DoctorID,
		PatientID: req.PatientID,
		Date:      utils.DayString(now),
		StartTime: utils.FormatHHMM(now.Hour()*60 + now.Minute()),
		Status:    models.StatusScheduled,
		Notes:     req.Notes,
		WalkIn:    true,
	}
	inserted, err := m.Appointments.Insert(ctx, appt)
	if err != nil {
		return nil, models.CheckInResult{}, utils.NewTransientError("failed to create walk-in: %v", err)
	}

	result, err := m.assignToken(ctx, tenantID, inserted.Date, inserted.ID)
	if err != nil {
		return nil, models.CheckInResult{}, err
	}
	checked, err := m.Appointments.GetByID(ctx, tenantID, inserted.ID)
	if err != nil {
		return nil, models.CheckInResult{}, utils.NewTransientError("failed to reload walk-in: %v", err)
	}
	return checked, result, nil
}

// assignToken serializes token assignment through the repository, retrying a
// bounded number of times when a concurrent check-in claims the same number.
func (m *Manager) assignToken(ctx context.Context, tenantID, date, appointmentID string) (models.CheckInResult, error) {
	var (
		appt    *models.Appointment
		lastErr error
	)
	for attempt := 0; attempt < m.retries(); attempt++ {
		a, err := m.Appointments.AssignNextToken(ctx, tenantID, date, appointmentID)
		if err == nil {
			appt = a
			break
		}
		if errors.Is(err, appointmentRepo.ErrNotFound) {
			return models.CheckInResult{}, utils.NewNotFoundError("appointment %s not found", appointmentID)
		}
		if !errors.Is(err, appointmentRepo.ErrTokenConflict) && !appointmentRepo.IsTransient(err) {
			return models.CheckInResult{}, utils.NewTransientError("token assignment failed: %v", err)
		}
		lastErr = err
		utils.GetLogger().Warn("token collision, retrying",
			zap.String("tenantId", tenantID), zap.String("date", date), zap.Int("attempt", attempt+1))
	}
	if appt == nil {
		return models.CheckInResult{}, utils.NewTransientError("token assignment did not commit after %d attempts: %v", m.retries(), lastErr)
	}

	wait, err := m.waitEstimate(ctx, tenantID, date, appt.TokenNumber)
	if err != nil {
		// The token is assigned; a failed estimate degrades to zero.
		utils.GetLogger().Warn("wait estimate failed", zap.String("appointmentId", appt.ID), zap.Error(err))
		wait = 0
	}
	if _, err := m.Appointments.UpdateByID(ctx, tenantID, appt.ID, models.AppointmentPatch{EstimatedWaitMinutes: &wait}); err != nil {
		utils.GetLogger().Warn("failed to persist wait estimate", zap.String("appointmentId", appt.ID), zap.Error(err))
	}

	return models.CheckInResult{
		AppointmentID:        appt.ID,
		TokenNumber:          appt.TokenNumber,
		TokenDisplay:         appt.TokenDisplay,
		EstimatedWaitMinutes: wait,
	}, nil
}

// waitEstimate counts checked-in tokens ahead of the given token.
func (m *Manager) waitEstimate(ctx context.Context, tenantID, date string, token int) (int, error) {
	ahead, err := m.Appointments.CountWhere(ctx, appointmentRepo.Filter{
		TenantID:   tenantID,
		Date:       date,
		Statuses:   []string{models.StatusCheckedIn},
		TokenBelow: token,
	})
	if err != nil {
		return 0, err
	}
	return int(ahead) * m.AvgConsultMinutes, nil
}

// StartConsultation moves a checked-in appointment to in-progress.
func (m *Manager) StartConsultation(ctx context.Context, tenantID, appointmentID string) (*models.Appointment, error) {
	return m.transition(ctx, tenantID, appointmentID, models.StatusInProgress)
}

// Complete moves an in-progress appointment to completed.
func (m *Manager) Complete(ctx context.Context, tenantID, appointmentID string) (*models.Appointment, error) {
	return m.transition(ctx, tenantID, appointmentID, models.StatusCompleted)
}

// MarkNoShow flags a scheduled or checked-in appointment as a no-show.
func (m *Manager) MarkNoShow(ctx context.Context, tenantID, appointmentID string) (*models.Appointment, error) {
	return m.transition(ctx, tenantID, appointmentID, models.StatusNoShow)
}

func (m *Manager) transition(ctx context.Context, tenantID, appointmentID, to string) (*models.Appointment, error) {
	appt, err := m.Appointments.GetByID(ctx, tenantID, appointmentID)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrNotFound) {
			return nil, utils.NewNotFoundError("appointment %s not found", appointmentID)
		}
		return nil, utils.NewTransientError("failed to load appointment: %v", err)
	}

	legal := false
	for _, from := range allowedFrom[to] {
		if appt.Status == from {
			legal = true
			break
		}
	}
	if !legal {
		return nil, utils.NewConflictError("cannot move a %s appointment to %s", appt.Status, to)
	}

	updated, err := m.Appointments.UpdateByID(ctx, tenantID, appointmentID, models.AppointmentPatch{Status: &to})
	if err != nil {
		return nil, utils.NewTransientError("failed to update appointment: %v", err)
	}
	return updated, nil
}

// GetQueueStatus returns the live queue view for a tenant's day, optionally
// narrowed to one doctor. Counts always read current store state.
func (m *Manager) GetQueueStatus(ctx context.Context, tenantID, date, doctorID string) (models.QueueStatus, error) {
	if _, err := utils.ParseDate(date); err != nil {
		return models.QueueStatus{}, utils.NewValidationError("%v", err)
	}

	waiting, err := m.Appointments.Find(ctx, appointmentRepo.Filter{
		TenantID: tenantID,
		DoctorID: doctorID,
		Date:     date,
		Statuses: []string{models.StatusCheckedIn},
		HasToken: true,
	})
	if err != nil {
		return models.QueueStatus{}, utils.NewTransientError("failed to load queue: %v", err)
	}

	inProgress, err := m.Appointments.Find(ctx, appointmentRepo.Filter{
		TenantID: tenantID,
		DoctorID: doctorID,
		Date:     date,
		Statuses: []string{models.StatusInProgress},
		HasToken: true,
	})
	if err != nil {
		return models.QueueStatus{}, utils.NewTransientError("failed to load queue: %v", err)
	}

	completed, err := m.Appointments.CountWhere(ctx, appointmentRepo.Filter{
		TenantID: tenantID,
		DoctorID: doctorID,
		Date:     date,
		Statuses: []string{models.StatusCompleted},
		HasToken: true,
	})
	if err != nil {
		return models.QueueStatus{}, utils.NewTransientError("failed to count completed: %v", err)
	}

	total, err := m.Appointments.CountWhere(ctx, appointmentRepo.Filter{
		TenantID: tenantID,
		DoctorID: doctorID,
		Date:     date,
		HasToken: true,
	})
	if err != nil {
		return models.QueueStatus{}, utils.NewTransientError("failed to count checked in: %v", err)
	}

	status := models.QueueStatus{
		Date:           date,
		WaitingQueue:   make([]models.QueueEntry, 0, len(waiting)),
		WaitingCount:   len(waiting),
		CompletedCount: int(completed),
		TotalCheckedIn: int(total),
	}
	for i, a := range waiting {
		status.WaitingQueue = append(status.WaitingQueue, models.QueueEntry{
			AppointmentID:        a.ID,
			DoctorID:             a.DoctorID,
			PatientID:            a.PatientID,
			TokenNumber:          a.TokenNumber,
			TokenDisplay:         a.TokenDisplay,
			StartTime:            a.StartTime,
			EstimatedWaitMinutes: i * m.AvgConsultMinutes,
		})
	}
	if len(inProgress) > 0 {
		cur := inProgress[0]
		status.CurrentServing = &models.QueueEntry{
			AppointmentID: cur.ID,
			DoctorID:      cur.DoctorID,
			PatientID:     cur.PatientID,
			TokenNumber:   cur.TokenNumber,
			TokenDisplay:  cur.TokenDisplay,
			StartTime:     cur.StartTime,
		}
	}
	return status, nil
}

// LookupByToken resolves a display token like "T-003" for a tenant's day.
func (m *Manager) LookupByToken(ctx context.Context, tenantID, date, display string) (*models.Appointment, error) {
	if _, err := utils.ParseDate(date); err != nil {
		return nil, utils.NewValidationError("%v", err)
	}
	token, err := ParseTokenDisplay(display)
	if err != nil {
		return nil, err
	}

	appt, err := m.Appointments.FindByToken(ctx, tenantID, date, token)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrNotFound) {
			return nil, utils.NewNotFoundError("no appointment holds token %s on %s", display, date)
		}
		return nil, utils.NewTransientError("token lookup failed: %v", err)
	}
	return appt, nil
}

// RefreshWaitTimes recomputes and persists every waiting appointment's
// estimate as position × average consultation time. Best-effort and
// idempotent: re-running against the same queue snapshot writes the same
// values.
func (m *Manager) RefreshWaitTimes(ctx context.Context, tenantID, date string) (int, error) {
	if _, err := utils.ParseDate(date); err != nil {
		return 0, utils.NewValidationError("%v", err)
	}

	waiting, err := m.Appointments.Find(ctx, appointmentRepo.Filter{
		TenantID: tenantID,
		Date:     date,
		Statuses: []string{models.StatusCheckedIn},
		HasToken: true,
	})
	if err != nil {
		return 0, utils.NewTransientError("failed to load queue: %v", err)
	}

	refreshed := 0
	for i, a := range waiting {
		est := i * m.AvgConsultMinutes
		if _, err := m.Appointments.UpdateByID(ctx, tenantID, a.ID, models.AppointmentPatch{EstimatedWaitMinutes: &est}); err != nil {
			utils.GetLogger().Warn("failed to refresh wait time", zap.String("appointmentId", a.ID), zap.Error(err))
			continue
		}
		refreshed++
	}
	return refreshed, nil
}

// ParseTokenDisplay converts a display form like "T-007" back to its number.
func ParseTokenDisplay(display string) (int, error) {
	s := strings.TrimSpace(display)
	upper := strings.ToUpper(s)
	if !strings.HasPrefix(upper, "T-") {
		return 0, utils.NewValidationError("invalid token %q, expected T-NNN", display)
	}
	n, err := strconv.Atoi(strings.TrimPrefix(upper, "T-"))
	if err != nil || n < 1 {
		return 0, utils.NewValidationError("invalid token %q, expected T-NNN", display)
	}
	return n, nil
}
