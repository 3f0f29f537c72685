package scheduling

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	appointmentRepo "clinicore/database/repository/appointment"
	scheduleRepo "clinicore/database/repository/schedule"
	"clinicore/models"
	"clinicore/services/notification"
	"clinicore/utils"
)

const defaultCommitRetries = 3

// Resolver is the transactional boundary that turns "create appointment" into
// an at-most-maxPatientsPerSlot-per-slot guarantee. Capacity is re-validated
// at commit time inside the store transaction; the availability read alone is
// never trusted.
type Resolver struct {
	Schedules    scheduleRepo.Repository
	Appointments appointmentRepo.Repository
	Engine       *Engine
	Notifier     notification.Service

	// Now is the clock; overridable in tests.
	Now func() time.Time
	// CommitRetries bounds retries of the transactional write on transient
	// store conflicts. Business conflicts (slot genuinely full) never retry.
	CommitRetries int
}

func (r *Resolver) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now().UTC()
}

func (r *Resolver) retries() int {
	if r.CommitRetries > 0 {
		return r.CommitRetries
	}
	return defaultCommitRetries
}

// BookAppointment validates the requested slot against the doctor's template
// and commits it with a serialized capacity check.
func (r *Resolver) BookAppointment(ctx context.Context, tenantID string, req models.BookAppointmentRequest) (*models.Appointment, error) {
	startMinute, err := utils.ParseHHMM(req.StartTime)
	if err != nil {
		return nil, utils.NewValidationError("%v", err)
	}
	if _, err := utils.ParseDate(req.Date); err != nil {
		return nil, utils.NewValidationError("%v", err)
	}

	tpl, err := r.Schedules.GetByDoctor(ctx, tenantID, req.DoctorID)
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrNotFound) {
			return nil, utils.NewNotFoundError("doctor %s has no schedule", req.DoctorID)
		}
		return nil, utils.NewTransientError("failed to load schedule: %v", err)
	}
	if !tpl.IsAcceptingAppointments {
		return nil, utils.NewConflictError("doctor %s is not accepting appointments", req.DoctorID)
	}

	if err := r.validateCandidate(tpl, req.Date, startMinute); err != nil {
		return nil, err
	}

	appt := &models.Appointment{
		TenantID:  tenantID,
		DoctorID:  req.DoctorID,
		PatientID: req.PatientID,
		Date:      req.Date,
		StartTime: utils.FormatHHMM(startMinute),
		Status:    models.StatusScheduled,
		Notes:     req.Notes,
	}

	booked, err := r.commitWithRetry(ctx, func(ctx context.Context) (*models.Appointment, error) {
		return r.Appointments.InsertIfSlotFree(ctx, appt, tpl.MaxPatientsPerSlot)
	})
	if err != nil {
		return nil, err
	}

	if err := r.Notifier.NotifyBooked(ctx, booked); err != nil {
		utils.GetLogger().Warn("booking notification failed", zap.String("appointmentId", booked.ID), zap.Error(err))
	}
	return booked, nil
}

// RescheduleAppointment moves an appointment to a new slot, re-running the
// capacity check at the new key and excluding the appointment being moved.
func (r *Resolver) RescheduleAppointment(ctx context.Context, tenantID, appointmentID string, req models.RescheduleRequest) (*models.Appointment, error) {
	startMinute, err := utils.ParseHHMM(req.NewStartTime)
	if err != nil {
		return nil, utils.NewValidationError("%v", err)
	}
	if _, err := utils.ParseDate(req.NewDate); err != nil {
		return nil, utils.NewValidationError("%v", err)
	}

	appt, err := r.Appointments.GetByID(ctx, tenantID, appointmentID)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrNotFound) {
			return nil, utils.NewNotFoundError("appointment %s not found", appointmentID)
		}
		return nil, utils.NewTransientError("failed to load appointment: %v", err)
	}
	if appt.Status != models.StatusScheduled {
		return nil, utils.NewConflictError("cannot reschedule a %s appointment", appt.Status)
	}

	tpl, err := r.Schedules.GetByDoctor(ctx, tenantID, appt.DoctorID)
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrNotFound) {
			return nil, utils.NewNotFoundError("doctor %s has no schedule", appt.DoctorID)
		}
		return nil, utils.NewTransientError("failed to load schedule: %v", err)
	}
	if err := r.validateCandidate(tpl, req.NewDate, startMinute); err != nil {
		return nil, err
	}

	newStart := utils.FormatHHMM(startMinute)
	moved, err := r.commitWithRetry(ctx, func(ctx context.Context) (*models.Appointment, error) {
		return r.Appointments.MoveIfSlotFree(ctx, tenantID, appointmentID, req.NewDate, newStart, tpl.MaxPatientsPerSlot)
	})
	if err != nil {
		return nil, err
	}

	if err := r.Notifier.NotifyRescheduled(ctx, moved); err != nil {
		utils.GetLogger().Warn("reschedule notification failed", zap.String("appointmentId", moved.ID), zap.Error(err))
	}
	return moved, nil
}

// CancelAppointment cancels from any non-terminal state.
func (r *Resolver) CancelAppointment(ctx context.Context, tenantID, appointmentID string) (*models.Appointment, error) {
	appt, err := r.Appointments.GetByID(ctx, tenantID, appointmentID)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrNotFound) {
			return nil, utils.NewNotFoundError("appointment %s not found", appointmentID)
		}
		return nil, utils.NewTransientError("failed to load appointment: %v", err)
	}
	if appt.IsTerminal() {
		return nil, utils.NewConflictError("cannot cancel a %s appointment", appt.Status)
	}

	status := models.StatusCancelled
	cancelled, err := r.Appointments.UpdateByID(ctx, tenantID, appointmentID, models.AppointmentPatch{Status: &status})
	if err != nil {
		return nil, utils.NewTransientError("failed to cancel appointment: %v", err)
	}

	if err := r.Notifier.NotifyCancelled(ctx, cancelled); err != nil {
		utils.GetLogger().Warn("cancel notification failed", zap.String("appointmentId", cancelled.ID), zap.Error(err))
	}
	return cancelled, nil
}

// validateCandidate rejects a slot the template could never produce for the
// date, distinguishing "doctor unavailable" conditions from a malformed time.
func (r *Resolver) validateCandidate(tpl *models.ScheduleTemplate, date string, startMinute int) error {
	candidates, reason, err := r.Engine.candidateSlots(tpl, date, r.now())
	if err != nil {
		return err
	}
	if reason != "" {
		return utils.NewConflictError("%s", reason)
	}
	for _, slot := range candidates {
		if slot == startMinute {
			return nil
		}
	}
	return utils.NewValidationError("%s is not a bookable slot on %s", utils.FormatHHMM(startMinute), date)
}

// commitWithRetry runs the serialized write, retrying only transient store
// conflicts a bounded number of times. ErrSlotFull is a business answer and
// surfaces immediately.
func (r *Resolver) commitWithRetry(ctx context.Context, commit func(context.Context) (*models.Appointment, error)) (*models.Appointment, error) {
	var lastErr error
	for attempt := 0; attempt < r.retries(); attempt++ {
		appt, err := commit(ctx)
		if err == nil {
			return appt, nil
		}
		if errors.Is(err, appointmentRepo.ErrSlotFull) {
			return nil, utils.NewSlotFullError("slot is fully booked")
		}
		if errors.Is(err, appointmentRepo.ErrNotFound) {
			return nil, utils.NewNotFoundError("appointment not found")
		}
		if !appointmentRepo.IsTransient(err) {
			return nil, utils.NewTransientError("booking commit failed: %v", err)
		}
		lastErr = err
		utils.GetLogger().Warn("transient booking conflict, retrying", zap.Int("attempt", attempt+1), zap.Error(err))
	}
	return nil, utils.NewTransientError("booking did not commit after %d attempts: %v", r.retries(), lastErr)
}
