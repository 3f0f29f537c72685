package scheduling

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"

	appointmentRepo "clinicore/database/repository/appointment"
	clinicRepo "clinicore/database/repository/clinic"
	scheduleRepo "clinicore/database/repository/schedule"
	"clinicore/models"
	"clinicore/utils"
)

// Reasons an availability query comes back empty. These are normal states,
// never errors.
const (
	ReasonNotAvailable     = "not available this day"
	ReasonOnLeave          = "on leave"
	ReasonInPast           = "in the past"
	ReasonBeyondWindow     = "beyond advance window"
	ReasonOnlineBookingOff = "online booking unavailable"
)

// AvailableSlotsResult is the answer to "what can be booked".
type AvailableSlotsResult struct {
	Slots               []string `json:"slots"` // "HH:MM", ascending
	SlotDurationMinutes int      `json:"slotDurationMinutes,omitempty"`
	Reason              string   `json:"reason,omitempty"`
}

// Engine computes bookable slots for a doctor and date against live booking
// state. Both the authenticated and the public path run through the same
// routine so the two can never drift.
type Engine struct {
	Schedules          scheduleRepo.Repository
	Appointments       appointmentRepo.Repository
	Clinics            clinicRepo.Repository
	SameDayLeadMinutes int
}

// GetAvailableSlots answers the authenticated availability query.
func (e *Engine) GetAvailableSlots(ctx context.Context, tenantID, doctorID, date string, now time.Time) (AvailableSlotsResult, error) {
	tpl, err := e.Schedules.GetByDoctor(ctx, tenantID, doctorID)
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrNotFound) {
			// A doctor without a template simply has nothing bookable.
			return AvailableSlotsResult{Reason: ReasonNotAvailable}, nil
		}
		return AvailableSlotsResult{}, utils.NewTransientError("failed to load schedule: %v", err)
	}
	return e.slotsForTemplate(ctx, tpl, date, now)
}

// GetPublicAvailableSlots answers the unauthenticated variant: the tenant is
// resolved from the clinic's public booking slug and the template must accept
// online booking.
func (e *Engine) GetPublicAvailableSlots(ctx context.Context, slug, doctorID, date string, now time.Time) (AvailableSlotsResult, error) {
	clinic, err := e.Clinics.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, clinicRepo.ErrNotFound) {
			return AvailableSlotsResult{}, utils.NewNotFoundError("no clinic for booking link %q", slug)
		}
		return AvailableSlotsResult{}, utils.NewTransientError("failed to resolve clinic: %v", err)
	}

	tpl, err := e.Schedules.GetByDoctor(ctx, clinic.ID, doctorID)
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrNotFound) {
			return AvailableSlotsResult{Reason: ReasonNotAvailable}, nil
		}
		return AvailableSlotsResult{}, utils.NewTransientError("failed to load schedule: %v", err)
	}
	if !tpl.AcceptsOnlineBooking || !tpl.IsAcceptingAppointments {
		return AvailableSlotsResult{Reason: ReasonOnlineBookingOff}, nil
	}
	return e.slotsForTemplate(ctx, tpl, date, now)
}

// slotsForTemplate runs the shared availability pipeline: candidate slots from
// the template, minus slots at capacity, minus same-day slots inside the lead
// window. Each short-circuit yields an empty list with a reason.
func (e *Engine) slotsForTemplate(ctx context.Context, tpl *models.ScheduleTemplate, date string, now time.Time) (AvailableSlotsResult, error) {
	candidates, reason, err := e.candidateSlots(tpl, date, now)
	if err != nil {
		return AvailableSlotsResult{}, err
	}
	if reason != "" {
		return AvailableSlotsResult{Reason: reason, SlotDurationMinutes: tpl.SlotDuration}, nil
	}

	booked, err := e.bookedCounts(ctx, tpl.TenantID, tpl.DoctorID, date)
	if err != nil {
		return AvailableSlotsResult{}, err
	}

	now = now.UTC()
	today := utils.DayString(now)
	dayStart, _ := utils.ParseDate(date)
	lead := time.Duration(e.SameDayLeadMinutes) * time.Minute

	var open []int
	for _, slot := range candidates {
		if booked[utils.FormatHHMM(slot)] >= tpl.MaxPatientsPerSlot {
			continue
		}
		if date == today {
			slotStart := dayStart.Add(time.Duration(slot) * time.Minute)
			if slotStart.Before(now.Add(lead)) {
				continue
			}
		}
		open = append(open, slot)
	}

	// Ascending presentation order is part of this contract.
	sort.Ints(open)

	result := AvailableSlotsResult{
		Slots:               make([]string, 0, len(open)),
		SlotDurationMinutes: tpl.SlotDuration,
	}
	for _, slot := range open {
		result.Slots = append(result.Slots, utils.FormatHHMM(slot))
	}
	if len(result.Slots) == 0 {
		utils.GetLogger().Debug("no open slots",
			zap.String("doctorId", tpl.DoctorID), zap.String("date", date))
	}
	return result, nil
}

// candidateSlots applies the template-only checks (weekday, leave, booking
// window) and generates raw slot starts before any capacity filtering.
func (e *Engine) candidateSlots(tpl *models.ScheduleTemplate, date string, now time.Time) ([]int, string, error) {
	target, err := utils.ParseDate(date)
	if err != nil {
		return nil, "", utils.NewValidationError("%v", err)
	}

	day := tpl.DayFor(target)
	if day == nil || !day.IsWorking || len(day.Windows) == 0 {
		return nil, ReasonNotAvailable, nil
	}
	if tpl.IsLeaveDate(date) {
		return nil, ReasonOnLeave, nil
	}

	today, _ := utils.ParseDate(utils.DayString(now))
	if target.Before(today) {
		return nil, ReasonInPast, nil
	}
	if target.After(today.AddDate(0, 0, tpl.AdvanceBookingDays)) {
		return nil, ReasonBeyondWindow, nil
	}

	return GenerateSlots(*day, tpl.SlotDuration, tpl.BufferTime), "", nil
}

// bookedCounts tallies active appointments per exact start time for the
// doctor's day.
func (e *Engine) bookedCounts(ctx context.Context, tenantID, doctorID, date string) (map[string]int, error) {
	appts, err := e.Appointments.Find(ctx, appointmentRepo.Filter{
		TenantID: tenantID,
		DoctorID: doctorID,
		Date:     date,
		Statuses: models.ActiveStatuses,
	})
	if err != nil {
		return nil, utils.NewTransientError("failed to load bookings: %v", err)
	}
	counts := make(map[string]int, len(appts))
	for _, a := range appts {
		counts[a.StartTime]++
	}
	return counts, nil
}
