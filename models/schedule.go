package models

import (
	"fmt"
	"strings"
	"time"
)

// Weekday keys used in WeeklySchedule, in calendar order.
var WeekdayNames = []string{
	"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday",
}

// TimeWindow is a working interval within a day, in minutes from midnight.
type TimeWindow struct {
	Start int `bson:"start" json:"start"` // e.g., 540 for 09:00
	End   int `bson:"end" json:"end"`     // e.g., 780 for 13:00
}

// DaySchedule is one weekday's availability template.
type DaySchedule struct {
	Day       string       `bson:"day" json:"day"` // normalized lower-case weekday name
	IsWorking bool         `bson:"isWorking" json:"isWorking"`
	Windows   []TimeWindow `bson:"windows,omitempty" json:"windows,omitempty"`
}

// ScheduleTemplate is a doctor's recurring weekly availability plus exceptions.
// One template per doctor per tenant; saves after the first are in-place updates.
type ScheduleTemplate struct {
	ID                      string        `bson:"id" json:"id,omitempty"`
	TenantID                string        `bson:"tenantId" json:"tenantId"`
	DoctorID                string        `bson:"doctorId" json:"doctorId"`
	WeeklySchedule          []DaySchedule `bson:"weeklySchedule" json:"weeklySchedule"`
	SlotDuration            int           `bson:"slotDuration" json:"slotDuration"` // minutes
	BufferTime              int           `bson:"bufferTime" json:"bufferTime"`     // minutes between slot starts
	MaxPatientsPerSlot      int           `bson:"maxPatientsPerSlot" json:"maxPatientsPerSlot"`
	AdvanceBookingDays      int           `bson:"advanceBookingDays" json:"advanceBookingDays"`
	IsAcceptingAppointments bool          `bson:"isAcceptingAppointments" json:"isAcceptingAppointments"`
	AcceptsOnlineBooking    bool          `bson:"acceptsOnlineBooking" json:"acceptsOnlineBooking"`
	LeaveDates              []string      `bson:"leaveDates,omitempty" json:"leaveDates,omitempty"` // "2006-01-02"
	CreatedAt               time.Time     `bson:"createdAt" json:"createdAt,omitzero"`
	UpdatedAt               time.Time     `bson:"updatedAt" json:"updatedAt,omitzero"`
}

// NormalizeWeekday lower-cases a weekday name and reports whether it is one of
// the seven known keys.
func NormalizeWeekday(day string) (string, bool) {
	d := strings.ToLower(strings.TrimSpace(day))
	for _, name := range WeekdayNames {
		if d == name {
			return d, true
		}
	}
	return d, false
}

// DayFor returns the DaySchedule matching the weekday of t, or nil when the
// template has no entry for that weekday.
func (s *ScheduleTemplate) DayFor(t time.Time) *DaySchedule {
	key := strings.ToLower(t.Weekday().String())
	for i := range s.WeeklySchedule {
		if s.WeeklySchedule[i].Day == key {
			return &s.WeeklySchedule[i]
		}
	}
	return nil
}

// IsLeaveDate reports whether the given calendar day ("2006-01-02") is a leave
// date on this template.
func (s *ScheduleTemplate) IsLeaveDate(date string) bool {
	for _, d := range s.LeaveDates {
		if d == date {
			return true
		}
	}
	return false
}

// Normalize canonicalizes weekday keys in place. It must be called before
// Validate so that invalid day names surface as validation failures rather
// than silently missing days.
func (s *ScheduleTemplate) Normalize() {
	for i := range s.WeeklySchedule {
		d, _ := NormalizeWeekday(s.WeeklySchedule[i].Day)
		s.WeeklySchedule[i].Day = d
	}
}

// Validate checks the template's invariants. It has no side effects; callers
// persist separately.
func (s *ScheduleTemplate) Validate() error {
	if s.TenantID == "" {
		return fmt.Errorf("tenantId is required")
	}
	if s.DoctorID == "" {
		return fmt.Errorf("doctorId is required")
	}
	if s.SlotDuration <= 0 {
		return fmt.Errorf("slotDuration must be greater than zero, got %d", s.SlotDuration)
	}
	if s.BufferTime < 0 {
		return fmt.Errorf("bufferTime must not be negative, got %d", s.BufferTime)
	}
	if s.MaxPatientsPerSlot < 1 {
		return fmt.Errorf("maxPatientsPerSlot must be at least 1, got %d", s.MaxPatientsPerSlot)
	}
	if s.AdvanceBookingDays < 0 {
		return fmt.Errorf("advanceBookingDays must not be negative, got %d", s.AdvanceBookingDays)
	}
	seen := make(map[string]bool, len(s.WeeklySchedule))
	for _, day := range s.WeeklySchedule {
		key, ok := NormalizeWeekday(day.Day)
		if !ok {
			return fmt.Errorf("unknown weekday %q", day.Day)
		}
		if seen[key] {
			return fmt.Errorf("duplicate weekday entry %q", key)
		}
		seen[key] = true
		if err := validateWindows(key, day.Windows); err != nil {
			return err
		}
	}
	for _, d := range s.LeaveDates {
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return fmt.Errorf("leave date %q is not a valid YYYY-MM-DD date", d)
		}
	}
	return nil
}

func validateWindows(day string, windows []TimeWindow) error {
	const minutesPerDay = 24 * 60
	for i, w := range windows {
		if w.Start < 0 || w.End > minutesPerDay {
			return fmt.Errorf("%s window %d is outside the day (%d-%d)", day, i, w.Start, w.End)
		}
		if w.Start >= w.End {
			return fmt.Errorf("%s window %d start (%d) must be before end (%d)", day, i, w.Start, w.End)
		}
		for j := 0; j < i; j++ {
			prev := windows[j]
			if w.Start < prev.End && prev.Start < w.End {
				return fmt.Errorf("%s windows %d and %d overlap", day, j, i)
			}
		}
	}
	return nil
}
