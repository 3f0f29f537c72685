package models

import (
	"fmt"
	"time"
)

// Appointment statuses. Transitions are one-directional
// (scheduled → checked-in → in-progress → completed) except manual
// cancellation and no-show.
const (
	StatusScheduled  = "scheduled"
	StatusCheckedIn  = "checked-in"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
	StatusNoShow     = "no-show"
)

// ActiveStatuses are the statuses that count toward slot capacity.
var ActiveStatuses = []string{StatusScheduled, StatusCheckedIn, StatusInProgress, StatusCompleted}

// Appointment is a booked (or walk-in) visit.
type Appointment struct {
	ID        string `bson:"id" json:"id"`
	TenantID  string `bson:"tenantId" json:"tenantId"`
	DoctorID  string `bson:"doctorId" json:"doctorId"`
	PatientID string `bson:"patientId" json:"patientId"`
	Date      string `bson:"date" json:"date"`           // "2006-01-02"
	StartTime string `bson:"startTime" json:"startTime"` // "HH:MM"
	Status    string `bson:"status" json:"status"`
	Notes     string `bson:"notes,omitempty" json:"notes,omitempty"`
	WalkIn    bool   `bson:"walkIn,omitempty" json:"walkIn,omitempty"`

	// Queue fields. TokenNumber is zero until check-in; assigned numbers are
	// unique and contiguous per (tenantId, date).
	TokenNumber          int    `bson:"tokenNumber,omitempty" json:"tokenNumber,omitempty"`
	TokenDisplay         string `bson:"tokenDisplay,omitempty" json:"tokenDisplay,omitempty"`
	EstimatedWaitMinutes int    `bson:"estimatedWaitMinutes,omitempty" json:"estimatedWaitMinutes,omitempty"`

	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
	CheckedInAt time.Time `bson:"checkedInAt,omitempty" json:"checkedInAt,omitzero"`
}

// IsTerminal reports whether no further transitions are allowed.
func (a *Appointment) IsTerminal() bool {
	return a.Status == StatusCompleted || a.Status == StatusCancelled || a.Status == StatusNoShow
}

// FormatTokenDisplay renders the zero-padded display form of a token number,
// e.g. 7 → "T-007".
func FormatTokenDisplay(token int) string {
	return fmt.Sprintf("T-%03d", token)
}

// AppointmentPatch lists the fields an update may touch. Nil fields are left
// unchanged.
type AppointmentPatch struct {
	Date                 *string
	StartTime            *string
	Status               *string
	Notes                *string
	EstimatedWaitMinutes *int
}
