package appointmentRepo

import (
	"context"
	"errors"

	"clinicore/models"
)

var (
	// ErrNotFound is returned when no appointment matches the key.
	ErrNotFound = errors.New("appointment not found")
	// ErrSlotFull is returned by InsertIfSlotFree / MoveIfSlotFree when the
	// target slot already holds maxPatientsPerSlot active appointments.
	ErrSlotFull = errors.New("slot capacity reached")
	// ErrTokenConflict is returned when a concurrent check-in claimed the same
	// token number first. Callers retry with fresh state.
	ErrTokenConflict = errors.New("token number already assigned")
)

// Filter narrows appointment queries. Zero values are ignored.
type Filter struct {
	TenantID   string
	DoctorID   string
	Date       string
	StartTime  string
	Statuses   []string
	ExcludeID  string
	TokenBelow int  // tokenNumber < TokenBelow
	HasToken   bool // tokenNumber assigned (> 0)
}

// Repository persists appointments. The two serialized paths
// (InsertIfSlotFree, AssignNextToken) are the only writes that need store-level
// atomicity; everything else is plain CRUD.
type Repository interface {
	Insert(ctx context.Context, appt *models.Appointment) (*models.Appointment, error)
	GetByID(ctx context.Context, tenantID, id string) (*models.Appointment, error)
	Find(ctx context.Context, f Filter) ([]models.Appointment, error)
	CountWhere(ctx context.Context, f Filter) (int64, error)
	UpdateByID(ctx context.Context, tenantID, id string, patch models.AppointmentPatch) (*models.Appointment, error)

	// InsertIfSlotFree atomically counts active appointments at the exact
	// (tenant, doctor, date, startTime) key and inserts only while the count is
	// below maxPerSlot. Returns ErrSlotFull otherwise.
	InsertIfSlotFree(ctx context.Context, appt *models.Appointment, maxPerSlot int) (*models.Appointment, error)

	// MoveIfSlotFree runs the same capacity check at the new key, excluding the
	// appointment being moved, then patches its date and start time.
	MoveIfSlotFree(ctx context.Context, tenantID, id, newDate, newStartTime string, maxPerSlot int) (*models.Appointment, error)

	// AssignNextToken atomically reads the day's maximum token for the tenant
	// and stamps max+1 onto the appointment, transitioning it to checked-in.
	// Returns ErrTokenConflict when a concurrent caller won the same number.
	AssignNextToken(ctx context.Context, tenantID, date, appointmentID string) (*models.Appointment, error)

	FindByToken(ctx context.Context, tenantID, date string, token int) (*models.Appointment, error)
	EnsureIndexes(ctx context.Context) error
}

// IsTransient reports whether the error is a retryable store-level conflict or
// timeout rather than a business rejection.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrSlotFull) || errors.Is(err, ErrNotFound) || errors.Is(err, ErrTokenConflict) {
		return false
	}
	return hasTransientLabel(err)
}
