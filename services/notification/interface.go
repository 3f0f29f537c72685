package notification

import (
	"context"

	"clinicore/models"
)

// Service emits appointment lifecycle notifications. Implementations are
// best-effort and asynchronous: a failure here is logged by the caller and
// never rolls back or fails the operation that triggered it.
type Service interface {
	NotifyBooked(ctx context.Context, appt *models.Appointment) error
	NotifyCancelled(ctx context.Context, appt *models.Appointment) error
	NotifyRescheduled(ctx context.Context, appt *models.Appointment) error
}
