package scheduleRepo

import (
	"context"
	"errors"

	"clinicore/models"
)

// ErrNotFound is returned when no template exists for the doctor.
var ErrNotFound = errors.New("schedule template not found")

// Repository persists weekly schedule templates. One template per doctor per
// tenant, enforced by lookup-then-upsert rather than a storage constraint.
type Repository interface {
	GetByDoctor(ctx context.Context, tenantID, doctorID string) (*models.ScheduleTemplate, error)
	Upsert(ctx context.Context, tpl *models.ScheduleTemplate) (*models.ScheduleTemplate, error)
	Delete(ctx context.Context, tenantID, doctorID string) error
	EnsureIndexes(ctx context.Context) error
}
