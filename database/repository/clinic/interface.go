package clinicRepo

import (
	"context"
	"errors"

	"clinicore/models"
)

// ErrNotFound is returned when no clinic matches the key.
var ErrNotFound = errors.New("clinic not found")

// Repository resolves tenant identity. GetBySlug serves the unauthenticated
// public booking path.
type Repository interface {
	GetByID(ctx context.Context, id string) (*models.Clinic, error)
	GetBySlug(ctx context.Context, slug string) (*models.Clinic, error)
	Create(ctx context.Context, clinic *models.Clinic) (*models.Clinic, error)
	EnsureIndexes(ctx context.Context) error
}
