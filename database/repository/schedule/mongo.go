package scheduleRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"clinicore/database"
	"clinicore/models"
)

type mongoScheduleRepo struct {
	coll *mongo.Collection
}

// NewMongoScheduleRepo returns a Repository backed by the "schedules" collection.
func NewMongoScheduleRepo() Repository {
	return &mongoScheduleRepo{coll: database.Collection("schedules")}
}

func (r *mongoScheduleRepo) GetByDoctor(ctx context.Context, tenantID, doctorID string) (*models.ScheduleTemplate, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"tenantId": tenantID, "doctorId": doctorID}
	var tpl models.ScheduleTemplate
	if err := r.coll.FindOne(ctx, filter).Decode(&tpl); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch schedule template: %w", err)
	}
	return &tpl, nil
}

// Upsert creates the doctor's template on first save and replaces it in place
// afterwards. Callers must treat an existing template as an update, never a
// duplicate insert.
func (r *mongoScheduleRepo) Upsert(ctx context.Context, tpl *models.ScheduleTemplate) (*models.ScheduleTemplate, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	existing, err := r.GetByDoctor(ctx, tpl.TenantID, tpl.DoctorID)
	switch {
	case err == nil:
		tpl.ID = existing.ID
		tpl.CreatedAt = existing.CreatedAt
	case errors.Is(err, ErrNotFound):
		tpl.ID = uuid.New().String()
		tpl.CreatedAt = now
	default:
		return nil, err
	}
	tpl.UpdatedAt = now

	filter := bson.M{"tenantId": tpl.TenantID, "doctorId": tpl.DoctorID}
	if _, err := r.coll.ReplaceOne(ctx, filter, tpl, options.Replace().SetUpsert(true)); err != nil {
		return nil, fmt.Errorf("failed to upsert schedule template: %w", err)
	}
	return tpl, nil
}

func (r *mongoScheduleRepo) Delete(ctx context.Context, tenantID, doctorID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"tenantId": tenantID, "doctorId": doctorID})
	if err != nil {
		return fmt.Errorf("failed to delete schedule template: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoScheduleRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "tenantId", Value: 1}, {Key: "doctorId", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create schedule indexes: %w", err)
	}
	return nil
}
