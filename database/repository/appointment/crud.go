package appointmentRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"clinicore/models"
)

func (r *mongoAppointmentRepo) Insert(ctx context.Context, appt *models.Appointment) (*models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if appt.ID == "" {
		appt.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	appt.CreatedAt = now
	appt.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, appt); err != nil {
		return nil, fmt.Errorf("failed to insert appointment: %w", err)
	}
	return appt, nil
}

func (r *mongoAppointmentRepo) GetByID(ctx context.Context, tenantID, id string) (*models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var appt models.Appointment
	err := r.coll.FindOne(ctx, bson.M{"tenantId": tenantID, "id": id}).Decode(&appt)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch appointment %s: %w", id, err)
	}
	return &appt, nil
}

func (r *mongoAppointmentRepo) Find(ctx context.Context, f Filter) ([]models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "tokenNumber", Value: 1}, {Key: "startTime", Value: 1}})
	cursor, err := r.coll.Find(ctx, buildFilter(f), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query appointments: %w", err)
	}
	defer cursor.Close(ctx)

	var appts []models.Appointment
	if err := cursor.All(ctx, &appts); err != nil {
		return nil, fmt.Errorf("failed to decode appointments: %w", err)
	}
	return appts, nil
}

func (r *mongoAppointmentRepo) CountWhere(ctx context.Context, f Filter) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, buildFilter(f))
	if err != nil {
		return 0, fmt.Errorf("failed to count appointments: %w", err)
	}
	return n, nil
}

func (r *mongoAppointmentRepo) UpdateByID(ctx context.Context, tenantID, id string, patch models.AppointmentPatch) (*models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.Date != nil {
		set["date"] = *patch.Date
	}
	if patch.StartTime != nil {
		set["startTime"] = *patch.StartTime
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	if patch.Notes != nil {
		set["notes"] = *patch.Notes
	}
	if patch.EstimatedWaitMinutes != nil {
		set["estimatedWaitMinutes"] = *patch.EstimatedWaitMinutes
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var appt models.Appointment
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"tenantId": tenantID, "id": id},
		bson.M{"$set": set}, opts,
	).Decode(&appt)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update appointment %s: %w", id, err)
	}
	return &appt, nil
}
