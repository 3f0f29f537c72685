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

// slotKeyFilter matches active appointments at the exact slot key.
func slotKeyFilter(tenantID, doctorID, date, startTime, excludeID string) bson.M {
	q := bson.M{
		"tenantId":  tenantID,
		"doctorId":  doctorID,
		"date":      date,
		"startTime": startTime,
		"status":    bson.M{"$in": models.ActiveStatuses},
	}
	if excludeID != "" {
		q["id"] = bson.M{"$ne": excludeID}
	}
	return q
}

func (r *mongoAppointmentRepo) withTransaction(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	client := r.coll.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	return mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := fn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	})
}

// InsertIfSlotFree performs the commit-time capacity re-check and the insert
// as one transaction, so concurrent bookings against the same slot serialize.
func (r *mongoAppointmentRepo) InsertIfSlotFree(ctx context.Context, appt *models.Appointment, maxPerSlot int) (*models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if appt.ID == "" {
		appt.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	appt.CreatedAt = now
	appt.UpdatedAt = now

	err := r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		n, err := r.coll.CountDocuments(sc, slotKeyFilter(appt.TenantID, appt.DoctorID, appt.Date, appt.StartTime, ""))
		if err != nil {
			return fmt.Errorf("capacity count failed: %w", err)
		}
		if n >= int64(maxPerSlot) {
			return ErrSlotFull
		}
		if _, err := r.coll.InsertOne(sc, appt); err != nil {
			return fmt.Errorf("insert appointment failed: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrSlotFull) {
			return nil, ErrSlotFull
		}
		return nil, err
	}
	return appt, nil
}

// MoveIfSlotFree re-checks capacity at the new key, excluding the appointment
// being moved, then patches its date and start time in the same transaction.
func (r *mongoAppointmentRepo) MoveIfSlotFree(ctx context.Context, tenantID, id, newDate, newStartTime string, maxPerSlot int) (*models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var moved models.Appointment
	err := r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		var appt models.Appointment
		if err := r.coll.FindOne(sc, bson.M{"tenantId": tenantID, "id": id}).Decode(&appt); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return ErrNotFound
			}
			return fmt.Errorf("fetch appointment failed: %w", err)
		}

		n, err := r.coll.CountDocuments(sc, slotKeyFilter(tenantID, appt.DoctorID, newDate, newStartTime, id))
		if err != nil {
			return fmt.Errorf("capacity count failed: %w", err)
		}
		if n >= int64(maxPerSlot) {
			return ErrSlotFull
		}

		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		update := bson.M{"$set": bson.M{
			"date":      newDate,
			"startTime": newStartTime,
			"updatedAt": time.Now().UTC(),
		}}
		if err := r.coll.FindOneAndUpdate(sc, bson.M{"tenantId": tenantID, "id": id}, update, opts).Decode(&moved); err != nil {
			return fmt.Errorf("move appointment failed: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrSlotFull) || errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, err
	}
	return &moved, nil
}

// AssignNextToken reads the day's max token and stamps max+1 in one
// transaction. The partial unique index on (tenantId, date, tokenNumber) makes
// one of two racing writers fail with a duplicate key error, surfaced as
// ErrTokenConflict for the caller to retry.
func (r *mongoAppointmentRepo) AssignNextToken(ctx context.Context, tenantID, date, appointmentID string) (*models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var updated models.Appointment
	err := r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		next := 1
		findOpts := options.FindOne().SetSort(bson.D{{Key: "tokenNumber", Value: -1}})
		var top models.Appointment
		err := r.coll.FindOne(sc, bson.M{
			"tenantId":    tenantID,
			"date":        date,
			"tokenNumber": bson.M{"$gt": 0},
		}, findOpts).Decode(&top)
		switch {
		case err == nil:
			next = top.TokenNumber + 1
		case errors.Is(err, mongo.ErrNoDocuments):
			// first token of the day
		default:
			return fmt.Errorf("max token lookup failed: %w", err)
		}

		now := time.Now().UTC()
		update := bson.M{"$set": bson.M{
			"tokenNumber":  next,
			"tokenDisplay": models.FormatTokenDisplay(next),
			"status":       models.StatusCheckedIn,
			"checkedInAt":  now,
			"updatedAt":    now,
		}}
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		if err := r.coll.FindOneAndUpdate(sc, bson.M{"tenantId": tenantID, "id": appointmentID}, update, opts).Decode(&updated); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return ErrNotFound
			}
			return fmt.Errorf("token assignment failed: %w", err)
		}
		return nil
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrTokenConflict
		}
		return nil, err
	}
	return &updated, nil
}
