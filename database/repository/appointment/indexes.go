package appointmentRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the hot-path indexes. The partial unique index on
// (tenantId, date, tokenNumber) is the collision detector behind token
// assignment: assigned numbers only, so untokened appointments don't collide.
func (r *mongoAppointmentRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "tenantId", Value: 1}, {Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "tenantId", Value: 1},
				{Key: "doctorId", Value: 1},
				{Key: "date", Value: 1},
				{Key: "startTime", Value: 1},
			},
		},
		{
			Keys: bson.D{
				{Key: "tenantId", Value: 1},
				{Key: "date", Value: 1},
				{Key: "tokenNumber", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"tokenNumber": bson.M{"$gt": 0}}),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create appointment indexes: %w", err)
	}
	return nil
}
