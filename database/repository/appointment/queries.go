package appointmentRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"clinicore/models"
)

func (r *mongoAppointmentRepo) FindByToken(ctx context.Context, tenantID, date string, token int) (*models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var appt models.Appointment
	err := r.coll.FindOne(ctx, bson.M{
		"tenantId":    tenantID,
		"date":        date,
		"tokenNumber": token,
	}).Decode(&appt)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up token %d: %w", token, err)
	}
	return &appt, nil
}
