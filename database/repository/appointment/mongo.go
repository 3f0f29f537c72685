package appointmentRepo

import (
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"clinicore/database"
)

type mongoAppointmentRepo struct {
	coll *mongo.Collection
}

// NewMongoAppointmentRepo returns a Repository backed by the "appointments"
// collection.
func NewMongoAppointmentRepo() Repository {
	return &mongoAppointmentRepo{coll: database.Collection("appointments")}
}

func buildFilter(f Filter) bson.M {
	q := bson.M{}
	if f.TenantID != "" {
		q["tenantId"] = f.TenantID
	}
	if f.DoctorID != "" {
		q["doctorId"] = f.DoctorID
	}
	if f.Date != "" {
		q["date"] = f.Date
	}
	if f.StartTime != "" {
		q["startTime"] = f.StartTime
	}
	if len(f.Statuses) > 0 {
		q["status"] = bson.M{"$in": f.Statuses}
	}
	if f.ExcludeID != "" {
		q["id"] = bson.M{"$ne": f.ExcludeID}
	}
	if f.TokenBelow > 0 {
		q["tokenNumber"] = bson.M{"$gt": 0, "$lt": f.TokenBelow}
	} else if f.HasToken {
		q["tokenNumber"] = bson.M{"$gt": 0}
	}
	return q
}

func hasTransientLabel(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.HasErrorLabel("TransientTransactionError") ||
			cmdErr.HasErrorLabel("UnknownTransactionCommitResult")
	}
	return mongo.IsTimeout(err) || mongo.IsNetworkError(err)
}
