package models

import "time"

// Clinic is the tenant aggregate. BookingSlug identifies the clinic on the
// unauthenticated public booking path.
type Clinic struct {
	ID          string    `bson:"id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	BookingSlug string    `bson:"bookingSlug" json:"bookingSlug"`
	Timezone    string    `bson:"timezone,omitempty" json:"timezone,omitempty"`
	Active      bool      `bson:"active" json:"active"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt,omitzero"`
}
