// internal/domain/models/districtassignment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DistrictAssignment links an identity (national ID) to a district it administers.
// One identity may administer several districts via several records.
type DistrictAssignment struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	NationalID string             `bson:"national_id" json:"national_id"`
	District   string             `bson:"district" json:"district"`

	// Audit fields
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
	CreatedByID   string    `bson:"created_by_id" json:"created_by_id"`
	CreatedByName string    `bson:"created_by_name" json:"created_by_name"`
}
