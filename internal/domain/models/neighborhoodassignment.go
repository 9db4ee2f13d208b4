// internal/domain/models/neighborhoodassignment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NeighborhoodAssignment links an identity to the single neighborhood it handles.
type NeighborhoodAssignment struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	NationalID   string             `bson:"national_id" json:"national_id"`
	Neighborhood string             `bson:"neighborhood" json:"neighborhood"`

	// Audit fields
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
	CreatedByID   string    `bson:"created_by_id" json:"created_by_id"`
	CreatedByName string    `bson:"created_by_name" json:"created_by_name"`
}
