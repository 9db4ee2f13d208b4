// internal/domain/models/citizen.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Citizen is a tracked person record, keyed by national ID.
//
// District is not stored anywhere else: the neighborhood -> district mapping is
// derived from citizen rows (see system/districtindex).
type Citizen struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	NationalID   string             `bson:"national_id" json:"national_id"` // 11 digits
	FullName     string             `bson:"full_name" json:"full_name"`
	FullNameCI   string             `bson:"full_name_ci" json:"-"` // folded for search
	Phone        *string            `bson:"phone,omitempty" json:"phone,omitempty"`
	District     string             `bson:"district" json:"district"`
	Neighborhood string             `bson:"neighborhood" json:"neighborhood"`
	Duty         string             `bson:"duty,omitempty" json:"duty,omitempty"` // free-text role/duty

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// HasPhone reports whether the citizen can be called.
func (c Citizen) HasPhone() bool {
	return c.Phone != nil && *c.Phone != ""
}
