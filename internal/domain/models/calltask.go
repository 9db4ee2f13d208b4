// internal/domain/models/calltask.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Call task statuses.
const (
	TaskPending     = "pending"
	TaskCalled      = "called"
	TaskUnreachable = "unreachable"
)

// IsValidTaskStatus reports whether s is one of the known task statuses.
func IsValidTaskStatus(s string) bool {
	switch s {
	case TaskPending, TaskCalled, TaskUnreachable:
		return true
	}
	return false
}

// CallTask is one weekly obligation to phone a citizen.
//
// There is at most one CallTask per (CitizenID, Week); the call_tasks collection
// carries a unique index on that pair.
type CallTask struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CitizenID    string             `bson:"citizen_id" json:"citizen_id"` // citizen national ID
	CitizenName  string             `bson:"citizen_name" json:"citizen_name"`
	Phone        string             `bson:"phone" json:"phone"`
	Neighborhood string             `bson:"neighborhood" json:"neighborhood"` // copied from the citizen at creation
	Week         string             `bson:"week" json:"week"`                 // YYYY-Www

	AssignedByID   string `bson:"assigned_by_id" json:"assigned_by_id"`
	AssignedByName string `bson:"assigned_by_name" json:"assigned_by_name"`
	BatchID        string `bson:"batch_id" json:"batch_id"`

	Status   string     `bson:"status" json:"status"`
	Note     *string    `bson:"note,omitempty" json:"note,omitempty"`
	CalledAt *time.Time `bson:"called_at,omitempty" json:"called_at,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// NeighborhoodWeekStats holds grouped task counts for one neighborhood and week.
type NeighborhoodWeekStats struct {
	Neighborhood string `bson:"_id" json:"neighborhood"`
	Total        int    `bson:"total" json:"total"`
	Called       int    `bson:"called" json:"called"`
	Pending      int    `bson:"pending" json:"pending"`
	Unreachable  int    `bson:"unreachable" json:"unreachable"`
}
