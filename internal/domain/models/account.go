// internal/domain/models/account.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Account holds login credentials for an identity. The national ID is the
// login ID; the role is never stored here, it is resolved on every request.
type Account struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	NationalID   string             `bson:"national_id" json:"national_id"`
	DisplayName  string             `bson:"display_name" json:"display_name"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Disabled     bool               `bson:"disabled,omitempty" json:"disabled,omitempty"`

	LastLoginAt *time.Time `bson:"last_login_at,omitempty" json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updated_at"`
}
