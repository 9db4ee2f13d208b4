// internal/app/store/accounts/accountstore.go
package accountstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/mahallehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNotFound        = errors.New("account not found")
	ErrDisabled        = errors.New("account disabled")
	ErrWrongPassword   = errors.New("wrong password")
	ErrPasswordTooWeak = errors.New("password must be at least 8 characters")
)

// MinPasswordLen is the shortest password SetPassword accepts.
const MinPasswordLen = 8

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("accounts")}
}

// GetByNationalID returns ErrNotFound when no account exists.
func (s *Store) GetByNationalID(ctx context.Context, nationalID string) (models.Account, error) {
	var a models.Account
	err := s.c.FindOne(ctx, bson.M{"national_id": nationalID}).Decode(&a)
	if err == mongo.ErrNoDocuments {
		return a, ErrNotFound
	}
	return a, err
}

// SetPassword creates or updates the account for nationalID with a bcrypt
// hash of password. displayName is only changed when non-empty.
func (s *Store) SetPassword(ctx context.Context, nationalID, displayName, password string) (created bool, err error) {
	if len(password) < MinPasswordLen {
		return false, ErrPasswordTooWeak
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}

	now := time.Now().UTC()
	set := bson.M{
		"password_hash": string(hash),
		"updated_at":    now,
	}
	if name := strings.TrimSpace(displayName); name != "" {
		set["display_name"] = name
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"national_id": nationalID},
		bson.M{"$set": set, "$setOnInsert": bson.M{"created_at": now}},
		options.Update().SetUpsert(true))
	if err != nil {
		return false, err
	}
	return res.UpsertedCount > 0, nil
}

// SetDisabled toggles the disabled flag.
func (s *Store) SetDisabled(ctx context.Context, nationalID string, disabled bool) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"national_id": nationalID},
		bson.M{"$set": bson.M{"disabled": disabled, "updated_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Authenticate verifies password for nationalID. On success it stamps
// last_login_at and returns the account.
func (s *Store) Authenticate(ctx context.Context, nationalID, password string) (models.Account, error) {
	a, err := s.GetByNationalID(ctx, nationalID)
	if err != nil {
		return a, err
	}
	if a.Disabled {
		return a, ErrDisabled
	}
	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) != nil {
		return a, ErrWrongPassword
	}

	now := time.Now().UTC()
	a.LastLoginAt = &now
	_, err = s.c.UpdateOne(ctx, bson.M{"_id": a.ID}, bson.M{"$set": bson.M{"last_login_at": now}})
	return a, err
}
