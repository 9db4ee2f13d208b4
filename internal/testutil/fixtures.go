package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/mahallehub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateCitizen inserts a citizen. An empty phone stores no phone at all.
func (f *Fixtures) CreateCitizen(ctx context.Context, nationalID, fullName, phone, district, neighborhood string) models.Citizen {
	f.t.Helper()

	now := time.Now().UTC()
	c := models.Citizen{
		ID:           primitive.NewObjectID(),
		NationalID:   nationalID,
		FullName:     fullName,
		FullNameCI:   text.Fold(fullName),
		District:     district,
		Neighborhood: neighborhood,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if phone != "" {
		p := phone
		c.Phone = &p
	}

	if _, err := f.db.Collection("citizens").InsertOne(ctx, c); err != nil {
		f.t.Fatalf("failed to create test citizen: %v", err)
	}
	return c
}

// CreateCitizens inserts n citizens with phones in the given neighborhood.
// National IDs are derived from prefix (10 digits) plus the index.
func (f *Fixtures) CreateCitizens(ctx context.Context, n int, prefix, district, neighborhood string) []models.Citizen {
	f.t.Helper()
	out := make([]models.Citizen, 0, n)
	for i := 0; i < n; i++ {
		nid := NationalID(prefix, i)
		out = append(out, f.CreateCitizen(ctx, nid, "Citizen "+nid, "0555"+nid[4:], district, neighborhood))
	}
	return out
}

// AssignDistrict records nationalID as an administrator of district.
func (f *Fixtures) AssignDistrict(ctx context.Context, nationalID, district string) models.DistrictAssignment {
	f.t.Helper()
	a := models.DistrictAssignment{
		ID:            primitive.NewObjectID(),
		NationalID:    nationalID,
		District:      district,
		CreatedAt:     time.Now().UTC(),
		CreatedByID:   "fixture",
		CreatedByName: "Fixture",
	}
	if _, err := f.db.Collection("district_assignments").InsertOne(ctx, a); err != nil {
		f.t.Fatalf("failed to create district assignment: %v", err)
	}
	return a
}

// AssignNeighborhood records nationalID as the assignee of neighborhood.
func (f *Fixtures) AssignNeighborhood(ctx context.Context, nationalID, neighborhood string) models.NeighborhoodAssignment {
	f.t.Helper()
	a := models.NeighborhoodAssignment{
		ID:            primitive.NewObjectID(),
		NationalID:    nationalID,
		Neighborhood:  neighborhood,
		CreatedAt:     time.Now().UTC(),
		CreatedByID:   "fixture",
		CreatedByName: "Fixture",
	}
	if _, err := f.db.Collection("neighborhood_assignments").InsertOne(ctx, a); err != nil {
		f.t.Fatalf("failed to create neighborhood assignment: %v", err)
	}
	return a
}

// CreateTask inserts a pending call task for a citizen.
func (f *Fixtures) CreateTask(ctx context.Context, c models.Citizen, week string) models.CallTask {
	f.t.Helper()
	now := time.Now().UTC()
	task := models.CallTask{
		ID:             primitive.NewObjectID(),
		CitizenID:      c.NationalID,
		CitizenName:    c.FullName,
		Neighborhood:   c.Neighborhood,
		Week:           week,
		AssignedByID:   "fixture",
		AssignedByName: "Fixture",
		Status:         models.TaskPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if c.Phone != nil {
		task.Phone = *c.Phone
	}
	if _, err := f.db.Collection("call_tasks").InsertOne(ctx, task); err != nil {
		f.t.Fatalf("failed to create call task: %v", err)
	}
	return task
}

// CreateAccount inserts a login account with a bcrypt hash of password.
func (f *Fixtures) CreateAccount(ctx context.Context, nationalID, displayName, password string) models.Account {
	f.t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("hash password: %v", err)
	}
	now := time.Now().UTC()
	a := models.Account{
		ID:           primitive.NewObjectID(),
		NationalID:   nationalID,
		DisplayName:  displayName,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("accounts").InsertOne(ctx, a); err != nil {
		f.t.Fatalf("failed to create account: %v", err)
	}
	return a
}

// NationalID builds an 11-digit identifier: prefix padded with zeros, with the
// last three digits replaced by i.
func NationalID(prefix string, i int) string {
	s := prefix + "0000000000"
	s = s[:11]
	suffix := []byte{byte('0' + (i/100)%10), byte('0' + (i/10)%10), byte('0' + i%10)}
	return s[:8] + string(suffix)
}
