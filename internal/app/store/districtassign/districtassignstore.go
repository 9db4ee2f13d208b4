// internal/app/store/districtassign/districtassignstore.go
package districtassign

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/mahallehub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicate is returned when the identity already administers the district.
var ErrDuplicate = errors.New("district already assigned to this national ID")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("district_assignments")}
}

// Create inserts a new district assignment.
// If CreatedAt is zero, it will be set to now (UTC).
func (s *Store) Create(ctx context.Context, a models.DistrictAssignment) (models.DistrictAssignment, error) {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	res, err := s.c.InsertOne(ctx, a)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return a, ErrDuplicate
		}
		return a, err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		a.ID = oid
	}
	return a, nil
}

// Delete removes the (nationalID, district) assignment.
// Returns the number of documents deleted.
func (s *Store) Delete(ctx context.Context, nationalID, district string) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"national_id": nationalID, "district": district})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DistrictsByNationalID returns the districts administered by nationalID.
// This is the lookup used for identity resolution.
func (s *Store) DistrictsByNationalID(ctx context.Context, nationalID string) ([]string, error) {
	cur, err := s.c.Find(ctx, bson.M{"national_id": nationalID},
		options.Find().SetSort(bson.D{{Key: "district", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var districts []string
	for cur.Next(ctx) {
		var a models.DistrictAssignment
		if err := cur.Decode(&a); err != nil {
			return nil, err
		}
		districts = append(districts, a.District)
	}
	return districts, cur.Err()
}

// List returns every assignment, optionally restricted to one district.
func (s *Store) List(ctx context.Context, district string) ([]models.DistrictAssignment, error) {
	filter := bson.M{}
	if district != "" {
		filter["district"] = district
	}
	cur, err := s.c.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "district", Value: 1}, {Key: "national_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.DistrictAssignment
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
