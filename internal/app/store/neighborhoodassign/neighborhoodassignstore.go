// internal/app/store/neighborhoodassign/neighborhoodassignstore.go
package neighborhoodassign

import (
	"context"
	"time"

	"github.com/dalemusser/mahallehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("neighborhood_assignments")}
}

// Set assigns nationalID to neighborhood, replacing any earlier assignment.
// An identity handles at most one neighborhood.
func (s *Store) Set(ctx context.Context, a models.NeighborhoodAssignment) (models.NeighborhoodAssignment, error) {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var out models.NeighborhoodAssignment
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"national_id": a.NationalID},
		bson.M{"$set": bson.M{
			"neighborhood":    a.Neighborhood,
			"created_at":      a.CreatedAt,
			"created_by_id":   a.CreatedByID,
			"created_by_name": a.CreatedByName,
		}},
		opts).Decode(&out)
	return out, err
}

// Delete removes the assignment of nationalID, if any.
func (s *Store) Delete(ctx context.Context, nationalID string) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"national_id": nationalID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// GetByNationalID returns mongo.ErrNoDocuments when nationalID has no neighborhood.
func (s *Store) GetByNationalID(ctx context.Context, nationalID string) (models.NeighborhoodAssignment, error) {
	var a models.NeighborhoodAssignment
	err := s.c.FindOne(ctx, bson.M{"national_id": nationalID}).Decode(&a)
	return a, err
}

// ListByNeighborhoods returns assignments whose neighborhood is in the set.
// A nil slice lists everything.
func (s *Store) ListByNeighborhoods(ctx context.Context, neighborhoods []string) ([]models.NeighborhoodAssignment, error) {
	filter := bson.M{}
	if neighborhoods != nil {
		if len(neighborhoods) == 0 {
			return nil, nil
		}
		filter["neighborhood"] = bson.M{"$in": neighborhoods}
	}
	cur, err := s.c.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "neighborhood", Value: 1}, {Key: "national_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.NeighborhoodAssignment
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
