// internal/app/store/calltasks/calltaskstore.go
package calltaskstore

import (
	"context"
	"time"

	"github.com/dalemusser/mahallehub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("call_tasks")}
}

// InsertIfAbsent inserts t unless a task for (CitizenID, Week) already exists.
// inserted is false, with a nil error, when the unique index rejected it.
func (s *Store) InsertIfAbsent(ctx context.Context, t models.CallTask) (inserted bool, err error) {
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	if _, err := s.c.InsertOne(ctx, t); err != nil {
		if wafflemongo.IsDup(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// CitizenIDsForWeek returns the citizen IDs already holding a task for the
// neighborhood and week.
func (s *Store) CitizenIDsForWeek(ctx context.Context, neighborhood, week string) ([]string, error) {
	vals, err := s.c.Distinct(ctx, "citizen_id", bson.M{"neighborhood": neighborhood, "week": week})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if id, ok := v.(string); ok {
			out = append(out, id)
		}
	}
	return out, nil
}

// GetByID returns mongo.ErrNoDocuments if the task does not exist.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.CallTask, error) {
	var t models.CallTask
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&t)
	return t, err
}

// StatusChange describes one status transition.
type StatusChange struct {
	Status string
	// Note replaces the stored note when non-nil.
	Note *string
	// CalledAt is stored when non-nil and cleared when nil.
	CalledAt *time.Time
	At       time.Time
}

// UpdateStatus applies ch and returns the updated task.
// Returns mongo.ErrNoDocuments if the task does not exist.
func (s *Store) UpdateStatus(ctx context.Context, id primitive.ObjectID, ch StatusChange) (models.CallTask, error) {
	set := bson.M{
		"status":     ch.Status,
		"updated_at": ch.At,
	}
	update := bson.M{"$set": set}
	if ch.CalledAt != nil {
		set["called_at"] = *ch.CalledAt
	} else {
		update["$unset"] = bson.M{"called_at": ""}
	}
	if ch.Note != nil {
		set["note"] = *ch.Note
	}

	var out models.CallTask
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&out)
	return out, err
}

// ListByNeighborhoodWeek returns the tasks of one neighborhood and week
// ordered by citizen name.
func (s *Store) ListByNeighborhoodWeek(ctx context.Context, neighborhood, week string) ([]models.CallTask, error) {
	cur, err := s.c.Find(ctx,
		bson.M{"neighborhood": neighborhood, "week": week},
		options.Find().SetSort(bson.D{{Key: "citizen_name", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.CallTask
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteByNeighborhoodWeek removes every task of the neighborhood and week.
func (s *Store) DeleteByNeighborhoodWeek(ctx context.Context, neighborhood, week string) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"neighborhood": neighborhood, "week": week})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// StatsByWeek groups the week's tasks by neighborhood. A nil neighborhoods
// slice covers every neighborhood; an empty one returns nothing.
func (s *Store) StatsByWeek(ctx context.Context, week string, neighborhoods []string) ([]models.NeighborhoodWeekStats, error) {
	match := bson.M{"week": week}
	if neighborhoods != nil {
		if len(neighborhoods) == 0 {
			return nil, nil
		}
		match["neighborhood"] = bson.M{"$in": neighborhoods}
	}

	countIf := func(status string) bson.M {
		return bson.M{"$sum": bson.M{"$cond": bson.A{bson.M{"$eq": bson.A{"$status", status}}, 1, 0}}}
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":         "$neighborhood",
			"total":       bson.M{"$sum": 1},
			"called":      countIf(models.TaskCalled),
			"pending":     countIf(models.TaskPending),
			"unreachable": countIf(models.TaskUnreachable),
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.NeighborhoodWeekStats
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
