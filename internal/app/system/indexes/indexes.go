// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup (and by `mahallectl indexes ensure`). Each
ensure* function is idempotent. Errors are aggregated so every problem is
visible at once and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	steps := []struct {
		name string
		fn   func(context.Context, *mongo.Database) error
	}{
		{"citizens", ensureCitizens},
		{"district_assignments", ensureDistrictAssignments},
		{"neighborhood_assignments", ensureNeighborhoodAssignments},
		{"call_tasks", ensureCallTasks},
		{"accounts", ensureAccounts},
		{"audit_events", ensureAuditEvents},
	}
	for _, s := range steps {
		if err := s.fn(ctx, db); err != nil {
			problems = append(problems, s.name+": "+err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Reconcile a set of desired indexes for one collection                      */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func isUnique(b *bool) bool { return b != nil && *b }

func listIndexes(ctx context.Context, coll *mongo.Collection) (map[string]existingIndex, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	existing := map[string]existingIndex{}
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		existing[keySig(idx.Key)] = idx
	}
	return existing, cur.Err()
}

// ensureIndexSet creates missing indexes and replaces ones whose key pattern
// matches but whose uniqueness or name differs.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	existing, err := listIndexes(ctx, coll)
	if err != nil {
		// A collection that does not exist yet has no indexes to reconcile.
		existing = map[string]existingIndex{}
	}

	var errs []string
	for _, m := range models {
		var name string
		var unique *bool
		if m.Options != nil {
			if m.Options.Name != nil {
				name = *m.Options.Name
			}
			unique = m.Options.Unique
		}
		sig := keySig(m.Keys.(bson.D))
		start := time.Now()

		if ex, ok := existing[sig]; ok {
			if isUnique(ex.Unique) == isUnique(unique) && (name == "" || ex.Name == name) {
				zap.L().Debug("reusing existing index",
					zap.String("collection", coll.Name()),
					zap.String("name", ex.Name),
					zap.String("keys", sig))
				continue
			}
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), name, err))
				continue
			}
			zap.L().Info("dropped index for recreation",
				zap.String("collection", coll.Name()),
				zap.String("name", ex.Name),
				zap.String("keys", sig))
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if wafflemongo.IsDup(err) && isUnique(unique) {
				errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present on %s)", coll.Name(), name, sig))
			} else {
				errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), name, err))
			}
			zap.L().Warn("index ensure failed",
				zap.String("collection", coll.Name()),
				zap.String("name", name),
				zap.String("keys", sig),
				zap.Error(err))
			continue
		}
		zap.L().Info("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig),
			zap.Bool("unique", isUnique(unique)),
			zap.String("took", time.Since(start).String()))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Per-collection index sets                                                  */
/* -------------------------------------------------------------------------- */

func ensureCitizens(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("citizens"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "national_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_citizens_national_id"),
		},
		// Eligible-pool lookups: neighborhood + phone presence.
		{
			Keys:    bson.D{{Key: "neighborhood", Value: 1}, {Key: "phone", Value: 1}},
			Options: options.Index().SetName("idx_citizens_neighborhood_phone"),
		},
		// District scope and the neighborhood -> district index.
		{
			Keys:    bson.D{{Key: "district", Value: 1}, {Key: "neighborhood", Value: 1}},
			Options: options.Index().SetName("idx_citizens_district_neighborhood"),
		},
		// Keyset pages of the citizen list.
		{
			Keys:    bson.D{{Key: "full_name_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_citizens_fullnameci_id"),
		},
		{
			Keys:    bson.D{{Key: "neighborhood", Value: 1}, {Key: "full_name_ci", Value: 1}, {Key: "_id", Value: 1}},
			Options: options.Index().SetName("idx_citizens_neighborhood_fullnameci_id"),
		},
	})
}

func ensureDistrictAssignments(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("district_assignments"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "national_id", Value: 1}, {Key: "district", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_district_assignments_nid_district"),
		},
		{
			Keys:    bson.D{{Key: "district", Value: 1}},
			Options: options.Index().SetName("idx_district_assignments_district"),
		},
	})
}

func ensureNeighborhoodAssignments(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("neighborhood_assignments"), []mongo.IndexModel{
		// One neighborhood per identity.
		{
			Keys:    bson.D{{Key: "national_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_neighborhood_assignments_nid"),
		},
		{
			Keys:    bson.D{{Key: "neighborhood", Value: 1}},
			Options: options.Index().SetName("idx_neighborhood_assignments_neighborhood"),
		},
	})
}

func ensureCallTasks(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("call_tasks"), []mongo.IndexModel{
		// At most one task per citizen per week.
		{
			Keys:    bson.D{{Key: "citizen_id", Value: 1}, {Key: "week", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_call_tasks_citizen_week"),
		},
		{
			Keys:    bson.D{{Key: "neighborhood", Value: 1}, {Key: "week", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_call_tasks_neighborhood_week_status"),
		},
		{
			Keys:    bson.D{{Key: "week", Value: 1}, {Key: "neighborhood", Value: 1}},
			Options: options.Index().SetName("idx_call_tasks_week_neighborhood"),
		},
	})
}

func ensureAccounts(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("accounts"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "national_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_accounts_national_id"),
		},
	})
}

func ensureAuditEvents(ctx context.Context, db *mongo.Database) error {
	return ensureIndexSet(ctx, db.Collection("audit_events"), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_events_ts"),
		},
		{
			Keys:    bson.D{{Key: "actor_id", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_events_actor_ts"),
		},
		{
			Keys:    bson.D{{Key: "category", Value: 1}, {Key: "event_type", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_audit_events_category_type_ts"),
		},
	})
}
