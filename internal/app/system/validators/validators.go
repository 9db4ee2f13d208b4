// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/mahallehub/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Patterns shared with system/inputval.
const (
	nationalIDPattern = `^[0-9]{11}$`
	weekPattern       = `^[0-9]{4}-W[0-9]{2}$`
	nonBlankPattern   = `.*\S.*`
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. On servers that don't support collMod/validators (e.g. some
// DocumentDB versions), we log and skip gracefully.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure("citizens", citizensSchema())
	ensure("call_tasks", callTasksSchema())
	ensure("district_assignments", districtAssignmentsSchema())
	ensure("neighborhood_assignments", neighborhoodAssignmentsSchema())
	ensure("accounts", accountsSchema())

	// Append-only; no validator.
	ensure("audit_events", nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

// collectionExists returns true when <name> already exists.
// Uses ListCollectionNames to avoid "created collection" log when it didn't.
func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return false, err
	}
	for _, n := range names {
		if n == name {
			return true, nil
		}
	}
	return false, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Info("collection exists", zap.String("collection", name))
		return false, nil
	}
	// If listing failed, fall back to create-and-handle-race.
	if err := db.CreateCollection(ctx, name); err != nil {
		// NamespaceExists / already exists is fine (race or prior run).
		if isNamespaceExistsErr(err) {
			zap.L().Info("collection exists", zap.String("collection", name))
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

/* ------------------------------ validators ------------------------------- */

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func isNamespaceExistsErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 48 || strings.Contains(strings.ToLower(ce.Message), "already exists")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "already exists") || strings.Contains(s, "namespace exists")
}

func isNoSuchCommand(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 59 || strings.Contains(strings.ToLower(ce.Message), "no such command")) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no such command")
}

func isNotImplemented(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 115 ||
		strings.Contains(strings.ToLower(ce.Message), "not implemented") ||
		strings.Contains(strings.ToLower(ce.Message), "not supported")) {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "not implemented") || strings.Contains(s, "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

func nonBlank() bson.M {
	return bson.M{"bsonType": "string", "minLength": 1, "pattern": nonBlankPattern}
}

func nationalID() bson.M {
	return bson.M{"bsonType": "string", "pattern": nationalIDPattern}
}

func citizensSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"national_id", "full_name", "full_name_ci", "neighborhood"},
			"properties": bson.M{
				"national_id":  nationalID(),
				"full_name":    nonBlank(),
				"full_name_ci": nonBlank(),
				"phone":        bson.M{"bsonType": "string"},
				"district":     bson.M{"bsonType": "string"},
				"neighborhood": nonBlank(),
				"duty":         bson.M{"bsonType": "string"},
				"created_at":   bson.M{"bsonType": "date"},
				"updated_at":   bson.M{"bsonType": "date"},
			},
		},
	}
}

func callTasksSchema() bson.M {
	statusEnum := bson.A{}
	for _, st := range []string{models.TaskPending, models.TaskCalled, models.TaskUnreachable} {
		statusEnum = append(statusEnum, st)
	}

	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"citizen_id", "neighborhood", "week", "status", "batch_id", "created_at"},
			"properties": bson.M{
				"citizen_id":       nationalID(),
				"citizen_name":     bson.M{"bsonType": "string"},
				"phone":            bson.M{"bsonType": "string"},
				"neighborhood":     nonBlank(),
				"week":             bson.M{"bsonType": "string", "pattern": weekPattern},
				"assigned_by_id":   bson.M{"bsonType": "string"},
				"assigned_by_name": bson.M{"bsonType": "string"},
				"batch_id":         bson.M{"bsonType": "string"},
				"status":           bson.M{"bsonType": "string", "enum": statusEnum},
				"note":             bson.M{"bsonType": bson.A{"string", "null"}},
				"called_at":        bson.M{"bsonType": bson.A{"date", "null"}},
				"created_at":       bson.M{"bsonType": "date"},
				"updated_at":       bson.M{"bsonType": "date"},
			},
		},
	}
}

func districtAssignmentsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"national_id", "district", "created_at"},
			"properties": bson.M{
				"national_id":     nationalID(),
				"district":        nonBlank(),
				"created_at":      bson.M{"bsonType": "date"},
				"created_by_id":   bson.M{"bsonType": "string"},
				"created_by_name": bson.M{"bsonType": "string"},
			},
		},
	}
}

func neighborhoodAssignmentsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"national_id", "neighborhood", "created_at"},
			"properties": bson.M{
				"national_id":     nationalID(),
				"neighborhood":    nonBlank(),
				"created_at":      bson.M{"bsonType": "date"},
				"created_by_id":   bson.M{"bsonType": "string"},
				"created_by_name": bson.M{"bsonType": "string"},
			},
		},
	}
}

func accountsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"national_id", "password_hash"},
			"properties": bson.M{
				"national_id":   nationalID(),
				"display_name":  bson.M{"bsonType": "string"},
				"password_hash": nonBlank(),
				"disabled":      bson.M{"bsonType": "bool"},
				"last_login_at": bson.M{"bsonType": "date"},
				"created_at":    bson.M{"bsonType": "date"},
				"updated_at":    bson.M{"bsonType": "date"},
			},
		},
	}
}
