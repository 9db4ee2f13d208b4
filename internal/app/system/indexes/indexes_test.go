package indexes_test

import (
	"testing"

	"github.com/dalemusser/mahallehub/internal/app/system/indexes"
	"github.com/dalemusser/mahallehub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func indexNames(t *testing.T, db *mongo.Database, coll string) map[string]bool {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cur, err := db.Collection(coll).Indexes().List(ctx)
	if err != nil {
		t.Fatalf("List indexes failed: %v", err)
	}
	defer cur.Close(ctx)

	names := make(map[string]bool)
	for cur.Next(ctx) {
		var idx bson.M
		if err := cur.Decode(&idx); err != nil {
			t.Fatalf("decode index: %v", err)
		}
		if name, ok := idx["name"].(string); ok {
			names[name] = true
		}
	}
	return names
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// SetupTestDB already ran EnsureAll once.
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesUniqueIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)

	want := map[string]string{
		"citizens":                 "uniq_citizens_national_id",
		"district_assignments":     "uniq_district_assignments_nid_district",
		"neighborhood_assignments": "uniq_neighborhood_assignments_nid",
		"call_tasks":               "uniq_call_tasks_citizen_week",
		"accounts":                 "uniq_accounts_national_id",
	}
	for coll, name := range want {
		if !indexNames(t, db, coll)[name] {
			t.Errorf("%s: expected index %q", coll, name)
		}
	}
}

func TestCallTasks_UniqueCitizenWeek(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	c := db.Collection("call_tasks")
	doc := bson.M{"citizen_id": "10000000146", "week": "2026-W03", "status": "pending"}
	if _, err := c.InsertOne(ctx, doc); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	if _, err := c.InsertOne(ctx, bson.M{"citizen_id": "10000000146", "week": "2026-W03", "status": "pending"}); !mongo.IsDuplicateKeyError(err) {
		t.Errorf("expected duplicate key error, got %v", err)
	}
	if _, err := c.InsertOne(ctx, bson.M{"citizen_id": "10000000146", "week": "2026-W04", "status": "pending"}); err != nil {
		t.Errorf("different week should insert, got %v", err)
	}
}
