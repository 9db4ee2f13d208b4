package validators_test

import (
	"testing"
	"time"

	"github.com/dalemusser/mahallehub/internal/app/system/validators"
	"github.com/dalemusser/mahallehub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func setup(t *testing.T) *mongo.Database {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	return db
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesCollections(t *testing.T) {
	db := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("ListCollectionNames failed: %v", err)
	}
	have := map[string]bool{}
	for _, n := range names {
		have[n] = true
	}
	for _, want := range []string{"citizens", "call_tasks", "district_assignments", "neighborhood_assignments", "accounts", "audit_events"} {
		if !have[want] {
			t.Errorf("expected collection %q to exist", want)
		}
	}
}

func validTask() bson.M {
	now := time.Now().UTC()
	return bson.M{
		"citizen_id":   "12345678901",
		"citizen_name": "Ayşe Yılmaz",
		"phone":        "05551112233",
		"neighborhood": "Yönetim",
		"week":         "2026-W03",
		"batch_id":     "batch-1",
		"status":       "pending",
		"created_at":   now,
		"updated_at":   now,
	}
}

func TestCallTasksValidator(t *testing.T) {
	db := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	coll := db.Collection("call_tasks")

	if _, err := coll.InsertOne(ctx, validTask()); err != nil {
		t.Fatalf("insert valid task: %v", err)
	}

	cases := map[string]func(bson.M){
		"unknown status":     func(d bson.M) { d["status"] = "done" },
		"malformed week":     func(d bson.M) { d["week"] = "2026-3" },
		"malformed citizen":  func(d bson.M) { d["citizen_id"] = "123" },
		"blank neighborhood": func(d bson.M) { d["neighborhood"] = "  " },
		"missing batch id":   func(d bson.M) { delete(d, "batch_id") },
		"note of wrong type": func(d bson.M) { d["note"] = 42 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			doc := validTask()
			doc["citizen_id"] = "10987654321"
			mutate(doc)
			if _, err := coll.InsertOne(ctx, doc); err == nil {
				t.Errorf("expected validation error")
			}
		})
	}
}

func TestCitizensValidator(t *testing.T) {
	db := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	coll := db.Collection("citizens")

	if _, err := coll.InsertOne(ctx, bson.M{
		"national_id":  "12345678901",
		"full_name":    "Ali Kaya",
		"full_name_ci": "ali kaya",
		"district":     "",
		"neighborhood": "Yönetim",
	}); err != nil {
		t.Fatalf("insert valid citizen: %v", err)
	}

	if _, err := coll.InsertOne(ctx, bson.M{
		"national_id":  "1234",
		"full_name":    "Ali Kaya",
		"full_name_ci": "ali kaya",
		"neighborhood": "Yönetim",
	}); err == nil {
		t.Error("expected validation error for a short national ID")
	}

	if _, err := coll.InsertOne(ctx, bson.M{"national_id": "10987654321"}); err == nil {
		t.Error("expected validation error for missing required fields")
	}
}

func TestAssignmentValidators(t *testing.T) {
	db := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	now := time.Now().UTC()

	if _, err := db.Collection("district_assignments").InsertOne(ctx, bson.M{
		"national_id": testutil.DistrictID, "district": "Merkez", "created_at": now,
	}); err != nil {
		t.Fatalf("valid district assignment: %v", err)
	}
	if _, err := db.Collection("district_assignments").InsertOne(ctx, bson.M{
		"national_id": testutil.DistrictID, "district": "", "created_at": now,
	}); err == nil {
		t.Error("expected validation error for an empty district")
	}
	if _, err := db.Collection("neighborhood_assignments").InsertOne(ctx, bson.M{
		"national_id": "abc", "neighborhood": "Yönetim", "created_at": now,
	}); err == nil {
		t.Error("expected validation error for a malformed national ID")
	}
}

func TestAccountsValidator(t *testing.T) {
	db := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := db.Collection("accounts").InsertOne(ctx, bson.M{"national_id": testutil.MemberID}); err == nil {
		t.Error("expected validation error for an account without a password hash")
	}
}

func TestValidatorsAcceptFixtures(t *testing.T) {
	db := setup(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	c := fx.CreateCitizen(ctx, "12345678901", "Ayşe Yılmaz", "05551112233", "Merkez", "Yönetim")
	fx.CreateTask(ctx, c, "2026-W03")
	fx.AssignDistrict(ctx, testutil.DistrictID, "Merkez")
	fx.AssignNeighborhood(ctx, testutil.AssigneeID, "Yönetim")
	fx.CreateAccount(ctx, testutil.MemberID, "Üye", "dogru-sifre")
}
