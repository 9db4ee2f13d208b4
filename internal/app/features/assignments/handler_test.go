package assignments_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/dalemusser/mahallehub/internal/app/features/assignments"
	"github.com/dalemusser/mahallehub/internal/app/policy/scopepolicy"
	"github.com/dalemusser/mahallehub/internal/app/store/audit"
	citizenstore "github.com/dalemusser/mahallehub/internal/app/store/citizens"
	"github.com/dalemusser/mahallehub/internal/app/store/districtassign"
	"github.com/dalemusser/mahallehub/internal/app/store/neighborhoodassign"
	"github.com/dalemusser/mahallehub/internal/app/system/auditlog"
	"github.com/dalemusser/mahallehub/internal/app/system/authz"
	"github.com/dalemusser/mahallehub/internal/app/system/districtindex"
	"github.com/dalemusser/mahallehub/internal/domain/models"
	"github.com/dalemusser/mahallehub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const targetID = "70000000001"

func newHandler(t *testing.T) (*assignments.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	log := zap.NewNop()
	store := citizenstore.New(db)
	scope := scopepolicy.New(store, districtindex.NewCache(store, time.Minute, log))
	al := auditlog.New(audit.New(db), log, auditlog.Uniform("db"))
	return assignments.NewHandler(db, scope, al, log), db
}

func post(h http.HandlerFunc, target string, id authz.Identity, form url.Values) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, testutil.WithIdentity(testutil.NewFormRequest(target, form), id))
	return rec
}

func TestDistrictAssignments(t *testing.T) {
	h, db := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	form := url.Values{"national_id": {targetID}, "district": {"Merkez"}}

	if rec := post(h.HandleAssignDistrict, "/assignments/districts", testutil.SuperAdmin, form); rec.Code != http.StatusOK {
		t.Fatalf("assign: got %d, body %s", rec.Code, rec.Body.String())
	}
	if rec := post(h.HandleAssignDistrict, "/assignments/districts", testutil.SuperAdmin, form); rec.Code != http.StatusBadRequest {
		t.Errorf("duplicate assign: got %d", rec.Code)
	}
	if rec := post(h.HandleAssignDistrict, "/assignments/districts", testutil.DistrictAdmin, form); rec.Code != http.StatusForbidden {
		t.Errorf("district admin assigning districts: got %d", rec.Code)
	}

	districts, err := districtassign.New(db).DistrictsByNationalID(ctx, targetID)
	if err != nil || len(districts) != 1 || districts[0] != "Merkez" {
		t.Fatalf("stored districts: %v, %v", districts, err)
	}

	rec := httptest.NewRecorder()
	h.ServeDistricts(rec, testutil.WithIdentity(httptest.NewRequest("GET", "/assignments/districts", nil), testutil.SuperAdmin))
	var resp struct {
		Assignments []models.DistrictAssignment `json:"assignments"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if len(resp.Assignments) != 1 || resp.Assignments[0].CreatedByID != testutil.SuperAdminID {
		t.Errorf("list: %+v", resp.Assignments)
	}

	if rec := post(h.HandleUnassignDistrict, "/assignments/districts/delete", testutil.SuperAdmin, form); rec.Code != http.StatusOK {
		t.Errorf("unassign: got %d", rec.Code)
	}
	if rec := post(h.HandleUnassignDistrict, "/assignments/districts/delete", testutil.SuperAdmin, form); rec.Code != http.StatusNotFound {
		t.Errorf("second unassign: got %d", rec.Code)
	}

	events, _ := audit.New(db).Query(ctx, audit.QueryFilter{Category: audit.CategoryAdmin})
	if len(events) != 2 {
		t.Errorf("expected assign + unassign audit events, got %d", len(events))
	}
}

func TestNeighborhoodAssignments_DistrictAdmin(t *testing.T) {
	h, db := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	fx.CreateCitizen(ctx, "71000000001", "A", "0555", "Merkez", "Yönetim")
	fx.CreateCitizen(ctx, "71000000002", "B", "0555", "Merkez", "Çarşı")
	fx.CreateCitizen(ctx, "71000000003", "C", "0555", "Kuzey", "Liman")

	assign := func(hood string) int {
		return post(h.HandleAssignNeighborhood, "/assignments/neighborhoods", testutil.DistrictAdmin,
			url.Values{"national_id": {targetID}, "neighborhood": {hood}}).Code
	}

	if code := assign("Yönetim"); code != http.StatusOK {
		t.Fatalf("assign own district: got %d", code)
	}
	if code := assign("Çarşı"); code != http.StatusOK {
		t.Fatalf("replace within own district: got %d", code)
	}
	if code := assign("Liman"); code != http.StatusForbidden {
		t.Errorf("assign other district: got %d", code)
	}

	a, err := neighborhoodassign.New(db).GetByNationalID(ctx, targetID)
	if err != nil || a.Neighborhood != "Çarşı" {
		t.Fatalf("stored assignment: %+v, %v", a, err)
	}

	rec := post(h.HandleUnassignNeighborhood, "/assignments/neighborhoods/delete", testutil.DistrictAdmin,
		url.Values{"national_id": {targetID}})
	if rec.Code != http.StatusOK {
		t.Errorf("unassign: got %d", rec.Code)
	}
}

func TestNeighborhoodAssignments_CannotStealFromOtherDistrict(t *testing.T) {
	h, db := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	fx.CreateCitizen(ctx, "72000000001", "A", "0555", "Merkez", "Yönetim")
	fx.CreateCitizen(ctx, "72000000002", "C", "0555", "Kuzey", "Liman")
	fx.AssignNeighborhood(ctx, targetID, "Liman")

	rec := post(h.HandleAssignNeighborhood, "/assignments/neighborhoods", testutil.DistrictAdmin,
		url.Values{"national_id": {targetID}, "neighborhood": {"Yönetim"}})
	if rec.Code != http.StatusForbidden {
		t.Errorf("moving an assignee out of another district: got %d", rec.Code)
	}

	rec = post(h.HandleUnassignNeighborhood, "/assignments/neighborhoods/delete", testutil.DistrictAdmin,
		url.Values{"national_id": {targetID}})
	if rec.Code != http.StatusForbidden {
		t.Errorf("unassign in another district: got %d", rec.Code)
	}
}

func TestNeighborhoodAssignments_ListScoped(t *testing.T) {
	h, db := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	fx.CreateCitizen(ctx, "73000000001", "A", "0555", "Merkez", "Yönetim")
	fx.CreateCitizen(ctx, "73000000002", "C", "0555", "Kuzey", "Liman")
	fx.AssignNeighborhood(ctx, "73000000011", "Yönetim")
	fx.AssignNeighborhood(ctx, "73000000012", "Liman")

	rec := httptest.NewRecorder()
	h.ServeNeighborhoods(rec, testutil.WithIdentity(httptest.NewRequest("GET", "/assignments/neighborhoods", nil), testutil.DistrictAdmin))
	var resp struct {
		Assignments []models.NeighborhoodAssignment `json:"assignments"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if len(resp.Assignments) != 1 || resp.Assignments[0].Neighborhood != "Yönetim" {
		t.Errorf("list: %+v", resp.Assignments)
	}

	rec = httptest.NewRecorder()
	h.ServeNeighborhoods(rec, testutil.WithIdentity(httptest.NewRequest("GET", "/assignments/neighborhoods", nil), testutil.Assignee))
	if rec.Code != http.StatusForbidden {
		t.Errorf("assignee listing: got %d", rec.Code)
	}
}
