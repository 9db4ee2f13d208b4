package login_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/dalemusser/mahallehub/internal/app/features/login"
	"github.com/dalemusser/mahallehub/internal/app/store/audit"
	"github.com/dalemusser/mahallehub/internal/app/store/districtassign"
	"github.com/dalemusser/mahallehub/internal/app/store/neighborhoodassign"
	"github.com/dalemusser/mahallehub/internal/app/system/auditlog"
	"github.com/dalemusser/mahallehub/internal/app/system/auth"
	"github.com/dalemusser/mahallehub/internal/app/system/authz"
	"github.com/dalemusser/mahallehub/internal/app/system/ratelimit"
	"github.com/dalemusser/mahallehub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newHandler(t *testing.T) (*login.Handler, *mongo.Database) {
	t.Helper()
	return newLimitedHandler(t, nil)
}

func newLimitedHandler(t *testing.T, limiter *ratelimit.LoginLimiter) (*login.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	sm, err := auth.NewSessionManager("test-session-key-must-be-32-chars-long", "test-session", "", false, zap.NewNop())
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}
	resolver := authz.NewResolver([]string{testutil.SuperAdminID}, districtassign.New(db), neighborhoodassign.New(db))
	al := auditlog.New(audit.New(db), zap.NewNop(), auditlog.Uniform("db"))
	return login.NewHandler(db, sm, resolver, limiter, al, zap.NewNop()), db
}

func post(h *login.Handler, nid, pw string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.HandleLogin(rec, testutil.NewFormRequest("/login", url.Values{"national_id": {nid}, "password": {pw}}))
	return rec
}

func TestHandleLogin_Success(t *testing.T) {
	h, db := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	fx.CreateAccount(ctx, testutil.AssigneeID, "Mahalle Sorumlusu", "gizli-sifre")
	fx.AssignNeighborhood(ctx, testutil.AssigneeID, "Yönetim")

	rec := post(h, testutil.AssigneeID, "gizli-sifre")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}
	if len(rec.Result().Cookies()) == 0 {
		t.Error("expected a session cookie")
	}

	var resp struct {
		Identity authz.Identity `json:"identity"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if resp.Identity.Role != authz.RoleNeighborhoodUser || resp.Identity.Neighborhood != "Yönetim" {
		t.Errorf("identity: %+v", resp.Identity)
	}

	events, _ := audit.New(db).Query(ctx, audit.QueryFilter{EventType: audit.EventLoginSuccess})
	if len(events) != 1 {
		t.Errorf("expected one login_success audit event, got %d", len(events))
	}
}

func TestHandleLogin_Failures(t *testing.T) {
	h, db := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	fx.CreateAccount(ctx, testutil.MemberID, "Üye", "dogru-sifre")

	if rec := post(h, testutil.MemberID, "yanlis-sifre"); rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: got %d", rec.Code)
	}
	if rec := post(h, testutil.DistrictID, "dogru-sifre"); rec.Code != http.StatusUnauthorized {
		t.Errorf("unknown id: got %d", rec.Code)
	}
	if rec := post(h, "123", "x"); rec.Code != http.StatusBadRequest {
		t.Errorf("malformed id: got %d", rec.Code)
	}

	events, _ := audit.New(db).Query(ctx, audit.QueryFilter{Category: audit.CategoryAuth})
	if len(events) != 2 {
		t.Errorf("expected two failed-login audit events, got %d", len(events))
	}
}

func TestHandleLogin_RateLimitedPerNationalID(t *testing.T) {
	limiter := ratelimit.NewLoginLimiterWithConfig(100, time.Minute, 2, time.Minute)
	h, db := newLimitedHandler(t, limiter)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	fx.CreateAccount(ctx, testutil.MemberID, "Üye", "dogru-sifre")

	for i := 0; i < 2; i++ {
		if rec := post(h, testutil.MemberID, "yanlis-sifre"); rec.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: got %d", i+1, rec.Code)
		}
	}
	rec := post(h, testutil.MemberID, "dogru-sifre")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("third attempt: got %d, want 429", rec.Code)
	}

	events, err := audit.New(db).Query(ctx, audit.QueryFilter{EventType: audit.EventLoginFailedRateLimit})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("rate-limit events: got %d, want 1", len(events))
	}
}
