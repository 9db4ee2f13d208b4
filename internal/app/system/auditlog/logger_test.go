package auditlog_test

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/mahallehub/internal/app/store/audit"
	"github.com/dalemusser/mahallehub/internal/app/system/auditlog"
	"github.com/dalemusser/mahallehub/internal/testutil"
	"go.uber.org/zap"
)

func TestLogger_NilLogger(t *testing.T) {
	// nil logger should be a no-op (not panic)
	var logger *auditlog.Logger
	ctx, cancel := testutil.TestContext()
	defer cancel()
	req := httptest.NewRequest("GET", "/", nil)

	logger.Log(ctx, audit.Event{EventType: "test"})
	logger.LoginSuccess(ctx, req, auditlog.Actor{ID: testutil.MemberID})
	logger.TasksCreated(ctx, req, auditlog.Actor{}, "Yönetim", "2026-W03", "b", 3, 0)
}

func TestLogger_Log_ConfigOff(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Uniform("off"))
	logger.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		ActorID:   testutil.MemberID,
		Success:   true,
	})

	events, err := store.Query(ctx, audit.QueryFilter{ActorID: testutil.MemberID})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 0 {
		t.Error("expected no events when config is 'off'")
	}
}

func TestLogger_Log_PerCategory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Config{
		Auth:  "log",
		Admin: "db",
		Tasks: "all",
	})
	req := httptest.NewRequest("POST", "/", nil)
	actor := auditlog.Actor{ID: testutil.SuperAdminID, Name: "Admin"}

	logger.LoginSuccess(ctx, req, actor)
	logger.DistrictAssigned(ctx, req, actor, testutil.DistrictID, "Merkez")
	logger.TasksCreated(ctx, req, actor, "Yönetim", "2026-W03", "batch-1", 3, 0)

	events, err := store.Query(ctx, audit.QueryFilter{ActorID: testutil.SuperAdminID})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 stored events (admin + tasks), got %d", len(events))
	}
	types := map[string]audit.Event{}
	for _, e := range events {
		types[e.EventType] = e
	}
	if _, ok := types[audit.EventLoginSuccess]; ok {
		t.Error("auth events configured as 'log' must not be stored")
	}
	tc, ok := types[audit.EventTasksCreated]
	if !ok {
		t.Fatal("expected tasks_created event")
	}
	if tc.Details["week"] != "2026-W03" || tc.Details["created"] != "3" {
		t.Errorf("unexpected details: %v", tc.Details)
	}
}

func TestLogger_LoginFailed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, zap.NewNop(), auditlog.Uniform("db"))

	req := httptest.NewRequest("POST", "/login", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	req.Header.Set("User-Agent", "TestBrowser/1.0")
	logger.LoginFailed(ctx, req, audit.EventLoginFailedWrongPassword, testutil.MemberID, "wrong password")

	events, err := store.Query(ctx, audit.QueryFilter{Category: audit.CategoryAuth})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	e := events[0]
	if e.Success {
		t.Error("expected Success to be false")
	}
	if e.FailureReason != "wrong password" {
		t.Errorf("FailureReason: got %q", e.FailureReason)
	}
	if e.IP != "192.168.1.1:12345" || e.UserAgent != "TestBrowser/1.0" {
		t.Errorf("request metadata: ip=%q ua=%q", e.IP, e.UserAgent)
	}
	if e.Details["attempted_national_id"] != testutil.MemberID {
		t.Errorf("details: %v", e.Details)
	}
}

func TestLogger_PasswordSetWithoutRequest(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := audit.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	logger := auditlog.New(store, nil, auditlog.Config{})
	logger.PasswordSet(ctx, auditlog.Actor{ID: "cli"}, testutil.MemberID, true)

	events, err := store.Query(ctx, audit.QueryFilter{EventType: audit.EventPasswordSet})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(events) != 1 || events[0].Details["created"] != "true" {
		t.Errorf("unexpected events: %+v", events)
	}
}
