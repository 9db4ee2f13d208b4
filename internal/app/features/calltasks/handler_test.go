package calltasks_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/mahallehub/internal/app/features/calltasks"
	"github.com/dalemusser/mahallehub/internal/app/policy/scopepolicy"
	"github.com/dalemusser/mahallehub/internal/app/store/audit"
	calltaskstore "github.com/dalemusser/mahallehub/internal/app/store/calltasks"
	citizenstore "github.com/dalemusser/mahallehub/internal/app/store/citizens"
	"github.com/dalemusser/mahallehub/internal/app/system/auditlog"
	"github.com/dalemusser/mahallehub/internal/app/system/districtindex"
	"github.com/dalemusser/mahallehub/internal/app/system/taskassign"
	"github.com/dalemusser/mahallehub/internal/domain/models"
	"github.com/dalemusser/mahallehub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const week = "2026-W03"

func newHandler(t *testing.T) (*calltasks.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	log := zap.NewNop()

	citizens := citizenstore.New(db)
	tasks := calltaskstore.New(db)
	scope := scopepolicy.New(citizens, districtindex.NewCache(citizens, time.Minute, log))
	clock := func() time.Time { return time.Date(2026, 1, 14, 10, 0, 0, 0, time.UTC) }

	h := calltasks.NewHandler(
		taskassign.NewEngine(citizens, tasks, scope, log, taskassign.WithClock(clock)),
		taskassign.NewTracker(tasks, scope, false, log),
		taskassign.NewBoard(tasks, scope, log),
		auditlog.New(audit.New(db), log, auditlog.Uniform("db")),
		log,
	)
	return h, db
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("bad json %q: %v", rec.Body.String(), err)
	}
}

type createBody struct {
	Outcome taskassign.Outcome `json:"outcome"`
	Error   *struct {
		Kind string `json:"kind"`
	} `json:"error"`
}

func TestHandleCreate_ThenRepeatIsSoftError(t *testing.T) {
	h, db := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	fx.CreateCitizens(ctx, 3, "5000", "Merkez", "Yönetim")

	form := url.Values{"neighborhood": {"Yönetim"}, "week": {week}, "count": {"10"}}

	rec := httptest.NewRecorder()
	h.HandleCreate(rec, testutil.WithIdentity(testutil.NewFormRequest("/calltasks", form), testutil.Assignee))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}
	var first createBody
	decode(t, rec, &first)
	if first.Outcome.Created != 3 || first.Error != nil {
		t.Errorf("first run: %+v", first)
	}

	rec = httptest.NewRecorder()
	h.HandleCreate(rec, testutil.WithIdentity(testutil.NewFormRequest("/calltasks", form), testutil.Assignee))
	if rec.Code != http.StatusOK {
		t.Fatalf("repeat status: got %d", rec.Code)
	}
	var second createBody
	decode(t, rec, &second)
	if second.Outcome.Created != 0 {
		t.Errorf("repeat created %d tasks", second.Outcome.Created)
	}
	if second.Error == nil || second.Error.Kind != taskassign.KindNoEligibleCitizens {
		t.Errorf("expected no_eligible_citizens, got %+v", second.Error)
	}

	events, _ := audit.New(db).Query(ctx, audit.QueryFilter{EventType: audit.EventTasksCreated})
	if len(events) != 1 {
		t.Errorf("expected one tasks_created event, got %d", len(events))
	}
}

func TestHandleCreate_OutOfScope(t *testing.T) {
	h, db := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	testutil.NewFixtures(t, db).CreateCitizens(ctx, 2, "5100", "Kuzey", "Liman")

	form := url.Values{"neighborhood": {"Liman"}, "week": {week}}
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, testutil.WithIdentity(testutil.NewFormRequest("/calltasks", form), testutil.DistrictAdmin))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestHandleCreate_BadInput(t *testing.T) {
	h, _ := newHandler(t)

	cases := []url.Values{
		{"neighborhood": {""}, "week": {week}},
		{"neighborhood": {"Yönetim"}, "week": {"2026-3"}},
		{"neighborhood": {"Yönetim"}, "count": {"ten"}},
	}
	for _, form := range cases {
		rec := httptest.NewRecorder()
		h.HandleCreate(rec, testutil.WithIdentity(testutil.NewFormRequest("/calltasks", form), testutil.SuperAdmin))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%v: got %d", form, rec.Code)
		}
	}
}

func TestHandleStatus(t *testing.T) {
	h, db := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	c := fx.CreateCitizen(ctx, "52000000001", "Ayşe Yılmaz", "05551112233", "Merkez", "Yönetim")
	task := fx.CreateTask(ctx, c, week)

	send := func(form url.Values) *httptest.ResponseRecorder {
		req := testutil.NewFormRequest("/calltasks/"+task.ID.Hex()+"/status", form)
		req = testutil.WithChiURLParam(req, "id", task.ID.Hex())
		rec := httptest.NewRecorder()
		h.HandleStatus(rec, testutil.WithIdentity(req, testutil.Assignee))
		return rec
	}

	rec := send(url.Values{"status": {models.TaskCalled}, "note": {"ulaşıldı"}})
	if rec.Code != http.StatusOK {
		t.Fatalf("called: got %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Task models.CallTask `json:"task"`
	}
	decode(t, rec, &resp)
	if resp.Task.Status != models.TaskCalled || resp.Task.CalledAt == nil {
		t.Errorf("after called: %+v", resp.Task)
	}

	rec = send(url.Values{"status": {models.TaskPending}})
	decode(t, rec, &resp)
	if resp.Task.Status != models.TaskPending || resp.Task.CalledAt != nil {
		t.Errorf("after pending: %+v", resp.Task)
	}
	if resp.Task.Note == nil || *resp.Task.Note != "ulaşıldı" {
		t.Errorf("note should be kept, got %v", resp.Task.Note)
	}

	if rec := send(url.Values{"status": {"done"}}); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid status: got %d", rec.Code)
	}
}

func TestHandleStatus_UnknownTask(t *testing.T) {
	h, _ := newHandler(t)

	req := testutil.NewFormRequest("/calltasks/x/status", url.Values{"status": {models.TaskCalled}})
	req = testutil.WithChiURLParam(req, "id", "65a000000000000000000000")
	rec := httptest.NewRecorder()
	h.HandleStatus(rec, testutil.WithIdentity(req, testutil.Member))
	if rec.Code != http.StatusNotFound {
		t.Errorf("got %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestServeOverview(t *testing.T) {
	h, db := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	for _, c := range fx.CreateCitizens(ctx, 2, "5300", "Merkez", "Yönetim") {
		fx.CreateTask(ctx, c, week)
	}

	req := httptest.NewRequest("GET", "/calltasks/overview?neighborhood=Y%C3%B6netim&week="+week, nil)
	rec := httptest.NewRecorder()
	h.ServeOverview(rec, testutil.WithIdentity(req, testutil.Assignee))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Tasks []models.CallTask              `json:"tasks"`
		Stats []models.NeighborhoodWeekStats `json:"stats"`
	}
	decode(t, rec, &resp)
	if len(resp.Tasks) != 2 {
		t.Errorf("tasks: got %d", len(resp.Tasks))
	}
	if len(resp.Stats) != 1 || resp.Stats[0].Pending != 2 {
		t.Errorf("stats: %+v", resp.Stats)
	}
}

func TestServeStats_MemberIsForbidden(t *testing.T) {
	h, _ := newHandler(t)
	rec := httptest.NewRecorder()
	h.ServeStats(rec, testutil.WithIdentity(httptest.NewRequest("GET", "/calltasks/stats?week="+week, nil), testutil.Member))
	if rec.Code != http.StatusForbidden {
		t.Errorf("got %d", rec.Code)
	}
}

func TestHandleDelete(t *testing.T) {
	h, db := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	for _, c := range fx.CreateCitizens(ctx, 2, "5400", "Merkez", "Yönetim") {
		fx.CreateTask(ctx, c, week)
	}

	form := url.Values{"neighborhood": {"Yönetim"}, "week": {week}}
	rec := httptest.NewRecorder()
	h.HandleDelete(rec, testutil.WithIdentity(testutil.NewFormRequest("/calltasks/delete", form), testutil.SuperAdmin))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Deleted int64 `json:"deleted"`
	}
	decode(t, rec, &resp)
	if resp.Deleted != 2 {
		t.Errorf("deleted: got %d", resp.Deleted)
	}
}

func TestWeekLabelValidation(t *testing.T) {
	h, _ := newHandler(t)

	rec := httptest.NewRecorder()
	form := url.Values{"neighborhood": {"Yönetim"}, "week": {"2026-W3"}}
	h.HandleCreate(rec, testutil.WithIdentity(testutil.NewFormRequest("/calltasks", form), testutil.SuperAdmin))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("create: got %d", rec.Code)
	}
	var resp struct {
		Error struct {
			Kind    string `json:"kind"`
			Message string `json:"message"`
		} `json:"error"`
	}
	decode(t, rec, &resp)
	if resp.Error.Kind != "validation" || !strings.Contains(resp.Error.Message, "week must look like 2026-W03") {
		t.Errorf("create error: %+v", resp.Error)
	}

	for _, form := range []url.Values{
		{"neighborhood": {"Yönetim"}},
		{"neighborhood": {"Yönetim"}, "week": {"W03-2026"}},
	} {
		rec := httptest.NewRecorder()
		h.HandleDelete(rec, testutil.WithIdentity(testutil.NewFormRequest("/calltasks/delete", form), testutil.SuperAdmin))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("delete %v: got %d", form, rec.Code)
		}
	}
}

func TestRequiresIdentity(t *testing.T) {
	h, _ := newHandler(t)
	rec := httptest.NewRecorder()
	h.ServeList(rec, httptest.NewRequest("GET", "/calltasks", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("got %d", rec.Code)
	}
}
