// internal/app/features/auditlog/list.go
package auditlog

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	apierrors "github.com/dalemusser/mahallehub/internal/app/features/errors"
	"github.com/dalemusser/mahallehub/internal/app/store/audit"
	"github.com/dalemusser/mahallehub/internal/app/system/authz"
	"github.com/dalemusser/mahallehub/internal/app/system/timeouts"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// ServeList handles GET /audit. Query params: category, event_type, actor,
// start_date and end_date (YYYY-MM-DD), limit.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	if !authz.IsSuperAdmin(r) {
		apierrors.Unauthorized(w, r, "only super-admins can read the audit log")
		return
	}

	q := r.URL.Query()
	filter := audit.QueryFilter{
		Category:  strings.TrimSpace(q.Get("category")),
		EventType: strings.TrimSpace(q.Get("event_type")),
		ActorID:   strings.TrimSpace(q.Get("actor")),
		Limit:     defaultLimit,
	}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 {
		if n > maxLimit {
			n = maxLimit
		}
		filter.Limit = int64(n)
	}
	if s := strings.TrimSpace(q.Get("start_date")); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			apierrors.Validation(w, "start_date must be YYYY-MM-DD")
			return
		}
		filter.StartTime = &t
	}
	if s := strings.TrimSpace(q.Get("end_date")); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			apierrors.Validation(w, "end_date must be YYYY-MM-DD")
			return
		}
		// End of day
		endOfDay := t.Add(24*time.Hour - time.Second)
		filter.EndTime = &endOfDay
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "audit log list")
	defer cancel()

	events, err := h.Events.Query(ctx, filter)
	if err != nil {
		apierrors.Storage(w, h.Log, "audit log list", err)
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	apierrors.WriteJSON(w, http.StatusOK, map[string]any{"events": events})
}
