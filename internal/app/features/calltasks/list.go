// internal/app/features/calltasks/list.go
package calltasks

import (
	"net/http"
	"strings"

	apierrors "github.com/dalemusser/mahallehub/internal/app/features/errors"
	"github.com/dalemusser/mahallehub/internal/app/system/timeouts"
	"github.com/dalemusser/mahallehub/internal/domain/models"
	"golang.org/x/sync/errgroup"
)

type listResponse struct {
	Neighborhood string            `json:"neighborhood"`
	Week         string            `json:"week"`
	Tasks        []models.CallTask `json:"tasks"`
}

type statsResponse struct {
	Week  string                         `json:"week"`
	Stats []models.NeighborhoodWeekStats `json:"stats"`
}

type overviewResponse struct {
	Neighborhood string                         `json:"neighborhood"`
	Week         string                         `json:"week"`
	Tasks        []models.CallTask              `json:"tasks"`
	Stats        []models.NeighborhoodWeekStats `json:"stats"`
}

// ServeList handles GET /calltasks?neighborhood=&week=.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}
	hood := strings.TrimSpace(r.URL.Query().Get("neighborhood"))
	week := h.weekOrCurrent(strings.TrimSpace(r.URL.Query().Get("week")))

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "calltasks list")
	defer cancel()

	tasks, err := h.Board.ListTasks(ctx, hood, week, id)
	if err != nil {
		apierrors.FromError(w, r, h.Log, "calltasks list", err)
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, listResponse{Neighborhood: hood, Week: week, Tasks: tasks})
}

// ServeStats handles GET /calltasks/stats?week=.
func (h *Handler) ServeStats(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}
	week := h.weekOrCurrent(strings.TrimSpace(r.URL.Query().Get("week")))

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "calltasks stats")
	defer cancel()

	stats, err := h.Board.WeekStats(ctx, week, id)
	if err != nil {
		apierrors.FromError(w, r, h.Log, "calltasks stats", err)
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, statsResponse{Week: week, Stats: stats})
}

// ServeOverview handles GET /calltasks/overview?neighborhood=&week= and loads
// the task list and the week stats concurrently.
func (h *Handler) ServeOverview(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}
	hood := strings.TrimSpace(r.URL.Query().Get("neighborhood"))
	week := h.weekOrCurrent(strings.TrimSpace(r.URL.Query().Get("week")))

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "calltasks overview")
	defer cancel()

	resp := overviewResponse{Neighborhood: hood, Week: week}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		tasks, err := h.Board.ListTasks(gctx, hood, week, id)
		resp.Tasks = tasks
		return err
	})
	g.Go(func() error {
		stats, err := h.Board.WeekStats(gctx, week, id)
		resp.Stats = stats
		return err
	})
	if err := g.Wait(); err != nil {
		apierrors.FromError(w, r, h.Log, "calltasks overview", err)
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, resp)
}
