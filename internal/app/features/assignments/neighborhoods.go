// internal/app/features/assignments/neighborhoods.go
package assignments

import (
	"errors"
	"net/http"
	"strings"

	apierrors "github.com/dalemusser/mahallehub/internal/app/features/errors"
	"github.com/dalemusser/mahallehub/internal/app/system/inputval"
	"github.com/dalemusser/mahallehub/internal/app/system/timeouts"
	"github.com/dalemusser/mahallehub/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type neighborhoodInput struct {
	NationalID   string `json:"national_id" validate:"required,nationalid"`
	Neighborhood string `json:"neighborhood" validate:"notblank,max=120"`
}

// ServeNeighborhoods handles GET /assignments/neighborhoods and lists the
// assignments inside the caller's scope.
func (h *Handler) ServeNeighborhoods(w http.ResponseWriter, r *http.Request) {
	id, ok := admin(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "neighborhood assignments list")
	defer cancel()

	scope, err := h.Scope.Calculate(ctx, id)
	if err != nil {
		apierrors.Storage(w, h.Log, "neighborhood assignments: scope", err)
		return
	}
	list, err := h.Neighborhoods.ListByNeighborhoods(ctx, scope.Filter())
	if err != nil {
		apierrors.Storage(w, h.Log, "neighborhood assignments list", err)
		return
	}
	if list == nil {
		list = []models.NeighborhoodAssignment{}
	}
	apierrors.WriteJSON(w, http.StatusOK, map[string]any{"assignments": list})
}

// HandleAssignNeighborhood handles POST /assignments/neighborhoods. An
// existing assignment is replaced; the caller needs write access to both the
// old and the new neighborhood.
func (h *Handler) HandleAssignNeighborhood(w http.ResponseWriter, r *http.Request) {
	id, ok := admin(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		apierrors.Validation(w, "could not parse form")
		return
	}
	in := neighborhoodInput{
		NationalID:   strings.TrimSpace(r.PostFormValue("national_id")),
		Neighborhood: strings.TrimSpace(r.PostFormValue("neighborhood")),
	}
	if err := inputval.Struct(in); err != nil {
		apierrors.Validation(w, err.Error())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "neighborhood assign")
	defer cancel()

	targets := []string{in.Neighborhood}
	prev, err := h.Neighborhoods.GetByNationalID(ctx, in.NationalID)
	switch {
	case err == nil && prev.Neighborhood != in.Neighborhood:
		targets = append(targets, prev.Neighborhood)
	case err != nil && !errors.Is(err, mongo.ErrNoDocuments):
		apierrors.Storage(w, h.Log, "neighborhood assign: load", err)
		return
	}
	for _, hood := range targets {
		allowed, err := h.Scope.CanWriteNeighborhood(ctx, id, hood)
		if err != nil {
			apierrors.Storage(w, h.Log, "neighborhood assign: scope check", err)
			return
		}
		if !allowed {
			apierrors.Unauthorized(w, r, "neighborhood is outside your scope")
			return
		}
	}

	a, err := h.Neighborhoods.Set(ctx, models.NeighborhoodAssignment{
		NationalID:    in.NationalID,
		Neighborhood:  in.Neighborhood,
		CreatedByID:   id.NationalID,
		CreatedByName: id.Name,
	})
	if err != nil {
		apierrors.Storage(w, h.Log, "neighborhood assign", err)
		return
	}

	h.AuditLog.NeighborhoodAssigned(ctx, r, actor(id), in.NationalID, in.Neighborhood)
	h.Log.Info("neighborhood assigned", zap.String("national_id", in.NationalID), zap.String("neighborhood", in.Neighborhood))
	apierrors.WriteJSON(w, http.StatusOK, map[string]any{"assignment": a})
}

// HandleUnassignNeighborhood handles POST /assignments/neighborhoods/delete.
func (h *Handler) HandleUnassignNeighborhood(w http.ResponseWriter, r *http.Request) {
	id, ok := admin(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		apierrors.Validation(w, "could not parse form")
		return
	}
	nid := strings.TrimSpace(r.PostFormValue("national_id"))
	if !inputval.IsValidNationalID(nid) {
		apierrors.Validation(w, "national ID must be 11 digits")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "neighborhood unassign")
	defer cancel()

	prev, err := h.Neighborhoods.GetByNationalID(ctx, nid)
	if errors.Is(err, mongo.ErrNoDocuments) {
		apierrors.NotFound(w, "assignment not found")
		return
	}
	if err != nil {
		apierrors.Storage(w, h.Log, "neighborhood unassign: load", err)
		return
	}
	allowed, err := h.Scope.CanWriteNeighborhood(ctx, id, prev.Neighborhood)
	if err != nil {
		apierrors.Storage(w, h.Log, "neighborhood unassign: scope check", err)
		return
	}
	if !allowed {
		apierrors.Unauthorized(w, r, "neighborhood is outside your scope")
		return
	}

	n, err := h.Neighborhoods.Delete(ctx, nid)
	if err != nil {
		apierrors.Storage(w, h.Log, "neighborhood unassign", err)
		return
	}

	h.AuditLog.NeighborhoodUnassigned(ctx, r, actor(id), nid)
	apierrors.WriteJSON(w, http.StatusOK, map[string]any{"deleted": n})
}
