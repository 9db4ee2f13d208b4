// internal/app/features/citizens/list.go
package citizens

import (
	"net/http"
	"strings"

	apierrors "github.com/dalemusser/mahallehub/internal/app/features/errors"
	citizenstore "github.com/dalemusser/mahallehub/internal/app/store/citizens"
	"github.com/dalemusser/mahallehub/internal/app/system/authz"
	"github.com/dalemusser/mahallehub/internal/app/system/paging"
	"github.com/dalemusser/mahallehub/internal/app/system/timeouts"
	"github.com/dalemusser/mahallehub/internal/domain/models"
)

// ServeList handles GET /citizens?neighborhood=&q=&limit=&after=&before=.
// Without a neighborhood it lists across the caller's whole scope. Results
// are paged by name; the response carries the cursors of the next and
// previous pages.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	id, ok := authz.FromRequest(r)
	if !ok {
		apierrors.Unauthorized(w, r, "sign in required")
		return
	}
	hood := strings.TrimSpace(r.URL.Query().Get("neighborhood"))
	q := strings.TrimSpace(r.URL.Query().Get("q"))

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "citizens list")
	defer cancel()

	filter := citizenstore.ListFilter{Search: q}
	if hood != "" {
		allowed, err := h.Scope.CanReadNeighborhood(ctx, id, hood)
		if err != nil {
			apierrors.Storage(w, h.Log, "citizens list: scope check", err)
			return
		}
		if !allowed {
			apierrors.Unauthorized(w, r, "neighborhood is outside your scope")
			return
		}
		filter.Neighborhoods = []string{hood}
	} else {
		scope, err := h.Scope.Calculate(ctx, id)
		if err != nil {
			apierrors.Storage(w, h.Log, "citizens list: scope", err)
			return
		}
		if scope.Empty() {
			apierrors.Unauthorized(w, r, "")
			return
		}
		filter.Neighborhoods = scope.Filter()
	}

	list, page, err := h.Citizens.List(ctx, filter, paging.ParseRequest(r))
	if err != nil {
		apierrors.Storage(w, h.Log, "citizens list", err)
		return
	}
	if list == nil {
		list = []models.Citizen{}
	}
	apierrors.WriteJSON(w, http.StatusOK, map[string]any{"citizens": list, "page": page})
}
