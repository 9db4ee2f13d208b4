// internal/app/features/calltasks/delete.go
package calltasks

import (
	"net/http"
	"strings"

	apierrors "github.com/dalemusser/mahallehub/internal/app/features/errors"
	"github.com/dalemusser/mahallehub/internal/app/system/inputval"
	"github.com/dalemusser/mahallehub/internal/app/system/timeouts"
)

type deleteInput struct {
	Neighborhood string `json:"neighborhood" validate:"notblank"`
	Week         string `json:"week" validate:"required,weeklabel"`
}

// HandleDelete handles POST /calltasks/delete with neighborhood and week.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		apierrors.Validation(w, "could not parse form")
		return
	}
	in := deleteInput{
		Neighborhood: strings.TrimSpace(r.PostFormValue("neighborhood")),
		Week:         strings.TrimSpace(r.PostFormValue("week")),
	}
	if err := inputval.Struct(in); err != nil {
		apierrors.Validation(w, err.Error())
		return
	}
	hood, week := in.Neighborhood, in.Week

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "calltasks delete")
	defer cancel()

	n, err := h.Board.DeleteWeek(ctx, hood, week, id)
	if err != nil {
		apierrors.FromError(w, r, h.Log, "calltasks delete", err)
		return
	}

	h.AuditLog.TasksDeleted(ctx, r, actor(id), hood, week, n)
	apierrors.WriteJSON(w, http.StatusOK, map[string]any{"deleted": n})
}
