// internal/app/features/calltasks/status.go
package calltasks

import (
	"net/http"

	apierrors "github.com/dalemusser/mahallehub/internal/app/features/errors"
	"github.com/dalemusser/mahallehub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
)

// HandleStatus handles POST /calltasks/{id}/status with status and an
// optional note. Omitting the note field keeps the stored note. Notes are
// ignored when moving back to pending.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		apierrors.Validation(w, "could not parse form")
		return
	}

	var note *string
	if vals, present := r.PostForm["note"]; present && len(vals) > 0 {
		n := vals[0]
		note = &n
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "calltasks status")
	defer cancel()

	taskID := chi.URLParam(r, "id")
	upd, err := h.Tracker.UpdateStatus(ctx, taskID, r.PostFormValue("status"), note, id)
	if err != nil {
		apierrors.FromError(w, r, h.Log, "calltasks status", err)
		return
	}

	h.AuditLog.TaskStatusChanged(ctx, r, actor(id), taskID, upd.PreviousStatus, upd.Task.Status)
	apierrors.WriteJSON(w, http.StatusOK, map[string]any{"task": upd.Task})
}
