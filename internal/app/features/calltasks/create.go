// internal/app/features/calltasks/create.go
package calltasks

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	apierrors "github.com/dalemusser/mahallehub/internal/app/features/errors"
	"github.com/dalemusser/mahallehub/internal/app/system/inputval"
	"github.com/dalemusser/mahallehub/internal/app/system/taskassign"
	"github.com/dalemusser/mahallehub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type createInput struct {
	Neighborhood string `json:"neighborhood" validate:"notblank"`
	Week         string `json:"week" validate:"omitempty,weeklabel"`
}

type createResponse struct {
	Outcome taskassign.Outcome `json:"outcome"`
	Error   *apierrors.Detail  `json:"error,omitempty"`
}

// HandleCreate handles POST /calltasks with neighborhood, week and count form
// fields. An exhausted pool answers 200 with the outcome and a
// no_eligible_citizens error object.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := caller(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		apierrors.Validation(w, "could not parse form")
		return
	}

	in := createInput{
		Neighborhood: strings.TrimSpace(r.PostFormValue("neighborhood")),
		Week:         strings.TrimSpace(r.PostFormValue("week")),
	}
	if err := inputval.Struct(in); err != nil {
		apierrors.Validation(w, err.Error())
		return
	}

	req := taskassign.Request{Neighborhood: in.Neighborhood, Week: in.Week}
	if s := strings.TrimSpace(r.PostFormValue("count")); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			apierrors.Validation(w, "count must be a number")
			return
		}
		req.Count = n
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "calltasks create")
	defer cancel()

	out, err := h.Engine.CreateWeeklyTasks(ctx, req, id)
	switch {
	case errors.Is(err, taskassign.ErrNoEligibleCitizens):
		apierrors.WriteJSON(w, http.StatusOK, createResponse{
			Outcome: out,
			Error:   &apierrors.Detail{Kind: taskassign.KindNoEligibleCitizens, Message: err.Error()},
		})
		return
	case err != nil:
		apierrors.FromError(w, r, h.Log, "calltasks create", err)
		return
	}

	h.AuditLog.TasksCreated(ctx, r, actor(id), req.Neighborhood, out.Week, out.BatchID, out.Created, out.Failed)
	h.Log.Info("weekly call tasks created",
		zap.String("neighborhood", req.Neighborhood),
		zap.String("week", out.Week),
		zap.Int("created", out.Created))

	apierrors.WriteJSON(w, http.StatusOK, createResponse{Outcome: out})
}
