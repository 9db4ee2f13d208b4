// internal/app/features/assignments/districts.go
package assignments

import (
	"errors"
	"net/http"
	"strings"

	apierrors "github.com/dalemusser/mahallehub/internal/app/features/errors"
	"github.com/dalemusser/mahallehub/internal/app/policy/scopepolicy"
	"github.com/dalemusser/mahallehub/internal/app/store/districtassign"
	"github.com/dalemusser/mahallehub/internal/app/system/inputval"
	"github.com/dalemusser/mahallehub/internal/app/system/timeouts"
	"github.com/dalemusser/mahallehub/internal/domain/models"
	"go.uber.org/zap"
)

type districtInput struct {
	NationalID string `json:"national_id" validate:"required,nationalid"`
	District   string `json:"district" validate:"notblank,max=120"`
}

func readDistrictInput(r *http.Request) (districtInput, error) {
	if err := r.ParseForm(); err != nil {
		return districtInput{}, err
	}
	in := districtInput{
		NationalID: strings.TrimSpace(r.PostFormValue("national_id")),
		District:   strings.TrimSpace(r.PostFormValue("district")),
	}
	return in, inputval.Struct(in)
}

// ServeDistricts handles GET /assignments/districts?district=.
func (h *Handler) ServeDistricts(w http.ResponseWriter, r *http.Request) {
	id, ok := admin(w, r)
	if !ok {
		return
	}
	if !scopepolicy.CanManageDistricts(id) {
		apierrors.Unauthorized(w, r, "only super-admins manage district assignments")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "district assignments list")
	defer cancel()

	list, err := h.Districts.List(ctx, strings.TrimSpace(r.URL.Query().Get("district")))
	if err != nil {
		apierrors.Storage(w, h.Log, "district assignments list", err)
		return
	}
	if list == nil {
		list = []models.DistrictAssignment{}
	}
	apierrors.WriteJSON(w, http.StatusOK, map[string]any{"assignments": list})
}

// HandleAssignDistrict handles POST /assignments/districts.
func (h *Handler) HandleAssignDistrict(w http.ResponseWriter, r *http.Request) {
	id, ok := admin(w, r)
	if !ok {
		return
	}
	if !scopepolicy.CanManageDistricts(id) {
		apierrors.Unauthorized(w, r, "only super-admins manage district assignments")
		return
	}
	in, err := readDistrictInput(r)
	if err != nil {
		apierrors.Validation(w, err.Error())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "district assign")
	defer cancel()

	a, err := h.Districts.Create(ctx, models.DistrictAssignment{
		NationalID:    in.NationalID,
		District:      in.District,
		CreatedByID:   id.NationalID,
		CreatedByName: id.Name,
	})
	if errors.Is(err, districtassign.ErrDuplicate) {
		apierrors.Validation(w, err.Error())
		return
	}
	if err != nil {
		apierrors.Storage(w, h.Log, "district assign", err)
		return
	}

	h.AuditLog.DistrictAssigned(ctx, r, actor(id), in.NationalID, in.District)
	h.Log.Info("district assigned", zap.String("national_id", in.NationalID), zap.String("district", in.District))
	apierrors.WriteJSON(w, http.StatusOK, map[string]any{"assignment": a})
}

// HandleUnassignDistrict handles POST /assignments/districts/delete.
func (h *Handler) HandleUnassignDistrict(w http.ResponseWriter, r *http.Request) {
	id, ok := admin(w, r)
	if !ok {
		return
	}
	if !scopepolicy.CanManageDistricts(id) {
		apierrors.Unauthorized(w, r, "only super-admins manage district assignments")
		return
	}
	in, err := readDistrictInput(r)
	if err != nil {
		apierrors.Validation(w, err.Error())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "district unassign")
	defer cancel()

	n, err := h.Districts.Delete(ctx, in.NationalID, in.District)
	if err != nil {
		apierrors.Storage(w, h.Log, "district unassign", err)
		return
	}
	if n == 0 {
		apierrors.NotFound(w, "assignment not found")
		return
	}

	h.AuditLog.DistrictUnassigned(ctx, r, actor(id), in.NationalID, in.District)
	apierrors.WriteJSON(w, http.StatusOK, map[string]any{"deleted": n})
}
