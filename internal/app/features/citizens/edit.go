// internal/app/features/citizens/edit.go
package citizens

import (
	"errors"
	"net/http"
	"strings"

	apierrors "github.com/dalemusser/mahallehub/internal/app/features/errors"
	citizenstore "github.com/dalemusser/mahallehub/internal/app/store/citizens"
	"github.com/dalemusser/mahallehub/internal/app/system/authz"
	"github.com/dalemusser/mahallehub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/mahallehub/internal/app/system/inputval"
	"github.com/dalemusser/mahallehub/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
)

type editInput struct {
	FullName string `json:"full_name" validate:"notblank,max=200"`
	Phone    string `json:"phone" validate:"max=32"`
	Duty     string `json:"duty" validate:"max=500"`
}

// HandleEdit handles POST /citizens/{nationalID}/edit. Only administrators
// with write access to the citizen's neighborhood may edit. District and
// neighborhood are import-owned and not editable here.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := authz.FromRequest(r)
	if !ok {
		apierrors.Unauthorized(w, r, "sign in required")
		return
	}
	if !id.IsSuperAdmin() && !id.IsDistrictAdmin() {
		apierrors.Unauthorized(w, r, "only administrators can edit citizens")
		return
	}
	nid := chi.URLParam(r, "nationalID")
	if !inputval.IsValidNationalID(nid) {
		apierrors.Validation(w, "national ID must be 11 digits")
		return
	}
	if err := r.ParseForm(); err != nil {
		apierrors.Validation(w, "could not parse form")
		return
	}
	in := editInput{
		FullName: strings.TrimSpace(r.PostFormValue("full_name")),
		Phone:    strings.TrimSpace(r.PostFormValue("phone")),
		Duty:     htmlsanitize.PlainText(r.PostFormValue("duty")),
	}
	if err := inputval.Struct(in); err != nil {
		apierrors.Validation(w, err.Error())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "citizen edit")
	defer cancel()

	c, err := h.Citizens.GetByNationalID(ctx, nid)
	if errors.Is(err, mongo.ErrNoDocuments) {
		apierrors.NotFound(w, "citizen not found")
		return
	}
	if err != nil {
		apierrors.Storage(w, h.Log, "citizen edit: load", err)
		return
	}

	allowed, err := h.Scope.CanWriteNeighborhood(ctx, id, c.Neighborhood)
	if err != nil {
		apierrors.Storage(w, h.Log, "citizen edit: scope check", err)
		return
	}
	if !allowed {
		apierrors.Unauthorized(w, r, "citizen is outside your scope")
		return
	}

	upd := citizenstore.CitizenUpdate{FullName: in.FullName, Phone: &in.Phone, Duty: in.Duty}
	if err := h.Citizens.Update(ctx, nid, upd); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			apierrors.NotFound(w, "citizen not found")
			return
		}
		apierrors.Storage(w, h.Log, "citizen edit: update", err)
		return
	}

	h.Notifier.CitizensChanged(ctx, "citizen edited")
	h.AuditLog.CitizenUpdated(ctx, r, actor(id), nid)

	updated, err := h.Citizens.GetByNationalID(ctx, nid)
	if err != nil {
		apierrors.Storage(w, h.Log, "citizen edit: reload", err)
		return
	}
	apierrors.WriteJSON(w, http.StatusOK, map[string]any{"citizen": updated})
}
