// internal/app/features/userinfo/handler.go
package userinfo

import (
	"context"
	"net/http"

	apierrors "github.com/dalemusser/mahallehub/internal/app/features/errors"
	"github.com/dalemusser/mahallehub/internal/app/policy/scopepolicy"
	"github.com/dalemusser/mahallehub/internal/app/system/authz"
	"github.com/dalemusser/mahallehub/internal/app/system/timeouts"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// ScopeCalculator computes the neighborhood scope of an identity.
type ScopeCalculator interface {
	Calculate(ctx context.Context, id authz.Identity) (scopepolicy.Scope, error)
}

type Handler struct {
	Scope ScopeCalculator
	Log   *zap.Logger
}

func NewHandler(scope ScopeCalculator, logger *zap.Logger) *Handler {
	return &Handler{Scope: scope, Log: logger}
}

type meResponse struct {
	Identity  authz.Identity    `json:"identity"`
	Scope     scopepolicy.Scope `json:"scope"`
	CSRFToken string            `json:"csrf_token,omitempty"`
}

// ServeMe returns the caller's identity, scope and a CSRF token for
// subsequent POST requests.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	id, ok := authz.FromRequest(r)
	if !ok {
		apierrors.Unauthorized(w, r, "sign in required")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "me: scope")
	defer cancel()

	scope, err := h.Scope.Calculate(ctx, id)
	if err != nil {
		apierrors.Storage(w, h.Log, "me: calculate scope", err)
		return
	}

	apierrors.WriteJSON(w, http.StatusOK, meResponse{
		Identity:  id,
		Scope:     scope,
		CSRFToken: csrf.Token(r),
	})
}
