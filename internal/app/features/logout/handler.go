package logout

import (
	"net/http"

	apierrors "github.com/dalemusser/mahallehub/internal/app/features/errors"
	"github.com/dalemusser/mahallehub/internal/app/system/auditlog"
	"github.com/dalemusser/mahallehub/internal/app/system/auth"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger
}

func NewHandler(sessionMgr *auth.SessionManager, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		AuditLog:   audit,
	}
}

// HandleLogout handles POST /logout.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if u, ok := auth.CurrentUser(r); ok {
		h.AuditLog.Logout(r.Context(), r, auditlog.Actor{ID: u.NationalID, Name: u.Name})
	}
	if err := h.SessionMgr.SignOut(w, r); err != nil {
		// The client still drops the cookie on its own MaxAge; report but don't fail.
		h.Log.Error("logout: save session", zap.Error(err))
	}
	apierrors.WriteJSON(w, http.StatusOK, map[string]string{"status": "signed_out"})
}
