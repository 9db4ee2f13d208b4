// internal/app/features/login/handler.go
package login

import (
	"errors"
	"net/http"
	"strings"

	apierrors "github.com/dalemusser/mahallehub/internal/app/features/errors"
	accountstore "github.com/dalemusser/mahallehub/internal/app/store/accounts"
	"github.com/dalemusser/mahallehub/internal/app/store/audit"
	"github.com/dalemusser/mahallehub/internal/app/system/auditlog"
	"github.com/dalemusser/mahallehub/internal/app/system/auth"
	"github.com/dalemusser/mahallehub/internal/app/system/authz"
	"github.com/dalemusser/mahallehub/internal/app/system/inputval"
	"github.com/dalemusser/mahallehub/internal/app/system/ratelimit"
	"github.com/dalemusser/mahallehub/internal/app/system/timeouts"
	"github.com/gorilla/csrf"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger
	Accounts   *accountstore.Store
	Resolver   *authz.Resolver
	Limiter    *ratelimit.LoginLimiter
}

// NewHandler builds the login handler. A nil limiter disables throttling.
func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, resolver *authz.Resolver, limiter *ratelimit.LoginLimiter, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		AuditLog:   audit,
		Accounts:   accountstore.New(db),
		Resolver:   resolver,
		Limiter:    limiter,
	}
}

type loginInput struct {
	NationalID string `json:"national_id" validate:"required,nationalid"`
	Password   string `json:"password" validate:"required"`
}

// invalidCredentials is the single message for every credential failure so
// that responses do not reveal which national IDs have accounts.
const invalidCredentials = "national ID or password is incorrect"

// ServeLogin handles GET /login and hands out the CSRF token the client
// must echo in the X-CSRF-Token header of every POST.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	apierrors.WriteJSON(w, http.StatusOK, map[string]string{"csrf_token": csrf.Token(r)})
}

// HandleLogin handles POST /login with national_id and password form fields.
// On success it sets the session cookie and returns the resolved identity.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		apierrors.Validation(w, "could not parse form")
		return
	}
	in := loginInput{
		NationalID: strings.TrimSpace(r.PostFormValue("national_id")),
		Password:   r.PostFormValue("password"),
	}
	if err := inputval.Struct(in); err != nil {
		apierrors.Validation(w, err.Error())
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "login")
	defer cancel()

	if h.Limiter != nil {
		if ok, reason := h.Limiter.Check(r, in.NationalID); !ok {
			h.AuditLog.LoginFailed(ctx, r, audit.EventLoginFailedRateLimit, in.NationalID, "rate limited")
			apierrors.TooManyRequests(w, reason)
			return
		}
	}

	acct, err := h.Accounts.Authenticate(ctx, in.NationalID, in.Password)
	switch {
	case errors.Is(err, accountstore.ErrNotFound):
		h.AuditLog.LoginFailed(ctx, r, audit.EventLoginFailedUnknownID, in.NationalID, "unknown national id")
		apierrors.Unauthenticated(w, invalidCredentials)
		return
	case errors.Is(err, accountstore.ErrWrongPassword):
		h.AuditLog.LoginFailed(ctx, r, audit.EventLoginFailedWrongPassword, in.NationalID, "wrong password")
		apierrors.Unauthenticated(w, invalidCredentials)
		return
	case errors.Is(err, accountstore.ErrDisabled):
		h.AuditLog.LoginFailed(ctx, r, audit.EventLoginFailedDisabled, in.NationalID, "account disabled")
		apierrors.Unauthenticated(w, invalidCredentials)
		return
	case err != nil:
		apierrors.Storage(w, h.Log, "login: authenticate", err)
		return
	}

	id, err := h.Resolver.Resolve(ctx, acct.NationalID, acct.DisplayName)
	if err != nil {
		apierrors.Storage(w, h.Log, "login: resolve identity", err)
		return
	}

	if err := h.SessionMgr.SignIn(w, r, auth.SessionUser{NationalID: acct.NationalID, Name: acct.DisplayName}); err != nil {
		apierrors.Storage(w, h.Log, "login: save session", err)
		return
	}

	if h.Limiter != nil {
		h.Limiter.ResetNationalID(acct.NationalID)
	}
	h.AuditLog.LoginSuccess(ctx, r, auditlog.Actor{ID: acct.NationalID, Name: acct.DisplayName})
	h.Log.Info("signed in", zap.String("national_id", acct.NationalID), zap.String("role", string(id.Role)))

	apierrors.WriteJSON(w, http.StatusOK, map[string]any{"identity": id})
}
