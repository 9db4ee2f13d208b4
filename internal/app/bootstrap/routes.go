// internal/app/bootstrap/routes.go
package bootstrap

import (
	"crypto/sha256"
	"net/http"

	assignmentsfeature "github.com/dalemusser/mahallehub/internal/app/features/assignments"
	auditlogfeature "github.com/dalemusser/mahallehub/internal/app/features/auditlog"
	calltasksfeature "github.com/dalemusser/mahallehub/internal/app/features/calltasks"
	citizensfeature "github.com/dalemusser/mahallehub/internal/app/features/citizens"
	apierrors "github.com/dalemusser/mahallehub/internal/app/features/errors"
	healthfeature "github.com/dalemusser/mahallehub/internal/app/features/health"
	loginfeature "github.com/dalemusser/mahallehub/internal/app/features/login"
	logoutfeature "github.com/dalemusser/mahallehub/internal/app/features/logout"
	userinfofeature "github.com/dalemusser/mahallehub/internal/app/features/userinfo"
	"github.com/dalemusser/mahallehub/internal/app/system/auth"
	"github.com/dalemusser/mahallehub/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// Middleware order: CSRF protection, session user, identity resolution.
// Identity (role, districts, neighborhood) is resolved from the assignment
// collections on every request, so assignment changes apply immediately.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	db := deps.MongoDatabase
	svc := NewServices(db, appCfg, logger)
	warmer := startWorkers(svc, appCfg, logger)

	r := chi.NewRouter()

	if !secure {
		// csrf assumes TLS and checks the Referer unless told otherwise.
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, csrf.PlaintextHTTPRequest(req))
			})
		})
	}
	csrfKey := sha256.Sum256([]byte("csrf:" + appCfg.SessionKey))
	r.Use(csrf.Protect(csrfKey[:],
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.RequestHeader("X-CSRF-Token"),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			apierrors.Forbidden(w, "missing or invalid CSRF token")
		})),
	))
	r.Use(sessionMgr.LoadSessionUser)
	r.Use(svc.Resolver.Middleware(logger))

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, warmer, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication
	loginHandler := loginfeature.NewHandler(db, sessionMgr, svc.Resolver, ratelimit.NewLoginLimiter(), svc.AuditLog, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, svc.AuditLog, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	meHandler := userinfofeature.NewHandler(svc.Scope, logger)
	r.Mount("/me", userinfofeature.Routes(meHandler, sessionMgr))

	// Weekly call tasks
	tasksHandler := calltasksfeature.NewHandler(svc.Engine, svc.Tracker, svc.Board, svc.AuditLog, logger)
	r.Mount("/calltasks", calltasksfeature.Routes(tasksHandler, sessionMgr))

	// Citizens and assignment administration
	citizensHandler := citizensfeature.NewHandler(db, svc.Scope, svc.DistrictIndex, svc.Notifier, svc.AuditLog, logger)
	r.Mount("/citizens", citizensfeature.Routes(citizensHandler, sessionMgr))

	assignHandler := assignmentsfeature.NewHandler(db, svc.Scope, svc.AuditLog, logger)
	r.Mount("/assignments", assignmentsfeature.Routes(assignHandler, sessionMgr))

	auditHandler := auditlogfeature.NewHandler(db, logger)
	r.Mount("/audit", auditlogfeature.Routes(auditHandler, sessionMgr))

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		apierrors.NotFound(w, "no such endpoint")
	})

	return r, nil
}
