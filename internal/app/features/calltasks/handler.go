// internal/app/features/calltasks/handler.go
package calltasks

import (
	"net/http"

	apierrors "github.com/dalemusser/mahallehub/internal/app/features/errors"
	"github.com/dalemusser/mahallehub/internal/app/system/auditlog"
	"github.com/dalemusser/mahallehub/internal/app/system/authz"
	"github.com/dalemusser/mahallehub/internal/app/system/taskassign"
	"go.uber.org/zap"
)

// Handler serves the weekly call-task board.
type Handler struct {
	Engine   *taskassign.Engine
	Tracker  *taskassign.Tracker
	Board    *taskassign.Board
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(engine *taskassign.Engine, tracker *taskassign.Tracker, board *taskassign.Board, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Engine:   engine,
		Tracker:  tracker,
		Board:    board,
		AuditLog: audit,
		Log:      logger,
	}
}

// caller returns the resolved identity or writes 401.
func caller(w http.ResponseWriter, r *http.Request) (authz.Identity, bool) {
	id, ok := authz.FromRequest(r)
	if !ok {
		apierrors.Unauthorized(w, r, "sign in required")
	}
	return id, ok
}

func actor(id authz.Identity) auditlog.Actor {
	return auditlog.Actor{ID: id.NationalID, Name: id.Name}
}

// weekOrCurrent defaults an empty week query to the current week.
func (h *Handler) weekOrCurrent(week string) string {
	if week == "" {
		return h.Engine.CurrentWeek()
	}
	return week
}
