// internal/app/features/assignments/handler.go
package assignments

import (
	"context"
	"net/http"

	apierrors "github.com/dalemusser/mahallehub/internal/app/features/errors"
	"github.com/dalemusser/mahallehub/internal/app/policy/scopepolicy"
	"github.com/dalemusser/mahallehub/internal/app/store/districtassign"
	"github.com/dalemusser/mahallehub/internal/app/store/neighborhoodassign"
	"github.com/dalemusser/mahallehub/internal/app/system/auditlog"
	"github.com/dalemusser/mahallehub/internal/app/system/authz"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ScopeChecker is the subset of scopepolicy.Policy used here.
type ScopeChecker interface {
	Calculate(ctx context.Context, id authz.Identity) (scopepolicy.Scope, error)
	CanWriteNeighborhood(ctx context.Context, id authz.Identity, neighborhood string) (bool, error)
}

// Handler administers district and neighborhood assignments.
type Handler struct {
	Districts     *districtassign.Store
	Neighborhoods *neighborhoodassign.Store
	Scope         ScopeChecker
	AuditLog      *auditlog.Logger
	Log           *zap.Logger
}

func NewHandler(db *mongo.Database, scope ScopeChecker, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Districts:     districtassign.New(db),
		Neighborhoods: neighborhoodassign.New(db),
		Scope:         scope,
		AuditLog:      audit,
		Log:           logger,
	}
}

func actor(id authz.Identity) auditlog.Actor {
	return auditlog.Actor{ID: id.NationalID, Name: id.Name}
}

// admin returns the caller when they are a super-admin or district admin.
func admin(w http.ResponseWriter, r *http.Request) (authz.Identity, bool) {
	id, ok := authz.FromRequest(r)
	if !ok {
		apierrors.Unauthorized(w, r, "sign in required")
		return id, false
	}
	if !authz.HasAnyRole(r, authz.RoleSuperAdmin, authz.RoleDistrictAdmin) {
		apierrors.Unauthorized(w, r, "only administrators can manage assignments")
		return id, false
	}
	return id, true
}
