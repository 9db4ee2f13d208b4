// internal/app/features/citizens/handler.go
package citizens

import (
	"context"

	"github.com/dalemusser/mahallehub/internal/app/policy/scopepolicy"
	citizenstore "github.com/dalemusser/mahallehub/internal/app/store/citizens"
	"github.com/dalemusser/mahallehub/internal/app/system/auditlog"
	"github.com/dalemusser/mahallehub/internal/app/system/authz"
	"github.com/dalemusser/mahallehub/internal/app/system/citizenimport"
	"github.com/dalemusser/mahallehub/internal/app/system/invalidate"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ScopeChecker is the subset of scopepolicy.Policy used here.
type ScopeChecker interface {
	Calculate(ctx context.Context, id authz.Identity) (scopepolicy.Scope, error)
	CanReadNeighborhood(ctx context.Context, id authz.Identity, neighborhood string) (bool, error)
	CanWriteNeighborhood(ctx context.Context, id authz.Identity, neighborhood string) (bool, error)
}

// Handler serves citizen listing, CSV import and admin edits.
type Handler struct {
	Citizens *citizenstore.Store
	Scope    ScopeChecker
	Importer *citizenimport.Importer
	Notifier invalidate.Notifier
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

// NewHandler builds the citizens handler. index backs the district checks of
// restricted CSV imports.
func NewHandler(db *mongo.Database, scope ScopeChecker, index citizenimport.IndexSource, notifier invalidate.Notifier, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	if notifier == nil {
		notifier = invalidate.Nop{}
	}
	store := citizenstore.New(db)
	return &Handler{
		Citizens: store,
		Scope:    scope,
		Importer: citizenimport.New(store, index, notifier, logger),
		Notifier: notifier,
		AuditLog: audit,
		Log:      logger,
	}
}

func actor(id authz.Identity) auditlog.Actor {
	return auditlog.Actor{ID: id.NationalID, Name: id.Name}
}
