// internal/app/bootstrap/services.go
package bootstrap

import (
	"github.com/dalemusser/mahallehub/internal/app/policy/scopepolicy"
	accountstore "github.com/dalemusser/mahallehub/internal/app/store/accounts"
	"github.com/dalemusser/mahallehub/internal/app/store/audit"
	calltaskstore "github.com/dalemusser/mahallehub/internal/app/store/calltasks"
	citizenstore "github.com/dalemusser/mahallehub/internal/app/store/citizens"
	"github.com/dalemusser/mahallehub/internal/app/store/districtassign"
	"github.com/dalemusser/mahallehub/internal/app/store/neighborhoodassign"
	"github.com/dalemusser/mahallehub/internal/app/system/auditlog"
	"github.com/dalemusser/mahallehub/internal/app/system/authz"
	"github.com/dalemusser/mahallehub/internal/app/system/citizenimport"
	"github.com/dalemusser/mahallehub/internal/app/system/districtindex"
	"github.com/dalemusser/mahallehub/internal/app/system/invalidate"
	"github.com/dalemusser/mahallehub/internal/app/system/taskassign"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Services is the domain object graph shared by the HTTP server and the CLI.
type Services struct {
	Citizens           *citizenstore.Store
	Tasks              *calltaskstore.Store
	DistrictAssign     *districtassign.Store
	NeighborhoodAssign *neighborhoodassign.Store
	Accounts           *accountstore.Store
	AuditEvents        *audit.Store

	DistrictIndex *districtindex.Cache
	Notifier      invalidate.Notifier
	Scope         *scopepolicy.Policy
	Resolver      *authz.Resolver

	Engine   *taskassign.Engine
	Tracker  *taskassign.Tracker
	Board    *taskassign.Board
	Importer *citizenimport.Importer
	AuditLog *auditlog.Logger
}

// NewServices wires stores, policies and the task engine over db.
func NewServices(db *mongo.Database, appCfg AppConfig, logger *zap.Logger) *Services {
	s := &Services{
		Citizens:           citizenstore.New(db),
		Tasks:              calltaskstore.New(db),
		DistrictAssign:     districtassign.New(db),
		NeighborhoodAssign: neighborhoodassign.New(db),
		Accounts:           accountstore.New(db),
		AuditEvents:        audit.New(db),
	}

	s.DistrictIndex = districtindex.NewCache(s.Citizens, appCfg.DistrictIndexTTL, logger)
	s.Notifier = invalidate.NewLocal(logger, s.DistrictIndex)
	s.Scope = scopepolicy.New(s.Citizens, s.DistrictIndex)
	s.Resolver = authz.NewResolver(appCfg.SuperAdminIDs, s.DistrictAssign, s.NeighborhoodAssign)

	s.Engine = taskassign.NewEngine(s.Citizens, s.Tasks, s.Scope, logger,
		taskassign.WithDefaultCount(appCfg.DefaultTaskCount))
	s.Tracker = taskassign.NewTracker(s.Tasks, s.Scope, appCfg.TaskUpdateScopeCheck, logger)
	s.Board = taskassign.NewBoard(s.Tasks, s.Scope, logger)
	s.Importer = citizenimport.New(s.Citizens, s.DistrictIndex, s.Notifier, logger)
	s.AuditLog = auditlog.New(s.AuditEvents, logger, appCfg.Audit)
	return s
}
