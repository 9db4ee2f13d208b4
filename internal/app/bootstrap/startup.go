// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/mahallehub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time initialization after DB connections and schema setup
// are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(appCfg.Timeouts)
	t := timeouts.Current()
	logger.Info("handler timeouts",
		zap.Duration("short", t.Short),
		zap.Duration("medium", t.Medium),
		zap.Duration("long", t.Long),
		zap.Duration("batch", t.Batch))
	logger.Info("access configuration",
		zap.Int("superadmins", len(appCfg.SuperAdminIDs)),
		zap.Int("default_task_count", appCfg.DefaultTaskCount),
		zap.Bool("task_update_scope_check", appCfg.TaskUpdateScopeCheck))
	return nil
}
