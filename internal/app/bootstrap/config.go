// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/mahallehub/internal/app/system/auditlog"
	"github.com/dalemusser/mahallehub/internal/app/system/districtindex"
	"github.com/dalemusser/mahallehub/internal/app/system/inputval"
	"github.com/dalemusser/mahallehub/internal/app/system/taskassign"
	"github.com/dalemusser/mahallehub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// EnvPrefix prefixes every app environment variable (MAHALLEHUB_MONGO_URI...).
const EnvPrefix = "MAHALLEHUB"

// appConfigKeys defines the configuration keys for mahallehub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: MAHALLEHUB_MONGO_URI, MAHALLEHUB_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "mahallehub", Desc: "MongoDB database name"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "mahallehub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},

	{Name: "superadmin_ids", Default: "", Desc: "Comma separated national IDs with super-admin access"},

	{Name: "default_task_count", Default: taskassign.DefaultCount, Desc: "Tasks created per request when no count is given"},
	{Name: "task_update_scope_check", Default: false, Desc: "Require write scope on the task's neighborhood for status updates"},
	{Name: "district_index_ttl", Default: "5m", Desc: "Cache lifetime of the neighborhood -> district index"},

	// Audit logging settings
	{Name: "audit_log", Default: "all", Desc: "Audit logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_auth", Default: "", Desc: "Override audit_log for auth events"},
	{Name: "audit_log_admin", Default: "", Desc: "Override audit_log for assignment and citizen events"},
	{Name: "audit_log_tasks", Default: "", Desc: "Override audit_log for call-task events"},

	// Handler timeouts (blank keeps the default)
	{Name: "timeout_short", Default: "", Desc: "Timeout for single-document operations"},
	{Name: "timeout_medium", Default: "", Desc: "Timeout for list and stats queries"},
	{Name: "timeout_long", Default: "", Desc: "Timeout for weekly task creation"},
	{Name: "timeout_batch", Default: "", Desc: "Timeout for CSV imports"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges .env files, config files,
// MAHALLEHUB_* environment variables and flags with precedence
// flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, EnvPrefix, appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	audit := appValues.String("audit_log")
	appCfg := AppConfig{
		MongoURI:      appValues.String("mongo_uri"),
		MongoDatabase: appValues.String("mongo_database"),
		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),

		SuperAdminIDs: SplitIDs(appValues.String("superadmin_ids")),

		DefaultTaskCount:     appValues.Int("default_task_count"),
		TaskUpdateScopeCheck: appValues.Bool("task_update_scope_check"),
		DistrictIndexTTL:     appValues.Duration("district_index_ttl", districtindex.DefaultTTL),

		Audit: auditlog.Config{
			Auth:  orDefault(appValues.String("audit_log_auth"), audit),
			Admin: orDefault(appValues.String("audit_log_admin"), audit),
			Tasks: orDefault(appValues.String("audit_log_tasks"), audit),
		},
		Timeouts: timeouts.Config{
			Short:  appValues.Duration("timeout_short", 0),
			Medium: appValues.Duration("timeout_medium", 0),
			Long:   appValues.Duration("timeout_long", 0),
			Batch:  appValues.Duration("timeout_batch", 0),
		},
	}

	return coreCfg, appCfg, nil
}

// SplitIDs parses a comma or whitespace separated list of national IDs.
func SplitIDs(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\n' || r == '\t'
	})
	out := make([]string, 0, len(fields))
	seen := map[string]bool{}
	for _, f := range fields {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

var auditSettings = map[string]bool{"all": true, "db": true, "log": true, "off": true}

// ValidateConfig performs app-specific config validation.
//
// It rejects a malformed MongoDB URI, malformed super-admin IDs and unknown
// audit settings before anything connects.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if strings.TrimSpace(appCfg.MongoDatabase) == "" {
		return fmt.Errorf("mongo_database is required")
	}
	if appCfg.SessionKey == "" {
		return fmt.Errorf("session_key is required")
	}
	for _, id := range appCfg.SuperAdminIDs {
		if !inputval.IsValidNationalID(id) {
			return fmt.Errorf("superadmin_ids: %q is not an 11-digit national ID", id)
		}
	}
	if len(appCfg.SuperAdminIDs) == 0 {
		logger.Warn("no superadmin_ids configured; nobody can manage district assignments")
	}
	if appCfg.DefaultTaskCount < 1 {
		return fmt.Errorf("default_task_count must be at least 1, got %d", appCfg.DefaultTaskCount)
	}
	if appCfg.DistrictIndexTTL < time.Second {
		return fmt.Errorf("district_index_ttl must be at least 1s, got %s", appCfg.DistrictIndexTTL)
	}
	for name, v := range map[string]string{
		"audit_log_auth":  appCfg.Audit.Auth,
		"audit_log_admin": appCfg.Audit.Admin,
		"audit_log_tasks": appCfg.Audit.Tasks,
	} {
		if !auditSettings[v] {
			return fmt.Errorf("%s: unknown setting %q (want all, db, log or off)", name, v)
		}
	}
	return nil
}
