package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/dalemusser/mahallehub/internal/app/bootstrap"
	"github.com/dalemusser/mahallehub/internal/app/system/auditlog"
	"github.com/dalemusser/mahallehub/internal/app/system/districtindex"
	"github.com/dalemusser/mahallehub/internal/app/system/taskassign"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// loadConfig reads the same keys as the server: MAHALLEHUB_* environment
// variables, optionally seeded from a .env file, overridden by flags bound
// to v.
func loadConfig(v *viper.Viper, envFile string) (bootstrap.AppConfig, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return bootstrap.AppConfig{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	v.SetEnvPrefix(bootstrap.EnvPrefix)
	v.AutomaticEnv()
	v.SetTypeByDefaultValue(true)
	v.SetDefault("mongo_uri", "mongodb://localhost:27017")
	v.SetDefault("mongo_database", "mahallehub")
	v.SetDefault("superadmin_ids", "")
	v.SetDefault("default_task_count", taskassign.DefaultCount)
	v.SetDefault("task_update_scope_check", false)
	v.SetDefault("district_index_ttl", districtindex.DefaultTTL)
	v.SetDefault("audit_log", "all")

	cfg := bootstrap.AppConfig{
		MongoURI:             v.GetString("mongo_uri"),
		MongoDatabase:        v.GetString("mongo_database"),
		SessionKey:           "unused-by-the-cli",
		SuperAdminIDs:        bootstrap.SplitIDs(v.GetString("superadmin_ids")),
		DefaultTaskCount:     v.GetInt("default_task_count"),
		TaskUpdateScopeCheck: v.GetBool("task_update_scope_check"),
		DistrictIndexTTL:     v.GetDuration("district_index_ttl"),
		Audit:                auditlog.Uniform(v.GetString("audit_log")),
	}
	return cfg, nil
}

func defaultEnvFile() string {
	if p := os.Getenv("MAHALLEHUB_ENV_FILE"); p != "" {
		return p
	}
	return ".env"
}
