package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dalemusser/mahallehub/internal/app/bootstrap"
	"github.com/dalemusser/mahallehub/internal/app/system/auditlog"
	"github.com/dalemusser/mahallehub/internal/app/system/authz"
	"github.com/dalemusser/mahallehub/internal/app/system/timeouts"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// cliActor is recorded in audit events written by this tool.
var cliActor = auditlog.Actor{ID: "cli", Name: "mahallectl"}

// app carries state shared by subcommands. The database is opened lazily so
// that commands like keygen work without MongoDB.
type app struct {
	out     io.Writer
	v       *viper.Viper
	envFile string
	verbose bool
	timeout time.Duration

	cfg    bootstrap.AppConfig
	log    *zap.Logger
	client *mongo.Client
	db     *mongo.Database
	svc    *bootstrap.Services
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out, v: viper.New()}

	root := &cobra.Command{
		Use:           "mahallectl",
		Short:         "Operate a mahallehub deployment",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(a.v, a.envFile)
			if err != nil {
				return err
			}
			a.cfg = cfg
			timeouts.ConfigureFromEnv(bootstrap.EnvPrefix + "_")
			return a.initLogger()
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.envFile, "env-file", defaultEnvFile(), "dotenv file to load before reading MAHALLEHUB_* variables")
	pf.String("mongo-uri", "", "MongoDB connection URI (overrides MAHALLEHUB_MONGO_URI)")
	pf.String("mongo-database", "", "MongoDB database name (overrides MAHALLEHUB_MONGO_DATABASE)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	pf.DurationVar(&a.timeout, "timeout", 2*time.Minute, "Overall operation timeout")
	_ = a.v.BindPFlag("mongo_uri", pf.Lookup("mongo-uri"))
	_ = a.v.BindPFlag("mongo_database", pf.Lookup("mongo-database"))

	root.AddCommand(
		newIndexesCmd(a),
		newCitizensCmd(a),
		newDistrictCmd(a),
		newNeighborhoodCmd(a),
		newAccountCmd(a),
		newTasksCmd(a),
		newAuditCmd(a),
		newKeygenCmd(a),
	)
	return root
}

func (a *app) initLogger() error {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	if a.verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	log, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	a.log = log
	return nil
}

// context returns a context bounded by --timeout.
func (a *app) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), a.timeout)
}

// services connects on first use.
func (a *app) services(ctx context.Context) (*bootstrap.Services, error) {
	if a.svc != nil {
		return a.svc, nil
	}
	client, err := bootstrap.Connect(ctx, a.cfg.MongoURI)
	if err != nil {
		return nil, err
	}
	a.client = client
	a.db = client.Database(a.cfg.MongoDatabase)
	a.svc = bootstrap.NewServices(a.db, a.cfg, a.log)
	return a.svc, nil
}

func (a *app) close() error {
	if a.log != nil {
		_ = a.log.Sync()
	}
	if a.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return a.client.Disconnect(ctx)
}

// systemIdentity is used when a command runs without --as.
func systemIdentity() authz.Identity {
	return authz.Identity{NationalID: cliActor.ID, Name: cliActor.Name, Role: authz.RoleSuperAdmin}
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
