package main

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/georgewallace/claytargettracker-sub000/cmd/cli/commands"
	"github.com/georgewallace/claytargettracker-sub000/internal/config"
	"github.com/georgewallace/claytargettracker-sub000/pkg/boltstore"
	"github.com/georgewallace/claytargettracker-sub000/pkg/core/services"
	"github.com/georgewallace/claytargettracker-sub000/pkg/metrics"
	"github.com/georgewallace/claytargettracker-sub000/pkg/postgres"
	"github.com/georgewallace/claytargettracker-sub000/pkg/utils/logging"
)

var (
	env     string
	verbose bool
	app     = &commands.AppContext{}
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "squads",
		Short: "Squad assignment for shooting tournaments",
		Long:  `A CLI tool for placing registered athletes into squads and time slots without schedule conflicts.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			closeApp()
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show debug logs on the console")
	rootCmd.MarkPersistentFlagRequired("env")

	rootCmd.AddCommand(commands.MigrateCmd(app))
	rootCmd.AddCommand(commands.SeedCmd(app))
	rootCmd.AddCommand(commands.DefineTimeSlotsCmd(app))
	rootCmd.AddCommand(commands.AllocateSquadsCmd(app))
	rootCmd.AddCommand(commands.AssignAthleteCmd(app))
	rootCmd.AddCommand(commands.UnassignAthleteCmd(app))
	rootCmd.AddCommand(commands.DeleteEmptySquadsCmd(app))
	rootCmd.AddCommand(commands.ViewSquadsCmd(app))
	rootCmd.AddCommand(commands.InteractiveCmd(app))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config, storage and metrics
func initApp() error {
	var err error
	app.Ctx = context.Background()

	app.Logger, err = logging.InitLogger(env, verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	app.Logger.Info("Starting application", zap.String("environment", env))

	app.Logger.Info("Loading configuration")
	app.Cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Logger.Debug("Configuration loaded successfully", zap.String("storage", app.Cfg.Storage))

	switch app.Cfg.Storage {
	case config.StoragePostgres:
		app.Logger.Info("Connecting to postgres")
		database, err := postgres.NewDB(app.Ctx, app.Cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		app.Database, app.Seeder, app.Migrator = database, database, database
	case config.StorageBolt:
		app.Logger.Info("Opening bolt database", zap.String("path", app.Cfg.BoltPath))
		database, err := boltstore.Open(app.Cfg.BoltPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		app.Database, app.Seeder = database, database
	default:
		return fmt.Errorf("unsupported storage %q", app.Cfg.Storage)
	}

	app.Locks = services.NewTournamentLocks()
	app.Metrics = metrics.NewNop()
	if app.Cfg.MetricsAddr != "" {
		app.Registry = prometheus.NewRegistry()
		app.Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		app.Metrics = metrics.NewPrometheus(app.Registry, "")
		app.Logger.Debug("Prometheus metrics enabled", zap.String("addr", app.Cfg.MetricsAddr))
	}

	return nil
}

func closeApp() {
	if app.Database != nil {
		if err := app.Database.Close(); err != nil && app.Logger != nil {
			app.Logger.Warn("Failed to close database", zap.Error(err))
		}
	}
	if app.Logger != nil {
		app.Logger.Sync()
	}
}
