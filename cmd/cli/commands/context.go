package commands

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/georgewallace/claytargettracker-sub000/internal/config"
	"github.com/georgewallace/claytargettracker-sub000/pkg/core/services"
	"github.com/georgewallace/claytargettracker-sub000/pkg/db"
	"github.com/georgewallace/claytargettracker-sub000/pkg/metrics"
)

// Migrator applies schema migrations. Only stores with a schema implement it.
type Migrator interface {
	RunMigrations(ctx context.Context) error
}

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Cfg      *config.Config
	Database db.Database
	Seeder   db.Seeder

	// Migrator is nil for stores without a schema
	Migrator Migrator

	Locks   *services.TournamentLocks
	Metrics metrics.Collector

	// Registry holds the Prometheus metrics served in interactive mode (nil when disabled)
	Registry *prometheus.Registry

	Logger *zap.Logger
	Ctx    context.Context
}
