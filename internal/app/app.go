// Package app wires the engine together: configuration, logging, the
// database pool, migrations, and the service graph. Transport is out of
// scope here; the platform mounts the services behind its own API layer.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver for database/sql
	"github.com/jonboulle/clockwork"
	"github.com/pressly/goose/v3"

	"github.com/resolvehub/trustengine-backend/internal/adapter/postgres"
	auditpg "github.com/resolvehub/trustengine-backend/internal/adapter/postgres/audit"
	enforcementpg "github.com/resolvehub/trustengine-backend/internal/adapter/postgres/enforcement"
	escalationpg "github.com/resolvehub/trustengine-backend/internal/adapter/postgres/escalation"
	ratingpg "github.com/resolvehub/trustengine-backend/internal/adapter/postgres/rating"
	verificationpg "github.com/resolvehub/trustengine-backend/internal/adapter/postgres/verification"
	"github.com/resolvehub/trustengine-backend/internal/config"
	auditsvc "github.com/resolvehub/trustengine-backend/internal/service/audit"
	"github.com/resolvehub/trustengine-backend/internal/service/fraud"
	"github.com/resolvehub/trustengine-backend/internal/service/governance"
	"github.com/resolvehub/trustengine-backend/internal/service/trust"
	"github.com/resolvehub/trustengine-backend/internal/service/verification"
	"github.com/resolvehub/trustengine-backend/migrations"
)

// App holds the assembled service graph.
type App struct {
	Trust        *trust.Service
	Verification *verification.Service
	Fraud        *fraud.Service
	Governance   *governance.Service
	Audit        *auditsvc.Service

	pool *pgxpool.Pool
	log  *slog.Logger
}

// New builds the full service graph on top of the given pool.
func New(log *slog.Logger, pool *pgxpool.Pool, cfg *config.Config) (*App, error) {
	clock := clockwork.NewRealClock()
	tx := postgres.NewTxManager(pool)

	requestRepo := verificationpg.New(pool)
	enforcementRepo := enforcementpg.New(pool)
	escalationRepo := escalationpg.New(pool)
	ratingRepo := ratingpg.New(pool, clock)
	auditRepo := auditpg.New(pool)

	fraudSvc := fraud.NewService(log, requestRepo,
		fraud.NewDetector(cfg.Fraud.RejectionThreshold, cfg.Fraud.WindowDays, clock))

	verificationSvc, err := verification.NewService(log, requestRepo, fraudSvc, auditRepo, tx, clock, cfg.Verification)
	if err != nil {
		return nil, fmt.Errorf("build verification service: %w", err)
	}

	trustSvc := trust.NewService(log, ratingRepo, verificationSvc, cfg.Trust)

	governanceSvc := governance.NewService(log, enforcementRepo, escalationRepo,
		fraudSvc, auditRepo, tx, ratingRepo, trustSvc, clock, cfg.Governance)

	return &App{
		Trust:        trustSvc,
		Verification: verificationSvc,
		Fraud:        fraudSvc,
		Governance:   governanceSvc,
		Audit:        auditsvc.NewService(log, auditRepo),
		pool:         pool,
		log:          log,
	}, nil
}

// Close releases the database pool.
func (a *App) Close() {
	a.pool.Close()
}

// Migrate applies pending goose migrations from the embedded FS.
// goose requires *sql.DB, so it opens its own short-lived connection.
func Migrate(ctx context.Context, cfg config.DatabaseConfig) error {
	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("goose new provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	for _, r := range results {
		slog.Info("applied migration", slog.String("source", r.Source.Path))
	}
	return nil
}

// Run is the application entry point. It loads configuration, initializes
// the logger, runs migrations, wires the services, and blocks until the
// context is cancelled.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting trust engine",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	if err := Migrate(ctx, cfg.Database); err != nil {
		return err
	}

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}

	application, err := New(logger, pool, cfg)
	if err != nil {
		pool.Close()
		return err
	}
	defer application.Close()

	logger.Info("trust engine ready")

	<-ctx.Done()
	logger.Info("shutting down")
	return nil
}
