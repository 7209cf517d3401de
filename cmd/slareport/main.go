// Command slareport prints the current review-queue SLA snapshot as JSON.
// It is intended to be invoked by an external cron job feeding the admin
// dashboard, not as an in-process goroutine.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/resolvehub/trustengine-backend/internal/adapter/postgres"
	verificationpg "github.com/resolvehub/trustengine-backend/internal/adapter/postgres/verification"
	"github.com/resolvehub/trustengine-backend/internal/app"
	"github.com/resolvehub/trustengine-backend/internal/config"
	"github.com/resolvehub/trustengine-backend/internal/service/verification"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	requests := verificationpg.New(pool)
	monitor := verification.NewSLAMonitor(clockwork.NewRealClock())

	inFlight, err := requests.ListInFlight(ctx)
	if err != nil {
		logger.Error("list in-flight requests", slog.String("error", err.Error()))
		os.Exit(1)
	}

	stats := monitor.Stats(inFlight, cfg.Verification.SLAWindowHours)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(stats); err != nil {
		logger.Error("encode report", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("sla report completed",
		slog.Int("in_flight", stats.InFlight),
		slog.Int("overdue", stats.Overdue),
	)
}
