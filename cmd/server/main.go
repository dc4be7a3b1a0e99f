package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/RESPONDR/respondr/internal/alerting"
	"github.com/RESPONDR/respondr/internal/api"
	"github.com/RESPONDR/respondr/internal/config"
	"github.com/RESPONDR/respondr/internal/crowd"
	"github.com/RESPONDR/respondr/internal/database"
	"github.com/RESPONDR/respondr/internal/logging"
	"github.com/RESPONDR/respondr/internal/metrics"
	"github.com/RESPONDR/respondr/internal/reputation"
	"github.com/RESPONDR/respondr/internal/server"
	"github.com/RESPONDR/respondr/internal/triage"
	"log/slog"
	"net/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to init logger", "error", err)
		os.Exit(1)
	}

	logger.Info("starting respondr")

	// Repositories: postgres when DATABASE_URL is set, in-memory otherwise.
	var (
		callerRepo   reputation.Repository
		crowdRepo    crowd.Repository
		incidentRepo api.IncidentStore
	)
	if cfg.Database.URL != "" {
		logger.Info("connecting to database")
		db, err := database.Open(cfg.Database.URL)
		if err != nil {
			logger.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		logger.Info("database connected")

		// Non-fatal so the app can start even when migrations fail
		if err := database.RunMigrations(db, cfg.Database.MigrationsDir, logger); err != nil {
			logger.Warn("failed to run migrations, continuing anyway", "error", err)
		}

		callerRepo = database.NewPostgresCallerRepository(db)
		crowdRepo = database.NewPostgresCrowdRepository(db)
		incidentRepo = database.NewPostgresIncidentRepository(db)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory stores")
		callerRepo = reputation.NewMemoryRepository()
		crowdRepo = crowd.NewMemoryRepository()
		incidentRepo = database.NewMemoryIncidentRepository()
	}

	// Triage engine
	tables := triage.DefaultRiskTables()
	scorer := triage.NewSeverityScorer(tables)
	ledger := reputation.NewLedger(callerRepo, nil)
	estimator := triage.NewPrankEstimator(tables, ledger)
	policy := triage.NewPolicy(ledger, logger)

	// Crowd monitoring with optional Kafka anomaly alerting
	var publisher crowd.AlertPublisher
	if len(cfg.Alerting.KafkaBrokers) > 0 {
		kafkaPublisher := alerting.NewKafkaPublisher(cfg.Alerting.KafkaBrokers, cfg.Alerting.Topic, logger)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
		logger.Info("kafka alerting enabled", "brokers", cfg.Alerting.KafkaBrokers, "topic", cfg.Alerting.Topic)
	} else {
		logger.Info("kafka alerting disabled, anomalies logged only")
	}
	monitor := crowd.NewMonitor(crowdRepo, publisher, nil, logger)

	collector, err := metrics.NewCollector()
	if err != nil {
		logger.Error("failed to init metrics", "error", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	handler := api.NewHandler(scorer, estimator, policy, ledger, incidentRepo, monitor, collector, logger)
	api.SetupRoutes(mux, handler)

	srv := server.New(cfg.Server, logger, collector.InstrumentHandler(mux))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := srv.Shutdown(context.Background()); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}
