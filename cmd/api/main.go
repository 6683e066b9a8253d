package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/leadfunnel-backend/api/routes"
	"github.com/angelmondragon/leadfunnel-backend/internal/bonus"
	"github.com/angelmondragon/leadfunnel-backend/internal/leads"
	"github.com/angelmondragon/leadfunnel-backend/internal/paymentgroups"
	"github.com/angelmondragon/leadfunnel-backend/internal/proofs"
	"github.com/angelmondragon/leadfunnel-backend/internal/users"
	"github.com/angelmondragon/leadfunnel-backend/pkg/config"
	"github.com/angelmondragon/leadfunnel-backend/pkg/db"
	"github.com/angelmondragon/leadfunnel-backend/pkg/logger"
	"github.com/angelmondragon/leadfunnel-backend/pkg/metrics"
	"github.com/angelmondragon/leadfunnel-backend/pkg/migrate"
	"github.com/angelmondragon/leadfunnel-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return err
		}
		defer func() {
			err = multierr.Append(err, redisClient.Close())
		}()
	} else {
		logg.Warn(ctx, "redis not configured, idempotency and capture rate limit disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	funnelMetrics := metrics.NewFunnelMetrics(registry)

	svcs, err := buildServices(cfg, logg, dbClient, funnelMetrics)
	if err != nil {
		return err
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, dbClient, redisClient, registry, svcs),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(logCtx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func buildServices(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, m *metrics.FunnelMetrics) (routes.Services, error) {
	gdb := dbClient.DB()
	userRepo := users.NewRepository(gdb)
	leadRepo := leads.NewRepository(gdb)
	proofRepo := proofs.NewRepository(gdb)
	maxProofBytes := cfg.Proofs.MaxBytes()

	bonusService, err := bonus.NewService(bonus.NewRepository(gdb), userRepo, dbClient, logg, m)
	if err != nil {
		return routes.Services{}, err
	}
	leadService, err := leads.NewService(leadRepo, dbClient, bonusService, userRepo, logg, m)
	if err != nil {
		return routes.Services{}, err
	}
	proofService, err := proofs.NewService(proofRepo, dbClient, maxProofBytes, logg)
	if err != nil {
		return routes.Services{}, err
	}
	groupService, err := paymentgroups.NewService(paymentgroups.Deps{
		Repo:          paymentgroups.NewRepository(gdb),
		Leads:         leadRepo,
		Proofs:        proofRepo,
		Users:         userRepo,
		Ledger:        bonusService,
		Tx:            dbClient,
		Logger:        logg,
		Metrics:       m,
		MaxProofBytes: maxProofBytes,
	})
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Leads:         leadService,
		Proofs:        proofService,
		PaymentGroups: groupService,
		Bonus:         bonusService,
	}, nil
}
