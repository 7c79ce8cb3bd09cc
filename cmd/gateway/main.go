package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/cmips/portal-gateway/internal/api"
	"github.com/cmips/portal-gateway/internal/api/handler"
	"github.com/cmips/portal-gateway/internal/core/ports"
	"github.com/cmips/portal-gateway/internal/core/service"
	"github.com/cmips/portal-gateway/internal/infrastructure/db/mongo"
	"github.com/cmips/portal-gateway/internal/infrastructure/db/redis"
	"github.com/cmips/portal-gateway/internal/infrastructure/scheduler"
	"github.com/cmips/portal-gateway/internal/infrastructure/upstream"
	"github.com/cmips/portal-gateway/internal/pkg/config"
	"github.com/cmips/portal-gateway/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.Init(logger.Options{Service: "portal-gateway"})
		boot.Fatal().Err(err).Msg("load config")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "portal-gateway",
	})

	rdb, err := redis.Connect(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect redis")
	}
	defer rdb.Close()

	health := map[string]handler.HealthCheck{
		"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	}

	// Audit is optional: sessions keep working without Mongo.
	var audit ports.SessionEventRepository
	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  "portal-gateway",
	})
	if err != nil {
		log.Warn().Err(err).Msg("session audit disabled")
	} else {
		defer disconnect(mongoClient)

		repo := mongo.NewSessionEventRepository(db)
		if err := repo.EnsureIndexes(ctx, cfg.Mongo.AuditRetention); err != nil {
			log.Warn().Err(err).Msg("ensure audit indexes")
		}
		audit = repo
		health["mongodb"] = func(ctx context.Context) error { return mongoClient.Ping(ctx, readpref.Primary()) }
	}

	backend := upstream.NewClient(cfg.Upstream.BackendURL, cfg.Upstream.Timeout, logger.Component("backend"))
	schedulerClient := scheduler.NewClient(cfg.Upstream.SchedulerURL, cfg.Upstream.Timeout, logger.Component("scheduler"))

	sessions := service.NewSessionService(redis.NewSessionStore(rdb), backend, audit, logger.Component("session"))
	dashboards := service.NewDashboardService(backend, backend, schedulerClient, logger.Component("dashboard"))

	e := api.NewRouter(api.Deps{
		Config:     cfg,
		Log:        logger.Component("http"),
		Sessions:   sessions,
		Dashboards: dashboards,
		Backend:    backend,
		Scheduler:  schedulerClient,
		Health:     health,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("portal gateway listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown")
	}
}

func disconnect(client *mongodriver.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = client.Disconnect(ctx)
}
