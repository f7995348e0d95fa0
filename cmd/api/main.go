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
	"go.uber.org/multierr"

	"github.com/pooladgaran/campane-backend/api/controllers"
	"github.com/pooladgaran/campane-backend/api/routes"
	"github.com/pooladgaran/campane-backend/internal/campaigns"
	"github.com/pooladgaran/campane-backend/internal/feed"
	"github.com/pooladgaran/campane-backend/internal/items"
	"github.com/pooladgaran/campane-backend/internal/orders"
	"github.com/pooladgaran/campane-backend/pkg/config"
	"github.com/pooladgaran/campane-backend/pkg/db"
	"github.com/pooladgaran/campane-backend/pkg/logger"
	"github.com/pooladgaran/campane-backend/pkg/metrics"
	"github.com/pooladgaran/campane-backend/pkg/migrate"
	"github.com/pooladgaran/campane-backend/pkg/outbox"
	"github.com/pooladgaran/campane-backend/pkg/pubsub"
	redisPkg "github.com/pooladgaran/campane-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "campane-api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "campane-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) error {
	bootCtx := context.Background()

	dbClient, err := db.New(bootCtx, cfg.DB, logg)
	if err != nil {
		return err
	}

	if err := migrate.MaybeRunDev(bootCtx, cfg, logg, dbClient); err != nil {
		return multierr.Append(err, dbClient.Close())
	}

	redisClient, err := redisPkg.New(bootCtx, cfg.Redis, logg)
	if err != nil {
		return multierr.Append(err, dbClient.Close())
	}

	pubsubClient, err := pubsub.NewClient(bootCtx, cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		return multierr.Combine(err, redisClient.Close(), dbClient.Close())
	}

	teardown := func() error {
		return multierr.Combine(
			pubsubClient.Close(),
			redisClient.Close(),
			dbClient.Close(),
		)
	}

	outboxSvc := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	campaignRepo := campaigns.NewRepository(dbClient.DB())
	campaignSvc, err := campaigns.NewService(campaignRepo, dbClient, outboxSvc)
	if err != nil {
		return multierr.Append(err, teardown())
	}

	itemRepo := items.NewRepository(dbClient.DB())
	orderRepo := orders.NewRepository(dbClient.DB())

	syncMetrics := metrics.NewSyncMetrics(prometheus.DefaultRegisterer)
	synchronizer, err := items.NewSynchronizer(itemRepo, orders.NewFinder(orderRepo), dbClient, outboxSvc, syncMetrics, logg)
	if err != nil {
		return multierr.Append(err, teardown())
	}

	orderSvc, err := orders.NewService(orderRepo, dbClient, outboxSvc, campaignSvc, synchronizer, itemRepo, logg)
	if err != nil {
		return multierr.Append(err, teardown())
	}

	editCoordinator, err := orders.NewEditCoordinator(orderSvc, cfg.Items.EditDebounce, logg)
	if err != nil {
		return multierr.Append(err, teardown())
	}
	defer editCoordinator.Stop()

	resolver := feed.NewCachedResolver(feed.NewDBResolver(dbClient.DB()), redisClient, cfg.Feed.ResolverCacheTTL)
	boardFeed, err := feed.New(itemRepo, resolver, cfg.Feed, metrics.NewFeedMetrics(prometheus.DefaultRegisterer), logg)
	if err != nil {
		return multierr.Append(err, teardown())
	}
	defer boardFeed.Close()

	stream, err := feed.NewStream(pubsubClient.BoardSubscription(), boardFeed, logg)
	if err != nil {
		return multierr.Append(err, teardown())
	}

	router := routes.NewRouter(routes.Dependencies{
		Config:     cfg,
		Logger:     logg,
		Campaigns:  campaignSvc,
		Orders:     orderSvc,
		ItemEditor: editCoordinator,
		Board:      boardFeed,
		Totals:     itemRepo,
		Pingers: map[string]controllers.Pinger{
			"database": dbClient,
			"redis":    redisClient,
			"pubsub":   pubsubClient,
		},
	})

	server := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": "api",
	})

	streamErr := make(chan error, 1)
	go func() { streamErr <- stream.Run(ctx) }()

	serverErr := make(chan error, 1)
	go func() {
		logg.Info(logg.WithField(ctx, "port", cfg.App.Port), "api listening")
		serverErr <- server.ListenAndServe()
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logg.Info(ctx, "shutdown signal received")
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			runErr = err
		}
	case err := <-streamErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			runErr = err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		runErr = multierr.Append(runErr, err)
	}

	logg.Info(ctx, "api shut down gracefully")
	return multierr.Append(runErr, teardown())
}
