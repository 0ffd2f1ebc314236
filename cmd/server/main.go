package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vehicletracker/internal/api/router"
	"vehicletracker/internal/cache"
	"vehicletracker/internal/config"
	"vehicletracker/internal/core/repository"
	"vehicletracker/internal/core/service"
	"vehicletracker/internal/events"
	"vehicletracker/internal/metrics"
	"vehicletracker/internal/routing"
	"vehicletracker/internal/stream"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("configuration failed", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Metrics are optional; nil interfaces keep the hooks off.
	var (
		collector        *metrics.Collector
		trackingMetrics  service.TrackingMetrics
		publisherMetrics events.PublisherMetrics
		hubMetrics       stream.HubMetrics
	)
	if cfg.MetricsEnabled {
		collector = metrics.NewCollector()
		trackingMetrics, publisherMetrics, hubMetrics = collector, collector, collector
	}

	// History journal
	rideRepo, closeHistory, err := openHistory(ctx, cfg)
	if err != nil {
		slog.Error("history store unavailable", "backend", cfg.HistoryBackend, "error", err)
		os.Exit(1)
	}
	defer closeHistory()

	// Routing with optional Redis geometry cache
	routeCache := cache.NewRouteCache(cfg.RedisURL, cfg.RouteCacheTTL)
	defer routeCache.Close()
	var routeClient *routing.Client
	if routeCache.Enabled() {
		routeClient = routing.NewClient(cfg.OSRMBaseURL, cfg.OSRMTimeout, routeCache)
	} else {
		routeClient = routing.NewClient(cfg.OSRMBaseURL, cfg.OSRMTimeout, nil)
	}

	publisher, err := openPublisher(cfg, publisherMetrics)
	if err != nil {
		slog.Error("event publisher unavailable", "backend", cfg.EventsBackend, "error", err)
		os.Exit(1)
	}

	hub := stream.NewHub(hubMetrics)

	// Initialize repositories and services
	vehicleRepo := repository.NewFileVehicleRepository(cfg.VehiclesFile)
	traceService := service.NewTraceService(routeClient, service.TraceConfig{
		SampleInterval:  cfg.SampleInterval,
		RideProbability: cfg.RideProbability,
	})
	historyService := service.NewHistoryService(rideRepo, nil)
	trackingService := service.NewTrackingService(vehicleRepo, traceService, historyService, service.TrackingHooks{
		Publisher:   publisher,
		Broadcaster: hub,
		Metrics:     trackingMetrics,
	})

	handler := router.NewRouter(router.Dependencies{
		Tracking:  trackingService,
		History:   historyService,
		Vehicles:  vehicleRepo,
		Health:    rideRepo,
		Live:      hub.ServeWS,
		Metrics:   collector,
		StaticDir: cfg.StaticDir,
	})

	srv := &http.Server{
		Addr:        cfg.Addr(),
		Handler:     handler,
		ReadTimeout: 10 * time.Second,
		// live trace waits on the routing provider
		WriteTimeout: cfg.OSRMTimeout + 10*time.Second,
	}

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		slog.Info("shutting down...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		hub.CloseAll()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("http shutdown failed", "error", err)
		}
		if err := publisher.Close(); err != nil {
			slog.Error("event publisher close failed", "error", err)
		}
		close(done)
	}()

	slog.Info("server listening",
		"addr", cfg.Addr(),
		"history_backend", cfg.HistoryBackend,
		"events_backend", cfg.EventsBackend,
		"route_cache", routeCache.Enabled(),
	)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	<-done
	slog.Info("shutdown complete")
}

func openHistory(ctx context.Context, cfg *config.Config) (repository.RideRepository, func(), error) {
	switch cfg.HistoryBackend {
	case "mongo":
		db, err := config.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		repo := repository.NewMongoRideRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			return nil, nil, fmt.Errorf("ensure ride indexes: %w", err)
		}
		return repo, func() { _ = db.Client().Disconnect(context.Background()) }, nil

	case "postgres":
		pool, err := config.ConnectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		repo := repository.NewPostgresRideRepository(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ensure ride schema: %w", err)
		}
		return repo, pool.Close, nil

	case "memory":
		slog.Warn("history is kept in memory and lost on restart")
		return repository.NewInMemoryRideRepository(), func() {}, nil

	default:
		return repository.NewFileRideRepository(cfg.HistoryFile), func() {}, nil
	}
}

func openPublisher(cfg *config.Config, m events.PublisherMetrics) (events.Publisher, error) {
	switch cfg.EventsBackend {
	case "nats":
		p, err := events.NewNATSPublisher(cfg.NATSURL, cfg.NATSSubjectPrefix, m)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "kafka":
		return events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, m), nil
	default:
		return events.NopPublisher{}, nil
	}
}
