// Command tracecheck generates traces for one registry vehicle without the
// HTTP server or the history journal, timing each attempt so cold routing
// calls can be compared with Redis cache hits.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"time"

	"vehicletracker/internal/cache"
	"vehicletracker/internal/config"
	"vehicletracker/internal/core/repository"
	"vehicletracker/internal/core/service"
	"vehicletracker/internal/routing"
)

func main() {
	vehicleID := flag.String("vehicle", "", "moving vehicle id from the registry")
	runs := flag.Int("n", 5, "number of traces to generate")
	dump := flag.Bool("dump", false, "print the last trace as JSON")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("configuration failed", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	if *vehicleID == "" {
		slog.Error("-vehicle is required")
		os.Exit(2)
	}

	ctx := context.Background()
	vehicle, err := repository.NewFileVehicleRepository(cfg.VehiclesFile).FindMoving(ctx, *vehicleID)
	if err != nil {
		slog.Error("read registry failed", "error", err)
		os.Exit(1)
	}
	if vehicle == nil {
		slog.Error("vehicle is not a moving vehicle", "vehicle_id", *vehicleID)
		os.Exit(1)
	}

	routeCache := cache.NewRouteCache(cfg.RedisURL, cfg.RouteCacheTTL)
	defer routeCache.Close()

	var client *routing.Client
	if routeCache.Enabled() {
		// start cold so the first run measures the provider
		source := routing.Coordinate{Lat: vehicle.StartLat, Lon: vehicle.StartLng}
		target := routing.Coordinate{Lat: vehicle.EndLat, Lon: vehicle.EndLng}
		_ = routeCache.Delete(ctx, routing.CacheKey(source, target))
		client = routing.NewClient(cfg.OSRMBaseURL, cfg.OSRMTimeout, routeCache)
	} else {
		client = routing.NewClient(cfg.OSRMBaseURL, cfg.OSRMTimeout, nil)
	}

	traces := service.NewTraceService(client, service.TraceConfig{
		SampleInterval:  cfg.SampleInterval,
		RideProbability: cfg.RideProbability,
	})

	var last any
	for i := 0; i < *runs; i++ {
		start := time.Now()
		samples := traces.Generate(ctx, vehicle.VehicleID, vehicle.StartLat, vehicle.StartLng, vehicle.EndLat, vehicle.EndLng)
		slog.Info("trace generated",
			"run", i+1,
			"points", len(samples),
			"duration", time.Since(start),
			"cached", routeCache.Enabled() && i > 0,
		)
		last = samples
	}

	if *dump {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "    ")
		if err := enc.Encode(last); err != nil {
			slog.Error("encode trace failed", "error", err)
			os.Exit(1)
		}
	}
}
