package service

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"
	"vehicletracker/internal/core/model"
	"vehicletracker/internal/routing"
)

const (
	DefaultSampleInterval  = 30 * time.Second
	DefaultRideProbability = 0.9
)

// RouteProvider returns a driving route as ordered coordinates.
type RouteProvider interface {
	Route(ctx context.Context, source, target routing.Coordinate) ([]routing.Coordinate, error)
}

// TraceService synthesizes GPS traces along provider routes. Generate never
// fails: a missing or unreadable route yields an empty trace.
type TraceService interface {
	Generate(ctx context.Context, vehicleID string, startLat, startLon, endLat, endLon float64) []model.Sample
}

type TraceConfig struct {
	// SampleInterval is the simulated time between consecutive samples.
	SampleInterval time.Duration
	// RideProbability is the chance each sample gets the ride status, in
	// (0, 1]. Anything else falls back to DefaultRideProbability.
	RideProbability float64
	Now             func() time.Time
	// Rand, when set, replaces the global source. Access is serialized.
	Rand *rand.Rand
}

type traceService struct {
	routes          RouteProvider
	interval        time.Duration
	rideProbability float64
	now             func() time.Time

	randMu sync.Mutex
	rng    *rand.Rand
}

func NewTraceService(routes RouteProvider, cfg TraceConfig) TraceService {
	if cfg.SampleInterval <= 0 {
		cfg.SampleInterval = DefaultSampleInterval
	}
	if cfg.RideProbability <= 0 || cfg.RideProbability > 1 {
		cfg.RideProbability = DefaultRideProbability
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &traceService{
		routes:          routes,
		interval:        cfg.SampleInterval,
		rideProbability: cfg.RideProbability,
		now:             cfg.Now,
		rng:             cfg.Rand,
	}
}

func (s *traceService) Generate(ctx context.Context, vehicleID string, startLat, startLon, endLat, endLon float64) []model.Sample {
	route, err := s.routes.Route(ctx,
		routing.Coordinate{Lat: startLat, Lon: startLon},
		routing.Coordinate{Lat: endLat, Lon: endLon},
	)
	if err != nil {
		if errors.Is(err, routing.ErrNoRoute) {
			slog.Info("no route for vehicle", "vehicle_id", vehicleID)
		} else {
			slog.Warn("route fetch failed", "vehicle_id", vehicleID, "error", err)
		}
		return []model.Sample{}
	}

	// every offset is anchored to one origin so the cadence is exact
	origin := s.now().UTC().Truncate(time.Second)
	samples := make([]model.Sample, 0, len(route))
	for i, pt := range route {
		ts := origin.Add(time.Duration(i) * s.interval)
		samples = append(samples, model.NewSample(vehicleID, ts, pt.Lat, pt.Lon, s.status()))
	}

	slog.Debug("trace generated", "vehicle_id", vehicleID, "points", len(samples))
	return samples
}

func (s *traceService) status() model.Status {
	if s.float() < s.rideProbability {
		return model.StatusRide
	}
	return model.StatusBreak
}

func (s *traceService) float() float64 {
	if s.rng == nil {
		return rand.Float64()
	}
	s.randMu.Lock()
	defer s.randMu.Unlock()
	return s.rng.Float64()
}
