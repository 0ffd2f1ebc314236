package service

import (
	"context"
	"fmt"
	"log/slog"
	"vehicletracker/internal/core/model"
	"vehicletracker/internal/core/repository"
)

// TraceResult is a delivered live trace together with the outcome of
// recording it. Samples are valid even when HistoryErr is set.
type TraceResult struct {
	VehicleID  string
	Samples    []model.Sample
	Ride       *model.Ride
	Persisted  bool
	HistoryErr error
}

type RideEventPublisher interface {
	PublishRideCompleted(ctx context.Context, ride *model.Ride) error
}

type TraceBroadcaster interface {
	Broadcast(vehicleID string, samples []model.Sample)
}

type TrackingMetrics interface {
	TraceGenerated(points int)
	RouteUnavailable()
	RidePersisted()
	HistoryFailed()
}

// TrackingHooks are the optional side channels of a live trace. Nil fields
// are skipped.
type TrackingHooks struct {
	Publisher   RideEventPublisher
	Broadcaster TraceBroadcaster
	Metrics     TrackingMetrics
}

type TrackingService interface {
	LiveTrace(ctx context.Context, vehicleID string) (*TraceResult, error)
}

type trackingService struct {
	vehicleRepo repository.VehicleRepository
	traces      TraceService
	history     HistoryService
	hooks       TrackingHooks
}

func NewTrackingService(vehicleRepo repository.VehicleRepository, traces TraceService, history HistoryService, hooks TrackingHooks) TrackingService {
	return &trackingService{
		vehicleRepo: vehicleRepo,
		traces:      traces,
		history:     history,
		hooks:       hooks,
	}
}

// LiveTrace generates a trace for a moving vehicle and records it as a ride.
// Only registry failures and unknown vehicles are returned as errors; history
// failures are reported on the result.
func (s *trackingService) LiveTrace(ctx context.Context, vehicleID string) (*TraceResult, error) {
	vehicle, err := s.vehicleRepo.FindMoving(ctx, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("load vehicle registry: %w", err)
	}
	if vehicle == nil {
		return nil, ErrVehicleNotFound
	}

	samples := s.traces.Generate(ctx, vehicle.VehicleID, vehicle.StartLat, vehicle.StartLng, vehicle.EndLat, vehicle.EndLng)
	result := &TraceResult{VehicleID: vehicle.VehicleID, Samples: samples}
	if len(samples) == 0 {
		if s.hooks.Metrics != nil {
			s.hooks.Metrics.RouteUnavailable()
		}
		return result, nil
	}

	if s.hooks.Metrics != nil {
		s.hooks.Metrics.TraceGenerated(len(samples))
	}
	if s.hooks.Broadcaster != nil {
		s.hooks.Broadcaster.Broadcast(vehicle.VehicleID, samples)
	}

	ride, err := s.history.Append(ctx, vehicle.VehicleID, samples)
	if err != nil {
		slog.Error("error saving ride to history", "vehicle_id", vehicle.VehicleID, "error", err)
		if s.hooks.Metrics != nil {
			s.hooks.Metrics.HistoryFailed()
		}
		result.HistoryErr = err
		return result, nil
	}

	result.Ride = ride
	result.Persisted = true
	if s.hooks.Metrics != nil {
		s.hooks.Metrics.RidePersisted()
	}
	if s.hooks.Publisher != nil {
		if err := s.hooks.Publisher.PublishRideCompleted(ctx, ride); err != nil {
			slog.Warn("ride event publish failed", "vehicle_id", ride.VehicleID, "ride_no", ride.RideNo, "error", err)
		}
	}
	return result, nil
}
