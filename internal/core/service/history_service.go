package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
	"vehicletracker/internal/core/model"
	"vehicletracker/internal/core/repository"
)

const (
	FilterRide        = "ride"
	FilterBreakPoints = "break-points"
)

// HistoryService is the ride journal: it numbers and records completed
// traces and answers history queries.
type HistoryService interface {
	Append(ctx context.Context, vehicleID string, path []model.Sample) (*model.Ride, error)
	VehicleIDs(ctx context.Context) ([]string, error)
	Rides(ctx context.Context, vehicleID string) ([]model.RideSummary, error)
	// Ride returns the first ride in journal order numbered rideNo. vehicleID
	// and day (YYYY-MM-DD) narrow the match when non-empty.
	Ride(ctx context.Context, rideNo int, vehicleID, day string) (*model.Ride, error)
	RidePath(ctx context.Context, rideNo int, vehicleID, filter string) ([]model.Sample, error)
}

type historyService struct {
	rideRepo repository.RideRepository
	now      func() time.Time

	// appendMu makes number assignment and the write one step, so two
	// concurrent appends can never read the same last ride.
	appendMu sync.Mutex
}

func NewHistoryService(rideRepo repository.RideRepository, now func() time.Time) HistoryService {
	if now == nil {
		now = time.Now
	}
	return &historyService{
		rideRepo: rideRepo,
		now:      now,
	}
}

// NextRideNo numbers a new ride given the vehicle's highest-numbered ride.
// Numbering restarts at 1 when there is no previous ride or it started on a
// different UTC day than now.
func NextRideNo(last *model.Ride, now time.Time) int {
	if last == nil || last.Day() != now.UTC().Format(model.DayLayout) {
		return 1
	}
	return last.RideNo + 1
}

func (s *historyService) Append(ctx context.Context, vehicleID string, path []model.Sample) (*model.Ride, error) {
	if len(path) == 0 {
		return nil, ErrEmptyTrace
	}

	s.appendMu.Lock()
	defer s.appendMu.Unlock()

	last, err := s.rideRepo.FindLastByVehicleID(ctx, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("load last ride for %s: %w", vehicleID, err)
	}

	now := s.now()
	ride := model.NewRide(NextRideNo(last, now), vehicleID, path)
	if err := s.rideRepo.Append(ctx, ride); err != nil {
		return nil, fmt.Errorf("save ride %d for %s: %w", ride.RideNo, vehicleID, err)
	}

	slog.Info("ride saved",
		"vehicle_id", vehicleID,
		"ride_no", ride.RideNo,
		"date", now.UTC().Format(model.DayLayout),
		"points", len(ride.Path),
	)
	return ride, nil
}

func (s *historyService) VehicleIDs(ctx context.Context) ([]string, error) {
	rides, err := s.rideRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	ids := make([]string, 0)
	for _, ride := range rides {
		if _, ok := seen[ride.VehicleID]; ok {
			continue
		}
		seen[ride.VehicleID] = struct{}{}
		ids = append(ids, ride.VehicleID)
	}
	return ids, nil
}

func (s *historyService) Rides(ctx context.Context, vehicleID string) ([]model.RideSummary, error) {
	rides, err := s.rideRepo.FindByVehicleID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}

	summaries := make([]model.RideSummary, 0, len(rides))
	for _, ride := range rides {
		summaries = append(summaries, ride.Summary())
	}
	return summaries, nil
}

func (s *historyService) Ride(ctx context.Context, rideNo int, vehicleID, day string) (*model.Ride, error) {
	rides, err := s.rideRepo.FindByRideNo(ctx, rideNo)
	if err != nil {
		return nil, err
	}

	for _, ride := range rides {
		if vehicleID != "" && ride.VehicleID != vehicleID {
			continue
		}
		if day != "" && ride.Day() != day {
			continue
		}
		return ride, nil
	}
	return nil, ErrRideNotFound
}

func (s *historyService) RidePath(ctx context.Context, rideNo int, vehicleID, filter string) ([]model.Sample, error) {
	if filter == "" {
		filter = FilterRide
	}
	if filter != FilterRide && filter != FilterBreakPoints {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFilter, filter)
	}

	ride, err := s.Ride(ctx, rideNo, vehicleID, "")
	if err != nil {
		return nil, err
	}
	if filter == FilterBreakPoints {
		return ride.BreakPoints(), nil
	}
	return ride.Path, nil
}
