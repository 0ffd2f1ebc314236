package repository

import (
	"context"
	"sync"
	"vehicletracker/internal/core/model"
)

type inMemoryRideRepository struct {
	rides []*model.Ride
	mutex sync.RWMutex
}

func NewInMemoryRideRepository() RideRepository {
	return &inMemoryRideRepository{}
}

func (r *inMemoryRideRepository) Append(ctx context.Context, ride *model.Ride) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.rides = append(r.rides, ride)
	return nil
}

func (r *inMemoryRideRepository) FindAll(ctx context.Context) ([]*model.Ride, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make([]*model.Ride, len(r.rides))
	copy(result, r.rides)
	return result, nil
}

func (r *inMemoryRideRepository) FindByVehicleID(ctx context.Context, vehicleID string) ([]*model.Ride, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var result []*model.Ride
	for _, ride := range r.rides {
		if ride.VehicleID == vehicleID {
			result = append(result, ride)
		}
	}
	return result, nil
}

func (r *inMemoryRideRepository) FindByRideNo(ctx context.Context, rideNo int) ([]*model.Ride, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var result []*model.Ride
	for _, ride := range r.rides {
		if ride.RideNo == rideNo {
			result = append(result, ride)
		}
	}
	return result, nil
}

func (r *inMemoryRideRepository) FindLastByVehicleID(ctx context.Context, vehicleID string) (*model.Ride, error) {
	rides, _ := r.FindByVehicleID(ctx, vehicleID)
	return lastByRideNo(rides), nil
}

func (r *inMemoryRideRepository) Ping(ctx context.Context) error {
	return nil
}
