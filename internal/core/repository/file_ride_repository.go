package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"vehicletracker/internal/core/model"
)

// FileRideRepository keeps the whole journal in one JSON document of the form
// {"history": [...]}. Every append reads the document, adds the ride and
// rewrites the file in full.
type FileRideRepository struct {
	path  string
	mutex sync.Mutex
}

func NewFileRideRepository(path string) *FileRideRepository {
	return &FileRideRepository{path: path}
}

func (r *FileRideRepository) Append(ctx context.Context, ride *model.Ride) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	history, err := r.load()
	if err != nil {
		return err
	}
	history.History = append(history.History, ride)
	return r.save(history)
}

func (r *FileRideRepository) FindAll(ctx context.Context) ([]*model.Ride, error) {
	return r.filter(func(*model.Ride) bool { return true })
}

func (r *FileRideRepository) FindByVehicleID(ctx context.Context, vehicleID string) ([]*model.Ride, error) {
	return r.filter(func(ride *model.Ride) bool { return ride.VehicleID == vehicleID })
}

func (r *FileRideRepository) FindByRideNo(ctx context.Context, rideNo int) ([]*model.Ride, error) {
	return r.filter(func(ride *model.Ride) bool { return ride.RideNo == rideNo })
}

func (r *FileRideRepository) FindLastByVehicleID(ctx context.Context, vehicleID string) (*model.Ride, error) {
	rides, err := r.FindByVehicleID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	return lastByRideNo(rides), nil
}

// Ping checks that the document, when present, is readable and well formed.
func (r *FileRideRepository) Ping(ctx context.Context) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	_, err := r.load()
	return err
}

func (r *FileRideRepository) filter(keep func(*model.Ride) bool) ([]*model.Ride, error) {
	r.mutex.Lock()
	history, err := r.load()
	r.mutex.Unlock()
	if err != nil {
		return nil, err
	}

	var result []*model.Ride
	for _, ride := range history.History {
		if keep(ride) {
			result = append(result, ride)
		}
	}
	return result, nil
}

// load reads the document; a missing file is an empty journal.
func (r *FileRideRepository) load() (*model.History, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &model.History{History: []*model.Ride{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}

	var history model.History
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("decode history %s: %w", r.path, err)
	}
	if history.History == nil {
		history.History = []*model.Ride{}
	}
	return &history, nil
}

// save writes to a sibling temp file and renames it over the document so a
// crash mid-write never leaves a truncated journal.
func (r *FileRideRepository) save(history *model.History) error {
	data, err := json.MarshalIndent(history, "", "    ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp history: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("replace history: %w", err)
	}
	return nil
}

// lastByRideNo picks the ride with the numerically largest ride_no; the
// first one seen wins a tie.
func lastByRideNo(rides []*model.Ride) *model.Ride {
	var last *model.Ride
	for _, ride := range rides {
		if last == nil || ride.RideNo > last.RideNo {
			last = ride
		}
	}
	return last
}
