package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"vehicletracker/internal/core/model"

	"github.com/go-playground/validator/v10"
)

// VehicleRepository reads the vehicles registry document.
type VehicleRepository interface {
	Registry(ctx context.Context) (*model.Registry, error)
	// Raw returns the document bytes unchanged, for passthrough.
	Raw(ctx context.Context) ([]byte, error)
	FindMoving(ctx context.Context, vehicleID string) (*model.MovingVehicle, error)
}

// fileVehicleRepository rereads the document on every call so edits to the
// file show up without a restart.
type fileVehicleRepository struct {
	path     string
	validate *validator.Validate
}

func NewFileVehicleRepository(path string) VehicleRepository {
	return &fileVehicleRepository{
		path:     path,
		validate: validator.New(),
	}
}

func (r *fileVehicleRepository) Raw(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("read vehicles: %w", err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("vehicles document %s is not valid JSON", r.path)
	}
	return data, nil
}

func (r *fileVehicleRepository) Registry(ctx context.Context) (*model.Registry, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("read vehicles: %w", err)
	}

	var registry model.Registry
	if err := json.Unmarshal(data, &registry); err != nil {
		return nil, fmt.Errorf("decode vehicles %s: %w", r.path, err)
	}
	if err := r.validate.Struct(registry); err != nil {
		return nil, fmt.Errorf("invalid vehicles document: %w", err)
	}
	return &registry, nil
}

func (r *fileVehicleRepository) FindMoving(ctx context.Context, vehicleID string) (*model.MovingVehicle, error) {
	registry, err := r.Registry(ctx)
	if err != nil {
		return nil, err
	}
	return registry.FindMoving(vehicleID), nil
}
