package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

const vehiclesDoc = `{
  "moving_vehicles": [
    {"vehicle_id": "KA01AB1234", "start_lat": 12.9716, "start_lng": 77.5946, "end_lat": 12.2958, "end_lng": 76.6394}
  ],
  "free_vehicles": [
    {"vehicle_id": "KA02CD5678", "lat": 12.93, "lng": 77.62}
  ],
  "idle_vehicles": []
}`

func writeVehicles(t *testing.T, doc string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "vehicles.json")
	if err := os.WriteFile(file, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}
	return file
}

func TestFileVehicleRepository_FindMoving(t *testing.T) {
	repo := NewFileVehicleRepository(writeVehicles(t, vehiclesDoc))
	ctx := context.Background()

	v, err := repo.FindMoving(ctx, "KA01AB1234")
	if err != nil {
		t.Fatalf("FindMoving: %v", err)
	}
	if v == nil || v.StartLat != 12.9716 || v.EndLng != 76.6394 {
		t.Fatalf("unexpected vehicle: %+v", v)
	}

	// free vehicles have no journey to simulate
	v, err = repo.FindMoving(ctx, "KA02CD5678")
	if err != nil || v != nil {
		t.Fatalf("FindMoving(free) = %+v, %v; want nil, nil", v, err)
	}
}

func TestFileVehicleRepository_Raw(t *testing.T) {
	repo := NewFileVehicleRepository(writeVehicles(t, vehiclesDoc))

	raw, err := repo.Raw(context.Background())
	if err != nil {
		t.Fatalf("Raw: %v", err)
	}
	if string(raw) != vehiclesDoc {
		t.Error("Raw must return the document unchanged")
	}
}

func TestFileVehicleRepository_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"malformed json", `{"moving_vehicles": [`},
		{"missing id", `{"moving_vehicles": [{"start_lat": 1, "start_lng": 1, "end_lat": 1, "end_lng": 1}]}`},
		{"latitude out of range", `{"moving_vehicles": [{"vehicle_id": "X", "start_lat": 91, "start_lng": 1, "end_lat": 1, "end_lng": 1}]}`},
		{"parked longitude out of range", `{"idle_vehicles": [{"vehicle_id": "X", "lat": 1, "lng": -181}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewFileVehicleRepository(writeVehicles(t, tt.doc))
			if _, err := repo.Registry(context.Background()); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestFileVehicleRepository_MissingFile(t *testing.T) {
	repo := NewFileVehicleRepository(filepath.Join(t.TempDir(), "nope.json"))
	if _, err := repo.Raw(context.Background()); err == nil {
		t.Error("expected an error for a missing registry")
	}
}
