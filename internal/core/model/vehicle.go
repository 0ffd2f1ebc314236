package model

// MovingVehicle is a registry entry with a journey to simulate.
type MovingVehicle struct {
	VehicleID string  `json:"vehicle_id" validate:"required"`
	StartLat  float64 `json:"start_lat" validate:"gte=-90,lte=90"`
	StartLng  float64 `json:"start_lng" validate:"gte=-180,lte=180"`
	EndLat    float64 `json:"end_lat" validate:"gte=-90,lte=90"`
	EndLng    float64 `json:"end_lng" validate:"gte=-180,lte=180"`
}

// ParkedVehicle is a free or idle vehicle standing at a fixed position.
type ParkedVehicle struct {
	VehicleID string  `json:"vehicle_id" validate:"required"`
	Lat       float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng       float64 `json:"lng" validate:"gte=-180,lte=180"`
}

// Registry is the vehicles document grouped by category.
type Registry struct {
	MovingVehicles []MovingVehicle `json:"moving_vehicles" validate:"dive"`
	FreeVehicles   []ParkedVehicle `json:"free_vehicles" validate:"dive"`
	IdleVehicles   []ParkedVehicle `json:"idle_vehicles" validate:"dive"`
}

func (r *Registry) FindMoving(vehicleID string) *MovingVehicle {
	for i := range r.MovingVehicles {
		if r.MovingVehicles[i].VehicleID == vehicleID {
			return &r.MovingVehicles[i]
		}
	}
	return nil
}
