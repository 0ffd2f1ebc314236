package model

import "time"

// Status marks whether the vehicle was moving or stopped at a sample.
type Status string

const (
	StatusRide  Status = "ride"
	StatusBreak Status = "break"
)

func (s Status) Valid() bool {
	return s == StatusRide || s == StatusBreak
}

// Sample is one synthesized GPS point on a trace.
type Sample struct {
	VehicleID string    `json:"vehicle_id,omitempty" bson:"vehicle_id,omitempty"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
	Latitude  float64   `json:"latitude" bson:"latitude"`
	Longitude float64   `json:"longitude" bson:"longitude"`
	Status    Status    `json:"status" bson:"status"`
}

func NewSample(vehicleID string, ts time.Time, lat, lon float64, status Status) Sample {
	return Sample{
		VehicleID: vehicleID,
		Timestamp: ts.UTC().Truncate(time.Second),
		Latitude:  lat,
		Longitude: lon,
		Status:    status,
	}
}
