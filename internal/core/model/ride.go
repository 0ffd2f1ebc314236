package model

import "time"

// DayLayout is the calendar-day format used for ride numbering and lookups.
const DayLayout = "2006-01-02"

// Ride is one completed journey stored in the history journal.
type Ride struct {
	RideNo    int       `json:"ride_no" bson:"ride_no"`
	VehicleID string    `json:"vehicle_id" bson:"vehicle_id"`
	StartTime time.Time `json:"start_time" bson:"start_time"`
	EndTime   time.Time `json:"end_time" bson:"end_time"`
	Path      []Sample  `json:"path" bson:"path"`
}

// RideSummary is the listing view of a ride without its path.
type RideSummary struct {
	RideNo    int       `json:"ride_no"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// History is the on-disk document holding every ride in append order.
type History struct {
	History []*Ride `json:"history"`
}

// NewRide builds a ride from a non-empty trace. The path is copied and the
// per-sample vehicle id dropped, since the ride already carries it.
func NewRide(rideNo int, vehicleID string, path []Sample) *Ride {
	stored := make([]Sample, len(path))
	for i, s := range path {
		stored[i] = Sample{
			Timestamp: s.Timestamp,
			Latitude:  s.Latitude,
			Longitude: s.Longitude,
			Status:    s.Status,
		}
	}

	return &Ride{
		RideNo:    rideNo,
		VehicleID: vehicleID,
		StartTime: path[0].Timestamp,
		EndTime:   path[len(path)-1].Timestamp,
		Path:      stored,
	}
}

// Day returns the UTC calendar day the ride started on.
func (r *Ride) Day() string {
	return r.StartTime.UTC().Format(DayLayout)
}

func (r *Ride) Summary() RideSummary {
	return RideSummary{
		RideNo:    r.RideNo,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
	}
}

// BreakPoints returns the samples with break status, in path order.
func (r *Ride) BreakPoints() []Sample {
	points := make([]Sample, 0)
	for _, s := range r.Path {
		if s.Status == StatusBreak {
			points = append(points, s)
		}
	}
	return points
}
