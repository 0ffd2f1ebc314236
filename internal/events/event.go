package events

import (
	"context"
	"strings"
	"time"
	"vehicletracker/internal/core/model"
	"vehicletracker/internal/core/util"
)

const TypeRideCompleted = "ride.completed"

// RideEvent announces a ride appended to the history journal.
type RideEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	VehicleID  string    `json:"vehicle_id"`
	RideNo     int       `json:"ride_no"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Points     int       `json:"points"`
	Breaks     int       `json:"breaks"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewRideEvent(ride *model.Ride, now time.Time) RideEvent {
	return RideEvent{
		ID:         util.GenerateID(),
		Type:       TypeRideCompleted,
		VehicleID:  ride.VehicleID,
		RideNo:     ride.RideNo,
		StartTime:  ride.StartTime,
		EndTime:    ride.EndTime,
		Points:     len(ride.Path),
		Breaks:     len(ride.BreakPoints()),
		OccurredAt: now.UTC(),
	}
}

// Publisher delivers ride events to a broker.
type Publisher interface {
	PublishRideCompleted(ctx context.Context, ride *model.Ride) error
	Close() error
}

type PublisherMetrics interface {
	EventPublished()
	EventPublishFailed()
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) PublishRideCompleted(ctx context.Context, ride *model.Ride) error { return nil }
func (NopPublisher) Close() error                                                  { return nil }

func observe(m PublisherMetrics, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.EventPublishFailed()
	} else {
		m.EventPublished()
	}
}

func subjectToken(s string) string {
	s = strings.TrimSpace(s)
	// NATS token cannot contain spaces, '>', '*', or trailing '.'
	repl := strings.NewReplacer(" ", "_", ".", "_", ">", "_", "*", "_", "/", "_", "\t", "_")
	s = repl.Replace(s)
	if s == "" {
		s = "_"
	}
	return s
}
