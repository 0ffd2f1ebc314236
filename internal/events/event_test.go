package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
	"vehicletracker/internal/core/model"
)

func testRide() *model.Ride {
	start := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	return model.NewRide(2, "KA 01.AB*1234", []model.Sample{
		model.NewSample("KA 01.AB*1234", start, 12.9, 77.5, model.StatusRide),
		model.NewSample("KA 01.AB*1234", start.Add(30*time.Second), 12.91, 77.51, model.StatusBreak),
		model.NewSample("KA 01.AB*1234", start.Add(time.Minute), 12.92, 77.52, model.StatusRide),
	})
}

func TestNewRideEvent(t *testing.T) {
	ride := testRide()
	now := time.Date(2026, 10, 19, 8, 5, 0, 0, time.FixedZone("IST", 19800))

	ev := NewRideEvent(ride, now)
	if ev.ID == "" || ev.Type != TypeRideCompleted {
		t.Errorf("event header = %+v", ev)
	}
	if ev.RideNo != 2 || ev.Points != 3 || ev.Breaks != 1 {
		t.Errorf("event body = %+v", ev)
	}
	if ev.OccurredAt.Location() != time.UTC {
		t.Error("occurred_at must be UTC")
	}
	if other := NewRideEvent(ride, now); other.ID == ev.ID {
		t.Error("event ids must be unique")
	}

	data, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	json.Unmarshal(data, &decoded)
	if decoded["vehicle_id"] != "KA 01.AB*1234" || decoded["type"] != "ride.completed" {
		t.Errorf("decoded = %v", decoded)
	}
}

func TestRideSubject(t *testing.T) {
	tests := []struct {
		prefix, vehicle, want string
	}{
		{"tracker", "KA01", "tracker.ride.completed.KA01"},
		{"", "KA01", "ride.completed.KA01"},
		{"tracker", "KA 01.AB*1234", "tracker.ride.completed.KA_01_AB_1234"},
		{"tracker", "  ", "tracker.ride.completed._"},
	}
	for _, tt := range tests {
		if got := rideSubject(tt.prefix, tt.vehicle); got != tt.want {
			t.Errorf("rideSubject(%q, %q) = %q, want %q", tt.prefix, tt.vehicle, got, tt.want)
		}
	}
}

type countingMetrics struct{ ok, failed int }

func (c *countingMetrics) EventPublished()     { c.ok++ }
func (c *countingMetrics) EventPublishFailed() { c.failed++ }

func TestObserve(t *testing.T) {
	m := &countingMetrics{}
	observe(m, nil)
	observe(m, errors.New("broker down"))
	observe(nil, nil)
	if m.ok != 1 || m.failed != 1 {
		t.Errorf("metrics = %+v", m)
	}
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	if err := p.PublishRideCompleted(context.Background(), testRide()); err != nil {
		t.Error(err)
	}
	if err := p.Close(); err != nil {
		t.Error(err)
	}
}
