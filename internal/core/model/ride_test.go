package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func testPath() []Sample {
	start := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	statuses := []Status{StatusRide, StatusBreak, StatusRide, StatusBreak, StatusRide}
	path := make([]Sample, len(statuses))
	for i, st := range statuses {
		path[i] = NewSample("V1", start.Add(time.Duration(i)*30*time.Second), 12.9+float64(i)*0.001, 77.5, st)
	}
	return path
}

func TestNewRide(t *testing.T) {
	path := testPath()
	ride := NewRide(3, "V1", path)

	if ride.RideNo != 3 || ride.VehicleID != "V1" {
		t.Fatalf("unexpected ride header: %+v", ride)
	}
	if !ride.StartTime.Equal(path[0].Timestamp) {
		t.Errorf("start time = %v, want %v", ride.StartTime, path[0].Timestamp)
	}
	if !ride.EndTime.Equal(path[4].Timestamp) {
		t.Errorf("end time = %v, want %v", ride.EndTime, path[4].Timestamp)
	}
	if len(ride.Path) != len(path) {
		t.Fatalf("path length = %d, want %d", len(ride.Path), len(path))
	}
	for i, s := range ride.Path {
		if s.VehicleID != "" {
			t.Errorf("path[%d] kept vehicle id %q", i, s.VehicleID)
		}
		if s.Latitude != path[i].Latitude || s.Status != path[i].Status {
			t.Errorf("path[%d] = %+v, want %+v", i, s, path[i])
		}
	}

	path[0].Latitude = 0
	if ride.Path[0].Latitude == 0 {
		t.Error("ride path shares memory with the input trace")
	}
}

func TestRide_BreakPoints(t *testing.T) {
	ride := NewRide(1, "V1", testPath())

	points := ride.BreakPoints()
	if len(points) != 2 {
		t.Fatalf("got %d break points, want 2", len(points))
	}
	if !points[0].Timestamp.Before(points[1].Timestamp) {
		t.Error("break points are not in path order")
	}
	for _, p := range points {
		if p.Status != StatusBreak {
			t.Errorf("unexpected status %q", p.Status)
		}
	}
}

func TestRide_JSONLayout(t *testing.T) {
	ride := NewRide(1, "V1", testPath())
	data, err := json.Marshal(History{History: []*Ride{ride}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out := string(data)

	for _, want := range []string{
		`"history":[`,
		`"ride_no":1`,
		`"start_time":"2026-10-19T08:00:00Z"`,
		`"end_time":"2026-10-19T08:02:00Z"`,
		`"status":"break"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("encoded history missing %s:\n%s", want, out)
		}
	}
	if strings.Contains(out, `"path":[{"vehicle_id"`) {
		t.Error("stored path samples must not carry vehicle_id")
	}
	if ride.Day() != "2026-10-19" {
		t.Errorf("Day() = %q", ride.Day())
	}
}

func TestStatus_Valid(t *testing.T) {
	if !StatusRide.Valid() || !StatusBreak.Valid() {
		t.Error("known statuses must be valid")
	}
	if Status("parked").Valid() {
		t.Error("unknown status reported valid")
	}
}
