package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector_Counters(t *testing.T) {
	c := NewCollector()

	c.TraceGenerated(42)
	c.TraceGenerated(10)
	c.RouteUnavailable()
	c.RidePersisted()
	c.HistoryFailed()
	c.HistoryFailed()
	c.EventPublished()
	c.EventPublishFailed()
	c.SubscribersChanged(3)

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"traces", testutil.ToFloat64(c.TracesGenerated), 2},
		{"unavailable", testutil.ToFloat64(c.RoutesUnavailable), 1},
		{"persisted", testutil.ToFloat64(c.RidesPersisted), 1},
		{"history failures", testutil.ToFloat64(c.HistoryFailures), 2},
		{"events", testutil.ToFloat64(c.EventsPublished), 1},
		{"event errors", testutil.ToFloat64(c.EventPublishErrs), 1},
		{"subscribers", testutil.ToFloat64(c.LiveSubscribers), 3},
	}
	for _, ch := range checks {
		if ch.got != ch.want {
			t.Errorf("%s = %v, want %v", ch.name, ch.got, ch.want)
		}
	}
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector()
	c.RidePersisted()
	c.HTTPRequests.WithLabelValues("/api/get_all_vehicles", "GET", "200").Inc()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)

	for _, want := range []string{
		"tracker_rides_persisted_total 1",
		`tracker_http_requests_total{code="200",method="GET",route="/api/get_all_vehicles"} 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
