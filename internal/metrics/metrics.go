package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	reg *prometheus.Registry

	TracesGenerated   prometheus.Counter
	TracePoints       prometheus.Histogram
	RoutesUnavailable prometheus.Counter

	RidesPersisted  prometheus.Counter
	HistoryFailures prometheus.Counter

	EventsPublished  prometheus.Counter
	EventPublishErrs prometheus.Counter
	LiveSubscribers  prometheus.Gauge

	HTTPRequests *prometheus.CounterVec   // labels: route, method, code
	HTTPDuration *prometheus.HistogramVec // labels: route
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		TracesGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracker_traces_generated_total",
			Help: "Total non-empty traces synthesized.",
		}),
		TracePoints: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tracker_trace_points",
			Help:    "Number of samples per generated trace.",
			Buckets: prometheus.ExponentialBuckets(8, 2, 10),
		}),
		RoutesUnavailable: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracker_routes_unavailable_total",
			Help: "Live trace requests that produced no route.",
		}),
		RidesPersisted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracker_rides_persisted_total",
			Help: "Rides appended to the history journal.",
		}),
		HistoryFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracker_history_failures_total",
			Help: "Traces delivered but not recorded in history.",
		}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracker_events_published_total",
			Help: "Ride events published to the broker.",
		}),
		EventPublishErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracker_event_publish_errors_total",
			Help: "Ride event publish failures.",
		}),
		LiveSubscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tracker_live_subscribers",
			Help: "Connected live trace websocket clients.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tracker_http_requests_total",
			Help: "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tracker_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
		}, []string{"route"}),
	}

	reg.MustRegister(
		c.TracesGenerated, c.TracePoints, c.RoutesUnavailable,
		c.RidesPersisted, c.HistoryFailures,
		c.EventsPublished, c.EventPublishErrs, c.LiveSubscribers,
		c.HTTPRequests, c.HTTPDuration,
	)
	return c
}

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// service.TrackingMetrics

func (c *Collector) TraceGenerated(points int) {
	c.TracesGenerated.Inc()
	c.TracePoints.Observe(float64(points))
}
func (c *Collector) RouteUnavailable() { c.RoutesUnavailable.Inc() }
func (c *Collector) RidePersisted()    { c.RidesPersisted.Inc() }
func (c *Collector) HistoryFailed()    { c.HistoryFailures.Inc() }

// events.PublisherMetrics

func (c *Collector) EventPublished()     { c.EventsPublished.Inc() }
func (c *Collector) EventPublishFailed() { c.EventPublishErrs.Inc() }

// stream.HubMetrics

func (c *Collector) SubscribersChanged(n int) { c.LiveSubscribers.Set(float64(n)) }
