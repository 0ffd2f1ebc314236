package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"
	"vehicletracker/internal/core/model"

	"github.com/nats-io/nats.go"
)

// NATSPublisher publishes ride events on <prefix>.ride.completed.<vehicle>.
type NATSPublisher struct {
	nc      *nats.Conn
	prefix  string
	metrics PublisherMetrics
}

func NewNATSPublisher(url, prefix string, m PublisherMetrics) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("vehicletracker"),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			slog.Info("nats reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			slog.Info("nats closed")
		}),
	)
	if err != nil {
		return nil, err
	}
	return &NATSPublisher{nc: nc, prefix: prefix, metrics: m}, nil
}

func (p *NATSPublisher) Subject(vehicleID string) string {
	return rideSubject(p.prefix, vehicleID)
}

func (p *NATSPublisher) PublishRideCompleted(ctx context.Context, ride *model.Ride) error {
	b, err := json.Marshal(NewRideEvent(ride, time.Now()))
	if err != nil {
		return err
	}
	err = p.nc.Publish(p.Subject(ride.VehicleID), b)
	observe(p.metrics, err)
	return err
}

func (p *NATSPublisher) Close() error {
	if p.nc != nil {
		if err := p.nc.Drain(); err != nil {
			p.nc.Close()
			return err
		}
	}
	return nil
}

func rideSubject(prefix, vehicleID string) string {
	subject := "ride.completed." + subjectToken(vehicleID)
	if prefix != "" {
		subject = prefix + "." + subject
	}
	return subject
}
