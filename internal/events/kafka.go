package events

import (
	"context"
	"encoding/json"
	"time"
	"vehicletracker/internal/core/model"

	"github.com/segmentio/kafka-go"
)

// KafkaPublisher writes ride events keyed by vehicle id, so one vehicle's
// rides stay ordered within a partition.
type KafkaPublisher struct {
	writer  *kafka.Writer
	metrics PublisherMetrics
}

func NewKafkaPublisher(brokers []string, topic string, m PublisherMetrics) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
	return &KafkaPublisher{writer: w, metrics: m}
}

func (p *KafkaPublisher) PublishRideCompleted(ctx context.Context, ride *model.Ride) error {
	data, err := json.Marshal(NewRideEvent(ride, time.Now()))
	if err != nil {
		return err
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ride.VehicleID),
		Value: data,
	})
	observe(p.metrics, err)
	return err
}

// Close flushes pending messages and closes the connection.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
