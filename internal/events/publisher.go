package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"honeystore/internal/domain"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// Publisher is an event sink that owns a connection.
type Publisher interface {
	domain.EventPublisher
	Close() error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// publishTimeout caps how long a request waits on the broker.
const publishTimeout = 2 * time.Second

type kafkaPublisher struct {
	writer  messageWriter
	topic   string
	timeout time.Duration
	log     *logrus.Logger
}

// NewPublisher writes order events to Kafka, or only logs them when no
// brokers are configured.
func NewPublisher(brokers []string, topic string, logger *logrus.Logger) Publisher {
	if len(brokers) == 0 {
		return &logPublisher{log: logger}
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: publishTimeout,
		MaxAttempts:  2,
	}
	logger.Infof("Events: publishing to Kafka topic %s via %v", topic, brokers)
	return newKafkaPublisher(writer, topic, logger)
}

func newKafkaPublisher(w messageWriter, topic string, logger *logrus.Logger) *kafkaPublisher {
	return &kafkaPublisher{writer: w, topic: topic, timeout: publishTimeout, log: logger}
}

func stamp(event *domain.OrderEvent) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
}

func (p *kafkaPublisher) Publish(ctx context.Context, event domain.OrderEvent) error {
	stamp(&event)
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("could not encode %s event: %w", event.Type, err)
	}
	msg := kafka.Message{
		Key:   []byte(event.OrderID),
		Value: data,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.Type)},
		},
	}
	// Detach from the request so a client disconnect does not drop the event,
	// but never hold the response longer than the timeout.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Errorf("Events: Failed to publish %s for order %s to %s: %v", event.Type, event.OrderID, p.topic, err)
		return fmt.Errorf("could not publish %s event: %w", event.Type, err)
	}
	p.log.Debugf("Events: Published %s for order %s", event.Type, event.OrderID)
	return nil
}

func (p *kafkaPublisher) Close() error {
	return p.writer.Close()
}

type logPublisher struct {
	log *logrus.Logger
}

func (p *logPublisher) Publish(_ context.Context, event domain.OrderEvent) error {
	stamp(&event)
	p.log.WithFields(logrus.Fields{
		"event":          event.Type,
		"order_id":       event.OrderID,
		"status":         event.Status,
		"payment_status": event.PaymentStatus,
	}).Info("Order event")
	return nil
}

func (p *logPublisher) Close() error { return nil }
