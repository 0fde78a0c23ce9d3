package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"honeystore/internal/domain"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestKafkaPublisherKeysByOrderID(t *testing.T) {
	w := &recordingWriter{}
	p := newKafkaPublisher(w, "honeystore.orders", quietLogger())

	err := p.Publish(context.Background(), domain.OrderEvent{
		Type:          domain.EventPaymentConfirmed,
		OrderID:       "order-1",
		PaymentStatus: domain.PaymentPaid,
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "order-1", string(w.msgs[0].Key))
	assert.Equal(t, "payment.confirmed", string(w.msgs[0].Headers[0].Value))

	var decoded domain.OrderEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
	assert.NotEmpty(t, decoded.ID)
	assert.False(t, decoded.OccurredAt.IsZero())
	assert.Equal(t, domain.PaymentPaid, decoded.PaymentStatus)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisherWrapsWriteError(t *testing.T) {
	boom := errors.New("broker down")
	p := newKafkaPublisher(&recordingWriter{err: boom}, "honeystore.orders", quietLogger())

	err := p.Publish(context.Background(), domain.OrderEvent{Type: domain.EventOrderCreated, OrderID: "order-1"})
	assert.ErrorIs(t, err, boom)
}

type stalledWriter struct{}

func (stalledWriter) WriteMessages(ctx context.Context, _ ...kafka.Message) error {
	<-ctx.Done()
	return ctx.Err()
}

func (stalledWriter) Close() error { return nil }

func TestKafkaPublisherGivesUpOnStalledBroker(t *testing.T) {
	p := newKafkaPublisher(stalledWriter{}, "honeystore.orders", quietLogger())
	p.timeout = 50 * time.Millisecond

	start := time.Now()
	err := p.Publish(context.Background(), domain.OrderEvent{Type: domain.EventOrderCreated, OrderID: "order-1"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestNewPublisherWithoutBrokersLogsOnly(t *testing.T) {
	p := NewPublisher(nil, "honeystore.orders", quietLogger())
	_, ok := p.(*logPublisher)
	require.True(t, ok)
	assert.NoError(t, p.Publish(context.Background(), domain.OrderEvent{Type: domain.EventOrderCreated, OrderID: "o"}))
	assert.NoError(t, p.Close())
}
