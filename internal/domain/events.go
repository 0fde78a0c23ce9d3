package domain

import (
	"context"
	"time"
)

type EventType string

const (
	EventOrderCreated       EventType = "order.created"
	EventOrderStatusChanged EventType = "order.status_changed"
	EventPaymentInitiated   EventType = "payment.initiated"
	EventPaymentConfirmed   EventType = "payment.confirmed"
	EventPaymentRefunded    EventType = "payment.refunded"
)

// OrderEvent is published keyed by OrderID.
type OrderEvent struct {
	ID            string        `json:"id"`
	Type          EventType     `json:"type"`
	OrderID       string        `json:"orderId"`
	OrderNumber   string        `json:"orderNumber,omitempty"`
	UserID        string        `json:"userId,omitempty"`
	Status        OrderStatus   `json:"status,omitempty"`
	PaymentStatus PaymentStatus `json:"paymentStatus,omitempty"`
	PaymentMethod PaymentMethod `json:"paymentMethod,omitempty"`
	Total         int64         `json:"total,omitempty"`
	OccurredAt    time.Time     `json:"occurredAt"`
}

type EventPublisher interface {
	Publish(ctx context.Context, event OrderEvent) error
}
