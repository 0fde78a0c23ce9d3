package usecase

import (
	"context"

	"honeystore/internal/domain"

	"github.com/sirupsen/logrus"
)

// publish is best effort: a broker outage never fails the request that
// produced the event.
func publish(ctx context.Context, p domain.EventPublisher, log *logrus.Logger, event domain.OrderEvent) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, event); err != nil {
		log.Warnf("Use Case: Could not publish %s for order %s: %v", event.Type, event.OrderID, err)
	}
}

func orderEvent(t domain.EventType, o *domain.Order) domain.OrderEvent {
	return domain.OrderEvent{
		Type:          t,
		OrderID:       o.ID,
		OrderNumber:   o.OrderNumber,
		UserID:        o.UserID,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		PaymentMethod: o.PaymentMethod,
		Total:         o.Total,
	}
}
