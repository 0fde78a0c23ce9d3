package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"honeystore/internal/domain"
	"honeystore/internal/metrics"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const maxOrderNumberAttempts = 5

var _ domain.OrderUseCase = (*orderUseCase)(nil)

type orderUseCase struct {
	orderRepo domain.OrderRepository
	events    domain.EventPublisher
	shipping  domain.ShippingPolicy
	log       *logrus.Logger
	now       func() time.Time
}

func NewOrderUseCase(repo domain.OrderRepository, events domain.EventPublisher, shipping domain.ShippingPolicy, logger *logrus.Logger) domain.OrderUseCase {
	return &orderUseCase{
		orderRepo: repo,
		events:    events,
		shipping:  shipping,
		log:       logger,
		now:       time.Now,
	}
}

func (uc *orderUseCase) CreateOrder(ctx context.Context, session *domain.Session, input domain.CreateOrderInput) (*domain.Order, error) {
	if session == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := input.Validate(uc.shipping); err != nil {
		uc.log.Warnf("Use Case: Rejected order from user %s: %v", session.UserID, err)
		return nil, err
	}

	now := uc.now().UTC()
	order := &domain.Order{
		ID:              uuid.NewString(),
		UserID:          session.UserID,
		Items:           input.Items,
		Subtotal:        input.Subtotal,
		ShippingCost:    input.ShippingCost,
		Discount:        input.Discount,
		Total:           input.Total,
		Status:          domain.StatusPending,
		PaymentStatus:   domain.PaymentPending,
		PaymentMethod:   input.PaymentMethod,
		ShippingAddress: input.ShippingAddress,
		Notes:           input.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	uc.log.Infof("Use Case: Validated order for user %s (%d items, total %d)", session.UserID, len(order.Items), order.Total)

	for attempt := 1; attempt <= maxOrderNumberAttempts; attempt++ {
		number, err := domain.NewOrderNumber(now)
		if err != nil {
			return nil, err
		}
		order.OrderNumber = number

		created, err := uc.orderRepo.CreateOrder(ctx, order)
		if errors.Is(err, domain.ErrDuplicateOrderNumber) {
			uc.log.Warnf("Use Case: Order number %s collided (attempt %d/%d), regenerating", number, attempt, maxOrderNumberAttempts)
			continue
		}
		if err != nil {
			uc.log.Errorf("Use Case: Repository failed to create order for user %s: %v", session.UserID, err)
			return nil, fmt.Errorf("failed to save order: %w", err)
		}

		metrics.OrdersTotal.WithLabelValues(string(created.Status)).Inc()
		publish(ctx, uc.events, uc.log, orderEvent(domain.EventOrderCreated, created))
		uc.log.Infof("Use Case: Order %s created with number %s for user %s", created.ID, created.OrderNumber, created.UserID)
		return created, nil
	}

	uc.log.Errorf("Use Case: Gave up allocating an order number for user %s", session.UserID)
	return nil, fmt.Errorf("no unique order number after %d attempts: %w", maxOrderNumberAttempts, domain.ErrDuplicateOrderNumber)
}

func (uc *orderUseCase) GetOrder(ctx context.Context, session *domain.Session, id string) (*domain.Order, error) {
	if session == nil {
		return nil, domain.ErrUnauthorized
	}
	order, err := uc.orderRepo.GetOrderByID(ctx, id)
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to get order ID %s: %v", id, err)
		return nil, err
	}
	if !order.OwnedBy(session) {
		uc.log.Warnf("Use Case: User %s attempted to access order %s owned by user %s", session.UserID, id, order.UserID)
		return nil, fmt.Errorf("order %s: %w", id, domain.ErrForbidden)
	}
	return order, nil
}

func (uc *orderUseCase) ListOrders(ctx context.Context, session *domain.Session) ([]domain.Order, error) {
	if session == nil {
		return nil, domain.ErrUnauthorized
	}
	scope := session.UserID
	if session.IsAdmin() {
		scope = ""
	}

	orders, err := uc.orderRepo.ListOrders(ctx, scope)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to list orders for user %s: %v", session.UserID, err)
		return nil, fmt.Errorf("could not retrieve orders: %w", err)
	}
	uc.log.Infof("Use Case: Retrieved %d orders for user %s (admin=%t)", len(orders), session.UserID, session.IsAdmin())
	return orders, nil
}

// UpdateOrderStatus lets an admin set any fulfilment status. Payment status
// is left alone.
func (uc *orderUseCase) UpdateOrderStatus(ctx context.Context, session *domain.Session, id string, status domain.OrderStatus) (*domain.Order, error) {
	if session == nil {
		return nil, domain.ErrUnauthorized
	}
	if !session.IsAdmin() {
		return nil, fmt.Errorf("only admins can change order status: %w", domain.ErrForbidden)
	}
	if !domain.IsValidStatus(status) {
		return nil, domain.NewValidationError("status", "invalid order status "+string(status))
	}

	uc.log.Infof("Use Case: Attempting to update status for order ID %s to '%s'", id, status)
	updated, err := uc.orderRepo.UpdateOrderStatus(ctx, id, status)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to update status for order ID %s: %v", id, err)
		return nil, err
	}

	metrics.OrdersTotal.WithLabelValues(string(status)).Inc()
	publish(ctx, uc.events, uc.log, orderEvent(domain.EventOrderStatusChanged, updated))
	return updated, nil
}
