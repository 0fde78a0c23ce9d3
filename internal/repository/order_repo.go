package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"honeystore/internal/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const (
	pqUniqueViolation     = "23505"
	pqCheckViolation      = "23514"
	orderNumberConstraint = "orders_order_number_key"
	orderColumns          = `id, order_number, user_id, items, subtotal, shipping_cost, discount, total, status, payment_status, payment_method, payment_details, shipping_address, notes, created_at, updated_at`
)

type postgresOrderRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresOrderRepository(db *sql.DB, logger *logrus.Logger) domain.OrderRepository {
	return &postgresOrderRepository{
		db:  db,
		log: logger,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var (
		order                   domain.Order
		items, address, details []byte
	)
	err := row.Scan(
		&order.ID,
		&order.OrderNumber,
		&order.UserID,
		&items,
		&order.Subtotal,
		&order.ShippingCost,
		&order.Discount,
		&order.Total,
		&order.Status,
		&order.PaymentStatus,
		&order.PaymentMethod,
		&details,
		&address,
		&order.Notes,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &order.Items); err != nil {
		return nil, fmt.Errorf("could not decode order items: %w", err)
	}
	if err := json.Unmarshal(address, &order.ShippingAddress); err != nil {
		return nil, fmt.Errorf("could not decode shipping address: %w", err)
	}
	if len(details) > 0 {
		order.PaymentDetails = &domain.PaymentDetails{}
		if err := json.Unmarshal(details, order.PaymentDetails); err != nil {
			return nil, fmt.Errorf("could not decode payment details: %w", err)
		}
	}
	return &order, nil
}

func (r *postgresOrderRepository) CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	items, err := json.Marshal(order.Items)
	if err != nil {
		return nil, fmt.Errorf("could not encode order items: %w", err)
	}
	address, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return nil, fmt.Errorf("could not encode shipping address: %w", err)
	}

	query := `
        INSERT INTO orders (id, order_number, user_id, items, subtotal, shipping_cost, discount, total,
                            status, payment_status, payment_method, shipping_address, notes, created_at, updated_at)
        VALUES ($1, $2, $3, $4::jsonb, $5, $6, $7, $8, $9, $10, $11, $12::jsonb, $13, $14, $15)
        RETURNING ` + orderColumns

	created, err := scanOrder(r.db.QueryRowContext(ctx, query,
		order.ID,
		order.OrderNumber,
		order.UserID,
		string(items),
		order.Subtotal,
		order.ShippingCost,
		order.Discount,
		order.Total,
		order.Status,
		order.PaymentStatus,
		order.PaymentMethod,
		string(address),
		order.Notes,
		order.CreatedAt,
		order.UpdatedAt,
	))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch {
			case pqErr.Code == pqUniqueViolation && pqErr.Constraint == orderNumberConstraint:
				r.log.Warnf("Order number %s already taken", order.OrderNumber)
				return nil, fmt.Errorf("order number %s: %w", order.OrderNumber, domain.ErrDuplicateOrderNumber)
			case pqErr.Code == pqCheckViolation:
				r.log.Warnf("Order for user %s violates check %s: %v", order.UserID, pqErr.Constraint, err)
				return nil, domain.NewValidationError(pqErr.Column, pqErr.Message)
			}
		}
		r.log.Errorf("Failed to insert order for user %s: %v", order.UserID, err)
		return nil, fmt.Errorf("could not create order: %w", err)
	}

	r.log.Infof("Order %s (%s) created for user %s with %d items", created.ID, created.OrderNumber, created.UserID, len(created.Items))
	return created, nil
}

func (r *postgresOrderRepository) GetOrderByID(ctx context.Context, id string) (*domain.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("order %s: %w", id, domain.ErrNotFound)
	}
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Order with ID %s not found", id)
			return nil, fmt.Errorf("order %s: %w", id, domain.ErrNotFound)
		}
		r.log.Errorf("Failed to get order by ID %s: %v", id, err)
		return nil, fmt.Errorf("could not retrieve order: %w", err)
	}
	return order, nil
}

func (r *postgresOrderRepository) ListOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if userID == "" {
		rows, err = r.db.QueryContext(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
	} else {
		rows, err = r.db.QueryContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	}
	if err != nil {
		r.log.Errorf("Failed to list orders (user %q): %v", userID, err)
		return nil, fmt.Errorf("could not retrieve orders: %w", err)
	}
	defer rows.Close()

	orders := []domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			r.log.Errorf("Failed to scan order row (user %q): %v", userID, err)
			return nil, fmt.Errorf("error scanning order data: %w", err)
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		r.log.Errorf("Error during orders iteration (user %q): %v", userID, err)
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	r.log.Debugf("Retrieved %d orders (user %q)", len(orders), userID)
	return orders, nil
}

func (r *postgresOrderRepository) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("order %s: %w", id, domain.ErrNotFound)
	}
	query := `
        UPDATE orders
        SET status = $2, updated_at = NOW()
        WHERE id = $1
        RETURNING ` + orderColumns

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id, status))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Order with ID %s not found for status update", id)
			return nil, fmt.Errorf("order %s: %w", id, domain.ErrNotFound)
		}
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqCheckViolation {
			return nil, domain.NewValidationError("status", "invalid order status "+string(status))
		}
		r.log.Errorf("Failed to update status for order ID %s: %v", id, err)
		return nil, fmt.Errorf("could not update order status: %w", err)
	}

	r.log.Infof("Order %s status set to '%s'", id, status)
	return order, nil
}

func (r *postgresOrderRepository) UpdatePaymentStatus(ctx context.Context, id string, from, to domain.PaymentStatus) (*domain.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("order %s: %w", id, domain.ErrNotFound)
	}
	query := `
        UPDATE orders
        SET payment_status = $3, updated_at = NOW()
        WHERE id = $1 AND payment_status = $2
        RETURNING ` + orderColumns

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id, from, to))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Either the order is gone or another request moved it first.
			if _, getErr := r.GetOrderByID(ctx, id); getErr != nil {
				return nil, getErr
			}
			r.log.Warnf("Order %s payment status is no longer '%s'", id, from)
			return nil, fmt.Errorf("order %s is no longer %s: %w", id, from, domain.ErrInvalidPaymentTransition)
		}
		r.log.Errorf("Failed to update payment status for order ID %s: %v", id, err)
		return nil, fmt.Errorf("could not update payment status: %w", err)
	}

	r.log.Infof("Order %s payment status %s -> %s", id, from, to)
	return order, nil
}

func (r *postgresOrderRepository) AttachPaymentDetails(ctx context.Context, id string, method domain.PaymentMethod, details domain.PaymentDetails) (*domain.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("order %s: %w", id, domain.ErrNotFound)
	}
	patch, err := json.Marshal(details)
	if err != nil {
		return nil, fmt.Errorf("could not encode payment details: %w", err)
	}
	query := `
        UPDATE orders
        SET payment_method = COALESCE(NULLIF($2::text, ''), payment_method),
            payment_details = COALESCE(payment_details, '{}'::jsonb) || $3::jsonb,
            updated_at = NOW()
        WHERE id = $1
        RETURNING ` + orderColumns

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id, string(method), string(patch)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Order with ID %s not found for payment details", id)
			return nil, fmt.Errorf("order %s: %w", id, domain.ErrNotFound)
		}
		r.log.Errorf("Failed to attach payment details to order %s: %v", id, err)
		return nil, fmt.Errorf("could not attach payment details: %w", err)
	}

	r.log.Infof("Payment details attached to order %s", id)
	return order, nil
}
