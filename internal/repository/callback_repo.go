package repository

import (
	"context"
	"database/sql"
	"fmt"

	"honeystore/internal/domain"

	"github.com/sirupsen/logrus"
)

type postgresPaymentCallbackRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresPaymentCallbackRepository(db *sql.DB, logger *logrus.Logger) domain.PaymentCallbackRepository {
	return &postgresPaymentCallbackRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresPaymentCallbackRepository) RecordCallback(ctx context.Context, cb domain.PaymentCallback) (bool, error) {
	query := `
        INSERT INTO payment_callbacks (provider, invoice_id, payment_id, order_id, received_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (provider, invoice_id, payment_id) DO NOTHING`

	res, err := r.db.ExecContext(ctx, query, cb.Provider, cb.InvoiceID, cb.PaymentID, cb.OrderID, cb.ReceivedAt)
	if err != nil {
		r.log.Errorf("Repository: Failed to record %s callback for invoice %s: %v", cb.Provider, cb.InvoiceID, err)
		return false, fmt.Errorf("could not record payment callback: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("could not read callback insert result: %w", err)
	}
	if n == 0 {
		r.log.Infof("Repository: %s callback for invoice %s payment %s already processed", cb.Provider, cb.InvoiceID, cb.PaymentID)
		return false, nil
	}
	return true, nil
}
