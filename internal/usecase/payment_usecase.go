package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"honeystore/internal/domain"
	"honeystore/internal/metrics"

	"github.com/sirupsen/logrus"
)

var _ domain.PaymentUseCase = (*paymentUseCase)(nil)

type paymentUseCase struct {
	orders    domain.OrderRepository
	callbacks domain.PaymentCallbackRepository
	qpay      domain.QRInvoiceGateway
	khanBank  domain.BankTransferGateway
	events    domain.EventPublisher
	log       *logrus.Logger
	now       func() time.Time
}

func NewPaymentUseCase(
	orders domain.OrderRepository,
	callbacks domain.PaymentCallbackRepository,
	qpay domain.QRInvoiceGateway,
	khanBank domain.BankTransferGateway,
	events domain.EventPublisher,
	logger *logrus.Logger,
) domain.PaymentUseCase {
	return &paymentUseCase{
		orders:    orders,
		callbacks: callbacks,
		qpay:      qpay,
		khanBank:  khanBank,
		events:    events,
		log:       logger,
		now:       time.Now,
	}
}

// payableOrder loads the order a payment is being started for and resolves
// the amount, which must equal the order total.
func (uc *paymentUseCase) payableOrder(ctx context.Context, session *domain.Session, req domain.PaymentRequest) (*domain.Order, int64, error) {
	if session == nil {
		return nil, 0, domain.ErrUnauthorized
	}
	if req.OrderID == "" {
		return nil, 0, domain.NewValidationError("orderId", "orderId is required")
	}
	order, err := uc.orders.GetOrderByID(ctx, req.OrderID)
	if err != nil {
		return nil, 0, err
	}
	if !order.OwnedBy(session) {
		uc.log.Warnf("Use Case: User %s attempted to pay for order %s owned by user %s", session.UserID, order.ID, order.UserID)
		return nil, 0, fmt.Errorf("order %s: %w", order.ID, domain.ErrForbidden)
	}
	if order.PaymentStatus == domain.PaymentPaid || order.PaymentStatus == domain.PaymentRefunded {
		return nil, 0, fmt.Errorf("order %s is already %s: %w", order.ID, order.PaymentStatus, domain.ErrInvalidPaymentTransition)
	}

	amount := req.Amount
	if amount == 0 {
		amount = order.Total
	}
	if amount != order.Total {
		return nil, 0, domain.NewValidationError("amount", fmt.Sprintf("amount %d does not match order total %d", amount, order.Total))
	}
	return order, amount, nil
}

func (uc *paymentUseCase) CreateQPayInvoice(ctx context.Context, session *domain.Session, req domain.PaymentRequest) (*domain.Invoice, error) {
	order, amount, err := uc.payableOrder(ctx, session, req)
	if err != nil {
		return nil, err
	}

	inv, err := uc.qpay.CreateInvoice(ctx, domain.InvoiceRequest{
		OrderID:     order.ID,
		Amount:      amount,
		Description: req.Description,
	})
	if err != nil {
		uc.log.Errorf("Use Case: QPay invoice failed for order %s: %v", order.ID, err)
		return nil, err
	}

	// Demo invoices can never be verified, so nothing is recorded for them.
	if inv.IsDemo {
		uc.log.Infof("Use Case: Demo QPay invoice %s issued for order %s", inv.InvoiceID, order.ID)
		return inv, nil
	}

	updated, err := uc.orders.AttachPaymentDetails(ctx, order.ID, "", domain.PaymentDetails{
		InvoiceID: inv.InvoiceID,
		QRCode:    inv.QRImage,
	})
	if err != nil {
		uc.log.Errorf("Use Case: Invoice %s created but not recorded on order %s: %v", inv.InvoiceID, order.ID, err)
		return nil, fmt.Errorf("could not record invoice on order: %w", err)
	}

	publish(ctx, uc.events, uc.log, orderEvent(domain.EventPaymentInitiated, updated))
	uc.log.Infof("Use Case: QPay invoice %s recorded on order %s", inv.InvoiceID, order.ID)
	return inv, nil
}

func (uc *paymentUseCase) CreateKhanBankTransfer(ctx context.Context, session *domain.Session, req domain.PaymentRequest) (*domain.BankTransfer, error) {
	order, amount, err := uc.payableOrder(ctx, session, req)
	if err != nil {
		return nil, err
	}

	transfer, err := uc.khanBank.CreateTransfer(ctx, order.ID, amount)
	if err != nil {
		uc.log.Errorf("Use Case: Khan Bank transfer failed for order %s: %v", order.ID, err)
		return nil, err
	}

	updated, err := uc.orders.AttachPaymentDetails(ctx, order.ID, domain.MethodKhanBank, domain.PaymentDetails{
		TransactionID: transfer.TransactionID,
	})
	if err != nil {
		uc.log.Errorf("Use Case: Transfer %s not recorded on order %s: %v", transfer.TransactionID, order.ID, err)
		return nil, fmt.Errorf("could not record transfer on order: %w", err)
	}

	publish(ctx, uc.events, uc.log, orderEvent(domain.EventPaymentInitiated, updated))
	return transfer, nil
}

func (uc *paymentUseCase) HandleQPayCallback(ctx context.Context, orderID, paymentID string) (*domain.Order, error) {
	if orderID == "" {
		return nil, domain.NewValidationError("order_id", "order_id is required")
	}
	order, err := uc.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.PaymentDetails == nil || order.PaymentDetails.InvoiceID == "" {
		uc.log.Warnf("Use Case: QPay callback for order %s which has no invoice", orderID)
		return nil, domain.NewValidationError("order_id", "order has no QPay invoice")
	}
	uc.log.Infof("Use Case: QPay callback received for order %s (payment %q)", orderID, paymentID)
	return uc.verifyQPay(ctx, order, paymentID)
}

func (uc *paymentUseCase) RefreshPayment(ctx context.Context, session *domain.Session, orderID string) (*domain.Order, error) {
	if session == nil {
		return nil, domain.ErrUnauthorized
	}
	order, err := uc.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.OwnedBy(session) {
		return nil, fmt.Errorf("order %s: %w", orderID, domain.ErrForbidden)
	}
	if order.PaymentDetails == nil || order.PaymentDetails.InvoiceID == "" {
		// Bank transfer stubs and demo invoices have nothing to verify against.
		return order, nil
	}
	return uc.verifyQPay(ctx, order, "")
}

// verifyQPay asks QPay whether the order's invoice is paid and, if so, moves
// the order to paid. The conditional status update makes the move happen once
// however many times the callback is delivered.
func (uc *paymentUseCase) verifyQPay(ctx context.Context, order *domain.Order, paymentHint string) (*domain.Order, error) {
	invoiceID := order.PaymentDetails.InvoiceID
	if domain.IsDemoInvoice(invoiceID) {
		return order, nil
	}

	check, err := uc.qpay.CheckPayment(ctx, invoiceID)
	if err != nil {
		uc.log.Errorf("Use Case: Could not verify invoice %s for order %s: %v", invoiceID, order.ID, err)
		return nil, err
	}
	if !check.Paid {
		uc.log.Infof("Use Case: Invoice %s for order %s is not paid yet", invoiceID, order.ID)
		return order, nil
	}
	if check.PaidAmount > 0 && check.PaidAmount < order.Total {
		uc.log.Warnf("Use Case: Invoice %s paid %d of %d for order %s, leaving payment pending", invoiceID, check.PaidAmount, order.Total, order.ID)
		return order, nil
	}

	// The order moves first; the inbox row only records a confirmed payment,
	// so a failed update leaves nothing behind that would block a retry.
	updated, err := uc.transition(ctx, order, domain.PaymentPaid)
	if errors.Is(err, domain.ErrInvalidPaymentTransition) {
		current, getErr := uc.orders.GetOrderByID(ctx, order.ID)
		if getErr != nil {
			return nil, getErr
		}
		if current.PaymentStatus != domain.PaymentPaid && current.PaymentStatus != domain.PaymentRefunded {
			return nil, err
		}
		updated, err = current, nil
	}
	if err != nil {
		return nil, err
	}

	paymentID := check.PaymentID
	if paymentID == "" {
		paymentID = paymentHint
	}
	fresh, err := uc.callbacks.RecordCallback(ctx, domain.PaymentCallback{
		Provider:   domain.ProviderQPay,
		OrderID:    order.ID,
		InvoiceID:  invoiceID,
		PaymentID:  paymentID,
		ReceivedAt: uc.now().UTC(),
	})
	switch {
	case err != nil:
		uc.log.Warnf("Use Case: Order %s is paid but callback for invoice %s was not recorded: %v", order.ID, invoiceID, err)
	case !fresh:
		uc.log.Infof("Use Case: Payment %q for invoice %s already recorded", paymentID, invoiceID)
	}
	return updated, nil
}

func (uc *paymentUseCase) Refund(ctx context.Context, session *domain.Session, orderID string) (*domain.Order, error) {
	if session == nil {
		return nil, domain.ErrUnauthorized
	}
	if !session.IsAdmin() {
		return nil, fmt.Errorf("only admins can refund orders: %w", domain.ErrForbidden)
	}
	order, err := uc.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return uc.transition(ctx, order, domain.PaymentRefunded)
}

func (uc *paymentUseCase) transition(ctx context.Context, order *domain.Order, to domain.PaymentStatus) (*domain.Order, error) {
	from := order.PaymentStatus
	if from == to {
		return order, nil
	}
	if !domain.CanTransitionPayment(from, to) {
		uc.log.Warnf("Use Case: Rejected payment transition %s -> %s for order %s", from, to, order.ID)
		return nil, fmt.Errorf("order %s: %s -> %s: %w", order.ID, from, to, domain.ErrInvalidPaymentTransition)
	}

	updated, err := uc.orders.UpdatePaymentStatus(ctx, order.ID, from, to)
	if err != nil {
		if !errors.Is(err, domain.ErrInvalidPaymentTransition) {
			uc.log.Errorf("Use Case: Failed to set payment status %s on order %s: %v", to, order.ID, err)
		}
		return nil, err
	}

	metrics.PaymentTransitionsTotal.WithLabelValues(string(from), string(to)).Inc()
	switch to {
	case domain.PaymentPaid:
		publish(ctx, uc.events, uc.log, orderEvent(domain.EventPaymentConfirmed, updated))
	case domain.PaymentRefunded:
		publish(ctx, uc.events, uc.log, orderEvent(domain.EventPaymentRefunded, updated))
	}
	uc.log.Infof("Use Case: Order %s payment status %s -> %s", order.ID, from, to)
	return updated, nil
}
