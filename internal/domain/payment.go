package domain

import (
	"context"
	"strings"
	"time"
)

// DemoInvoicePrefix marks QPay invoices issued without a live gateway session.
const DemoInvoicePrefix = "DEMO_"

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending: {PaymentPaid, PaymentFailed},
	PaymentFailed:  {PaymentPaid, PaymentPending},
	PaymentPaid:    {PaymentRefunded},
}

// CanTransitionPayment reports whether paymentStatus may move from one value to
// another. Staying in the same state is always allowed and is a no-op.
func CanTransitionPayment(from, to PaymentStatus) bool {
	if from == to {
		return true
	}
	for _, next := range paymentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func IsDemoInvoice(invoiceID string) bool {
	return strings.HasPrefix(invoiceID, DemoInvoicePrefix)
}

type PaymentLink struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Logo        string `json:"logo,omitempty"`
	Link        string `json:"link"`
}

type InvoiceRequest struct {
	OrderID     string
	Amount      int64
	Description string
}

type Invoice struct {
	InvoiceID string        `json:"invoiceId"`
	QRCode    string        `json:"qrCode"`
	QRImage   string        `json:"qrImage"`
	URLs      []PaymentLink `json:"urls"`
	IsDemo    bool          `json:"isDemo,omitempty"`
}

// PaymentCheck is the gateway's verdict for one invoice.
type PaymentCheck struct {
	InvoiceID  string
	Paid       bool
	PaymentID  string
	PaidAmount int64
}

type BankTransfer struct {
	TransactionID string `json:"transactionId"`
	PaymentURL    string `json:"paymentUrl"`
	QRCode        string `json:"qrCode"`
	AccountNumber string `json:"accountNumber"`
	AccountName   string `json:"accountName"`
	BankName      string `json:"bankName"`
	IsDemo        bool   `json:"isDemo"`
}

// QRInvoiceGateway issues QR invoices and verifies their payment.
type QRInvoiceGateway interface {
	CreateInvoice(ctx context.Context, req InvoiceRequest) (*Invoice, error)
	CheckPayment(ctx context.Context, invoiceID string) (*PaymentCheck, error)
}

type BankTransferGateway interface {
	CreateTransfer(ctx context.Context, orderID string, amount int64) (*BankTransfer, error)
}

type PaymentProvider string

const (
	ProviderQPay     PaymentProvider = "qpay"
	ProviderKhanBank PaymentProvider = "khanbank"
)

// PaymentCallback is one gateway notification as stored in the inbox.
type PaymentCallback struct {
	Provider   PaymentProvider
	OrderID    string
	InvoiceID  string
	PaymentID  string
	ReceivedAt time.Time
}

type PaymentCallbackRepository interface {
	// RecordCallback returns false when the same callback was already recorded.
	RecordCallback(ctx context.Context, cb PaymentCallback) (bool, error)
}

type PaymentRequest struct {
	OrderID     string `json:"orderId"     binding:"required"`
	Amount      int64  `json:"amount"      binding:"gte=0"`
	Description string `json:"description"`
}

type PaymentUseCase interface {
	CreateQPayInvoice(ctx context.Context, session *Session, req PaymentRequest) (*Invoice, error)
	CreateKhanBankTransfer(ctx context.Context, session *Session, req PaymentRequest) (*BankTransfer, error)
	// HandleQPayCallback verifies an unauthenticated gateway callback.
	HandleQPayCallback(ctx context.Context, orderID, paymentID string) (*Order, error)
	RefreshPayment(ctx context.Context, session *Session, orderID string) (*Order, error)
	Refund(ctx context.Context, session *Session, orderID string) (*Order, error)
}
