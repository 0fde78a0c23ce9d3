package domain

import (
	"context"
	"strconv"
	"time"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

func IsValidStatus(status OrderStatus) bool {
	switch status {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

type PaymentMethod string

const (
	MethodQPay     PaymentMethod = "qpay"
	MethodKhanBank PaymentMethod = "khanbank"
	MethodCard     PaymentMethod = "card"
	MethodCash     PaymentMethod = "cash"
)

func IsValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case MethodQPay, MethodKhanBank, MethodCard, MethodCash:
		return true
	default:
		return false
	}
}

// OrderItem is a snapshot of the product at checkout time.
type OrderItem struct {
	ProductID string `json:"productId" binding:"required"`
	Name      string `json:"name"      binding:"required"`
	Price     int64  `json:"price"     binding:"gte=0"`
	Quantity  int    `json:"quantity"  binding:"required,gte=1"`
	Image     string `json:"image"`
}

type ShippingAddress struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"    binding:"required"`
	Street   string `json:"street"   binding:"required"`
	City     string `json:"city"`
	District string `json:"district" binding:"required"`
	ZipCode  string `json:"zipCode,omitempty"`
}

// PaymentDetails holds gateway correlation ids. Only the keys an adapter sets
// are written, so the json tags must stay omitempty.
type PaymentDetails struct {
	TransactionID string `json:"transactionId,omitempty"`
	QRCode        string `json:"qrCode,omitempty"`
	InvoiceID     string `json:"invoiceId,omitempty"`
}

type Order struct {
	ID              string          `json:"id"`
	OrderNumber     string          `json:"orderNumber"`
	UserID          string          `json:"userId"`
	Items           []OrderItem     `json:"items"`
	Subtotal        int64           `json:"subtotal"`
	ShippingCost    int64           `json:"shippingCost"`
	Discount        int64           `json:"discount"`
	Total           int64           `json:"total"`
	Status          OrderStatus     `json:"status"`
	PaymentStatus   PaymentStatus   `json:"paymentStatus"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod"`
	PaymentDetails  *PaymentDetails `json:"paymentDetails,omitempty"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// OwnedBy reports whether the session may read or pay for the order.
func (o *Order) OwnedBy(s *Session) bool {
	if s == nil {
		return false
	}
	return s.IsAdmin() || o.UserID == s.UserID
}

// CreateOrderInput is the checkout payload. Binding tags are enforced at the
// HTTP edge; Validate repeats the cross-field checks for every transport.
type CreateOrderInput struct {
	Items           []OrderItem     `json:"items"           binding:"required,min=1,dive"`
	Subtotal        int64           `json:"subtotal"        binding:"gte=0"`
	ShippingCost    int64           `json:"shippingCost"    binding:"gte=0"`
	Discount        int64           `json:"discount"        binding:"gte=0"`
	Total           int64           `json:"total"           binding:"gte=0"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod"   binding:"required,oneof=qpay khanbank card cash"`
	ShippingAddress ShippingAddress `json:"shippingAddress" binding:"required"`
	Notes           string          `json:"notes"`
}

// Validate checks the payload and the money invariant. A zero shipping cost
// is replaced by the policy's charge for the subtotal before the check.
func (in *CreateOrderInput) Validate(policy ShippingPolicy) error {
	if len(in.Items) == 0 {
		return NewValidationError("items", "order must contain at least one item")
	}
	var subtotal int64
	for i, item := range in.Items {
		switch {
		case item.ProductID == "":
			return NewValidationError("items", "item "+strconv.Itoa(i)+": productId is required")
		case item.Name == "":
			return NewValidationError("items", "item "+strconv.Itoa(i)+": name is required")
		case item.Price < 0:
			return NewValidationError("items", "item "+strconv.Itoa(i)+": price cannot be negative")
		case item.Quantity < 1:
			return NewValidationError("items", "item "+strconv.Itoa(i)+": quantity must be at least 1")
		}
		subtotal += item.Price * int64(item.Quantity)
	}
	if in.Subtotal < 0 || in.ShippingCost < 0 || in.Discount < 0 || in.Total < 0 {
		return NewValidationError("total", "money fields cannot be negative")
	}
	if in.Subtotal != subtotal {
		return NewValidationError("subtotal", "subtotal does not match the items")
	}
	if !IsValidPaymentMethod(in.PaymentMethod) {
		return NewValidationError("paymentMethod", "unsupported payment method "+string(in.PaymentMethod))
	}
	a := in.ShippingAddress
	if a.Phone == "" || a.Street == "" || a.District == "" {
		return NewValidationError("shippingAddress", "phone, street and district are required")
	}
	if in.ShippingCost == 0 {
		in.ShippingCost = policy.Cost(in.Subtotal)
	}
	if in.Total != in.Subtotal+in.ShippingCost-in.Discount {
		return NewValidationError("total", "total must equal subtotal + shippingCost - discount")
	}
	return nil
}

type OrderRepository interface {
	// CreateOrder returns ErrDuplicateOrderNumber when the order number is taken.
	CreateOrder(ctx context.Context, order *Order) (*Order, error)
	GetOrderByID(ctx context.Context, id string) (*Order, error)
	// ListOrders returns every order when userID is empty, newest first.
	ListOrders(ctx context.Context, userID string) ([]Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status OrderStatus) (*Order, error)
	// UpdatePaymentStatus only applies when the row is still in from.
	UpdatePaymentStatus(ctx context.Context, id string, from, to PaymentStatus) (*Order, error)
	// AttachPaymentDetails merges the non-empty fields of details into the
	// order's payment details. An empty method leaves paymentMethod unchanged.
	AttachPaymentDetails(ctx context.Context, id string, method PaymentMethod, details PaymentDetails) (*Order, error)
}

type OrderUseCase interface {
	CreateOrder(ctx context.Context, session *Session, input CreateOrderInput) (*Order, error)
	GetOrder(ctx context.Context, session *Session, id string) (*Order, error)
	ListOrders(ctx context.Context, session *Session) ([]Order, error)
	UpdateOrderStatus(ctx context.Context, session *Session, id string, status OrderStatus) (*Order, error)
}
