package usecase

import (
	"context"
	"io"

	"honeystore/internal/domain"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type mockOrderRepo struct{ mock.Mock }

func orderResult(args mock.Arguments) (*domain.Order, error) {
	o, _ := args.Get(0).(*domain.Order)
	return o, args.Error(1)
}

// CreateOrder echoes the input order when the expectation returns (nil, nil).
func (m *mockOrderRepo) CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	args := m.Called(ctx, order)
	if args.Get(0) == nil && args.Error(1) == nil {
		return order, nil
	}
	return orderResult(args)
}

func (m *mockOrderRepo) GetOrderByID(ctx context.Context, id string) (*domain.Order, error) {
	return orderResult(m.Called(ctx, id))
}

func (m *mockOrderRepo) ListOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	args := m.Called(ctx, userID)
	orders, _ := args.Get(0).([]domain.Order)
	return orders, args.Error(1)
}

func (m *mockOrderRepo) UpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	return orderResult(m.Called(ctx, id, status))
}

func (m *mockOrderRepo) UpdatePaymentStatus(ctx context.Context, id string, from, to domain.PaymentStatus) (*domain.Order, error) {
	return orderResult(m.Called(ctx, id, from, to))
}

func (m *mockOrderRepo) AttachPaymentDetails(ctx context.Context, id string, method domain.PaymentMethod, details domain.PaymentDetails) (*domain.Order, error) {
	return orderResult(m.Called(ctx, id, method, details))
}

type mockCallbackRepo struct{ mock.Mock }

func (m *mockCallbackRepo) RecordCallback(ctx context.Context, cb domain.PaymentCallback) (bool, error) {
	args := m.Called(ctx, cb)
	return args.Bool(0), args.Error(1)
}

type mockQPay struct{ mock.Mock }

func (m *mockQPay) CreateInvoice(ctx context.Context, req domain.InvoiceRequest) (*domain.Invoice, error) {
	args := m.Called(ctx, req)
	inv, _ := args.Get(0).(*domain.Invoice)
	return inv, args.Error(1)
}

func (m *mockQPay) CheckPayment(ctx context.Context, invoiceID string) (*domain.PaymentCheck, error) {
	args := m.Called(ctx, invoiceID)
	check, _ := args.Get(0).(*domain.PaymentCheck)
	return check, args.Error(1)
}

type mockKhanBank struct{ mock.Mock }

func (m *mockKhanBank) CreateTransfer(ctx context.Context, orderID string, amount int64) (*domain.BankTransfer, error) {
	args := m.Called(ctx, orderID, amount)
	tr, _ := args.Get(0).(*domain.BankTransfer)
	return tr, args.Error(1)
}

type recordingPublisher struct {
	events []domain.OrderEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event domain.OrderEvent) error {
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []domain.EventType {
	out := make([]domain.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	args := m.Called(ctx, user)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *mockUserRepo) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *mockUserRepo) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

type stubTokens struct{}

func (stubTokens) Issue(user *domain.User) (string, error) { return "token-" + user.ID, nil }

func (stubTokens) Parse(token string) (*domain.Session, error) { return nil, domain.ErrUnauthorized }

type mockProductRepo struct{ mock.Mock }

func (m *mockProductRepo) CreateProduct(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	args := m.Called(ctx, p)
	out, _ := args.Get(0).(*domain.Product)
	return out, args.Error(1)
}

func (m *mockProductRepo) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	out, _ := args.Get(0).(*domain.Product)
	return out, args.Error(1)
}

func (m *mockProductRepo) UpdateProduct(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	args := m.Called(ctx, p)
	out, _ := args.Get(0).(*domain.Product)
	return out, args.Error(1)
}

func (m *mockProductRepo) DeleteProduct(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockProductRepo) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, int, error) {
	args := m.Called(ctx, filter)
	out, _ := args.Get(0).([]domain.Product)
	return out, args.Int(1), args.Error(2)
}

func (m *mockProductRepo) CountByCategory(ctx context.Context) (map[domain.ProductCategory]int, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).(map[domain.ProductCategory]int)
	return out, args.Error(1)
}
