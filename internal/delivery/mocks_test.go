package delivery

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"honeystore/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"
)

var (
	customerSession = &domain.Session{UserID: "user-1", Email: "bat@example.mn", Role: domain.RoleUser}
	adminSession    = &domain.Session{UserID: "admin-1", Email: "admin@example.mn", Role: domain.RoleAdmin}
)

// stubTokens accepts the literal tokens "customer" and "admin".
type stubTokens struct{}

func (stubTokens) Issue(user *domain.User) (string, error) { return "issued-" + user.ID, nil }

func (stubTokens) Parse(token string) (*domain.Session, error) {
	switch token {
	case "customer":
		return customerSession, nil
	case "admin":
		return adminSession, nil
	}
	return nil, errors.New("bad token")
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestRouter(registrars ...RouteRegistrar) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter("honeystore-test", stubTokens{}, quietLogger(), registrars...)
}

func doRequest(r http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type mockOrderUseCase struct{ mock.Mock }

func (m *mockOrderUseCase) CreateOrder(ctx context.Context, session *domain.Session, input domain.CreateOrderInput) (*domain.Order, error) {
	args := m.Called(ctx, session, input)
	order, _ := args.Get(0).(*domain.Order)
	return order, args.Error(1)
}

func (m *mockOrderUseCase) GetOrder(ctx context.Context, session *domain.Session, id string) (*domain.Order, error) {
	args := m.Called(ctx, session, id)
	order, _ := args.Get(0).(*domain.Order)
	return order, args.Error(1)
}

func (m *mockOrderUseCase) ListOrders(ctx context.Context, session *domain.Session) ([]domain.Order, error) {
	args := m.Called(ctx, session)
	orders, _ := args.Get(0).([]domain.Order)
	return orders, args.Error(1)
}

func (m *mockOrderUseCase) UpdateOrderStatus(ctx context.Context, session *domain.Session, id string, status domain.OrderStatus) (*domain.Order, error) {
	args := m.Called(ctx, session, id, status)
	order, _ := args.Get(0).(*domain.Order)
	return order, args.Error(1)
}

type mockPaymentUseCase struct{ mock.Mock }

func (m *mockPaymentUseCase) CreateQPayInvoice(ctx context.Context, session *domain.Session, req domain.PaymentRequest) (*domain.Invoice, error) {
	args := m.Called(ctx, session, req)
	inv, _ := args.Get(0).(*domain.Invoice)
	return inv, args.Error(1)
}

func (m *mockPaymentUseCase) CreateKhanBankTransfer(ctx context.Context, session *domain.Session, req domain.PaymentRequest) (*domain.BankTransfer, error) {
	args := m.Called(ctx, session, req)
	t, _ := args.Get(0).(*domain.BankTransfer)
	return t, args.Error(1)
}

func (m *mockPaymentUseCase) HandleQPayCallback(ctx context.Context, orderID, paymentID string) (*domain.Order, error) {
	args := m.Called(ctx, orderID, paymentID)
	order, _ := args.Get(0).(*domain.Order)
	return order, args.Error(1)
}

func (m *mockPaymentUseCase) RefreshPayment(ctx context.Context, session *domain.Session, orderID string) (*domain.Order, error) {
	args := m.Called(ctx, session, orderID)
	order, _ := args.Get(0).(*domain.Order)
	return order, args.Error(1)
}

func (m *mockPaymentUseCase) Refund(ctx context.Context, session *domain.Session, orderID string) (*domain.Order, error) {
	args := m.Called(ctx, session, orderID)
	order, _ := args.Get(0).(*domain.Order)
	return order, args.Error(1)
}

type mockUserUseCase struct{ mock.Mock }

func (m *mockUserUseCase) Register(ctx context.Context, name, email, password string) (*domain.User, string, error) {
	args := m.Called(ctx, name, email, password)
	user, _ := args.Get(0).(*domain.User)
	return user, args.String(1), args.Error(2)
}

func (m *mockUserUseCase) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	args := m.Called(ctx, email, password)
	user, _ := args.Get(0).(*domain.User)
	return user, args.String(1), args.Error(2)
}

func (m *mockUserUseCase) Me(ctx context.Context, session *domain.Session) (*domain.User, error) {
	args := m.Called(ctx, session)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

type mockProductUseCase struct{ mock.Mock }

func (m *mockProductUseCase) CreateProduct(ctx context.Context, session *domain.Session, product *domain.Product) (*domain.Product, error) {
	args := m.Called(ctx, session, product)
	p, _ := args.Get(0).(*domain.Product)
	return p, args.Error(1)
}

func (m *mockProductUseCase) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*domain.Product)
	return p, args.Error(1)
}

func (m *mockProductUseCase) UpdateProduct(ctx context.Context, session *domain.Session, id string, product *domain.Product) (*domain.Product, error) {
	args := m.Called(ctx, session, id, product)
	p, _ := args.Get(0).(*domain.Product)
	return p, args.Error(1)
}

func (m *mockProductUseCase) DeleteProduct(ctx context.Context, session *domain.Session, id string) error {
	return m.Called(ctx, session, id).Error(0)
}

func (m *mockProductUseCase) ListProducts(ctx context.Context, filter domain.ProductFilter) (*domain.ProductPage, error) {
	args := m.Called(ctx, filter)
	page, _ := args.Get(0).(*domain.ProductPage)
	return page, args.Error(1)
}

func (m *mockProductUseCase) ListCategories(ctx context.Context) ([]domain.CategorySummary, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]domain.CategorySummary)
	return out, args.Error(1)
}
