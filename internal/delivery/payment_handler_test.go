package delivery

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"honeystore/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newPaymentRouter() (*mockPaymentUseCase, http.Handler) {
	payments := new(mockPaymentUseCase)
	return payments, newTestRouter(NewPaymentHandler(payments, quietLogger()))
}

func TestQPayInvoiceRequiresSession(t *testing.T) {
	payments, r := newPaymentRouter()

	w := doRequest(r, http.MethodPost, "/payment/qpay", "", `{"orderId":"o-1","amount":95000}`)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	payments.AssertNotCalled(t, "CreateQPayInvoice", mock.Anything, mock.Anything, mock.Anything)
}

func TestQPayInvoiceDemo(t *testing.T) {
	payments, r := newPaymentRouter()
	req := domain.PaymentRequest{OrderID: "o-1", Amount: 95000}
	payments.On("CreateQPayInvoice", mock.Anything, customerSession, req).Return(&domain.Invoice{
		InvoiceID: "DEMO_1760486400000",
		QRCode:    "https://api.qrserver.com/v1/create-qr-code/?size=300x300&data=QPay:DEMO_1760486400000:95000",
		QRImage:   "https://api.qrserver.com/v1/create-qr-code/?size=300x300&data=QPay:DEMO_1760486400000:95000",
		URLs:      []domain.PaymentLink{{Name: "Khan Bank", Link: "khanbank://q?qPay_QRcode=DEMO_1760486400000"}},
		IsDemo:    true,
	}, nil).Once()

	w := doRequest(r, http.MethodPost, "/payment/qpay", "customer", `{"orderId":"o-1","amount":95000}`)

	require.Equal(t, http.StatusOK, w.Code)
	var resp domain.Invoice
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.IsDemo)
	assert.Equal(t, "DEMO_1760486400000", resp.InvoiceID)
	assert.Contains(t, resp.QRImage, "api.qrserver.com")
}

func TestQPayInvoiceGatewayErrorIsGeneric(t *testing.T) {
	payments, r := newPaymentRouter()
	payments.On("CreateQPayInvoice", mock.Anything, customerSession, mock.Anything).
		Return(nil, fmt.Errorf("%w: invoice status 500: upstream secret detail", domain.ErrGateway)).Once()

	w := doRequest(r, http.MethodPost, "/payment/qpay", "customer", `{"orderId":"o-1"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "secret")
}

func TestQPayInvoiceMissingOrderID(t *testing.T) {
	_, r := newPaymentRouter()

	w := doRequest(r, http.MethodPost, "/payment/qpay", "customer", `{"amount":95000}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestKhanBankTransfer(t *testing.T) {
	payments, r := newPaymentRouter()
	payments.On("CreateKhanBankTransfer", mock.Anything, customerSession, domain.PaymentRequest{OrderID: "o-1"}).
		Return(&domain.BankTransfer{
			TransactionID: "KB_1760486400000_A1B2C3",
			AccountNumber: "5012345678",
			AccountName:   "BATAA'S HONEY LLC",
			BankName:      "Khan Bank",
			IsDemo:        true,
		}, nil).Once()

	w := doRequest(r, http.MethodPost, "/payment/khanbank", "customer", `{"orderId":"o-1"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"accountNumber":"5012345678"`)
	assert.Contains(t, w.Body.String(), `"isDemo":true`)
}

func TestQPayCallback(t *testing.T) {
	payments, r := newPaymentRouter()
	payments.On("HandleQPayCallback", mock.Anything, "o-1", "pay-7").
		Return(&domain.Order{ID: "o-1", PaymentStatus: domain.PaymentPaid}, nil).Twice()

	w := doRequest(r, http.MethodPost, "/payment/qpay/callback?order_id=o-1", "", `{"payment_id":"pay-7"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"paymentStatus":"paid"}`, w.Body.String())

	w = doRequest(r, http.MethodPost, "/payment/qpay/callback?order_id=o-1&payment_id=pay-7", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	payments.AssertExpectations(t)
}

func TestQPayCallbackMissingOrder(t *testing.T) {
	payments, r := newPaymentRouter()

	w := doRequest(r, http.MethodPost, "/payment/qpay/callback", "", `{"payment_id":"pay-7"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	payments.AssertNotCalled(t, "HandleQPayCallback", mock.Anything, mock.Anything, mock.Anything)
}

func TestRefreshPayment(t *testing.T) {
	payments, r := newPaymentRouter()
	payments.On("RefreshPayment", mock.Anything, customerSession, "o-1").
		Return(&domain.Order{ID: "o-1", PaymentStatus: domain.PaymentPending}, nil).Once()

	w := doRequest(r, http.MethodPost, "/payment/o-1/refresh", "customer", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"paymentStatus":"pending"`)
}
