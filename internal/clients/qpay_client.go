package clients

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"sync"
	"time"

	"honeystore/internal/domain"
	"honeystore/internal/metrics"
	"honeystore/internal/patterns"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

const (
	qrServerURL               = "https://api.qrserver.com/v1/create-qr-code/?size=300x300&data="
	defaultInvoiceDescription = "Bataa's Honey Order"
	tokenRefreshMargin        = 30 * time.Second
)

var errNoCredentials = errors.New("qpay credentials are not configured")

type QPayConfig struct {
	BaseURL       string
	Username      string
	Password      string
	InvoiceCode   string
	PublicBaseURL string
	Timeout       time.Duration
}

type qpayTokenResponse struct {
	TokenType    string `json:"token_type"`
	AccessToken  string `json:"access_token"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
}

type qpayInvoiceRequest struct {
	InvoiceCode         string `json:"invoice_code"`
	SenderInvoiceNo     string `json:"sender_invoice_no"`
	InvoiceReceiverCode string `json:"invoice_receiver_code"`
	InvoiceDescription  string `json:"invoice_description"`
	Amount              int64  `json:"amount"`
	CallbackURL         string `json:"callback_url"`
}

type qpayInvoiceResponse struct {
	InvoiceID string               `json:"invoice_id"`
	QRText    string               `json:"qr_text"`
	QRImage   string               `json:"qr_image"`
	ShortURL  string               `json:"qPay_shortUrl"`
	URLs      []domain.PaymentLink `json:"urls"`
}

type qpayCheckRequest struct {
	ObjectType string          `json:"object_type"`
	ObjectID   string          `json:"object_id"`
	Offset     qpayCheckOffset `json:"offset"`
}

type qpayCheckOffset struct {
	PageNumber int `json:"page_number"`
	PageLimit  int `json:"page_limit"`
}

type qpayCheckResponse struct {
	Count      int     `json:"count"`
	PaidAmount float64 `json:"paid_amount"`
	Rows       []struct {
		PaymentID     string `json:"payment_id"`
		PaymentStatus string `json:"payment_status"`
		PaymentAmount string `json:"payment_amount"`
	} `json:"rows"`
}

type qpayClient struct {
	cfg     QPayConfig
	http    *resty.Client
	breaker *patterns.CircuitBreakerWrapper
	log     *logrus.Logger
	now     func() time.Time

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewQPayClient returns the QPay adapter. Without credentials, or whenever a
// token cannot be obtained, it issues demo invoices instead of failing.
func NewQPayClient(cfg QPayConfig, logger *logrus.Logger) domain.QRInvoiceGateway {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &qpayClient{
		cfg: cfg,
		http: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetTimeout(cfg.Timeout).
			SetRetryCount(0).
			ForceContentType("application/json"),
		breaker: patterns.NewCircuitBreaker("QPay", "honeystore", logger),
		log:     logger,
		now:     time.Now,
	}
}

func (c *qpayClient) CreateInvoice(ctx context.Context, req domain.InvoiceRequest) (*domain.Invoice, error) {
	metrics.PaymentAmount.Observe(float64(req.Amount))

	token, err := c.accessToken(ctx)
	if err != nil {
		c.log.Warnf("QPayClient: No access token for order %s, issuing demo invoice: %v", req.OrderID, err)
		return c.demoInvoice(req), nil
	}

	description := req.Description
	if description == "" {
		description = defaultInvoiceDescription
	}
	body := qpayInvoiceRequest{
		InvoiceCode:         c.cfg.InvoiceCode,
		SenderInvoiceNo:     req.OrderID,
		InvoiceReceiverCode: "terminal",
		InvoiceDescription:  description,
		Amount:              req.Amount,
		CallbackURL:         c.callbackURL(req.OrderID),
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		resp, httpErr := c.http.R().
			SetContext(ctx).
			SetAuthToken(token).
			SetBody(body).
			SetResult(&qpayInvoiceResponse{}).
			Post("/invoice")
		if httpErr != nil {
			return nil, fmt.Errorf("HTTP error: %w", httpErr)
		}
		if resp.StatusCode() == 401 {
			c.dropToken()
		}
		if !resp.IsSuccess() {
			return nil, fmt.Errorf("qpay invoice returned status %d: %s: %w", resp.StatusCode(), resp.String(), patterns.ErrRejected)
		}
		inv := resp.Result().(*qpayInvoiceResponse)
		if inv.InvoiceID == "" {
			return nil, fmt.Errorf("qpay invoice response has no invoice_id: %w", patterns.ErrRejected)
		}
		return inv, nil
	})
	if err != nil {
		if isTimeout(err) || patterns.IsOpen(err) {
			c.log.Warnf("QPayClient: Invoice for order %s unavailable, issuing demo invoice: %v", req.OrderID, err)
			return c.demoInvoice(req), nil
		}
		metrics.PaymentRequestsTotal.WithLabelValues(string(domain.ProviderQPay), "error").Inc()
		c.log.Errorf("QPayClient: Failed to create invoice for order %s: %v", req.OrderID, err)
		return nil, fmt.Errorf("create qpay invoice for order %s: %w: %w", req.OrderID, domain.ErrGateway, err)
	}

	inv := result.(*qpayInvoiceResponse)
	metrics.PaymentRequestsTotal.WithLabelValues(string(domain.ProviderQPay), "live").Inc()
	c.log.Infof("QPayClient: Invoice %s created for order %s (amount %d)", inv.InvoiceID, req.OrderID, req.Amount)

	urls := inv.URLs
	if urls == nil {
		urls = []domain.PaymentLink{}
	}
	return &domain.Invoice{
		InvoiceID: inv.InvoiceID,
		QRCode:    inv.QRText,
		QRImage:   inv.QRImage,
		URLs:      urls,
	}, nil
}

func (c *qpayClient) CheckPayment(ctx context.Context, invoiceID string) (*domain.PaymentCheck, error) {
	if domain.IsDemoInvoice(invoiceID) {
		return &domain.PaymentCheck{InvoiceID: invoiceID}, nil
	}
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("check qpay invoice %s: %w: %w", invoiceID, domain.ErrGateway, err)
	}

	body := qpayCheckRequest{
		ObjectType: "INVOICE",
		ObjectID:   invoiceID,
		Offset:     qpayCheckOffset{PageNumber: 1, PageLimit: 100},
	}
	result, err := c.breaker.Execute(func() (interface{}, error) {
		resp, httpErr := c.http.R().
			SetContext(ctx).
			SetAuthToken(token).
			SetBody(body).
			SetResult(&qpayCheckResponse{}).
			Post("/payment/check")
		if httpErr != nil {
			return nil, fmt.Errorf("HTTP error: %w", httpErr)
		}
		if resp.StatusCode() == 401 {
			c.dropToken()
		}
		if !resp.IsSuccess() {
			return nil, fmt.Errorf("qpay payment check returned status %d: %s: %w", resp.StatusCode(), resp.String(), patterns.ErrRejected)
		}
		return resp.Result().(*qpayCheckResponse), nil
	})
	if err != nil {
		c.log.Errorf("QPayClient: Failed to check invoice %s: %v", invoiceID, err)
		return nil, fmt.Errorf("check qpay invoice %s: %w: %w", invoiceID, domain.ErrGateway, err)
	}

	check := &domain.PaymentCheck{InvoiceID: invoiceID}
	for _, row := range result.(*qpayCheckResponse).Rows {
		if row.PaymentStatus != "PAID" {
			continue
		}
		check.Paid = true
		check.PaymentID = row.PaymentID
		if amount, err := strconv.ParseFloat(row.PaymentAmount, 64); err == nil {
			check.PaidAmount += int64(amount)
		}
	}
	c.log.Infof("QPayClient: Invoice %s checked, paid=%t", invoiceID, check.Paid)
	return check, nil
}

// accessToken returns the cached bearer token or fetches a new one.
func (c *qpayClient) accessToken(ctx context.Context) (string, error) {
	if c.cfg.Username == "" || c.cfg.Password == "" {
		return "", errNoCredentials
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && c.now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		resp, httpErr := c.http.R().
			SetContext(ctx).
			SetBasicAuth(c.cfg.Username, c.cfg.Password).
			SetResult(&qpayTokenResponse{}).
			Post("/auth/token")
		if httpErr != nil {
			return nil, fmt.Errorf("HTTP error: %w", httpErr)
		}
		if !resp.IsSuccess() {
			return nil, fmt.Errorf("qpay token returned status %d: %w", resp.StatusCode(), patterns.ErrRejected)
		}
		tok := resp.Result().(*qpayTokenResponse)
		if tok.AccessToken == "" {
			return nil, fmt.Errorf("qpay token response has no access_token: %w", patterns.ErrRejected)
		}
		return tok, nil
	})
	if err != nil {
		return "", patterns.FormatError("QPay", err)
	}

	tok := result.(*qpayTokenResponse)
	c.token = tok.AccessToken
	c.tokenExpiry = c.expiry(tok.ExpiresIn)
	c.log.Debugf("QPayClient: Access token cached until %s", c.tokenExpiry.Format(time.RFC3339))
	return c.token, nil
}

// expiry accepts expires_in either as a unix timestamp or as seconds from now.
func (c *qpayClient) expiry(expiresIn int64) time.Time {
	now := c.now()
	var at time.Time
	switch {
	case expiresIn <= 0:
		return now
	case expiresIn > 1_000_000_000:
		at = time.Unix(expiresIn, 0)
	default:
		at = now.Add(time.Duration(expiresIn) * time.Second)
	}
	return at.Add(-tokenRefreshMargin)
}

func (c *qpayClient) dropToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

func (c *qpayClient) callbackURL(orderID string) string {
	return c.cfg.PublicBaseURL + "/payment/qpay/callback?order_id=" + url.QueryEscape(orderID)
}

func (c *qpayClient) demoInvoice(req domain.InvoiceRequest) *domain.Invoice {
	metrics.PaymentRequestsTotal.WithLabelValues(string(domain.ProviderQPay), "demo").Inc()

	id := domain.DemoInvoicePrefix + strconv.FormatInt(c.now().UnixMilli(), 10)
	qr := fmt.Sprintf("%sQPay:%s:%d", qrServerURL, id, req.Amount)
	return &domain.Invoice{
		InvoiceID: id,
		QRCode:    qr,
		QRImage:   qr,
		URLs: []domain.PaymentLink{
			{Name: "Khan Bank", Link: "khanbank://payment?invoice=" + id},
			{Name: "Golomt Bank", Link: "golomtbank://payment?invoice=" + id},
			{Name: "State Bank", Link: "statebank://payment?invoice=" + id},
		},
		IsDemo: true,
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
