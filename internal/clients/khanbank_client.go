package clients

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"honeystore/internal/domain"
	"honeystore/internal/metrics"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type KhanBankConfig struct {
	BaseURL       string
	MerchantID    string
	AccountNumber string
	AccountName   string
}

// khanBankClient has no live API integration; every transfer it creates is a
// demo instruction for a manual bank transfer.
type khanBankClient struct {
	cfg KhanBankConfig
	log *logrus.Logger
	now func() time.Time
}

func NewKhanBankClient(cfg KhanBankConfig, logger *logrus.Logger) domain.BankTransferGateway {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://e.khanbank.com"
	}
	if cfg.AccountNumber == "" {
		cfg.AccountNumber = "5012345678"
	}
	if cfg.AccountName == "" {
		cfg.AccountName = "BATAA'S HONEY LLC"
	}
	return &khanBankClient{
		cfg: cfg,
		log: logger,
		now: time.Now,
	}
}

func (c *khanBankClient) CreateTransfer(ctx context.Context, orderID string, amount int64) (*domain.BankTransfer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	metrics.PaymentAmount.Observe(float64(amount))

	// Millisecond timestamps alone collide under concurrent checkouts.
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	txn := "KB_" + strconv.FormatInt(c.now().UnixMilli(), 10) + "_" + suffix

	paymentURL := fmt.Sprintf("%s/payment?merchant=%s&amount=%d&txn=%s",
		strings.TrimRight(c.cfg.BaseURL, "/"), url.QueryEscape(c.cfg.MerchantID), amount, txn)

	transfer := &domain.BankTransfer{
		TransactionID: txn,
		PaymentURL:    paymentURL,
		QRCode:        fmt.Sprintf("%sKhanBank:%s:%d", qrServerURL, txn, amount),
		AccountNumber: c.cfg.AccountNumber,
		AccountName:   c.cfg.AccountName,
		BankName:      "Khan Bank",
		IsDemo:        true,
	}

	metrics.PaymentRequestsTotal.WithLabelValues(string(domain.ProviderKhanBank), "demo").Inc()
	c.log.Infof("KhanBankClient: Transfer %s prepared for order %s (amount %d)", txn, orderID, amount)
	return transfer, nil
}
