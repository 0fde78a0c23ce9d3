package config

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

// DefaultJWTSecret is the JWT_SECRET fallback. It must be overridden outside
// local development.
const DefaultJWTSecret = "change-me-in-production"

type Config struct {
	DatabaseURL   string        `envconfig:"DATABASE_URL"    required:"true"`
	HTTPPort      string        `envconfig:"HTTP_PORT"       default:":8080"`
	GrpcPort      string        `envconfig:"GRPC_PORT"       default:":50051"`
	LogLevel      string        `envconfig:"LOG_LEVEL"       default:"info"`
	JWTSecret     string        `envconfig:"JWT_SECRET"      default:"change-me-in-production"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL"     default:"168h"`
	PublicBaseURL string        `envconfig:"PUBLIC_BASE_URL" default:"http://localhost:8080"`

	// QPay credentials may be empty; the adapter then runs in demo mode.
	QPayBaseURL     string        `envconfig:"QPAY_API_URL"      default:"https://merchant.qpay.mn/v2"`
	QPayUsername    string        `envconfig:"QPAY_USERNAME"`
	QPayPassword    string        `envconfig:"QPAY_PASSWORD"`
	QPayInvoiceCode string        `envconfig:"QPAY_INVOICE_CODE"`
	QPayTimeout     time.Duration `envconfig:"QPAY_TIMEOUT"      default:"5s"`

	KhanBankBaseURL     string `envconfig:"KHANBANK_API_URL"        default:"https://e.khanbank.com"`
	KhanBankMerchantID  string `envconfig:"KHANBANK_MERCHANT_ID"`
	KhanBankAccountNo   string `envconfig:"KHANBANK_ACCOUNT_NUMBER" default:"5012345678"`
	KhanBankAccountName string `envconfig:"KHANBANK_ACCOUNT_NAME"   default:"BATAA'S HONEY LLC"`

	KafkaBrokers string `envconfig:"KAFKA_BROKERS"`
	KafkaTopic   string `envconfig:"KAFKA_TOPIC"   default:"honeystore.orders"`

	ShippingFlatFee  int64 `envconfig:"SHIPPING_FLAT_FEE"  default:"5000"`
	ShippingFreeOver int64 `envconfig:"SHIPPING_FREE_OVER" default:"100000"`
}

// InsecureJWTSecret reports whether sessions are signed with the public
// default secret.
func (c *Config) InsecureJWTSecret() bool {
	return c.JWTSecret == DefaultJWTSecret
}

// BrokerList splits KAFKA_BROKERS on commas, dropping blanks.
func (c *Config) BrokerList() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

var (
	config Config
	once   sync.Once
)

func LoadConfig(logger *logrus.Logger) *Config {
	once.Do(func() {
		err := godotenv.Load()
		if err != nil && !os.IsNotExist(err) {
			logger.Warnf("Error loading .env file (but continuing): %v", err)
		} else if err == nil {
			logger.Info("Loaded configuration from .env file")
		}

		if err := Process(&config); err != nil {
			logger.Fatalf("Failed to process configuration from environment variables: %v", err)
		}

		logger.Infof("Configuration loaded: HTTP Port=%s, GRPC Port=%s, LogLevel=%s", config.HTTPPort, config.GrpcPort, config.LogLevel)
		if config.InsecureJWTSecret() {
			logger.Warn("Configuration: JWT_SECRET is the built-in default, anyone can forge session tokens; set JWT_SECRET before deploying")
		}
		if config.QPayUsername == "" || config.QPayPassword == "" {
			logger.Warn("Configuration: QPay credentials are not set, QPay payments will run in demo mode")
		}
		if len(config.BrokerList()) == 0 {
			logger.Info("Configuration: KAFKA_BROKERS is empty, order events will only be logged")
		}
	})
	return &config
}

// Process fills cfg from the environment without reading .env files.
func Process(cfg *Config) error {
	return envconfig.Process("", cfg)
}
