package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"honeystore/config"
	"honeystore/internal/auth"
	"honeystore/internal/clients"
	"honeystore/internal/delivery"
	grpcHandler "honeystore/internal/delivery/grpc"
	"honeystore/internal/domain"
	"honeystore/internal/events"
	"honeystore/internal/repository"
	"honeystore/internal/usecase"
	"honeystore/pkg/db"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const serviceName = "honeystore"

func main() {
	logger := setupLogger(os.Getenv("LOG_LEVEL"))
	logger.Info("Starting Honeystore Service...")

	cfg := config.LoadConfig(logger)
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Errorf("Error closing database connection: %v", err)
		} else {
			logger.Info("Database connection closed.")
		}
	}()
	logger.Info("Database connection established.")

	schemaCtx, cancelSchema := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.EnsureSchema(schemaCtx, database); err != nil {
		cancelSchema()
		logger.Fatalf("Failed to apply database schema: %v", err)
	}
	cancelSchema()
	logger.Info("Database schema is up to date.")

	// --- Dependency Injection ---
	tokens := auth.NewJWTManager(cfg.JWTSecret, cfg.SessionTTL)
	shipping := domain.ShippingPolicy{FlatFee: cfg.ShippingFlatFee, FreeOver: cfg.ShippingFreeOver}

	orderRepo := repository.NewPostgresOrderRepository(database, logger)
	userRepo := repository.NewPostgresUserRepository(database, logger)
	productRepo := repository.NewPostgresProductRepository(database, logger)
	callbackRepo := repository.NewPostgresPaymentCallbackRepository(database, logger)
	logger.Info("Repositories initialized.")

	qpay := clients.NewQPayClient(clients.QPayConfig{
		BaseURL:       cfg.QPayBaseURL,
		Username:      cfg.QPayUsername,
		Password:      cfg.QPayPassword,
		InvoiceCode:   cfg.QPayInvoiceCode,
		PublicBaseURL: cfg.PublicBaseURL,
		Timeout:       cfg.QPayTimeout,
	}, logger)
	khanBank := clients.NewKhanBankClient(clients.KhanBankConfig{
		BaseURL:       cfg.KhanBankBaseURL,
		MerchantID:    cfg.KhanBankMerchantID,
		AccountNumber: cfg.KhanBankAccountNo,
		AccountName:   cfg.KhanBankAccountName,
	}, logger)
	publisher := events.NewPublisher(cfg.BrokerList(), cfg.KafkaTopic, logger)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Errorf("Error closing event publisher: %v", err)
		}
	}()
	logger.Info("Gateway clients and event publisher initialized.")

	orderUseCase := usecase.NewOrderUseCase(orderRepo, publisher, shipping, logger)
	paymentUseCase := usecase.NewPaymentUseCase(orderRepo, callbackRepo, qpay, khanBank, publisher, logger)
	userUseCase := usecase.NewUserUseCase(userRepo, tokens, logger)
	productUseCase := usecase.NewProductUseCase(productRepo, logger)
	logger.Info("Use cases initialized.")

	gin.SetMode(gin.ReleaseMode)
	router := delivery.NewRouter(serviceName, tokens, logger,
		delivery.NewHealthHandler(database, logger),
		delivery.NewAuthHandler(userUseCase, tokens.TTL(), strings.HasPrefix(cfg.PublicBaseURL, "https://"), logger),
		delivery.NewProductHandler(productUseCase, logger),
		delivery.NewCartHandler(shipping, logger),
		delivery.NewOrderHandler(orderUseCase, paymentUseCase, logger),
		delivery.NewPaymentHandler(paymentUseCase, logger),
	)
	router.RedirectTrailingSlash = false
	logger.Info("Routes registered.")

	httpServer := &http.Server{
		Addr:              cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Infof("HTTP server listening on %s", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Failed to serve HTTP: %v", err)
		}
	}()

	lis, err := net.Listen("tcp", cfg.GrpcPort)
	if err != nil {
		logger.Fatalf("Failed to listen on port %s: %v", cfg.GrpcPort, err)
	}
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(grpcHandler.AuthInterceptor(tokens, logger)))
	grpcHandler.RegisterOrderServiceServer(grpcServer, grpcHandler.NewOrderHandler(orderUseCase, logger))

	healthServer := health.NewServer()
	healthServer.SetServingStatus(grpcHandler.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	reflection.Register(grpcServer)
	logger.Info("gRPC reflection service registered")

	go func() {
		logger.Infof("gRPC server listening on %s", cfg.GrpcPort)
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			logger.Fatalf("Failed to serve gRPC: %v", err)
		}
		logger.Info("gRPC server stopped serving.")
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Warn("Shutdown signal received...")

	healthServer.Shutdown()
	grpcServer.GracefulStop()
	logger.Info("gRPC server gracefully stopped.")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("HTTP server shutdown error: %v", err)
	}
	logger.Info("Honeystore Service shut down gracefully.")
}

func setupLogger(level string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)
	return logger
}
