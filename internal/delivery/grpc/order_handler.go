package grpc

import (
	"context"
	"errors"
	"strings"

	"honeystore/internal/domain"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type OrderHandler struct {
	useCase domain.OrderUseCase
	log     *logrus.Logger
}

func NewOrderHandler(uc domain.OrderUseCase, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{
		useCase: uc,
		log:     logger,
	}
}

type sessionKey struct{}

// AuthInterceptor resolves the bearer token in the "authorization" metadata.
// Calls without a valid token proceed with no session.
func AuthInterceptor(tokens domain.SessionTokens, logger *logrus.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		md, ok := metadata.FromIncomingContext(ctx)
		if ok {
			for _, v := range md.Get("authorization") {
				token, found := strings.CutPrefix(v, "Bearer ")
				if !found {
					continue
				}
				session, err := tokens.Parse(strings.TrimSpace(token))
				if err != nil {
					logger.Debugf("gRPC Interceptor: Ignoring invalid token on %s: %v", info.FullMethod, err)
					break
				}
				ctx = context.WithValue(ctx, sessionKey{}, session)
				break
			}
		}
		return handler(ctx, req)
	}
}

func sessionFrom(ctx context.Context) *domain.Session {
	s, _ := ctx.Value(sessionKey{}).(*domain.Session)
	return s
}

func (h *OrderHandler) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*OrderResponse, error) {
	session := sessionFrom(ctx)
	if session == nil {
		return nil, mapDomainErrorToGrpcStatus(domain.ErrUnauthorized)
	}
	h.log.Infof("gRPC Handler: Received CreateOrder request for UserID: %s with %d items", session.UserID, len(req.Items))

	order, err := h.useCase.CreateOrder(ctx, session, req.CreateOrderInput)
	if err != nil {
		h.log.Errorf("gRPC Handler: CreateOrder use case error for UserID %s: %v", session.UserID, err)
		return nil, mapDomainErrorToGrpcStatus(err)
	}

	h.log.Infof("gRPC Handler: Order created successfully: %s for UserID=%s", order.OrderNumber, order.UserID)
	return &OrderResponse{Order: order}, nil
}

func (h *OrderHandler) GetOrder(ctx context.Context, req *GetOrderRequest) (*OrderResponse, error) {
	if req.ID == "" {
		return nil, status.Error(codes.InvalidArgument, "Invalid Order ID")
	}

	order, err := h.useCase.GetOrder(ctx, sessionFrom(ctx), req.ID)
	if err != nil {
		h.log.Warnf("gRPC Handler: GetOrder use case error for OrderID %s: %v", req.ID, err)
		return nil, mapDomainErrorToGrpcStatus(err)
	}
	return &OrderResponse{Order: order}, nil
}

func (h *OrderHandler) ListOrders(ctx context.Context, _ *ListOrdersRequest) (*ListOrdersResponse, error) {
	orders, err := h.useCase.ListOrders(ctx, sessionFrom(ctx))
	if err != nil {
		h.log.Warnf("gRPC Handler: ListOrders use case error: %v", err)
		return nil, mapDomainErrorToGrpcStatus(err)
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	h.log.Infof("gRPC Handler: Listed %d orders", len(orders))
	return &ListOrdersResponse{Orders: orders}, nil
}

func mapDomainErrorToGrpcStatus(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return status.Error(codes.Unauthenticated, "unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		return status.Error(codes.PermissionDenied, "forbidden")
	case errors.Is(err, domain.ErrNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, domain.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrInvalidPaymentTransition):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, domain.ErrConflict):
		return status.Error(codes.AlreadyExists, "already exists")
	default:
		return status.Error(codes.Internal, "Internal server error")
	}
}
