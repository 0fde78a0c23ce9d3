package grpc

import (
	"context"

	"honeystore/internal/domain"

	"google.golang.org/grpc"
)

const ServiceName = "honeystore.v1.OrderService"

type CreateOrderRequest struct {
	domain.CreateOrderInput
}

type GetOrderRequest struct {
	ID string `json:"id"`
}

type ListOrdersRequest struct{}

type OrderResponse struct {
	Order *domain.Order `json:"order"`
}

type ListOrdersResponse struct {
	Orders []domain.Order `json:"orders"`
}

type OrderServiceServer interface {
	CreateOrder(ctx context.Context, req *CreateOrderRequest) (*OrderResponse, error)
	GetOrder(ctx context.Context, req *GetOrderRequest) (*OrderResponse, error)
	ListOrders(ctx context.Context, req *ListOrdersRequest) (*ListOrdersResponse, error)
}

func RegisterOrderServiceServer(s grpc.ServiceRegistrar, srv OrderServiceServer) {
	s.RegisterService(&OrderServiceDesc, srv)
}

var OrderServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*OrderServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateOrder", Handler: createOrderHandler},
		{MethodName: "GetOrder", Handler: getOrderHandler},
		{MethodName: "ListOrders", Handler: listOrdersHandler},
	},
	Streams: []grpc.StreamDesc{},
}

func createOrderHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(CreateOrderRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrderServiceServer).CreateOrder(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/CreateOrder"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(OrderServiceServer).CreateOrder(ctx, req.(*CreateOrderRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func getOrderHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetOrderRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrderServiceServer).GetOrder(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/GetOrder"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(OrderServiceServer).GetOrder(ctx, req.(*GetOrderRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func listOrdersHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ListOrdersRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrderServiceServer).ListOrders(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/ListOrders"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(OrderServiceServer).ListOrders(ctx, req.(*ListOrdersRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// OrderServiceClient calls the service with the JSON codec.
type OrderServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewOrderServiceClient(cc grpc.ClientConnInterface) *OrderServiceClient {
	return &OrderServiceClient{cc: cc}
}

func (c *OrderServiceClient) CreateOrder(ctx context.Context, in *CreateOrderRequest, opts ...grpc.CallOption) (*OrderResponse, error) {
	out := new(OrderResponse)
	if err := c.invoke(ctx, "CreateOrder", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OrderServiceClient) GetOrder(ctx context.Context, in *GetOrderRequest, opts ...grpc.CallOption) (*OrderResponse, error) {
	out := new(OrderResponse)
	if err := c.invoke(ctx, "GetOrder", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OrderServiceClient) ListOrders(ctx context.Context, in *ListOrdersRequest, opts ...grpc.CallOption) (*ListOrdersResponse, error) {
	out := new(ListOrdersResponse)
	if err := c.invoke(ctx, "ListOrders", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *OrderServiceClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...)
}
