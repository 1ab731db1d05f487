package grpc

import (
	"context"
	"time"

	"github.com/fjod/game-hardware-store/internal/domain"
	"github.com/fjod/game-hardware-store/internal/identity"
	"github.com/fjod/game-hardware-store/internal/logger"
	"github.com/fjod/game-hardware-store/internal/service"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

const ServiceName = "storefront.v1.CheckoutService"

type CheckoutServiceServer interface {
	Checkout(ctx context.Context, req *CheckoutRequest) (*CheckoutResponse, error)
	GetOrder(ctx context.Context, req *GetOrderRequest) (*GetOrderResponse, error)
	ListOrders(ctx context.Context, req *ListOrdersRequest) (*ListOrdersResponse, error)
}

type OrderReader interface {
	GetOrder(ctx context.Context, ownerID int64, id uuid.UUID) (*domain.Order, error)
	ListOrders(ctx context.Context, ownerID int64) ([]*domain.Order, error)
}

type Server struct {
	checkout service.CheckoutService
	orders   OrderReader
}

func NewServer(checkout service.CheckoutService, orders OrderReader) *Server {
	return &Server{checkout: checkout, orders: orders}
}

func (s *Server) Checkout(ctx context.Context, _ *CheckoutRequest) (*CheckoutResponse, error) {
	owner, err := identity.FromIncomingMetadata(ctx)
	if err != nil {
		return nil, toStatus(err)
	}

	result, err := s.checkout.Checkout(ctx, owner)
	if err != nil {
		return nil, toStatus(err)
	}
	return encodeCheckoutResult(result), nil
}

func (s *Server) GetOrder(ctx context.Context, req *GetOrderRequest) (*GetOrderResponse, error) {
	owner, err := identity.FromIncomingMetadata(ctx)
	if err != nil {
		return nil, toStatus(err)
	}

	id, err := uuid.Parse(req.GetValue())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "order_id must be a UUID")
	}

	order, err := s.orders.GetOrder(ctx, owner.ID, id)
	if err != nil {
		return nil, toStatus(err)
	}
	return encodeOrder(order), nil
}

func (s *Server) ListOrders(ctx context.Context, _ *ListOrdersRequest) (*ListOrdersResponse, error) {
	owner, err := identity.FromIncomingMetadata(ctx)
	if err != nil {
		return nil, toStatus(err)
	}

	orders, err := s.orders.ListOrders(ctx, owner.ID)
	if err != nil {
		return nil, toStatus(err)
	}
	return encodeOrders(orders), nil
}

func RegisterCheckoutServiceServer(r grpc.ServiceRegistrar, srv CheckoutServiceServer) {
	r.RegisterService(&CheckoutServiceDesc, srv)
}

var CheckoutServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CheckoutServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Checkout", Handler: checkoutHandler},
		{MethodName: "GetOrder", Handler: getOrderHandler},
		{MethodName: "ListOrders", Handler: listOrdersHandler},
	},
	Streams:     []grpc.StreamDesc{},
}

func checkoutHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(CheckoutRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CheckoutServiceServer).Checkout(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/Checkout"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CheckoutServiceServer).Checkout(ctx, req.(*CheckoutRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func getOrderHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetOrderRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CheckoutServiceServer).GetOrder(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/GetOrder"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CheckoutServiceServer).GetOrder(ctx, req.(*GetOrderRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func listOrdersHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(ListOrdersRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CheckoutServiceServer).ListOrders(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/ListOrders"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CheckoutServiceServer).ListOrders(ctx, req.(*ListOrdersRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// NewGRPCServer builds an instrumented server with the checkout and health
// services registered.
func NewGRPCServer(srv CheckoutServiceServer, log *zap.Logger) (*grpc.Server, *health.Server) {
	s := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(loggingInterceptor(log)),
	)
	RegisterCheckoutServiceServer(s, srv)

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, hs)
	return s, hs
}

func loggingInterceptor(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		l := logger.WithContext(ctx, log)
		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.Stringer("code", status.Code(err)),
			zap.Duration("duration", time.Since(start)),
		}
		if status.Code(err) == codes.Internal {
			l.Error("grpc request failed", append(fields, zap.Error(err))...)
		} else {
			l.Info("grpc request", fields...)
		}
		return resp, err
	}
}
