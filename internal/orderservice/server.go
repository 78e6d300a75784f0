package orderservice

import (
	"context"

	"github.com/nikolayk812/oja-market/internal/orderapi"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Handler is the server side of orderapi.ServiceName.
type Handler interface {
	CreateOrder(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

func Register(server grpc.ServiceRegistrar, h Handler) {
	server.RegisterService(&serviceDesc, h)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: orderapi.ServiceName,
	HandlerType: (*Handler)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CreateOrder",
			Handler:    createOrderHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "oja/orders/v1/orders.proto",
}

func createOrderHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(Handler).CreateOrder(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: orderapi.CreateOrderMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(Handler).CreateOrder(ctx, req.(*structpb.Struct))
	}

	return interceptor(ctx, in, info, handler)
}
