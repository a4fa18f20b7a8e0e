package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "launchdash.v1.QueryService"

// Method names.
const (
	MethodOptions   = "Options"
	MethodSummarize = "Summarize"
	MethodCorrelate = "Correlate"
)

// QueryServer is the server API for the query service.
type QueryServer interface {
	Options(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Summarize(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Correlate(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc describes the query service for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*QueryServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodOptions, QueryServer.Options),
		unary(MethodSummarize, QueryServer.Summarize),
		unary(MethodCorrelate, QueryServer.Correlate),
	},
	Streams: []grpc.StreamDesc{},
}

// Register mounts srv on s.
func Register(s *grpc.Server, srv QueryServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// FullMethod returns the "/service/method" path used on the wire.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

type unaryFunc func(QueryServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// unary builds the method descriptor for one Struct→Struct call.
func unary(method string, call unaryFunc) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(QueryServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			handler := func(ctx context.Context, req interface{}) (interface{}, error) {
				return call(srv.(QueryServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
