package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceDesc describes curation.v1.CurationService. Requests and responses
// are google.protobuf.Struct, so no generated stubs are needed.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*CurationServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetGallery", Handler: unary(CurationServer.GetGallery, "GetGallery")},
		{MethodName: "ListGalleries", Handler: unary(CurationServer.ListGalleries, "ListGalleries")},
		{MethodName: "GetValidationMap", Handler: unary(CurationServer.GetValidationMap, "GetValidationMap")},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "curation/v1/curation.proto",
}

type rpc func(CurationServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(call rpc, method string) grpc.MethodHandler {
	fullMethod := "/" + serviceName + "/" + method
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CurationServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(CurationServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}
