package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified name of the metrics service
const ServiceName = "virtualcfo.v1.MetricsService"

// MetricsServiceServer is the server API for the metrics service
// Requests and responses are google.protobuf.Struct messages
type MetricsServiceServer interface {
	OpenSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CloseSession(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetSummary(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetRatios(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetGrowth(context.Context, *structpb.Struct) (*structpb.Struct, error)
	LoadStatements(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ResetStatements(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Ask(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(MetricsServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func methodHandler(name string, call unaryMethod) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	fullMethod := "/" + ServiceName + "/" + name
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(MetricsServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(MetricsServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// MetricsServiceDesc describes the metrics service for grpc.Server.RegisterService
var MetricsServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MetricsServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "OpenSession", Handler: methodHandler("OpenSession", MetricsServiceServer.OpenSession)},
		{MethodName: "CloseSession", Handler: methodHandler("CloseSession", MetricsServiceServer.CloseSession)},
		{MethodName: "GetSummary", Handler: methodHandler("GetSummary", MetricsServiceServer.GetSummary)},
		{MethodName: "GetRatios", Handler: methodHandler("GetRatios", MetricsServiceServer.GetRatios)},
		{MethodName: "GetGrowth", Handler: methodHandler("GetGrowth", MetricsServiceServer.GetGrowth)},
		{MethodName: "LoadStatements", Handler: methodHandler("LoadStatements", MetricsServiceServer.LoadStatements)},
		{MethodName: "ResetStatements", Handler: methodHandler("ResetStatements", MetricsServiceServer.ResetStatements)},
		{MethodName: "Ask", Handler: methodHandler("Ask", MetricsServiceServer.Ask)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "virtualcfo/v1/metrics.proto",
}

// RegisterMetricsServiceServer registers srv on s
func RegisterMetricsServiceServer(s grpc.ServiceRegistrar, srv MetricsServiceServer) {
	s.RegisterService(&MetricsServiceDesc, srv)
}

// MetricsServiceClient calls the metrics service over a client connection
type MetricsServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewMetricsServiceClient creates a new MetricsServiceClient instance
func NewMetricsServiceClient(cc grpc.ClientConnInterface) *MetricsServiceClient {
	return &MetricsServiceClient{cc: cc}
}

// Call invokes a unary method by name, e.g. "GetSummary"
func (c *MetricsServiceClient) Call(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
