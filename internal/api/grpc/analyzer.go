package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Analyzer service definition. Messages are google.protobuf.Struct values,
// so no generated code is needed on either side.
const (
	analyzerServiceName       = "ghanalyzer.v1.Analyzer"
	issuesReportMethod        = "/" + analyzerServiceName + "/IssuesReport"
	topContributorsMethod     = "/" + analyzerServiceName + "/TopContributors"
	analyzerServiceSourceFile = "ghanalyzer/v1/analyzer.proto"
)

// AnalyzerServer is the server API for Analyzer service.
type AnalyzerServer interface {
	IssuesReport(context.Context, *structpb.Struct) (*structpb.Struct, error)
	TopContributors(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterAnalyzerServer registers Analyzer service implementation in grpc server.
func RegisterAnalyzerServer(s grpc.ServiceRegistrar, srv AnalyzerServer) {
	s.RegisterService(&analyzerServiceDesc, srv)
}

var analyzerServiceDesc = grpc.ServiceDesc{
	ServiceName: analyzerServiceName,
	HandlerType: (*AnalyzerServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "IssuesReport",
			Handler:    issuesReportHandler,
		},
		{
			MethodName: "TopContributors",
			Handler:    topContributorsHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: analyzerServiceSourceFile,
}

func issuesReportHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AnalyzerServer).IssuesReport(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: issuesReportMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AnalyzerServer).IssuesReport(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func topContributorsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AnalyzerServer).TopContributors(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: topContributorsMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AnalyzerServer).TopContributors(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}
