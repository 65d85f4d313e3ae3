package events

import (
	"context"

	"github.com/Udonxai/weak-link/pkg/grpcjson"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const BreakService_ServiceName = "weaklink.events.BreakService"

const (
	BreakService_RecordBreak_FullMethodName     = "/weaklink.events.BreakService/RecordBreak"
	BreakService_ListTrackedApps_FullMethodName = "/weaklink.events.BreakService/ListTrackedApps"
	BreakService_ListBreaks_FullMethodName      = "/weaklink.events.BreakService/ListBreaks"
)

type BreakServiceServer interface {
	RecordBreak(context.Context, *RecordBreakRequest) (*RecordBreakResponse, error)
	ListTrackedApps(context.Context, *ListTrackedAppsRequest) (*ListTrackedAppsResponse, error)
	ListBreaks(context.Context, *ListBreaksRequest) (*ListBreaksResponse, error)
}

// UnimplementedBreakServiceServer can be embedded for forward compatibility.
type UnimplementedBreakServiceServer struct{}

func (UnimplementedBreakServiceServer) RecordBreak(context.Context, *RecordBreakRequest) (*RecordBreakResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RecordBreak not implemented")
}

func (UnimplementedBreakServiceServer) ListTrackedApps(context.Context, *ListTrackedAppsRequest) (*ListTrackedAppsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListTrackedApps not implemented")
}

func (UnimplementedBreakServiceServer) ListBreaks(context.Context, *ListBreaksRequest) (*ListBreaksResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListBreaks not implemented")
}

func RegisterBreakServiceServer(s grpc.ServiceRegistrar, srv BreakServiceServer) {
	s.RegisterService(&BreakService_ServiceDesc, srv)
}

func _BreakService_RecordBreak_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(RecordBreakRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BreakServiceServer).RecordBreak(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: BreakService_RecordBreak_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(BreakServiceServer).RecordBreak(ctx, req.(*RecordBreakRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _BreakService_ListTrackedApps_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ListTrackedAppsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BreakServiceServer).ListTrackedApps(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: BreakService_ListTrackedApps_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(BreakServiceServer).ListTrackedApps(ctx, req.(*ListTrackedAppsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _BreakService_ListBreaks_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ListBreaksRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(BreakServiceServer).ListBreaks(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: BreakService_ListBreaks_FullMethodName,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(BreakServiceServer).ListBreaks(ctx, req.(*ListBreaksRequest))
	}
	return interceptor(ctx, in, info, handler)
}

var BreakService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: BreakService_ServiceName,
	HandlerType: (*BreakServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "RecordBreak", Handler: _BreakService_RecordBreak_Handler},
		{MethodName: "ListTrackedApps", Handler: _BreakService_ListTrackedApps_Handler},
		{MethodName: "ListBreaks", Handler: _BreakService_ListBreaks_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "weaklink/events/break_service",
}

type BreakServiceClient interface {
	RecordBreak(ctx context.Context, in *RecordBreakRequest, opts ...grpc.CallOption) (*RecordBreakResponse, error)
	ListTrackedApps(ctx context.Context, in *ListTrackedAppsRequest, opts ...grpc.CallOption) (*ListTrackedAppsResponse, error)
	ListBreaks(ctx context.Context, in *ListBreaksRequest, opts ...grpc.CallOption) (*ListBreaksResponse, error)
}

type breakServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewBreakServiceClient(cc grpc.ClientConnInterface) BreakServiceClient {
	return &breakServiceClient{cc: cc}
}

func callOptions(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(grpcjson.Name)}, opts...)
}

func (c *breakServiceClient) RecordBreak(ctx context.Context, in *RecordBreakRequest, opts ...grpc.CallOption) (*RecordBreakResponse, error) {
	out := new(RecordBreakResponse)
	if err := c.cc.Invoke(ctx, BreakService_RecordBreak_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *breakServiceClient) ListTrackedApps(ctx context.Context, in *ListTrackedAppsRequest, opts ...grpc.CallOption) (*ListTrackedAppsResponse, error) {
	out := new(ListTrackedAppsResponse)
	if err := c.cc.Invoke(ctx, BreakService_ListTrackedApps_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *breakServiceClient) ListBreaks(ctx context.Context, in *ListBreaksRequest, opts ...grpc.CallOption) (*ListBreaksResponse, error) {
	out := new(ListBreaksResponse)
	if err := c.cc.Invoke(ctx, BreakService_ListBreaks_FullMethodName, in, out, callOptions(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}
