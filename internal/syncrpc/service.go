// Package syncrpc declares the HabitKeeper gRPC service: the descriptor the
// server registers and the typed stub the client calls.
//
// Messages are protobuf well-known types. Scalar arguments travel as
// wrapperspb values; composite ones are JSON documents inside a
// wrapperspb.BytesValue (see Encode and Decode), which keeps the records
// schema in one place (internal/models) for both ends.
package syncrpc

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const ServiceName = "habitkeeper.SyncService"

// Full method names, used by the server interceptor to decide which calls
// require an access token.
const (
	MethodPing            = "/" + ServiceName + "/Ping"
	MethodRegisterUser    = "/" + ServiceName + "/RegisterUser"
	MethodGetSalt         = "/" + ServiceName + "/GetSalt"
	MethodLogin           = "/" + ServiceName + "/Login"
	MethodPutSnapshot     = "/" + ServiceName + "/PutSnapshot"
	MethodGetSnapshot     = "/" + ServiceName + "/GetSnapshot"
	MethodDeliverMutation = "/" + ServiceName + "/DeliverMutation"
)

// RegisterRequest is the JSON body of RegisterUser.
type RegisterRequest struct {
	Username string `json:"username"`
	Salt     []byte `json:"salt"`
	Verifier []byte `json:"verifier"`
}

// LoginRequest is the JSON body of Login.
type LoginRequest struct {
	Username          string `json:"username"`
	VerifierCandidate []byte `json:"verifierCandidate"`
}

// LoginResponse is the JSON body answered by Login.
type LoginResponse struct {
	UserID      string `json:"userId"`
	AccessToken string `json:"accessToken"`
}

// Encode wraps v as JSON inside a BytesValue.
func Encode(v any) (*wrapperspb.BytesValue, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	return wrapperspb.Bytes(b), nil
}

// Decode unmarshals a BytesValue produced by Encode into v.
func Decode(msg *wrapperspb.BytesValue, v any) error {
	if msg == nil {
		return fmt.Errorf("decode message: empty")
	}
	if err := json.Unmarshal(msg.GetValue(), v); err != nil {
		return fmt.Errorf("decode message: %w", err)
	}
	return nil
}

// SyncServiceServer is implemented by the server.
type SyncServiceServer interface {
	Ping(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error)
	RegisterUser(context.Context, *wrapperspb.BytesValue) (*emptypb.Empty, error)
	GetSalt(context.Context, *wrapperspb.StringValue) (*wrapperspb.BytesValue, error)
	Login(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error)
	PutSnapshot(context.Context, *wrapperspb.BytesValue) (*emptypb.Empty, error)
	GetSnapshot(context.Context, *emptypb.Empty) (*wrapperspb.BytesValue, error)
	DeliverMutation(context.Context, *wrapperspb.BytesValue) (*emptypb.Empty, error)
}

// SyncServiceClient is the client-side stub.
type SyncServiceClient interface {
	Ping(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	RegisterUser(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*emptypb.Empty, error)
	GetSalt(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
	Login(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
	PutSnapshot(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*emptypb.Empty, error)
	GetSnapshot(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
	DeliverMutation(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*emptypb.Empty, error)
}

type syncServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewSyncServiceClient(cc grpc.ClientConnInterface) SyncServiceClient {
	return &syncServiceClient{cc: cc}
}

func (c *syncServiceClient) Ping(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, MethodPing, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *syncServiceClient) RegisterUser(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, MethodRegisterUser, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *syncServiceClient) GetSalt(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	if err := c.cc.Invoke(ctx, MethodGetSalt, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *syncServiceClient) Login(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	if err := c.cc.Invoke(ctx, MethodLogin, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *syncServiceClient) PutSnapshot(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, MethodPutSnapshot, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *syncServiceClient) GetSnapshot(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	if err := c.cc.Invoke(ctx, MethodGetSnapshot, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *syncServiceClient) DeliverMutation(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	out := new(emptypb.Empty)
	if err := c.cc.Invoke(ctx, MethodDeliverMutation, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// RegisterSyncServiceServer attaches srv to s.
func RegisterSyncServiceServer(s grpc.ServiceRegistrar, srv SyncServiceServer) {
	s.RegisterService(&SyncService_ServiceDesc, srv)
}

// unaryHandler adapts one typed server method to grpc.MethodDesc.
func unaryHandler[Req any, Resp any](fullMethod string, newReq func() Req, call func(SyncServiceServer, context.Context, Req) (Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := newReq()
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(SyncServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(SyncServiceServer), ctx, req.(Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var SyncService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*SyncServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Ping",
			Handler: unaryHandler(MethodPing, func() *emptypb.Empty { return new(emptypb.Empty) },
				SyncServiceServer.Ping),
		},
		{
			MethodName: "RegisterUser",
			Handler: unaryHandler(MethodRegisterUser, func() *wrapperspb.BytesValue { return new(wrapperspb.BytesValue) },
				SyncServiceServer.RegisterUser),
		},
		{
			MethodName: "GetSalt",
			Handler: unaryHandler(MethodGetSalt, func() *wrapperspb.StringValue { return new(wrapperspb.StringValue) },
				SyncServiceServer.GetSalt),
		},
		{
			MethodName: "Login",
			Handler: unaryHandler(MethodLogin, func() *wrapperspb.BytesValue { return new(wrapperspb.BytesValue) },
				SyncServiceServer.Login),
		},
		{
			MethodName: "PutSnapshot",
			Handler: unaryHandler(MethodPutSnapshot, func() *wrapperspb.BytesValue { return new(wrapperspb.BytesValue) },
				SyncServiceServer.PutSnapshot),
		},
		{
			MethodName: "GetSnapshot",
			Handler: unaryHandler(MethodGetSnapshot, func() *emptypb.Empty { return new(emptypb.Empty) },
				SyncServiceServer.GetSnapshot),
		},
		{
			MethodName: "DeliverMutation",
			Handler: unaryHandler(MethodDeliverMutation, func() *wrapperspb.BytesValue { return new(wrapperspb.BytesValue) },
				SyncServiceServer.DeliverMutation),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "habitkeeper/sync.proto",
}
