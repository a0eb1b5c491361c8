package grpc

import (
	"context"

	"github.com/dmitrijs2005/bizdesk/internal/api"
	"google.golang.org/grpc"
)

// bizdeskServer lists the handlers serviceDesc dispatches to.
type bizdeskServer interface {
	Register(context.Context, *api.RegisterRequest) (*api.SessionResponse, error)
	Login(context.Context, *api.LoginRequest) (*api.SessionResponse, error)
	FederatedLogin(context.Context, *api.FederatedLoginRequest) (*api.SessionResponse, error)
	RequestResetCode(context.Context, *api.ResetCodeRequest) (*api.MessageResponse, error)
	RedeemResetCode(context.Context, *api.RedeemResetCodeRequest) (*api.MessageResponse, error)
	Me(context.Context, *api.Empty) (*api.AccountResponse, error)
	UpdateProfile(context.Context, *api.UpdateProfileRequest) (*api.AccountResponse, error)
	ListAccounts(context.Context, *api.Empty) (*api.AccountListResponse, error)
	Compose(context.Context, *api.ComposeRequest) (*api.ComposeResponse, error)
	Ping(context.Context, *api.Empty) (*api.PingResponse, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: api.ServiceName,
	HandlerType: (*bizdeskServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(api.Register, bizdeskServer.Register),
		unary(api.Login, bizdeskServer.Login),
		unary(api.FederatedLogin, bizdeskServer.FederatedLogin),
		unary(api.RequestResetCode, bizdeskServer.RequestResetCode),
		unary(api.RedeemResetCode, bizdeskServer.RedeemResetCode),
		unary(api.Me, bizdeskServer.Me),
		unary(api.UpdateProfile, bizdeskServer.UpdateProfile),
		unary(api.ListAccounts, bizdeskServer.ListAccounts),
		unary(api.Compose, bizdeskServer.Compose),
		unary(api.Ping, bizdeskServer.Ping),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "bizdesk/v1/bizdesk.json",
}

// unary adapts a typed handler to a grpc.MethodDesc, decoding the request
// and routing the call through the interceptor chain.
func unary[Req, Resp any](name string, call func(bizdeskServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := api.FullMethod(name)

	handler := func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}

		invoke := func(ctx context.Context, req any) (any, error) {
			out, err := call(srv.(bizdeskServer), ctx, req.(*Req))
			if err != nil {
				return nil, err
			}
			return out, nil
		}

		if interceptor == nil {
			return invoke(ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		return interceptor(ctx, in, info, invoke)
	}

	return grpc.MethodDesc{MethodName: name, Handler: handler}
}
