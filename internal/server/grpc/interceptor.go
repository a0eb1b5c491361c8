package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/bizdesk/internal/api"
	"github.com/dmitrijs2005/bizdesk/internal/common"
	"github.com/dmitrijs2005/bizdesk/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// methodAccess lists the methods that need a session; all others are public.
var methodAccess = map[string]auth.Access{
	api.FullMethod(api.Me):            auth.AccessAuthenticated,
	api.FullMethod(api.UpdateProfile): auth.AccessAuthenticated,
	api.FullMethod(api.ListAccounts):  auth.AccessAdmin,
}

func accessFor(fullMethod string) auth.Access {
	if a, ok := methodAccess[fullMethod]; ok {
		return a
	}
	return auth.AccessPublic
}

func tokenFromMetadata(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get(common.AuthorizationHeaderName)
	if len(values) == 0 {
		return ""
	}
	return auth.BearerToken(values[0])
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {

	access := accessFor(info.FullMethod)
	if access == auth.AccessPublic {
		return handler(ctx, req)
	}

	claims, err := s.guard.Guard(tokenFromMetadata(ctx), access)
	if err != nil {
		return nil, s.statusError(ctx, err)
	}

	return handler(auth.NewContext(ctx, claims), req)
}

func (s *GRPCServer) observeInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()

	resp, err := handler(ctx, req)

	code := status.Code(err)
	if s.observer != nil {
		s.observer.ObserveGRPCCall(info.FullMethod, code.String())
	}
	s.logger.Debug(ctx, "gRPC call", "method", info.FullMethod, "code", code.String(), "elapsed", time.Since(start))

	return resp, err
}
