package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/bizdesk/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// statusCode maps a service error to a gRPC code. The boolean reports
// whether the error message is safe to return to the caller.
func statusCode(err error) (codes.Code, bool) {
	switch {
	case errors.Is(err, common.ErrConflict):
		return codes.AlreadyExists, true
	case errors.Is(err, common.ErrorNotFound):
		return codes.NotFound, true
	case errors.Is(err, common.ErrInvalidCredential),
		errors.Is(err, common.ErrInvalidAssertion),
		errors.Is(err, common.ErrInvalidOrExpiredCode),
		errors.Is(err, common.ErrInvalidInput):
		return codes.InvalidArgument, true
	case errors.Is(err, common.ErrUnauthenticated),
		errors.Is(err, common.ErrTokenExpired):
		return codes.Unauthenticated, true
	case errors.Is(err, common.ErrForbidden):
		return codes.PermissionDenied, true
	case errors.Is(err, common.ErrUpstreamFailure):
		return codes.Unavailable, true
	default:
		return codes.Internal, false
	}
}

func (s *GRPCServer) statusError(ctx context.Context, err error) error {
	code, public := statusCode(err)
	if !public {
		s.logger.Error(ctx, "request failed", "error", err)
		return status.Error(code, common.ErrorInternal.Error())
	}
	return status.Error(code, err.Error())
}
