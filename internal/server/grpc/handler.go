package grpc

import (
	"context"

	"github.com/dmitrijs2005/bizdesk/internal/api"
	"github.com/dmitrijs2005/bizdesk/internal/common"
	"github.com/dmitrijs2005/bizdesk/internal/server/auth"
	"github.com/dmitrijs2005/bizdesk/internal/server/transport"
)

var _ bizdeskServer = (*GRPCServer)(nil)

func (s *GRPCServer) Register(ctx context.Context, req *api.RegisterRequest) (*api.SessionResponse, error) {

	session, err := s.identity.Register(ctx, transport.RegistrationFromAPI(req))
	if err != nil {
		return nil, s.statusError(ctx, err)
	}

	s.logger.Info(ctx, "Registered", "account_id", session.Account.ID)
	return transport.SessionToAPI(session), nil
}

func (s *GRPCServer) Login(ctx context.Context, req *api.LoginRequest) (*api.SessionResponse, error) {

	session, err := s.identity.Login(ctx, req.Identifier, req.Password)
	if err != nil {
		return nil, s.statusError(ctx, err)
	}

	return transport.SessionToAPI(session), nil
}

func (s *GRPCServer) FederatedLogin(ctx context.Context, req *api.FederatedLoginRequest) (*api.SessionResponse, error) {

	session, err := s.identity.FederatedLogin(ctx, req.Credential)
	if err != nil {
		return nil, s.statusError(ctx, err)
	}

	return transport.SessionToAPI(session), nil
}

func (s *GRPCServer) RequestResetCode(ctx context.Context, req *api.ResetCodeRequest) (*api.MessageResponse, error) {

	if err := s.identity.RequestResetCode(ctx, req.Identifier); err != nil {
		return nil, s.statusError(ctx, err)
	}

	return &api.MessageResponse{Message: "reset code sent"}, nil
}

func (s *GRPCServer) RedeemResetCode(ctx context.Context, req *api.RedeemResetCodeRequest) (*api.MessageResponse, error) {

	if err := s.identity.RedeemResetCode(ctx, req.Identifier, req.Code, req.NewPassword); err != nil {
		return nil, s.statusError(ctx, err)
	}

	return &api.MessageResponse{Message: "password updated"}, nil
}

func (s *GRPCServer) Me(ctx context.Context, _ *api.Empty) (*api.AccountResponse, error) {

	claims, ok := auth.FromContext(ctx)
	if !ok {
		return nil, s.statusError(ctx, common.ErrUnauthenticated)
	}

	info, err := s.identity.Me(ctx, claims.AccountID())
	if err != nil {
		return nil, s.statusError(ctx, err)
	}

	return &api.AccountResponse{Account: transport.AccountToAPI(info)}, nil
}

func (s *GRPCServer) UpdateProfile(ctx context.Context, req *api.UpdateProfileRequest) (*api.AccountResponse, error) {

	claims, ok := auth.FromContext(ctx)
	if !ok {
		return nil, s.statusError(ctx, common.ErrUnauthenticated)
	}

	info, err := s.identity.UpdateProfile(ctx, claims.AccountID(), transport.ProfileFromAPI(req.Profile))
	if err != nil {
		return nil, s.statusError(ctx, err)
	}

	return &api.AccountResponse{Account: transport.AccountToAPI(info)}, nil
}

func (s *GRPCServer) ListAccounts(ctx context.Context, _ *api.Empty) (*api.AccountListResponse, error) {

	accounts, err := s.identity.ListAccounts(ctx)
	if err != nil {
		return nil, s.statusError(ctx, err)
	}

	return &api.AccountListResponse{Accounts: transport.AccountsToAPI(accounts)}, nil
}

func (s *GRPCServer) Compose(ctx context.Context, req *api.ComposeRequest) (*api.ComposeResponse, error) {

	answer, err := s.composer.Compose(ctx, req.Prompt)
	if err != nil {
		return nil, s.statusError(ctx, err)
	}

	return transport.AnswerToAPI(answer), nil
}

func (s *GRPCServer) Ping(ctx context.Context, _ *api.Empty) (*api.PingResponse, error) {

	return &api.PingResponse{Status: "OK"}, nil

}
