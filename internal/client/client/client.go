package client

import (
	"context"

	"github.com/dmitrijs2005/bizdesk/internal/api"
)

type Client interface {
	Close() error
	Register(ctx context.Context, req *api.RegisterRequest) (*api.Account, error)
	Login(ctx context.Context, identifier string, password []byte) (*api.Account, error)
	FederatedLogin(ctx context.Context, credential string) (*api.Account, error)
	RequestResetCode(ctx context.Context, identifier string) error
	RedeemResetCode(ctx context.Context, identifier, code string, newPassword []byte) error
	Me(ctx context.Context) (*api.Account, error)
	UpdateProfile(ctx context.Context, p api.Profile) (*api.Account, error)
	ListAccounts(ctx context.Context) ([]*api.Account, error)
	Compose(ctx context.Context, prompt string) (*api.ComposeResponse, error)
	Ping(ctx context.Context) error
	LoggedIn() bool
	Logout()
}
