package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/bizdesk/internal/api"
	"github.com/dmitrijs2005/bizdesk/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

var _ Client = (*GRPCClient)(nil)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn

	mu          sync.Mutex
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	if token := s.token(); token != "" {
		ctx = withAccessToken(ctx, token)
	}

	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewBizdeskClient creates a client for the service at endpointURL. The
// connection is established lazily on the first call.
func NewBizdeskClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	if err := c.initGRPCClient(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) initGRPCClient(extra ...grpc.DialOption) error {

	opts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(api.CodecName)),
	}

	conn, err := grpc.NewClient(s.endpointURL, append(opts, extra...)...)
	if err != nil {
		return err
	}
	s.conn = conn
	return nil
}

func (s *GRPCClient) invoke(ctx context.Context, method string, req, resp any) error {
	if err := s.conn.Invoke(ctx, api.FullMethod(method), req, resp); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken
}

func (s *GRPCClient) setToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = token
}

func (s *GRPCClient) startSession(resp *api.SessionResponse) *api.Account {
	s.setToken(resp.Token)
	return resp.Account
}

func (s *GRPCClient) Register(ctx context.Context, req *api.RegisterRequest) (*api.Account, error) {
	var resp api.SessionResponse
	if err := s.invoke(ctx, api.Register, req, &resp); err != nil {
		return nil, err
	}
	return s.startSession(&resp), nil
}

func (s *GRPCClient) Login(ctx context.Context, identifier string, password []byte) (*api.Account, error) {
	req := &api.LoginRequest{Identifier: identifier, Password: string(password)}

	var resp api.SessionResponse
	if err := s.invoke(ctx, api.Login, req, &resp); err != nil {
		return nil, err
	}
	return s.startSession(&resp), nil
}

func (s *GRPCClient) FederatedLogin(ctx context.Context, credential string) (*api.Account, error) {
	var resp api.SessionResponse
	if err := s.invoke(ctx, api.FederatedLogin, &api.FederatedLoginRequest{Credential: credential}, &resp); err != nil {
		return nil, err
	}
	return s.startSession(&resp), nil
}

func (s *GRPCClient) RequestResetCode(ctx context.Context, identifier string) error {
	var resp api.MessageResponse
	return s.invoke(ctx, api.RequestResetCode, &api.ResetCodeRequest{Identifier: identifier}, &resp)
}

func (s *GRPCClient) RedeemResetCode(ctx context.Context, identifier, code string, newPassword []byte) error {
	req := &api.RedeemResetCodeRequest{Identifier: identifier, Code: code, NewPassword: string(newPassword)}

	var resp api.MessageResponse
	return s.invoke(ctx, api.RedeemResetCode, req, &resp)
}

func (s *GRPCClient) Me(ctx context.Context) (*api.Account, error) {
	if !s.LoggedIn() {
		return nil, ErrNotLoggedIn
	}

	var resp api.AccountResponse
	if err := s.invoke(ctx, api.Me, &api.Empty{}, &resp); err != nil {
		return nil, err
	}
	return resp.Account, nil
}

func (s *GRPCClient) UpdateProfile(ctx context.Context, p api.Profile) (*api.Account, error) {
	if !s.LoggedIn() {
		return nil, ErrNotLoggedIn
	}

	var resp api.AccountResponse
	if err := s.invoke(ctx, api.UpdateProfile, &api.UpdateProfileRequest{Profile: p}, &resp); err != nil {
		return nil, err
	}
	return resp.Account, nil
}

func (s *GRPCClient) ListAccounts(ctx context.Context) ([]*api.Account, error) {
	if !s.LoggedIn() {
		return nil, ErrNotLoggedIn
	}

	var resp api.AccountListResponse
	if err := s.invoke(ctx, api.ListAccounts, &api.Empty{}, &resp); err != nil {
		return nil, err
	}
	return resp.Accounts, nil
}

func (s *GRPCClient) Compose(ctx context.Context, prompt string) (*api.ComposeResponse, error) {
	var resp api.ComposeResponse
	if err := s.invoke(ctx, api.Compose, &api.ComposeRequest{Prompt: prompt}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	var resp api.PingResponse
	return s.invoke(ctx, api.Ping, &api.Empty{}, &resp)
}

func (s *GRPCClient) LoggedIn() bool {
	return s.token() != ""
}

// Logout forgets the session token. Tokens are stateless, so nothing is sent
// to the server.
func (s *GRPCClient) Logout() {
	s.setToken("")
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrForbidden, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded:
		return fmt.Errorf("%w: %s", ErrUnavailable, st.Message())
	case codes.InvalidArgument, codes.AlreadyExists, codes.NotFound:
		return fmt.Errorf("%w: %s", ErrRejected, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
