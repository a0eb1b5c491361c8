package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/bizdesk/internal/logging"
	"github.com/dmitrijs2005/bizdesk/internal/server/transport"
	"google.golang.org/grpc"
)

// CallObserver records finished unary calls.
type CallObserver interface {
	ObserveGRPCCall(method, code string)
}

type GRPCServer struct {
	address  string
	identity transport.Identity
	composer transport.Composer
	guard    transport.Guard
	observer CallObserver
	logger   logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, id transport.Identity, c transport.Composer, g transport.Guard, o CallObserver) *GRPCServer {
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		identity: id,
		composer: c,
		guard:    g,
		observer: o,
	}
}

// newServer creates a gRPC server with the service and interceptors registered.
func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.observeInterceptor, s.accessTokenInterceptor))
	srv.RegisterService(&serviceDesc, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is cancelled.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
