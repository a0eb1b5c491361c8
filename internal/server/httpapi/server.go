// Package httpapi serves the JSON API used by the web front end.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/bizdesk/internal/logging"
	"github.com/dmitrijs2005/bizdesk/internal/server/auth"
	"github.com/dmitrijs2005/bizdesk/internal/server/transport"
	"github.com/gorilla/mux"
)

const (
	maxBodyBytes    = 1 << 20
	shutdownTimeout = 5 * time.Second
)

// Metrics is what the server needs from the metrics registry.
type Metrics interface {
	TrackInFlight() func()
	ObserveHTTPRequest(method, path string, status int, elapsed time.Duration)
	Handler() http.Handler
}

type Server struct {
	address  string
	identity transport.Identity
	composer transport.Composer
	guard    transport.Guard
	metrics  Metrics
	logger   logging.Logger
}

// NewServer builds the HTTP server. m may be nil, in which case requests are
// not measured and /metrics is not served.
func NewServer(a string, l logging.Logger, id transport.Identity, c transport.Composer, g transport.Guard, m Metrics) *Server {
	return &Server{
		address:  a,
		logger:   l.With("module", "http_server"),
		identity: id,
		composer: c,
		guard:    g,
		metrics:  m,
	}
}

// Router returns the request multiplexer with every route and middleware
// attached.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.Use(s.observe)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/users/register", s.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/users/login", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/users/federated-login", s.handleFederatedLogin).Methods(http.MethodPost)
	api.HandleFunc("/users/reset-code", s.handleRequestResetCode).Methods(http.MethodPost)
	api.HandleFunc("/users/reset-code/redeem", s.handleRedeemResetCode).Methods(http.MethodPost)

	api.Handle("/users/me", s.require(auth.AccessAuthenticated, s.handleMe)).Methods(http.MethodGet)
	api.Handle("/users/me/profile", s.require(auth.AccessAuthenticated, s.handleUpdateProfile)).Methods(http.MethodPut)
	api.Handle("/admin/users", s.require(auth.AccessAdmin, s.handleListAccounts)).Methods(http.MethodGet)

	api.HandleFunc("/business-chat", s.handleCompose).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeMessage(w, http.StatusNotFound, "route not found")
	})

	return r
}

func (s *Server) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, lis)
}

// Serve handles requests on lis until ctx is cancelled, then drains
// in-flight requests for up to shutdownTimeout.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn(ctx, "HTTP shutdown incomplete", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
