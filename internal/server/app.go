// Package server wires the bizdesk server together: storage, identity and
// business-chat services, and the gRPC and HTTP transports, and runs them
// until the process is told to stop.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/bizdesk/internal/logging"
	"github.com/dmitrijs2005/bizdesk/internal/server/agents"
	"github.com/dmitrijs2005/bizdesk/internal/server/auth"
	"github.com/dmitrijs2005/bizdesk/internal/server/config"
	"github.com/dmitrijs2005/bizdesk/internal/server/federated"
	"github.com/dmitrijs2005/bizdesk/internal/server/httpapi"
	"github.com/dmitrijs2005/bizdesk/internal/server/metrics"
	"github.com/dmitrijs2005/bizdesk/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/bizdesk/internal/server/services"

	gs "github.com/dmitrijs2005/bizdesk/internal/server/grpc"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	grpcServer *gs.GRPCServer
	httpServer *httpapi.Server
}

// NewApp validates c, connects to the database, applies migrations and
// builds every component.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := repomanager.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	return newApp(ctx, c, logger, db, rm), nil
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger, db *sql.DB, rm repomanager.RepositoryManager) *App {
	if c.GoogleClientID == "" {
		logger.Warn(ctx, "Google client id is not configured, federated login will reject every assertion")
	}
	if c.GeminiAPIKey == "" {
		logger.Warn(ctx, "Gemini API key is not configured, business chat will fail")
	}

	m := metrics.New()

	tokens := auth.NewTokenService([]byte(c.SecretKey))
	identity := services.NewIdentityService(
		db,
		rm,
		auth.NewBcryptHasher(c.BcryptCost),
		tokens,
		federated.NewVerifier(c.GoogleIssuer, c.GoogleClientID, c.UpstreamTimeout),
		services.NewLogSender(logger, c.LogResetCodes),
		logger,
	)

	completer := agents.NewGeminiClient(c.GeminiAPIKey, c.GeminiBaseURL, c.GeminiModel, c.UpstreamTimeout)
	orchestrator := agents.NewOrchestrator(completer, personas(c.Personas), c.ComposeTimeout, logger, agents.WithRecorder(m))

	return &App{
		config:     c,
		logger:     logger,
		db:         db,
		grpcServer: gs.NewGRPCServer(c.EndpointAddrGRPC, logger, identity, orchestrator, tokens, m),
		httpServer: httpapi.NewServer(c.EndpointAddrHTTP, logger, identity, orchestrator, tokens, m),
	}
}

func personas(ps []config.Persona) []agents.Persona {
	out := make([]agents.Persona, 0, len(ps))
	for _, p := range ps {
		out = append(out, agents.Persona{Label: p.Label, Instruction: p.Instruction})
	}
	return out
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case <-sigs:
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

// runServer runs one transport and stops the whole app when it fails.
func (app *App) runServer(ctx context.Context, cancelFunc context.CancelFunc, name string, run func(context.Context) error) {
	if err := run(ctx); err != nil {
		app.logger.Error(ctx, "server failed", "server", name, "error", err)
		cancelFunc()
	}
}

// Run serves both transports until ctx is cancelled, a termination signal
// arrives or one of the servers fails, then closes the database.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(ctx, cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.runServer(ctx, cancelFunc, "grpc", app.grpcServer.Run)
	}()
	go func() {
		defer wg.Done()
		app.runServer(ctx, cancelFunc, "http", app.httpServer.Run)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}

	app.logger.Info(ctx, "App stopped")
}
