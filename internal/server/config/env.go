package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// envConfig lists the environment variables understood by the server.
// Variables that are not set leave the corresponding setting untouched.
type envConfig struct {
	EndpointAddrGRPC string        `env:"BIZDESK_GRPC_ADDR"`
	EndpointAddrHTTP string        `env:"BIZDESK_HTTP_ADDR"`
	DatabaseDSN      string        `env:"BIZDESK_DATABASE_DSN"`
	SecretKey        string        `env:"BIZDESK_SECRET_KEY"`
	BcryptCost       int           `env:"BIZDESK_BCRYPT_COST"`
	GoogleClientID   string        `env:"BIZDESK_GOOGLE_CLIENT_ID"`
	GoogleIssuer     string        `env:"BIZDESK_GOOGLE_ISSUER"`
	GeminiAPIKey     string        `env:"GEMINI_API_KEY"`
	GeminiBaseURL    string        `env:"BIZDESK_GEMINI_BASE_URL"`
	GeminiModel      string        `env:"BIZDESK_GEMINI_MODEL"`
	UpstreamTimeout  time.Duration `env:"BIZDESK_UPSTREAM_TIMEOUT"`
	ComposeTimeout   time.Duration `env:"BIZDESK_COMPOSE_TIMEOUT"`
	LogResetCodes    bool          `env:"BIZDESK_LOG_RESET_CODES"`
	LogLevel         string        `env:"BIZDESK_LOG_LEVEL"`
}

// parseEnv overlays environment variables onto config. When environ is nil
// the process environment is used.
func parseEnv(config *Config, environ map[string]string) error {
	ec := envConfig{
		EndpointAddrGRPC: config.EndpointAddrGRPC,
		EndpointAddrHTTP: config.EndpointAddrHTTP,
		DatabaseDSN:      config.DatabaseDSN,
		SecretKey:        config.SecretKey,
		BcryptCost:       config.BcryptCost,
		GoogleClientID:   config.GoogleClientID,
		GoogleIssuer:     config.GoogleIssuer,
		GeminiAPIKey:     config.GeminiAPIKey,
		GeminiBaseURL:    config.GeminiBaseURL,
		GeminiModel:      config.GeminiModel,
		UpstreamTimeout:  config.UpstreamTimeout,
		ComposeTimeout:   config.ComposeTimeout,
		LogResetCodes:    config.LogResetCodes,
		LogLevel:         config.LogLevel,
	}

	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&ec, opts); err != nil {
		return err
	}

	config.EndpointAddrGRPC = ec.EndpointAddrGRPC
	config.EndpointAddrHTTP = ec.EndpointAddrHTTP
	config.DatabaseDSN = ec.DatabaseDSN
	config.SecretKey = ec.SecretKey
	config.BcryptCost = ec.BcryptCost
	config.GoogleClientID = ec.GoogleClientID
	config.GoogleIssuer = ec.GoogleIssuer
	config.GeminiAPIKey = ec.GeminiAPIKey
	config.GeminiBaseURL = ec.GeminiBaseURL
	config.GeminiModel = ec.GeminiModel
	config.UpstreamTimeout = ec.UpstreamTimeout
	config.ComposeTimeout = ec.ComposeTimeout
	config.LogResetCodes = ec.LogResetCodes
	config.LogLevel = ec.LogLevel
	return nil
}
