package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/bizdesk/internal/flagx"
	"github.com/dmitrijs2005/bizdesk/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration so both "10s" and integer nanoseconds are accepted.
// Absent or zero values leave the current setting untouched.
type JsonConfig struct {
	EndpointAddrGRPC string         `json:"endpoint_addr_grpc"`
	EndpointAddrHTTP string         `json:"endpoint_addr_http"`
	DatabaseDSN      string         `json:"database_dsn"`
	SecretKey        string         `json:"secret_key"`
	BcryptCost       int            `json:"bcrypt_cost"`
	GoogleClientID   string         `json:"google_client_id"`
	GoogleIssuer     string         `json:"google_issuer"`
	GeminiAPIKey     string         `json:"gemini_api_key"`
	GeminiBaseURL    string         `json:"gemini_base_url"`
	GeminiModel      string         `json:"gemini_model"`
	UpstreamTimeout  timex.Duration `json:"upstream_timeout"`
	ComposeTimeout   timex.Duration `json:"compose_timeout"`
	Personas         []Persona      `json:"personas"`
	LogResetCodes    bool           `json:"log_reset_codes"`
	LogLevel         string         `json:"log_level"`
}

// parseJson overlays values from the file named by -c / -config. Without the
// flag nothing is loaded. An unreadable file or invalid JSON panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFileFlag()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.GoogleClientID, c.GoogleClientID)
	setString(&config.GoogleIssuer, c.GoogleIssuer)
	setString(&config.GeminiAPIKey, c.GeminiAPIKey)
	setString(&config.GeminiBaseURL, c.GeminiBaseURL)
	setString(&config.GeminiModel, c.GeminiModel)
	setString(&config.LogLevel, c.LogLevel)

	if c.BcryptCost != 0 {
		config.BcryptCost = c.BcryptCost
	}
	if c.UpstreamTimeout.Duration != 0 {
		config.UpstreamTimeout = c.UpstreamTimeout.Duration
	}
	if c.ComposeTimeout.Duration != 0 {
		config.ComposeTimeout = c.ComposeTimeout.Duration
	}
	if len(c.Personas) > 0 {
		config.Personas = c.Personas
	}
	if c.LogResetCodes {
		config.LogResetCodes = true
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
