package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv_OverridesOnlySetVariables(t *testing.T) {
	var c Config
	c.LoadDefaults()

	err := parseEnv(&c, map[string]string{
		"BIZDESK_DATABASE_DSN":     "postgres://db/bizdesk",
		"BIZDESK_SECRET_KEY":       "from-env",
		"BIZDESK_BCRYPT_COST":      "12",
		"GEMINI_API_KEY":           "gem-key",
		"BIZDESK_COMPOSE_TIMEOUT":  "90s",
		"BIZDESK_LOG_RESET_CODES":  "true",
		"BIZDESK_GOOGLE_CLIENT_ID": "client.apps.googleusercontent.com",
	})
	require.NoError(t, err)

	assert.Equal(t, "postgres://db/bizdesk", c.DatabaseDSN)
	assert.Equal(t, "from-env", c.SecretKey)
	assert.Equal(t, 12, c.BcryptCost)
	assert.Equal(t, "gem-key", c.GeminiAPIKey)
	assert.Equal(t, 90*time.Second, c.ComposeTimeout)
	assert.True(t, c.LogResetCodes)
	assert.Equal(t, "client.apps.googleusercontent.com", c.GoogleClientID)

	assert.Equal(t, ":50051", c.EndpointAddrGRPC)
	assert.Equal(t, 60*time.Second, c.UpstreamTimeout)
	assert.Equal(t, "gemini-pro", c.GeminiModel)
}

func TestParseEnv_EmptyEnvironmentKeepsValues(t *testing.T) {
	var c Config
	c.LoadDefaults()
	want := c

	require.NoError(t, parseEnv(&c, map[string]string{}))
	assert.Equal(t, want, c)
}

func TestParseEnv_InvalidValue(t *testing.T) {
	var c Config
	c.LoadDefaults()

	err := parseEnv(&c, map[string]string{"BIZDESK_BCRYPT_COST": "ten"})
	assert.Error(t, err)
}
