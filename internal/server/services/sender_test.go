package services

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/dmitrijs2005/bizdesk/internal/logging"
	"github.com/dmitrijs2005/bizdesk/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sendAndDecode(t *testing.T, includeCode bool) map[string]any {
	t.Helper()

	var buf bytes.Buffer
	s := NewLogSender(logging.NewJSONLogger(&buf, "info"), includeCode)

	err := s.SendResetCode(context.Background(),
		&models.Account{ID: "acc-1"},
		models.Identifier{Kind: models.IdentifierPhone, Value: "0912"},
		models.ResetCode{Code: "424242", ExpiresAt: time.Date(2024, 1, 1, 0, 10, 0, 0, time.UTC)},
	)
	require.NoError(t, err)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	return rec
}

func TestLogSender_OmitsCodeByDefault(t *testing.T) {
	rec := sendAndDecode(t, false)

	assert.Equal(t, "reset code issued", rec["msg"])
	assert.Equal(t, "acc-1", rec["account_id"])
	assert.Equal(t, "phone", rec["channel"])
	assert.Equal(t, "reset_codes", rec["module"])
	assert.NotContains(t, rec, "code")
}

func TestLogSender_IncludesCodeWhenEnabled(t *testing.T) {
	rec := sendAndDecode(t, true)
	assert.Equal(t, "424242", rec["code"])
}
