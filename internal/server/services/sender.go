package services

import (
	"context"

	"github.com/dmitrijs2005/bizdesk/internal/logging"
	"github.com/dmitrijs2005/bizdesk/internal/server/models"
)

// CodeSender delivers a freshly issued reset code out of band.
type CodeSender interface {
	SendResetCode(ctx context.Context, account *models.Account, to models.Identifier, code models.ResetCode) error
}

// LogSender records reset code issuance in the log. The code itself is only
// written when includeCode is set, which is meant for local development.
type LogSender struct {
	logger      logging.Logger
	includeCode bool
}

func NewLogSender(l logging.Logger, includeCode bool) *LogSender {
	return &LogSender{logger: l.With("module", "reset_codes"), includeCode: includeCode}
}

func (s *LogSender) SendResetCode(ctx context.Context, account *models.Account, to models.Identifier, code models.ResetCode) error {
	args := []any{"account_id", account.ID, "channel", to.Kind.String(), "expires_at", code.ExpiresAt}
	if s.includeCode {
		args = append(args, "code", code.Code)
	}
	s.logger.Info(ctx, "reset code issued", args...)
	return nil
}
