// Package accounts is the credential store: persistence of accounts keyed by
// unique phone and email.
package accounts

import (
	"context"
	"time"

	"github.com/dmitrijs2005/bizdesk/internal/server/models"
)

type Repository interface {
	// Create inserts a new account, assigning its ID. A duplicate phone or
	// email yields common.ErrConflict.
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	FindByIdentifier(ctx context.Context, id models.Identifier) (*models.Account, error)
	FindByID(ctx context.Context, accountID string) (*models.Account, error)
	// SetResetCode replaces any pending reset code of the account.
	SetResetCode(ctx context.Context, accountID string, code models.ResetCode) error
	// ConsumeResetCode sets the new password hash and clears the reset code,
	// but only while code is still pending and unexpired at now. Otherwise
	// nothing changes and common.ErrInvalidOrExpiredCode is returned.
	ConsumeResetCode(ctx context.Context, accountID, code string, now time.Time, hash models.PasswordHash) error
	UpdateProfile(ctx context.Context, accountID string, profile models.Profile) (*models.Account, error)
	List(ctx context.Context) ([]*models.Account, error)
}
