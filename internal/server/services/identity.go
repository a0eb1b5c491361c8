// Package services contains server-side business logic. IdentityService
// implements registration, credential and federated login, the reset-code
// flow and profile management.
package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/bizdesk/internal/common"
	"github.com/dmitrijs2005/bizdesk/internal/dbx"
	"github.com/dmitrijs2005/bizdesk/internal/logging"
	"github.com/dmitrijs2005/bizdesk/internal/server/federated"
	"github.com/dmitrijs2005/bizdesk/internal/server/models"
	"github.com/dmitrijs2005/bizdesk/internal/server/repositories/repomanager"
)

const (
	ResetCodeDigits   = 6
	ResetCodeValidity = 10 * time.Minute
)

type PasswordHasher interface {
	Hash(password string) (models.PasswordHash, error)
	Verify(hash models.PasswordHash, password string) bool
}

type TokenIssuer interface {
	Issue(accountID, name string, role models.Role) (string, error)
}

type IdentityVerifier interface {
	Verify(ctx context.Context, raw string) (*federated.Identity, error)
}

// Session is the result of a successful registration or login.
type Session struct {
	Account *models.AccountInfo
	Token   string
}

// Registration is the input of Register.
type Registration struct {
	Name        string
	Identifier  string
	Password    string
	CompanyName string
	CompanySize string
	Position    string
}

type IdentityService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      PasswordHasher
	tokens      TokenIssuer
	verifier    IdentityVerifier
	sender      CodeSender
	logger      logging.Logger
	now         func() time.Time
}

func NewIdentityService(
	db *sql.DB,
	m repomanager.RepositoryManager,
	hasher PasswordHasher,
	tokens TokenIssuer,
	verifier IdentityVerifier,
	sender CodeSender,
	l logging.Logger,
) *IdentityService {
	return &IdentityService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		tokens:      tokens,
		verifier:    verifier,
		sender:      sender,
		logger:      l.With("module", "identity"),
		now:         time.Now,
	}
}

// Register creates a password account identified by a phone number.
func (s *IdentityService) Register(ctx context.Context, r Registration) (*Session, error) {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", common.ErrInvalidInput)
	}
	if r.Password == "" {
		return nil, fmt.Errorf("%w: password is required", common.ErrInvalidInput)
	}

	id, err := models.ParseIdentifier(r.Identifier)
	if err != nil {
		return nil, err
	}
	if id.Kind != models.IdentifierPhone {
		return nil, fmt.Errorf("%w: registration requires a phone number", common.ErrInvalidInput)
	}

	hash, err := s.hasher.Hash(r.Password)
	if err != nil {
		if errors.Is(err, common.ErrInvalidInput) {
			return nil, err
		}
		return nil, s.internal(ctx, "hash password", err)
	}

	account := &models.Account{
		Phone:      id.Value,
		Credential: hash,
		Role:       models.RoleUser,
		Profile: models.Profile{
			Name:        name,
			CompanyName: strings.TrimSpace(r.CompanyName),
			CompanySize: strings.TrimSpace(r.CompanySize),
			Position:    strings.TrimSpace(r.Position),
		},
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)

		_, err := repo.FindByIdentifier(ctx, id)
		switch {
		case err == nil:
			return common.ErrConflict
		case !errors.Is(err, common.ErrorNotFound):
			return err
		}

		account, err = repo.Create(ctx, account)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, common.ErrConflict
		}
		return nil, s.internal(ctx, "create account", err)
	}

	s.logger.Info(ctx, "account registered", "account_id", account.ID)
	return s.session(ctx, account)
}

// Login checks a password against the account found by identifier.
// Federated-only accounts cannot log in with a password.
func (s *IdentityService) Login(ctx context.Context, identifier, password string) (*Session, error) {
	id, err := models.ParseIdentifier(identifier)
	if err != nil {
		return nil, err
	}

	account, err := s.repomanager.Accounts(s.db).FindByIdentifier(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, s.internal(ctx, "find account", err)
	}

	hash, ok := account.PasswordHash()
	if !ok {
		return nil, common.ErrInvalidCredential
	}
	if !s.hasher.Verify(hash, password) {
		s.logger.Warn(ctx, "login rejected", "account_id", account.ID)
		return nil, common.ErrInvalidCredential
	}

	return s.session(ctx, account)
}

// FederatedLogin verifies an identity assertion and logs the caller into the
// account holding the verified email, creating a federated-only account on
// first use.
func (s *IdentityService) FederatedLogin(ctx context.Context, assertion string) (*Session, error) {
	identity, err := s.verifier.Verify(ctx, assertion)
	if err != nil {
		if errors.Is(err, common.ErrInvalidAssertion) {
			s.logger.Warn(ctx, "identity assertion rejected", "error", err)
			return nil, common.ErrInvalidAssertion
		}
		return nil, s.internal(ctx, "verify assertion", err)
	}

	id := models.Identifier{Kind: models.IdentifierEmail, Value: identity.Email}
	repo := s.repomanager.Accounts(s.db)

	account, err := repo.FindByIdentifier(ctx, id)
	if err == nil {
		return s.session(ctx, account)
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, s.internal(ctx, "find account", err)
	}

	account, err = repo.Create(ctx, &models.Account{
		Email:      identity.Email,
		Credential: models.NoCredential{},
		Role:       models.RoleUser,
		Profile:    models.Profile{Name: identity.Name},
	})
	if errors.Is(err, common.ErrConflict) {
		// created concurrently by another login
		account, err = repo.FindByIdentifier(ctx, id)
	}
	if err != nil {
		return nil, s.internal(ctx, "create federated account", err)
	}

	s.logger.Info(ctx, "federated account ready", "account_id", account.ID)
	return s.session(ctx, account)
}

// RequestResetCode issues a fresh reset code for the account, replacing any
// pending one, and hands it to the CodeSender.
func (s *IdentityService) RequestResetCode(ctx context.Context, identifier string) error {
	id, err := models.ParseIdentifier(identifier)
	if err != nil {
		return err
	}

	repo := s.repomanager.Accounts(s.db)

	account, err := repo.FindByIdentifier(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return s.internal(ctx, "find account", err)
	}

	code, err := common.MakeNumericCode(ResetCodeDigits)
	if err != nil {
		return s.internal(ctx, "generate reset code", err)
	}
	rc := models.ResetCode{Code: code, ExpiresAt: s.now().Add(ResetCodeValidity)}

	if err := repo.SetResetCode(ctx, account.ID, rc); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return s.internal(ctx, "store reset code", err)
	}

	if err := s.sender.SendResetCode(ctx, account, id, rc); err != nil {
		return s.internal(ctx, "deliver reset code", err)
	}

	return nil
}

// RedeemResetCode sets a new password if code is the pending, unexpired
// reset code of the account. A failed attempt changes nothing.
func (s *IdentityService) RedeemResetCode(ctx context.Context, identifier, code, newPassword string) error {
	if newPassword == "" {
		return fmt.Errorf("%w: new password is required", common.ErrInvalidInput)
	}

	id, err := models.ParseIdentifier(identifier)
	if err != nil {
		return common.ErrInvalidOrExpiredCode
	}

	repo := s.repomanager.Accounts(s.db)

	account, err := repo.FindByIdentifier(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrInvalidOrExpiredCode
		}
		return s.internal(ctx, "find account", err)
	}

	now := s.now()
	if !account.ResetCode.Matches(code, now) {
		return common.ErrInvalidOrExpiredCode
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		if errors.Is(err, common.ErrInvalidInput) {
			return err
		}
		return s.internal(ctx, "hash password", err)
	}

	if err := repo.ConsumeResetCode(ctx, account.ID, code, now, hash); err != nil {
		if errors.Is(err, common.ErrInvalidOrExpiredCode) {
			return common.ErrInvalidOrExpiredCode
		}
		return s.internal(ctx, "consume reset code", err)
	}

	s.logger.Info(ctx, "password reset", "account_id", account.ID)
	return nil
}

// Me returns the caller's own account.
func (s *IdentityService) Me(ctx context.Context, accountID string) (*models.AccountInfo, error) {
	account, err := s.repomanager.Accounts(s.db).FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, s.internal(ctx, "find account", err)
	}
	return account.Info(), nil
}

// UpdateProfile replaces the profile of the caller's account. Identifiers,
// credential, role and reset state are never touched.
func (s *IdentityService) UpdateProfile(ctx context.Context, accountID string, p models.Profile) (*models.AccountInfo, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return nil, fmt.Errorf("%w: name is required", common.ErrInvalidInput)
	}
	if len(p.Data) > 0 && !json.Valid(p.Data) {
		return nil, fmt.Errorf("%w: profile data is not valid JSON", common.ErrInvalidInput)
	}

	account, err := s.repomanager.Accounts(s.db).UpdateProfile(ctx, accountID, p)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, s.internal(ctx, "update profile", err)
	}
	return account.Info(), nil
}

// ListAccounts returns every account ordered by creation time.
func (s *IdentityService) ListAccounts(ctx context.Context) ([]*models.AccountInfo, error) {
	list, err := s.repomanager.Accounts(s.db).List(ctx)
	if err != nil {
		return nil, s.internal(ctx, "list accounts", err)
	}

	result := make([]*models.AccountInfo, 0, len(list))
	for _, a := range list {
		result = append(result, a.Info())
	}
	return result, nil
}

func (s *IdentityService) session(ctx context.Context, account *models.Account) (*Session, error) {
	token, err := s.tokens.Issue(account.ID, account.Profile.Name, account.Role)
	if err != nil {
		return nil, s.internal(ctx, "issue token", err)
	}
	return &Session{Account: account.Info(), Token: token}, nil
}

func (s *IdentityService) internal(ctx context.Context, op string, err error) error {
	s.logger.Error(ctx, op+" failed", "error", err)
	return common.ErrorInternal
}
