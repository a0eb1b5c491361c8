package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/bizdesk/internal/common"
	"github.com/dmitrijs2005/bizdesk/internal/dbx"
	"github.com/dmitrijs2005/bizdesk/internal/server/federated"
	"github.com/dmitrijs2005/bizdesk/internal/server/models"
	"github.com/dmitrijs2005/bizdesk/internal/server/repositories/accounts"
)

// fakeAccounts is an in-memory accounts.Repository with error injection.
type fakeAccounts struct {
	mu   sync.Mutex
	byID map[string]*models.Account
	seq  int

	findErr    error
	createErr  error
	setErr     error
	consumeErr error
	updateErr  error
	listErr    error

	// conflictOnCreate stores the account but reports ErrConflict, as if a
	// concurrent request had inserted it first.
	conflictOnCreate bool
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{byID: map[string]*models.Account{}}
}

func clone(a *models.Account) *models.Account {
	c := *a
	if a.ResetCode != nil {
		rc := *a.ResetCode
		c.ResetCode = &rc
	}
	return &c
}

func (f *fakeAccounts) seed(a *models.Account) *models.Account {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	a.ID = fmt.Sprintf("acc-%d", f.seq)
	a.CreatedAt = time.Date(2024, 1, 1, 0, f.seq, 0, 0, time.UTC)
	a.UpdatedAt = a.CreatedAt
	f.byID[a.ID] = clone(a)
	return a
}

func (f *fakeAccounts) get(id string) *models.Account {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	if !ok {
		return nil
	}
	return clone(a)
}

func (f *fakeAccounts) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byID)
}

func (f *fakeAccounts) lookup(id models.Identifier) *models.Account {
	for _, a := range f.byID {
		switch {
		case id.Kind == models.IdentifierPhone && a.Phone != "" && a.Phone == id.Value:
			return a
		case id.Kind == models.IdentifierEmail && a.Email != "" && a.Email == id.Value:
			return a
		}
	}
	return nil
}

func (f *fakeAccounts) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.mu.Lock()
	if (a.Phone != "" && f.lookup(models.Identifier{Kind: models.IdentifierPhone, Value: a.Phone}) != nil) ||
		(a.Email != "" && f.lookup(models.Identifier{Kind: models.IdentifierEmail, Value: a.Email}) != nil) {
		f.mu.Unlock()
		return nil, common.ErrConflict
	}
	f.mu.Unlock()

	stored := f.seed(clone(a))
	if f.conflictOnCreate {
		f.conflictOnCreate = false
		return nil, common.ErrConflict
	}
	return clone(stored), nil
}

func (f *fakeAccounts) FindByIdentifier(ctx context.Context, id models.Identifier) (*models.Account, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	a := f.lookup(id)
	if a == nil {
		return nil, common.ErrorNotFound
	}
	return clone(a), nil
}

func (f *fakeAccounts) FindByID(ctx context.Context, accountID string) (*models.Account, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	a := f.get(accountID)
	if a == nil {
		return nil, common.ErrorNotFound
	}
	return a, nil
}

func (f *fakeAccounts) SetResetCode(ctx context.Context, accountID string, code models.ResetCode) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[accountID]
	if !ok {
		return common.ErrorNotFound
	}
	a.ResetCode = &code
	return nil
}

func (f *fakeAccounts) ConsumeResetCode(ctx context.Context, accountID, code string, now time.Time, hash models.PasswordHash) error {
	if f.consumeErr != nil {
		return f.consumeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[accountID]
	if !ok || a.ResetCode == nil || a.ResetCode.Code != code || !now.Before(a.ResetCode.ExpiresAt) {
		return common.ErrInvalidOrExpiredCode
	}
	a.Credential = hash
	a.ResetCode = nil
	return nil
}

func (f *fakeAccounts) UpdateProfile(ctx context.Context, accountID string, p models.Profile) (*models.Account, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[accountID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	a.Profile = p
	return clone(a), nil
}

func (f *fakeAccounts) List(ctx context.Context) ([]*models.Account, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Account, 0, len(f.byID))
	for _, a := range f.byID {
		out = append(out, clone(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type fakeRepoManager struct {
	accounts *fakeAccounts
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}

func (m *fakeRepoManager) Accounts(db dbx.DBTX) accounts.Repository {
	return m.accounts
}

// spyHasher wraps a real hasher and counts Verify calls.
type spyHasher struct {
	PasswordHasher
	verifyCalls int
	hashErr     error
}

func (h *spyHasher) Hash(password string) (models.PasswordHash, error) {
	if h.hashErr != nil {
		return nil, h.hashErr
	}
	return h.PasswordHasher.Hash(password)
}

func (h *spyHasher) Verify(hash models.PasswordHash, password string) bool {
	h.verifyCalls++
	return h.PasswordHasher.Verify(hash, password)
}

type fakeVerifier struct {
	identity *federated.Identity
	err      error
}

func (v *fakeVerifier) Verify(ctx context.Context, raw string) (*federated.Identity, error) {
	if v.err != nil {
		return nil, v.err
	}
	return v.identity, nil
}

type sentCode struct {
	accountID string
	to        models.Identifier
	code      models.ResetCode
}

type fakeSender struct {
	sent []sentCode
	err  error
}

func (s *fakeSender) SendResetCode(ctx context.Context, a *models.Account, to models.Identifier, code models.ResetCode) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, sentCode{accountID: a.ID, to: to, code: code})
	return nil
}

func (s *fakeSender) last() sentCode {
	return s.sent[len(s.sent)-1]
}

type failingIssuer struct{}

func (failingIssuer) Issue(string, string, models.Role) (string, error) {
	return "", fmt.Errorf("signing unavailable")
}
