package auth

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/bizdesk/internal/common"
	"github.com/dmitrijs2005/bizdesk/internal/server/models"
	"golang.org/x/crypto/bcrypt"
)

// BcryptHasher hashes passwords with a random per-hash salt.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (models.PasswordHash, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: password is too long", common.ErrInvalidInput)
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return models.PasswordHash(b), nil
}

// Verify reports whether password matches hash.
func (h *BcryptHasher) Verify(hash models.PasswordHash, password string) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}
