// Package auth issues and verifies session tokens, hashes passwords and
// decides whether a verified caller may run an operation.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/bizdesk/internal/common"
	"github.com/dmitrijs2005/bizdesk/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

// TokenValidity is fixed: tokens are valid for seven days from issuance.
const TokenValidity = 7 * 24 * time.Hour

// Issuer is the iss claim of every session token.
const Issuer = "bizdesk"

// Claims are the session token claims. Subject holds the account ID.
type Claims struct {
	jwt.RegisteredClaims
	Name string      `json:"name"`
	Role models.Role `json:"role"`
}

// AccountID returns the subject claim.
func (c *Claims) AccountID() string {
	return c.Subject
}

// TokenService signs and verifies HS256 session tokens with a key loaded once
// at startup. It is safe for concurrent use.
type TokenService struct {
	key []byte
	now func() time.Time
}

func NewTokenService(secretKey []byte) *TokenService {
	return &TokenService{key: secretKey, now: time.Now}
}

// Issue returns a signed token for the account valid for TokenValidity.
func (s *TokenService) Issue(accountID, name string, role models.Role) (string, error) {
	now := s.now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			Issuer:    Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenValidity)),
		},
		Name: name,
		Role: role,
	})

	tokenString, err := token.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return tokenString, nil
}

// Verify checks signature, signing method, issuer and expiry and returns the
// claims. Expired tokens yield common.ErrTokenExpired, every other failure
// common.ErrUnauthenticated.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, common.ErrUnauthenticated
	}

	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			return s.key, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrUnauthenticated
	}

	if !token.Valid || claims.Subject == "" {
		return nil, common.ErrUnauthenticated
	}

	if _, err := models.ParseRole(string(claims.Role)); err != nil {
		return nil, common.ErrUnauthenticated
	}

	return claims, nil
}
