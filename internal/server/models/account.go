// Package models defines the server-side domain types.
package models

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/bizdesk/internal/common"
)

// Role is the closed set of account roles.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole maps a stored or claimed role string onto Role. Unknown values
// are rejected.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Credential is either NoCredential or PasswordHash.
type Credential interface {
	isCredential()
}

// NoCredential marks an account created through federated login.
type NoCredential struct{}

// PasswordHash is a bcrypt hash of the account password.
type PasswordHash []byte

func (NoCredential) isCredential() {}
func (PasswordHash) isCredential() {}

// ResetCode is a pending password reset. Code and expiry always travel together.
type ResetCode struct {
	Code      string
	ExpiresAt time.Time
}

// Matches reports whether code equals the pending one and is still valid at now.
func (r *ResetCode) Matches(code string, now time.Time) bool {
	if r == nil {
		return false
	}
	same := subtle.ConstantTimeCompare([]byte(r.Code), []byte(code)) == 1
	return same && now.Before(r.ExpiresAt)
}

// Profile carries the display name and the opaque company metadata.
// Data is stored and returned untouched.
type Profile struct {
	Name        string          `json:"name"`
	CompanyName string          `json:"companyName,omitempty"`
	CompanySize string          `json:"companySize,omitempty"`
	Position    string          `json:"position,omitempty"`
	Data        json.RawMessage `json:"data,omitempty"`
}

type Account struct {
	ID         string
	Phone      string
	Email      string
	Credential Credential
	Role       Role
	ResetCode  *ResetCode
	Profile    Profile
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// PasswordHash returns the stored hash, or false for federated-only accounts.
func (a *Account) PasswordHash() (PasswordHash, bool) {
	h, ok := a.Credential.(PasswordHash)
	return h, ok && len(h) > 0
}

// Info returns the account without credential or reset state.
func (a *Account) Info() *AccountInfo {
	_, hasPassword := a.PasswordHash()
	return &AccountInfo{
		ID:        a.ID,
		Phone:     a.Phone,
		Email:     a.Email,
		Role:      a.Role,
		Profile:   a.Profile,
		Federated: !hasPassword,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// AccountInfo is the secret-free view of an Account handed to callers.
type AccountInfo struct {
	ID        string    `json:"id"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	Role      Role      `json:"role"`
	Profile   Profile   `json:"profile"`
	Federated bool      `json:"federated"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type IdentifierKind int

const (
	IdentifierPhone IdentifierKind = iota + 1
	IdentifierEmail
)

func (k IdentifierKind) String() string {
	switch k {
	case IdentifierPhone:
		return "phone"
	case IdentifierEmail:
		return "email"
	default:
		return "unknown"
	}
}

// Identifier is a phone number or an email address used to look an account up.
type Identifier struct {
	Kind  IdentifierKind
	Value string
}

// ParseIdentifier trims raw and classifies it: anything containing "@" is an
// email (lower-cased), everything else a phone number.
func ParseIdentifier(raw string) (Identifier, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return Identifier{}, fmt.Errorf("%w: identifier is empty", common.ErrInvalidInput)
	}
	if strings.Contains(v, "@") {
		return Identifier{Kind: IdentifierEmail, Value: strings.ToLower(v)}, nil
	}
	return Identifier{Kind: IdentifierPhone, Value: v}, nil
}

func (i Identifier) String() string {
	return i.Kind.String() + ":" + i.Value
}
