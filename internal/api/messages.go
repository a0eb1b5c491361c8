package api

import (
	"encoding/json"
	"time"
)

type RegisterRequest struct {
	Name        string `json:"name"`
	Identifier  string `json:"identifier"`
	Password    string `json:"password"`
	CompanyName string `json:"companyName,omitempty"`
	CompanySize string `json:"companySize,omitempty"`
	Position    string `json:"position,omitempty"`
}

type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// FederatedLoginRequest carries a Google ID token.
type FederatedLoginRequest struct {
	Credential string `json:"credential"`
}

type ResetCodeRequest struct {
	Identifier string `json:"identifier"`
}

type RedeemResetCodeRequest struct {
	Identifier  string `json:"identifier"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

type Profile struct {
	Name        string          `json:"name"`
	CompanyName string          `json:"companyName,omitempty"`
	CompanySize string          `json:"companySize,omitempty"`
	Position    string          `json:"position,omitempty"`
	Data        json.RawMessage `json:"data,omitempty"`
}

type Account struct {
	ID        string    `json:"id"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role"`
	Profile   Profile   `json:"profile"`
	Federated bool      `json:"federated"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SessionResponse is returned by Register, Login and FederatedLogin.
type SessionResponse struct {
	Token   string   `json:"token"`
	Account *Account `json:"user"`
}

type AccountResponse struct {
	Account *Account `json:"user"`
}

type AccountListResponse struct {
	Accounts []*Account `json:"users"`
}

type UpdateProfileRequest struct {
	Profile Profile `json:"profile"`
}

type ComposeRequest struct {
	Prompt string `json:"prompt"`
}

type Section struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// ComposeResponse holds the rendered Markdown reply and its sections in
// persona order.
type ComposeResponse struct {
	Reply    string    `json:"reply"`
	Sections []Section `json:"sections"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type Empty struct{}

type PingResponse struct {
	Status string `json:"status"`
}

// ErrorResponse is the HTTP error body.
type ErrorResponse struct {
	Error string `json:"error"`
}
