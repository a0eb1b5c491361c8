// Package federated verifies identity assertions (OIDC ID tokens) issued by
// an external identity provider, Google by default.
package federated

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/dmitrijs2005/bizdesk/internal/common"
)

// GoogleIssuer is the issuer of Google ID tokens.
const GoogleIssuer = "https://accounts.google.com"

// Identity is what a valid assertion tells us about the caller.
type Identity struct {
	Email string
	Name  string
}

// Verifier checks ID tokens against the provider's published keys. Provider
// discovery happens on first use and is retried after a failure.
type Verifier struct {
	issuer   string
	clientID string
	client   *http.Client

	mu       sync.Mutex
	verifier *oidc.IDTokenVerifier
}

// NewVerifier returns a Verifier for tokens issued by issuer to clientID.
func NewVerifier(issuer, clientID string, timeout time.Duration) *Verifier {
	if issuer == "" {
		issuer = GoogleIssuer
	}
	return &Verifier{
		issuer:   issuer,
		clientID: clientID,
		client:   &http.Client{Timeout: timeout},
	}
}

// NewStaticVerifier wraps an already configured go-oidc verifier.
func NewStaticVerifier(v *oidc.IDTokenVerifier) *Verifier {
	return &Verifier{verifier: v}
}

func (v *Verifier) idTokenVerifier(ctx context.Context) (*oidc.IDTokenVerifier, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.verifier != nil {
		return v.verifier, nil
	}

	// the key set keeps using this context for refreshes, so it must outlive ctx
	pctx := oidc.ClientContext(context.WithoutCancel(ctx), v.client)
	provider, err := oidc.NewProvider(pctx, v.issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery: %w", err)
	}

	v.verifier = provider.Verifier(&oidc.Config{ClientID: v.clientID})
	return v.verifier, nil
}

type idClaims struct {
	Email         string    `json:"email"`
	EmailVerified boolClaim `json:"email_verified"`
	Name          string    `json:"name"`
}

// boolClaim accepts both true and "true"; Google has emitted either.
type boolClaim bool

func (b *boolClaim) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case bool:
		*b = boolClaim(x)
	case string:
		*b = boolClaim(strings.EqualFold(x, "true"))
	default:
		*b = false
	}
	return nil
}

// Verify validates raw and returns the verified identity. Any problem with
// the token itself (signature, audience, expiry, missing or unverified email)
// is reported as common.ErrInvalidAssertion.
func (v *Verifier) Verify(ctx context.Context, raw string) (*Identity, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty token", common.ErrInvalidAssertion)
	}

	verifier, err := v.idTokenVerifier(ctx)
	if err != nil {
		return nil, err
	}

	token, err := verifier.Verify(ctx, raw)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidAssertion, err)
	}

	var claims idClaims
	if err := token.Claims(&claims); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidAssertion, err)
	}

	email := strings.ToLower(strings.TrimSpace(claims.Email))
	if email == "" {
		return nil, fmt.Errorf("%w: token carries no email", common.ErrInvalidAssertion)
	}
	if !claims.EmailVerified {
		return nil, fmt.Errorf("%w: email is not verified", common.ErrInvalidAssertion)
	}

	name := strings.TrimSpace(claims.Name)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}

	return &Identity{Email: email, Name: name}, nil
}
