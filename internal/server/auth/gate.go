package auth

import (
	"context"

	"github.com/dmitrijs2005/bizdesk/internal/common"
	"github.com/dmitrijs2005/bizdesk/internal/server/models"
)

// Capability is a permission an operation may require beyond a valid token.
type Capability string

const CapabilityAdmin Capability = "admin"

// Authorize fails with common.ErrForbidden unless the role in claims grants
// capability. Unknown capabilities and roles are rejected.
func Authorize(claims *Claims, capability Capability) error {
	if claims == nil {
		return common.ErrUnauthenticated
	}

	switch capability {
	case CapabilityAdmin:
		switch claims.Role {
		case models.RoleAdmin:
			return nil
		case models.RoleUser:
			return common.ErrForbidden
		default:
			return common.ErrForbidden
		}
	default:
		return common.ErrForbidden
	}
}

// Access classifies a transport route.
type Access int

const (
	AccessPublic Access = iota
	AccessAuthenticated
	AccessAdmin
)

// Guard applies access to the caller identified by token and returns the
// verified claims (nil for public routes).
func (s *TokenService) Guard(token string, access Access) (*Claims, error) {
	switch access {
	case AccessPublic:
		return nil, nil
	case AccessAuthenticated:
		return s.Verify(token)
	case AccessAdmin:
		claims, err := s.Verify(token)
		if err != nil {
			return nil, err
		}
		if err := Authorize(claims, CapabilityAdmin); err != nil {
			return nil, err
		}
		return claims, nil
	default:
		return nil, common.ErrForbidden
	}
}

type ctxKey struct{}

// NewContext returns ctx carrying the verified caller claims.
func NewContext(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// FromContext returns the caller claims stored by NewContext.
func FromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(ctxKey{}).(*Claims)
	return c, ok && c != nil
}
