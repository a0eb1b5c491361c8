// Package transport holds what the gRPC and HTTP front ends share: the
// service contracts they call and the mapping between domain values and
// api messages.
package transport

import (
	"context"

	"github.com/dmitrijs2005/bizdesk/internal/api"
	"github.com/dmitrijs2005/bizdesk/internal/server/agents"
	"github.com/dmitrijs2005/bizdesk/internal/server/auth"
	"github.com/dmitrijs2005/bizdesk/internal/server/models"
	"github.com/dmitrijs2005/bizdesk/internal/server/services"
)

// Identity is the part of services.IdentityService exposed to callers.
type Identity interface {
	Register(ctx context.Context, r services.Registration) (*services.Session, error)
	Login(ctx context.Context, identifier, password string) (*services.Session, error)
	FederatedLogin(ctx context.Context, assertion string) (*services.Session, error)
	RequestResetCode(ctx context.Context, identifier string) error
	RedeemResetCode(ctx context.Context, identifier, code, newPassword string) error
	Me(ctx context.Context, accountID string) (*models.AccountInfo, error)
	UpdateProfile(ctx context.Context, accountID string, p models.Profile) (*models.AccountInfo, error)
	ListAccounts(ctx context.Context) ([]*models.AccountInfo, error)
}

type Composer interface {
	Compose(ctx context.Context, prompt string) (*agents.Answer, error)
}

// Guard resolves a bearer token against the access level of a route.
type Guard interface {
	Guard(token string, access auth.Access) (*auth.Claims, error)
}

func RegistrationFromAPI(req *api.RegisterRequest) services.Registration {
	return services.Registration{
		Name:        req.Name,
		Identifier:  req.Identifier,
		Password:    req.Password,
		CompanyName: req.CompanyName,
		CompanySize: req.CompanySize,
		Position:    req.Position,
	}
}

func ProfileFromAPI(p api.Profile) models.Profile {
	return models.Profile{
		Name:        p.Name,
		CompanyName: p.CompanyName,
		CompanySize: p.CompanySize,
		Position:    p.Position,
		Data:        p.Data,
	}
}

func AccountToAPI(a *models.AccountInfo) *api.Account {
	if a == nil {
		return nil
	}
	return &api.Account{
		ID:    a.ID,
		Phone: a.Phone,
		Email: a.Email,
		Role:  string(a.Role),
		Profile: api.Profile{
			Name:        a.Profile.Name,
			CompanyName: a.Profile.CompanyName,
			CompanySize: a.Profile.CompanySize,
			Position:    a.Profile.Position,
			Data:        a.Profile.Data,
		},
		Federated: a.Federated,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func AccountsToAPI(accounts []*models.AccountInfo) []*api.Account {
	out := make([]*api.Account, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, AccountToAPI(a))
	}
	return out
}

func SessionToAPI(s *services.Session) *api.SessionResponse {
	return &api.SessionResponse{Token: s.Token, Account: AccountToAPI(s.Account)}
}

func AnswerToAPI(a *agents.Answer) *api.ComposeResponse {
	sections := make([]api.Section, 0, len(a.Sections))
	for _, s := range a.Sections {
		sections = append(sections, api.Section{Label: s.Label, Text: s.Text})
	}
	return &api.ComposeResponse{Reply: a.Render(), Sections: sections}
}
