package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dmitrijs2005/bizdesk/internal/api"
	"github.com/dmitrijs2005/bizdesk/internal/common"
)

func printAccount(w io.Writer, acc *api.Account) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", acc.ID)
	fmt.Fprintf(tw, "Name:\t%s\n", acc.Profile.Name)
	if acc.Phone != "" {
		fmt.Fprintf(tw, "Phone:\t%s\n", acc.Phone)
	}
	if acc.Email != "" {
		fmt.Fprintf(tw, "Email:\t%s\n", acc.Email)
	}
	fmt.Fprintf(tw, "Role:\t%s\n", acc.Role)
	fmt.Fprintf(tw, "Company:\t%s\n", acc.Profile.CompanyName)
	fmt.Fprintf(tw, "Company size:\t%s\n", acc.Profile.CompanySize)
	fmt.Fprintf(tw, "Position:\t%s\n", acc.Profile.Position)
	if len(acc.Profile.Data) > 0 {
		fmt.Fprintf(tw, "Data:\t%s\n", string(acc.Profile.Data))
	}
	fmt.Fprintf(tw, "Google account:\t%t\n", acc.Federated)
	fmt.Fprintf(tw, "Member since:\t%s\n", acc.CreatedAt.Format("2006-01-02"))
	_ = tw.Flush()
}

// Me shows the logged-in account as stored on the server.
func (a *App) Me(ctx context.Context) error {
	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	acc, err := a.client.Me(ctx)
	if err != nil {
		return err
	}

	a.account = acc
	printAccount(a.out, acc)
	return nil
}

// Profile edits the profile field by field; an empty answer keeps the
// current value.
func (a *App) Profile(ctx context.Context) error {
	if a.account == nil || !a.isLoggedIn() {
		return fmt.Errorf("log in first")
	}
	p := a.account.Profile

	fields := []struct {
		label string
		dst   *string
	}{
		{"Name", &p.Name},
		{"Company name", &p.CompanyName},
		{"Company size", &p.CompanySize},
		{"Position", &p.Position},
	}
	for _, f := range fields {
		v, err := getSimpleText(a.reader, fmt.Sprintf("%s [%s]", f.label, *f.dst), a.out)
		if err != nil {
			return err
		}
		if v != "" {
			*f.dst = v
		}
	}

	data, err := getSimpleText(a.reader, "Company data as JSON (empty to keep)", a.out)
	if err != nil {
		return err
	}
	if data != "" {
		if !json.Valid([]byte(data)) {
			return fmt.Errorf("%w: company data is not valid JSON", common.ErrInvalidInput)
		}
		p.Data = json.RawMessage(data)
	}

	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	acc, err := a.client.UpdateProfile(ctx, p)
	if err != nil {
		return err
	}

	a.account = acc
	fmt.Fprintln(a.out, "Profile updated")
	return nil
}

// Users lists every account. Only admins are allowed by the server.
func (a *App) Users(ctx context.Context) error {
	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	accounts, err := a.client.ListAccounts(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tLOGIN\tROLE\tCOMPANY")
	for _, acc := range accounts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", acc.ID, acc.Profile.Name, displayIdentifier(acc), acc.Role, acc.Profile.CompanyName)
	}
	_ = tw.Flush()
	fmt.Fprintf(a.out, "%d account(s)\n", len(accounts))
	return nil
}
