package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/bizdesk/internal/api"
	"github.com/dmitrijs2005/bizdesk/internal/common"
)

// getSimpleText, getPassword and getMultiline are indirections used to
// facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getMultiline  = GetMultiline
)

// Register prompts for the account details and creates a new account. The
// new session is kept on success.
func (a *App) Register(ctx context.Context) error {
	var req api.RegisterRequest

	prompts := []struct {
		text string
		dst  *string
	}{
		{"Enter your name", &req.Name},
		{"Enter phone number", &req.Identifier},
		{"Company name (optional)", &req.CompanyName},
		{"Company size (optional)", &req.CompanySize},
		{"Your position (optional)", &req.Position},
	}
	for _, p := range prompts {
		v, err := getSimpleText(a.reader, p.text, a.out)
		if err != nil {
			return err
		}
		*p.dst = v
	}

	password, err := getPassword("Choose a password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	req.Password = string(password)

	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	account, err := a.client.Register(ctx, &req)
	if err != nil {
		return err
	}

	a.account = account
	fmt.Fprintf(a.out, "Welcome, %s!\n", account.Profile.Name)
	return nil
}

// Login authenticates with a phone number or email and a password.
func (a *App) Login(ctx context.Context) error {
	identifier, err := getSimpleText(a.reader, "Enter phone or email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	account, err := a.client.Login(ctx, identifier, password)
	if err != nil {
		return err
	}

	a.account = account
	fmt.Fprintln(a.out, "Login successful")
	return nil
}

// GoogleLogin authenticates with a Google ID token pasted by the user.
func (a *App) GoogleLogin(ctx context.Context) error {
	credential, err := getSimpleText(a.reader, "Paste Google ID token", a.out)
	if err != nil {
		return err
	}

	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	account, err := a.client.FederatedLogin(ctx, credential)
	if err != nil {
		return err
	}

	a.account = account
	fmt.Fprintf(a.out, "Logged in as %s\n", account.Email)
	return nil
}

func (a *App) RequestReset(ctx context.Context) error {
	identifier, err := getSimpleText(a.reader, "Enter phone or email", a.out)
	if err != nil {
		return err
	}

	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	if err := a.client.RequestResetCode(ctx, identifier); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "A reset code has been sent. Use 'redeem' within 10 minutes.")
	return nil
}

func (a *App) RedeemReset(ctx context.Context) error {
	identifier, err := getSimpleText(a.reader, "Enter phone or email", a.out)
	if err != nil {
		return err
	}

	code, err := getSimpleText(a.reader, "Enter the 6-digit code", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword("Choose a new password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ctx, cancel := a.requestContext(ctx)
	defer cancel()

	if err := a.client.RedeemResetCode(ctx, identifier, code, password); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Password updated. You can log in now.")
	return nil
}

// Logout forgets the in-memory session.
func (a *App) Logout(_ context.Context) error {
	a.client.Logout()
	a.account = nil
	fmt.Fprintln(a.out, "Logged out")
	return nil
}
