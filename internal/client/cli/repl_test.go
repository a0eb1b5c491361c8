package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool
	failOn   string

	calls []string
}

func (f *fakeExec) record(name string) error {
	f.calls = append(f.calls, name)
	if name == f.failOn {
		return errors.New(name + " failed")
	}
	return nil
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }

func (f *fakeExec) Register(context.Context) error {
	return f.record("register")
}

func (f *fakeExec) Login(context.Context) error {
	f.loggedIn = true
	return f.record("login")
}

func (f *fakeExec) GoogleLogin(context.Context) error {
	return f.record("google")
}

func (f *fakeExec) RequestReset(context.Context) error {
	return f.record("reset")
}

func (f *fakeExec) RedeemReset(context.Context) error {
	return f.record("redeem")
}

func (f *fakeExec) Me(context.Context) error {
	return f.record("me")
}

func (f *fakeExec) Profile(context.Context) error {
	return f.record("profile")
}

func (f *fakeExec) Users(context.Context) error {
	return f.record("users")
}

func (f *fakeExec) Ask(context.Context) error {
	return f.record("ask")
}

func (f *fakeExec) Logout(context.Context) error {
	f.loggedIn = false
	return f.record("logout")
}

func captureOutput(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSpace(fmt.Sprintln(a...)))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	out := captureOutput(t)

	input := strings.Join([]string{
		"help",
		"register",
		"login",
		"help",
		"google",
		"reset",
		"redeem",
		"",
		"me",
		"profile",
		"users",
		"ask",
		"logout",
		"foobar",
		"exit",
		"me",
	}, "\n")

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, rdr(input))

	assert.Equal(t, []string{"register", "login", "google", "reset", "redeem", "me", "profile", "users", "ask", "logout"}, exec.calls)
	assert.Contains(t, *out, helpLoggedOut)
	assert.Contains(t, *out, helpLoggedIn)
	assert.Contains(t, *out, "Unknown command: foobar")
	assert.Contains(t, *out, "Bye!")
}

func TestRunREPL_ReportsErrorsAndContinues(t *testing.T) {
	out := captureOutput(t)

	exec := &fakeExec{failOn: "login"}
	runREPL(context.Background(), exec, func() string { return "" }, rdr("login\nme\n"))

	assert.Equal(t, []string{"login", "me"}, exec.calls)
	assert.Contains(t, *out, "Error: login failed")
}

func TestRunREPL_StopsOnEOFAndCancel(t *testing.T) {
	captureOutput(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, rdr(""))
	assert.Empty(t, exec.calls)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	runREPL(ctx, exec, func() string { return "" }, rdr("me\n"))
	assert.Empty(t, exec.calls)
}
