package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	GoogleLogin(ctx context.Context) error
	RequestReset(ctx context.Context) error
	RedeemReset(ctx context.Context) error
	Me(ctx context.Context) error
	Profile(ctx context.Context) error
	Users(ctx context.Context) error
	Ask(ctx context.Context) error
	Logout(ctx context.Context) error
}

const (
	helpLoggedOut = "Available commands: register, login, google, reset, redeem, ask, help, exit"
	helpLoggedIn  = "Available commands: me, profile, users, ask, logout, help, exit"
)

// runREPL starts a simple read–eval–print loop for the bizdesk CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Unknown commands are reported back to the
// user. The loop exits on EOF or when the user types "exit" or "quit".
//
//	Not logged in:
//	  - register       : create an account
//	  - login          : log in with phone or email and password
//	  - google         : log in with a Google ID token
//	  - reset          : request a password reset code
//	  - redeem         : set a new password using a reset code
//
//	Logged in:
//	  - me             : show the current account
//	  - profile        : edit the profile
//	  - users          : list accounts (admins only)
//	  - logout         : forget the session
//
//	Always:
//	  - ask            : ask the business advisors a question
//	  - help           : show available commands
//	  - exit | quit    : leave the program
//
// Command errors are reported by printing them; the loop keeps running.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}

		printlnFn(fmt.Sprintf("bizdesk %s> ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		var cmdErr error

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}

		case "register":
			cmdErr = a.Register(ctx)

		case "login":
			cmdErr = a.Login(ctx)

		case "google":
			cmdErr = a.GoogleLogin(ctx)

		case "reset":
			cmdErr = a.RequestReset(ctx)

		case "redeem":
			cmdErr = a.RedeemReset(ctx)

		case "me":
			cmdErr = a.Me(ctx)

		case "profile":
			cmdErr = a.Profile(ctx)

		case "users":
			cmdErr = a.Users(ctx)

		case "ask":
			cmdErr = a.Ask(ctx)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", cmdErr.Error())
		}
	}
}
