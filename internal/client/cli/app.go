package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/bizdesk/internal/api"
	"github.com/dmitrijs2005/bizdesk/internal/client/client"
	"github.com/dmitrijs2005/bizdesk/internal/client/config"
)

type App struct {
	config  *config.Config
	client  client.Client
	reader  *bufio.Reader
	out     io.Writer
	account *api.Account
}

func NewApp(c *config.Config) (*App, error) {

	apiClient, err := client.NewBizdeskClient(c.ServerEndpointAddr)
	if err != nil {
		return nil, err
	}

	return &App{config: c, client: apiClient, reader: bufio.NewReader(os.Stdin), out: os.Stdout}, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.client.Close()

	fmt.Fprintln(a.out, "Welcome to bizdesk CLI (type 'help' for commands)")

	pingCtx, cancel := context.WithTimeout(ctx, a.config.RequestTimeout)
	if err := a.client.Ping(pingCtx); err != nil {
		fmt.Fprintf(a.out, "Server at %s is not reachable yet: %s\n", a.config.ServerEndpointAddr, err.Error())
	}
	cancel()

	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) isLoggedIn() bool {
	return a.client.LoggedIn()
}

func (a *App) getStatus() string {
	if a.account == nil || !a.isLoggedIn() {
		return ""
	}
	name := a.account.Profile.Name
	if name == "" {
		name = displayIdentifier(a.account)
	}
	if a.account.Role == "admin" {
		name += " [admin]"
	}
	return fmt.Sprintf("(%s) ", name)
}

func (a *App) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, a.config.RequestTimeout)
}

func displayIdentifier(acc *api.Account) string {
	if acc.Phone != "" {
		return acc.Phone
	}
	return acc.Email
}
