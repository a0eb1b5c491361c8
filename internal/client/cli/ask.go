package cli

import (
	"context"
	"fmt"
)

// Ask sends a multi-line business question to the advisors and prints the
// combined answer.
func (a *App) Ask(ctx context.Context) error {
	prompt, err := getMultiline(a.reader, "Describe your business question", a.out)
	if err != nil {
		return err
	}
	if prompt == "" {
		fmt.Fprintln(a.out, "Nothing to ask")
		return nil
	}

	fmt.Fprintln(a.out, "Consulting the advisors, this may take a while...")

	ctx, cancel := context.WithTimeout(ctx, a.config.ComposeTimeout)
	defer cancel()

	resp, err := a.client.Compose(ctx, prompt)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, resp.Reply)
	fmt.Fprintln(a.out)
	return nil
}
