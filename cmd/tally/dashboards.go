package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"tally/internal/api"
	"tally/internal/auth"
	"tally/internal/config"
	"tally/internal/journal"
	"tally/internal/records"
	"tally/internal/ui"
)

func (c *cli) newItemsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "items",
		Short: "Open the items dashboard (list, create, edit, delete)",
		Args:  cobra.NoArgs,
		RunE:  c.runItems,
	}
}

func (c *cli) newUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "Open the read-only users dashboard",
		Args:  cobra.NoArgs,
		RunE:  c.runUsers,
	}
}

func (c *cli) runItems(cmd *cobra.Command, _ []string) error {
	session, err := openSession()
	if err != nil {
		return err
	}
	opts, closeJournal, err := viewOptions(cmd.Context())
	if err != nil {
		return err
	}
	defer closeJournal()

	endpoint := api.NewResource[records.Item, records.ItemDraft](config.BaseURL(), "items", session, api.WithTimeout(config.Timeout()))
	view := records.NewCrudView[records.Item, records.ItemDraft]("items", endpoint, session, records.DraftFromItem, opts...)
	return c.finish(cmd, ui.NewItemsApp(view, uiConfig()))
}

func (c *cli) runUsers(cmd *cobra.Command, _ []string) error {
	session, err := openSession()
	if err != nil {
		return err
	}
	opts, closeJournal, err := viewOptions(cmd.Context())
	if err != nil {
		return err
	}
	defer closeJournal()

	endpoint := api.NewResource[records.User, struct{}](config.BaseURL(), "users", session, api.WithTimeout(config.Timeout()))
	view := records.NewListView[records.User]("users", endpoint, session, opts...)
	return c.finish(cmd, ui.NewUsersApp(view, uiConfig()))
}

// finish runs the dashboard and reports an explicit logout.
func (c *cli) finish(cmd *cobra.Command, app dashboard) error {
	res, err := runProgram(app, c.factory)
	if err != nil {
		return err
	}
	if !res.LoggedOut {
		return nil
	}
	if res.LogoutErr != nil {
		printWarning(cmd.ErrOrStderr(), "logged out, but the stored credentials could not be removed: %v", res.LogoutErr)
		return nil
	}
	printSuccess(cmd.OutOrStdout(), "Logged out")
	warnConfiguredToken(cmd.OutOrStdout())
	return nil
}

func openSession() (*auth.Session, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	session, err := auth.NewSession(auth.NewStore(dir), config.GetString(config.KeyAuthToken))
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	return session, nil
}

// viewOptions wires the request journal when journal.path is set. The
// returned close func is always safe to call.
func viewOptions(ctx context.Context) ([]records.Option, func(), error) {
	path := config.GetString(config.KeyJournalPath)
	if path == "" {
		return nil, func() {}, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	j, err := journal.Open(ctx, path)
	if err != nil {
		return nil, func() {}, fmt.Errorf("open journal %s: %w", path, err)
	}
	return []records.Option{records.WithEventSink(j.Sink())}, func() { _ = j.Close() }, nil
}

func uiConfig() ui.Config {
	return ui.Config{
		Version:      Version,
		OutputFormat: config.OutputFormat(),
		SaveTheme:    config.SaveTheme,
	}
}
