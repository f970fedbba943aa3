package main

import (
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tally/internal/auth"
	"tally/internal/config"
)

func (c *cli) newLoginCmd() *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an API token for the dashboards",
		Long: `Store an API token in ~/.tally/credentials.json. The dashboards send it
as "Authorization: Bearer <token>". A token set through auth.token in a
config file or TL_AUTH_TOKEN takes precedence over the stored one.`,
		Example: "  tally login --token eyJhbGciOi...",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLogin(cmd, token, time.Now())
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "API token (a leading \"Bearer \" is stripped)")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}

func runLogin(cmd *cobra.Command, token string, now time.Time) error {
	if strings.TrimSpace(token) == "" {
		return printFailure(cmd.ErrOrStderr(), "Empty token",
			"The --token flag needs a non-empty value.")
	}
	dir, err := config.Dir()
	if err != nil {
		return err
	}
	ti, err := auth.NewStore(dir).Save(token)
	if err != nil {
		return printFailure(cmd.ErrOrStderr(), "Could not store token", err.Error())
	}

	out := cmd.OutOrStdout()
	printSuccess(out, "Token saved to %s", dir)
	switch {
	case ti.Expired(now):
		printWarning(out, "token expired at %s; the server will reject it", ti.ExpiresAt.Local().Format(time.RFC1123))
	case ti.ExpiresAt != nil:
		faint.Fprintf(out, "  expires %s\n", ti.ExpiresAt.Local().Format(time.RFC1123))
	}
	return nil
}

func (c *cli) newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored API token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := config.Dir()
			if err != nil {
				return err
			}
			if err := auth.NewStore(dir).Delete(); err != nil {
				return printFailure(cmd.ErrOrStderr(), "Could not remove credentials", err.Error())
			}
			printSuccess(cmd.OutOrStdout(), "Logged out")
			warnConfiguredToken(cmd.OutOrStdout())
			return nil
		},
	}
}

// warnConfiguredToken points out a token that survives logout because it
// comes from configuration rather than the credential file.
func warnConfiguredToken(w io.Writer) {
	if config.GetString(config.KeyAuthToken) != "" {
		printWarning(w, "auth.token is still set in config or TL_AUTH_TOKEN and will be used next time")
	}
}
