package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tally/internal/config"
	"tally/internal/debug"
	"tally/internal/ui/theme"
)

type globalFlags struct {
	baseURL      string
	theme        string
	outputFormat string
	journal      string
	debug        bool
}

// cli carries what every command needs; tests swap the program factory.
type cli struct {
	factory programFactory
	flags   globalFlags
}

func newRootCmd(factory programFactory) *cobra.Command {
	c := &cli{factory: factory}

	root := &cobra.Command{
		Use:   "tally",
		Short: "Tally - terminal dashboards for a REST records backend",
		Long: `Tally keeps a local view of server-owned records in step with a REST
backend. The items dashboard lists, creates, edits and deletes todo items;
the users dashboard lists accounts.

Running tally without a subcommand opens the items dashboard.`,
		Version:           versionString(),
		Args:              cobra.NoArgs,
		PersistentPreRunE: c.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			debug.Close()
		},
		RunE:          c.runItems,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.SetVersionTemplate("{{.Version}}")

	pf := root.PersistentFlags()
	pf.StringVar(&c.flags.baseURL, "base-url", "", "REST backend root (default "+config.DefaultBaseURL+")")
	pf.StringVar(&c.flags.theme, "theme", "", "Color theme ("+strings.Join(theme.Available(), ", ")+")")
	pf.StringVar(&c.flags.outputFormat, "output-format", "", "Detail pane markdown style (rich, light, plain)")
	pf.StringVar(&c.flags.journal, "journal", "", "SQLite journal of completed requests (empty disables)")
	pf.BoolVar(&c.flags.debug, "debug", false, "Write a debug log to ~/.tally/debug.log")

	root.AddCommand(
		c.newItemsCmd(),
		c.newUsersCmd(),
		c.newLoginCmd(),
		c.newLogoutCmd(),
		c.newServeDemoCmd(),
		c.newJournalCmd(),
		c.newConfigCmd(),
	)
	return root
}

// setup loads configuration, applies flags the user actually set, and
// starts the debug log and theme.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	if err := config.Initialize(); err != nil {
		return fmt.Errorf("initialize config: %w", err)
	}

	overrides := map[string]any{}
	flags := cmd.Flags()
	if flags.Changed("base-url") {
		overrides[config.KeyBaseURL] = c.flags.baseURL
	}
	if flags.Changed("theme") {
		overrides[config.KeyTheme] = c.flags.theme
	}
	if flags.Changed("output-format") {
		overrides[config.KeyOutputFormat] = c.flags.outputFormat
	}
	if flags.Changed("journal") {
		overrides[config.KeyJournalPath] = c.flags.journal
	}
	if flags.Changed("debug") {
		overrides[config.KeyDebug] = c.flags.debug
	}
	if err := config.ApplyOverrides(overrides); err != nil {
		return fmt.Errorf("apply flags: %w", err)
	}

	if err := debug.Init(config.GetBool(config.KeyDebug)); err != nil {
		printWarning(cmd.ErrOrStderr(), "debug log disabled: %v", err)
	}
	if name := config.GetString(config.KeyTheme); name != "" && !theme.SetTheme(name) {
		printWarning(cmd.ErrOrStderr(), "unknown theme %q, using %s", name, theme.Current().Name)
	}
	debug.Logf("tally %s starting (base url %s)", Version, config.BaseURL())
	return nil
}
