package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"tally/internal/config"
	"tally/internal/journal"
)

const redacted = "<redacted>"

func (c *cli) newJournalCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show the most recent requests recorded by the dashboards",
		Long: `Show the most recent list, create, update and delete requests recorded in
the SQLite journal, newest first. Recording is enabled by setting
journal.path in config, TL_JOURNAL_PATH, or --journal.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := config.GetString(config.KeyJournalPath)
			if strings.TrimSpace(path) == "" {
				return printFailure(cmd.ErrOrStderr(), "Journal disabled",
					"No journal path is configured.",
					"Pass --journal <file>",
					"Set journal.path in ~/.tally/config.yaml")
			}
			j, err := journal.Open(cmd.Context(), path)
			if err != nil {
				return err
			}
			defer func() {
				_ = j.Close()
			}()
			entries, err := j.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			writeJournal(cmd.OutOrStdout(), entries)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries to show")
	return cmd
}

func writeJournal(w io.Writer, entries []journal.Entry) {
	if len(entries) == 0 {
		faint.Fprintln(w, "No requests recorded yet.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tRESOURCE\tOP\tID\tOUTCOME\tDURATION\tDETAIL")
	for _, e := range entries {
		outcome := green.Sprint(e.Outcome)
		if e.Outcome != "ok" {
			outcome = red.Sprint(e.Outcome)
		}
		detail := e.Message
		if e.Code != "" {
			detail = e.Code + ": " + e.Message
		}
		if e.Anomaly {
			detail = yellow.Sprint("anomaly")
		}
		id := e.RecordID
		if id == "" {
			id = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.At.Local().Format(time.DateTime), e.Resource, e.Op, id, outcome, e.Duration, detail)
	}
	_ = tw.Flush()
}

func (c *cli) newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := config.AllSettings()
			if err != nil {
				return err
			}
			redactToken(settings)
			out := cmd.OutOrStdout()
			files := config.Files()
			if len(files) == 0 {
				fmt.Fprintln(out, "# no config files found; defaults and environment only")
			}
			for _, f := range files {
				fmt.Fprintf(out, "# from %s\n", f)
			}
			enc := yaml.NewEncoder(out)
			enc.SetIndent(2)
			if err := enc.Encode(settings); err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			return enc.Close()
		},
	}
}

// redactToken hides auth.token in a viper settings map.
func redactToken(settings map[string]any) {
	section, ok := settings["auth"].(map[string]any)
	if !ok {
		return
	}
	if tok, ok := section["token"].(string); ok && tok != "" {
		section["token"] = redacted
	}
}
