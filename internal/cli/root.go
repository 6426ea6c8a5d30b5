// Package cli implements insightctl, a local driver for the insight engine
// backed by SQLite.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"example.com/insights/internal/app"
	"example.com/insights/internal/domain"
	"example.com/insights/internal/logging"
	"example.com/insights/internal/persistence/sqlite"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Database string
	Timezone string
	Format   string
	Verbose  bool

	// Now overrides the clock in tests.
	Now func() time.Time
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the insightctl command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "insightctl",
		Short: "Run insight rules against a local SQLite database",
		Long: `insightctl drives the insight engine against a local SQLite database.

Seed a client history from JSON, run batch analysis, fire lifecycle events
and inspect the notifications they produce.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if _, err := time.LoadLocation(opts.Timezone); err != nil {
				return fmt.Errorf("invalid timezone %q: %w", opts.Timezone, err)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Database, "db", "./data/insights.db", "path to SQLite database")
	cmd.PersistentFlags().StringVar(&opts.Timezone, "timezone", "UTC", "time zone defining calendar days")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log engine activity to stderr")

	cmd.AddCommand(newMigrateCommand(opts))
	cmd.AddCommand(newSeedCommand(opts))
	cmd.AddCommand(newAnalyzeCommand(opts))
	cmd.AddCommand(newTriggerCommand(opts))
	cmd.AddCommand(newListCommand(opts))
	cmd.AddCommand(newSendCommand(opts))
	return cmd
}

func (o *RootOptions) logger() zerolog.Logger {
	if !o.Verbose {
		return zerolog.Nop()
	}
	return logging.NewWithWriter(os.Stderr, "insightctl", "debug")
}

func (o *RootOptions) openStore() (*sqlite.Store, error) {
	store, err := sqlite.Open(o.Database)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", o.Database, err)
	}
	return store, nil
}

// components opens the store and wires the engine over it. Callers close the store.
func (o *RootOptions) components() (*sqlite.Store, *app.Components, error) {
	store, err := o.openStore()
	if err != nil {
		return nil, nil, err
	}
	loc, _ := time.LoadLocation(o.Timezone)
	c, err := app.Build(store, store, app.Settings{Location: loc, Logger: o.logger(), Now: o.Now})
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	return store, c, nil
}

func (o *RootOptions) printNotifications(out io.Writer, items []domain.Notification) error {
	if o.Format == "json" {
		if items == nil {
			items = []domain.Notification{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	}
	if len(items) == 0 {
		_, err := fmt.Fprintln(out, "no notifications")
		return err
	}
	for _, n := range items {
		rule := n.RuleID
		if rule == "" {
			rule = "-"
		}
		if _, err := fmt.Fprintf(out, "%s  [%s/%s]  %s  %s: %s\n",
			n.CreatedAt.Format(time.RFC3339), n.Type, n.Priority, rule, n.Title, n.Message); err != nil {
			return err
		}
	}
	return nil
}
