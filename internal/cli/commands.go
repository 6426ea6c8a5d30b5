package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"example.com/insights/internal/domain"
	"example.com/insights/internal/persistence"
	"example.com/insights/internal/persistence/sqlite"
)

func newMigrateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.openStore()
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.Migrate(cmd.Context()); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "schema ready at %s\n", opts.Database)
			return err
		},
	}
}

func newSeedCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file.json>",
		Short: "Load client logs from a JSON dataset",
		Long: `Load client logs from a JSON dataset with the keys workouts, meal_tracking,
meals, hydration, weights and check_ins. Use - to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw []byte
			var err error
			if args[0] == "-" {
				raw, err = io.ReadAll(cmd.InOrStdin())
			} else {
				raw, err = os.ReadFile(args[0])
			}
			if err != nil {
				return err
			}

			var dataset sqlite.Dataset
			if err := json.Unmarshal(raw, &dataset); err != nil {
				return fmt.Errorf("parse dataset: %w", err)
			}

			store, err := opts.openStore()
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.Load(cmd.Context(), dataset); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "loaded %d workouts, %d tracking days, %d meals, %d hydration, %d weights, %d check-ins\n",
				len(dataset.Workouts), len(dataset.MealTracking), len(dataset.Meals), len(dataset.Hydration), len(dataset.Weights), len(dataset.CheckIns))
			return err
		},
	}
}

func newAnalyzeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <client-id>",
		Short: "Run every rule processor for a client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, c, err := opts.components()
			if err != nil {
				return err
			}
			defer store.Close()

			created, err := c.Engine.ProcessClientData(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return opts.printNotifications(cmd.OutOrStdout(), created)
		},
	}
}

func newTriggerCommand(opts *RootOptions) *cobra.Command {
	var data string
	cmd := &cobra.Command{
		Use:   "trigger <client-id> <event-type>",
		Short: "Evaluate a lifecycle event on the trigger path",
		Long: `Evaluate a lifecycle event (workout_completed, meal_logged, weight_logged,
goal_achieved) for a client, e.g.

  insightctl trigger c-1 meal_logged --data '{"protein":150,"protein_goal":140}'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var payload domain.EventData
			if strings.TrimSpace(data) != "" {
				if err := json.Unmarshal([]byte(data), &payload); err != nil {
					return fmt.Errorf("--data must be a JSON object: %w", err)
				}
			}

			store, c, err := opts.components()
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := c.Engine.CheckTriggerPoints(cmd.Context(), args[0], domain.EventType(args[1]), payload)
			if err != nil {
				return err
			}
			var items []domain.Notification
			if n != nil {
				items = append(items, *n)
			}
			return opts.printNotifications(cmd.OutOrStdout(), items)
		},
	}
	cmd.Flags().StringVar(&data, "data", "", "event payload as a JSON object")
	return cmd
}

func newListCommand(opts *RootOptions) *cobra.Command {
	var limit int
	var cursor string
	cmd := &cobra.Command{
		Use:   "list <client-id>",
		Short: "List a client's notifications, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := persistence.DecodeCursor(cursor)
			if err != nil {
				return err
			}
			store, err := opts.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			items, next, err := store.ListByClient(cmd.Context(), args[0], from, limit)
			if err != nil {
				return err
			}
			if err := opts.printNotifications(cmd.OutOrStdout(), items); err != nil {
				return err
			}
			if next != nil && opts.Format == "text" {
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "next cursor: %s\n", persistence.EncodeCursor(next))
			}
			return err
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "page size")
	cmd.Flags().StringVar(&cursor, "cursor", "", "page token from a previous list")
	return cmd
}

func newSendCommand(opts *RootOptions) *cobra.Command {
	var notificationType string
	cmd := &cobra.Command{
		Use:   "send <client-id> <message>",
		Short: "Send an ad hoc coach message",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, c, err := opts.components()
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := c.Notifier.SendNotification(cmd.Context(), args[0], notificationType, args[1])
			if err != nil {
				return err
			}
			return opts.printNotifications(cmd.OutOrStdout(), []domain.Notification{*n})
		},
	}
	cmd.Flags().StringVar(&notificationType, "type", domain.TypeAdHoc, "notification type")
	return cmd
}
