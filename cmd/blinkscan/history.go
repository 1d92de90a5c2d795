package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/bft-labs/blinkscan/internal/adapters/sqlite"
	"github.com/bft-labs/blinkscan/internal/cliconfig"
)

func newHistoryCommand(cfg *cliconfig.Config, cfgPath *string) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently sent messages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(cmd, cfg, *cfgPath); err != nil {
				return err
			}
			if !cfg.HistoryEnabled() {
				return fmt.Errorf("history is disabled (history-db = %q)", cliconfig.HistoryOff)
			}
			if !cliconfig.FileExists(cfg.HistoryDB) {
				fmt.Fprintln(cmd.OutOrStdout(), "no messages sent yet")
				return nil
			}

			db, err := sqlite.Open(cfg.HistoryDB)
			if err != nil {
				return err
			}
			defer db.Close()

			messages, err := sqlite.NewHistoryRepository(db).Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(messages) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no messages sent yet")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSENT\tTEXT")
			for _, m := range messages {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", m.ID, m.SentAt.Local().Format(time.DateTime), m.Text)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&cfg.StateDir, "state-dir", cfg.StateDir, "directory for the draft and history (default: $HOME/.blinkscan)")
	cmd.Flags().StringVar(&cfg.HistoryDB, "history-db", cfg.HistoryDB, "sqlite history path (default: <state-dir>/history.db)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of messages to list")
	return cmd
}
