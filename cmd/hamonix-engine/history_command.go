package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent engine invocations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.History.Enabled {
				fmt.Println("History recording is disabled in the configuration.")
				return nil
			}

			store, err := history.Open(cfg.Paths.HistoryDB)
			if err != nil {
				return fmt.Errorf("open history store: %w", err)
			}
			defer store.Close()

			entries, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("read history: %w", err)
			}
			if len(entries) == 0 {
				fmt.Println("No invocations recorded yet.")
				return nil
			}

			headers := []string{"When", "Operation", "Status", "Files", "OK", "Failed", "Duration"}
			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, []string{
					entry.CreatedAt.Local().Format("2006-01-02 15:04:05"),
					entry.Operation,
					entry.Status,
					strconv.Itoa(entry.Total),
					strconv.Itoa(entry.Succeeded),
					strconv.Itoa(entry.Failed),
					(time.Duration(entry.DurationMS) * time.Millisecond).String(),
				})
			}
			printTable(headers, rows, []columnAlignment{
				alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight,
			})
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of entries to show")
	return cmd
}
