package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Run environment checks and report readiness",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			results := preflight.RunAll(cfg)
			headers := []string{"Check", "Status", "Detail"}
			rows := make([][]string, 0, len(results))
			for _, result := range results {
				status := "OK"
				if !result.Passed {
					status = "FAIL"
				}
				rows = append(rows, []string{result.Name, status, result.Detail})
			}
			printTable(headers, rows, []columnAlignment{alignLeft, alignLeft, alignLeft})

			if !preflight.Passed(results) {
				return fmt.Errorf("one or more environment checks failed")
			}
			return nil
		},
	}
}
