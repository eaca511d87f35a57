package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/engine/host"
	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/history"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "process",
		Short: "Read a request from stdin, process it, and write results to stdout",
		Long: `Process reads a single JSON request from stdin, executes the batch,
streams NDJSON progress events to stdout, and finishes with a terminal
response object. Logs go to stderr and the configured log file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger()
			if err != nil {
				return err
			}

			var recorder host.Recorder
			if cfg.History.Enabled {
				store, err := history.Open(cfg.Paths.HistoryDB)
				if err != nil {
					logger.Warn("history store unavailable", "error", err)
				} else {
					defer store.Close()
					recorder = store
				}
			}

			return host.New(cfg, os.Stdin, os.Stdout, recorder, logger).Serve(cmd.Context())
		},
	}
}
