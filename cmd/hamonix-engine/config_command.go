package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or generate configuration",
	}
	cmd.AddCommand(newConfigShowCommand(ctx))
	cmd.AddCommand(newConfigInitCommand())
	return cmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration path and values",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			source := ctx.configPath
			if source == "" {
				source = "(built-in defaults)"
			}
			fmt.Printf("Configuration source: %s\n\n", source)

			headers := []string{"Setting", "Value"}
			rows := [][]string{
				{"paths.temp_dir", cfg.Paths.TempDir},
				{"paths.log_dir", cfg.Paths.LogDir},
				{"paths.history_db", cfg.Paths.HistoryDB},
				{"tools.ffmpeg", cfg.Tools.FFmpeg},
				{"tools.ffprobe", cfg.Tools.FFprobe},
				{"engine.max_file_size_mb", fmt.Sprintf("%d", cfg.Engine.MaxFileSizeMB)},
				{"engine.timeout_seconds", fmt.Sprintf("%d", cfg.Engine.TimeoutSeconds)},
				{"engine.max_workers", fmt.Sprintf("%d", cfg.Engine.MaxWorkers)},
				{"mastering.music_target_lufs", fmt.Sprintf("%.1f", cfg.Mastering.MusicTargetLUFS)},
				{"mastering.podcast_target_lufs", fmt.Sprintf("%.1f", cfg.Mastering.PodcastTargetLUFS)},
				{"mastering.voice_target_lufs", fmt.Sprintf("%.1f", cfg.Mastering.VoiceTargetLUFS)},
				{"mastering.ceiling_dbfs", fmt.Sprintf("%.1f", cfg.Mastering.CeilingDBFS)},
				{"trim.threshold_db", fmt.Sprintf("%.1f", cfg.Trim.ThresholdDB)},
				{"trim.min_silence_ms", fmt.Sprintf("%d", cfg.Trim.MinSilenceMs)},
				{"trim.padding_ms", fmt.Sprintf("%d", cfg.Trim.PaddingMs)},
				{"history.enabled", fmt.Sprintf("%t", cfg.History.Enabled)},
				{"logging.format", cfg.Logging.Format},
				{"logging.level", cfg.Logging.Level},
			}
			printTable(headers, rows, []columnAlignment{alignLeft, alignLeft})
			return nil
		},
	}
}

func newConfigInitCommand() *cobra.Command {
	var (
		targetPath string
		overwrite  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a sample configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := targetPath
			if path == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return err
				}
				path = defaultPath
			}
			expanded, err := config.ExpandPath(path)
			if err != nil {
				return err
			}

			if _, err := os.Stat(expanded); err == nil && !overwrite {
				return fmt.Errorf("configuration already exists at %s (use --overwrite to replace it)", expanded)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}

			if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
				return fmt.Errorf("create configuration directory: %w", err)
			}
			if err := os.WriteFile(expanded, []byte(config.SampleConfig()), 0o644); err != nil {
				return fmt.Errorf("write configuration: %w", err)
			}

			fmt.Printf("Wrote sample configuration to %s\n", expanded)
			return nil
		},
	}

	cmd.Flags().StringVar(&targetPath, "path", "", "Destination path (defaults to the standard location)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing configuration file")
	return cmd
}
