package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/engine/validate"
)

func newPresetsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List mastering presets and their loudness targets",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			targets := map[string]float64{
				"music":   cfg.Mastering.MusicTargetLUFS,
				"podcast": cfg.Mastering.PodcastTargetLUFS,
				"voice":   cfg.Mastering.VoiceTargetLUFS,
			}

			title := cases.Title(language.English)
			headers := []string{"Preset", "Target LUFS", "Ceiling dBFS"}
			rows := make([][]string, 0, len(validate.KnownPresets))
			for _, preset := range validate.KnownPresets {
				rows = append(rows, []string{
					title.String(preset),
					fmt.Sprintf("%.1f", targets[preset]),
					fmt.Sprintf("%.1f", cfg.Mastering.CeilingDBFS),
				})
			}
			printTable(headers, rows, []columnAlignment{alignLeft, alignRight, alignRight})
			return nil
		},
	}
}
