package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/h1dr0nn/Hamonix-SoundEditor/internal/media/ffmpeg"
)

func newFormatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List supported output formats",
		RunE: func(cmd *cobra.Command, args []string) error {
			headers := []string{"Format", "Codec", "Type", "Default Bitrate"}
			rows := make([][]string, 0, len(ffmpeg.Formats()))
			for _, format := range ffmpeg.Formats() {
				encoder, _ := ffmpeg.EncoderFor(format)
				kind := "lossy"
				bitrate := "-"
				if encoder.Lossless {
					kind = "lossless"
				} else if encoder.DefaultBitrateKbps > 0 {
					bitrate = strconv.Itoa(encoder.DefaultBitrateKbps) + " kbps"
				}
				rows = append(rows, []string{format, encoder.Codec, kind, bitrate})
			}
			printTable(headers, rows, []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight})
			return nil
		},
	}
}
