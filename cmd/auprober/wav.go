//nolint:wrapcheck // CLI surface, errors go straight to the user
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/januszry/aucommon/internal/integration/wave"
)

func wavCommand() *cli.Command {
	return &cli.Command{
		Name:      "wav",
		Usage:     "Analyze a WAV file for quality issues (no ffmpeg needed)",
		ArgsUsage: "<file>",
		Flags:     commonFlags(),
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return fmt.Errorf("%w: got %d", errProcessArgs, cmd.NArg())
			}

			filePath := cmd.Args().First()

			opts, err := parseOptions(cmd)
			if err != nil {
				return err
			}

			file, err := os.Open(filePath) //nolint:gosec // CLI tool opens user-specified audio files
			if err != nil {
				return fmt.Errorf("opening file: %w", err)
			}
			defer file.Close()

			decoder, err := wave.NewDecoder(file)
			if err != nil {
				return err
			}

			format := decoder.Format()

			report, err := runSession(format.SampleRate, format.Channels, opts, decoder)
			if err != nil {
				return fmt.Errorf("analysis failed: %w", err)
			}

			return outputReport(filePath, report, cmd.String("format"), cmd.Bool("debug"))
		},
	}
}
