//nolint:wrapcheck // CLI surface, errors go straight to the user
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/januszry/aucommon/internal/integration/ffmpeg"
	"github.com/januszry/aucommon/internal/integration/ffprobe"
	"github.com/januszry/aucommon/internal/pcm"
)

var errProcessArgs = errors.New("expected exactly one argument: file path")

func processCommand() *cli.Command {
	return &cli.Command{
		Name:      "process",
		Usage:     "Extract PCM from an audio file and analyze for quality issues",
		ArgsUsage: "<file>",
		Flags: append([]cli.Flag{
			&cli.IntFlag{
				Name:  "stream",
				Usage: "Audio stream index (0-based)",
				Value: 0,
			},
		}, commonFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return fmt.Errorf("%w: got %d", errProcessArgs, cmd.NArg())
			}

			filePath := cmd.Args().First()
			streamIndex := cmd.Int("stream")

			opts, err := parseOptions(cmd)
			if err != nil {
				return err
			}

			// Probe the file for audio properties.
			probeResult, err := ffprobe.Probe(ctx, filePath)
			if err != nil {
				return fmt.Errorf("probing file: %w", err)
			}

			stream, err := findAudioStream(probeResult, streamIndex)
			if err != nil {
				return err
			}

			format, err := stream.PCMFormat()
			if err != nil {
				return err
			}

			file, err := os.Open(filePath) //nolint:gosec // CLI tool opens user-specified audio files
			if err != nil {
				return fmt.Errorf("opening file: %w", err)
			}
			defer file.Close()

			// Decode through a pipe: ffmpeg writes PCM on one end while the
			// session consumes blocks from the other. Nothing is buffered
			// beyond one block.
			pipeReader, pipeWriter := io.Pipe()
			extractDone := make(chan error, 1)

			go func() {
				err := ffmpeg.ExtractStream(ctx, file, pipeWriter, streamIndex, &format)
				pipeWriter.CloseWithError(err)
				extractDone <- err
			}()

			decoder, err := pcm.NewDecoder(pipeReader, format)
			if err != nil {
				return err
			}

			report, err := runSession(format.SampleRate, format.Channels, opts, decoder)

			// Drain remaining PCM so ffmpeg can exit, then surface its error first:
			// a decode failure explains more than the truncated-stream symptoms.
			_, _ = io.Copy(io.Discard, pipeReader)

			if extractErr := <-extractDone; extractErr != nil {
				return fmt.Errorf("extracting PCM: %w", extractErr)
			}

			if err != nil {
				return fmt.Errorf("analysis failed: %w", err)
			}

			return outputReport(filePath, report, cmd.String("format"), cmd.Bool("debug"))
		},
	}
}

func findAudioStream(result *ffprobe.Result, streamIndex int) (*ffprobe.Stream, error) {
	audioCount := 0

	for i := range result.Streams {
		if result.Streams[i].CodecType == "audio" {
			if audioCount == streamIndex {
				return &result.Streams[i], nil
			}

			audioCount++
		}
	}

	return nil, fmt.Errorf("audio stream index %d not found (file has %d audio streams)", streamIndex, audioCount)
}
