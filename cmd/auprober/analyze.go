//nolint:wrapcheck // CLI surface, errors go straight to the user
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/januszry/aucommon"
	"github.com/januszry/aucommon/internal/pcm"
	"github.com/januszry/aucommon/internal/types"
)

var errInvalidArgCount = errors.New("expected exactly one argument: file path or \"-\" for stdin")

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Analyze raw PCM audio for quality issues",
		ArgsUsage: "<file | ->",
		Flags: append([]cli.Flag{
			// PCMFormat flags.
			&cli.IntFlag{
				Name:     "sample-rate",
				Aliases:  []string{"s"},
				Usage:    "Sample rate in Hz (e.g., 44100, 48000, 96000)",
				Required: true,
			},
			&cli.IntFlag{
				Name:    "bit-depth",
				Aliases: []string{"b"},
				Usage:   "Bit depth (16, 24, or 32)",
				Value:   32,
			},
			&cli.IntFlag{
				Name:    "channels",
				Aliases: []string{"c"},
				Usage:   "Number of channels (1 = mono, 2 = stereo)",
				Value:   2,
			},
		}, commonFlags()...),
		Action: func(_ context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return fmt.Errorf("%w: got %d", errInvalidArgCount, cmd.NArg())
			}

			format, err := parsePCMFormat(cmd)
			if err != nil {
				return err
			}

			opts, err := parseOptions(cmd)
			if err != nil {
				return err
			}

			inputPath := cmd.Args().First()

			reader, cleanup, err := openInput(inputPath)
			if err != nil {
				return err
			}
			defer cleanup()

			decoder, err := pcm.NewDecoder(reader, format)
			if err != nil {
				return err
			}

			report, err := runSession(format.SampleRate, format.Channels, opts, decoder)
			if err != nil {
				return fmt.Errorf("analysis failed: %w", err)
			}

			return outputReport(inputPath, report, cmd.String("format"), cmd.Bool("debug"))
		},
	}
}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "checks",
			Aliases: []string{"C"},
			Usage:   "Comma-separated checks or presets: all, defects, stereo, levels, too-loud, too-quiet, loudness, dynamic-range, clipping, inter-sample-peaks, inverted-phase, phase-issues, channel-imbalance, fake-stereo, dc-offset, silence-padding, truncation, hum, noise-floor, dropouts",
			Value:   "all",
		},
		&cli.StringFlag{
			Name:    "target",
			Aliases: []string{"t"},
			Usage:   "Delivery target adjusting loudness thresholds: streaming, broadcast",
			Value:   "streaming",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format: console, json, markdown",
			Value:   "console",
		},
		&cli.BoolFlag{
			Name:    "debug",
			Aliases: []string{"D"},
			Usage:   "Include all raw meter data in output",
		},
	}
}

func parseOptions(cmd *cli.Command) (aucommon.Options, error) {
	checks, err := parseChecks(cmd.String("checks"))
	if err != nil {
		return aucommon.Options{}, err
	}

	target, err := aucommon.ParseTarget(cmd.String("target"))
	if err != nil {
		return aucommon.Options{}, err
	}

	opts := aucommon.OptionsForTarget(target)
	opts.Checks = checks

	return opts, nil
}

// blockSource is anything that yields AudioBlocks until io.EOF.
type blockSource interface {
	Next() (types.AudioBlock, error)
}

func runSession(sampleRate, numChannels int, opts aucommon.Options, source blockSource) (*aucommon.Report, error) {
	session, err := aucommon.Open(sampleRate, numChannels, opts)
	if err != nil {
		return nil, err
	}

	for {
		block, err := source.Next()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, err
		}

		if err := session.Feed(block); err != nil {
			return nil, err
		}
	}

	return session.Finish()
}

func parsePCMFormat(cmd *cli.Command) (types.PCMFormat, error) {
	sampleRate := cmd.Int("sample-rate")
	rawBitDepth := cmd.Int("bit-depth")
	channels := cmd.Int("channels")

	bitDepth, err := toBitDepth(rawBitDepth)
	if err != nil {
		return types.PCMFormat{}, fmt.Errorf("--bit-depth: %w", err)
	}

	return types.PCMFormat{
		SampleRate: sampleRate,
		BitDepth:   bitDepth,
		Channels:   channels,
	}, nil
}

var errInvalidBitDepth = errors.New("must be 16, 24, or 32")

func toBitDepth(v int) (types.BitDepth, error) {
	switch v {
	case 16:
		return types.Depth16, nil
	case 24:
		return types.Depth24, nil
	case 32:
		return types.Depth32, nil
	default:
		return 0, errInvalidBitDepth
	}
}

//nolint:gochecknoglobals
var checkNames = map[string]aucommon.Check{
	"too-loud":           aucommon.CheckTooLoud,
	"too-quiet":          aucommon.CheckTooQuiet,
	"loudness":           aucommon.CheckLoudness,
	"dynamic-range":      aucommon.CheckDynamicRange,
	"clipping":           aucommon.CheckClipping,
	"inter-sample-peaks": aucommon.CheckInterSamplePeaks,
	"inverted-phase":     aucommon.CheckInvertedPhase,
	"phase-issues":       aucommon.CheckPhaseIssues,
	"channel-imbalance":  aucommon.CheckChannelImbalance,
	"fake-stereo":        aucommon.CheckFakeStereo,
	"dc-offset":          aucommon.CheckDCOffset,
	"silence-padding":    aucommon.CheckSilencePadding,
	"truncation":         aucommon.CheckTruncation,
	"hum":                aucommon.CheckHum,
	"noise-floor":        aucommon.CheckNoiseFloor,
	"dropouts":           aucommon.CheckDropouts,
	// Presets.
	"all":     aucommon.ChecksAll,
	"defects": aucommon.ChecksDefects,
	"stereo":  aucommon.ChecksStereo,
	"levels":  aucommon.ChecksLevels,
}

func parseChecks(raw string) (aucommon.Check, error) {
	var result aucommon.Check

	for name := range strings.SplitSeq(raw, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		check, ok := checkNames[name]
		if !ok {
			return 0, fmt.Errorf("unknown check %q", name)
		}

		result |= check
	}

	if result == 0 {
		return aucommon.ChecksAll, nil
	}

	return result, nil
}

// openInput opens a file, or passes stdin through for "-".
func openInput(source string) (io.Reader, func(), error) {
	if source == "-" {
		return os.Stdin, func() {}, nil
	}

	file, err := os.Open(source) //nolint:gosec // CLI tool opens user-specified audio files
	if err != nil {
		return nil, func() {}, fmt.Errorf("cannot access %s: %w", source, err)
	}

	return file, func() { file.Close() }, nil
}
