//nolint:wrapcheck
package main

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/januszry/aucommon"
	"github.com/januszry/aucommon/internal/integration/ffmpeg"
	"github.com/januszry/aucommon/internal/integration/ffprobe"
	"github.com/januszry/aucommon/internal/output"
	"github.com/januszry/aucommon/internal/pcm"
	"github.com/januszry/aucommon/internal/types"
)

const outputFile = "aucommon-report.jsonl"

var (
	errNotDirectory  = errors.New("not a directory")
	errNoAudioFiles  = errors.New("no audio files found")
	errNoAudioStream = errors.New("no audio streams found")
)

func reportCommand() *cli.Command {
	return &cli.Command{
		Name:      "report",
		Usage:     "Scan a music collection and write a quality JSONL report",
		ArgsUsage: "<folder>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "redact-path",
				Usage: "Strip file paths from the report",
			},
			&cli.StringFlag{
				Name:    "target",
				Aliases: []string{"t"},
				Usage:   "Delivery target adjusting loudness thresholds: streaming, broadcast",
				Value:   "streaming",
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"j"},
				Usage:   "Number of concurrent workers",
				Value:   runtime.NumCPU(),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return fmt.Errorf("expected exactly one argument: folder path")
			}

			folder := cmd.Args().First()
			redact := cmd.Bool("redact-path")
			workers := max(cmd.Int("workers"), 1)

			target, err := aucommon.ParseTarget(cmd.String("target"))
			if err != nil {
				return err
			}

			return runReport(ctx, folder, redact, target, workers)
		},
	}
}

func runReport(ctx context.Context, folder string, redact bool, target aucommon.Target, workers int) error {
	info, err := os.Stat(folder)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%q: %w", folder, errNotDirectory)
	}

	files, err := collectAudioFiles(folder)
	if err != nil {
		return fmt.Errorf("scanning folder: %w", err)
	}

	if len(files) == 0 {
		return fmt.Errorf("%q: %w", folder, errNoAudioFiles)
	}

	fmt.Fprintf(os.Stderr, "Found %d files to analyze (%d workers)\n", len(files), workers)

	// Process files concurrently.
	startTime := time.Now()
	results := make([]Record, len(files))

	var progress atomic.Int64

	sem := make(chan struct{}, workers)

	var waitGroup sync.WaitGroup

	for idx, filePath := range files {
		waitGroup.Add(1)

		go func(idx int, filePath string) {
			defer waitGroup.Done()

			sem <- struct{}{}

			defer func() { <-sem }()

			results[idx] = processFile(ctx, filePath, target)

			done := progress.Add(1)
			fmt.Fprintf(os.Stderr, "[%d/%d] %s\n", done, len(files), filePath)
		}(idx, filePath)
	}

	waitGroup.Wait()

	// Write results in file order.
	out, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer out.Close()

	enc := json.NewEncoder(out)
	failed := 0

	var totalProbe, totalAnalyze time.Duration

	for idx := range results {
		record := &results[idx]

		if record.Error != "" {
			failed++
		}

		if record.Timing != nil {
			totalProbe += millisToDuration(record.Timing.ProbeMs)
			totalAnalyze += millisToDuration(record.Timing.AnalyzeMs)
		}

		if redact {
			record.File = ""
			record.Probe = redactProbe(record.Probe)
		}

		if err := enc.Encode(record); err != nil {
			slog.Error("writing record", "file", files[idx], "error", err)
		}
	}

	out.Close()

	// Compress.
	if err := compressFile(outputFile); err != nil {
		slog.Error("compressing report", "error", err)
	}

	elapsed := time.Since(startTime)
	minutes := int(elapsed.Minutes())
	seconds := int(elapsed.Seconds()) % 60

	fmt.Fprintf(os.Stderr, "\nDone: %d files in %dm %ds (%d failed)\n", len(files), minutes, seconds, failed)
	fmt.Fprintf(os.Stderr, "Report written to %s (and %s.gz)\n", outputFile, outputFile)

	// Timing breakdown. Extraction and analysis share the pipe, so a single
	// figure covers both.
	analyzed := len(files) - failed
	fmt.Fprintf(os.Stderr, "\n--- Timing ---\n")
	fmt.Fprintf(os.Stderr, "  Wall clock:  %s\n", elapsed.Truncate(time.Millisecond))
	fmt.Fprintf(os.Stderr, "  ffprobe:     %s (cumulative)\n", totalProbe.Truncate(time.Millisecond))
	fmt.Fprintf(os.Stderr, "  analysis:    %s (cumulative, incl. decode)\n", totalAnalyze.Truncate(time.Millisecond))

	if analyzed > 0 {
		fmt.Fprintf(os.Stderr, "  avg/file:    %s (probe: %s, analyze: %s)\n",
			(totalProbe+totalAnalyze)/time.Duration(analyzed),
			totalProbe/time.Duration(analyzed),
			totalAnalyze/time.Duration(analyzed),
		)
	}

	// Print digest summary.
	fmt.Fprintln(os.Stderr)

	return runDigest(outputFile, "")
}

func processFile(ctx context.Context, filePath string, target aucommon.Target) Record {
	fileStart := time.Now()
	timing := &RecordTiming{}

	// Probe.
	probeStart := time.Now()

	probeResult, err := ffprobe.Probe(ctx, filePath)

	timing.ProbeMs = durationMs(time.Since(probeStart))

	if err != nil {
		return Record{File: filePath, Error: fmt.Sprintf("probe failed: %v", err), Timing: timing}
	}

	stream, ok := probeResult.FirstAudioStream()
	if !ok {
		return Record{File: filePath, Error: errNoAudioStream.Error(), Timing: timing}
	}

	format, err := stream.PCMFormat()
	if err != nil {
		return Record{File: filePath, Error: fmt.Sprintf("format error: %v", err), Timing: timing}
	}

	file, err := os.Open(filePath) //nolint:gosec // CLI tool opens user-specified audio files
	if err != nil {
		return Record{File: filePath, Error: fmt.Sprintf("open failed: %v", err), Timing: timing}
	}
	defer file.Close()

	// Decode through a pipe: ffmpeg writes PCM on one end while the session
	// consumes blocks from the other.
	analyzeStart := time.Now()

	pipeReader, pipeWriter := io.Pipe()
	extractDone := make(chan error, 1)

	go func() {
		err := ffmpeg.ExtractStream(ctx, file, pipeWriter, stream.Index, &format)
		pipeWriter.CloseWithError(err)
		extractDone <- err
	}()

	report, analyzeErr := analyzeStream(pipeReader, format, target)

	_, _ = io.Copy(io.Discard, pipeReader)

	timing.AnalyzeMs = durationMs(time.Since(analyzeStart))
	timing.TotalMs = durationMs(time.Since(fileStart))

	if extractErr := <-extractDone; extractErr != nil {
		return Record{File: filePath, Error: fmt.Sprintf("extraction failed: %v", extractErr), Timing: timing}
	}

	if analyzeErr != nil {
		return Record{File: filePath, Error: fmt.Sprintf("analysis failed: %v", analyzeErr), Timing: timing}
	}

	record := Record{
		File:     filePath,
		Analysis: output.ReportToMap(report),
		Timing:   timing,
	}

	// Serialize probe data (strips tags/disposition since Go structs don't include them).
	probeJSON, err := json.Marshal(probeResult)
	if err == nil {
		record.Probe = probeJSON
	} else {
		record.ProbeError = "probe serialization failed"
	}

	return record
}

func analyzeStream(reader io.Reader, format types.PCMFormat, target aucommon.Target) (*aucommon.Report, error) {
	decoder, err := pcm.NewDecoder(reader, format)
	if err != nil {
		return nil, err
	}

	opts := aucommon.OptionsForTarget(target)
	opts.Checks = aucommon.ChecksAll

	session, err := aucommon.Open(format.SampleRate, format.Channels, opts)
	if err != nil {
		return nil, err
	}

	for {
		block, err := decoder.Next()
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

func durationMs(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}

func millisToDuration(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}

func collectAudioFiles(root string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		switch strings.ToLower(filepath.Ext(path)) {
		case ".flac", ".m4a", ".wav", ".mp3":
			files = append(files, path)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.Sort(files)

	return files, nil
}

func compressFile(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // reading our own output file
	if err != nil {
		return err
	}

	gzFile, err := os.Create(path + ".gz")
	if err != nil {
		return err
	}
	defer gzFile.Close()

	gzWriter := gzip.NewWriter(gzFile)

	if _, err := gzWriter.Write(data); err != nil {
		return err
	}

	return gzWriter.Close()
}

func redactProbe(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}

	var probe map[string]any
	if err := json.Unmarshal(raw, &probe); err != nil {
		return raw
	}

	// Strip format.filename.
	if format, ok := probe["format"].(map[string]any); ok {
		delete(format, "filename")
	}

	redacted, err := json.Marshal(probe)
	if err != nil {
		return raw
	}

	return redacted
}
