// Package ffprobe shells out to ffprobe to discover what a media file
// contains before we decode it.
package ffprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"time"

	"github.com/farcloser/primordium/fault"

	"github.com/januszry/aucommon/internal/integration/binary"
	"github.com/januszry/aucommon/internal/types"
)

const (
	name = "ffprobe"
	// Slow hard-drives spinning up or network retrieved resources may cause timeouts if too aggressive.
	timeout = 60 * time.Second
)

// Result contains the marshalled output of ffprobe.
//
//nolint:tagliatelle
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream represents one stream inside the container. Bit depth reporting is
// codec-dependent: FLAC/ALAC populate bits_per_raw_sample, WAV/AIFF populate
// bits_per_sample, lossy codecs populate neither.
//
//nolint:tagliatelle
type Stream struct {
	Index            int    `json:"index"`
	CodecName        string `json:"codec_name"`                    // flac
	CodecType        string `json:"codec_type"`                    // audio
	SampleRate       string `json:"sample_rate,omitempty"`         // 44100
	Channels         int    `json:"channels,omitempty"`            // 2
	ChannelLayout    string `json:"channel_layout,omitempty"`      // stereo
	Duration         string `json:"duration,omitempty"`            // 310.666667
	BitRate          string `json:"bit_rate,omitempty"`            // 956821
	SampleFmt        string `json:"sample_fmt,omitempty"`          // s16
	BitsPerRawSample string `json:"bits_per_raw_sample,omitempty"` // lossless codecs
	BitsPerSample    int    `json:"bits_per_sample,omitempty"`     // container formats
}

// Format represents container-level information.
//
//nolint:tagliatelle
type Format struct {
	Filename   string `json:"filename"`
	NbStreams  int    `json:"nb_streams"`
	FormatName string `json:"format_name"`         // flac, wav, mov,mp4,m4a,...
	Duration   string `json:"duration,omitempty"`  // seconds as float string
	BitRate    string `json:"bit_rate,omitempty"`  // bits/sec, all streams combined
	Size       string `json:"size,omitempty"`      // bytes as string
	ProbeScore int    `json:"probe_score"`         // 0-100 confidence in format detection
}

// Probe runs ffprobe on the given file path and returns parsed metadata.
// It requires ffprobe to be available in the system PATH.
func Probe(ctx context.Context, filePath string) (*Result, error) {
	slog.Debug("ffprobe.Probe", "file path", filePath)

	ffprobePath, err := binary.Require(name)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	//nolint:gosec // filePath is intentionally user-provided input for probing media files
	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		filePath,
	)

	var stderr bytes.Buffer

	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: after %v", fault.ErrTimeout, timeout)
		}

		return nil, fmt.Errorf("%w: %s: %w", fault.ErrCommandFailure, stderr.String(), err)
	}

	var result Result
	if err = json.Unmarshal(output, &result); err != nil {
		return nil, fmt.Errorf("%w: %w", fault.ErrInvalidJSON, err)
	}

	return &result, nil
}

// FirstAudioStream returns the first audio stream, if any.
func (r *Result) FirstAudioStream() (*Stream, bool) {
	for i := range r.Streams {
		if r.Streams[i].CodecType == "audio" {
			return &r.Streams[i], true
		}
	}

	return nil, false
}

// PCMFormat derives the extraction format for a stream. Lossy codecs carry
// no bit depth; they decode to 16-bit.
func (s *Stream) PCMFormat() (types.PCMFormat, error) {
	rate, err := strconv.Atoi(s.SampleRate)
	if err != nil || rate <= 0 {
		return types.PCMFormat{}, fmt.Errorf("%w: bad sample rate %q", fault.ErrInvalidJSON, s.SampleRate)
	}

	if s.Channels < 1 {
		return types.PCMFormat{}, fmt.Errorf("%w: stream %d has no channels", fault.ErrInvalidJSON, s.Index)
	}

	depth := types.Depth16

	raw := s.BitsPerSample
	if raw == 0 {
		raw, _ = strconv.Atoi(s.BitsPerRawSample)
	}

	switch raw {
	case 24:
		depth = types.Depth24
	case 32:
		depth = types.Depth32
	}

	return types.PCMFormat{
		SampleRate: rate,
		BitDepth:   depth,
		Channels:   s.Channels,
	}, nil
}
