// Package ffmpeg shells out to ffmpeg to decode container formats into
// raw PCM we can meter.
package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"time"

	"github.com/farcloser/primordium/fault"

	"github.com/januszry/aucommon/internal/integration/binary"
	"github.com/januszry/aucommon/internal/types"
)

const (
	name = "ffmpeg"
	// Decoding a full album-length stream on a slow disk takes a while.
	timeout = 10 * time.Minute
)

// ExtractStream decodes one audio stream from a container into raw
// little-endian signed PCM at the requested bit depth.
func ExtractStream(
	ctx context.Context,
	input io.Reader,
	output io.Writer,
	streamIndex int,
	format *types.PCMFormat,
) error {
	slog.Debug("ffmpeg.ExtractStream", "stream index", streamIndex, "stage", "start")

	ffmpegPath, err := binary.Require(name)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	spec := bitDepthToSpec(format.BitDepth)

	cmd := exec.CommandContext(ctx, ffmpegPath,
		"-i", "-",
		"-map", "0:a:"+strconv.Itoa(streamIndex),
		"-f", spec,
		"-acodec", "pcm_"+spec,
		"-v", "quiet",
		"-",
	)

	cmd.Stdout = output
	cmd.Stdin = input

	var stderr bytes.Buffer

	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			slog.Debug("ffmpeg.ExtractStream", "stream index", streamIndex, "stage", "timeout")

			return fmt.Errorf("%w: after %v", fault.ErrTimeout, timeout)
		}

		slog.Debug("ffmpeg.ExtractStream", "stream index", streamIndex, "stage", "error")

		return fmt.Errorf("%w: %s: %w", fault.ErrCommandFailure, stderr.String(), err)
	}

	return nil
}

func bitDepthToSpec(bitDepth types.BitDepth) string {
	// BitDepth 32 = s32le, 24 = s24le, 16 = s16le
	return "s" + strconv.Itoa(int(bitDepth)) + "le"
}
