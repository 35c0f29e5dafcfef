// Package pcm converts raw little-endian signed integer PCM into
// normalized float blocks.
package pcm

import (
	"errors"
	"fmt"
	"io"

	"github.com/januszry/aucommon/internal/types"
)

const (
	maxValue16 = 32768.0      // 2^15
	maxValue24 = 8388608.0    // 2^23
	maxValue32 = 2147483648.0 // 2^31

	blockFrames = 4096
)

var ErrBadDepth = errors.New("unsupported bit depth")

// Decoder reads raw interleaved PCM and yields normalized AudioBlocks.
// The returned block's sample slice is reused between calls; consume it
// before calling Next again.
type Decoder struct {
	reader  io.Reader
	format  types.PCMFormat
	buf     []byte
	fill    int // bytes buffered in buf, including any partial-frame tail
	samples []float64
}

func NewDecoder(reader io.Reader, format types.PCMFormat) (*Decoder, error) {
	switch format.BitDepth {
	case types.Depth16, types.Depth24, types.Depth32:
	default:
		return nil, fmt.Errorf("%w: %d", ErrBadDepth, format.BitDepth)
	}

	frameSize := int(format.BitDepth/8) * format.Channels

	return &Decoder{
		reader:  reader,
		format:  format,
		buf:     make([]byte, frameSize*blockFrames),
		samples: make([]float64, format.Channels*blockFrames),
	}, nil
}

// Next decodes the next block. Returns io.EOF when the stream is exhausted.
// Reads of any size are handled: a partial frame left by a short read is
// carried over to the next call so frame alignment survives pipes and stdin.
// A partial frame at end of stream is discarded.
func (d *Decoder) Next() (types.AudioBlock, error) {
	bytesPerSample := int(d.format.BitDepth / 8)
	frameSize := bytesPerSample * d.format.Channels

	for d.fill < frameSize {
		n, err := d.reader.Read(d.buf[d.fill:])
		d.fill += n

		if err != nil {
			if errors.Is(err, io.EOF) {
				if d.fill < frameSize {
					d.fill = 0

					return types.AudioBlock{}, io.EOF
				}

				break
			}

			return types.AudioBlock{}, fmt.Errorf("pcm read: %w", err)
		}
	}

	completeFrames := d.fill / frameSize
	data := d.buf[:completeFrames*frameSize]
	out := d.samples[:completeFrames*d.format.Channels]

	switch d.format.BitDepth {
	case types.Depth16:
		for i := range out {
			off := i * 2
			v := int16(uint16(data[off]) | uint16(data[off+1])<<8) //nolint:gosec // two's complement conversion for signed PCM samples
			out[i] = float64(v) / maxValue16
		}
	case types.Depth24:
		for i := range out {
			off := i * 3
			v := int32(uint32(data[off])|uint32(data[off+1])<<8|uint32(data[off+2])<<16) << 8 >> 8 //nolint:gosec // sign extension for 24-bit samples
			out[i] = float64(v) / maxValue24
		}
	case types.Depth32:
		for i := range out {
			off := i * 4
			v := int32(uint32(data[off]) | uint32(data[off+1])<<8 | uint32(data[off+2])<<16 | uint32(data[off+3])<<24) //nolint:gosec // two's complement conversion for signed PCM samples
			out[i] = float64(v) / maxValue32
		}
	}

	// Keep the tail bytes for the next call.
	copy(d.buf, d.buf[completeFrames*frameSize:d.fill])
	d.fill -= completeFrames * frameSize

	return types.AudioBlock{
		SampleRate: d.format.SampleRate,
		Channels:   d.format.Channels,
		Samples:    out,
	}, nil
}
