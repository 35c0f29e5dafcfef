// Package wave decodes WAV files in-process, without ffmpeg.
package wave

import (
	"fmt"
	"io"

	"github.com/farcloser/primordium/fault"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/januszry/aucommon/internal/types"
)

const blockFrames = 4096

// Decoder reads a WAV file and yields normalized AudioBlocks.
// The returned block's sample slice is reused between calls; consume it
// before calling Next again.
type Decoder struct {
	dec     *wav.Decoder
	buf     *audio.IntBuffer
	samples []float64
	scale   float64
	format  types.PCMFormat
}

func NewDecoder(reader io.ReadSeeker) (*Decoder, error) {
	dec := wav.NewDecoder(reader)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: not a valid WAV file", fault.ErrReadFailure)
	}

	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
	}

	sampleRate := int(dec.SampleRate)
	numChannels := int(dec.NumChans)
	bps := int(dec.BitDepth)

	if numChannels < 1 || sampleRate < 1 || bps < 8 || bps > 32 {
		return nil, fmt.Errorf(
			"%w: implausible WAV header (%d Hz, %d ch, %d bit)",
			fault.ErrReadFailure, sampleRate, numChannels, bps,
		)
	}

	return &Decoder{
		dec: dec,
		buf: &audio.IntBuffer{
			Format: &audio.Format{
				NumChannels: numChannels,
				SampleRate:  sampleRate,
			},
			Data:           make([]int, numChannels*blockFrames),
			SourceBitDepth: bps,
		},
		samples: make([]float64, numChannels*blockFrames),
		scale:   float64(int64(1) << (bps - 1)),
		format: types.PCMFormat{
			SampleRate: sampleRate,
			BitDepth:   types.BitDepth(bps),
			Channels:   numChannels,
		},
	}, nil
}

// Format returns the shape of the decoded stream.
func (d *Decoder) Format() types.PCMFormat {
	return d.format
}

// Next decodes the next block. Returns io.EOF when the stream is exhausted.
func (d *Decoder) Next() (types.AudioBlock, error) {
	if d.dec.EOF() {
		return types.AudioBlock{}, io.EOF
	}

	n, err := d.dec.PCMBuffer(d.buf)
	if err != nil {
		return types.AudioBlock{}, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
	}

	if n == 0 {
		return types.AudioBlock{}, io.EOF
	}

	out := d.samples[:n]
	for i, sample := range d.buf.Data[:n] {
		out[i] = float64(sample) / d.scale
	}

	return types.AudioBlock{
		SampleRate: d.format.SampleRate,
		Channels:   d.format.Channels,
		Samples:    out,
	}, nil
}
