// Package clipping detects runs of consecutive full-scale samples. A single
// sample touching the ceiling is legal; two or more in a row mean the
// waveform was flattened. Input is normalized float, so "full scale" allows
// one 16-bit step of slack below 1.0 to catch integer-clipped sources.
package clipping

import (
	"math"

	"github.com/januszry/aucommon/internal/types"
)

// One LSB at 16 bits below full scale. Integer PCM clipped at 32767/32768
// normalizes just under 1.0 and must still register.
const defaultThreshold = 1.0 - 1.0/32768.0

const minRun = 2

// Meter counts clipped runs one block at a time.
type Meter struct {
	numChannels int
	threshold   float64
	consecutive []uint64
	result      types.ClippingResult
}

// New returns a meter for the given channel count. A zero threshold falls
// back to the default.
func New(numChannels int, threshold float64) *Meter {
	if threshold == 0 {
		threshold = defaultThreshold
	}

	return &Meter{
		numChannels: numChannels,
		threshold:   threshold,
		consecutive: make([]uint64, numChannels),
		result: types.ClippingResult{
			Channels: make([]types.ChannelClipping, numChannels),
		},
	}
}

// Process consumes interleaved frames.
func (m *Meter) Process(samples []float64) {
	nch := m.numChannels

	for i := 0; i+nch <= len(samples); i += nch {
		for ch := range nch {
			m.result.Samples++

			if math.Abs(samples[i+ch]) >= m.threshold {
				m.consecutive[ch]++

				continue
			}

			m.flush(ch)
		}
	}
}

func (m *Meter) flush(ch int) {
	if m.consecutive[ch] >= minRun {
		m.result.Channels[ch].Events++

		m.result.Channels[ch].ClippedSamples += m.consecutive[ch]
		if m.consecutive[ch] > m.result.Channels[ch].LongestRun {
			m.result.Channels[ch].LongestRun = m.consecutive[ch]
		}

		m.result.Events++

		m.result.ClippedSamples += m.consecutive[ch]
		if m.consecutive[ch] > m.result.LongestRun {
			m.result.LongestRun = m.consecutive[ch]
		}
	}

	m.consecutive[ch] = 0
}

// Result finalizes the measurement, flushing trailing runs.
func (m *Meter) Result() *types.ClippingResult {
	for ch := range m.consecutive {
		m.flush(ch)
	}

	result := m.result

	return &result
}
