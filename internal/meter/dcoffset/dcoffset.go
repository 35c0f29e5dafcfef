// Package dcoffset tracks the running per-channel mean. A shifted waveform
// wastes headroom and clicks at edit points; anything above -40 dB is worth
// fixing.
package dcoffset

import (
	"math"

	"github.com/januszry/aucommon/internal/types"
)

const silenceFloorDb = -120.0

// Meter accumulates per-channel sample sums.
type Meter struct {
	numChannels int
	channelSums []float64
	frames      uint64
}

// New returns a meter for the given channel count.
func New(numChannels int) *Meter {
	return &Meter{
		numChannels: numChannels,
		channelSums: make([]float64, numChannels),
	}
}

// Process consumes interleaved frames.
func (m *Meter) Process(samples []float64) {
	nch := m.numChannels

	for i := 0; i+nch <= len(samples); i += nch {
		for ch := range nch {
			m.channelSums[ch] += samples[i+ch]
		}

		m.frames++
	}
}

// Result finalizes the measurement.
func (m *Meter) Result() *types.DCOffsetResult {
	if m.frames == 0 {
		return &types.DCOffsetResult{
			OffsetDb: silenceFloorDb,
			Channels: make([]float64, m.numChannels),
		}
	}

	channelOffsets := make([]float64, m.numChannels)

	var totalOffset float64

	for ch := range channelOffsets {
		channelOffsets[ch] = m.channelSums[ch] / float64(m.frames)
		totalOffset += math.Abs(channelOffsets[ch])
	}

	totalOffset /= float64(m.numChannels)

	offsetDb := 20 * math.Log10(totalOffset)
	if math.IsInf(offsetDb, -1) {
		offsetDb = silenceFloorDb
	}

	return &types.DCOffsetResult{
		Offset:   totalOffset,
		OffsetDb: offsetDb,
		Channels: channelOffsets,
		Samples:  m.frames * uint64(m.numChannels),
	}
}
