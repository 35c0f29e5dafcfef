// Package balance compares long-term channel levels. Brief pans are normal
// program content, so the imbalance verdict uses windowed hysteresis: the
// level delta must exceed the threshold for a minimum sustained duration
// before it counts.
package balance

import (
	"math"

	"github.com/januszry/aucommon/internal/types"
)

const silenceFloorDb = -120.0

// Options tunes imbalance evidence collection.
type Options struct {
	ThresholdDb   float64 // windowed delta above this is evidence (default 3)
	MinSustainSec float64 // evidence must persist this long (default 3)
	WindowMs      int     // RMS window (default 400)
	GateDb        float64 // windows with all channels below this carry no evidence (default -70)
}

// DefaultOptions returns the standard evidence thresholds.
func DefaultOptions() Options {
	return Options{
		ThresholdDb:   3.0,
		MinSustainSec: 3.0,
		WindowMs:      400,
		GateDb:        -70.0,
	}
}

// Meter accumulates per-channel level state one block at a time.
type Meter struct {
	sampleRate  int
	numChannels int
	opts        Options

	windowFrames int
	winSumSq     []float64
	winFill      int

	totalSumSq []float64

	worstDelta float64
	run        int
	longestRun int

	frames uint64
}

// New returns a meter for the given stream shape. Zero-valued options fall
// back to defaults.
func New(sampleRate, numChannels int, opts Options) *Meter {
	def := DefaultOptions()

	if opts.ThresholdDb == 0 {
		opts.ThresholdDb = def.ThresholdDb
	}

	if opts.MinSustainSec == 0 {
		opts.MinSustainSec = def.MinSustainSec
	}

	if opts.WindowMs == 0 {
		opts.WindowMs = def.WindowMs
	}

	if opts.GateDb == 0 {
		opts.GateDb = def.GateDb
	}

	return &Meter{
		sampleRate:   sampleRate,
		numChannels:  numChannels,
		opts:         opts,
		windowFrames: max(sampleRate*opts.WindowMs/1000, 1),
		winSumSq:     make([]float64, numChannels),
		totalSumSq:   make([]float64, numChannels),
	}
}

// Process consumes interleaved frames.
func (m *Meter) Process(samples []float64) {
	nch := m.numChannels

	for i := 0; i+nch <= len(samples); i += nch {
		for ch := range nch {
			sq := samples[i+ch] * samples[i+ch]
			m.winSumSq[ch] += sq
			m.totalSumSq[ch] += sq
		}

		m.frames++

		m.winFill++
		if m.winFill >= m.windowFrames {
			m.endWindow()
		}
	}
}

// endWindow evaluates one level window and resets the accumulators.
func (m *Meter) endWindow() {
	if m.numChannels >= 2 {
		loudest := rmsDb(m.winSumSq[0], m.winFill)
		quietest := loudest

		for ch := 1; ch < m.numChannels; ch++ {
			db := rmsDb(m.winSumSq[ch], m.winFill)
			loudest = max(loudest, db)
			quietest = min(quietest, db)
		}

		delta := loudest - quietest

		switch {
		case loudest < m.opts.GateDb:
			// Silence carries no evidence, and does not reset the run.
		case delta > m.opts.ThresholdDb:
			if delta > m.worstDelta {
				m.worstDelta = delta
			}

			m.run++
			if m.run > m.longestRun {
				m.longestRun = m.run
			}
		default:
			m.run = 0
		}
	}

	for ch := range m.winSumSq {
		m.winSumSq[ch] = 0
	}

	m.winFill = 0
}

// Result finalizes the measurement.
func (m *Meter) Result() *types.BalanceResult {
	if m.winFill >= m.windowFrames/2 {
		m.endWindow()
	}

	result := &types.BalanceResult{
		ChannelRmsDb: make([]float64, m.numChannels),
		WorstDeltaDb: m.worstDelta,
		Frames:       m.frames,
	}

	if m.frames == 0 {
		for ch := range result.ChannelRmsDb {
			result.ChannelRmsDb[ch] = silenceFloorDb
		}

		return result
	}

	for ch := range m.totalSumSq {
		result.ChannelRmsDb[ch] = rmsDb(m.totalSumSq[ch], int(m.frames))
	}

	if m.numChannels >= 2 {
		result.ImbalanceDb = result.ChannelRmsDb[0] - result.ChannelRmsDb[1]
	}

	windowSec := float64(m.windowFrames) / float64(m.sampleRate)
	result.SustainSec = float64(m.longestRun) * windowSec
	result.Sustained = result.SustainSec >= m.opts.MinSustainSec

	return result
}

func rmsDb(sumSq float64, count int) float64 {
	if count == 0 {
		return silenceFloorDb
	}

	db := 20 * math.Log10(math.Sqrt(sumSq/float64(count)))
	if math.IsInf(db, -1) || math.IsNaN(db) {
		return silenceFloorDb
	}

	return db
}
