// Package phase measures cross-channel correlation. The whole-stream Pearson
// coefficient characterizes the stereo field; sustained-evidence windowing
// detects polarity inversion without tripping on intentionally anti-correlated
// passages (wideners, out-of-phase effects): one negative window is noise,
// three seconds of them is a flipped channel.
package phase

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/januszry/aucommon/internal/types"
)

const silenceFloorDb = -120.0

// Options tunes inversion evidence collection.
type Options struct {
	InversionCutoff float64 // windowed correlation below this is evidence (default -0.5)
	MinSustainSec   float64 // evidence must persist this long (default 3)
	WindowMs        int     // correlation window (default 400)
	GateDb          float64 // windows with all channels below this carry no evidence (default -70)
}

// DefaultOptions returns the standard evidence thresholds.
func DefaultOptions() Options {
	return Options{
		InversionCutoff: -0.5,
		MinSustainSec:   3.0,
		WindowMs:        400,
		GateDb:          -70.0,
	}
}

type pairState struct {
	a, b int

	// Whole-stream Pearson accumulators.
	sumAB float64

	windowMin  float64
	run        int // current consecutive evidence windows
	longestRun int
}

// Meter accumulates phase state one block at a time.
type Meter struct {
	sampleRate  int
	numChannels int
	opts        Options

	windowFrames int
	winBuf       [][]float64 // per-channel window samples
	winFill      int

	// Whole-stream per-channel accumulators.
	sum   []float64
	sumSq []float64

	pairs []pairState

	// Mono-compatibility accumulators for the first pair.
	sumDiffSq   float64
	sumMonoSq   float64
	sumStereoSq float64

	frames uint64
}

// New returns a meter for the given stream shape. Zero-valued options fall
// back to defaults.
func New(sampleRate, numChannels int, opts Options) *Meter {
	def := DefaultOptions()

	if opts.InversionCutoff == 0 {
		opts.InversionCutoff = def.InversionCutoff
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

	m := &Meter{
		sampleRate:   sampleRate,
		numChannels:  numChannels,
		opts:         opts,
		windowFrames: max(sampleRate*opts.WindowMs/1000, 1),
		sum:          make([]float64, numChannels),
		sumSq:        make([]float64, numChannels),
	}

	m.winBuf = make([][]float64, numChannels)
	for ch := range m.winBuf {
		m.winBuf[ch] = make([]float64, 0, m.windowFrames)
	}

	for a := 0; a < numChannels; a++ {
		for b := a + 1; b < numChannels; b++ {
			m.pairs = append(m.pairs, pairState{a: a, b: b, windowMin: 1})
		}
	}

	return m
}

// Process consumes interleaved frames.
func (m *Meter) Process(samples []float64) {
	nch := m.numChannels

	for i := 0; i+nch <= len(samples); i += nch {
		for ch := range nch {
			sample := samples[i+ch]
			m.sum[ch] += sample
			m.sumSq[ch] += sample * sample
			m.winBuf[ch] = append(m.winBuf[ch], sample)
		}

		for p := range m.pairs {
			pair := &m.pairs[p]
			pair.sumAB += samples[i+pair.a] * samples[i+pair.b]
		}

		if nch >= 2 {
			left := samples[i]
			right := samples[i+1]

			diff := left - right
			m.sumDiffSq += diff * diff

			mono := (left + right) / 2
			m.sumMonoSq += mono * mono
			m.sumStereoSq += (left*left + right*right) / 2
		}

		m.frames++

		m.winFill++
		if m.winFill >= m.windowFrames {
			m.endWindow()
		}
	}
}

// endWindow evaluates one correlation window and resets the buffers.
func (m *Meter) endWindow() {
	gate := math.Pow(10, m.opts.GateDb/20)

	audible := false

	for ch := range m.winBuf {
		var sumSq float64
		for _, s := range m.winBuf[ch] {
			sumSq += s * s
		}

		if math.Sqrt(sumSq/float64(len(m.winBuf[ch]))) >= gate {
			audible = true

			break
		}
	}

	// A silent window is no evidence either way: it neither extends nor
	// resets a run, so inversion split by a quiet passage still counts.
	if audible {
		for p := range m.pairs {
			pair := &m.pairs[p]

			corr := stat.Correlation(m.winBuf[pair.a], m.winBuf[pair.b], nil)
			if math.IsNaN(corr) {
				continue
			}

			if corr < pair.windowMin {
				pair.windowMin = corr
			}

			if corr < m.opts.InversionCutoff {
				pair.run++
				if pair.run > pair.longestRun {
					pair.longestRun = pair.run
				}
			} else {
				pair.run = 0
			}
		}
	}

	for ch := range m.winBuf {
		m.winBuf[ch] = m.winBuf[ch][:0]
	}

	m.winFill = 0
}

// Result finalizes the measurement.
func (m *Meter) Result() *types.PhaseResult {
	// Evaluate a final partial window so short sessions still gather evidence.
	if m.winFill >= m.windowFrames/2 {
		m.endWindow()
	}

	result := &types.PhaseResult{Frames: m.frames}

	windowSec := float64(m.windowFrames) / float64(m.sampleRate)
	n := float64(m.frames)

	for _, pair := range m.pairs {
		var correlation float64

		if n > 0 {
			numerator := n*pair.sumAB - m.sum[pair.a]*m.sum[pair.b]
			denominator := math.Sqrt((n*m.sumSq[pair.a] - m.sum[pair.a]*m.sum[pair.a]) *
				(n*m.sumSq[pair.b] - m.sum[pair.b]*m.sum[pair.b]))

			if denominator > 0 {
				correlation = numerator / denominator
			}
		}

		sustainSec := float64(pair.longestRun) * windowSec

		result.Pairs = append(result.Pairs, types.PairCorrelation{
			ChannelA:    pair.a,
			ChannelB:    pair.b,
			Correlation: correlation,
			WindowMin:   pair.windowMin,
			Inverted:    sustainSec >= m.opts.MinSustainSec,
			SustainSec:  sustainSec,
		})
	}

	if m.numChannels >= 2 && m.frames > 0 {
		diffRms := math.Sqrt(m.sumDiffSq / n)
		monoRms := math.Sqrt(m.sumMonoSq / n)
		stereoRms := math.Sqrt(m.sumStereoSq / n)

		result.DifferenceDb = toDb(diffRms)
		result.MonoSumDb = toDb(monoRms)
		result.StereoRmsDb = toDb(stereoRms)
		result.CancellationDb = result.StereoRmsDb - result.MonoSumDb
	}

	return result
}

func toDb(v float64) float64 {
	db := 20 * math.Log10(v)
	if math.IsInf(db, -1) || math.IsNaN(db) {
		return silenceFloorDb
	}

	return db
}
