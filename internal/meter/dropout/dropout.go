// Package dropout finds digital discontinuities: sudden sample jumps (bad
// edits, buffer underruns) and runs of exact zeros (USB glitches, DAT
// dropouts). Jumps that hit every channel in the same frame are treated as
// program transients, not dropouts.
package dropout

import (
	"math"

	"github.com/januszry/aucommon/internal/types"
)

const silenceFloorDb = -120.0

type deltaCandidate struct {
	channel int
	delta   float64
}

// Options tunes discontinuity detection.
type Options struct {
	DeltaThreshold float64 // minimum sample-to-sample jump (default 0.5)
	ZeroRunMinMs   float64 // minimum zero run to report (default 1)
	ZeroRunQuietDb float64 // skip zero runs when surroundings were this quiet (default -60)
	MaxEvents      int     // stop recording events past this count (default 1000)
}

// DefaultOptions returns balanced detection thresholds.
func DefaultOptions() Options {
	return Options{
		DeltaThreshold: 0.5,
		ZeroRunMinMs:   1.0,
		ZeroRunQuietDb: -60.0,
		MaxEvents:      1000,
	}
}

// Meter scans for discontinuities one block at a time.
type Meter struct {
	sampleRate  int
	numChannels int
	opts        Options

	minZeroFrames int64

	prevSample  []float64
	firstFrame  bool
	zeroStart   []int64
	zeroRms     []float64
	sqSum       []float64 // sliding energy for zero-run context
	sqBuf       [][]float64
	sqPos       []int
	sqFilled    []int
	rmsWindow   int
	totalFrames uint64

	// Per-frame delta candidates; committed only when a minority of
	// channels jumps.
	frameDeltas []deltaCandidate

	result types.DropoutResult
}

// New returns a meter for the given stream shape. Zero-valued options fall
// back to defaults.
func New(sampleRate, numChannels int, opts Options) *Meter {
	def := DefaultOptions()

	if opts.DeltaThreshold == 0 {
		opts.DeltaThreshold = def.DeltaThreshold
	}

	if opts.ZeroRunMinMs == 0 {
		opts.ZeroRunMinMs = def.ZeroRunMinMs
	}

	if opts.ZeroRunQuietDb == 0 {
		opts.ZeroRunQuietDb = def.ZeroRunQuietDb
	}

	if opts.MaxEvents == 0 {
		opts.MaxEvents = def.MaxEvents
	}

	rmsWindow := max(sampleRate*50/1000, 1)

	m := &Meter{
		sampleRate:    sampleRate,
		numChannels:   numChannels,
		opts:          opts,
		minZeroFrames: max(int64(float64(sampleRate)*opts.ZeroRunMinMs/1000), 1),
		prevSample:    make([]float64, numChannels),
		firstFrame:    true,
		zeroStart:     make([]int64, numChannels),
		zeroRms:       make([]float64, numChannels),
		sqSum:         make([]float64, numChannels),
		sqPos:         make([]int, numChannels),
		sqFilled:      make([]int, numChannels),
		rmsWindow:     rmsWindow,
		result:        types.DropoutResult{WorstDb: silenceFloorDb},
	}

	m.sqBuf = make([][]float64, numChannels)
	for ch := range m.sqBuf {
		m.sqBuf[ch] = make([]float64, rmsWindow)
		m.zeroStart[ch] = -1
	}

	return m
}

// Process consumes interleaved frames.
func (m *Meter) Process(samples []float64) {
	nch := m.numChannels

	for i := 0; i+nch <= len(samples); i += nch {
		m.frameDeltas = m.frameDeltas[:0]

		for ch := range nch {
			m.processSample(ch, samples[i+ch])
		}

		m.commitDeltas()

		m.totalFrames++
		m.firstFrame = false
	}
}

func (m *Meter) processSample(ch int, sample float64) {
	if !m.firstFrame {
		// Delta candidate: jumps toward or away from zero look like
		// dropout edges; a symmetric swing is just a loud waveform.
		delta := math.Abs(sample - m.prevSample[ch])
		if delta > m.opts.DeltaThreshold && sameSign(m.prevSample[ch], sample) {
			m.frameDeltas = append(m.frameDeltas, deltaCandidate{channel: ch, delta: delta})
		}

		// Zero run detection.
		if sample == 0 {
			if m.zeroStart[ch] < 0 {
				m.zeroStart[ch] = int64(m.totalFrames)
				m.zeroRms[ch] = rmsDb(m.sqSum[ch], m.sqFilled[ch])
			}
		} else if m.zeroStart[ch] >= 0 {
			m.endZeroRun(ch)
		}
	}

	// Sliding energy, the context level for zero runs.
	old := m.sqBuf[ch][m.sqPos[ch]]
	sq := sample * sample
	m.sqBuf[ch][m.sqPos[ch]] = sq
	m.sqSum[ch] = m.sqSum[ch] - old + sq

	m.sqPos[ch] = (m.sqPos[ch] + 1) % m.rmsWindow
	if m.sqFilled[ch] < m.rmsWindow {
		m.sqFilled[ch]++
	}

	m.prevSample[ch] = sample
}

func (m *Meter) endZeroRun(ch int) {
	runLength := int64(m.totalFrames) - m.zeroStart[ch]
	if runLength >= m.minZeroFrames && m.zeroRms[ch] >= m.opts.ZeroRunQuietDb {
		durationMs := float64(runLength) / float64(m.sampleRate) * 1000

		m.record(types.DropoutEvent{
			Frame:      uint64(m.zeroStart[ch]),
			TimeSec:    float64(m.zeroStart[ch]) / float64(m.sampleRate),
			Channel:    ch,
			Type:       types.DropoutZeroRun,
			Severity:   float64(runLength) / float64(m.sampleRate),
			DurationMs: durationMs,
		})
		m.result.ZeroRunCount++
	}

	m.zeroStart[ch] = -1
}

// commitDeltas drops candidates when every channel jumped together: that is
// a transient in the program, not a dropout.
func (m *Meter) commitDeltas() {
	if len(m.frameDeltas) == 0 || (len(m.frameDeltas) == m.numChannels && m.numChannels > 1) {
		return
	}

	for _, c := range m.frameDeltas {
		m.record(types.DropoutEvent{
			Frame:    m.totalFrames,
			TimeSec:  float64(m.totalFrames) / float64(m.sampleRate),
			Channel:  c.channel,
			Type:     types.DropoutDelta,
			Severity: min(c.delta, 1.0),
		})
		m.result.DeltaCount++
	}
}

func (m *Meter) record(ev types.DropoutEvent) {
	if db := 20 * math.Log10(ev.Severity); db > m.result.WorstDb {
		m.result.WorstDb = db
	}

	if len(m.result.Events) < m.opts.MaxEvents {
		m.result.Events = append(m.result.Events, ev)
	}
}

// Result finalizes the measurement, closing trailing zero runs.
func (m *Meter) Result() *types.DropoutResult {
	for ch := range m.zeroStart {
		if m.zeroStart[ch] >= 0 {
			m.endZeroRun(ch)
		}
	}

	m.result.Frames = m.totalFrames
	result := m.result

	return &result
}

func sameSign(prev, cur float64) bool {
	// A dropout edge either collapses toward zero or jumps from near-zero;
	// crossings through zero within one sample are treated as transients.
	return prev == 0 || cur == 0 || (prev > 0) == (cur > 0)
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
