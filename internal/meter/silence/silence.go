// Package silence finds quiet stretches: lead-in and tail padding, gaps, and
// the final-window level used to judge abrupt endings.
package silence

import (
	"math"

	"github.com/januszry/aucommon/internal/types"
)

const silenceFloorDb = -120.0

type Options struct {
	ThresholdDb   float64 // below this = silence (default -60)
	MinDurationMs int     // minimum silence to report (default 1000)
	WindowMs      int     // RMS window size (default 50)
}

func DefaultOptions() Options {
	return Options{
		ThresholdDb:   -60.0,
		MinDurationMs: 1000,
		WindowMs:      50,
	}
}

// Meter accumulates silence state one block at a time.
type Meter struct {
	sampleRate  int
	numChannels int
	opts        Options

	windowFrames     int
	minSilenceFrames uint64
	threshold        float64

	segments     []types.SilenceSegment
	currentFrame uint64
	windowSumSq  float64
	windowCount  int
	lastWindowDb float64

	inSilence    bool
	silenceStart uint64
	silenceSumSq float64
	silenceCount uint64
}

// New returns a meter for the given stream shape. Zero-valued options fall
// back to defaults.
func New(sampleRate, numChannels int, opts Options) *Meter {
	def := DefaultOptions()

	if opts.ThresholdDb == 0 {
		opts.ThresholdDb = def.ThresholdDb
	}

	if opts.MinDurationMs == 0 {
		opts.MinDurationMs = def.MinDurationMs
	}

	if opts.WindowMs == 0 {
		opts.WindowMs = def.WindowMs
	}

	return &Meter{
		sampleRate:       sampleRate,
		numChannels:      numChannels,
		opts:             opts,
		windowFrames:     max(sampleRate*opts.WindowMs/1000, 1),
		minSilenceFrames: uint64(sampleRate) * uint64(opts.MinDurationMs) / 1000,
		threshold:        math.Pow(10, opts.ThresholdDb/20),
		lastWindowDb:     silenceFloorDb,
	}
}

// Process consumes interleaved frames.
func (m *Meter) Process(samples []float64) {
	nch := m.numChannels

	for i := 0; i+nch <= len(samples); i += nch {
		var frameSumSq float64

		for ch := range nch {
			frameSumSq += samples[i+ch] * samples[i+ch]
		}

		m.windowSumSq += frameSumSq / float64(nch)
		m.windowCount++
		m.currentFrame++

		if m.windowCount >= m.windowFrames {
			m.endWindow()
		}
	}
}

func (m *Meter) endWindow() {
	if m.windowCount == 0 {
		return
	}

	rms := math.Sqrt(m.windowSumSq / float64(m.windowCount))
	m.lastWindowDb = toDb(rms)
	isSilent := rms < m.threshold

	switch {
	case isSilent && !m.inSilence:
		// Entering silence
		m.inSilence = true
		m.silenceStart = m.currentFrame - uint64(m.windowCount)
		m.silenceSumSq = m.windowSumSq
		m.silenceCount = uint64(m.windowCount)
	case isSilent && m.inSilence:
		// Continuing silence
		m.silenceSumSq += m.windowSumSq
		m.silenceCount += uint64(m.windowCount)
	case !isSilent && m.inSilence:
		// Exiting silence
		m.closeSegment(m.currentFrame - uint64(m.windowCount))
		m.inSilence = false
	default:
	}

	m.windowSumSq = 0
	m.windowCount = 0
}

func (m *Meter) closeSegment(end uint64) {
	silenceFrames := end - m.silenceStart
	if silenceFrames < m.minSilenceFrames {
		return
	}

	silenceDb := toDb(math.Sqrt(m.silenceSumSq / float64(m.silenceCount)))

	m.segments = append(m.segments, types.SilenceSegment{
		StartFrame:  m.silenceStart,
		EndFrame:    end,
		StartSec:    float64(m.silenceStart) / float64(m.sampleRate),
		EndSec:      float64(end) / float64(m.sampleRate),
		DurationSec: float64(silenceFrames) / float64(m.sampleRate),
		RmsDb:       silenceDb,
	})
}

// Result finalizes the measurement.
func (m *Meter) Result() *types.SilenceResult {
	if m.windowCount > 0 {
		m.endWindow()
	}

	if m.inSilence {
		m.closeSegment(m.currentFrame)
		m.inSilence = false
	}

	var totalSilence float64
	for _, seg := range m.segments {
		totalSilence += seg.DurationSec
	}

	var leadingSec, trailingSec float64

	if len(m.segments) > 0 {
		if m.segments[0].StartFrame == 0 {
			leadingSec = m.segments[0].DurationSec
		}

		last := m.segments[len(m.segments)-1]
		if last.EndFrame == m.currentFrame {
			trailingSec = last.DurationSec
		}
	}

	return &types.SilenceResult{
		Segments:      m.segments,
		TotalSilence:  totalSilence,
		LeadingSec:    leadingSec,
		TrailingSec:   trailingSec,
		FinalRmsDb:    m.lastWindowDb,
		TotalDuration: float64(m.currentFrame) / float64(m.sampleRate),
		Frames:        m.currentFrame,
	}
}

func toDb(v float64) float64 {
	db := 20 * math.Log10(v)
	if math.IsInf(db, -1) || math.IsNaN(db) {
		return silenceFloorDb
	}

	return db
}
