// Package loudness implements a streaming K-weighted loudness meter after
// ITU-R BS.1770-4 / EBU R128: per-channel K-weighting filters, 400ms
// momentary and 3s short-term windows at 100ms hop, absolute and relative
// gating for the integrated value, plus a crest-factor DR score.
package loudness

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/januszry/aucommon/internal/types"
)

const silenceFloorDb = -120.0

// Biquad filter coefficients.
type biquad struct {
	b0, b1, b2 float64
	a1, a2     float64
}

// Biquad filter state.
type biquadState struct {
	z1, z2 float64
}

func (s *biquadState) process(b *biquad, in float64) float64 {
	out := b.b0*in + s.z1
	s.z1 = b.b1*in - b.a1*out + s.z2
	s.z2 = b.b2*in - b.a2*out

	return out
}

// K-weighting filter coefficients for the given sample rate
// Pre-filter (high shelf) + RLB weighting (high pass).
func kWeightingFilters(sampleRate int) (pre, rlb biquad) {
	// Coefficients from ITU-R BS.1770-4, computed from the analog
	// prototype transfer functions.
	fs := float64(sampleRate)

	// Pre-filter (high shelf), models the acoustic effects of the head
	f0 := 1681.974450955533
	G := 3.999843853973347
	Q := 0.7071752369554196

	K := math.Tan(math.Pi * f0 / fs)
	Vh := math.Pow(10, G/20)
	Vb := math.Pow(Vh, 0.4996667741545416)

	a0 := 1 + K/Q + K*K
	pre.b0 = (Vh + Vb*K/Q + K*K) / a0
	pre.b1 = 2 * (K*K - Vh) / a0
	pre.b2 = (Vh - Vb*K/Q + K*K) / a0
	pre.a1 = 2 * (K*K - 1) / a0
	pre.a2 = (1 - K/Q + K*K) / a0

	// RLB weighting (high pass)
	f0 = 38.13547087602444
	Q = 0.5003270373238773

	K = math.Tan(math.Pi * f0 / fs)

	a0 = 1 + K/Q + K*K
	rlb.b0 = 1 / a0
	rlb.b1 = -2 / a0
	rlb.b2 = 1 / a0
	rlb.a1 = 2 * (K*K - 1) / a0
	rlb.a2 = (1 - K/Q + K*K) / a0

	return pre, rlb
}

// Channel weights for surround.
func channelWeight(ch, numChannels int) float64 {
	if numChannels <= 2 {
		return 1.0
	}
	// For surround: L, R, C = 1.0; Ls, Rs = 1.41 (~+1.5dB)
	if ch >= 3 && ch <= 4 && numChannels > 4 {
		return 1.41
	}

	return 1.0
}

type drBlock struct {
	peak float64
	rms  float64
}

// Meter accumulates loudness state one block at a time.
type Meter struct {
	sampleRate  int
	numChannels int

	pre, rlb biquad
	preState []biquadState
	rlbState []biquadState

	momentarySize int
	shortTermSize int
	hopSize       int

	momentaryBuf    []float64
	shortTermBuf    []float64
	momentaryPos    int
	shortTermPos    int
	momentarySum    float64
	shortTermSum    float64
	momentaryFilled int
	shortTermFilled int

	momentaryPowers []float64
	shortTermPowers []float64
	momentaryMax    float64
	shortTermMax    float64

	drBlockSize  int
	drBlocks     []drBlock
	blockSum     float64
	blockPeak    float64
	blockSamples int

	sampleCount int
	totalFrames uint64
}

// New returns a meter for the given stream shape.
func New(sampleRate, numChannels int) *Meter {
	pre, rlb := kWeightingFilters(sampleRate)

	m := &Meter{
		sampleRate:    sampleRate,
		numChannels:   numChannels,
		pre:           pre,
		rlb:           rlb,
		preState:      make([]biquadState, numChannels),
		rlbState:      make([]biquadState, numChannels),
		momentarySize: sampleRate * 400 / 1000, // 400ms
		shortTermSize: sampleRate * 3,          // 3s
		hopSize:       sampleRate * 100 / 1000, // 100ms
		drBlockSize:   sampleRate * 3,          // 3s blocks for DR
		momentaryMax:  silenceFloorDb,
		shortTermMax:  silenceFloorDb,
	}

	m.momentaryBuf = make([]float64, m.momentarySize)
	m.shortTermBuf = make([]float64, m.shortTermSize)

	return m
}

// MinimumFrames is the smallest number of frames that yields a measurement:
// one full momentary window.
func (m *Meter) MinimumFrames() uint64 {
	return uint64(m.momentarySize)
}

// Process consumes interleaved frames.
func (m *Meter) Process(samples []float64) {
	nch := m.numChannels

	for i := 0; i+nch <= len(samples); i += nch {
		var (
			framePower float64
			framePeak  float64
		)

		for ch := range nch {
			sample := samples[i+ch]

			if abs := math.Abs(sample); abs > framePeak {
				framePeak = abs
			}

			filtered := m.preState[ch].process(&m.pre, sample)
			filtered = m.rlbState[ch].process(&m.rlb, filtered)

			framePower += channelWeight(ch, nch) * filtered * filtered
		}

		// DR block update
		m.blockSum += framePower / float64(nch)

		if framePeak > m.blockPeak {
			m.blockPeak = framePeak
		}

		m.blockSamples++

		if m.blockSamples >= m.drBlockSize {
			rms := math.Sqrt(m.blockSum / float64(m.blockSamples))
			m.drBlocks = append(m.drBlocks, drBlock{m.blockPeak, rms})
			m.blockSum = 0
			m.blockPeak = 0
			m.blockSamples = 0
		}

		// Momentary window (ring buffer)
		old := m.momentaryBuf[m.momentaryPos]
		m.momentaryBuf[m.momentaryPos] = framePower
		m.momentarySum = m.momentarySum - old + framePower

		m.momentaryPos = (m.momentaryPos + 1) % m.momentarySize
		if m.momentaryFilled < m.momentarySize {
			m.momentaryFilled++
		}

		// Short-term window (ring buffer)
		old = m.shortTermBuf[m.shortTermPos]
		m.shortTermBuf[m.shortTermPos] = framePower
		m.shortTermSum = m.shortTermSum - old + framePower

		m.shortTermPos = (m.shortTermPos + 1) % m.shortTermSize
		if m.shortTermFilled < m.shortTermSize {
			m.shortTermFilled++
		}

		m.sampleCount++
		m.totalFrames++

		// Every hop, capture windowed loudness
		if m.sampleCount%m.hopSize == 0 {
			if m.momentaryFilled == m.momentarySize {
				power := m.momentarySum / float64(m.momentarySize)
				m.momentaryPowers = append(m.momentaryPowers, power)

				if lufs := powerToLUFS(power); lufs > m.momentaryMax {
					m.momentaryMax = lufs
				}
			}

			if m.shortTermFilled == m.shortTermSize {
				power := m.shortTermSum / float64(m.shortTermSize)
				m.shortTermPowers = append(m.shortTermPowers, power)

				if lufs := powerToLUFS(power); lufs > m.shortTermMax {
					m.shortTermMax = lufs
				}
			}
		}
	}
}

// Result finalizes the measurement. The meter must not be fed afterwards.
func (m *Meter) Result() *types.LoudnessResult {
	// A stream shorter than a momentary window never hit the hop capture;
	// fall back to the partial window so short sessions still measure.
	if len(m.momentaryPowers) == 0 && m.momentaryFilled > 0 {
		power := m.momentarySum / float64(m.momentaryFilled)
		m.momentaryPowers = append(m.momentaryPowers, power)
		m.momentaryMax = powerToLUFS(power)
	}

	// Final partial DR block, if at least 1 second
	if m.blockSamples > m.sampleRate {
		rms := math.Sqrt(m.blockSum / float64(m.blockSamples))
		m.drBlocks = append(m.drBlocks, drBlock{m.blockPeak, rms})
	}

	drScore, drValue, peakDb, rmsDb := calculateDR(m.drBlocks)

	return &types.LoudnessResult{
		IntegratedLUFS: integratedLoudness(m.momentaryPowers),
		ShortTermMax:   m.shortTermMax,
		MomentaryMax:   m.momentaryMax,
		LoudnessRange:  loudnessRange(m.shortTermPowers),
		DRScore:        drScore,
		DRValue:        drValue,
		PeakDb:         peakDb,
		RmsDb:          rmsDb,
		Frames:         m.totalFrames,
	}
}

func powerToLUFS(power float64) float64 {
	return -0.691 + 10*math.Log10(power)
}

// integratedLoudness applies EBU R128 two-stage gating: an absolute -70 LUFS
// gate, then a relative gate 10 LU below the mean of what survived.
func integratedLoudness(powers []float64) float64 {
	if len(powers) == 0 {
		return silenceFloorDb
	}

	var (
		sum   float64
		count int
	)

	for _, p := range powers {
		if powerToLUFS(p) > -70 {
			sum += p
			count++
		}
	}

	if count == 0 {
		return silenceFloorDb
	}

	relativeThreshold := powerToLUFS(sum/float64(count)) - 10

	sum = 0
	count = 0

	for _, p := range powers {
		if powerToLUFS(p) > relativeThreshold {
			sum += p
			count++
		}
	}

	if count == 0 {
		return silenceFloorDb
	}

	return powerToLUFS(sum / float64(count))
}

// loudnessRange is the 10th-95th percentile spread of gated short-term
// loudness (relative gate at -20 LU).
func loudnessRange(powers []float64) float64 {
	if len(powers) < 2 {
		return 0
	}

	var lufsValues []float64

	for _, p := range powers {
		if lufs := powerToLUFS(p); lufs > -70 {
			lufsValues = append(lufsValues, lufs)
		}
	}

	if len(lufsValues) < 2 {
		return 0
	}

	relativeThreshold := stat.Mean(lufsValues, nil) - 20

	var gated []float64

	for _, l := range lufsValues {
		if l > relativeThreshold {
			gated = append(gated, l)
		}
	}

	if len(gated) < 2 {
		return 0
	}

	sort.Float64s(gated)

	low := stat.Quantile(0.10, stat.Empirical, gated, nil)
	high := stat.Quantile(0.95, stat.Empirical, gated, nil)

	return high - low
}

func calculateDR(blocks []drBlock) (score int, value, peakDb, rmsDb float64) {
	if len(blocks) == 0 {
		return 0, 0, silenceFloorDb, silenceFloorDb
	}

	peaksSorted := make([]float64, len(blocks))
	for i, b := range blocks {
		peaksSorted[i] = b.peak
	}

	sort.Sort(sort.Reverse(sort.Float64Slice(peaksSorted)))

	// Use second-highest peak to avoid outliers
	peakIdx := 1
	if len(peaksSorted) == 1 {
		peakIdx = 0
	}

	peak := peaksSorted[peakIdx]

	rmsSorted := make([]float64, len(blocks))
	for i, b := range blocks {
		rmsSorted[i] = b.rms
	}

	sort.Sort(sort.Reverse(sort.Float64Slice(rmsSorted)))

	// Average top 20% of RMS values
	top20Count := max(len(rmsSorted)/5, 1)

	var rmsSum float64
	for i := range top20Count {
		rmsSum += rmsSorted[i]
	}

	rms := rmsSum / float64(top20Count)

	if rms == 0 || peak == 0 {
		return 0, 0, silenceFloorDb, silenceFloorDb
	}

	dr := 20 * math.Log10(peak/rms)

	score = max(int(math.Round(dr)), 1)
	if score > 20 {
		score = 20
	}

	return score, dr, 20 * math.Log10(peak), 20 * math.Log10(rms)
}
