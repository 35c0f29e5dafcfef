// Package truepeak estimates inter-sample peaks by 4x polyphase oversampling
// per ITU-R BS.1770. Decoded sample grids hide reconstruction peaks; a DAC's
// interpolation filter can overshoot 0 dBFS even when every sample is in
// range, so the meter interpolates between samples before taking the max.
package truepeak

import (
	"math"

	"github.com/januszry/aucommon/internal/types"
)

const (
	oversample   = 4  // 4x oversampling per ITU-R BS.1770
	tapsPerPhase = 12 // filter taps per phase
	totalTaps    = oversample * tapsPerPhase

	silenceFloorDb = -120.0
)

// Polyphase filter coefficients for 4x oversampling
// Generated from windowed sinc with Kaiser window (beta=5)
var polyphaseCoeffs [oversample][tapsPerPhase]float64

func init() {
	// Lowpass at 0.25 normalized frequency (Nyquist of original signal)
	beta := 5.0 // Kaiser window parameter

	for phase := range oversample {
		for tap := range tapsPerPhase {
			// Index in the full filter
			n := tap*oversample + phase
			center := float64(totalTaps-1) / 2.0

			x := float64(n) - center

			var sinc float64
			if math.Abs(x) < 1e-10 {
				sinc = 1.0
			} else {
				sinc = math.Sin(math.Pi*x/float64(oversample)) / (math.Pi * x / float64(oversample))
			}

			alpha := (float64(n) - center) / center
			if math.Abs(alpha) <= 1.0 {
				window := bessel0(beta*math.Sqrt(1-alpha*alpha)) / bessel0(beta)
				polyphaseCoeffs[phase][tap] = sinc * window * float64(oversample)
			}
		}
	}

	// Normalize each phase
	for phase := range oversample {
		var sum float64
		for tap := range tapsPerPhase {
			sum += polyphaseCoeffs[phase][tap]
		}

		for tap := range tapsPerPhase {
			polyphaseCoeffs[phase][tap] /= sum
		}
	}
}

// Bessel function I0 (modified Bessel function of the first kind, order 0)
func bessel0(x float64) float64 {
	sum := 1.0
	term := 1.0

	for k := 1; k <= 25; k++ {
		term *= (x * x) / (4.0 * float64(k) * float64(k))
		sum += term

		if term < 1e-12 {
			break
		}
	}

	return sum
}

// Meter tracks sample and reconstructed peaks one block at a time.
type Meter struct {
	numChannels int
	history     [][]float64 // per-channel filter history

	samplePeak  float64
	truePeak    float64
	ispCount    uint64
	ispMax      float64
	totalFrames uint64
}

// New returns a meter for the given channel count.
func New(numChannels int) *Meter {
	history := make([][]float64, numChannels)
	for ch := range history {
		history[ch] = make([]float64, tapsPerPhase)
	}

	return &Meter{
		numChannels: numChannels,
		history:     history,
	}
}

// Process consumes interleaved frames.
func (m *Meter) Process(samples []float64) {
	nch := m.numChannels

	for i := 0; i+nch <= len(samples); i += nch {
		for ch := range nch {
			sample := samples[i+ch]

			absSample := math.Abs(sample)
			if absSample > m.samplePeak {
				m.samplePeak = absSample
			}

			// Shift history and add new sample
			copy(m.history[ch][0:], m.history[ch][1:])
			m.history[ch][tapsPerPhase-1] = sample

			// Interpolated samples at each phase
			for phase := range oversample {
				var interp float64
				for tap := range tapsPerPhase {
					interp += m.history[ch][tap] * polyphaseCoeffs[phase][tap]
				}

				absInterp := math.Abs(interp)
				if absInterp > m.truePeak {
					m.truePeak = absInterp
				}

				// Count ISPs (peaks exceeding 0 dBFS)
				if absInterp > 1.0 {
					m.ispCount++

					overshoot := 20 * math.Log10(absInterp)
					if overshoot > m.ispMax {
						m.ispMax = overshoot
					}
				}
			}
		}

		m.totalFrames++
	}
}

// Result finalizes the measurement.
func (m *Meter) Result() *types.TruePeakResult {
	samplePeakDb := silenceFloorDb
	if m.samplePeak > 0 {
		samplePeakDb = 20 * math.Log10(m.samplePeak)
	}

	truePeakDb := silenceFloorDb
	if m.truePeak > 0 {
		truePeakDb = 20 * math.Log10(m.truePeak)
	}

	return &types.TruePeakResult{
		TruePeakDb:   truePeakDb,
		SamplePeakDb: samplePeakDb,
		ISPCount:     m.ispCount,
		ISPMaxDb:     m.ispMax,
		Frames:       m.totalFrames,
	}
}
