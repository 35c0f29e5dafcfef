// Package spectrum runs periodic FFT windows over a mono mixdown to measure
// mains hum and the high-frequency noise floor. Hum is variance-gated: real
// hum is constant across the program while musical energy at 50/60 Hz varies
// with the performance. Noise floor is taken from the quietest windows and
// only reported when the HF band is spectrally flat (actual noise rather
// than dark program content).
package spectrum

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/januszry/aucommon/internal/types"
)

const silenceFloorDb = -120.0

// Options tunes spectral measurement.
type Options struct {
	FFTSize             int     // window size in frames (default 8192)
	WindowsMax          int     // cap on analyzed windows (default 100)
	IntervalSec         float64 // spacing between window starts (default 2)
	HumSpikeDb          float64 // minimum spike over surroundings (default 15)
	NoiseFlatnessCutoff float64 // minimum HF flatness to call it noise (default 0.4)
}

// DefaultOptions returns the standard spectral thresholds.
func DefaultOptions() Options {
	return Options{
		FFTSize:             8192,
		WindowsMax:          100,
		IntervalSec:         2.0,
		HumSpikeDb:          15.0,
		NoiseFlatnessCutoff: 0.4,
	}
}

// Meter collects FFT windows one block at a time.
type Meter struct {
	sampleRate  int
	numChannels int
	opts        Options

	fft     *fourier.FFT
	hann    []float64
	winBuf  []float64
	winFill int

	intervalFrames uint64
	nextWindowAt   uint64
	collecting     bool

	windowMagnitudes [][]float64
	windowRMS        []float64

	frames uint64
}

// New returns a meter for the given stream shape. Zero-valued options fall
// back to defaults.
func New(sampleRate, numChannels int, opts Options) *Meter {
	def := DefaultOptions()

	if opts.FFTSize == 0 {
		opts.FFTSize = def.FFTSize
	}

	if opts.WindowsMax == 0 {
		opts.WindowsMax = def.WindowsMax
	}

	if opts.IntervalSec == 0 {
		opts.IntervalSec = def.IntervalSec
	}

	if opts.HumSpikeDb == 0 {
		opts.HumSpikeDb = def.HumSpikeDb
	}

	if opts.NoiseFlatnessCutoff == 0 {
		opts.NoiseFlatnessCutoff = def.NoiseFlatnessCutoff
	}

	return &Meter{
		sampleRate:     sampleRate,
		numChannels:    numChannels,
		opts:           opts,
		fft:            fourier.NewFFT(opts.FFTSize),
		hann:           hannWindow(opts.FFTSize),
		winBuf:         make([]float64, 0, opts.FFTSize),
		intervalFrames: max(uint64(float64(sampleRate)*opts.IntervalSec), uint64(opts.FFTSize)),
		collecting:     true,
	}
}

// Process consumes interleaved frames, mixing down to mono.
func (m *Meter) Process(samples []float64) {
	nch := m.numChannels

	for i := 0; i+nch <= len(samples); i += nch {
		if m.collecting {
			var mono float64
			for ch := range nch {
				mono += samples[i+ch]
			}

			m.winBuf = append(m.winBuf, mono/float64(nch))

			if len(m.winBuf) == m.opts.FFTSize {
				m.endWindow()
			}
		}

		m.frames++

		if !m.collecting && m.frames >= m.nextWindowAt &&
			len(m.windowMagnitudes) < m.opts.WindowsMax {
			m.collecting = true
		}
	}
}

func (m *Meter) endWindow() {
	fftIn := make([]float64, m.opts.FFTSize)

	var rmsSum float64

	for i, s := range m.winBuf {
		fftIn[i] = s * m.hann[i]
		rmsSum += s * s
	}

	coeffs := m.fft.Coefficients(nil, fftIn)

	mags := make([]float64, len(coeffs))
	for i, c := range coeffs {
		mags[i] = math.Sqrt(real(c)*real(c) + imag(c)*imag(c))
	}

	m.windowMagnitudes = append(m.windowMagnitudes, mags)
	m.windowRMS = append(m.windowRMS, math.Sqrt(rmsSum/float64(m.opts.FFTSize)))

	m.winBuf = m.winBuf[:0]
	m.collecting = false
	m.nextWindowAt = m.frames + m.intervalFrames - uint64(m.opts.FFTSize)
}

// Result finalizes the measurement.
func (m *Meter) Result() *types.SpectrumResult {
	result := &types.SpectrumResult{
		NoiseFloorDb: silenceFloorDb,
		Windows:      len(m.windowMagnitudes),
		Frames:       m.frames,
	}

	if len(m.windowMagnitudes) == 0 {
		return result
	}

	binHz := float64(m.sampleRate) / float64(m.opts.FFTSize)

	m.detectHum(result, binHz)
	m.detectNoiseFloor(result, binHz)

	return result
}

func (m *Meter) detectHum(result *types.SpectrumResult, binHz float64) {
	// Hum = high spike + low variance (coefficient of variation < 0.3).
	const maxVarianceForHum = 0.3

	hum50, variance50 := m.humSpike(50, binHz)
	hum60, variance60 := m.humSpike(60, binHz)

	if hum50 > m.opts.HumSpikeDb && variance50 < maxVarianceForHum {
		result.Has50HzHum = true
		result.HumLevelDb = hum50
	}

	if hum60 > m.opts.HumSpikeDb && variance60 < maxVarianceForHum {
		result.Has60HzHum = true
		if hum60 > result.HumLevelDb {
			result.HumLevelDb = hum60
		}
	}
}

// humSpike returns the mean spike level at the fundamental and its harmonics,
// and the coefficient of variation of the spike across windows.
func (m *Meter) humSpike(fundamental, binHz float64) (spike, coeffVar float64) {
	harmonics := []float64{1, 2, 3, 4, 5, 6}

	windowSpikes := make([]float64, len(m.windowMagnitudes))

	for wi, mag := range m.windowMagnitudes {
		magDb := toDbSpectrum(mag)

		var maxSpike float64

		for _, h := range harmonics {
			bin := int(fundamental * h / binHz)
			if bin <= 5 || bin >= len(magDb)-5 {
				continue
			}

			var surroundSum float64

			surroundCount := 0

			for i := bin - 5; i <= bin+5; i++ {
				if i < bin-1 || i > bin+1 {
					surroundSum += magDb[i]
					surroundCount++
				}
			}

			if surroundCount > 0 {
				if s := magDb[bin] - surroundSum/float64(surroundCount); s > maxSpike {
					maxSpike = s
				}
			}
		}

		windowSpikes[wi] = maxSpike
	}

	var sum float64
	for _, s := range windowSpikes {
		sum += s
	}

	mean := sum / float64(len(windowSpikes))

	var varianceSum float64

	for _, s := range windowSpikes {
		d := s - mean
		varianceSum += d * d
	}

	stdDev := math.Sqrt(varianceSum / float64(len(windowSpikes)))

	// Low coefficient of variation = consistent level = hum.
	cv := 1.0
	if mean > 0 {
		cv = stdDev / mean
	}

	return mean, cv
}

// detectNoiseFloor measures the 14-18 kHz level relative to 1-10 kHz in the
// quietest 20% of windows.
func (m *Meter) detectNoiseFloor(result *types.SpectrumResult, binHz float64) {
	nyquist := float64(m.sampleRate) / 2

	binCount := len(m.windowMagnitudes[0])
	refStart := int(1000 / binHz)
	refEnd := int(10000 / binHz)
	hfStart := int(14000 / binHz)
	hfEnd := int(min(18000, nyquist-500) / binHz)

	if hfStart >= binCount || hfEnd <= hfStart || refEnd <= refStart {
		return
	}

	quietCount := max(len(m.windowRMS)/5, 1)
	quietIndices := quietestWindows(m.windowRMS, quietCount)

	var hfSum, refSum, flatnessSum float64

	for _, wi := range quietIndices {
		mag := m.windowMagnitudes[wi]

		var bandSum float64
		for i := hfStart; i < hfEnd && i < len(mag); i++ {
			bandSum += mag[i]
		}

		hfSum += bandSum / float64(hfEnd-hfStart)

		var refBandSum float64
		for i := refStart; i < refEnd && i < len(mag); i++ {
			refBandSum += mag[i]
		}

		refSum += refBandSum / float64(refEnd-refStart)

		flatnessSum += spectralFlatness(mag[hfStart:min(hfEnd, len(mag))])
	}

	quietWindowCount := float64(len(quietIndices))
	avgHF := hfSum / quietWindowCount
	avgRef := refSum / quietWindowCount
	avgFlatness := flatnessSum / quietWindowCount

	hfDb := silenceFloorDb
	if avgHF > 0 && avgRef > 0 {
		hfDb = 20*math.Log10(avgHF) - 20*math.Log10(avgRef)
	}

	result.NoiseFloorDb = hfDb

	if avgFlatness < m.opts.NoiseFlatnessCutoff {
		// Not flat enough to be noise; likely just a dark recording.
		// Cap the reported level to avoid a false positive.
		result.NoiseFloorDb = min(hfDb, -40)
	}
}

// quietestWindows returns indices of the n quietest windows by RMS.
func quietestWindows(windowRMS []float64, n int) []int {
	indexed := make([]int, len(windowRMS))
	for i := range indexed {
		indexed[i] = i
	}

	if n >= len(windowRMS) {
		return indexed
	}

	// Partial selection sort: only the first n positions matter.
	for i := range n {
		minIdx := i
		for j := i + 1; j < len(indexed); j++ {
			if windowRMS[indexed[j]] < windowRMS[indexed[minIdx]] {
				minIdx = j
			}
		}

		indexed[i], indexed[minIdx] = indexed[minIdx], indexed[i]
	}

	return indexed[:n]
}

// spectralFlatness computes the Wiener entropy: geometric mean / arithmetic
// mean. 1.0 for white noise (flat spectrum), lower for tonal content.
func spectralFlatness(magnitudes []float64) float64 {
	var (
		arithmeticSum float64
		logSum        float64
		count         int
	)

	for _, mag := range magnitudes {
		if mag > 0 {
			arithmeticSum += mag
			logSum += math.Log(mag)
			count++
		}
	}

	if count == 0 || arithmeticSum == 0 {
		return 0
	}

	return math.Exp(logSum/float64(count)) / (arithmeticSum / float64(count))
}

func hannWindow(size int) []float64 {
	window := make([]float64, size)
	for i := range window {
		window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(size-1)))
	}

	return window
}

func toDbSpectrum(magnitudes []float64) []float64 {
	out := make([]float64, len(magnitudes))
	for i, mag := range magnitudes {
		if mag > 0 {
			out[i] = 20 * math.Log10(mag)
		} else {
			out[i] = silenceFloorDb
		}
	}

	return out
}
