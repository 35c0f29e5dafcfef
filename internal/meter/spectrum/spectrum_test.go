package spectrum

import (
	"math"
	"math/rand"
	"testing"
)

const testRate = 44100

func tone(freq, seconds, amp float64) []float64 {
	out := make([]float64, int(seconds*testRate))
	for i := range out {
		out[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/testRate)
	}

	return out
}

func mix(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range out {
		out[i] = a[i] + b[i]
	}

	return out
}

func TestMainsHumDetected(t *testing.T) {
	// Program tone plus a constant 50 Hz component: the spike is steady
	// across windows, which is what separates hum from bass content.
	m := New(testRate, 1, Options{})
	m.Process(mix(tone(440, 12, 0.3), tone(50, 12, 0.2)))

	result := m.Result()

	if !result.Has50HzHum {
		t.Fatalf("50 Hz hum not detected (level %.1f dB, %d windows)", result.HumLevelDb, result.Windows)
	}

	if result.HumLevelDb < 15 {
		t.Errorf("hum level = %.1f dB, want above the spike threshold", result.HumLevelDb)
	}
}

func TestCleanToneNoHum(t *testing.T) {
	m := New(testRate, 1, Options{})
	m.Process(tone(440, 12, 0.5))

	result := m.Result()

	if result.Has50HzHum || result.Has60HzHum {
		t.Errorf("clean tone flagged for hum (%.1f dB)", result.HumLevelDb)
	}

	// No broadband content: the HF band sits far below the reference band.
	if result.NoiseFloorDb > -40 {
		t.Errorf("noise floor = %.1f dB for a pure tone, want low", result.NoiseFloorDb)
	}
}

func TestWhiteNoiseFloor(t *testing.T) {
	// White noise is spectrally flat: the 14-18 kHz band sits at the same
	// level as the 1-10 kHz reference.
	rng := rand.New(rand.NewSource(1)) //nolint:gosec // deterministic test signal

	samples := make([]float64, 12*testRate)
	for i := range samples {
		samples[i] = 0.1 * (2*rng.Float64() - 1)
	}

	m := New(testRate, 1, Options{})
	m.Process(samples)

	result := m.Result()

	if result.NoiseFloorDb < -10 {
		t.Errorf("noise floor = %.1f dB for white noise, want ~0", result.NoiseFloorDb)
	}
}

func TestWindowPacing(t *testing.T) {
	// One FFT window per 2s interval.
	m := New(testRate, 1, Options{})
	m.Process(tone(440, 10, 0.3))

	result := m.Result()

	if result.Windows < 4 || result.Windows > 6 {
		t.Errorf("windows = %d over 10s at 2s spacing, want ~5", result.Windows)
	}

	if result.Frames != uint64(10*testRate) {
		t.Errorf("frames = %d, want %d", result.Frames, 10*testRate)
	}
}
