package loudness

import (
	"math"
	"testing"
)

const testRate = 44100

func sine(freq, seconds, amp float64) []float64 {
	out := make([]float64, int(seconds*testRate))
	for i := range out {
		out[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/testRate)
	}

	return out
}

func TestSineLoudness(t *testing.T) {
	// The -0.691 offset cancels the pre-filter's gain near 1 kHz, so a
	// full-scale 997 Hz sine (mean-square power 0.5) measures close to
	// -3.01 LUFS.
	m := New(testRate, 1)
	m.Process(sine(997, 5, 1.0))

	result := m.Result()

	if math.Abs(result.IntegratedLUFS-(-3.0)) > 0.6 {
		t.Errorf("integrated = %.2f LUFS, want -3.0 +/- 0.6", result.IntegratedLUFS)
	}

	if result.MomentaryMax < result.IntegratedLUFS {
		t.Errorf("momentary max %.2f below integrated %.2f", result.MomentaryMax, result.IntegratedLUFS)
	}

	if result.Frames != uint64(5*testRate) {
		t.Errorf("frames = %d, want %d", result.Frames, 5*testRate)
	}
}

func TestGatingIgnoresSilence(t *testing.T) {
	signal := sine(997, 5, 0.25)

	plain := New(testRate, 1)
	plain.Process(signal)

	padded := New(testRate, 1)
	padded.Process(make([]float64, 5*testRate))
	padded.Process(signal)

	a := plain.Result().IntegratedLUFS
	b := padded.Result().IntegratedLUFS

	if math.Abs(a-b) > 0.5 {
		t.Errorf("leading silence shifted integrated loudness: %.2f vs %.2f", a, b)
	}
}

func TestGatingKeepsBurstLoudness(t *testing.T) {
	// 1s burst over a quiet tail: the relative gate drops the tail, so the
	// integrated value stays near the burst level instead of averaging down.
	m := New(testRate, 1)
	m.Process(sine(997, 1, 0.8))
	m.Process(sine(997, 9, 0.02))

	result := m.Result()

	if result.IntegratedLUFS < -8 {
		t.Errorf("integrated = %.2f LUFS, want near the -5.6 burst level", result.IntegratedLUFS)
	}

	if result.MomentaryMax < result.IntegratedLUFS {
		t.Errorf("momentary max %.2f below integrated %.2f", result.MomentaryMax, result.IntegratedLUFS)
	}
}

func TestStereoSumsChannelPower(t *testing.T) {
	signal := sine(997, 5, 0.5)

	mono := New(testRate, 1)
	mono.Process(signal)

	stereo := New(testRate, 2)
	interleaved := make([]float64, 0, 2*len(signal))

	for _, s := range signal {
		interleaved = append(interleaved, s, s)
	}

	stereo.Process(interleaved)

	diff := stereo.Result().IntegratedLUFS - mono.Result().IntegratedLUFS
	if math.Abs(diff-3.01) > 0.2 {
		t.Errorf("stereo-mono difference = %.2f LU, want 3.01 +/- 0.2", diff)
	}
}

func TestShortStreamStillMeasures(t *testing.T) {
	// Under one momentary window: the partial-window fallback must fire.
	m := New(testRate, 1)
	m.Process(sine(997, 0.2, 0.5))

	result := m.Result()

	if result.IntegratedLUFS <= -70 {
		t.Errorf("integrated = %.2f LUFS, want a real measurement", result.IntegratedLUFS)
	}
}
