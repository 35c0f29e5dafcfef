package phase

import (
	"math"
	"testing"
)

const testRate = 44100

func stereoSine(freq, seconds, ampL, ampR float64) []float64 {
	frames := int(seconds * testRate)
	out := make([]float64, 0, 2*frames)

	for i := range frames {
		s := math.Sin(2 * math.Pi * freq * float64(i) / testRate)
		out = append(out, ampL*s, ampR*s)
	}

	return out
}

func TestSustainedInversion(t *testing.T) {
	m := New(testRate, 2, Options{})
	m.Process(stereoSine(440, 4, 0.5, -0.5))

	result := m.Result()

	pair := result.Pairs[0]
	if !pair.Inverted {
		t.Fatalf("4s inversion not flagged (sustain %.1fs)", pair.SustainSec)
	}

	if pair.Correlation > -0.99 {
		t.Errorf("correlation = %.3f, want ~-1", pair.Correlation)
	}

	// The mono sum of inverted channels cancels to nothing.
	if result.CancellationDb < 40 {
		t.Errorf("cancellation = %.1f dB, want large", result.CancellationDb)
	}
}

func TestShortInversionBelowSustain(t *testing.T) {
	m := New(testRate, 2, Options{})
	m.Process(stereoSine(440, 1, 0.5, -0.5))
	m.Process(stereoSine(440, 4, 0.5, 0.5))

	result := m.Result()

	if result.Pairs[0].Inverted {
		t.Errorf("1s inversion flagged as sustained (%.1fs)", result.Pairs[0].SustainSec)
	}
}

func TestSilenceGapJoinsRuns(t *testing.T) {
	// Quiet windows carry no evidence either way, so two 2s inverted
	// stretches around a 1s gap count as one run.
	m := New(testRate, 2, Options{})
	m.Process(stereoSine(440, 2, 0.5, -0.5))
	m.Process(make([]float64, 2*testRate))
	m.Process(stereoSine(440, 2, 0.5, -0.5))

	result := m.Result()

	if !result.Pairs[0].Inverted {
		t.Errorf("inversion split by silence not flagged (sustain %.1fs)", result.Pairs[0].SustainSec)
	}
}

func TestIdenticalChannels(t *testing.T) {
	m := New(testRate, 2, Options{})
	m.Process(stereoSine(440, 3, 0.5, 0.5))

	result := m.Result()

	if result.Pairs[0].Correlation < 0.999 {
		t.Errorf("correlation = %.4f, want ~1", result.Pairs[0].Correlation)
	}

	// Zero inter-channel difference pins the difference level to the floor.
	if result.DifferenceDb > -100 {
		t.Errorf("difference = %.1f dB, want floor", result.DifferenceDb)
	}

	if result.Pairs[0].Inverted {
		t.Error("identical channels flagged inverted")
	}
}

func TestMultichannelPairs(t *testing.T) {
	m := New(testRate, 4, Options{})

	frames := testRate
	samples := make([]float64, 0, 4*frames)

	for i := range frames {
		s := 0.5 * math.Sin(2*math.Pi*440*float64(i)/testRate)
		samples = append(samples, s, s, -s, 0.1*s)
	}

	m.Process(samples)
	result := m.Result()

	// 4 channels pair into C(4,2) = 6 correlations.
	if len(result.Pairs) != 6 {
		t.Fatalf("got %d pairs, want 6", len(result.Pairs))
	}
}
