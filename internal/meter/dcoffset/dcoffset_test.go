package dcoffset

import (
	"math"
	"testing"
)

const testRate = 44100

func TestShiftedSine(t *testing.T) {
	m := New(1)

	samples := make([]float64, 2*testRate)
	for i := range samples {
		samples[i] = 0.1 + 0.3*math.Sin(2*math.Pi*441*float64(i)/testRate)
	}

	m.Process(samples)
	result := m.Result()

	if math.Abs(result.Offset-0.1) > 0.001 {
		t.Errorf("offset = %.4f, want 0.1", result.Offset)
	}

	// 20*log10(0.1) = -20 dB
	if math.Abs(result.OffsetDb-(-20)) > 0.1 {
		t.Errorf("offset = %.2f dB, want -20", result.OffsetDb)
	}
}

func TestCenteredSignalHasNoOffset(t *testing.T) {
	m := New(1)

	samples := make([]float64, 2*testRate)
	for i := range samples {
		samples[i] = 0.5 * math.Sin(2*math.Pi*441*float64(i)/testRate)
	}

	m.Process(samples)

	if result := m.Result(); result.OffsetDb > -60 {
		t.Errorf("centered sine measured %.1f dB offset", result.OffsetDb)
	}
}

func TestPerChannelOffsets(t *testing.T) {
	m := New(2)

	// Left shifted +0.2, right clean.
	samples := make([]float64, 0, 2*testRate)
	for i := range testRate {
		s := 0.3 * math.Sin(2*math.Pi*441*float64(i)/testRate)
		samples = append(samples, s+0.2, s)
	}

	m.Process(samples)
	result := m.Result()

	if math.Abs(result.Channels[0]-0.2) > 0.001 {
		t.Errorf("left offset = %.4f, want 0.2", result.Channels[0])
	}

	if math.Abs(result.Channels[1]) > 0.001 {
		t.Errorf("right offset = %.4f, want 0", result.Channels[1])
	}
}
