package dropout

import "testing"

const testRate = 44100

func TestZeroGapInLoudSignal(t *testing.T) {
	m := New(testRate, 1, Options{})

	samples := make([]float64, 2*testRate)
	for i := range samples {
		samples[i] = 0.8
	}

	// 200-frame hole (4.5ms) punched into a loud signal.
	for i := testRate; i < testRate+200; i++ {
		samples[i] = 0
	}

	m.Process(samples)
	result := m.Result()

	if result.ZeroRunCount != 1 {
		t.Errorf("zero runs = %d, want 1", result.ZeroRunCount)
	}

	// Both edges of the hole are 0.8 jumps.
	if result.DeltaCount != 2 {
		t.Errorf("delta events = %d, want 2", result.DeltaCount)
	}

	if result.WorstDb < -3 {
		t.Errorf("worst = %.1f dB, want near 0 for a 0.8 jump", result.WorstDb)
	}
}

func TestZerosInSilenceIgnored(t *testing.T) {
	// Digital silence is full of zeros; without loud context they are not
	// dropouts.
	m := New(testRate, 1, Options{})
	m.Process(make([]float64, 2*testRate))

	result := m.Result()

	if result.ZeroRunCount != 0 {
		t.Errorf("zero runs = %d in pure silence, want 0", result.ZeroRunCount)
	}

	if result.DeltaCount != 0 {
		t.Errorf("delta events = %d in pure silence, want 0", result.DeltaCount)
	}
}

func TestAllChannelTransientIgnored(t *testing.T) {
	// A jump hitting every channel in the same frame is program material
	// (a drum hit), not a dropout.
	m := New(testRate, 2, Options{})

	samples := make([]float64, 2*testRate)
	for i := testRate; i < len(samples); i++ {
		samples[i] = 0.9
	}

	m.Process(samples)

	if result := m.Result(); result.DeltaCount != 0 {
		t.Errorf("delta events = %d for a stereo transient, want 0", result.DeltaCount)
	}
}

func TestSingleChannelJumpCounts(t *testing.T) {
	m := New(testRate, 2, Options{})

	samples := make([]float64, 2*testRate)
	for i := 0; i < len(samples); i += 2 {
		samples[i] = 0.8
		samples[i+1] = 0.8
	}

	// Left channel alone collapses to near zero for one stretch.
	for i := testRate; i < testRate+400; i += 2 {
		samples[i] = 0.0001
	}

	m.Process(samples)

	if result := m.Result(); result.DeltaCount == 0 {
		t.Error("single-channel collapse produced no delta events")
	}
}

func TestShortZeroRunIgnored(t *testing.T) {
	// 20 frames is under the 1ms minimum at 44.1k.
	m := New(testRate, 1, Options{})

	samples := make([]float64, testRate)
	for i := range samples {
		samples[i] = 0.7
	}

	for i := 1000; i < 1020; i++ {
		samples[i] = 0
	}

	m.Process(samples)

	if result := m.Result(); result.ZeroRunCount != 0 {
		t.Errorf("zero runs = %d for a 20-frame gap, want 0", result.ZeroRunCount)
	}
}

func TestEventDetails(t *testing.T) {
	m := New(testRate, 1, Options{})

	samples := make([]float64, testRate)
	for i := range samples {
		samples[i] = 0.8
	}

	for i := 22050; i < 22050+441; i++ { // 10ms at 0.5s
		samples[i] = 0
	}

	m.Process(samples)
	result := m.Result()

	var zeroRun *struct {
		timeSec    float64
		durationMs float64
	}

	for _, ev := range result.Events {
		if ev.DurationMs > 0 {
			zeroRun = &struct {
				timeSec    float64
				durationMs float64
			}{ev.TimeSec, ev.DurationMs}
		}
	}

	if zeroRun == nil {
		t.Fatal("no zero-run event recorded")
	}

	if zeroRun.timeSec < 0.49 || zeroRun.timeSec > 0.51 {
		t.Errorf("event at %.3fs, want ~0.5", zeroRun.timeSec)
	}

	if zeroRun.durationMs < 9 || zeroRun.durationMs > 11 {
		t.Errorf("duration = %.1fms, want ~10", zeroRun.durationMs)
	}
}
