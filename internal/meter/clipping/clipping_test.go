package clipping

import "testing"

func TestRunCounting(t *testing.T) {
	m := New(1, 0)

	// Two runs at full scale (3 then 2 samples) and one lone peak.
	m.Process([]float64{0.5, 1.0, 1.0, 1.0, 0.2, 1.0, 0.2, -1.0, -1.0})

	result := m.Result()

	if result.Events != 2 {
		t.Errorf("events = %d, want 2", result.Events)
	}

	if result.ClippedSamples != 5 {
		t.Errorf("clipped samples = %d, want 5", result.ClippedSamples)
	}

	if result.LongestRun != 3 {
		t.Errorf("longest run = %d, want 3", result.LongestRun)
	}
}

func TestTrailingRunFlushed(t *testing.T) {
	m := New(1, 0)
	m.Process([]float64{0.1, 1.0, 1.0, 1.0, 1.0})

	if result := m.Result(); result.Events != 1 || result.LongestRun != 4 {
		t.Errorf("trailing run: events=%d longest=%d, want 1/4", result.Events, result.LongestRun)
	}
}

func TestIntegerClippedStillRegisters(t *testing.T) {
	// 16-bit PCM pinned at 32767 normalizes just under 1.0; the default
	// threshold leaves one LSB of slack for it.
	v := 32767.0 / 32768.0

	m := New(1, 0)
	m.Process([]float64{0.0, v, v, v, 0.0})

	if result := m.Result(); result.Events != 1 {
		t.Errorf("events = %d, want 1 for integer-clipped run", result.Events)
	}
}

func TestPerChannelAccounting(t *testing.T) {
	m := New(2, 0)

	// Left clips for 3 frames; right stays clean.
	m.Process([]float64{
		1.0, 0.3,
		1.0, 0.3,
		1.0, 0.3,
		0.2, 0.3,
	})

	result := m.Result()

	if result.Channels[0].Events != 1 {
		t.Errorf("left events = %d, want 1", result.Channels[0].Events)
	}

	if result.Channels[1].Events != 0 {
		t.Errorf("right events = %d, want 0", result.Channels[1].Events)
	}
}

func TestCustomThreshold(t *testing.T) {
	m := New(1, 0.9)
	m.Process([]float64{0.95, 0.95, 0.1})

	if result := m.Result(); result.Events != 1 {
		t.Errorf("events = %d, want 1 at 0.9 threshold", result.Events)
	}
}
