//nolint:staticcheck // too dumb on Db vs. DB
package types

type BitDepth uint

const (
	Depth16 BitDepth = 16
	Depth24 BitDepth = 24
	Depth32 BitDepth = 32
)

// PCMFormat describes raw integer PCM at the decoder boundary, before
// normalization to float. BitDepth is the extracted PCM's depth.
type PCMFormat struct {
	SampleRate int
	BitDepth   BitDepth
	Channels   int
}

// AudioBlock is one batch of decoded samples for all channels, interleaved,
// normalized to [-1, 1] (values outside that range are legal and indicate
// levels above full scale). Produced by the decoder, consumed once by the
// analyzer, never retained.
type AudioBlock struct {
	SampleRate int
	Channels   int
	Samples    []float64 // interleaved; len must be a multiple of Channels
}

// Frames returns the number of sample frames in the block.
func (b AudioBlock) Frames() int {
	if b.Channels < 1 {
		return 0
	}

	return len(b.Samples) / b.Channels
}

/*
Loudness Interpretation

## Integrated Loudness (LUFS)

| IntegratedLUFS | Context                                |
|----------------|----------------------------------------|
| -23 to -18     | Broadcast/streaming target range       |
| -16 to -14     | Typical modern pop/rock master         |
| -12 to -10     | Loud/compressed master                 |
| -9 to -6       | Extremely loud (loudness war casualty) |

## Streaming Targets

| Platform    | Target LUFS |
|-------------|-------------|
| Spotify     | -14         |
| Apple Music | -16         |
| YouTube     | -14         |
| EBU R128    | -23         |

## Loudness Range (LRA)

| LRA (LU) | Interpretation                      |
|----------|-------------------------------------|
| < 5      | Very compressed, little dynamics    |
| 5-10     | Moderate dynamics, typical pop/rock |
| 10-15    | Good dynamics, well-mastered        |
| > 15     | Wide dynamics, classical/jazz       |
*/

// LoudnessResult contains the K-weighted, gated loudness measurements.
type LoudnessResult struct {
	// EBU R128 LUFS
	IntegratedLUFS float64 // overall loudness (gated)
	ShortTermMax   float64 // max 3s window
	MomentaryMax   float64 // max 400ms window
	LoudnessRange  float64 // LRA in LU

	// Dynamic Range
	DRScore int     // DR1-DR20 scale (crest factor based)
	DRValue float64 // raw DR value before rounding
	PeakDb  float64 // peak level used
	RmsDb   float64 // RMS level used

	Frames uint64
}

/*
True Peak / Inter-Sample Peak Interpretation

## True Peak Level (for streaming/broadcast)

| TruePeakDb  | Compliance                              |
|-------------|-----------------------------------------|
| < -2.0 dBTP | ATSC A/85 safe                          |
| < -1.0 dBTP | EBU R128 and most streaming platforms   |
| < 0 dBTP    | No ISPs, but no headroom for conversion |
| > 0 dBTP    | ISPs present. Will clip DACs.           |

A file can clip in the sample domain (flat tops at 0 dBFS) without ISPs, have
ISPs without sample clipping, both, or neither.
*/

// TruePeakResult contains the peak analysis.
type TruePeakResult struct {
	TruePeakDb   float64 // max reconstructed level; > 0 = ISP present
	SamplePeakDb float64 // max original sample level
	ISPCount     uint64  // number of inter-sample peaks > 0 dBFS
	ISPMaxDb     float64 // worst ISP overshoot above 0 dBFS
	Frames       uint64
}

/*
Phase Analysis Interpretation

## Correlation

| Correlation | Interpretation                   |
|-------------|----------------------------------|
| > 0.95      | Mono or near-identical channels  |
| 0.5 to 0.95 | Normal stereo                    |
| < 0.5       | Wide/decorrelated stereo         |
| < -0.5      | Strong out-of-phase content      |
| < -0.95     | Inverted polarity on one channel |

A single negative window proves nothing: intentional stereo effects produce
legitimately anti-correlated passages. Inversion is only reported when the
windowed correlation stays below the cutoff for the sustained-evidence
duration.

## Phase Cancellation (Mono Compatibility)

| CancellationDb | Interpretation                         |
|----------------|----------------------------------------|
| < 1 dB         | Mono-safe.                             |
| 1-3 dB         | Minor loss in mono.                    |
| 3-6 dB         | Noticeable. Will sound hollow in mono. |
| > 6 dB         | Severe. Major elements disappear.      |
*/

// PairCorrelation is the correlation verdict for one channel pair.
type PairCorrelation struct {
	ChannelA    int
	ChannelB    int
	Correlation float64 // whole-stream Pearson: 1 identical, -1 inverted
	WindowMin   float64 // most negative windowed correlation observed
	Inverted    bool    // sustained below the cutoff
	SustainSec  float64 // longest below-cutoff run, seconds
}

// PhaseResult contains cross-channel phase analysis.
type PhaseResult struct {
	Pairs []PairCorrelation

	// Stereo measurements for the first channel pair.
	DifferenceDb   float64 // RMS of (L-R) in dB; very negative = identical channels
	MonoSumDb      float64 // RMS of (L+R)/2 in dB; very negative = inverted phase
	StereoRmsDb    float64 // RMS of the original stereo signal
	CancellationDb float64 // StereoRmsDb - MonoSumDb; positive = lost in mono

	Frames uint64
}

/*
Channel Balance Interpretation

| ImbalanceDb (abs) | Interpretation                      |
|-------------------|-------------------------------------|
| < 0.5 dB          | Balanced. Normal.                   |
| 0.5-2.0 dB        | Noticeable. May be intentional.     |
| 2.0-3.0 dB        | Significant. Likely a problem.      |
| > 3.0 dB          | Severe. Equipment issue or bad mix. |

Sign: positive = first channel louder. Brief pans are normal program content;
imbalance is only reported when the windowed delta stays above the threshold
for the sustained-evidence duration.
*/

// BalanceResult contains per-channel level comparison.
type BalanceResult struct {
	ChannelRmsDb []float64 // long-term RMS per channel
	ImbalanceDb  float64   // first minus second channel, 0 for mono
	WorstDeltaDb float64   // largest windowed delta observed
	Sustained    bool      // delta exceeded threshold for the minimum duration
	SustainSec   float64   // longest above-threshold run, seconds
	Frames       uint64
}

// ChannelClipping contains per-channel clipping counts.
type ChannelClipping struct {
	Events         uint64
	ClippedSamples uint64
	LongestRun     uint64
}

// ClippingResult contains overall clipping detection results.
// An event is a run of two or more consecutive samples at full scale.
type ClippingResult struct {
	Events         uint64
	ClippedSamples uint64
	LongestRun     uint64
	Samples        uint64
	Channels       []ChannelClipping
}

// DCOffsetResult contains DC offset results. Offsets above ~0.01 are audible
// as reduced headroom and clicks at edit points.
type DCOffsetResult struct {
	Offset   float64   // mean absolute per-channel offset (-1.0 to 1.0)
	OffsetDb float64   // overall offset as dB (more negative = less offset)
	Channels []float64 // per-channel offset, normalized
	Samples  uint64
}

// SilenceSegment represents one detected silence period.
type SilenceSegment struct {
	StartFrame  uint64
	EndFrame    uint64
	StartSec    float64
	EndSec      float64
	DurationSec float64
	RmsDb       float64 // actual level during this segment
}

// SilenceResult aggregates silence segments plus the final-window level used
// for the abrupt-ending heuristic (a loud final window means the audio was
// cut mid-play rather than fading or ringing out).
type SilenceResult struct {
	Segments      []SilenceSegment
	TotalSilence  float64 // total silence duration in seconds
	LeadingSec    float64 // silence at start
	TrailingSec   float64 // silence at end
	FinalRmsDb    float64 // RMS of the last window
	TotalDuration float64 // total stream duration in seconds
	Frames        uint64
}

// A DropoutEvent is one detected discontinuity.
type DropoutEvent struct {
	Frame      uint64
	TimeSec    float64
	Channel    int
	Type       DropoutType
	Severity   float64 // magnitude of discontinuity (0-1 normalized)
	DurationMs float64 // for zero runs
}

// A DropoutType qualifies a dropout event.
type DropoutType int

const (
	DropoutDelta   DropoutType = iota // sudden large jump
	DropoutZeroRun                    // run of exact zeros (digital dropout)
)

func (t DropoutType) String() string {
	switch t {
	case DropoutDelta:
		return "delta"
	case DropoutZeroRun:
		return "zero_run"
	}

	return "unknown"
}

// DropoutResult aggregates all dropout events.
type DropoutResult struct {
	Events       []DropoutEvent
	DeltaCount   int
	ZeroRunCount int
	WorstDb      float64 // severity of worst event in dB
	Frames       uint64
}

/*
Spectrum Interpretation

## Hum

| HumLevelDb | Interpretation            |
|------------|---------------------------|
| < 10 dB    | Clean or negligible       |
| 10-20 dB   | Audible hum present       |
| 20-30 dB   | Significant contamination |
| > 30 dB    | Severe, equipment problem |

50 Hz = European mains, turntable motors. 60 Hz = North American mains.
Real hum is constant across the program; musical energy at 50/60 Hz varies
with the performance, so spikes are variance-gated.

## Noise Floor

| NoiseFloorDb | Interpretation                  |
|--------------|---------------------------------|
| < -40 dB     | Excellent, clean recording      |
| -40 to -30   | Good, typical studio recording  |
| -30 to -20   | Elevated noise, older recording |
| > -20 dB     | High noise, tape hiss or worse  |
*/

// SpectrumResult contains hum and noise floor measurements.
type SpectrumResult struct {
	Has50HzHum   bool
	Has60HzHum   bool
	HumLevelDb   float64 // level of worst hum spike relative to surroundings
	NoiseFloorDb float64 // HF noise in quiet windows relative to 1-10kHz
	Windows      int     // FFT windows analyzed
	Frames       uint64
}
