package aucommon

import "fmt"

// Options configures a session.
type Options struct {
	Checks Check // which checks to run (default: ChecksAll)

	// Loudness target in LUFS against which too-loud/too-quiet are judged.
	TargetLUFS float64 // default -14 (streaming)

	// Severity bands per check (zero value = use defaults).
	TooLoud          Bands // LU above target
	TooQuiet         Bands // LU below target
	Clipping         Bands
	Truncation       Bands
	DCOffset         Bands
	ChannelImbalance Bands
	PhaseIssues      Bands
	SilencePadding   Bands
	Hum              Bands
	NoiseFloor       Bands
	ISP              Bands
	DynamicRange     Bands
	Dropouts         Bands

	// Analyzer thresholds (not severity bands).
	InversionCutoff       float64 // correlation at or below this counts toward inversion; default -0.5
	ImbalanceThresholdDb  float64 // window delta that counts toward imbalance; default 3
	MinSustainSec         float64 // evidence must persist this long; default 3
	DropoutDeltaThreshold float64 // default 0.5
}

// DefaultOptions returns DefaultStreamingOptions.
func DefaultOptions() Options {
	return DefaultStreamingOptions()
}

// DefaultStreamingOptions returns options tuned for streaming delivery
// (-14 LUFS target).
func DefaultStreamingOptions() Options {
	return Options{
		Checks:           ChecksAll,
		TargetLUFS:       -14,
		TooLoud:          Bands{Mild: 1, Moderate: 2, Severe: 4},
		TooQuiet:         Bands{Mild: 4, Moderate: 8, Severe: 16},
		Clipping:         Bands{Mild: 1, Moderate: 10, Severe: 100},
		Truncation:       Bands{Mild: -40, Moderate: -30, Severe: -20},
		DCOffset:         Bands{Mild: -40, Moderate: -26, Severe: -13},
		ChannelImbalance: Bands{Mild: 3, Moderate: 6, Severe: 10},
		PhaseIssues:      Bands{Mild: 3, Moderate: 6, Severe: 10},
		SilencePadding:   Bands{Mild: 2, Moderate: 5, Severe: 10},
		Hum:              Bands{Mild: 10, Moderate: 20, Severe: 30},
		NoiseFloor:       Bands{Mild: -30, Moderate: -20, Severe: -10},
		ISP:              Bands{Mild: 1, Moderate: 100, Severe: 1000},
		DynamicRange:     Bands{Mild: 8, Moderate: 6, Severe: 4},
		Dropouts:         Bands{Mild: 1, Moderate: 5, Severe: 20},

		InversionCutoff:       -0.5,
		ImbalanceThresholdDb:  3,
		MinSustainSec:         3,
		DropoutDeltaThreshold: 0.5,
	}
}

// DefaultBroadcastOptions returns options for broadcast delivery
// (EBU R128, -23 LUFS target). Tighter loudness tolerance, both ways.
func DefaultBroadcastOptions() Options {
	opts := DefaultStreamingOptions()
	opts.TargetLUFS = -23
	opts.TooLoud = Bands{Mild: 0.5, Moderate: 1, Severe: 2}
	opts.TooQuiet = Bands{Mild: 0.5, Moderate: 1, Severe: 2}
	opts.ISP = Bands{Mild: 1, Moderate: 10, Severe: 100}

	return opts
}

// Target represents a delivery target, which sets the loudness reference
// and tolerance the level checks are judged against.
type Target int

const (
	TargetStreaming Target = iota // Streaming platforms, -14 LUFS (default).
	TargetBroadcast               // Broadcast, EBU R128 -23 LUFS.
)

func (t Target) String() string {
	switch t {
	case TargetStreaming:
		return "streaming"
	case TargetBroadcast:
		return "broadcast"
	}

	return "unknown"
}

// ParseTarget converts a string to a Target value.
func ParseTarget(s string) (Target, error) {
	switch s {
	case "streaming", "":
		return TargetStreaming, nil
	case "broadcast":
		return TargetBroadcast, nil
	default:
		return 0, fmt.Errorf("unknown target %q (valid: streaming, broadcast)", s)
	}
}

// OptionsForTarget returns the default Options for the given delivery target.
func OptionsForTarget(target Target) Options {
	switch target {
	case TargetBroadcast:
		return DefaultBroadcastOptions()
	default:
		return DefaultStreamingOptions()
	}
}

func applyDefaults(opts *Options) {
	defaults := DefaultOptions()
	zeroBands := Bands{}

	if opts.TargetLUFS == 0 {
		opts.TargetLUFS = defaults.TargetLUFS
	}

	if opts.TooLoud == zeroBands {
		opts.TooLoud = defaults.TooLoud
	}

	if opts.TooQuiet == zeroBands {
		opts.TooQuiet = defaults.TooQuiet
	}

	if opts.Clipping == zeroBands {
		opts.Clipping = defaults.Clipping
	}

	if opts.Truncation == zeroBands {
		opts.Truncation = defaults.Truncation
	}

	if opts.DCOffset == zeroBands {
		opts.DCOffset = defaults.DCOffset
	}

	if opts.ChannelImbalance == zeroBands {
		opts.ChannelImbalance = defaults.ChannelImbalance
	}

	if opts.PhaseIssues == zeroBands {
		opts.PhaseIssues = defaults.PhaseIssues
	}

	if opts.SilencePadding == zeroBands {
		opts.SilencePadding = defaults.SilencePadding
	}

	if opts.Hum == zeroBands {
		opts.Hum = defaults.Hum
	}

	if opts.NoiseFloor == zeroBands {
		opts.NoiseFloor = defaults.NoiseFloor
	}

	if opts.ISP == zeroBands {
		opts.ISP = defaults.ISP
	}

	if opts.DynamicRange == zeroBands {
		opts.DynamicRange = defaults.DynamicRange
	}

	if opts.Dropouts == zeroBands {
		opts.Dropouts = defaults.Dropouts
	}

	if opts.InversionCutoff == 0 {
		opts.InversionCutoff = defaults.InversionCutoff
	}

	if opts.ImbalanceThresholdDb == 0 {
		opts.ImbalanceThresholdDb = defaults.ImbalanceThresholdDb
	}

	if opts.MinSustainSec == 0 {
		opts.MinSustainSec = defaults.MinSustainSec
	}

	if opts.DropoutDeltaThreshold == 0 {
		opts.DropoutDeltaThreshold = defaults.DropoutDeltaThreshold
	}
}

func validateOptions(opts Options) error {
	if opts.TargetLUFS > 0 {
		return fmt.Errorf("%w: target loudness %.1f LUFS must be negative", ErrInvalidConfig, opts.TargetLUFS)
	}

	if opts.InversionCutoff < -1 || opts.InversionCutoff > 1 {
		return fmt.Errorf("%w: inversion cutoff %.2f outside [-1, 1]", ErrInvalidConfig, opts.InversionCutoff)
	}

	if opts.ImbalanceThresholdDb < 0 {
		return fmt.Errorf("%w: imbalance threshold %.1f dB must be non-negative", ErrInvalidConfig, opts.ImbalanceThresholdDb)
	}

	if opts.MinSustainSec < 0 {
		return fmt.Errorf("%w: minimum sustain %.1f s must be non-negative", ErrInvalidConfig, opts.MinSustainSec)
	}

	return nil
}
