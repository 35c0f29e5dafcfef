package aucommon

// Check represents a high-level audio quality check.
type Check int

const (
	CheckTooLoud Check = 1 << iota
	CheckTooQuiet
	CheckInvertedPhase
	CheckChannelImbalance
	CheckPhaseIssues
	CheckFakeStereo
	CheckClipping
	CheckInterSamplePeaks
	CheckDCOffset
	CheckLoudness
	CheckDynamicRange
	CheckSilencePadding
	CheckTruncation
	CheckHum
	CheckNoiseFloor
	CheckDropouts

	// Presets.
	ChecksLevels = CheckTooLoud | CheckTooQuiet | CheckLoudness |
		CheckDynamicRange | CheckClipping | CheckInterSamplePeaks

	ChecksStereo = CheckInvertedPhase | CheckChannelImbalance |
		CheckPhaseIssues | CheckFakeStereo

	ChecksDefects = ChecksStereo | CheckClipping | CheckInterSamplePeaks |
		CheckDCOffset | CheckSilencePadding | CheckTruncation |
		CheckHum | CheckNoiseFloor | CheckDropouts

	ChecksAll = ChecksLevels | ChecksDefects
)

func (c Check) String() string {
	switch c {
	case CheckTooLoud:
		return "too-loud"
	case CheckTooQuiet:
		return "too-quiet"
	case CheckInvertedPhase:
		return "inverted-phase"
	case CheckChannelImbalance:
		return "channel-imbalance"
	case CheckPhaseIssues:
		return "phase-issues"
	case CheckFakeStereo:
		return "fake-stereo"
	case CheckClipping:
		return "clipping"
	case CheckInterSamplePeaks:
		return "inter-sample-peaks"
	case CheckDCOffset:
		return "dc-offset"
	case CheckLoudness:
		return "loudness"
	case CheckDynamicRange:
		return "dynamic-range"
	case CheckSilencePadding:
		return "silence-padding"
	case CheckTruncation:
		return "truncation"
	case CheckHum:
		return "hum"
	case CheckNoiseFloor:
		return "noise-floor"
	case CheckDropouts:
		return "dropouts"
	}

	return "unknown"
}

// Severity indicates how bad a detected issue is.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityMild
	SeverityModerate
	SeveritySevere
)

func (s Severity) String() string {
	switch s {
	case SeverityNone:
		return "no issue"
	case SeverityMild:
		return "mild"
	case SeverityModerate:
		return "moderate"
	case SeveritySevere:
		return "severe"
	}

	return "unknown"
}

// Issue represents a detected problem.
type Issue struct {
	Check      Check
	Detected   bool
	Severity   Severity
	Summary    string  // human-readable summary
	Confidence float64 // 0.0-1.0
}

// Bands defines severity thresholds for a check. Direction is implicit:
// if Mild < Severe, higher values are worse (ascending, e.g. dB offset).
// If Mild > Severe, lower values are worse (descending, e.g. DR score).
type Bands struct {
	Mild     float64
	Moderate float64
	Severe   float64
}

// Match returns the severity for a value.
// Returns (SeverityNone, false) when the value is below detection (the Mild threshold).
func (b Bands) Match(value float64) (Severity, bool) {
	if b.Mild <= b.Severe {
		// Ascending: higher = worse.
		if value >= b.Severe {
			return SeveritySevere, true
		}

		if value >= b.Moderate {
			return SeverityModerate, true
		}

		if value >= b.Mild {
			return SeverityMild, true
		}
	} else {
		// Descending: lower = worse (e.g. DR score).
		if value <= b.Severe {
			return SeveritySevere, true
		}

		if value <= b.Moderate {
			return SeverityModerate, true
		}

		if value <= b.Mild {
			return SeverityMild, true
		}
	}

	return SeverityNone, false
}
