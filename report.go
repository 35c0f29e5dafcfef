package aucommon

import (
	"fmt"
	"math"

	"github.com/januszry/aucommon/internal/types"
)

// Report contains everything a finished session measured.
type Report struct {
	// High-level issues (what the user asked for)
	Issues []Issue

	// Quick access booleans
	IsTooLoud           bool
	IsTooQuiet          bool
	HasInvertedPhase    bool
	HasChannelImbalance bool
	HasPhaseIssues      bool
	HasFakeStereo       bool
	HasClipping         bool
	HasInterSamplePeaks bool
	HasDCOffset         bool
	HasSilencePadding   bool
	HasTruncation       bool
	HasHum              bool
	HasHighNoiseFloor   bool
	HasDropouts         bool
	IsBrickwalled       bool

	// Summary
	IssueCount    int
	WorstSeverity Severity

	// Raw meter results (for inspection, nil if not requested)
	Loudness *types.LoudnessResult
	TruePeak *types.TruePeakResult
	Phase    *types.PhaseResult
	Balance  *types.BalanceResult
	Clipping *types.ClippingResult
	DCOffset *types.DCOffsetResult
	Silence  *types.SilenceResult
	Dropout  *types.DropoutResult
	Spectrum *types.SpectrumResult
}

//nolint:gocognit,cyclop,maintidx // one branch per check, mechanical
func interpretReport(report *Report, opts Options) {
	// Too Loud / Too Quiet (relative to the delivery target)
	if report.Loudness != nil {
		delta := report.Loudness.IntegratedLUFS - opts.TargetLUFS

		if opts.Checks&CheckTooLoud != 0 {
			severity, detected := opts.TooLoud.Match(delta)

			var summary string

			switch severity {
			case SeverityNone:
				summary = fmt.Sprintf("Not above target (%.1f LUFS vs %.1f)", report.Loudness.IntegratedLUFS, opts.TargetLUFS)
			case SeverityMild:
				summary = fmt.Sprintf("Slightly loud: %.1f LU above %.1f LUFS target", delta, opts.TargetLUFS)
			case SeverityModerate:
				summary = fmt.Sprintf("Too loud: %.1f LU above %.1f LUFS target", delta, opts.TargetLUFS)
			case SeveritySevere:
				summary = fmt.Sprintf("Far too loud: %.1f LU above %.1f LUFS target", delta, opts.TargetLUFS)
			}

			report.IsTooLoud = detected
			report.Issues = append(report.Issues, Issue{
				Check:      CheckTooLoud,
				Detected:   detected,
				Severity:   severity,
				Summary:    summary,
				Confidence: 1.0,
			})
		}

		if opts.Checks&CheckTooQuiet != 0 {
			severity, detected := opts.TooQuiet.Match(-delta)

			var summary string

			switch severity {
			case SeverityNone:
				summary = fmt.Sprintf("Not below target (%.1f LUFS vs %.1f)", report.Loudness.IntegratedLUFS, opts.TargetLUFS)
			case SeverityMild:
				summary = fmt.Sprintf("Slightly quiet: %.1f LU below %.1f LUFS target", -delta, opts.TargetLUFS)
			case SeverityModerate:
				summary = fmt.Sprintf("Too quiet: %.1f LU below %.1f LUFS target", -delta, opts.TargetLUFS)
			case SeveritySevere:
				summary = fmt.Sprintf("Far too quiet: %.1f LU below %.1f LUFS target", -delta, opts.TargetLUFS)
			}

			report.IsTooQuiet = detected
			report.Issues = append(report.Issues, Issue{
				Check:      CheckTooQuiet,
				Detected:   detected,
				Severity:   severity,
				Summary:    summary,
				Confidence: 1.0,
			})
		}
	}

	// Phase checks
	if report.Phase != nil {
		// Inverted Phase (sustained evidence, binary)
		if opts.Checks&CheckInvertedPhase != 0 {
			var worst *types.PairCorrelation

			for i := range report.Phase.Pairs {
				pair := &report.Phase.Pairs[i]
				if pair.Inverted && (worst == nil || pair.Correlation < worst.Correlation) {
					worst = pair
				}
			}

			var (
				severity Severity
				summary  string
			)

			if worst != nil {
				severity = SeveritySevere
				summary = fmt.Sprintf(
					"Inverted phase: channels %d/%d anti-correlated for %.1fs (correlation %.3f)",
					worst.ChannelA, worst.ChannelB, worst.SustainSec, worst.Correlation,
				)
			} else {
				severity = SeverityNone
				summary = "Phase polarity OK"
			}

			report.HasInvertedPhase = worst != nil
			report.Issues = append(report.Issues, Issue{
				Check:      CheckInvertedPhase,
				Detected:   worst != nil,
				Severity:   severity,
				Summary:    summary,
				Confidence: 0.95,
			})
		}

		// Phase Issues (mono compatibility, bands on cancellation)
		if opts.Checks&CheckPhaseIssues != 0 {
			severity, detected := opts.PhaseIssues.Match(report.Phase.CancellationDb)

			var summary string

			switch severity {
			case SeverityNone:
				summary = "Mono-compatible"
			case SeverityMild:
				summary = fmt.Sprintf("Minor phase issues (%.1f dB cancellation)", report.Phase.CancellationDb)
			case SeverityModerate:
				summary = fmt.Sprintf("Phase issues: %.1f dB lost in mono", report.Phase.CancellationDb)
			case SeveritySevere:
				summary = fmt.Sprintf("Severe phase issues: %.1f dB cancellation in mono", report.Phase.CancellationDb)
			}

			report.HasPhaseIssues = detected
			report.Issues = append(report.Issues, Issue{
				Check:      CheckPhaseIssues,
				Detected:   detected,
				Severity:   severity,
				Summary:    summary,
				Confidence: 1.0,
			})
		}

		// Fake Stereo (binary detection, no bands)
		if opts.Checks&CheckFakeStereo != 0 && len(report.Phase.Pairs) > 0 {
			first := report.Phase.Pairs[0]
			detected := first.Correlation > 0.98 && report.Phase.DifferenceDb < -60

			var (
				severity Severity
				summary  string
			)

			if detected {
				severity = SeverityModerate
				summary = fmt.Sprintf("Fake stereo: channels identical (correlation %.3f)", first.Correlation)
			} else {
				severity = SeverityNone
				summary = "Real stereo content"
			}

			report.HasFakeStereo = detected
			report.Issues = append(report.Issues, Issue{
				Check:      CheckFakeStereo,
				Detected:   detected,
				Severity:   severity,
				Summary:    summary,
				Confidence: 1.0,
			})
		}
	}

	// Channel Imbalance (sustained evidence gates detection)
	if report.Balance != nil && opts.Checks&CheckChannelImbalance != 0 {
		imbalance := math.Abs(report.Balance.ImbalanceDb)
		severity, _ := opts.ChannelImbalance.Match(imbalance)
		detected := report.Balance.Sustained

		side := "first channel"
		if report.Balance.ImbalanceDb < 0 {
			side = "second channel"
		}

		var summary string

		switch {
		case !detected && severity != SeverityNone:
			// Loud passages pan one way but never for long enough.
			severity = SeverityNone
			summary = fmt.Sprintf("Brief imbalance only (%s louder by %.1f dB overall)", side, imbalance)
		case !detected:
			severity = SeverityNone
			summary = "Channels balanced"
		default:
			if severity == SeverityNone {
				// Sustained but the long-term average washes it out.
				severity = SeverityMild
			}

			summary = fmt.Sprintf(
				"Channel imbalance: %s louder by %.1f dB, sustained %.1fs (worst window %.1f dB)",
				side, imbalance, report.Balance.SustainSec, report.Balance.WorstDeltaDb,
			)
		}

		report.HasChannelImbalance = detected
		report.Issues = append(report.Issues, Issue{
			Check:      CheckChannelImbalance,
			Detected:   detected,
			Severity:   severity,
			Summary:    summary,
			Confidence: 0.95,
		})
	}

	// Clipping
	if report.Clipping != nil && opts.Checks&CheckClipping != 0 {
		events := float64(report.Clipping.Events)
		severity, detected := opts.Clipping.Match(events)

		var summary string

		switch severity {
		case SeverityNone:
			summary = "No clipping detected"
		case SeverityMild, SeverityModerate:
			summary = fmt.Sprintf("%d clipping events", report.Clipping.Events)
		case SeveritySevere:
			summary = fmt.Sprintf(
				"%d clipping events, longest run %d samples",
				report.Clipping.Events,
				report.Clipping.LongestRun,
			)
		}

		report.HasClipping = detected
		report.Issues = append(report.Issues, Issue{
			Check:      CheckClipping,
			Detected:   detected,
			Severity:   severity,
			Summary:    summary,
			Confidence: 1.0,
		})
	}

	// Inter-Sample Peaks
	if report.TruePeak != nil && opts.Checks&CheckInterSamplePeaks != 0 {
		ispCount := float64(report.TruePeak.ISPCount)
		severity, detected := opts.ISP.Match(ispCount)

		var summary string

		switch severity {
		case SeverityNone:
			summary = fmt.Sprintf("No inter-sample peaks (true peak %.1f dBTP)", report.TruePeak.TruePeakDb)
		case SeverityMild, SeverityModerate:
			summary = fmt.Sprintf("%d ISPs, max overshoot %.2f dB", report.TruePeak.ISPCount, report.TruePeak.ISPMaxDb)
		case SeveritySevere:
			summary = fmt.Sprintf(
				"Pervasive ISPs: %d events, max overshoot %.2f dB",
				report.TruePeak.ISPCount,
				report.TruePeak.ISPMaxDb,
			)
		}

		report.HasInterSamplePeaks = detected
		report.Issues = append(report.Issues, Issue{
			Check:      CheckInterSamplePeaks,
			Detected:   detected,
			Severity:   severity,
			Summary:    summary,
			Confidence: 1.0,
		})
	}

	// DC Offset
	if report.DCOffset != nil && opts.Checks&CheckDCOffset != 0 {
		severity, detected := opts.DCOffset.Match(report.DCOffset.OffsetDb)

		var summary string

		switch severity {
		case SeverityNone:
			summary = "No DC offset"
		case SeverityMild:
			summary = fmt.Sprintf("Minor DC offset (%.1f dB)", report.DCOffset.OffsetDb)
		case SeverityModerate:
			summary = fmt.Sprintf("DC offset present (%.1f dB)", report.DCOffset.OffsetDb)
		case SeveritySevere:
			summary = fmt.Sprintf("Severe DC offset (%.1f dB)", report.DCOffset.OffsetDb)
		}

		report.HasDCOffset = detected
		report.Issues = append(report.Issues, Issue{
			Check:      CheckDCOffset,
			Detected:   detected,
			Severity:   severity,
			Summary:    summary,
			Confidence: 1.0,
		})
	}

	// Loudness (informational, no bands)
	if report.Loudness != nil && opts.Checks&CheckLoudness != 0 {
		report.Issues = append(report.Issues, Issue{
			Check:    CheckLoudness,
			Detected: false, // informational
			Severity: SeverityNone,
			Summary: fmt.Sprintf(
				"Loudness: %.1f LUFS, range %.1f LU",
				report.Loudness.IntegratedLUFS,
				report.Loudness.LoudnessRange,
			),
			Confidence: 1.0,
		})
	}

	// Dynamic Range (descending bands: lower DR = worse)
	if report.Loudness != nil && opts.Checks&CheckDynamicRange != 0 {
		drScore := float64(report.Loudness.DRScore)
		severity, detected := opts.DynamicRange.Match(drScore)

		var summary string

		switch severity {
		case SeverityNone:
			if report.Loudness.DRScore >= 12 {
				summary = fmt.Sprintf("Excellent dynamics (DR%d)", report.Loudness.DRScore)
			} else {
				summary = fmt.Sprintf("Good dynamics (DR%d)", report.Loudness.DRScore)
			}
		case SeverityMild:
			summary = fmt.Sprintf("Compressed (DR%d)", report.Loudness.DRScore)
		case SeverityModerate:
			summary = fmt.Sprintf("Heavily compressed (DR%d)", report.Loudness.DRScore)
		case SeveritySevere:
			summary = fmt.Sprintf("Brickwalled (DR%d)", report.Loudness.DRScore)
		}

		report.IsBrickwalled = detected
		report.Issues = append(report.Issues, Issue{
			Check:      CheckDynamicRange,
			Detected:   detected,
			Severity:   severity,
			Summary:    summary,
			Confidence: 1.0,
		})
	}

	// Silence Padding
	if report.Silence != nil && opts.Checks&CheckSilencePadding != 0 {
		worst := report.Silence.LeadingSec
		if report.Silence.TrailingSec > worst {
			worst = report.Silence.TrailingSec
		}

		severity, detected := opts.SilencePadding.Match(worst)

		var summary string

		switch severity {
		case SeverityNone:
			summary = "No excessive silence padding"
		default:
			summary = fmt.Sprintf(
				"Silence padding: %.1fs leading, %.1fs trailing",
				report.Silence.LeadingSec,
				report.Silence.TrailingSec,
			)
		}

		report.HasSilencePadding = detected
		report.Issues = append(report.Issues, Issue{
			Check:      CheckSilencePadding,
			Detected:   detected,
			Severity:   severity,
			Summary:    summary,
			Confidence: 1.0,
		})
	}

	// Truncation (abrupt ending)
	if report.Silence != nil && opts.Checks&CheckTruncation != 0 {
		severity, detected := opts.Truncation.Match(report.Silence.FinalRmsDb)

		var summary string

		switch severity {
		case SeverityNone:
			summary = "Clean ending"
		case SeverityMild:
			summary = fmt.Sprintf("Possibly truncated (%.1f dB at end)", report.Silence.FinalRmsDb)
		case SeverityModerate:
			summary = fmt.Sprintf("Likely truncated (%.1f dB at end)", report.Silence.FinalRmsDb)
		case SeveritySevere:
			summary = fmt.Sprintf("Truncated mid-audio (%.1f dB at end)", report.Silence.FinalRmsDb)
		}

		report.HasTruncation = detected
		report.Issues = append(report.Issues, Issue{
			Check:      CheckTruncation,
			Detected:   detected,
			Severity:   severity,
			Summary:    summary,
			Confidence: 0.8,
		})
	}

	// Hum (binary detection from spectrum flags, bands for severity)
	if report.Spectrum != nil && opts.Checks&CheckHum != 0 {
		detected := report.Spectrum.Has50HzHum || report.Spectrum.Has60HzHum

		var (
			severity Severity
			summary  string
		)

		if detected {
			var freqs string

			switch {
			case report.Spectrum.Has50HzHum && report.Spectrum.Has60HzHum:
				freqs = "50Hz and 60Hz"
			case report.Spectrum.Has50HzHum:
				freqs = "50Hz"
			default:
				freqs = "60Hz"
			}

			severity, _ = opts.Hum.Match(report.Spectrum.HumLevelDb)
			if severity == SeverityNone {
				// Detected but below band thresholds: default to mild.
				severity = SeverityMild
			}

			if severity == SeveritySevere {
				summary = fmt.Sprintf("Severe %s hum (%.1f dB)", freqs, report.Spectrum.HumLevelDb)
			} else {
				summary = fmt.Sprintf("%s hum detected (%.1f dB)", freqs, report.Spectrum.HumLevelDb)
			}
		} else {
			severity = SeverityNone
			summary = "No mains hum detected"
		}

		report.HasHum = detected
		report.Issues = append(report.Issues, Issue{
			Check:      CheckHum,
			Detected:   detected,
			Severity:   severity,
			Summary:    summary,
			Confidence: 0.9,
		})
	}

	// Noise Floor
	if report.Spectrum != nil && opts.Checks&CheckNoiseFloor != 0 {
		severity, detected := opts.NoiseFloor.Match(report.Spectrum.NoiseFloorDb)

		var summary string

		switch severity {
		case SeverityNone:
			summary = fmt.Sprintf("Clean recording (noise floor %.1f dB)", report.Spectrum.NoiseFloorDb)
		case SeverityMild:
			summary = fmt.Sprintf("Slightly elevated noise floor (%.1f dB)", report.Spectrum.NoiseFloorDb)
		case SeverityModerate:
			summary = fmt.Sprintf("Elevated noise floor (%.1f dB)", report.Spectrum.NoiseFloorDb)
		case SeveritySevere:
			summary = fmt.Sprintf("High noise floor (%.1f dB)", report.Spectrum.NoiseFloorDb)
		}

		report.HasHighNoiseFloor = detected
		report.Issues = append(report.Issues, Issue{
			Check:      CheckNoiseFloor,
			Detected:   detected,
			Severity:   severity,
			Summary:    summary,
			Confidence: 0.85,
		})
	}

	// Dropouts
	if report.Dropout != nil && opts.Checks&CheckDropouts != 0 {
		total := float64(report.Dropout.DeltaCount + report.Dropout.ZeroRunCount)
		severity, detected := opts.Dropouts.Match(total)

		var summary string

		if severity == SeverityNone {
			summary = "No dropouts or glitches"
		} else {
			summary = fmt.Sprintf(
				"%d discontinuities (%d jumps, %d zero runs; worst: %.1f dB)",
				int(total),
				report.Dropout.DeltaCount,
				report.Dropout.ZeroRunCount,
				report.Dropout.WorstDb,
			)
		}

		report.HasDropouts = detected
		report.Issues = append(report.Issues, Issue{
			Check:      CheckDropouts,
			Detected:   detected,
			Severity:   severity,
			Summary:    summary,
			Confidence: 0.9,
		})
	}

	// Calculate summary stats
	for _, issue := range report.Issues {
		if issue.Detected {
			report.IssueCount++
		}

		if issue.Severity > report.WorstSeverity {
			report.WorstSeverity = issue.Severity
		}
	}
}
