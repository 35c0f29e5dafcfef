// Package output provides shared report serialization for aucommon JSON output.
package output

import (
	"fmt"

	"github.com/januszry/aucommon"
	"github.com/januszry/aucommon/internal/types"
)

// ReportToMap converts a finished report into the canonical map structure
// used for JSON and JSONL serialization.
func ReportToMap(report *aucommon.Report) map[string]any {
	meta := map[string]any{
		"summary": map[string]any{
			"issue_count":    report.IssueCount,
			"worst_severity": report.WorstSeverity.String(),
		},
	}

	// Issues.
	issues := make([]any, 0, len(report.Issues))
	for _, issue := range report.Issues {
		issues = append(issues, map[string]any{
			"check":      issue.Check.String(),
			"detected":   issue.Detected,
			"severity":   issue.Severity.String(),
			"summary":    issue.Summary,
			"confidence": issue.Confidence,
		})
	}

	meta["issues"] = issues

	// Raw meter results.
	if r := report.Loudness; r != nil {
		meta["loudness"] = map[string]any{
			"integrated_lufs": r.IntegratedLUFS,
			"short_term_max":  r.ShortTermMax,
			"momentary_max":   r.MomentaryMax,
			"loudness_range":  r.LoudnessRange,
			"dr_score":        r.DRScore,
			"dr_value":        r.DRValue,
			"peak_db":         r.PeakDb,
			"rms_db":          r.RmsDb,
			"frames":          r.Frames,
		}
	}

	if r := report.TruePeak; r != nil {
		meta["true_peak"] = map[string]any{
			"true_peak_db":   r.TruePeakDb,
			"sample_peak_db": r.SamplePeakDb,
			"isp_count":      r.ISPCount,
			"isp_max_db":     r.ISPMaxDb,
			"frames":         r.Frames,
		}
	}

	if r := report.Phase; r != nil {
		meta["phase"] = PhaseToMap(r)
	}

	if r := report.Balance; r != nil {
		meta["balance"] = map[string]any{
			"channel_rms_db": r.ChannelRmsDb,
			"imbalance_db":   r.ImbalanceDb,
			"worst_delta_db": r.WorstDeltaDb,
			"sustained":      r.Sustained,
			"sustain_sec":    r.SustainSec,
			"frames":         r.Frames,
		}
	}

	if r := report.Clipping; r != nil {
		meta["clipping"] = ClippingToMap(r)
	}

	if r := report.DCOffset; r != nil {
		meta["dc_offset"] = map[string]any{
			"offset":    r.Offset,
			"offset_db": r.OffsetDb,
			"channels":  r.Channels,
			"samples":   r.Samples,
		}
	}

	if r := report.Silence; r != nil {
		meta["silence"] = SilenceToMap(r)
	}

	if r := report.Dropout; r != nil {
		meta["dropouts"] = DropoutToMap(r)
	}

	if r := report.Spectrum; r != nil {
		meta["spectrum"] = map[string]any{
			"has_50hz_hum":   r.Has50HzHum,
			"has_60hz_hum":   r.Has60HzHum,
			"hum_level_db":   r.HumLevelDb,
			"noise_floor_db": r.NoiseFloorDb,
			"windows":        r.Windows,
			"frames":         r.Frames,
		}
	}

	return meta
}

// PhaseToMap converts phase analysis results to a map.
func PhaseToMap(result *types.PhaseResult) map[string]any {
	pairs := make([]any, 0, len(result.Pairs))
	for _, pair := range result.Pairs {
		pairs = append(pairs, map[string]any{
			"channel_a":   pair.ChannelA,
			"channel_b":   pair.ChannelB,
			"correlation": pair.Correlation,
			"window_min":  pair.WindowMin,
			"inverted":    pair.Inverted,
			"sustain_sec": pair.SustainSec,
		})
	}

	return map[string]any{
		"pairs":           pairs,
		"difference_db":   result.DifferenceDb,
		"mono_sum_db":     result.MonoSumDb,
		"stereo_rms_db":   result.StereoRmsDb,
		"cancellation_db": result.CancellationDb,
		"frames":          result.Frames,
	}
}

// ClippingToMap converts clipping results to a map.
func ClippingToMap(result *types.ClippingResult) map[string]any {
	channels := make([]any, 0, len(result.Channels))
	for i, ch := range result.Channels {
		channels = append(channels, map[string]any{
			"channel":         i,
			"events":          ch.Events,
			"clipped_samples": ch.ClippedSamples,
			"longest_run":     ch.LongestRun,
		})
	}

	return map[string]any{
		"events":          result.Events,
		"clipped_samples": result.ClippedSamples,
		"longest_run":     result.LongestRun,
		"samples":         result.Samples,
		"channels":        channels,
	}
}

// SilenceToMap converts silence results to a map.
func SilenceToMap(result *types.SilenceResult) map[string]any {
	segments := make([]any, 0, len(result.Segments))
	for _, seg := range result.Segments {
		segments = append(segments, map[string]any{
			"start_sec":    seg.StartSec,
			"end_sec":      seg.EndSec,
			"duration_sec": seg.DurationSec,
			"rms_db":       seg.RmsDb,
		})
	}

	return map[string]any{
		"total_duration": result.TotalDuration,
		"leading_sec":    result.LeadingSec,
		"trailing_sec":   result.TrailingSec,
		"total_silence":  result.TotalSilence,
		"final_rms_db":   result.FinalRmsDb,
		"frames":         result.Frames,
		"segments":       segments,
	}
}

// DropoutToMap converts dropout results to a map.
func DropoutToMap(result *types.DropoutResult) map[string]any {
	events := make([]any, 0, len(result.Events))
	for _, entry := range result.Events {
		event := map[string]any{
			"time_sec": entry.TimeSec,
			"channel":  entry.Channel,
			"type":     entry.Type.String(),
			"severity": fmt.Sprintf("%.4f", entry.Severity),
		}
		if entry.Type == types.DropoutZeroRun {
			event["duration_ms"] = entry.DurationMs
		}

		events = append(events, event)
	}

	return map[string]any{
		"delta_count":    result.DeltaCount,
		"zero_run_count": result.ZeroRunCount,
		"worst_db":       result.WorstDb,
		"frames":         result.Frames,
		"events":         events,
	}
}
