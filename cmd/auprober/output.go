//nolint:wrapcheck
package main

import (
	"fmt"
	"math"
	"os"

	"github.com/farcloser/primordium/format"

	"github.com/januszry/aucommon"
	"github.com/januszry/aucommon/internal/output"
)

// categoryOrder defines the display order for categories (numbered for sorting).
//
//nolint:gochecknoglobals // configuration data, effectively const
var categoryOrder = []string{
	"1. Levels & dynamics",
	"2. Stereo field",
	"3. Noise & interference",
	"4. Digital artifacts",
}

//nolint:gochecknoglobals // configuration data, effectively const
var checkCategories = map[aucommon.Check]string{
	aucommon.CheckTooLoud:          "1. Levels & dynamics",
	aucommon.CheckTooQuiet:         "1. Levels & dynamics",
	aucommon.CheckLoudness:         "1. Levels & dynamics",
	aucommon.CheckDynamicRange:     "1. Levels & dynamics",
	aucommon.CheckClipping:         "1. Levels & dynamics",
	aucommon.CheckInterSamplePeaks: "1. Levels & dynamics",
	aucommon.CheckDCOffset:         "1. Levels & dynamics",

	aucommon.CheckInvertedPhase:    "2. Stereo field",
	aucommon.CheckPhaseIssues:      "2. Stereo field",
	aucommon.CheckChannelImbalance: "2. Stereo field",
	aucommon.CheckFakeStereo:       "2. Stereo field",

	aucommon.CheckHum:        "3. Noise & interference",
	aucommon.CheckNoiseFloor: "3. Noise & interference",

	aucommon.CheckDropouts:       "4. Digital artifacts",
	aucommon.CheckTruncation:     "4. Digital artifacts",
	aucommon.CheckSilencePadding: "4. Digital artifacts",
}

func outputReport(filePath string, report *aucommon.Report, formatName string, debug bool) error {
	formatter, err := format.GetFormatter(formatName)
	if err != nil {
		return err
	}

	var meta map[string]any
	if debug {
		meta = output.ReportToMap(report)
	} else {
		meta = buildFriendlyOutput(report)
	}

	data := &format.Data{
		Object: filePath,
		Meta:   meta,
	}

	return formatter.PrintAll([]*format.Data{data}, os.Stdout)
}

// buildFriendlyOutput creates a user-friendly summary of the report.
func buildFriendlyOutput(report *aucommon.Report) map[string]any {
	meta := map[string]any{
		"summary": fmt.Sprintf("%d issues found (worst: %s)", report.IssueCount, report.WorstSeverity),
	}

	// Group issues by category.
	categoryIssues := make(map[string][]any)

	for _, issue := range report.Issues {
		category, ok := checkCategories[issue.Check]
		if !ok {
			continue
		}

		marker := "  "
		if issue.Detected {
			marker = "!!"
		}

		line := fmt.Sprintf("%s [%s] %s: %s (%.0f%% confidence)",
			marker, issue.Severity, issue.Check, issue.Summary, issue.Confidence*100)

		categoryIssues[category] = append(categoryIssues[category], line)
	}

	// Build ordered issues map.
	if len(categoryIssues) > 0 {
		issues := make(map[string]any)

		for _, cat := range categoryOrder {
			if catIssues, ok := categoryIssues[cat]; ok {
				issues[cat] = catIssues
			}
		}

		meta["issues"] = issues
	}

	// Key properties.
	props := buildProperties(report)
	if len(props) > 0 {
		meta["properties"] = props
	}

	return meta
}

func buildProperties(report *aucommon.Report) map[string]any {
	props := make(map[string]any)

	if r := report.Loudness; r != nil {
		props["loudness"] = fmt.Sprintf("%.1f LUFS (range: %.1f LU)", r.IntegratedLUFS, r.LoudnessRange)
		props["dynamic_range"] = fmt.Sprintf("DR%d", r.DRScore)
	}

	if r := report.TruePeak; r != nil {
		props["true_peak"] = fmt.Sprintf("%.1f dBTP", r.TruePeakDb)
	}

	if r := report.Spectrum; r != nil {
		props["noise_floor"] = fmt.Sprintf("%.1f dB", r.NoiseFloorDb)
	}

	if r := report.Phase; r != nil && len(r.Pairs) > 0 {
		correlation := r.Pairs[0].Correlation
		props["stereo_width"] = fmt.Sprintf("%s (correlation: %.2f)", stereoWidthLabel(correlation), correlation)
		props["mono_compatibility"] = fmt.Sprintf("%.1f dB cancellation", r.CancellationDb)
	}

	if r := report.Balance; r != nil && math.Abs(r.ImbalanceDb) > 0.5 {
		props["channel_imbalance"] = fmt.Sprintf(
			"%.1f dB (%s louder)",
			math.Abs(r.ImbalanceDb),
			imbalanceSide(r.ImbalanceDb),
		)
	}

	return props
}

func stereoWidthLabel(correlation float64) string {
	switch {
	case correlation > 0.95:
		return "Mono/Narrow"
	case correlation > 0.75:
		return "Narrow"
	case correlation > 0.5:
		return "Normal"
	case correlation > 0.2:
		return "Wide"
	default:
		return "Very Wide"
	}
}

func imbalanceSide(imbalanceDb float64) string {
	if imbalanceDb > 0 {
		return "left"
	}

	return "right"
}
