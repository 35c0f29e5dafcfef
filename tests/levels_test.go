package tests_test

import (
	"testing"

	"github.com/containerd/nerdctl/mod/tigron/expect"
	"github.com/containerd/nerdctl/mod/tigron/test"

	"github.com/farcloser/agar/pkg/agar"

	"github.com/januszry/aucommon/tests/testutils"
)

func TestClipping(t *testing.T) {
	testCase := testutils.Setup()

	testCase.SubTests = []*test.Case{
		{
			Description: "hard clipped audio detected",
			Setup: func(data test.Data, helpers test.Helpers) {
				data.Labels().Set("file", agar.ClippedHard(data, helpers))
			},
			Command: func(data test.Data, helpers test.Helpers) test.TestableCommand {
				return helpers.Command("process", "-D", "--checks", "clipping", data.Labels().Get("file"))
			},
			Expected: func(_ test.Data, _ test.Helpers) *test.Expected {
				return &test.Expected{
					ExitCode: expect.ExitCodeSuccess,
					Output:   expectIssueDetected("clipping"),
				}
			},
		},
		{
			Description: "clean audio has no clipping",
			Setup: func(data test.Data, helpers test.Helpers) {
				data.Labels().Set("file", agar.Genuine16bit44k(data, helpers))
			},
			Command: func(data test.Data, helpers test.Helpers) test.TestableCommand {
				return helpers.Command("process", "-D", "--checks", "clipping", data.Labels().Get("file"))
			},
			Expected: func(_ test.Data, _ test.Helpers) *test.Expected {
				return &test.Expected{
					ExitCode: expect.ExitCodeSuccess,
					Output:   expectNoIssue("clipping"),
				}
			},
		},
	}

	testCase.Run(t)
}

func TestDynamicRange(t *testing.T) {
	testCase := testutils.Setup()

	testCase.SubTests = []*test.Case{
		{
			Description: "excellent dynamics not flagged",
			Setup: func(data test.Data, helpers test.Helpers) {
				data.Labels().Set("file", agar.DynamicsExcellent(data, helpers))
			},
			Command: func(data test.Data, helpers test.Helpers) test.TestableCommand {
				return helpers.Command("process", "-D", "--checks", "dynamic-range", data.Labels().Get("file"))
			},
			Expected: func(_ test.Data, _ test.Helpers) *test.Expected {
				return &test.Expected{
					ExitCode: expect.ExitCodeSuccess,
					Output:   expectNoIssue("dynamic-range"),
				}
			},
		},
		{
			Description: "brickwalled audio flagged",
			Setup: func(data test.Data, helpers test.Helpers) {
				data.Labels().Set("file", agar.DynamicsFucked(data, helpers))
			},
			Command: func(data test.Data, helpers test.Helpers) test.TestableCommand {
				return helpers.Command("process", "-D", "--checks", "dynamic-range", data.Labels().Get("file"))
			},
			Expected: func(_ test.Data, _ test.Helpers) *test.Expected {
				return &test.Expected{
					ExitCode: expect.ExitCodeSuccess,
					Output:   expectIssueDetected("dynamic-range"),
				}
			},
		},
	}

	testCase.Run(t)
}

// TestInterSamplePeaks is a placeholder for inter-sample peak detection tests.
//
// ISP events require specific inter-sample relationships (near-full-scale
// samples alternating polarity at near-Nyquist frequencies) that ffmpeg's
// synthesis sources do not produce; every generated fixture stays below
// 0 dBTP. A positive test needs a fixture that writes raw PCM samples
// directly.
func TestInterSamplePeaks(t *testing.T) {
	t.Skip("blocked: no agar fixture can generate audio with true peak > 0 dBTP using ffmpeg")
}
