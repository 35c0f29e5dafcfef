package tests_test

import (
	"testing"

	"github.com/containerd/nerdctl/mod/tigron/expect"
	"github.com/containerd/nerdctl/mod/tigron/test"

	"github.com/farcloser/agar/pkg/agar"

	"github.com/januszry/aucommon/tests/testutils"
)

func TestFakeStereo(t *testing.T) {
	testCase := testutils.Setup()

	testCase.SubTests = []*test.Case{
		{
			Description: "mono duplicated to stereo detected",
			Setup: func(data test.Data, helpers test.Helpers) {
				data.Labels().Set("file", agar.FakeStereoMonoDuplicate(data, helpers))
			},
			Command: func(data test.Data, helpers test.Helpers) test.TestableCommand {
				return helpers.Command("process", "-D", "--checks", "fake-stereo", data.Labels().Get("file"))
			},
			Expected: func(_ test.Data, _ test.Helpers) *test.Expected {
				return &test.Expected{
					ExitCode: expect.ExitCodeSuccess,
					Output:   expectIssue("fake-stereo", "moderate"),
				}
			},
		},
		{
			Description: "true stereo not flagged",
			Setup: func(data test.Data, helpers test.Helpers) {
				data.Labels().Set("file", agar.TrueStereoDifferentChannels(data, helpers))
			},
			Command: func(data test.Data, helpers test.Helpers) test.TestableCommand {
				return helpers.Command("process", "-D", "--checks", "fake-stereo", data.Labels().Get("file"))
			},
			Expected: func(_ test.Data, _ test.Helpers) *test.Expected {
				return &test.Expected{
					ExitCode: expect.ExitCodeSuccess,
					Output:   expectNoIssue("fake-stereo"),
				}
			},
		},
	}

	testCase.Run(t)
}

func TestInvertedPhase(t *testing.T) {
	testCase := testutils.Setup()

	testCase.SubTests = []*test.Case{
		{
			Description: "sustained polarity inversion detected",
			Setup: func(data test.Data, helpers test.Helpers) {
				data.Labels().Set("file", agar.PhaseCancellationInverted(data, helpers))
			},
			Command: func(data test.Data, helpers test.Helpers) test.TestableCommand {
				return helpers.Command("process", "-D", "--checks", "inverted-phase", data.Labels().Get("file"))
			},
			Expected: func(_ test.Data, _ test.Helpers) *test.Expected {
				return &test.Expected{
					ExitCode: expect.ExitCodeSuccess,
					Output:   expectIssue("inverted-phase", "severe"),
				}
			},
		},
		{
			Description: "normal stereo has no inverted phase",
			Setup: func(data test.Data, helpers test.Helpers) {
				data.Labels().Set("file", agar.TrueStereoDifferentChannels(data, helpers))
			},
			Command: func(data test.Data, helpers test.Helpers) test.TestableCommand {
				return helpers.Command("process", "-D", "--checks", "inverted-phase", data.Labels().Get("file"))
			},
			Expected: func(_ test.Data, _ test.Helpers) *test.Expected {
				return &test.Expected{
					ExitCode: expect.ExitCodeSuccess,
					Output:   expectNoIssue("inverted-phase"),
				}
			},
		},
	}

	testCase.Run(t)
}

func TestPhaseIssues(t *testing.T) {
	testCase := testutils.Setup()

	testCase.SubTests = []*test.Case{
		{
			Description: "phase cancellation detected",
			Setup: func(data test.Data, helpers test.Helpers) {
				data.Labels().Set("file", agar.PhaseCancellationInverted(data, helpers))
			},
			Command: func(data test.Data, helpers test.Helpers) test.TestableCommand {
				return helpers.Command("process", "-D", "--checks", "phase-issues", data.Labels().Get("file"))
			},
			Expected: func(_ test.Data, _ test.Helpers) *test.Expected {
				return &test.Expected{
					ExitCode: expect.ExitCodeSuccess,
					Output:   expectIssueDetected("phase-issues"),
				}
			},
		},
		{
			Description: "correlated stereo has no phase issues",
			Setup: func(data test.Data, helpers test.Helpers) {
				data.Labels().Set("file", agar.Genuine16bit44k(data, helpers))
			},
			Command: func(data test.Data, helpers test.Helpers) test.TestableCommand {
				return helpers.Command("process", "-D", "--checks", "phase-issues", data.Labels().Get("file"))
			},
			Expected: func(_ test.Data, _ test.Helpers) *test.Expected {
				return &test.Expected{
					ExitCode: expect.ExitCodeSuccess,
					Output:   expectNoIssue("phase-issues"),
				}
			},
		},
	}

	testCase.Run(t)
}

func TestChannelImbalance(t *testing.T) {
	testCase := testutils.Setup()

	testCase.SubTests = []*test.Case{
		{
			Description: "left-heavy imbalance detected",
			Setup: func(data test.Data, helpers test.Helpers) {
				data.Labels().Set("file", agar.ChannelImbalanceLeft(data, helpers))
			},
			Command: func(data test.Data, helpers test.Helpers) test.TestableCommand {
				return helpers.Command("process", "-D", "--checks", "channel-imbalance", data.Labels().Get("file"))
			},
			Expected: func(_ test.Data, _ test.Helpers) *test.Expected {
				return &test.Expected{
					ExitCode: expect.ExitCodeSuccess,
					Output:   expectIssueDetected("channel-imbalance"),
				}
			},
		},
		{
			Description: "balanced stereo not flagged",
			Setup: func(data test.Data, helpers test.Helpers) {
				data.Labels().Set("file", agar.TrueStereoDifferentChannels(data, helpers))
			},
			Command: func(data test.Data, helpers test.Helpers) test.TestableCommand {
				return helpers.Command("process", "-D", "--checks", "channel-imbalance", data.Labels().Get("file"))
			},
			Expected: func(_ test.Data, _ test.Helpers) *test.Expected {
				return &test.Expected{
					ExitCode: expect.ExitCodeSuccess,
					Output:   expectNoIssue("channel-imbalance"),
				}
			},
		},
	}

	testCase.Run(t)
}
