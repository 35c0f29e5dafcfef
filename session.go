// Package aucommon measures the quality of decoded audio streams:
// loudness, true peak, phase, balance, and a set of defect detectors.
//
// Audio is pushed in as it arrives. Open a session for a fixed format,
// Feed it blocks of interleaved float samples, and Finish to get a Report.
// Every meter is single-pass; no sample is retained after its block
// returns from Feed.
package aucommon

import (
	"fmt"

	"github.com/januszry/aucommon/internal/meter/balance"
	"github.com/januszry/aucommon/internal/meter/clipping"
	"github.com/januszry/aucommon/internal/meter/dcoffset"
	"github.com/januszry/aucommon/internal/meter/dropout"
	"github.com/januszry/aucommon/internal/meter/loudness"
	"github.com/januszry/aucommon/internal/meter/phase"
	"github.com/januszry/aucommon/internal/meter/silence"
	"github.com/januszry/aucommon/internal/meter/spectrum"
	"github.com/januszry/aucommon/internal/meter/truepeak"
	"github.com/januszry/aucommon/internal/types"
)

// AudioBlock is one batch of interleaved float samples fed to a session.
type AudioBlock = types.AudioBlock

const (
	minSampleRate = 8000
	maxSampleRate = 384000
	maxChannels   = 8

	// Shortest stream that can be measured at all (one momentary window).
	minDurationMs = 400
)

// Session is one in-progress analysis. Not safe for concurrent use;
// feed blocks from a single goroutine.
type Session struct {
	opts        Options
	sampleRate  int
	numChannels int
	frames      uint64
	finished    bool

	loudness *loudness.Meter
	truePeak *truepeak.Meter
	phase    *phase.Meter
	balance  *balance.Meter
	clipping *clipping.Meter
	dcOffset *dcoffset.Meter
	silence  *silence.Meter
	dropout  *dropout.Meter
	spectrum *spectrum.Meter
}

// Open starts a session for a stream of the given shape. The shape is fixed:
// every block fed later must carry the same sample rate and channel count.
func Open(sampleRate, numChannels int, opts Options) (*Session, error) {
	if sampleRate < minSampleRate || sampleRate > maxSampleRate {
		return nil, fmt.Errorf(
			"%w: sample rate %d outside [%d, %d]",
			ErrInvalidConfig, sampleRate, minSampleRate, maxSampleRate,
		)
	}

	if numChannels < 1 || numChannels > maxChannels {
		return nil, fmt.Errorf(
			"%w: channel count %d outside [1, %d]",
			ErrInvalidConfig, numChannels, maxChannels,
		)
	}

	if opts.Checks == 0 {
		opts = DefaultOptions()
	}

	applyDefaults(&opts)

	if err := validateOptions(opts); err != nil {
		return nil, err
	}

	s := &Session{
		opts:        opts,
		sampleRate:  sampleRate,
		numChannels: numChannels,
	}

	// Instantiate only the meters the requested checks need.
	if opts.Checks&(CheckLoudness|CheckDynamicRange|CheckTooLoud|CheckTooQuiet) != 0 {
		s.loudness = loudness.New(sampleRate, numChannels)
	}

	if opts.Checks&CheckInterSamplePeaks != 0 {
		s.truePeak = truepeak.New(numChannels)
	}

	if numChannels >= 2 {
		if opts.Checks&(CheckInvertedPhase|CheckPhaseIssues|CheckFakeStereo) != 0 {
			s.phase = phase.New(sampleRate, numChannels, phase.Options{
				InversionCutoff: opts.InversionCutoff,
				MinSustainSec:   opts.MinSustainSec,
			})
		}

		if opts.Checks&CheckChannelImbalance != 0 {
			s.balance = balance.New(sampleRate, numChannels, balance.Options{
				ThresholdDb:   opts.ImbalanceThresholdDb,
				MinSustainSec: opts.MinSustainSec,
			})
		}
	}

	if opts.Checks&CheckClipping != 0 {
		s.clipping = clipping.New(numChannels, 0)
	}

	if opts.Checks&CheckDCOffset != 0 {
		s.dcOffset = dcoffset.New(numChannels)
	}

	if opts.Checks&(CheckSilencePadding|CheckTruncation) != 0 {
		s.silence = silence.New(sampleRate, numChannels, silence.DefaultOptions())
	}

	if opts.Checks&CheckDropouts != 0 {
		s.dropout = dropout.New(sampleRate, numChannels, dropout.Options{
			DeltaThreshold: opts.DropoutDeltaThreshold,
		})
	}

	if opts.Checks&(CheckHum|CheckNoiseFloor) != 0 {
		s.spectrum = spectrum.New(sampleRate, numChannels, spectrum.DefaultOptions())
	}

	return s, nil
}

// Feed pushes one block of samples into the session. Blocks may be of any
// length, including empty; sample values outside [-1, 1] are legal and
// represent levels above full scale.
func (s *Session) Feed(block AudioBlock) error {
	if s.finished {
		return fmt.Errorf("%w: session already finished", ErrInvalidState)
	}

	if block.SampleRate != s.sampleRate || block.Channels != s.numChannels {
		return fmt.Errorf(
			"%w: block is %d Hz / %d ch, session is %d Hz / %d ch",
			ErrFormatMismatch, block.SampleRate, block.Channels, s.sampleRate, s.numChannels,
		)
	}

	if len(block.Samples)%s.numChannels != 0 {
		return fmt.Errorf(
			"%w: %d samples is not a whole number of %d-channel frames",
			ErrFormatMismatch, len(block.Samples), s.numChannels,
		)
	}

	if len(block.Samples) == 0 {
		return nil
	}

	s.frames += uint64(block.Frames())

	if s.loudness != nil {
		s.loudness.Process(block.Samples)
	}

	if s.truePeak != nil {
		s.truePeak.Process(block.Samples)
	}

	if s.phase != nil {
		s.phase.Process(block.Samples)
	}

	if s.balance != nil {
		s.balance.Process(block.Samples)
	}

	if s.clipping != nil {
		s.clipping.Process(block.Samples)
	}

	if s.dcOffset != nil {
		s.dcOffset.Process(block.Samples)
	}

	if s.silence != nil {
		s.silence.Process(block.Samples)
	}

	if s.dropout != nil {
		s.dropout.Process(block.Samples)
	}

	if s.spectrum != nil {
		s.spectrum.Process(block.Samples)
	}

	return nil
}

// Frames returns the number of frames fed so far.
func (s *Session) Frames() uint64 {
	return s.frames
}

// Finish closes the session and interprets everything the meters saw.
// The session cannot be fed or finished again afterwards.
func (s *Session) Finish() (*Report, error) {
	if s.finished {
		return nil, fmt.Errorf("%w: session already finished", ErrInvalidState)
	}

	// The session stays open on insufficient data so the caller may keep feeding.
	minFrames := uint64(s.sampleRate) * minDurationMs / 1000
	if s.frames < minFrames {
		return nil, fmt.Errorf(
			"%w: %d frames fed, need at least %d (%dms)",
			ErrInsufficientData, s.frames, minFrames, minDurationMs,
		)
	}

	s.finished = true

	report := &Report{}

	if s.loudness != nil {
		report.Loudness = s.loudness.Result()
	}

	if s.truePeak != nil {
		report.TruePeak = s.truePeak.Result()
	}

	if s.phase != nil {
		report.Phase = s.phase.Result()
	}

	if s.balance != nil {
		report.Balance = s.balance.Result()
	}

	if s.clipping != nil {
		report.Clipping = s.clipping.Result()
	}

	if s.dcOffset != nil {
		report.DCOffset = s.dcOffset.Result()
	}

	if s.silence != nil {
		report.Silence = s.silence.Result()
	}

	if s.dropout != nil {
		report.Dropout = s.dropout.Result()
	}

	if s.spectrum != nil {
		report.Spectrum = s.spectrum.Result()
	}

	interpretReport(report, s.opts)

	return report, nil
}
