package trial

import (
	"context"
	"errors"
	"image"
	"log/slog"

	"gridtrace/internal/classify"
	"gridtrace/internal/frames"
	"gridtrace/internal/grid"
	"gridtrace/internal/logging"
	"gridtrace/internal/pipeline"
)

// Observation records the cell selected on one matching frame.
type Observation struct {
	Trial int
	Frame int
	Cell  grid.Cell
}

// Scanner holds the state of one pass over a recording.
type Scanner struct {
	decoder *grid.Decoder
	trial   int
	prev    bool
	matches []bool
	obs     []Observation
}

// NewScanner starts a scan with a fresh decoder state.
func NewScanner(decoder *grid.Decoder) *Scanner {
	decoder.Reset()
	return &Scanner{decoder: decoder}
}

// Observe feeds one classified frame. Frames must arrive in index order.
// A decode failure leaves the scanner unchanged except for the match flag.
func (s *Scanner) Observe(frame int, matched bool, img image.Image) error {
	s.matches = append(s.matches, matched)
	rising := matched && !s.prev
	s.prev = matched
	if !matched {
		return nil
	}
	if rising {
		s.trial++
	}
	cell, err := s.decoder.Decode(frame, img)
	if err != nil {
		return err
	}
	s.obs = append(s.obs, Observation{Trial: s.trial, Frame: frame, Cell: cell})
	return nil
}

// Matches returns the per-frame match flags seen so far.
func (s *Scanner) Matches() []bool {
	return s.matches
}

// Observations returns the observations collected so far.
func (s *Scanner) Observations() []Observation {
	return s.obs
}

// Trials returns the number of trials opened so far.
func (s *Scanner) Trials() int {
	return s.trial
}

// Options tune Scan.
type Options struct {
	// Threshold overrides the classifier's default when set.
	Threshold *float64
	Logger    *slog.Logger
	// Progress, when set, is called after every ProgressEvery frames.
	Progress      func(frames int)
	ProgressEvery int
}

// ScanResult is the outcome of a scan. After a failed scan it holds the
// frames processed before the failure.
type ScanResult struct {
	Frames       int
	Matches      []bool
	Observations []Observation
}

// MatchedFrames counts frames that matched the template.
func (r *ScanResult) MatchedFrames() int {
	n := 0
	for _, m := range r.Matches {
		if m {
			n++
		}
	}
	return n
}

// Responses reconstructs the trial timelines of the scan.
func (r *ScanResult) Responses() Responses {
	return Reconstruct(r.Observations)
}

// Scan classifies and decodes every frame of src.
func Scan(ctx context.Context, src frames.Source, c classify.Classifier, decoder *grid.Decoder, opts Options) (*ScanResult, error) {
	logger := logging.NewComponentLogger(opts.Logger, "scan")
	scanner := NewScanner(decoder)
	result := &ScanResult{}
	snapshot := func() *ScanResult {
		result.Matches = scanner.Matches()
		result.Observations = scanner.Observations()
		return result
	}

	for {
		frame, err := src.Next(ctx)
		if errors.Is(err, frames.ErrExhausted) {
			break
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return snapshot(), ctxErr
			}
			return snapshot(), pipeline.Wrap(pipeline.ErrDecode, pipeline.StageDecode, "read frame", "", err)
		}

		matched, err := classify.Matches(c, frame.Image, opts.Threshold)
		if err != nil {
			return snapshot(), err
		}
		before := scanner.Trials()
		if err := scanner.Observe(frame.Index, matched, frame.Image); err != nil {
			var invErr *grid.InvariantError
			if errors.As(err, &invErr) {
				logging.WarnWithContext(logger, "grid invariant violated", "grid_invariant",
					logging.Int("frame", invErr.Frame),
					logging.Int("lit_cells", invErr.Lit),
					logging.String(logging.FieldErrorHint, "check grid geometry and brightness in the config"),
					logging.String(logging.FieldImpact, "recording stops here and is marked for review"),
				)
				return snapshot(), pipeline.Wrap(pipeline.ErrInvariant, pipeline.StageScan, "resolve cell", "", err)
			}
			return snapshot(), err
		}
		if scanner.Trials() != before {
			logger.Debug("trial started", logging.Int("trial", scanner.Trials()), logging.Int("frame", frame.Index))
		}
		result.Frames++
		if opts.Progress != nil && opts.ProgressEvery > 0 && result.Frames%opts.ProgressEvery == 0 {
			opts.Progress(result.Frames)
		}
	}
	return snapshot(), nil
}
