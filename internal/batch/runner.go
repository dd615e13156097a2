package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"gridtrace/internal/classify"
	"gridtrace/internal/config"
	"gridtrace/internal/frames"
	"gridtrace/internal/grid"
	"gridtrace/internal/logging"
	"gridtrace/internal/pipeline"
	"gridtrace/internal/report"
	"gridtrace/internal/runstore"
	"gridtrace/internal/span"
	"gridtrace/internal/trial"
)

// Mode selects how much of the pipeline runs per recording.
type Mode int

const (
	// ModeFull classifies, decodes the grid, and writes all three reports.
	ModeFull Mode = iota
	// ModeSpans classifies only and writes the span report.
	ModeSpans
)

// ErrLocked is returned when another process holds the output lock.
var ErrLocked = errors.New("output directory is locked by another gridtrace process")

// SourceOpener opens the frame source of a recording.
type SourceOpener func(ctx context.Context, cfg *config.Config, path string) (frames.Source, error)

// Options tune a batch run.
type Options struct {
	Mode Mode
	// Threshold overrides the classifier default when set.
	Threshold *float64
}

// FileResult is the outcome of one recording.
type FileResult struct {
	Path          string
	RunID         string
	Status        runstore.Status
	Frames        int
	MatchedFrames int
	Trials        int
	Reports       report.Files
	Duration      time.Duration
	Err           error
}

// Summary collects the results of a batch in input order.
type Summary struct {
	Results []FileResult
}

// Failed counts recordings that did not complete.
func (s Summary) Failed() int {
	n := 0
	for _, r := range s.Results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// Err returns a combined error when any recording failed.
func (s Summary) Err() error {
	if failed := s.Failed(); failed > 0 {
		return fmt.Errorf("%d of %d recordings failed", failed, len(s.Results))
	}
	return nil
}

// Runner processes recordings with a shared classifier.
type Runner struct {
	cfg        *config.Config
	classifier classify.Classifier
	store      *runstore.Store
	logger     *slog.Logger
	open       SourceOpener
	newID      func() string
}

// RunnerOption customizes a Runner.
type RunnerOption func(*Runner)

// WithStore records every run in store.
func WithStore(store *runstore.Store) RunnerOption {
	return func(r *Runner) { r.store = store }
}

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = logger }
}

// WithSourceOpener replaces frames.Open.
func WithSourceOpener(open SourceOpener) RunnerOption {
	return func(r *Runner) { r.open = open }
}

// NewRunner builds a runner for cfg.
func NewRunner(cfg *config.Config, classifier classify.Classifier, opts ...RunnerOption) *Runner {
	r := &Runner{
		cfg:        cfg,
		classifier: classifier,
		open:       frames.Open,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.NewComponentLogger(r.logger, "batch")
	return r
}

// Run processes paths with the configured number of workers while holding
// the output lock.
func (r *Runner) Run(ctx context.Context, paths []string, opts Options) (Summary, error) {
	if err := r.cfg.EnsureDirectories(); err != nil {
		return Summary{}, err
	}
	lock := flock.New(r.cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return Summary{}, fmt.Errorf("acquire output lock: %w", err)
	}
	if !ok {
		return Summary{}, ErrLocked
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			r.logger.Warn("failed to release output lock", logging.Error(err))
		}
	}()

	r.logger.Info("classifier selected", logging.Args(logging.DecisionAttrs(
		"classifier_strategy",
		string(r.classifier.Strategy()),
		fmt.Sprintf("threshold %g", r.threshold(opts)),
	)...)...)

	files := r.reportFiles(paths)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workers := max(r.cfg.Batch.Workers, 1)
	results := make([]FileResult, len(paths))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for range min(workers, max(len(paths), 1)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = r.process(ctx, paths[idx], files[idx], opts)
				if results[idx].Err != nil && r.cfg.Batch.FailFast {
					cancel()
				}
			}
		}()
	}

feed:
	for idx := range paths {
		select {
		case jobs <- idx:
		case <-ctx.Done():
			for rest := idx; rest < len(paths); rest++ {
				results[rest] = FileResult{Path: paths[rest], Status: runstore.StatusFailed, Err: fmt.Errorf("skipped: %w", context.Cause(ctx))}
			}
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	return Summary{Results: results}, nil
}

// reportFiles assigns every recording its own report files. Recordings that
// share a base name are told apart by their parent directories.
func (r *Runner) reportFiles(paths []string) []report.Files {
	stems := report.UniqueStems(paths)
	files := make([]report.Files, len(paths))
	for i, path := range paths {
		files[i] = report.PathsForStem(r.cfg.Paths.OutputDir, stems[i])
		if stems[i] != report.Stem(path) {
			r.logger.Info("report name disambiguated",
				logging.String("recording", path),
				logging.String("report_stem", stems[i]),
			)
		}
	}
	return files
}

// ProcessFile scans one recording and writes its reports.
func (r *Runner) ProcessFile(ctx context.Context, path string, opts Options) FileResult {
	return r.process(ctx, path, report.PathsFor(r.cfg.Paths.OutputDir, path), opts)
}

func (r *Runner) process(ctx context.Context, path string, files report.Files, opts Options) FileResult {
	started := time.Now()
	result := FileResult{Path: path, RunID: r.newID(), Reports: files}
	if ctx.Err() != nil {
		result.Status = runstore.StatusFailed
		result.Err = fmt.Errorf("skipped: %w", context.Cause(ctx))
		return result
	}
	ctx = pipeline.WithFile(pipeline.WithRunID(ctx, result.RunID), path)
	logger := logging.WithContext(ctx, r.logger)

	if r.store != nil {
		if _, err := r.store.Begin(ctx, result.RunID, path, string(r.classifier.Strategy())); err != nil {
			logger.Warn("run history unavailable", logging.Error(err))
		}
	}

	err := r.scan(ctx, path, opts, &result, logger)
	result.Duration = time.Since(started)
	if err != nil {
		result.Err = err
		result.Status = pipeline.FailureStatus(err)
		logging.ErrorWithContext(logger, "recording failed", "recording_failed",
			logging.Error(err),
			logging.String("status", string(result.Status)),
			logging.Int("frames", result.Frames),
		)
		if r.store != nil {
			if ferr := r.store.Fail(context.WithoutCancel(ctx), result.RunID, result.Status, result.Frames, err.Error()); ferr != nil {
				logger.Warn("failed to record run failure", logging.Error(ferr))
			}
		}
		return result
	}

	result.Status = runstore.StatusCompleted
	logger.Info("recording complete",
		logging.Int("frames", result.Frames),
		logging.Int("matched_frames", result.MatchedFrames),
		logging.Int("trials", result.Trials),
		logging.Duration("elapsed", result.Duration),
	)
	return result
}

func (r *Runner) scan(ctx context.Context, path string, opts Options, result *FileResult, logger *slog.Logger) error {
	src, err := r.open(pipeline.WithStage(ctx, pipeline.StageDecode), r.cfg, path)
	if err != nil {
		return pipeline.Wrap(pipeline.ErrDecode, pipeline.StageDecode, "open source", "", err)
	}
	defer src.Close()

	if opts.Mode == ModeSpans {
		return r.scanSpans(ctx, src, opts, result)
	}

	total := frames.Len(src)
	sampler := logging.NewProgressSampler(10)
	scanLogger := logging.WithContext(pipeline.WithStage(ctx, pipeline.StageScan), logger)
	scanned, err := trial.Scan(ctx, src, r.classifier, grid.NewDecoderFromConfig(r.cfg), trial.Options{
		Threshold:     opts.Threshold,
		Logger:        scanLogger,
		ProgressEvery: 100,
		Progress: func(n int) {
			if sampler.ShouldLog(n, total) {
				scanLogger.Info("scan progress", logging.Int("frames", n), logging.Float64("percent", logging.Percent(n, total)))
			}
		},
	})
	if scanned != nil {
		result.Frames = scanned.Frames
		result.MatchedFrames = scanned.MatchedFrames()
	}
	if err != nil {
		return err
	}

	responses := scanned.Responses()
	reactions := trial.SummarizeAll(responses)
	result.Trials = len(reactions)

	if err := r.writeReports(result.Reports, scanned.Matches, responses, reactions); err != nil {
		return err
	}
	if r.store != nil {
		outcome := runstore.Outcome{Frames: result.Frames, MatchedFrames: result.MatchedFrames, Reactions: reactionRows(reactions)}
		if err := r.store.Complete(ctx, result.RunID, outcome); err != nil {
			logger.Warn("failed to record run", logging.Error(err))
		}
	}
	return nil
}

func (r *Runner) scanSpans(ctx context.Context, src frames.Source, opts Options, result *FileResult) error {
	matches, err := classify.MatchStream(ctx, src, r.classifier, opts.Threshold)
	result.Frames = len(matches)
	for _, m := range matches {
		if m {
			result.MatchedFrames++
		}
	}
	if err != nil {
		return err
	}
	if err := report.WriteFile(result.Reports.Spans, func(w io.Writer) error {
		return report.WriteSpans(w, span.Segment(matches), r.cfg.Video.FPS)
	}); err != nil {
		return pipeline.Wrap(pipeline.ErrOutput, pipeline.StageReport, "write spans", "", err)
	}
	if r.store != nil {
		if err := r.store.Complete(ctx, result.RunID, runstore.Outcome{Frames: result.Frames, MatchedFrames: result.MatchedFrames}); err != nil {
			r.logger.Warn("failed to record run", logging.Error(err))
		}
	}
	return nil
}

func (r *Runner) writeReports(files report.Files, matches []bool, responses trial.Responses, reactions []trial.Reaction) error {
	writes := []struct {
		path  string
		write func(io.Writer) error
	}{
		{files.Spans, func(w io.Writer) error { return report.WriteSpans(w, span.Segment(matches), r.cfg.Video.FPS) }},
		{files.Clicks, func(w io.Writer) error { return report.WriteClicks(w, responses) }},
		{files.Reactions, func(w io.Writer) error { return report.WriteReactions(w, reactions) }},
	}
	for _, item := range writes {
		if err := report.WriteFile(item.path, item.write); err != nil {
			return pipeline.Wrap(pipeline.ErrOutput, pipeline.StageReport, "write report", "", err)
		}
	}
	return nil
}

func (r *Runner) threshold(opts Options) float64 {
	if opts.Threshold != nil {
		return *opts.Threshold
	}
	return r.classifier.Threshold()
}

func reactionRows(reactions []trial.Reaction) []runstore.ReactionRow {
	rows := make([]runstore.ReactionRow, 0, len(reactions))
	for _, rt := range reactions {
		rows = append(rows, runstore.ReactionRow{
			Trial:    rt.Trial,
			Start:    rt.Start,
			End:      rt.End,
			InitDur:  rt.InitDur,
			TotalDur: rt.TotalDur,
			FirstX:   rt.FirstChoice.X,
			FirstY:   rt.FirstChoice.Y,
			FinalX:   rt.FinalChoice.X,
			FinalY:   rt.FinalChoice.Y,
			Clicks:   rt.Clicks,
		})
	}
	return rows
}
