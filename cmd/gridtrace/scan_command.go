package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"gridtrace/internal/batch"
	"gridtrace/internal/logging"
	"gridtrace/internal/preflight"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var opts batchFlags

	cmd := &cobra.Command{
		Use:   "scan <recording>...",
		Short: "Extract grid responses and reaction times from recordings",
		Long: "Classify every frame against the template, decode the highlighted grid cell of\n" +
			"matching frames, and write spans, clicks, and reaction reports per recording.\n" +
			"A recording is a video file or a directory of frame images; a directory of\n" +
			"videos scans each of them.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, ctx, args, batch.ModeFull, &opts)
		},
	}
	opts.register(cmd)
	return cmd
}

func newFramesCommand(ctx *commandContext) *cobra.Command {
	var opts batchFlags

	cmd := &cobra.Command{
		Use:   "frames <recording>...",
		Short: "Write only the template match spans of recordings",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, ctx, args, batch.ModeSpans, &opts)
		},
	}
	opts.register(cmd)
	return cmd
}

type batchFlags struct {
	classifierOverrides
	workers  int
	failFast bool
	json     bool
}

func (f *batchFlags) register(cmd *cobra.Command) {
	f.classifierOverrides.register(cmd)
	cmd.Flags().IntVar(&f.workers, "workers", 0, "Recordings processed concurrently; defaults to batch.workers")
	cmd.Flags().BoolVar(&f.failFast, "fail-fast", false, "Stop after the first failed recording")
	cmd.Flags().BoolVar(&f.json, "json", false, "Output results as JSON")
}

func runBatch(cmd *cobra.Command, ctx *commandContext, args []string, mode batch.Mode, flags *batchFlags) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if flags.workers > 0 {
		cfg.Batch.Workers = flags.workers
	}
	if flags.failFast {
		cfg.Batch.FailFast = true
	}

	runCtx := cmd.Context()
	if runCtx == nil {
		runCtx = context.Background()
	}
	if err := preflight.Err(preflight.RunAll(runCtx, cfg)); err != nil {
		return err
	}

	logger, err := ctx.logger(cmd)
	if err != nil {
		return err
	}
	classifier, threshold, err := flags.build(cmd, cfg)
	if err != nil {
		return err
	}
	paths, err := batch.Discover(cfg, args)
	if err != nil {
		return err
	}

	runnerOpts := []batch.RunnerOption{batch.WithLogger(logger)}
	store, err := ctx.openStore(runCtx, logger)
	if err != nil {
		logger.Warn("run history unavailable", logging.Error(err))
	} else if store != nil {
		defer store.Close()
		runnerOpts = append(runnerOpts, batch.WithStore(store))
	}

	summary, err := batch.NewRunner(cfg, classifier, runnerOpts...).Run(runCtx, paths, batch.Options{Mode: mode, Threshold: threshold})
	if err != nil {
		return err
	}

	if flags.json {
		if err := writeJSON(cmd, scanRecords(summary, mode)); err != nil {
			return err
		}
	} else {
		printSummary(cmd.OutOrStdout(), summary, mode)
	}
	if errors.Is(runCtx.Err(), context.Canceled) {
		return context.Canceled
	}
	return summary.Err()
}

type scanRecord struct {
	Path          string   `json:"path"`
	RunID         string   `json:"run_id"`
	Status        string   `json:"status"`
	Frames        int      `json:"frames"`
	MatchedFrames int      `json:"matched_frames"`
	Trials        int      `json:"trials"`
	Reports       []string `json:"reports,omitempty"`
	DurationMS    int64    `json:"duration_ms"`
	Error         string   `json:"error,omitempty"`
}

func scanRecords(summary batch.Summary, mode batch.Mode) []scanRecord {
	records := make([]scanRecord, 0, len(summary.Results))
	for _, res := range summary.Results {
		rec := scanRecord{
			Path:          res.Path,
			RunID:         res.RunID,
			Status:        string(res.Status),
			Frames:        res.Frames,
			MatchedFrames: res.MatchedFrames,
			Trials:        res.Trials,
			DurationMS:    res.Duration.Milliseconds(),
		}
		if res.Err != nil {
			rec.Error = res.Err.Error()
		} else {
			rec.Reports = []string{res.Reports.Spans}
			if mode == batch.ModeFull {
				rec.Reports = append(rec.Reports, res.Reports.Clicks, res.Reports.Reactions)
			}
		}
		records = append(records, rec)
	}
	return records
}

func printSummary(out io.Writer, summary batch.Summary, mode batch.Mode) {
	headers := []string{"Recording", "Status", "Frames", "Matched", "Trials", "Elapsed"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight}
	if mode == batch.ModeSpans {
		headers = headers[:4]
		aligns = aligns[:4]
	}

	rows := make([][]string, 0, len(summary.Results))
	for _, res := range summary.Results {
		row := []string{
			filepath.Base(res.Path),
			statusLabel(string(res.Status)),
			formatCount(res.Frames),
			formatCount(res.MatchedFrames),
		}
		if mode == batch.ModeFull {
			row = append(row, formatCount(res.Trials), res.Duration.Round(time.Millisecond).String())
		}
		rows = append(rows, row)
	}
	fmt.Fprintln(out, renderTable(headers, rows, aligns))

	for _, res := range summary.Results {
		if res.Err != nil {
			fmt.Fprintf(out, "%s: %v\n", filepath.Base(res.Path), res.Err)
		}
	}
	if failed := summary.Failed(); failed > 0 {
		fmt.Fprintf(out, "%s of %s recordings failed\n", formatCount(failed), formatCount(len(summary.Results)))
		return
	}
	fmt.Fprintf(out, "Reports written for %s recordings\n", formatCount(len(summary.Results)))
}
