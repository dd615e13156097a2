package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"gridtrace/internal/runstore"
)

const shortIDLength = 8

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent scans from the run history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.requireStore()
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, runRecords(runs))
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			fmt.Fprintln(out, renderRuns(runs))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output runs as JSON")

	cmd.AddCommand(newRunsShowCommand(ctx))
	cmd.AddCommand(newRunsRemoveCommand(ctx))
	return cmd
}

func newRunsShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one run and its per-trial reaction times",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.requireStore()
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := findRun(cmd, store, args[0])
			if err != nil {
				return err
			}
			reactions, err := store.Reactions(cmd.Context(), run.ID)
			if err != nil {
				return err
			}
			if asJSON {
				rec := runRecords([]*runstore.Run{run})[0]
				rec.Reactions = reactions
				return writeJSON(cmd, rec)
			}
			printRun(cmd.OutOrStdout(), run, reactions)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output the run as JSON")
	return cmd
}

func newRunsRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a run from the history",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.requireStore()
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := findRun(cmd, store, args[0])
			if err != nil {
				return err
			}
			if run.Status == runstore.StatusRunning {
				return fmt.Errorf("run %s is still running", shortID(run.ID))
			}
			if _, err := store.Remove(cmd.Context(), run.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed run %s (%s)\n", shortID(run.ID), filepath.Base(run.SourcePath))
			return nil
		},
	}
}

func findRun(cmd *cobra.Command, store *runstore.Store, prefix string) (*runstore.Run, error) {
	run, err := store.FindByPrefix(cmd.Context(), prefix)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, fmt.Errorf("run %q not found", strings.TrimSpace(prefix))
	}
	return run, nil
}

type runRecord struct {
	ID            string                 `json:"id"`
	SourcePath    string                 `json:"source_path"`
	Status        string                 `json:"status"`
	Strategy      string                 `json:"strategy"`
	Frames        int                    `json:"frames"`
	MatchedFrames int                    `json:"matched_frames"`
	Trials        int                    `json:"trials"`
	Error         string                 `json:"error,omitempty"`
	StartedAt     time.Time              `json:"started_at"`
	FinishedAt    *time.Time             `json:"finished_at,omitempty"`
	Reactions     []runstore.ReactionRow `json:"reactions,omitempty"`
}

func runRecords(runs []*runstore.Run) []runRecord {
	records := make([]runRecord, 0, len(runs))
	for _, run := range runs {
		rec := runRecord{
			ID:            run.ID,
			SourcePath:    run.SourcePath,
			Status:        string(run.Status),
			Strategy:      run.Strategy,
			Frames:        run.Frames,
			MatchedFrames: run.MatchedFrames,
			Trials:        run.Trials,
			Error:         run.ErrorMessage,
			StartedAt:     run.StartedAt,
		}
		if !run.FinishedAt.IsZero() {
			finished := run.FinishedAt
			rec.FinishedAt = &finished
		}
		records = append(records, rec)
	}
	return records
}

func renderRuns(runs []*runstore.Run) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			shortID(run.ID),
			filepath.Base(run.SourcePath),
			statusLabel(string(run.Status)),
			run.Strategy,
			formatCount(run.Frames),
			formatCount(run.Trials),
			run.StartedAt.Local().Format("2006-01-02 15:04"),
			formatDuration(run.Duration()),
		})
	}
	return renderTable(
		[]string{"ID", "Recording", "Status", "Strategy", "Frames", "Trials", "Started", "Duration"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignRight},
	)
}

func printRun(out io.Writer, run *runstore.Run, reactions []runstore.ReactionRow) {
	fmt.Fprintf(out, "Run:       %s\n", run.ID)
	fmt.Fprintf(out, "Recording: %s\n", run.SourcePath)
	fmt.Fprintf(out, "Status:    %s\n", statusLabel(string(run.Status)))
	fmt.Fprintf(out, "Strategy:  %s\n", run.Strategy)
	fmt.Fprintf(out, "Frames:    %s (%s matched)\n", formatCount(run.Frames), formatCount(run.MatchedFrames))
	fmt.Fprintf(out, "Started:   %s\n", run.StartedAt.Local().Format(time.RFC3339))
	if d := run.Duration(); d > 0 {
		fmt.Fprintf(out, "Duration:  %s\n", formatDuration(d))
	}
	if run.ErrorMessage != "" {
		fmt.Fprintf(out, "Error:     %s\n", run.ErrorMessage)
	}
	if len(reactions) == 0 {
		return
	}

	rows := make([][]string, 0, len(reactions))
	for _, r := range reactions {
		rows = append(rows, []string{
			strconv.Itoa(r.Trial),
			strconv.Itoa(r.Start),
			strconv.Itoa(r.End),
			strconv.Itoa(r.InitDur),
			strconv.Itoa(r.TotalDur),
			cellLabel(r.FirstX, r.FirstY),
			cellLabel(r.FinalX, r.FinalY),
			strconv.Itoa(r.Clicks),
		})
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, renderTable(
		[]string{"Trial", "Start", "End", "Init", "Total", "First", "Final", "Clicks"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft, alignLeft, alignRight},
	))
}

func shortID(id string) string {
	if len(id) <= shortIDLength {
		return id
	}
	return id[:shortIDLength]
}

func cellLabel(x, y int) string {
	return fmt.Sprintf("(%d,%d)", x, y)
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.Round(100 * time.Millisecond).String()
}
