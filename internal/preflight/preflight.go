package preflight

import (
	"context"
	"fmt"
	"strings"

	"gridtrace/internal/config"
	"gridtrace/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	// Optional results do not block a scan when they fail.
	Optional bool
	Detail   string
}

// RunAll executes all preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
		CheckTemplate(cfg),
		CheckLayout(cfg),
	}
	for _, status := range deps.CheckBinaries(ctx, deps.Video(cfg.Video.FFmpegBinary, cfg.Video.FFprobeBinary)) {
		results = append(results, fromStatus(status))
	}
	return results
}

// Blocking returns the failed results that are not optional.
func Blocking(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed && !r.Optional {
			out = append(out, r)
		}
	}
	return out
}

// Err summarizes blocking failures as an error.
func Err(results []Result) error {
	blocking := Blocking(results)
	if len(blocking) == 0 {
		return nil
	}
	parts := make([]string, 0, len(blocking))
	for _, r := range blocking {
		parts = append(parts, fmt.Sprintf("%s: %s", r.Name, r.Detail))
	}
	return fmt.Errorf("preflight failed: %s", strings.Join(parts, "; "))
}

func fromStatus(status deps.Status) Result {
	result := Result{Name: status.Name, Passed: status.Available, Optional: status.Optional}
	switch {
	case !status.Available:
		result.Detail = status.Detail + " (video input unavailable)"
	case status.Version != "":
		result.Detail = status.Version
	default:
		result.Detail = status.Path
	}
	return result
}
