package main

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"gridtrace/internal/preflight"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Template", statusError, "missing", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Template:", "[ERROR] missing")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Template", statusOK, "ready", true)
	if !strings.HasPrefix(got, ansiGreen) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestPreflightLines(t *testing.T) {
	lines := preflightLines([]preflight.Result{
		{Name: "Template", Passed: true, Detail: "ok"},
		{Name: "FFmpeg", Optional: true, Detail: "binary \"ffmpeg\" not found"},
		{Name: "Output directory", Detail: "does not exist"},
	}, false)
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[2], "[OK] ok") {
		t.Fatalf("expected ok line, got %q", lines[2])
	}
	if !strings.Contains(lines[3], "[WARN]") {
		t.Fatalf("expected warn for optional failure, got %q", lines[3])
	}
	if !strings.Contains(lines[4], "[ERROR] does not exist") {
		t.Fatalf("expected error line, got %q", lines[4])
	}
}

func TestFormatting(t *testing.T) {
	if got := formatCount(1234567); got != "1,234,567" {
		t.Fatalf("formatCount = %q", got)
	}
	if got := statusLabel("review"); got != "Review" {
		t.Fatalf("statusLabel = %q", got)
	}
	if got := shortID("0123456789abcdef"); got != "01234567" {
		t.Fatalf("shortID = %q", got)
	}
	table := renderTable([]string{"A", "B"}, [][]string{{"1"}, {"2", "3", "extra"}}, []columnAlignment{alignLeft, alignRight})
	if strings.Contains(table, "extra") || !strings.Contains(table, "3") {
		t.Fatalf("unexpected table:\n%s", table)
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}
