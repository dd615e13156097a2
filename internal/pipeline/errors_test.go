package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"gridtrace/internal/pipeline"
	"gridtrace/internal/runstore"
)

func TestWrapKeepsMarkerAndCause(t *testing.T) {
	cause := errors.New("pipe closed")
	err := pipeline.Wrap(pipeline.ErrDecode, pipeline.StageDecode, "read frame", "frame 12", cause)
	if !errors.Is(err, pipeline.ErrDecode) {
		t.Fatalf("expected ErrDecode marker in %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause in chain of %v", err)
	}
	want := "decode error: decode: read frame: frame 12: pipe closed"
	if err.Error() != want {
		t.Fatalf("unexpected message:\n got %q\nwant %q", err.Error(), want)
	}
}

func TestWrapWithoutDetail(t *testing.T) {
	err := pipeline.Wrap(nil, " ", "", "", nil)
	if !errors.Is(err, pipeline.ErrDecode) {
		t.Fatalf("expected default marker, got %v", err)
	}
	if !strings.HasSuffix(err.Error(), "scan failure") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestFailureStatus(t *testing.T) {
	cases := []struct {
		err  error
		want runstore.Status
	}{
		{pipeline.Wrap(pipeline.ErrInvariant, "scan", "", "", nil), runstore.StatusReview},
		{fmt.Errorf("outer: %w", pipeline.ErrValidation), runstore.StatusReview},
		{pipeline.Wrap(pipeline.ErrDecode, "", "", "", nil), runstore.StatusFailed},
		{pipeline.ErrConfiguration, runstore.StatusFailed},
		{pipeline.Wrap(pipeline.ErrOutput, pipeline.StageReport, "write clicks", "", nil), runstore.StatusFailed},
		{errors.New("plain"), runstore.StatusFailed},
	}
	for _, tc := range cases {
		if got := pipeline.FailureStatus(tc.err); got != tc.want {
			t.Fatalf("FailureStatus(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	if _, ok := pipeline.RunIDFromContext(ctx); ok {
		t.Fatal("expected no run id on empty context")
	}
	ctx = pipeline.WithRunID(ctx, "run-1")
	ctx = pipeline.WithFile(ctx, "/videos/a.mp4")
	ctx = pipeline.WithStage(ctx, "")
	if id, ok := pipeline.RunIDFromContext(ctx); !ok || id != "run-1" {
		t.Fatalf("unexpected run id %q", id)
	}
	if file, ok := pipeline.FileFromContext(ctx); !ok || file != "/videos/a.mp4" {
		t.Fatalf("unexpected file %q", file)
	}
	if _, ok := pipeline.StageFromContext(ctx); ok {
		t.Fatal("empty stage should not be stored")
	}
}
