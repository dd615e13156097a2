package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestNewFanoutHandlerCollapses(t *testing.T) {
	if _, ok := newFanoutHandler(nil, nil).(NoopHandler); !ok {
		t.Fatal("expected NoopHandler for all nil handlers")
	}
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, nil)
	if newFanoutHandler(nil, inner) != inner {
		t.Fatal("expected single handler to be returned unwrapped")
	}
}

func TestFanoutHandlerRespectsEachLevel(t *testing.T) {
	var info, debug bytes.Buffer
	h := TeeHandler(
		slog.NewTextHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewTextHandler(&debug, &slog.HandlerOptions{Level: slog.LevelDebug}),
	)
	logger := slog.New(h).With("run_id", "abc")
	logger.Debug("detail")
	logger.Info("summary")

	if strings.Contains(info.String(), "detail") || !strings.Contains(info.String(), "summary") {
		t.Fatalf("info handler got %q", info.String())
	}
	if !strings.Contains(debug.String(), "detail") || !strings.Contains(debug.String(), "run_id=abc") {
		t.Fatalf("debug handler got %q", debug.String())
	}
	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("expected fanout to be enabled when any handler is")
	}
}
