package logging

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"strings"
	"time"
)

// newJSONHandler writes one JSON object per record with "ts", lowercase
// levels, and "file:line" sources. Durations are written in seconds and
// non-finite scores as strings, since JSON numbers cannot hold +Inf.
func newJSONHandler(w io.Writer, lvl slog.Leveler, addSource bool) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       lvl,
		AddSource:   addSource,
		ReplaceAttr: replaceJSONAttr,
	})
}

func replaceJSONAttr(_ []string, attr slog.Attr) slog.Attr {
	switch attr.Key {
	case slog.TimeKey:
		attr.Key = "ts"
		if attr.Value.Kind() == slog.KindTime {
			attr.Value = slog.StringValue(attr.Value.Time().UTC().Format(time.RFC3339))
		}
		return attr
	case slog.LevelKey:
		attr.Value = slog.StringValue(strings.ToLower(attr.Value.String()))
		return attr
	case slog.SourceKey:
		if src, ok := attr.Value.Any().(*slog.Source); ok && src != nil {
			attr.Value = slog.StringValue(fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line))
		}
		return attr
	}

	switch attr.Value.Kind() {
	case slog.KindDuration:
		attr.Value = slog.Float64Value(roundMillis(attr.Value.Duration()).Seconds())
	case slog.KindFloat64:
		if f := attr.Value.Float64(); math.IsInf(f, 0) || math.IsNaN(f) {
			attr.Value = slog.StringValue(formatFloat(f))
		}
	}
	return attr
}
