package logging

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"
)

// attrString renders v without quoting, for the bracketed subject fields.
func attrString(v slog.Value) string {
	return renderValue(v)
}

// formatValue renders v for a key=value pair on a console line.
func formatValue(v slog.Value) string {
	s := renderValue(v)
	if needsQuotes(s) {
		return strconv.Quote(s)
	}
	return s
}

func renderValue(v slog.Value) string {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindFloat64:
		return formatFloat(v.Float64())
	case slog.KindDuration:
		return roundMillis(v.Duration()).String()
	case slog.KindTime:
		return formatTimestamp(v.Time())
	case slog.KindAny:
		switch x := v.Any().(type) {
		case error:
			return x.Error()
		case fmt.Stringer:
			return x.String()
		default:
			return fmt.Sprint(x)
		}
	default:
		return v.String()
	}
}

// formatFloat keeps scores short: 15300, 0.0042, +Inf.
func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "+Inf"
	case math.IsInf(f, -1):
		return "-Inf"
	case math.IsNaN(f):
		return "NaN"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Scan and run timings below a millisecond are noise.
func roundMillis(d time.Duration) time.Duration {
	if d < time.Millisecond && d > -time.Millisecond {
		return d
	}
	return d.Round(time.Millisecond)
}

func needsQuotes(s string) bool {
	return s == "" || strings.ContainsFunc(s, func(r rune) bool {
		return r <= ' ' || r == '=' || r == '"'
	})
}
