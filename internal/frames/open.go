package frames

import (
	"context"
	"fmt"
	"os"

	"gridtrace/internal/config"
)

// Sized is implemented by sources that know, or can estimate, their length.
type Sized interface {
	Len() int
}

// Open returns a DirSource for a directory of still frames and an
// FFmpegSource for anything else.
func Open(ctx context.Context, cfg *config.Config, path string) (Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("open recording: %w", err)
	}
	if info.IsDir() {
		return OpenDir(path)
	}
	return OpenVideo(ctx, cfg.Video.FFmpegBinary, cfg.Video.FFprobeBinary, path)
}

// Timed is implemented by sources that know their native frame rate.
type Timed interface {
	FrameRate() float64
}

// FrameRate returns the native frame rate of src, or fallback when src does
// not report a usable one.
func FrameRate(src Source, fallback float64) float64 {
	if timed, ok := src.(Timed); ok {
		if rate := timed.FrameRate(); rate > 0 {
			return rate
		}
	}
	return fallback
}

// Len returns the length of src when it is Sized, or zero.
func Len(src Source) int {
	if sized, ok := src.(Sized); ok {
		return sized.Len()
	}
	return 0
}
