package testsupport

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"testing"

	"gridtrace/internal/imageops"
)

// WriteScript writes an executable shell script named name into dir and
// returns its path.
func WriteScript(t testing.TB, dir, name, body string) string {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	target := filepath.Join(dir, name)
	if err := os.WriteFile(target, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write script %s: %v", name, err)
	}
	return target
}

// WriteFrames saves imgs as numbered PNG files in dir.
func WriteFrames(t testing.TB, dir string, imgs []image.Image) {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	for i, img := range imgs {
		path := filepath.Join(dir, fmt.Sprintf("frame_%05d.png", i))
		if err := imageops.Save(path, img); err != nil {
			t.Fatalf("save frame %d: %v", i, err)
		}
	}
}

// RawRGB flattens imgs into packed rgb24 bytes, the layout ffmpeg emits for
// -f rawvideo -pix_fmt rgb24.
func RawRGB(imgs []*image.RGBA) []byte {
	var out []byte
	for _, img := range imgs {
		b := img.Bounds()
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				c := img.RGBAAt(x, y)
				out = append(out, c.R, c.G, c.B)
			}
		}
	}
	return out
}
