package fileutil

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.csv")
	err := WriteAtomic(path, func(w io.Writer) error {
		_, err := io.WriteString(w, "i,from,to\n")
		return err
	})
	if err != nil {
		t.Fatalf("WriteAtomic failed: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "i,from,to\n" {
		t.Fatalf("content mismatch: %q", got)
	}
}

func TestWriteAtomicKeepsOldFileOnError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")
	if err := os.WriteFile(path, []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}
	boom := errors.New("boom")
	err := WriteAtomic(path, func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected write error, got %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "old" {
		t.Fatalf("expected old content, got %q", got)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected temp file cleanup, found %d entries", len(entries))
	}
}

func TestReplaceExt(t *testing.T) {
	cases := map[string]string{
		"/videos/session 1.mp4": "session 1.spans.csv",
		"clip":                  "clip.spans.csv",
		"/a/b.tar.mkv":          "b.tar.spans.csv",
	}
	for in, want := range cases {
		if got := ReplaceExt(in, ".spans.csv"); got != want {
			t.Fatalf("ReplaceExt(%q) = %q, want %q", in, got, want)
		}
	}
}
