package deps_test

import (
	"context"
	"testing"

	"gridtrace/internal/deps"
	"gridtrace/internal/testsupport"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := testsupport.WriteScript(t, binDir, "present", "echo 'present version 6.1 Copyright'\necho second line\n")
	silent := testsupport.WriteScript(t, binDir, "silent", "exit 3\n")
	reqs := []deps.Requirement{
		{Name: "Present", Command: present},
		{Name: "Silent", Command: silent},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Unset", Command: "  "},
	}

	results := deps.CheckBinaries(context.Background(), reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}

	if !results[0].Available || results[0].Path != present || results[0].Detail != "" {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Version != "present version 6.1 Copyright" {
		t.Fatalf("unexpected version %q", results[0].Version)
	}
	if !results[1].Available || results[1].Version != "" {
		t.Fatalf("expected silent binary available without version, got %#v", results[1])
	}
	if results[2].Available || results[2].Detail == "" || results[2].Command != "clearly-not-present-binary" {
		t.Fatalf("expected missing binary to be unavailable, got %#v", results[2])
	}
	if results[3].Available || results[3].Detail != "command not configured" {
		t.Fatalf("expected unset command to be reported, got %#v", results[3])
	}
}

func TestVideoRequirements(t *testing.T) {
	reqs := deps.Video("/opt/ffmpeg/bin/ffmpeg", "ffprobe")
	if len(reqs) != 2 || reqs[0].Command != "/opt/ffmpeg/bin/ffmpeg" || reqs[1].Command != "ffprobe" {
		t.Fatalf("unexpected requirements %+v", reqs)
	}
	for _, req := range reqs {
		if !req.Optional {
			t.Fatalf("%s should be optional for frame-sequence input", req.Name)
		}
	}
}
