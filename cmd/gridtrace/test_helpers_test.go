package main

import (
	"bytes"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"gridtrace/internal/config"
	"gridtrace/internal/grid"
	"gridtrace/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	cfg := testsupport.NewConfig(t, testsupport.WithStrategy(config.StrategyPixel), testsupport.WithStubbedBinaries())

	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		baseDir:    testsupport.BaseDir(cfg),
	}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if env != nil {
		flags = append(flags, "--config", env.configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// writeRecording stores a frame-sequence recording holding two trials: the
// first moves from (0,0) to (1,0) and confirms, the second picks (-1,1).
func (env *cliTestEnv) writeRecording(t *testing.T, name string) string {
	t.Helper()
	cfg := env.cfg
	dir := filepath.Join(env.baseDir, "recordings", name)
	testsupport.WriteFrames(t, dir, []image.Image{
		testsupport.Blank(cfg),
		testsupport.Screen(cfg, grid.Cell{X: 0, Y: 0}),
		testsupport.Screen(cfg, grid.Cell{X: 1, Y: 0}),
		testsupport.Screen(cfg, testsupport.AllLit(cfg)...),
		testsupport.Blank(cfg),
		testsupport.Screen(cfg, grid.Cell{X: -1, Y: 1}),
	})
	return dir
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
