package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clipper/internal/config"
	"clipper/internal/queue"
)

func runCLI(t *testing.T, args []string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// writeTestConfig creates a valid config file pointing at temp directories
// and returns its path.
func writeTestConfig(t *testing.T) string {
	t.Helper()

	base := t.TempDir()
	path := filepath.Join(base, "config.toml")
	content := `[paths]
work_dir = "` + filepath.Join(base, "work") + `"
log_dir = "` + filepath.Join(base, "logs") + `"

[transcription]
api_key = "test"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	out, err := runCLI(t, []string{"config", "init", "--path", target})
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, "Wrote sample configuration") {
		t.Fatalf("unexpected output: %q", out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(target, []byte("# existing"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := runCLI(t, []string{"config", "init", "--path", target})
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected overwrite refusal, got %v", err)
	}
}

func TestQueueListEmpty(t *testing.T) {
	cfgPath := writeTestConfig(t)
	out, err := runCLI(t, []string{"--config", cfgPath, "queue", "list"})
	if err != nil {
		t.Fatalf("queue list: %v", err)
	}
	if !strings.Contains(out, "Queue is empty") {
		t.Fatalf("unexpected output: %q", out)
	}
}

// seedJob opens the queue database behind a config file and inserts one job.
func seedJob(t *testing.T, cfgPath string) *queue.Job {
	t.Helper()

	cfg, _, _, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	job, err := store.NewJob(context.Background(), "/tmp/upload.mp4", t.TempDir())
	if err != nil {
		t.Fatalf("seed job: %v", err)
	}
	return job
}

func TestQueueRemoveByToken(t *testing.T) {
	cfgPath := writeTestConfig(t)
	job := seedJob(t, cfgPath)

	out, err := runCLI(t, []string{"--config", cfgPath, "queue", "remove", job.Token})
	if err != nil {
		t.Fatalf("queue remove: %v", err)
	}
	if !strings.Contains(out, "Removed job") {
		t.Fatalf("unexpected output: %q", out)
	}

	out, err = runCLI(t, []string{"--config", cfgPath, "queue", "list"})
	if err != nil {
		t.Fatalf("queue list: %v", err)
	}
	if !strings.Contains(out, "Queue is empty") {
		t.Fatalf("job still listed after remove: %q", out)
	}
}

func TestQueueRemoveUnknownToken(t *testing.T) {
	cfgPath := writeTestConfig(t)
	_, err := runCLI(t, []string{"--config", cfgPath, "queue", "remove", "no-such-token"})
	if err == nil || !strings.Contains(err.Error(), "no job with token") {
		t.Fatalf("expected unknown token error, got %v", err)
	}
}

func TestQueueClearReportsCount(t *testing.T) {
	cfgPath := writeTestConfig(t)
	out, err := runCLI(t, []string{"--config", cfgPath, "queue", "clear"})
	if err != nil {
		t.Fatalf("queue clear: %v", err)
	}
	if !strings.Contains(out, "Removed 0 jobs") {
		t.Fatalf("unexpected output: %q", out)
	}
}
