package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"clipper/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.WorkDir = filepath.Join(base, "work")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.Paths.OverlayClip = filepath.Join(base, "assets", "overlay.mp4")
	cfgVal.Paths.FontFile = filepath.Join(base, "assets", "caption.ttf")
	cfgVal.Transcription.APIKey = "test"

	for _, dir := range []string{cfgVal.Paths.WorkDir, cfgVal.Paths.LogDir, filepath.Join(base, "assets")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}
	for _, asset := range []string{cfgVal.Paths.OverlayClip, cfgVal.Paths.FontFile} {
		if err := os.WriteFile(asset, []byte("asset"), 0o644); err != nil {
			t.Fatalf("write asset %s: %v", asset, err)
		}
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithAPIKey sets the transcription API key on the test config.
func WithAPIKey(key string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Transcription.APIKey = key
	}
}

// WithSegmentWorkers sets the segment worker count on the test config.
func WithSegmentWorkers(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Workflow.SegmentWorkers = n
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// points the ffmpeg config section at them. If names is empty, ffmpeg and
// ffprobe are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
			switch name {
			case "ffmpeg":
				b.cfg.FFmpeg.FFmpegBinary = target
			case "ffprobe":
				b.cfg.FFmpeg.FFprobeBinary = target
			}
		}
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.WorkDir)
}
