package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"clipper/internal/logging"
	"clipper/internal/media/filtergraph"
	"clipper/internal/services"
)

// Segment file naming. Zero-padded indexes keep lexicographic order equal to
// sequence order, which the pipeline relies on end to end.
const (
	SegmentPattern   = "segment_%03d.mp4"
	SegmentGlob      = "segment_*.mp4"
	ProcessedPattern = "processed_segment_%03d.mp4"
)

// Engine invokes the media engine binaries.
type Engine struct {
	ffmpegBin      string
	ffprobeBin     string
	segmentSeconds int
	logger         *slog.Logger
}

// New constructs an engine with explicit binary paths.
func New(ffmpegBin, ffprobeBin string, segmentSeconds int, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	if segmentSeconds <= 0 {
		segmentSeconds = 60
	}
	return &Engine{
		ffmpegBin:      ffmpegBin,
		ffprobeBin:     ffprobeBin,
		segmentSeconds: segmentSeconds,
		logger:         logging.WithComponent(logger, "engine"),
	}
}

// Available reports whether the configured ffmpeg binary can be resolved.
func (e *Engine) Available() bool {
	_, err := exec.LookPath(e.ffmpegBin)
	return err == nil
}

// Split cuts the input into fixed-duration chunks via stream copy. Segment
// boundaries land on the nearest keyframe rather than exact multiples of the
// target duration; that slack is inherent to stream copy and deliberate.
func (e *Engine) Split(ctx context.Context, inputPath, outputDir string) error {
	outputTemplate := filepath.Join(outputDir, SegmentPattern)
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", inputPath,
		"-c", "copy",
		"-map", "0",
		"-f", "segment",
		"-segment_time", strconv.Itoa(e.segmentSeconds),
		"-reset_timestamps", "1",
		outputTemplate,
	}

	e.logger.Debug("splitting input",
		logging.String("input", filepath.Base(inputPath)),
		logging.Int("segment_seconds", e.segmentSeconds),
	)

	cmd := exec.CommandContext(ctx, e.ffmpegBin, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return services.Wrap(services.ErrSplit, "split", "ffmpeg segment",
			strings.TrimSpace(string(output)), err)
	}
	return nil
}

// Render applies the filter graph across the primary and overlay inputs and
// writes outputPath. The audio track is copied verbatim from the primary
// input; only video passes through the graph. A render either produces the
// output file or fails with the engine's diagnostics.
func (e *Engine) Render(ctx context.Context, primaryPath, overlayPath string, graph filtergraph.Graph, terminal, outputPath string) error {
	if err := graph.Validate(); err != nil {
		return services.Wrap(services.ErrRender, "render", "validate graph", err.Error(), nil)
	}
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", primaryPath,
		"-i", overlayPath,
		"-filter_complex", filtergraph.Compile(graph),
		"-map", "[" + terminal + "]",
		"-map", "0:a?",
		"-c:a", "copy",
		outputPath,
	}

	e.logger.Debug("rendering segment",
		logging.String("primary", filepath.Base(primaryPath)),
		logging.String("output", filepath.Base(outputPath)),
	)

	cmd := exec.CommandContext(ctx, e.ffmpegBin, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return services.Wrap(services.ErrRender, "render", "ffmpeg filter_complex",
			strings.TrimSpace(string(output)), err)
	}
	return nil
}

// ListSegments enumerates raw segment files in dir sorted by filename, which
// sorts consistently with sequence index because names are zero-padded.
func ListSegments(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, SegmentGlob))
	if err != nil {
		return nil, fmt.Errorf("glob segments: %w", err)
	}
	sort.Strings(matches)
	return matches, nil
}

// ProcessedName returns the output filename for a segment index.
func ProcessedName(index int) string {
	return fmt.Sprintf(ProcessedPattern, index)
}
