package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"clipper/internal/config"
	"clipper/internal/logging"
	"clipper/internal/media/engine"
	"clipper/internal/media/filtergraph"
	"clipper/internal/services"
)

// Transcriber produces a transcript for one media file.
type Transcriber interface {
	Transcribe(ctx context.Context, mediaPath string) (string, error)
}

// MediaEngine is the subset of the media engine the pipeline drives.
type MediaEngine interface {
	Split(ctx context.Context, inputPath, outputDir string) error
	Render(ctx context.Context, primaryPath, overlayPath string, graph filtergraph.Graph, terminal, outputPath string) error
}

// Reporter receives progress callbacks while segments move through the run.
// Implementations must tolerate calls from multiple goroutines when the
// segment worker pool is enabled.
type Reporter interface {
	Phase(phase string)
	SegmentDone(done, total int)
}

type nopReporter struct{}

func (nopReporter) Phase(string)         {}
func (nopReporter) SegmentDone(int, int) {}

// NopReporter returns a Reporter that discards every callback.
func NopReporter() Reporter { return nopReporter{} }

// Pipeline drives the split/transcribe/render sequence for one upload.
type Pipeline struct {
	cfg         *config.Config
	engine      MediaEngine
	transcriber Transcriber
	logger      *slog.Logger
	limiter     *rate.Limiter
}

// New constructs a pipeline. The transcription rate limiter is shared across
// runs so concurrent jobs stay inside the configured request budget.
func New(cfg *config.Config, eng MediaEngine, transcriber Transcriber, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = logging.NewNop()
	}
	var limiter *rate.Limiter
	if n := cfg.Transcription.RateLimitPerMinute; n > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), 1)
	}
	return &Pipeline{
		cfg:         cfg,
		engine:      eng,
		transcriber: transcriber,
		logger:      logging.WithComponent(logger, "pipeline"),
		limiter:     limiter,
	}
}

// Split stream-copies the upload into numbered segments under workDir and
// removes the upload afterwards; the segments are the working copy from here
// on. It returns the number of segments produced.
func (p *Pipeline) Split(ctx context.Context, uploadPath, workDir string) (int, error) {
	defer func() {
		if err := os.Remove(uploadPath); err != nil && !os.IsNotExist(err) {
			p.logger.Warn("failed to remove upload", logging.String("path", uploadPath), logging.Error(err))
		}
	}()

	if err := p.engine.Split(ctx, uploadPath, workDir); err != nil {
		return 0, err
	}
	segments, err := engine.ListSegments(workDir)
	if err != nil {
		return 0, services.Wrap(services.ErrSplit, "pipeline", "list segments", err.Error(), nil)
	}
	if len(segments) == 0 {
		return 0, services.Wrap(services.ErrSplit, "pipeline", "list segments",
			"splitting produced no segments", nil)
	}
	p.logger.Info("upload split into segments",
		logging.Int("segments", len(segments)),
		logging.String("work_dir", workDir),
	)
	return len(segments), nil
}

// ProcessSegments transcribes and renders every segment in workDir and
// returns the processed filenames ordered by segment index. The first
// failure aborts the run; already-rendered outputs are left in place.
func (p *Pipeline) ProcessSegments(ctx context.Context, workDir string, reporter Reporter) ([]string, error) {
	if reporter == nil {
		reporter = NopReporter()
	}

	segments, err := engine.ListSegments(workDir)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "pipeline", "list segments", err.Error(), nil)
	}
	if len(segments) == 0 {
		return nil, services.Wrap(services.ErrValidation, "pipeline", "list segments",
			"no segments found in work dir", nil)
	}

	params := filtergraph.BuildParams{
		Width:               p.cfg.FFmpeg.TargetWidth,
		Height:              p.cfg.FFmpeg.TargetHeight,
		FontFile:            p.cfg.Paths.FontFile,
		FontSize:            p.cfg.FFmpeg.FontSize,
		TextTopOffset:       p.cfg.FFmpeg.TextTopOffset,
		OverlayHeight:       p.cfg.FFmpeg.OverlayHeight,
		OverlayBottomMargin: p.cfg.FFmpeg.OverlayBottomMargin,
	}

	workers := p.cfg.Workflow.SegmentWorkers
	if workers < 1 {
		workers = 1
	}
	if workers > len(segments) {
		workers = len(segments)
	}

	if workers == 1 {
		return p.processSequential(ctx, segments, workDir, params, reporter)
	}
	return p.processPooled(ctx, segments, workDir, params, reporter, workers)
}

// Run executes the full pipeline for one upload: split, then process every
// segment. This is the entry point for synchronous requests; the queue path
// drives Split and ProcessSegments from separate stages.
func (p *Pipeline) Run(ctx context.Context, uploadPath, workDir string, reporter Reporter) ([]string, error) {
	if _, err := p.Split(ctx, uploadPath, workDir); err != nil {
		return nil, err
	}
	return p.ProcessSegments(ctx, workDir, reporter)
}

func (p *Pipeline) processSequential(ctx context.Context, segments []string, workDir string, params filtergraph.BuildParams, reporter Reporter) ([]string, error) {
	results := make([]string, 0, len(segments))
	for i, segmentPath := range segments {
		name, err := p.processOne(ctx, i, segmentPath, workDir, params, reporter)
		if err != nil {
			return nil, fmt.Errorf("segment %03d: %w", i, err)
		}
		results = append(results, name)
		reporter.SegmentDone(i+1, len(segments))
	}
	return results, nil
}

// processPooled fans segments out to a bounded worker pool. Results are
// collected by index so the returned order matches sequence order no matter
// which worker finishes first, and the first error cancels the group.
func (p *Pipeline) processPooled(ctx context.Context, segments []string, workDir string, params filtergraph.BuildParams, reporter Reporter, workers int) ([]string, error) {
	results := make([]string, len(segments))

	var mu sync.Mutex
	done := 0

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)

	for i, segmentPath := range segments {
		i, segmentPath := i, segmentPath
		group.Go(func() error {
			name, err := p.processOne(groupCtx, i, segmentPath, workDir, params, reporter)
			if err != nil {
				return fmt.Errorf("segment %03d: %w", i, err)
			}
			results[i] = name

			mu.Lock()
			done++
			completed := done
			mu.Unlock()
			reporter.SegmentDone(completed, len(segments))
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (p *Pipeline) processOne(ctx context.Context, index int, segmentPath, workDir string, params filtergraph.BuildParams, reporter Reporter) (string, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return "", services.Wrap(services.ErrPolling, "pipeline", "rate limit wait", err.Error(), err)
		}
	}

	reporter.Phase("transcribing")
	transcript, err := p.transcriber.Transcribe(ctx, segmentPath)
	if err != nil {
		return "", err
	}

	graph, terminal := filtergraph.Build(transcript, params)

	reporter.Phase("rendering")
	name := engine.ProcessedName(index)
	outputPath := filepath.Join(workDir, name)
	if err := p.engine.Render(ctx, segmentPath, p.cfg.Paths.OverlayClip, graph, terminal, outputPath); err != nil {
		return "", err
	}

	p.logger.Debug("segment processed",
		logging.Int(logging.FieldSegment, index),
		logging.String("output", name),
	)
	return name, nil
}
