package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"clipper/internal/logging"
	"clipper/internal/queue"
	"clipper/internal/services"
	"clipper/internal/stage"
)

// SplitStage turns an uploaded video into numbered raw segments.
type SplitStage struct {
	pipe   *Pipeline
	probe  func() bool
	logger *slog.Logger
}

// NewSplitStage constructs the split stage. available reports whether the
// media engine binaries can be invoked; it backs the stage health check.
func NewSplitStage(pipe *Pipeline, available func() bool, logger *slog.Logger) *SplitStage {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &SplitStage{pipe: pipe, probe: available, logger: logging.WithComponent(logger, "split-stage")}
}

func (s *SplitStage) Prepare(_ context.Context, job *queue.Job) error {
	if job.SourcePath == "" || job.WorkDir == "" {
		return services.Wrap(services.ErrValidation, "split", "prepare",
			"job is missing source path or work dir", nil)
	}
	if _, err := os.Stat(job.SourcePath); err != nil {
		return services.Wrap(services.ErrValidation, "split", "prepare",
			fmt.Sprintf("upload not found: %s", job.SourcePath), err)
	}
	return nil
}

func (s *SplitStage) Execute(ctx context.Context, job *queue.Job) error {
	count, err := s.pipe.Split(ctx, job.SourcePath, job.WorkDir)
	if err != nil {
		return err
	}
	job.SegmentCount = count
	job.ProgressMessage = fmt.Sprintf("%d segments ready", count)
	return nil
}

func (s *SplitStage) HealthCheck(context.Context) stage.Health {
	if s.probe != nil && !s.probe() {
		return stage.NotReady("split", "media engine binaries not found")
	}
	return stage.Ready("split")
}

// SegmentStage transcribes and renders every raw segment of a job, then
// records the processed filenames on the job.
type SegmentStage struct {
	store  *queue.Store
	pipe   *Pipeline
	logger *slog.Logger
}

// NewSegmentStage constructs the transcribe/render stage.
func NewSegmentStage(store *queue.Store, pipe *Pipeline, logger *slog.Logger) *SegmentStage {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &SegmentStage{store: store, pipe: pipe, logger: logging.WithComponent(logger, "segment-stage")}
}

func (s *SegmentStage) Prepare(_ context.Context, job *queue.Job) error {
	if job.WorkDir == "" {
		return services.Wrap(services.ErrValidation, "segments", "prepare",
			"job is missing work dir", nil)
	}
	return nil
}

func (s *SegmentStage) Execute(ctx context.Context, job *queue.Job) error {
	reporter := &jobReporter{ctx: ctx, store: s.store, job: job, logger: s.logger}
	names, err := s.pipe.ProcessSegments(ctx, job.WorkDir, reporter)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(struct {
		Segments []string `json:"segments"`
	}{Segments: names})
	if err != nil {
		return services.Wrap(services.ErrValidation, "segments", "encode result", err.Error(), err)
	}
	job.ResultJSON = string(payload)
	job.SegmentsDone = len(names)
	job.Status = queue.StatusCompleted
	job.ProgressStage = "completed"
	job.ProgressMessage = fmt.Sprintf("%d segments processed", len(names))
	return nil
}

func (s *SegmentStage) HealthCheck(context.Context) stage.Health {
	return stage.Ready("segments")
}

// jobReporter persists progress callbacks onto the queue job. Callbacks may
// arrive from pool workers concurrently, so updates are serialized.
type jobReporter struct {
	ctx    context.Context
	store  *queue.Store
	job    *queue.Job
	logger *slog.Logger

	mu sync.Mutex
}

func (r *jobReporter) Phase(phase string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	status := queue.StatusTranscribing
	if phase == "rendering" {
		status = queue.StatusRendering
	}
	if r.job.Status == status {
		return
	}
	r.job.Status = status
	r.job.ProgressStage = phase
	r.persist()
}

func (r *jobReporter) SegmentDone(done, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.job.SegmentsDone = done
	r.job.ProgressMessage = fmt.Sprintf("segment %d/%d", done, total)
	r.persist()
}

func (r *jobReporter) persist() {
	if err := r.store.Update(r.ctx, r.job); err != nil {
		r.logger.Warn("failed to persist job progress",
			logging.Int64(logging.FieldJobID, r.job.ID),
			logging.Error(err),
		)
	}
}
