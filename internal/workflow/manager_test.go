package workflow_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"clipper/internal/queue"
	"clipper/internal/services"
	"clipper/internal/stage"
	"clipper/internal/testsupport"
	"clipper/internal/workflow"
)

type stubStage struct {
	name        string
	prepareHook func(*queue.Job)
	executeHook func(*queue.Job)
	prepareErr  error
	executeErr  error
	health      stage.Health
}

func newStubStage(name string) *stubStage {
	return &stubStage{name: name, health: stage.Ready(name)}
}

func (s *stubStage) Prepare(_ context.Context, job *queue.Job) error {
	if s.prepareHook != nil {
		s.prepareHook(job)
	}
	return s.prepareErr
}

func (s *stubStage) Execute(_ context.Context, job *queue.Job) error {
	if s.executeHook != nil {
		s.executeHook(job)
	}
	return s.executeErr
}

func (s *stubStage) HealthCheck(context.Context) stage.Health {
	return s.health
}

func waitForStatus(t *testing.T, store *queue.Store, id int64, want queue.Status) *queue.Job {
	t.Helper()
	deadline := time.After(30 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for status %q", want)
		default:
		}
		job, err := store.GetByID(context.Background(), id)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if job.Status == want {
			return job
		}
		if job.Status.IsTerminal() && !want.IsTerminal() {
			t.Fatalf("job reached terminal status %q while waiting for %q (error: %s)",
				job.Status, want, job.ErrorMessage)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestManagerRunsJobThroughBothStages(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.QueuePollInterval = 0
	store := testsupport.MustOpenStore(t, cfg)

	splitter := newStubStage("split")
	splitter.executeHook = func(job *queue.Job) { job.SegmentCount = 2 }
	segments := newStubStage("segments")
	segments.executeHook = func(job *queue.Job) {
		job.SegmentsDone = 2
		job.ResultJSON = `{"segments":["processed_segment_000.mp4","processed_segment_001.mp4"]}`
	}

	mgr := workflow.NewManager(cfg, store, workflow.StageSet{Splitter: splitter, Segments: segments}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := mgr.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(mgr.Stop)

	job := testsupport.NewJob(t, store, "/tmp/upload.mp4", t.TempDir())
	done := waitForStatus(t, store, job.ID, queue.StatusCompleted)

	if done.SegmentCount != 2 || done.SegmentsDone != 2 {
		t.Fatalf("segment counters not carried through stages: %+v", done)
	}
	if !strings.Contains(done.ResultJSON, "processed_segment_001.mp4") {
		t.Fatalf("result json missing: %q", done.ResultJSON)
	}
}

func TestManagerMarksFailureWithStageError(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.QueuePollInterval = 0
	store := testsupport.MustOpenStore(t, cfg)

	splitter := newStubStage("split")
	splitter.executeErr = services.Wrap(services.ErrSplit, "split", "ffmpeg segment",
		"moov atom not found", nil)
	segments := newStubStage("segments")

	mgr := workflow.NewManager(cfg, store, workflow.StageSet{Splitter: splitter, Segments: segments}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := mgr.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(mgr.Stop)

	job := testsupport.NewJob(t, store, "/tmp/upload.mp4", t.TempDir())
	failed := waitForStatus(t, store, job.ID, queue.StatusFailed)

	if !strings.Contains(failed.ErrorMessage, "moov atom not found") {
		t.Fatalf("error message lost: %q", failed.ErrorMessage)
	}
	if err := mgr.LastError(); !errors.Is(err, services.ErrSplit) {
		t.Fatalf("LastError = %v, want ErrSplit", err)
	}
}

func TestManagerPrepareFailureFailsJob(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Workflow.QueuePollInterval = 0
	store := testsupport.MustOpenStore(t, cfg)

	splitter := newStubStage("split")
	splitter.prepareErr = services.Wrap(services.ErrValidation, "split", "prepare",
		"upload not found", nil)

	mgr := workflow.NewManager(cfg, store, workflow.StageSet{Splitter: splitter, Segments: newStubStage("segments")}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := mgr.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(mgr.Stop)

	job := testsupport.NewJob(t, store, "/tmp/missing.mp4", t.TempDir())
	failed := waitForStatus(t, store, job.ID, queue.StatusFailed)
	if !strings.Contains(failed.ErrorMessage, "upload not found") {
		t.Fatalf("error message lost: %q", failed.ErrorMessage)
	}
}

func TestManagerStartRequiresHandlers(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	mgr := workflow.NewManager(cfg, store, workflow.StageSet{}, nil)
	if err := mgr.Start(context.Background()); err == nil {
		t.Fatal("expected error for missing handlers")
	}
}

func TestManagerHealthAggregatesStages(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	splitter := newStubStage("split")
	splitter.health = stage.NotReady("split", "ffmpeg not found")
	segments := newStubStage("segments")

	mgr := workflow.NewManager(cfg, store, workflow.StageSet{Splitter: splitter, Segments: segments}, nil)

	health, err := mgr.Health(context.Background())
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if health.Ready() {
		t.Fatal("expected not ready with unhealthy stage")
	}
	if len(health.Stages) != 2 {
		t.Fatalf("expected 2 stage records, got %d", len(health.Stages))
	}
	if health.Stages[0].Detail != "ffmpeg not found" {
		t.Fatalf("unexpected detail: %+v", health.Stages[0])
	}
}
