package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"clipper/internal/pipeline"
	"clipper/internal/queue"
	"clipper/internal/services"
	"clipper/internal/testsupport"
)

func TestSplitStageExecuteSetsSegmentCount(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	workDir := t.TempDir()
	upload := writeUpload(t, workDir)
	job := testsupport.NewJob(t, store, upload, workDir)

	eng := &fakeEngine{segmentCount: 3}
	pipe := pipeline.New(cfg, eng, &fakeTranscriber{}, nil)
	split := pipeline.NewSplitStage(pipe, func() bool { return true }, nil)

	if err := split.Prepare(context.Background(), job); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := split.Execute(context.Background(), job); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if job.SegmentCount != 3 {
		t.Fatalf("SegmentCount = %d, want 3", job.SegmentCount)
	}
}

func TestSplitStagePrepareRejectsMissingUpload(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	job := testsupport.NewJob(t, store, "/nonexistent/upload.mp4", t.TempDir())

	pipe := pipeline.New(cfg, &fakeEngine{}, &fakeTranscriber{}, nil)
	split := pipeline.NewSplitStage(pipe, nil, nil)

	err := split.Prepare(context.Background(), job)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestSplitStageHealthCheck(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	pipe := pipeline.New(cfg, &fakeEngine{}, &fakeTranscriber{}, nil)

	healthy := pipeline.NewSplitStage(pipe, func() bool { return true }, nil)
	if h := healthy.HealthCheck(context.Background()); !h.Ready {
		t.Fatalf("expected ready health, got %+v", h)
	}

	unhealthy := pipeline.NewSplitStage(pipe, func() bool { return false }, nil)
	if h := unhealthy.HealthCheck(context.Background()); h.Ready {
		t.Fatalf("expected unhealthy when binaries are missing, got %+v", h)
	}
}

func TestSegmentStageExecuteRecordsResult(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	workDir := t.TempDir()
	upload := writeUpload(t, workDir)
	job := testsupport.NewJob(t, store, upload, workDir)

	eng := &fakeEngine{segmentCount: 2}
	pipe := pipeline.New(cfg, eng, &fakeTranscriber{}, nil)

	// Split first so the work dir holds raw segments.
	if _, err := pipe.Split(context.Background(), upload, workDir); err != nil {
		t.Fatalf("Split: %v", err)
	}

	seg := pipeline.NewSegmentStage(store, pipe, nil)
	if err := seg.Prepare(context.Background(), job); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if err := seg.Execute(context.Background(), job); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if job.Status != queue.StatusCompleted {
		t.Fatalf("status = %q, want completed", job.Status)
	}
	if job.SegmentsDone != 2 {
		t.Fatalf("SegmentsDone = %d, want 2", job.SegmentsDone)
	}

	var result struct {
		Segments []string `json:"segments"`
	}
	if err := json.Unmarshal([]byte(job.ResultJSON), &result); err != nil {
		t.Fatalf("result json: %v", err)
	}
	if len(result.Segments) != 2 || result.Segments[0] != "processed_segment_000.mp4" {
		t.Fatalf("unexpected result payload: %+v", result)
	}

	// Progress updates were persisted along the way.
	persisted, err := store.GetByID(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if persisted.SegmentsDone != 2 {
		t.Fatalf("persisted SegmentsDone = %d, want 2", persisted.SegmentsDone)
	}
}

func TestSegmentStageExecuteSurfacesFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	workDir := t.TempDir()
	upload := writeUpload(t, workDir)
	job := testsupport.NewJob(t, store, upload, workDir)

	eng := &fakeEngine{segmentCount: 2}
	scribe := &fakeTranscriber{failOn: "segment_001.mp4"}
	pipe := pipeline.New(cfg, eng, scribe, nil)

	if _, err := pipe.Split(context.Background(), upload, workDir); err != nil {
		t.Fatalf("Split: %v", err)
	}

	seg := pipeline.NewSegmentStage(store, pipe, nil)
	err := seg.Execute(context.Background(), job)
	if !errors.Is(err, services.ErrTranscriptionFailed) {
		t.Fatalf("expected ErrTranscriptionFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "segment 001") {
		t.Fatalf("error should name the failing segment: %v", err)
	}
}
