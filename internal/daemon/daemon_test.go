package daemon_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"clipper/internal/config"
	"clipper/internal/daemon"
	"clipper/internal/media/engine"
	"clipper/internal/pipeline"
	"clipper/internal/queue"
	"clipper/internal/services"
	"clipper/internal/stage"
	"clipper/internal/testsupport"
	"clipper/internal/workflow"
)

type noopHandler struct{ name string }

func (h noopHandler) Prepare(context.Context, *queue.Job) error { return nil }
func (h noopHandler) Execute(context.Context, *queue.Job) error { return nil }
func (h noopHandler) HealthCheck(context.Context) stage.Health  { return stage.Ready(h.name) }

// fakeRunner simulates a synchronous pipeline run by writing processed files
// into the work dir.
type fakeRunner struct {
	segments int
	err      error
}

func (f *fakeRunner) Run(_ context.Context, uploadPath, workDir string, _ pipeline.Reporter) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	if _, err := os.Stat(uploadPath); err != nil {
		return nil, err
	}
	names := make([]string, 0, f.segments)
	for i := 0; i < f.segments; i++ {
		name := engine.ProcessedName(i)
		if err := os.WriteFile(filepath.Join(workDir, name), []byte("rendered-"+name), 0o644); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

func newTestDaemon(t *testing.T, cfg *config.Config, runner daemon.Runner) (*daemon.Daemon, string) {
	t.Helper()

	store := testsupport.MustOpenStore(t, cfg)
	mgr := workflow.NewManager(cfg, store, workflow.StageSet{
		Splitter: noopHandler{name: "split"},
		Segments: noopHandler{name: "segments"},
	}, nil)

	d, err := daemon.New(cfg, store, nil, mgr, runner)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := d.Start(ctx); err != nil {
		t.Fatalf("daemon.Start: %v", err)
	}
	t.Cleanup(func() { d.Stop() })

	addr := d.APIAddr()
	if addr == "" {
		t.Fatal("api server did not bind")
	}
	return d, "http://" + addr
}

func postUpload(t *testing.T, url string, payload []byte) *http.Response {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("video", "clip.mp4")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(payload); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	resp, err := http.Post(url, writer.FormDataContentType(), &body)
	if err != nil {
		t.Fatalf("post upload: %v", err)
	}
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestCreateAndFetchJob(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	_, base := newTestDaemon(t, cfg, &fakeRunner{segments: 1})

	resp := postUpload(t, base+"/api/jobs", []byte("video-bytes"))
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}
	var accepted struct {
		Token  string `json:"token"`
		Status string `json:"status"`
	}
	decodeJSON(t, resp, &accepted)
	if accepted.Token == "" || accepted.Status != "pending" {
		t.Fatalf("unexpected accept payload: %+v", accepted)
	}

	resp, err := http.Get(base + "/api/jobs/" + accepted.Token)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var fetched struct {
		Job struct {
			Token  string `json:"token"`
			Status string `json:"status"`
		} `json:"job"`
	}
	decodeJSON(t, resp, &fetched)
	if fetched.Job.Token != accepted.Token {
		t.Fatalf("token mismatch: %q vs %q", fetched.Job.Token, accepted.Token)
	}

	resp, err = http.Get(base + "/api/jobs")
	if err != nil {
		t.Fatalf("list jobs: %v", err)
	}
	var list struct {
		Jobs []struct {
			Token string `json:"token"`
		} `json:"jobs"`
	}
	decodeJSON(t, resp, &list)
	if len(list.Jobs) != 1 || list.Jobs[0].Token != accepted.Token {
		t.Fatalf("unexpected job list: %+v", list)
	}
}

func TestFetchUnknownJobReturns404(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	_, base := newTestDaemon(t, cfg, &fakeRunner{segments: 1})

	resp, err := http.Get(base + "/api/jobs/not-a-token")
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestStatusEndpoint(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	_, base := newTestDaemon(t, cfg, &fakeRunner{segments: 1})

	resp, err := http.Get(base + "/api/status")
	if err != nil {
		t.Fatalf("get status: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var status struct {
		Running bool `json:"running"`
		Ready   bool `json:"ready"`
		Stages  []struct {
			Name  string `json:"name"`
			Ready bool   `json:"ready"`
		} `json:"stages"`
	}
	decodeJSON(t, resp, &status)
	if !status.Running || !status.Ready {
		t.Fatalf("expected running and ready: %+v", status)
	}
	if len(status.Stages) != 2 {
		t.Fatalf("expected 2 stages: %+v", status.Stages)
	}
}

func TestProcessReturnsSegmentList(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	_, base := newTestDaemon(t, cfg, &fakeRunner{segments: 3})

	resp := postUpload(t, base+"/api/process", []byte("video-bytes"))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var result struct {
		Segments []string `json:"segments"`
	}
	decodeJSON(t, resp, &result)
	want := []string{
		"processed_segment_000.mp4",
		"processed_segment_001.mp4",
		"processed_segment_002.mp4",
	}
	if len(result.Segments) != len(want) {
		t.Fatalf("segments = %v, want %v", result.Segments, want)
	}
	for i := range want {
		if result.Segments[i] != want[i] {
			t.Fatalf("segments[%d] = %q, want %q", i, result.Segments[i], want[i])
		}
	}
}

func TestProcessSingleClipReturnsRawVideo(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	_, base := newTestDaemon(t, cfg, &fakeRunner{segments: 1})

	resp := postUpload(t, base+"/api/process", []byte("video-bytes"))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "video/mp4" {
		t.Fatalf("content type = %q, want video/mp4", ct)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if string(body) != "rendered-processed_segment_000.mp4" {
		t.Fatalf("unexpected clip bytes: %q", body)
	}
}

func TestProcessErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "validation",
			err:  services.Wrap(services.ErrValidation, "pipeline", "list segments", "no segments", nil),
			want: http.StatusBadRequest,
		},
		{
			name: "configuration",
			err:  services.Wrap(services.ErrConfiguration, "scribe", "new client", "api key missing", nil),
			want: http.StatusInternalServerError,
		},
		{
			name: "timeout",
			err:  services.Wrap(services.ErrTimeout, "scribe", "poll transcript", "deadline exceeded", nil),
			want: http.StatusGatewayTimeout,
		},
		{
			name: "upstream",
			err:  services.Wrap(services.ErrTranscriptionFailed, "scribe", "poll transcript", "job error", nil),
			want: http.StatusBadGateway,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testsupport.NewConfig(t)
			_, base := newTestDaemon(t, cfg, &fakeRunner{err: tc.err})

			resp := postUpload(t, base+"/api/process", []byte("video-bytes"))
			resp.Body.Close()
			if resp.StatusCode != tc.want {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tc.want)
			}
		})
	}
}

func TestDaemonEnforcesSingleInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	newTestDaemon(t, cfg, &fakeRunner{segments: 1})

	// A second daemon sharing the same lock directory must refuse to start.
	secondCfg := *cfg
	secondCfg.Paths.APIBind = "127.0.0.1:0"
	store := testsupport.MustOpenStore(t, &secondCfg)
	mgr := workflow.NewManager(&secondCfg, store, workflow.StageSet{
		Splitter: noopHandler{name: "split"},
		Segments: noopHandler{name: "segments"},
	}, nil)
	second, err := daemon.New(&secondCfg, store, nil, mgr, &fakeRunner{segments: 1})
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	if err := second.Start(context.Background()); err == nil {
		second.Stop()
		t.Fatal("expected second daemon start to fail")
	} else if got := fmt.Sprint(err); got == "" {
		t.Fatal("expected descriptive error")
	}
}
