package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"clipper/internal/config"
	"clipper/internal/fileutil"
	"clipper/internal/logging"
	"clipper/internal/pipeline"
	"clipper/internal/queue"
	"clipper/internal/services"
)

// maxUploadMemory caps the multipart memory buffer; larger uploads spill to disk.
const maxUploadMemory = 32 << 20

type apiServer struct {
	bind   string
	cfg    *config.Config
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, nil
	}

	srv := &apiServer{
		bind:   bind,
		cfg:    cfg,
		logger: logger,
		daemon: d,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/jobs", srv.handleJobs)
	mux.HandleFunc("/api/jobs/", srv.handleJob)
	mux.HandleFunc("/api/status", srv.handleStatus)
	mux.HandleFunc("/api/process", srv.handleProcess)

	// Uploads and synchronous processing can run for minutes, so only the
	// header read is bounded.
	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleJobs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListJobs(w, r)
	case http.MethodPost:
		s.handleCreateJob(w, r)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *apiServer) handleListJobs(w http.ResponseWriter, r *http.Request) {
	var statuses []queue.Status
	for _, value := range r.URL.Query()["status"] {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		statuses = append(statuses, queue.Status(trimmed))
	}

	jobs, err := s.daemon.store.List(r.Context(), statuses...)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	views := make([]jobView, 0, len(jobs))
	for _, job := range jobs {
		views = append(views, newJobView(job))
	}
	s.writeJSON(w, http.StatusOK, jobListResponse{Jobs: views})
}

func (s *apiServer) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	uploadPath, workDir, err := s.saveUpload(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	job, err := s.daemon.store.NewJob(r.Context(), uploadPath, workDir)
	if err != nil {
		_ = fileutil.RemoveScratchDir(workDir)
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.log().Info("job accepted",
		logging.Int64(logging.FieldJobID, job.ID),
		logging.String(logging.FieldJobToken, job.Token),
	)
	s.writeJSON(w, http.StatusAccepted, jobAcceptedResponse{
		Token:  job.Token,
		Status: string(job.Status),
	})
}

func (s *apiServer) handleJob(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	token := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
	if token == "" || strings.Contains(token, "/") {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}

	job, err := s.daemon.store.GetByToken(r.Context(), token)
	if err != nil {
		if errors.Is(err, queue.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "job not found")
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, jobResponse{Job: newJobView(job)})
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status, err := s.daemon.Status(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, newStatusView(status))
}

// handleProcess runs the whole pipeline inside the request and replies with
// the outcome. A single-segment result is returned as raw video bytes so
// short clips round-trip without a second request; anything longer gets the
// processed filename list.
func (s *apiServer) handleProcess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	uploadPath, workDir, err := s.saveUpload(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer func() {
		if err := fileutil.RemoveScratchDir(workDir); err != nil {
			s.log().Warn("failed to remove scratch dir", logging.Error(err))
		}
	}()

	names, err := s.daemon.runner.Run(r.Context(), uploadPath, workDir, pipeline.NopReporter())
	if err != nil {
		s.writeError(w, statusForError(err), err.Error())
		return
	}

	if len(names) == 1 {
		payload, err := os.ReadFile(filepath.Join(workDir, names[0]))
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "video/mp4")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(payload); err != nil {
			s.log().Warn("failed to write clip response", logging.Error(err))
		}
		return
	}
	s.writeJSON(w, http.StatusOK, processResponse{Segments: names})
}

// saveUpload streams the multipart "video" part into a fresh scratch dir and
// returns the upload path plus the scratch dir itself.
func (s *apiServer) saveUpload(r *http.Request) (string, string, error) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		return "", "", fmt.Errorf("parse multipart form: %w", err)
	}
	file, header, err := r.FormFile("video")
	if err != nil {
		return "", "", fmt.Errorf("missing video upload: %w", err)
	}
	defer file.Close()

	workDir, err := fileutil.ScratchDir(s.cfg.Paths.WorkDir, uuid.NewString())
	if err != nil {
		return "", "", err
	}

	uploadPath := filepath.Join(workDir, "upload.mp4")
	if _, err := fileutil.WriteReader(uploadPath, file); err != nil {
		_ = fileutil.RemoveScratchDir(workDir)
		return "", "", fmt.Errorf("store upload %s: %w", header.Filename, err)
	}
	return uploadPath, workDir, nil
}

// statusForError maps service error kinds onto HTTP statuses: bad input is
// the caller's fault, missing configuration is ours, and everything else is
// an upstream or engine failure.
func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrConfiguration):
		return http.StatusInternalServerError
	case errors.Is(err, services.ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return logging.WithComponent(s.logger, "api-server")
	}
	return logging.NewNop()
}
