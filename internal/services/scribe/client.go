package scribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"clipper/internal/config"
	"clipper/internal/logging"
	"clipper/internal/services"
)

// JobStatus is the lifecycle reported by the transcription service.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusProcessing JobStatus = "processing"
	StatusCompleted  JobStatus = "completed"
	StatusError      JobStatus = "error"
)

// Doer abstracts the HTTP transport so tests can substitute one.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the transcription service.
type Client struct {
	apiKey       string
	baseURL      string
	httpClient   Doer
	pollInterval time.Duration
	pollTimeout  time.Duration
	logger       *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(doer Doer) Option {
	return func(c *Client) {
		if doer != nil {
			c.httpClient = doer
		}
	}
}

// WithPollInterval overrides the initial polling interval.
func WithPollInterval(interval time.Duration) Option {
	return func(c *Client) {
		if interval > 0 {
			c.pollInterval = interval
		}
	}
}

// WithPollTimeout overrides the polling deadline.
func WithPollTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.pollTimeout = timeout
		}
	}
}

// New creates a transcription client from config. A missing credential is a
// configuration error, not a retryable failure.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "transcribe", "new client", "config is nil", nil)
	}
	apiKey := strings.TrimSpace(cfg.Transcription.APIKey)
	if apiKey == "" {
		return nil, services.Wrap(services.ErrConfiguration, "transcribe", "new client",
			"transcription.api_key is not configured", nil)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	client := &Client{
		apiKey:       apiKey,
		baseURL:      strings.TrimRight(cfg.Transcription.BaseURL, "/"),
		pollInterval: time.Duration(cfg.Transcription.PollIntervalSeconds) * time.Second,
		pollTimeout:  time.Duration(cfg.Transcription.PollTimeoutSeconds) * time.Second,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Transcription.RequestTimeoutSeconds) * time.Second,
		},
		logger: logging.WithComponent(logger, "scribe"),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Transcribe uploads the media file, creates a transcription job, and polls
// until the job completes. It returns the transcript text.
func (c *Client) Transcribe(ctx context.Context, mediaPath string) (string, error) {
	uploadURL, err := c.upload(ctx, mediaPath)
	if err != nil {
		return "", err
	}
	jobID, err := c.createJob(ctx, uploadURL)
	if err != nil {
		return "", err
	}
	c.logger.Debug("transcription job created",
		logging.String("job", jobID),
		logging.String("media", mediaPath),
	)
	return c.awaitTranscript(ctx, jobID)
}

type uploadResponse struct {
	UploadURL string `json:"upload_url"`
}

func (c *Client) upload(ctx context.Context, mediaPath string) (string, error) {
	file, err := os.Open(mediaPath)
	if err != nil {
		return "", services.Wrap(services.ErrUpload, "transcribe", "upload", "open media file", err)
	}
	defer file.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/upload", file)
	if err != nil {
		return "", services.Wrap(services.ErrUpload, "transcribe", "upload", "build request", err)
	}
	if info, err := file.Stat(); err == nil {
		req.ContentLength = info.Size()
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	var parsed uploadResponse
	if err := c.doJSON(req, &parsed); err != nil {
		return "", services.Wrap(services.ErrUpload, "transcribe", "upload", "upload media bytes", err)
	}
	if parsed.UploadURL == "" {
		return "", services.Wrap(services.ErrUpload, "transcribe", "upload", "service returned no upload_url", nil)
	}
	return parsed.UploadURL, nil
}

type jobRequest struct {
	AudioURL string `json:"audio_url"`
}

type jobResponse struct {
	ID     string    `json:"id"`
	Status JobStatus `json:"status"`
	Text   string    `json:"text"`
	Error  string    `json:"error"`
}

func (c *Client) createJob(ctx context.Context, uploadURL string) (string, error) {
	body, err := json.Marshal(jobRequest{AudioURL: uploadURL})
	if err != nil {
		return "", services.Wrap(services.ErrTranscriptionRequest, "transcribe", "create job", "encode request", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/transcript", bytes.NewReader(body))
	if err != nil {
		return "", services.Wrap(services.ErrTranscriptionRequest, "transcribe", "create job", "build request", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	var parsed jobResponse
	if err := c.doJSON(req, &parsed); err != nil {
		return "", services.Wrap(services.ErrTranscriptionRequest, "transcribe", "create job", "create transcription job", err)
	}
	if parsed.ID == "" {
		return "", services.Wrap(services.ErrTranscriptionRequest, "transcribe", "create job", "service returned no job id", nil)
	}
	return parsed.ID, nil
}

// awaitTranscript polls the job until it finishes. The wait between polls
// starts at the configured interval and backs off up to maxPollInterval; the
// whole wait is bounded by the poll timeout.
func (c *Client) awaitTranscript(ctx context.Context, jobID string) (string, error) {
	const backoffFactor = 2
	maxPollInterval := 30 * time.Second

	deadline := time.Now().Add(c.pollTimeout)
	interval := c.pollInterval

	for {
		if remaining := time.Until(deadline); remaining <= 0 {
			return "", services.Wrap(services.ErrTimeout, "transcribe", "poll",
				fmt.Sprintf("job %s did not finish within %s", jobID, c.pollTimeout), nil)
		}

		select {
		case <-ctx.Done():
			return "", services.Wrap(services.ErrPolling, "transcribe", "poll", "canceled", ctx.Err())
		case <-time.After(interval):
		}

		job, err := c.pollJob(ctx, jobID)
		if err != nil {
			return "", err
		}

		switch job.Status {
		case StatusCompleted:
			return job.Text, nil
		case StatusError:
			return "", services.Wrap(services.ErrTranscriptionFailed, "transcribe", "poll",
				fmt.Sprintf("job %s failed: %s", jobID, job.Error), nil)
		case StatusQueued, StatusProcessing:
			// still in flight
		default:
			c.logger.Warn("unknown transcription job status",
				logging.String("job", jobID),
				logging.String("status", string(job.Status)),
			)
		}

		interval *= backoffFactor
		if interval > maxPollInterval {
			interval = maxPollInterval
		}
	}
}

func (c *Client) pollJob(ctx context.Context, jobID string) (*jobResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v2/transcript/"+jobID, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrPolling, "transcribe", "poll", "build request", err)
	}
	req.Header.Set("Authorization", c.apiKey)

	var parsed jobResponse
	if err := c.doJSON(req, &parsed); err != nil {
		return nil, services.Wrap(services.ErrPolling, "transcribe", "poll", "fetch job status", err)
	}
	return &parsed, nil
}

func (c *Client) doJSON(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("service returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
