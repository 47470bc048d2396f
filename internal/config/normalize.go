package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTranscription()
	c.normalizeFFmpeg()
	c.normalizeWorkflow()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.OverlayClip, err = expandPath(c.Paths.OverlayClip); err != nil {
		return fmt.Errorf("paths.overlay_clip: %w", err)
	}
	if c.Paths.FontFile, err = expandPath(c.Paths.FontFile); err != nil {
		return fmt.Errorf("paths.font_file: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeTranscription() {
	c.Transcription.APIKey = strings.TrimSpace(c.Transcription.APIKey)
	if c.Transcription.APIKey == "" {
		if value, ok := os.LookupEnv("CLIPPER_TRANSCRIPTION_API_KEY"); ok {
			c.Transcription.APIKey = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("ASSEMBLYAI_API_KEY"); ok {
			c.Transcription.APIKey = strings.TrimSpace(value)
		}
	}
	c.Transcription.BaseURL = strings.TrimRight(strings.TrimSpace(c.Transcription.BaseURL), "/")
	if c.Transcription.BaseURL == "" {
		c.Transcription.BaseURL = defaultTranscriptionBaseURL
	}
	if c.Transcription.PollIntervalSeconds <= 0 {
		c.Transcription.PollIntervalSeconds = defaultPollIntervalSeconds
	}
	if c.Transcription.PollTimeoutSeconds <= 0 {
		c.Transcription.PollTimeoutSeconds = defaultPollTimeoutSeconds
	}
	if c.Transcription.RequestTimeoutSeconds <= 0 {
		c.Transcription.RequestTimeoutSeconds = defaultRequestTimeout
	}
	if c.Transcription.RateLimitPerMinute < 0 {
		c.Transcription.RateLimitPerMinute = 0
	}
}

func (c *Config) normalizeFFmpeg() {
	c.FFmpeg.FFmpegBinary = strings.TrimSpace(c.FFmpeg.FFmpegBinary)
	if c.FFmpeg.FFmpegBinary == "" {
		c.FFmpeg.FFmpegBinary = defaultFFmpegBinary
	}
	c.FFmpeg.FFprobeBinary = strings.TrimSpace(c.FFmpeg.FFprobeBinary)
	if c.FFmpeg.FFprobeBinary == "" {
		c.FFmpeg.FFprobeBinary = defaultFFprobeBinary
	}
	if c.FFmpeg.SegmentSeconds <= 0 {
		c.FFmpeg.SegmentSeconds = defaultSegmentSeconds
	}
	if c.FFmpeg.TargetWidth <= 0 {
		c.FFmpeg.TargetWidth = defaultTargetWidth
	}
	if c.FFmpeg.TargetHeight <= 0 {
		c.FFmpeg.TargetHeight = defaultTargetHeight
	}
	if c.FFmpeg.FontSize <= 0 {
		c.FFmpeg.FontSize = defaultFontSize
	}
	if c.FFmpeg.TextTopOffset <= 0 {
		c.FFmpeg.TextTopOffset = defaultTextTopOffset
	}
	if c.FFmpeg.OverlayHeight <= 0 {
		c.FFmpeg.OverlayHeight = defaultOverlayHeight
	}
	if c.FFmpeg.OverlayBottomMargin <= 0 {
		c.FFmpeg.OverlayBottomMargin = defaultOverlayBottomMargin
	}
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.QueuePollInterval <= 0 {
		c.Workflow.QueuePollInterval = defaultQueuePollInterval
	}
	if c.Workflow.ErrorRetryInterval <= 0 {
		c.Workflow.ErrorRetryInterval = defaultErrorRetryInterval
	}
	if c.Workflow.HeartbeatInterval <= 0 {
		c.Workflow.HeartbeatInterval = defaultHeartbeatInterval
	}
	if c.Workflow.HeartbeatTimeout <= 0 {
		c.Workflow.HeartbeatTimeout = defaultHeartbeatTimeout
	}
	if c.Workflow.SegmentWorkers <= 0 {
		c.Workflow.SegmentWorkers = defaultSegmentWorkers
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
