package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Validate ensures the configuration is usable. The transcription credential
// is deliberately not required here: its absence is surfaced as a
// configuration error by the transcription client so that a daemon can run
// queue and status commands without one.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		return errors.New("paths.work_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	if strings.TrimSpace(c.Paths.OverlayClip) == "" {
		return errors.New("paths.overlay_clip must be set")
	}
	if strings.TrimSpace(c.Paths.FontFile) == "" {
		return errors.New("paths.font_file must be set")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	return ensurePositiveMap(map[string]int{
		"transcription.poll_interval_seconds":   c.Transcription.PollIntervalSeconds,
		"transcription.poll_timeout_seconds":    c.Transcription.PollTimeoutSeconds,
		"transcription.request_timeout_seconds": c.Transcription.RequestTimeoutSeconds,
		"ffmpeg.segment_seconds":                c.FFmpeg.SegmentSeconds,
		"workflow.queue_poll_interval":          c.Workflow.QueuePollInterval,
		"workflow.error_retry_interval":         c.Workflow.ErrorRetryInterval,
		"workflow.heartbeat_interval":           c.Workflow.HeartbeatInterval,
		"workflow.heartbeat_timeout":            c.Workflow.HeartbeatTimeout,
		"workflow.segment_workers":              c.Workflow.SegmentWorkers,
	})
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}

func ensurePositiveMap(values map[string]int) error {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if values[key] <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
