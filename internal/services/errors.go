package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration marks a missing or unusable configuration value,
	// such as an absent transcription credential. Never retried.
	ErrConfiguration = errors.New("configuration error")
	// ErrValidation marks rejected input, such as a missing upload.
	ErrValidation = errors.New("validation error")
	// ErrUpload marks a failed byte upload to the transcription service.
	ErrUpload = errors.New("upload error")
	// ErrTranscriptionRequest marks a failed transcription job creation.
	ErrTranscriptionRequest = errors.New("transcription request error")
	// ErrPolling marks a failed transcription status poll.
	ErrPolling = errors.New("polling error")
	// ErrTranscriptionFailed marks a job the service itself reported as failed.
	ErrTranscriptionFailed = errors.New("transcription failed")
	// ErrTimeout marks a transcription job that exceeded the polling deadline.
	ErrTimeout = errors.New("timeout")
	// ErrSplit marks a failed media engine segmenting invocation.
	ErrSplit = errors.New("split error")
	// ErrRender marks a failed media engine render invocation.
	ErrRender = errors.New("render error")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrValidation
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind names the taxonomy bucket an error belongs to. Used for API error
// payloads and log fields.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrUpload):
		return "upload"
	case errors.Is(err, ErrTranscriptionRequest):
		return "transcription_request"
	case errors.Is(err, ErrPolling):
		return "polling"
	case errors.Is(err, ErrTranscriptionFailed):
		return "transcription_failed"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrSplit):
		return "split"
	case errors.Is(err, ErrRender):
		return "render"
	default:
		return "internal"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
