package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// MediaInfo holds duration and codec information from ffprobe.
type MediaInfo struct {
	Duration float64
	Codecs   []string
}

type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecName string `json:"codec_name"`
	} `json:"streams"`
}

// Probe inspects a media file and returns its duration and stream codecs.
func (e *Engine) Probe(ctx context.Context, path string) (*MediaInfo, error) {
	cmd := exec.CommandContext(ctx, e.ffprobeBin, //nolint:gosec
		"-v", "error",
		"-show_entries", "stream=codec_name:format=duration",
		"-of", "json",
		path,
	)

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	var probe probeOutput
	if err := json.Unmarshal(out, &probe); err != nil {
		return nil, fmt.Errorf("parse ffprobe output: %w", err)
	}

	duration, _ := strconv.ParseFloat(strings.TrimSpace(probe.Format.Duration), 64)
	codecs := make([]string, 0, len(probe.Streams))
	for _, stream := range probe.Streams {
		if stream.CodecName != "" {
			codecs = append(codecs, stream.CodecName)
		}
	}
	return &MediaInfo{Duration: duration, Codecs: codecs}, nil
}
