package config

const (
	defaultWorkDir = "~/.local/share/clipper/work"
	defaultLogDir  = "~/.local/share/clipper/logs"
	defaultAPIBind = "127.0.0.1:7519"

	defaultOverlayClip = "~/.config/clipper/assets/overlay.mp4"
	defaultFontFile    = "~/.config/clipper/assets/caption.ttf"

	defaultTranscriptionBaseURL = "https://api.assemblyai.com"
	defaultPollIntervalSeconds  = 5
	defaultPollTimeoutSeconds   = 900
	defaultRequestTimeout       = 120

	defaultFFmpegBinary  = "ffmpeg"
	defaultFFprobeBinary = "ffprobe"

	defaultSegmentSeconds      = 60
	defaultTargetWidth         = 1080
	defaultTargetHeight        = 1920
	defaultFontSize            = 64
	defaultTextTopOffset       = 150
	defaultOverlayHeight       = 300
	defaultOverlayBottomMargin = 50

	defaultQueuePollInterval  = 2
	defaultErrorRetryInterval = 5
	defaultHeartbeatInterval  = 15
	defaultHeartbeatTimeout   = 120
	defaultSegmentWorkers     = 1

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:     defaultWorkDir,
			LogDir:      defaultLogDir,
			APIBind:     defaultAPIBind,
			OverlayClip: defaultOverlayClip,
			FontFile:    defaultFontFile,
		},
		Transcription: Transcription{
			BaseURL:               defaultTranscriptionBaseURL,
			PollIntervalSeconds:   defaultPollIntervalSeconds,
			PollTimeoutSeconds:    defaultPollTimeoutSeconds,
			RequestTimeoutSeconds: defaultRequestTimeout,
		},
		FFmpeg: FFmpeg{
			FFmpegBinary:        defaultFFmpegBinary,
			FFprobeBinary:       defaultFFprobeBinary,
			SegmentSeconds:      defaultSegmentSeconds,
			TargetWidth:         defaultTargetWidth,
			TargetHeight:        defaultTargetHeight,
			FontSize:            defaultFontSize,
			TextTopOffset:       defaultTextTopOffset,
			OverlayHeight:       defaultOverlayHeight,
			OverlayBottomMargin: defaultOverlayBottomMargin,
		},
		Workflow: Workflow{
			QueuePollInterval:  defaultQueuePollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
			HeartbeatInterval:  defaultHeartbeatInterval,
			HeartbeatTimeout:   defaultHeartbeatTimeout,
			SegmentWorkers:     defaultSegmentWorkers,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
