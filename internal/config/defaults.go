package config

const (
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultResolverBackend  = "ytdlp"
	defaultYtDlpBinary      = "yt-dlp"
	defaultResolverTimeout  = 60
	defaultExpandRemote     = ExpandAuto
	defaultMaxDatabaseBytes = int64(1) << 30
	defaultAudioFormat      = "mp3"
	defaultDownloadThrottle = 3
	envLogLevel             = "PLAYBRIDGE_LOG_LEVEL"
)

// Expansion modes accepted by pipeline.expand_remote.
const (
	ExpandAuto   = "auto"
	ExpandAlways = "always"
	ExpandNever  = "never"
)

// Resolver backends accepted by resolver.backend.
const (
	BackendYtDlp = "ytdlp"
	BackendHTML  = "html"
	BackendNone  = "none"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Resolver: Resolver{
			Backend:        defaultResolverBackend,
			YtDlpBinary:    defaultYtDlpBinary,
			TimeoutSeconds: defaultResolverTimeout,
		},
		Pipeline: Pipeline{
			ExpandRemote: defaultExpandRemote,
		},
		Archive: Archive{
			MaxDatabaseBytes: defaultMaxDatabaseBytes,
		},
		Download: Download{
			AudioFormat:     defaultAudioFormat,
			ThrottleSeconds: defaultDownloadThrottle,
		},
	}
}
