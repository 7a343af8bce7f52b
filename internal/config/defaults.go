package config

const (
	defaultStagingDir         = "~/.local/share/timelapse/staging"
	defaultAssetDir           = "~/.local/share/timelapse/static"
	defaultLogDir             = "~/.local/share/timelapse/logs"
	defaultAPIBind            = "127.0.0.1:7620"
	defaultEPICBaseURL        = "https://epic.gsfc.nasa.gov/api"
	defaultEPICArchiveURL     = "https://epic.gsfc.nasa.gov/archive"
	defaultEPICCollection     = "natural"
	defaultEPICTimeout        = 30
	defaultEPICCachePath      = "~/.cache/timelapse/epic_days.db"
	defaultFrameRate          = 5
	defaultCRF                = 23
	defaultPreset             = "medium"
	defaultFFmpegBinary       = "ffmpeg"
	defaultFFprobeBinary      = "ffprobe"
	defaultStagingMaxAgeHours = 24
	defaultShutdownTimeout    = 10
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			AssetDir:   defaultAssetDir,
			LogDir:     defaultLogDir,
			APIBind:    defaultAPIBind,
		},
		EPIC: EPIC{
			BaseURL:        defaultEPICBaseURL,
			ArchiveURL:     defaultEPICArchiveURL,
			Collection:     defaultEPICCollection,
			RequestTimeout: defaultEPICTimeout,
			CachePath:      defaultEPICCachePath,
		},
		Video: Video{
			FrameRate:     defaultFrameRate,
			CRF:           defaultCRF,
			Preset:        defaultPreset,
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
		},
		Workflow: Workflow{
			StagingMaxAgeHours: defaultStagingMaxAgeHours,
			ShutdownTimeout:    defaultShutdownTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
