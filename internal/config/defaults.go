package config

const (
	defaultDataDir           = "~/.local/share/shaggydog"
	defaultLogDir            = "~/.local/share/shaggydog/logs"
	defaultHTTPBind          = "127.0.0.1:8385"
	defaultTokenTTLHours     = 24
	defaultOpenAIBaseURL     = "https://api.openai.com/v1"
	defaultVisionModel       = "gpt-4o-mini"
	defaultImageModel        = "dall-e-3"
	defaultImageSize         = "1024x1024"
	defaultImageQuality      = "standard"
	defaultOpenAITimeout     = 120
	defaultMaxUploadBytes    = 16 << 20
	defaultMinDimension      = 256
	defaultMaxDimension      = 4096
	defaultStoredMaxDim      = 1024
	defaultJPEGQuality       = 85
	defaultStagingTTLSeconds = 900
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:  defaultDataDir,
			LogDir:   defaultLogDir,
			HTTPBind: defaultHTTPBind,
		},
		Auth: Auth{
			TokenTTLHours: defaultTokenTTLHours,
		},
		OpenAI: OpenAI{
			BaseURL:        defaultOpenAIBaseURL,
			VisionModel:    defaultVisionModel,
			ImageModel:     defaultImageModel,
			ImageSize:      defaultImageSize,
			ImageQuality:   defaultImageQuality,
			TimeoutSeconds: defaultOpenAITimeout,
		},
		Uploads: Uploads{
			MaxBytes:          defaultMaxUploadBytes,
			MinDimension:      defaultMinDimension,
			MaxDimension:      defaultMaxDimension,
			StoredMaxDim:      defaultStoredMaxDim,
			JPEGQuality:       defaultJPEGQuality,
			StagingTTLSeconds: defaultStagingTTLSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
