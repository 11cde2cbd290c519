package config

import "strings"

// normalize expands path fields and backfills empty values with defaults.
func (c *Config) normalize() error {
	defaults := Default()

	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaults.Paths.DataDir
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaults.Paths.LogDir
	}
	if strings.TrimSpace(c.Paths.HTTPBind) == "" {
		c.Paths.HTTPBind = defaults.Paths.HTTPBind
	}

	for _, field := range []*string{&c.Paths.DataDir, &c.Paths.LogDir} {
		expanded, err := expandPath(*field)
		if err != nil {
			return err
		}
		*field = expanded
	}

	if c.Auth.TokenTTLHours <= 0 {
		c.Auth.TokenTTLHours = defaults.Auth.TokenTTLHours
	}

	c.OpenAI.APIKey = strings.TrimSpace(c.OpenAI.APIKey)
	c.OpenAI.BaseURL = strings.TrimSpace(c.OpenAI.BaseURL)
	if c.OpenAI.BaseURL == "" {
		c.OpenAI.BaseURL = defaults.OpenAI.BaseURL
	}
	c.OpenAI.BaseURL = strings.TrimRight(c.OpenAI.BaseURL, "/")
	if strings.TrimSpace(c.OpenAI.VisionModel) == "" {
		c.OpenAI.VisionModel = defaults.OpenAI.VisionModel
	}
	if strings.TrimSpace(c.OpenAI.ImageModel) == "" {
		c.OpenAI.ImageModel = defaults.OpenAI.ImageModel
	}
	if strings.TrimSpace(c.OpenAI.ImageSize) == "" {
		c.OpenAI.ImageSize = defaults.OpenAI.ImageSize
	}
	if strings.TrimSpace(c.OpenAI.ImageQuality) == "" {
		c.OpenAI.ImageQuality = defaults.OpenAI.ImageQuality
	}
	if c.OpenAI.TimeoutSeconds <= 0 {
		c.OpenAI.TimeoutSeconds = defaults.OpenAI.TimeoutSeconds
	}

	if c.Uploads.MaxBytes <= 0 {
		c.Uploads.MaxBytes = defaults.Uploads.MaxBytes
	}
	if c.Uploads.MinDimension <= 0 {
		c.Uploads.MinDimension = defaults.Uploads.MinDimension
	}
	if c.Uploads.MaxDimension <= 0 {
		c.Uploads.MaxDimension = defaults.Uploads.MaxDimension
	}
	if c.Uploads.StoredMaxDim <= 0 {
		c.Uploads.StoredMaxDim = defaults.Uploads.StoredMaxDim
	}
	if c.Uploads.JPEGQuality <= 0 || c.Uploads.JPEGQuality > 100 {
		c.Uploads.JPEGQuality = defaults.Uploads.JPEGQuality
	}
	if c.Uploads.StagingTTLSeconds <= 0 {
		c.Uploads.StagingTTLSeconds = defaults.Uploads.StagingTTLSeconds
	}

	if strings.TrimSpace(c.Logging.Format) == "" {
		c.Logging.Format = defaults.Logging.Format
	}
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = defaults.Logging.Level
	}

	return nil
}
