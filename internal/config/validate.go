package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateOpenAI(); err != nil {
		return err
	}
	if err := c.validateAuth(); err != nil {
		return err
	}
	if err := c.validateUploads(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateOpenAI() error {
	if c.OpenAI.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/shaggydog/config.toml"
		}
		return fmt.Errorf("openai.api_key is required. Set SHAGGYDOG_OPENAI_API_KEY env var or edit %s (create with 'shaggydog config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateAuth() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return errors.New("auth.jwt_secret is required. Set SHAGGYDOG_JWT_SECRET env var or add it to the config file")
	}
	if c.Auth.TokenTTLHours <= 0 {
		return errors.New("auth.token_ttl_hours must be positive")
	}
	return nil
}

func (c *Config) validateUploads() error {
	if c.Uploads.MinDimension >= c.Uploads.MaxDimension {
		return errors.New("uploads.min_dimension must be smaller than uploads.max_dimension")
	}
	if c.Uploads.StoredMaxDim < c.Uploads.MinDimension {
		return errors.New("uploads.stored_max_dimension must be at least uploads.min_dimension")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}
