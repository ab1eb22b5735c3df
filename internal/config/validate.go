package config

import (
	"errors"
	"fmt"
	"net/url"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateGencode(); err != nil {
		return err
	}
	if err := c.validateUCSC(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateGencode() error {
	parsed, err := url.Parse(c.Gencode.BaseURL)
	if err != nil {
		return fmt.Errorf("gencode.base_url: %w", err)
	}
	switch parsed.Scheme {
	case "ftp", "http", "https":
	default:
		return fmt.Errorf("gencode.base_url: unsupported scheme %q (use ftp, http or https)", parsed.Scheme)
	}
	if parsed.Host == "" {
		return errors.New("gencode.base_url must include a host")
	}
	return nil
}

func (c *Config) validateUCSC() error {
	for key, value := range map[string]string{
		"ucsc.api_url":           c.UCSC.APIURL,
		"ucsc.download_base_url": c.UCSC.DownloadBaseURL,
	} {
		parsed, err := url.Parse(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("%s: unsupported scheme %q", key, parsed.Scheme)
		}
	}
	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.LongTTLHours < 0 {
		return errors.New("cache.long_ttl_hours must be positive")
	}
	if c.Cache.ShortTTLMinutes < 0 {
		return errors.New("cache.short_ttl_minutes must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
