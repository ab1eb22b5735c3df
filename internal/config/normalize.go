package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeGencode()
	c.normalizeUCSC()
	if err := c.normalizeCache(); err != nil {
		return err
	}
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeGencode() {
	if value, ok := os.LookupEnv("GENCATALOG_BASE_URL"); ok && strings.TrimSpace(value) != "" {
		c.Gencode.BaseURL = value
	}
	c.Gencode.BaseURL = strings.TrimRight(strings.TrimSpace(c.Gencode.BaseURL), "/")
	if c.Gencode.BaseURL == "" {
		c.Gencode.BaseURL = defaultGencodeBaseURL
	}
	if c.Gencode.TimeoutSeconds <= 0 {
		c.Gencode.TimeoutSeconds = defaultGencodeTimeoutSeconds
	}
}

func (c *Config) normalizeUCSC() {
	c.UCSC.APIURL = strings.TrimSpace(c.UCSC.APIURL)
	if c.UCSC.APIURL == "" {
		c.UCSC.APIURL = defaultUCSCAPIURL
	}
	c.UCSC.DownloadBaseURL = strings.TrimRight(strings.TrimSpace(c.UCSC.DownloadBaseURL), "/")
	if c.UCSC.DownloadBaseURL == "" {
		c.UCSC.DownloadBaseURL = defaultUCSCDownloadBaseURL
	}
	if c.UCSC.TimeoutSeconds <= 0 {
		c.UCSC.TimeoutSeconds = defaultUCSCTimeoutSeconds
	}
}

func (c *Config) normalizeCache() error {
	if strings.TrimSpace(c.Cache.Dir) == "" {
		c.Cache.Dir = defaultCacheDir()
	}
	var err error
	if c.Cache.Dir, err = expandPath(c.Cache.Dir); err != nil {
		return fmt.Errorf("cache.dir: %w", err)
	}
	if c.Cache.LongTTLHours == 0 {
		c.Cache.LongTTLHours = defaultCacheLongTTLHours
	}
	if c.Cache.ShortTTLMinutes == 0 {
		c.Cache.ShortTTLMinutes = defaultCacheShortTTLMinutes
	}
	return nil
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.GenomesDir) == "" {
		c.Paths.GenomesDir = defaultGenomesDir
	}
	var err error
	if c.Paths.GenomesDir, err = expandPath(c.Paths.GenomesDir); err != nil {
		return fmt.Errorf("paths.genomes_dir: %w", err)
	}
	if strings.TrimSpace(c.Metrics.Textfile) != "" {
		if c.Metrics.Textfile, err = expandPath(strings.TrimSpace(c.Metrics.Textfile)); err != nil {
			return fmt.Errorf("metrics.textfile: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
