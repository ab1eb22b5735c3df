package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Gencode contains the remote release listing endpoint.
type Gencode struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// UCSC contains the peer catalog endpoints.
type UCSC struct {
	APIURL          string `toml:"api_url"`
	DownloadBaseURL string `toml:"download_base_url"`
	TimeoutSeconds  int    `toml:"timeout_seconds"`
}

// Cache contains the memo cache location and expiry policies.
type Cache struct {
	Dir             string `toml:"dir"`
	LongTTLHours    int    `toml:"long_ttl_hours"`
	ShortTTLMinutes int    `toml:"short_ttl_minutes"`
}

// Paths contains local directories.
type Paths struct {
	GenomesDir string `toml:"genomes_dir"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Metrics contains configuration for metric export.
type Metrics struct {
	// Textfile is written in Prometheus text format after each command when set.
	Textfile string `toml:"textfile"`
}

// Config encapsulates all configuration values for gencatalog.
//
// Configuration sections by subsystem:
//   - Gencode: release directory listing source
//   - UCSC: peer catalog and sequence download endpoints
//   - Cache: memo cache directory and expiry policies
//   - Paths: local genome download directory
//   - Logging: log format and level
//   - Metrics: optional Prometheus textfile export
type Config struct {
	Gencode Gencode `toml:"gencode"`
	UCSC    UCSC    `toml:"ucsc"`
	Cache   Cache   `toml:"cache"`
	Paths   Paths   `toml:"paths"`
	Logging Logging `toml:"logging"`
	Metrics Metrics `toml:"metrics"`
}

// projectConfigName is looked up in the working directory when no config
// exists at the default path.
const projectConfigName = "gencatalog.toml"

// DefaultConfigPath returns ~/.config/gencatalog/config.toml, expanded.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/gencatalog/config.toml")
}

// Load reads the config at path, or the first existing default location when
// path is empty, over Default(). It returns the normalized config, the path
// it resolved, and whether that file existed. A missing file is not an error.
func Load(path string) (*Config, string, bool, error) {
	resolved, exists, err := locate(strings.TrimSpace(path))
	if err != nil {
		return nil, "", false, err
	}

	cfg := Default()
	if exists {
		data, err := os.ReadFile(resolved)
		if err != nil {
			return nil, "", false, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolved, err)
		}
	}
	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolved, exists, nil
}

// locate resolves the config file. An explicit path is used as given; the
// defaults are the user config path, then ./gencatalog.toml.
func locate(explicit string) (string, bool, error) {
	var candidates []string
	if explicit != "" {
		expanded, err := expandPath(explicit)
		if err != nil {
			return "", false, err
		}
		candidates = []string{expanded}
	} else {
		userPath, err := DefaultConfigPath()
		if err != nil {
			return "", false, err
		}
		projectPath, err := filepath.Abs(projectConfigName)
		if err != nil {
			return "", false, err
		}
		candidates = []string{userPath, projectPath}
	}

	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		switch {
		case err == nil && !info.IsDir():
			return candidate, true, nil
		case err != nil && !errors.Is(err, fs.ErrNotExist):
			return "", false, fmt.Errorf("stat config: %w", err)
		}
	}
	return candidates[0], false, nil
}

// EnsureDirectories creates the cache directory. The genomes directory is
// created lazily by downloads.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Cache.Dir, 0o755); err != nil {
		return fmt.Errorf("create cache directory %q: %w", c.Cache.Dir, err)
	}
	return nil
}

// LongTTL is the expiry for expensive discovery results.
func (c *Config) LongTTL() time.Duration {
	return time.Duration(c.Cache.LongTTLHours) * time.Hour
}

// ShortTTL is the expiry for reachability and status checks.
func (c *Config) ShortTTL() time.Duration {
	return time.Duration(c.Cache.ShortTTLMinutes) * time.Minute
}

// GencodeTimeout bounds individual listing connections.
func (c *Config) GencodeTimeout() time.Duration {
	return time.Duration(c.Gencode.TimeoutSeconds) * time.Second
}

// UCSCTimeout bounds individual peer catalog requests.
func (c *Config) UCSCTimeout() time.Duration {
	return time.Duration(c.UCSC.TimeoutSeconds) * time.Second
}

// ExpandPath resolves a leading ~ to the home directory and returns an
// absolute, cleaned path. The empty string is returned unchanged.
func ExpandPath(value string) (string, error) {
	return expandPath(value)
}

func expandPath(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	if value == "~" || strings.HasPrefix(value, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		value = filepath.Join(home, strings.TrimPrefix(value[1:], "/"))
	}
	absolute, err := filepath.Abs(value)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", value, err)
	}
	return absolute, nil
}

// CreateSample writes the commented sample configuration to path, creating
// its directory.
func CreateSample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
