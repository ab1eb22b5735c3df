package testsupport

import (
	"path/filepath"
	"testing"

	"gencatalog/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Cache.Dir = filepath.Join(base, "cache")
	cfgVal.Paths.GenomesDir = filepath.Join(base, "genomes")
	cfgVal.Logging.Level = "debug"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithBaseURL points GENCODE discovery at url.
func WithBaseURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Gencode.BaseURL = url
	}
}

// WithUCSC points the peer catalog at apiURL and downloads at downloadURL.
func WithUCSC(apiURL, downloadURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.UCSC.APIURL = apiURL
		b.cfg.UCSC.DownloadBaseURL = downloadURL
	}
}

// WithMetricsTextfile enables textfile export inside the test directory.
func WithMetricsTextfile(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Metrics.Textfile = filepath.Join(b.baseDir, name)
	}
}
