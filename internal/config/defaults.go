package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultGencodeBaseURL        = "ftp://ftp.ebi.ac.uk/pub/databases/gencode"
	defaultGencodeTimeoutSeconds = 60
	defaultUCSCAPIURL            = "https://api.genome.ucsc.edu/list/ucscGenomes"
	defaultUCSCDownloadBaseURL   = "https://hgdownload.soe.ucsc.edu/goldenPath"
	defaultUCSCTimeoutSeconds    = 30
	defaultCacheLongTTLHours     = 24 * 7
	defaultCacheShortTTLMinutes  = 10
	defaultGenomesDir            = "~/.local/share/genomes"
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Gencode: Gencode{
			BaseURL:        defaultGencodeBaseURL,
			TimeoutSeconds: defaultGencodeTimeoutSeconds,
		},
		UCSC: UCSC{
			APIURL:          defaultUCSCAPIURL,
			DownloadBaseURL: defaultUCSCDownloadBaseURL,
			TimeoutSeconds:  defaultUCSCTimeoutSeconds,
		},
		Cache: Cache{
			Dir:             defaultCacheDir(),
			LongTTLHours:    defaultCacheLongTTLHours,
			ShortTTLMinutes: defaultCacheShortTTLMinutes,
		},
		Paths: Paths{
			GenomesDir: defaultGenomesDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

func defaultCacheDir() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "gencatalog")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.cache/gencatalog"
	}
	return filepath.Join(home, ".cache", "gencatalog")
}
