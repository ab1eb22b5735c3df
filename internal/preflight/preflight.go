package preflight

import (
	"context"
	"errors"
	"os"

	"gencatalog/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes every preflight check for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	// Cache directory (always checked)
	results = append(results, CheckDirectoryAccess("Cache directory", cfg.Cache.Dir))

	// Genomes directory is created by the first download
	if _, err := os.Stat(cfg.Paths.GenomesDir); errors.Is(err, os.ErrNotExist) {
		results = append(results, Result{Name: "Genomes directory", Passed: true, Detail: cfg.Paths.GenomesDir + " (created on first download)"})
	} else {
		results = append(results, CheckDirectoryAccess("Genomes directory", cfg.Paths.GenomesDir))
	}

	results = append(results, CheckGencode(ctx, cfg.Gencode.BaseURL, cfg.GencodeTimeout()))
	results = append(results, CheckUCSC(ctx, cfg.UCSC.APIURL, cfg.UCSCTimeout()))

	return results
}

// Passed reports whether every result passed.
func Passed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}
