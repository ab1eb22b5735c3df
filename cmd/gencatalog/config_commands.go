package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"gencatalog/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Create or check the gencatalog configuration",
	}
	configCmd.AddCommand(newConfigInitCommand(), newConfigValidateCommand(ctx))
	return configCmd
}

// initTarget resolves where config init writes, refusing to clobber an
// existing file unless overwrite is set.
func initTarget(flagValue string, overwrite bool) (string, error) {
	target := strings.TrimSpace(flagValue)
	var err error
	if target == "" {
		target, err = config.DefaultConfigPath()
	} else {
		target, err = config.ExpandPath(target)
	}
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	if overwrite {
		return target, nil
	}
	switch _, statErr := os.Stat(target); {
	case statErr == nil:
		return "", fmt.Errorf("%s already exists (pass --overwrite to replace it)", target)
	case !errors.Is(statErr, fs.ErrNotExist):
		return "", fmt.Errorf("inspect %s: %w", target, statErr)
	}
	return target, nil
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a commented sample configuration",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := initTarget(targetPath, overwrite)
			if err != nil {
				return err
			}
			// CreateSample creates the parent directory.
			if err := config.CreateSample(target); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Point gencode.base_url at an https:// mirror when FTP is blocked.")
			return nil
		},
	}
	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Where to write the file (default: ~/.config/gencatalog/config.toml)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load the configuration and print the effective endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			flagPath := ""
			if ctx.configFlag != nil {
				flagPath = *ctx.configFlag
			}
			cfg, resolved, exists, err := config.Load(strings.TrimSpace(flagPath))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			source := resolved
			if !exists {
				source += " (not found, using defaults)"
			}
			rows := [][]string{
				{"Config file", source},
				{"GENCODE root", cfg.Gencode.BaseURL},
				{"UCSC API", cfg.UCSC.APIURL},
				{"UCSC downloads", cfg.UCSC.DownloadBaseURL},
				{"Cache dir", cfg.Cache.Dir},
				{"Discovery TTL", cfg.LongTTL().String()},
				{"Genomes dir", cfg.Paths.GenomesDir},
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"Setting", "Value"}, rows, nil))
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}
