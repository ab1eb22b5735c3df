package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gencatalog/internal/preflight"
)

func newPingCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the GENCODE release root can be listed (never cached)",
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, err := ctx.newProvider()
			if err != nil {
				return err
			}
			if !provider.Ping(cmd.Context()) {
				return fmt.Errorf("%s unreachable at %s", provider.Name(), provider.BaseURL())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s reachable at %s\n", provider.Name(), provider.BaseURL())
			return nil
		},
	}
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show provider reachability, directories and cache usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg)

			store, err := ctx.cacheStore()
			if err != nil {
				return err
			}
			entries, err := store.Count(cmd.Context())
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, struct {
					Checks       []preflight.Result `json:"checks"`
					CacheEntries int                `json:"cache_entries"`
					Healthy      bool               `json:"healthy"`
				}{results, entries, preflight.Passed(results)})
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			lines := make([]statusLine, 0, len(results))
			for _, result := range results {
				lines = append(lines, checkLine(result))
			}
			writeStatusSection(out, "Dependencies", lines, colorize)
			fmt.Fprintln(out)
			writeStatusSection(out, "Cache", []statusLine{
				{Label: "Directory", Kind: statusInfo, Message: store.Dir()},
				entriesLine(entries),
				{Label: "Discovery TTL", Kind: statusInfo, Message: cfg.LongTTL().String()},
				{Label: "Status TTL", Kind: statusInfo, Message: cfg.ShortTTL().String()},
			}, colorize)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func entriesLine(entries int) statusLine {
	if entries == 0 {
		return statusLine{Label: "Entries", Kind: statusWarn, Message: "empty, next command rediscovers the catalog"}
	}
	return statusLine{Label: "Entries", Kind: statusInfo, Message: fmt.Sprintf("%d", entries)}
}
