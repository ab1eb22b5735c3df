package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"gencatalog/internal/cache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and reset the discovery cache",
	}

	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cached computations",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.cacheStore()
			if err != nil {
				return err
			}
			entries, err := store.Entries(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput {
				if entries == nil {
					entries = []cache.EntryInfo{}
				}
				return writeJSON(cmd, entries)
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "Cache is empty")
				return nil
			}
			const stampLayout = "2006-01-02 15:04"
			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, []string{
					entry.Func,
					entry.CreatedAt.Local().Format(stampLayout),
					strconv.Itoa(entry.Size),
					entry.Key,
				})
			}
			fmt.Fprintln(out, renderColumns([]column{
				{Header: "Function"},
				{Header: "Created"},
				{Header: "Bytes", Align: alignRight},
				{Header: "Key", MaxWidth: keyColumnWidth},
			}, rows))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.cacheStore()
			if err != nil {
				return err
			}
			removed, err := store.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cache entries\n", removed)
			return nil
		},
	}
}
