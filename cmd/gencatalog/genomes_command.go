package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"gencatalog/internal/gencode"
	"gencatalog/internal/logging"
)

func newGenomesCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "genomes",
		Short: "List GENCODE assemblies with UCSC accessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, err := ctx.openProvider(cmd.Context())
			if err != nil {
				return err
			}
			records, err := provider.Genomes()
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, records)
			}
			infos := make([]gencode.GenomeInfo, 0, len(records))
			for _, record := range records {
				info, err := provider.GenomeInfo(record.Name)
				if err != nil {
					return err
				}
				infos = append(infos, info)
			}
			return genomeInfoTable(cmd.OutOrStdout(), infos)
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output full records as JSON")
	return cmd
}

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Search assemblies by name, accession, taxonomy id or description",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, err := ctx.openProvider(cmd.Context())
			if err != nil {
				return err
			}
			results, err := provider.Search(strings.Join(args, " "))
			if err != nil {
				return err
			}
			if jsonOutput {
				if results == nil {
					results = []gencode.GenomeInfo{}
				}
				return writeJSON(cmd, results)
			}
			if len(results) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No matching assemblies")
				return nil
			}
			return genomeInfoTable(cmd.OutOrStdout(), results)
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newInfoCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "info <assembly>",
		Short: "Show metadata for one assembly",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, err := ctx.openProvider(cmd.Context())
			if err != nil {
				return err
			}
			info, err := provider.GenomeInfo(args[0])
			if err != nil {
				return err
			}
			peerName, err := provider.PeerName(args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, struct {
					gencode.GenomeInfo
					PeerName string `json:"ucsc_name"`
				}{info, peerName})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Name:        %s\n", info.Name)
			fmt.Fprintf(out, "UCSC name:   %s\n", peerName)
			fmt.Fprintf(out, "Accession:   %s\n", info.Accession)
			fmt.Fprintf(out, "Taxonomy ID: %d\n", info.TaxonomyID)
			fmt.Fprintf(out, "Species:     %s\n", info.Species)
			fmt.Fprintf(out, "Annotation:  %s\n", yesNo(info.Annotations))
			fmt.Fprintf(out, "Other info:  %s\n", info.OtherInfo)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newAnnotationsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "annotations <assembly>",
		Short: "Print annotation download links for an assembly, newest release first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, err := ctx.newProvider()
			if err != nil {
				return err
			}
			// Annotation links only need discovery; a peer failure still
			// leaves them available.
			initErr := provider.Initialize(cmd.Context())
			links, err := provider.ResolveAnnotationLinks(args[0])
			if err != nil {
				if initErr != nil {
					return fmt.Errorf("initialize gencode provider: %w", initErr)
				}
				return err
			}
			if initErr != nil {
				logging.WarnWithContext(ctx.log(), "provider partially initialized", "provider_partial_init",
					logging.String("state", provider.State().String()),
					logging.Error(initErr),
					logging.String(logging.FieldImpact, "accessions and download links unavailable"))
			}
			if jsonOutput {
				return writeJSON(cmd, links)
			}
			for _, link := range links {
				fmt.Fprintln(cmd.OutOrStdout(), link)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
