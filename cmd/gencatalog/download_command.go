package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gencatalog/internal/peer"
)

func newLinkCommand(ctx *commandContext) *cobra.Command {
	var maskFlag string
	var skipProbe bool

	cmd := &cobra.Command{
		Use:   "link <assembly>",
		Short: "Print the UCSC sequence download link for an assembly",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mask, err := peer.ParseMask(maskFlag)
			if err != nil {
				return err
			}
			provider, err := ctx.openProvider(cmd.Context())
			if err != nil {
				return err
			}
			link, err := provider.ResolveDownloadLink(cmd.Context(), args[0], mask, peer.LinkOptions{SkipProbe: skipProbe})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), link)
			return nil
		},
	}
	cmd.Flags().StringVarP(&maskFlag, "mask", "m", string(peer.MaskSoft), "Repeat masking: soft, hard or none")
	cmd.Flags().BoolVar(&skipProbe, "skip-probe", false, "Return the first candidate link without checking it exists")
	return cmd
}

func newDownloadCommand(ctx *commandContext) *cobra.Command {
	var maskFlag string
	var localName string
	var genomesDir string

	cmd := &cobra.Command{
		Use:   "download <assembly>",
		Short: "Download an assembly sequence from UCSC",
		Long: "Download the UCSC sequence matching a GENCODE assembly. GENCODE does not publish\n" +
			"masked sequences; the UCSC contigs match the GENCODE annotation.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mask, err := peer.ParseMask(maskFlag)
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			dir := genomesDir
			if dir == "" {
				dir = cfg.Paths.GenomesDir
			}
			local := localName
			if local == "" {
				local = args[0]
			}

			provider, err := ctx.openProvider(cmd.Context())
			if err != nil {
				return err
			}
			path, err := provider.DownloadGenome(cmd.Context(), args[0], peer.DownloadRequest{
				GenomesDir: dir,
				LocalName:  local,
				Mask:       mask,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Downloaded %s to %s\n", args[0], path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&maskFlag, "mask", "m", string(peer.MaskSoft), "Repeat masking: soft, hard or none")
	cmd.Flags().StringVarP(&localName, "localname", "l", "", "Directory name under the genomes directory (default: assembly name)")
	cmd.Flags().StringVarP(&genomesDir, "genomes-dir", "g", "", "Override the configured genomes directory")
	return cmd
}
