package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-hgvs/internal/hgvs"
)

func newLocateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locate <chrom:pos[-end]>",
		Short: "Print the HGVS coordinate of a genomic position on every overlapping transcript",
		Example: `  vibe-hgvs locate 12:25245350
  vibe-hgvs locate chr17:7675088-7675090 --canonical`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := bindFlags(cmd); err != nil {
				return err
			}
			logger, err := newLogger()
			if err != nil {
				return fmt.Errorf("create logger: %w", err)
			}
			defer logger.Sync() //nolint:errcheck
			return runLocate(cmd, args[0], logger)
		},
	}

	addModelFlags(cmd)
	cmd.Flags().String("ref", "", "Reference allele (default: read from --reference when loaded)")
	cmd.Flags().String("alt", "", "Alternate allele")
	cmd.Flags().Int64("flank", 0, "Also report transcripts within this many bases up- or downstream")
	cmd.Flags().Bool("canonical", false, "Only report canonical transcripts")

	return cmd
}

func runLocate(cmd *cobra.Command, region string, logger *zap.Logger) error {
	chrom, start, end, err := hgvs.ParseRegion(region)
	if err != nil {
		return err
	}

	files, err := resolveModelFiles()
	if err != nil {
		return err
	}
	c, err := loadModel(files, !viper.GetBool("no-model-cache"), logger)
	if err != nil {
		return err
	}

	b := hgvs.NewBuilder(c)
	b.SetFlank(viper.GetInt64("flank"))
	b.SetCanonicalOnly(viper.GetBool("canonical"))
	b.SetLogger(logger)

	ref := strings.ToUpper(viper.GetString("ref"))
	if ref == "" {
		ref = c.RefBases(chrom, start, end)
	}
	d, err := b.Describe(chrom, start, end, ref, strings.ToUpper(viper.GetString("alt")))
	if err != nil {
		return err
	}
	defer d.Clear()

	if d.Len() == 0 {
		logger.Info("no transcripts overlap region", zap.String("region", region))
		return nil
	}
	out := cmd.OutOrStdout()
	for _, name := range hgvs.FormatDescriptor(d) {
		fmt.Fprintln(out, name)
	}
	return nil
}
