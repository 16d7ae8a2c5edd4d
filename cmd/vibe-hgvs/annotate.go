package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-hgvs/internal/duckdb"
	"github.com/inodb/vibe-hgvs/internal/hgvs"
	"github.com/inodb/vibe-hgvs/internal/maf"
	"github.com/inodb/vibe-hgvs/internal/output"
	"github.com/inodb/vibe-hgvs/internal/vcf"
)

// resultBatchSize is the number of rows buffered before a DuckDB insert.
const resultBatchSize = 5000

func newAnnotateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "annotate <input.vcf|input.maf>",
		Short: "Add HGVS transcript coordinates to every variant in a VCF or MAF file",
		Long: `Annotate resolves every variant in a VCF or MAF file (plain or gzipped,
"-" for stdin) against the gene model and writes one HGVS name per
overlapping transcript.`,
		Example: `  vibe-hgvs annotate input.vcf
  vibe-hgvs annotate --gene-model ncbiRefSeq.txt.gz -f vcf -o out.vcf input.vcf.gz
  vibe-hgvs annotate --canonical --flank 5000 --save-results results.duckdb input.vcf`,
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
			return runAnnotate(cmd, args[0], logger)
		},
	}

	addModelFlags(cmd)
	cmd.Flags().StringP("output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringP("output-format", "f", "tab", "Output format: tab or vcf")
	cmd.Flags().String("input-format", "auto", "Input format: auto, vcf or maf (auto uses the file extension)")
	cmd.Flags().Int64("flank", 0, "Also report transcripts within this many bases up- or downstream")
	cmd.Flags().Bool("canonical", false, "Only report canonical transcripts")
	cmd.Flags().Int("workers", 0, "Number of worker goroutines (0 = all CPUs)")
	cmd.Flags().String("save-results", "", "Store results in this DuckDB database")

	return cmd
}

func runAnnotate(cmd *cobra.Command, input string, logger *zap.Logger) error {
	format := strings.ToLower(viper.GetString("output-format"))
	if format != "tab" && format != "vcf" {
		return fmt.Errorf("unknown output format %q (want tab or vcf)", format)
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

	inputFormat := detectInputFormat(input, viper.GetString("input-format"))
	if inputFormat == "maf" && format == "vcf" {
		return fmt.Errorf("VCF output needs VCF input; use -f tab for MAF files")
	}
	parser, header, err := openVariants(cmd, input, inputFormat)
	if err != nil {
		return err
	}
	defer parser.Close()

	var out io.Writer = cmd.OutOrStdout()
	if path := viper.GetString("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	var w output.Writer
	if format == "vcf" {
		w = output.NewVCFWriter(out, header)
	} else {
		w = output.NewTabWriter(out)
	}
	if err := w.WriteHeader(); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	sink, err := newResultSink(viper.GetString("save-results"), logger)
	if err != nil {
		return err
	}

	stats, runErr := b.DescribeAll(cmd.Context(), parser, viper.GetInt("workers"),
		func(v *vcf.Variant, d *hgvs.Descriptor) error {
			if err := w.Write(v, d); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			return sink.add(d)
		})

	err = errors.Join(runErr, w.Flush(), sink.close())
	if err != nil {
		return err
	}

	logger.Info("annotation complete",
		zap.Int("variants", stats.Variants),
		zap.Int("failed", stats.Failed),
		zap.Int("cores", stats.Cores))
	return nil
}

// detectInputFormat resolves "auto" from the file name.
func detectInputFormat(input, requested string) string {
	requested = strings.ToLower(requested)
	if requested != "" && requested != "auto" {
		return requested
	}
	name := strings.TrimSuffix(strings.ToLower(input), ".gz")
	if strings.HasSuffix(name, ".maf") {
		return "maf"
	}
	return "vcf"
}

// openVariants opens the input in the given format. The returned header
// lines are empty for MAF input.
func openVariants(cmd *cobra.Command, input, format string) (vcf.VariantParser, []string, error) {
	switch format {
	case "vcf":
		var p *vcf.Parser
		var err error
		if input == "-" {
			p, err = vcf.NewParserFromReader(cmd.InOrStdin())
		} else {
			p, err = vcf.NewParser(input)
		}
		if err != nil {
			return nil, nil, err
		}
		return p, p.Header(), nil
	case "maf":
		var p *maf.Parser
		var err error
		if input == "-" {
			p, err = maf.NewParserFromReader(cmd.InOrStdin())
		} else {
			p, err = maf.NewParser(input)
		}
		if err != nil {
			return nil, nil, err
		}
		return p, nil, nil
	}
	return nil, nil, fmt.Errorf("unknown input format %q (want vcf or maf)", format)
}

// resultSink batches results into a DuckDB store. A sink without a store
// discards everything.
type resultSink struct {
	store   *duckdb.Store
	pending []duckdb.Result
	written int
	logger  *zap.Logger
}

func newResultSink(path string, logger *zap.Logger) (*resultSink, error) {
	s := &resultSink{logger: logger}
	if path == "" {
		return s, nil
	}
	store, err := duckdb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open results database: %w", err)
	}
	s.store = store
	return s, nil
}

func (s *resultSink) add(d *hgvs.Descriptor) error {
	if s.store == nil {
		return nil
	}
	s.pending = append(s.pending, duckdb.ResultsFromDescriptor(d)...)
	if len(s.pending) >= resultBatchSize {
		return s.flush()
	}
	return nil
}

func (s *resultSink) flush() error {
	if len(s.pending) == 0 {
		return nil
	}
	if err := s.store.WriteResults(s.pending); err != nil {
		return fmt.Errorf("save results: %w", err)
	}
	s.written += len(s.pending)
	s.pending = s.pending[:0]
	return nil
}

func (s *resultSink) close() error {
	if s.store == nil {
		return nil
	}
	err := s.flush()
	if err == nil {
		s.logger.Info("saved results",
			zap.String("path", s.store.Path()),
			zap.Int("rows", s.written))
	}
	return errors.Join(err, s.store.Close())
}
