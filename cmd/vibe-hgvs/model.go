package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/vibe-hgvs/internal/cache"
	"github.com/inodb/vibe-hgvs/internal/duckdb"
)

// modelFiles are the inputs used to build the transcript cache.
type modelFiles struct {
	Model     string
	Canonical string
	Reference string
}

// addModelFlags registers the gene model flags shared by annotate, locate
// and serve.
func addModelFlags(cmd *cobra.Command) {
	cmd.Flags().String("gene-model", "", "Gene model file: UCSC genePred or GENCODE GTF (default: downloaded model for --assembly)")
	cmd.Flags().String("canonical-file", "", "Canonical transcript overrides (default: downloaded file for --assembly)")
	cmd.Flags().String("reference", "", "Reference genome FASTA (optional, fills in missing ref alleles)")
	cmd.Flags().String("assembly", "GRCh38", "Genome assembly: GRCh37 or GRCh38")
	cmd.Flags().Bool("no-model-cache", false, "Always parse the gene model instead of using the serialized copy")
}

// resolveModelFiles fills in the gene model paths from flags, falling back
// to files fetched by the download command.
func resolveModelFiles() (modelFiles, error) {
	files := modelFiles{
		Model:     viper.GetString("gene-model"),
		Canonical: viper.GetString("canonical-file"),
		Reference: viper.GetString("reference"),
	}
	assembly := viper.GetString("assembly")

	if files.Model == "" {
		model, canonical, found := findDownloadedModel(assembly)
		if !found {
			return files, fmt.Errorf("no gene model for %s: pass --gene-model or run 'vibe-hgvs download --assembly %s'",
				assembly, assembly)
		}
		files.Model = model
		if files.Canonical == "" {
			files.Canonical = canonical
		}
	}
	return files, nil
}

// loadModel builds the transcript cache. The parsed model is kept in a
// gob copy under the data directory and reused while the source file is
// unchanged. Canonical overrides and the reference are applied on every
// load.
func loadModel(files modelFiles, useCache bool, logger *zap.Logger) (*cache.Cache, error) {
	c, err := loadTranscripts(files.Model, useCache, logger)
	if err != nil {
		return nil, err
	}

	if files.Canonical != "" {
		n, err := cache.LoadCanonicalFile(c, files.Canonical)
		if err != nil {
			return nil, err
		}
		logger.Info("applied canonical overrides",
			zap.String("path", files.Canonical),
			zap.Int("genes", n))
	}

	if files.Reference != "" {
		ref, err := cache.LoadReference(c, files.Reference)
		if err != nil {
			return nil, fmt.Errorf("load reference: %w", err)
		}
		logger.Info("loaded reference",
			zap.String("path", files.Reference),
			zap.Int("sequences", ref.SequenceCount()))
	}
	return c, nil
}

func loadTranscripts(path string, useCache bool, logger *zap.Logger) (*cache.Cache, error) {
	fp, err := duckdb.StatFile(path)
	if err != nil {
		return nil, fmt.Errorf("gene model: %w", err)
	}

	var mc *duckdb.ModelCache
	if useCache {
		mc = duckdb.NewModelCache(modelCacheDir(path))
		if mc.Valid(fp) {
			c := cache.New()
			err := mc.Load(c)
			if err == nil {
				logger.Info("loaded gene model from cache",
					zap.String("path", path),
					zap.Int("transcripts", c.TranscriptCount()))
				return c, nil
			}
			logger.Warn("model cache unreadable, reparsing", zap.Error(err))
			mc.Clear()
		}
	}

	c, err := cache.LoadModel(path)
	if err != nil {
		return nil, fmt.Errorf("load gene model: %w", err)
	}
	logger.Info("loaded gene model",
		zap.String("path", path),
		zap.Int("transcripts", c.TranscriptCount()),
		zap.Int("chromosomes", len(c.Chromosomes())))

	if mc != nil {
		if err := mc.Write(c, fp); err != nil {
			logger.Warn("could not write model cache", zap.Error(err))
		}
	}
	return c, nil
}

// modelCacheDir keys the serialized copy by the model's file name so
// several models can be cached side by side.
func modelCacheDir(modelPath string) string {
	name := filepath.Base(modelPath)
	for _, ext := range []string{".gz", ".gtf", ".txt"} {
		name = strings.TrimSuffix(name, ext)
	}
	return filepath.Join(dataDir(), "cache", name)
}

// assemblyDir returns the directory the download command writes to.
func assemblyDir(assembly string) string {
	return filepath.Join(dataDir(), strings.ToLower(assembly))
}

// findDownloadedModel looks for a downloaded gene model, preferring the
// GENCODE GTF over the RefSeq genePred table.
func findDownloadedModel(assembly string) (model, canonical string, found bool) {
	dir := assemblyDir(assembly)

	patterns := []string{"gencode.v*.annotation.gtf.gz", refseqFileName}
	if strings.EqualFold(assembly, "GRCh37") {
		patterns[0] = "gencode.v*lift37.annotation.gtf.gz"
	}
	for _, p := range patterns {
		matches, err := filepath.Glob(filepath.Join(dir, p))
		if err == nil && len(matches) > 0 {
			model = matches[0]
			break
		}
	}
	if model == "" {
		return "", "", false
	}

	cPath := filepath.Join(dir, cache.CanonicalFileName())
	if _, err := os.Stat(cPath); err == nil {
		canonical = cPath
	}
	return model, canonical, true
}
