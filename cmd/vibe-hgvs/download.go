package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inodb/vibe-hgvs/internal/cache"
)

// GENCODE FTP URLs
const (
	gencodeBaseURL = "https://ftp.ebi.ac.uk/pub/databases/gencode/Gencode_human/release_46"
	gencodeVersion = "v46"
)

// UCSC table dumps
const (
	ucscBaseURL    = "https://hgdownload.soe.ucsc.edu/goldenPath"
	refseqFileName = "ncbiRefSeq.txt.gz"
)

// ucscBuild maps an assembly name to its UCSC build.
func ucscBuild(assembly string) string {
	if strings.EqualFold(assembly, "GRCh37") {
		return "hg19"
	}
	return "hg38"
}

// modelURL returns the gene model URL for the given source and assembly.
func modelURL(source, assembly string) (string, error) {
	switch strings.ToLower(source) {
	case "gencode":
		if strings.EqualFold(assembly, "GRCh37") {
			return fmt.Sprintf("%s/GRCh37_mapping/gencode.%slift37.annotation.gtf.gz", gencodeBaseURL, gencodeVersion), nil
		}
		return fmt.Sprintf("%s/gencode.%s.annotation.gtf.gz", gencodeBaseURL, gencodeVersion), nil
	case "refseq":
		return fmt.Sprintf("%s/%s/database/%s", ucscBaseURL, ucscBuild(assembly), refseqFileName), nil
	}
	return "", fmt.Errorf("unknown source %q (want gencode or refseq)", source)
}

// referenceURL returns the UCSC genome FASTA URL for the assembly.
func referenceURL(assembly string) string {
	build := ucscBuild(assembly)
	return fmt.Sprintf("%s/%s/bigZips/%s.fa.gz", ucscBaseURL, build, build)
}

func newDownloadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download a gene model and canonical transcript overrides",
		Long: `Download fetches a gene model for the assembly into ~/.vibe-hgvs/<assembly>/.
annotate, locate and serve pick it up when --gene-model is not given.

Files downloaded:
  gencode: gencode.v46.annotation.gtf.gz (~50MB for GRCh38)
  refseq:  ncbiRefSeq.txt.gz (~20MB)
  Genome Nexus canonical transcript overrides
  --with-reference: UCSC genome FASTA (~1GB)`,
		Example: `  vibe-hgvs download
  vibe-hgvs download --assembly GRCh37 --source refseq
  vibe-hgvs download --output /data/vibe-hgvs`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := bindFlags(cmd); err != nil {
				return err
			}
			return runDownload(cmd)
		},
	}

	cmd.Flags().String("assembly", "GRCh38", "Genome assembly: GRCh37 or GRCh38")
	cmd.Flags().String("source", "gencode", "Gene model source: gencode or refseq")
	cmd.Flags().String("output", "", "Output directory (default: ~/.vibe-hgvs/)")
	cmd.Flags().Bool("with-reference", false, "Also download the reference genome FASTA")

	return cmd
}

func runDownload(cmd *cobra.Command) error {
	assembly := viper.GetString("assembly")
	url, err := modelURL(viper.GetString("source"), assembly)
	if err != nil {
		return err
	}

	outputDir := viper.GetString("output")
	if outputDir == "" {
		outputDir = dataDir()
	}
	destDir := filepath.Join(outputDir, strings.ToLower(assembly))
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("create directory %s: %w", destDir, err)
	}

	out := cmd.OutOrStdout()
	d := &downloader{
		client:   &http.Client{Timeout: 30 * time.Minute},
		out:      out,
		progress: isTerminal(out),
	}

	fmt.Fprintf(out, "Downloading %s gene model for %s...\n", viper.GetString("source"), assembly)
	fmt.Fprintf(out, "Destination: %s\n\n", destDir)

	ctx := cmd.Context()
	if err := d.fetch(ctx, url, filepath.Join(destDir, filepath.Base(url))); err != nil {
		return fmt.Errorf("download gene model: %w", err)
	}

	canonicalFile := filepath.Join(destDir, cache.CanonicalFileName())
	if err := d.fetch(ctx, cache.CanonicalFileURL(assembly), canonicalFile); err != nil {
		// The tool works without overrides.
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not download canonical transcript overrides: %v\n", err)
	}

	if viper.GetBool("with-reference") {
		refURL := referenceURL(assembly)
		if err := d.fetch(ctx, refURL, filepath.Join(destDir, filepath.Base(refURL))); err != nil {
			return fmt.Errorf("download reference: %w", err)
		}
	}

	fmt.Fprintf(out, "\nDownload complete!\n")
	fmt.Fprintf(out, "To annotate variants, run:\n")
	fmt.Fprintf(out, "  vibe-hgvs annotate --assembly %s input.vcf\n", assembly)
	return nil
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

type downloader struct {
	client   *http.Client
	out      io.Writer
	progress bool
}

// fetch downloads url to destPath via a temporary file. Existing files are
// kept.
func (d *downloader) fetch(ctx context.Context, url, destPath string) error {
	if info, err := os.Stat(destPath); err == nil {
		fmt.Fprintf(d.out, "  %s already exists (%s), skipping\n", filepath.Base(destPath), formatSize(info.Size()))
		return nil
	}

	fmt.Fprintf(d.out, "  Downloading %s...\n", filepath.Base(destPath))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP error: %s", resp.Status)
	}

	tmpPath := destPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	pw := &progressWriter{
		out:       d.out,
		enabled:   d.progress,
		total:     resp.ContentLength,
		lastPrint: time.Now(),
	}
	_, err = io.Copy(f, io.TeeReader(resp.Body, pw))
	f.Close()
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("download failed: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename file: %w", err)
	}

	fmt.Fprintf(d.out, "    Done: %s\n", formatSize(pw.downloaded))
	return nil
}

// progressWriter counts downloaded bytes and, when enabled, redraws a
// progress line at most once a second.
type progressWriter struct {
	out        io.Writer
	enabled    bool
	total      int64
	downloaded int64
	lastPrint  time.Time
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n := len(p)
	pw.downloaded += int64(n)

	if pw.enabled && time.Since(pw.lastPrint) > time.Second {
		if pw.total > 0 {
			pct := float64(pw.downloaded) / float64(pw.total) * 100
			fmt.Fprintf(pw.out, "\r    Progress: %s / %s (%.1f%%)  ",
				formatSize(pw.downloaded), formatSize(pw.total), pct)
		} else {
			fmt.Fprintf(pw.out, "\r    Progress: %s  ", formatSize(pw.downloaded))
		}
		pw.lastPrint = time.Now()
	}

	return n, nil
}

// formatSize formats bytes as human-readable size.
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
