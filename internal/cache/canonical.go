package cache

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// CanonicalOverrides maps gene symbol -> canonical transcript accession
// (without version).
type CanonicalOverrides map[string]string

// Genome Nexus canonical transcript tables.
const (
	canonicalFileGRCh38 = "https://raw.githubusercontent.com/genome-nexus/genome-nexus-importer/master/data/grch38_ensembl95/export/ensembl_biomart_canonical_transcripts_per_hgnc.txt"
	canonicalFileGRCh37 = "https://raw.githubusercontent.com/genome-nexus/genome-nexus-importer/master/data/grch37_ensembl92/export/ensembl_biomart_canonical_transcripts_per_hgnc.txt"
	canonicalFileName   = "ensembl_biomart_canonical_transcripts_per_hgnc.txt"
)

// CanonicalFileURL returns the canonical transcript table URL for an assembly.
func CanonicalFileURL(assembly string) string {
	if strings.EqualFold(assembly, "GRCh37") {
		return canonicalFileGRCh37
	}
	return canonicalFileGRCh38
}

// CanonicalFileName returns the local file name of the canonical table.
func CanonicalFileName() string {
	return canonicalFileName
}

// LoadCanonicalOverrides loads a canonical transcript table. Supported
// layouts, chosen from the header line:
//   - MSKCC isoform overrides: gene_name, refseq_id, enst_id, note
//     (refseq_id is used, falling back to enst_id when empty)
//   - Genome Nexus biomart export: hgnc_symbol in column 0 and the
//     canonical transcript in column 4
func LoadCanonicalOverrides(path string) (CanonicalOverrides, error) {
	in, err := openInput(path)
	if err != nil {
		return nil, fmt.Errorf("open canonical overrides file: %w", err)
	}
	defer in.Close()

	return parseCanonicalOverrides(in)
}

func parseCanonicalOverrides(reader io.Reader) (CanonicalOverrides, error) {
	overrides := make(CanonicalOverrides)
	scanner := bufio.NewScanner(reader)

	if !scanner.Scan() {
		return overrides, scanner.Err()
	}
	cols := []int{4}
	header := make(map[string]int)
	for i, h := range strings.Split(scanner.Text(), "\t") {
		header[h] = i
	}
	if i, ok := header["refseq_id"]; ok {
		cols = []int{i}
		if j, ok := header["enst_id"]; ok {
			cols = append(cols, j)
		}
	} else if j, ok := header["enst_id"]; ok {
		cols = []int{j}
	}

	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), "\t")
		if len(fields) == 0 || fields[0] == "" {
			continue
		}
		for _, col := range cols {
			if col >= len(fields) {
				continue
			}
			tx := strings.TrimSpace(fields[col])
			if tx == "" || tx == "nan" {
				continue
			}
			overrides[fields[0]] = stripVersion(tx)
			break
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan canonical overrides: %w", err)
	}
	return overrides, nil
}

// ApplyCanonicalOverrides marks, for each gene with an override whose
// transcript is present, that transcript canonical and its siblings not.
// Returns the number of genes updated.
func ApplyCanonicalOverrides(c *Cache, overrides CanonicalOverrides) int {
	byGene := make(map[string][]*Transcript)
	for _, chrom := range c.Chromosomes() {
		for _, t := range c.FindTranscriptsByChrom(chrom) {
			if t.GeneName != "" {
				byGene[t.GeneName] = append(byGene[t.GeneName], t)
			}
		}
	}

	updated := 0
	for gene, canonicalID := range overrides {
		transcripts := byGene[gene]
		found := false
		for _, t := range transcripts {
			if stripVersion(t.ID) == canonicalID {
				found = true
				break
			}
		}
		if !found {
			continue
		}
		for _, t := range transcripts {
			t.IsCanonical = stripVersion(t.ID) == canonicalID
		}
		updated++
	}
	return updated
}

// LoadCanonicalFile reads the overrides at path and applies them to c.
func LoadCanonicalFile(c *Cache, path string) (int, error) {
	if _, err := os.Stat(path); err != nil {
		return 0, fmt.Errorf("canonical overrides file: %w", err)
	}
	overrides, err := LoadCanonicalOverrides(path)
	if err != nil {
		return 0, err
	}
	return ApplyCanonicalOverrides(c, overrides), nil
}
