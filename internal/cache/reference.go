package cache

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Reference holds reference genome sequences keyed by chromosome.
type Reference struct {
	path      string
	sequences map[string]string // normalized chrom -> sequence
}

// NewReference creates an empty reference for the given FASTA path.
func NewReference(path string) *Reference {
	return &Reference{
		path:      path,
		sequences: make(map[string]string),
	}
}

// LoadReference reads a genome FASTA file (optionally gzipped) and attaches
// it to the cache.
func LoadReference(c *Cache, path string) (*Reference, error) {
	r := NewReference(path)
	if err := r.Load(); err != nil {
		return nil, err
	}
	c.SetReference(r)
	return r, nil
}

// Load parses the FASTA file.
func (r *Reference) Load() error {
	in, err := openInput(r.path)
	if err != nil {
		return fmt.Errorf("open FASTA file: %w", err)
	}
	defer in.Close()

	return r.parseFASTA(in)
}

// parseFASTA reads records whose header's first word is the chromosome name,
// e.g. ">chr12 AC:CM000674.2 gi:568336012 LN:133275309".
func (r *Reference) parseFASTA(reader io.Reader) error {
	scanner := bufio.NewScanner(reader)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	var chrom string
	var seq strings.Builder

	flush := func() {
		if chrom != "" {
			r.sequences[chrom] = seq.String()
		}
		seq.Reset()
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, ">") {
			flush()
			name, _, _ := strings.Cut(strings.TrimPrefix(line, ">"), " ")
			chrom = normalizeChrom(strings.TrimSpace(name))
			continue
		}
		seq.WriteString(strings.ToUpper(strings.TrimSpace(line)))
	}
	flush()

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan FASTA: %w", err)
	}
	return nil
}

// Bases returns the sequence for [start, end] (1-based, inclusive).
func (r *Reference) Bases(chrom string, start, end int64) string {
	seq, ok := r.sequences[normalizeChrom(chrom)]
	if !ok || start < 1 || end < start || end > int64(len(seq)) {
		return ""
	}
	return seq[start-1 : end]
}

// HasChrom reports whether a sequence was loaded for chrom.
func (r *Reference) HasChrom(chrom string) bool {
	_, ok := r.sequences[normalizeChrom(chrom)]
	return ok
}

// SequenceCount returns the number of loaded sequences.
func (r *Reference) SequenceCount() int {
	return len(r.sequences)
}
