package cache

import (
	"sort"
	"strings"
	"sync"
)

// Cache holds a loaded gene model and, optionally, the reference genome.
type Cache struct {
	// transcripts stores transcripts indexed by chromosome
	transcripts map[string][]*Transcript

	mu    sync.RWMutex
	trees map[string]*IntervalTree

	reference *Reference
}

// New creates a new empty cache.
func New() *Cache {
	return &Cache{
		transcripts: make(map[string][]*Transcript),
		trees:       make(map[string]*IntervalTree),
	}
}

// AddTranscript adds a transcript to the cache.
func (c *Cache) AddTranscript(t *Transcript) {
	chrom := normalizeChrom(t.Chrom)
	t.Chrom = chrom
	c.transcripts[chrom] = append(c.transcripts[chrom], t)

	c.mu.Lock()
	delete(c.trees, chrom)
	c.mu.Unlock()
}

// FindTranscripts returns all transcripts overlapping [start, end] on chrom,
// ordered by transcript start. The interval tree for a chromosome is built on
// first query.
func (c *Cache) FindTranscripts(chrom string, start, end int64) []*Transcript {
	chrom = normalizeChrom(chrom)
	if _, ok := c.transcripts[chrom]; !ok {
		return nil
	}
	return c.tree(chrom).FindOverlaps(start, end)
}

func (c *Cache) tree(chrom string) *IntervalTree {
	c.mu.RLock()
	tree, ok := c.trees[chrom]
	c.mu.RUnlock()
	if ok {
		return tree
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if tree, ok := c.trees[chrom]; ok {
		return tree
	}
	tree = BuildIntervalTree(c.transcripts[chrom])
	c.trees[chrom] = tree
	return tree
}

// GetTranscript returns a specific transcript by ID, or nil if not found.
// IDs match with or without a version suffix.
func (c *Cache) GetTranscript(id string) *Transcript {
	bare := stripVersion(id)
	for _, transcripts := range c.transcripts {
		for _, t := range transcripts {
			if t.ID == id || stripVersion(t.ID) == bare {
				return t
			}
		}
	}
	return nil
}

// TranscriptCount returns the total number of transcripts in the cache.
func (c *Cache) TranscriptCount() int {
	count := 0
	for _, transcripts := range c.transcripts {
		count += len(transcripts)
	}
	return count
}

// Chromosomes returns a sorted list of chromosomes in the cache.
func (c *Cache) Chromosomes() []string {
	chroms := make([]string, 0, len(c.transcripts))
	for chrom := range c.transcripts {
		chroms = append(chroms, chrom)
	}
	sort.Strings(chroms)
	return chroms
}

// FindTranscriptsByChrom returns all transcripts for a chromosome.
func (c *Cache) FindTranscriptsByChrom(chrom string) []*Transcript {
	return c.transcripts[normalizeChrom(chrom)]
}

// SetReference attaches reference genome sequences.
func (c *Cache) SetReference(r *Reference) {
	c.reference = r
}

// RefBases returns the reference bases for [start, end] (1-based, inclusive),
// or "" when no reference is loaded or the range is out of bounds.
func (c *Cache) RefBases(chrom string, start, end int64) string {
	if c.reference == nil {
		return ""
	}
	return c.reference.Bases(chrom, start, end)
}

// normalizeChrom normalizes chromosome names by removing "chr" prefix.
// UCSC gene models use "chr1" while VCF files often use "1".
func normalizeChrom(chrom string) string {
	return strings.TrimPrefix(chrom, "chr")
}

// stripVersion removes the version suffix from an accession.
// e.g., "NM_004985.5" -> "NM_004985"
func stripVersion(id string) string {
	if idx := strings.LastIndex(id, "."); idx != -1 {
		return id[:idx]
	}
	return id
}
