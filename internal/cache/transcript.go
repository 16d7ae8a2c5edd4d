// Package cache provides gene model loading and transcript lookup.
package cache

import "sync"

// Transcript represents a specific gene isoform.
type Transcript struct {
	ID          string // Transcript accession with version (e.g., NM_004985.5)
	GeneID      string // Parent gene ID, empty for genePred sources
	GeneName    string // Parent gene symbol
	Chrom       string // Chromosome, without "chr" prefix
	Start       int64  // Transcript start (1-based)
	End         int64  // Transcript end (1-based, inclusive)
	Strand      int8   // +1 or -1
	Biotype     string // Transcript biotype
	IsCanonical bool   // Ensembl canonical flag
	Exons       []Exon // Exons in ascending genomic order on both strands
	CDSStart    int64  // CDS start (genomic, 1-based), 0 if non-coding
	CDSEnd      int64  // CDS end (genomic, 1-based), 0 if non-coding

	boundsOnce sync.Once
	bounds     []ExonBoundary
}

// Exon represents a single exon within a transcript.
type Exon struct {
	Number int   // Exon number in transcript order (1-based)
	Start  int64 // Genomic start (1-based)
	End    int64 // Genomic end (1-based, inclusive)
}

// Len returns the number of bases in the exon.
func (e Exon) Len() int64 {
	return e.End - e.Start + 1
}

// IsProteinCoding returns true if the transcript has a coding sequence.
func (t *Transcript) IsProteinCoding() bool {
	return t.CDSStart > 0 && t.CDSEnd > 0
}

// IsForwardStrand returns true if the transcript is on the forward strand.
func (t *Transcript) IsForwardStrand() bool {
	return t.Strand == 1
}

// IsReverseStrand returns true if the transcript is on the reverse strand.
func (t *Transcript) IsReverseStrand() bool {
	return t.Strand == -1
}

// Contains returns true if the given position is within the transcript boundaries.
func (t *Transcript) Contains(pos int64) bool {
	return pos >= t.Start && pos <= t.End
}

// Overlaps returns true if [start, end] shares at least one base with the transcript.
func (t *Transcript) Overlaps(start, end int64) bool {
	return start <= t.End && end >= t.Start
}

// FindExon returns the index of the exon containing pos, or -1.
func (t *Transcript) FindExon(pos int64) int {
	lo, hi := 0, len(t.Exons)-1
	for lo <= hi {
		mid := lo + (hi-lo)/2
		e := &t.Exons[mid]
		switch {
		case pos < e.Start:
			hi = mid - 1
		case pos > e.End:
			lo = mid + 1
		default:
			return mid
		}
	}
	return -1
}

// CDNAPosition returns the 1-based position of an exonic base along the
// spliced transcript, counted from its 5' end. Returns 0 for positions
// outside every exon.
func (t *Transcript) CDNAPosition(pos int64) int64 {
	idx := t.FindExon(pos)
	if idx < 0 {
		return 0
	}
	var before int64
	if t.IsReverseStrand() {
		for _, e := range t.Exons[idx+1:] {
			before += e.Len()
		}
		return before + t.Exons[idx].End - pos + 1
	}
	for _, e := range t.Exons[:idx] {
		before += e.Len()
	}
	return before + pos - t.Exons[idx].Start + 1
}

// ExonicLength returns the total number of exonic bases.
func (t *Transcript) ExonicLength() int64 {
	var n int64
	for _, e := range t.Exons {
		n += e.Len()
	}
	return n
}
