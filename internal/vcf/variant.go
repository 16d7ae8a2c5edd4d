package vcf

import (
	"strconv"
	"strings"
)

// Variant is a single genomic variant with one alternate allele.
type Variant struct {
	Chrom  string            // Chromosome name as written in the input
	Pos    int64             // 1-based position of the first REF base
	ID     string            // Variant identifier, "." when absent
	Ref    string            // Reference allele
	Alt    string            // Alternate allele (single allele after splitting)
	Qual   string            // QUAL column as written
	Filter string            // FILTER column
	Info   map[string]string // INFO fields; flags map to ""

	RawInfo       string // INFO column as written, for pass-through output
	SampleColumns string // FORMAT and sample columns, tab-joined
}

// End returns the last genomic base covered by the reference allele. An
// empty REF covers only Pos.
func (v *Variant) End() int64 {
	if len(v.Ref) <= 1 {
		return v.Pos
	}
	return v.Pos + int64(len(v.Ref)) - 1
}

// IsSNV returns true if the variant is a single nucleotide variant.
func (v *Variant) IsSNV() bool {
	return len(v.Ref) == 1 && len(v.Alt) == 1
}

// IsIndel returns true if the variant changes sequence length.
func (v *Variant) IsIndel() bool {
	return len(v.Ref) != len(v.Alt)
}

// NormalizeChrom returns the chromosome name without "chr" prefix.
func (v *Variant) NormalizeChrom() string {
	return strings.TrimPrefix(v.Chrom, "chr")
}

// Key returns chrom_pos_ref/alt, the variant label used in tab output.
func (v *Variant) Key() string {
	var sb strings.Builder
	sb.WriteString(v.NormalizeChrom())
	sb.WriteByte('_')
	sb.WriteString(strconv.FormatInt(v.Pos, 10))
	sb.WriteByte('_')
	sb.WriteString(v.Ref)
	sb.WriteByte('/')
	sb.WriteString(v.Alt)
	return sb.String()
}
