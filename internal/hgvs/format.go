package hgvs

import (
	"strconv"
	"strings"

	"github.com/inodb/vibe-hgvs/internal/cache"
)

// FormatPosition renders a location as HGVS position text: N, -N or *N,
// followed by +k or -k for intronic and flanking offsets. Offsets are
// converted from genomic to transcript direction on the reverse strand.
func FormatPosition(loc Location, reverse bool) string {
	var sb strings.Builder
	switch loc.Region {
	case cache.RegionUTR5:
		sb.WriteByte('-')
	case cache.RegionUTR3:
		sb.WriteByte('*')
	}
	sb.WriteString(strconv.FormatInt(loc.Pos, 10))

	off := loc.Offset
	if reverse {
		off = -off
	}
	if off > 0 {
		sb.WriteByte('+')
	}
	if off != 0 {
		sb.WriteString(strconv.FormatInt(off, 10))
	}
	return sb.String()
}

// FormatCore renders a core as <transcript>:c.<start>[_<end>], using n. for
// non-coding transcripts. Reverse-strand ranges are written in transcript
// order.
func FormatCore(c *Core) string {
	reverse := false
	prefix := "c."
	if t := c.Transcript; t != nil {
		reverse = t.IsReverseStrand()
		if !t.IsProteinCoding() {
			prefix = "n."
		}
	}

	first := FormatPosition(c.Start, reverse)
	var sb strings.Builder
	sb.WriteString(c.Name1)
	sb.WriteByte(':')
	sb.WriteString(prefix)
	if !c.HasEnd {
		sb.WriteString(first)
		return sb.String()
	}

	last := FormatPosition(c.End, reverse)
	if reverse {
		first, last = last, first
	}
	sb.WriteString(first)
	sb.WriteByte('_')
	sb.WriteString(last)
	return sb.String()
}

// FormatDescriptor formats every committed core of d.
func FormatDescriptor(d *Descriptor) []string {
	names := make([]string, 0, d.Len())
	for i := range d.Cores {
		names = append(names, FormatCore(&d.Cores[i]))
	}
	return names
}
