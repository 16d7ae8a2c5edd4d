package hgvs

import (
	"slices"

	"github.com/inodb/vibe-hgvs/internal/cache"
)

// coreGrowth is the capacity added whenever the core slice is full.
const coreGrowth = 2

// Core is one resolved (transcript, coordinate) pairing for a variant.
type Core struct {
	Start  Location
	End    Location // set only when HasEnd
	HasEnd bool

	Name1 string // transcript accession
	Name2 string // gene symbol

	Transcript *cache.Transcript
}

// Clear resets the core in place. Clearing twice is a no-op.
func (c *Core) Clear() {
	*c = Core{}
}

// Descriptor holds every HGVS core for one variant lookup.
type Descriptor struct {
	Chrom string
	Start int64 // 1-based
	End   int64 // 1-based, inclusive

	Ref    string
	Alt    string
	RefSet bool
	AltSet bool

	Cores []Core
}

// NewDescriptor creates a descriptor for the genomic interval [start, end].
func NewDescriptor(chrom string, start, end int64) *Descriptor {
	return &Descriptor{Chrom: chrom, Start: start, End: end}
}

// SetRef sets the reference allele text. An empty string is a valid allele.
func (d *Descriptor) SetRef(ref string) {
	d.Ref, d.RefSet = ref, true
}

// SetAlt sets the alternate allele text. An empty string is a valid allele.
func (d *Descriptor) SetAlt(alt string) {
	d.Alt, d.AltSet = alt, true
}

// IsSingleBase reports whether the descriptor covers one genomic base.
func (d *Descriptor) IsSingleBase() bool {
	return d.Start == d.End
}

// Len returns the number of committed cores.
func (d *Descriptor) Len() int {
	return len(d.Cores)
}

// At returns the i-th committed core.
func (d *Descriptor) At(i int) *Core {
	return &d.Cores[i]
}

// next returns a cleared slot just past the committed cores. Growth happens
// here, before the caller holds the slot, so the pointer stays valid until
// commit.
func (d *Descriptor) next() *Core {
	n := len(d.Cores)
	if n == cap(d.Cores) {
		d.Cores = slices.Grow(d.Cores, coreGrowth)
	}
	slot := &d.Cores[:n+1][n]
	slot.Clear()
	return slot
}

// commit makes the slot returned by next part of the descriptor.
func (d *Descriptor) commit() {
	d.Cores = d.Cores[:len(d.Cores)+1]
}

// Clear releases every core and resets the descriptor. Safe to call twice.
func (d *Descriptor) Clear() {
	all := d.Cores[:cap(d.Cores)]
	for i := range all {
		all[i].Clear()
	}
	*d = Descriptor{}
}
