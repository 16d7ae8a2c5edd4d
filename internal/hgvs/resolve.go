package hgvs

import (
	"fmt"

	"github.com/inodb/vibe-hgvs/internal/cache"
)

// Location is a resolved transcript coordinate. Offset is the intronic or
// flanking distance to the anchoring exon boundary in genomic direction:
// positive when pos lies after the anchor, negative when before, 0 inside
// an exon.
type Location struct {
	cache.Coord
	Offset int64
}

// IsExonic reports whether the location lies inside an exon.
func (l Location) IsExonic() bool {
	return l.Offset == 0
}

// Resolve computes the transcript coordinate of a genomic position.
// It returns ErrOutOfRange when the transcript has no usable exon structure
// and a *ConsistencyError when the boundary table contradicts itself.
func Resolve(t *cache.Transcript, pos int64) (Location, error) {
	if len(t.Exons) == 0 {
		return Location{}, fmt.Errorf("%w: %s has no exons", ErrOutOfRange, t.ID)
	}
	bounds := t.Boundaries()
	if len(bounds) != len(t.Exons) {
		return Location{}, fmt.Errorf("%w: %s has %d boundary entries for %d exons",
			ErrOutOfRange, t.ID, len(bounds), len(t.Exons))
	}

	b := Locate(t, pos)
	switch b.Kind {
	case BlockExon:
		c, err := resolveExonic(t, bounds, b.Left, pos)
		if err != nil {
			return Location{}, err
		}
		return Location{Coord: c}, nil

	case BlockIntron:
		left, right := t.Exons[b.Left], t.Exons[b.Right]
		off1 := pos - left.End
		off2 := right.Start - pos
		if off1 > off2 {
			return Location{Coord: bounds[b.Right].Start, Offset: -off2}, nil
		}
		return Location{Coord: bounds[b.Left].End, Offset: off1}, nil

	case BlockUpstream:
		return Location{Coord: bounds[0].Start, Offset: pos - t.Exons[0].Start}, nil

	case BlockDownstream:
		last := len(t.Exons) - 1
		return Location{Coord: bounds[last].End, Offset: pos - t.Exons[last].End}, nil
	}
	return Location{}, fmt.Errorf("%w: %s at %d (%s)", ErrOutOfRange, t.ID, pos, b)
}

// resolveExonic places pos inside exon i. off and back are the distances
// from the exon's genomic start and end.
func resolveExonic(t *cache.Transcript, bounds []cache.ExonBoundary, i int, pos int64) (cache.Coord, error) {
	e := t.Exons[i]
	off := pos - e.Start
	back := e.End - pos
	s, end := bounds[i].Start, bounds[i].End

	if s.Region == end.Region {
		c1, c2 := s.Pos-off, end.Pos+back
		if c1 != c2 {
			c1, c2 = s.Pos+off, end.Pos-back
			if c1 != c2 {
				return cache.Coord{}, &ConsistencyError{
					TranscriptID: t.ID,
					Exon:         i,
					Pos:          pos,
					FromStart:    c1,
					FromEnd:      c2,
				}
			}
		}
		return cache.Coord{Pos: c1, Region: s.Region}, nil
	}

	// The exon straddles a CDS edge. UTR distances shrink toward the CDS
	// from either boundary, so a positive UTR candidate places pos in that UTR.
	c1, c2 := s.Pos-off, end.Pos-back
	if s.Region != cache.RegionCoding && c1 > 0 {
		return cache.Coord{Pos: c1, Region: s.Region}, nil
	}
	if end.Region != cache.RegionCoding && c2 > 0 {
		return cache.Coord{Pos: c2, Region: end.Region}, nil
	}

	switch {
	case s.Region == cache.RegionCoding:
		if t.IsForwardStrand() {
			c1 = s.Pos + off
		}
		return cache.Coord{Pos: c1, Region: cache.RegionCoding}, nil
	case end.Region == cache.RegionCoding:
		if t.IsReverseStrand() {
			c2 = end.Pos + back
		}
		return cache.Coord{Pos: c2, Region: cache.RegionCoding}, nil
	}

	// Both boundaries are UTR: the whole CDS lies inside this exon. Count
	// from the 5'UTR side, which sits at the genomic start on the forward strand.
	if s.Region == cache.RegionUTR5 {
		return cache.Coord{Pos: 1 - c1, Region: cache.RegionCoding}, nil
	}
	return cache.Coord{Pos: 1 - c2, Region: cache.RegionCoding}, nil
}
