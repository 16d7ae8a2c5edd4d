package cache

// Region tags a transcript coordinate as coding or untranslated.
type Region uint8

const (
	// RegionCoding marks a position inside the CDS. Non-coding transcripts
	// tag every position with it and carry plain transcript positions.
	RegionCoding Region = iota
	// RegionUTR5 marks a position before the CDS (c.-N).
	RegionUTR5
	// RegionUTR3 marks a position after the CDS (c.*N).
	RegionUTR3
)

// String returns the region name.
func (r Region) String() string {
	switch r {
	case RegionCoding:
		return "coding"
	case RegionUTR5:
		return "5'UTR"
	case RegionUTR3:
		return "3'UTR"
	}
	return "unknown"
}

// ParseRegion is the inverse of Region.String.
func ParseRegion(s string) (Region, bool) {
	switch s {
	case "coding":
		return RegionCoding, true
	case "5'UTR":
		return RegionUTR5, true
	case "3'UTR":
		return RegionUTR3, true
	}
	return RegionCoding, false
}

// Coord is a transcript-relative coordinate. Pos is the CDS position for
// RegionCoding and the distance from the CDS for the UTR regions, so it is
// always >= 1 on a well-formed transcript.
type Coord struct {
	Pos    int64
	Region Region
}

// ExonBoundary holds the transcript coordinates of an exon's genomic first
// (Start) and last (End) base.
type ExonBoundary struct {
	Start Coord
	End   Coord
}

// Boundaries returns the per-exon boundary table, indexed like Exons.
// The table is computed from the exon structure on first use and memoized.
func (t *Transcript) Boundaries() []ExonBoundary {
	t.boundsOnce.Do(func() {
		if t.bounds == nil {
			t.bounds = computeBoundaries(t)
		}
	})
	return t.bounds
}

// SetBoundaries installs a precomputed boundary table.
func (t *Transcript) SetBoundaries(b []ExonBoundary) {
	t.boundsOnce.Do(func() {})
	t.bounds = b
}

// computeBoundaries derives boundary coordinates from cDNA positions.
// On the reverse strand an exon's genomic first base is its 3'-most base.
func computeBoundaries(t *Transcript) []ExonBoundary {
	if len(t.Exons) == 0 {
		return nil
	}

	var cdsFirst, cdsLast int64
	if t.IsProteinCoding() {
		if t.IsReverseStrand() {
			cdsFirst, cdsLast = t.CDNAPosition(t.CDSEnd), t.CDNAPosition(t.CDSStart)
		} else {
			cdsFirst, cdsLast = t.CDNAPosition(t.CDSStart), t.CDNAPosition(t.CDSEnd)
		}
		// CDS bounds outside the exons: fall back to transcript positions
		if cdsFirst == 0 || cdsLast == 0 {
			cdsFirst, cdsLast = 0, 0
		}
	}

	toCoord := func(x int64) Coord {
		switch {
		case cdsFirst == 0:
			return Coord{Pos: x, Region: RegionCoding}
		case x < cdsFirst:
			return Coord{Pos: cdsFirst - x, Region: RegionUTR5}
		case x > cdsLast:
			return Coord{Pos: x - cdsLast, Region: RegionUTR3}
		}
		return Coord{Pos: x - cdsFirst + 1, Region: RegionCoding}
	}

	bounds := make([]ExonBoundary, len(t.Exons))
	for i, e := range t.Exons {
		bounds[i] = ExonBoundary{
			Start: toCoord(t.CDNAPosition(e.Start)),
			End:   toCoord(t.CDNAPosition(e.End)),
		}
	}
	return bounds
}
