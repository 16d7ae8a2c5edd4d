package hgvs

import "github.com/inodb/vibe-hgvs/internal/cache"

// twoExonTranscript is a fully coding forward transcript with exons
// 1001-1100 and 1201-1300, giving boundaries 1/100 and 101/200.
func twoExonTranscript() *cache.Transcript {
	return &cache.Transcript{
		ID:       "NM_000002.1",
		GeneName: "TWO",
		Chrom:    "1",
		Start:    1001,
		End:      1300,
		Strand:   1,
		CDSStart: 1001,
		CDSEnd:   1300,
		Exons: []cache.Exon{
			{Number: 1, Start: 1001, End: 1100},
			{Number: 2, Start: 1201, End: 1300},
		},
	}
}

// threeExonTranscript has exons 1001-1100, 1201-1300 and 1401-1500 and
// CDS 1051-1450, so the first and last exons straddle the CDS edges.
func threeExonTranscript(strand int8) *cache.Transcript {
	exons := []cache.Exon{
		{Number: 1, Start: 1001, End: 1100},
		{Number: 2, Start: 1201, End: 1300},
		{Number: 3, Start: 1401, End: 1500},
	}
	if strand < 0 {
		exons[0].Number, exons[2].Number = 3, 1
	}
	return &cache.Transcript{
		ID:       "NM_000003.2",
		GeneName: "THREE",
		Chrom:    "1",
		Start:    1001,
		End:      1500,
		Strand:   strand,
		CDSStart: 1051,
		CDSEnd:   1450,
		Exons:    exons,
	}
}

// singleExonTranscript holds its whole CDS (1101-1400) in one exon.
func singleExonTranscript(strand int8) *cache.Transcript {
	return &cache.Transcript{
		ID:       "NM_000001.1",
		GeneName: "ONE",
		Chrom:    "1",
		Start:    1001,
		End:      1500,
		Strand:   strand,
		CDSStart: 1101,
		CDSEnd:   1400,
		Exons:    []cache.Exon{{Number: 1, Start: 1001, End: 1500}},
	}
}

func coding(pos int64) cache.Coord { return cache.Coord{Pos: pos, Region: cache.RegionCoding} }
func utr5(pos int64) cache.Coord   { return cache.Coord{Pos: pos, Region: cache.RegionUTR5} }
func utr3(pos int64) cache.Coord   { return cache.Coord{Pos: pos, Region: cache.RegionUTR3} }

func loc(c cache.Coord, offset int64) Location {
	return Location{Coord: c, Offset: offset}
}
