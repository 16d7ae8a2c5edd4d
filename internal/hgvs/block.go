// Package hgvs maps genomic positions onto transcript-relative HGVS
// coordinates.
package hgvs

import (
	"fmt"

	"github.com/inodb/vibe-hgvs/internal/cache"
)

// BlockKind says where a position falls relative to a transcript's exons.
type BlockKind uint8

const (
	// BlockExon: inside exon Left (== Right).
	BlockExon BlockKind = iota
	// BlockIntron: between exons Left and Right = Left+1.
	BlockIntron
	// BlockUpstream: before the first exon in genomic order.
	BlockUpstream
	// BlockDownstream: after the last exon in genomic order.
	BlockDownstream
)

func (k BlockKind) String() string {
	switch k {
	case BlockExon:
		return "exon"
	case BlockIntron:
		return "intron"
	case BlockUpstream:
		return "upstream"
	case BlockDownstream:
		return "downstream"
	}
	return "unknown"
}

// Block is the result of locating a position among a transcript's exons.
type Block struct {
	Kind  BlockKind
	Left  int // exon index at or before the position, -1 upstream
	Right int // exon index at or after the position, -1 downstream
}

// Indices returns the (blockStart, blockEnd) pair with -1 for a missing side.
func (b Block) Indices() (int, int) {
	return b.Left, b.Right
}

func (b Block) String() string {
	return fmt.Sprintf("%s(%d,%d)", b.Kind, b.Left, b.Right)
}

func blockFromIndices(start, end int) Block {
	switch {
	case start == -1 && end >= 0:
		return Block{Kind: BlockUpstream, Left: -1, Right: end}
	case end == -1:
		return Block{Kind: BlockDownstream, Left: start, Right: -1}
	case start == end:
		return Block{Kind: BlockExon, Left: start, Right: end}
	}
	return Block{Kind: BlockIntron, Left: start, Right: end}
}

// Locate finds the exon or intron containing pos. Exons are scanned in
// genomic order and the scan stops at the first exon starting after pos or
// containing it. Positions outside the transcript are not an error: they
// come back as BlockUpstream or BlockDownstream.
func Locate(t *cache.Transcript, pos int64) Block {
	start, end := -1, -1
	for i := range t.Exons {
		e := &t.Exons[i]
		if pos < e.Start {
			end = i
			break
		}
		start = i
		if pos <= e.End {
			end = i
			break
		}
	}
	return blockFromIndices(start, end)
}
