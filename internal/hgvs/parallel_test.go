package hgvs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-hgvs/internal/cache"
	"github.com/inodb/vibe-hgvs/internal/vcf"
)

func makeItems(n int) <-chan WorkItem {
	ch := make(chan WorkItem, n)
	for i := range n {
		ch <- WorkItem{
			Seq: i,
			Variant: &vcf.Variant{
				Chrom: "chr1",
				Pos:   int64(1001 + i),
				Ref:   "A",
				Alt:   "T",
			},
			Extra: i,
		}
	}
	close(ch)
	return ch
}

func TestParallelDescribe_OrderPreservation(t *testing.T) {
	b := NewBuilder(newTestCache(twoExonTranscript()))

	results := b.ParallelDescribe(makeItems(200), 8)

	var collected []int
	err := OrderedCollect(results, func(r WorkResult) error {
		require.NoError(t, r.Err)
		require.Equal(t, 1, r.Desc.Len())
		assert.Equal(t, r.Variant.Pos, r.Desc.Start)
		assert.Equal(t, r.Seq, r.Extra)
		collected = append(collected, r.Seq)
		return nil
	})
	require.NoError(t, err)

	require.Len(t, collected, 200)
	for i, seq := range collected {
		assert.Equal(t, i, seq, "result %d out of order", i)
	}
}

func TestParallelDescribe_IndependentDescriptors(t *testing.T) {
	b := NewBuilder(newTestCache(twoExonTranscript()))

	seen := map[*Descriptor]bool{}
	err := OrderedCollect(b.ParallelDescribe(makeItems(50), 4), func(r WorkResult) error {
		assert.False(t, seen[r.Desc])
		seen[r.Desc] = true
		assert.Equal(t, loc(coding(int64(r.Seq+1)), 0), r.Desc.At(0).Start)
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, seen, 50)
}

func TestOrderedCollect_StopsOnError(t *testing.T) {
	b := NewBuilder(newTestCache(twoExonTranscript()))
	stop := errors.New("stop")

	calls := 0
	err := OrderedCollect(b.ParallelDescribe(makeItems(100), 0), func(r WorkResult) error {
		calls++
		if r.Seq == 9 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 10, calls)
}

// sliceParser serves variants from memory.
type sliceParser struct {
	variants []*vcf.Variant
	line     int
	err      error
}

func (p *sliceParser) Next() (*vcf.Variant, error) {
	if p.line == len(p.variants) {
		return nil, p.err
	}
	v := p.variants[p.line]
	p.line++
	return v, nil
}

func (p *sliceParser) Close() error    { return nil }
func (p *sliceParser) LineNumber() int { return p.line }

func TestDescribeAll(t *testing.T) {
	b := NewBuilder(newTestCache(twoExonTranscript()))
	p := &sliceParser{variants: []*vcf.Variant{
		{Chrom: "1", Pos: 1050, Ref: "A", Alt: "G"},
		{Chrom: "1", Pos: 5000, Ref: "A", Alt: "G"},
		{Chrom: "1", Pos: 1110, Ref: "C", Alt: "T"},
	}}

	var names []string
	stats, err := b.DescribeAll(context.Background(), p, 2, func(v *vcf.Variant, d *Descriptor) error {
		names = append(names, FormatDescriptor(d)...)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, Stats{Variants: 3, Cores: 2}, stats)
	assert.Equal(t, []string{"NM_000002.1:c.50", "NM_000002.1:c.100+10"}, names)
}

func TestDescribeAll_CountsFailures(t *testing.T) {
	bad := twoExonTranscript()
	bad.SetBoundaries([]cache.ExonBoundary{
		{Start: coding(1), End: coding(100)},
		{Start: coding(101), End: coding(250)},
	})
	b := NewBuilder(newTestCache(bad))
	p := &sliceParser{variants: []*vcf.Variant{
		{Chrom: "1", Pos: 1250, Ref: "A", Alt: "G"},
		{Chrom: "1", Pos: 1050, Ref: "A", Alt: "G"},
	}}

	stats, err := b.DescribeAll(context.Background(), p, 1, func(*vcf.Variant, *Descriptor) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, Stats{Variants: 2, Failed: 1, Cores: 1}, stats)
}

func TestDescribeAll_Errors(t *testing.T) {
	b := NewBuilder(newTestCache(twoExonTranscript()))

	readErr := errors.New("disk on fire")
	p := &sliceParser{variants: []*vcf.Variant{{Chrom: "1", Pos: 1050, Ref: "A", Alt: "G"}}, err: readErr}
	_, err := b.DescribeAll(context.Background(), p, 1, func(*vcf.Variant, *Descriptor) error { return nil })
	assert.ErrorIs(t, err, readErr)

	writeErr := errors.New("write failed")
	many := &sliceParser{}
	for i := range 500 {
		many.variants = append(many.variants, &vcf.Variant{Chrom: "1", Pos: int64(1001 + i%300), Ref: "A", Alt: "G"})
	}
	calls := 0
	_, err = b.DescribeAll(context.Background(), many, 4, func(*vcf.Variant, *Descriptor) error {
		calls++
		return writeErr
	})
	assert.ErrorIs(t, err, writeErr)
	assert.Equal(t, 1, calls)
}
