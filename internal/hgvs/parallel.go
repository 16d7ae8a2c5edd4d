package hgvs

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/inodb/vibe-hgvs/internal/vcf"
)

// WorkItem holds a parsed variant ready for description.
type WorkItem struct {
	Seq     int
	Variant *vcf.Variant
	Extra   any
}

// WorkResult holds the descriptor built for a single variant.
type WorkResult struct {
	Seq     int
	Variant *vcf.Variant
	Desc    *Descriptor
	Err     error
	Extra   any
}

// DescribeVariant builds a descriptor covering the reference span of v.
func (b *Builder) DescribeVariant(v *vcf.Variant) (*Descriptor, error) {
	return b.Describe(v.NormalizeChrom(), v.Pos, v.End(), v.Ref, v.Alt)
}

// ParallelDescribe describes work items using a pool of workers. Each
// result carries its own descriptor, so nothing is shared between workers
// apart from the read-only transcript model.
// Results arrive in completion order; use OrderedCollect to restore input
// order. If workers is 0, runtime.NumCPU() is used.
func (b *Builder) ParallelDescribe(items <-chan WorkItem, workers int) <-chan WorkResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan WorkResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for range workers {
		go func() {
			defer wg.Done()
			for item := range items {
				d, err := b.DescribeVariant(item.Variant)
				results <- WorkResult{
					Seq:     item.Seq,
					Variant: item.Variant,
					Desc:    d,
					Err:     err,
					Extra:   item.Extra,
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// OrderedCollect calls fn for each result in sequence-number order,
// holding back early arrivals until their predecessors are emitted.
// Blocks until the results channel is closed.
func OrderedCollect(results <-chan WorkResult, fn func(WorkResult) error) error {
	pending := make(map[int]WorkResult)
	nextSeq := 0

	for r := range results {
		pending[r.Seq] = r

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				// Drain so workers can exit.
				for range results {
				}
				return err
			}
		}
	}

	return nil
}

// Stats counts what DescribeAll processed.
type Stats struct {
	Variants int // variants read
	Failed   int // variants whose descriptor could not be built
	Cores    int // cores emitted
}

// DescribeAll reads every variant from parser, describes them on a worker
// pool and calls fn for each in input order. Variants that fail to
// describe are logged and counted, not passed to fn. An error from fn or
// the parser stops the run.
func (b *Builder) DescribeAll(parent context.Context, parser vcf.VariantParser, workers int,
	fn func(*vcf.Variant, *Descriptor) error) (Stats, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	var stats Stats
	items := make(chan WorkItem, 2*workers)

	g.Go(func() error {
		defer close(items)
		for seq := 0; ; seq++ {
			v, err := parser.Next()
			if err != nil {
				return fmt.Errorf("read variant near line %d: %w", parser.LineNumber(), err)
			}
			if v == nil {
				return nil
			}
			select {
			case items <- WorkItem{Seq: seq, Variant: v}:
			case <-gctx.Done():
				// The collector or the caller stopped the run and reports why.
				return nil
			}
		}
	})

	results := b.ParallelDescribe(items, workers)

	g.Go(func() error {
		return OrderedCollect(results, func(r WorkResult) error {
			stats.Variants++
			if r.Err != nil {
				stats.Failed++
				b.logger.Warn("failed to describe variant",
					zap.String("chrom", r.Variant.Chrom),
					zap.Int64("pos", r.Variant.Pos),
					zap.Error(r.Err))
				return nil
			}
			stats.Cores += r.Desc.Len()
			if err := fn(r.Variant, r.Desc); err != nil {
				cancel()
				return err
			}
			return nil
		})
	})

	err := g.Wait()
	if err == nil {
		err = parent.Err()
	}
	if stats.Variants == 0 && err == nil {
		b.logger.Info("0 variants processed")
	}
	return stats, err
}
