package hgvs

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/inodb/vibe-hgvs/internal/cache"
)

// TranscriptLookup defines the interface for finding transcripts overlapping
// a genomic interval.
type TranscriptLookup interface {
	FindTranscripts(chrom string, start, end int64) []*cache.Transcript
}

// Builder fills descriptors with one core per overlapping transcript.
type Builder struct {
	lookup        TranscriptLookup
	flank         int64
	canonicalOnly bool
	logger        *zap.Logger
}

// NewBuilder creates a builder backed by the given transcript lookup.
func NewBuilder(l TranscriptLookup) *Builder {
	return &Builder{
		lookup: l,
		logger: zap.NewNop(),
	}
}

// SetFlank widens the transcript query by n bases on each side so that
// variants just upstream or downstream of a transcript are reported too.
func (b *Builder) SetFlank(n int64) {
	b.flank = max(n, 0)
}

// SetCanonicalOnly restricts cores to canonical transcripts.
func (b *Builder) SetCanonicalOnly(canonical bool) {
	b.canonicalOnly = canonical
}

// SetLogger sets the logger for skipped transcripts.
func (b *Builder) SetLogger(l *zap.Logger) {
	b.logger = l
}

// GenerateCore resolves [start, end] against t into core. The end is only
// resolved when it differs from start. On error the core is left cleared;
// errors wrapping ErrOutOfRange mean the transcript should be skipped.
func GenerateCore(t *cache.Transcript, core *Core, start, end int64) error {
	loc, err := Resolve(t, start)
	if err != nil {
		core.Clear()
		return err
	}
	core.Start = loc

	if end != start {
		endLoc, err := Resolve(t, end)
		if err != nil {
			core.Clear()
			return err
		}
		core.End = endLoc
		core.HasEnd = true
	}

	core.Name1 = strings.Clone(t.ID)
	core.Name2 = strings.Clone(t.GeneName)
	core.Transcript = t
	return nil
}

// Fill appends a core to d for every transcript overlapping d's interval,
// in lookup order. Transcripts that do not resolve are skipped; any other
// failure aborts the fill.
func (b *Builder) Fill(d *Descriptor) error {
	if d.Start == 0 {
		return fmt.Errorf("%w: %s", ErrPositionNotSet, d.Chrom)
	}
	if d.End == 0 {
		d.End = d.Start
	}
	if d.End < d.Start {
		return fmt.Errorf("invalid interval %s:%d-%d", d.Chrom, d.Start, d.End)
	}

	queryStart := max(d.Start-b.flank, 1)
	for _, t := range b.lookup.FindTranscripts(d.Chrom, queryStart, d.End+b.flank) {
		if b.canonicalOnly && !t.IsCanonical {
			continue
		}

		core := d.next()
		err := GenerateCore(t, core, d.Start, d.End)
		switch {
		case err == nil:
			d.commit()
		case errors.Is(err, ErrOutOfRange):
			b.logger.Debug("skipping transcript",
				zap.String("transcript", t.ID),
				zap.String("chrom", d.Chrom),
				zap.Int64("start", d.Start),
				zap.Int64("end", d.End),
				zap.Error(err))
		default:
			return fmt.Errorf("resolve %s:%d-%d on %s: %w", d.Chrom, d.Start, d.End, t.ID, err)
		}
	}
	return nil
}

// Describe builds and fills a descriptor for one variant.
func (b *Builder) Describe(chrom string, start, end int64, ref, alt string) (*Descriptor, error) {
	d := NewDescriptor(chrom, start, end)
	d.SetRef(ref)
	d.SetAlt(alt)
	if err := b.Fill(d); err != nil {
		d.Clear()
		return nil, err
	}
	return d, nil
}
