package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/vibe-hgvs/internal/cache"
	"github.com/inodb/vibe-hgvs/internal/hgvs"
)

// Result is one stored HGVS core for a variant.
type Result struct {
	Chrom        string
	Pos          int64
	Ref          string
	Alt          string
	TranscriptID string
	GeneName     string
	HGVSc        string
	Start        hgvs.Location
	End          hgvs.Location
	HasEnd       bool
}

// ResultsFromDescriptor flattens the cores of d into rows.
func ResultsFromDescriptor(d *hgvs.Descriptor) []Result {
	results := make([]Result, 0, d.Len())
	for i := range d.Cores {
		c := d.At(i)
		results = append(results, Result{
			Chrom:        d.Chrom,
			Pos:          d.Start,
			Ref:          d.Ref,
			Alt:          d.Alt,
			TranscriptID: c.Name1,
			GeneName:     c.Name2,
			HGVSc:        hgvs.FormatCore(c),
			Start:        c.Start,
			End:          c.End,
			HasEnd:       c.HasEnd,
		})
	}
	return results
}

type resultKey struct {
	chrom, ref, alt, transcriptID string
	pos                           int64
}

type variantKey struct {
	chrom, ref, alt string
	pos             int64
}

// WriteResults batch-inserts results using the Appender API. Rows already
// stored for the same variants are replaced, and duplicate
// (chrom, pos, ref, alt, transcript_id) rows within the batch are dropped.
func (s *Store) WriteResults(results []Result) error {
	if len(results) == 0 {
		return nil
	}

	seen := make(map[resultKey]bool, len(results))
	variants := make(map[variantKey]bool)
	deduped := make([]Result, 0, len(results))
	for _, r := range results {
		k := resultKey{r.Chrom, r.Ref, r.Alt, r.TranscriptID, r.Pos}
		if !seen[k] {
			seen[k] = true
			deduped = append(deduped, r)
		}
		variants[variantKey{r.Chrom, r.Ref, r.Alt, r.Pos}] = true
	}

	ctx := context.Background()
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	for v := range variants {
		if _, err := conn.ExecContext(ctx,
			"DELETE FROM hgvs_results WHERE chrom=? AND pos=? AND ref=? AND alt=?",
			v.chrom, v.pos, v.ref, v.alt); err != nil {
			return fmt.Errorf("replace results: %w", err)
		}
	}

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "hgvs_results")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, r := range deduped {
		if err := appender.AppendRow(
			r.Chrom, r.Pos, r.Ref, r.Alt, r.TranscriptID, r.GeneName, r.HGVSc,
			r.Start.Pos, r.Start.Region.String(), r.Start.Offset,
			r.End.Pos, r.End.Region.String(), r.End.Offset,
			r.HasEnd,
		); err != nil {
			return fmt.Errorf("append hgvs result: %w", err)
		}
	}

	return appender.Flush()
}

// ClearResults removes all stored results.
func (s *Store) ClearResults() error {
	_, err := s.db.Exec("DELETE FROM hgvs_results")
	return err
}

const selectResults = `SELECT
	chrom, pos, ref, alt, transcript_id, gene_name, hgvsc,
	start_pos, start_region, start_offset,
	end_pos, end_region, end_offset, has_end
	FROM hgvs_results`

// LookupVariant returns the stored results for one variant, ordered by
// transcript.
func (s *Store) LookupVariant(chrom string, pos int64, ref, alt string) ([]Result, error) {
	rows, err := s.db.Query(selectResults+`
		WHERE chrom=? AND pos=? AND ref=? AND alt=?
		ORDER BY transcript_id`,
		chrom, pos, ref, alt)
	if err != nil {
		return nil, fmt.Errorf("query variant: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

// SearchByTranscript returns every stored result on a transcript, ordered
// by position. IDs match with or without a version suffix.
func (s *Store) SearchByTranscript(transcriptID string) ([]Result, error) {
	rows, err := s.db.Query(selectResults+`
		WHERE transcript_id=? OR split_part(transcript_id, '.', 1)=?
		ORDER BY chrom, pos, ref, alt`,
		transcriptID, transcriptID)
	if err != nil {
		return nil, fmt.Errorf("query by transcript: %w", err)
	}
	defer rows.Close()

	return scanResults(rows)
}

func scanResults(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]Result, error) {
	var results []Result
	for rows.Next() {
		var r Result
		var startRegion, endRegion string
		if err := rows.Scan(
			&r.Chrom, &r.Pos, &r.Ref, &r.Alt, &r.TranscriptID, &r.GeneName, &r.HGVSc,
			&r.Start.Pos, &startRegion, &r.Start.Offset,
			&r.End.Pos, &endRegion, &r.End.Offset,
			&r.HasEnd,
		); err != nil {
			return nil, fmt.Errorf("scan hgvs result: %w", err)
		}

		var ok bool
		if r.Start.Region, ok = cache.ParseRegion(startRegion); !ok {
			return nil, fmt.Errorf("unknown region %q for %s", startRegion, r.TranscriptID)
		}
		if r.End.Region, ok = cache.ParseRegion(endRegion); !ok {
			return nil, fmt.Errorf("unknown region %q for %s", endRegion, r.TranscriptID)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate hgvs results: %w", err)
	}
	return results, nil
}
