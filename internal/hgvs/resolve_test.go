package hgvs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-hgvs/internal/cache"
)

func TestResolve_TwoExonScenario(t *testing.T) {
	tx := twoExonTranscript()
	require.Equal(t, []cache.ExonBoundary{
		{Start: coding(1), End: coding(100)},
		{Start: coding(101), End: coding(200)},
	}, tx.Boundaries())

	tests := []struct {
		name string
		pos  int64
		want Location
	}{
		{"exon0 offset 50", 1050, loc(coding(50), 0)},
		{"10 bases into intron", 1110, loc(coding(100), 10)},
		{"near next exon", 1195, loc(coding(101), -6)},
		{"5 bases upstream", 996, loc(coding(1), -5)},
		{"3 bases downstream", 1303, loc(coding(200), 3)},
		{"second exon", 1250, loc(coding(150), 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tx, tt.pos)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_ForwardJunctions(t *testing.T) {
	tx := threeExonTranscript(1)

	tests := []struct {
		pos  int64
		want Location
	}{
		{1001, loc(utr5(50), 0)},
		{1050, loc(utr5(1), 0)},
		{1051, loc(coding(1), 0)},
		{1100, loc(coding(50), 0)},
		{1250, loc(coding(100), 0)},
		{1450, loc(coding(200), 0)},
		{1451, loc(utr3(1), 0)},
		{1500, loc(utr3(50), 0)},
		{1150, loc(coding(50), 50)},
		{1151, loc(coding(51), -50)},
		{990, loc(utr5(50), -11)},
		{1510, loc(utr3(50), 10)},
	}

	for _, tt := range tests {
		got, err := Resolve(tx, tt.pos)
		require.NoError(t, err, "pos %d", tt.pos)
		assert.Equal(t, tt.want, got, "pos %d", tt.pos)
	}
}

func TestResolve_ReverseJunctions(t *testing.T) {
	tx := threeExonTranscript(-1)

	tests := []struct {
		pos  int64
		want Location
	}{
		{1500, loc(utr5(50), 0)},
		{1451, loc(utr5(1), 0)},
		{1450, loc(coding(1), 0)},
		{1401, loc(coding(50), 0)},
		{1250, loc(coding(101), 0)},
		{1100, loc(coding(151), 0)},
		{1051, loc(coding(200), 0)},
		{1050, loc(utr3(1), 0)},
		{1001, loc(utr3(50), 0)},
		{1150, loc(coding(151), 50)},
		{1151, loc(coding(150), -50)},
	}

	for _, tt := range tests {
		got, err := Resolve(tx, tt.pos)
		require.NoError(t, err, "pos %d", tt.pos)
		assert.Equal(t, tt.want, got, "pos %d", tt.pos)
	}
}

// Every exonic base resolves to the coordinate implied by its cDNA
// position, on both strands.
func TestResolve_MatchesCDNA(t *testing.T) {
	for _, strand := range []int8{1, -1} {
		for _, tx := range []*cache.Transcript{threeExonTranscript(strand), singleExonTranscript(strand)} {
			var cdsFirst, cdsLast int64
			if strand > 0 {
				cdsFirst, cdsLast = tx.CDNAPosition(tx.CDSStart), tx.CDNAPosition(tx.CDSEnd)
			} else {
				cdsFirst, cdsLast = tx.CDNAPosition(tx.CDSEnd), tx.CDNAPosition(tx.CDSStart)
			}

			for _, e := range tx.Exons {
				for pos := e.Start; pos <= e.End; pos++ {
					x := tx.CDNAPosition(pos)
					want := coding(x - cdsFirst + 1)
					switch {
					case x < cdsFirst:
						want = utr5(cdsFirst - x)
					case x > cdsLast:
						want = utr3(x - cdsLast)
					}

					got, err := Resolve(tx, pos)
					require.NoError(t, err)
					assert.Equal(t, loc(want, 0), got, "%s strand %d pos %d", tx.ID, strand, pos)
				}
			}
		}
	}
}

func TestResolve_SingleExonCDS(t *testing.T) {
	got, err := Resolve(singleExonTranscript(1), 1200)
	require.NoError(t, err)
	assert.Equal(t, loc(coding(100), 0), got)

	got, err = Resolve(singleExonTranscript(-1), 1200)
	require.NoError(t, err)
	assert.Equal(t, loc(coding(201), 0), got)
}

func TestResolve_IntronTieBreak(t *testing.T) {
	tx := &cache.Transcript{
		ID:     "NR_000001.1",
		Chrom:  "1",
		Start:  1001,
		End:    1300,
		Strand: 1,
		Exons: []cache.Exon{
			{Number: 1, Start: 1001, End: 1100},
			{Number: 2, Start: 1202, End: 1300},
		},
	}

	// 1151 is 51 bases from both exons.
	got, err := Resolve(tx, 1151)
	require.NoError(t, err)
	assert.Equal(t, loc(coding(100), 51), got)

	got, err = Resolve(tx, 1152)
	require.NoError(t, err)
	assert.Equal(t, loc(coding(101), -50), got)
}

func TestResolve_ConsistencyViolation(t *testing.T) {
	tx := twoExonTranscript()
	tx.SetBoundaries([]cache.ExonBoundary{
		{Start: coding(1), End: coding(100)},
		{Start: coding(101), End: coding(250)},
	})

	_, err := Resolve(tx, 1250)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInconsistentModel)

	var ce *ConsistencyError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "NM_000002.1", ce.TranscriptID)
	assert.Equal(t, 1, ce.Exon)
	assert.Equal(t, int64(1250), ce.Pos)
	assert.NotEqual(t, ce.FromStart, ce.FromEnd)

	// The intact exon still resolves.
	got, err := Resolve(tx, 1050)
	require.NoError(t, err)
	assert.Equal(t, loc(coding(50), 0), got)
}

func TestResolve_OutOfRange(t *testing.T) {
	_, err := Resolve(&cache.Transcript{ID: "empty"}, 100)
	assert.ErrorIs(t, err, ErrOutOfRange)

	tx := twoExonTranscript()
	tx.SetBoundaries([]cache.ExonBoundary{{Start: coding(1), End: coding(100)}})
	_, err = Resolve(tx, 1050)
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.False(t, errors.Is(err, ErrInconsistentModel))
}
