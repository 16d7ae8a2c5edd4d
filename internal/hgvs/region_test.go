package hgvs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRegion(t *testing.T) {
	tests := []struct {
		in         string
		chrom      string
		start, end int64
		err        string
	}{
		{in: "chr7:140753336", chrom: "7", start: 140753336, end: 140753336},
		{in: "X:1,000-1,010", chrom: "X", start: 1000, end: 1010},
		{in: "1", err: "want chrom:pos"},
		{in: "1:abc", err: "invalid start"},
		{in: "1:0", err: "invalid start"},
		{in: "1:20-10", err: "invalid end"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			chrom, start, end, err := ParseRegion(tt.in)
			if tt.err != "" {
				require.Error(t, err)
				assert.ErrorContains(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.chrom, chrom)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}
}
