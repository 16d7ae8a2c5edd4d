package maf

import (
	"bytes"
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMAF = "#version 2.4\n" +
	"Hugo_Symbol\tEntrez_Gene_Id\tCenter\tNCBI_Build\tChromosome\tStart_Position\tEnd_Position\tStrand\tVariant_Classification\tVariant_Type\tReference_Allele\tTumor_Seq_Allele1\tTumor_Seq_Allele2\tdbSNP_RS\tTumor_Sample_Barcode\n" +
	"TRUB1\t142940\t.\tGRCh37\t10\t116734973\t116734973\t+\tNonsense_Mutation\tSNP\tG\tG\tA\tnovel\tS1\n" +
	"KRAS\t3845\t.\tGRCh37\t12\t25398285\t25398285\t+\tMissense_Mutation\tSNP\tg\tG\tt\trs121913530\tS2\n" +
	"\n" +
	"EGFR\t1956\t.\tGRCh37\t7\t55242465\t55242479\t+\tIn_Frame_Del\tDEL\tGGAATTAAGAGAAGC\tGGAATTAAGAGAAGC\t-\t.\tS3\n" +
	"ERBB2\t2064\t.\tGRCh37\t17\t37880995\t37880996\t+\tIn_Frame_Ins\tINS\t-\t-\tGCATACGTGATG\t\tS4"

func TestParserNext(t *testing.T) {
	p, err := NewParserFromReader(strings.NewReader(sampleMAF))
	require.NoError(t, err)
	defer p.Close()

	cols := p.Columns()
	assert.Equal(t, 4, cols.Chromosome)
	assert.Equal(t, 5, cols.StartPosition)
	assert.Equal(t, 6, cols.EndPosition)
	assert.Equal(t, 10, cols.ReferenceAllele)
	assert.Equal(t, 12, cols.TumorSeqAllele2)
	assert.True(t, strings.HasPrefix(p.Header(), "Hugo_Symbol\t"))

	tests := []struct {
		chrom, id, ref, alt, sample string
		pos, end                    int64
	}{
		{"10", ".", "G", "A", "S1", 116734973, 116734973},
		{"12", "rs121913530", "G", "T", "S2", 25398285, 25398285},
		{"7", ".", "GGAATTAAGAGAAGC", "", "S3", 55242465, 55242479},
		{"17", ".", "", "GCATACGTGATG", "S4", 37880995, 37880995},
	}
	for _, tt := range tests {
		v, err := p.Next()
		require.NoError(t, err)
		require.NotNil(t, v)
		assert.Equal(t, tt.chrom, v.Chrom)
		assert.Equal(t, tt.pos, v.Pos)
		assert.Equal(t, tt.end, v.End())
		assert.Equal(t, tt.id, v.ID)
		assert.Equal(t, tt.ref, v.Ref)
		assert.Equal(t, tt.alt, v.Alt)
		assert.Equal(t, tt.sample, v.Info[ColTumorSample])
	}

	v, err := p.Next()
	require.NoError(t, err)
	assert.Nil(t, v)
	assert.Equal(t, 7, p.LineNumber())
}

func TestParserGzipFile(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(sampleMAF))
	require.NoError(t, err)
	require.NoError(t, gz.Close())

	path := filepath.Join(t.TempDir(), "sample.maf.gz")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))

	p, err := NewParser(path)
	require.NoError(t, err)

	count := 0
	for {
		v, err := p.Next()
		require.NoError(t, err)
		if v == nil {
			break
		}
		count++
	}
	assert.Equal(t, 4, count)
	assert.NoError(t, p.Close())
}

func TestParserErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "no header",
			input: "#version 2.4\n",
			want:  "maf parse error at line 1: no header line found",
		},
		{
			name:  "missing column",
			input: "Chromosome\tStart_Position\tReference_Allele\n",
			want:  "required column 'Tumor_Seq_Allele2' not found in header",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParserFromReader(strings.NewReader(tt.input))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestParserBadRow(t *testing.T) {
	input := "Chromosome\tStart_Position\tReference_Allele\tTumor_Seq_Allele2\n" +
		"1\tabc\tA\tG\n" +
		"1\t100\n"

	p, err := NewParserFromReader(strings.NewReader(input))
	require.NoError(t, err)

	_, err = p.Next()
	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 2, pe.Line)
	assert.Contains(t, pe.Message, "invalid position")

	_, err = p.Next()
	assert.ErrorContains(t, err, "expected at least 4 columns, found 2")
}
