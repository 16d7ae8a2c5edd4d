package cache

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAttributes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected map[string]string
	}{
		{
			name:  "basic attributes",
			input: `gene_id "ENSG00000133703.14"; transcript_id "ENST00000311936.8"; gene_name "KRAS";`,
			expected: map[string]string{
				"gene_id":       "ENSG00000133703.14",
				"transcript_id": "ENST00000311936.8",
				"gene_name":     "KRAS",
			},
		},
		{
			name:  "repeated tags are joined",
			input: `gene_id "ENSG00000133703"; tag "Ensembl_canonical"; tag "MANE_Select";`,
			expected: map[string]string{
				"gene_id": "ENSG00000133703",
				"tag":     "Ensembl_canonical,MANE_Select",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseAttributes(tt.input)
			for key, want := range tt.expected {
				assert.Equal(t, want, result[key], "parseAttributes()[%q]", key)
			}
		})
	}
}

func TestStripVersion(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"ENST00000311936.8", "ENST00000311936"},
		{"NM_004985.5", "NM_004985"},
		{"ENST00000311936", "ENST00000311936"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, stripVersion(tt.input), "stripVersion(%q)", tt.input)
	}
}

const reverseGTF = `##description: test
chr12	HAVANA	transcript	1001	1500	.	-	.	gene_id "ENSG00000000001.3"; transcript_id "ENST00000000001.2"; gene_name "REV1"; transcript_type "protein_coding"; tag "basic"; tag "Ensembl_canonical";
chr12	HAVANA	exon	1401	1500	.	-	.	gene_id "ENSG00000000001.3"; transcript_id "ENST00000000001.2"; exon_number 1;
chr12	HAVANA	exon	1201	1300	.	-	.	gene_id "ENSG00000000001.3"; transcript_id "ENST00000000001.2"; exon_number 2;
chr12	HAVANA	exon	1001	1100	.	-	.	gene_id "ENSG00000000001.3"; transcript_id "ENST00000000001.2"; exon_number 3;
chr12	HAVANA	CDS	1401	1450	.	-	0	gene_id "ENSG00000000001.3"; transcript_id "ENST00000000001.2";
chr12	HAVANA	CDS	1201	1300	.	-	1	gene_id "ENSG00000000001.3"; transcript_id "ENST00000000001.2";
chr12	HAVANA	CDS	1054	1100	.	-	0	gene_id "ENSG00000000001.3"; transcript_id "ENST00000000001.2";
chr12	HAVANA	stop_codon	1051	1053	.	-	0	gene_id "ENSG00000000001.3"; transcript_id "ENST00000000001.2";
chr12	HAVANA	gene	1001	1500	.	-	.	gene_id "ENSG00000000001.3"; gene_name "REV1";
`

func TestGTFLoader_ReverseStrand(t *testing.T) {
	loader := NewGTFLoader("")
	transcripts, err := loader.parseGTF(strings.NewReader(reverseGTF))
	require.NoError(t, err)
	require.Len(t, transcripts, 1)

	tx := transcripts[0]
	assert.Equal(t, "ENST00000000001.2", tx.ID, "version kept for HGVS names")
	assert.Equal(t, "ENSG00000000001", tx.GeneID)
	assert.Equal(t, "REV1", tx.GeneName)
	assert.Equal(t, "chr12", tx.Chrom)
	assert.Equal(t, int8(-1), tx.Strand)
	assert.True(t, tx.IsCanonical)
	assert.Equal(t, int64(1051), tx.CDSStart, "stop codon included")
	assert.Equal(t, int64(1450), tx.CDSEnd)

	require.Len(t, tx.Exons, 3)
	assert.Equal(t, int64(1001), tx.Exons[0].Start, "exons sorted ascending")
	assert.Equal(t, 3, tx.Exons[0].Number)
	assert.Equal(t, int64(1500), tx.Exons[2].End)
}

func TestGTFLoader_LoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.gtf")
	require.NoError(t, os.WriteFile(path, []byte(reverseGTF), 0644))

	c, err := LoadModel(path)
	require.NoError(t, err)
	assert.Equal(t, 1, c.TranscriptCount())

	found := c.FindTranscripts("12", 1250, 1250)
	require.Len(t, found, 1)
	assert.Equal(t, "12", found[0].Chrom, "chr prefix stripped on add")
}

func TestGTFLoader_MissingFile(t *testing.T) {
	err := NewGTFLoader(filepath.Join(t.TempDir(), "nope.gtf")).Load(New())
	assert.Error(t, err)
}
