package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ids(transcripts []*Transcript) []string {
	out := make([]string, 0, len(transcripts))
	for _, t := range transcripts {
		out = append(out, t.ID)
	}
	return out
}

func TestBuildIntervalTree_Empty(t *testing.T) {
	tree := BuildIntervalTree(nil)
	assert.Empty(t, tree.FindOverlaps(100, 100))
	assert.Equal(t, 0, tree.Len())
}

func TestIntervalTree_SingleTranscript(t *testing.T) {
	tx := &Transcript{ID: "NM_001", Start: 100, End: 200}
	tree := BuildIntervalTree([]*Transcript{tx})

	assert.Equal(t, []string{"NM_001"}, ids(tree.FindOverlaps(150, 150)))
	assert.Len(t, tree.FindOverlaps(100, 100), 1, "start boundary inclusive")
	assert.Len(t, tree.FindOverlaps(200, 200), 1, "end boundary inclusive")
	assert.Len(t, tree.FindOverlaps(50, 100), 1, "range ending on start")
	assert.Len(t, tree.FindOverlaps(200, 300), 1, "range starting on end")
	assert.Empty(t, tree.FindOverlaps(99, 99), "before start")
	assert.Empty(t, tree.FindOverlaps(201, 250), "after end")
}

func TestIntervalTree_OverlappingOrderedByStart(t *testing.T) {
	transcripts := []*Transcript{
		{ID: "C", Start: 200, End: 400},
		{ID: "A", Start: 100, End: 300},
		{ID: "B", Start: 150, End: 250},
	}
	tree := BuildIntervalTree(transcripts)

	assert.Equal(t, []string{"A", "B"}, ids(tree.FindOverlaps(175, 175)))
	assert.Equal(t, []string{"A", "B", "C"}, ids(tree.FindOverlaps(250, 250)))
	assert.Equal(t, []string{"C"}, ids(tree.FindOverlaps(350, 350)))
	assert.Equal(t, []string{"A", "B", "C"}, ids(tree.FindOverlaps(120, 210)))
}

func TestIntervalTree_PrefixMaxPruning(t *testing.T) {
	// A long interval followed by a short one: the long one must still be found.
	transcripts := []*Transcript{
		{ID: "long", Start: 100, End: 500},
		{ID: "short", Start: 105, End: 110},
	}
	tree := BuildIntervalTree(transcripts)

	assert.Equal(t, []string{"long"}, ids(tree.FindOverlaps(400, 400)))
}

func TestIntervalTree_MatchesLinearScan(t *testing.T) {
	transcripts := []*Transcript{
		{ID: "A", Start: 1000, End: 5000},
		{ID: "B", Start: 2000, End: 3000},
		{ID: "C", Start: 4000, End: 8000},
		{ID: "D", Start: 6000, End: 7000},
		{ID: "E", Start: 9000, End: 10000},
	}
	tree := BuildIntervalTree(transcripts)

	for start := int64(0); start <= 11000; start += 500 {
		end := start + 750
		linear := map[string]bool{}
		for _, tx := range transcripts {
			if tx.Overlaps(start, end) {
				linear[tx.ID] = true
			}
		}
		found := map[string]bool{}
		for _, tx := range tree.FindOverlaps(start, end) {
			found[tx.ID] = true
		}
		assert.Equal(t, linear, found, "range %d-%d", start, end)
	}
}

func TestCache_FindTranscripts(t *testing.T) {
	c := New()
	c.AddTranscript(&Transcript{ID: "NM_A.1", Chrom: "chr12", Start: 100, End: 200})
	c.AddTranscript(&Transcript{ID: "NM_B.2", Chrom: "12", Start: 150, End: 400})

	assert.Equal(t, []string{"NM_A.1", "NM_B.2"}, ids(c.FindTranscripts("12", 160, 160)))
	assert.Equal(t, []string{"NM_A.1", "NM_B.2"}, ids(c.FindTranscripts("chr12", 160, 170)), "chr prefix normalized")
	assert.Equal(t, []string{"NM_B.2"}, ids(c.FindTranscripts("12", 300, 300)))
	assert.Empty(t, c.FindTranscripts("1", 160, 160))

	// Adding after a query rebuilds the chromosome index.
	c.AddTranscript(&Transcript{ID: "NM_C.1", Chrom: "12", Start: 290, End: 310})
	assert.Equal(t, []string{"NM_B.2", "NM_C.1"}, ids(c.FindTranscripts("12", 300, 300)))

	assert.Equal(t, 3, c.TranscriptCount())
	assert.Equal(t, []string{"12"}, c.Chromosomes())
	assert.Equal(t, "NM_B.2", c.GetTranscript("NM_B").ID)
	assert.Equal(t, "NM_B.2", c.GetTranscript("NM_B.2").ID)
	assert.Nil(t, c.GetTranscript("NM_Z"))
}
