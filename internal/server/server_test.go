package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-hgvs/internal/cache"
	"github.com/inodb/vibe-hgvs/internal/duckdb"
	"github.com/inodb/vibe-hgvs/internal/hgvs"
)

func testServer(t *testing.T, store *duckdb.Store) *Server {
	t.Helper()
	c := cache.New()
	c.AddTranscript(&cache.Transcript{
		ID: "NM_000002.1", GeneName: "TWO", Chrom: "chr1",
		Start: 1001, End: 1300, Strand: 1,
		CDSStart: 1001, CDSEnd: 1300,
		Exons: []cache.Exon{
			{Number: 1, Start: 1001, End: 1100},
			{Number: 2, Start: 1201, End: 1300},
		},
	})
	s, err := New(DefaultConfig(), hgvs.NewBuilder(c), store, nil)
	require.NoError(t, err)
	return s
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealth(t *testing.T) {
	w := get(t, testServer(t, nil), "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestLookup(t *testing.T) {
	s := testServer(t, nil)

	w := get(t, s, "/api/v1/hgvs/chr1:1,090-1110?ref=a&alt=g")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp LookupResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "1", resp.Chrom)
	assert.Equal(t, int64(1090), resp.Start)
	assert.Equal(t, int64(1110), resp.End)
	assert.Equal(t, "A", resp.Ref)
	require.Len(t, resp.Cores, 1)

	core := resp.Cores[0]
	assert.Equal(t, "NM_000002.1:c.90_100+10", core.HGVSc)
	assert.Equal(t, LocationJSON{Pos: 90, Region: "coding"}, core.Start)
	require.NotNil(t, core.End)
	assert.Equal(t, int64(10), core.End.Offset)

	// Second request is served from the LRU.
	w = get(t, s, "/api/v1/hgvs/chr1:1,090-1110?ref=a&alt=g")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, s.lookups.Len())
}

func TestLookup_NoTranscripts(t *testing.T) {
	w := get(t, testServer(t, nil), "/api/v1/hgvs/2:500")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"chrom":"2","start":500,"end":500,"cores":[]}`, w.Body.String())
}

func TestLookup_BadRegion(t *testing.T) {
	s := testServer(t, nil)
	w := get(t, s, "/api/v1/hgvs/chr1")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = get(t, s, "/metrics")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `vibe_hgvs_lookups_total{outcome="bad_request"} 1`)
}

func TestTranscriptResults(t *testing.T) {
	w := get(t, testServer(t, nil), "/api/v1/transcripts/NM_000002.1/results")
	assert.Equal(t, http.StatusNotFound, w.Code)

	store, err := duckdb.Open("")
	require.NoError(t, err)
	defer store.Close()

	s := testServer(t, store)
	d, err := s.builder.Describe("1", 1250, 1250, "G", "A")
	require.NoError(t, err)
	require.NoError(t, store.WriteResults(duckdb.ResultsFromDescriptor(d)))

	w = get(t, s, "/api/v1/transcripts/NM_000002/results")
	require.Equal(t, http.StatusOK, w.Code)

	var results []ResultJSON
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "NM_000002.1:c.150", results[0].Core.HGVSc)
	assert.Nil(t, results[0].Core.End)
}
