// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-searcher/internal/query"
	"github.com/pdiddy/paper-searcher/pkg/types"
)

// --- test helpers ---

func testSetup(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "data", "papers_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func samplePapers() []types.Paper {
	return []types.Paper{
		{Venue: "CCS", Year: 2024, Volume: intPtr(31), Title: "IoT Security at Scale",
			Href: "https://dblp.org/rec/1", Abstract: strPtr("we study consumer devices")},
		{Venue: "CCS", Year: 2023, Title: "Private Set Intersection",
			Abstract: strPtr("security of two-party protocols")},
		{Venue: "SP", Year: 2024, Title: "Deep Learning Attacks"},
		{Venue: "NDSS", Year: 2022, Title: "Fuzzing Firmware", Abstract: strPtr("embedded iot firmware")},
		{Venue: "CCS", Year: 2020, Title: "Blockchain Consensus", Abstract: strPtr("ledger agreement")},
	}
}

func seed(t *testing.T, s *Store) {
	t.Helper()
	summary, err := s.SavePapers(context.Background(), samplePapers(), io.Discard)
	require.NoError(t, err)
	require.Equal(t, len(samplePapers()), summary.Added)
}

func titles(papers []types.Paper) []string {
	out := make([]string, len(papers))
	for i, p := range papers {
		out[i] = p.Title
	}
	return out
}

func compile(t *testing.T, raw query.RawRequest) (query.Predicate, query.Page) {
	t.Helper()
	req, err := query.Validate(raw, types.DefaultSearchPolicy())
	require.NoError(t, err)
	return req.Compile(), req.Page
}

// --- schema ---

func TestNewStoreCreatesSchema(t *testing.T) {
	s := testSetup(t)
	for _, table := range []string{"papers", "venues"} {
		var count int
		err := s.db.QueryRow(
			`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table,
		).Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count, "table %s", table)
	}
}

func TestNewStoreCreatesDBFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "papers.db")
	s, err := NewStore(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err)
	assert.Equal(t, path, s.Path())
}

func TestNewStoreEmptyPath(t *testing.T) {
	_, err := NewStore("")
	assert.Error(t, err)
}

// --- search ---

func TestSearchEndToEnd(t *testing.T) {
	s := testSetup(t)
	seed(t, s)

	pred, page := compile(t, query.RawRequest{
		Query:  "security|iot",
		Venues: query.Set("ccs"),
		Years:  query.Set("2023,2024"),
		Offset: "0",
		Limit:  "10",
	})
	res, err := s.Search(context.Background(), pred, page)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Total)
	assert.Equal(t, []string{"IoT Security at Scale", "Private Set Intersection"}, titles(res.Rows))
	first := res.Rows[0]
	assert.Equal(t, "CCS", first.Venue)
	require.NotNil(t, first.Volume)
	assert.Equal(t, 31, *first.Volume)
	require.NotNil(t, first.Abstract)
	assert.Equal(t, "https://dblp.org/rec/1", first.Href)
}

func TestSearchEmptyQueryMatchesAll(t *testing.T) {
	s := testSetup(t)
	seed(t, s)

	pred, page := compile(t, query.RawRequest{Offset: "0", Limit: "10"})
	res, err := s.Search(context.Background(), pred, page)
	require.NoError(t, err)

	assert.Equal(t, 5, res.Total)
	assert.Equal(t, []string{
		"IoT Security at Scale",
		"Deep Learning Attacks",
		"Private Set Intersection",
		"Fuzzing Firmware",
		"Blockchain Consensus",
	}, titles(res.Rows))
}

func TestSearchPagination(t *testing.T) {
	s := testSetup(t)
	seed(t, s)

	pred, page := compile(t, query.RawRequest{Offset: "1", Limit: "2"})
	res, err := s.Search(context.Background(), pred, page)
	require.NoError(t, err)

	assert.Equal(t, 5, res.Total)
	assert.Equal(t, []string{"Deep Learning Attacks", "Private Set Intersection"}, titles(res.Rows))

	pred, page = compile(t, query.RawRequest{Offset: "50", Limit: "10"})
	res, err = s.Search(context.Background(), pred, page)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Total)
	assert.NotNil(t, res.Rows)
	assert.Empty(t, res.Rows)
}

func TestSearchCaseInsensitive(t *testing.T) {
	s := testSetup(t)
	seed(t, s)

	pred, page := compile(t, query.RawRequest{Query: "IOT", Offset: "0", Limit: "10"})
	res, err := s.Search(context.Background(), pred, page)
	require.NoError(t, err)
	assert.Equal(t, []string{"IoT Security at Scale", "Fuzzing Firmware"}, titles(res.Rows))
}

func TestSearchAndChain(t *testing.T) {
	s := testSetup(t)
	seed(t, s)

	// Both terms must appear in the same field.
	pred, page := compile(t, query.RawRequest{Query: "iot+scale", Offset: "0", Limit: "10"})
	res, err := s.Search(context.Background(), pred, page)
	require.NoError(t, err)
	assert.Equal(t, []string{"IoT Security at Scale"}, titles(res.Rows))
}

func TestSearchHostileTermIsLiteral(t *testing.T) {
	s := testSetup(t)
	seed(t, s)

	pred := query.Compile(query.Query{Terms: []string{"x' OR '1'='1"}}, nil, nil)
	res, err := s.Search(context.Background(), pred, query.Page{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Total)

	pred = query.Compile(query.Query{Terms: []string{"'; DROP TABLE papers; --"}}, nil, nil)
	_, err = s.Search(context.Background(), pred, query.Page{Limit: 10})
	require.NoError(t, err)

	total, err := s.Count(context.Background(), query.Predicate{})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
}

func TestCountAndFetch(t *testing.T) {
	s := testSetup(t)
	seed(t, s)

	pred, _ := compile(t, query.RawRequest{Venues: query.Set("ccs"), Offset: "0", Limit: "1"})
	total, err := s.Count(context.Background(), pred)
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	papers, err := s.Fetch(context.Background(), pred, query.Page{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"IoT Security at Scale"}, titles(papers))
}

func TestSearchStorageError(t *testing.T) {
	s := testSetup(t)
	require.NoError(t, s.Close())

	_, err := s.Search(context.Background(), query.Predicate{}, query.Page{Limit: 10})
	require.Error(t, err)

	var se *StorageError
	require.True(t, errors.As(err, &se))
	assert.True(t, se.Retryable())
	assert.Contains(t, err.Error(), "storage")
}

func TestSearchCanceledContext(t *testing.T) {
	s := testSetup(t)
	seed(t, s)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Search(ctx, query.Predicate{}, query.Page{Limit: 10})
	assert.Error(t, err)

	// The pool is still usable afterwards.
	res, err := s.Search(context.Background(), query.Predicate{}, query.Page{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 5, res.Total)
}

// --- abstract ---

func TestAbstract(t *testing.T) {
	s := testSetup(t)
	seed(t, s)

	papers, err := s.Fetch(context.Background(), query.Predicate{}, query.Page{Limit: 10})
	require.NoError(t, err)
	ids := map[string]int64{}
	for _, p := range papers {
		ids[p.Title] = p.ID
	}

	got, err := s.Abstract(context.Background(), ids["IoT Security at Scale"])
	require.NoError(t, err)
	assert.Equal(t, "IoT Security at Scale", got.Title)
	require.NotNil(t, got.Abstract)
	assert.Equal(t, "we study consumer devices", *got.Abstract)

	got, err = s.Abstract(context.Background(), ids["Deep Learning Attacks"])
	require.NoError(t, err)
	assert.Nil(t, got.Abstract)

	data, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `["Deep Learning Attacks", null]`, string(data))

	_, err = s.Abstract(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

// --- import ---

func TestSavePapers(t *testing.T) {
	s := testSetup(t)
	seed(t, s)

	batch := []types.Paper{
		{Venue: "ccs", Year: 2024, Title: "IoT Security at Scale"},  // duplicate
		{Venue: "SP", Year: 2021, Title: "Private Set Intersection"}, // title taken
		{Venue: "SP", Year: 2021, Title: ""},                         // missing title
		{Venue: " uss ", Year: 2021, Title: "New Paper"},
	}
	var buf strings.Builder
	summary, err := s.SavePapers(context.Background(), batch, &buf)
	require.NoError(t, err)

	assert.Equal(t, ImportSummary{Added: 1, Skipped: 1, Failed: 2}, summary)
	assert.Equal(t, 4, summary.Total())
	assert.Contains(t, buf.String(), "added: 1, skipped: 1, failed: 2")

	pred, _ := compile(t, query.RawRequest{Venues: query.Set("uss"), Offset: "0", Limit: "1"})
	total, err := s.Count(context.Background(), pred)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestSaveVenues(t *testing.T) {
	s := testSetup(t)
	ctx := context.Background()

	venues := []types.Venue{
		{Abbreviation: "CCS", FullName: "ACM Conference on Computer and Communications Security",
			Publisher: "ACM", Rank: types.RankA, Type: types.VenueConference, Domain: "NIS"},
		{Abbreviation: "TDSC", FullName: "IEEE Transactions on Dependable and Secure Computing",
			Publisher: "IEEE", Rank: types.RankA, Type: types.VenueJournal, Domain: "NIS"},
		{Abbreviation: "ACSAC", FullName: "Annual Computer Security Applications Conference",
			Rank: types.RankB, Type: types.VenueConference, Domain: "NIS"},
		{Abbreviation: "ICSE", FullName: "International Conference on Software Engineering",
			Rank: types.RankA, Type: types.VenueConference, Domain: "SE"},
		{Abbreviation: "BAD", FullName: "Bad Rank", Rank: "D", Type: types.VenueConference, Domain: "SE"},
	}
	summary, err := s.SaveVenues(ctx, venues, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, ImportSummary{Added: 4, Failed: 1}, summary)

	update := venues[2]
	update.Rank = types.RankA
	summary, err = s.SaveVenues(ctx, []types.Venue{update}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, ImportSummary{Updated: 1}, summary)

	rank, err := s.VenueRank(ctx, "acsac")
	require.NoError(t, err)
	assert.Equal(t, types.RankA, rank)

	info, err := s.VenueInfo(ctx, "ccs")
	require.NoError(t, err)
	assert.Equal(t, "CCS", info.Abbreviation)
	assert.Equal(t, "ACM", info.Publisher)
	assert.False(t, info.CreatedAt.IsZero())

	_, err = s.VenueInfo(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := s.ListVenues(ctx, types.VenueFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.Equal(t, "ACSAC", all[0].Abbreviation)

	journals, err := s.ListVenues(ctx, types.VenueFilter{Type: types.VenueJournal})
	require.NoError(t, err)
	require.Len(t, journals, 1)
	assert.Equal(t, "TDSC", journals[0].Abbreviation)

	nisA, err := s.ListVenues(ctx, types.VenueFilter{Rank: types.RankA, Domain: "NIS"})
	require.NoError(t, err)
	assert.Len(t, nisA, 3)

	stats, err := s.VenueStatistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, map[string]int{"A": 4}, stats.ByRank)
	assert.Equal(t, map[string]int{"conference": 3, "journal": 1}, stats.ByType)
	assert.Equal(t, map[string]int{"NIS": 3, "SE": 1}, stats.ByDomain)
}

func TestLoadPapersFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "papers.yaml")
	data, err := yaml.Marshal(samplePapers())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(yamlPath, data, 0o644))

	papers, err := LoadPapersFile(yamlPath)
	require.NoError(t, err)
	assert.Len(t, papers, 5)
	assert.Equal(t, "CCS", papers[0].Venue)

	jsonPath := filepath.Join(dir, "papers.json")
	require.NoError(t, os.WriteFile(jsonPath,
		[]byte(`[{"conference":"SP","year":2024,"title":"T","cat":"ml"}]`), 0o644))
	papers, err = LoadPapersFile(jsonPath)
	require.NoError(t, err)
	require.Len(t, papers, 1)
	assert.Equal(t, "ml", papers[0].Category)

	_, err = LoadPapersFile(filepath.Join(dir, "papers.csv"))
	assert.Error(t, err)
}

func TestLoadVenuesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "venues.yml")
	content := `- abbreviation: CCS
  full_name: ACM Conference on Computer and Communications Security
  ccf_rank: A
  venue_type: conference
  domain: NIS
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	venues, err := LoadVenuesFile(path)
	require.NoError(t, err)
	require.Len(t, venues, 1)
	assert.Equal(t, types.RankA, venues[0].Rank)
	assert.Equal(t, types.VenueConference, venues[0].Type)
}

// --- export ---

func TestExportYAML(t *testing.T) {
	s := testSetup(t)
	seed(t, s)

	path := filepath.Join(t.TempDir(), "out", "export.yaml")
	pred, _ := compile(t, query.RawRequest{Years: query.Set("2024"), Offset: "0", Limit: "1"})
	n, err := s.ExportYAML(context.Background(), pred, path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	papers, err := LoadPapersFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"IoT Security at Scale", "Deep Learning Attacks"}, titles(papers))
}

func TestExportJSON(t *testing.T) {
	s := testSetup(t)
	seed(t, s)

	path := filepath.Join(t.TempDir(), "export.json")
	n, err := s.ExportJSON(context.Background(), query.Predicate{}, path)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var rows []map[string]any
	require.NoError(t, json.Unmarshal(data, &rows))
	require.Len(t, rows, 5)
	assert.Contains(t, rows[0], "conference")
	assert.Contains(t, rows[0], "cat")
}

func TestExportPagesThroughBatches(t *testing.T) {
	s := testSetup(t)
	seed(t, s)

	all, err := s.Fetch(context.Background(), query.Predicate{}, query.Page{Offset: 0, Limit: 10})
	require.NoError(t, err)
	require.Len(t, all, 5)

	old := exportBatch
	t.Cleanup(func() { exportBatch = old })

	for _, batch := range []int{1, 2, 5, 7} {
		exportBatch = batch
		path := filepath.Join(t.TempDir(), "export.yaml")
		n, err := s.ExportYAML(context.Background(), query.Predicate{}, path)
		require.NoError(t, err, "batch=%d", batch)
		assert.Equal(t, 5, n, "batch=%d", batch)

		papers, err := LoadPapersFile(path)
		require.NoError(t, err)
		assert.Equal(t, titles(all), titles(papers), "batch=%d", batch)
	}
}
