// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-searcher/internal/search"
	"github.com/pdiddy/paper-searcher/internal/store"
	"github.com/pdiddy/paper-searcher/pkg/types"
)

// --- test helpers ---

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	st, err := store.NewStore(filepath.Join(t.TempDir(), "papers_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	ctx := context.Background()
	_, err = st.SavePapers(ctx, []types.Paper{
		{Venue: "CCS", Year: 2023, Title: "IoT Security Survey"},
		{Venue: "CCS", Year: 2023, Title: "Graph Theory"},
		{Venue: "NDSS", Year: 2024, Title: "Fuzzing Firmware"},
	}, io.Discard)
	require.NoError(t, err)
	_, err = st.SaveVenues(ctx, []types.Venue{
		{Abbreviation: "CCS", FullName: "ACM CCS", Rank: types.RankA, Type: types.VenueConference, Domain: "NIS"},
		{Abbreviation: "TDSC", FullName: "IEEE TDSC", Rank: types.RankA, Type: types.VenueJournal, Domain: "NIS"},
	}, io.Discard)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := search.New(st, st, types.DefaultSearchPolicy())
	ts := httptest.NewServer(NewHandler(svc, logger))
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, ts *httptest.Server, path string) (int, map[string]any) {
	t.Helper()
	resp, err := ts.Client().Get(ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	if resp.StatusCode == http.StatusOK {
		assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	}
	return resp.StatusCode, body
}

// --- /search ---

func TestSearchEndpoint(t *testing.T) {
	ts := testServer(t)

	status, body := getJSON(t, ts, "/search?q=security%7Ciot&s=ccs&y=2023,2024&offset=0&limit=10")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(0), body["code"])
	assert.Equal(t, "success", body["msg"])
	assert.Equal(t, float64(1), body["total"])

	rows, ok := body["rows"].([]any)
	require.True(t, ok)
	require.Len(t, rows, 1)
	row := rows[0].(map[string]any)
	assert.Equal(t, "IoT Security Survey", row["title"])
	assert.Equal(t, "CCS", row["conference"])
	for _, key := range types.PaperColumns {
		assert.Contains(t, row, key)
	}
}

func TestSearchEndpointFailures(t *testing.T) {
	ts := testServer(t)

	tests := []struct {
		name string
		path string
		msg  string
	}{
		{"injection", "/search?q=a%27+OR+%271%27%3D%271&offset=0&limit=10", "invalid keyword format"},
		{"unknown venue", "/search?s=ccs,bogus&offset=0&limit=10", "invalid venue"},
		{"empty venue", "/search?s=&offset=0&limit=10", "invalid venue"},
		{"bad limit", "/search?offset=0&limit=abc", "invalid pagination"},
		{"missing pagination", "/search?q=ai", "invalid pagination"},
		{"year out of range", "/search?y=2015&offset=0&limit=10", "invalid year"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := getJSON(t, ts, tt.path)
			require.Equal(t, http.StatusOK, status)
			assert.Equal(t, float64(1), body["code"])
			assert.Contains(t, body["msg"], tt.msg)
			assert.NotContains(t, body, "rows")
			assert.NotContains(t, body, "total")
		})
	}
}

func TestSearchEndpointClampsLimit(t *testing.T) {
	ts := testServer(t)
	_, body := getJSON(t, ts, "/search?offset=-5&limit=500")
	assert.Equal(t, float64(0), body["code"])
	assert.Equal(t, float64(3), body["total"])
}

// --- /abstract ---

func TestAbstractEndpoint(t *testing.T) {
	ts := testServer(t)

	_, body := getJSON(t, ts, "/abstract/1")
	assert.Equal(t, float64(0), body["code"])
	assert.Equal(t, []any{[]any{"IoT Security Survey", nil}}, body["data"])

	for _, id := range []string{"0", "-3", "abc"} {
		_, body := getJSON(t, ts, "/abstract/"+id)
		assert.Equal(t, float64(1), body["code"], "id=%s", id)
		assert.NotContains(t, body, "data", "id=%s", id)
	}

	_, body = getJSON(t, ts, "/abstract/999")
	assert.Equal(t, float64(0), body["code"])
	assert.Equal(t, "success", body["msg"])
	assert.Equal(t, []any{}, body["data"])
}

// --- /venues ---

func TestVenuesEndpoints(t *testing.T) {
	ts := testServer(t)

	_, body := getJSON(t, ts, "/venues?type=journal")
	require.Equal(t, float64(0), body["code"])
	data := body["data"].([]any)
	require.Len(t, data, 1)
	assert.Equal(t, "TDSC", data[0].(map[string]any)["abbreviation"])

	_, body = getJSON(t, ts, "/venues?rank=A")
	assert.Len(t, body["data"], 2)

	_, body = getJSON(t, ts, "/venues?rank=Z")
	assert.Equal(t, float64(1), body["code"])

	_, body = getJSON(t, ts, "/venues/ccs")
	require.Equal(t, float64(0), body["code"])
	assert.Equal(t, "A", body["data"].(map[string]any)["ccf_rank"])

	_, body = getJSON(t, ts, "/venues/unknown")
	assert.Equal(t, float64(1), body["code"])
}

// --- misc ---

func TestHealthz(t *testing.T) {
	ts := testServer(t)
	_, body := getJSON(t, ts, "/healthz")
	assert.Equal(t, map[string]any{"code": float64(0), "msg": "ok"}, body)
}

func TestUnknownRoute(t *testing.T) {
	ts := testServer(t)
	status, _ := getJSON(t, ts, "/nope")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestMethodNotAllowed(t *testing.T) {
	ts := testServer(t)
	resp, err := ts.Client().Post(ts.URL+"/search", "text/plain", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	cfg := types.ServerConfig{Host: "127.0.0.1", Port: port, ReadTimeout: time.Second, WriteTimeout: time.Second}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	go func() {
		done <- Serve(ctx, cfg, http.NotFoundHandler(), logger)
	}()

	addr := "http://127.0.0.1:" + strconv.Itoa(port) + "/"
	require.Eventually(t, func() bool {
		resp, err := http.Get(addr)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return true
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
