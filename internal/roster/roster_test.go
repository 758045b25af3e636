package roster

import (
	"context"
	"net/http"
	"net/http/httptest"
	"staffping/internal/structures"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rosterConf(baseURL string) *structures.Config {
	conf := &structures.Config{}
	conf.Roster.URL = baseURL
	conf.Roster.SpreadsheetID = "sheet id/1"
	conf.Roster.SheetName = "Staff & Conductors"
	return conf
}

func TestFetchParsesEntries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "sheet id/1", r.URL.Query().Get("spreadsheetId"))
		assert.Equal(t, "Staff & Conductors", r.URL.Query().Get("sheetName"))
		_, _ = w.Write([]byte(`[{"Name":"Alice","UUID":"uuid-a","Rank":"Mod"},{"Name":"Chip","UUID":"uuid-c","Rank":"Conductor"}]`))
	}))
	defer srv.Close()

	c := NewClient(rosterConf(srv.URL))
	entries, err := c.Fetch(context.Background())

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Alice", entries[0].Name)
	assert.Equal(t, "uuid-a", entries[0].UUID)

	rank, ok := entries[0].ParsedRank()
	require.True(t, ok)
	assert.Equal(t, "Mod", rank.String())
}

func TestFetchEmptyListFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(rosterConf(srv.URL))
	_, err := c.Fetch(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty staff list")
}

func TestFetchErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(rosterConf(srv.URL))
	_, err := c.Fetch(context.Background())
	require.Error(t, err)
}
