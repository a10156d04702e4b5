package partner

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListExports(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/exports", r.URL.Path)
		assert.Equal(t, "collection", r.URL.Query().Get("type"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"exports":[
			{"file_name":"collection_100.csv","type":"collection","collection_id":100,
			 "url":"https://example.com/collection_100.csv","size_bytes":1234,
			 "published_at":"2026-01-15T06:00:00Z"}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key")
	exports, err := c.ListExports(context.Background(), ExportCollection)
	require.NoError(t, err)
	require.Len(t, exports, 1)
	assert.Equal(t, "collection_100.csv", exports[0].FileName)
	assert.Equal(t, 100, exports[0].CollectionID)
	assert.Equal(t, int64(1234), exports[0].SizeBytes)
}

func TestListExportsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key")
	_, err := c.ListExports(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ChainId,StoreNumber\n1,42\n"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	c := NewClient(srv.URL, "test-key")

	exp := Export{
		FileName:  "collection_100.csv",
		Type:      ExportCollection,
		URL:       srv.URL + "/collection_100.csv",
		SizeBytes: 25,
	}
	path, err := c.Download(context.Background(), exp, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "collection_100.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ChainId,StoreNumber\n1,42\n", string(data))
}

func TestDownloadSizeMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("short"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key")
	exp := Export{FileName: "x.csv", URL: srv.URL + "/x.csv", SizeBytes: 9999}
	_, err := c.Download(context.Background(), exp, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 9999")
}

func TestDownloadAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("data for " + r.URL.Path))
	}))
	defer srv.Close()

	dir := t.TempDir()
	c := NewClient(srv.URL, "test-key", WithConcurrency(2), WithRateLimit(100, 100))

	exports := []Export{
		{FileName: "a.csv", URL: srv.URL + "/a"},
		{FileName: "b.csv", URL: srv.URL + "/b"},
		{FileName: "c.csv", URL: srv.URL + "/c"},
	}
	paths, err := c.DownloadAll(context.Background(), exports, dir)
	require.NoError(t, err)
	require.Len(t, paths, 3)

	for i, exp := range exports {
		assert.Equal(t, filepath.Join(dir, exp.FileName), paths[i])
		_, statErr := os.Stat(paths[i])
		assert.NoError(t, statErr)
	}
}

func TestDownloadAllPropagatesError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/bad" {
			http.Error(w, "gone", http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", WithRateLimit(100, 100))
	exports := []Export{
		{FileName: "good.csv", URL: srv.URL + "/good"},
		{FileName: "bad.csv", URL: srv.URL + "/bad"},
	}
	_, err := c.DownloadAll(context.Background(), exports, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.csv")
}

func TestLatestCollection(t *testing.T) {
	exports := []Export{
		{FileName: "old.csv", Type: ExportCollection, PublishedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
		{FileName: "scrape.csv", Type: ExportChainScrape, PublishedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		{FileName: "new.csv", Type: ExportCollection, PublishedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)},
	}
	best, err := LatestCollection(exports)
	require.NoError(t, err)
	assert.Equal(t, "new.csv", best.FileName)

	_, err = LatestCollection([]Export{{Type: ExportChainScrape}})
	require.Error(t, err)
}
