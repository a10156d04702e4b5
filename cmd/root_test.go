package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/footprint-cli/internal/model"
)

func TestReadTableCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.csv")
	require.NoError(t, os.WriteFile(path, []byte("ChainId,Status\n1,Added\n2,Removed\n"), 0o644))

	table, err := readTable(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"ChainId", "Status"}, table.Header)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"2", "Removed"}, table.Rows[1])
}

func TestReadTableMissingFile(t *testing.T) {
	_, err := readTable(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
}

func TestParseWindowFlags(t *testing.T) {
	processWindowStart, processWindowEnd = "", ""
	w, err := parseWindowFlags()
	require.NoError(t, err)
	assert.True(t, w.Start.IsZero())

	processWindowStart, processWindowEnd = "2026-01-01", ""
	_, err = parseWindowFlags()
	require.Error(t, err)

	processWindowStart, processWindowEnd = "2026-01-31", "2026-01-01"
	_, err = parseWindowFlags()
	require.Error(t, err)

	processWindowStart, processWindowEnd = "2026-01-01", "2026-01-31"
	w, err = parseWindowFlags()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), w.Start)
	assert.Equal(t, time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC), w.End)
}

func TestParseLifecycleStatus(t *testing.T) {
	s, err := parseLifecycleStatus("Open")
	require.NoError(t, err)
	assert.Equal(t, model.StatusOpen, s)

	s, err = parseLifecycleStatus(" closed ")
	require.NoError(t, err)
	assert.Equal(t, model.StatusClose, s)

	_, err = parseLifecycleStatus("busy")
	require.Error(t, err)
}
