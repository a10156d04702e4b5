package runcheck

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/footprint-cli/internal/snapshot"
	"github.com/sells-group/footprint-cli/internal/store"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	s, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { s.Close() })
	return s
}

func collectionRows(chainID int, date time.Time, added, removed int) []snapshot.CollectionRow {
	var rows []snapshot.CollectionRow
	d := date
	for i := 0; i < added; i++ {
		rows = append(rows, snapshot.CollectionRow{ChainID: chainID, LastUpdate: &d, Status: "Added"})
	}
	for i := 0; i < removed; i++ {
		rows = append(rows, snapshot.CollectionRow{ChainID: chainID, LastUpdate: &d, Status: "Removed"})
	}
	return rows
}

func scrapeRow(chainID int, date time.Time, usCount int) snapshot.ChainScrapeRow {
	return snapshot.ChainScrapeRow{
		ChainID:         chainID,
		ChainName:       "Coffee Chain",
		Date:            date,
		RawTime:         "04:15:00",
		UsLocationCount: usCount,
		Cells:           []string{"42", "Coffee Chain"},
	}
}

func TestReconcile_RunningBalance(t *testing.T) {
	s := newTestStore(t)
	r := New(s)

	// (added, removed) = (5,1) then (3,0): balances 4 then 7.
	collection := append(
		collectionRows(42, day(2025, 1, 15), 5, 1),
		collectionRows(42, day(2025, 1, 31), 3, 0)...)
	scrapes := []snapshot.ChainScrapeRow{
		scrapeRow(42, day(2025, 1, 15), 4),
		scrapeRow(42, day(2025, 1, 31), 9),
	}

	out, err := r.Reconcile(context.Background(), 7, scrapes, collection)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, 4, out[0].Balance)
	assert.Equal(t, "4", out[0].ActualRunCheck)
	assert.Equal(t, "0", out[0].DiffRunCheck)
	assert.Equal(t, "MATCHED", out[0].RunCheckStatus)

	assert.Equal(t, 7, out[1].Balance)
	assert.Equal(t, "7", out[1].ActualRunCheck)
	assert.Equal(t, "2", out[1].DiffRunCheck)
	assert.Equal(t, "UNMATCHED", out[1].RunCheckStatus)
}

func TestReconcile_BalanceResetsPerChain(t *testing.T) {
	s := newTestStore(t)
	r := New(s)

	collection := append(
		collectionRows(1, day(2025, 1, 15), 10, 0),
		collectionRows(2, day(2025, 1, 15), 3, 0)...)
	scrapes := []snapshot.ChainScrapeRow{
		scrapeRow(1, day(2025, 1, 15), 10),
		scrapeRow(2, day(2025, 1, 15), 3),
	}

	out, err := r.Reconcile(context.Background(), 7, scrapes, collection)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, 10, out[0].Balance)
	assert.Equal(t, 3, out[1].Balance)
}

func TestReconcile_ZeroBalanceIsNA(t *testing.T) {
	s := newTestStore(t)
	r := New(s)

	collection := collectionRows(42, day(2025, 1, 15), 2, 2)
	scrapes := []snapshot.ChainScrapeRow{scrapeRow(42, day(2025, 1, 15), 0)}

	out, err := r.Reconcile(context.Background(), 7, scrapes, collection)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "N/A", out[0].ActualRunCheck)
	assert.Equal(t, "N/A", out[0].DiffRunCheck)
	assert.Equal(t, "N/A", out[0].RunCheckStatus)
}

func TestReconcile_DuplicateDateSkipsEarlierRow(t *testing.T) {
	s := newTestStore(t)
	r := New(s)

	collection := collectionRows(42, day(2025, 1, 15), 6, 1)
	early := scrapeRow(42, day(2025, 1, 15), 5)
	early.RawTime = "01:00:00"
	late := scrapeRow(42, day(2025, 1, 15), 5)
	late.RawTime = "23:00:00"

	out, err := r.Reconcile(context.Background(), 7, []snapshot.ChainScrapeRow{early, late}, collection)
	require.NoError(t, err)
	// One annotated row, deltas applied once.
	require.Len(t, out, 1)
	assert.Equal(t, 5, out[0].Balance)
	assert.Equal(t, "MATCHED", out[0].RunCheckStatus)
}

func TestReconcile_PersistsPostDeltaBalance(t *testing.T) {
	s := newTestStore(t)
	r := New(s)

	collection := collectionRows(42, day(2025, 1, 15), 5, 1)
	scrapes := []snapshot.ChainScrapeRow{scrapeRow(42, day(2025, 1, 15), 4)}

	_, err := r.Reconcile(context.Background(), 7, scrapes, collection)
	require.NoError(t, err)

	stored, err := s.ChainScrapesByCollection(context.Background(), 7, day(2025, 1, 1), day(2025, 1, 31))
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, 4, stored[0].RunCheckCount)
	assert.Equal(t, "04:15:00", stored[0].ScrapeTime)
}

func TestCountDeltas_IgnoresRowsWithoutDate(t *testing.T) {
	rows := collectionRows(42, day(2025, 1, 15), 2, 0)
	rows = append(rows, snapshot.CollectionRow{ChainID: 42, Status: "Added"})

	deltas := CountDeltas(rows)
	require.Len(t, deltas, 1)
	for _, d := range deltas {
		assert.Equal(t, 2, d.added)
	}
}
