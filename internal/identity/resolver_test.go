package identity

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/footprint-cli/internal/model"
	"github.com/sells-group/footprint-cli/internal/snapshot"
	"github.com/sells-group/footprint-cli/internal/store"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	s, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { s.Close() })
	return s
}

func ptr[T any](v T) *T { return &v }

func testRow(hashID string, lat, lon float64) snapshot.CollectionRow {
	return snapshot.CollectionRow{
		Number:     1,
		ChainID:    42,
		ChainName:  "Coffee Chain",
		HashID:     hashID,
		Latitude:   ptr(lat),
		Longitude:  ptr(lon),
		Address:    "100 Main Street",
		City:       "new york",
		State:      "ny ",
		PostalCode: "10001-2345",
		Status:     "Added",
	}
}

func TestResolve_CreatesLocationOnFirstSighting(t *testing.T) {
	s := newTestStore(t)
	r := New(s)
	mid := time.Date(2025, 1, 16, 0, 0, 0, 0, time.UTC)

	loc, suspected, err := r.Resolve(context.Background(), testRow("H1", 40.1234567, -73.9876543), mid)
	require.NoError(t, err)
	assert.False(t, suspected)
	assert.Equal(t, model.StatusOpen, loc.Status)
	assert.Equal(t, "H1", loc.PartnerHashID)
	assert.Equal(t, "100 MAIN ST", loc.Address)
	assert.Equal(t, "New York", loc.City)
	assert.Equal(t, "NY", loc.State)
	assert.Equal(t, "10001", loc.Zip)
	assert.Equal(t, "coffee-chain", loc.ChainSlug)
	require.NotNil(t, loc.OpenedAt)
	assert.Equal(t, mid, *loc.OpenedAt)
}

func TestResolve_RemovedFirstSightingStillEstimatesOpening(t *testing.T) {
	s := newTestStore(t)
	r := New(s)
	mid := time.Date(2025, 1, 16, 0, 0, 0, 0, time.UTC)

	// A location whose first sighting is a removal was open before we ever
	// scraped it: the creation still records the midpoint as opening estimate.
	row := testRow("H1", 40.1234567, -73.9876543)
	row.Status = "Removed"
	loc, suspected, err := r.Resolve(context.Background(), row, mid)
	require.NoError(t, err)
	assert.False(t, suspected)
	assert.Equal(t, model.StatusClose, loc.Status)
	require.NotNil(t, loc.OpenedAt)
	assert.Equal(t, mid, *loc.OpenedAt)
	require.NotNil(t, loc.ClosedAt)
	assert.Equal(t, mid, *loc.ClosedAt)
}

func TestResolve_IdentityStableAcrossDates(t *testing.T) {
	s := newTestStore(t)
	r := New(s)

	first, _, err := r.Resolve(context.Background(),
		testRow("H1", 40.1234567, -73.9876543), time.Date(2025, 1, 16, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	// Same truncated coordinates, later window: same location.
	second, _, err := r.Resolve(context.Background(),
		testRow("H1", 40.1234999, -73.9876001), time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, first.SyntheticID, second.SyntheticID)
}

func TestResolve_SuspectedHashChange(t *testing.T) {
	s := newTestStore(t)
	r := New(s)
	mid := time.Date(2025, 1, 16, 0, 0, 0, 0, time.UTC)

	first, _, err := r.Resolve(context.Background(), testRow("H1", 40.1234567, -73.9876543), mid)
	require.NoError(t, err)

	// New hash, same coordinates: coordinate fallback flags the churn.
	second, suspected, err := r.Resolve(context.Background(),
		testRow("H2", 40.1234567, -73.9876543), mid.AddDate(0, 1, 0))
	require.NoError(t, err)
	assert.True(t, suspected)
	assert.Equal(t, first.SyntheticID, second.SyntheticID)
	assert.Equal(t, "H2", second.PartnerHashID)
}

func TestResolve_HashMatchWins(t *testing.T) {
	s := newTestStore(t)
	r := New(s)
	mid := time.Date(2025, 1, 16, 0, 0, 0, 0, time.UTC)

	first, _, err := r.Resolve(context.Background(), testRow("H1", 40.1234567, -73.9876543), mid)
	require.NoError(t, err)

	// Same hash at drifted coordinates still matches by hash, no suspicion.
	moved := testRow("H1", 40.2000000, -73.9000000)
	moved.Status = "Removed"
	second, suspected, err := r.Resolve(context.Background(), moved, mid.AddDate(0, 1, 0))
	require.NoError(t, err)
	assert.False(t, suspected)
	assert.Equal(t, first.SyntheticID, second.SyntheticID)
	assert.Equal(t, model.StatusClose, second.Status)
	require.NotNil(t, second.ClosedAt)
}

func TestResolve_MissingGeometry(t *testing.T) {
	s := newTestStore(t)
	r := New(s)

	row := testRow("H-unknown", 0, 0)
	row.Latitude = nil
	row.Longitude = nil

	_, _, err := r.Resolve(context.Background(), row, time.Now())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingGeometry)
}

func TestResolve_UnknownStatus(t *testing.T) {
	s := newTestStore(t)
	r := New(s)

	row := testRow("H1", 40.1, -73.9)
	row.Status = "Renovated"

	_, _, err := r.Resolve(context.Background(), row, time.Now())
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrUnknownStatus)
}

func TestResolve_ReopenClearsClosedDate(t *testing.T) {
	s := newTestStore(t)
	r := New(s)
	mid := time.Date(2025, 1, 16, 0, 0, 0, 0, time.UTC)

	open := testRow("H1", 40.1234567, -73.9876543)
	_, _, err := r.Resolve(context.Background(), open, mid)
	require.NoError(t, err)

	closeRow := testRow("H1", 40.1234567, -73.9876543)
	closeRow.Status = "Removed"
	_, _, err = r.Resolve(context.Background(), closeRow, mid.AddDate(0, 1, 0))
	require.NoError(t, err)

	reopen := testRow("H1", 40.1234567, -73.9876543)
	loc, _, err := r.Resolve(context.Background(), reopen, mid.AddDate(0, 2, 0))
	require.NoError(t, err)
	assert.Equal(t, model.StatusOpen, loc.Status)
	assert.Nil(t, loc.ClosedAt)
	require.NotNil(t, loc.OpenedAt)
	assert.Equal(t, mid.AddDate(0, 2, 0), *loc.OpenedAt)
}
