package refdata

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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

func TestLoadRegions(t *testing.T) {
	s := newTestStore(t)
	l := New(s)

	table := snapshot.Table{
		Header: []string{"PhysicalZip", "CensusRegion", "CensusDivision"},
		Rows: [][]string{
			{"10001", "Northeast", "Middle Atlantic"},
			{"94105", "West", "Pacific"},
			{"not-a-zip", "West", "Pacific"},
		},
	}

	n, err := l.LoadRegions(context.Background(), table)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	r, err := s.RegionByZip(context.Background(), 94105)
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, "West", r.Region)
	assert.Equal(t, "Pacific", r.Division)
}

func TestLoadRegions_NoUsableRows(t *testing.T) {
	s := newTestStore(t)
	l := New(s)

	table := snapshot.Table{
		Header: []string{"PhysicalZip", "CensusRegion", "CensusDivision"},
		Rows:   [][]string{{"abc", "", ""}},
	}
	_, err := l.LoadRegions(context.Background(), table)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no usable region rows")
}

func TestLoadParentChains(t *testing.T) {
	s := newTestStore(t)
	l := New(s)

	table := snapshot.Table{
		Header: []string{"ChainId", "ChainName", "ChainStatus", "StockTicker", "ManualChange", "ModifiedDate"},
		Rows: [][]string{
			{"42", "Coffee Chain", "ACTIVE", "COF", "true", "2025-06-01"},
			{"", "orphan row", "", "", "", ""},
		},
	}

	n, err := l.LoadParentChains(context.Background(), table)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestLoadLandlordsAndCenters(t *testing.T) {
	s := newTestStore(t)
	l := New(s)
	ctx := context.Background()

	landlords := snapshot.Table{
		Header: []string{"LandlordId", "LandlordName", "IsPublic", "PropertyCount"},
		Rows:   [][]string{{"LL-1", "Big Property REIT", "yes", "250"}},
	}
	n, err := l.LoadLandlords(ctx, landlords)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	centers := snapshot.Table{
		Header: []string{"SiteId", "Title", "Latitude", "Longitude", "GLA", "Units"},
		Rows:   [][]string{{"S1", "Main Street Plaza", "40.7", "-74.0", "125000.5", "48"}},
	}
	n, err = l.LoadCenters(ctx, centers)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	links := snapshot.Table{
		Header: []string{"SiteId", "LandlordId", "OwnershipPct"},
		Rows:   [][]string{{"S1", "LL-1", "100"}},
	}
	n, err = l.LoadCenterLandlords(ctx, links)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
