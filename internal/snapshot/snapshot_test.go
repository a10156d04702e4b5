package snapshot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCollection(t *testing.T) {
	table := Table{
		Header: []string{"ChainId", "ChainName", "Latitude", "Longitude", "Status", "LastUpdate", "ComingSoon", "StoreNumber"},
		Rows: [][]string{
			{"42", "Coffee Chain", "40.71278", "-74.00601", "Added", "2026-01-15", "true", "7"},
			{"42", "Coffee Chain", "not-a-number", "", "Removed", "bogus", "", ""},
		},
	}

	rows := ParseCollection(table)
	require.Len(t, rows, 2)

	first := rows[0]
	assert.Equal(t, 1, first.Number)
	assert.Equal(t, 42, first.ChainID)
	require.NotNil(t, first.Latitude)
	assert.Equal(t, 40.71278, *first.Latitude)
	require.NotNil(t, first.LastUpdate)
	assert.Equal(t, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), *first.LastUpdate)
	assert.True(t, first.ComingSoon)
	assert.Equal(t, "7", first.StoreNumber)
	assert.Equal(t, "Added", first.Cells["Status"])

	// Bad cells degrade to zero values, the row survives.
	second := rows[1]
	assert.Equal(t, 2, second.Number)
	assert.Nil(t, second.Latitude)
	assert.Nil(t, second.Longitude)
	assert.Nil(t, second.LastUpdate)
	assert.Equal(t, "not-a-number", second.Cells["Latitude"])
}

func TestParseCollectionShortRecord(t *testing.T) {
	table := Table{
		Header: []string{"ChainId", "ChainName", "Status"},
		Rows:   [][]string{{"1"}},
	}
	rows := ParseCollection(table)
	require.Len(t, rows, 1)
	assert.Equal(t, "", rows[0].Status)
	assert.Equal(t, "", rows[0].Cells["Status"])
}

func TestSortCollection(t *testing.T) {
	jan10 := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	jan20 := time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)
	lat, lon := 40.0, -74.0

	rows := []CollectionRow{
		{Number: 1, ChainID: 2, LastUpdate: &jan10},
		{Number: 2, ChainID: 1, LastUpdate: &jan20},
		{Number: 3, ChainID: 1, LastUpdate: &jan10, Status: "Removed", Latitude: &lat, Longitude: &lon},
		{Number: 4, ChainID: 1, LastUpdate: &jan10, Status: "Added", Latitude: &lat, Longitude: &lon},
	}
	SortCollection(rows)

	var order []int
	for _, r := range rows {
		order = append(order, r.Number)
	}
	// Chain first, then date, then status alphabetically (Added < Removed).
	assert.Equal(t, []int{4, 3, 2, 1}, order)
}

func TestWindowMidpoint(t *testing.T) {
	w := Window{
		Start: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, time.Date(2025, 1, 16, 0, 0, 0, 0, time.UTC), w.Midpoint())
}

func TestParseChainScrapes(t *testing.T) {
	table := Table{
		Header: []string{"ChainId", "ChainName", "Date", "Time", "LocationCount", "UsLocationCount"},
		Rows: [][]string{
			{"7", "Coffee Chain", "2026-01-15", "04:15:00", "120", "118"},
		},
	}
	rows, err := ParseChainScrapes(table)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 7, rows[0].ChainID)
	assert.Equal(t, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), rows[0].Date)
	assert.Equal(t, 118, rows[0].UsLocationCount)
	assert.Equal(t, table.Rows[0], rows[0].Cells)
}

func TestParseChainScrapesBadDate(t *testing.T) {
	table := Table{
		Header: []string{"ChainId", "Date"},
		Rows:   [][]string{{"7", "January-ish"}},
	}
	_, err := ParseChainScrapes(table)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 1")
}

func TestSortChainScrapes(t *testing.T) {
	d1 := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)
	rows := []ChainScrapeRow{
		{ChainID: 2, Date: d1},
		{ChainID: 1, Date: d2, RawTime: "09:00:00"},
		{ChainID: 1, Date: d2, RawTime: "04:00:00"},
		{ChainID: 1, Date: d1},
	}
	SortChainScrapes(rows)
	assert.Equal(t, 1, rows[0].ChainID)
	assert.Equal(t, d1, rows[0].Date)
	assert.Equal(t, "04:00:00", rows[1].RawTime)
	assert.Equal(t, "09:00:00", rows[2].RawTime)
	assert.Equal(t, 2, rows[3].ChainID)
}
