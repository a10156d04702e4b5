package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	assert.Equal(t, "coffee-chain", Slugify("Coffee Chain"))
	assert.Equal(t, "joe-s-diner-2", Slugify("  Joe's Diner #2  "))
	assert.Equal(t, "", Slugify("!!!"))
}

func TestAddress(t *testing.T) {
	assert.Equal(t, "100 MAIN ST", Address("100 Main Street"))
	assert.Equal(t, "5 OCEAN BLVD", Address("5  ocean   Boulevard"))
	assert.Equal(t, "12 STREETER WAY", Address("12 Streeter Way")) // word-bounded
	assert.Equal(t, "", Address("   "))
}

func TestCityStateZip(t *testing.T) {
	assert.Equal(t, "New York", City("NEW YORK"))
	assert.Equal(t, "NY", State(" ny "))
	assert.Equal(t, "10001", Zip("10001-1234"))
	assert.Equal(t, "", Zip("ABC"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, 40.7127, Truncate(40.71278, 4))
	assert.Equal(t, -74.006, Truncate(-74.00601, 4))
}

func TestCoordinateKey(t *testing.T) {
	// Shortest representation, no trailing zeros.
	assert.Equal(t, "40.7127", CoordinateKey(40.71278))
	assert.Equal(t, "-74.5", CoordinateKey(-74.50001))
	assert.Equal(t, "40", CoordinateKey(40.00001))
}

func TestSyntheticLocationID(t *testing.T) {
	a := SyntheticLocationID(40.71278, -74.00601, "")
	b := SyntheticLocationID(40.71279, -74.00609, "")
	assert.Equal(t, a, b, "coordinates in the same truncation cell share identity")
	assert.Len(t, a, 64)

	withStore := SyntheticLocationID(40.71278, -74.00601, "42")
	assert.NotEqual(t, a, withStore, "store number changes identity")

	blankStore := SyntheticLocationID(40.71278, -74.00601, "  ")
	assert.Equal(t, a, blankStore, "whitespace store number is ignored")
}

func TestFullAddress(t *testing.T) {
	assert.Equal(t, "100 MAIN ST, STE 4, 42", FullAddress("100 MAIN ST", "STE 4", "42"))
	assert.Equal(t, "100 MAIN ST", FullAddress("100 MAIN ST", "", ""))
}

func TestParseDate(t *testing.T) {
	want := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{
		"2026-01-15",
		"2026/01/15",
		"01/15/2026",
		"2026-01-15T09:30:00",
		"2026-01-15 09:30:00",
		"2026-01-15T09:30:00Z",
	} {
		got, err := ParseDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseDate("")
	require.Error(t, err)
	_, err = ParseDate("the ides of march")
	require.Error(t, err)
}

func TestMidpoint(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 1, 16, 0, 0, 0, 0, time.UTC), Midpoint(start, end))
	assert.Equal(t, start, Midpoint(start, start))
}

func TestParseClockTime(t *testing.T) {
	got, err := ParseClockTime("Mon Jan 15 04:15:00.123 2026")
	require.NoError(t, err)
	assert.Equal(t, "04:15:00", got)

	got, err = ParseClockTime("04:15:00,5")
	require.NoError(t, err)
	assert.Equal(t, "04:15:00", got)

	_, err = ParseClockTime("noonish")
	require.Error(t, err)
}
