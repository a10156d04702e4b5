package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBulkUpsertEmptyRows(t *testing.T) {
	n, err := BulkUpsert(nil, nil, UpsertConfig{
		Table:        "us_region",
		Columns:      []string{"zip", "region"},
		ConflictKeys: []string{"zip"},
	}, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestBulkUpsertNoColumns(t *testing.T) {
	_, err := BulkUpsert(nil, nil, UpsertConfig{
		Table:        "us_region",
		ConflictKeys: []string{"zip"},
	}, [][]any{{10001, "Northeast"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no columns specified")
}

func TestBulkUpsertNoConflictKeys(t *testing.T) {
	_, err := BulkUpsert(nil, nil, UpsertConfig{
		Table:   "us_region",
		Columns: []string{"zip", "region"},
	}, [][]any{{10001, "Northeast"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no conflict keys specified")
}

func TestSanitizeTable(t *testing.T) {
	assert.Equal(t, `"locations"`, sanitizeTable("locations"))
	assert.Equal(t, `"footprint"."locations"`, sanitizeTable("footprint.locations"))
}

func TestQuoteAndJoin(t *testing.T) {
	assert.Equal(t, `"zip", "region", "division"`, quoteAndJoin([]string{"zip", "region", "division"}))
}
