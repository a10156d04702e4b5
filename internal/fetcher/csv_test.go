package fetcher

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSVTable(t *testing.T) {
	input := "ChainId,ChainName,Status\n42,Coffee Chain,Added\n43, Tea House ,Removed\n"

	table, err := ReadCSVTable(strings.NewReader(input), CSVOptions{TrimSpace: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"ChainId", "ChainName", "Status"}, table.Header)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Tea House", table.Rows[1][1])
}

func TestReadCSVTable_EmptyFile(t *testing.T) {
	_, err := ReadCSVTable(strings.NewReader(""), CSVOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty file")
}

func TestReadCSVTable_RaggedRows(t *testing.T) {
	input := "A,B,C\n1,2\n1,2,3,4\n"
	table, err := ReadCSVTable(strings.NewReader(input), CSVOptions{})
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	assert.Len(t, table.Rows[0], 2)
	assert.Len(t, table.Rows[1], 4)
}

func TestStreamCSV(t *testing.T) {
	input := "A,B\n1,2\n3,4\n"
	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(input), CSVOptions{})

	var rows [][]string
	for row := range rowCh {
		rows = append(rows, row)
	}
	require.NoError(t, <-errCh)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"3", "4"}, rows[2])
}

func TestReadCSVTable_Delimiter(t *testing.T) {
	input := "A;B\n1;2\n"
	table, err := ReadCSVTable(strings.NewReader(input), CSVOptions{Delimiter: ';'})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, table.Header)
	assert.Equal(t, []string{"1", "2"}, table.Rows[0])
}
