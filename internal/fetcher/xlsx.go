package fetcher

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/footprint-cli/internal/snapshot"
)

// XLSXOptions selects the sheet and header layout of a workbook.
type XLSXOptions struct {
	SheetIndex int    // default 0
	SheetName  string // if set, overrides SheetIndex
	SkipRows   int    // data rows to skip after the header
}

// ReadXLSXTable reads one sheet of a reference workbook into a table. The
// first row is the header.
func ReadXLSXTable(path string, opts XLSXOptions) (snapshot.Table, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return snapshot.Table{}, eris.Wrap(err, "xlsx: open file")
	}

	sheet, err := pickSheet(f, opts)
	if err != nil {
		return snapshot.Table{}, err
	}
	if len(sheet.Rows) == 0 {
		return snapshot.Table{}, eris.Errorf("xlsx: sheet %q is empty", sheet.Name)
	}

	table := snapshot.Table{Header: rowToStrings(sheet.Rows[0])}
	for i, row := range sheet.Rows[1:] {
		if i < opts.SkipRows {
			continue
		}
		table.Rows = append(table.Rows, rowToStrings(row))
	}
	return table, nil
}

func pickSheet(f *xlsx.File, opts XLSXOptions) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("xlsx: sheet %q not found", opts.SheetName)
		}
		return sheet, nil
	}
	if opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("xlsx: sheet index %d out of range (file has %d sheets)", opts.SheetIndex, len(f.Sheets))
	}
	return f.Sheets[opts.SheetIndex], nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
