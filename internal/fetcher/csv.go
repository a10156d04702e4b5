package fetcher

import (
	"context"
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/footprint-cli/internal/snapshot"
)

// CSVOptions configures CSV parsing.
type CSVOptions struct {
	Delimiter rune // default ','
	TrimSpace bool
}

// ReadCSVTable parses a whole CSV export into a table. The first record is
// the header. Collection files fit comfortably in memory; use StreamCSV for
// anything that does not.
func ReadCSVTable(r io.Reader, opts CSVOptions) (snapshot.Table, error) {
	reader := newCSVReader(r, opts)

	header, err := reader.Read()
	if err == io.EOF {
		return snapshot.Table{}, eris.New("csv: empty file")
	}
	if err != nil {
		return snapshot.Table{}, eris.Wrap(err, "csv: read header")
	}
	if opts.TrimSpace {
		trimFields(header)
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return snapshot.Table{}, eris.Wrap(err, "csv: read row")
		}
		if opts.TrimSpace {
			trimFields(record)
		}
		rows = append(rows, record)
	}
	return snapshot.Table{Header: header, Rows: rows}, nil
}

// StreamCSV reads CSV records into a channel, header first. Both channels
// close when parsing completes; the caller must drain the row channel.
func StreamCSV(ctx context.Context, r io.Reader, opts CSVOptions) (<-chan []string, <-chan error) {
	rowCh := make(chan []string, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(rowCh)
		defer close(errCh)

		reader := newCSVReader(r, opts)
		for {
			record, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				errCh <- eris.Wrap(err, "csv: read row")
				return
			}
			if opts.TrimSpace {
				trimFields(record)
			}
			select {
			case rowCh <- record:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "csv: context cancelled")
				return
			}
		}
	}()

	return rowCh, errCh
}

func newCSVReader(r io.Reader, opts CSVOptions) *csv.Reader {
	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	return reader
}

func trimFields(record []string) {
	for i, field := range record {
		record[i] = strings.TrimSpace(field)
	}
}
