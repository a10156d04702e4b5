// Package snapshot turns raw tabular partner exports into typed records.
// Collection snapshots carry one row per location sighting; chain-scrape
// snapshots carry one row per (chain, scrape date) with reported counts.
// Parsing is lenient on purpose: a row with a bad cell still gets a typed
// record (with the raw cells retained), and the engine decides per row
// whether it is usable.
package snapshot

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/footprint-cli/internal/normalize"
)

// Collection snapshot column names. Header binding is by exact name; the
// partner export is stable on these.
const (
	ColChainID         = "ChainId"
	ColChainName       = "ChainName"
	ColHashID          = "HashId"
	ColLatitude        = "Latitude"
	ColLongitude       = "Longitude"
	ColStoreNumber     = "StoreNumber"
	ColAddress         = "Address"
	ColAddress2        = "Address2"
	ColCity            = "City"
	ColState           = "State"
	ColPostalCode      = "PostalCode"
	ColStatus          = "Status"
	ColLastUpdate      = "LastUpdate"
	ColParentChainID   = "ParentChainId"
	ColParentChainName = "ParentChainName"
	ColStoreName       = "StoreName"
	ColPhoneNumber     = "PhoneNumber"
	ColStoreHours      = "StoreHours"
	ColSiteID          = "SiteId"
	ColComingSoon      = "ComingSoon"
)

// Table is a parsed tabular file: the header row plus data rows.
type Table struct {
	Header []string
	Rows   [][]string
}

// Window is the scrape window a snapshot covers.
type Window struct {
	Start time.Time
	End   time.Time
}

// Midpoint is the estimated occurrence date for changes observed in the
// window.
func (w Window) Midpoint() time.Time {
	return normalize.Midpoint(w.Start, w.End)
}

// CollectionRow is one location sighting. Typed fields are parsed
// best-effort; Cells retains every raw value by column name for quality
// validation and diagnostics.
type CollectionRow struct {
	Number          int // 1-based position in the source file
	ChainID         int
	ChainName       string
	HashID          string
	Latitude        *float64
	Longitude       *float64
	StoreNumber     string
	Address         string
	Address2        string
	City            string
	State           string
	PostalCode      string
	Status          string
	LastUpdate      *time.Time
	ParentChainID   int
	ParentChainName string
	StoreName       string
	PhoneNumber     string
	StoreHours      string
	SiteID          string
	ComingSoon      bool

	Cells map[string]string
}

// ChainScrapeRow is one chain-scrape record with its raw cells kept in
// header order so the annotated report can re-emit the input columns.
type ChainScrapeRow struct {
	ChainID         int
	ChainName       string
	Date            time.Time
	RawTime         string
	LocationCount   int
	UsLocationCount int

	Cells []string
}

func indexHeader(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	return idx
}

func cell(record []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func parseFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseInt(s string) int {
	v, _ := strconv.Atoi(strings.TrimSuffix(s, ".0"))
	return v
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "1", "yes", "y":
		return true
	}
	return false
}

// ParseCollection binds a collection table to typed rows.
func ParseCollection(t Table) []CollectionRow {
	idx := indexHeader(t.Header)
	rows := make([]CollectionRow, 0, len(t.Rows))

	for i, record := range t.Rows {
		row := CollectionRow{
			Number:          i + 1,
			ChainID:         parseInt(cell(record, idx, ColChainID)),
			ChainName:       cell(record, idx, ColChainName),
			HashID:          cell(record, idx, ColHashID),
			Latitude:        parseFloat(cell(record, idx, ColLatitude)),
			Longitude:       parseFloat(cell(record, idx, ColLongitude)),
			StoreNumber:     cell(record, idx, ColStoreNumber),
			Address:         cell(record, idx, ColAddress),
			Address2:        cell(record, idx, ColAddress2),
			City:            cell(record, idx, ColCity),
			State:           cell(record, idx, ColState),
			PostalCode:      cell(record, idx, ColPostalCode),
			Status:          cell(record, idx, ColStatus),
			ParentChainID:   parseInt(cell(record, idx, ColParentChainID)),
			ParentChainName: cell(record, idx, ColParentChainName),
			StoreName:       cell(record, idx, ColStoreName),
			PhoneNumber:     cell(record, idx, ColPhoneNumber),
			StoreHours:      cell(record, idx, ColStoreHours),
			SiteID:          cell(record, idx, ColSiteID),
			ComingSoon:      parseBool(cell(record, idx, ColComingSoon)),
			Cells:           make(map[string]string, len(t.Header)),
		}

		if d, err := normalize.ParseDate(cell(record, idx, ColLastUpdate)); err == nil {
			row.LastUpdate = &d
		}

		for name, j := range idx {
			if j < len(record) {
				row.Cells[name] = record[j]
			} else {
				row.Cells[name] = ""
			}
		}

		rows = append(rows, row)
	}
	return rows
}

// SortCollection orders rows the way the engine must consume them:
// (chain, date, status, longitude, latitude). Temporal order per location
// is load-bearing for event-chain linkage and remodel pairing.
func SortCollection(rows []CollectionRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.ChainID != b.ChainID {
			return a.ChainID < b.ChainID
		}
		ad, bd := dateKey(a.LastUpdate), dateKey(b.LastUpdate)
		if ad != bd {
			return ad < bd
		}
		if a.Status != b.Status {
			return a.Status < b.Status
		}
		al, bl := floatKey(a.Longitude), floatKey(b.Longitude)
		if al != bl {
			return al < bl
		}
		return floatKey(a.Latitude) < floatKey(b.Latitude)
	})
}

func dateKey(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func floatKey(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// ParseChainScrapes binds a chain-scrape table to typed rows. A row with an
// unparseable Date is an error: reconciliation order depends on it.
func ParseChainScrapes(t Table) ([]ChainScrapeRow, error) {
	idx := indexHeader(t.Header)
	rows := make([]ChainScrapeRow, 0, len(t.Rows))

	for i, record := range t.Rows {
		date, err := normalize.ParseDate(cell(record, idx, "Date"))
		if err != nil {
			return nil, eris.Wrapf(err, "snapshot: chain scrape row %d", i+1)
		}
		cells := make([]string, len(t.Header))
		copy(cells, record)

		rows = append(rows, ChainScrapeRow{
			ChainID:         parseInt(cell(record, idx, "ChainId")),
			ChainName:       cell(record, idx, "ChainName"),
			Date:            date,
			RawTime:         cell(record, idx, "Time"),
			LocationCount:   parseInt(cell(record, idx, "LocationCount")),
			UsLocationCount: parseInt(cell(record, idx, "UsLocationCount")),
			Cells:           cells,
		})
	}
	return rows, nil
}

// SortChainScrapes orders reconciliation input by (chain, date, time).
func SortChainScrapes(rows []ChainScrapeRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.ChainID != b.ChainID {
			return a.ChainID < b.ChainID
		}
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.RawTime < b.RawTime
	})
}
