// Package quality grades snapshot rows. Validation is observational: every
// row gets a report record and no row is ever dropped for failing.
package quality

import (
	"sort"
	"strconv"
	"strings"

	"github.com/sells-group/footprint-cli/internal/model"
	"github.com/sells-group/footprint-cli/internal/snapshot"
)

// requiredColumns are the fields the engine cannot process a row without.
var requiredColumns = map[string]bool{
	snapshot.ColChainID:    true,
	snapshot.ColLastUpdate: true,
	snapshot.ColLatitude:   true,
	snapshot.ColLongitude:  true,
	snapshot.ColStatus:     true,
}

// numericColumns get a parseability check on top of the blank check.
var numericColumns = map[string]bool{
	snapshot.ColLatitude:  true,
	snapshot.ColLongitude: true,
}

// Validate grades one row from its raw cells. A cell is blank when empty
// after trimming (pandas-style NaN markers count as blank). Latitude and
// Longitude are additionally invalid when non-blank but not numeric.
func Validate(row snapshot.CollectionRow) (model.ValidationResult, []string, []string) {
	var blank, invalid []string

	for name, value := range row.Cells {
		if isBlank(value) {
			blank = append(blank, name)
			continue
		}
		if numericColumns[name] {
			if _, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err != nil {
				invalid = append(invalid, name)
			}
		}
	}
	sort.Strings(blank)
	sort.Strings(invalid)

	result := model.ValidationValid
	if len(blank) > 0 || len(invalid) > 0 {
		result = model.ValidationValidNecessary
	}
	for _, name := range blank {
		if requiredColumns[name] {
			result = model.ValidationInvalid
		}
	}
	for _, name := range invalid {
		if requiredColumns[name] {
			result = model.ValidationInvalid
		}
	}
	return result, blank, invalid
}

// Report builds the persisted diagnostic record for one row.
func Report(fileName string, collectionID int, row snapshot.CollectionRow) model.QualityReportRow {
	result, blank, invalid := Validate(row)
	return model.QualityReportRow{
		FileName:       fileName,
		CollectionID:   collectionID,
		RowNumber:      row.Number,
		ChainID:        strings.TrimSpace(row.Cells[snapshot.ColChainID]),
		ScrapeDate:     row.LastUpdate,
		Result:         result,
		InvalidColumns: invalid,
		BlankColumns:   blank,
	}
}

func isBlank(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "nan", "null", "none":
		return true
	}
	return false
}
