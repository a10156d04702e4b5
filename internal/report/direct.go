package report

import (
	"context"
	"encoding/csv"
	"os"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/footprint-cli/internal/normalize"
	"github.com/sells-group/footprint-cli/internal/store"
)

// directColumns defines the ordered direct-report CSV columns.
var directColumns = []string{
	"ChainId",
	"ChainName",
	"StoreNumber",
	"Address",
	"City",
	"State",
	"Zip",
	"UsRegion",
	"UsDivision",
	"Status",
	"OpenAtEstimated",
	"ClosedAtEstimated",
	"Latitude",
	"Longitude",
}

// WriteDirectCSV dumps the current state of every location (or one chain's
// locations) straight from storage, bypassing the event ledger. Useful for
// spot checks between runs.
func WriteDirectCSV(ctx context.Context, s store.Store, chainID int, outputPath string) (int, error) {
	locations, err := s.LocationsByChain(ctx, chainID)
	if err != nil {
		return 0, eris.Wrap(err, "report: load locations")
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return 0, eris.Wrap(err, "report: create direct file")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(directColumns); err != nil {
		return 0, eris.Wrap(err, "report: write direct header")
	}

	for _, loc := range locations {
		region, division := "", ""
		if zip, err := strconv.Atoi(loc.Zip); err == nil {
			if r, err := s.RegionByZip(ctx, zip); err == nil && r != nil {
				region, division = r.Region, r.Division
			}
		}
		record := []string{
			strconv.Itoa(loc.ChainID),
			loc.ChainName,
			loc.StoreNumber,
			normalize.FullAddress(loc.Address, loc.AddressComplement, loc.StoreNumber),
			loc.City,
			loc.State,
			loc.Zip,
			region,
			division,
			string(loc.Status),
			fmtDate(loc.OpenedAt),
			fmtDate(loc.ClosedAt),
			strconv.FormatFloat(loc.Latitude, 'f', -1, 64),
			strconv.FormatFloat(loc.Longitude, 'f', -1, 64),
		}
		if err := w.Write(record); err != nil {
			return 0, eris.Wrap(err, "report: write direct row")
		}
	}
	return len(locations), nil
}
