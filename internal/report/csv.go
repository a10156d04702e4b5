package report

import (
	"encoding/csv"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/footprint-cli/internal/model"
	"github.com/sells-group/footprint-cli/internal/runcheck"
)

// enrichedColumns defines the ordered enriched-report CSV columns.
var enrichedColumns = []string{
	"ChainName",
	"Address",
	"City",
	"State",
	"Zip",
	"UsRegion",
	"UsDivision",
	"Status",
	"RemodelType",
	"OpenAtEstimated",
	"ClosedAtEstimated",
	"ExplainWindow",
	"SuspectedHashChange",
}

// WriteEnrichedCSV writes the enriched event report.
func WriteEnrichedCSV(rows []Row, outputPath string) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return eris.Wrap(err, "report: create enriched file")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(enrichedColumns); err != nil {
		return eris.Wrap(err, "report: write enriched header")
	}
	for _, r := range rows {
		record := []string{
			r.ChainName,
			r.Address,
			r.City,
			r.State,
			r.Zip,
			r.UsRegion,
			r.UsDivision,
			r.Status,
			r.RemodelType,
			r.OpenAtEstimated,
			r.ClosedAtEstimated,
			r.ExplainWindow,
			strconv.FormatBool(r.SuspectedHashChange),
		}
		if err := w.Write(record); err != nil {
			return eris.Wrap(err, "report: write enriched row")
		}
	}
	return nil
}

// WriteChainScrapeCSV re-emits the chain-scrape input columns with the three
// reconciliation annotations appended.
func WriteChainScrapeCSV(header []string, annotated []runcheck.Annotated, outputPath string) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return eris.Wrap(err, "report: create chain scrape file")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	out := append(append([]string{}, header...),
		runcheck.ColActualRunCheck, runcheck.ColDiffRunCheck, runcheck.ColRunCheckStatus)
	if err := w.Write(out); err != nil {
		return eris.Wrap(err, "report: write chain scrape header")
	}

	for _, a := range annotated {
		record := append(append([]string{}, a.Row.Cells...),
			a.ActualRunCheck, a.DiffRunCheck, a.RunCheckStatus)
		if err := w.Write(record); err != nil {
			return eris.Wrap(err, "report: write chain scrape row")
		}
	}
	return nil
}

// qualityColumns defines the ordered quality-report CSV columns.
var qualityColumns = []string{
	"RowNumber",
	"ChainId",
	"LastUpdate",
	"ValidationResult",
	"InvalidColumns",
	"BlankColumns",
}

// WriteQualityCSV writes the per-row validation report.
func WriteQualityCSV(rows []model.QualityReportRow, outputPath string) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return eris.Wrap(err, "report: create quality file")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(qualityColumns); err != nil {
		return eris.Wrap(err, "report: write quality header")
	}
	for _, r := range rows {
		scrape := ""
		if r.ScrapeDate != nil {
			scrape = r.ScrapeDate.Format("2006-01-02")
		}
		record := []string{
			strconv.Itoa(r.RowNumber),
			r.ChainID,
			scrape,
			string(r.Result),
			strings.Join(r.InvalidColumns, "; "),
			strings.Join(r.BlankColumns, "; "),
		}
		if err := w.Write(record); err != nil {
			return eris.Wrap(err, "report: write quality row")
		}
	}
	return nil
}
