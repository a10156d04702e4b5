// Package report builds the output artifacts of a processing run: the
// enriched event report, the annotated chain-scrape report, and the quality
// report.
package report

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/footprint-cli/internal/model"
	"github.com/sells-group/footprint-cli/internal/normalize"
	"github.com/sells-group/footprint-cli/internal/store"
)

// Row is one enriched report record: the event joined with its location's
// current state and the census region for its zip.
type Row struct {
	ChainName           string
	Address             string
	City                string
	State               string
	Zip                 string
	UsRegion            string
	UsDivision          string
	Status              string
	RemodelType         string
	OpenAtEstimated     string
	ClosedAtEstimated   string
	ExplainWindow       string
	SuspectedHashChange bool
}

// Assembler joins events with locations and reference data.
type Assembler struct {
	store store.Store
}

func NewAssembler(s store.Store) *Assembler {
	return &Assembler{store: s}
}

// Assemble builds the enriched report for events whose scrape date falls in
// [start, end]. Events sharing a (location, scrape date, type) key collapse
// to the last occurrence; output order is (location, event date) and is
// deterministic for a given store state.
func (a *Assembler) Assemble(ctx context.Context, start, end time.Time) ([]Row, error) {
	events, err := a.store.EventsByScrapeDateRange(ctx, start, end)
	if err != nil {
		return nil, eris.Wrap(err, "report: load events")
	}

	type key struct {
		locID     string
		scrape    string
		eventType model.EventType
	}
	dedup := make(map[key]model.LocationEvent, len(events))
	order := make([]key, 0, len(events))
	for _, ev := range events {
		k := key{locID: ev.SyntheticLocationID, scrape: ev.ScrapeDate.Format("2006-01-02"), eventType: ev.EventType}
		if _, seen := dedup[k]; !seen {
			order = append(order, k)
		}
		dedup[k] = ev
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := dedup[order[i]], dedup[order[j]]
		if a.SyntheticLocationID != b.SyntheticLocationID {
			return a.SyntheticLocationID < b.SyntheticLocationID
		}
		return a.EventDateEstimated.Before(b.EventDateEstimated)
	})

	rows := make([]Row, 0, len(order))
	for _, k := range order {
		ev := dedup[k]
		row, err := a.buildRow(ctx, ev)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (a *Assembler) buildRow(ctx context.Context, ev model.LocationEvent) (Row, error) {
	loc, err := a.store.LocationBySyntheticID(ctx, ev.SyntheticLocationID)
	if err != nil {
		return Row{}, eris.Wrap(err, "report: load location")
	}
	if loc == nil {
		return Row{}, eris.Errorf("report: event %s has no location", ev.ID)
	}

	row := Row{
		ChainName:           loc.ChainName,
		Address:             normalize.FullAddress(loc.Address, loc.AddressComplement, loc.StoreNumber),
		City:                loc.City,
		State:               loc.State,
		Zip:                 loc.Zip,
		Status:              string(ev.EventType.Status()),
		RemodelType:         string(ev.RemodelType),
		OpenAtEstimated:     fmtDate(ev.CurrentOpenedAt),
		ClosedAtEstimated:   fmtDate(ev.CurrentClosedAt),
		SuspectedHashChange: ev.SuspectedHashChange,
	}

	if zip, err := strconv.Atoi(loc.Zip); err == nil {
		region, err := a.store.RegionByZip(ctx, zip)
		if err != nil {
			return Row{}, eris.Wrap(err, "report: region lookup")
		}
		if region != nil {
			row.UsRegion = region.Region
			row.UsDivision = region.Division
		}
	}

	prior, err := a.store.LastEventBefore(ctx, ev.SyntheticLocationID, ev.ScrapeDate)
	if err != nil {
		return Row{}, eris.Wrap(err, "report: prior event lookup")
	}
	row.ExplainWindow = ExplainWindow(prior, ev)
	return row, nil
}

// ExplainWindow describes the observation window an event was inferred from.
func ExplainWindow(prior *model.LocationEvent, current model.LocationEvent) string {
	if prior == nil {
		return fmt.Sprintf("First scrape %s", current.ScrapeDate.Format("2006-01-02"))
	}
	return fmt.Sprintf("Scrape %s -> %s",
		prior.ScrapeDate.Format("2006-01-02"), current.ScrapeDate.Format("2006-01-02"))
}

func fmtDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
