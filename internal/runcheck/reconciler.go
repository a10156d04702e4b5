// Package runcheck reconciles partner-reported location counts against the
// running balance implied by the collection snapshot's Added/Removed rows.
package runcheck

import (
	"context"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/footprint-cli/internal/model"
	"github.com/sells-group/footprint-cli/internal/normalize"
	"github.com/sells-group/footprint-cli/internal/snapshot"
	"github.com/sells-group/footprint-cli/internal/store"
)

// Annotation column names appended to the chain-scrape report.
const (
	ColActualRunCheck = "ActualRunCheck"
	ColDiffRunCheck   = "DiffRunCheck"
	ColRunCheckStatus = "RunCheckStatus"
)

const notApplicable = "N/A"

// Annotated is one chain-scrape row with its reconciliation verdict, raw
// input cells retained for the report.
type Annotated struct {
	Row            snapshot.ChainScrapeRow
	Balance        int
	ActualRunCheck string
	DiffRunCheck   string
	RunCheckStatus string
}

// Reconciler computes per-chain running balances. Balances carry across
// scrape dates inside one pass; replaying a window re-applies its deltas,
// so a replay needs the prior balance compensated first.
type Reconciler struct {
	store store.Store
}

func New(s store.Store) *Reconciler {
	return &Reconciler{store: s}
}

// deltaKey identifies one (chain, scrape date) cell of the collection
// snapshot.
type deltaKey struct {
	chainID int
	date    string
}

type delta struct {
	added   int
	removed int
}

// CountDeltas tallies Added and Removed collection rows per (chain, date).
// Rows without a usable LastUpdate are ignored; quality validation reports
// them separately.
func CountDeltas(rows []snapshot.CollectionRow) map[deltaKey]delta {
	deltas := make(map[deltaKey]delta)
	for _, row := range rows {
		if row.LastUpdate == nil {
			continue
		}
		k := deltaKey{chainID: row.ChainID, date: row.LastUpdate.Format("2006-01-02")}
		d := deltas[k]
		if row.Status == "Added" {
			d.added++
		} else {
			d.removed++
		}
		deltas[k] = d
	}
	return deltas
}

// Reconcile walks chain-scrape rows in (chain, date, time) order, maintains
// the per-chain balance, persists each ChainScrape with its post-delta
// balance, and returns the annotated rows. The balance resets to zero at the
// first row of each chain; a duplicate date for the same chain is skipped in
// favor of the later row.
func (r *Reconciler) Reconcile(ctx context.Context, collectionID int, scrapes []snapshot.ChainScrapeRow, collection []snapshot.CollectionRow) ([]Annotated, error) {
	snapshot.SortChainScrapes(scrapes)
	deltas := CountDeltas(collection)

	var out []Annotated
	balance := 0
	currentChain := -1

	for i, row := range scrapes {
		if row.ChainID != currentChain {
			currentChain = row.ChainID
			balance = 0
		}
		// Same chain and date twice: only the last row counts.
		if i+1 < len(scrapes) && scrapes[i+1].ChainID == row.ChainID && scrapes[i+1].Date.Equal(row.Date) {
			continue
		}

		d := deltas[deltaKey{chainID: row.ChainID, date: row.Date.Format("2006-01-02")}]
		balance += d.added - d.removed

		scrapeTime, err := normalize.ParseClockTime(row.RawTime)
		if err != nil {
			scrapeTime = "00:00:00"
		}
		cs := model.ChainScrape{
			ChainID:         row.ChainID,
			ChainName:       row.ChainName,
			CollectionID:    collectionID,
			ScrapeDate:      row.Date,
			ScrapeTime:      scrapeTime,
			UsLocationCount: row.UsLocationCount,
			LocationCount:   row.LocationCount,
			RunCheckCount:   balance,
		}
		if err := r.store.UpsertChainScrape(ctx, cs); err != nil {
			return nil, eris.Wrapf(err, "runcheck: persist chain %d", row.ChainID)
		}

		out = append(out, annotate(row, balance))
	}

	zap.L().Info("run check reconciled",
		zap.Int("collection_id", collectionID),
		zap.Int("rows", len(out)))
	return out, nil
}

func annotate(row snapshot.ChainScrapeRow, balance int) Annotated {
	a := Annotated{Row: row, Balance: balance}
	if balance == 0 {
		a.ActualRunCheck = notApplicable
		a.DiffRunCheck = notApplicable
		a.RunCheckStatus = notApplicable
		return a
	}
	a.ActualRunCheck = strconv.Itoa(balance)
	a.DiffRunCheck = strconv.Itoa(row.UsLocationCount - balance)
	if row.UsLocationCount == balance {
		a.RunCheckStatus = "MATCHED"
	} else {
		a.RunCheckStatus = "UNMATCHED"
	}
	return a
}
