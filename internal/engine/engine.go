// Package engine runs the batch pipeline over one snapshot: quality
// validation, identity resolution, event recording, and run-check
// reconciliation. Processing is sequential; row order carries the temporal
// semantics the ledger depends on.
package engine

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/footprint-cli/internal/identity"
	"github.com/sells-group/footprint-cli/internal/ledger"
	"github.com/sells-group/footprint-cli/internal/model"
	"github.com/sells-group/footprint-cli/internal/quality"
	"github.com/sells-group/footprint-cli/internal/runcheck"
	"github.com/sells-group/footprint-cli/internal/snapshot"
	"github.com/sells-group/footprint-cli/internal/store"
)

// Engine wires the pipeline stages over one store.
type Engine struct {
	store      store.Store
	resolver   *identity.Resolver
	ledger     *ledger.Ledger
	reconciler *runcheck.Reconciler
}

func New(s store.Store) *Engine {
	return &Engine{
		store:      s,
		resolver:   identity.New(s),
		ledger:     ledger.New(s),
		reconciler: runcheck.New(s),
	}
}

// Result summarizes one collection pass. Row-level failures are counted per
// chain and never abort the batch.
type Result struct {
	Processed     int
	Skipped       int
	ErrorsByChain map[int]int
	QualityRows   []model.QualityReportRow
}

// ProcessCollection runs the full pipeline over one collection snapshot.
// Every row gets a quality record; usable rows then flow through identity
// resolution and the event ledger. A storage failure is fatal and is also
// recorded in the file event log.
func (e *Engine) ProcessCollection(ctx context.Context, fileName string, collectionID int, table snapshot.Table, window snapshot.Window) (*Result, error) {
	res, err := e.processCollection(ctx, fileName, collectionID, table, window)

	fileEvent := model.FileEvent{
		FileName:     fileName,
		CollectionID: collectionID,
		Status:       model.FileEventUploaded,
		RunDate:      normalizeDay(time.Now().UTC()),
	}
	if err != nil {
		fileEvent.Status = model.FileEventError
		fileEvent.ErrorMessage = err.Error()
	}
	if logErr := e.store.LogFileEvent(ctx, fileEvent); logErr != nil {
		zap.L().Error("file event log write failed", zap.Error(logErr))
	}
	return res, err
}

func (e *Engine) processCollection(ctx context.Context, fileName string, collectionID int, table snapshot.Table, window snapshot.Window) (*Result, error) {
	rows := snapshot.ParseCollection(table)
	if window == (snapshot.Window{}) {
		window = DeriveWindow(rows)
	}
	midpoint := window.Midpoint()

	res := &Result{ErrorsByChain: make(map[int]int)}
	for _, row := range rows {
		res.QualityRows = append(res.QualityRows, quality.Report(fileName, collectionID, row))
	}
	if err := e.store.UpsertQualityRows(ctx, res.QualityRows); err != nil {
		return res, eris.Wrap(err, "engine: persist quality report")
	}

	snapshot.SortCollection(rows)
	for _, row := range rows {
		if err := e.processRow(ctx, row, midpoint, window.End); err != nil {
			if isRowError(err) {
				res.Skipped++
				res.ErrorsByChain[row.ChainID]++
				zap.L().Warn("row skipped",
					zap.Int("row", row.Number),
					zap.Int("chain_id", row.ChainID),
					zap.Error(err))
				continue
			}
			return res, err
		}
		res.Processed++
	}

	zap.L().Info("collection processed",
		zap.String("file", fileName),
		zap.Int("collection_id", collectionID),
		zap.Int("processed", res.Processed),
		zap.Int("skipped", res.Skipped))
	return res, nil
}

func (e *Engine) processRow(ctx context.Context, row snapshot.CollectionRow, midpoint, scrapeEnd time.Time) error {
	rowMidpoint := midpoint
	rowScrape := scrapeEnd
	if row.LastUpdate != nil {
		rowScrape = *row.LastUpdate
	}

	status, err := model.ParseStatus(row.Status)
	if err != nil {
		return err
	}
	eventType := model.EventAdded
	if status == model.StatusClose {
		eventType = model.EventRemoved
	}

	loc, suspected, err := e.resolver.Resolve(ctx, row, rowMidpoint)
	if err != nil {
		return err
	}
	_, err = e.ledger.Record(ctx, loc, eventType, suspected, rowMidpoint, rowScrape)
	return err
}

// isRowError reports whether a failure is confined to one row. Anything
// else (storage, connection) aborts the batch.
func isRowError(err error) bool {
	return eris.Is(err, identity.ErrMissingGeometry) || eris.Is(err, model.ErrUnknownStatus)
}

// ProcessChainScrapes parses and reconciles a chain-scrape snapshot against
// its paired collection snapshot, returning the annotated rows plus the
// input header for report re-emission.
func (e *Engine) ProcessChainScrapes(ctx context.Context, collectionID int, scrapeTable, collectionTable snapshot.Table) ([]string, []runcheck.Annotated, error) {
	scrapes, err := snapshot.ParseChainScrapes(scrapeTable)
	if err != nil {
		return nil, nil, err
	}
	collection := snapshot.ParseCollection(collectionTable)

	annotated, err := e.reconciler.Reconcile(ctx, collectionID, scrapes, collection)
	if err != nil {
		return nil, nil, err
	}
	return scrapeTable.Header, annotated, nil
}

// DeriveWindow infers the scrape window from the rows' LastUpdate spread.
func DeriveWindow(rows []snapshot.CollectionRow) snapshot.Window {
	var w snapshot.Window
	for _, row := range rows {
		if row.LastUpdate == nil {
			continue
		}
		d := *row.LastUpdate
		if w.Start.IsZero() || d.Before(w.Start) {
			w.Start = d
		}
		if w.End.IsZero() || d.After(w.End) {
			w.End = d
		}
	}
	return w
}

func normalizeDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
