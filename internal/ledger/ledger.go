// Package ledger appends lifecycle events. The ledger is the system of
// record for transitions: locations hold current state, events hold history.
package ledger

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/footprint-cli/internal/model"
	"github.com/sells-group/footprint-cli/internal/store"
)

// remodelThresholdDays splits SHORT from LONG close-to-reopen gaps.
const remodelThresholdDays = 365

// Ledger records transitions and back-fills remodel labels.
type Ledger struct {
	store store.Store
}

func New(s store.Store) *Ledger {
	return &Ledger{store: s}
}

// Record appends one transition for a resolved location. The event is keyed
// by (location, scrape date, type), so replaying a snapshot lands on the
// same row. When the transition is a reopen directly after a close, the
// close gets its remodel label retroactively: the gap length is only
// knowable once the reopen is observed.
func (l *Ledger) Record(ctx context.Context, loc *model.Location, eventType model.EventType, suspectedHashChange bool, midpoint, scrapeDate time.Time) (*model.LocationEvent, error) {
	prior, err := l.store.LastEventBefore(ctx, loc.SyntheticID, scrapeDate)
	if err != nil {
		return nil, eris.Wrap(err, "ledger: prior event lookup")
	}

	ev := model.LocationEvent{
		SyntheticLocationID: loc.SyntheticID,
		ChainID:             loc.ChainID,
		EventType:           eventType,
		EventDateEstimated:  midpoint,
		ScrapeDate:          scrapeDate,
		SuspectedHashChange: suspectedHashChange,
		CurrentOpenedAt:     loc.OpenedAt,
		CurrentClosedAt:     loc.ClosedAt,
	}
	if prior != nil {
		ev.LastEventID = prior.ID
	}

	recorded, err := l.store.UpsertEvent(ctx, ev)
	if err != nil {
		return nil, eris.Wrap(err, "ledger: record event")
	}

	if prior != nil && eventType == model.EventAdded && prior.EventType == model.EventRemoved {
		remodel := Classify(prior.EventDateEstimated, recorded.EventDateEstimated)
		if err := l.store.SetEventRemodel(ctx, prior.ID, remodel); err != nil {
			return nil, eris.Wrap(err, "ledger: annotate remodel")
		}
		zap.L().Debug("remodel classified",
			zap.String("synthetic_location_id", loc.SyntheticID),
			zap.String("remodel_type", string(remodel)))
	}

	if loc.AdvanceLastEventDate(scrapeDate) {
		if err := l.store.AdvanceLastEventDate(ctx, loc.SyntheticID, scrapeDate); err != nil {
			return nil, eris.Wrap(err, "ledger: advance watermark")
		}
	}
	return recorded, nil
}

// Classify labels a close-to-reopen gap by its length in days.
func Classify(closedAt, reopenedAt time.Time) model.RemodelType {
	if reopenedAt.Sub(closedAt) < remodelThresholdDays*24*time.Hour {
		return model.RemodelShort
	}
	return model.RemodelLong
}
