package model

import "time"

// EventType is the raw transition observed in a snapshot row. The stored
// value is the snapshot vocabulary ("Added"/"Removed"); Status() gives the
// lifecycle state it implies.
type EventType string

const (
	EventAdded   EventType = "Added"
	EventRemoved EventType = "Removed"
)

// Status returns the lifecycle state an event of this type puts the
// location into.
func (t EventType) Status() LocationStatus {
	if t == EventRemoved {
		return StatusClose
	}
	return StatusOpen
}

// RemodelType labels a close→reopen gap on the closing event.
type RemodelType string

const (
	RemodelShort RemodelType = "SHORT"
	RemodelLong  RemodelType = "LONG"
)

// LocationEvent is one status transition observed in one scrape window.
// Events are append-only and unique per (location, scrape date, event type);
// replaying a snapshot upserts onto the same row. RemodelType is the only
// field mutated after creation, and only on the linked predecessor once the
// paired reopen is observed.
type LocationEvent struct {
	ID                  string      `json:"id"`
	SyntheticLocationID string      `json:"synthetic_location_id"`
	ChainID             int         `json:"chain_id"`
	EventType           EventType   `json:"event_type"`
	EventDateEstimated  time.Time   `json:"event_date_estimated"`
	ScrapeDate          time.Time   `json:"scrape_date"`
	SuspectedHashChange bool        `json:"suspected_hash_change"`
	RemodelType         RemodelType `json:"remodel_type,omitempty"`
	CurrentOpenedAt     *time.Time  `json:"current_opened_at_estimated,omitempty"`
	CurrentClosedAt     *time.Time  `json:"current_closed_at_estimated,omitempty"`
	LastEventID         string      `json:"last_location_event_id,omitempty"`
}

// ChainScrape is the per-(chain, scrape date) reconciliation record: the
// partner-reported counts plus the running run-check balance computed from
// the collection snapshot.
type ChainScrape struct {
	ChainID         int       `json:"chain_id"`
	ChainName       string    `json:"chain_name"`
	CollectionID    int       `json:"collection_id"`
	ScrapeDate      time.Time `json:"scrape_date"`
	ScrapeTime      string    `json:"scrape_time"` // HH:MM:SS, normalized
	UsLocationCount int       `json:"us_location_count"`
	LocationCount   int       `json:"location_count"`
	RunCheckCount   int       `json:"run_check_count"`
}
