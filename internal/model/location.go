// Package model defines the persisted entities of the footprint pipeline:
// locations, their lifecycle events, chain scrape metadata, and the
// auxiliary reference tables.
package model

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// LocationStatus is the current lifecycle state of a physical store.
type LocationStatus string

const (
	StatusOpen  LocationStatus = "OPEN"
	StatusClose LocationStatus = "CLOSE"
)

// ErrUnknownStatus is returned when a snapshot Status value is neither
// "Added" nor "Removed". It is a row-level error: the engine counts and
// skips the row, the batch continues.
var ErrUnknownStatus = eris.New("unknown snapshot status")

// ParseStatus maps a snapshot Status cell to a lifecycle state.
// "Added" opens a location, "Removed" closes it.
func ParseStatus(s string) (LocationStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "added":
		return StatusOpen, nil
	case "removed":
		return StatusClose, nil
	}
	return "", eris.Wrapf(ErrUnknownStatus, "%q", s)
}

// Location is the current state of one physical store. It is created on
// first sighting, mutated on every subsequent sighting, and never deleted.
type Location struct {
	SyntheticID     string         `json:"synthetic_location_id"`
	ChainID         int            `json:"chain_id"`
	ChainName       string         `json:"chain_name"`
	ChainSlug       string         `json:"chain_slug"`
	StoreName       string         `json:"store_name,omitempty"`
	PartnerHashID   string         `json:"partner_hash_id,omitempty"`
	Address         string         `json:"address_normalized"`
	AddressComplement string       `json:"address_complement,omitempty"`
	StoreNumber     string         `json:"store_number,omitempty"`
	PhoneNumber     string         `json:"phone_number,omitempty"`
	ParentChainID   int            `json:"parent_chain_id,omitempty"`
	ParentChainName string         `json:"parent_chain_name,omitempty"`
	ComingSoon      bool           `json:"coming_soon"`
	StoreHours      string         `json:"store_hours,omitempty"`
	Status          LocationStatus `json:"status"`
	OpenedAt        *time.Time     `json:"opened_at_estimated,omitempty"`
	ClosedAt        *time.Time     `json:"closed_at_estimated,omitempty"`
	Latitude        float64        `json:"latitude"`
	Longitude       float64        `json:"longitude"`
	SiteID          string         `json:"site_id,omitempty"`
	City            string         `json:"city"`
	State           string         `json:"state"`
	Zip             string         `json:"zip,omitempty"`
	LastEventDate   *time.Time     `json:"last_event_date,omitempty"`
}

// ApplyStatus transitions the location to the given state as of the given
// estimated date. Opened/closed dates are mutually exclusive: opening a
// location clears its closed date.
func (l *Location) ApplyStatus(status LocationStatus, estimated time.Time) {
	l.Status = status
	d := estimated
	if status == StatusOpen {
		l.OpenedAt = &d
		l.ClosedAt = nil
	} else {
		l.ClosedAt = &d
	}
}

// AdvanceLastEventDate raises the last-event-date watermark. The watermark
// is monotonic non-decreasing: older scrape windows never move it back.
func (l *Location) AdvanceLastEventDate(d time.Time) bool {
	if l.LastEventDate == nil || l.LastEventDate.Before(d) {
		nd := d
		l.LastEventDate = &nd
		return true
	}
	return false
}
