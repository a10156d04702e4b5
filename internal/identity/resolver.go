// Package identity resolves snapshot rows to locations. The partner's own
// hash id churns on cosmetic updates, so identity falls back to a synthetic
// id derived from truncated coordinates plus the store number.
package identity

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/footprint-cli/internal/model"
	"github.com/sells-group/footprint-cli/internal/normalize"
	"github.com/sells-group/footprint-cli/internal/snapshot"
	"github.com/sells-group/footprint-cli/internal/store"
)

// ErrMissingGeometry is returned when a row has no coordinates and its
// partner hash matches nothing. Row-level: the engine counts and skips it.
var ErrMissingGeometry = eris.New("row has no usable coordinates")

// Resolver maps rows to locations, creating them on first sighting.
type Resolver struct {
	store store.Store
}

func New(s store.Store) *Resolver {
	return &Resolver{store: s}
}

// Resolve finds or creates the location a row refers to and persists the
// status transition. The second return is true when the row was matched by
// coordinates after its partner hash failed to match: the hash changed under
// a physically persistent location.
func (r *Resolver) Resolve(ctx context.Context, row snapshot.CollectionRow, midpoint time.Time) (*model.Location, bool, error) {
	status, err := model.ParseStatus(row.Status)
	if err != nil {
		return nil, false, err
	}

	// 1. Partner hash match: trust it outright.
	loc, err := r.store.LocationByPartnerHash(ctx, row.HashID)
	if err != nil {
		return nil, false, eris.Wrap(err, "identity: hash lookup")
	}
	if loc != nil {
		if err := r.applyStatus(ctx, loc, status, midpoint); err != nil {
			return nil, false, err
		}
		return loc, false, nil
	}

	if row.Latitude == nil || row.Longitude == nil {
		return nil, false, eris.Wrapf(ErrMissingGeometry, "row %d", row.Number)
	}
	syntheticID := normalize.SyntheticLocationID(*row.Latitude, *row.Longitude, row.StoreNumber)

	// 2. Coordinate match: the partner hash changed out from under us.
	loc, err = r.store.LocationBySyntheticID(ctx, syntheticID)
	if err != nil {
		return nil, false, eris.Wrap(err, "identity: synthetic id lookup")
	}
	if loc != nil {
		suspected := row.HashID != "" && row.HashID != loc.PartnerHashID
		if suspected {
			zap.L().Debug("suspected partner hash change",
				zap.String("synthetic_location_id", syntheticID),
				zap.String("old_hash", loc.PartnerHashID),
				zap.String("new_hash", row.HashID))
			loc.PartnerHashID = row.HashID
		}
		if err := r.applyStatus(ctx, loc, status, midpoint); err != nil {
			return nil, false, err
		}
		return loc, suspected, nil
	}

	// 3. First sighting: build and persist a new location.
	loc = r.newLocation(syntheticID, row, status, midpoint)
	if err := r.store.UpsertLocation(ctx, *loc); err != nil {
		return nil, false, eris.Wrap(err, "identity: create location")
	}
	return loc, false, nil
}

func (r *Resolver) applyStatus(ctx context.Context, loc *model.Location, status model.LocationStatus, midpoint time.Time) error {
	loc.ApplyStatus(status, midpoint)
	if err := r.store.UpsertLocation(ctx, *loc); err != nil {
		return eris.Wrap(err, "identity: update location")
	}
	return nil
}

func (r *Resolver) newLocation(syntheticID string, row snapshot.CollectionRow, status model.LocationStatus, midpoint time.Time) *model.Location {
	loc := &model.Location{
		SyntheticID:       syntheticID,
		ChainID:           row.ChainID,
		ChainName:         row.ChainName,
		ChainSlug:         normalize.Slugify(row.ChainName),
		StoreName:         row.StoreName,
		PartnerHashID:     row.HashID,
		Address:           normalize.Address(row.Address),
		AddressComplement: row.Address2,
		StoreNumber:       row.StoreNumber,
		PhoneNumber:       row.PhoneNumber,
		ParentChainID:     row.ParentChainID,
		ParentChainName:   row.ParentChainName,
		ComingSoon:        row.ComingSoon,
		StoreHours:        row.StoreHours,
		Latitude:          *row.Latitude,
		Longitude:         *row.Longitude,
		SiteID:            row.SiteID,
		City:              normalize.City(row.City),
		State:             normalize.State(row.State),
		Zip:               normalize.Zip(row.PostalCode),
	}
	// A location seen for the first time gets the window midpoint as its
	// opening estimate even when the first sighting is a removal.
	opened := midpoint
	loc.OpenedAt = &opened
	loc.ApplyStatus(status, midpoint)
	return loc
}
