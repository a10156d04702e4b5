// Package store persists the footprint entities. PostgresStore is the
// production backend; SQLiteStore serves local runs and integration tests.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/footprint-cli/internal/model"
)

// Store defines the persistence interface for the lifecycle engine and its
// reports. All writes are upserts on the entity's natural key, so replaying
// a snapshot converges instead of duplicating.
type Store interface {
	// Locations
	UpsertLocation(ctx context.Context, loc model.Location) error
	LocationByPartnerHash(ctx context.Context, hash string) (*model.Location, error)
	LocationBySyntheticID(ctx context.Context, id string) (*model.Location, error)
	LocationsByChain(ctx context.Context, chainID int) ([]model.Location, error)
	UpdateLocationStatus(ctx context.Context, syntheticID string, status model.LocationStatus, estimated time.Time) error
	AdvanceLastEventDate(ctx context.Context, syntheticID string, d time.Time) error
	SetStatusByChain(ctx context.Context, chainID int, status model.LocationStatus) (int64, error)
	CloseStaleLocations(ctx context.Context, olderThan time.Time) (int64, error)

	// Location events
	UpsertEvent(ctx context.Context, ev model.LocationEvent) (*model.LocationEvent, error)
	LastEventBefore(ctx context.Context, syntheticID string, scrapeDate time.Time) (*model.LocationEvent, error)
	SetEventRemodel(ctx context.Context, eventID string, t model.RemodelType) error
	EventsByScrapeDateRange(ctx context.Context, start, end time.Time) ([]model.LocationEvent, error)

	// Chain scrapes
	UpsertChainScrape(ctx context.Context, cs model.ChainScrape) error
	ChainScrapesByCollection(ctx context.Context, collectionID int, start, end time.Time) ([]model.ChainScrape, error)

	// Diagnostics
	UpsertQualityRows(ctx context.Context, rows []model.QualityReportRow) error
	LogFileEvent(ctx context.Context, ev model.FileEvent) error

	// Reference tables
	UpsertRegions(ctx context.Context, regions []model.UsRegion) (int64, error)
	RegionByZip(ctx context.Context, zip int) (*model.UsRegion, error)
	UpsertParentChains(ctx context.Context, chains []model.ParentChain) (int64, error)
	UpsertLandlords(ctx context.Context, landlords []model.Landlord) (int64, error)
	UpsertCenters(ctx context.Context, centers []model.Center) (int64, error)
	UpsertCenterLandlords(ctx context.Context, links []model.CenterLandlord) (int64, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open creates a Store for the configured driver.
func Open(ctx context.Context, driver, dsn string, poolCfg *PoolConfig) (Store, error) {
	switch driver {
	case "postgres":
		return NewPostgres(ctx, dsn, poolCfg)
	case "sqlite":
		return NewSQLite(dsn)
	}
	return nil, eris.Errorf("store: unknown driver %q", driver)
}
