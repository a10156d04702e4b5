package store

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/footprint-cli/internal/model"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPostgresStore_UpsertLocation(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewPostgresWithPool(mock)

	opened := day(2025, 1, 16)
	loc := model.Location{
		SyntheticID:   "abc123",
		ChainID:       42,
		ChainName:     "Coffee Chain",
		ChainSlug:     "coffee-chain",
		PartnerHashID: "hash-1",
		Address:       "100 MAIN ST",
		Status:        model.StatusOpen,
		OpenedAt:      &opened,
		Latitude:      40.7128,
		Longitude:     -74.006,
		City:          "New York",
		State:         "NY",
		Zip:           "10001",
	}

	mock.ExpectExec(`INSERT INTO locations`).
		WithArgs("abc123", 42, "Coffee Chain", "coffee-chain", "",
			"hash-1", "100 MAIN ST", "", "", "",
			0, "", false, "", "OPEN",
			&opened, (*time.Time)(nil), 40.7128, -74.006, "",
			"New York", "NY", pgxmock.AnyArg(), (*time.Time)(nil)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, store.UpsertLocation(context.Background(), loc))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LocationByPartnerHash_EmptyHash(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewPostgresWithPool(mock)

	// Blank hashes never match anything; no query should be issued.
	loc, err := store.LocationByPartnerHash(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, loc)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LocationByPartnerHash_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewPostgresWithPool(mock)

	mock.ExpectQuery(`SELECT .+ FROM locations WHERE partner_hash_id = \$1`).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{"synthetic_location_id"}))

	loc, err := store.LocationByPartnerHash(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, loc)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LocationBySyntheticID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewPostgresWithPool(mock)

	opened := day(2024, 6, 1)
	last := day(2025, 2, 1)
	zip := "10001"
	rows := pgxmock.NewRows([]string{
		"synthetic_location_id", "chain_id", "chain_name", "chain_slug", "store_name",
		"partner_hash_id", "address_normalized", "address_complement", "store_number", "phone_number",
		"parent_chain_id", "parent_chain_name", "coming_soon", "store_hours", "status",
		"opened_at_estimated", "closed_at_estimated", "latitude", "longitude", "site_id",
		"city", "state", "zip", "last_event_date",
	}).AddRow(
		"abc123", 42, "Coffee Chain", "coffee-chain", "",
		"hash-1", "100 MAIN ST", "", "", "",
		0, "", false, "", "OPEN",
		&opened, (*time.Time)(nil), 40.7128, -74.006, "",
		"New York", "NY", &zip, &last,
	)

	mock.ExpectQuery(`SELECT .+ FROM locations WHERE synthetic_location_id = \$1`).
		WithArgs("abc123").
		WillReturnRows(rows)

	loc, err := store.LocationBySyntheticID(context.Background(), "abc123")
	require.NoError(t, err)
	require.NotNil(t, loc)
	assert.Equal(t, model.StatusOpen, loc.Status)
	assert.Equal(t, "10001", loc.Zip)
	assert.Equal(t, "hash-1", loc.PartnerHashID)
	require.NotNil(t, loc.LastEventDate)
	assert.Equal(t, last, *loc.LastEventDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateLocationStatus_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewPostgresWithPool(mock)

	mock.ExpectExec(`UPDATE locations SET`).
		WithArgs("ghost", "CLOSE", day(2025, 3, 1)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = store.UpdateLocationStatus(context.Background(), "ghost", model.StatusClose, day(2025, 3, 1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "location not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpsertEvent_ReturnsCanonicalID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewPostgresWithPool(mock)

	// The conflict path returns the row id of an earlier run, not the
	// freshly generated one.
	mock.ExpectQuery(`INSERT INTO location_events`).
		WithArgs(pgxmock.AnyArg(), "abc123", 42, "Added", day(2025, 1, 16),
			day(2025, 1, 31), false, "", (*time.Time)(nil), (*time.Time)(nil), "").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("existing-id"))

	ev, err := store.UpsertEvent(context.Background(), model.LocationEvent{
		SyntheticLocationID: "abc123",
		ChainID:             42,
		EventType:           model.EventAdded,
		EventDateEstimated:  day(2025, 1, 16),
		ScrapeDate:          day(2025, 1, 31),
	})
	require.NoError(t, err)
	assert.Equal(t, "existing-id", ev.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LastEventBefore_NoHistory(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewPostgresWithPool(mock)

	mock.ExpectQuery(`SELECT .+ FROM location_events`).
		WithArgs("abc123", day(2025, 1, 31)).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	ev, err := store.LastEventBefore(context.Background(), "abc123", day(2025, 1, 31))
	require.NoError(t, err)
	assert.Nil(t, ev)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LastEventBefore(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewPostgresWithPool(mock)

	closed := day(2024, 11, 15)
	rows := pgxmock.NewRows([]string{
		"id", "synthetic_location_id", "chain_id", "event_type", "event_date_estimated",
		"scrape_date", "suspected_hash_change", "remodel_type", "current_opened_at_estimated",
		"current_closed_at_estimated", "last_location_event_id",
	}).AddRow(
		"ev-1", "abc123", 42, "Removed", day(2024, 11, 15),
		day(2024, 11, 30), false, "", (*time.Time)(nil), &closed, "",
	)

	mock.ExpectQuery(`SELECT .+ FROM location_events`).
		WithArgs("abc123", day(2025, 1, 31)).
		WillReturnRows(rows)

	ev, err := store.LastEventBefore(context.Background(), "abc123", day(2025, 1, 31))
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.Equal(t, model.EventRemoved, ev.EventType)
	require.NotNil(t, ev.CurrentClosedAt)
	assert.Equal(t, closed, *ev.CurrentClosedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SetEventRemodel(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewPostgresWithPool(mock)

	mock.ExpectExec(`UPDATE location_events SET remodel_type = \$2 WHERE id = \$1`).
		WithArgs("ev-1", "SHORT").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, store.SetEventRemodel(context.Background(), "ev-1", model.RemodelShort))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpsertChainScrape(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewPostgresWithPool(mock)

	mock.ExpectExec(`INSERT INTO chain_scrapes`).
		WithArgs(42, "Coffee Chain", 7, day(2025, 1, 31), "04:15:00", 120, 135, 118).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = store.UpsertChainScrape(context.Background(), model.ChainScrape{
		ChainID:         42,
		ChainName:       "Coffee Chain",
		CollectionID:    7,
		ScrapeDate:      day(2025, 1, 31),
		ScrapeTime:      "04:15:00",
		UsLocationCount: 120,
		LocationCount:   135,
		RunCheckCount:   118,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpsertQualityRows(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewPostgresWithPool(mock)

	sd := day(2025, 1, 31)
	mock.ExpectExec(`INSERT INTO quality_report`).
		WithArgs("collection_7.csv", 7, 2, "42", &sd, "INVALID", "Latitude", "Status").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = store.UpsertQualityRows(context.Background(), []model.QualityReportRow{{
		FileName:       "collection_7.csv",
		CollectionID:   7,
		RowNumber:      2,
		ChainID:        "42",
		ScrapeDate:     &sd,
		Result:         model.ValidationInvalid,
		InvalidColumns: []string{"Latitude"},
		BlankColumns:   []string{"Status"},
	}})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_RegionByZip_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store := NewPostgresWithPool(mock)

	mock.ExpectQuery(`SELECT zip, region, division FROM us_region`).
		WithArgs(99999).
		WillReturnRows(pgxmock.NewRows([]string{"zip", "region", "division"}))

	r, err := store.RegionByZip(context.Background(), 99999)
	require.NoError(t, err)
	assert.Nil(t, r)
	assert.NoError(t, mock.ExpectationsWereMet())
}
