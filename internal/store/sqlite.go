package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/footprint-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. Dates are stored
// as ISO-8601 text.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS locations (
	synthetic_location_id TEXT PRIMARY KEY,
	chain_id              INTEGER NOT NULL,
	chain_name            TEXT NOT NULL,
	chain_slug            TEXT NOT NULL,
	store_name            TEXT NOT NULL DEFAULT '',
	partner_hash_id       TEXT NOT NULL DEFAULT '',
	address_normalized    TEXT NOT NULL,
	address_complement    TEXT NOT NULL DEFAULT '',
	store_number          TEXT NOT NULL DEFAULT '',
	phone_number          TEXT NOT NULL DEFAULT '',
	parent_chain_id       INTEGER NOT NULL DEFAULT 0,
	parent_chain_name     TEXT NOT NULL DEFAULT '',
	coming_soon           INTEGER NOT NULL DEFAULT 0,
	store_hours           TEXT NOT NULL DEFAULT '',
	status                TEXT NOT NULL,
	opened_at_estimated   TEXT,
	closed_at_estimated   TEXT,
	latitude              REAL NOT NULL,
	longitude             REAL NOT NULL,
	site_id               TEXT NOT NULL DEFAULT '',
	city                  TEXT NOT NULL,
	state                 TEXT NOT NULL,
	zip                   TEXT,
	last_event_date       TEXT,
	created_at            DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at            DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_locations_partner_hash ON locations(partner_hash_id);
CREATE INDEX IF NOT EXISTS idx_locations_chain_id ON locations(chain_id);

CREATE TABLE IF NOT EXISTS location_events (
	id                          TEXT PRIMARY KEY,
	synthetic_location_id       TEXT NOT NULL REFERENCES locations(synthetic_location_id),
	chain_id                    INTEGER NOT NULL,
	event_type                  TEXT NOT NULL,
	event_date_estimated        TEXT NOT NULL,
	scrape_date                 TEXT NOT NULL,
	suspected_hash_change       INTEGER NOT NULL DEFAULT 0,
	remodel_type                TEXT NOT NULL DEFAULT '',
	current_opened_at_estimated TEXT,
	current_closed_at_estimated TEXT,
	last_location_event_id      TEXT NOT NULL DEFAULT '',
	created_at                  DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE (synthetic_location_id, scrape_date, event_type)
);

CREATE INDEX IF NOT EXISTS idx_events_location_date ON location_events(synthetic_location_id, event_date_estimated DESC);
CREATE INDEX IF NOT EXISTS idx_events_scrape_date ON location_events(scrape_date);

CREATE TABLE IF NOT EXISTS chain_scrapes (
	chain_id          INTEGER NOT NULL,
	chain_name        TEXT NOT NULL,
	collection_id     INTEGER NOT NULL DEFAULT 0,
	scrape_date       TEXT NOT NULL,
	scrape_time       TEXT NOT NULL,
	us_location_count INTEGER NOT NULL DEFAULT 0,
	location_count    INTEGER NOT NULL DEFAULT 0,
	run_check_count   INTEGER NOT NULL DEFAULT 0,
	created_at        DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE (chain_id, scrape_date)
);

CREATE TABLE IF NOT EXISTS quality_report (
	file_name         TEXT NOT NULL,
	collection_id     INTEGER NOT NULL,
	row_number        INTEGER NOT NULL,
	chain_id          TEXT NOT NULL DEFAULT '',
	scrape_date       TEXT,
	validation_result TEXT NOT NULL,
	invalid_columns   TEXT NOT NULL DEFAULT '',
	blank_columns     TEXT NOT NULL DEFAULT '',
	created_at        DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE (file_name, row_number)
);

CREATE TABLE IF NOT EXISTS file_event_log (
	file_name     TEXT NOT NULL,
	collection_id INTEGER NOT NULL,
	status        TEXT NOT NULL,
	run_date      TEXT NOT NULL,
	error_message TEXT NOT NULL DEFAULT '',
	created_at    DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE (file_name, run_date)
);

CREATE TABLE IF NOT EXISTS us_region (
	zip      INTEGER PRIMARY KEY,
	region   TEXT NOT NULL DEFAULT '',
	division TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS parent_chains (
	chain_id          INTEGER PRIMARY KEY,
	chain_name        TEXT NOT NULL,
	chain_status      TEXT NOT NULL DEFAULT '',
	url               TEXT NOT NULL DEFAULT '',
	parent_chain_id   TEXT NOT NULL DEFAULT '',
	parent_chain_name TEXT NOT NULL DEFAULT '',
	stock_ticker      TEXT NOT NULL DEFAULT '',
	manual_change     INTEGER NOT NULL DEFAULT 0,
	change_fields     TEXT NOT NULL DEFAULT '',
	original_values   TEXT NOT NULL DEFAULT '',
	change_reason     TEXT NOT NULL DEFAULT '',
	modified_by       TEXT NOT NULL DEFAULT '',
	modified_date     TEXT,
	archive_record    INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS landlords (
	landlord_id        TEXT PRIMARY KEY,
	landlord_name      TEXT NOT NULL,
	landlord_status    TEXT NOT NULL DEFAULT '',
	url                TEXT NOT NULL DEFAULT '',
	sic_code           TEXT NOT NULL DEFAULT '',
	naics_code         TEXT NOT NULL DEFAULT '',
	primary_category   TEXT NOT NULL DEFAULT '',
	categories         TEXT NOT NULL DEFAULT '',
	countries          TEXT NOT NULL DEFAULT '',
	property_count     INTEGER NOT NULL DEFAULT 0,
	is_public          INTEGER NOT NULL DEFAULT 0,
	stock_ticker       TEXT NOT NULL DEFAULT '',
	property_sector    TEXT NOT NULL DEFAULT '',
	property_subsector TEXT NOT NULL DEFAULT '',
	index_name         TEXT NOT NULL DEFAULT '',
	region_coverage    TEXT NOT NULL DEFAULT '',
	property_url       TEXT NOT NULL DEFAULT '',
	archive_record     INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS centers (
	site_id        TEXT PRIMARY KEY,
	title          TEXT NOT NULL,
	center_type    TEXT NOT NULL DEFAULT '',
	format         TEXT NOT NULL DEFAULT '',
	address        TEXT NOT NULL DEFAULT '',
	address2       TEXT NOT NULL DEFAULT '',
	city           TEXT NOT NULL DEFAULT '',
	region         TEXT NOT NULL DEFAULT '',
	postal_code    TEXT NOT NULL DEFAULT '',
	country        TEXT NOT NULL DEFAULT '',
	latitude       REAL NOT NULL DEFAULT 0,
	longitude      REAL NOT NULL DEFAULT 0,
	gla            REAL NOT NULL DEFAULT 0,
	units          INTEGER NOT NULL DEFAULT 0,
	year_opened    INTEGER NOT NULL DEFAULT 0,
	location_count INTEGER NOT NULL DEFAULT 0,
	anchor_count   INTEGER NOT NULL DEFAULT 0,
	anchor_chains  TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS center_landlords (
	site_id       TEXT NOT NULL,
	landlord_id   TEXT NOT NULL,
	ownership_pct REAL NOT NULL DEFAULT 0,
	UNIQUE (site_id, landlord_id)
);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const dateLayout = "2006-01-02"

func fmtDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(dateLayout)
}

func parseDateCol(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, s.String)
	if err != nil {
		return nil
	}
	return &t
}

func (s *SQLiteStore) UpsertLocation(ctx context.Context, loc model.Location) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO locations (`+locationColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (synthetic_location_id) DO UPDATE SET
		   chain_id = excluded.chain_id, chain_name = excluded.chain_name, chain_slug = excluded.chain_slug,
		   store_name = excluded.store_name, partner_hash_id = excluded.partner_hash_id,
		   address_normalized = excluded.address_normalized, address_complement = excluded.address_complement,
		   store_number = excluded.store_number, phone_number = excluded.phone_number,
		   parent_chain_id = excluded.parent_chain_id, parent_chain_name = excluded.parent_chain_name,
		   coming_soon = excluded.coming_soon, store_hours = excluded.store_hours, status = excluded.status,
		   opened_at_estimated = excluded.opened_at_estimated, closed_at_estimated = excluded.closed_at_estimated,
		   latitude = excluded.latitude, longitude = excluded.longitude, site_id = excluded.site_id,
		   city = excluded.city, state = excluded.state, zip = excluded.zip,
		   last_event_date = excluded.last_event_date, updated_at = datetime('now')`,
		loc.SyntheticID, loc.ChainID, loc.ChainName, loc.ChainSlug, loc.StoreName,
		loc.PartnerHashID, loc.Address, loc.AddressComplement, loc.StoreNumber, loc.PhoneNumber,
		loc.ParentChainID, loc.ParentChainName, loc.ComingSoon, loc.StoreHours, string(loc.Status),
		fmtDate(loc.OpenedAt), fmtDate(loc.ClosedAt), loc.Latitude, loc.Longitude, loc.SiteID,
		loc.City, loc.State, nullIfEmpty(loc.Zip), fmtDate(loc.LastEventDate),
	)
	return eris.Wrapf(err, "sqlite: upsert location %s", loc.SyntheticID)
}

func (s *SQLiteStore) LocationByPartnerHash(ctx context.Context, hash string) (*model.Location, error) {
	if hash == "" {
		return nil, nil
	}
	return s.getLocation(ctx,
		`SELECT `+locationColumns+` FROM locations WHERE partner_hash_id = ? LIMIT 1`, hash)
}

func (s *SQLiteStore) LocationBySyntheticID(ctx context.Context, id string) (*model.Location, error) {
	return s.getLocation(ctx,
		`SELECT `+locationColumns+` FROM locations WHERE synthetic_location_id = ?`, id)
}

func (s *SQLiteStore) getLocation(ctx context.Context, query string, arg any) (*model.Location, error) {
	loc, err := s.scanLocation(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "sqlite: get location")
	}
	return loc, nil
}

func (s *SQLiteStore) scanLocation(r rowScanner) (*model.Location, error) {
	var loc model.Location
	var status string
	var zip sql.NullString
	var opened, closed, lastEvent sql.NullString
	err := r.Scan(
		&loc.SyntheticID, &loc.ChainID, &loc.ChainName, &loc.ChainSlug, &loc.StoreName,
		&loc.PartnerHashID, &loc.Address, &loc.AddressComplement, &loc.StoreNumber, &loc.PhoneNumber,
		&loc.ParentChainID, &loc.ParentChainName, &loc.ComingSoon, &loc.StoreHours, &status,
		&opened, &closed, &loc.Latitude, &loc.Longitude, &loc.SiteID,
		&loc.City, &loc.State, &zip, &lastEvent,
	)
	if err != nil {
		return nil, err
	}
	loc.Status = model.LocationStatus(status)
	loc.Zip = zip.String
	loc.OpenedAt = parseDateCol(opened)
	loc.ClosedAt = parseDateCol(closed)
	loc.LastEventDate = parseDateCol(lastEvent)
	return &loc, nil
}

// LocationsByChain lists locations for one chain, or every location when
// chainID is zero.
func (s *SQLiteStore) LocationsByChain(ctx context.Context, chainID int) ([]model.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations ORDER BY chain_id, synthetic_location_id`
	args := []any{}
	if chainID != 0 {
		query = `SELECT ` + locationColumns + ` FROM locations WHERE chain_id = ? ORDER BY synthetic_location_id`
		args = append(args, chainID)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: locations by chain")
	}
	defer rows.Close()

	var out []model.Location
	for rows.Next() {
		loc, err := s.scanLocation(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan location")
		}
		out = append(out, *loc)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: locations iterate")
}

func (s *SQLiteStore) UpdateLocationStatus(ctx context.Context, syntheticID string, status model.LocationStatus, estimated time.Time) error {
	d := estimated
	res, err := s.db.ExecContext(ctx,
		`UPDATE locations SET
		   status = ?2,
		   opened_at_estimated = CASE WHEN ?2 = 'OPEN' THEN ?3 ELSE opened_at_estimated END,
		   closed_at_estimated = CASE WHEN ?2 = 'OPEN' THEN NULL ELSE ?3 END,
		   updated_at = datetime('now')
		 WHERE synthetic_location_id = ?1`,
		syntheticID, string(status), fmtDate(&d),
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: update location status %s", syntheticID)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return eris.Errorf("location not found: %s", syntheticID)
	}
	return nil
}

func (s *SQLiteStore) AdvanceLastEventDate(ctx context.Context, syntheticID string, d time.Time) error {
	dd := d
	_, err := s.db.ExecContext(ctx,
		`UPDATE locations SET last_event_date = ?2, updated_at = datetime('now')
		 WHERE synthetic_location_id = ?1
		   AND (last_event_date IS NULL OR last_event_date < ?2)`,
		syntheticID, fmtDate(&dd),
	)
	return eris.Wrapf(err, "sqlite: advance last event date %s", syntheticID)
}

func (s *SQLiteStore) SetStatusByChain(ctx context.Context, chainID int, status model.LocationStatus) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE locations SET
		   status = ?2,
		   opened_at_estimated = CASE WHEN ?2 = 'OPEN' THEN date('now') ELSE NULL END,
		   closed_at_estimated = CASE WHEN ?2 = 'CLOSE' THEN date('now') ELSE NULL END,
		   updated_at = datetime('now')
		 WHERE chain_id = ?1`,
		chainID, string(status),
	)
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: set status for chain %d", chainID)
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) CloseStaleLocations(ctx context.Context, olderThan time.Time) (int64, error) {
	d := olderThan
	res, err := s.db.ExecContext(ctx,
		`UPDATE locations SET status = 'CLOSE', closed_at_estimated = date('now'), updated_at = datetime('now')
		 WHERE last_event_date < ?1 AND status <> 'CLOSE'`,
		fmtDate(&d),
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: close stale locations")
	}
	return res.RowsAffected()
}

func (s *SQLiteStore) UpsertEvent(ctx context.Context, ev model.LocationEvent) (*model.LocationEvent, error) {
	if ev.ID == "" {
		ev.ID = uuid.New().String()
	}
	evDate := ev.EventDateEstimated
	scrape := ev.ScrapeDate
	var id string
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO location_events (`+eventColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (synthetic_location_id, scrape_date, event_type) DO UPDATE SET
		   event_date_estimated = excluded.event_date_estimated,
		   suspected_hash_change = excluded.suspected_hash_change,
		   remodel_type = excluded.remodel_type,
		   current_opened_at_estimated = excluded.current_opened_at_estimated,
		   current_closed_at_estimated = excluded.current_closed_at_estimated,
		   last_location_event_id = excluded.last_location_event_id
		 RETURNING id`,
		ev.ID, ev.SyntheticLocationID, ev.ChainID, string(ev.EventType), fmtDate(&evDate),
		fmtDate(&scrape), ev.SuspectedHashChange, string(ev.RemodelType), fmtDate(ev.CurrentOpenedAt),
		fmtDate(ev.CurrentClosedAt), ev.LastEventID,
	).Scan(&id)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: upsert event for %s", ev.SyntheticLocationID)
	}
	ev.ID = id
	return &ev, nil
}

func (s *SQLiteStore) LastEventBefore(ctx context.Context, syntheticID string, scrapeDate time.Time) (*model.LocationEvent, error) {
	d := scrapeDate
	row := s.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM location_events
		 WHERE synthetic_location_id = ?1 AND scrape_date < ?2
		 ORDER BY event_date_estimated DESC LIMIT 1`,
		syntheticID, fmtDate(&d),
	)
	ev, err := s.scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "sqlite: last event for %s", syntheticID)
	}
	return ev, nil
}

func (s *SQLiteStore) SetEventRemodel(ctx context.Context, eventID string, t model.RemodelType) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE location_events SET remodel_type = ?2 WHERE id = ?1`,
		eventID, string(t),
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: set remodel on event %s", eventID)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return eris.Errorf("event not found: %s", eventID)
	}
	return nil
}

func (s *SQLiteStore) EventsByScrapeDateRange(ctx context.Context, start, end time.Time) ([]model.LocationEvent, error) {
	sd, ed := start, end
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM location_events
		 WHERE scrape_date >= ?1 AND scrape_date <= ?2
		 ORDER BY synthetic_location_id, event_date_estimated`,
		fmtDate(&sd), fmtDate(&ed),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: events by date range")
	}
	defer rows.Close()

	var events []model.LocationEvent
	for rows.Next() {
		ev, err := s.scanEvent(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan event")
		}
		events = append(events, *ev)
	}
	return events, eris.Wrap(rows.Err(), "sqlite: events iterate")
}

func (s *SQLiteStore) scanEvent(r rowScanner) (*model.LocationEvent, error) {
	var ev model.LocationEvent
	var eventType, remodel string
	var evDate, scrape string
	var opened, closed sql.NullString
	if err := r.Scan(
		&ev.ID, &ev.SyntheticLocationID, &ev.ChainID, &eventType, &evDate,
		&scrape, &ev.SuspectedHashChange, &remodel, &opened, &closed, &ev.LastEventID,
	); err != nil {
		return nil, err
	}
	ev.EventType = model.EventType(eventType)
	ev.RemodelType = model.RemodelType(remodel)
	if t, err := time.Parse(dateLayout, evDate); err == nil {
		ev.EventDateEstimated = t
	}
	if t, err := time.Parse(dateLayout, scrape); err == nil {
		ev.ScrapeDate = t
	}
	ev.CurrentOpenedAt = parseDateCol(opened)
	ev.CurrentClosedAt = parseDateCol(closed)
	return &ev, nil
}

func (s *SQLiteStore) UpsertChainScrape(ctx context.Context, cs model.ChainScrape) error {
	d := cs.ScrapeDate
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chain_scrapes
		   (chain_id, chain_name, collection_id, scrape_date, scrape_time, us_location_count, location_count, run_check_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (chain_id, scrape_date) DO UPDATE SET
		   chain_name = excluded.chain_name, collection_id = excluded.collection_id,
		   scrape_time = excluded.scrape_time, us_location_count = excluded.us_location_count,
		   location_count = excluded.location_count, run_check_count = excluded.run_check_count`,
		cs.ChainID, cs.ChainName, cs.CollectionID, fmtDate(&d), cs.ScrapeTime,
		cs.UsLocationCount, cs.LocationCount, cs.RunCheckCount,
	)
	return eris.Wrapf(err, "sqlite: upsert chain scrape %d/%s", cs.ChainID, cs.ScrapeDate.Format(dateLayout))
}

func (s *SQLiteStore) ChainScrapesByCollection(ctx context.Context, collectionID int, start, end time.Time) ([]model.ChainScrape, error) {
	sd, ed := start, end
	rows, err := s.db.QueryContext(ctx,
		`SELECT chain_id, chain_name, collection_id, scrape_date, scrape_time, us_location_count, location_count, run_check_count
		 FROM chain_scrapes
		 WHERE collection_id = ?1 AND scrape_date >= ?2 AND scrape_date <= ?3
		 ORDER BY chain_id, scrape_date`,
		collectionID, fmtDate(&sd), fmtDate(&ed),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: chain scrapes by collection")
	}
	defer rows.Close()

	var out []model.ChainScrape
	for rows.Next() {
		var cs model.ChainScrape
		var scrape string
		if err := rows.Scan(&cs.ChainID, &cs.ChainName, &cs.CollectionID, &scrape,
			&cs.ScrapeTime, &cs.UsLocationCount, &cs.LocationCount, &cs.RunCheckCount); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan chain scrape")
		}
		if t, err := time.Parse(dateLayout, scrape); err == nil {
			cs.ScrapeDate = t
		}
		out = append(out, cs)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: chain scrapes iterate")
}

func (s *SQLiteStore) UpsertQualityRows(ctx context.Context, reportRows []model.QualityReportRow) error {
	for _, r := range reportRows {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO quality_report
			   (file_name, collection_id, row_number, chain_id, scrape_date, validation_result, invalid_columns, blank_columns)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (file_name, row_number) DO UPDATE SET
			   collection_id = excluded.collection_id, chain_id = excluded.chain_id,
			   scrape_date = excluded.scrape_date, validation_result = excluded.validation_result,
			   invalid_columns = excluded.invalid_columns, blank_columns = excluded.blank_columns`,
			r.FileName, r.CollectionID, r.RowNumber, r.ChainID, fmtDate(r.ScrapeDate),
			string(r.Result), joinColumns(r.InvalidColumns), joinColumns(r.BlankColumns),
		)
		if err != nil {
			return eris.Wrapf(err, "sqlite: upsert quality row %d of %s", r.RowNumber, r.FileName)
		}
	}
	return nil
}

func (s *SQLiteStore) LogFileEvent(ctx context.Context, ev model.FileEvent) error {
	d := ev.RunDate
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO file_event_log (file_name, collection_id, status, run_date, error_message)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (file_name, run_date) DO UPDATE SET
		   collection_id = excluded.collection_id, status = excluded.status,
		   error_message = excluded.error_message`,
		ev.FileName, ev.CollectionID, string(ev.Status), fmtDate(&d), ev.ErrorMessage,
	)
	return eris.Wrapf(err, "sqlite: log file event %s", ev.FileName)
}

func (s *SQLiteStore) UpsertRegions(ctx context.Context, regions []model.UsRegion) (int64, error) {
	var n int64
	for _, r := range regions {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO us_region (zip, region, division) VALUES (?, ?, ?)
			 ON CONFLICT (zip) DO UPDATE SET region = excluded.region, division = excluded.division`,
			r.Zip, r.Region, r.Division,
		)
		if err != nil {
			return n, eris.Wrapf(err, "sqlite: upsert region %d", r.Zip)
		}
		n++
	}
	return n, nil
}

func (s *SQLiteStore) RegionByZip(ctx context.Context, zip int) (*model.UsRegion, error) {
	var r model.UsRegion
	err := s.db.QueryRowContext(ctx,
		`SELECT zip, region, division FROM us_region WHERE zip = ?`, zip,
	).Scan(&r.Zip, &r.Region, &r.Division)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "sqlite: region by zip %d", zip)
	}
	return &r, nil
}

func (s *SQLiteStore) UpsertParentChains(ctx context.Context, chains []model.ParentChain) (int64, error) {
	var n int64
	for _, c := range chains {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO parent_chains
			   (chain_id, chain_name, chain_status, url, parent_chain_id, parent_chain_name, stock_ticker,
			    manual_change, change_fields, original_values, change_reason, modified_by, modified_date, archive_record)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (chain_id) DO UPDATE SET
			   chain_name = excluded.chain_name, chain_status = excluded.chain_status, url = excluded.url,
			   parent_chain_id = excluded.parent_chain_id, parent_chain_name = excluded.parent_chain_name,
			   stock_ticker = excluded.stock_ticker, manual_change = excluded.manual_change,
			   change_fields = excluded.change_fields, original_values = excluded.original_values,
			   change_reason = excluded.change_reason, modified_by = excluded.modified_by,
			   modified_date = excluded.modified_date, archive_record = excluded.archive_record`,
			c.ChainID, c.ChainName, c.ChainStatus, c.URL, c.ParentChainID, c.ParentChainName, c.StockTicker,
			c.ManualChange, c.ChangeFields, c.OriginalValues, c.ChangeReason, c.ModifiedBy,
			fmtDate(c.ModifiedDate), c.ArchiveRecord,
		)
		if err != nil {
			return n, eris.Wrapf(err, "sqlite: upsert parent chain %d", c.ChainID)
		}
		n++
	}
	return n, nil
}

func (s *SQLiteStore) UpsertLandlords(ctx context.Context, landlords []model.Landlord) (int64, error) {
	var n int64
	for _, l := range landlords {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO landlords
			   (landlord_id, landlord_name, landlord_status, url, sic_code, naics_code, primary_category,
			    categories, countries, property_count, is_public, stock_ticker, property_sector,
			    property_subsector, index_name, region_coverage, property_url, archive_record)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (landlord_id) DO UPDATE SET
			   landlord_name = excluded.landlord_name, landlord_status = excluded.landlord_status,
			   url = excluded.url, sic_code = excluded.sic_code, naics_code = excluded.naics_code,
			   primary_category = excluded.primary_category, categories = excluded.categories,
			   countries = excluded.countries, property_count = excluded.property_count,
			   is_public = excluded.is_public, stock_ticker = excluded.stock_ticker,
			   property_sector = excluded.property_sector, property_subsector = excluded.property_subsector,
			   index_name = excluded.index_name, region_coverage = excluded.region_coverage,
			   property_url = excluded.property_url, archive_record = excluded.archive_record`,
			l.LandlordID, l.LandlordName, l.LandlordStatus, l.URL, l.SICCode, l.NAICSCode, l.PrimaryCategory,
			l.Categories, l.Countries, l.PropertyCount, l.IsPublic, l.StockTicker, l.PropertySector,
			l.PropertySubsector, l.IndexName, l.RegionCoverage, l.PropertyURL, l.ArchiveRecord,
		)
		if err != nil {
			return n, eris.Wrapf(err, "sqlite: upsert landlord %s", l.LandlordID)
		}
		n++
	}
	return n, nil
}

func (s *SQLiteStore) UpsertCenters(ctx context.Context, centers []model.Center) (int64, error) {
	var n int64
	for _, c := range centers {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO centers
			   (site_id, title, center_type, format, address, address2, city, region, postal_code,
			    country, latitude, longitude, gla, units, year_opened, location_count, anchor_count, anchor_chains)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (site_id) DO UPDATE SET
			   title = excluded.title, center_type = excluded.center_type, format = excluded.format,
			   address = excluded.address, address2 = excluded.address2, city = excluded.city,
			   region = excluded.region, postal_code = excluded.postal_code, country = excluded.country,
			   latitude = excluded.latitude, longitude = excluded.longitude, gla = excluded.gla,
			   units = excluded.units, year_opened = excluded.year_opened,
			   location_count = excluded.location_count, anchor_count = excluded.anchor_count,
			   anchor_chains = excluded.anchor_chains`,
			c.SiteID, c.Title, c.CenterType, c.Format, c.Address, c.Address2, c.City, c.Region,
			c.PostalCode, c.Country, c.Latitude, c.Longitude, c.GLA, c.Units, c.YearOpened,
			c.LocationCount, c.AnchorCount, c.AnchorChains,
		)
		if err != nil {
			return n, eris.Wrapf(err, "sqlite: upsert center %s", c.SiteID)
		}
		n++
	}
	return n, nil
}

func (s *SQLiteStore) UpsertCenterLandlords(ctx context.Context, links []model.CenterLandlord) (int64, error) {
	var n int64
	for _, l := range links {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO center_landlords (site_id, landlord_id, ownership_pct) VALUES (?, ?, ?)
			 ON CONFLICT (site_id, landlord_id) DO UPDATE SET ownership_pct = excluded.ownership_pct`,
			l.SiteID, l.LandlordID, l.OwnershipPct,
		)
		if err != nil {
			return n, eris.Wrapf(err, "sqlite: upsert center landlord %s/%s", l.SiteID, l.LandlordID)
		}
		n++
	}
	return n, nil
}
