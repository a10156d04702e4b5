package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/footprint-cli/internal/db"
	"github.com/sells-group/footprint-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool. Used by tests and by callers
// that manage pool lifetime themselves.
func NewPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Pool returns the underlying database pool for subsystems that need direct
// query access.
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
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
	coming_soon           BOOLEAN NOT NULL DEFAULT false,
	store_hours           TEXT NOT NULL DEFAULT '',
	status                TEXT NOT NULL,
	opened_at_estimated   DATE,
	closed_at_estimated   DATE,
	latitude              DOUBLE PRECISION NOT NULL,
	longitude             DOUBLE PRECISION NOT NULL,
	site_id               TEXT NOT NULL DEFAULT '',
	city                  TEXT NOT NULL,
	state                 TEXT NOT NULL,
	zip                   CHAR(5),
	last_event_date       DATE,
	created_at            TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at            TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_locations_partner_hash ON locations(partner_hash_id);
CREATE INDEX IF NOT EXISTS idx_locations_chain_id ON locations(chain_id);
CREATE INDEX IF NOT EXISTS idx_locations_last_event_date ON locations(last_event_date);

CREATE TABLE IF NOT EXISTS location_events (
	id                         TEXT PRIMARY KEY,
	synthetic_location_id      TEXT NOT NULL REFERENCES locations(synthetic_location_id),
	chain_id                   INTEGER NOT NULL,
	event_type                 TEXT NOT NULL,
	event_date_estimated       DATE NOT NULL,
	scrape_date                DATE NOT NULL,
	suspected_hash_change      BOOLEAN NOT NULL DEFAULT false,
	remodel_type               TEXT NOT NULL DEFAULT '',
	current_opened_at_estimated DATE,
	current_closed_at_estimated DATE,
	last_location_event_id     TEXT NOT NULL DEFAULT '',
	created_at                 TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (synthetic_location_id, scrape_date, event_type)
);

CREATE INDEX IF NOT EXISTS idx_events_location_date ON location_events(synthetic_location_id, event_date_estimated DESC);
CREATE INDEX IF NOT EXISTS idx_events_scrape_date ON location_events(scrape_date);

CREATE TABLE IF NOT EXISTS chain_scrapes (
	chain_id          INTEGER NOT NULL,
	chain_name        TEXT NOT NULL,
	collection_id     INTEGER NOT NULL DEFAULT 0,
	scrape_date       DATE NOT NULL,
	scrape_time       TIME NOT NULL,
	us_location_count INTEGER NOT NULL DEFAULT 0,
	location_count    INTEGER NOT NULL DEFAULT 0,
	run_check_count   INTEGER NOT NULL DEFAULT 0,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (chain_id, scrape_date)
);

CREATE TABLE IF NOT EXISTS quality_report (
	file_name         TEXT NOT NULL,
	collection_id     INTEGER NOT NULL,
	row_number        INTEGER NOT NULL,
	chain_id          TEXT NOT NULL DEFAULT '',
	scrape_date       DATE,
	validation_result TEXT NOT NULL,
	invalid_columns   TEXT NOT NULL DEFAULT '',
	blank_columns     TEXT NOT NULL DEFAULT '',
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (file_name, row_number)
);

CREATE TABLE IF NOT EXISTS file_event_log (
	file_name     TEXT NOT NULL,
	collection_id INTEGER NOT NULL,
	status        TEXT NOT NULL,
	run_date      DATE NOT NULL,
	error_message TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (file_name, run_date)
);

CREATE TABLE IF NOT EXISTS us_region (
	zip      INTEGER PRIMARY KEY,
	region   TEXT NOT NULL DEFAULT '',
	division TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS parent_chains (
	chain_id          INTEGER PRIMARY KEY,
	chain_name        TEXT NOT NULL,
	chain_status      TEXT NOT NULL DEFAULT '',
	url               TEXT NOT NULL DEFAULT '',
	parent_chain_id   TEXT NOT NULL DEFAULT '',
	parent_chain_name TEXT NOT NULL DEFAULT '',
	stock_ticker      TEXT NOT NULL DEFAULT '',
	manual_change     BOOLEAN NOT NULL DEFAULT false,
	change_fields     TEXT NOT NULL DEFAULT '',
	original_values   TEXT NOT NULL DEFAULT '',
	change_reason     TEXT NOT NULL DEFAULT '',
	modified_by       TEXT NOT NULL DEFAULT '',
	modified_date     DATE,
	archive_record    BOOLEAN NOT NULL DEFAULT false,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
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
	is_public          BOOLEAN NOT NULL DEFAULT false,
	stock_ticker       TEXT NOT NULL DEFAULT '',
	property_sector    TEXT NOT NULL DEFAULT '',
	property_subsector TEXT NOT NULL DEFAULT '',
	index_name         TEXT NOT NULL DEFAULT '',
	region_coverage    TEXT NOT NULL DEFAULT '',
	property_url       TEXT NOT NULL DEFAULT '',
	archive_record     BOOLEAN NOT NULL DEFAULT false,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
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
	latitude       DOUBLE PRECISION NOT NULL DEFAULT 0,
	longitude      DOUBLE PRECISION NOT NULL DEFAULT 0,
	gla            DOUBLE PRECISION NOT NULL DEFAULT 0,
	units          INTEGER NOT NULL DEFAULT 0,
	year_opened    INTEGER NOT NULL DEFAULT 0,
	location_count INTEGER NOT NULL DEFAULT 0,
	anchor_count   INTEGER NOT NULL DEFAULT 0,
	anchor_chains  TEXT NOT NULL DEFAULT '',
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS center_landlords (
	site_id       TEXT NOT NULL,
	landlord_id   TEXT NOT NULL,
	ownership_pct DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (site_id, landlord_id)
);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

const locationColumns = `synthetic_location_id, chain_id, chain_name, chain_slug, store_name,
	partner_hash_id, address_normalized, address_complement, store_number, phone_number,
	parent_chain_id, parent_chain_name, coming_soon, store_hours, status,
	opened_at_estimated, closed_at_estimated, latitude, longitude, site_id,
	city, state, zip, last_event_date`

func (s *PostgresStore) UpsertLocation(ctx context.Context, loc model.Location) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO locations (`+locationColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
		 ON CONFLICT (synthetic_location_id) DO UPDATE SET
		   chain_id = EXCLUDED.chain_id, chain_name = EXCLUDED.chain_name, chain_slug = EXCLUDED.chain_slug,
		   store_name = EXCLUDED.store_name, partner_hash_id = EXCLUDED.partner_hash_id,
		   address_normalized = EXCLUDED.address_normalized, address_complement = EXCLUDED.address_complement,
		   store_number = EXCLUDED.store_number, phone_number = EXCLUDED.phone_number,
		   parent_chain_id = EXCLUDED.parent_chain_id, parent_chain_name = EXCLUDED.parent_chain_name,
		   coming_soon = EXCLUDED.coming_soon, store_hours = EXCLUDED.store_hours, status = EXCLUDED.status,
		   opened_at_estimated = EXCLUDED.opened_at_estimated, closed_at_estimated = EXCLUDED.closed_at_estimated,
		   latitude = EXCLUDED.latitude, longitude = EXCLUDED.longitude, site_id = EXCLUDED.site_id,
		   city = EXCLUDED.city, state = EXCLUDED.state, zip = EXCLUDED.zip,
		   last_event_date = EXCLUDED.last_event_date, updated_at = now()`,
		loc.SyntheticID, loc.ChainID, loc.ChainName, loc.ChainSlug, loc.StoreName,
		loc.PartnerHashID, loc.Address, loc.AddressComplement, loc.StoreNumber, loc.PhoneNumber,
		loc.ParentChainID, loc.ParentChainName, loc.ComingSoon, loc.StoreHours, string(loc.Status),
		loc.OpenedAt, loc.ClosedAt, loc.Latitude, loc.Longitude, loc.SiteID,
		loc.City, loc.State, nullIfEmpty(loc.Zip), loc.LastEventDate,
	)
	return eris.Wrapf(err, "postgres: upsert location %s", loc.SyntheticID)
}

func (s *PostgresStore) LocationByPartnerHash(ctx context.Context, hash string) (*model.Location, error) {
	if hash == "" {
		return nil, nil
	}
	return s.getLocation(ctx,
		`SELECT `+locationColumns+` FROM locations WHERE partner_hash_id = $1 LIMIT 1`, hash)
}

func (s *PostgresStore) LocationBySyntheticID(ctx context.Context, id string) (*model.Location, error) {
	return s.getLocation(ctx,
		`SELECT `+locationColumns+` FROM locations WHERE synthetic_location_id = $1`, id)
}

func (s *PostgresStore) getLocation(ctx context.Context, query string, arg any) (*model.Location, error) {
	loc, err := scanLocation(s.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "postgres: get location")
	}
	return loc, nil
}

func scanLocation(r rowScanner) (*model.Location, error) {
	var loc model.Location
	var status string
	var zip *string
	err := r.Scan(
		&loc.SyntheticID, &loc.ChainID, &loc.ChainName, &loc.ChainSlug, &loc.StoreName,
		&loc.PartnerHashID, &loc.Address, &loc.AddressComplement, &loc.StoreNumber, &loc.PhoneNumber,
		&loc.ParentChainID, &loc.ParentChainName, &loc.ComingSoon, &loc.StoreHours, &status,
		&loc.OpenedAt, &loc.ClosedAt, &loc.Latitude, &loc.Longitude, &loc.SiteID,
		&loc.City, &loc.State, &zip, &loc.LastEventDate,
	)
	if err != nil {
		return nil, err
	}
	loc.Status = model.LocationStatus(status)
	if zip != nil {
		loc.Zip = *zip
	}
	return &loc, nil
}

// LocationsByChain lists locations for one chain, or every location when
// chainID is zero.
func (s *PostgresStore) LocationsByChain(ctx context.Context, chainID int) ([]model.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations ORDER BY chain_id, synthetic_location_id`
	args := []any{}
	if chainID != 0 {
		query = `SELECT ` + locationColumns + ` FROM locations WHERE chain_id = $1 ORDER BY synthetic_location_id`
		args = append(args, chainID)
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: locations by chain")
	}
	defer rows.Close()

	var out []model.Location
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan location")
		}
		out = append(out, *loc)
	}
	return out, eris.Wrap(rows.Err(), "postgres: locations iterate")
}

func (s *PostgresStore) UpdateLocationStatus(ctx context.Context, syntheticID string, status model.LocationStatus, estimated time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE locations SET
		   status = $2,
		   opened_at_estimated = CASE WHEN $2 = 'OPEN' THEN $3::date ELSE opened_at_estimated END,
		   closed_at_estimated = CASE WHEN $2 = 'OPEN' THEN NULL ELSE $3::date END,
		   updated_at = now()
		 WHERE synthetic_location_id = $1`,
		syntheticID, string(status), estimated,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: update location status %s", syntheticID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("location not found: %s", syntheticID)
	}
	return nil
}

func (s *PostgresStore) AdvanceLastEventDate(ctx context.Context, syntheticID string, d time.Time) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE locations SET last_event_date = $2, updated_at = now()
		 WHERE synthetic_location_id = $1
		   AND (last_event_date IS NULL OR last_event_date < $2)`,
		syntheticID, d,
	)
	return eris.Wrapf(err, "postgres: advance last event date %s", syntheticID)
}

func (s *PostgresStore) SetStatusByChain(ctx context.Context, chainID int, status model.LocationStatus) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE locations SET
		   status = $2,
		   opened_at_estimated = CASE WHEN $2 = 'OPEN' THEN now()::date ELSE NULL END,
		   closed_at_estimated = CASE WHEN $2 = 'CLOSE' THEN now()::date ELSE NULL END,
		   updated_at = now()
		 WHERE chain_id = $1`,
		chainID, string(status),
	)
	if err != nil {
		return 0, eris.Wrapf(err, "postgres: set status for chain %d", chainID)
	}
	return tag.RowsAffected(), nil
}

func (s *PostgresStore) CloseStaleLocations(ctx context.Context, olderThan time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE locations SET status = 'CLOSE', closed_at_estimated = now()::date, updated_at = now()
		 WHERE last_event_date < $1 AND status <> 'CLOSE'`,
		olderThan,
	)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: close stale locations")
	}
	return tag.RowsAffected(), nil
}

const eventColumns = `id, synthetic_location_id, chain_id, event_type, event_date_estimated,
	scrape_date, suspected_hash_change, remodel_type, current_opened_at_estimated,
	current_closed_at_estimated, last_location_event_id`

// UpsertEvent inserts the event or, when the (location, scrape date, type)
// key already exists, updates it in place. The returned event carries the
// canonical row id, which stays stable across replays so chain links do not
// dangle.
func (s *PostgresStore) UpsertEvent(ctx context.Context, ev model.LocationEvent) (*model.LocationEvent, error) {
	if ev.ID == "" {
		ev.ID = uuid.New().String()
	}
	var id string
	err := s.pool.QueryRow(ctx,
		`INSERT INTO location_events (`+eventColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (synthetic_location_id, scrape_date, event_type) DO UPDATE SET
		   event_date_estimated = EXCLUDED.event_date_estimated,
		   suspected_hash_change = EXCLUDED.suspected_hash_change,
		   remodel_type = EXCLUDED.remodel_type,
		   current_opened_at_estimated = EXCLUDED.current_opened_at_estimated,
		   current_closed_at_estimated = EXCLUDED.current_closed_at_estimated,
		   last_location_event_id = EXCLUDED.last_location_event_id
		 RETURNING id`,
		ev.ID, ev.SyntheticLocationID, ev.ChainID, string(ev.EventType), ev.EventDateEstimated,
		ev.ScrapeDate, ev.SuspectedHashChange, string(ev.RemodelType), ev.CurrentOpenedAt,
		ev.CurrentClosedAt, ev.LastEventID,
	).Scan(&id)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: upsert event for %s", ev.SyntheticLocationID)
	}
	ev.ID = id
	return &ev, nil
}

func (s *PostgresStore) LastEventBefore(ctx context.Context, syntheticID string, scrapeDate time.Time) (*model.LocationEvent, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM location_events
		 WHERE synthetic_location_id = $1 AND scrape_date < $2
		 ORDER BY event_date_estimated DESC LIMIT 1`,
		syntheticID, scrapeDate,
	)
	ev, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: last event for %s", syntheticID)
	}
	return ev, nil
}

func (s *PostgresStore) SetEventRemodel(ctx context.Context, eventID string, t model.RemodelType) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE location_events SET remodel_type = $2 WHERE id = $1`,
		eventID, string(t),
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: set remodel on event %s", eventID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("event not found: %s", eventID)
	}
	return nil
}

func (s *PostgresStore) EventsByScrapeDateRange(ctx context.Context, start, end time.Time) ([]model.LocationEvent, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+eventColumns+` FROM location_events
		 WHERE scrape_date >= $1 AND scrape_date <= $2
		 ORDER BY synthetic_location_id, event_date_estimated`,
		start, end,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: events by date range")
	}
	defer rows.Close()

	var events []model.LocationEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan event")
		}
		events = append(events, *ev)
	}
	return events, eris.Wrap(rows.Err(), "postgres: events iterate")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(r rowScanner) (*model.LocationEvent, error) {
	var ev model.LocationEvent
	var eventType, remodel string
	if err := r.Scan(
		&ev.ID, &ev.SyntheticLocationID, &ev.ChainID, &eventType, &ev.EventDateEstimated,
		&ev.ScrapeDate, &ev.SuspectedHashChange, &remodel, &ev.CurrentOpenedAt,
		&ev.CurrentClosedAt, &ev.LastEventID,
	); err != nil {
		return nil, err
	}
	ev.EventType = model.EventType(eventType)
	ev.RemodelType = model.RemodelType(remodel)
	return &ev, nil
}

func (s *PostgresStore) UpsertChainScrape(ctx context.Context, cs model.ChainScrape) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO chain_scrapes
		   (chain_id, chain_name, collection_id, scrape_date, scrape_time, us_location_count, location_count, run_check_count)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (chain_id, scrape_date) DO UPDATE SET
		   chain_name = EXCLUDED.chain_name, collection_id = EXCLUDED.collection_id,
		   scrape_time = EXCLUDED.scrape_time, us_location_count = EXCLUDED.us_location_count,
		   location_count = EXCLUDED.location_count, run_check_count = EXCLUDED.run_check_count`,
		cs.ChainID, cs.ChainName, cs.CollectionID, cs.ScrapeDate, cs.ScrapeTime,
		cs.UsLocationCount, cs.LocationCount, cs.RunCheckCount,
	)
	return eris.Wrapf(err, "postgres: upsert chain scrape %d/%s", cs.ChainID, cs.ScrapeDate.Format("2006-01-02"))
}

func (s *PostgresStore) ChainScrapesByCollection(ctx context.Context, collectionID int, start, end time.Time) ([]model.ChainScrape, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT chain_id, chain_name, collection_id, scrape_date, scrape_time::text, us_location_count, location_count, run_check_count
		 FROM chain_scrapes
		 WHERE collection_id = $1 AND scrape_date >= $2 AND scrape_date <= $3
		 ORDER BY chain_id, scrape_date`,
		collectionID, start, end,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: chain scrapes by collection")
	}
	defer rows.Close()

	var out []model.ChainScrape
	for rows.Next() {
		var cs model.ChainScrape
		if err := rows.Scan(&cs.ChainID, &cs.ChainName, &cs.CollectionID, &cs.ScrapeDate,
			&cs.ScrapeTime, &cs.UsLocationCount, &cs.LocationCount, &cs.RunCheckCount); err != nil {
			return nil, eris.Wrap(err, "postgres: scan chain scrape")
		}
		out = append(out, cs)
	}
	return out, eris.Wrap(rows.Err(), "postgres: chain scrapes iterate")
}

func (s *PostgresStore) UpsertQualityRows(ctx context.Context, reportRows []model.QualityReportRow) error {
	for _, r := range reportRows {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO quality_report
			   (file_name, collection_id, row_number, chain_id, scrape_date, validation_result, invalid_columns, blank_columns)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 ON CONFLICT (file_name, row_number) DO UPDATE SET
			   collection_id = EXCLUDED.collection_id, chain_id = EXCLUDED.chain_id,
			   scrape_date = EXCLUDED.scrape_date, validation_result = EXCLUDED.validation_result,
			   invalid_columns = EXCLUDED.invalid_columns, blank_columns = EXCLUDED.blank_columns`,
			r.FileName, r.CollectionID, r.RowNumber, r.ChainID, r.ScrapeDate,
			string(r.Result), joinColumns(r.InvalidColumns), joinColumns(r.BlankColumns),
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: upsert quality row %d of %s", r.RowNumber, r.FileName)
		}
	}
	return nil
}

func (s *PostgresStore) LogFileEvent(ctx context.Context, ev model.FileEvent) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO file_event_log (file_name, collection_id, status, run_date, error_message)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (file_name, run_date) DO UPDATE SET
		   collection_id = EXCLUDED.collection_id, status = EXCLUDED.status,
		   error_message = EXCLUDED.error_message`,
		ev.FileName, ev.CollectionID, string(ev.Status), ev.RunDate, ev.ErrorMessage,
	)
	return eris.Wrapf(err, "postgres: log file event %s", ev.FileName)
}

// UpsertRegions bulk-loads the zip reference table through a COPY + temp
// table upsert; the table is small but reloaded wholesale.
func (s *PostgresStore) UpsertRegions(ctx context.Context, regions []model.UsRegion) (int64, error) {
	rows := make([][]any, 0, len(regions))
	for _, r := range regions {
		rows = append(rows, []any{r.Zip, r.Region, r.Division})
	}
	return db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "us_region",
		Columns:      []string{"zip", "region", "division"},
		ConflictKeys: []string{"zip"},
	}, rows)
}

func (s *PostgresStore) RegionByZip(ctx context.Context, zip int) (*model.UsRegion, error) {
	var r model.UsRegion
	err := s.pool.QueryRow(ctx,
		`SELECT zip, region, division FROM us_region WHERE zip = $1`, zip,
	).Scan(&r.Zip, &r.Region, &r.Division)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: region by zip %d", zip)
	}
	return &r, nil
}

func (s *PostgresStore) UpsertParentChains(ctx context.Context, chains []model.ParentChain) (int64, error) {
	rows := make([][]any, 0, len(chains))
	for _, c := range chains {
		rows = append(rows, []any{
			c.ChainID, c.ChainName, c.ChainStatus, c.URL, c.ParentChainID, c.ParentChainName,
			c.StockTicker, c.ManualChange, c.ChangeFields, c.OriginalValues, c.ChangeReason,
			c.ModifiedBy, c.ModifiedDate, c.ArchiveRecord,
		})
	}
	return db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table: "parent_chains",
		Columns: []string{
			"chain_id", "chain_name", "chain_status", "url", "parent_chain_id", "parent_chain_name",
			"stock_ticker", "manual_change", "change_fields", "original_values", "change_reason",
			"modified_by", "modified_date", "archive_record",
		},
		ConflictKeys: []string{"chain_id"},
	}, rows)
}

func (s *PostgresStore) UpsertLandlords(ctx context.Context, landlords []model.Landlord) (int64, error) {
	rows := make([][]any, 0, len(landlords))
	for _, l := range landlords {
		rows = append(rows, []any{
			l.LandlordID, l.LandlordName, l.LandlordStatus, l.URL, l.SICCode, l.NAICSCode,
			l.PrimaryCategory, l.Categories, l.Countries, l.PropertyCount, l.IsPublic,
			l.StockTicker, l.PropertySector, l.PropertySubsector, l.IndexName,
			l.RegionCoverage, l.PropertyURL, l.ArchiveRecord,
		})
	}
	return db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table: "landlords",
		Columns: []string{
			"landlord_id", "landlord_name", "landlord_status", "url", "sic_code", "naics_code",
			"primary_category", "categories", "countries", "property_count", "is_public",
			"stock_ticker", "property_sector", "property_subsector", "index_name",
			"region_coverage", "property_url", "archive_record",
		},
		ConflictKeys: []string{"landlord_id"},
	}, rows)
}

func (s *PostgresStore) UpsertCenters(ctx context.Context, centers []model.Center) (int64, error) {
	rows := make([][]any, 0, len(centers))
	for _, c := range centers {
		rows = append(rows, []any{
			c.SiteID, c.Title, c.CenterType, c.Format, c.Address, c.Address2, c.City,
			c.Region, c.PostalCode, c.Country, c.Latitude, c.Longitude, c.GLA, c.Units,
			c.YearOpened, c.LocationCount, c.AnchorCount, c.AnchorChains,
		})
	}
	return db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table: "centers",
		Columns: []string{
			"site_id", "title", "center_type", "format", "address", "address2", "city",
			"region", "postal_code", "country", "latitude", "longitude", "gla", "units",
			"year_opened", "location_count", "anchor_count", "anchor_chains",
		},
		ConflictKeys: []string{"site_id"},
	}, rows)
}

func (s *PostgresStore) UpsertCenterLandlords(ctx context.Context, links []model.CenterLandlord) (int64, error) {
	rows := make([][]any, 0, len(links))
	for _, l := range links {
		rows = append(rows, []any{l.SiteID, l.LandlordID, l.OwnershipPct})
	}
	return db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "center_landlords",
		Columns:      []string{"site_id", "landlord_id", "ownership_pct"},
		ConflictKeys: []string{"site_id", "landlord_id"},
	}, rows)
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func joinColumns(cols []string) string {
	return strings.Join(cols, ", ")
}
