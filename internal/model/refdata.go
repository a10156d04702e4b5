package model

import "time"

// UsRegion maps a 5-digit zip to its census region and division. The table
// is reference data loaded from an external workbook; the engine only reads it.
type UsRegion struct {
	Zip      int    `json:"zip"`
	Region   string `json:"region"`
	Division string `json:"division"`
}

// ParentChain is the reference record for a chain's corporate parent.
type ParentChain struct {
	ChainID         int        `json:"chain_id"`
	ChainName       string     `json:"chain_name"`
	ChainStatus     string     `json:"chain_status,omitempty"`
	URL             string     `json:"url,omitempty"`
	ParentChainID   string     `json:"parent_chain_id,omitempty"`
	ParentChainName string     `json:"parent_chain_name,omitempty"`
	StockTicker     string     `json:"stock_ticker,omitempty"`
	ManualChange    bool       `json:"manual_change"`
	ChangeFields    string     `json:"change_fields,omitempty"`
	OriginalValues  string     `json:"original_values,omitempty"`
	ChangeReason    string     `json:"change_reason,omitempty"`
	ModifiedBy      string     `json:"modified_by,omitempty"`
	ModifiedDate    *time.Time `json:"modified_date,omitempty"`
	ArchiveRecord   bool       `json:"archive_record"`
}

// Landlord is the reference record for a property owner.
type Landlord struct {
	LandlordID     string `json:"landlord_id"`
	LandlordName   string `json:"landlord_name"`
	LandlordStatus string `json:"landlord_status,omitempty"`
	URL            string `json:"url,omitempty"`
	SICCode        string `json:"sic_code,omitempty"`
	NAICSCode      string `json:"naics_code,omitempty"`
	PrimaryCategory string `json:"primary_category,omitempty"`
	Categories     string `json:"categories,omitempty"`
	Countries      string `json:"countries,omitempty"`
	PropertyCount  int    `json:"property_count,omitempty"`
	IsPublic       bool   `json:"is_public"`
	StockTicker    string `json:"stock_ticker,omitempty"`
	PropertySector string `json:"property_sector,omitempty"`
	PropertySubsector string `json:"property_subsector,omitempty"`
	IndexName      string `json:"index_name,omitempty"`
	RegionCoverage string `json:"region_coverage,omitempty"`
	PropertyURL    string `json:"property_url,omitempty"`
	ArchiveRecord  bool   `json:"archive_record"`
}

// Center is the reference record for a shopping center.
type Center struct {
	SiteID        string  `json:"site_id"`
	Title         string  `json:"title"`
	CenterType    string  `json:"center_type,omitempty"`
	Format        string  `json:"format,omitempty"`
	Address       string  `json:"address,omitempty"`
	Address2      string  `json:"address2,omitempty"`
	City          string  `json:"city,omitempty"`
	Region        string  `json:"region,omitempty"`
	PostalCode    string  `json:"postal_code,omitempty"`
	Country       string  `json:"country,omitempty"`
	Latitude      float64 `json:"latitude,omitempty"`
	Longitude     float64 `json:"longitude,omitempty"`
	GLA           float64 `json:"gla,omitempty"`
	Units         int     `json:"units,omitempty"`
	YearOpened    int     `json:"year_opened,omitempty"`
	LocationCount int     `json:"location_count,omitempty"`
	AnchorCount   int     `json:"anchor_count,omitempty"`
	AnchorChains  string  `json:"anchor_chains,omitempty"`
}

// CenterLandlord links a center to a landlord with an ownership split.
type CenterLandlord struct {
	SiteID       string  `json:"site_id"`
	LandlordID   string  `json:"landlord_id"`
	OwnershipPct float64 `json:"ownership_pct"`
}
