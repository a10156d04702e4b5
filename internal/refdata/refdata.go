// Package refdata loads the external reference workbooks: census regions by
// zip, parent chains, landlords, and shopping centers. Loads are wholesale
// upserts; the engine only ever reads these tables.
package refdata

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/footprint-cli/internal/model"
	"github.com/sells-group/footprint-cli/internal/normalize"
	"github.com/sells-group/footprint-cli/internal/snapshot"
	"github.com/sells-group/footprint-cli/internal/store"
)

// Loader ingests reference tables.
type Loader struct {
	store store.Store
}

func New(s store.Store) *Loader {
	return &Loader{store: s}
}

func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}
	return idx
}

func field(record []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func fieldInt(record []string, idx map[string]int, name string) int {
	v, _ := strconv.Atoi(strings.TrimSuffix(field(record, idx, name), ".0"))
	return v
}

func fieldFloat(record []string, idx map[string]int, name string) float64 {
	v, _ := strconv.ParseFloat(field(record, idx, name), 64)
	return v
}

func fieldBool(record []string, idx map[string]int, name string) bool {
	switch strings.ToLower(field(record, idx, name)) {
	case "true", "1", "yes", "y":
		return true
	}
	return false
}

func fieldDate(record []string, idx map[string]int, name string) *time.Time {
	d, err := normalize.ParseDate(field(record, idx, name))
	if err != nil {
		return nil
	}
	return &d
}

// LoadRegions ingests the zip-to-census-region workbook. Rows without a
// parseable zip are skipped.
func (l *Loader) LoadRegions(ctx context.Context, table snapshot.Table) (int64, error) {
	idx := headerIndex(table.Header)

	var regions []model.UsRegion
	for _, record := range table.Rows {
		zip, err := strconv.Atoi(field(record, idx, "PhysicalZip"))
		if err != nil {
			continue
		}
		regions = append(regions, model.UsRegion{
			Zip:      zip,
			Region:   field(record, idx, "CensusRegion"),
			Division: field(record, idx, "CensusDivision"),
		})
	}
	if len(regions) == 0 {
		return 0, eris.New("refdata: no usable region rows")
	}

	n, err := l.store.UpsertRegions(ctx, regions)
	if err != nil {
		return n, eris.Wrap(err, "refdata: load regions")
	}
	zap.L().Info("regions loaded", zap.Int64("rows", n))
	return n, nil
}

// LoadParentChains ingests the parent-chain reference sheet.
func (l *Loader) LoadParentChains(ctx context.Context, table snapshot.Table) (int64, error) {
	idx := headerIndex(table.Header)

	var chains []model.ParentChain
	for _, record := range table.Rows {
		chainID := fieldInt(record, idx, "ChainId")
		if chainID == 0 {
			continue
		}
		chains = append(chains, model.ParentChain{
			ChainID:         chainID,
			ChainName:       field(record, idx, "ChainName"),
			ChainStatus:     field(record, idx, "ChainStatus"),
			URL:             field(record, idx, "Url"),
			ParentChainID:   field(record, idx, "ParentChainId"),
			ParentChainName: field(record, idx, "ParentChainName"),
			StockTicker:     field(record, idx, "StockTicker"),
			ManualChange:    fieldBool(record, idx, "ManualChange"),
			ChangeFields:    field(record, idx, "ChangeFields"),
			OriginalValues:  field(record, idx, "OriginalValues"),
			ChangeReason:    field(record, idx, "ChangeReason"),
			ModifiedBy:      field(record, idx, "ModifiedBy"),
			ModifiedDate:    fieldDate(record, idx, "ModifiedDate"),
			ArchiveRecord:   fieldBool(record, idx, "ArchiveRecord"),
		})
	}
	if len(chains) == 0 {
		return 0, eris.New("refdata: no usable parent chain rows")
	}

	n, err := l.store.UpsertParentChains(ctx, chains)
	if err != nil {
		return n, eris.Wrap(err, "refdata: load parent chains")
	}
	zap.L().Info("parent chains loaded", zap.Int64("rows", n))
	return n, nil
}

// LoadLandlords ingests the landlord reference sheet.
func (l *Loader) LoadLandlords(ctx context.Context, table snapshot.Table) (int64, error) {
	idx := headerIndex(table.Header)

	var landlords []model.Landlord
	for _, record := range table.Rows {
		id := field(record, idx, "LandlordId")
		if id == "" {
			continue
		}
		landlords = append(landlords, model.Landlord{
			LandlordID:        id,
			LandlordName:      field(record, idx, "LandlordName"),
			LandlordStatus:    field(record, idx, "LandlordStatus"),
			URL:               field(record, idx, "Url"),
			SICCode:           field(record, idx, "SicCode"),
			NAICSCode:         field(record, idx, "NaicsCode"),
			PrimaryCategory:   field(record, idx, "PrimaryCategory"),
			Categories:        field(record, idx, "Categories"),
			Countries:         field(record, idx, "Countries"),
			PropertyCount:     fieldInt(record, idx, "PropertyCount"),
			IsPublic:          fieldBool(record, idx, "IsPublic"),
			StockTicker:       field(record, idx, "StockTicker"),
			PropertySector:    field(record, idx, "PropertySector"),
			PropertySubsector: field(record, idx, "PropertySubsector"),
			IndexName:         field(record, idx, "IndexName"),
			RegionCoverage:    field(record, idx, "RegionCoverage"),
			PropertyURL:       field(record, idx, "PropertyUrl"),
			ArchiveRecord:     fieldBool(record, idx, "ArchiveRecord"),
		})
	}
	if len(landlords) == 0 {
		return 0, eris.New("refdata: no usable landlord rows")
	}

	n, err := l.store.UpsertLandlords(ctx, landlords)
	if err != nil {
		return n, eris.Wrap(err, "refdata: load landlords")
	}
	zap.L().Info("landlords loaded", zap.Int64("rows", n))
	return n, nil
}

// LoadCenters ingests the shopping-center reference sheet.
func (l *Loader) LoadCenters(ctx context.Context, table snapshot.Table) (int64, error) {
	idx := headerIndex(table.Header)

	var centers []model.Center
	for _, record := range table.Rows {
		siteID := field(record, idx, "SiteId")
		if siteID == "" {
			continue
		}
		centers = append(centers, model.Center{
			SiteID:        siteID,
			Title:         field(record, idx, "Title"),
			CenterType:    field(record, idx, "CenterType"),
			Format:        field(record, idx, "Format"),
			Address:       field(record, idx, "Address"),
			Address2:      field(record, idx, "Address2"),
			City:          field(record, idx, "City"),
			Region:        field(record, idx, "Region"),
			PostalCode:    field(record, idx, "PostalCode"),
			Country:       field(record, idx, "Country"),
			Latitude:      fieldFloat(record, idx, "Latitude"),
			Longitude:     fieldFloat(record, idx, "Longitude"),
			GLA:           fieldFloat(record, idx, "GLA"),
			Units:         fieldInt(record, idx, "Units"),
			YearOpened:    fieldInt(record, idx, "YearOpened"),
			LocationCount: fieldInt(record, idx, "LocationCount"),
			AnchorCount:   fieldInt(record, idx, "AnchorCount"),
			AnchorChains:  field(record, idx, "AnchorChains"),
		})
	}
	if len(centers) == 0 {
		return 0, eris.New("refdata: no usable center rows")
	}

	n, err := l.store.UpsertCenters(ctx, centers)
	if err != nil {
		return n, eris.Wrap(err, "refdata: load centers")
	}
	zap.L().Info("centers loaded", zap.Int64("rows", n))
	return n, nil
}

// LoadCenterLandlords ingests the center-to-landlord ownership sheet.
func (l *Loader) LoadCenterLandlords(ctx context.Context, table snapshot.Table) (int64, error) {
	idx := headerIndex(table.Header)

	var links []model.CenterLandlord
	for _, record := range table.Rows {
		siteID := field(record, idx, "SiteId")
		landlordID := field(record, idx, "LandlordId")
		if siteID == "" || landlordID == "" {
			continue
		}
		links = append(links, model.CenterLandlord{
			SiteID:       siteID,
			LandlordID:   landlordID,
			OwnershipPct: fieldFloat(record, idx, "OwnershipPct"),
		})
	}
	if len(links) == 0 {
		return 0, eris.New("refdata: no usable center landlord rows")
	}

	n, err := l.store.UpsertCenterLandlords(ctx, links)
	if err != nil {
		return n, eris.Wrap(err, "refdata: load center landlords")
	}
	zap.L().Info("center landlords loaded", zap.Int64("rows", n))
	return n, nil
}
