package app

import (
	"context"
	"sort"
	"time"

	"statfeed/domain/cube"
	"statfeed/domain/table"
	"statfeed/internal"
	"statfeed/internal/config"
	"statfeed/internal/errors"
	"statfeed/ports"
)

// EraBoundary is the first date served by the current-era exchange-rate and
// trade sources; everything earlier comes from the legacy/archived sources.
var EraBoundary = time.Date(2017, time.January, 1, 0, 0, 0, 0, time.UTC)

// Product ids of the cubes each dataset reads.
const (
	LabourForcePID   cube.ProductID = 14100287
	FuelPricePID     cube.ProductID = 18100001
	TradeCurrentPID  cube.ProductID = 12100168
	TradeArchivedPID cube.ProductID = 12100128
	FoodCPIPID       cube.ProductID = 18100006
)

// Datasets holds the per-dataset shims on top of the generic pipeline:
// renames, unit pivots and cross-era stitching. Every method returns a
// normalized table ready for the persistence collaborator.
type Datasets struct {
	tables    *TableService
	catalogue ports.CubeCatalogue
	rates     ports.RateSource
	log       *internal.Logger
}

// NewDatasets creates the dataset shims.
func NewDatasets(tables *TableService, catalogue ports.CubeCatalogue, rates ports.RateSource, log *internal.Logger) *Datasets {
	if log == nil {
		log = internal.DefaultLogger
	}
	return &Datasets{tables: tables, catalogue: catalogue, rates: rates, log: log}
}

// ForeignExchange stitches the legacy and current exchange-rate eras into
// one table on the shared date column. Each era is clipped to its side of
// the boundary; duplicates at the exact boundary are left to the
// persistence conflict key.
func (d *Datasets) ForeignExchange(ctx context.Context, codes config.EraCodes, start, end time.Time) (*table.Table, error) {
	var combined *table.Table

	if start.Before(EraBoundary) {
		legacyEnd := end
		if boundaryEve := EraBoundary.AddDate(0, 0, -1); legacyEnd.After(boundaryEve) {
			legacyEnd = boundaryEve
		}
		legacy, err := d.rates.LegacyRates(ctx, codes.Legacy, start, legacyEnd)
		if err != nil {
			return nil, errors.Wrap(err, "failed to fetch legacy exchange rates")
		}
		combined = legacy
	}

	if !end.Before(EraBoundary) {
		currentStart := start
		if currentStart.Before(EraBoundary) {
			currentStart = EraBoundary
		}
		current, err := d.rates.CurrentRates(ctx, codes.Current, currentStart)
		if err != nil {
			return nil, errors.Wrap(err, "failed to fetch current exchange rates")
		}
		if combined == nil {
			combined = current
		} else {
			combined.Concat(current)
		}
	}

	if combined == nil {
		combined = table.New(nil, nil)
	}
	return combined.SortByDate().Normalize(), nil
}

// LabourForce fetches the labour-force cube and pivots the characteristics
// into one column per rate.
func (d *Datasets) LabourForce(ctx context.Context, spec cube.Spec, start, end time.Time) (*table.Table, error) {
	raw, err := d.tables.FetchTable(ctx, LabourForcePID, spec, start, end)
	if err != nil {
		return nil, err
	}
	wide := raw.Pivot([]string{"Geography"}, "Labour force characteristics", ValueColumn)
	return wide.SortByDate().Normalize(), nil
}

// FuelPrice fetches pump prices for every geography except the national
// aggregate, pivots fuel types into columns, and collapses the provinces
// to a national mean per date.
func (d *Datasets) FuelPrice(ctx context.Context, fuelTypes cube.SpecEntry, start, end time.Time) (*table.Table, error) {
	geographies, err := d.provincialGeographies(ctx, FuelPricePID)
	if err != nil {
		return nil, err
	}
	spec := cube.Spec{
		cube.Entry("Geography", geographies...),
		fuelTypes,
	}

	raw, err := d.tables.FetchTable(ctx, FuelPricePID, spec, start, end)
	if err != nil {
		return nil, err
	}

	wide := raw.Pivot([]string{"Geography"}, "Type of fuel", ValueColumn)
	wide.Rename(map[string]string{
		"Regular unleaded gasoline at self service filling stations": "Gasoline price",
		"Diesel fuel at self service filling stations":               "Diesel price",
	})
	// Mean across geographies, not sum or last.
	national := wide.MeanByDate().SetDimension("Geography", "Canada")
	return national.Normalize(), nil
}

// TradeIndex fetches the trade price index, reading the archived cube for
// dates before the era boundary and the current cube from the boundary on,
// and concatenates the eras without deduplication.
func (d *Datasets) TradeIndex(ctx context.Context, spec cube.Spec, start, end time.Time) (*table.Table, error) {
	fetch := func(pid cube.ProductID, from, to time.Time) (*table.Table, error) {
		raw, err := d.tables.FetchTable(ctx, pid, spec, from, to)
		if err != nil {
			return nil, err
		}
		return raw.Pivot([]string{"Geography"}, "Trade", ValueColumn).SortByDate(), nil
	}

	combined := table.New(nil, nil)

	if start.Before(EraBoundary) {
		archivedEnd := end
		if boundaryEve := EraBoundary.AddDate(0, 0, -1); archivedEnd.After(boundaryEve) {
			archivedEnd = boundaryEve
		}
		archived, err := fetch(TradeArchivedPID, start, archivedEnd)
		if err != nil {
			return nil, errors.Wrap(err, "failed to fetch archived trade index")
		}
		combined.Concat(archived)
	}

	if !end.Before(EraBoundary) {
		currentStart := start
		if currentStart.Before(EraBoundary) {
			currentStart = EraBoundary
		}
		current, err := fetch(TradeCurrentPID, currentStart, end)
		if err != nil {
			return nil, errors.Wrap(err, "failed to fetch current trade index")
		}
		combined.Concat(current)
	}

	return combined.Normalize(), nil
}

// FoodCPI fetches the consumer price index cube and pivots the product
// groups into columns.
func (d *Datasets) FoodCPI(ctx context.Context, spec cube.Spec, start, end time.Time) (*table.Table, error) {
	raw, err := d.tables.FetchTable(ctx, FoodCPIPID, spec, start, end)
	if err != nil {
		return nil, err
	}
	wide := raw.Pivot([]string{"Geography"}, "Products and product groups", ValueColumn)
	return wide.SortByDate().Normalize(), nil
}

// provincialGeographies lists every Geography member of a cube except the
// national aggregate, sorted for deterministic coordinate order.
func (d *Datasets) provincialGeographies(ctx context.Context, pid cube.ProductID) ([]string, error) {
	meta, err := d.catalogue.CubeMetadata(ctx, pid)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch catalogue for product %d", pid)
	}
	dim, ok := meta.Dimensions["Geography"]
	if !ok {
		return nil, errors.MalformedResponse("cube carries no Geography dimension")
	}
	var geographies []string
	for name := range dim.Members {
		if name != "Canada" {
			geographies = append(geographies, name)
		}
	}
	sort.Strings(geographies)
	return geographies, nil
}
