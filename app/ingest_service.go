package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"statfeed/domain/table"
	"statfeed/internal"
	"statfeed/internal/config"
	"statfeed/internal/errors"
	"statfeed/ports"
)

// Output table names, one per dataset.
const (
	TableForeignExchange = "foreign_exchange"
	TableLabourForce     = "labour_force_status"
	TableFuelPrice       = "fuel_price"
	TableTradeIndex      = "trade_index"
	TableFoodCPI         = "food_cpi"
)

// IngestService fetches every dataset and hands the tidy tables to the
// repository. Datasets are independent read-only fetches, so they run in
// parallel; each completes or fails on its own, and the chain inside one
// cube stays strictly sequential.
type IngestService struct {
	datasets *Datasets
	repo     ports.TableRepository
	log      *internal.Logger
}

// NewIngestService creates the ingest orchestrator.
func NewIngestService(datasets *Datasets, repo ports.TableRepository, log *internal.Logger) *IngestService {
	if log == nil {
		log = internal.DefaultLogger
	}
	return &IngestService{datasets: datasets, repo: repo, log: log}
}

// Run fetches and upserts all five datasets over the given range.
func (s *IngestService) Run(ctx context.Context, start, end time.Time) error {
	runID := uuid.New()
	s.log.Info("ingest %s: fetching datasets from %s to %s",
		runID, start.Format("2006-01-02"), end.Format("2006-01-02"))

	loaders := []struct {
		table string
		fetch func(context.Context) (*table.Table, error)
	}{
		{TableForeignExchange, func(ctx context.Context) (*table.Table, error) {
			return s.datasets.ForeignExchange(ctx, config.FXCodes, start, end)
		}},
		{TableLabourForce, func(ctx context.Context) (*table.Table, error) {
			return s.datasets.LabourForce(ctx, config.LabourForceSpec, start, end)
		}},
		{TableFuelPrice, func(ctx context.Context) (*table.Table, error) {
			return s.datasets.FuelPrice(ctx, config.FuelTypesSpec, start, end)
		}},
		{TableTradeIndex, func(ctx context.Context) (*table.Table, error) {
			return s.datasets.TradeIndex(ctx, config.TradeSpec, start, end)
		}},
		{TableFoodCPI, func(ctx context.Context) (*table.Table, error) {
			return s.datasets.FoodCPI(ctx, config.CPISpec, start, end)
		}},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, loader := range loaders {
		loader := loader
		g.Go(func() error {
			t, err := loader.fetch(gctx)
			if err != nil {
				s.log.Error("ingest %s: %s failed: %v", runID, loader.table, err)
				return errors.Wrapf(err, "failed to load %s", loader.table)
			}
			if err := s.repo.Upsert(gctx, loader.table, t); err != nil {
				s.log.Error("ingest %s: %s upsert failed: %v", runID, loader.table, err)
				return errors.Wrapf(err, "failed to upsert %s", loader.table)
			}
			s.log.Info("ingest %s: %s loaded %d rows", runID, loader.table, t.Len())
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	s.log.Info("ingest %s: completed", runID)
	return nil
}
