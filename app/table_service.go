package app

import (
	"context"
	"sort"
	"time"

	"statfeed/domain/cube"
	"statfeed/domain/table"
	"statfeed/internal"
	"statfeed/internal/errors"
	"statfeed/ports"
)

// ValueColumn is the name of the numeric column in assembled tidy tables.
const ValueColumn = "value"

// TableService runs the resolution-and-reassembly pipeline for one cube:
// expand the compact spec, build coordinates against the fresh catalogue,
// resolve them to vectors, fetch observations over the range, and zip each
// vector's title back into dimension-labeled rows.
type TableService struct {
	catalogue ports.CubeCatalogue
	resolver  ports.SeriesResolver
	source    ports.ObservationSource
	log       *internal.Logger
}

// NewTableService creates the pipeline service.
func NewTableService(catalogue ports.CubeCatalogue, resolver ports.SeriesResolver, source ports.ObservationSource, log *internal.Logger) *TableService {
	if log == nil {
		log = internal.DefaultLogger
	}
	return &TableService{catalogue: catalogue, resolver: resolver, source: source, log: log}
}

// FetchTable produces the tidy table for a product id, compact spec and
// reference-period range. Stages run strictly in sequence; later stages
// consume the exact identifier set earlier stages produced.
func (s *TableService) FetchTable(ctx context.Context, pid cube.ProductID, spec cube.Spec, start, end time.Time) (*table.Table, error) {
	selections := spec.Expand()

	meta, err := s.catalogue.CubeMetadata(ctx, pid)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch catalogue for product %d", pid)
	}

	built := cube.BuildCoordinates(meta, selections)
	if n := len(built.Dropped); n > 0 {
		// Dropped selections lose data silently downstream; keep it loud.
		s.log.Warn("product %d: %d of %d selections dropped during coordinate building", pid, n, len(selections))
		for _, drop := range built.Dropped {
			s.log.Warn("product %d: dropped selection %v: %s %q", pid, drop.Selection, drop.Reason, drop.Dimension)
		}
	}

	vectors, err := s.resolver.ResolveVectors(ctx, pid, built.Coordinates)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve vectors for product %d", pid)
	}

	vectorIDs := make([]int64, 0, len(vectors))
	for id := range vectors {
		vectorIDs = append(vectorIDs, id)
	}
	sort.Slice(vectorIDs, func(i, j int) bool { return vectorIDs[i] < vectorIDs[j] })

	observations, err := s.source.Observations(ctx, vectorIDs, start, end)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch observations for product %d", pid)
	}

	columns := cube.ColumnOrder(spec, built.Positions)
	result := table.New(columns, []string{ValueColumn})

	for _, id := range vectorIDs {
		labels, err := cube.AlignTitle(vectors[id], columns)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to align title for vector %d", id)
		}
		for _, obs := range observations[id] {
			rowLabels := make(map[string]string, len(labels))
			for k, v := range labels {
				rowLabels[k] = v
			}
			result.Append(table.Row{
				Labels: rowLabels,
				Date:   obs.RefPeriod,
				Values: map[string]float64{ValueColumn: obs.Value},
			})
		}
	}

	return result, nil
}
