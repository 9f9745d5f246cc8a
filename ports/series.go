package ports

import (
	"context"

	"statfeed/domain/cube"
)

// SeriesResolver translates coordinates into vector identifiers and their
// title strings in one batched lookup. Coordinates resolving to the
// provider's null-vector sentinel are excluded from the result.
type SeriesResolver interface {
	ResolveVectors(ctx context.Context, pid cube.ProductID, coords []cube.Coordinate) (map[int64]string, error)
}
