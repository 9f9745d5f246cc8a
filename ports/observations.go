package ports

import (
	"context"
	"time"

	"statfeed/domain/cube"
)

// ObservationSource fetches observations for a set of vectors over a
// reference-period range in one call, keyed by vector identifier.
type ObservationSource interface {
	Observations(ctx context.Context, vectorIDs []int64, start, end time.Time) (map[int64][]cube.Observation, error)
}
