package ports

import (
	"context"

	"statfeed/domain/cube"
)

// CubeCatalogue retrieves a cube's dimension/member catalogue from the
// provider. Implementations do not retry; transient failures are the
// caller's concern.
type CubeCatalogue interface {
	CubeMetadata(ctx context.Context, pid cube.ProductID) (cube.Metadata, error)
}
