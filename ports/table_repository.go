package ports

import (
	"context"

	"statfeed/domain/table"
)

// TableRepository persists tidy tables. Upsert is insert-or-ignore keyed on
// (geography, date) when both columns are present, else date alone, so
// re-running an identical ingest is a no-op.
type TableRepository interface {
	Upsert(ctx context.Context, tableName string, t *table.Table) error
}
