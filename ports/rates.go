package ports

import (
	"context"
	"time"

	"statfeed/domain/table"
)

// RateSource serves exchange-rate series from the two provider eras. Each
// era has its own CSV shape; both come back as tidy tables sharing a date
// column so the caller can stitch them at the era boundary.
type RateSource interface {
	// LegacyRates fetches one series per code over [start, end] and merges
	// them on date. Codes map series code -> output column name.
	LegacyRates(ctx context.Context, codes map[string]string, start, end time.Time) (*table.Table, error)

	// CurrentRates fetches the current-era grouped series from start
	// onward, keeping only the coded columns.
	CurrentRates(ctx context.Context, codes map[string]string, start time.Time) (*table.Table, error)
}
