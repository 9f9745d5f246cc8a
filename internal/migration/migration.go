package migration

import (
	"context"

	"github.com/jmoiron/sqlx"

	"statfeed/internal/errors"
)

// MigrationRunner creates the output tables the ingest pipeline writes to.
// Each table declares the unique key the insert-or-ignore upsert relies on.
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{version: "1.0.0"}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all schema migrations in order.
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	statements := []struct {
		name string
		ddl  string
	}{
		{"foreign_exchange", `
			CREATE TABLE IF NOT EXISTS foreign_exchange (
				date DATE NOT NULL,
				usd_cad DOUBLE PRECISION,
				eur_cad DOUBLE PRECISION,
				UNIQUE (date)
			)
		`},
		{"labour_force_status", `
			CREATE TABLE IF NOT EXISTS labour_force_status (
				geography TEXT NOT NULL,
				date DATE NOT NULL,
				employment_rate DOUBLE PRECISION,
				unemployment_rate DOUBLE PRECISION,
				UNIQUE (geography, date)
			)
		`},
		{"fuel_price", `
			CREATE TABLE IF NOT EXISTS fuel_price (
				geography TEXT NOT NULL,
				date DATE NOT NULL,
				gasoline_price DOUBLE PRECISION,
				diesel_price DOUBLE PRECISION,
				UNIQUE (geography, date)
			)
		`},
		{"trade_index", `
			CREATE TABLE IF NOT EXISTS trade_index (
				geography TEXT NOT NULL,
				date DATE NOT NULL,
				import DOUBLE PRECISION,
				export DOUBLE PRECISION,
				UNIQUE (geography, date)
			)
		`},
		{"food_cpi", `
			CREATE TABLE IF NOT EXISTS food_cpi (
				geography TEXT NOT NULL,
				date DATE NOT NULL,
				food DOUBLE PRECISION,
				UNIQUE (geography, date)
			)
		`},
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt.ddl); err != nil {
			return errors.Wrapf(err, "failed to create %s table", stmt.name)
		}
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_labour_force_date ON labour_force_status(date)",
		"CREATE INDEX IF NOT EXISTS idx_fuel_price_date ON fuel_price(date)",
		"CREATE INDEX IF NOT EXISTS idx_trade_index_date ON trade_index(date)",
		"CREATE INDEX IF NOT EXISTS idx_food_cpi_date ON food_cpi(date)",
	}
	for _, idxSQL := range indexes {
		if _, err := db.ExecContext(ctx, idxSQL); err != nil {
			return errors.Wrap(err, "failed to create index")
		}
	}

	return nil
}
