package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"statfeed/domain/table"
	"statfeed/internal/errors"
	"statfeed/ports"
)

// tableRepository persists tidy tables with insert-or-ignore semantics.
type tableRepository struct {
	db *sqlx.DB
}

// NewTableRepository creates a tidy-table repository.
func NewTableRepository(db *sqlx.DB) ports.TableRepository {
	return &tableRepository{db: db}
}

// Upsert inserts every row of the table, ignoring rows whose conflict key
// already exists. The key is (geography, date) when the table carries a
// geography column, else date alone. Tables are expected to arrive
// normalized (lowercase_with_underscores column names).
func (r *tableRepository) Upsert(ctx context.Context, tableName string, t *table.Table) error {
	if t == nil || len(t.Rows) == 0 {
		return nil
	}

	columns := make([]string, 0, len(t.Dimensions)+1+len(t.ValueCols))
	columns = append(columns, t.Dimensions...)
	columns = append(columns, "date")
	columns = append(columns, t.ValueCols...)

	conflictKey := []string{"date"}
	if t.HasDimension("geography") {
		conflictKey = []string{"geography", "date"}
	}

	quoted := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = pq.QuoteIdentifier(col)
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	quotedKey := make([]string, len(conflictKey))
	for i, col := range conflictKey {
		quotedKey[i] = pq.QuoteIdentifier(col)
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO NOTHING",
		pq.QuoteIdentifier(tableName),
		strings.Join(quoted, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(quotedKey, ", "),
	)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.DatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, query)
	if err != nil {
		return errors.DatabaseError(fmt.Sprintf("failed to prepare insert into %s", tableName), err)
	}
	defer stmt.Close()

	for _, row := range t.Rows {
		args := make([]interface{}, 0, len(columns))
		for _, dim := range t.Dimensions {
			args = append(args, row.Labels[dim])
		}
		args = append(args, row.Date)
		for _, col := range t.ValueCols {
			if v, ok := row.Values[col]; ok {
				args = append(args, v)
			} else {
				args = append(args, nil)
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return errors.DatabaseError(fmt.Sprintf("failed to insert row into %s", tableName), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.DatabaseError("failed to commit transaction", err)
	}
	return nil
}
