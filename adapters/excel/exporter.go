// Package excel writes ingested tables to an .xlsx workbook, one sheet per
// table, for offline inspection.
package excel

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/xuri/excelize/v2"

	"statfeed/internal/errors"
)

// Exporter dumps database tables to a workbook.
type Exporter struct {
	db *sqlx.DB
}

// NewExporter creates a workbook exporter.
func NewExporter(db *sqlx.DB) *Exporter {
	return &Exporter{db: db}
}

// Export writes every named table to its own sheet and saves the workbook
// at path. Tables are read in date order so the sheets are stable across
// runs.
func (e *Exporter) Export(ctx context.Context, tableNames []string, path string) error {
	book := excelize.NewFile()
	defer book.Close()

	for i, name := range tableNames {
		if i == 0 {
			if err := book.SetSheetName(book.GetSheetName(0), name); err != nil {
				return errors.Wrapf(err, "failed to name sheet %s", name)
			}
		} else {
			if _, err := book.NewSheet(name); err != nil {
				return errors.Wrapf(err, "failed to create sheet %s", name)
			}
		}
		if err := e.writeSheet(ctx, book, name); err != nil {
			return err
		}
	}

	if err := book.SaveAs(path); err != nil {
		return errors.Wrapf(err, "failed to save workbook %s", path)
	}
	return nil
}

func (e *Exporter) writeSheet(ctx context.Context, book *excelize.File, tableName string) error {
	// Table names come from the fixed ingest list, not user input.
	rows, err := e.db.QueryxContext(ctx, fmt.Sprintf("SELECT * FROM %s ORDER BY date", tableName))
	if err != nil {
		return errors.DatabaseError(fmt.Sprintf("failed to read %s", tableName), err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return errors.DatabaseError(fmt.Sprintf("failed to read %s columns", tableName), err)
	}

	header := make([]interface{}, len(columns))
	for i, col := range columns {
		header[i] = col
	}
	if err := book.SetSheetRow(tableName, "A1", &header); err != nil {
		return errors.Wrapf(err, "failed to write %s header", tableName)
	}

	rowNum := 2
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return errors.DatabaseError(fmt.Sprintf("failed to scan %s row", tableName), err)
		}
		for i, v := range values {
			switch typed := v.(type) {
			case time.Time:
				values[i] = typed.Format("2006-01-02")
			case []byte:
				values[i] = string(typed)
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return errors.Wrap(err, "failed to compute cell coordinates")
		}
		if err := book.SetSheetRow(tableName, cell, &values); err != nil {
			return errors.Wrapf(err, "failed to write %s row", tableName)
		}
		rowNum++
	}
	return rows.Err()
}
