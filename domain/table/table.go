package table

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/montanaflynn/stats"
)

// Row is one tidy observation: dimension labels, a reference date and one
// or more named numeric values.
type Row struct {
	Labels map[string]string
	Date   time.Time
	Values map[string]float64
}

// Table is a tidy table: an ordered set of label columns, an ordered set of
// value columns, and rows carrying both plus a date. It is the unit handed
// to the persistence collaborator.
type Table struct {
	Dimensions []string
	ValueCols  []string
	Rows       []Row
}

// New creates an empty table with the given column layout.
func New(dimensions, valueCols []string) *Table {
	return &Table{
		Dimensions: append([]string(nil), dimensions...),
		ValueCols:  append([]string(nil), valueCols...),
	}
}

// Append adds a row. The row's maps are used as-is; callers hand over
// ownership.
func (t *Table) Append(row Row) {
	t.Rows = append(t.Rows, row)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Pivot widens the table: rows sharing (indexDims labels, date) collapse to
// one row, and each distinct label of pivotCol becomes a value column
// holding that row's valueCol. The first value wins on collisions, matching
// an aggfunc of "first". Column order follows first appearance.
func (t *Table) Pivot(indexDims []string, pivotCol, valueCol string) *Table {
	type key struct {
		labels string
		date   time.Time
	}

	wide := New(indexDims, nil)
	index := make(map[key]int)
	seenCols := make(map[string]bool)

	for _, row := range t.Rows {
		parts := make([]string, len(indexDims))
		labels := make(map[string]string, len(indexDims))
		for i, dim := range indexDims {
			parts[i] = row.Labels[dim]
			labels[dim] = row.Labels[dim]
		}
		k := key{labels: strings.Join(parts, "\x00"), date: row.Date}

		at, ok := index[k]
		if !ok {
			at = len(wide.Rows)
			index[k] = at
			wide.Rows = append(wide.Rows, Row{
				Labels: labels,
				Date:   row.Date,
				Values: make(map[string]float64),
			})
		}

		column := row.Labels[pivotCol]
		if column == "" {
			continue
		}
		if !seenCols[column] {
			seenCols[column] = true
			wide.ValueCols = append(wide.ValueCols, column)
		}
		if _, exists := wide.Rows[at].Values[column]; !exists {
			wide.Rows[at].Values[column] = row.Values[valueCol]
		}
	}

	return wide
}

// Rename renames dimension and value columns in place according to the
// mapping; names not present in the mapping are kept.
func (t *Table) Rename(names map[string]string) *Table {
	renameAll := func(cols []string) {
		for i, col := range cols {
			if renamed, ok := names[col]; ok {
				cols[i] = renamed
			}
		}
	}
	renameAll(t.Dimensions)
	renameAll(t.ValueCols)

	for i := range t.Rows {
		row := &t.Rows[i]
		for old, renamed := range names {
			if v, ok := row.Labels[old]; ok {
				delete(row.Labels, old)
				row.Labels[renamed] = v
			}
			if v, ok := row.Values[old]; ok {
				delete(row.Values, old)
				row.Values[renamed] = v
			}
		}
	}
	return t
}

// MeanByDate collapses rows sharing a date into one row per date, taking
// the mean of every value column. Dimension labels are discarded; callers
// reattach constants with SetDimension. Rows come back in date order.
func (t *Table) MeanByDate() *Table {
	groups := make(map[time.Time]map[string][]float64)
	for _, row := range t.Rows {
		g, ok := groups[row.Date]
		if !ok {
			g = make(map[string][]float64, len(t.ValueCols))
			groups[row.Date] = g
		}
		for col, v := range row.Values {
			g[col] = append(g[col], v)
		}
	}

	collapsed := New(nil, t.ValueCols)
	for date, g := range groups {
		values := make(map[string]float64, len(g))
		for col, samples := range g {
			mean, err := stats.Mean(samples)
			if err != nil {
				continue
			}
			values[col] = mean
		}
		collapsed.Rows = append(collapsed.Rows, Row{
			Labels: map[string]string{},
			Date:   date,
			Values: values,
		})
	}
	collapsed.SortByDate()
	return collapsed
}

// SetDimension adds a constant label column to every row.
func (t *Table) SetDimension(name, value string) *Table {
	present := false
	for _, dim := range t.Dimensions {
		if dim == name {
			present = true
			break
		}
	}
	if !present {
		t.Dimensions = append(t.Dimensions, name)
	}
	for i := range t.Rows {
		if t.Rows[i].Labels == nil {
			t.Rows[i].Labels = make(map[string]string, 1)
		}
		t.Rows[i].Labels[name] = value
	}
	return t
}

// Concat appends another table's rows, unioning the column sets. Rows are
// not deduplicated; uniqueness across concatenated eras is enforced by the
// persistence conflict key.
func (t *Table) Concat(other *Table) *Table {
	if other == nil {
		return t
	}
	t.Dimensions = unionColumns(t.Dimensions, other.Dimensions)
	t.ValueCols = unionColumns(t.ValueCols, other.ValueCols)
	t.Rows = append(t.Rows, other.Rows...)
	return t
}

// MergeOnDate inner-joins two tables on date, combining value columns.
// Shared value columns keep the receiver's values.
func (t *Table) MergeOnDate(other *Table) *Table {
	if other == nil {
		return t
	}
	byDate := make(map[time.Time]Row, len(other.Rows))
	for _, row := range other.Rows {
		byDate[row.Date] = row
	}

	merged := New(unionColumns(t.Dimensions, other.Dimensions), unionColumns(t.ValueCols, other.ValueCols))
	for _, row := range t.Rows {
		match, ok := byDate[row.Date]
		if !ok {
			continue
		}
		labels := make(map[string]string, len(row.Labels)+len(match.Labels))
		for k, v := range match.Labels {
			labels[k] = v
		}
		for k, v := range row.Labels {
			labels[k] = v
		}
		values := make(map[string]float64, len(row.Values)+len(match.Values))
		for k, v := range match.Values {
			values[k] = v
		}
		for k, v := range row.Values {
			values[k] = v
		}
		merged.Rows = append(merged.Rows, Row{Labels: labels, Date: row.Date, Values: values})
	}
	return merged
}

// Normalize rewrites every column name to lowercase with underscores. It is
// applied uniformly as the last step before persistence.
func (t *Table) Normalize() *Table {
	names := make(map[string]string, len(t.Dimensions)+len(t.ValueCols))
	for _, col := range t.Dimensions {
		names[col] = NormalizeName(col)
	}
	for _, col := range t.ValueCols {
		names[col] = NormalizeName(col)
	}
	return t.Rename(names)
}

// SortByDate orders rows ascending by date, stably, so repeated runs over
// identical inputs produce identical tables.
func (t *Table) SortByDate() *Table {
	sort.SliceStable(t.Rows, func(i, j int) bool {
		return t.Rows[i].Date.Before(t.Rows[j].Date)
	})
	return t
}

// Filter returns the rows matching the predicate as a new table with the
// same column layout.
func (t *Table) Filter(keep func(Row) bool) *Table {
	filtered := New(t.Dimensions, t.ValueCols)
	for _, row := range t.Rows {
		if keep(row) {
			filtered.Rows = append(filtered.Rows, row)
		}
	}
	return filtered
}

// HasDimension reports whether the table carries the named label column.
func (t *Table) HasDimension(name string) bool {
	for _, dim := range t.Dimensions {
		if dim == name {
			return true
		}
	}
	return false
}

// NormalizeName converts a column name to the lowercase-with-underscores
// convention: "USD/CAD" -> "usd_cad", "Gasoline price" -> "gasoline_price".
func NormalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	lastUnderscore := false
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.Trim(b.String(), "_")
}

func unionColumns(a, b []string) []string {
	seen := make(map[string]bool, len(a))
	union := append([]string(nil), a...)
	for _, col := range a {
		seen[col] = true
	}
	for _, col := range b {
		if !seen[col] {
			seen[col] = true
			union = append(union, col)
		}
	}
	return union
}

// String renders a short summary for logs.
func (t *Table) String() string {
	return fmt.Sprintf("table{dims=%v values=%v rows=%d}", t.Dimensions, t.ValueCols, len(t.Rows))
}
