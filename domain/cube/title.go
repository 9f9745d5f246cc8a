package cube

import (
	"fmt"
	"sort"
	"strings"

	"statfeed/internal/errors"
)

// ColumnOrder returns the union of dimension names present in the spec,
// sorted ascending by catalogue position. Title tokens are emitted in
// position order by the provider, never in query order, so this is the only
// valid column ordering for title alignment. Dimensions the catalogue does
// not know are excluded.
func ColumnOrder(spec Spec, positions map[string]int) []string {
	seen := make(map[string]bool, len(spec))
	var columns []string
	for _, entry := range spec {
		if seen[entry.Dimension] {
			continue
		}
		seen[entry.Dimension] = true
		if _, known := positions[entry.Dimension]; known {
			columns = append(columns, entry.Dimension)
		}
	}
	sort.Slice(columns, func(i, j int) bool {
		return positions[columns[i]] < positions[columns[j]]
	})
	return columns
}

// AlignTitle splits a series title on the fixed delimiter and zips the
// tokens against the position-sorted columns. The decode contract is
// strict: the token count must equal the column count exactly, otherwise a
// TITLE_ALIGNMENT error is returned instead of a truncated row.
func AlignTitle(title string, columns []string) (map[string]string, error) {
	tokens := strings.Split(title, TitleDelimiter)
	if len(tokens) != len(columns) {
		return nil, errors.TitleAlignment(
			fmt.Sprintf("title %q has %d tokens for %d columns", title, len(tokens), len(columns)))
	}
	labels := make(map[string]string, len(columns))
	for i, column := range columns {
		labels[column] = tokens[i]
	}
	return labels, nil
}
