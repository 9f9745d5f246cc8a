package cube

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statfeed/internal/errors"
)

func TestColumnOrderSortsByCataloguePosition(t *testing.T) {
	// Query order lists Trade first, but titles are tokenized in
	// catalogue-position order, so Geography must come first.
	spec := Spec{
		Entry("Trade", "Import"),
		Entry("Geography", "Canada"),
	}
	positions := map[string]int{"Geography": 1, "Trade": 2}

	assert.Equal(t, []string{"Geography", "Trade"}, ColumnOrder(spec, positions))
}

func TestColumnOrderExcludesUnknownDimensions(t *testing.T) {
	spec := Spec{
		Entry("Geography", "Canada"),
		Entry("Season", "Winter"),
	}
	positions := map[string]int{"Geography": 1}

	assert.Equal(t, []string{"Geography"}, ColumnOrder(spec, positions))
}

func TestColumnOrderDeduplicates(t *testing.T) {
	spec := Spec{
		Entry("Geography", "Canada"),
		Entry("Geography", "Quebec"),
	}
	positions := map[string]int{"Geography": 1}

	assert.Equal(t, []string{"Geography"}, ColumnOrder(spec, positions))
}

func TestAlignTitle(t *testing.T) {
	labels, err := AlignTitle("Canada;Import", []string{"Geography", "Trade"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Geography": "Canada", "Trade": "Import"}, labels)
}

func TestAlignTitleRejectsTokenCountMismatch(t *testing.T) {
	_, err := AlignTitle("Canada", []string{"Geography", "Trade"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeTitleAlignment))

	_, err = AlignTitle("Canada;Import;Extra", []string{"Geography", "Trade"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeTitleAlignment))
}
