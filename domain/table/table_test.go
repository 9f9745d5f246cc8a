package table

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func tidyRow(geo, characteristic string, day string, value float64) Row {
	return Row{
		Labels: map[string]string{"Geography": geo, "Characteristic": characteristic},
		Date:   date(day),
		Values: map[string]float64{"value": value},
	}
}

func TestPivotWidensByLabel(t *testing.T) {
	tidy := New([]string{"Geography", "Characteristic"}, []string{"value"})
	tidy.Append(tidyRow("Canada", "Employment rate", "2020-01-01", 61.8))
	tidy.Append(tidyRow("Canada", "Unemployment rate", "2020-01-01", 5.6))
	tidy.Append(tidyRow("Canada", "Employment rate", "2020-02-01", 61.9))

	wide := tidy.Pivot([]string{"Geography"}, "Characteristic", "value")

	require.Len(t, wide.Rows, 2)
	assert.Equal(t, []string{"Employment rate", "Unemployment rate"}, wide.ValueCols)

	first := wide.Rows[0]
	assert.Equal(t, "Canada", first.Labels["Geography"])
	assert.Equal(t, date("2020-01-01"), first.Date)
	assert.Equal(t, 61.8, first.Values["Employment rate"])
	assert.Equal(t, 5.6, first.Values["Unemployment rate"])

	second := wide.Rows[1]
	assert.Equal(t, 61.9, second.Values["Employment rate"])
	_, hasUnemployment := second.Values["Unemployment rate"]
	assert.False(t, hasUnemployment)
}

func TestPivotFirstValueWins(t *testing.T) {
	tidy := New([]string{"Geography", "Characteristic"}, []string{"value"})
	tidy.Append(tidyRow("Canada", "Employment rate", "2020-01-01", 61.8))
	tidy.Append(tidyRow("Canada", "Employment rate", "2020-01-01", 99.9))

	wide := tidy.Pivot([]string{"Geography"}, "Characteristic", "value")
	require.Len(t, wide.Rows, 1)
	assert.Equal(t, 61.8, wide.Rows[0].Values["Employment rate"])
}

func TestRename(t *testing.T) {
	tbl := New([]string{"Geography"}, []string{"Gasoline"})
	tbl.Append(Row{
		Labels: map[string]string{"Geography": "Canada"},
		Date:   date("2020-01-01"),
		Values: map[string]float64{"Gasoline": 1.2},
	})

	tbl.Rename(map[string]string{"Gasoline": "Gasoline price"})

	assert.Equal(t, []string{"Gasoline price"}, tbl.ValueCols)
	assert.Equal(t, 1.2, tbl.Rows[0].Values["Gasoline price"])
	_, old := tbl.Rows[0].Values["Gasoline"]
	assert.False(t, old)
}

func TestMeanByDate(t *testing.T) {
	tbl := New([]string{"Geography"}, []string{"price"})
	for geo, price := range map[string]float64{"Ontario": 100, "Quebec": 120} {
		tbl.Append(Row{
			Labels: map[string]string{"Geography": geo},
			Date:   date("2020-01-01"),
			Values: map[string]float64{"price": price},
		})
	}
	tbl.Append(Row{
		Labels: map[string]string{"Geography": "Ontario"},
		Date:   date("2020-02-01"),
		Values: map[string]float64{"price": 130},
	})

	collapsed := tbl.MeanByDate()
	require.Len(t, collapsed.Rows, 2)
	assert.Equal(t, 110.0, collapsed.Rows[0].Values["price"])
	assert.Equal(t, 130.0, collapsed.Rows[1].Values["price"])
	assert.Empty(t, collapsed.Dimensions)
}

func TestSetDimension(t *testing.T) {
	tbl := New(nil, []string{"price"})
	tbl.Append(Row{Labels: map[string]string{}, Date: date("2020-01-01"), Values: map[string]float64{"price": 1}})

	tbl.SetDimension("Geography", "Canada")
	assert.Equal(t, []string{"Geography"}, tbl.Dimensions)
	assert.Equal(t, "Canada", tbl.Rows[0].Labels["Geography"])
}

func TestConcatUnionsColumns(t *testing.T) {
	a := New([]string{"Geography"}, []string{"Import"})
	a.Append(Row{Labels: map[string]string{"Geography": "Canada"}, Date: date("2016-12-01"), Values: map[string]float64{"Import": 1}})

	b := New([]string{"Geography"}, []string{"Import", "Export"})
	b.Append(Row{Labels: map[string]string{"Geography": "Canada"}, Date: date("2017-01-01"), Values: map[string]float64{"Import": 2, "Export": 3}})

	a.Concat(b)
	assert.Equal(t, []string{"Import", "Export"}, a.ValueCols)
	assert.Len(t, a.Rows, 2)
}

func TestMergeOnDateIsInnerJoin(t *testing.T) {
	usd := New(nil, []string{"USD/CAD"})
	usd.Append(Row{Labels: map[string]string{}, Date: date("2010-01-01"), Values: map[string]float64{"USD/CAD": 1.05}})
	usd.Append(Row{Labels: map[string]string{}, Date: date("2010-02-01"), Values: map[string]float64{"USD/CAD": 1.06}})

	eur := New(nil, []string{"EUR/CAD"})
	eur.Append(Row{Labels: map[string]string{}, Date: date("2010-01-01"), Values: map[string]float64{"EUR/CAD": 1.45}})

	merged := usd.MergeOnDate(eur)
	require.Len(t, merged.Rows, 1)
	assert.Equal(t, 1.05, merged.Rows[0].Values["USD/CAD"])
	assert.Equal(t, 1.45, merged.Rows[0].Values["EUR/CAD"])
}

func TestNormalize(t *testing.T) {
	tbl := New([]string{"Geography"}, []string{"USD/CAD", "Gasoline price"})
	tbl.Append(Row{
		Labels: map[string]string{"Geography": "Canada"},
		Date:   date("2020-01-01"),
		Values: map[string]float64{"USD/CAD": 1.3, "Gasoline price": 1.1},
	})

	tbl.Normalize()
	assert.Equal(t, []string{"geography"}, tbl.Dimensions)
	assert.Equal(t, []string{"usd_cad", "gasoline_price"}, tbl.ValueCols)
	assert.Equal(t, "Canada", tbl.Rows[0].Labels["geography"])
	assert.Equal(t, 1.3, tbl.Rows[0].Values["usd_cad"])
}

func TestNormalizeName(t *testing.T) {
	cases := map[string]string{
		"USD/CAD":        "usd_cad",
		"Gasoline price": "gasoline_price",
		"Total - Gender": "total_gender",
		"REF_DATE":       "ref_date",
		"Geography":      "geography",
	}
	for input, expected := range cases {
		assert.Equal(t, expected, NormalizeName(input), "input %q", input)
	}
}

func TestSortByDateIsStable(t *testing.T) {
	tbl := New([]string{"Geography"}, []string{"value"})
	tbl.Append(Row{Labels: map[string]string{"Geography": "Quebec"}, Date: date("2020-02-01"), Values: map[string]float64{"value": 2}})
	tbl.Append(Row{Labels: map[string]string{"Geography": "Canada"}, Date: date("2020-01-01"), Values: map[string]float64{"value": 1}})
	tbl.Append(Row{Labels: map[string]string{"Geography": "Ontario"}, Date: date("2020-01-01"), Values: map[string]float64{"value": 3}})

	tbl.SortByDate()
	assert.Equal(t, "Canada", tbl.Rows[0].Labels["Geography"])
	assert.Equal(t, "Ontario", tbl.Rows[1].Labels["Geography"])
	assert.Equal(t, "Quebec", tbl.Rows[2].Labels["Geography"])
}

func TestFilter(t *testing.T) {
	tbl := New([]string{"Geography"}, []string{"value"})
	tbl.Append(Row{Labels: map[string]string{"Geography": "Canada"}, Date: date("2020-01-01"), Values: map[string]float64{"value": 1}})
	tbl.Append(Row{Labels: map[string]string{"Geography": "Quebec"}, Date: date("2020-01-01"), Values: map[string]float64{"value": 2}})

	filtered := tbl.Filter(func(r Row) bool { return r.Labels["Geography"] == "Canada" })
	require.Len(t, filtered.Rows, 1)
	assert.Equal(t, "Canada", filtered.Rows[0].Labels["Geography"])
}
