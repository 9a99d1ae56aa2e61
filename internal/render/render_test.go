package render

import (
	"bytes"
	"shopstats/internal/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte("\x89PNG")

func barData(kind string) models.Chart {
	return models.Chart{
		ID:     "sales",
		Title:  "Sales by category",
		Kind:   kind,
		XLabel: "Category",
		YLabel: "USD",
		Points: []models.Point{
			{Label: "Accessories", Value: 90},
			{Label: "Clothing", Value: 75.75},
		},
	}
}

func TestPNG(t *testing.T) {
	size := Size{Width: 640, Height: 480}
	for _, kind := range []string{"bar", "pie", "donut"} {
		t.Run(kind, func(t *testing.T) {
			img, err := PNG(barData(kind), size)
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(img, pngMagic))
		})
	}

	t.Run("histogram", func(t *testing.T) {
		c := models.Chart{ID: "ages", Kind: "histogram", Histogram: []models.HistogramSeries{
			{Group: "Female", Bins: []models.Bin{{Start: 20, End: 30, Count: 1}, {Start: 30, End: 40, Count: 0}}},
			{Group: "Male", Bins: []models.Bin{{Start: 20, End: 30, Count: 2}, {Start: 30, End: 40, Count: 3}}},
		}}
		values := chartValues(c)
		require.Len(t, values, 2)
		assert.Equal(t, 3.0, values[0].Value)
		assert.Equal(t, "30.0", values[1].Label)

		img, err := PNG(c, size)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(img, pngMagic))
	})
}

func TestPNGRejects(t *testing.T) {
	size := Size{Width: 640, Height: 480}

	_, err := PNG(models.Chart{ID: "heat", Kind: "heatmap"}, size)
	assert.ErrorIs(t, err, ErrUnsupported)

	empty := barData("bar")
	empty.NoData = true
	_, err = PNG(empty, size)
	assert.ErrorIs(t, err, ErrNoData)

	_, err = PNG(models.Chart{ID: "zeros", Kind: "pie", Points: []models.Point{{Label: "a"}}}, size)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestPageTable(t *testing.T) {
	one := 12.5
	view := &models.PageView{
		Title: "Overview",
		Rows:  5,
		Metrics: []models.Metric{
			{ID: "customers", Label: "Customers", Display: "5"},
		},
		Charts: []models.Chart{
			barData("bar"),
			{ID: "heat", Title: "Heat", Kind: "heatmap", CrossTab: &models.CrossTab{
				RowColumn: "Category", ColColumn: "Season",
				Rows: []string{"Clothing"}, Cols: []string{"Summer", "Winter"},
				Counts: [][]int{{1, 2}}, RowTotals: []int{3}, ColTotals: []int{1, 2}, Total: 3,
			}},
			{ID: "pivot", Title: "Pivot", Kind: "heatmap", Matrix: &models.Matrix{
				RowColumn: "Season", Rows: []string{"Winter"}, Cols: []string{"Clothing", "Hats"},
				Cells: [][]*float64{{&one, nil}},
			}},
		},
	}

	out, err := PageTable(view, FormatTable)
	require.NoError(t, err)
	assert.Contains(t, out, "Overview (5 rows)")
	assert.Contains(t, out, "Customers")
	assert.Contains(t, out, "75.75")
	assert.Contains(t, out, "12.5")
	assert.Contains(t, out, models.NoDataLabel)

	md, err := PageTable(view, FormatMarkdown)
	require.NoError(t, err)
	assert.Contains(t, md, "| Customers | 5 |")

	_, err = PageTable(view, "html")
	assert.Error(t, err)
}

func TestPageTableEmpty(t *testing.T) {
	view := &models.PageView{
		Title:   "Overview",
		Empty:   true,
		Notice:  "No data matches the selected filters.",
		Metrics: []models.Metric{{Label: "Customers", Display: models.NoDataLabel, NoData: true}},
		Charts:  []models.Chart{{ID: "c", Title: "Chart", Kind: "bar", NoData: true}},
	}
	out, err := PageTable(view, FormatTable)
	require.NoError(t, err)
	assert.Contains(t, out, view.Notice)
	assert.Contains(t, out, models.NoDataLabel)
}

func TestPageHTML(t *testing.T) {
	q := 30.0
	view := &models.PageView{
		Title: "Seasonal analysis",
		Charts: []models.Chart{
			barData("bar"),
			barData("donut"),
			{ID: "box", Title: "Amount by season", Kind: "box", Boxes: []models.BoxStats{
				{Group: "Winter", Count: 3, Min: 10.5, Q1: 20.25, Median: 30, Q3: 37.6, Max: 45.25},
			}},
			{ID: "pivot", Title: "Average by season and category", Kind: "heatmap", Matrix: &models.Matrix{
				Rows: []string{"Winter"}, Cols: []string{"Accessories", "Clothing"},
				Cells: [][]*float64{{&q, nil}},
			}},
			{ID: "states", Title: "Customers by state", Kind: "choropleth", Regions: []models.RegionCount{{Code: "KY", Name: "Kentucky", Count: 2}}},
			{ID: "empty", Title: "Nothing here", Kind: "bar", NoData: true},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, PageHTML(&buf, view))
	out := buf.String()
	assert.Contains(t, out, "echarts")
	assert.Contains(t, out, "Amount by season")
	assert.Contains(t, out, "Average by season and category")
	assert.NotContains(t, out, "Nothing here")
}
