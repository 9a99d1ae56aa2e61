package render

import (
	"fmt"
	"io"
	"shopstats/internal/models"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// PageHTML writes an interactive ECharts page with every chart of view
// that has data. Unlike PNG it covers heatmaps, box plots and the state
// counts.
func PageHTML(w io.Writer, view *models.PageView) error {
	page := components.NewPage()
	page.PageTitle = view.Title
	for _, c := range view.Charts {
		if c.NoData {
			continue
		}
		if ch := interactive(c); ch != nil {
			page.AddCharts(ch)
		}
	}
	return page.Render(w)
}

func interactive(c models.Chart) components.Charter {
	title := charts.WithTitleOpts(opts.Title{Title: c.Title})
	switch {
	case c.Kind == "pie" || c.Kind == "donut":
		pie := charts.NewPie()
		pie.SetGlobalOptions(title)
		data := make([]opts.PieData, len(c.Points))
		for i, p := range c.Points {
			data[i] = opts.PieData{Name: p.Label, Value: p.Value}
		}
		pie.AddSeries(c.Title, data)
		if c.Kind == "donut" {
			pie.SetSeriesOptions(charts.WithPieChartOpts(opts.PieChart{Radius: []string{"40%", "70%"}}))
		}
		return pie
	case c.CrossTab != nil:
		ct := c.CrossTab
		cells := make([][]*float64, len(ct.Rows))
		for i, row := range ct.Counts {
			cells[i] = make([]*float64, len(row))
			for j, n := range row {
				v := float64(n)
				cells[i][j] = &v
			}
		}
		return heatMap(title, c.Title, ct.Rows, ct.Cols, cells)
	case c.Matrix != nil:
		return heatMap(title, c.Title, c.Matrix.Rows, c.Matrix.Cols, c.Matrix.Cells)
	case len(c.Boxes) > 0:
		box := charts.NewBoxPlot()
		box.SetGlobalOptions(title)
		groups := make([]string, len(c.Boxes))
		data := make([]opts.BoxPlotData, len(c.Boxes))
		for i, b := range c.Boxes {
			groups[i] = b.Group
			data[i] = opts.BoxPlotData{Name: b.Group, Value: []float64{b.Min, b.Q1, b.Median, b.Q3, b.Max}}
		}
		box.SetXAxis(groups).AddSeries(c.YLabel, data)
		return box
	case len(c.Regions) > 0:
		labels := make([]string, len(c.Regions))
		values := make([]float64, len(c.Regions))
		for i, r := range c.Regions {
			labels[i], values[i] = r.Code, float64(r.Count)
		}
		return barSeries(title, labels, map[string][]float64{"Customers": values}, []string{"Customers"})
	case len(c.Histogram) > 0:
		bins := c.Histogram[0].Bins
		labels := make([]string, len(bins))
		for i, b := range bins {
			labels[i] = fmt.Sprintf("%.1f", b.Start)
		}
		series := make(map[string][]float64, len(c.Histogram))
		order := make([]string, len(c.Histogram))
		for i, s := range c.Histogram {
			order[i] = s.Group
			counts := make([]float64, len(s.Bins))
			for j, b := range s.Bins {
				counts[j] = float64(b.Count)
			}
			series[s.Group] = counts
		}
		return barSeries(title, labels, series, order)
	case len(c.Points) > 0:
		labels := make([]string, len(c.Points))
		values := make([]float64, len(c.Points))
		for i, p := range c.Points {
			labels[i], values[i] = p.Label, p.Value
		}
		return barSeries(title, labels, map[string][]float64{c.YLabel: values}, []string{c.YLabel})
	}
	return nil
}

func barSeries(title charts.GlobalOpts, labels []string, series map[string][]float64, order []string) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(title)
	bar.SetXAxis(labels)
	for _, name := range order {
		data := make([]opts.BarData, len(series[name]))
		for i, v := range series[name] {
			data[i] = opts.BarData{Value: v}
		}
		bar.AddSeries(name, data)
	}
	return bar
}

func heatMap(title charts.GlobalOpts, name string, rows, cols []string, cells [][]*float64) *charts.HeatMap {
	hm := charts.NewHeatMap()
	var top float64
	data := make([]opts.HeatMapData, 0, len(rows)*len(cols))
	for i := range rows {
		for j := range cols {
			cell := cells[i][j]
			if cell == nil {
				continue
			}
			if *cell > top {
				top = *cell
			}
			data = append(data, opts.HeatMapData{Value: [3]interface{}{j, i, *cell}})
		}
	}
	hm.SetGlobalOptions(
		title,
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Data: cols}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: rows}),
		charts.WithVisualMapOpts(opts.VisualMap{Min: 0, Max: float32(top)}),
	)
	hm.AddSeries(name, data)
	return hm
}
