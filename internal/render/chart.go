// Package render turns evaluated dashboard data into PNG charts and text
// tables.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"shopstats/internal/models"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	// ErrUnsupported is returned for chart kinds without a PNG form.
	ErrUnsupported = errors.New("chart kind has no image rendering")
	// ErrNoData is returned when there is nothing to draw.
	ErrNoData = errors.New("chart has no data")
)

// Size of the rendered image in pixels.
type Size struct {
	Width  int
	Height int
}

// PNG draws bar, histogram, pie and donut charts.
func PNG(c models.Chart, size Size) ([]byte, error) {
	values := chartValues(c)
	switch c.Kind {
	case "bar", "histogram", "pie", "donut":
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, c.Kind)
	}
	if c.NoData || len(values) == 0 || total(values) == 0 {
		return nil, ErrNoData
	}

	buffer := bytes.NewBuffer([]byte{})
	var err error
	switch c.Kind {
	case "pie":
		pie := chart.PieChart{
			Title:  c.Title,
			Width:  size.Width,
			Height: size.Height,
			Values: values,
		}
		err = pie.Render(chart.PNG, buffer)
	case "donut":
		donut := chart.DonutChart{
			Title:  c.Title,
			Width:  size.Width,
			Height: size.Height,
			Values: values,
		}
		err = donut.Render(chart.PNG, buffer)
	default:
		bar := barChart(c, values, size)
		err = bar.Render(chart.PNG, buffer)
	}
	if err != nil {
		return nil, fmt.Errorf("error rendering chart %s: %w", c.ID, err)
	}
	return buffer.Bytes(), nil
}

func barChart(c models.Chart, values []chart.Value, size Size) chart.BarChart {
	spacing := 4
	if c.Kind == "histogram" {
		spacing = 1
	}
	width := (size.Width-100)/len(values) - spacing
	if width < 2 {
		width = 2
	}
	if width > 80 {
		width = 80
	}

	bar := chart.BarChart{
		Title:      c.Title,
		Width:      size.Width,
		Height:     size.Height,
		BarWidth:   width,
		BarSpacing: spacing,
		Bars:       values,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    50,
				Bottom: labelPadding(values),
			},
			FillColor: drawing.ColorWhite,
		},
		XAxis: chart.Style{
			StrokeWidth:         1,
			StrokeColor:         chart.ColorBlack,
			TextRotationDegrees: 45,
		},
		YAxis: chart.YAxis{
			Name: c.YLabel,
			Range: &chart.ContinuousRange{
				Min: 0,
				Max: maxValue(values),
			},
			GridMajorStyle: chart.Style{
				StrokeColor:     chart.ColorBlack,
				StrokeWidth:     1,
				StrokeDashArray: []float64{5.0, 5.0},
			},
		},
	}
	return bar
}

// chartValues flattens the chart payload into labelled values. Histogram
// series share bin edges, so their counts are summed per bin.
func chartValues(c models.Chart) []chart.Value {
	if len(c.Points) > 0 {
		out := make([]chart.Value, len(c.Points))
		for i, p := range c.Points {
			out[i] = chart.Value{Label: p.Label, Value: p.Value}
		}
		return out
	}
	if len(c.Histogram) == 0 {
		return nil
	}
	out := make([]chart.Value, len(c.Histogram[0].Bins))
	for i, b := range c.Histogram[0].Bins {
		out[i].Label = fmt.Sprintf("%.1f", b.Start)
	}
	for _, s := range c.Histogram {
		for i, b := range s.Bins {
			out[i].Value += float64(b.Count)
		}
	}
	return out
}

func total(values []chart.Value) float64 {
	var sum float64
	for _, v := range values {
		sum += v.Value
	}
	return sum
}

func maxValue(values []chart.Value) float64 {
	top := values[0].Value
	for _, v := range values[1:] {
		if v.Value > top {
			top = v.Value
		}
	}
	if top <= 0 {
		return 1
	}
	return top
}

func labelPadding(values []chart.Value) int {
	longest := 0
	for _, v := range values {
		if len(v.Label) > longest {
			longest = len(v.Label)
		}
	}
	return longest * 6
}
