// Package dashboard declares the analytics pages and evaluates them
// against a filtered dataset.
package dashboard

import (
	"fmt"
	"shopstats/internal/engine"
	"shopstats/internal/geo"
	"shopstats/internal/models"
)

// EmptyNotice is shown when the selection leaves no rows.
const EmptyNotice = "No data matches the selected filters."

// Evaluate filters cs by sel and computes every metric and chart of page.
// A selection that matches nothing is not an error: the view is flagged
// empty and every value carries the no-data placeholder.
func Evaluate(cs *engine.ColumnStore, page Page, sel engine.Selection) (*models.PageView, error) {
	filtered, err := cs.Filter(sel)
	if err != nil {
		return nil, err
	}
	view := &models.PageView{
		Slug:    page.Slug,
		Title:   page.Title,
		Filters: sel.Clone(),
		Rows:    filtered.Rows(),
		Empty:   filtered.Rows() == 0,
		Metrics: make([]models.Metric, 0, len(page.Metrics)),
		Charts:  make([]models.Chart, 0, len(page.Charts)),
	}
	if view.Empty {
		view.Notice = EmptyNotice
	}
	for _, m := range page.Metrics {
		mv, err := EvaluateMetric(filtered, m)
		if err != nil {
			return nil, fmt.Errorf("metric %s: %w", m.ID, err)
		}
		if view.Empty {
			mv.NoData = true
			mv.Display = models.NoDataLabel
		}
		view.Metrics = append(view.Metrics, mv)
	}
	for _, c := range page.Charts {
		cv, err := EvaluateChart(filtered, c)
		if err != nil {
			return nil, fmt.Errorf("chart %s: %w", c.ID, err)
		}
		view.Charts = append(view.Charts, cv)
	}
	return view, nil
}

// EvaluateMetric computes one KPI tile on an already filtered store.
func EvaluateMetric(cs *engine.ColumnStore, m Metric) (models.Metric, error) {
	out := models.Metric{ID: m.ID, Label: m.Label}
	if len(m.Where) > 0 {
		sub, err := cs.Filter(m.Where)
		if err != nil {
			return out, err
		}
		cs = sub
	}

	var (
		scalar models.Scalar
		err    error
	)
	switch m.Kind {
	case MetricCount:
		scalar = models.Scalar{Value: float64(cs.Count())}
	case MetricDistinct:
		var n int
		n, err = cs.DistinctCount(m.Column)
		scalar = models.Scalar{Value: float64(n)}
	case MetricMean:
		scalar, err = cs.Mean(m.Column)
	case MetricSum:
		scalar, err = cs.Sum(m.Column)
	case MetricMax:
		scalar, err = cs.Max(m.Column)
	case MetricRate:
		scalar.Value, err = cs.Rate(m.Column, m.Match)
	case MetricRateAbove:
		scalar.Value, err = cs.RateAbove(m.Column, m.Threshold)
	case MetricLift:
		scalar, err = lift(cs, m)
	case MetricMode:
		var label models.Label
		label, err = cs.Mode(m.Column)
		if err != nil {
			return out, err
		}
		out.Text, out.Display, out.NoData = label.Value, label.Value, label.NoData
		return out, nil
	default:
		return out, fmt.Errorf("%w: unknown metric kind %q", engine.ErrInvalidArgument, m.Kind)
	}
	if err != nil {
		return out, err
	}
	out.Value = scalar.Value
	out.NoData = scalar.NoData
	out.Display = displayScalar(m.Format, scalar)
	return out, nil
}

func lift(cs *engine.ColumnStore, m Metric) (models.Scalar, error) {
	mean := func(value string) (models.Scalar, error) {
		sub, err := cs.Filter(engine.Selection{m.Dimension: {value}})
		if err != nil {
			return models.Scalar{}, err
		}
		return sub.Mean(m.Column)
	}
	got, err := mean(m.Match)
	if err != nil {
		return models.Scalar{}, err
	}
	base, err := mean(m.Baseline)
	if err != nil {
		return models.Scalar{}, err
	}
	if got.NoData || base.NoData || base.Value == 0 {
		return models.Scalar{NoData: true}, nil
	}
	return models.Scalar{Value: (got.Value - base.Value) / base.Value * 100}, nil
}

// EvaluateChart computes the payload of one chart on an already filtered
// store.
func EvaluateChart(cs *engine.ColumnStore, c Chart) (models.Chart, error) {
	out := models.Chart{
		ID:     c.ID,
		Title:  c.Title,
		Kind:   string(c.Kind),
		XLabel: c.XLabel,
		YLabel: c.YLabel,
		NoData: cs.Rows() == 0,
	}
	switch c.Source {
	case SourceFrequency, SourceTopN:
		var (
			counts []models.ValueCount
			err    error
		)
		if c.Source == SourceTopN {
			counts, err = cs.TopN(c.Column, c.N)
		} else {
			counts, err = cs.ValueFrequency(c.Column)
		}
		if err != nil {
			return out, err
		}
		out.Points = make([]models.Point, len(counts))
		for i, vc := range counts {
			out.Points[i] = models.Point{Label: vc.Value, Value: float64(vc.Count)}
		}
	case SourceGrouped:
		groups, err := cs.GroupedAggregate(c.Column, c.Value, c.Op)
		if err != nil {
			return out, err
		}
		out.Points = make([]models.Point, len(groups))
		for i, g := range groups {
			out.Points[i] = models.Point{Label: g.Group, Value: g.Value}
		}
	case SourceCrossTab:
		ct, err := cs.CrossTab(c.Column, c.Column2)
		if err != nil {
			return out, err
		}
		out.CrossTab = &ct
	case SourcePivot:
		m, err := cs.PivotAggregate(c.Column, c.Column2, c.Value, c.Op)
		if err != nil {
			return out, err
		}
		out.Matrix = &m
	case SourceHistogram:
		if c.Column2 != "" {
			series, err := cs.HistogramBy(c.Column, c.Column2, c.Bins)
			if err != nil {
				return out, err
			}
			out.Histogram = series
			break
		}
		bins, err := cs.Histogram(c.Column, c.Bins)
		if err != nil {
			return out, err
		}
		out.Histogram = []models.HistogramSeries{{Group: c.Column, Bins: bins}}
	case SourceBox:
		boxes, err := cs.BoxPlot(c.Column, c.Value)
		if err != nil {
			return out, err
		}
		out.Boxes = boxes
	case SourceGeo:
		counts, err := cs.ValueFrequency(c.Column)
		if err != nil {
			return out, err
		}
		out.Regions = geo.Choropleth(counts)
	default:
		return out, fmt.Errorf("%w: unknown chart source %q", engine.ErrInvalidArgument, c.Source)
	}
	return out, nil
}
