package engine

import (
	"fmt"
	"math"
	"shopstats/internal/models"
	"sort"
)

// maxBins bounds the bin count a caller may request.
const maxBins = 1000

// Histogram splits a numeric column into equal-width bins over [min, max].
// The last bin is closed on the right. An empty store returns no bins.
func (cs *ColumnStore) Histogram(name string, bins int) ([]models.Bin, error) {
	c, err := cs.numeric(name)
	if err != nil {
		return nil, err
	}
	if err := checkBins(bins); err != nil {
		return nil, err
	}
	edges := binEdges(c.Numbers, bins)
	return fillBins(edges, c.Numbers, nil), nil
}

// HistogramBy is Histogram per value of splitCol, with bin edges shared
// across groups. Groups are sorted ascending.
func (cs *ColumnStore) HistogramBy(name, splitCol string, bins int) ([]models.HistogramSeries, error) {
	c, err := cs.numeric(name)
	if err != nil {
		return nil, err
	}
	sk, err := cs.keys(splitCol)
	if err != nil {
		return nil, err
	}
	if err := checkBins(bins); err != nil {
		return nil, err
	}
	edges := binEdges(c.Numbers, bins)
	present := sk.present()
	out := make([]models.HistogramSeries, 0, len(present))
	for _, id := range present {
		keep := func(r int) bool { return sk.ids[r] == id }
		out = append(out, models.HistogramSeries{Group: sk.labels[id], Bins: fillBins(edges, c.Numbers, keep)})
	}
	return out, nil
}

func checkBins(bins int) error {
	if bins <= 0 || bins > maxBins {
		return fmt.Errorf("%w: bins must be between 1 and %d, got %d", ErrInvalidArgument, maxBins, bins)
	}
	return nil
}

func binEdges(values []float64, bins int) []float64 {
	if len(values) == 0 {
		return nil
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		return []float64{lo, hi}
	}
	edges := make([]float64, bins+1)
	width := (hi - lo) / float64(bins)
	for i := range edges {
		edges[i] = lo + width*float64(i)
	}
	edges[bins] = hi
	return edges
}

func fillBins(edges, values []float64, keep func(int) bool) []models.Bin {
	if len(edges) < 2 {
		return []models.Bin{}
	}
	n := len(edges) - 1
	out := make([]models.Bin, n)
	for i := range out {
		out[i] = models.Bin{Start: edges[i], End: edges[i+1]}
	}
	lo, width := edges[0], edges[1]-edges[0]
	for r, v := range values {
		if keep != nil && !keep(r) {
			continue
		}
		i := 0
		if width > 0 {
			i = int((v - lo) / width)
		}
		if i >= n {
			i = n - 1
		}
		out[i].Count++
	}
	return out
}

// BoxPlot summarizes valueCol per group of groupCol with linear-interpolated
// quartiles. Groups are sorted ascending.
func (cs *ColumnStore) BoxPlot(groupCol, valueCol string) ([]models.BoxStats, error) {
	gk, err := cs.keys(groupCol)
	if err != nil {
		return nil, err
	}
	c, err := cs.numeric(valueCol)
	if err != nil {
		return nil, err
	}

	buckets := make([][]float64, len(gk.labels))
	for r, v := range c.Numbers {
		buckets[gk.ids[r]] = append(buckets[gk.ids[r]], v)
	}
	present := gk.present()
	out := make([]models.BoxStats, 0, len(present))
	for _, id := range present {
		vals := buckets[id]
		sort.Float64s(vals)
		out = append(out, models.BoxStats{
			Group:  gk.labels[id],
			Count:  len(vals),
			Min:    vals[0],
			Q1:     quantile(vals, 0.25),
			Median: quantile(vals, 0.5),
			Q3:     quantile(vals, 0.75),
			Max:    vals[len(vals)-1],
		})
	}
	return out, nil
}

// quantile expects sorted input.
func quantile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	pos := p * float64(len(sorted)-1)
	lower, upper := math.Floor(pos), math.Ceil(pos)
	if lower == upper {
		return sorted[int(pos)]
	}
	return sorted[int(lower)] + (sorted[int(upper)]-sorted[int(lower)])*(pos-lower)
}
