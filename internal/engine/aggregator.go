package engine

import (
	"fmt"
	"shopstats/internal/models"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Op is a per-group aggregate operation.
type Op string

const (
	OpMean  Op = "mean"
	OpSum   Op = "sum"
	OpCount Op = "count"
	OpMax   Op = "max"
	OpMin   Op = "min"
)

// ParseOp accepts the op names case-insensitively.
func ParseOp(s string) (Op, error) {
	switch op := Op(strings.ToLower(strings.TrimSpace(s))); op {
	case OpMean, OpSum, OpCount, OpMax, OpMin:
		return op, nil
	}
	return "", fmt.Errorf("%w: unknown op %q", ErrInvalidArgument, s)
}

// keyed is a column viewed as label ids, whatever its kind. Label ids follow
// first appearance in the source file for dimensions and in the store for
// numeric columns.
type keyed struct {
	ids     []int32
	labels  []string
	numeric bool
	values  []float64 // numeric value of each label
}

func (cs *ColumnStore) keys(name string) (*keyed, error) {
	c, err := cs.column(name)
	if err != nil {
		return nil, err
	}
	if c.Kind == Dimension {
		return &keyed{ids: c.IDs, labels: c.Dict}, nil
	}

	k := &keyed{ids: make([]int32, len(c.Numbers)), numeric: true}
	seen := make(map[float64]int32)
	for r, v := range c.Numbers {
		id, ok := seen[v]
		if !ok {
			id = int32(len(k.labels))
			seen[v] = id
			k.labels = append(k.labels, formatNumber(v))
			k.values = append(k.values, v)
		}
		k.ids[r] = id
	}
	return k, nil
}

// less orders labels ascending: numerically for numeric columns, bytewise
// otherwise.
func (k *keyed) less(a, b int32) bool {
	if k.numeric {
		return k.values[a] < k.values[b]
	}
	return k.labels[a] < k.labels[b]
}

func (k *keyed) counts() []int {
	counts := make([]int, len(k.labels))
	for _, id := range k.ids {
		counts[id]++
	}
	return counts
}

// present returns the label ids that occur at least once, sorted ascending.
func (k *keyed) present() []int32 {
	counts := k.counts()
	out := make([]int32, 0, len(counts))
	for id, n := range counts {
		if n > 0 {
			out = append(out, int32(id))
		}
	}
	sort.Slice(out, func(i, j int) bool { return k.less(out[i], out[j]) })
	return out
}

// DistinctCount is the number of unique values in the column.
func (cs *ColumnStore) DistinctCount(name string) (int, error) {
	k, err := cs.keys(name)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, c := range k.counts() {
		if c > 0 {
			n++
		}
	}
	return n, nil
}

// Sum adds a numeric column. An empty store yields NoData.
func (cs *ColumnStore) Sum(name string) (models.Scalar, error) {
	c, err := cs.numeric(name)
	if err != nil {
		return models.Scalar{}, err
	}
	if len(c.Numbers) == 0 {
		return models.Scalar{NoData: true}, nil
	}
	f, _ := sumDecimal(c.Numbers).Float64()
	return models.Scalar{Value: f}, nil
}

// Mean averages a numeric column. An empty store yields NoData.
func (cs *ColumnStore) Mean(name string) (models.Scalar, error) {
	c, err := cs.numeric(name)
	if err != nil {
		return models.Scalar{}, err
	}
	if len(c.Numbers) == 0 {
		return models.Scalar{NoData: true}, nil
	}
	return models.Scalar{Value: meanOf(sumDecimal(c.Numbers), len(c.Numbers))}, nil
}

// Max is the largest value of a numeric column.
func (cs *ColumnStore) Max(name string) (models.Scalar, error) {
	return cs.extreme(name, func(a, b float64) bool { return a > b })
}

// Min is the smallest value of a numeric column.
func (cs *ColumnStore) Min(name string) (models.Scalar, error) {
	return cs.extreme(name, func(a, b float64) bool { return a < b })
}

func (cs *ColumnStore) extreme(name string, better func(a, b float64) bool) (models.Scalar, error) {
	c, err := cs.numeric(name)
	if err != nil {
		return models.Scalar{}, err
	}
	if len(c.Numbers) == 0 {
		return models.Scalar{NoData: true}, nil
	}
	best := c.Numbers[0]
	for _, v := range c.Numbers[1:] {
		if better(v, best) {
			best = v
		}
	}
	return models.Scalar{Value: best}, nil
}

// Rate is the percentage of rows whose value equals match. Numeric columns
// compare numerically. Always within [0, 100]; 0 for an empty store.
func (cs *ColumnStore) Rate(name, match string) (float64, error) {
	c, err := cs.column(name)
	if err != nil {
		return 0, err
	}
	if cs.rows == 0 {
		return 0, nil
	}
	hits := 0
	if c.Kind == Numeric {
		want, err := strconv.ParseFloat(strings.TrimSpace(match), 64)
		if err != nil {
			return 0, nil
		}
		for _, v := range c.Numbers {
			if v == want {
				hits++
			}
		}
	} else {
		for id, v := range c.Dict {
			if v != match {
				continue
			}
			for _, rid := range c.IDs {
				if rid == int32(id) {
					hits++
				}
			}
			break
		}
	}
	return percent(hits, cs.rows), nil
}

// RateAbove is the percentage of rows whose numeric value is strictly
// greater than threshold.
func (cs *ColumnStore) RateAbove(name string, threshold float64) (float64, error) {
	c, err := cs.numeric(name)
	if err != nil {
		return 0, err
	}
	if cs.rows == 0 {
		return 0, nil
	}
	hits := 0
	for _, v := range c.Numbers {
		if v > threshold {
			hits++
		}
	}
	return percent(hits, cs.rows), nil
}

// ValueFrequency lists every present value with its count, most frequent
// first. Equal counts keep the order in which values first appear in the
// source.
func (cs *ColumnStore) ValueFrequency(name string) ([]models.ValueCount, error) {
	k, err := cs.keys(name)
	if err != nil {
		return nil, err
	}
	counts := k.counts()
	out := make([]models.ValueCount, 0, len(counts))
	for id, n := range counts {
		if n > 0 {
			out = append(out, models.ValueCount{Value: k.labels[id], Count: n, Percent: percent(n, cs.rows)})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out, nil
}

// TopN is the first n entries of ValueFrequency.
func (cs *ColumnStore) TopN(name string, n int) ([]models.ValueCount, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: n must be positive, got %d", ErrInvalidArgument, n)
	}
	freq, err := cs.ValueFrequency(name)
	if err != nil {
		return nil, err
	}
	if len(freq) > n {
		freq = freq[:n]
	}
	return freq, nil
}

// Mode is the most frequent value. Ties go to the smallest value in sorted
// order (numeric for numeric columns, bytewise otherwise). An empty store
// yields NoDataLabel.
func (cs *ColumnStore) Mode(name string) (models.Label, error) {
	k, err := cs.keys(name)
	if err != nil {
		return models.Label{}, err
	}
	counts := k.counts()
	best := int32(-1)
	for id, n := range counts {
		if n == 0 {
			continue
		}
		if best < 0 || n > counts[best] || (n == counts[best] && k.less(int32(id), best)) {
			best = int32(id)
		}
	}
	if best < 0 {
		return models.Label{Value: models.NoDataLabel, NoData: true}, nil
	}
	return models.Label{Value: k.labels[best]}, nil
}

// CrossTab counts rows for every pair of present row and column values.
// Labels are sorted ascending and unobserved pairs are zero.
func (cs *ColumnStore) CrossTab(rowCol, colCol string) (models.CrossTab, error) {
	rk, err := cs.keys(rowCol)
	if err != nil {
		return models.CrossTab{}, err
	}
	ck, err := cs.keys(colCol)
	if err != nil {
		return models.CrossTab{}, err
	}

	rows, rowAt := labelIndex(rk)
	cols, colAt := labelIndex(ck)
	ct := models.CrossTab{
		RowColumn: rowCol,
		ColColumn: colCol,
		Rows:      rows,
		Cols:      cols,
		Counts:    make([][]int, len(rows)),
		RowTotals: make([]int, len(rows)),
		ColTotals: make([]int, len(cols)),
	}
	for i := range ct.Counts {
		ct.Counts[i] = make([]int, len(cols))
	}
	for r := 0; r < cs.rows; r++ {
		i, j := rowAt[rk.ids[r]], colAt[ck.ids[r]]
		ct.Counts[i][j]++
		ct.RowTotals[i]++
		ct.ColTotals[j]++
		ct.Total++
	}
	return ct, nil
}

// GroupedAggregate computes op over valueCol for each value of groupCol.
// Groups are sorted ascending. valueCol may be any column when op is count.
func (cs *ColumnStore) GroupedAggregate(groupCol, valueCol string, op Op) ([]models.GroupValue, error) {
	gk, err := cs.keys(groupCol)
	if err != nil {
		return nil, err
	}
	values, err := cs.opValues(valueCol, op)
	if err != nil {
		return nil, err
	}

	accs := make([]accumulator, len(gk.labels))
	for r := 0; r < cs.rows; r++ {
		accs[gk.ids[r]].add(values, r)
	}
	present := gk.present()
	out := make([]models.GroupValue, 0, len(present))
	for _, id := range present {
		a := accs[id]
		out = append(out, models.GroupValue{Group: gk.labels[id], Value: a.result(op), Count: a.n})
	}
	return out, nil
}

// PivotAggregate is GroupedAggregate over two grouping columns. Cells with
// no rows are nil.
func (cs *ColumnStore) PivotAggregate(rowCol, colCol, valueCol string, op Op) (models.Matrix, error) {
	rk, err := cs.keys(rowCol)
	if err != nil {
		return models.Matrix{}, err
	}
	ck, err := cs.keys(colCol)
	if err != nil {
		return models.Matrix{}, err
	}
	values, err := cs.opValues(valueCol, op)
	if err != nil {
		return models.Matrix{}, err
	}

	rows, rowAt := labelIndex(rk)
	cols, colAt := labelIndex(ck)
	accs := make([][]accumulator, len(rows))
	for i := range accs {
		accs[i] = make([]accumulator, len(cols))
	}
	for r := 0; r < cs.rows; r++ {
		accs[rowAt[rk.ids[r]]][colAt[ck.ids[r]]].add(values, r)
	}

	m := models.Matrix{RowColumn: rowCol, ColColumn: colCol, Rows: rows, Cols: cols, Cells: make([][]*float64, len(rows))}
	for i := range accs {
		m.Cells[i] = make([]*float64, len(cols))
		for j, a := range accs[i] {
			if a.n == 0 {
				continue
			}
			v := a.result(op)
			m.Cells[i][j] = &v
		}
	}
	return m, nil
}

// opValues validates valueCol for op. Count needs no numbers.
func (cs *ColumnStore) opValues(valueCol string, op Op) ([]float64, error) {
	if _, err := ParseOp(string(op)); err != nil {
		return nil, err
	}
	if op == OpCount {
		if _, err := cs.column(valueCol); err != nil {
			return nil, err
		}
		return nil, nil
	}
	c, err := cs.numeric(valueCol)
	if err != nil {
		return nil, err
	}
	return c.Numbers, nil
}

// labelIndex returns present labels in ascending order and the position of
// each label id in that order.
func labelIndex(k *keyed) ([]string, map[int32]int) {
	ids := k.present()
	labels := make([]string, len(ids))
	at := make(map[int32]int, len(ids))
	for i, id := range ids {
		labels[i] = k.labels[id]
		at[id] = i
	}
	return labels, at
}

type accumulator struct {
	n        int
	sum      decimal.Decimal
	min, max float64
}

func (a *accumulator) add(values []float64, row int) {
	if values == nil {
		a.n++
		return
	}
	v := values[row]
	if a.n == 0 || v > a.max {
		a.max = v
	}
	if a.n == 0 || v < a.min {
		a.min = v
	}
	a.sum = a.sum.Add(decimal.NewFromFloat(v))
	a.n++
}

func (a accumulator) result(op Op) float64 {
	switch op {
	case OpCount:
		return float64(a.n)
	case OpSum:
		f, _ := a.sum.Float64()
		return f
	case OpMean:
		return meanOf(a.sum, a.n)
	case OpMax:
		return a.max
	case OpMin:
		return a.min
	}
	return 0
}

func sumDecimal(values []float64) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total
}

func meanOf(sum decimal.Decimal, n int) float64 {
	if n == 0 {
		return 0
	}
	f, _ := sum.Div(decimal.NewFromInt(int64(n))).Float64()
	return f
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
