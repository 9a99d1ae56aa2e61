package models

// NoDataLabel is shown in place of a value when the filtered data is empty.
const NoDataLabel = "N/A"

// Scalar is a numeric aggregate. NoData is set when there were no rows.
type Scalar struct {
	Value  float64 `json:"value"`
	NoData bool    `json:"no_data,omitempty"`
}

// Label is a categorical aggregate such as a mode.
type Label struct {
	Value  string `json:"value"`
	NoData bool   `json:"no_data,omitempty"`
}

type ValueCount struct {
	Value   string  `json:"value"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// CrossTab counts rows per (row, column) pair. Counts[i][j] belongs to
// Rows[i] and Cols[j].
type CrossTab struct {
	RowColumn string   `json:"row_column"`
	ColColumn string   `json:"col_column"`
	Rows      []string `json:"rows"`
	Cols      []string `json:"cols"`
	Counts    [][]int  `json:"counts"`
	RowTotals []int    `json:"row_totals"`
	ColTotals []int    `json:"col_totals"`
	Total     int      `json:"total"`
}

// Matrix is a two-key aggregate; nil cells had no rows.
type Matrix struct {
	RowColumn string       `json:"row_column"`
	ColColumn string       `json:"col_column"`
	Rows      []string     `json:"rows"`
	Cols      []string     `json:"cols"`
	Cells     [][]*float64 `json:"cells"`
}

type GroupValue struct {
	Group string  `json:"group"`
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

type Bin struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Count int     `json:"count"`
}

type HistogramSeries struct {
	Group string `json:"group"`
	Bins  []Bin  `json:"bins"`
}

type BoxStats struct {
	Group  string  `json:"group"`
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

type RegionCount struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Metric is one rendered KPI tile.
type Metric struct {
	ID      string  `json:"id"`
	Label   string  `json:"label"`
	Display string  `json:"display"`
	Value   float64 `json:"value"`
	Text    string  `json:"text,omitempty"`
	NoData  bool    `json:"no_data,omitempty"`
}

// Chart carries the data behind one visual. Exactly one payload field is
// set, depending on Kind.
type Chart struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Kind   string `json:"kind"`
	XLabel string `json:"x_label,omitempty"`
	YLabel string `json:"y_label,omitempty"`
	NoData bool   `json:"no_data,omitempty"`

	Points    []Point           `json:"points,omitempty"`
	Histogram []HistogramSeries `json:"histogram,omitempty"`
	Boxes     []BoxStats        `json:"boxes,omitempty"`
	CrossTab  *CrossTab         `json:"crosstab,omitempty"`
	Matrix    *Matrix           `json:"matrix,omitempty"`
	Regions   []RegionCount     `json:"regions,omitempty"`
}

// PageView is one evaluated dashboard page.
type PageView struct {
	Slug    string              `json:"slug"`
	Title   string              `json:"title"`
	Filters map[string][]string `json:"filters"`
	Rows    int                 `json:"rows"`
	Empty   bool                `json:"empty"`
	Notice  string              `json:"notice,omitempty"`
	Metrics []Metric            `json:"metrics"`
	Charts  []Chart             `json:"charts"`
}

type PageInfo struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

type DatasetInfo struct {
	Source      string   `json:"source"`
	Rows        int      `json:"rows"`
	Columns     []string `json:"columns"`
	Fingerprint string   `json:"fingerprint"`
}
