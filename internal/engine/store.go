package engine

import (
	"fmt"
	"strconv"
)

// Kind tells how a column is stored.
type Kind int

const (
	// Dimension columns are dictionary encoded strings.
	Dimension Kind = iota
	// Numeric columns are flat float64 arrays.
	Numeric
)

func (k Kind) String() string {
	if k == Numeric {
		return "numeric"
	}
	return "dimension"
}

// ColumnDef declares one required column of a Schema.
type ColumnDef struct {
	Name string
	Kind Kind
}

// Schema is the ordered list of columns a source file must provide.
type Schema []ColumnDef

// Retail column names, as they appear in the source header.
const (
	ColCustomerID       = "Customer ID"
	ColAge              = "Age"
	ColGender           = "Gender"
	ColItem             = "Item Purchased"
	ColCategory         = "Category"
	ColAmount           = "Purchase Amount (USD)"
	ColLocation         = "Location"
	ColSize             = "Size"
	ColColor            = "Color"
	ColSeason           = "Season"
	ColRating           = "Review Rating"
	ColSubscription     = "Subscription Status"
	ColPaymentMethod    = "Payment Method"
	ColShippingType     = "Shipping Type"
	ColDiscount         = "Discount Applied"
	ColPromoCode        = "Promo Code Used"
	ColPreviousPurchase = "Previous Purchases"
	ColPreferredPayment = "Preferred Payment Method"
	ColFrequency        = "Frequency of Purchases"
)

// RetailSchema describes the shopping trends purchase file.
var RetailSchema = Schema{
	{ColCustomerID, Dimension},
	{ColAge, Numeric},
	{ColGender, Dimension},
	{ColItem, Dimension},
	{ColCategory, Dimension},
	{ColAmount, Numeric},
	{ColLocation, Dimension},
	{ColSize, Dimension},
	{ColColor, Dimension},
	{ColSeason, Dimension},
	{ColRating, Numeric},
	{ColSubscription, Dimension},
	{ColPaymentMethod, Dimension},
	{ColShippingType, Dimension},
	{ColDiscount, Dimension},
	{ColPromoCode, Dimension},
	{ColPreviousPurchase, Numeric},
	{ColPreferredPayment, Dimension},
	{ColFrequency, Dimension},
}

// Column holds one column in Struct-of-Arrays form.
type Column struct {
	Name string
	Kind Kind

	// Dimension columns: ids into Dict, Dict in first-seen file order.
	IDs  []int32
	Dict []string

	// Numeric columns.
	Numbers []float64
}

// ColumnStore is an immutable in-memory table. Filtered stores share
// dictionaries with the store they were derived from.
type ColumnStore struct {
	source      string
	fingerprint uint64
	rows        int
	columns     []*Column
	index       map[string]int
}

// NewColumnStore assembles a store from prepared columns. Every column must
// have the same length.
func NewColumnStore(source string, fingerprint uint64, cols []*Column) (*ColumnStore, error) {
	cs := &ColumnStore{
		source:      source,
		fingerprint: fingerprint,
		columns:     cols,
		index:       make(map[string]int, len(cols)),
	}
	for i, c := range cols {
		n := c.len()
		if i == 0 {
			cs.rows = n
		} else if n != cs.rows {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", c.Name, n, cs.rows)
		}
		if _, dup := cs.index[c.Name]; dup {
			return nil, fmt.Errorf("duplicate column %q", c.Name)
		}
		cs.index[c.Name] = i
	}
	return cs, nil
}

func (c *Column) len() int {
	if c.Kind == Numeric {
		return len(c.Numbers)
	}
	return len(c.IDs)
}

// Rows returns the number of records.
func (cs *ColumnStore) Rows() int { return cs.rows }

// Count is the row count, named for use as an aggregate.
func (cs *ColumnStore) Count() int { return cs.rows }

// Source is the path the store was loaded from.
func (cs *ColumnStore) Source() string { return cs.source }

// Fingerprint is the xxh3 hash of the source bytes.
func (cs *ColumnStore) Fingerprint() uint64 { return cs.fingerprint }

// Columns lists column names in schema order.
func (cs *ColumnStore) Columns() []string {
	names := make([]string, len(cs.columns))
	for i, c := range cs.columns {
		names[i] = c.Name
	}
	return names
}

// HasColumn reports whether name is a column of the store.
func (cs *ColumnStore) HasColumn(name string) bool {
	_, ok := cs.index[name]
	return ok
}

// Kind returns the kind of a column.
func (cs *ColumnStore) Kind(name string) (Kind, error) {
	c, err := cs.column(name)
	if err != nil {
		return 0, err
	}
	return c.Kind, nil
}

func (cs *ColumnStore) column(name string) (*Column, error) {
	i, ok := cs.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q not found", ErrInvalidColumn, name)
	}
	return cs.columns[i], nil
}

func (cs *ColumnStore) numeric(name string) (*Column, error) {
	c, err := cs.column(name)
	if err != nil {
		return nil, err
	}
	if c.Kind != Numeric {
		return nil, fmt.Errorf("%w: %q is not numeric", ErrInvalidColumn, name)
	}
	return c, nil
}

func (cs *ColumnStore) dimension(name string) (*Column, error) {
	c, err := cs.column(name)
	if err != nil {
		return nil, err
	}
	if c.Kind != Dimension {
		return nil, fmt.Errorf("%w: %q is not a dimension", ErrInvalidColumn, name)
	}
	return c, nil
}

// Value returns the textual value of a cell.
func (cs *ColumnStore) Value(name string, row int) (string, error) {
	c, err := cs.column(name)
	if err != nil {
		return "", err
	}
	if row < 0 || row >= cs.rows {
		return "", fmt.Errorf("%w: row %d out of range", ErrInvalidArgument, row)
	}
	if c.Kind == Numeric {
		return formatNumber(c.Numbers[row]), nil
	}
	return c.Dict[c.IDs[row]], nil
}

// Distinct returns the values of a dimension present in the store, in
// first-seen order.
func (cs *ColumnStore) Distinct(name string) ([]string, error) {
	c, err := cs.dimension(name)
	if err != nil {
		return nil, err
	}
	seen := make([]bool, len(c.Dict))
	for _, id := range c.IDs {
		seen[id] = true
	}
	out := make([]string, 0, len(c.Dict))
	for id, ok := range seen {
		if ok {
			out = append(out, c.Dict[id])
		}
	}
	return out, nil
}

// take builds a store holding only the given rows, in order.
func (cs *ColumnStore) take(rows []int) *ColumnStore {
	out := &ColumnStore{
		source:      cs.source,
		fingerprint: cs.fingerprint,
		rows:        len(rows),
		columns:     make([]*Column, len(cs.columns)),
		index:       cs.index,
	}
	for i, c := range cs.columns {
		nc := &Column{Name: c.Name, Kind: c.Kind, Dict: c.Dict}
		if c.Kind == Numeric {
			nc.Numbers = make([]float64, len(rows))
			for k, r := range rows {
				nc.Numbers[k] = c.Numbers[r]
			}
		} else {
			nc.IDs = make([]int32, len(rows))
			for k, r := range rows {
				nc.IDs[k] = c.IDs[r]
			}
		}
		out.columns[i] = nc
	}
	return out
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
