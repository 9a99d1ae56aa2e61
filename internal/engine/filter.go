package engine

import "sort"

// Selection maps a dimension to its accepted values. A dimension missing
// from the map accepts every value; a present dimension with no values
// accepts none.
type Selection map[string][]string

// Clone returns a deep copy.
func (s Selection) Clone() Selection {
	out := make(Selection, len(s))
	for k, v := range s {
		out[k] = append([]string{}, v...)
	}
	return out
}

// Dimensions returns the selected dimension names, sorted.
func (s Selection) Dimensions() []string {
	dims := make([]string, 0, len(s))
	for k := range s {
		dims = append(dims, k)
	}
	sort.Strings(dims)
	return dims
}

// AllSelected builds the selection that accepts every present value of the
// given dimensions.
func AllSelected(cs *ColumnStore, dims ...string) (Selection, error) {
	sel := make(Selection, len(dims))
	for _, d := range dims {
		values, err := cs.Distinct(d)
		if err != nil {
			return nil, err
		}
		sel[d] = values
	}
	return sel, nil
}

// Filter returns the rows whose values are accepted by every selected
// dimension, in their original order. When all rows match the receiver is
// returned as is. No match yields an empty store, not an error.
func (cs *ColumnStore) Filter(sel Selection) (*ColumnStore, error) {
	type predicate struct {
		ids    []int32
		accept []bool
	}
	preds := make([]predicate, 0, len(sel))
	for _, dim := range sel.Dimensions() {
		c, err := cs.dimension(dim)
		if err != nil {
			return nil, err
		}
		wanted := make(map[string]struct{}, len(sel[dim]))
		for _, v := range sel[dim] {
			wanted[v] = struct{}{}
		}
		accept := make([]bool, len(c.Dict))
		for id, v := range c.Dict {
			_, accept[id] = wanted[v]
		}
		preds = append(preds, predicate{ids: c.IDs, accept: accept})
	}
	if len(preds) == 0 {
		return cs, nil
	}

	rows := make([]int, 0, cs.rows)
	for r := 0; r < cs.rows; r++ {
		ok := true
		for _, p := range preds {
			if !p.accept[p.ids[r]] {
				ok = false
				break
			}
		}
		if ok {
			rows = append(rows, r)
		}
	}
	if len(rows) == cs.rows {
		return cs, nil
	}
	return cs.take(rows), nil
}
