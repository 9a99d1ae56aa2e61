package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func retailHeader() string {
	names := make([]string, len(RetailSchema))
	for i, def := range RetailSchema {
		names[i] = def.Name
	}
	return strings.Join(names, ",")
}

// Five purchases over Clothing/Accessories x Winter/Summer.
// Clothing amounts: 10.5, 20, 45.25 (mean 25.25).
var sampleRows = []string{
	"1,30,Male,Shirt,Clothing,10.5,Kentucky,M,Blue,Winter,3.5,Yes,Venmo,Express,Yes,Yes,5,Cash,Weekly",
	"2,40,Female,Shirt,Clothing,20,Maine,L,Red,Summer,4.0,No,Cash,Free Shipping,No,No,0,Venmo,Monthly",
	"3,25,Male,Hat,Accessories,30,Kentucky,S,Blue,Winter,5.0,No,Venmo,Express,No,No,12,Venmo,Weekly",
	"4,50,Female,Shirt,Clothing,45.25,New York,M,Green,Winter,2.5,Yes,PayPal,Standard,Yes,Yes,3,Cash,Annually",
	"5,35,Male,Hat,Accessories,60,Maine,L,Red,Summer,4.5,No,Cash,Standard,No,No,1,PayPal,Monthly",
}

func writeCSV(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "purchases.csv")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func loadSample(t *testing.T) *ColumnStore {
	t.Helper()
	cs, err := LoadColumnar(writeCSV(t, append([]string{retailHeader()}, sampleRows...)...), RetailSchema)
	require.NoError(t, err)
	return cs
}

// dimStore builds a single-dimension store without touching disk.
func dimStore(t *testing.T, name string, values ...string) *ColumnStore {
	t.Helper()
	col := &Column{Name: name, Kind: Dimension}
	at := map[string]int32{}
	for _, v := range values {
		id, ok := at[v]
		if !ok {
			id = int32(len(col.Dict))
			at[v] = id
			col.Dict = append(col.Dict, v)
		}
		col.IDs = append(col.IDs, id)
	}
	cs, err := NewColumnStore("memory", 0, []*Column{col})
	require.NoError(t, err)
	return cs
}
