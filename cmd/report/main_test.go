package main

import (
	"shopstats/internal/engine"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectionFlags(t *testing.T) {
	var category, season listFlag
	assert.Empty(t, selection(category, season))

	assert.NoError(t, category.Set("Clothing, Footwear"))
	assert.NoError(t, category.Set("Outerwear"))
	assert.NoError(t, season.Set(""))

	sel := selection(category, season)
	assert.Equal(t, []string{"Clothing", "Footwear", "Outerwear"}, sel[engine.ColCategory])
	assert.Contains(t, sel, engine.ColSeason)
	assert.Empty(t, sel[engine.ColSeason])
}

func TestRunUnknownPage(t *testing.T) {
	assert.ErrorContains(t, run("missing.csv", "nope", "table", nil), "unknown page")
}
