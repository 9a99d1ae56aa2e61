package geo

import (
	"shopstats/internal/models"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode(t *testing.T) {
	code, ok := Code(" new york ")
	assert.True(t, ok)
	assert.Equal(t, "NY", code)

	_, ok = Code("Atlantis")
	assert.False(t, ok)
	assert.Len(t, stateCodes, 50)
}

func TestChoropleth(t *testing.T) {
	got := Choropleth([]models.ValueCount{
		{Value: "Maine", Count: 4},
		{Value: "Kentucky", Count: 3},
		{Value: "Atlantis", Count: 9},
		{Value: "maine", Count: 1},
	})

	assert.Equal(t, []models.RegionCount{
		{Code: "KY", Name: "Kentucky", Count: 3},
		{Code: "ME", Name: "Maine", Count: 5},
	}, got)
}

func TestChoroplethEmpty(t *testing.T) {
	assert.Empty(t, Choropleth(nil))
}
