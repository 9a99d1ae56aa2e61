// Package geo maps the free-text purchase locations to US postal codes for
// the choropleth view.
package geo

import (
	"shopstats/internal/models"
	"sort"
	"strings"
)

var stateCodes = map[string]string{
	"Alabama": "AL", "Alaska": "AK", "Arizona": "AZ", "Arkansas": "AR",
	"California": "CA", "Colorado": "CO", "Connecticut": "CT", "Delaware": "DE",
	"Florida": "FL", "Georgia": "GA", "Hawaii": "HI", "Idaho": "ID",
	"Illinois": "IL", "Indiana": "IN", "Iowa": "IA", "Kansas": "KS",
	"Kentucky": "KY", "Louisiana": "LA", "Maine": "ME", "Maryland": "MD",
	"Massachusetts": "MA", "Michigan": "MI", "Minnesota": "MN", "Mississippi": "MS",
	"Missouri": "MO", "Montana": "MT", "Nebraska": "NE", "Nevada": "NV",
	"New Hampshire": "NH", "New Jersey": "NJ", "New Mexico": "NM", "New York": "NY",
	"North Carolina": "NC", "North Dakota": "ND", "Ohio": "OH", "Oklahoma": "OK",
	"Oregon": "OR", "Pennsylvania": "PA", "Rhode Island": "RI", "South Carolina": "SC",
	"South Dakota": "SD", "Tennessee": "TN", "Texas": "TX", "Utah": "UT",
	"Vermont": "VT", "Virginia": "VA", "Washington": "WA", "West Virginia": "WV",
	"Wisconsin": "WI", "Wyoming": "WY",
}

var byFold = func() map[string]string {
	m := make(map[string]string, len(stateCodes))
	for name, code := range stateCodes {
		m[strings.ToLower(name)] = code
	}
	return m
}()

// Code returns the postal code of a state name, ignoring case and
// surrounding space.
func Code(location string) (string, bool) {
	code, ok := byFold[strings.ToLower(strings.TrimSpace(location))]
	return code, ok
}

// Choropleth folds location counts into per-state counts, sorted by code.
// Locations that are not US states are dropped.
func Choropleth(locations []models.ValueCount) []models.RegionCount {
	at := map[string]int{}
	out := []models.RegionCount{}
	for _, lc := range locations {
		code, ok := Code(lc.Value)
		if !ok {
			continue
		}
		if i, seen := at[code]; seen {
			out[i].Count += lc.Count
			continue
		}
		at[code] = len(out)
		out = append(out, models.RegionCount{Code: code, Name: strings.TrimSpace(lc.Value), Count: lc.Count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}
