package api

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"shopstats/internal/engine"
	"shopstats/internal/models"
	"shopstats/internal/render"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var purchases = []string{
	"1,30,Male,Shirt,Clothing,10.5,Kentucky,M,Blue,Winter,3.5,Yes,Venmo,Express,Yes,Yes,5,Cash,Weekly",
	"2,40,Female,Shirt,Clothing,20,Maine,L,Red,Summer,4.0,No,Cash,Free Shipping,No,No,0,Venmo,Monthly",
	"3,25,Male,Hat,Accessories,30,Kentucky,S,Blue,Winter,5.0,No,Venmo,Express,No,No,12,Venmo,Weekly",
	"4,50,Female,Shirt,Clothing,45.25,New York,M,Green,Winter,2.5,Yes,PayPal,Standard,Yes,Yes,3,Cash,Annually",
	"5,35,Male,Hat,Accessories,60,Maine,L,Red,Summer,4.5,No,Cash,Standard,No,No,1,PayPal,Monthly",
}

func loadPurchases(t *testing.T) *engine.ColumnStore {
	t.Helper()
	names := make([]string, len(engine.RetailSchema))
	for i, def := range engine.RetailSchema {
		names[i] = def.Name
	}
	lines := append([]string{strings.Join(names, ",")}, purchases...)
	path := filepath.Join(t.TempDir(), "purchases.csv")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	cs, err := engine.LoadColumnar(path, engine.RetailSchema)
	require.NoError(t, err)
	return cs
}

func newTestServer(t *testing.T, cs *engine.ColumnStore, rateLimit float64) *echo.Echo {
	t.Helper()
	h := NewHandler(cs, render.Size{Width: 480, Height: 320})
	return NewServer(h, slog.New(slog.NewTextHandler(io.Discard, nil)), rateLimit)
}

func get(e *echo.Echo, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestLoadingState(t *testing.T) {
	h := NewHandler(nil, render.Size{Width: 480, Height: 320})
	e := NewServer(h, slog.New(slog.NewTextHandler(io.Discard, nil)), 0)

	assert.Equal(t, http.StatusServiceUnavailable, get(e, "/api/health").Code)
	assert.Equal(t, http.StatusServiceUnavailable, get(e, "/api/pages/home").Code)
	assert.Equal(t, http.StatusOK, get(e, "/api/pages").Code)

	h.SetStore(loadPurchases(t))
	assert.Equal(t, http.StatusOK, get(e, "/api/health").Code)
	assert.Equal(t, http.StatusOK, get(e, "/api/pages/home").Code)
}

func TestDatasetAndDimensions(t *testing.T) {
	e := newTestServer(t, loadPurchases(t), 0)

	rec := get(e, "/api/dataset")
	require.Equal(t, http.StatusOK, rec.Code)
	var info models.DatasetInfo
	decode(t, rec, &info)
	assert.Equal(t, 5, info.Rows)
	assert.Len(t, info.Fingerprint, 16)
	assert.Contains(t, info.Columns, engine.ColAmount)

	rec = get(e, "/api/dimensions")
	require.Equal(t, http.StatusOK, rec.Code)
	var dims map[string][]string
	decode(t, rec, &dims)
	assert.Equal(t, []string{"Clothing", "Accessories"}, dims[engine.ColCategory])
	assert.Equal(t, []string{"Winter", "Summer"}, dims[engine.ColSeason])
}

func TestGetPageFilters(t *testing.T) {
	e := newTestServer(t, loadPurchases(t), 0)

	tests := []struct {
		name  string
		query string
		rows  int
		empty bool
	}{
		{"no filters", "", 5, false},
		{"single category", "?category=Clothing", 3, false},
		{"comma separated", "?category=Clothing,Accessories&season=Winter", 3, false},
		{"repeated", "?season=Winter&season=Summer&category=Accessories", 2, false},
		{"empty category", "?category=", 0, true},
		{"unknown value", "?season=Monsoon", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(e, "/api/pages/home"+tt.query)
			require.Equal(t, http.StatusOK, rec.Code)
			var view models.PageView
			decode(t, rec, &view)
			assert.Equal(t, tt.rows, view.Rows)
			assert.Equal(t, tt.empty, view.Empty)
		})
	}

	assert.Equal(t, http.StatusNotFound, get(e, "/api/pages/nope").Code)
}

func TestChartImage(t *testing.T) {
	e := newTestServer(t, loadPurchases(t), 0)

	rec := get(e, "/api/pages/home/charts/sales_by_category")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))

	assert.Equal(t, http.StatusUnsupportedMediaType, get(e, "/api/pages/home/charts/category_season").Code)
	assert.Equal(t, http.StatusNoContent, get(e, "/api/pages/home/charts/gender?category=").Code)
	assert.Equal(t, http.StatusNotFound, get(e, "/api/pages/home/charts/nope").Code)
}

func TestAggregate(t *testing.T) {
	e := newTestServer(t, loadPurchases(t), 0)

	var resp struct {
		Op     string          `json:"op"`
		Rows   int             `json:"rows"`
		Result json.RawMessage `json:"result"`
	}

	rec := get(e, "/api/aggregate/mean?column=Purchase+Amount+(USD)&category=Clothing")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &resp)
	assert.Equal(t, 3, resp.Rows)
	var mean models.Scalar
	require.NoError(t, json.Unmarshal(resp.Result, &mean))
	assert.InDelta(t, 25.25, mean.Value, 1e-9)

	rec = get(e, "/api/aggregate/mean?column=Purchase+Amount+(USD)&category=")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &resp)
	require.NoError(t, json.Unmarshal(resp.Result, &mean))
	assert.True(t, mean.NoData)

	rec = get(e, "/api/aggregate/grouped?column=Category&value=Purchase+Amount+(USD)&agg=sum")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &resp)
	var groups []models.GroupValue
	require.NoError(t, json.Unmarshal(resp.Result, &groups))
	require.Len(t, groups, 2)
	assert.Equal(t, "Accessories", groups[0].Group)
	assert.InDelta(t, 90, groups[0].Value, 1e-9)

	rec = get(e, "/api/aggregate/mode?column=Payment+Method")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &resp)
	var mode models.Label
	require.NoError(t, json.Unmarshal(resp.Result, &mode))
	assert.Equal(t, "Cash", mode.Value)
}

func TestAggregateFrequencyPagination(t *testing.T) {
	e := newTestServer(t, loadPurchases(t), 0)

	rec := get(e, "/api/aggregate/frequency?column=Location&limit=2&offset=1")
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Data   []models.ValueCount `json:"data"`
		Total  int                 `json:"total"`
		Limit  int                 `json:"limit"`
		Offset int                 `json:"offset"`
	}
	decode(t, rec, &page)
	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Data, 2)
	assert.Equal(t, "Maine", page.Data[0].Value)
	assert.Equal(t, "New York", page.Data[1].Value)

	rec = get(e, "/api/aggregate/frequency?column=Location&offset=10")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &page)
	assert.Empty(t, page.Data)
}

func TestAggregateErrors(t *testing.T) {
	e := newTestServer(t, loadPurchases(t), 0)

	tests := []struct {
		target string
		code   int
	}{
		{"/api/aggregate/mean?column=Nope", http.StatusBadRequest},
		{"/api/aggregate/mean?column=Category", http.StatusBadRequest},
		{"/api/aggregate/top?column=Item&n=0", http.StatusBadRequest},
		{"/api/aggregate/top?column=Item&n=abc", http.StatusBadRequest},
		{"/api/aggregate/histogram?column=Age&bins=-1", http.StatusBadRequest},
		{"/api/aggregate/histogram?column=Age&bins=1001", http.StatusBadRequest},
		{"/api/aggregate/histogram?column=Age&column2=Gender&bins=9223372036854775807", http.StatusBadRequest},
		{"/api/aggregate/grouped?column=Category&value=Age&agg=median", http.StatusBadRequest},
		{"/api/aggregate/median?column=Age", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			assert.Equal(t, tt.code, get(e, tt.target).Code)
		})
	}
}

func TestRateLimiter(t *testing.T) {
	e := newTestServer(t, loadPurchases(t), 1)
	assert.Equal(t, http.StatusOK, get(e, "/api/health").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(e, "/api/health").Code)
}

func TestPageHTML(t *testing.T) {
	e := newTestServer(t, loadPurchases(t), 0)

	rec := get(e, "/api/pages/seasons/html?category=Clothing")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/html")
	assert.Contains(t, rec.Body.String(), "Purchases by season")

	assert.Equal(t, http.StatusNotFound, get(e, "/api/pages/nope/html").Code)
}
