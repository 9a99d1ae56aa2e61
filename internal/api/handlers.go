package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"shopstats/internal/dashboard"
	"shopstats/internal/engine"
	"shopstats/internal/models"
	"shopstats/internal/render"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/labstack/echo/v4"
)

// filterParams maps query parameters to the dimensions they select.
var filterParams = map[string]string{
	"category": engine.ColCategory,
	"season":   engine.ColSeason,
}

// Handler serves the dashboard from the published store. Until a store is
// published every data route answers 503.
type Handler struct {
	store atomic.Pointer[engine.ColumnStore]
	chart render.Size
}

func NewHandler(store *engine.ColumnStore, chart render.Size) *Handler {
	h := &Handler{chart: chart}
	if store != nil {
		h.store.Store(store)
	}
	return h
}

// SetStore publishes a loaded dataset.
func (h *Handler) SetStore(cs *engine.ColumnStore) {
	h.store.Store(cs)
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api")
	api.GET("/health", h.GetHealth)
	api.GET("/dataset", h.GetDataset)
	api.GET("/dimensions", h.GetDimensions)
	api.GET("/pages", h.GetPages)
	api.GET("/pages/:slug", h.GetPage)
	api.GET("/pages/:slug/html", h.GetPageHTML)
	api.GET("/pages/:slug/charts/:chart", h.GetChartImage)
	api.GET("/aggregate/:op", h.GetAggregate)
}

func (h *Handler) ready() (*engine.ColumnStore, error) {
	cs := h.store.Load()
	if cs == nil {
		return nil, echo.NewHTTPError(http.StatusServiceUnavailable, "dataset is loading")
	}
	return cs, nil
}

// httpError maps engine errors to client errors; anything else stays a 500.
func httpError(err error) error {
	switch {
	case errors.Is(err, engine.ErrInvalidColumn), errors.Is(err, engine.ErrInvalidArgument):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	case errors.Is(err, engine.ErrDataUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error()).SetInternal(err)
	}
	return err
}

// SelectionFromQuery reads the filter parameters. An absent parameter keeps
// every value; a present one, repeated or comma separated, restricts the
// dimension and may leave it empty.
func SelectionFromQuery(c echo.Context) engine.Selection {
	query := c.QueryParams()
	sel := engine.Selection{}
	for param, dim := range filterParams {
		raw, ok := query[param]
		if !ok {
			continue
		}
		values := []string{}
		for _, r := range raw {
			for _, v := range strings.Split(r, ",") {
				if v = strings.TrimSpace(v); v != "" {
					values = append(values, v)
				}
			}
		}
		sel[dim] = values
	}
	return sel
}

// --- HANDLERS ---
func getPaginationParams(c echo.Context, defaultLimit int) (int, int) {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	offset, err := strconv.Atoi(c.QueryParam("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (h *Handler) GetHealth(c echo.Context) error {
	cs := h.store.Load()
	if cs == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "loading"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"status": "ok", "rows": cs.Rows()})
}

func (h *Handler) GetDataset(c echo.Context) error {
	cs, err := h.ready()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, models.DatasetInfo{
		Source:      cs.Source(),
		Rows:        cs.Rows(),
		Columns:     cs.Columns(),
		Fingerprint: fmt.Sprintf("%016x", cs.Fingerprint()),
	})
}

// GetDimensions lists the values offered by each sidebar filter.
func (h *Handler) GetDimensions(c echo.Context) error {
	cs, err := h.ready()
	if err != nil {
		return err
	}
	sel, err := engine.AllSelected(cs, dashboard.FilterDimensions...)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, sel)
}

func (h *Handler) GetPages(c echo.Context) error {
	pages := dashboard.Pages()
	out := make([]models.PageInfo, len(pages))
	for i, p := range pages {
		out[i] = models.PageInfo{Slug: p.Slug, Title: p.Title}
	}
	return c.JSON(http.StatusOK, out)
}

func (h *Handler) GetPage(c echo.Context) error {
	cs, err := h.ready()
	if err != nil {
		return err
	}
	page, ok := dashboard.Lookup(c.Param("slug"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown page")
	}
	view, err := dashboard.Evaluate(cs, page, SelectionFromQuery(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, view)
}

// GetPageHTML serves the page as an interactive chart document.
func (h *Handler) GetPageHTML(c echo.Context) error {
	cs, err := h.ready()
	if err != nil {
		return err
	}
	page, ok := dashboard.Lookup(c.Param("slug"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown page")
	}
	view, err := dashboard.Evaluate(cs, page, SelectionFromQuery(c))
	if err != nil {
		return httpError(err)
	}
	var buf bytes.Buffer
	if err := render.PageHTML(&buf, view); err != nil {
		return err
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

// GetChartImage renders one chart of a page as PNG. Charts without an image
// form answer 415; charts with nothing to draw answer 204.
func (h *Handler) GetChartImage(c echo.Context) error {
	cs, err := h.ready()
	if err != nil {
		return err
	}
	page, ok := dashboard.Lookup(c.Param("slug"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown page")
	}
	def, ok := page.Chart(c.Param("chart"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown chart")
	}
	filtered, err := cs.Filter(SelectionFromQuery(c))
	if err != nil {
		return httpError(err)
	}
	data, err := dashboard.EvaluateChart(filtered, def)
	if err != nil {
		return httpError(err)
	}
	img, err := render.PNG(data, h.chart)
	switch {
	case errors.Is(err, render.ErrUnsupported):
		return echo.NewHTTPError(http.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, render.ErrNoData):
		return c.NoContent(http.StatusNoContent)
	case err != nil:
		return err
	}
	return c.Blob(http.StatusOK, "image/png", img)
}

type aggregateResponse struct {
	Op     string      `json:"op"`
	Rows   int         `json:"rows"`
	Result interface{} `json:"result"`
}

// GetAggregate runs one catalogue operation on the filtered store.
func (h *Handler) GetAggregate(c echo.Context) error {
	cs, err := h.ready()
	if err != nil {
		return err
	}
	filtered, err := cs.Filter(SelectionFromQuery(c))
	if err != nil {
		return httpError(err)
	}
	op := c.Param("op")
	if op == "frequency" {
		return h.frequency(c, filtered)
	}
	result, err := aggregate(c, filtered, op)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, aggregateResponse{Op: op, Rows: filtered.Rows(), Result: result})
}

// frequency pages through ValueFrequency with limit/offset.
func (h *Handler) frequency(c echo.Context, cs *engine.ColumnStore) error {
	stats, err := cs.ValueFrequency(c.QueryParam("column"))
	if err != nil {
		return httpError(err)
	}
	total := len(stats)
	limit, offset := getPaginationParams(c, total)

	if offset >= total {
		stats = []models.ValueCount{}
	} else {
		end := offset + limit
		if end > total {
			end = total
		}
		stats = stats[offset:end]
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":   stats,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func aggregate(c echo.Context, cs *engine.ColumnStore, op string) (interface{}, error) {
	column := c.QueryParam("column")
	column2 := c.QueryParam("column2")
	value := c.QueryParam("value")

	switch op {
	case "count":
		return cs.Count(), nil
	case "distinct":
		return cs.DistinctCount(column)
	case "sum":
		return cs.Sum(column)
	case "mean":
		return cs.Mean(column)
	case "max":
		return cs.Max(column)
	case "min":
		return cs.Min(column)
	case "rate":
		return cs.Rate(column, c.QueryParam("match"))
	case "rate_above":
		threshold, err := floatParam(c, "threshold", 0)
		if err != nil {
			return nil, err
		}
		return cs.RateAbove(column, threshold)
	case "top":
		n, err := intParam(c, "n", 10)
		if err != nil {
			return nil, err
		}
		return cs.TopN(column, n)
	case "mode":
		return cs.Mode(column)
	case "crosstab":
		return cs.CrossTab(column, column2)
	case "grouped", "pivot":
		agg, err := engine.ParseOp(defaultString(c.QueryParam("agg"), string(engine.OpMean)))
		if err != nil {
			return nil, err
		}
		if op == "grouped" {
			return cs.GroupedAggregate(column, value, agg)
		}
		return cs.PivotAggregate(column, column2, value, agg)
	case "histogram":
		bins, err := intParam(c, "bins", 30)
		if err != nil {
			return nil, err
		}
		if column2 != "" {
			return cs.HistogramBy(column, column2, bins)
		}
		return cs.Histogram(column, bins)
	case "box":
		return cs.BoxPlot(column, value)
	}
	return nil, echo.NewHTTPError(http.StatusNotFound, "unknown aggregate "+op)
}

func intParam(c echo.Context, name string, def int) (int, error) {
	s := c.QueryParam(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", engine.ErrInvalidArgument, name)
	}
	return v, nil
}

func floatParam(c echo.Context, name string, def float64) (float64, error) {
	s := c.QueryParam(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", engine.ErrInvalidArgument, name)
	}
	return v, nil
}

func defaultString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
