package dashboard

import (
	"shopstats/internal/engine"
)

// FilterDimensions are the sidebar filters shared by every page.
var FilterDimensions = []string{engine.ColCategory, engine.ColSeason}

// MetricKind names the catalogue call behind a KPI tile.
type MetricKind string

const (
	MetricCount     MetricKind = "count"
	MetricDistinct  MetricKind = "distinct"
	MetricMean      MetricKind = "mean"
	MetricSum       MetricKind = "sum"
	MetricMax       MetricKind = "max"
	MetricRate      MetricKind = "rate"
	MetricRateAbove MetricKind = "rate_above"
	MetricMode      MetricKind = "mode"
	// MetricLift compares the mean of Column between the Match and Baseline
	// values of Dimension, as a percentage of the baseline mean.
	MetricLift MetricKind = "lift"
)

type Metric struct {
	ID        string
	Label     string
	Kind      MetricKind
	Column    string
	Match     string
	Threshold float64
	Dimension string
	Baseline  string
	// Where narrows the page selection for this metric only.
	Where     engine.Selection
	Format    Format
}

// ChartKind is the visual a chart is meant for.
type ChartKind string

const (
	ChartBar        ChartKind = "bar"
	ChartPie        ChartKind = "pie"
	ChartDonut      ChartKind = "donut"
	ChartHistogram  ChartKind = "histogram"
	ChartBox        ChartKind = "box"
	ChartHeatmap    ChartKind = "heatmap"
	ChartChoropleth ChartKind = "choropleth"
)

// Source is the aggregate feeding a chart.
type Source string

const (
	SourceFrequency Source = "frequency"
	SourceTopN      Source = "top_n"
	SourceGrouped   Source = "grouped"
	SourceCrossTab  Source = "crosstab"
	SourcePivot     Source = "pivot"
	SourceHistogram Source = "histogram"
	SourceBox       Source = "box"
	SourceGeo       Source = "geo"
)

type Chart struct {
	ID     string
	Title  string
	Kind   ChartKind
	Source Source

	// Column is the grouping (or histogram) column, Column2 the second
	// grouping or split column, Value the measured column.
	Column  string
	Column2 string
	Value   string
	Op      engine.Op
	N       int
	Bins    int
	XLabel  string
	YLabel  string
}

type Page struct {
	Slug    string
	Title   string
	Metrics []Metric
	Charts  []Chart
}

func frequency(id, title string, kind ChartKind, column string) Chart {
	return Chart{ID: id, Title: title, Kind: kind, Source: SourceFrequency, Column: column, XLabel: column, YLabel: "Purchases"}
}

func grouped(id, title, column string, op engine.Op, ylabel string) Chart {
	return Chart{ID: id, Title: title, Kind: ChartBar, Source: SourceGrouped, Column: column, Value: engine.ColAmount, Op: op, XLabel: column, YLabel: ylabel}
}

func seasonMean(season string) Metric {
	return Metric{
		ID:     "avg_" + season,
		Label:  "Average " + season,
		Kind:   MetricMean,
		Column: engine.ColAmount,
		Where:  engine.Selection{engine.ColSeason: {season}},
		Format: FormatCurrency,
	}
}

var (
	customersMetric = Metric{ID: "customers", Label: "Customers", Kind: MetricDistinct, Column: engine.ColCustomerID, Format: FormatInt}
	basketMetric    = Metric{ID: "avg_basket", Label: "Average basket", Kind: MetricMean, Column: engine.ColAmount, Format: FormatCurrency}
	subRateMetric   = Metric{ID: "subscription_rate", Label: "Subscription rate", Kind: MetricRate, Column: engine.ColSubscription, Match: "Yes", Format: FormatPercent}
	heatmapCatSeas  = Chart{ID: "category_season", Title: "Purchases by category and season", Kind: ChartHeatmap, Source: SourceCrossTab, Column: engine.ColCategory, Column2: engine.ColSeason, XLabel: "Season", YLabel: "Category"}
	paymentDonut    = frequency("payment_methods", "Payment methods", ChartDonut, engine.ColPaymentMethod)
	frequencyDonut  = frequency("purchase_frequency", "Purchase frequency", ChartDonut, engine.ColFrequency)
	genderDonut     = frequency("gender", "Customers by gender", ChartDonut, engine.ColGender)
	amountHistogram = Chart{ID: "amount_distribution", Title: "Purchase amount distribution", Kind: ChartHistogram, Source: SourceHistogram, Column: engine.ColAmount, Bins: 30, XLabel: engine.ColAmount, YLabel: "Purchases"}
	amountBoxByCat  = Chart{ID: "amount_by_category_box", Title: "Purchase amount by category", Kind: ChartBox, Source: SourceBox, Column: engine.ColCategory, Value: engine.ColAmount, XLabel: "Category", YLabel: "USD"}
)

var pages = []Page{
	{
		Slug:  "home",
		Title: "Shopping trends overview",
		Metrics: []Metric{
			customersMetric,
			basketMetric,
			{ID: "purchases", Label: "Total purchases", Kind: MetricCount, Format: FormatInt},
			{ID: "avg_rating", Label: "Average rating", Kind: MetricMean, Column: engine.ColRating, Format: FormatRating},
			subRateMetric,
			{ID: "no_promo_rate", Label: "Purchases without promo code", Kind: MetricRate, Column: engine.ColPromoCode, Match: "No", Format: FormatPercent},
			{ID: "subscriber_lift", Label: "Subscriber spend vs non-subscribers", Kind: MetricLift, Column: engine.ColAmount, Dimension: engine.ColSubscription, Match: "Yes", Baseline: "No", Format: FormatChange},
		},
		Charts: []Chart{
			genderDonut,
			{ID: "age_distribution", Title: "Age distribution", Kind: ChartHistogram, Source: SourceHistogram, Column: engine.ColAge, Bins: 30, XLabel: "Age", YLabel: "Customers"},
			grouped("sales_by_category", "Sales by category", engine.ColCategory, engine.OpSum, "Sales (USD)"),
			grouped("sales_by_season", "Sales by season", engine.ColSeason, engine.OpSum, "Sales (USD)"),
			paymentDonut,
			frequencyDonut,
			heatmapCatSeas,
		},
	},
	{
		Slug:  "clients",
		Title: "Customer analysis",
		Metrics: []Metric{
			customersMetric,
			{ID: "avg_age", Label: "Average age", Kind: MetricMean, Column: engine.ColAge, Format: FormatYears},
			subRateMetric,
		},
		Charts: []Chart{
			{ID: "age_by_gender", Title: "Age distribution by gender", Kind: ChartHistogram, Source: SourceHistogram, Column: engine.ColAge, Column2: engine.ColGender, Bins: 20, XLabel: "Age", YLabel: "Customers"},
			genderDonut,
			{ID: "customers_by_state", Title: "Customers by state", Kind: ChartChoropleth, Source: SourceGeo, Column: engine.ColLocation},
			frequency("sizes", "Sizes", ChartPie, engine.ColSize),
			frequency("colors", "Colors", ChartPie, engine.ColColor),
			frequency("purchase_frequency", "Purchase frequency", ChartBar, engine.ColFrequency),
		},
	},
	{
		Slug:  "categories",
		Title: "Category analysis",
		Metrics: []Metric{
			{ID: "categories", Label: "Categories", Kind: MetricDistinct, Column: engine.ColCategory, Format: FormatInt},
			{ID: "avg_price", Label: "Average price", Kind: MetricMean, Column: engine.ColAmount, Format: FormatCurrency},
			{ID: "max_price", Label: "Highest price", Kind: MetricMax, Column: engine.ColAmount, Format: FormatCurrency},
		},
		Charts: []Chart{
			frequency("purchases_by_category", "Purchases by category", ChartBar, engine.ColCategory),
			grouped("revenue_by_category", "Revenue by category", engine.ColCategory, engine.OpSum, "Revenue (USD)"),
			heatmapCatSeas,
			amountBoxByCat,
			grouped("avg_price_by_category", "Average price by category", engine.ColCategory, engine.OpMean, "Average price (USD)"),
		},
	},
	{
		Slug:    "seasons",
		Title:   "Seasonal analysis",
		Metrics: []Metric{seasonMean("Spring"), seasonMean("Summer"), seasonMean("Fall"), seasonMean("Winter")},
		Charts: []Chart{
			frequency("purchases_by_season", "Purchases by season", ChartBar, engine.ColSeason),
			grouped("revenue_by_season", "Revenue by season", engine.ColSeason, engine.OpSum, "Revenue (USD)"),
			heatmapCatSeas,
			{ID: "amount_by_season_box", Title: "Purchase amount by season", Kind: ChartBox, Source: SourceBox, Column: engine.ColSeason, Value: engine.ColAmount, XLabel: "Season", YLabel: "USD"},
			{ID: "avg_price_season_category", Title: "Average price by season and category", Kind: ChartHeatmap, Source: SourcePivot, Column: engine.ColSeason, Column2: engine.ColCategory, Value: engine.ColAmount, Op: engine.OpMean, XLabel: "Category", YLabel: "Season"},
		},
	},
	{
		Slug:  "basket",
		Title: "Basket analysis",
		Metrics: []Metric{
			basketMetric,
			{ID: "total_sales", Label: "Total sales", Kind: MetricSum, Column: engine.ColAmount, Format: FormatCurrency},
			{ID: "max_basket", Label: "Largest basket", Kind: MetricMax, Column: engine.ColAmount, Format: FormatCurrency},
		},
		Charts: []Chart{
			amountBoxByCat,
			grouped("avg_amount_by_category", "Average amount by category", engine.ColCategory, engine.OpMean, "Average amount (USD)"),
			frequency("purchase_frequency", "Purchase frequency", ChartPie, engine.ColFrequency),
			grouped("avg_amount_by_frequency", "Average amount by purchase frequency", engine.ColFrequency, engine.OpMean, "Average amount (USD)"),
			frequency("payment_methods", "Payment methods", ChartPie, engine.ColPaymentMethod),
			grouped("avg_amount_by_payment", "Average amount by payment method", engine.ColPaymentMethod, engine.OpMean, "Average amount (USD)"),
		},
	},
	{
		Slug:  "payments",
		Title: "Payments and shipping",
		Metrics: []Metric{
			{ID: "top_payment", Label: "Preferred payment method", Kind: MetricMode, Column: engine.ColPaymentMethod, Format: FormatText},
			{ID: "top_shipping", Label: "Preferred shipping type", Kind: MetricMode, Column: engine.ColShippingType, Format: FormatText},
		},
		Charts: []Chart{
			paymentDonut,
			frequency("shipping_types", "Shipping types", ChartDonut, engine.ColShippingType),
			grouped("avg_amount_by_shipping", "Average amount by shipping type", engine.ColShippingType, engine.OpMean, "Average amount (USD)"),
			grouped("avg_amount_by_payment", "Average amount by payment method", engine.ColPaymentMethod, engine.OpMean, "Average amount (USD)"),
			{ID: "payment_used_vs_preferred", Title: "Payment method used vs preferred", Kind: ChartHeatmap, Source: SourceCrossTab, Column: engine.ColPaymentMethod, Column2: engine.ColPreferredPayment, XLabel: "Preferred", YLabel: "Used"},
		},
	},
	{
		Slug:  "products",
		Title: "Product analysis",
		Metrics: []Metric{
			{ID: "products", Label: "Unique products", Kind: MetricDistinct, Column: engine.ColItem, Format: FormatInt},
			{ID: "top_category", Label: "Most popular category", Kind: MetricMode, Column: engine.ColCategory, Format: FormatText},
			{ID: "top_color", Label: "Best selling color", Kind: MetricMode, Column: engine.ColColor, Format: FormatText},
		},
		Charts: []Chart{
			{ID: "top_items", Title: "Top 10 items", Kind: ChartBar, Source: SourceTopN, Column: engine.ColItem, N: 10, XLabel: "Item", YLabel: "Purchases"},
			{ID: "size_color", Title: "Sizes by color", Kind: ChartHeatmap, Source: SourceCrossTab, Column: engine.ColSize, Column2: engine.ColColor, XLabel: "Color", YLabel: "Size"},
		},
	},
	{
		Slug:  "financial",
		Title: "Financial analysis",
		Metrics: []Metric{
			{ID: "total_revenue", Label: "Total revenue", Kind: MetricSum, Column: engine.ColAmount, Format: FormatCurrency},
			basketMetric,
			{ID: "discount_rate", Label: "Discount usage", Kind: MetricRate, Column: engine.ColDiscount, Match: "Yes", Format: FormatPercent},
		},
		Charts: []Chart{
			grouped("revenue_by_season", "Revenue by season", engine.ColSeason, engine.OpSum, "Revenue (USD)"),
			amountHistogram,
			grouped("promo_impact", "Average amount with and without promo code", engine.ColPromoCode, engine.OpMean, "Average amount (USD)"),
		},
	},
	{
		Slug:  "behavior",
		Title: "Customer behavior",
		Metrics: []Metric{
			{ID: "avg_rating", Label: "Average rating", Kind: MetricMean, Column: engine.ColRating, Format: FormatRating},
			{ID: "avg_previous", Label: "Average previous purchases", Kind: MetricMean, Column: engine.ColPreviousPurchase, Format: FormatDecimal},
			{ID: "returning_rate", Label: "Returning customers", Kind: MetricRateAbove, Column: engine.ColPreviousPurchase, Threshold: 0, Format: FormatPercent},
		},
		Charts: []Chart{
			{ID: "rating_distribution", Title: "Review ratings", Kind: ChartHistogram, Source: SourceHistogram, Column: engine.ColRating, Bins: 20, XLabel: "Rating", YLabel: "Purchases"},
			grouped("amount_by_rating", "Average amount by rating", engine.ColRating, engine.OpMean, "Average amount (USD)"),
			{ID: "previous_purchases", Title: "Previous purchases", Kind: ChartHistogram, Source: SourceHistogram, Column: engine.ColPreviousPurchase, Bins: 30, XLabel: "Previous purchases", YLabel: "Customers"},
		},
	},
}

// Pages lists every page in navigation order.
func Pages() []Page {
	return append([]Page(nil), pages...)
}

func Lookup(slug string) (Page, bool) {
	for _, p := range pages {
		if p.Slug == slug {
			return p, true
		}
	}
	return Page{}, false
}

// Chart returns the chart with the given id.
func (p Page) Chart(id string) (Chart, bool) {
	for _, c := range p.Charts {
		if c.ID == id {
			return c, true
		}
	}
	return Chart{}, false
}
