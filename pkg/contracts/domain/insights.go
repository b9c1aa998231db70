package domain

// GrowthEntry is one brand in the "fastest growing" ranking
type GrowthEntry struct {
	Brand     string  `json:"brand"`
	GrowthPct float64 `json:"growth_pct"`
	Change    float64 `json:"change"`
	Base      float64 `json:"base"`
}

// TopBrand describes the largest brand of the KPI year inside the filtered view
type TopBrand struct {
	Brand     string      `json:"brand"`
	Retail    float64     `json:"retail"`
	Share     NullFloat64 `json:"share"`
	YoYChange NullFloat64 `json:"yoy_change"`
	YoYGrowth NullFloat64 `json:"yoy_growth"`
}

// KPISummary is the headline block for the KPI year.
// Market figures come from the unfiltered dataset, brand figures from the filtered view.
type KPISummary struct {
	KPIYear        int           `json:"kpi_year"`
	PreviousYear   int           `json:"previous_year,omitempty"`
	MarketTotal    NullFloat64   `json:"market_total"`
	MarketPrevious NullFloat64   `json:"market_previous"`
	MarketChange   NullFloat64   `json:"market_change"`
	MarketGrowth   NullFloat64   `json:"market_growth"`
	BrandCount     int           `json:"brand_count"`
	FirstYear      int           `json:"first_year,omitempty"`
	LastYear       int           `json:"last_year,omitempty"`
	TopBrand       *TopBrand     `json:"top_brand,omitempty"`
	Top3Share      NullFloat64   `json:"top3_share"`
	Top3Brands     []string      `json:"top3_brands"`
	FastestGrowing []GrowthEntry `json:"fastest_growing"`
}

// ShareSlice is one tile of the single-year market share treemap
type ShareSlice struct {
	Brand  string      `json:"brand"`
	Retail float64     `json:"retail"`
	Share  NullFloat64 `json:"share"`
}

// SeriesPoint is one year of a brand's time series
type SeriesPoint struct {
	Year   int         `json:"year"`
	Retail float64     `json:"retail"`
	Share  NullFloat64 `json:"share"`
}

// BrandSeries is the retail time series of one brand
type BrandSeries struct {
	Brand  string        `json:"brand"`
	Total  float64       `json:"total"`
	Points []SeriesPoint `json:"points"`
}

// HeatmapGrid is a zero-filled Brand x Year matrix.
// Values[i][j] belongs to Brands[i] and Years[j].
type HeatmapGrid struct {
	Scale  HeatmapScale `json:"scale"`
	Brands []string     `json:"brands"`
	Years  []int        `json:"years"`
	Values [][]float64  `json:"values"`
}

// ChartData bundles the precomputed slices every chart needs
type ChartData struct {
	Metric  ValueMetric   `json:"metric"`
	KPIYear int           `json:"kpi_year"`
	Ranking []ViewRow     `json:"ranking"`
	Treemap []ShareSlice  `json:"treemap"`
	Lines   []BrandSeries `json:"lines"`
	Heatmap HeatmapGrid   `json:"heatmap"`
}
