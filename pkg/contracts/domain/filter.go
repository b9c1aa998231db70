package domain

// BrandMode selects how brands are narrowed in the filtered view
type BrandMode string

const (
	BrandModeTop    BrandMode = "top"
	BrandModeManual BrandMode = "manual"
)

// ValueMetric selects which column is copied into ViewRow.Value
type ValueMetric string

const (
	MetricRetail    ValueMetric = "retail"
	MetricShare     ValueMetric = "share"
	MetricYoYGrowth ValueMetric = "yoy_growth"
	MetricYoYChange ValueMetric = "yoy_change"
)

// Label returns the human readable axis label of the metric
func (m ValueMetric) Label() string {
	switch m {
	case MetricShare:
		return "Share (%)"
	case MetricYoYGrowth:
		return "YoY Growth (%)"
	case MetricYoYChange:
		return "YoY Change (Units)"
	default:
		return "Retail (Units)"
	}
}

// HeatmapScale selects the transform applied to the Brand x Year pivot
type HeatmapScale string

const (
	HeatmapNone       HeatmapScale = "none"
	HeatmapLog        HeatmapScale = "log"
	HeatmapNormalized HeatmapScale = "normalized"
)

// FilterRequest carries the dashboard filter state.
// A nil Years slice selects every year; an empty non-nil slice selects nothing.
type FilterRequest struct {
	Years        []int        `json:"years" validate:"omitempty,dive,gte=2000,lte=2099"`
	BrandMode    BrandMode    `json:"brand_mode,omitempty" validate:"omitempty,oneof=top manual"`
	TopN         int          `json:"top_n,omitempty" validate:"omitempty,gte=1,lte=100"`
	Brands       []string     `json:"brands,omitempty" validate:"omitempty,dive,brand"`
	Metric       ValueMetric  `json:"metric,omitempty" validate:"omitempty,oneof=retail share yoy_growth yoy_change"`
	KPIYear      int          `json:"kpi_year,omitempty" validate:"omitempty,gte=2000,lte=2099"`
	LineTopK     int          `json:"line_top_k,omitempty" validate:"omitempty,gte=1,lte=50"`
	HeatmapScale HeatmapScale `json:"heatmap_scale,omitempty" validate:"omitempty,oneof=none log normalized"`
}
