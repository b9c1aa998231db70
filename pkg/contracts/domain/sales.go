package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// YearlyRecord is one brand's retail volume for one calendar year
type YearlyRecord struct {
	Year     int     `json:"year" validate:"required,gte=2000,lte=2099"`
	Brand    string  `json:"brand" validate:"required"`
	Quantity float64 `json:"retail" validate:"gte=0"`
}

// NullFloat64 is a float64 that may be undefined.
// The zero value is undefined, which keeps "no data" distinct from 0.
type NullFloat64 struct {
	Float64 float64
	Valid   bool
}

// Float returns a defined NullFloat64. NaN and infinities are treated as undefined.
func Float(v float64) NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NullFloat64{}
	}
	return NullFloat64{Float64: v, Valid: true}
}

// Null returns an undefined NullFloat64
func Null() NullFloat64 {
	return NullFloat64{}
}

// OrElse returns the value when defined and fallback otherwise
func (n NullFloat64) OrElse(fallback float64) float64 {
	if !n.Valid {
		return fallback
	}
	return n.Float64
}

// Format renders the value with the given precision, or an empty string when undefined
func (n NullFloat64) Format(precision int) string {
	if !n.Valid {
		return ""
	}
	return strconv.FormatFloat(n.Float64, 'f', precision, 64)
}

// MarshalJSON encodes undefined values as null
func (n NullFloat64) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Float64)
}

// UnmarshalJSON decodes null as undefined
func (n *NullFloat64) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*n = NullFloat64{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = Float(v)
	return nil
}

// YoYMetric holds the year-over-year change of a brand against the previous year
type YoYMetric struct {
	Change    NullFloat64 `json:"change"`
	GrowthPct NullFloat64 `json:"growth_pct"`
}

// ViewRow is one row of the filtered view consumed by charts, tables and exports
type ViewRow struct {
	Year   int     `json:"year"`
	Brand  string  `json:"brand"`
	Retail float64 `json:"retail"`
	// Share is relative to the filtered subset of the year
	Share NullFloat64 `json:"share"`
	// MarketShare is relative to the whole market of the year
	MarketShare NullFloat64 `json:"market_share"`
	YoYChange   NullFloat64 `json:"yoy_change"`
	YoYGrowth   NullFloat64 `json:"yoy_growth"`
	Value       NullFloat64 `json:"value"`
}

// DatasetInfo describes the unified dataset currently loaded
type DatasetInfo struct {
	Records   []YearlyRecord `json:"records"`
	UsedFiles []string       `json:"used_files"`
	Years     []int          `json:"years"`
	Brands    []string       `json:"brands"`
}
