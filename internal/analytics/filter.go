package analytics

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Kalmbyy/retail-dashboard/internal/config"
	"github.com/Kalmbyy/retail-dashboard/pkg/contracts/domain"
)

var (
	// ErrEmptySelection is returned when the year selection contains no loaded year
	ErrEmptySelection = errors.New("selection is empty")
	// ErrKPIYearNotSelected is returned when the KPI year is not one of the selected years
	ErrKPIYearNotSelected = errors.New("kpi year is not part of the selected years")
)

// Settings holds the defaults applied to a FilterRequest
type Settings struct {
	TopN           int
	LineTopK       int
	TreemapMinRows int
	MinBaseUnits   float64
	Metric         domain.ValueMetric
	HeatmapScale   domain.HeatmapScale
}

// DefaultSettings returns the dashboard defaults
func DefaultSettings() Settings {
	return Settings{
		TopN:           config.DefaultTopN,
		LineTopK:       config.DefaultLineTopK,
		TreemapMinRows: config.TreemapMinRows,
		MinBaseUnits:   config.MinBaseUnits,
		Metric:         domain.MetricRetail,
		HeatmapScale:   domain.HeatmapLog,
	}
}

// NewSettings builds Settings from the dashboard configuration
func NewSettings(cfg config.DashboardConfig) Settings {
	s := DefaultSettings()
	if cfg.DefaultTopN > 0 {
		s.TopN = cfg.DefaultTopN
	}
	if cfg.LineTopK > 0 {
		s.LineTopK = cfg.LineTopK
	}
	if cfg.TreemapMinRows > 0 {
		s.TreemapMinRows = cfg.TreemapMinRows
	}
	if cfg.MinBaseUnits >= 0 {
		s.MinBaseUnits = cfg.MinBaseUnits
	}
	if cfg.DefaultMetric != "" {
		s.Metric = domain.ValueMetric(cfg.DefaultMetric)
	}
	if cfg.HeatmapScale != "" {
		s.HeatmapScale = domain.HeatmapScale(cfg.HeatmapScale)
	}
	return s
}

// Selection is a FilterRequest with every default resolved against the loaded years
type Selection struct {
	Years        []int
	Mode         domain.BrandMode
	TopN         int
	Brands       []string
	Metric       domain.ValueMetric
	KPIYear      int
	LineTopK     int
	HeatmapScale domain.HeatmapScale
}

// NewSelection resolves req against the available years.
// A nil Years slice selects every available year. Requested years that are not loaded
// are ignored; when nothing remains ErrEmptySelection is returned.
func NewSelection(req domain.FilterRequest, available []int, s Settings) (Selection, error) {
	sel := Selection{
		Mode:         req.BrandMode,
		TopN:         req.TopN,
		Brands:       append([]string(nil), req.Brands...),
		Metric:       req.Metric,
		LineTopK:     req.LineTopK,
		HeatmapScale: req.HeatmapScale,
	}

	if req.Years == nil {
		sel.Years = append([]int(nil), available...)
	} else {
		loaded := make(map[int]struct{}, len(available))
		for _, y := range available {
			loaded[y] = struct{}{}
		}
		picked := make(map[int]struct{}, len(req.Years))
		for _, y := range req.Years {
			if _, ok := loaded[y]; !ok {
				continue
			}
			if _, dup := picked[y]; dup {
				continue
			}
			picked[y] = struct{}{}
			sel.Years = append(sel.Years, y)
		}
		sort.Ints(sel.Years)
	}
	if len(sel.Years) == 0 {
		return Selection{}, ErrEmptySelection
	}

	if sel.Mode == "" {
		sel.Mode = domain.BrandModeTop
	}
	if sel.TopN <= 0 {
		sel.TopN = s.TopN
	}
	if sel.Metric == "" {
		sel.Metric = s.Metric
	}
	if sel.LineTopK <= 0 {
		sel.LineTopK = s.LineTopK
	}
	if sel.HeatmapScale == "" {
		sel.HeatmapScale = s.HeatmapScale
	}

	sel.KPIYear = req.KPIYear
	if sel.KPIYear == 0 {
		sel.KPIYear = sel.Years[len(sel.Years)-1]
	} else if !sel.HasYear(sel.KPIYear) {
		return Selection{}, fmt.Errorf("%w: %d", ErrKPIYearNotSelected, sel.KPIYear)
	}

	return sel, nil
}

// HasYear reports whether year is selected
func (s Selection) HasYear(year int) bool {
	i := sort.SearchInts(s.Years, year)
	return i < len(s.Years) && s.Years[i] == year
}

// FirstYear returns the earliest selected year
func (s Selection) FirstYear() int {
	if len(s.Years) == 0 {
		return 0
	}
	return s.Years[0]
}

// LastYear returns the latest selected year
func (s Selection) LastYear() int {
	if len(s.Years) == 0 {
		return 0
	}
	return s.Years[len(s.Years)-1]
}

// TopBrandsPerYear ranks rows within each year by Quantity descending, takes the first n
// rows of every year and returns the union of their brands in ascending order.
func TopBrandsPerYear(records []domain.YearlyRecord, n int) []string {
	byYear := make(map[int][]domain.YearlyRecord)
	for _, r := range records {
		byYear[r.Year] = append(byYear[r.Year], r)
	}

	union := make(map[string]struct{})
	for _, rows := range byYear {
		sort.SliceStable(rows, func(i, j int) bool {
			if rows[i].Quantity != rows[j].Quantity {
				return rows[i].Quantity > rows[j].Quantity
			}
			return rows[i].Brand < rows[j].Brand
		})
		if len(rows) > n {
			rows = rows[:n]
		}
		for _, r := range rows {
			union[r.Brand] = struct{}{}
		}
	}

	brands := make([]string, 0, len(union))
	for b := range union {
		brands = append(brands, b)
	}
	sort.Strings(brands)
	return brands
}

// ApplyFilters builds the FilteredView of records for sel.
// Shares are relative to the filtered subset; YoY values come from the global table.
// Row order follows records.
func ApplyFilters(records []domain.YearlyRecord, sel Selection, yoy YoYTable) []domain.ViewRow {
	inYears := make([]domain.YearlyRecord, 0, len(records))
	for _, r := range records {
		if sel.HasYear(r.Year) {
			inYears = append(inYears, r)
		}
	}

	var allowed []string
	switch sel.Mode {
	case domain.BrandModeManual:
		allowed = sel.Brands
	default:
		allowed = TopBrandsPerYear(inYears, sel.TopN)
	}
	keep := make(map[string]struct{}, len(allowed))
	for _, b := range allowed {
		keep[b] = struct{}{}
	}

	market := MarketShares(records)
	filtered := make([]domain.YearlyRecord, 0, len(inYears))
	marketShare := make([]domain.NullFloat64, 0, len(inYears))
	for i, r := range records {
		if !sel.HasYear(r.Year) {
			continue
		}
		if _, ok := keep[r.Brand]; ok {
			filtered = append(filtered, r)
			marketShare = append(marketShare, market[i])
		}
	}

	totals := YearTotals(filtered)
	view := make([]domain.ViewRow, 0, len(filtered))
	for i, r := range filtered {
		m := yoy.Lookup(r.Brand, r.Year)
		row := domain.ViewRow{
			Year:        r.Year,
			Brand:       r.Brand,
			Retail:      r.Quantity,
			Share:       Share(r.Quantity, totals[r.Year]),
			MarketShare: marketShare[i],
			YoYChange:   m.Change,
			YoYGrowth:   m.GrowthPct,
		}
		row.Value = MetricValue(row, sel.Metric)
		view = append(view, row)
	}
	return view
}

// MetricValue returns the column of row selected by metric
func MetricValue(row domain.ViewRow, metric domain.ValueMetric) domain.NullFloat64 {
	switch metric {
	case domain.MetricShare:
		return row.Share
	case domain.MetricYoYGrowth:
		return row.YoYGrowth
	case domain.MetricYoYChange:
		return row.YoYChange
	default:
		return domain.Float(row.Retail)
	}
}
