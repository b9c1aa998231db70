package analytics

import (
	"sort"

	"github.com/Kalmbyy/retail-dashboard/pkg/contracts/domain"
)

// Summarize computes the KPI block for kpiYear.
// Market figures use the unfiltered records; brand figures use the filtered view.
func Summarize(records []domain.YearlyRecord, view []domain.ViewRow, yoy YoYTable, kpiYear int, minBase float64) domain.KPISummary {
	summary := domain.KPISummary{
		KPIYear:        kpiYear,
		PreviousYear:   kpiYear - 1,
		Top3Brands:     []string{},
		FastestGrowing: []domain.GrowthEntry{},
	}

	totals := YearTotals(records)
	if total, ok := totals[kpiYear]; ok {
		summary.MarketTotal = domain.Float(total)
		if prev, ok := totals[kpiYear-1]; ok {
			summary.MarketPrevious = domain.Float(prev)
			summary.MarketChange = domain.Float(total - prev)
			if prev != 0 {
				summary.MarketGrowth = domain.Float((total - prev) / prev * 100)
			}
		}
	}

	brands := make(map[string]struct{})
	for _, row := range view {
		brands[row.Brand] = struct{}{}
		if summary.FirstYear == 0 || row.Year < summary.FirstYear {
			summary.FirstYear = row.Year
		}
		if row.Year > summary.LastYear {
			summary.LastYear = row.Year
		}
	}
	summary.BrandCount = len(brands)

	leaders := rowsOfYear(view, kpiYear)
	if len(leaders) > 0 {
		top := leaders[0]
		m := yoy.Lookup(top.Brand, kpiYear)
		summary.TopBrand = &domain.TopBrand{
			Brand:     top.Brand,
			Retail:    top.Retail,
			Share:     top.Share,
			YoYChange: m.Change,
			YoYGrowth: m.GrowthPct,
		}
	}

	for i := 0; i < len(leaders) && i < 3; i++ {
		summary.Top3Brands = append(summary.Top3Brands, leaders[i].Brand)
	}
	if len(leaders) >= 3 {
		var sum float64
		defined := true
		for _, row := range leaders[:3] {
			if !row.Share.Valid {
				defined = false
				break
			}
			sum += row.Share.Float64
		}
		if defined {
			summary.Top3Share = domain.Float(sum)
		}
	}

	summary.FastestGrowing = BuildPivot(records).EligibleGrowth(kpiYear, minBase)
	return summary
}

// rowsOfYear returns the view rows of year ordered by retail descending, then brand
func rowsOfYear(view []domain.ViewRow, year int) []domain.ViewRow {
	rows := make([]domain.ViewRow, 0)
	for _, row := range view {
		if row.Year == year {
			rows = append(rows, row)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Retail != rows[j].Retail {
			return rows[i].Retail > rows[j].Retail
		}
		return rows[i].Brand < rows[j].Brand
	})
	return rows
}
