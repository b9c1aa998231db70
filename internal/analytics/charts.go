package analytics

import (
	"math"
	"sort"

	"github.com/Kalmbyy/retail-dashboard/pkg/contracts/domain"
)

// Ranking orders a copy of view by Year ascending and Value descending.
// Rows with an undefined Value sort last within their year.
func Ranking(view []domain.ViewRow) []domain.ViewRow {
	rows := append([]domain.ViewRow(nil), view...)
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.Value.Valid != b.Value.Valid {
			return a.Value.Valid
		}
		if a.Value.Valid && a.Value.Float64 != b.Value.Float64 {
			return a.Value.Float64 > b.Value.Float64
		}
		return a.Brand < b.Brand
	})
	if rows == nil {
		rows = []domain.ViewRow{}
	}
	return rows
}

// TreemapSlice returns the largest rows of year from the unfiltered records with their
// share of that year's total. At most max(minRows, topN) slices are returned.
func TreemapSlice(records []domain.YearlyRecord, year, topN, minRows int) []domain.ShareSlice {
	var total float64
	rows := make([]domain.YearlyRecord, 0)
	for _, r := range records {
		if r.Year == year {
			rows = append(rows, r)
			total += r.Quantity
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Quantity != rows[j].Quantity {
			return rows[i].Quantity > rows[j].Quantity
		}
		return rows[i].Brand < rows[j].Brand
	})

	limit := minRows
	if topN > limit {
		limit = topN
	}
	if len(rows) > limit {
		rows = rows[:limit]
	}

	slices := make([]domain.ShareSlice, 0, len(rows))
	for _, r := range rows {
		slices = append(slices, domain.ShareSlice{
			Brand:  r.Brand,
			Retail: r.Quantity,
			Share:  Share(r.Quantity, total),
		})
	}
	return slices
}

// LineSeries returns one series per brand for the k brands with the largest total retail
// in view, largest first. Points are summed per year and ordered by year. k <= 0 keeps every brand.
func LineSeries(view []domain.ViewRow, k int) []domain.BrandSeries {
	type acc struct {
		total  float64
		points map[int]*domain.SeriesPoint
	}
	byBrand := make(map[string]*acc)
	for _, row := range view {
		a, ok := byBrand[row.Brand]
		if !ok {
			a = &acc{points: make(map[int]*domain.SeriesPoint)}
			byBrand[row.Brand] = a
		}
		a.total += row.Retail

		p, ok := a.points[row.Year]
		if !ok {
			p = &domain.SeriesPoint{Year: row.Year}
			a.points[row.Year] = p
		}
		p.Retail += row.Retail
		if row.Share.Valid {
			p.Share = domain.Float(p.Share.OrElse(0) + row.Share.Float64)
		}
	}

	brands := make([]string, 0, len(byBrand))
	for b := range byBrand {
		brands = append(brands, b)
	}
	sort.Slice(brands, func(i, j int) bool {
		ti, tj := byBrand[brands[i]].total, byBrand[brands[j]].total
		if ti != tj {
			return ti > tj
		}
		return brands[i] < brands[j]
	})
	if k > 0 && len(brands) > k {
		brands = brands[:k]
	}

	series := make([]domain.BrandSeries, 0, len(brands))
	for _, b := range brands {
		a := byBrand[b]
		s := domain.BrandSeries{Brand: b, Total: a.total, Points: make([]domain.SeriesPoint, 0, len(a.points))}
		for _, p := range a.points {
			s.Points = append(s.Points, *p)
		}
		sort.Slice(s.Points, func(i, j int) bool { return s.Points[i].Year < s.Points[j].Year })
		series = append(series, s)
	}
	return series
}

// Heatmap pivots view into a zero-filled Brand x Year grid.
// Columns are ascending years; rows are ordered by row sum descending, then brand.
func Heatmap(view []domain.ViewRow, scale domain.HeatmapScale) domain.HeatmapGrid {
	sums := make(map[string]map[int]float64)
	yearSet := make(map[int]struct{})
	for _, row := range view {
		if sums[row.Brand] == nil {
			sums[row.Brand] = make(map[int]float64)
		}
		sums[row.Brand][row.Year] += row.Retail
		yearSet[row.Year] = struct{}{}
	}

	years := make([]int, 0, len(yearSet))
	for y := range yearSet {
		years = append(years, y)
	}
	sort.Ints(years)

	rowSum := make(map[string]float64, len(sums))
	brands := make([]string, 0, len(sums))
	for b, cells := range sums {
		for _, v := range cells {
			rowSum[b] += v
		}
		brands = append(brands, b)
	}
	sort.Slice(brands, func(i, j int) bool {
		if rowSum[brands[i]] != rowSum[brands[j]] {
			return rowSum[brands[i]] > rowSum[brands[j]]
		}
		return brands[i] < brands[j]
	})

	if scale == "" {
		scale = domain.HeatmapNone
	}
	grid := domain.HeatmapGrid{
		Scale:  scale,
		Brands: brands,
		Years:  years,
		Values: make([][]float64, len(brands)),
	}
	for i, b := range brands {
		values := make([]float64, len(years))
		for j, y := range years {
			values[j] = sums[b][y]
		}
		grid.Values[i] = scaleRow(values, scale)
	}
	return grid
}

func scaleRow(values []float64, scale domain.HeatmapScale) []float64 {
	switch scale {
	case domain.HeatmapLog:
		for i, v := range values {
			values[i] = math.Log1p(v)
		}
	case domain.HeatmapNormalized:
		var rowMax float64
		for _, v := range values {
			if v > rowMax {
				rowMax = v
			}
		}
		for i, v := range values {
			if rowMax == 0 {
				values[i] = 0
				continue
			}
			values[i] = math.Sqrt(v / rowMax)
		}
	}
	return values
}

// BuildCharts bundles every chart slice for sel
func BuildCharts(records []domain.YearlyRecord, view []domain.ViewRow, sel Selection, s Settings) domain.ChartData {
	return domain.ChartData{
		Metric:  sel.Metric,
		KPIYear: sel.KPIYear,
		Ranking: Ranking(view),
		Treemap: TreemapSlice(records, sel.KPIYear, sel.TopN, s.TreemapMinRows),
		Lines:   LineSeries(view, sel.LineTopK),
		Heatmap: Heatmap(view, sel.HeatmapScale),
	}
}
