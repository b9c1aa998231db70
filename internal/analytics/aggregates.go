package analytics

import (
	"sort"

	"github.com/Kalmbyy/retail-dashboard/pkg/contracts/domain"
)

// YearTotals sums Quantity per year
func YearTotals(records []domain.YearlyRecord) map[int]float64 {
	totals := make(map[int]float64)
	for _, r := range records {
		totals[r.Year] += r.Quantity
	}
	return totals
}

// Share returns quantity as a percentage of total, undefined when total is not positive
func Share(quantity, total float64) domain.NullFloat64 {
	if total <= 0 {
		return domain.Null()
	}
	return domain.Float(quantity / total * 100)
}

// MarketShares returns the share of every record within its year's unfiltered total.
// The result is index-aligned with records.
func MarketShares(records []domain.YearlyRecord) []domain.NullFloat64 {
	totals := YearTotals(records)
	shares := make([]domain.NullFloat64, len(records))
	for i, r := range records {
		shares[i] = Share(r.Quantity, totals[r.Year])
	}
	return shares
}

// Years returns the distinct years in ascending order
func Years(records []domain.YearlyRecord) []int {
	seen := make(map[int]struct{})
	years := make([]int, 0)
	for _, r := range records {
		if _, ok := seen[r.Year]; ok {
			continue
		}
		seen[r.Year] = struct{}{}
		years = append(years, r.Year)
	}
	sort.Ints(years)
	return years
}

// Brands returns the distinct brand names in ascending order
func Brands(records []domain.YearlyRecord) []string {
	seen := make(map[string]struct{})
	brands := make([]string, 0)
	for _, r := range records {
		if _, ok := seen[r.Brand]; ok {
			continue
		}
		seen[r.Brand] = struct{}{}
		brands = append(brands, r.Brand)
	}
	sort.Strings(brands)
	return brands
}

// Describe builds the DatasetInfo of a unified dataset
func Describe(records []domain.YearlyRecord, usedFiles []string) domain.DatasetInfo {
	if records == nil {
		records = []domain.YearlyRecord{}
	}
	if usedFiles == nil {
		usedFiles = []string{}
	}
	return domain.DatasetInfo{
		Records:   records,
		UsedFiles: usedFiles,
		Years:     Years(records),
		Brands:    Brands(records),
	}
}
