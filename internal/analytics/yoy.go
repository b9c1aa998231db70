package analytics

import (
	"sort"

	"github.com/Kalmbyy/retail-dashboard/pkg/contracts/domain"
)

// Pivot is a Brand x Year matrix of summed quantities.
// A missing cell means the brand has no rows in that year, which is distinct from a zero sum.
type Pivot struct {
	cells map[string]map[int]float64
	years []int
}

// BuildPivot sums Quantity per (Brand, Year)
func BuildPivot(records []domain.YearlyRecord) *Pivot {
	p := &Pivot{cells: make(map[string]map[int]float64)}
	for _, r := range records {
		row, ok := p.cells[r.Brand]
		if !ok {
			row = make(map[int]float64)
			p.cells[r.Brand] = row
		}
		row[r.Year] += r.Quantity
	}
	p.years = Years(records)
	return p
}

// Value returns the cell for brand and year and whether it exists
func (p *Pivot) Value(brand string, year int) (float64, bool) {
	v, ok := p.cells[brand][year]
	return v, ok
}

// Years returns the pivot's columns in ascending order
func (p *Pivot) Years() []int {
	return append([]int(nil), p.years...)
}

// HasYear reports whether any brand has data in year
func (p *Pivot) HasYear(year int) bool {
	i := sort.SearchInts(p.years, year)
	return i < len(p.years) && p.years[i] == year
}

// Brands returns the pivot's rows in ascending order
func (p *Pivot) Brands() []string {
	brands := make([]string, 0, len(p.cells))
	for b := range p.cells {
		brands = append(brands, b)
	}
	sort.Strings(brands)
	return brands
}

// Compare computes the change of brand between year-1 and year.
// Both values are undefined when either cell is absent; growth is undefined when the prior cell is zero.
func (p *Pivot) Compare(brand string, year int) domain.YoYMetric {
	cur, ok := p.Value(brand, year)
	if !ok {
		return domain.YoYMetric{}
	}
	prev, ok := p.Value(brand, year-1)
	if !ok {
		return domain.YoYMetric{}
	}
	change := cur - prev
	m := domain.YoYMetric{Change: domain.Float(change)}
	if prev != 0 {
		m.GrowthPct = domain.Float(change / prev * 100)
	}
	return m
}

// YoYKey identifies one brand in one year
type YoYKey struct {
	Brand string
	Year  int
}

// YoYTable maps (Brand, Year) to the change against the previous year.
// Keys without a defined comparison are absent.
type YoYTable map[YoYKey]domain.YoYMetric

// Lookup returns the metric for brand and year, undefined when absent
func (t YoYTable) Lookup(brand string, year int) domain.YoYMetric {
	return t[YoYKey{Brand: brand, Year: year}]
}

// DeriveYoY computes year-over-year metrics over the complete dataset
func DeriveYoY(records []domain.YearlyRecord) YoYTable {
	return BuildPivot(records).YoY()
}

// YoY computes the table for every year whose predecessor is also a pivot column
func (p *Pivot) YoY() YoYTable {
	table := make(YoYTable)
	for _, year := range p.years {
		if !p.HasYear(year - 1) {
			continue
		}
		for brand := range p.cells {
			m := p.Compare(brand, year)
			if !m.Change.Valid {
				continue
			}
			table[YoYKey{Brand: brand, Year: year}] = m
		}
	}
	return table
}

// EligibleGrowth ranks brands by growth from year-1 to year, keeping only
// brands present in both years whose prior volume is at least minBase.
// Entries are sorted by growth descending, then brand.
func (p *Pivot) EligibleGrowth(year int, minBase float64) []domain.GrowthEntry {
	entries := make([]domain.GrowthEntry, 0)
	if !p.HasYear(year) || !p.HasYear(year-1) {
		return entries
	}

	for brand := range p.cells {
		base, ok := p.Value(brand, year-1)
		if !ok || base < minBase || base == 0 {
			continue
		}
		m := p.Compare(brand, year)
		if !m.Change.Valid || !m.GrowthPct.Valid {
			continue
		}
		entries = append(entries, domain.GrowthEntry{
			Brand:     brand,
			GrowthPct: m.GrowthPct.Float64,
			Change:    m.Change.Float64,
			Base:      base,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].GrowthPct != entries[j].GrowthPct {
			return entries[i].GrowthPct > entries[j].GrowthPct
		}
		return entries[i].Brand < entries[j].Brand
	})
	return entries
}
