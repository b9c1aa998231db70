package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kalmbyy/retail-dashboard/pkg/contracts/domain"
)

func TestDeriveYoYScenario(t *testing.T) {
	yoy := DeriveYoY(scenarioRecords())

	toyota := yoy.Lookup("Toyota", 2021)
	require.True(t, toyota.Change.Valid)
	require.True(t, toyota.GrowthPct.Valid)
	assert.InDelta(t, 200, toyota.Change.Float64, 1e-9)
	assert.InDelta(t, 20.0, toyota.GrowthPct.Float64, 1e-9)

	honda := yoy.Lookup("Honda", 2021)
	assert.InDelta(t, -100, honda.Change.Float64, 1e-9)
	assert.InDelta(t, -20.0, honda.GrowthPct.Float64, 1e-9)

	first := yoy.Lookup("Toyota", 2020)
	assert.False(t, first.Change.Valid)
	assert.False(t, first.GrowthPct.Valid)
}

func TestDeriveYoYAbsentAndZeroPrior(t *testing.T) {
	records := []domain.YearlyRecord{
		{Year: 2020, Brand: "Zero", Quantity: 0},
		{Year: 2021, Brand: "Zero", Quantity: 75},
		{Year: 2021, Brand: "New", Quantity: 30},
		{Year: 2020, Brand: "Gone", Quantity: 10},
	}
	yoy := DeriveYoY(records)

	zero := yoy.Lookup("Zero", 2021)
	require.True(t, zero.Change.Valid)
	assert.Equal(t, 75.0, zero.Change.Float64)
	assert.False(t, zero.GrowthPct.Valid)

	absent := yoy.Lookup("New", 2021)
	assert.False(t, absent.Change.Valid)
	assert.False(t, absent.GrowthPct.Valid)

	assert.Len(t, yoy, 1)
}

func TestDeriveYoYSkipsYearGaps(t *testing.T) {
	records := []domain.YearlyRecord{
		{Year: 2019, Brand: "Toyota", Quantity: 100},
		{Year: 2021, Brand: "Toyota", Quantity: 150},
	}
	assert.Empty(t, DeriveYoY(records))
}

func TestDeriveYoYSumsDuplicateRows(t *testing.T) {
	records := []domain.YearlyRecord{
		{Year: 2020, Brand: "Toyota", Quantity: 50},
		{Year: 2020, Brand: "Toyota", Quantity: 50},
		{Year: 2021, Brand: "Toyota", Quantity: 150},
	}
	m := DeriveYoY(records).Lookup("Toyota", 2021)
	assert.Equal(t, domain.Float(50), m.Change)
	assert.Equal(t, domain.Float(50), m.GrowthPct)
}

func TestPivot(t *testing.T) {
	p := BuildPivot(marketRecords())

	assert.Equal(t, []int{2021, 2022}, p.Years())
	assert.True(t, p.HasYear(2022))
	assert.False(t, p.HasYear(2020))
	assert.Equal(t, []string{"Chery", "Daihatsu", "Honda", "Toyota", "Wuling"}, p.Brands())

	v, ok := p.Value("Chery", 2022)
	assert.True(t, ok)
	assert.Equal(t, 50.0, v)
	_, ok = p.Value("Chery", 2021)
	assert.False(t, ok)
}

func TestEligibleGrowth(t *testing.T) {
	p := BuildPivot(marketRecords())
	entries := p.EligibleGrowth(2022, 1000)

	require.Len(t, entries, 3)
	assert.Equal(t, "Honda", entries[0].Brand)
	assert.InDelta(t, 50.0, entries[0].GrowthPct, 1e-9)
	assert.Equal(t, 1000.0, entries[0].Change)
	assert.Equal(t, 2000.0, entries[0].Base)
	assert.Equal(t, "Toyota", entries[1].Brand)
	assert.Equal(t, "Daihatsu", entries[2].Brand)

	for _, e := range entries {
		assert.NotEqual(t, "Wuling", e.Brand, "small bases are excluded")
		assert.NotEqual(t, "Chery", e.Brand, "brands without a prior year are excluded")
	}

	assert.Empty(t, p.EligibleGrowth(2021, 1000))
	assert.Len(t, p.EligibleGrowth(2022, 0), 4)
}
