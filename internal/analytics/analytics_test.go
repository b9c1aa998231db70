package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kalmbyy/retail-dashboard/pkg/contracts/domain"
)

// scenarioRecords is the merged 2020/2021 folder, sorted as the merger leaves it
func scenarioRecords() []domain.YearlyRecord {
	return []domain.YearlyRecord{
		{Year: 2020, Brand: "Toyota", Quantity: 1000},
		{Year: 2020, Brand: "Honda", Quantity: 500},
		{Year: 2021, Brand: "Toyota", Quantity: 1200},
		{Year: 2021, Brand: "Honda", Quantity: 400},
	}
}

func marketRecords() []domain.YearlyRecord {
	return []domain.YearlyRecord{
		{Year: 2021, Brand: "Toyota", Quantity: 5000},
		{Year: 2021, Brand: "Daihatsu", Quantity: 3000},
		{Year: 2021, Brand: "Honda", Quantity: 2000},
		{Year: 2021, Brand: "Wuling", Quantity: 10},
		{Year: 2022, Brand: "Toyota", Quantity: 5500},
		{Year: 2022, Brand: "Honda", Quantity: 3000},
		{Year: 2022, Brand: "Daihatsu", Quantity: 2900},
		{Year: 2022, Brand: "Wuling", Quantity: 100},
		{Year: 2022, Brand: "Chery", Quantity: 50},
	}
}

func TestYearTotals(t *testing.T) {
	totals := YearTotals(scenarioRecords())
	assert.Equal(t, map[int]float64{2020: 1500, 2021: 1600}, totals)
}

func TestShare(t *testing.T) {
	s := Share(1000, 1500)
	require.True(t, s.Valid)
	assert.InDelta(t, 66.67, s.Float64, 0.01)

	assert.False(t, Share(10, 0).Valid)
	assert.False(t, Share(0, 0).Valid)
}

func TestMarketSharesSumTo100(t *testing.T) {
	records := marketRecords()
	shares := MarketShares(records)
	require.Len(t, shares, len(records))

	sums := map[int]float64{}
	for i, r := range records {
		require.True(t, shares[i].Valid)
		sums[r.Year] += shares[i].Float64
	}
	for year, sum := range sums {
		assert.InDelta(t, 100, sum, 1e-9, "year %d", year)
	}
}

func TestMarketSharesZeroTotalIsUndefined(t *testing.T) {
	records := []domain.YearlyRecord{
		{Year: 2020, Brand: "A", Quantity: 0},
		{Year: 2020, Brand: "B", Quantity: 0},
		{Year: 2021, Brand: "A", Quantity: 4},
	}
	shares := MarketShares(records)

	assert.False(t, shares[0].Valid)
	assert.False(t, shares[1].Valid)
	assert.Equal(t, domain.Float(100), shares[2])
}

func TestYearsAndBrands(t *testing.T) {
	records := marketRecords()
	assert.Equal(t, []int{2021, 2022}, Years(records))
	assert.Equal(t, []string{"Chery", "Daihatsu", "Honda", "Toyota", "Wuling"}, Brands(records))
	assert.Empty(t, Years(nil))
}

func TestDescribe(t *testing.T) {
	info := Describe(nil, nil)
	assert.NotNil(t, info.Records)
	assert.NotNil(t, info.UsedFiles)
	assert.Empty(t, info.Years)

	info = Describe(scenarioRecords(), []string{"2020_data.csv", "2021_data.csv"})
	assert.Equal(t, []int{2020, 2021}, info.Years)
	assert.Equal(t, []string{"Honda", "Toyota"}, info.Brands)
}
