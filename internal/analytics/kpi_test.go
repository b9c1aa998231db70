package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kalmbyy/retail-dashboard/pkg/contracts/domain"
)

func summarize(t *testing.T, records []domain.YearlyRecord, req domain.FilterRequest) domain.KPISummary {
	t.Helper()
	sel, err := NewSelection(req, Years(records), DefaultSettings())
	require.NoError(t, err)
	yoy := DeriveYoY(records)
	return Summarize(records, ApplyFilters(records, sel, yoy), yoy, sel.KPIYear, testMinBase)
}

const testMinBase = 1000.0

func TestSummarize(t *testing.T) {
	records := marketRecords()
	summary := summarize(t, records, domain.FilterRequest{TopN: 3})

	assert.Equal(t, 2022, summary.KPIYear)
	assert.Equal(t, 2021, summary.PreviousYear)
	assert.Equal(t, domain.Float(11550), summary.MarketTotal)
	assert.Equal(t, domain.Float(10010), summary.MarketPrevious)
	assert.Equal(t, domain.Float(1540), summary.MarketChange)
	require.True(t, summary.MarketGrowth.Valid)
	assert.InDelta(t, 15.3846, summary.MarketGrowth.Float64, 1e-3)

	assert.Equal(t, 3, summary.BrandCount)
	assert.Equal(t, 2021, summary.FirstYear)
	assert.Equal(t, 2022, summary.LastYear)

	require.NotNil(t, summary.TopBrand)
	assert.Equal(t, "Toyota", summary.TopBrand.Brand)
	assert.Equal(t, 5500.0, summary.TopBrand.Retail)
	assert.InDelta(t, 5500.0/11400*100, summary.TopBrand.Share.Float64, 1e-9)
	assert.Equal(t, domain.Float(500), summary.TopBrand.YoYChange)
	assert.Equal(t, domain.Float(10), summary.TopBrand.YoYGrowth)

	assert.Equal(t, []string{"Toyota", "Honda", "Daihatsu"}, summary.Top3Brands)
	require.True(t, summary.Top3Share.Valid)
	assert.InDelta(t, 100, summary.Top3Share.Float64, 1e-9)

	require.Len(t, summary.FastestGrowing, 3)
	assert.Equal(t, "Honda", summary.FastestGrowing[0].Brand)
}

func TestSummarizeFirstYearHasNoPrevious(t *testing.T) {
	summary := summarize(t, scenarioRecords(), domain.FilterRequest{KPIYear: 2020})

	assert.Equal(t, domain.Float(1500), summary.MarketTotal)
	assert.False(t, summary.MarketPrevious.Valid)
	assert.False(t, summary.MarketChange.Valid)
	assert.False(t, summary.MarketGrowth.Valid)
	assert.False(t, summary.TopBrand.YoYChange.Valid)
	assert.Empty(t, summary.FastestGrowing)
}

func TestSummarizeFewerThanThreeRows(t *testing.T) {
	summary := summarize(t, scenarioRecords(), domain.FilterRequest{})

	assert.Equal(t, []string{"Toyota", "Honda"}, summary.Top3Brands)
	assert.False(t, summary.Top3Share.Valid)
	require.Len(t, summary.FastestGrowing, 1, "bases below the threshold are excluded")
	assert.Equal(t, "Toyota", summary.FastestGrowing[0].Brand)
}

func TestSummarizeEmptyView(t *testing.T) {
	records := scenarioRecords()
	summary := summarize(t, records, domain.FilterRequest{BrandMode: domain.BrandModeManual})

	assert.Nil(t, summary.TopBrand)
	assert.Zero(t, summary.BrandCount)
	assert.Equal(t, domain.Float(1600), summary.MarketTotal, "market figures ignore the brand filter")
	assert.NotNil(t, summary.Top3Brands)
}

func TestSummarizeZeroPreviousMarket(t *testing.T) {
	records := []domain.YearlyRecord{
		{Year: 2020, Brand: "A", Quantity: 0},
		{Year: 2021, Brand: "A", Quantity: 10},
	}
	summary := summarize(t, records, domain.FilterRequest{})

	assert.Equal(t, domain.Float(10), summary.MarketChange)
	assert.False(t, summary.MarketGrowth.Valid)
}
