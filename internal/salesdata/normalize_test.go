package salesdata

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kalmbyy/retail-dashboard/pkg/contracts/domain"
)

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"1200", 1200, true},
		{" 42.5 ", 42.5, true},
		{"0", 0, true},
		{"1e3", 1000, true},
		{"", 0, false},
		{"n/a", 0, false},
		{"1,000", 0, false},
		{"-5", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"0x1p4", 0, false},
		{"+0X10", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseQuantity(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize(t *testing.T) {
	table, err := ReadCSV(strings.NewReader(
		"No,  Brand   Name ,Retail\n" +
			"1, Toyota ,1000\n" +
			"2,Honda,500\n" +
			"3,,300\n" +
			"4,Suzuki,-\n" +
			"5,Daihatsu\n" +
			"6,   ,10\n"))
	require.NoError(t, err)

	result, err := Normalize(table, 2020)
	require.NoError(t, err)

	assert.Equal(t, []domain.YearlyRecord{
		{Year: 2020, Brand: "Toyota", Quantity: 1000},
		{Year: 2020, Brand: "Honda", Quantity: 500},
	}, result.Records)
	assert.Equal(t, 4, result.Dropped)
}

func TestNormalizeIdempotent(t *testing.T) {
	table, err := ReadCSV(strings.NewReader("Brand,Retail\nToyota,1\nHonda,x\nMazda,3\n"))
	require.NoError(t, err)

	first, err := Normalize(table, 2022)
	require.NoError(t, err)
	second, err := Normalize(table, 2022)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, []string{"Brand", "Retail"}, table.Columns)
}

func TestNormalizeTooFewColumns(t *testing.T) {
	table, err := ReadCSV(strings.NewReader("Brand\nToyota\n"))
	require.NoError(t, err)

	_, err = Normalize(table, 2020)
	assert.ErrorIs(t, err, ErrTooFewColumns)
	assert.Equal(t, SkipTooFewColumns, SkipReason(err))
}
