package salesdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanColumnName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Brand", "Brand"},
		{"  Retail   Sales\t2021 ", "Retail Sales 2021"},
		{"\ufeffBrand", "Brand"},
		{"Merek\n Mobil", "Merek Mobil"},
		{"   ", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanColumnName(tt.in), "input %q", tt.in)
	}
}

func TestCleanColumnsDoesNotMutate(t *testing.T) {
	in := []string{" Brand ", "Retail  Units"}
	out := CleanColumns(in)

	assert.Equal(t, []string{"Brand", "Retail Units"}, out)
	assert.Equal(t, " Brand ", in[0])
}

func TestResolveColumns(t *testing.T) {
	tests := []struct {
		name    string
		columns []string
		want    ColumnMapping
	}{
		{
			name:    "named columns in any position",
			columns: []string{"No", "Retail Sales", "Brand Name"},
			want:    ColumnMapping{Brand: 2, Quantity: 1},
		},
		{
			name:    "case insensitive",
			columns: []string{"BRAND", "RETAIL"},
			want:    ColumnMapping{Brand: 0, Quantity: 1},
		},
		{
			name:    "first match wins",
			columns: []string{"Brand", "Retail 2020", "Retail 2021"},
			want:    ColumnMapping{Brand: 0, Quantity: 1},
		},
		{
			name:    "positional fallback",
			columns: []string{"Merek", "Penjualan", "Wholesale"},
			want:    ColumnMapping{Brand: 0, Quantity: 1},
		},
		{
			name:    "fallback for one side only",
			columns: []string{"Units", "Retail", "Maker Brand"},
			want:    ColumnMapping{Brand: 2, Quantity: 1},
		},
		{
			name:    "single column leaves quantity unresolved",
			columns: []string{"Brand Retail"},
			want:    ColumnMapping{Brand: 0, Quantity: -1},
		},
		{
			name:    "no columns",
			columns: nil,
			want:    ColumnMapping{Brand: -1, Quantity: -1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveColumns(tt.columns)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.Brand >= 0 && tt.want.Quantity >= 0, got.Complete())
		})
	}
}
