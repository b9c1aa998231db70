package salesdata

import (
	"math"
	"strconv"
	"strings"

	"github.com/Kalmbyy/retail-dashboard/pkg/contracts/domain"
)

// NormalizeResult is the long-format content of one table
type NormalizeResult struct {
	Records []domain.YearlyRecord
	// Dropped counts rows discarded for an empty brand or an invalid quantity
	Dropped int
}

// ParseQuantity coerces a cell to a unit count.
// Only plain decimal or scientific notation is accepted; thousands separators,
// hex floats, negative numbers and non-finite values are invalid.
func ParseQuantity(cell string) (float64, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" || isHexToken(cell) {
		return 0, false
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	return v, true
}

// Normalize converts a raw table into records stamped with year.
// The table is not modified. Rows keep their source order.
func Normalize(table *RawTable, year int) (NormalizeResult, error) {
	mapping := ResolveColumns(CleanColumns(table.Columns))
	if !mapping.Complete() {
		return NormalizeResult{}, ErrTooFewColumns
	}

	result := NormalizeResult{
		Records: make([]domain.YearlyRecord, 0, len(table.Rows)),
	}

	for _, row := range table.Rows {
		brand := strings.TrimSpace(row[mapping.Brand])
		quantity, ok := ParseQuantity(row[mapping.Quantity])
		if brand == "" || !ok {
			result.Dropped++
			continue
		}

		result.Records = append(result.Records, domain.YearlyRecord{
			Year:     year,
			Brand:    brand,
			Quantity: quantity,
		})
	}

	return result, nil
}

func isHexToken(cell string) bool {
	unsigned := strings.TrimLeft(cell, "+-")
	return strings.HasPrefix(unsigned, "0x") || strings.HasPrefix(unsigned, "0X")
}
