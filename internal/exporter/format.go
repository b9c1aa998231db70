package exporter

import (
	"strconv"

	"github.com/Kalmbyy/retail-dashboard/pkg/contracts/domain"
)

// formatQuantity prints whole unit counts without decimals and keeps fractions as-is
func formatQuantity(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatYear(y int) string {
	return strconv.Itoa(y)
}

// formatUnits formats a unit count for display, with a placeholder when undefined
func formatUnits(n domain.NullFloat64) string {
	if !n.Valid {
		return "-"
	}
	return groupThousands(strconv.FormatFloat(n.Float64, 'f', 0, 64))
}

// formatPercent formats a percentage with two decimals, with a placeholder when undefined
func formatPercent(n domain.NullFloat64) string {
	if !n.Valid {
		return "-"
	}
	return n.Format(2) + "%"
}

func groupThousands(s string) string {
	sign := ""
	if len(s) > 0 && s[0] == '-' {
		sign, s = "-", s[1:]
	}
	if len(s) <= 3 {
		return sign + s
	}
	head := len(s) % 3
	if head == 0 {
		head = 3
	}
	out := s[:head]
	for i := head; i < len(s); i += 3 {
		out += "," + s[i:i+3]
	}
	return sign + out
}
