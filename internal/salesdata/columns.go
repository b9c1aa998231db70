package salesdata

import (
	"regexp"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// CleanColumnName collapses whitespace runs to one space and trims the result.
// A leading UTF-8 byte order mark is removed as well.
func CleanColumnName(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(name, " "))
}

// CleanColumns returns a cleaned copy of columns
func CleanColumns(columns []string) []string {
	cleaned := make([]string, len(columns))
	for i, c := range columns {
		cleaned[i] = CleanColumnName(c)
	}
	return cleaned
}

// ColumnMapping holds the resolved column positions. -1 marks an unresolved column.
type ColumnMapping struct {
	Brand    int
	Quantity int
}

// Complete reports whether both columns resolved
func (m ColumnMapping) Complete() bool {
	return m.Brand >= 0 && m.Quantity >= 0
}

// columnRule picks the first column whose lower-cased name contains keyword,
// falling back to a fixed position when no name matches.
type columnRule struct {
	keyword  string
	fallback int
}

func (r columnRule) resolve(columns []string) int {
	for i, c := range columns {
		if strings.Contains(strings.ToLower(c), r.keyword) {
			return i
		}
	}
	if r.fallback < len(columns) {
		return r.fallback
	}
	return -1
}

var (
	brandRule    = columnRule{keyword: "brand", fallback: 0}
	quantityRule = columnRule{keyword: "retail", fallback: 1}
)

// ResolveColumns identifies the brand and quantity columns of an already cleaned header.
// It never fails: unmatched names fall back to positions 0 and 1, and a header with
// fewer than two columns leaves the quantity unresolved.
func ResolveColumns(columns []string) ColumnMapping {
	mapping := ColumnMapping{
		Brand:    brandRule.resolve(columns),
		Quantity: quantityRule.resolve(columns),
	}
	if len(columns) < 2 {
		mapping.Quantity = -1
	}
	return mapping
}
