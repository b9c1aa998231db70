package salesdata

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
)

// yearToken matches the 2000-2099 years a source file can describe
var yearToken = regexp.MustCompile(`20\d{2}`)

func findYear(s string) (int, bool) {
	token := yearToken.FindString(s)
	if token == "" {
		return 0, false
	}
	year, err := strconv.Atoi(token)
	if err != nil {
		return 0, false
	}
	return year, true
}

// YearFromFilename returns the first 20xx token of the base name of path
func YearFromFilename(path string) (int, bool) {
	return findYear(filepath.Base(path))
}

// YearFromColumns returns the year of the first header containing a 20xx token
func YearFromColumns(columns []string) (int, bool) {
	for _, c := range columns {
		if year, ok := findYear(c); ok {
			return year, true
		}
	}
	return 0, false
}

// ResolveYear prefers the file name and falls back to the headers
func ResolveYear(path string, columns []string) (int, error) {
	if year, ok := YearFromFilename(path); ok {
		return year, nil
	}
	if year, ok := YearFromColumns(columns); ok {
		return year, nil
	}
	return 0, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnresolvableYear)
}
