package salesdata

import "errors"

var (
	// ErrUnresolvableYear means neither the file name nor the headers carry a 20xx year
	ErrUnresolvableYear = errors.New("no year found in file name or headers")

	// ErrTooFewColumns means the table cannot provide both a brand and a quantity column
	ErrTooFewColumns = errors.New("table has fewer than two columns")

	// ErrUnsupportedFormat means the file extension has no reader
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrNoValidRecords means every row was dropped during normalization
	ErrNoValidRecords = errors.New("no valid records")

	// ErrEmptyTable means the source has no header row
	ErrEmptyTable = errors.New("table has no header row")
)

// Skip reasons reported in logs and metrics
const (
	SkipUnreadable     = "unreadable"
	SkipTooFewColumns  = "too_few_columns"
	SkipNoYear         = "no_year"
	SkipNoValidRecords = "no_valid_records"
)

// SkipReason classifies why a file was left out of a merge
func SkipReason(err error) string {
	switch {
	case errors.Is(err, ErrUnresolvableYear):
		return SkipNoYear
	case errors.Is(err, ErrTooFewColumns):
		return SkipTooFewColumns
	case errors.Is(err, ErrNoValidRecords):
		return SkipNoValidRecords
	default:
		return SkipUnreadable
	}
}
