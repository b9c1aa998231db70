// Package analytics turns the unified sales dataset into everything the dashboard shows.
//
// All functions are pure: they take records (and a Selection) and return new values
// without touching their inputs. Market-level aggregates and year-over-year metrics are
// always derived from the complete dataset, while shares inside a FilteredView are
// relative to the filtered subset only.
//
// Main entry points:
//
//	totals := analytics.YearTotals(records)
//	yoy := analytics.DeriveYoY(records)
//	sel, err := analytics.NewSelection(req, analytics.Years(records), settings)
//	view := analytics.ApplyFilters(records, sel, yoy)
//	summary := analytics.Summarize(records, view, yoy, sel.KPIYear, settings.MinBaseUnits)
//	charts := analytics.BuildCharts(records, view, sel, settings)
//
// Undefined metrics are represented with domain.NullFloat64 and are never coerced to zero.
package analytics
