package services

import (
	"errors"

	"github.com/Kalmbyy/retail-dashboard/internal/analytics"
)

// Dashboard service errors
var (
	// Dataset errors
	ErrEmptyDataset     = errors.New("no usable sales data loaded")
	ErrReloadInProgress = errors.New("dataset reload already in progress")

	// Filter errors
	ErrInvalidFilter      = errors.New("invalid filter")
	ErrEmptySelection     = analytics.ErrEmptySelection
	ErrKPIYearNotSelected = analytics.ErrKPIYearNotSelected

	// Export errors
	ErrExportFailed = errors.New("export failed")
)
