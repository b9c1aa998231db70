package config

import "time"

// Application constants for the retail dashboard
const (
	// Application Info
	AppName    = "Retail Brand Dashboard"
	AppVersion = "1.2.0"

	// Rate Limiting
	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50

	// WebSocket
	WebSocketPingPeriod = 30 * time.Second
	WebSocketPongWait   = 60 * time.Second

	// File Paths (relative to the base directory)
	DefaultDataDir    = "data"
	DefaultReportsDir = "reports"
	DefaultLogsDir    = "logs"

	// Log Settings
	DefaultLogLevel = "info"

	// Source discovery
	YearlyFilePattern = "*_data.*"

	// Dashboard defaults
	DefaultTopN     = 10
	DefaultLineTopK = 8
	TreemapMinRows  = 12

	// MinBaseUnits is the prior-year volume a brand needs before its growth is ranked
	MinBaseUnits = 1000.0

	// Export file names
	FilteredCSVName = "filtered_retail_sales.csv"
	ReportHTMLName  = "retail_dashboard.html"
	ReportPDFName   = "retail_dashboard.pdf"
)
