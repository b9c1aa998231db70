// Package config provides centralized configuration management for the retail dashboard.
// It loads configuration from multiple sources, validates it, and exposes typed
// sections for the server, logging, paths, telemetry and the sales pipeline defaults.
//
// # Configuration Sources
//
// Configuration is assembled in the following order, later sources winning:
//
//  1. Default() values
//  2. YAML file (config.yaml, configs/config.yaml, or SALES_CONFIG_FILE)
//  3. Environment variables
//
// # Environment Variables
//
// Variables follow the pattern SALES_<SECTION>_<FIELD>:
//
//	SALES_SERVER_PORT=8080
//	SALES_PATHS_DATA_DIR=/srv/sales/data
//	SALES_DASHBOARD_DEFAULT_TOP_N=15
//	SALES_DASHBOARD_MIN_BASE_UNITS=500
//	SALES_LOGGING_LEVEL=debug
//
// # Path Management
//
// ResolvePaths turns the configured directories into absolute paths:
//
//	paths, err := cfg.ResolvePaths()
//	csvPath := paths.GetReportPath(config.FilteredCSVName)
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
package config
