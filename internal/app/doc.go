// Package app wires the retail dashboard together and manages its lifecycle.
//
// # Initialization Flow
//
//  1. Load configuration (defaults, YAML overlay, SALES_* environment)
//  2. Initialize the slog logger and OpenTelemetry providers
//  3. Resolve paths and create the reports and logs directories
//  4. Build the cached table loader, the merger and the dashboard service
//  5. Start the websocket hub and build the health service
//  6. Set up the chi router, middleware chain and HTTP server
//
// Start optionally performs the first merge of the data directory before the
// listener comes up; an empty or unreadable folder leaves the API serving but
// not ready.
//
// # Usage
//
//	app, err := app.NewApplication()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := app.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// Run waits for SIGINT or SIGTERM, then drains in-flight requests, disconnects
// websocket clients and flushes the telemetry providers.
package app
