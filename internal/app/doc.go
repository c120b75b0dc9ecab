// Package app wires the stockviz HTTP API: it builds the shared
// StockService, mounts the handlers behind the middleware chain and manages
// the server lifecycle.
//
//	a, err := app.NewApplication(cfg, tel, logger)
//	if err != nil {
//	    return err
//	}
//	return a.Run(ctx) // returns after ctx is cancelled and the server drained
//
// Routes:
//
//	GET  /api/health
//	GET  /api/health/ready
//	GET  /api/version
//	POST /api/v1/stock/{summary,chart,report}
//	GET  /metrics (when telemetry is enabled)
//
// Initialization errors are returned to the caller; the package never calls
// os.Exit.
package app
