// Package http exposes the stock pipeline over HTTP.
//
// Routes (mounted by internal/app):
//
//	POST /api/v1/stock/summary   CSV or XLSX body, JSON StatsSummary response
//	POST /api/v1/stock/chart     CSV or XLSX body, image/png response
//	POST /api/v1/stock/report    CSV or XLSX body, report (?format=text|markdown|xlsx)
//	GET  /api/health             health status and accepted input
//	GET  /api/health/ready       503 unless a chart can be rendered
//	GET  /api/version            build information
//
// The request body format follows its Content-Type: a spreadsheetml type is
// read as XLSX, anything else as CSV. Errors are returned as RFC 7807 problem
// details.
package http
