// Package middleware holds the HTTP middleware of the stockviz API server:
// request ids, tracing, structured request logs, panic recovery, rate
// limiting and request body limits. Failures are written as RFC 7807 problem
// responses.
package middleware
