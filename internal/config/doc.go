// Package config loads the stockviz configuration.
//
// # Configuration Sources
//
// Configuration is assembled in order of increasing precedence:
//
//	1. Default values (Default)
//	2. A YAML file: the -config flag, STOCKVIZ_CONFIG, stockviz.yaml or configs/stockviz.yaml
//	3. Environment variables prefixed with STOCKVIZ_
//
// # Environment Variables
//
// Nested sections use the section name as an infix:
//
//	STOCKVIZ_LOGGING_LEVEL=debug
//	STOCKVIZ_CHART_WIDTH=1600
//	STOCKVIZ_SERVER_ADDR=:8080
//	STOCKVIZ_TELEMETRY_TRACE_EXPORTER=stdout
//
// # Validation
//
// The merged configuration is validated with go-playground/validator struct tags
// before it is returned.
package config
