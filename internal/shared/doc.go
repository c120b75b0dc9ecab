// Package shared holds helpers used by more than one package.
//
// The testutil subpackage captures slog output for log assertions and writes
// small CSV and XLSX inventory fixtures into a test's temp directory.
package shared
