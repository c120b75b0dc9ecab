package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/subcommands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockviz/internal/shared/testutil"
)

const sampleReport = `==================================================
STOCK ANALYSIS
==================================================
Total Stock: 220 units
Products: 3
Average Stock: 73.3 units
Highest: Mouse (120 units, 54.5%)
Lowest: Camera (15 units, 6.8%)
`

// runIn executes the CLI inside a fresh working directory holding files.
func runIn(t *testing.T, files map[string]string, args ...string) (code int, dir, stdout, stderr string) {
	t.Helper()
	dir = t.TempDir()
	t.Chdir(dir)
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	var out, errOut bytes.Buffer
	code = run(context.Background(), "stockviz", args, &out, &errOut)
	return code, dir, out.String(), errOut.String()
}

func TestChartCommand(t *testing.T) {
	code, dir, stdout, stderr := runIn(t, map[string]string{defaultInput: testutil.SampleCSV}, "chart")

	require.Equal(t, int(subcommands.ExitSuccess), code, stderr)
	assert.Equal(t, sampleReport+"Chart saved: stock_chart.png\n", stdout)

	data, err := os.ReadFile(filepath.Join(dir, "stock_chart.png"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
}

func TestChartCommand_CustomPaths(t *testing.T) {
	code, dir, stdout, _ := runIn(t, map[string]string{"inv.csv": testutil.SampleCSV},
		"chart", "-out", "out/pie.png", "inv.csv")

	require.Equal(t, int(subcommands.ExitSuccess), code)
	assert.Contains(t, stdout, "Chart saved: out/pie.png")
	assert.FileExists(t, filepath.Join(dir, "out", "pie.png"))
}

func TestChartCommand_Failures(t *testing.T) {
	tests := []struct {
		name      string
		files     map[string]string
		wantError string
	}{
		{
			name:      "missing input",
			files:     nil,
			wantError: "product_stock.csv",
		},
		{
			name:      "negative stock",
			files:     map[string]string{defaultInput: "Product,Stock\nMouse,-1\n"},
			wantError: "negative stock",
		},
		{
			name:      "header only",
			files:     map[string]string{defaultInput: "Product,Stock\n"},
			wantError: "empty data",
		},
		{
			name:      "all zero",
			files:     map[string]string{defaultInput: "Product,Stock\nMouse,0\n"},
			wantError: "total stock is zero",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, dir, stdout, stderr := runIn(t, tt.files, "chart")

			assert.Equal(t, int(subcommands.ExitFailure), code)
			assert.Empty(t, stdout)
			assert.Contains(t, stderr, "Error: ")
			assert.Contains(t, stderr, tt.wantError)
			assert.NoFileExists(t, filepath.Join(dir, "stock_chart.png"))
		})
	}
}

func TestReportCommand(t *testing.T) {
	files := map[string]string{defaultInput: testutil.SampleCSV}

	code, dir, stdout, _ := runIn(t, files, "report")
	require.Equal(t, int(subcommands.ExitSuccess), code)
	assert.Equal(t, sampleReport, stdout)
	assert.NoFileExists(t, filepath.Join(dir, "stock_chart.png"))

	code, _, stdout, _ = runIn(t, files, "report", "-markdown")
	require.Equal(t, int(subcommands.ExitSuccess), code)
	assert.Contains(t, stdout, "## Stock Analysis")
	assert.Contains(t, stdout, "| Keyboard | 85 | 38.6% |")
}

func TestExportCommand(t *testing.T) {
	code, dir, stdout, stderr := runIn(t, map[string]string{defaultInput: testutil.SampleCSV},
		"export", "-out", "stock.xlsx", "-shares", "shares.csv")

	require.Equal(t, int(subcommands.ExitSuccess), code, stderr)
	assert.Contains(t, stdout, "Workbook saved: stock.xlsx")
	assert.Contains(t, stdout, "Shares saved: shares.csv")
	assert.FileExists(t, filepath.Join(dir, "stock.xlsx"))

	shares, err := os.ReadFile(filepath.Join(dir, "shares.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(shares), "Mouse,120,54.5")
}

func TestMetricsFileFlag(t *testing.T) {
	code, dir, _, stderr := runIn(t, map[string]string{defaultInput: testutil.SampleCSV},
		"-metrics-file", "stockviz.prom", "report")

	require.Equal(t, int(subcommands.ExitSuccess), code, stderr)
	data, err := os.ReadFile(filepath.Join(dir, "stockviz.prom"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "stockviz_pipeline_runs")
	assert.Contains(t, string(data), `operation="report"`)
}

func TestUsageErrors(t *testing.T) {
	code, _, _, _ := runIn(t, nil, "report", "a.csv", "b.csv")
	assert.Equal(t, int(subcommands.ExitUsageError), code)

	code, _, _, _ = runIn(t, nil, "no-such-command")
	assert.Equal(t, int(subcommands.ExitUsageError), code)

}

func TestConfigErrors(t *testing.T) {
	tests := []struct {
		name      string
		files     map[string]string
		args      []string
		wantError string
	}{
		{
			name:      "bad log level flag",
			files:     map[string]string{defaultInput: testutil.SampleCSV},
			args:      []string{"-log-level", "loud", "report"},
			wantError: "[CONFIG] invalid flags",
		},
		{
			name:      "missing config file",
			files:     map[string]string{defaultInput: testutil.SampleCSV},
			args:      []string{"-config", "nope.yaml", "report"},
			wantError: "[CONFIG] failed to load configuration",
		},
		{
			name: "invalid config value",
			files: map[string]string{
				defaultInput:    testutil.SampleCSV,
				"stockviz.yaml": "chart:\n  width: 10\n",
			},
			args:      []string{"chart"},
			wantError: "[CONFIG] failed to load configuration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, dir, stdout, stderr := runIn(t, tt.files, tt.args...)

			assert.Equal(t, int(subcommands.ExitFailure), code)
			assert.Empty(t, stdout)
			assert.Contains(t, stderr, tt.wantError)
			assert.NoFileExists(t, filepath.Join(dir, "stock_chart.png"))
		})
	}
}
