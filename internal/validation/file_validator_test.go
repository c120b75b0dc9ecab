package validation

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "stockviz/internal/errors"
	"stockviz/internal/shared/testutil"
)

func TestFileValidator_ValidateInputFile(t *testing.T) {
	tests := []struct {
		name      string
		setupFunc func(t *testing.T) string
		wantErr   error
		contains  string
	}{
		{
			name: "valid csv",
			setupFunc: func(t *testing.T) string {
				return testutil.WriteCSV(t, "stock.csv", testutil.SampleCSV)
			},
		},
		{
			name: "valid xlsx",
			setupFunc: func(t *testing.T) string {
				return testutil.WriteXLSX(t, "stock.xlsx", [][]any{{"Product", "Stock"}})
			},
		},
		{
			name: "upper case extension",
			setupFunc: func(t *testing.T) string {
				return testutil.WriteCSV(t, "STOCK.CSV", testutil.SampleCSV)
			},
		},
		{
			name: "non-existent file",
			setupFunc: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "missing.csv")
			},
			wantErr: apierrors.ErrIO,
		},
		{
			name: "directory",
			setupFunc: func(t *testing.T) string {
				dir := filepath.Join(t.TempDir(), "data.csv")
				require.NoError(t, os.Mkdir(dir, 0755))
				return dir
			},
			wantErr:  apierrors.ErrIO,
			contains: "not a regular file",
		},
		{
			name: "unsupported extension",
			setupFunc: func(t *testing.T) string {
				return testutil.WriteCSV(t, "stock.txt", testutil.SampleCSV)
			},
			wantErr:  apierrors.ErrValidation,
			contains: ".csv, .xlsx",
		},
		{
			name: "excel lock file",
			setupFunc: func(t *testing.T) string {
				return testutil.WriteCSV(t, "~$stock.xlsx", "")
			},
			wantErr:  apierrors.ErrValidation,
			contains: "lock file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			err := NewFileValidator(logger).ValidateInputFile(tt.setupFunc(t))

			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			if tt.contains != "" {
				assert.Contains(t, err.Error(), tt.contains)
			}
		})
	}
}

func TestFileValidator_ValidateOutputFile(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	v := NewFileValidator(logger)

	t.Run("creates missing directories", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "a", "b")
		require.NoError(t, v.ValidateOutputFile(filepath.Join(dir, "chart.png")))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries, "temporary write check file must be removed")
	})

	t.Run("path is a directory", func(t *testing.T) {
		err := v.ValidateOutputFile(t.TempDir())
		assert.True(t, errors.Is(err, apierrors.ErrIO))
	})

	t.Run("parent is a file", func(t *testing.T) {
		blocker := testutil.WriteCSV(t, "blocker", "x")
		err := v.ValidateOutputFile(filepath.Join(blocker, "chart.png"))
		assert.True(t, errors.Is(err, apierrors.ErrIO))
	})

	testutil.AssertLogAttr(t, handler, "component", "file_validator")
}
