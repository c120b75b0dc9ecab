package dataprocessing

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "stockviz/internal/errors"
	"stockviz/internal/shared/testutil"
	"stockviz/pkg/contracts/domain"
)

func newTestLoader(t *testing.T) *Loader {
	logger, _ := testutil.NewTestLogger(t)
	return NewLoader(logger, 0)
}

func TestLoader_Load(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []domain.StockRecord
	}{
		{
			name:  "basic",
			input: testutil.SampleCSV,
			want: []domain.StockRecord{
				{Product: "Mouse", Stock: 120},
				{Product: "Keyboard", Stock: 85},
				{Product: "Camera", Stock: 15},
			},
		},
		{
			name:  "aliases case and whitespace",
			input: " ITEM , Qty \n  Mouse  , 7 \n",
			want:  []domain.StockRecord{{Product: "Mouse", Stock: 7}},
		},
		{
			name:  "byte order mark",
			input: "\ufeffProduct,Stock\nMouse,1\n",
			want:  []domain.StockRecord{{Product: "Mouse", Stock: 1}},
		},
		{
			name:  "columns reordered with extra column",
			input: "sku,units,product name\nA1,4,Cable\nA2,0,Dock\n",
			want: []domain.StockRecord{
				{Product: "Cable", Stock: 4},
				{Product: "Dock", Stock: 0},
			},
		},
		{
			name:  "blank lines skipped",
			input: "\nProduct,Stock\n\nMouse,1\n,\nKeyboard,2\n",
			want: []domain.StockRecord{
				{Product: "Mouse", Stock: 1},
				{Product: "Keyboard", Stock: 2},
			},
		},
		{
			name:  "no trailing newline",
			input: "name,quantity\nMouse,3",
			want:  []domain.StockRecord{{Product: "Mouse", Stock: 3}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := newTestLoader(t).Load(context.Background(), strings.NewReader(tt.input), FormatCSV)
			require.NoError(t, err)
			assert.Equal(t, tt.want, table.Records)
		})
	}
}

func TestLoader_ValidationErrors(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantRow    int
		wantColumn string
		wantReason string
		wantValue  string
	}{
		{
			name:       "negative stock",
			input:      "Product,Stock\nMouse,120\nKeyboard,-5\n",
			wantRow:    2,
			wantColumn: "Stock",
			wantReason: apierrors.ReasonNegativeStock,
			wantValue:  "-5",
		},
		{
			name:       "non-numeric stock",
			input:      "Product,Stock\nMouse,lots\n",
			wantRow:    1,
			wantColumn: "Stock",
			wantReason: apierrors.ReasonNonNumericStock,
			wantValue:  "lots",
		},
		{
			name:       "fractional stock",
			input:      "Product,Stock\nMouse,1.5\n",
			wantRow:    1,
			wantColumn: "Stock",
			wantReason: apierrors.ReasonNonNumericStock,
			wantValue:  "1.5",
		},
		{
			name:       "empty stock",
			input:      "Product,Stock\nMouse, \n",
			wantRow:    1,
			wantColumn: "Stock",
			wantReason: apierrors.ReasonNonNumericStock,
		},
		{
			name:       "empty product",
			input:      "Product,Stock\nMouse,1\n  ,4\n",
			wantRow:    2,
			wantColumn: "Product",
			wantReason: apierrors.ReasonEmptyProduct,
		},
		{
			name:       "short row",
			input:      "Product,Stock\nMouse\n",
			wantRow:    1,
			wantColumn: "Stock",
			wantReason: apierrors.ReasonMissingColumn,
		},
		{
			name:       "duplicate product",
			input:      "Product,Stock\nMouse,1\nKeyboard,2\nMouse,3\n",
			wantRow:    3,
			wantColumn: "Product",
			wantReason: apierrors.ReasonDuplicateProduct,
			wantValue:  "Mouse",
		},
		{
			name:       "missing stock column",
			input:      "Product,Price\nMouse,10\n",
			wantRow:    0,
			wantColumn: "stock",
			wantReason: apierrors.ReasonMissingColumn,
		},
		{
			name:       "missing product column",
			input:      "Stock\n10\n",
			wantRow:    0,
			wantColumn: "product",
			wantReason: apierrors.ReasonMissingColumn,
		},
		{
			name:       "two stock columns",
			input:      "Product,Stock,Qty\nMouse,1,2\n",
			wantRow:    0,
			wantColumn: "Qty",
			wantReason: apierrors.ReasonDuplicateColumn,
		},
		{
			name:       "unbalanced quotes",
			input:      "Product,Stock\n\"Mouse,1\n",
			wantRow:    0,
			wantReason: apierrors.ReasonMalformedInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := newTestLoader(t).Load(context.Background(), strings.NewReader(tt.input), FormatCSV)
			require.Error(t, err)
			assert.Nil(t, table)
			assert.True(t, errors.Is(err, apierrors.ErrValidation))

			var verr *apierrors.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.wantRow, verr.Row)
			assert.Equal(t, tt.wantColumn, verr.Column)
			assert.Equal(t, tt.wantReason, verr.Reason)
			assert.Equal(t, tt.wantValue, verr.Value)
		})
	}
}

func TestLoader_DuplicateNamesFirstRow(t *testing.T) {
	_, err := newTestLoader(t).Load(context.Background(),
		strings.NewReader("Product,Stock\nMouse,1\nKeyboard,2\nMouse,3\n"), FormatCSV)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 3: duplicate product")
	assert.Contains(t, err.Error(), "first seen at row 1")
}

func TestLoader_EmptyData(t *testing.T) {
	inputs := map[string]string{
		"header only":      "Product,Stock\n",
		"header and blank": "Product,Stock\n\n,\n",
		"empty file":       "",
	}
	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			table, err := newTestLoader(t).Load(context.Background(), strings.NewReader(input), FormatCSV)
			require.Error(t, err)
			assert.Nil(t, table)
			assert.True(t, errors.Is(err, apierrors.ErrEmptyData))
			assert.Equal(t, apierrors.ErrTypeEmptyData, apierrors.TypeOf(err))
		})
	}
}

func TestLoader_MaxBytes(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	loader := NewLoader(logger, 10)

	_, err := loader.Load(context.Background(), strings.NewReader(testutil.SampleCSV), FormatCSV)
	require.Error(t, err)
	var verr *apierrors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, apierrors.ReasonInputTooLarge, verr.Reason)
}

func TestLoader_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestLoader(t).Load(ctx, strings.NewReader(testutil.SampleCSV), FormatCSV)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoader_LoadFile(t *testing.T) {
	loader := newTestLoader(t)
	ctx := context.Background()

	t.Run("csv", func(t *testing.T) {
		path := testutil.WriteCSV(t, "stock.csv", testutil.SampleCSV)
		table, err := loader.LoadFile(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, path, table.Source)
		assert.Equal(t, []string{"Mouse", "Keyboard", "Camera"}, table.Products())
	})

	t.Run("xlsx", func(t *testing.T) {
		path := testutil.WriteXLSX(t, "stock.xlsx", [][]any{
			{"Product", "Stock", "Notes"},
			{"Mouse", 120, "desk"},
			{"Keyboard", 85},
			{"Camera", 15},
		})
		table, err := loader.LoadFile(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, []domain.StockRecord{
			{Product: "Mouse", Stock: 120},
			{Product: "Keyboard", Stock: 85},
			{Product: "Camera", Stock: 15},
		}, table.Records)
	})

	t.Run("xlsx negative stock", func(t *testing.T) {
		path := testutil.WriteXLSX(t, "stock.xlsx", [][]any{
			{"Item", "Units"},
			{"Mouse", -1},
		})
		_, err := loader.LoadFile(ctx, path)
		var verr *apierrors.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, 1, verr.Row)
		assert.Equal(t, "Units", verr.Column)
		assert.Equal(t, apierrors.ReasonNegativeStock, verr.Reason)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loader.LoadFile(ctx, "does-not-exist.csv")
		require.Error(t, err)
		assert.True(t, errors.Is(err, apierrors.ErrIO))
		var ioErr *apierrors.IOError
		require.True(t, errors.As(err, &ioErr))
		assert.Equal(t, "open", ioErr.Op)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		path := testutil.WriteCSV(t, "stock.json", "{}")
		_, err := loader.LoadFile(ctx, path)
		var verr *apierrors.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, apierrors.ReasonUnsupportedInput, verr.Reason)
	})

	t.Run("csv bytes with xlsx extension", func(t *testing.T) {
		path := testutil.WriteCSV(t, "stock.xlsx", testutil.SampleCSV)
		_, err := loader.LoadFile(ctx, path)
		var verr *apierrors.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, apierrors.ReasonMalformedInput, verr.Reason)
	})
}

func TestFormatFromContentType(t *testing.T) {
	assert.Equal(t, FormatXLSX, FormatFromContentType("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"))
	assert.Equal(t, FormatCSV, FormatFromContentType("text/csv; charset=utf-8"))
	assert.Equal(t, FormatCSV, FormatFromContentType(""))
}
