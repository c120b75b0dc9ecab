package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStockTable_Products(t *testing.T) {
	table := &StockTable{Records: []StockRecord{
		{Product: "Mouse", Stock: 120},
		{Product: "Keyboard", Stock: 85},
	}}

	assert.Equal(t, 2, table.Len())
	assert.Equal(t, []string{"Mouse", "Keyboard"}, table.Products())

	var empty *StockTable
	assert.Equal(t, 0, empty.Len())
	assert.Nil(t, empty.Products())
}

func TestStatsSummary_Share(t *testing.T) {
	summary := &StatsSummary{Shares: []ItemShare{
		{Product: "Mouse", Stock: 120, Percent: 80},
		{Product: "Camera", Stock: 30, Percent: 20},
	}}

	share, ok := summary.Share("Camera")
	assert.True(t, ok)
	assert.Equal(t, 30, share.Stock)

	_, ok = summary.Share("Monitor")
	assert.False(t, ok)

	assert.Equal(t, map[string]float64{"Mouse": 80, "Camera": 20}, summary.ShareMap())
}
