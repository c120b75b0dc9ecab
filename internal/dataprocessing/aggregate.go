package dataprocessing

import (
	"math"
	"strconv"

	apierrors "stockviz/internal/errors"
	"stockviz/pkg/contracts/domain"
)

// Aggregate computes the summary statistics of a table. It does not modify
// the table. Max and Min resolve ties to the first product in table order.
// A total that does not fit in an int is rejected at the row that overflows it.
func Aggregate(table *domain.StockTable) (*domain.StatsSummary, error) {
	if table.Len() == 0 {
		return nil, apierrors.NewEmptyDataError("no records to aggregate")
	}

	total := 0
	maxIdx, minIdx := 0, 0
	for i, r := range table.Records {
		if r.Stock > math.MaxInt-total {
			return nil, apierrors.NewValidationError(i+1, "stock", apierrors.ReasonStockOutOfRange, strconv.Itoa(r.Stock)).
				WithDetail("total stock exceeds %d", math.MaxInt)
		}
		total += r.Stock
		if r.Stock > table.Records[maxIdx].Stock {
			maxIdx = i
		}
		if r.Stock < table.Records[minIdx].Stock {
			minIdx = i
		}
	}
	if total == 0 {
		return nil, apierrors.NewEmptyDataError("total stock is zero")
	}

	shares := make([]domain.ItemShare, len(table.Records))
	for i, r := range table.Records {
		shares[i] = domain.ItemShare{
			Product: r.Product,
			Stock:   r.Stock,
			Percent: float64(r.Stock) / float64(total) * 100,
		}
	}

	return &domain.StatsSummary{
		Total:   total,
		Count:   len(table.Records),
		Average: float64(total) / float64(len(table.Records)),
		Max:     shares[maxIdx],
		Min:     shares[minIdx],
		Shares:  shares,
	}, nil
}
