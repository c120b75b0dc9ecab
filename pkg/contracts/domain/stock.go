package domain

// StockRecord represents one product line of an inventory file.
// Product names are unique within a StockTable.
type StockRecord struct {
	Product string `json:"product" validate:"required"`
	Stock   int    `json:"stock" validate:"gte=0"`
}

// StockTable is the ordered result of one load. Records keep the input row order.
type StockTable struct {
	Source  string        `json:"source,omitempty"`
	Records []StockRecord `json:"records" validate:"dive"`
}

// Len returns the number of records in the table.
func (t *StockTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// Products returns the product names in table order.
func (t *StockTable) Products() []string {
	if t == nil {
		return nil
	}
	products := make([]string, len(t.Records))
	for i, r := range t.Records {
		products[i] = r.Product
	}
	return products
}

// ItemShare is a product's stock together with its share of the total stock.
type ItemShare struct {
	Product string  `json:"product"`
	Stock   int     `json:"stock"`
	Percent float64 `json:"percent"`
}

// StatsSummary is derived from a StockTable and never persisted on its own.
type StatsSummary struct {
	Total   int         `json:"total"`
	Count   int         `json:"count"`
	Average float64     `json:"average"`
	Max     ItemShare   `json:"max"`
	Min     ItemShare   `json:"min"`
	Shares  []ItemShare `json:"shares"`
}

// Share returns the share of the named product.
func (s *StatsSummary) Share(product string) (ItemShare, bool) {
	if s == nil {
		return ItemShare{}, false
	}
	for _, share := range s.Shares {
		if share.Product == product {
			return share, true
		}
	}
	return ItemShare{}, false
}

// ShareMap returns the shares keyed by product.
func (s *StatsSummary) ShareMap() map[string]float64 {
	if s == nil {
		return nil
	}
	m := make(map[string]float64, len(s.Shares))
	for _, share := range s.Shares {
		m[share.Product] = share.Percent
	}
	return m
}
