package reports

import (
	"context"
	"sort"

	"eterno-store/internal/apperr"
	"eterno-store/internal/auth"
	"eterno-store/internal/models"
	"eterno-store/internal/pricing"
)

// ValuationItem is one product row of the stock valuation.
type ValuationItem struct {
	ID    uint    `json:"id"`
	Name  string  `json:"name"`
	Stock int     `json:"stock"`
	Price float64 `json:"price"`
	Value float64 `json:"value"`
}

// CategoryGroup is one category table of the valuation.
type CategoryGroup struct {
	CategoryName string          `json:"category_name"`
	Items        []ValuationItem `json:"items"`
	Subtotal     float64         `json:"subtotal"`
}

type Valuation struct {
	Categories []CategoryGroup `json:"categories"`
	GrandTotal float64         `json:"grand_total"`
}

// StockValuation values the stock on hand at retail price, grouped by
// category.
func (s *Service) StockValuation(ctx context.Context, p auth.Principal) (*Valuation, error) {
	if err := p.RequireAdmin(); err != nil {
		return nil, err
	}
	var products []models.Product
	if err := s.db.WithContext(ctx).Order("name").Find(&products).Error; err != nil {
		return nil, apperr.Internal("Failed to fetch inventory", err)
	}

	grouped := make(map[string]*CategoryGroup)
	var grand float64
	for _, pr := range products {
		name := pr.Category
		if name == "" {
			name = "Uncategorized"
		}
		group, ok := grouped[name]
		if !ok {
			group = &CategoryGroup{CategoryName: name, Items: []ValuationItem{}}
			grouped[name] = group
		}
		value := pricing.Round2(float64(pr.Stock) * pr.Price)
		group.Items = append(group.Items, ValuationItem{ID: pr.ID, Name: pr.Name, Stock: pr.Stock, Price: pr.Price, Value: value})
		group.Subtotal = pricing.Round2(group.Subtotal + value)
		grand += value
	}

	out := &Valuation{Categories: make([]CategoryGroup, 0, len(grouped)), GrandTotal: pricing.Round2(grand)}
	for _, g := range grouped {
		out.Categories = append(out.Categories, *g)
	}
	sort.Slice(out.Categories, func(i, j int) bool {
		return out.Categories[i].CategoryName < out.Categories[j].CategoryName
	})
	return out, nil
}

type TopSeller struct {
	ProductID   uint    `json:"product_id"`
	ProductName string  `json:"product_name"`
	Sold        int     `json:"sold"`
	Revenue     float64 `json:"revenue"`
}

// TopSelling ranks products by units sold across both ledgers since the
// overall baseline. Cancelled orders are left out.
func (s *Service) TopSelling(ctx context.Context, p auth.Principal, n int) ([]TopSeller, error) {
	if err := p.RequireAdmin(); err != nil {
		return nil, err
	}
	w, err := s.baseline(ctx)
	if err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)

	var sales []models.Sale
	if err := w.Scope(db.Model(&models.Sale{})).Select("id", "items").Find(&sales).Error; err != nil {
		return nil, apperr.Internal("Failed to fetch sales", err)
	}
	var orders []models.Order
	if err := w.Scope(db.Model(&models.Order{})).Where("status <> ?", models.StatusCancelled).Select("id", "items").Find(&orders).Error; err != nil {
		return nil, apperr.Internal("Failed to fetch orders", err)
	}

	totals := make(map[uint]*TopSeller)
	add := func(items models.LineItems) {
		for _, it := range items {
			t, ok := totals[it.ProductID]
			if !ok {
				t = &TopSeller{ProductID: it.ProductID}
				totals[it.ProductID] = t
			}
			if t.ProductName == "" {
				t.ProductName = it.ProductName
			}
			t.Sold += it.Quantity
			t.Revenue += it.Total()
		}
	}
	for _, sale := range sales {
		add(sale.Items)
	}
	for _, o := range orders {
		add(o.Items)
	}

	out := make([]TopSeller, 0, len(totals))
	for _, t := range totals {
		t.Revenue = pricing.Round2(t.Revenue)
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Sold != out[j].Sold {
			return out[i].Sold > out[j].Sold
		}
		return out[i].ProductID < out[j].ProductID
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out, nil
}
