package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"eterno-store/internal/auth"
	"eterno-store/internal/models"
	"eterno-store/internal/reports"
	"eterno-store/internal/shop"
)

// Catalog is the part of the shop the assistant may touch.
type Catalog interface {
	ListProducts(ctx context.Context, p auth.Principal) ([]models.Product, error)
	CreateProduct(ctx context.Context, p auth.Principal, in shop.ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, p auth.Principal, id uint, patch shop.ProductPatch) (*models.Product, error)
}

// Ledger is the reporting surface the assistant reads.
type Ledger interface {
	RevenueBetween(ctx context.Context, p auth.Principal, start, end time.Time) (*reports.RevenueSummary, error)
	ListTransactions(ctx context.Context, p auth.Principal, limit int) (*reports.TransactionList, error)
}

// Toolbox runs assistant tool calls through the store services with the
// caller's own Principal, so the assistant can never do more than its user.
type Toolbox struct {
	catalog Catalog
	ledger  Ledger
	loc     *time.Location
}

func NewToolbox(catalog Catalog, ledger Ledger, loc *time.Location) *Toolbox {
	if loc == nil {
		loc = time.UTC
	}
	return &Toolbox{catalog: catalog, ledger: ledger, loc: loc}
}

const (
	ToolCheckInventory     = "check_inventory"
	ToolUpdatePrice        = "update_product_price"
	ToolCreateProduct      = "create_product"
	ToolRevenueReport      = "get_revenue_report"
	ToolRecentTransactions = "get_recent_transactions"
)

func number(args map[string]any, key string) (float64, error) {
	switch v := args[key].(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("%s must be a number", key)
	}
}

func text(args map[string]any, key string) (string, error) {
	v, ok := args[key].(string)
	if !ok || strings.TrimSpace(v) == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return strings.TrimSpace(v), nil
}

// Execute runs one tool call and returns its JSON-able result.
func (t *Toolbox) Execute(ctx context.Context, p auth.Principal, name string, args map[string]any) (map[string]any, error) {
	switch name {
	case ToolCheckInventory:
		products, err := t.catalog.ListProducts(ctx, p)
		if err != nil {
			return nil, err
		}
		type item struct {
			ID       uint    `json:"id"`
			Name     string  `json:"name"`
			Category string  `json:"category"`
			Stock    int     `json:"stock"`
			Price    float64 `json:"price"`
		}
		list := make([]item, 0, len(products))
		for _, pr := range products {
			list = append(list, item{ID: pr.ID, Name: pr.Name, Category: pr.Category, Stock: pr.Stock, Price: pr.Price})
		}
		return map[string]any{"inventory": list}, nil

	case ToolUpdatePrice:
		id, err := number(args, "product_id")
		if err != nil {
			return nil, err
		}
		price, err := number(args, "new_price")
		if err != nil {
			return nil, err
		}
		product, err := t.catalog.UpdateProduct(ctx, p, uint(id), shop.ProductPatch{Price: &price})
		if err != nil {
			return nil, err
		}
		return map[string]any{"status": "updated", "id": product.ID, "name": product.Name, "new_price": product.Price}, nil

	case ToolCreateProduct:
		name, err := text(args, "name")
		if err != nil {
			return nil, err
		}
		price, err := number(args, "price")
		if err != nil {
			return nil, err
		}
		stock, err := number(args, "stock")
		if err != nil {
			return nil, err
		}
		category, _ := args["category"].(string)
		product, err := t.catalog.CreateProduct(ctx, p, shop.ProductInput{
			Name:     name,
			Price:    price,
			Stock:    int(stock),
			Category: category,
		})
		if err != nil {
			return nil, err
		}
		return map[string]any{"status": "created", "id": product.ID}, nil

	case ToolRevenueReport:
		startStr, err := text(args, "start_date")
		if err != nil {
			return nil, err
		}
		endStr, err := text(args, "end_date")
		if err != nil {
			return nil, err
		}
		start, err1 := time.ParseInLocation("2006-01-02", startStr, t.loc)
		end, err2 := time.ParseInLocation("2006-01-02", endStr, t.loc)
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("dates must be in YYYY-MM-DD format")
		}
		end = end.Add(24*time.Hour - time.Second)
		summary, err := t.ledger.RevenueBetween(ctx, p, start, end)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"revenue":      summary.Total,
			"from_orders":  summary.FromOrders,
			"from_pos":     summary.FromPOS,
			"orders_count": summary.OrdersCount,
			"pos_count":    summary.POSCount,
			"discounts":    summary.TotalDiscounts,
		}, nil

	case ToolRecentTransactions:
		limit := 10
		if n, err := number(args, "limit"); err == nil && n > 0 {
			limit = int(n)
		}
		if limit > 50 {
			limit = 50
		}
		list, err := t.ledger.ListTransactions(ctx, p, limit)
		if err != nil {
			return nil, err
		}
		type row struct {
			Reference string  `json:"reference"`
			Date      string  `json:"date"`
			Type      string  `json:"type"`
			Status    string  `json:"status"`
			Total     float64 `json:"total"`
		}
		rows := make([]row, 0, len(list.Transactions))
		for _, tx := range list.Transactions {
			rows = append(rows, row{tx.Reference, tx.CreatedAtDisplay, string(tx.RecordType), tx.Status, tx.TotalAmount})
		}
		return map[string]any{"transactions": rows, "combined_total": list.Totals.Combined}, nil
	}
	return nil, fmt.Errorf("unknown tool %q", name)
}
