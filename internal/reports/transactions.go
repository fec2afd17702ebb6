package reports

import (
	"fmt"
	"sort"
	"time"

	"eterno-store/internal/models"
	"eterno-store/internal/pricing"
)

type RecordType string

const (
	RecordPOSSale       RecordType = "pos_sale"
	RecordCustomerOrder RecordType = "customer_order"
)

const onlineCheckout = "Online Checkout"

// Transaction is the normalised, read-only shape shared by POS sales and
// customer orders.
type Transaction struct {
	ID               uint             `json:"id"`
	RecordType       RecordType       `json:"record_type"`
	Reference        string           `json:"reference"`
	CreatedAt        time.Time        `json:"-"`
	CreatedAtISO     string           `json:"created_at"`
	CreatedAtDisplay string           `json:"created_at_display"`
	CustomerName     *string          `json:"customer_name"`
	CustomerEmail    *string          `json:"customer_email"`
	CustomerAddress  *string          `json:"customer_address"`
	PaymentMethod    string           `json:"payment_method"`
	Status           string           `json:"status"`
	Subtotal         float64          `json:"subtotal"`
	ShippingFee      float64          `json:"shipping_fee"`
	DiscountAmount   float64          `json:"discount_amount"`
	DiscountType     *string          `json:"discount_type"`
	TotalAmount      float64          `json:"total_amount"`
	Items            models.LineItems `json:"items"`
	ProcessedBy      string           `json:"processed_by"`
}

func SaleReference(id uint) string  { return fmt.Sprintf("POS-%05d", id) }
func OrderReference(id uint) string { return fmt.Sprintf("ORD-%05d", id) }

// FromSale normalises a POS sale. cashier falls back to "Admin".
func FromSale(s models.Sale, cashier string, f Formatter) Transaction {
	if cashier == "" {
		cashier = "Admin"
	}
	items := s.Items
	if items == nil {
		items = models.LineItems{}
	}
	var discountType *string
	if s.DiscountType != models.DiscountNone {
		dt := string(s.DiscountType)
		discountType = &dt
	}
	return Transaction{
		ID:               s.ID,
		RecordType:       RecordPOSSale,
		Reference:        SaleReference(s.ID),
		CreatedAt:        s.CreatedAt,
		CreatedAtISO:     f.ISO(s.CreatedAt),
		CreatedAtDisplay: f.Display(s.CreatedAt),
		PaymentMethod:    string(s.PaymentMethod),
		Status:           string(models.StatusCompleted),
		Subtotal:         pricing.Round2(items.Subtotal()),
		DiscountAmount:   s.DiscountAmount,
		DiscountType:     discountType,
		TotalAmount:      s.TotalAmount,
		Items:            items,
		ProcessedBy:      cashier,
	}
}

// FromOrder normalises a customer order. The discount is back-computed from
// the stored amounts.
func FromOrder(o models.Order, f Formatter) Transaction {
	items := o.Items
	if items == nil {
		items = models.LineItems{}
	}
	name, email, address := o.CustomerName, o.CustomerEmail, o.CustomerAddress
	discount := pricing.OrderDiscount(o.Subtotal, o.ShippingFee, o.TotalAmount)
	var discountType *string
	if discount > 0 {
		dt := string(models.DiscountVoucher)
		discountType = &dt
	}
	return Transaction{
		ID:               o.ID,
		RecordType:       RecordCustomerOrder,
		Reference:        OrderReference(o.ID),
		CreatedAt:        o.CreatedAt,
		CreatedAtISO:     f.ISO(o.CreatedAt),
		CreatedAtDisplay: f.Display(o.CreatedAt),
		CustomerName:     &name,
		CustomerEmail:    &email,
		CustomerAddress:  &address,
		PaymentMethod:    string(o.PaymentMethod),
		Status:           string(o.Status),
		Subtotal:         o.Subtotal,
		ShippingFee:      o.ShippingFee,
		DiscountAmount:   discount,
		DiscountType:     discountType,
		TotalAmount:      o.TotalAmount,
		Items:            items,
		ProcessedBy:      onlineCheckout,
	}
}

// Merge interleaves both ledgers newest first and then applies limit
// (limit <= 0 keeps everything). Ties keep fetch order, orders before sales.
func Merge(orders []models.Order, sales []models.Sale, cashiers map[uint]string, limit int, f Formatter) []Transaction {
	out := make([]Transaction, 0, len(orders)+len(sales))
	for _, o := range orders {
		out = append(out, FromOrder(o, f))
	}
	for _, s := range sales {
		out = append(out, FromSale(s, cashiers[s.UserID], f))
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Totals counts the rows of each ledger that passed the baseline filter.
type Totals struct {
	CustomerOrders int64 `json:"customer_orders"`
	POSSales       int64 `json:"pos_sales"`
	Combined       int64 `json:"combined"`
}

type TransactionList struct {
	Transactions []Transaction `json:"transactions"`
	Totals       Totals        `json:"totals"`
}
