package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var lineValidator = validator.New()

// LineItem is one purchased product inside a Sale or an Order.
type LineItem struct {
	ProductID   uint    `json:"product_id" validate:"required"`
	ProductName string  `json:"product_name,omitempty"`
	Quantity    int     `json:"quantity" validate:"gt=0"`
	Price       float64 `json:"price" validate:"gte=0"`
}

func (l LineItem) Total() float64 {
	return l.Price * float64(l.Quantity)
}

// LineItems is stored as a JSON array in a text column.
type LineItems []LineItem

func (l LineItems) Subtotal() float64 {
	var sum float64
	for _, item := range l {
		sum += item.Total()
	}
	return sum
}

func (l LineItems) Contains(productID uint) bool {
	for _, item := range l {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}

// Validate checks every line against the item schema.
func (l LineItems) Validate() error {
	for i := range l {
		if err := lineValidator.Struct(l[i]); err != nil {
			return fmt.Errorf("line %d: %w", i, err)
		}
	}
	return nil
}

func (l LineItems) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan never fails on bad content: garbled or schema-invalid rows load as an
// empty list so one broken row cannot abort a listing.
func (l *LineItems) Scan(value any) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*l = LineItems{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		*l = LineItems{}
		return nil
	}

	var items LineItems
	if err := json.Unmarshal(raw, &items); err != nil || items.Validate() != nil {
		*l = LineItems{}
		return nil
	}
	if items == nil {
		items = LineItems{}
	}
	*l = items
	return nil
}

func (LineItems) GormDataType() string {
	return "text"
}
