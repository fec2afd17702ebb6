// Package shop owns every mutation of the catalog and the two ledgers: admin
// product edits, the customer cart, POS sales, online checkout and order
// status changes.
package shop

import (
	"errors"
	"fmt"
	"time"

	"eterno-store/internal/apperr"
	"eterno-store/internal/events"
	"eterno-store/internal/models"
	"eterno-store/internal/pricing"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Service struct {
	db     *gorm.DB
	engine pricing.Engine
	events events.Publisher
	now    func() time.Time
}

func NewService(db *gorm.DB, engine pricing.Engine, pub events.Publisher) *Service {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Service{db: db, engine: engine, events: pub, now: time.Now}
}

// WithClock replaces the clock stamped on new sales and orders.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Engine() pricing.Engine { return s.engine }

func (s *Service) stamp() time.Time {
	return s.now().UTC()
}

// stockLine is one product quantity to take out of stock.
type stockLine struct {
	ProductID uint
	Quantity  int
}

// mergeLines folds duplicate product lines together, keeping first-seen order.
func mergeLines(lines []stockLine) []stockLine {
	index := make(map[uint]int, len(lines))
	out := make([]stockLine, 0, len(lines))
	for _, l := range lines {
		if i, ok := index[l.ProductID]; ok {
			out[i].Quantity += l.Quantity
			continue
		}
		index[l.ProductID] = len(out)
		out = append(out, l)
	}
	return out
}

// takeStock decrements stock for every line inside tx and returns the
// products as they were priced. The decrement is conditional on enough stock
// being left, so stock never goes negative even when row locks are a no-op.
func takeStock(tx *gorm.DB, lines []stockLine) ([]models.Product, error) {
	products := make([]models.Product, 0, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, apperr.Validation("Quantity must be at least 1")
		}

		var product models.Product
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, line.ProductID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound(fmt.Sprintf("Product %d not found", line.ProductID))
		}
		if err != nil {
			return nil, apperr.Internal("Failed to load product", err)
		}

		res := tx.Model(&models.Product{}).
			Where("id = ? AND stock >= ?", line.ProductID, line.Quantity).
			UpdateColumn("stock", gorm.Expr("stock - ?", line.Quantity))
		if res.Error != nil {
			return nil, apperr.Internal("Failed to update stock", res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, apperr.Validation(fmt.Sprintf("Insufficient stock for %s", product.Name))
		}

		product.Stock -= line.Quantity
		products = append(products, product)
	}
	return products, nil
}

func productRef(id uint) string { return fmt.Sprintf("PRD-%05d", id) }
