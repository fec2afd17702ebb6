package shop

import (
	"context"
	"errors"

	"eterno-store/internal/apperr"
	"eterno-store/internal/auth"
	"eterno-store/internal/events"
	"eterno-store/internal/models"
	"eterno-store/internal/pricing"
	"eterno-store/internal/reports"

	"gorm.io/gorm"
)

type SaleLine struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,gt=0"`
}

// SaleRequest is what the POS counter submits.
type SaleRequest struct {
	Items         []SaleLine `json:"items" binding:"dive"`
	PaymentMethod string     `json:"payment_method"`
	DiscountType  string     `json:"discount_type"`
}

// CreateSale records an in-person sale. Stock for every line and the sale row
// are committed together or not at all.
func (s *Service) CreateSale(ctx context.Context, p auth.Principal, req SaleRequest) (*models.Sale, error) {
	if err := p.RequireAdmin(); err != nil {
		return nil, err
	}
	if len(req.Items) == 0 {
		return nil, apperr.Validation("No items in sale")
	}

	method := models.PaymentCash
	if req.PaymentMethod != "" {
		m, err := pricing.ParsePaymentMethod(req.PaymentMethod, models.POSPaymentMethods)
		if err != nil {
			return nil, err
		}
		method = m
	}
	discountType, err := pricing.ParseDiscountType(req.DiscountType)
	if err != nil {
		return nil, err
	}

	lines := make([]stockLine, 0, len(req.Items))
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, apperr.Validation("Quantity must be at least 1")
		}
		lines = append(lines, stockLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	lines = mergeLines(lines)

	var sale models.Sale
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		products, err := takeStock(tx, lines)
		if err != nil {
			return err
		}

		items := make(models.LineItems, 0, len(lines))
		for i, product := range products {
			items = append(items, models.LineItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    lines[i].Quantity,
				Price:       product.Price,
			})
		}
		subtotal := pricing.Round2(items.Subtotal())
		discount := s.engine.Discount(subtotal, discountType)

		sale = models.Sale{
			UserID:         p.UserID,
			TotalAmount:    pricing.Net(subtotal, discount),
			PaymentMethod:  method,
			DiscountType:   discountType,
			DiscountAmount: discount,
			Items:          items,
			CreatedAt:      s.stamp(),
		}
		if err := tx.Create(&sale).Error; err != nil {
			return apperr.Internal("Failed to create sale record", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(events.Event{
		Type:      events.SaleCreated,
		Reference: reports.SaleReference(sale.ID),
		ActorID:   p.UserID,
		At:        sale.CreatedAt,
		Data:      sale,
	})
	return &sale, nil
}

// GetSale loads a POS sale for its receipt.
func (s *Service) GetSale(ctx context.Context, p auth.Principal, id uint) (*models.Sale, string, error) {
	if err := p.RequireAdmin(); err != nil {
		return nil, "", err
	}
	var sale models.Sale
	err := s.db.WithContext(ctx).First(&sale, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", apperr.NotFound("Sale not found")
	}
	if err != nil {
		return nil, "", apperr.Internal("Failed to load sale", err)
	}

	var cashier models.User
	name := ""
	if err := s.db.WithContext(ctx).Select("username").First(&cashier, sale.UserID).Error; err == nil {
		name = cashier.Username
	}
	return &sale, name, nil
}
