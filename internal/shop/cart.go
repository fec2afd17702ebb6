package shop

import (
	"context"
	"errors"
	"fmt"

	"eterno-store/internal/apperr"
	"eterno-store/internal/auth"
	"eterno-store/internal/models"
	"eterno-store/internal/pricing"

	"gorm.io/gorm"
)

// CartLine is a cart row with its computed subtotal.
type CartLine struct {
	models.CartItem
	LineTotal float64 `json:"subtotal"`
}

type CartView struct {
	Items    []CartLine `json:"items"`
	Subtotal float64    `json:"subtotal"`
	Count    int        `json:"count"`
}

func (s *Service) cartItems(tx *gorm.DB, userID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := tx.Preload("Product").Where("user_id = ?", userID).Order("id").Find(&items).Error; err != nil {
		return nil, apperr.Internal("Failed to load cart", err)
	}
	return items, nil
}

func (s *Service) Cart(ctx context.Context, p auth.Principal) (*CartView, error) {
	if err := p.RequireCustomer(); err != nil {
		return nil, err
	}
	items, err := s.cartItems(s.db.WithContext(ctx), p.UserID)
	if err != nil {
		return nil, err
	}
	view := &CartView{Items: make([]CartLine, 0, len(items))}
	var subtotal float64
	for _, item := range items {
		line := CartLine{CartItem: item, LineTotal: pricing.Round2(item.Subtotal())}
		view.Items = append(view.Items, line)
		subtotal += item.Subtotal()
		view.Count += item.Quantity
	}
	view.Subtotal = pricing.Round2(subtotal)
	return view, nil
}

// CartCount is the total quantity in the caller's cart.
func (s *Service) CartCount(ctx context.Context, p auth.Principal) (int, error) {
	if err := p.RequireCustomer(); err != nil {
		return 0, err
	}
	var count int64
	err := s.db.WithContext(ctx).Model(&models.CartItem{}).
		Where("user_id = ?", p.UserID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&count).Error
	if err != nil {
		return 0, apperr.Internal("Failed to count cart", err)
	}
	return int(count), nil
}

// AddToCart adds quantity of a product, merging with an existing line.
func (s *Service) AddToCart(ctx context.Context, p auth.Principal, productID uint, quantity int) (*models.CartItem, error) {
	if err := p.RequireCustomer(); err != nil {
		return nil, err
	}
	if quantity < 1 {
		return nil, apperr.Validation("Quantity must be at least 1")
	}

	var item models.CartItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		err := tx.First(&product, productID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Product not found")
		}
		if err != nil {
			return apperr.Internal("Failed to load product", err)
		}

		err = tx.Where("user_id = ? AND product_id = ?", p.UserID, productID).First(&item).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			item = models.CartItem{UserID: p.UserID, ProductID: productID}
		case err != nil:
			return apperr.Internal("Failed to load cart", err)
		}

		if !product.InStock(item.Quantity, quantity) {
			return apperr.Validation(fmt.Sprintf("Only %d left in stock for %s", product.Stock, product.Name))
		}
		item.Quantity += quantity
		if err := tx.Save(&item).Error; err != nil {
			return apperr.Internal("Failed to update cart", err)
		}
		item.Product = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateCartItem changes a line's quantity by change; reaching zero removes
// the line and returns nil.
func (s *Service) UpdateCartItem(ctx context.Context, p auth.Principal, cartID uint, change int) (*models.CartItem, error) {
	if err := p.RequireCustomer(); err != nil {
		return nil, err
	}

	var item models.CartItem
	removed := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Preload("Product").Where("id = ? AND user_id = ?", cartID, p.UserID).First(&item).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Cart item not found")
		}
		if err != nil {
			return apperr.Internal("Failed to load cart", err)
		}

		if change <= -item.Quantity {
			removed = true
			if err := tx.Delete(&item).Error; err != nil {
				return apperr.Internal("Failed to update cart", err)
			}
			return nil
		}
		if !item.Product.InStock(item.Quantity, change) {
			return apperr.Validation(fmt.Sprintf("Only %d left in stock for %s", item.Product.Stock, item.Product.Name))
		}
		item.Quantity += change
		if err := tx.Model(&item).Update("quantity", item.Quantity).Error; err != nil {
			return apperr.Internal("Failed to update cart", err)
		}
		return nil
	})
	if err != nil || removed {
		return nil, err
	}
	return &item, nil
}

func (s *Service) RemoveCartItem(ctx context.Context, p auth.Principal, cartID uint) error {
	if err := p.RequireCustomer(); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", cartID, p.UserID).Delete(&models.CartItem{})
	if res.Error != nil {
		return apperr.Internal("Failed to remove cart item", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("Cart item not found")
	}
	return nil
}
