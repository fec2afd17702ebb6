package shop

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"eterno-store/internal/apperr"
	"eterno-store/internal/auth"
	"eterno-store/internal/events"
	"eterno-store/internal/models"

	"gorm.io/gorm"
)

// ProductInput carries a full product for creation.
type ProductInput struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	Category    string  `json:"category"`
	ImageURL    string  `json:"image_url"`
}

// ProductPatch updates only the fields that are set.
type ProductPatch struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Stock       *int     `json:"stock"`
	Category    *string  `json:"category"`
	ImageURL    *string  `json:"image_url"`
}

func validateProduct(p models.Product) error {
	switch {
	case p.Name == "":
		return apperr.Validation("Product name is required")
	case utf8.RuneCountInString(p.Name) > 100:
		return apperr.Validation("Product name must be at most 100 characters")
	case p.Price < 0:
		return apperr.Validation("Price cannot be negative")
	case p.Stock < 0:
		return apperr.Validation("Stock cannot be negative")
	case utf8.RuneCountInString(p.Category) > 50:
		return apperr.Validation("Category must be at most 50 characters")
	case utf8.RuneCountInString(p.ImageURL) > 200:
		return apperr.Validation("Image URL must be at most 200 characters")
	}
	return nil
}

// ListAvailable is the public shop front: products with stock, by name.
func (s *Service) ListAvailable(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := s.db.WithContext(ctx).Where("stock > 0").Order("name").Find(&products).Error; err != nil {
		return nil, apperr.Internal("Failed to fetch products", err)
	}
	return products, nil
}

// ListProducts is the admin inventory, including sold-out products.
func (s *Service) ListProducts(ctx context.Context, p auth.Principal) ([]models.Product, error) {
	if err := p.RequireAdmin(); err != nil {
		return nil, err
	}
	var products []models.Product
	if err := s.db.WithContext(ctx).Order("name").Find(&products).Error; err != nil {
		return nil, apperr.Internal("Failed to fetch products", err)
	}
	return products, nil
}

// SearchProducts matches name or category, case-insensitively.
func (s *Service) SearchProducts(ctx context.Context, p auth.Principal, query string) ([]models.Product, error) {
	if err := p.RequireAdmin(); err != nil {
		return nil, err
	}
	q := s.db.WithContext(ctx).Order("name")
	if term := strings.ToLower(strings.TrimSpace(query)); term != "" {
		like := "%" + term + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(category) LIKE ?", like, like)
	}
	var products []models.Product
	if err := q.Find(&products).Error; err != nil {
		return nil, apperr.Internal("Failed to search products", err)
	}
	return products, nil
}

func (s *Service) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	err := s.db.WithContext(ctx).First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Product not found")
	}
	if err != nil {
		return nil, apperr.Internal("Failed to load product", err)
	}
	return &product, nil
}

func (s *Service) CreateProduct(ctx context.Context, p auth.Principal, in ProductInput) (*models.Product, error) {
	if err := p.RequireAdmin(); err != nil {
		return nil, err
	}
	product := models.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Price:       in.Price,
		Stock:       in.Stock,
		Category:    strings.TrimSpace(in.Category),
		ImageURL:    strings.TrimSpace(in.ImageURL),
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, apperr.Internal("Failed to create product", err)
	}
	s.events.Publish(events.Event{Type: events.ProductCreated, Reference: productRef(product.ID), ActorID: p.UserID, Data: product})
	return &product, nil
}

func (s *Service) UpdateProduct(ctx context.Context, p auth.Principal, id uint, patch ProductPatch) (*models.Product, error) {
	if err := p.RequireAdmin(); err != nil {
		return nil, err
	}
	var product models.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.First(&product, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Product not found")
		}
		if err != nil {
			return apperr.Internal("Failed to load product", err)
		}

		if patch.Name != nil {
			product.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Description != nil {
			product.Description = strings.TrimSpace(*patch.Description)
		}
		if patch.Price != nil {
			product.Price = *patch.Price
		}
		if patch.Stock != nil {
			product.Stock = *patch.Stock
		}
		if patch.Category != nil {
			product.Category = strings.TrimSpace(*patch.Category)
		}
		if patch.ImageURL != nil {
			product.ImageURL = strings.TrimSpace(*patch.ImageURL)
		}
		if err := validateProduct(product); err != nil {
			return err
		}
		if err := tx.Save(&product).Error; err != nil {
			return apperr.Internal("Failed to update product", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.events.Publish(events.Event{Type: events.ProductUpdated, Reference: productRef(product.ID), ActorID: p.UserID, Data: product})
	return &product, nil
}

// DeleteProduct removes a product. Past sales and orders keep their copy of
// the line items; open cart lines for it are dropped.
func (s *Service) DeleteProduct(ctx context.Context, p auth.Principal, id uint) error {
	if err := p.RequireAdmin(); err != nil {
		return err
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return apperr.Internal("Failed to clear cart lines", err)
		}
		res := tx.Delete(&models.Product{}, id)
		if res.Error != nil {
			return apperr.Internal("Could not delete product", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("Product not found")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.events.Publish(events.Event{Type: events.ProductDeleted, Reference: productRef(id), ActorID: p.UserID})
	return nil
}

// ProductOrderIDs lists the customer orders whose items contain productID,
// newest first.
func (s *Service) ProductOrderIDs(ctx context.Context, p auth.Principal, productID uint) ([]uint, error) {
	if err := p.RequireAdmin(); err != nil {
		return nil, err
	}
	var orders []models.Order
	if err := s.db.WithContext(ctx).Select("id", "items").Order("created_at desc").Order("id desc").Find(&orders).Error; err != nil {
		return nil, apperr.Internal("Failed to fetch orders", err)
	}
	ids := make([]uint, 0)
	for _, o := range orders {
		if o.Items.Contains(productID) {
			ids = append(ids, o.ID)
		}
	}
	return ids, nil
}
