package database

import (
	"errors"
	"fmt"

	"eterno-store/internal/auth"
	"eterno-store/internal/models"

	"gorm.io/gorm"
)

// EnsureAdmin creates the default admin account when it does not exist yet
// and reports whether it did.
func EnsureAdmin(db *gorm.DB, password string) (bool, error) {
	var admin models.User
	err := db.Where("username = ?", "admin").First(&admin).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, err
	}
	admin = models.User{
		Username:     "admin",
		Email:        "admin@eterno.com",
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return false, fmt.Errorf("create default admin: %w", err)
	}
	return true, nil
}

// SeedSampleProducts fills an empty catalog with demo products.
func SeedSampleProducts(db *gorm.DB) (int, error) {
	var count int64
	if err := db.Model(&models.Product{}).Count(&count).Error; err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	products := []models.Product{
		{Name: "Classic White T-Shirt", Description: "Premium cotton t-shirt with timeless design", Price: 599, Stock: 50, Category: "Shirts", ImageURL: "/static/images/products/white-tshirt.jpg"},
		{Name: "Slim Fit Jeans", Description: "Comfortable denim jeans with modern fit", Price: 1299, Stock: 30, Category: "Pants", ImageURL: "/static/images/products/jeans.jpg"},
		{Name: "Leather Belt", Description: "Genuine leather belt with silver buckle", Price: 799, Stock: 40, Category: "Accessories", ImageURL: "/static/images/products/belt.jpg"},
		{Name: "Casual Sneakers", Description: "Comfortable sneakers for everyday wear", Price: 2499, Stock: 25, Category: "Footwear", ImageURL: "/static/images/products/sneakers.jpg"},
		{Name: "Black Polo Shirt", Description: "Classic polo shirt perfect for any occasion", Price: 899, Stock: 35, Category: "Shirts", ImageURL: "/static/images/products/polo.jpg"},
	}
	if err := db.Create(&products).Error; err != nil {
		return 0, err
	}
	return len(products), nil
}
