package models

import (
	"time"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// User - admin staff and online customers
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:80;not null" json:"username"`
	Email        string    `gorm:"uniqueIndex;size:120;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         Role      `gorm:"type:varchar(20);not null;default:customer" json:"role"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
}

// Product - The catalog. Stock never goes below zero.
type Product struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null;index" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Price       float64   `gorm:"not null" json:"price"`
	Stock       int       `gorm:"not null;default:0" json:"stock"`
	Category    string    `gorm:"size:50;index" json:"category"`
	ImageURL    string    `gorm:"size:200" json:"image_url"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

// InStock reports whether more units fit on top of held without exceeding
// stock. It never adds the two, so huge requests cannot wrap around.
func (p Product) InStock(held, more int) bool {
	return more <= p.Stock-held
}

// CartItem - one product line in a customer's cart
type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"user_id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_cart_user_product" json:"product_id"`
	Product   Product   `gorm:"foreignKey:ProductID" json:"product"`
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
}

func (c CartItem) Subtotal() float64 {
	return c.Product.Price * float64(c.Quantity)
}

// Sale - Ledger A, an in-person POS transaction
type Sale struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	UserID         uint          `gorm:"not null;index" json:"user_id"` // cashier
	TotalAmount    float64       `gorm:"not null" json:"total_amount"`
	PaymentMethod  PaymentMethod `gorm:"size:50;default:cash" json:"payment_method"`
	DiscountType   DiscountType  `gorm:"size:50" json:"discount_type"`
	DiscountAmount float64       `gorm:"default:0" json:"discount_amount"`
	Items          LineItems     `gorm:"type:text;not null" json:"items"`
	CreatedAt      time.Time     `gorm:"index" json:"created_at"`
}

// Order - Ledger B, an online checkout
type Order struct {
	ID              uint          `gorm:"primaryKey" json:"id"`
	UserID          uint          `gorm:"not null;index" json:"user_id"`
	CustomerName    string        `gorm:"size:100;not null" json:"customer_name"`
	CustomerEmail   string        `gorm:"size:120;not null" json:"customer_email"`
	CustomerAddress string        `gorm:"type:text" json:"customer_address"`
	Subtotal        float64       `gorm:"not null" json:"subtotal"` // before voucher
	ShippingFee     float64       `gorm:"default:0" json:"shipping_fee"`
	TotalAmount     float64       `gorm:"not null" json:"total_amount"`
	PaymentMethod   PaymentMethod `gorm:"size:50;not null" json:"payment_method"`
	Items           LineItems     `gorm:"type:text;not null" json:"items"`
	Status          OrderStatus   `gorm:"size:50;default:pending;index" json:"status"`
	CreatedAt       time.Time     `gorm:"index" json:"created_at"`
}

type Period string

const (
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
	PeriodOverall Period = "overall"
)

// ReportCheckpoint - the reporting baseline of one period
type ReportCheckpoint struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Period      Period    `gorm:"size:20;uniqueIndex;not null" json:"period"`
	LastResetAt time.Time `gorm:"not null" json:"last_reset_at"`
}

// All lists every model for AutoMigrate.
func All() []any {
	return []any{
		&User{},
		&Product{},
		&CartItem{},
		&Sale{},
		&Order{},
		&ReportCheckpoint{},
	}
}
