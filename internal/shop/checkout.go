package shop

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"eterno-store/internal/apperr"
	"eterno-store/internal/auth"
	"eterno-store/internal/events"
	"eterno-store/internal/models"
	"eterno-store/internal/pricing"
	"eterno-store/internal/reports"

	"github.com/ttacon/libphonenumber"
	"gorm.io/gorm"
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)

// CheckoutRequest is the online checkout form. Payment details are only
// checked for presence and shape; no payment is captured.
type CheckoutRequest struct {
	PaymentMethod   string `json:"payment_method" binding:"required"`
	CustomerAddress string `json:"customer_address"`
	VoucherApplied  bool   `json:"voucher_applied"`
	GCashNumber     string `json:"gcash_number"`
	CardNumber      string `json:"card_number"`
	CardExpiry      string `json:"card_expiry"`
	CardCVV         string `json:"card_cvv"`
	PayPalEmail     string `json:"paypal_email"`
	PayPalName      string `json:"paypal_name"`
}

func (r CheckoutRequest) validate() (models.PaymentMethod, error) {
	if strings.TrimSpace(r.CustomerAddress) == "" {
		return "", apperr.Validation("Delivery address is required for checkout")
	}
	method, err := pricing.ParsePaymentMethod(r.PaymentMethod, models.CheckoutPaymentMethods)
	if err != nil {
		return "", err
	}

	switch method {
	case models.PaymentGCash:
		if strings.TrimSpace(r.GCashNumber) == "" {
			return "", apperr.Validation("GCash number is required")
		}
		if !validPHNumber(r.GCashNumber) {
			return "", apperr.Validation("GCash number is not a valid Philippine mobile number")
		}
	case models.PaymentCreditCard:
		if strings.TrimSpace(r.CardNumber) == "" || strings.TrimSpace(r.CardExpiry) == "" || strings.TrimSpace(r.CardCVV) == "" {
			return "", apperr.Validation("All card details are required")
		}
	case models.PaymentPayPal:
		if strings.TrimSpace(r.PayPalEmail) == "" || strings.TrimSpace(r.PayPalName) == "" {
			return "", apperr.Validation("PayPal email and name are required")
		}
		if !emailPattern.MatchString(strings.TrimSpace(r.PayPalEmail)) {
			return "", apperr.Validation("PayPal email is invalid")
		}
	}
	return method, nil
}

func validPHNumber(raw string) bool {
	num, err := libphonenumber.Parse(strings.TrimSpace(raw), "PH")
	if err != nil {
		return false
	}
	return libphonenumber.IsValidNumber(num)
}

// Checkout turns the caller's cart into a customer order. Stock, the order
// row and the cleared cart are committed together or not at all.
func (s *Service) Checkout(ctx context.Context, p auth.Principal, req CheckoutRequest) (*models.Order, error) {
	if err := p.RequireCustomer(); err != nil {
		return nil, err
	}
	method, err := req.validate()
	if err != nil {
		return nil, err
	}

	var order models.Order
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		err := tx.First(&user, p.UserID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("User not found")
		}
		if err != nil {
			return apperr.Internal("Failed to load user", err)
		}

		var cart []models.CartItem
		if err := tx.Where("user_id = ?", p.UserID).Order("id").Find(&cart).Error; err != nil {
			return apperr.Internal("Failed to load cart", err)
		}
		if len(cart) == 0 {
			return apperr.Validation("Cart is empty")
		}

		lines := make([]stockLine, 0, len(cart))
		for _, c := range cart {
			lines = append(lines, stockLine{ProductID: c.ProductID, Quantity: c.Quantity})
		}
		lines = mergeLines(lines)

		products, err := takeStock(tx, lines)
		if err != nil {
			return err
		}

		items := make(models.LineItems, 0, len(products))
		for i, product := range products {
			items = append(items, models.LineItem{
				ProductID:   product.ID,
				ProductName: product.Name,
				Quantity:    lines[i].Quantity,
				Price:       product.Price,
			})
		}

		subtotal := pricing.Round2(items.Subtotal())
		var discount float64
		if req.VoucherApplied {
			discount = s.engine.Discount(subtotal, models.DiscountVoucher)
		}
		shipping := s.engine.ShippingFee(true)

		status := models.StatusPending
		if method == models.PaymentCOD {
			status = models.StatusCompleted
		}

		order = models.Order{
			UserID:          user.ID,
			CustomerName:    user.Username,
			CustomerEmail:   user.Email,
			CustomerAddress: strings.TrimSpace(req.CustomerAddress),
			Subtotal:        subtotal,
			ShippingFee:     shipping,
			TotalAmount:     pricing.Round2(pricing.Net(subtotal, discount) + shipping),
			PaymentMethod:   method,
			Items:           items,
			Status:          status,
			CreatedAt:       s.stamp(),
		}
		if err := tx.Create(&order).Error; err != nil {
			return apperr.Internal("Failed to create order", err)
		}
		if err := tx.Where("user_id = ?", p.UserID).Delete(&models.CartItem{}).Error; err != nil {
			return apperr.Internal("Failed to clear cart", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(events.Event{
		Type:      events.OrderCreated,
		Reference: reports.OrderReference(order.ID),
		ActorID:   p.UserID,
		At:        order.CreatedAt,
		Data:      order,
	})
	return &order, nil
}
