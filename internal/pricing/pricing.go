// Package pricing holds the discount, shipping and totals arithmetic shared by
// the POS counter and the online checkout.
package pricing

import (
	"math/rand/v2"
	"strings"

	"eterno-store/internal/apperr"
	"eterno-store/internal/models"

	"github.com/shopspring/decimal"
)

// RandSource draws integers in [0, n). *rand.Rand satisfies it.
type RandSource interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

type Engine struct {
	PWDSeniorRate float64
	VoucherAmount float64
	ShippingMin   int
	ShippingMax   int
	Rand          RandSource
}

// NewEngine returns an engine with the store defaults: 20% PWD/senior,
// a fixed 100 voucher and shipping between 50 and 200.
func NewEngine() Engine {
	return Engine{
		PWDSeniorRate: 0.20,
		VoucherAmount: 100,
		ShippingMin:   50,
		ShippingMax:   200,
		Rand:          globalRand{},
	}
}

// Round2 rounds an amount half away from zero to two decimals.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Discount returns the discount earned by subtotal. Percentage discounts never
// exceed the subtotal; the voucher is a flat amount that callers clamp with Net.
// Unknown types earn nothing.
func (e Engine) Discount(subtotal float64, t models.DiscountType) float64 {
	if subtotal <= 0 {
		return 0
	}
	switch t {
	case models.DiscountPWD, models.DiscountSenior:
		rate := e.PWDSeniorRate
		if rate < 0 {
			rate = 0
		}
		if rate > 1 {
			rate = 1
		}
		d := decimal.NewFromFloat(subtotal).Mul(decimal.NewFromFloat(rate)).Round(2)
		return d.InexactFloat64()
	case models.DiscountVoucher:
		return Round2(e.VoucherAmount)
	default:
		return 0
	}
}

// Net is max(0, subtotal - discount).
func Net(subtotal, discount float64) float64 {
	n := decimal.NewFromFloat(subtotal).Sub(decimal.NewFromFloat(discount))
	if n.IsNegative() {
		return 0
	}
	return n.Round(2).InexactFloat64()
}

// ShippingFee is free without a delivery address; otherwise a whole amount
// drawn uniformly from [ShippingMin, ShippingMax].
func (e Engine) ShippingFee(hasAddress bool) float64 {
	if !hasAddress {
		return 0
	}
	lo, hi := e.ShippingMin, e.ShippingMax
	if hi < lo {
		hi = lo
	}
	src := e.Rand
	if src == nil {
		src = globalRand{}
	}
	return float64(lo + src.IntN(hi-lo+1))
}

// OrderDiscount recovers the discount of an order, which is not stored:
// subtotal + shipping - total, never negative.
func OrderDiscount(subtotal, shipping, total float64) float64 {
	d := decimal.NewFromFloat(subtotal).
		Add(decimal.NewFromFloat(shipping)).
		Sub(decimal.NewFromFloat(total))
	if d.IsNegative() {
		return 0
	}
	return d.Round(2).InexactFloat64()
}

// ParseDiscountType validates client input. Empty and "none" mean no discount.
func ParseDiscountType(raw string) (models.DiscountType, error) {
	switch s := strings.ToLower(strings.TrimSpace(raw)); s {
	case "", "none":
		return models.DiscountNone, nil
	case string(models.DiscountPWD), string(models.DiscountSenior), string(models.DiscountVoucher):
		return models.DiscountType(s), nil
	default:
		return models.DiscountNone, apperr.Validation("Invalid discount type")
	}
}

// ParsePaymentMethod validates raw against allowed.
func ParsePaymentMethod(raw string, allowed []models.PaymentMethod) (models.PaymentMethod, error) {
	s := models.PaymentMethod(strings.ToLower(strings.TrimSpace(raw)))
	for _, m := range allowed {
		if s == m {
			return s, nil
		}
	}
	return "", apperr.Validation("Invalid payment method")
}
