package pricing

import (
	"errors"
	"math/rand/v2"
	"testing"

	"eterno-store/internal/apperr"
	"eterno-store/internal/models"
)

func TestDiscountPercentage(t *testing.T) {
	e := NewEngine()
	for _, subtotal := range []float64{0.01, 1, 99.99, 100, 599, 1234.5, 100000} {
		for _, typ := range []models.DiscountType{models.DiscountPWD, models.DiscountSenior} {
			got := e.Discount(subtotal, typ)
			want := Round2(subtotal * 0.20)
			if got != want {
				t.Fatalf("Discount(%v, %s) = %v, want %v", subtotal, typ, got, want)
			}
			if got > subtotal {
				t.Fatalf("discount %v exceeds subtotal %v", got, subtotal)
			}
			if Net(subtotal, got) < 0 {
				t.Fatalf("negative net for %v", subtotal)
			}
		}
	}
}

func TestDiscountRateIsClamped(t *testing.T) {
	e := NewEngine()
	e.PWDSeniorRate = 1.5
	if got := e.Discount(200, models.DiscountPWD); got != 200 {
		t.Fatalf("expected discount capped at subtotal, got %v", got)
	}
}

func TestDiscountVoucherIsConstant(t *testing.T) {
	e := NewEngine()
	for _, subtotal := range []float64{10, 100, 250, 5000} {
		if got := e.Discount(subtotal, models.DiscountVoucher); got != 100 {
			t.Fatalf("voucher discount for %v = %v, want 100", subtotal, got)
		}
	}
	if got := Net(40, e.Discount(40, models.DiscountVoucher)); got != 0 {
		t.Fatalf("expected net clamped to 0, got %v", got)
	}
	if got := Net(250, e.Discount(250, models.DiscountVoucher)); got != 150 {
		t.Fatalf("expected net 150, got %v", got)
	}
}

func TestDiscountNoneAndUnknown(t *testing.T) {
	e := NewEngine()
	cases := []models.DiscountType{models.DiscountNone, "student", "VOUCHER"}
	for _, typ := range cases {
		if got := e.Discount(500, typ); got != 0 {
			t.Fatalf("Discount(500, %q) = %v, want 0", typ, got)
		}
	}
	if got := e.Discount(0, models.DiscountVoucher); got != 0 {
		t.Fatalf("expected no discount on empty subtotal, got %v", got)
	}
}

func TestShippingFeeRange(t *testing.T) {
	e := NewEngine()
	e.Rand = rand.New(rand.NewPCG(1, 2))
	if got := e.ShippingFee(false); got != 0 {
		t.Fatalf("expected free shipping without address, got %v", got)
	}
	for i := 0; i < 500; i++ {
		fee := e.ShippingFee(true)
		if fee < 50 || fee > 200 {
			t.Fatalf("fee %v outside [50,200]", fee)
		}
		if fee != float64(int(fee)) {
			t.Fatalf("fee %v is not a whole amount", fee)
		}
	}
}

type fixedRand int

func (f fixedRand) IntN(n int) int {
	if int(f) >= n {
		return n - 1
	}
	return int(f)
}

func TestShippingFeeBounds(t *testing.T) {
	e := NewEngine()
	e.Rand = fixedRand(0)
	if got := e.ShippingFee(true); got != 50 {
		t.Fatalf("expected min fee, got %v", got)
	}
	e.Rand = fixedRand(1 << 30)
	if got := e.ShippingFee(true); got != 200 {
		t.Fatalf("expected max fee, got %v", got)
	}
}

func TestOrderDiscount(t *testing.T) {
	cases := []struct {
		subtotal, shipping, total, want float64
	}{
		{1000, 50, 950, 100},
		{1000, 50, 1050, 0},
		{40, 75, 75, 40},
		{100, 0, 120, 0},
		{10.10, 0.20, 10.00, 0.30},
	}
	for _, tc := range cases {
		if got := OrderDiscount(tc.subtotal, tc.shipping, tc.total); got != tc.want {
			t.Fatalf("OrderDiscount(%v,%v,%v) = %v, want %v", tc.subtotal, tc.shipping, tc.total, got, tc.want)
		}
	}
}

func TestParseDiscountType(t *testing.T) {
	for in, want := range map[string]models.DiscountType{
		"":        models.DiscountNone,
		"none":    models.DiscountNone,
		" PWD ":   models.DiscountPWD,
		"senior":  models.DiscountSenior,
		"Voucher": models.DiscountVoucher,
	} {
		got, err := ParseDiscountType(in)
		if err != nil || got != want {
			t.Fatalf("ParseDiscountType(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseDiscountType("bogus"); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestParsePaymentMethod(t *testing.T) {
	if m, err := ParsePaymentMethod("GCash", models.CheckoutPaymentMethods); err != nil || m != models.PaymentGCash {
		t.Fatalf("unexpected %q %v", m, err)
	}
	if _, err := ParsePaymentMethod("cash", models.CheckoutPaymentMethods); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("cash is not an online method, got %v", err)
	}
}
