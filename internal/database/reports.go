package database

import (
	"context"
	"time"

	"eterno-store/internal/models"

	"gorm.io/gorm"
)

// LedgerTotals is the revenue of both ledgers over a window.
type LedgerTotals struct {
	POSRevenue    float64
	POSCount      int64
	POSDiscounts  float64
	OrderRevenue  float64
	OrderCount    int64
	OrderShipping float64
	// OrderGross is subtotal + shipping; gross minus revenue is the voucher total.
	OrderGross float64
}

// Window bounds a ledger query; a zero Start or End leaves that side open.
type Window struct {
	Start time.Time
	End   time.Time
}

// Scope restricts q to rows whose created_at falls inside w.
func (w Window) Scope(q *gorm.DB) *gorm.DB {
	if !w.Start.IsZero() {
		q = q.Where("created_at >= ?", w.Start.UTC())
	}
	if !w.End.IsZero() {
		q = q.Where("created_at <= ?", w.End.UTC())
	}
	return q
}

// GetLedgerTotals sums POS sales and non-cancelled customer orders inside w.
func GetLedgerTotals(ctx context.Context, db *gorm.DB, w Window) (*LedgerTotals, error) {
	var result LedgerTotals

	var pos struct {
		Revenue   float64
		Discounts float64
		Count     int64
	}
	err := w.Scope(db.WithContext(ctx).Model(&models.Sale{})).
		Select("COALESCE(SUM(total_amount), 0) AS revenue, COALESCE(SUM(discount_amount), 0) AS discounts, COUNT(*) AS count").
		Scan(&pos).Error
	if err != nil {
		return nil, err
	}

	var orders struct {
		Revenue  float64
		Shipping float64
		Gross    float64
		Count    int64
	}
	err = w.Scope(db.WithContext(ctx).Model(&models.Order{})).
		Where("status <> ?", models.StatusCancelled).
		Select("COALESCE(SUM(total_amount), 0) AS revenue, COALESCE(SUM(shipping_fee), 0) AS shipping, COALESCE(SUM(subtotal + shipping_fee), 0) AS gross, COUNT(*) AS count").
		Scan(&orders).Error
	if err != nil {
		return nil, err
	}

	result.POSRevenue = pos.Revenue
	result.POSDiscounts = pos.Discounts
	result.POSCount = pos.Count
	result.OrderRevenue = orders.Revenue
	result.OrderShipping = orders.Shipping
	result.OrderGross = orders.Gross
	result.OrderCount = orders.Count
	return &result, nil
}
