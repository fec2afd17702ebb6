package shop

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"eterno-store/internal/apperr"
	"eterno-store/internal/auth"
	"eterno-store/internal/events"
	"eterno-store/internal/models"
	"eterno-store/internal/reports"

	"gorm.io/gorm"
)

// CustomerOrders lists the caller's own orders, newest first.
func (s *Service) CustomerOrders(ctx context.Context, p auth.Principal) ([]models.Order, error) {
	if err := p.RequireCustomer(); err != nil {
		return nil, err
	}
	var orders []models.Order
	err := s.db.WithContext(ctx).Where("user_id = ?", p.UserID).
		Order("created_at desc").Order("id desc").Find(&orders).Error
	if err != nil {
		return nil, apperr.Internal("Failed to fetch orders", err)
	}
	return orders, nil
}

// GetOwnOrder loads one of the caller's orders. Someone else's order reads
// as not found.
func (s *Service) GetOwnOrder(ctx context.Context, p auth.Principal, id uint) (*models.Order, error) {
	if err := p.RequireCustomer(); err != nil {
		return nil, err
	}
	var order models.Order
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, p.UserID).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("Order not found")
	}
	if err != nil {
		return nil, apperr.Internal("Failed to load order", err)
	}
	return &order, nil
}

// UpdateOrderStatus moves an order along its fulfilment flow. Setting the
// current status again succeeds without a write.
func (s *Service) UpdateOrderStatus(ctx context.Context, p auth.Principal, id uint, raw string) (*models.Order, error) {
	if err := p.RequireAdmin(); err != nil {
		return nil, err
	}
	next := models.OrderStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !next.Valid() {
		return nil, apperr.Validation("Invalid status")
	}

	var order models.Order
	var previous models.OrderStatus
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.First(&order, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Order not found")
		}
		if err != nil {
			return apperr.Internal("Failed to load order", err)
		}
		previous = order.Status
		if previous == next {
			return nil
		}
		if !previous.CanTransition(next) {
			return apperr.Validation(fmt.Sprintf("Cannot change order status from %s to %s", previous, next))
		}
		if err := tx.Model(&order).Update("status", next).Error; err != nil {
			return apperr.Internal("Failed to update order", err)
		}
		order.Status = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	if previous != next {
		s.events.Publish(events.Event{
			Type:      events.OrderStatusChanged,
			Reference: reports.OrderReference(order.ID),
			ActorID:   p.UserID,
			Data:      map[string]string{"from": string(previous), "to": string(next)},
		})
	}
	return &order, nil
}
