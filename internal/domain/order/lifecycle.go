package order

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	domainErrors "github.com/your-org/storefront-backend/internal/domain/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AdvanceRequest moves an order to a new status
type AdvanceRequest struct {
	OrderNumber    string `json:"-"`
	Status         string `json:"status" binding:"required"`
	Comment        string `json:"comment"`
	ChangedBy      *uint  `json:"-"`
	TrackingNumber string `json:"tracking_number"`
	CourierPartner string `json:"courier_partner"`
}

// forwardTransitions lists the next statuses allowed when strict transitions are on
var forwardTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusPacked, OrderStatusCancelled},
	OrderStatusPacked:    {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:   {OrderStatusDelivered, OrderStatusCancelled},
}

// Advance sets the order status, stamping the milestone time the first time a status is reached.
// The order row is locked for the duration of the update and a history row is written with it.
func (s *Service) Advance(ctx context.Context, req *AdvanceRequest) (*Order, error) {
	target, err := ParseOrderStatus(req.Status)
	if err != nil {
		return nil, err
	}

	var from OrderStatus
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var o Order
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("order_number = ?", req.OrderNumber).
			First(&o).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainErrors.NotFound("order not found")
			}
			return err
		}
		from = o.Status

		if s.config.Order.StrictTransitions {
			if o.Status.IsTerminal() && o.Status != target {
				return domainErrors.InvalidArgument("order is already %s", o.Status)
			}
			if !isValidStatusTransition(o.Status, target) {
				return domainErrors.InvalidArgument("invalid status transition from %s to %s", o.Status, target)
			}
		}

		now := time.Now().UTC()
		updates := map[string]interface{}{
			"status":     target,
			"updated_at": now,
		}
		if column, reachedAt, ok := o.milestone(target); ok && reachedAt == nil {
			updates[column] = now
		}
		if tracking := strings.TrimSpace(req.TrackingNumber); tracking != "" {
			updates["tracking_number"] = tracking
		}
		if courier := strings.TrimSpace(req.CourierPartner); courier != "" {
			updates["courier_partner"] = courier
		}

		if err := tx.Model(&o).Updates(updates).Error; err != nil {
			return err
		}

		return tx.Create(&OrderStatusHistory{
			OrderID:    o.ID,
			FromStatus: from,
			ToStatus:   target,
			Comment:    strings.TrimSpace(req.Comment),
			ChangedBy:  req.ChangedBy,
		}).Error
	})
	if err != nil {
		return nil, domainErrors.Classify(err, "failed to update order status")
	}

	s.logger.WithFields(logrus.Fields{
		"order_number": req.OrderNumber,
		"from":         from,
		"to":           target,
	}).Info("Order status updated")

	return s.GetOrderByNumber(ctx, req.OrderNumber)
}

// isValidStatusTransition allows forward steps, cancellation of unfinished orders and re-entry
func isValidStatusTransition(from, to OrderStatus) bool {
	if from == to {
		return true
	}
	for _, status := range forwardTransitions[from] {
		if status == to {
			return true
		}
	}
	return false
}
