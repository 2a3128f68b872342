package service

import (
	"fmt"
	"time"

	"github.com/hostdesk/internal/constants"
	"github.com/hostdesk/internal/models"
	"github.com/hostdesk/internal/repository"
)

// orderTransitions 订单状态机：pending → paid → completed，pending → cancelled
var orderTransitions = map[string][]string{
	constants.OrderStatusPending: {constants.OrderStatusPaid, constants.OrderStatusCancelled},
	constants.OrderStatusPaid:    {constants.OrderStatusCompleted},
}

// CanTransitOrder 判断订单状态迁移是否合法
func CanTransitOrder(from, to string) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// transitOrder 迁移订单状态并写入对应时间戳
func transitOrder(orderRepo repository.OrderRepository, order *models.Order, to string, now time.Time) error {
	if order == nil {
		return ErrNotFound
	}
	if !CanTransitOrder(order.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrOrderStatusInvalid, order.Status, to)
	}
	updates := map[string]interface{}{"updated_at": now}
	switch to {
	case constants.OrderStatusPaid:
		updates["paid_at"] = now
		order.PaidAt = &now
	case constants.OrderStatusCompleted:
		updates["completed_at"] = now
		order.CompletedAt = &now
	case constants.OrderStatusCancelled:
		updates["cancelled_at"] = now
		order.CancelledAt = &now
	}
	if err := orderRepo.UpdateStatus(order.ID, to, updates); err != nil {
		return err
	}
	order.Status = to
	order.UpdatedAt = now
	return nil
}
