package service

import (
	"strings"
	"time"

	"github.com/hostdesk/internal/constants"
	"github.com/hostdesk/internal/logger"
	"github.com/hostdesk/internal/models"
	"github.com/hostdesk/internal/repository"
)

// ensureOrderCancelledIfExpired 读取时懒同步过期订单状态
func (s *OrderService) ensureOrderCancelledIfExpired(order *models.Order) error {
	if order == nil {
		return nil
	}
	if order.Status != constants.OrderStatusPending || order.ExpiresAt == nil {
		return nil
	}
	if order.ExpiresAt.After(time.Now()) {
		return nil
	}
	cancelled, err := s.CancelExpiredOrder(order.ID)
	if err != nil {
		return err
	}
	if cancelled {
		logger.Debugw("order_lazy_expired", "order_id", order.ID)
		order.Status = constants.OrderStatusCancelled
	}
	return nil
}

// ensureOrdersCancelledIfExpired 批量懒同步过期订单状态
func (s *OrderService) ensureOrdersCancelledIfExpired(orders []models.Order) error {
	for i := range orders {
		if err := s.ensureOrderCancelledIfExpired(&orders[i]); err != nil {
			return err
		}
	}
	return nil
}

// ListForUser 用户订单列表
func (s *OrderService) ListForUser(userID uint, orderType, status string, page, pageSize int) ([]models.Order, int64, error) {
	if userID == 0 {
		return []models.Order{}, 0, nil
	}
	orders, total, err := s.orderRepo.List(repository.OrderListFilter{
		Page:      page,
		PageSize:  pageSize,
		UserID:    userID,
		OrderType: strings.TrimSpace(orderType),
		Status:    strings.TrimSpace(status),
	})
	if err != nil {
		return nil, 0, err
	}
	if err := s.ensureOrdersCancelledIfExpired(orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// GetForUser 用户订单详情，他人订单视为不存在
func (s *OrderService) GetForUser(userID, orderID uint) (*models.Order, error) {
	order, err := s.GetForAdmin(orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrNotFound
	}
	return order, nil
}

// ListAdmin 后台订单列表
func (s *OrderService) ListAdmin(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	filter.OrderNo = strings.TrimSpace(filter.OrderNo)
	filter.OrderType = strings.TrimSpace(filter.OrderType)
	filter.Status = strings.TrimSpace(filter.Status)
	orders, total, err := s.orderRepo.List(filter)
	if err != nil {
		return nil, 0, err
	}
	if err := s.ensureOrdersCancelledIfExpired(orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// GetForAdmin 后台订单详情
func (s *OrderService) GetForAdmin(orderID uint) (*models.Order, error) {
	if orderID == 0 {
		return nil, ErrNotFound
	}
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrNotFound
	}
	if err := s.ensureOrderCancelledIfExpired(order); err != nil {
		return nil, err
	}
	return order, nil
}
