package service

import (
	"strings"
	"time"

	"github.com/hostdesk/internal/constants"
	"github.com/hostdesk/internal/models"
	"github.com/hostdesk/internal/repository"

	"gorm.io/gorm"
)

// InvoiceService 发票服务
type InvoiceService struct {
	repo repository.InvoiceRepository
}

// NewInvoiceService 创建发票服务
func NewInvoiceService(repo repository.InvoiceRepository) *InvoiceService {
	return &InvoiceService{repo: repo}
}

// IssueTx 在下单事务内为订单开票（一单一票）
func (s *InvoiceService) IssueTx(tx *gorm.DB, order *models.Order, dueAt *time.Time, now time.Time) (*models.Invoice, error) {
	if order == nil || order.ID == 0 {
		return nil, ErrNotFound
	}
	invoice := &models.Invoice{
		InvoiceNo:      generateInvoiceNo(),
		OrderID:        order.ID,
		UserID:         order.UserID,
		OriginalAmount: order.OriginalAmount,
		DiscountAmount: order.DiscountAmount,
		Subtotal:       order.Subtotal,
		TaxPercent:     order.TaxPercent,
		TaxAmount:      order.TaxAmount,
		Total:          order.TotalAmount,
		Currency:       order.Currency,
		Status:         constants.InvoiceStatusUnpaid,
		IssuedAt:       now,
		DueAt:          dueAt,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.WithTx(tx).Create(invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

// MarkPaidTx 订单支付后标记发票已付
func (s *InvoiceService) MarkPaidTx(tx *gorm.DB, orderID uint, now time.Time) error {
	return s.setStatusTx(tx, orderID, constants.InvoiceStatusUnpaid, constants.InvoiceStatusPaid, map[string]interface{}{"paid_at": now}, now)
}

// VoidTx 订单取消后作废发票
func (s *InvoiceService) VoidTx(tx *gorm.DB, orderID uint, now time.Time) error {
	return s.setStatusTx(tx, orderID, constants.InvoiceStatusUnpaid, constants.InvoiceStatusVoid, nil, now)
}

func (s *InvoiceService) setStatusTx(tx *gorm.DB, orderID uint, from, to string, extra map[string]interface{}, now time.Time) error {
	repoTx := s.repo.WithTx(tx)
	invoice, err := repoTx.GetByOrderID(orderID)
	if err != nil {
		return err
	}
	if invoice == nil {
		return ErrInvoiceNotFound
	}
	if invoice.Status == to {
		return nil
	}
	if invoice.Status != from {
		return ErrStatusTransition
	}
	updates := map[string]interface{}{"status": to, "updated_at": now}
	for k, v := range extra {
		updates[k] = v
	}
	return repoTx.UpdateFields(invoice.ID, updates)
}

// ListForUser 用户发票列表
func (s *InvoiceService) ListForUser(userID uint, status string, page, pageSize int) ([]models.Invoice, int64, error) {
	if userID == 0 {
		return []models.Invoice{}, 0, nil
	}
	return s.repo.List(repository.InvoiceListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   userID,
		Status:   strings.TrimSpace(status),
	})
}

// GetForUser 用户发票详情
func (s *InvoiceService) GetForUser(userID, invoiceID uint) (*models.Invoice, error) {
	invoice, err := s.GetForAdmin(invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.UserID != userID {
		return nil, ErrInvoiceNotFound
	}
	return invoice, nil
}

// ListAdmin 后台发票列表
func (s *InvoiceService) ListAdmin(filter repository.InvoiceListFilter) ([]models.Invoice, int64, error) {
	filter.Status = strings.TrimSpace(filter.Status)
	return s.repo.List(filter)
}

// GetForAdmin 后台发票详情
func (s *InvoiceService) GetForAdmin(invoiceID uint) (*models.Invoice, error) {
	invoice, err := s.repo.GetByID(invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, ErrInvoiceNotFound
	}
	return invoice, nil
}
