package repository

import (
	"github.com/hostdesk/internal/constants"
	"github.com/hostdesk/internal/models"

	"gorm.io/gorm"
)

// PaymentRepository 支付流水数据访问接口
type PaymentRepository interface {
	WithTx(tx *gorm.DB) PaymentRepository
	GetByID(id uint) (*models.PaymentTransaction, error)
	GetByGatewayOrderID(gatewayOrderID string) (*models.PaymentTransaction, error)
	GetByGatewayOrderIDForUpdate(gatewayOrderID string) (*models.PaymentTransaction, error)
	GetLatestCreatedByOrder(orderID uint) (*models.PaymentTransaction, error)
	Create(payment *models.PaymentTransaction) error
	UpdateFields(id uint, updates map[string]interface{}) error
	List(filter PaymentListFilter) ([]models.PaymentTransaction, int64, error)
}

// GormPaymentRepository GORM 实现
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository 创建支付仓库
func NewPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPaymentRepository) WithTx(tx *gorm.DB) PaymentRepository {
	if tx == nil {
		return r
	}
	return &GormPaymentRepository{db: tx}
}

// GetByID 获取支付流水
func (r *GormPaymentRepository) GetByID(id uint) (*models.PaymentTransaction, error) {
	if id == 0 {
		return nil, nil
	}
	var payment models.PaymentTransaction
	found, err := firstOrNil(r.db.Where("id = ?", id), &payment)
	if err != nil || !found {
		return nil, err
	}
	return &payment, nil
}

// GetByGatewayOrderID 按网关订单号获取流水
func (r *GormPaymentRepository) GetByGatewayOrderID(gatewayOrderID string) (*models.PaymentTransaction, error) {
	if gatewayOrderID == "" {
		return nil, nil
	}
	var payment models.PaymentTransaction
	found, err := firstOrNil(r.db.Where("gateway_order_id = ?", gatewayOrderID), &payment)
	if err != nil || !found {
		return nil, err
	}
	return &payment, nil
}

// GetByGatewayOrderIDForUpdate 加锁获取流水
func (r *GormPaymentRepository) GetByGatewayOrderIDForUpdate(gatewayOrderID string) (*models.PaymentTransaction, error) {
	if gatewayOrderID == "" {
		return nil, nil
	}
	var payment models.PaymentTransaction
	found, err := firstOrNil(forUpdate(r.db).Where("gateway_order_id = ?", gatewayOrderID), &payment)
	if err != nil || !found {
		return nil, err
	}
	return &payment, nil
}

// GetLatestCreatedByOrder 获取订单最近一次未完成的支付尝试
func (r *GormPaymentRepository) GetLatestCreatedByOrder(orderID uint) (*models.PaymentTransaction, error) {
	var payment models.PaymentTransaction
	query := r.db.Where("order_id = ? AND status = ?", orderID, constants.PaymentStatusCreated).Order("id DESC")
	found, err := firstOrNil(query, &payment)
	if err != nil || !found {
		return nil, err
	}
	return &payment, nil
}

// Create 创建支付流水
func (r *GormPaymentRepository) Create(payment *models.PaymentTransaction) error {
	return r.db.Create(payment).Error
}

// UpdateFields 按字段更新
func (r *GormPaymentRepository) UpdateFields(id uint, updates map[string]interface{}) error {
	if id == 0 || len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.PaymentTransaction{}).Where("id = ?", id).Updates(updates).Error
}

// List 支付流水列表
func (r *GormPaymentRepository) List(filter PaymentListFilter) ([]models.PaymentTransaction, int64, error) {
	query := r.db.Model(&models.PaymentTransaction{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.OrderID != 0 {
		query = query.Where("order_id = ?", filter.OrderID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var payments []models.PaymentTransaction
	if err := query.Order("id DESC").Find(&payments).Error; err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}
