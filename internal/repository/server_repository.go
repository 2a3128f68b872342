package repository

import (
	"strings"

	"github.com/hostdesk/internal/models"

	"gorm.io/gorm"
)

// ServerRepository 服务器数据访问接口
type ServerRepository interface {
	WithTx(tx *gorm.DB) ServerRepository
	GetByID(id uint) (*models.Server, error)
	GetByOrderID(orderID uint) (*models.Server, error)
	Create(server *models.Server) error
	Update(server *models.Server) error
	List(filter ServerListFilter) ([]models.Server, int64, error)
}

// GormServerRepository GORM 实现
type GormServerRepository struct {
	db *gorm.DB
}

// NewServerRepository 创建服务器仓库
func NewServerRepository(db *gorm.DB) *GormServerRepository {
	return &GormServerRepository{db: db}
}

// WithTx 绑定事务
func (r *GormServerRepository) WithTx(tx *gorm.DB) ServerRepository {
	if tx == nil {
		return r
	}
	return &GormServerRepository{db: tx}
}

// GetByID 获取服务器
func (r *GormServerRepository) GetByID(id uint) (*models.Server, error) {
	if id == 0 {
		return nil, nil
	}
	var server models.Server
	found, err := firstOrNil(r.db.Preload("Plan").Where("id = ?", id), &server)
	if err != nil || !found {
		return nil, err
	}
	return &server, nil
}

// GetByOrderID 按订单获取服务器
func (r *GormServerRepository) GetByOrderID(orderID uint) (*models.Server, error) {
	var server models.Server
	found, err := firstOrNil(r.db.Where("order_id = ?", orderID), &server)
	if err != nil || !found {
		return nil, err
	}
	return &server, nil
}

// Create 创建服务器记录
func (r *GormServerRepository) Create(server *models.Server) error {
	return r.db.Create(server).Error
}

// Update 更新服务器记录
func (r *GormServerRepository) Update(server *models.Server) error {
	return r.db.Omit("Plan").Save(server).Error
}

// List 服务器列表
func (r *GormServerRepository) List(filter ServerListFilter) ([]models.Server, int64, error) {
	query := r.db.Model(&models.Server{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		query = query.Where(buildLikeCondition(r.db, "hostname", "ip_address"), repeatArgs(likePattern(keyword), 2)...)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var servers []models.Server
	if err := query.Preload("Plan").Order("id DESC").Find(&servers).Error; err != nil {
		return nil, 0, err
	}
	return servers, total, nil
}
