package repository

import (
	"github.com/hostdesk/internal/models"

	"gorm.io/gorm"
)

// PlanRepository 套餐数据访问接口
type PlanRepository interface {
	GetByID(id uint) (*models.Plan, error)
	GetBySlug(slug string) (*models.Plan, error)
	Create(plan *models.Plan) error
	Update(plan *models.Plan) error
	Delete(id uint) error
	List(filter PlanListFilter) ([]models.Plan, int64, error)
}

// GormPlanRepository GORM 实现
type GormPlanRepository struct {
	db *gorm.DB
}

// NewPlanRepository 创建套餐仓库
func NewPlanRepository(db *gorm.DB) *GormPlanRepository {
	return &GormPlanRepository{db: db}
}

// GetByID 根据 ID 获取套餐
func (r *GormPlanRepository) GetByID(id uint) (*models.Plan, error) {
	if id == 0 {
		return nil, nil
	}
	var plan models.Plan
	found, err := firstOrNil(r.db.Where("id = ?", id), &plan)
	if err != nil || !found {
		return nil, err
	}
	return &plan, nil
}

// GetBySlug 根据 slug 获取套餐
func (r *GormPlanRepository) GetBySlug(slug string) (*models.Plan, error) {
	var plan models.Plan
	found, err := firstOrNil(r.db.Where("slug = ?", slug), &plan)
	if err != nil || !found {
		return nil, err
	}
	return &plan, nil
}

// Create 创建套餐
func (r *GormPlanRepository) Create(plan *models.Plan) error {
	return r.db.Create(plan).Error
}

// Update 更新套餐
func (r *GormPlanRepository) Update(plan *models.Plan) error {
	return r.db.Save(plan).Error
}

// Delete 删除套餐（软删除）
func (r *GormPlanRepository) Delete(id uint) error {
	return r.db.Delete(&models.Plan{}, id).Error
}

// List 套餐列表
func (r *GormPlanRepository) List(filter PlanListFilter) ([]models.Plan, int64, error) {
	query := r.db.Model(&models.Plan{})
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var plans []models.Plan
	if err := query.Order("sort_order DESC, id ASC").Find(&plans).Error; err != nil {
		return nil, 0, err
	}
	return plans, total, nil
}
