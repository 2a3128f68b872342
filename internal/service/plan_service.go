package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/hostdesk/internal/cache"
	"github.com/hostdesk/internal/constants"
	"github.com/hostdesk/internal/logger"
	"github.com/hostdesk/internal/models"
	"github.com/hostdesk/internal/repository"

	"github.com/shopspring/decimal"
)

var planSlugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,63}$`)

// PlanService 套餐服务
type PlanService struct {
	repo repository.PlanRepository
}

// NewPlanService 创建套餐服务
func NewPlanService(repo repository.PlanRepository) *PlanService {
	return &PlanService{repo: repo}
}

// PlanInput 套餐创建/更新输入
type PlanInput struct {
	Name                     string
	Slug                     string
	Description              string
	CPUCores                 int
	RAMMB                    int
	DiskGB                   int
	BandwidthGB              int
	MonthlyPrice             decimal.Decimal
	QuarterlyDiscountPercent decimal.Decimal
	YearlyDiscountPercent    decimal.Decimal
	IsActive                 bool
	SortOrder                int
}

// PlanQuote 套餐某周期报价
type PlanQuote struct {
	BillingCycle    string          `json:"billing_cycle"`
	Months          int             `json:"months"`
	OriginalAmount  decimal.Decimal `json:"original_amount"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	Subtotal        decimal.Decimal `json:"subtotal"`
}

// BillingCycleMonths 计费周期对应月数
func BillingCycleMonths(cycle string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(cycle)) {
	case constants.BillingCycleMonthly:
		return 1, nil
	case constants.BillingCycleQuarterly:
		return 3, nil
	case constants.BillingCycleYearly:
		return 12, nil
	default:
		return 0, ErrBillingCycleInvalid
	}
}

// QuotePlan 计算套餐周期价格：原价 = 月价 × 月数，折扣 = 原价 × 折扣% / 100
func QuotePlan(plan *models.Plan, cycle string) (*PlanQuote, error) {
	if plan == nil {
		return nil, ErrNotFound
	}
	cycle = strings.ToLower(strings.TrimSpace(cycle))
	months, err := BillingCycleMonths(cycle)
	if err != nil {
		return nil, err
	}
	discountPercent := decimal.Zero
	switch cycle {
	case constants.BillingCycleQuarterly:
		discountPercent = plan.QuarterlyDiscountPercent.Decimal
	case constants.BillingCycleYearly:
		discountPercent = plan.YearlyDiscountPercent.Decimal
	}
	original := plan.MonthlyPrice.Decimal.Mul(decimal.NewFromInt(int64(months))).Round(2)
	discount := original.Mul(discountPercent).Div(decimal.NewFromInt(100)).Round(2)
	return &PlanQuote{
		BillingCycle:    cycle,
		Months:          months,
		OriginalAmount:  original,
		DiscountPercent: discountPercent.Round(2),
		DiscountAmount:  discount,
		Subtotal:        original.Sub(discount).Round(2),
	}, nil
}

// ListPublic 上架套餐列表（带缓存）
func (s *PlanService) ListPublic(ctx context.Context) ([]models.Plan, error) {
	if plans, hit, err := cache.GetPublicPlans(ctx); err == nil && hit {
		return plans, nil
	}
	plans, _, err := s.repo.List(repository.PlanListFilter{OnlyActive: true})
	if err != nil {
		return nil, err
	}
	if err := cache.SetPublicPlans(ctx, plans); err != nil {
		logger.Warnw("plan_cache_set_failed", "error", err)
	}
	return plans, nil
}

// ListAdmin 后台套餐列表
func (s *PlanService) ListAdmin(page, pageSize int) ([]models.Plan, int64, error) {
	return s.repo.List(repository.PlanListFilter{Page: page, PageSize: pageSize})
}

// GetPublic 获取上架套餐（ID 或 slug）
func (s *PlanService) GetPublic(idOrSlug string) (*models.Plan, error) {
	plan, err := s.lookup(idOrSlug)
	if err != nil {
		return nil, err
	}
	if !plan.IsActive {
		return nil, ErrNotFound
	}
	return plan, nil
}

// GetByID 获取套餐
func (s *PlanService) GetByID(id uint) (*models.Plan, error) {
	plan, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, ErrNotFound
	}
	return plan, nil
}

// Create 创建套餐
func (s *PlanService) Create(input PlanInput) (*models.Plan, error) {
	plan := &models.Plan{}
	if err := applyPlanInput(plan, input); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetBySlug(plan.Slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrPlanSlugExists
	}
	if err := s.repo.Create(plan); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrPlanSlugExists
		}
		return nil, err
	}
	s.invalidate()
	return plan, nil
}

// Update 更新套餐
func (s *PlanService) Update(id uint, input PlanInput) (*models.Plan, error) {
	plan, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := applyPlanInput(plan, input); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetBySlug(plan.Slug)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.ID != plan.ID {
		return nil, ErrPlanSlugExists
	}
	if err := s.repo.Update(plan); err != nil {
		return nil, err
	}
	s.invalidate()
	return plan, nil
}

// Delete 删除套餐
func (s *PlanService) Delete(id uint) error {
	if _, err := s.GetByID(id); err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

func (s *PlanService) lookup(idOrSlug string) (*models.Plan, error) {
	key := strings.TrimSpace(idOrSlug)
	if key == "" {
		return nil, ErrNotFound
	}
	var plan *models.Plan
	var err error
	if id, ok := parseUintID(key); ok {
		plan, err = s.repo.GetByID(id)
	} else {
		plan, err = s.repo.GetBySlug(strings.ToLower(key))
	}
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, ErrNotFound
	}
	return plan, nil
}

func (s *PlanService) invalidate() {
	if err := cache.InvalidatePublicPlans(context.Background()); err != nil {
		logger.Warnw("plan_cache_invalidate_failed", "error", err)
	}
}

func applyPlanInput(plan *models.Plan, input PlanInput) error {
	name := strings.TrimSpace(input.Name)
	slug := strings.ToLower(strings.TrimSpace(input.Slug))
	if name == "" || !planSlugPattern.MatchString(slug) {
		return fmt.Errorf("%w: name and slug are required", ErrPlanInvalid)
	}
	if input.CPUCores <= 0 || input.RAMMB <= 0 || input.DiskGB <= 0 || input.BandwidthGB < 0 {
		return fmt.Errorf("%w: resources must be positive", ErrPlanInvalid)
	}
	if input.MonthlyPrice.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: monthly price must be positive", ErrPlanInvalid)
	}
	for _, pct := range []decimal.Decimal{input.QuarterlyDiscountPercent, input.YearlyDiscountPercent} {
		if pct.LessThan(decimal.Zero) || pct.GreaterThanOrEqual(decimal.NewFromInt(100)) {
			return fmt.Errorf("%w: discount percent must be within 0-100", ErrPlanInvalid)
		}
	}
	plan.Name = name
	plan.Slug = slug
	plan.Description = strings.TrimSpace(input.Description)
	plan.CPUCores = input.CPUCores
	plan.RAMMB = input.RAMMB
	plan.DiskGB = input.DiskGB
	plan.BandwidthGB = input.BandwidthGB
	plan.MonthlyPrice = models.NewMoneyFromDecimal(input.MonthlyPrice)
	plan.QuarterlyDiscountPercent = models.NewMoneyFromDecimal(input.QuarterlyDiscountPercent)
	plan.YearlyDiscountPercent = models.NewMoneyFromDecimal(input.YearlyDiscountPercent)
	plan.IsActive = input.IsActive
	plan.SortOrder = input.SortOrder
	return nil
}
