package repository

import (
	"strings"
	"time"

	"github.com/hostdesk/internal/constants"
	"github.com/hostdesk/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AffiliateRepository 推广（资格、推荐链、佣金、提现）数据访问接口
type AffiliateRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) AffiliateRepository

	GetSubscriptionByUserID(userID uint) (*models.AffiliateSubscription, error)
	GetSubscriptionByCode(code string) (*models.AffiliateSubscription, error)
	CreateSubscription(sub *models.AffiliateSubscription) error
	UpdateSubscription(sub *models.AffiliateSubscription) error
	ListSubscriptions(filter SubscriptionListFilter) ([]models.AffiliateSubscription, int64, error)
	ListSubscriptionsByUserIDs(userIDs []uint) (map[uint]models.AffiliateSubscription, error)
	DeactivateExpiredSubscriptions(now time.Time) (int64, error)

	CreateReferrals(rows []models.Referral) error
	ListReferrals(filter ReferralListFilter) ([]models.Referral, int64, error)
	MarkReferralsConverted(referredID, orderID uint, now time.Time) (int64, error)
	ReferralLevelStats(referrerID uint) ([]ReferralLevelStat, error)

	CreateCommission(row *models.Commission) error
	GetCommissionByID(id uint) (*models.Commission, error)
	GetCommissionByIDForUpdate(id uint) (*models.Commission, error)
	UpdateCommissionFields(id uint, updates map[string]interface{}) error
	ListCommissions(filter CommissionListFilter) ([]models.Commission, int64, error)
	ListDuePendingReferrers(now time.Time) ([]uint, error)
	ApproveDueCommissions(now time.Time) (int64, error)
	ListApprovedUnpaidForUpdate(userID uint) ([]models.Commission, error)
	SumCommissionAmount(userID uint, statuses []string) (decimal.Decimal, error)
	SumCommissionPaid(userID uint) (decimal.Decimal, error)

	LockUserForUpdate(userID uint) (*models.User, error)
	CreatePayout(payout *models.Payout) error
	GetPayoutByID(id uint) (*models.Payout, error)
	GetPayoutByIDForUpdate(id uint) (*models.Payout, error)
	UpdatePayoutFields(id uint, updates map[string]interface{}) error
	ListPayouts(filter PayoutListFilter) ([]models.Payout, int64, error)
	SumPayoutGross(userID uint, statuses []string) (decimal.Decimal, error)
	CountPayouts(userID uint, statuses []string) (int64, error)
	CreateAllocations(rows []models.PayoutAllocation) error
}

// GormAffiliateRepository GORM 推广仓储
type GormAffiliateRepository struct {
	db *gorm.DB
}

// NewAffiliateRepository 创建推广仓储
func NewAffiliateRepository(db *gorm.DB) *GormAffiliateRepository {
	return &GormAffiliateRepository{db: db}
}

// WithTx 绑定事务
func (r *GormAffiliateRepository) WithTx(tx *gorm.DB) AffiliateRepository {
	if tx == nil {
		return r
	}
	return &GormAffiliateRepository{db: tx}
}

// Transaction 执行事务
func (r *GormAffiliateRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// GetSubscriptionByUserID 获取用户推广资格
func (r *GormAffiliateRepository) GetSubscriptionByUserID(userID uint) (*models.AffiliateSubscription, error) {
	if userID == 0 {
		return nil, nil
	}
	var sub models.AffiliateSubscription
	found, err := firstOrNil(r.db.Where("user_id = ?", userID), &sub)
	if err != nil || !found {
		return nil, err
	}
	return &sub, nil
}

// GetSubscriptionByCode 按推广码获取资格
func (r *GormAffiliateRepository) GetSubscriptionByCode(code string) (*models.AffiliateSubscription, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, nil
	}
	var sub models.AffiliateSubscription
	found, err := firstOrNil(r.db.Where("referral_code = ?", code), &sub)
	if err != nil || !found {
		return nil, err
	}
	return &sub, nil
}

// CreateSubscription 创建推广资格
func (r *GormAffiliateRepository) CreateSubscription(sub *models.AffiliateSubscription) error {
	return r.db.Omit("User").Create(sub).Error
}

// UpdateSubscription 更新推广资格
func (r *GormAffiliateRepository) UpdateSubscription(sub *models.AffiliateSubscription) error {
	return r.db.Omit("User").Save(sub).Error
}

// ListSubscriptions 推广资格列表
func (r *GormAffiliateRepository) ListSubscriptions(filter SubscriptionListFilter) ([]models.AffiliateSubscription, int64, error) {
	query := r.db.Model(&models.AffiliateSubscription{})
	if filter.IsActive != nil {
		query = query.Where("affiliate_subscriptions.is_active = ?", *filter.IsActive)
	}
	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		query = query.Joins("LEFT JOIN users ON users.id = affiliate_subscriptions.user_id").
			Where(buildLikeCondition(r.db, "affiliate_subscriptions.referral_code", "users.email"), repeatArgs(likePattern(keyword), 2)...)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var rows []models.AffiliateSubscription
	if err := query.Preload("User").Order("affiliate_subscriptions.id DESC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ListSubscriptionsByUserIDs 批量获取推广资格
func (r *GormAffiliateRepository) ListSubscriptionsByUserIDs(userIDs []uint) (map[uint]models.AffiliateSubscription, error) {
	result := make(map[uint]models.AffiliateSubscription, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}
	var rows []models.AffiliateSubscription
	if err := r.db.Where("user_id IN ?", userIDs).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.UserID] = row
	}
	return result, nil
}

// DeactivateExpiredSubscriptions 停用过期的非终身资格
func (r *GormAffiliateRepository) DeactivateExpiredSubscriptions(now time.Time) (int64, error) {
	res := r.db.Model(&models.AffiliateSubscription{}).
		Where("is_active = ? AND is_lifetime = ? AND expires_at IS NOT NULL AND expires_at <= ?", true, false, now).
		Updates(map[string]interface{}{"is_active": false, "updated_at": now})
	return res.RowsAffected, res.Error
}

// CreateReferrals 批量写入推荐关系
func (r *GormAffiliateRepository) CreateReferrals(rows []models.Referral) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.Omit("Referred").Create(&rows).Error
}

// ListReferrals 推荐关系列表
func (r *GormAffiliateRepository) ListReferrals(filter ReferralListFilter) ([]models.Referral, int64, error) {
	query := r.db.Model(&models.Referral{})
	if filter.ReferrerID != 0 {
		query = query.Where("referrer_id = ?", filter.ReferrerID)
	}
	if filter.Level > 0 {
		query = query.Where("level = ?", filter.Level)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var rows []models.Referral
	if err := query.Preload("Referred").Order("level ASC, id DESC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// MarkReferralsConverted 首单支付后标记被推荐人的所有关系为已转化
func (r *GormAffiliateRepository) MarkReferralsConverted(referredID, orderID uint, now time.Time) (int64, error) {
	res := r.db.Model(&models.Referral{}).
		Where("referred_id = ? AND converted = ?", referredID, false).
		Updates(map[string]interface{}{
			"converted":      true,
			"converted_at":   now,
			"first_order_id": orderID,
			"updated_at":     now,
		})
	return res.RowsAffected, res.Error
}

// ReferralLevelStats 按层级统计推荐人数与转化数
func (r *GormAffiliateRepository) ReferralLevelStats(referrerID uint) ([]ReferralLevelStat, error) {
	var rows []ReferralLevelStat
	err := r.db.Model(&models.Referral{}).
		Select("level, COUNT(*) AS total, SUM(CASE WHEN converted THEN 1 ELSE 0 END) AS converted").
		Where("referrer_id = ?", referrerID).
		Group("level").
		Order("level ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CreateCommission 写入佣金
func (r *GormAffiliateRepository) CreateCommission(row *models.Commission) error {
	return r.db.Omit("Order").Create(row).Error
}

// GetCommissionByID 获取佣金
func (r *GormAffiliateRepository) GetCommissionByID(id uint) (*models.Commission, error) {
	if id == 0 {
		return nil, nil
	}
	var row models.Commission
	found, err := firstOrNil(r.db.Where("id = ?", id), &row)
	if err != nil || !found {
		return nil, err
	}
	return &row, nil
}

// GetCommissionByIDForUpdate 加锁获取佣金
func (r *GormAffiliateRepository) GetCommissionByIDForUpdate(id uint) (*models.Commission, error) {
	if id == 0 {
		return nil, nil
	}
	var row models.Commission
	found, err := firstOrNil(forUpdate(r.db).Where("id = ?", id), &row)
	if err != nil || !found {
		return nil, err
	}
	return &row, nil
}

// UpdateCommissionFields 按字段更新佣金
func (r *GormAffiliateRepository) UpdateCommissionFields(id uint, updates map[string]interface{}) error {
	if id == 0 || len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.Commission{}).Where("id = ?", id).Updates(updates).Error
}

// ListCommissions 佣金列表
func (r *GormAffiliateRepository) ListCommissions(filter CommissionListFilter) ([]models.Commission, int64, error) {
	query := r.db.Model(&models.Commission{})
	if filter.ReferrerID != 0 {
		query = query.Where("referrer_id = ?", filter.ReferrerID)
	}
	if filter.OrderID != 0 {
		query = query.Where("order_id = ?", filter.OrderID)
	}
	if filter.Level > 0 {
		query = query.Where("level = ?", filter.Level)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var rows []models.Commission
	if err := query.Preload("Order").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ListDuePendingReferrers 返回存在到期待确认佣金的推荐人
func (r *GormAffiliateRepository) ListDuePendingReferrers(now time.Time) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.Commission{}).
		Where("status = ? AND approve_after IS NOT NULL AND approve_after <= ?", constants.CommissionStatusPending, now).
		Distinct("referrer_id").
		Pluck("referrer_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// ApproveDueCommissions 到期待确认佣金转为已确认
func (r *GormAffiliateRepository) ApproveDueCommissions(now time.Time) (int64, error) {
	res := r.db.Model(&models.Commission{}).
		Where("status = ? AND approve_after IS NOT NULL AND approve_after <= ?", constants.CommissionStatusPending, now).
		Updates(map[string]interface{}{
			"status":      constants.CommissionStatusApproved,
			"approved_at": now,
			"updated_at":  now,
		})
	return res.RowsAffected, res.Error
}

// ListApprovedUnpaidForUpdate 按确认时间先后锁定用户未结清的已确认佣金
func (r *GormAffiliateRepository) ListApprovedUnpaidForUpdate(userID uint) ([]models.Commission, error) {
	var rows []models.Commission
	err := forUpdate(r.db).
		Where("referrer_id = ? AND status = ? AND paid_amount < amount", userID, constants.CommissionStatusApproved).
		Order("approved_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// SumCommissionAmount 汇总指定状态的佣金金额
func (r *GormAffiliateRepository) SumCommissionAmount(userID uint, statuses []string) (decimal.Decimal, error) {
	if userID == 0 || len(statuses) == 0 {
		return decimal.Zero, nil
	}
	return sumColumn(r.db.Model(&models.Commission{}).Where("referrer_id = ? AND status IN ?", userID, statuses), "amount")
}

// SumCommissionPaid 汇总已结清部分
func (r *GormAffiliateRepository) SumCommissionPaid(userID uint) (decimal.Decimal, error) {
	if userID == 0 {
		return decimal.Zero, nil
	}
	return sumColumn(r.db.Model(&models.Commission{}).Where("referrer_id = ?", userID), "paid_amount")
}

// CreatePayout 创建提现申请
func (r *GormAffiliateRepository) CreatePayout(payout *models.Payout) error {
	return r.db.Omit("User", "Allocations").Create(payout).Error
}

// GetPayoutByID 获取提现申请
func (r *GormAffiliateRepository) GetPayoutByID(id uint) (*models.Payout, error) {
	if id == 0 {
		return nil, nil
	}
	var payout models.Payout
	found, err := firstOrNil(r.db.Preload("User").Preload("Allocations").Where("id = ?", id), &payout)
	if err != nil || !found {
		return nil, err
	}
	return &payout, nil
}

// LockUserForUpdate 锁定用户行，串行化同一用户的提现申请
func (r *GormAffiliateRepository) LockUserForUpdate(userID uint) (*models.User, error) {
	if userID == 0 {
		return nil, nil
	}
	var user models.User
	found, err := firstOrNil(forUpdate(r.db).Where("id = ?", userID), &user)
	if err != nil || !found {
		return nil, err
	}
	return &user, nil
}

// GetPayoutByIDForUpdate 加锁获取提现申请
func (r *GormAffiliateRepository) GetPayoutByIDForUpdate(id uint) (*models.Payout, error) {
	if id == 0 {
		return nil, nil
	}
	var payout models.Payout
	found, err := firstOrNil(forUpdate(r.db).Where("id = ?", id), &payout)
	if err != nil || !found {
		return nil, err
	}
	return &payout, nil
}

// UpdatePayoutFields 按字段更新提现申请
func (r *GormAffiliateRepository) UpdatePayoutFields(id uint, updates map[string]interface{}) error {
	if id == 0 || len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.Payout{}).Where("id = ?", id).Updates(updates).Error
}

// ListPayouts 提现列表
func (r *GormAffiliateRepository) ListPayouts(filter PayoutListFilter) ([]models.Payout, int64, error) {
	query := r.db.Model(&models.Payout{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var rows []models.Payout
	if err := query.Preload("User").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// SumPayoutGross 汇总指定状态提现的申请金额
func (r *GormAffiliateRepository) SumPayoutGross(userID uint, statuses []string) (decimal.Decimal, error) {
	if userID == 0 || len(statuses) == 0 {
		return decimal.Zero, nil
	}
	return sumColumn(r.db.Model(&models.Payout{}).Where("user_id = ? AND status IN ?", userID, statuses), "gross_amount")
}

// CountPayouts 统计指定状态提现数量
func (r *GormAffiliateRepository) CountPayouts(userID uint, statuses []string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Payout{}).Where("user_id = ? AND status IN ?", userID, statuses).Count(&count).Error
	return count, err
}

// CreateAllocations 写入提现分摊
func (r *GormAffiliateRepository) CreateAllocations(rows []models.PayoutAllocation) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.Create(&rows).Error
}

func sumColumn(query *gorm.DB, column string) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal `gorm:"column:total"`
	}
	if err := query.Select("COALESCE(SUM(" + column + "), 0) AS total").Scan(&row).Error; err != nil {
		return decimal.Zero, err
	}
	return row.Total.Round(2), nil
}
