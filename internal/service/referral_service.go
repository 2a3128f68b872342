package service

import (
	"strings"
	"time"

	"github.com/hostdesk/internal/constants"
	"github.com/hostdesk/internal/logger"
	"github.com/hostdesk/internal/models"
	"github.com/hostdesk/internal/repository"

	"gorm.io/gorm"
)

// ReferralService 推荐链服务
type ReferralService struct {
	affiliateRepo repository.AffiliateRepository
	userRepo      repository.UserRepository
}

// NewReferralService 创建推荐链服务
func NewReferralService(affiliateRepo repository.AffiliateRepository, userRepo repository.UserRepository) *ReferralService {
	return &ReferralService{
		affiliateRepo: affiliateRepo,
		userRepo:      userRepo,
	}
}

// ReferralTree 推荐树概览
type ReferralTree struct {
	Stats     []repository.ReferralLevelStat `json:"stats"`
	Referrals []models.Referral              `json:"referrals"`
}

// AttachReferrerTx 在注册事务内写入推荐关系：一级来自推广码，再沿 referred_by_id 上溯至多两层
func (s *ReferralService) AttachReferrerTx(tx *gorm.DB, user *models.User, rawCode string) error {
	if user == nil || user.ID == 0 {
		return nil
	}
	code := normalizeAffiliateCode(rawCode)
	if code == "" {
		return nil
	}
	affiliateRepo := s.affiliateRepo.WithTx(tx)
	userRepo := s.userRepo.WithTx(tx)

	now := time.Now()
	sub, err := affiliateRepo.GetSubscriptionByCode(code)
	if err != nil {
		return err
	}
	if sub == nil || !sub.EarningActive(now) {
		logger.Infow("referral_code_skipped", "user_id", user.ID, "code", code, "reason", "inactive_or_missing")
		return nil
	}
	if sub.UserID == user.ID {
		logger.Infow("referral_code_skipped", "user_id", user.ID, "code", code, "reason", "self_referral")
		return nil
	}

	chain := []uint{sub.UserID}
	current, err := userRepo.GetByID(sub.UserID)
	if err != nil {
		return err
	}
	if current == nil {
		logger.Infow("referral_code_skipped", "user_id", user.ID, "code", code, "reason", "referrer_missing")
		return nil
	}
	for len(chain) < constants.ReferralMaxLevel && current != nil && current.ReferredByID != nil {
		next := *current.ReferredByID
		if next == 0 || next == user.ID || containsUint(chain, next) {
			break
		}
		chain = append(chain, next)
		current, err = userRepo.GetByID(next)
		if err != nil {
			return err
		}
	}

	rows := make([]models.Referral, 0, len(chain))
	for i, ancestorID := range chain {
		rows = append(rows, models.Referral{
			ReferrerID:   ancestorID,
			ReferredID:   user.ID,
			Level:        i + 1,
			ReferralCode: sub.ReferralCode,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}
	if err := affiliateRepo.CreateReferrals(rows); err != nil {
		return err
	}

	updates := map[string]interface{}{}
	pointers := []**uint{&user.ReferredByID, &user.ReferrerL2ID, &user.ReferrerL3ID}
	columns := []string{"referred_by_id", "referrer_l2_id", "referrer_l3_id"}
	for i, ancestorID := range chain {
		id := ancestorID
		*pointers[i] = &id
		updates[columns[i]] = id
	}
	if err := userRepo.UpdateFields(user.ID, updates); err != nil {
		return err
	}
	logger.Infow("referral_chain_attached", "user_id", user.ID, "code", code, "levels", len(chain))
	return nil
}

// GetTree 获取用户作为推荐人的各层级统计与明细
func (s *ReferralService) GetTree(userID uint, level, page, pageSize int) (*ReferralTree, int64, error) {
	if userID == 0 {
		return nil, 0, ErrNotFound
	}
	if level < 0 || level > constants.ReferralMaxLevel {
		return nil, 0, ErrInvalidInput
	}
	stats, err := s.LevelStats(userID)
	if err != nil {
		return nil, 0, err
	}
	rows, total, err := s.affiliateRepo.ListReferrals(repository.ReferralListFilter{
		Page:       page,
		PageSize:   pageSize,
		ReferrerID: userID,
		Level:      level,
	})
	if err != nil {
		return nil, 0, err
	}
	return &ReferralTree{Stats: stats, Referrals: rows}, total, nil
}

// LevelStats 三层统计，缺失层级补零
func (s *ReferralService) LevelStats(userID uint) ([]repository.ReferralLevelStat, error) {
	rows, err := s.affiliateRepo.ReferralLevelStats(userID)
	if err != nil {
		return nil, err
	}
	result := make([]repository.ReferralLevelStat, constants.ReferralMaxLevel)
	for i := range result {
		result[i].Level = i + 1
	}
	for _, row := range rows {
		if row.Level >= 1 && row.Level <= constants.ReferralMaxLevel {
			result[row.Level-1] = row
		}
	}
	return result, nil
}

// MarkConvertedTx 首单支付后标记被推荐人的推荐关系为已转化
func (s *ReferralService) MarkConvertedTx(tx *gorm.DB, referredID, orderID uint, now time.Time) error {
	if referredID == 0 || orderID == 0 {
		return nil
	}
	affected, err := s.affiliateRepo.WithTx(tx).MarkReferralsConverted(referredID, orderID, now)
	if err != nil {
		return err
	}
	if affected > 0 {
		logger.Infow("referral_converted", "user_id", referredID, "order_id", orderID, "edges", affected)
	}
	return nil
}

func normalizeAffiliateCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func containsUint(items []uint, target uint) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}
