package service

import (
	"crypto/rand"
	"math/big"
	"strings"
	"time"

	"github.com/hostdesk/internal/constants"
	"github.com/hostdesk/internal/logger"
	"github.com/hostdesk/internal/metrics"
	"github.com/hostdesk/internal/models"
	"github.com/hostdesk/internal/repository"

	"gorm.io/gorm"
)

const (
	affiliateCodeLength   = 8
	affiliateCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	affiliateCodeMaxRetry = 8
)

// AffiliateService 推广资格服务
type AffiliateService struct {
	repo            repository.AffiliateRepository
	userRepo        repository.UserRepository
	settingService  *SettingService
	referralService *ReferralService
}

// NewAffiliateService 创建推广资格服务
func NewAffiliateService(
	repo repository.AffiliateRepository,
	userRepo repository.UserRepository,
	settingService *SettingService,
	referralService *ReferralService,
) *AffiliateService {
	return &AffiliateService{
		repo:            repo,
		userRepo:        userRepo,
		settingService:  settingService,
		referralService: referralService,
	}
}

// AffiliateDashboard 推广中心数据
type AffiliateDashboard struct {
	ProgramEnabled   bool                           `json:"program_enabled"`
	Active           bool                           `json:"active"`
	Subscription     *models.AffiliateSubscription  `json:"subscription,omitempty"`
	JoiningFee       models.Money                   `json:"joining_fee"`
	MinPayoutAmount  models.Money                   `json:"min_payout_amount"`
	TotalEarnings    models.Money                   `json:"total_earnings"`
	TotalWithdrawn   models.Money                   `json:"total_withdrawn"`
	AvailableBalance models.Money                   `json:"available_balance"`
	PendingAmount    models.Money                   `json:"pending_amount"`
	ReferralStats    []repository.ReferralLevelStat `json:"referral_stats"`
}

// AdminActivateInput 后台开通推广资格
type AdminActivateInput struct {
	Lifetime bool
	Days     int
}

// GetSubscription 获取用户推广资格（未开通返回 nil）
func (s *AffiliateService) GetSubscription(userID uint) (*models.AffiliateSubscription, error) {
	if userID == 0 {
		return nil, ErrNotFound
	}
	return s.repo.GetSubscriptionByUserID(userID)
}

// GetDashboard 获取用户推广中心数据
func (s *AffiliateService) GetDashboard(userID uint) (*AffiliateDashboard, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	setting, err := s.settingService.GetAffiliateSetting()
	if err != nil {
		return nil, err
	}
	sub, err := s.repo.GetSubscriptionByUserID(userID)
	if err != nil {
		return nil, err
	}
	pending, err := s.repo.SumCommissionAmount(userID, []string{constants.CommissionStatusPending})
	if err != nil {
		return nil, err
	}
	stats, err := s.referralService.LevelStats(userID)
	if err != nil {
		return nil, err
	}
	return &AffiliateDashboard{
		ProgramEnabled:   setting.Enabled,
		Active:           sub.EarningActive(time.Now()),
		Subscription:     sub,
		JoiningFee:       models.NewMoneyFromDecimal(setting.JoiningFeeDecimal()),
		MinPayoutAmount:  models.NewMoneyFromDecimal(setting.MinPayoutDecimal()),
		TotalEarnings:    user.TotalEarnings,
		TotalWithdrawn:   user.TotalWithdrawn,
		AvailableBalance: user.AvailableBalance,
		PendingAmount:    models.NewMoneyFromDecimal(pending),
		ReferralStats:    stats,
	}, nil
}

// ActivateLifetimeTx 加盟费支付后开通终身资格
func (s *AffiliateService) ActivateLifetimeTx(tx *gorm.DB, userID, orderID uint, now time.Time) (*models.AffiliateSubscription, error) {
	repoTx := s.repo.WithTx(tx)
	sub, err := repoTx.GetSubscriptionByUserID(userID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		sub = &models.AffiliateSubscription{UserID: userID}
	}
	sub.IsActive = true
	sub.IsLifetime = true
	sub.ExpiresAt = nil
	sub.ActivationSource = constants.AffiliateSourceJoiningFee
	sub.SourceOrderID = uintPtr(orderID)
	sub.ActivatedAt = &now
	if err := s.saveSubscriptionTx(tx, sub); err != nil {
		return nil, err
	}
	metrics.IncAffiliateActivation(constants.AffiliateSourceJoiningFee)
	logger.Infow("affiliate_activated", "user_id", userID, "order_id", orderID, "source", constants.AffiliateSourceJoiningFee, "lifetime", true)
	return sub, nil
}

// ActivateFreeTx 服务器订单支付后按配置赠送限期资格；已有更长资格时不变
func (s *AffiliateService) ActivateFreeTx(tx *gorm.DB, userID, orderID uint, days int, now time.Time) (*models.AffiliateSubscription, bool, error) {
	if days <= 0 {
		return nil, false, nil
	}
	repoTx := s.repo.WithTx(tx)
	sub, err := repoTx.GetSubscriptionByUserID(userID)
	if err != nil {
		return nil, false, err
	}
	expiresAt := now.AddDate(0, 0, days)
	if sub != nil && sub.EarningActive(now) {
		if sub.IsLifetime || sub.ExpiresAt == nil || !sub.ExpiresAt.Before(expiresAt) {
			return sub, false, nil
		}
	}
	if sub == nil {
		sub = &models.AffiliateSubscription{UserID: userID}
	}
	sub.IsActive = true
	sub.IsLifetime = false
	sub.ExpiresAt = &expiresAt
	sub.ActivationSource = constants.AffiliateSourceServerPurchase
	sub.SourceOrderID = uintPtr(orderID)
	sub.ActivatedAt = &now
	if err := s.saveSubscriptionTx(tx, sub); err != nil {
		return nil, false, err
	}
	metrics.IncAffiliateActivation(constants.AffiliateSourceServerPurchase)
	logger.Infow("affiliate_activated", "user_id", userID, "order_id", orderID, "source", constants.AffiliateSourceServerPurchase, "expires_at", expiresAt)
	return sub, true, nil
}

// AdminActivate 后台开通推广资格
func (s *AffiliateService) AdminActivate(userID uint, input AdminActivateInput) (*models.AffiliateSubscription, error) {
	if !input.Lifetime && (input.Days <= 0 || input.Days > affiliateFreeDaysMax) {
		return nil, ErrInvalidInput
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	var result *models.AffiliateSubscription
	err = s.repo.Transaction(func(tx *gorm.DB) error {
		sub, err := s.repo.WithTx(tx).GetSubscriptionByUserID(userID)
		if err != nil {
			return err
		}
		if sub == nil {
			sub = &models.AffiliateSubscription{UserID: userID}
		}
		now := time.Now()
		sub.IsActive = true
		sub.IsLifetime = input.Lifetime
		sub.ActivationSource = constants.AffiliateSourceAdmin
		sub.SourceOrderID = nil
		sub.ActivatedAt = &now
		sub.ExpiresAt = nil
		if !input.Lifetime {
			expiresAt := now.AddDate(0, 0, input.Days)
			sub.ExpiresAt = &expiresAt
		}
		if err := s.saveSubscriptionTx(tx, sub); err != nil {
			return err
		}
		result = sub
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.IncAffiliateActivation(constants.AffiliateSourceAdmin)
	logger.Infow("affiliate_activated", "user_id", userID, "source", constants.AffiliateSourceAdmin, "lifetime", input.Lifetime)
	return result, nil
}

// AdminDeactivate 后台停用推广资格
func (s *AffiliateService) AdminDeactivate(userID uint) (*models.AffiliateSubscription, error) {
	sub, err := s.repo.GetSubscriptionByUserID(userID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, ErrNotFound
	}
	if !sub.IsActive {
		return sub, nil
	}
	sub.IsActive = false
	if err := s.repo.UpdateSubscription(sub); err != nil {
		return nil, err
	}
	logger.Infow("affiliate_deactivated", "user_id", userID)
	return sub, nil
}

// DeactivateExpired 停用已过期的限期资格
func (s *AffiliateService) DeactivateExpired(now time.Time) (int64, error) {
	affected, err := s.repo.DeactivateExpiredSubscriptions(now)
	if err != nil {
		return 0, err
	}
	if affected > 0 {
		logger.Infow("affiliate_subscriptions_expired", "count", affected)
	}
	return affected, nil
}

// ListSubscriptions 后台推广资格列表
func (s *AffiliateService) ListSubscriptions(filter repository.SubscriptionListFilter) ([]models.AffiliateSubscription, int64, error) {
	filter.Keyword = strings.TrimSpace(filter.Keyword)
	return s.repo.ListSubscriptions(filter)
}

// saveSubscriptionTx 新建时生成推广码并在保存点内重试冲突
func (s *AffiliateService) saveSubscriptionTx(tx *gorm.DB, sub *models.AffiliateSubscription) error {
	if sub.ID != 0 {
		return s.repo.WithTx(tx).UpdateSubscription(sub)
	}
	for i := 0; i < affiliateCodeMaxRetry; i++ {
		code, err := generateAffiliateCode()
		if err != nil {
			return err
		}
		sub.ReferralCode = code
		err = tx.Transaction(func(inner *gorm.DB) error {
			return s.repo.WithTx(inner).CreateSubscription(sub)
		})
		if err == nil {
			return nil
		}
		if !isUniqueViolation(err) {
			return err
		}
		sub.ID = 0
	}
	return ErrAffiliateCodeInvalid
}

func generateAffiliateCode() (string, error) {
	var builder strings.Builder
	builder.Grow(affiliateCodeLength)
	max := big.NewInt(int64(len(affiliateCodeAlphabet)))
	for i := 0; i < affiliateCodeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		builder.WriteByte(affiliateCodeAlphabet[n.Int64()])
	}
	return builder.String(), nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}

func uintPtr(value uint) *uint {
	if value == 0 {
		return nil
	}
	return &value
}
