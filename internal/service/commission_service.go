package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/hostdesk/internal/constants"
	"github.com/hostdesk/internal/logger"
	"github.com/hostdesk/internal/metrics"
	"github.com/hostdesk/internal/models"
	"github.com/hostdesk/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CommissionService 推广佣金服务
type CommissionService struct {
	repo           repository.AffiliateRepository
	userRepo       repository.UserRepository
	paymentRepo    repository.PaymentRepository
	settingService *SettingService
}

// NewCommissionService 创建佣金服务
func NewCommissionService(
	repo repository.AffiliateRepository,
	userRepo repository.UserRepository,
	paymentRepo repository.PaymentRepository,
	settingService *SettingService,
) *CommissionService {
	return &CommissionService{
		repo:           repo,
		userRepo:       userRepo,
		paymentRepo:    paymentRepo,
		settingService: settingService,
	}
}

// UserBalances 由佣金与提现流水推导出的余额
type UserBalances struct {
	TotalEarnings    decimal.Decimal
	TotalWithdrawn   decimal.Decimal
	AvailableBalance decimal.Decimal
}

// DistributeTx 在支付确认事务内按三级推荐链分发佣金；payment 行须已加锁
func (s *CommissionService) DistributeTx(tx *gorm.DB, payment *models.PaymentTransaction, order *models.Order, now time.Time) ([]models.Commission, error) {
	if payment == nil || order == nil {
		return nil, nil
	}
	if payment.CommissionDistributed {
		return nil, nil
	}
	repoTx := s.repo.WithTx(tx)
	paymentRepoTx := s.paymentRepo.WithTx(tx)
	markDistributed := func() error {
		payment.CommissionDistributed = true
		return paymentRepoTx.UpdateFields(payment.ID, map[string]interface{}{
			"commission_distributed": true,
			"updated_at":             now,
		})
	}

	setting, err := s.settingService.GetAffiliateSetting()
	if err != nil {
		return nil, err
	}
	if !setting.Enabled {
		return nil, markDistributed()
	}

	buyer, err := s.userRepo.WithTx(tx).GetByID(order.UserID)
	if err != nil {
		return nil, err
	}
	if buyer == nil {
		return nil, fmt.Errorf("%w: buyer %d", ErrNotFound, order.UserID)
	}

	ancestors := buyer.AncestorIDs()
	ancestorIDs := make([]uint, 0, len(ancestors))
	for _, id := range ancestors {
		if id != 0 {
			ancestorIDs = append(ancestorIDs, id)
		}
	}
	subs, err := repoTx.ListSubscriptionsByUserIDs(ancestorIDs)
	if err != nil {
		return nil, err
	}

	base := models.NewMoneyFromDecimal(order.Subtotal.Decimal)
	var status string
	var approveAfter, approvedAt *time.Time
	if setting.HoldDays <= 0 {
		status = constants.CommissionStatusApproved
		approvedAt = &now
	} else {
		status = constants.CommissionStatusPending
		t := now.AddDate(0, 0, setting.HoldDays)
		approveAfter = &t
	}

	created := make([]models.Commission, 0, len(ancestorIDs))
	touched := make([]uint, 0, len(ancestorIDs))
	for i, referrerID := range ancestors {
		level := i + 1
		if referrerID == 0 || referrerID == buyer.ID {
			continue
		}
		sub, ok := subs[referrerID]
		if !ok || !sub.EarningActive(now) {
			logger.Debugw("commission_skipped_inactive", "order_id", order.ID, "referrer_id", referrerID, "level", level)
			continue
		}
		rate := setting.RateFor(order.OrderType, level)
		if rate.LessThanOrEqual(decimal.Zero) {
			continue
		}
		amount := base.Percent(rate)
		if amount.Decimal.LessThanOrEqual(decimal.Zero) {
			continue
		}
		row := models.Commission{
			ReferrerID:   referrerID,
			SourceUserID: buyer.ID,
			OrderID:      order.ID,
			PaymentID:    payment.ID,
			Level:        level,
			OrderType:    order.OrderType,
			BaseAmount:   base,
			RatePercent:  models.NewMoneyFromDecimal(rate),
			Amount:       amount,
			PaidAmount:   models.ZeroMoney(),
			Status:       status,
			ApproveAfter: approveAfter,
			ApprovedAt:   approvedAt,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := repoTx.CreateCommission(&row); err != nil {
			return nil, err
		}
		created = append(created, row)
		touched = append(touched, referrerID)
	}

	if err := markDistributed(); err != nil {
		return nil, err
	}
	for _, userID := range touched {
		if _, err := s.RecomputeBalancesTx(tx, userID); err != nil {
			return nil, err
		}
	}
	for _, row := range created {
		metrics.IncCommissionCreated(row.Level, row.OrderType)
		logger.Infow("commission_distributed",
			"order_id", order.ID,
			"payment_id", payment.ID,
			"referrer_id", row.ReferrerID,
			"level", row.Level,
			"amount", row.Amount.String(),
			"status", row.Status,
		)
	}
	return created, nil
}

// RecomputeBalancesTx 根据流水重算用户缓存余额
func (s *CommissionService) RecomputeBalancesTx(tx *gorm.DB, userID uint) (UserBalances, error) {
	repoTx := s.repo.WithTx(tx)
	result := UserBalances{}

	approvedTotal, err := repoTx.SumCommissionAmount(userID, []string{constants.CommissionStatusApproved, constants.CommissionStatusPaid})
	if err != nil {
		return result, err
	}
	pendingTotal, err := repoTx.SumCommissionAmount(userID, []string{constants.CommissionStatusPending})
	if err != nil {
		return result, err
	}
	paidTotal, err := repoTx.SumCommissionPaid(userID)
	if err != nil {
		return result, err
	}
	reserved, err := repoTx.SumPayoutGross(userID, []string{constants.PayoutStatusRequested, constants.PayoutStatusApproved})
	if err != nil {
		return result, err
	}
	withdrawn, err := repoTx.SumPayoutGross(userID, []string{constants.PayoutStatusCompleted})
	if err != nil {
		return result, err
	}

	available := approvedTotal.Sub(paidTotal).Sub(reserved).Round(2)
	if available.LessThan(decimal.Zero) {
		available = decimal.Zero
	}
	result.TotalEarnings = approvedTotal.Add(pendingTotal).Round(2)
	result.TotalWithdrawn = withdrawn.Round(2)
	result.AvailableBalance = available

	err = s.userRepo.WithTx(tx).UpdateFields(userID, map[string]interface{}{
		"total_earnings":    models.NewMoneyFromDecimal(result.TotalEarnings),
		"total_withdrawn":   models.NewMoneyFromDecimal(result.TotalWithdrawn),
		"available_balance": models.NewMoneyFromDecimal(result.AvailableBalance),
	})
	return result, err
}

// ApproveDue 自动确认到期的待确认佣金
func (s *CommissionService) ApproveDue(now time.Time) (int64, error) {
	var affected int64
	err := s.repo.Transaction(func(tx *gorm.DB) error {
		repoTx := s.repo.WithTx(tx)
		userIDs, err := repoTx.ListDuePendingReferrers(now)
		if err != nil {
			return err
		}
		if len(userIDs) == 0 {
			return nil
		}
		affected, err = repoTx.ApproveDueCommissions(now)
		if err != nil {
			return err
		}
		for _, userID := range userIDs {
			if _, err := s.RecomputeBalancesTx(tx, userID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if affected > 0 {
		metrics.AddCommissionsApproved(affected)
		logger.Infow("commissions_auto_approved", "count", affected)
	}
	return affected, nil
}

// AdminApprove 后台提前确认待确认佣金
func (s *CommissionService) AdminApprove(commissionID uint) (*models.Commission, error) {
	return s.transition(commissionID, func(row *models.Commission, now time.Time) (map[string]interface{}, error) {
		if row.Status != constants.CommissionStatusPending {
			return nil, ErrCommissionStatusInvalid
		}
		row.Status = constants.CommissionStatusApproved
		row.ApprovedAt = &now
		return map[string]interface{}{
			"status":      row.Status,
			"approved_at": now,
			"updated_at":  now,
		}, nil
	})
}

// AdminCancel 后台取消待确认佣金
func (s *CommissionService) AdminCancel(commissionID uint, reason string) (*models.Commission, error) {
	reason = strings.TrimSpace(reason)
	return s.transition(commissionID, func(row *models.Commission, now time.Time) (map[string]interface{}, error) {
		if row.Status != constants.CommissionStatusPending {
			return nil, ErrCommissionStatusInvalid
		}
		row.Status = constants.CommissionStatusCancelled
		row.CancelReason = reason
		return map[string]interface{}{
			"status":        row.Status,
			"cancel_reason": reason,
			"updated_at":    now,
		}, nil
	})
}

func (s *CommissionService) transition(commissionID uint, apply func(row *models.Commission, now time.Time) (map[string]interface{}, error)) (*models.Commission, error) {
	if commissionID == 0 {
		return nil, ErrNotFound
	}
	var result *models.Commission
	err := s.repo.Transaction(func(tx *gorm.DB) error {
		repoTx := s.repo.WithTx(tx)
		row, err := repoTx.GetCommissionByIDForUpdate(commissionID)
		if err != nil {
			return err
		}
		if row == nil {
			return ErrNotFound
		}
		now := time.Now()
		updates, err := apply(row, now)
		if err != nil {
			return err
		}
		if err := repoTx.UpdateCommissionFields(row.ID, updates); err != nil {
			return err
		}
		if _, err := s.RecomputeBalancesTx(tx, row.ReferrerID); err != nil {
			return err
		}
		result = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("commission_status_changed", "commission_id", result.ID, "status", result.Status)
	return result, nil
}

// ListForUser 用户佣金记录
func (s *CommissionService) ListForUser(userID uint, status string, page, pageSize int) ([]models.Commission, int64, error) {
	if userID == 0 {
		return []models.Commission{}, 0, nil
	}
	return s.repo.ListCommissions(repository.CommissionListFilter{
		Page:       page,
		PageSize:   pageSize,
		ReferrerID: userID,
		Status:     strings.TrimSpace(status),
	})
}

// ListAdmin 后台佣金列表
func (s *CommissionService) ListAdmin(filter repository.CommissionListFilter) ([]models.Commission, int64, error) {
	filter.Status = strings.TrimSpace(filter.Status)
	return s.repo.ListCommissions(filter)
}
