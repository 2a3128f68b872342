package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/hostdesk/internal/constants"
	"github.com/hostdesk/internal/logger"
	"github.com/hostdesk/internal/metrics"
	"github.com/hostdesk/internal/models"
	"github.com/hostdesk/internal/queue"
	"github.com/hostdesk/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const payoutAccountMaxLength = 255

// PayoutService 推广提现服务
type PayoutService struct {
	repo              repository.AffiliateRepository
	commissionService *CommissionService
	settingService    *SettingService
	queueClient       *queue.Client
}

// NewPayoutService 创建提现服务
func NewPayoutService(
	repo repository.AffiliateRepository,
	commissionService *CommissionService,
	settingService *SettingService,
	queueClient *queue.Client,
) *PayoutService {
	return &PayoutService{
		repo:              repo,
		commissionService: commissionService,
		settingService:    settingService,
		queueClient:       queueClient,
	}
}

// PayoutRequestInput 提现申请输入
type PayoutRequestInput struct {
	Amount  decimal.Decimal
	Method  string
	Account string
}

// PayoutReviewInput 提现审核输入
type PayoutReviewInput struct {
	Action            string
	AdminNote         string
	TransferReference string
}

// PayoutDeductions 提现扣税明细
type PayoutDeductions struct {
	Gross      decimal.Decimal
	TDSPercent decimal.Decimal
	TDSAmount  decimal.Decimal
	GSTPercent decimal.Decimal
	GSTAmount  decimal.Decimal
	Net        decimal.Decimal
}

// CalculatePayoutDeductions 计算 TDS 与 GST 扣除：各项保留两位，实付 = round2(gross × (1 − tds% − gst%))
func CalculatePayoutDeductions(gross, tdsPercent, gstPercent decimal.Decimal) PayoutDeductions {
	gross = gross.Round(2)
	tdsAmount := gross.Mul(tdsPercent).Div(decimal.NewFromInt(100)).Round(2)
	gstAmount := gross.Mul(gstPercent).Div(decimal.NewFromInt(100)).Round(2)
	keepRatio := decimal.NewFromInt(1).Sub(tdsPercent.Div(decimal.NewFromInt(100))).Sub(gstPercent.Div(decimal.NewFromInt(100)))
	return PayoutDeductions{
		Gross:      gross,
		TDSPercent: tdsPercent.Round(2),
		TDSAmount:  tdsAmount,
		GSTPercent: gstPercent.Round(2),
		GSTAmount:  gstAmount,
		Net:        gross.Mul(keepRatio).Round(2),
	}
}

// Request 用户提交提现申请
func (s *PayoutService) Request(userID uint, input PayoutRequestInput) (*models.Payout, error) {
	if userID == 0 {
		return nil, ErrNotFound
	}
	setting, err := s.settingService.GetAffiliateSetting()
	if err != nil {
		return nil, err
	}
	if !setting.Enabled {
		return nil, ErrAffiliateDisabled
	}

	amount := input.Amount.Round(2)
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrPayoutAmountInvalid
	}
	if amount.LessThan(setting.MinPayoutDecimal()) {
		return nil, fmt.Errorf("%w: minimum is %s", ErrPayoutBelowMinimum, setting.MinPayoutDecimal().StringFixed(2))
	}
	method := strings.ToLower(strings.TrimSpace(input.Method))
	if method != constants.PayoutMethodBankTransfer && method != constants.PayoutMethodUPI {
		return nil, ErrPayoutMethodInvalid
	}
	account := strings.TrimSpace(input.Account)
	if account == "" || len(account) > payoutAccountMaxLength {
		return nil, ErrPayoutAccountRequired
	}

	deductions := CalculatePayoutDeductions(
		amount,
		decimal.NewFromFloat(setting.TDSPercent),
		decimal.NewFromFloat(setting.GSTPercent),
	)

	var payout *models.Payout
	err = s.repo.Transaction(func(tx *gorm.DB) error {
		repoTx := s.repo.WithTx(tx)
		user, err := repoTx.LockUserForUpdate(userID)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrNotFound
		}
		open, err := repoTx.CountPayouts(userID, []string{constants.PayoutStatusRequested, constants.PayoutStatusApproved})
		if err != nil {
			return err
		}
		if open > 0 {
			return ErrPayoutOpenExists
		}
		balances, err := s.commissionService.RecomputeBalancesTx(tx, userID)
		if err != nil {
			return err
		}
		if amount.GreaterThan(balances.AvailableBalance) {
			return fmt.Errorf("%w: available %s", ErrPayoutInsufficient, balances.AvailableBalance.StringFixed(2))
		}

		now := time.Now()
		payout = &models.Payout{
			UserID:      userID,
			GrossAmount: models.NewMoneyFromDecimal(deductions.Gross),
			TDSPercent:  models.NewMoneyFromDecimal(deductions.TDSPercent),
			TDSAmount:   models.NewMoneyFromDecimal(deductions.TDSAmount),
			GSTPercent:  models.NewMoneyFromDecimal(deductions.GSTPercent),
			GSTAmount:   models.NewMoneyFromDecimal(deductions.GSTAmount),
			NetAmount:   models.NewMoneyFromDecimal(deductions.Net),
			Method:      method,
			Account:     account,
			Status:      constants.PayoutStatusRequested,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := repoTx.CreatePayout(payout); err != nil {
			return err
		}
		_, err = s.commissionService.RecomputeBalancesTx(tx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	metrics.IncPayout(constants.PayoutStatusRequested)
	logger.Infow("payout_requested", "payout_id", payout.ID, "user_id", userID, "gross", payout.GrossAmount.String(), "net", payout.NetAmount.String())
	return payout, nil
}

// Review 后台审核提现：requested → approved|rejected，approved → completed|rejected
func (s *PayoutService) Review(adminID, payoutID uint, input PayoutReviewInput) (*models.Payout, error) {
	if payoutID == 0 {
		return nil, ErrNotFound
	}
	action := strings.ToLower(strings.TrimSpace(input.Action))
	switch action {
	case constants.PayoutActionApprove, constants.PayoutActionReject, constants.PayoutActionComplete:
	default:
		return nil, ErrPayoutStatusInvalid
	}
	note := strings.TrimSpace(input.AdminNote)
	reference := strings.TrimSpace(input.TransferReference)

	var userID uint
	var nextStatus string
	err := s.repo.Transaction(func(tx *gorm.DB) error {
		repoTx := s.repo.WithTx(tx)
		payout, err := repoTx.GetPayoutByIDForUpdate(payoutID)
		if err != nil {
			return err
		}
		if payout == nil {
			return ErrNotFound
		}
		nextStatus, err = resolvePayoutTransition(payout.Status, action)
		if err != nil {
			return err
		}
		userID = payout.UserID

		now := time.Now()
		updates := map[string]interface{}{
			"status":      nextStatus,
			"reviewed_by": adminID,
			"reviewed_at": now,
			"updated_at":  now,
		}
		if note != "" {
			updates["admin_note"] = note
		}
		if nextStatus == constants.PayoutStatusCompleted {
			if err := s.allocateTx(tx, payout, now); err != nil {
				return err
			}
			updates["completed_at"] = now
			updates["transfer_reference"] = reference
		}
		if err := repoTx.UpdatePayoutFields(payout.ID, updates); err != nil {
			return err
		}
		_, err = s.commissionService.RecomputeBalancesTx(tx, payout.UserID)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.IncPayout(nextStatus)
	logger.Infow("payout_reviewed", "payout_id", payoutID, "admin_id", adminID, "status", nextStatus)
	if s.queueClient != nil {
		if err := s.queueClient.EnqueueNotificationEmail(queue.NotificationEmailPayload{
			Event:  constants.NotifyEventPayoutReviewed,
			UserID: userID,
			RefID:  payoutID,
			Status: nextStatus,
		}); err != nil {
			logger.Warnw("payout_notify_enqueue_failed", "payout_id", payoutID, "error", err)
		}
	}
	return s.repo.GetPayoutByID(payoutID)
}

// allocateTx 按确认时间先后将提现金额分摊到已确认佣金
func (s *PayoutService) allocateTx(tx *gorm.DB, payout *models.Payout, now time.Time) error {
	repoTx := s.repo.WithTx(tx)
	rows, err := repoTx.ListApprovedUnpaidForUpdate(payout.UserID)
	if err != nil {
		return err
	}
	remaining := payout.GrossAmount.Decimal.Round(2)
	allocations := make([]models.PayoutAllocation, 0)
	for _, row := range rows {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}
		unpaid := row.Amount.Decimal.Sub(row.PaidAmount.Decimal).Round(2)
		if unpaid.LessThanOrEqual(decimal.Zero) {
			continue
		}
		take := decimal.Min(unpaid, remaining)
		paid := row.PaidAmount.Decimal.Add(take).Round(2)
		updates := map[string]interface{}{
			"paid_amount": models.NewMoneyFromDecimal(paid),
			"updated_at":  now,
		}
		if paid.GreaterThanOrEqual(row.Amount.Decimal) {
			updates["status"] = constants.CommissionStatusPaid
			updates["paid_at"] = now
		}
		if err := repoTx.UpdateCommissionFields(row.ID, updates); err != nil {
			return err
		}
		allocations = append(allocations, models.PayoutAllocation{
			PayoutID:     payout.ID,
			CommissionID: row.ID,
			Amount:       models.NewMoneyFromDecimal(take),
			CreatedAt:    now,
		})
		remaining = remaining.Sub(take).Round(2)
	}
	if remaining.GreaterThan(decimal.Zero) {
		return fmt.Errorf("%w: %s unallocated", ErrPayoutAllocationShortfall, remaining.StringFixed(2))
	}
	return repoTx.CreateAllocations(allocations)
}

// ListForUser 用户提现记录
func (s *PayoutService) ListForUser(userID uint, status string, page, pageSize int) ([]models.Payout, int64, error) {
	if userID == 0 {
		return []models.Payout{}, 0, nil
	}
	return s.repo.ListPayouts(repository.PayoutListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   userID,
		Status:   strings.TrimSpace(status),
	})
}

// ListAdmin 后台提现列表
func (s *PayoutService) ListAdmin(filter repository.PayoutListFilter) ([]models.Payout, int64, error) {
	filter.Status = strings.TrimSpace(filter.Status)
	return s.repo.ListPayouts(filter)
}

// GetForAdmin 后台提现详情
func (s *PayoutService) GetForAdmin(payoutID uint) (*models.Payout, error) {
	payout, err := s.repo.GetPayoutByID(payoutID)
	if err != nil {
		return nil, err
	}
	if payout == nil {
		return nil, ErrNotFound
	}
	return payout, nil
}

func resolvePayoutTransition(current, action string) (string, error) {
	switch current {
	case constants.PayoutStatusRequested:
		switch action {
		case constants.PayoutActionApprove:
			return constants.PayoutStatusApproved, nil
		case constants.PayoutActionReject:
			return constants.PayoutStatusRejected, nil
		}
	case constants.PayoutStatusApproved:
		switch action {
		case constants.PayoutActionComplete:
			return constants.PayoutStatusCompleted, nil
		case constants.PayoutActionReject:
			return constants.PayoutStatusRejected, nil
		}
	}
	return "", fmt.Errorf("%w: %s cannot %s", ErrPayoutStatusInvalid, current, action)
}
