package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hostdesk/internal/constants"
	"github.com/hostdesk/internal/metrics"
	"github.com/hostdesk/internal/models"
	"github.com/hostdesk/internal/payment/razorpay"

	"gorm.io/gorm"
)

// FinalizePaymentInput 支付确认输入
type FinalizePaymentInput struct {
	GatewayOrderID   string
	GatewayPaymentID string
	Signature        string
	AmountMinor      int64  // 网关回报金额，0 表示不校验
	Currency         string // 网关回报币种，空表示不校验
	Payload          models.JSON
	Source           string
}

// Finalize 单事务完成支付确认：流水 → 订单 → 发票 → 履约 → 推荐转化 → 佣金 → 订单完成
func (s *PaymentService) Finalize(input FinalizePaymentInput) (*models.PaymentTransaction, error) {
	gatewayOrderID := strings.TrimSpace(input.GatewayOrderID)
	log := paymentLogger(
		"gateway_order_id", gatewayOrderID,
		"gateway_payment_id", input.GatewayPaymentID,
		"source", input.Source,
	)
	if gatewayOrderID == "" {
		return nil, ErrPaymentNotFound
	}
	setting, err := s.settingService.GetAffiliateSetting()
	if err != nil {
		return nil, err
	}

	var result *models.PaymentTransaction
	var completedOrder *models.Order
	var activationSource string
	var unpayableOrder *models.Order
	idempotent := false
	duplicate := false
	err = s.orderRepo.Transaction(func(tx *gorm.DB) error {
		paymentTx := s.paymentRepo.WithTx(tx)
		orderTx := s.orderRepo.WithTx(tx)

		payment, err := paymentTx.GetByGatewayOrderIDForUpdate(gatewayOrderID)
		if err != nil {
			return err
		}
		if payment == nil {
			return ErrPaymentNotFound
		}
		result = payment
		if payment.Status == constants.PaymentStatusPaid && payment.CommissionDistributed {
			idempotent = true
			return nil
		}
		if err := checkGatewayAmount(payment, input); err != nil {
			return err
		}

		order, err := orderTx.GetByIDForUpdate(payment.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return fmt.Errorf("%w: order %d", ErrNotFound, payment.OrderID)
		}

		now := time.Now()
		if payment.Status != constants.PaymentStatusPaid && !isPayableOrderStatus(order.Status) {
			// 款项已到账但订单已取消：落库待退款，不履约
			reason := truncateRunes("order_not_payable: "+order.Status, paymentFailureReasonMaxRunes)
			updates := gatewayCaptureUpdates(payment, input, map[string]interface{}{
				"status":         constants.PaymentStatusRefundRequired,
				"failure_reason": reason,
				"updated_at":     now,
			})
			if err := paymentTx.UpdateFields(payment.ID, updates); err != nil {
				return err
			}
			payment.Status = constants.PaymentStatusRefundRequired
			payment.FailureReason = reason
			unpayableOrder = order
			return nil
		}
		if payment.Status != constants.PaymentStatusPaid {
			updates := gatewayCaptureUpdates(payment, input, map[string]interface{}{
				"status":         constants.PaymentStatusPaid,
				"failure_reason": "",
				"paid_at":        now,
				"updated_at":     now,
			})
			if err := paymentTx.UpdateFields(payment.ID, updates); err != nil {
				return err
			}
			payment.Status = constants.PaymentStatusPaid
			payment.PaidAt = &now
		}

		if order.Status == constants.OrderStatusCompleted {
			// 同一订单的重复支付只记账，不再履约与分佣
			log.Warnw("payment_duplicate_for_completed_order", "payment_id", payment.ID, "order_id", order.ID)
			payment.CommissionDistributed = true
			duplicate = true
			return paymentTx.UpdateFields(payment.ID, map[string]interface{}{"commission_distributed": true, "updated_at": now})
		}
		if order.Status == constants.OrderStatusPending {
			if err := transitOrder(orderTx, order, constants.OrderStatusPaid, now); err != nil {
				return err
			}
		} else if order.Status != constants.OrderStatusPaid {
			return fmt.Errorf("%w: order %s is %s", ErrOrderStatusInvalid, order.OrderNo, order.Status)
		}
		if err := s.invoiceService.MarkPaidTx(tx, order.ID, now); err != nil {
			return err
		}
		activationSource, err = s.fulfilTx(tx, order, setting, now)
		if err != nil {
			return err
		}
		if err := s.referralService.MarkConvertedTx(tx, order.UserID, order.ID, now); err != nil {
			return err
		}
		if _, err := s.commissionService.DistributeTx(tx, payment, order, now); err != nil {
			return err
		}
		if err := transitOrder(orderTx, order, constants.OrderStatusCompleted, now); err != nil {
			return err
		}
		completedOrder = order
		return nil
	})
	if err != nil {
		log.Warnw("payment_finalize_failed", "error", err)
		return nil, err
	}
	if unpayableOrder != nil {
		metrics.IncPayment(constants.PaymentStatusRefundRequired)
		log.Errorw("payment_refund_required",
			"payment_id", result.ID,
			"order_id", unpayableOrder.ID,
			"order_status", unpayableOrder.Status,
		)
		return result, fmt.Errorf("%w: order %s is %s", ErrOrderStatusInvalid, unpayableOrder.OrderNo, unpayableOrder.Status)
	}
	if idempotent {
		log.Infow("payment_finalize_idempotent", "payment_id", result.ID)
		return result, nil
	}
	if duplicate {
		metrics.IncPayment(constants.PaymentStatusPaid)
		return result, nil
	}

	metrics.IncPayment(constants.PaymentStatusPaid)
	if minor, err := razorpay.ToMinorAmount(result.Amount.String(), result.Currency); err == nil {
		metrics.AddPaymentRevenue(result.Currency, minor)
	}
	log.Infow("payment_finalized",
		"payment_id", result.ID,
		"order_id", completedOrder.ID,
		"order_no", completedOrder.OrderNo,
		"order_type", completedOrder.OrderType,
	)
	s.enqueueNotification(constants.NotifyEventOrderCompleted, completedOrder.UserID, completedOrder.ID, completedOrder.Status)
	if activationSource != "" {
		s.enqueueNotification(constants.NotifyEventAffiliateActive, completedOrder.UserID, completedOrder.ID, activationSource)
	}
	return result, nil
}

// fulfilTx 按订单类型履约，返回本次推广资格开通来源（未开通为空）
func (s *PaymentService) fulfilTx(tx *gorm.DB, order *models.Order, setting AffiliateSetting, now time.Time) (string, error) {
	switch order.OrderType {
	case constants.OrderTypeServerPurchase:
		if _, err := s.serverService.CreateFromOrderTx(tx, order, now); err != nil {
			return "", err
		}
		if !setting.Enabled || !setting.FreeActivationOnServerPurchase {
			return "", nil
		}
		_, activated, err := s.affiliateService.ActivateFreeTx(tx, order.UserID, order.ID, setting.FreeActivationDays, now)
		if err != nil || !activated {
			return "", err
		}
		return constants.AffiliateSourceServerPurchase, nil
	case constants.OrderTypeAffiliateSubscription:
		if _, err := s.affiliateService.ActivateLifetimeTx(tx, order.UserID, order.ID, now); err != nil {
			return "", err
		}
		return constants.AffiliateSourceJoiningFee, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrOrderTypeInvalid, order.OrderType)
	}
}

// MarkFailed 标记支付尝试失败；已支付流水不回退
func (s *PaymentService) MarkFailed(gatewayOrderID, gatewayPaymentID, reason string) (*models.PaymentTransaction, error) {
	gatewayOrderID = strings.TrimSpace(gatewayOrderID)
	var result *models.PaymentTransaction
	changed := false
	err := s.orderRepo.Transaction(func(tx *gorm.DB) error {
		paymentTx := s.paymentRepo.WithTx(tx)
		payment, err := paymentTx.GetByGatewayOrderIDForUpdate(gatewayOrderID)
		if err != nil {
			return err
		}
		if payment == nil {
			return ErrPaymentNotFound
		}
		result = payment
		if payment.Status != constants.PaymentStatusCreated {
			return nil
		}
		reason = truncateRunes(strings.TrimSpace(reason), paymentFailureReasonMaxRunes)
		now := time.Now()
		updates := map[string]interface{}{
			"status":         constants.PaymentStatusFailed,
			"failure_reason": reason,
			"updated_at":     now,
		}
		if gatewayPaymentID != "" {
			updates["gateway_payment_id"] = gatewayPaymentID
			payment.GatewayPaymentID = gatewayPaymentID
		}
		if err := paymentTx.UpdateFields(payment.ID, updates); err != nil {
			return err
		}
		payment.Status = constants.PaymentStatusFailed
		payment.FailureReason = reason
		changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if changed {
		metrics.IncPayment(constants.PaymentStatusFailed)
		paymentLogger("payment_id", result.ID, "gateway_order_id", gatewayOrderID).Infow("payment_marked_failed", "reason", result.FailureReason)
		s.enqueueNotification(constants.NotifyEventPaymentFailed, result.UserID, result.OrderID, constants.PaymentStatusFailed)
	}
	return result, nil
}

const paymentFailureReasonMaxRunes = 255

func isPayableOrderStatus(status string) bool {
	switch status {
	case constants.OrderStatusPending, constants.OrderStatusPaid, constants.OrderStatusCompleted:
		return true
	default:
		return false
	}
}

// gatewayCaptureUpdates 合并网关回传的支付号、签名与原始数据
func gatewayCaptureUpdates(payment *models.PaymentTransaction, input FinalizePaymentInput, updates map[string]interface{}) map[string]interface{} {
	if input.GatewayPaymentID != "" {
		updates["gateway_payment_id"] = input.GatewayPaymentID
		payment.GatewayPaymentID = input.GatewayPaymentID
	}
	if input.Signature != "" {
		updates["gateway_signature"] = input.Signature
		payment.GatewaySignature = input.Signature
	}
	if len(input.Payload) > 0 {
		updates["payload"] = input.Payload
		payment.Payload = input.Payload
	}
	return updates
}

func checkGatewayAmount(payment *models.PaymentTransaction, input FinalizePaymentInput) error {
	if input.Currency != "" && !strings.EqualFold(strings.TrimSpace(input.Currency), payment.Currency) {
		return fmt.Errorf("%w: stored %s, gateway %s", ErrPaymentCurrencyMismatch, payment.Currency, input.Currency)
	}
	if input.AmountMinor <= 0 {
		return nil
	}
	stored, err := razorpay.ToMinorAmount(payment.Amount.String(), payment.Currency)
	if err != nil {
		return errors.Join(ErrPaymentAmountMismatch, err)
	}
	if stored != input.AmountMinor {
		return fmt.Errorf("%w: stored %d, gateway %d", ErrPaymentAmountMismatch, stored, input.AmountMinor)
	}
	return nil
}
