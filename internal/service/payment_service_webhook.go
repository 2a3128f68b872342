package service

import (
	"errors"

	"github.com/hostdesk/internal/constants"
	"github.com/hostdesk/internal/metrics"
	"github.com/hostdesk/internal/models"
	"github.com/hostdesk/internal/payment/razorpay"
)

// WebhookOutcome webhook 处理结果
type WebhookOutcome struct {
	Event   string                     `json:"event"`
	Handled bool                       `json:"handled"`
	Payment *models.PaymentTransaction `json:"payment,omitempty"`
}

// HandleRazorpayWebhook 校验签名后按事件确认或标记失败
func (s *PaymentService) HandleRazorpayWebhook(headers map[string]string, body []byte) (*WebhookOutcome, error) {
	log := paymentLogger("provider", constants.PaymentProviderRazorpay, "body_size", len(body))
	result, err := razorpay.VerifyAndParseWebhook(&s.gateway, headers, body)
	if err != nil {
		switch {
		case errors.Is(err, razorpay.ErrSignatureInvalid):
			metrics.IncSignatureFailure("webhook")
			log.Warnw("payment_webhook_signature_invalid", "error", err)
			return nil, ErrPaymentSignatureInvalid
		case errors.Is(err, razorpay.ErrConfigInvalid):
			log.Errorw("payment_webhook_config_invalid", "error", err)
			return nil, ErrPaymentGatewayNotConfigured
		default:
			log.Warnw("payment_webhook_payload_invalid", "error", err)
			return nil, ErrWebhookPayloadInvalid
		}
	}
	log = log.With("event", result.Event, "gateway_order_id", result.OrderID, "gateway_payment_id", result.PaymentID)
	log.Infow("payment_webhook_received")

	outcome := &WebhookOutcome{Event: result.Event}
	switch result.Event {
	case razorpay.EventPaymentCaptured, razorpay.EventOrderPaid:
		payment, err := s.Finalize(FinalizePaymentInput{
			GatewayOrderID:   result.OrderID,
			GatewayPaymentID: result.PaymentID,
			AmountMinor:      result.Amount,
			Currency:         result.Currency,
			Payload:          models.JSON(result.Raw),
			Source:           "webhook",
		})
		if err != nil {
			return nil, err
		}
		outcome.Handled = true
		outcome.Payment = payment
	case razorpay.EventPaymentFailed:
		payment, err := s.MarkFailed(result.OrderID, result.PaymentID, result.FailureReason)
		if err != nil {
			return nil, err
		}
		outcome.Handled = true
		outcome.Payment = payment
	default:
		log.Infow("payment_webhook_event_ignored")
	}
	return outcome, nil
}
