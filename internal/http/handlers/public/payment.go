package public

import (
	"errors"
	"strings"

	"github.com/hostdesk/internal/http/response"
	"github.com/hostdesk/internal/service"

	"github.com/gin-gonic/gin"
)

// CreatePaymentRequest 发起支付请求
type CreatePaymentRequest struct {
	OrderID uint `json:"order_id" binding:"required"`
}

// VerifyPaymentRequest Checkout 回调校验请求
type VerifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id" binding:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" binding:"required"`
	RazorpaySignature string `json:"razorpay_signature" binding:"required"`
}

// CreatePayment 为订单创建 Razorpay 支付
func (h *Handler) CreatePayment(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	result, err := h.PaymentService.CreatePayment(service.CreatePaymentInput{
		UserID:  userID,
		OrderID: req.OrderID,
		Context: c.Request.Context(),
	})
	if err != nil {
		respondServiceError(c, err, response.CodeInternal, "error.payment_create_failed")
		return
	}
	response.Success(c, result)
}

// VerifyPayment 校验 Checkout 签名并确认支付
func (h *Handler) VerifyPayment(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		return
	}
	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	payment, err := h.PaymentService.VerifyPayment(userID, service.VerifyPaymentInput{
		GatewayOrderID:   req.RazorpayOrderID,
		GatewayPaymentID: req.RazorpayPaymentID,
		Signature:        req.RazorpaySignature,
	})
	if err != nil {
		respondServiceError(c, err, response.CodeInternal, "error.payment_verify_failed")
		return
	}
	response.Success(c, payment)
}

// RazorpayWebhook 接收 Razorpay 异步通知
func (h *Handler) RazorpayWebhook(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil || len(body) == 0 {
		respondError(c, response.CodeBadRequest, "error.webhook_payload_invalid", err)
		return
	}
	headers := make(map[string]string, len(c.Request.Header))
	for key, values := range c.Request.Header {
		if len(values) > 0 {
			headers[key] = strings.TrimSpace(values[0])
		}
	}

	outcome, err := h.PaymentService.HandleRazorpayWebhook(headers, body)
	if err != nil {
		log := requestLog(c)
		switch {
		case errors.Is(err, service.ErrPaymentSignatureInvalid),
			errors.Is(err, service.ErrWebhookPayloadInvalid),
			errors.Is(err, service.ErrPaymentGatewayNotConfigured):
			respondServiceError(c, err, response.CodeBadRequest, "error.webhook_payload_invalid")
		case errors.Is(err, service.ErrOrderStatusInvalid):
			// 订单已取消但款项已到账，需人工退款
			log.Errorw("payment_webhook_order_not_payable", "error", err)
			response.Success(c, gin.H{"acknowledged": true, "handled": false})
		case errors.Is(err, service.ErrPaymentNotFound),
			errors.Is(err, service.ErrPaymentAmountMismatch),
			errors.Is(err, service.ErrPaymentCurrencyMismatch):
			log.Warnw("payment_webhook_unmatched", "error", err)
			response.Success(c, gin.H{"acknowledged": true, "handled": false})
		default:
			respondError(c, response.CodeInternal, "error.payment_webhook_failed", err)
		}
		return
	}
	response.Success(c, gin.H{
		"acknowledged": true,
		"event":        outcome.Event,
		"handled":      outcome.Handled,
	})
}
