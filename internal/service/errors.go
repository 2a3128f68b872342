package service

import "errors"

// 通用错误
var (
	ErrNotFound         = errors.New("resource not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrForbidden        = errors.New("forbidden")
	ErrFeatureDisabled  = errors.New("feature disabled")
	ErrStatusTransition = errors.New("status transition not allowed")
)

// 认证与用户
var (
	ErrInvalidEmail       = errors.New("invalid email")
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrWeakPassword       = errors.New("password too weak")
	ErrUserDisabled       = errors.New("user disabled")
	ErrProfileEmpty       = errors.New("profile update empty")
	ErrUserRoleInvalid    = errors.New("invalid user role")
	ErrUserStatusInvalid  = errors.New("invalid user status")
	ErrCaptchaRequired    = errors.New("captcha required")
	ErrCaptchaInvalid     = errors.New("captcha invalid")
	ErrCaptchaUnavailable = errors.New("captcha unavailable")
)

// 套餐与服务器
var (
	ErrPlanInvalid         = errors.New("invalid plan")
	ErrPlanSlugExists      = errors.New("plan slug exists")
	ErrPlanInactive        = errors.New("plan inactive")
	ErrBillingCycleInvalid = errors.New("invalid billing cycle")
	ErrServerStatusInvalid = errors.New("invalid server status")
)

// 订单与发票
var (
	ErrOrderStatusInvalid  = errors.New("order status invalid")
	ErrOrderTypeInvalid    = errors.New("order type invalid")
	ErrOrderExpired        = errors.New("order expired")
	ErrInvoiceNotFound     = errors.New("invoice not found")
	ErrAffiliateAlreadyOn  = errors.New("affiliate subscription already active")
	ErrJoiningFeeInvalid   = errors.New("joining fee not configured")
	ErrOrderAmountInvalid  = errors.New("order amount invalid")
	ErrOrderHostnameNeeded = errors.New("hostname required")
)

// 支付
var (
	ErrPaymentGatewayNotConfigured = errors.New("payment gateway not configured")
	ErrPaymentGatewayRequestFailed = errors.New("payment gateway request failed")
	ErrPaymentSignatureInvalid     = errors.New("payment signature invalid")
	ErrPaymentNotFound             = errors.New("payment not found")
	ErrPaymentAmountMismatch       = errors.New("payment amount mismatch")
	ErrPaymentCurrencyMismatch     = errors.New("payment currency mismatch")
	ErrPaymentStatusInvalid        = errors.New("payment status invalid")
	ErrWebhookPayloadInvalid       = errors.New("webhook payload invalid")
)

// 推广
var (
	ErrAffiliateDisabled         = errors.New("affiliate program disabled")
	ErrAffiliateConfigInvalid    = errors.New("affiliate config invalid")
	ErrAffiliateCodeInvalid      = errors.New("affiliate code invalid")
	ErrAffiliateNotActive        = errors.New("affiliate subscription not active")
	ErrCommissionStatusInvalid   = errors.New("commission status invalid")
	ErrPayoutAmountInvalid       = errors.New("payout amount invalid")
	ErrPayoutBelowMinimum        = errors.New("payout below minimum")
	ErrPayoutInsufficient        = errors.New("insufficient available balance")
	ErrPayoutOpenExists          = errors.New("open payout already exists")
	ErrPayoutMethodInvalid       = errors.New("payout method invalid")
	ErrPayoutAccountRequired     = errors.New("payout account required")
	ErrPayoutStatusInvalid       = errors.New("payout status invalid")
	ErrPayoutAllocationShortfall = errors.New("payout exceeds approved commissions")
)

// 工单
var (
	ErrTicketClosed            = errors.New("ticket closed")
	ErrTicketStatusInvalid     = errors.New("ticket status invalid")
	ErrTicketPriorityInvalid   = errors.New("ticket priority invalid")
	ErrTicketSubjectRequired   = errors.New("ticket subject required")
	ErrTicketMessageRequired   = errors.New("ticket message required")
	ErrTicketAssigneeInvalid   = errors.New("ticket assignee invalid")
	ErrAttachmentTooLarge      = errors.New("attachment too large")
	ErrAttachmentTypeInvalid   = errors.New("attachment type not allowed")
	ErrAttachmentEmpty         = errors.New("attachment empty")
	ErrAttachmentCorrupted     = errors.New("attachment checksum mismatch")
	ErrAttachmentStoreDisabled = errors.New("attachment storage not configured")
)

// 通知
var (
	ErrEmailServiceDisabled      = errors.New("email service disabled")
	ErrEmailServiceNotConfigured = errors.New("email service not configured")
	ErrEmailRecipientInvalid     = errors.New("email recipient invalid")
)
