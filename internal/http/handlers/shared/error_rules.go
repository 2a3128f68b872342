package shared

import (
	"github.com/hostdesk/internal/http/response"
	"github.com/hostdesk/internal/service"
)

// CommonErrorRules 通用业务错误
var CommonErrorRules = []MappedError{
	{Target: service.ErrNotFound, Code: response.CodeNotFound, Key: "error.not_found"},
	{Target: service.ErrInvalidInput, Code: response.CodeBadRequest, Key: "error.bad_request"},
	{Target: service.ErrForbidden, Code: response.CodeForbidden, Key: "error.forbidden"},
	{Target: service.ErrFeatureDisabled, Code: response.CodeBadRequest, Key: "error.feature_disabled"},
	{Target: service.ErrStatusTransition, Code: response.CodeConflict, Key: "error.status_transition"},
}

// AuthErrorRules 认证与账号错误
var AuthErrorRules = []MappedError{
	{Target: service.ErrInvalidEmail, Code: response.CodeBadRequest, Key: "error.email_invalid"},
	{Target: service.ErrEmailExists, Code: response.CodeConflict, Key: "error.email_exists"},
	{Target: service.ErrInvalidCredentials, Code: response.CodeUnauthorized, Key: "error.invalid_credentials"},
	{Target: service.ErrInvalidPassword, Code: response.CodeBadRequest, Key: "error.password_invalid"},
	{Target: service.ErrWeakPassword, Code: response.CodeBadRequest, Key: "error.password_weak"},
	{Target: service.ErrUserDisabled, Code: response.CodeUnauthorized, Key: "error.user_disabled"},
	{Target: service.ErrProfileEmpty, Code: response.CodeBadRequest, Key: "error.profile_empty"},
	{Target: service.ErrUserRoleInvalid, Code: response.CodeBadRequest, Key: "error.user_role_invalid"},
	{Target: service.ErrUserStatusInvalid, Code: response.CodeBadRequest, Key: "error.user_status_invalid"},
	{Target: service.ErrCaptchaRequired, Code: response.CodeBadRequest, Key: "error.captcha_required"},
	{Target: service.ErrCaptchaInvalid, Code: response.CodeBadRequest, Key: "error.captcha_invalid"},
	{Target: service.ErrCaptchaUnavailable, Code: response.CodeInternal, Key: "error.captcha_unavailable"},
}

// BillingErrorRules 套餐、订单、发票与支付错误
var BillingErrorRules = []MappedError{
	{Target: service.ErrPlanInvalid, Code: response.CodeBadRequest, Key: "error.plan_invalid"},
	{Target: service.ErrPlanSlugExists, Code: response.CodeConflict, Key: "error.plan_slug_exists"},
	{Target: service.ErrPlanInactive, Code: response.CodeBadRequest, Key: "error.plan_inactive"},
	{Target: service.ErrBillingCycleInvalid, Code: response.CodeBadRequest, Key: "error.billing_cycle_invalid"},
	{Target: service.ErrServerStatusInvalid, Code: response.CodeBadRequest, Key: "error.server_status_invalid"},
	{Target: service.ErrOrderStatusInvalid, Code: response.CodeConflict, Key: "error.order_status_invalid"},
	{Target: service.ErrOrderTypeInvalid, Code: response.CodeBadRequest, Key: "error.order_type_invalid"},
	{Target: service.ErrOrderExpired, Code: response.CodeBadRequest, Key: "error.order_expired"},
	{Target: service.ErrInvoiceNotFound, Code: response.CodeNotFound, Key: "error.invoice_not_found"},
	{Target: service.ErrAffiliateAlreadyOn, Code: response.CodeConflict, Key: "error.affiliate_already_active"},
	{Target: service.ErrJoiningFeeInvalid, Code: response.CodeBadRequest, Key: "error.joining_fee_invalid"},
	{Target: service.ErrOrderAmountInvalid, Code: response.CodeBadRequest, Key: "error.order_amount_invalid"},
	{Target: service.ErrOrderHostnameNeeded, Code: response.CodeBadRequest, Key: "error.hostname_required"},
	{Target: service.ErrPaymentGatewayNotConfigured, Code: response.CodeInternal, Key: "error.payment_gateway_not_configured"},
	{Target: service.ErrPaymentGatewayRequestFailed, Code: response.CodeInternal, Key: "error.payment_gateway_failed"},
	{Target: service.ErrPaymentSignatureInvalid, Code: response.CodeBadRequest, Key: "error.payment_signature_invalid"},
	{Target: service.ErrPaymentNotFound, Code: response.CodeNotFound, Key: "error.payment_not_found"},
	{Target: service.ErrPaymentAmountMismatch, Code: response.CodeBadRequest, Key: "error.payment_amount_mismatch"},
	{Target: service.ErrPaymentCurrencyMismatch, Code: response.CodeBadRequest, Key: "error.payment_currency_mismatch"},
	{Target: service.ErrPaymentStatusInvalid, Code: response.CodeConflict, Key: "error.payment_status_invalid"},
	{Target: service.ErrWebhookPayloadInvalid, Code: response.CodeBadRequest, Key: "error.webhook_payload_invalid"},
}

// AffiliateErrorRules 推广、佣金与提现错误
var AffiliateErrorRules = []MappedError{
	{Target: service.ErrAffiliateDisabled, Code: response.CodeBadRequest, Key: "error.affiliate_disabled"},
	{Target: service.ErrAffiliateConfigInvalid, Code: response.CodeBadRequest, Key: "error.affiliate_config_invalid"},
	{Target: service.ErrAffiliateCodeInvalid, Code: response.CodeBadRequest, Key: "error.affiliate_code_invalid"},
	{Target: service.ErrAffiliateNotActive, Code: response.CodeForbidden, Key: "error.affiliate_not_active"},
	{Target: service.ErrCommissionStatusInvalid, Code: response.CodeConflict, Key: "error.commission_status_invalid"},
	{Target: service.ErrPayoutAmountInvalid, Code: response.CodeBadRequest, Key: "error.payout_amount_invalid"},
	{Target: service.ErrPayoutBelowMinimum, Code: response.CodeBadRequest, Key: "error.payout_below_minimum"},
	{Target: service.ErrPayoutInsufficient, Code: response.CodeBadRequest, Key: "error.payout_insufficient"},
	{Target: service.ErrPayoutOpenExists, Code: response.CodeConflict, Key: "error.payout_open_exists"},
	{Target: service.ErrPayoutMethodInvalid, Code: response.CodeBadRequest, Key: "error.payout_method_invalid"},
	{Target: service.ErrPayoutAccountRequired, Code: response.CodeBadRequest, Key: "error.payout_account_required"},
	{Target: service.ErrPayoutStatusInvalid, Code: response.CodeConflict, Key: "error.payout_status_invalid"},
	{Target: service.ErrPayoutAllocationShortfall, Code: response.CodeConflict, Key: "error.payout_allocation_shortfall"},
}

// SupportErrorRules 工单与附件错误
var SupportErrorRules = []MappedError{
	{Target: service.ErrTicketClosed, Code: response.CodeConflict, Key: "error.ticket_closed"},
	{Target: service.ErrTicketStatusInvalid, Code: response.CodeBadRequest, Key: "error.ticket_status_invalid"},
	{Target: service.ErrTicketPriorityInvalid, Code: response.CodeBadRequest, Key: "error.ticket_priority_invalid"},
	{Target: service.ErrTicketSubjectRequired, Code: response.CodeBadRequest, Key: "error.ticket_subject_required"},
	{Target: service.ErrTicketMessageRequired, Code: response.CodeBadRequest, Key: "error.ticket_message_required"},
	{Target: service.ErrTicketAssigneeInvalid, Code: response.CodeBadRequest, Key: "error.ticket_assignee_invalid"},
	{Target: service.ErrAttachmentTooLarge, Code: response.CodeBadRequest, Key: "error.attachment_too_large"},
	{Target: service.ErrAttachmentTypeInvalid, Code: response.CodeBadRequest, Key: "error.attachment_type_invalid"},
	{Target: service.ErrAttachmentEmpty, Code: response.CodeBadRequest, Key: "error.attachment_empty"},
	{Target: service.ErrAttachmentCorrupted, Code: response.CodeInternal, Key: "error.attachment_corrupted"},
	{Target: service.ErrAttachmentStoreDisabled, Code: response.CodeBadRequest, Key: "error.attachment_store_disabled"},
}

// AllErrorRules 全部业务错误映射
var AllErrorRules = ConcatMappedErrors(
	AuthErrorRules,
	BillingErrorRules,
	AffiliateErrorRules,
	SupportErrorRules,
	CommonErrorRules,
)
