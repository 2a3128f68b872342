package constants

// 用户角色常量
const (
	UserRoleCustomer = "customer"
	UserRoleAdmin    = "admin"
	UserRoleSupport  = "support"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 订单类型常量
const (
	OrderTypeServerPurchase        = "server_purchase"
	OrderTypeAffiliateSubscription = "affiliate_subscription"
)

// 订单状态常量
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// 计费周期常量
const (
	BillingCycleMonthly   = "monthly"
	BillingCycleQuarterly = "quarterly"
	BillingCycleYearly    = "yearly"
)

// 发票状态常量
const (
	InvoiceStatusUnpaid = "unpaid"
	InvoiceStatusPaid   = "paid"
	InvoiceStatusVoid   = "void"
)

// 支付流水状态常量
const (
	PaymentStatusCreated        = "created"
	PaymentStatusPaid           = "paid"
	PaymentStatusFailed         = "failed"
	PaymentStatusRefundRequired = "refund_required" // 订单不可支付但款项已到账，待人工退款
)

// 支付提供方常量
const (
	PaymentProviderRazorpay = "razorpay"
)

// Razorpay webhook 事件
const (
	RazorpayEventPaymentCaptured = "payment.captured"
	RazorpayEventPaymentFailed   = "payment.failed"
	RazorpayEventOrderPaid       = "order.paid"
)

// 服务器状态常量
const (
	ServerStatusProvisioning = "provisioning"
	ServerStatusActive       = "active"
	ServerStatusSuspended    = "suspended"
	ServerStatusTerminated   = "terminated"
)

// 推广订阅激活来源
const (
	AffiliateSourceJoiningFee     = "joining_fee"
	AffiliateSourceServerPurchase = "server_purchase"
	AffiliateSourceAdmin          = "admin"
)

// 推广链最大层级
const ReferralMaxLevel = 3

// 佣金状态常量
const (
	CommissionStatusPending   = "pending"
	CommissionStatusApproved  = "approved"
	CommissionStatusPaid      = "paid"
	CommissionStatusCancelled = "cancelled"
)

// 提现状态常量
const (
	PayoutStatusRequested = "requested"
	PayoutStatusApproved  = "approved"
	PayoutStatusRejected  = "rejected"
	PayoutStatusCompleted = "completed"
)

// 提现审核动作
const (
	PayoutActionApprove  = "approve"
	PayoutActionReject   = "reject"
	PayoutActionComplete = "complete"
)

// 提现方式
const (
	PayoutMethodBankTransfer = "bank_transfer"
	PayoutMethodUPI          = "upi"
)

// 工单状态常量
const (
	TicketStatusOpen             = "open"
	TicketStatusInProgress       = "in_progress"
	TicketStatusAwaitingCustomer = "awaiting_customer"
	TicketStatusResolved         = "resolved"
	TicketStatusClosed           = "closed"
)

// 工单优先级常量
const (
	TicketPriorityLow    = "low"
	TicketPriorityNormal = "normal"
	TicketPriorityHigh   = "high"
	TicketPriorityUrgent = "urgent"
)

// 设置键常量
const (
	SettingKeyAffiliateConfig = "affiliate_config"
)

// 验证码场景
const (
	CaptchaSceneLogin    = "login"
	CaptchaSceneRegister = "register"
)

// 队列与任务常量
const (
	QueueDefault           = "default"
	QueueCritical          = "critical"
	TaskNotificationEmail  = "notification:email"
	TaskOrderTimeoutCancel = "order:timeout_cancel"
)

// 通知事件
const (
	NotifyEventOrderCompleted  = "order_completed"
	NotifyEventPaymentFailed   = "payment_failed"
	NotifyEventPayoutReviewed  = "payout_reviewed"
	NotifyEventTicketReplied   = "ticket_replied"
	NotifyEventAffiliateActive = "affiliate_activated"
)

// 登录日志状态
const (
	LoginLogStatusSuccess = "success"
	LoginLogStatusFailed  = "failed"
)

// 登录失败原因
const (
	LoginLogFailReasonBadRequest         = "bad_request"
	LoginLogFailReasonCaptchaRequired    = "captcha_required"
	LoginLogFailReasonCaptchaInvalid     = "captcha_invalid"
	LoginLogFailReasonInvalidEmail       = "invalid_email"
	LoginLogFailReasonInvalidCredentials = "invalid_credentials"
	LoginLogFailReasonUserDisabled       = "user_disabled"
	LoginLogFailReasonInternalError      = "internal_error"
)

// 员工审计动作
const (
	AuditActionUserUpdated          = "user_updated"
	AuditActionOrderCancelled       = "order_cancelled"
	AuditActionServerUpdated        = "server_updated"
	AuditActionPlanSaved            = "plan_saved"
	AuditActionPlanDeleted          = "plan_deleted"
	AuditActionAffiliateActivated   = "affiliate_activated"
	AuditActionAffiliateDeactivated = "affiliate_deactivated"
	AuditActionCommissionApproved   = "commission_approved"
	AuditActionCommissionCancelled  = "commission_cancelled"
	AuditActionPayoutReviewed       = "payout_reviewed"
	AuditActionSettingUpdated       = "setting_updated"
	AuditActionRoleCreated          = "authz_role_created"
	AuditActionRoleDeleted          = "authz_role_deleted"
	AuditActionPolicyGranted        = "authz_policy_granted"
	AuditActionPolicyRevoked        = "authz_policy_revoked"
	AuditActionUserRolesSet         = "authz_user_roles_set"
)

// 审计目标类型
const (
	AuditTargetUser       = "user"
	AuditTargetOrder      = "order"
	AuditTargetServer     = "server"
	AuditTargetPlan       = "plan"
	AuditTargetCommission = "commission"
	AuditTargetPayout     = "payout"
	AuditTargetSetting    = "setting"
	AuditTargetRole       = "role"
)
