package i18n

var messages = map[string]map[string]string{
	LocaleEN: {
		"error.bad_request":              "Invalid request parameters",
		"error.not_found":                "Resource not found",
		"error.forbidden":                "You do not have permission to perform this action",
		"error.unauthorized":             "Please sign in first",
		"error.feature_disabled":         "This feature is currently disabled",
		"error.status_transition":        "The requested status change is not allowed",
		"error.internal":                 "Internal server error",
		"error.rate_limited":             "Too many requests, please retry in %d seconds",
		"error.rate_limit_unavailable":   "Rate limiter is unavailable, please retry later",
		"error.login_too_many":           "Too many login attempts, please retry in %d seconds",
		"error.jwt_secret_missing":       "Authentication is not configured",
		"error.auth_header_missing":      "Missing Authorization header",
		"error.auth_header_invalid":      "Authorization header must be a Bearer token",
		"error.token_invalid":            "Invalid or expired token",
		"error.token_revoked":            "Token has been revoked, please sign in again",
		"error.user_id_invalid":          "Invalid user ID",
		"error.user_id_type_invalid":     "Invalid user ID type in context",
		"error.email_invalid":            "Invalid email address",
		"error.email_exists":             "Email is already registered",
		"error.invalid_credentials":      "Incorrect email or password",
		"error.password_invalid":         "Current password is incorrect",
		"error.password_weak":            "Password is too weak",
		"error.password_required":        "Password is required",
		"error.password_max_length":      "Password must not exceed %d bytes",
		"error.password_min_length":      "Password must be at least %d characters",
		"error.password_require_upper":   "Password must contain an uppercase letter",
		"error.password_require_lower":   "Password must contain a lowercase letter",
		"error.password_require_number":  "Password must contain a digit",
		"error.password_require_special": "Password must contain a special character",
		"error.user_disabled":            "Account is disabled",
		"error.profile_empty":            "Nothing to update",
		"error.user_role_invalid":        "Invalid user role",
		"error.user_status_invalid":      "Invalid user status",
		"error.user_fetch_failed":        "Failed to load user",
		"error.user_update_failed":       "Failed to update user",
		"error.register_failed":          "Registration failed",
		"error.login_failed":             "Sign in failed",
		"error.login_log_fetch_failed":   "Failed to load sign-in history",
		"error.audit_log_fetch_failed":   "Failed to load audit logs",
		"error.captcha_required":         "Captcha is required",
		"error.captcha_invalid":          "Captcha is incorrect",
		"error.captcha_unavailable":      "Captcha service is unavailable",
		"error.captcha_generate_failed":  "Failed to generate captcha",
		"error.config_fetch_failed":      "Failed to load configuration",
		"error.config_save_failed":       "Failed to save configuration",
		"error.role_immutable":           "Built-in roles cannot be deleted",

		"error.plan_invalid":                   "Invalid plan data",
		"error.plan_slug_exists":               "Plan slug already exists",
		"error.plan_inactive":                  "Plan is not available",
		"error.plan_id_invalid":                "Invalid plan ID",
		"error.plan_fetch_failed":              "Failed to load plans",
		"error.plan_save_failed":               "Failed to save plan",
		"error.plan_delete_failed":             "Failed to delete plan",
		"error.billing_cycle_invalid":          "Invalid billing cycle",
		"error.server_status_invalid":          "Invalid server status change",
		"error.server_id_invalid":              "Invalid server ID",
		"error.server_fetch_failed":            "Failed to load servers",
		"error.server_update_failed":           "Failed to update server",
		"error.hostname_required":              "Hostname is required",
		"error.order_status_invalid":           "Order status does not allow this action",
		"error.order_type_invalid":             "Invalid order type",
		"error.order_expired":                  "Order has expired",
		"error.order_amount_invalid":           "Invalid order amount",
		"error.order_id_invalid":               "Invalid order ID",
		"error.order_create_failed":            "Failed to create order",
		"error.order_fetch_failed":             "Failed to load orders",
		"error.order_cancel_failed":            "Failed to cancel order",
		"error.invoice_not_found":              "Invoice not found",
		"error.invoice_id_invalid":             "Invalid invoice ID",
		"error.invoice_fetch_failed":           "Failed to load invoices",
		"error.payment_gateway_not_configured": "Payment gateway is not configured",
		"error.payment_gateway_failed":         "Payment gateway request failed",
		"error.payment_signature_invalid":      "Payment signature verification failed",
		"error.payment_not_found":              "Payment not found",
		"error.payment_amount_mismatch":        "Paid amount does not match the order",
		"error.payment_currency_mismatch":      "Paid currency does not match the order",
		"error.payment_status_invalid":         "Payment status does not allow this action",
		"error.payment_id_invalid":             "Invalid payment ID",
		"error.payment_create_failed":          "Failed to create payment",
		"error.payment_verify_failed":          "Failed to verify payment",
		"error.payment_fetch_failed":           "Failed to load payments",
		"error.payment_webhook_failed":         "Failed to process webhook",
		"error.webhook_payload_invalid":        "Invalid webhook payload",

		"error.affiliate_disabled":          "Affiliate program is disabled",
		"error.affiliate_config_invalid":    "Invalid affiliate settings",
		"error.affiliate_code_invalid":      "Invalid referral code",
		"error.affiliate_not_active":        "Affiliate access is not active",
		"error.affiliate_already_active":    "Affiliate access is already active",
		"error.affiliate_fetch_failed":      "Failed to load affiliate data",
		"error.affiliate_update_failed":     "Failed to update affiliate access",
		"error.joining_fee_invalid":         "Affiliate joining fee is not configured",
		"error.referral_level_invalid":      "Invalid referral level",
		"error.referral_fetch_failed":       "Failed to load referrals",
		"error.commission_status_invalid":   "Commission status does not allow this action",
		"error.commission_id_invalid":       "Invalid commission ID",
		"error.commission_fetch_failed":     "Failed to load commissions",
		"error.commission_update_failed":    "Failed to update commission",
		"error.payout_amount_invalid":       "Invalid payout amount",
		"error.payout_below_minimum":        "Payout amount is below the minimum",
		"error.payout_insufficient":         "Insufficient available balance",
		"error.payout_open_exists":          "You already have a payout in progress",
		"error.payout_method_invalid":       "Invalid payout method",
		"error.payout_account_required":     "Payout account is required",
		"error.payout_status_invalid":       "Payout status does not allow this action",
		"error.payout_allocation_shortfall": "Approved commissions do not cover the payout",
		"error.payout_id_invalid":           "Invalid payout ID",
		"error.payout_create_failed":        "Failed to request payout",
		"error.payout_fetch_failed":         "Failed to load payouts",
		"error.payout_update_failed":        "Failed to review payout",

		"error.ticket_closed":             "Ticket is closed",
		"error.ticket_status_invalid":     "Invalid ticket status",
		"error.ticket_priority_invalid":   "Invalid ticket priority",
		"error.ticket_subject_required":   "Ticket subject is required",
		"error.ticket_message_required":   "Message body is required",
		"error.ticket_assignee_invalid":   "Assignee must be a staff member",
		"error.ticket_id_invalid":         "Invalid ticket ID",
		"error.ticket_create_failed":      "Failed to create ticket",
		"error.ticket_fetch_failed":       "Failed to load tickets",
		"error.ticket_reply_failed":       "Failed to post reply",
		"error.ticket_update_failed":      "Failed to update ticket",
		"error.attachment_too_large":      "Attachment is too large",
		"error.attachment_type_invalid":   "Attachment type is not allowed",
		"error.attachment_empty":          "Attachment file is required",
		"error.attachment_corrupted":      "Attachment integrity check failed",
		"error.attachment_store_disabled": "Attachment uploads are disabled",
		"error.attachment_id_invalid":     "Invalid attachment ID",
		"error.attachment_upload_failed":  "Failed to upload attachment",
		"error.attachment_fetch_failed":   "Failed to download attachment",
	},
	LocaleZH: {
		"error.bad_request":              "请求参数错误",
		"error.not_found":                "资源不存在",
		"error.forbidden":                "无权执行该操作",
		"error.unauthorized":             "请先登录",
		"error.feature_disabled":         "该功能未开启",
		"error.status_transition":        "不允许的状态变更",
		"error.internal":                 "服务器内部错误",
		"error.rate_limited":             "请求过于频繁，请 %d 秒后重试",
		"error.rate_limit_unavailable":   "限流服务不可用，请稍后重试",
		"error.login_too_many":           "登录尝试次数过多，请 %d 秒后重试",
		"error.jwt_secret_missing":       "鉴权未配置",
		"error.auth_header_missing":      "缺少 Authorization 请求头",
		"error.auth_header_invalid":      "Authorization 格式应为 Bearer Token",
		"error.token_invalid":            "令牌无效或已过期",
		"error.token_revoked":            "令牌已失效，请重新登录",
		"error.user_id_invalid":          "用户 ID 无效",
		"error.user_id_type_invalid":     "上下文用户 ID 类型错误",
		"error.email_invalid":            "邮箱格式错误",
		"error.email_exists":             "邮箱已注册",
		"error.invalid_credentials":      "邮箱或密码错误",
		"error.password_invalid":         "原密码错误",
		"error.password_weak":            "密码强度不足",
		"error.password_required":        "请输入密码",
		"error.password_max_length":      "密码不能超过 %d 字节",
		"error.password_min_length":      "密码长度至少 %d 位",
		"error.password_require_upper":   "密码需包含大写字母",
		"error.password_require_lower":   "密码需包含小写字母",
		"error.password_require_number":  "密码需包含数字",
		"error.password_require_special": "密码需包含特殊字符",
		"error.user_disabled":            "账号已被禁用",
		"error.profile_empty":            "没有需要更新的内容",
		"error.user_role_invalid":        "用户角色无效",
		"error.user_status_invalid":      "用户状态无效",
		"error.user_fetch_failed":        "获取用户失败",
		"error.user_update_failed":       "更新用户失败",
		"error.register_failed":          "注册失败",
		"error.login_failed":             "登录失败",
		"error.login_log_fetch_failed":   "获取登录记录失败",
		"error.audit_log_fetch_failed":   "获取审计日志失败",
		"error.captcha_required":         "请输入验证码",
		"error.captcha_invalid":          "验证码错误",
		"error.captcha_unavailable":      "验证码服务不可用",
		"error.captcha_generate_failed":  "生成验证码失败",
		"error.config_fetch_failed":      "获取配置失败",
		"error.config_save_failed":       "保存配置失败",
		"error.role_immutable":           "内置角色不可删除",

		"error.plan_invalid":                   "套餐数据无效",
		"error.plan_slug_exists":               "套餐标识已存在",
		"error.plan_inactive":                  "套餐不可购买",
		"error.plan_id_invalid":                "套餐 ID 无效",
		"error.plan_fetch_failed":              "获取套餐失败",
		"error.plan_save_failed":               "保存套餐失败",
		"error.plan_delete_failed":             "删除套餐失败",
		"error.billing_cycle_invalid":          "计费周期无效",
		"error.server_status_invalid":          "服务器状态变更无效",
		"error.server_id_invalid":              "服务器 ID 无效",
		"error.server_fetch_failed":            "获取服务器失败",
		"error.server_update_failed":           "更新服务器失败",
		"error.hostname_required":              "请填写主机名",
		"error.order_status_invalid":           "订单状态不允许该操作",
		"error.order_type_invalid":             "订单类型无效",
		"error.order_expired":                  "订单已过期",
		"error.order_amount_invalid":           "订单金额无效",
		"error.order_id_invalid":               "订单 ID 无效",
		"error.order_create_failed":            "创建订单失败",
		"error.order_fetch_failed":             "获取订单失败",
		"error.order_cancel_failed":            "取消订单失败",
		"error.invoice_not_found":              "发票不存在",
		"error.invoice_id_invalid":             "发票 ID 无效",
		"error.invoice_fetch_failed":           "获取发票失败",
		"error.payment_gateway_not_configured": "支付网关未配置",
		"error.payment_gateway_failed":         "支付网关请求失败",
		"error.payment_signature_invalid":      "支付签名校验失败",
		"error.payment_not_found":              "支付记录不存在",
		"error.payment_amount_mismatch":        "支付金额与订单不符",
		"error.payment_currency_mismatch":      "支付币种与订单不符",
		"error.payment_status_invalid":         "支付状态不允许该操作",
		"error.payment_id_invalid":             "支付 ID 无效",
		"error.payment_create_failed":          "创建支付失败",
		"error.payment_verify_failed":          "支付校验失败",
		"error.payment_fetch_failed":           "获取支付记录失败",
		"error.payment_webhook_failed":         "处理支付回调失败",
		"error.webhook_payload_invalid":        "回调内容无效",

		"error.affiliate_disabled":          "推广计划未开启",
		"error.affiliate_config_invalid":    "推广配置无效",
		"error.affiliate_code_invalid":      "推广码无效",
		"error.affiliate_not_active":        "尚未开通推广权限",
		"error.affiliate_already_active":    "推广权限已开通",
		"error.affiliate_fetch_failed":      "获取推广数据失败",
		"error.affiliate_update_failed":     "更新推广权限失败",
		"error.joining_fee_invalid":         "推广开通费用未配置",
		"error.referral_level_invalid":      "推荐层级无效",
		"error.referral_fetch_failed":       "获取推荐关系失败",
		"error.commission_status_invalid":   "佣金状态不允许该操作",
		"error.commission_id_invalid":       "佣金 ID 无效",
		"error.commission_fetch_failed":     "获取佣金失败",
		"error.commission_update_failed":    "更新佣金失败",
		"error.payout_amount_invalid":       "提现金额无效",
		"error.payout_below_minimum":        "提现金额低于最低限额",
		"error.payout_insufficient":         "可提现余额不足",
		"error.payout_open_exists":          "已有处理中的提现申请",
		"error.payout_method_invalid":       "提现方式无效",
		"error.payout_account_required":     "请填写收款账户",
		"error.payout_status_invalid":       "提现状态不允许该操作",
		"error.payout_allocation_shortfall": "已审核佣金不足以覆盖提现金额",
		"error.payout_id_invalid":           "提现 ID 无效",
		"error.payout_create_failed":        "提现申请失败",
		"error.payout_fetch_failed":         "获取提现记录失败",
		"error.payout_update_failed":        "提现审核失败",

		"error.ticket_closed":             "工单已关闭",
		"error.ticket_status_invalid":     "工单状态无效",
		"error.ticket_priority_invalid":   "工单优先级无效",
		"error.ticket_subject_required":   "请填写工单标题",
		"error.ticket_message_required":   "请填写消息内容",
		"error.ticket_assignee_invalid":   "只能指派给员工",
		"error.ticket_id_invalid":         "工单 ID 无效",
		"error.ticket_create_failed":      "创建工单失败",
		"error.ticket_fetch_failed":       "获取工单失败",
		"error.ticket_reply_failed":       "回复工单失败",
		"error.ticket_update_failed":      "更新工单失败",
		"error.attachment_too_large":      "附件过大",
		"error.attachment_type_invalid":   "不支持的附件类型",
		"error.attachment_empty":          "请上传附件",
		"error.attachment_corrupted":      "附件完整性校验失败",
		"error.attachment_store_disabled": "附件上传未开启",
		"error.attachment_id_invalid":     "附件 ID 无效",
		"error.attachment_upload_failed":  "上传附件失败",
		"error.attachment_fetch_failed":   "下载附件失败",
	},
}
