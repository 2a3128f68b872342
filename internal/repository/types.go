package repository

import "time"

// UserListFilter 用户列表过滤条件
type UserListFilter struct {
	Page        int
	PageSize    int
	Keyword     string
	Role        string
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// PlanListFilter 套餐列表过滤条件
type PlanListFilter struct {
	Page       int
	PageSize   int
	OnlyActive bool
}

// ServerListFilter 服务器列表过滤条件
type ServerListFilter struct {
	Page     int
	PageSize int
	UserID   uint
	Status   string
	Keyword  string
}

// OrderListFilter 订单列表过滤条件
type OrderListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	OrderType   string
	Status      string
	OrderNo     string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// InvoiceListFilter 发票列表过滤条件
type InvoiceListFilter struct {
	Page     int
	PageSize int
	UserID   uint
	Status   string
}

// PaymentListFilter 支付流水过滤条件
type PaymentListFilter struct {
	Page     int
	PageSize int
	UserID   uint
	OrderID  uint
	Status   string
}

// SubscriptionListFilter 推广资格列表过滤条件
type SubscriptionListFilter struct {
	Page     int
	PageSize int
	IsActive *bool
	Keyword  string
}

// ReferralListFilter 推荐关系过滤条件
type ReferralListFilter struct {
	Page       int
	PageSize   int
	ReferrerID uint
	Level      int
}

// CommissionListFilter 佣金过滤条件
type CommissionListFilter struct {
	Page       int
	PageSize   int
	ReferrerID uint
	OrderID    uint
	Level      int
	Status     string
}

// PayoutListFilter 提现过滤条件
type PayoutListFilter struct {
	Page     int
	PageSize int
	UserID   uint
	Status   string
}

// TicketListFilter 工单过滤条件
type TicketListFilter struct {
	Page       int
	PageSize   int
	UserID     uint
	AssigneeID uint
	Status     string
	Priority   string
	Keyword    string
}

// ReferralLevelStat 单层推荐统计
type ReferralLevelStat struct {
	Level     int   `json:"level"`
	Total     int64 `json:"total"`
	Converted int64 `json:"converted"`
}

// UserLoginLogListFilter 登录日志过滤条件
type UserLoginLogListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	Email       string
	Status      string
	FailReason  string
	ClientIP    string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// StaffAuditLogListFilter 员工审计日志过滤条件
type StaffAuditLogListFilter struct {
	Page        int
	PageSize    int
	OperatorID  uint
	Action      string
	TargetType  string
	TargetID    uint
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}
