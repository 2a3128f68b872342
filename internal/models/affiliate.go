package models

import (
	"time"

	"gorm.io/gorm"
)

// AffiliateSubscription 推广资格（与用户一对一）
type AffiliateSubscription struct {
	ID               uint           `gorm:"primarykey" json:"id"`                                          // 主键
	UserID           uint           `gorm:"not null;uniqueIndex" json:"user_id"`                           // 用户ID
	ReferralCode     string         `gorm:"type:varchar(32);not null;uniqueIndex" json:"referral_code"`    // 推广码
	IsActive         bool           `gorm:"not null;default:false;index" json:"is_active"`                 // 是否有效
	IsLifetime       bool           `gorm:"not null;default:false" json:"is_lifetime"`                     // 是否终身
	ActivationSource string         `gorm:"type:varchar(32);not null;default:''" json:"activation_source"` // 激活来源
	SourceOrderID    *uint          `gorm:"index" json:"source_order_id,omitempty"`                        // 激活订单
	ActivatedAt      *time.Time     `json:"activated_at,omitempty"`                                        // 激活时间
	ExpiresAt        *time.Time     `gorm:"index" json:"expires_at,omitempty"`                             // 到期时间（终身为空）
	CreatedAt        time.Time      `gorm:"index" json:"created_at"`                                       // 创建时间
	UpdatedAt        time.Time      `gorm:"index" json:"updated_at"`                                       // 更新时间
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`                                                // 软删除时间

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"` // 用户
}

// TableName 指定表名
func (AffiliateSubscription) TableName() string {
	return "affiliate_subscriptions"
}

// EarningActive 判断当前时刻是否可获得佣金
func (s *AffiliateSubscription) EarningActive(now time.Time) bool {
	if s == nil || !s.IsActive {
		return false
	}
	if s.IsLifetime || s.ExpiresAt == nil {
		return true
	}
	return s.ExpiresAt.After(now)
}

// Referral 推荐关系边（推荐人 -> 被推荐人，层级 1..3）
type Referral struct {
	ID           uint       `gorm:"primarykey" json:"id"`                                                      // 主键
	ReferrerID   uint       `gorm:"not null;index" json:"referrer_id"`                                         // 推荐人
	ReferredID   uint       `gorm:"not null;index;uniqueIndex:idx_referral_referred_level" json:"referred_id"` // 被推荐人
	Level        int        `gorm:"not null;uniqueIndex:idx_referral_referred_level" json:"level"`             // 层级
	ReferralCode string     `gorm:"type:varchar(32);not null;default:''" json:"referral_code"`                 // 注册时使用的推广码
	Converted    bool       `gorm:"not null;default:false;index" json:"converted"`                             // 是否已转化（首单支付）
	ConvertedAt  *time.Time `json:"converted_at,omitempty"`                                                    // 转化时间
	FirstOrderID *uint      `json:"first_order_id,omitempty"`                                                  // 首单
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`                                                   // 创建时间
	UpdatedAt    time.Time  `json:"updated_at"`                                                                // 更新时间

	Referred *User `gorm:"foreignKey:ReferredID" json:"referred,omitempty"` // 被推荐人
}

// TableName 指定表名
func (Referral) TableName() string {
	return "referrals"
}

// Commission 推广佣金（每个推荐人、层级、订单一条）
type Commission struct {
	ID           uint           `gorm:"primarykey" json:"id"`                                                // 主键
	ReferrerID   uint           `gorm:"not null;index;uniqueIndex:idx_commission_unique" json:"referrer_id"` // 获佣用户
	SourceUserID uint           `gorm:"not null;index" json:"source_user_id"`                                // 下单用户
	OrderID      uint           `gorm:"not null;index;uniqueIndex:idx_commission_unique" json:"order_id"`    // 订单
	PaymentID    uint           `gorm:"not null;index" json:"payment_id"`                                    // 支付流水
	Level        int            `gorm:"not null;uniqueIndex:idx_commission_unique" json:"level"`             // 层级
	OrderType    string         `gorm:"type:varchar(32);not null" json:"order_type"`                         // 订单类型
	BaseAmount   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"base_amount"`            // 佣金基数
	RatePercent  Money          `gorm:"type:decimal(10,2);not null;default:0" json:"rate_percent"`           // 佣金比例
	Amount       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`                 // 佣金金额
	PaidAmount   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"paid_amount"`            // 已提现部分
	Status       string         `gorm:"type:varchar(16);not null;index" json:"status"`                       // 状态
	ApproveAfter *time.Time     `gorm:"index" json:"approve_after,omitempty"`                                // 自动确认时间
	ApprovedAt   *time.Time     `gorm:"index" json:"approved_at,omitempty"`                                  // 确认时间
	PaidAt       *time.Time     `json:"paid_at,omitempty"`                                                   // 结清时间
	CancelReason string         `gorm:"type:varchar(255);not null;default:''" json:"cancel_reason"`          // 取消原因
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`                                             // 创建时间
	UpdatedAt    time.Time      `gorm:"index" json:"updated_at"`                                             // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                                                      // 软删除时间

	Order *Order `gorm:"foreignKey:OrderID" json:"order,omitempty"` // 订单
}

// TableName 指定表名
func (Commission) TableName() string {
	return "commissions"
}

// Payout 提现申请
type Payout struct {
	ID                uint           `gorm:"primarykey" json:"id"`                                            // 主键
	UserID            uint           `gorm:"not null;index" json:"user_id"`                                   // 用户
	GrossAmount       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"gross_amount"`       // 申请金额
	TDSPercent        Money          `gorm:"type:decimal(10,2);not null;default:0" json:"tds_percent"`        // TDS 比例
	TDSAmount         Money          `gorm:"type:decimal(20,2);not null;default:0" json:"tds_amount"`         // TDS 扣除
	GSTPercent        Money          `gorm:"type:decimal(10,2);not null;default:0" json:"gst_percent"`        // GST 比例
	GSTAmount         Money          `gorm:"type:decimal(20,2);not null;default:0" json:"gst_amount"`         // GST 扣除
	NetAmount         Money          `gorm:"type:decimal(20,2);not null;default:0" json:"net_amount"`         // 实付金额
	Method            string         `gorm:"type:varchar(32);not null" json:"method"`                         // 提现方式
	Account           string         `gorm:"type:varchar(255);not null" json:"account"`                       // 收款账户
	Status            string         `gorm:"type:varchar(16);not null;index" json:"status"`                   // 状态
	AdminNote         string         `gorm:"type:varchar(255);not null;default:''" json:"admin_note"`         // 审核备注
	TransferReference string         `gorm:"type:varchar(128);not null;default:''" json:"transfer_reference"` // 转账凭证号
	ReviewedBy        *uint          `gorm:"index" json:"reviewed_by,omitempty"`                              // 审核人
	ReviewedAt        *time.Time     `json:"reviewed_at,omitempty"`                                           // 审核时间
	CompletedAt       *time.Time     `json:"completed_at,omitempty"`                                          // 打款时间
	CreatedAt         time.Time      `gorm:"index" json:"created_at"`                                         // 创建时间
	UpdatedAt         time.Time      `gorm:"index" json:"updated_at"`                                         // 更新时间
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`                                                  // 软删除时间

	User        *User              `gorm:"foreignKey:UserID" json:"user,omitempty"`          // 用户
	Allocations []PayoutAllocation `gorm:"foreignKey:PayoutID" json:"allocations,omitempty"` // 佣金分摊
}

// TableName 指定表名
func (Payout) TableName() string {
	return "payouts"
}

// PayoutAllocation 提现与佣金的分摊记录
type PayoutAllocation struct {
	ID           uint      `gorm:"primarykey" json:"id"`                                // 主键
	PayoutID     uint      `gorm:"not null;index" json:"payout_id"`                     // 提现
	CommissionID uint      `gorm:"not null;index" json:"commission_id"`                 // 佣金
	Amount       Money     `gorm:"type:decimal(20,2);not null;default:0" json:"amount"` // 分摊金额
	CreatedAt    time.Time `json:"created_at"`                                          // 创建时间
}

// TableName 指定表名
func (PayoutAllocation) TableName() string {
	return "payout_allocations"
}
