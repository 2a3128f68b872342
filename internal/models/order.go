package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表
type Order struct {
	ID              uint           `gorm:"primarykey" json:"id"`                                          // 主键
	OrderNo         string         `gorm:"type:varchar(32);uniqueIndex;not null" json:"order_no"`         // 订单号
	UserID          uint           `gorm:"not null;index" json:"user_id"`                                 // 用户ID
	OrderType       string         `gorm:"type:varchar(32);not null;index" json:"order_type"`             // 订单类型
	PlanID          *uint          `gorm:"index" json:"plan_id,omitempty"`                                // 套餐ID（服务器订单）
	BillingCycle    string         `gorm:"type:varchar(16);not null;default:''" json:"billing_cycle"`     // 计费周期
	Hostname        string         `gorm:"type:varchar(255);not null;default:''" json:"hostname"`         // 申请主机名
	Region          string         `gorm:"type:varchar(64);not null;default:''" json:"region"`            // 申请地域
	OSImage         string         `gorm:"type:varchar(64);not null;default:''" json:"os_image"`          // 申请镜像
	OriginalAmount  Money          `gorm:"type:decimal(20,2);not null;default:0" json:"original_amount"`  // 原价
	DiscountPercent Money          `gorm:"type:decimal(10,2);not null;default:0" json:"discount_percent"` // 折扣百分比
	DiscountAmount  Money          `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"`  // 折扣金额
	Subtotal        Money          `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"`         // 折后未税金额（佣金基数）
	TaxPercent      Money          `gorm:"type:decimal(10,2);not null;default:0" json:"tax_percent"`      // GST 百分比
	TaxAmount       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"tax_amount"`       // 税额
	TotalAmount     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`     // 应付总额
	Currency        string         `gorm:"type:varchar(8);not null" json:"currency"`                      // 币种
	Status          string         `gorm:"type:varchar(20);not null;index" json:"status"`                 // 订单状态
	ExpiresAt       *time.Time     `gorm:"index" json:"expires_at,omitempty"`                             // 支付过期时间
	PaidAt          *time.Time     `json:"paid_at,omitempty"`                                             // 支付时间
	CompletedAt     *time.Time     `json:"completed_at,omitempty"`                                        // 完成时间
	CancelledAt     *time.Time     `json:"cancelled_at,omitempty"`                                        // 取消时间
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                                       // 创建时间
	UpdatedAt       time.Time      `gorm:"index" json:"updated_at"`                                       // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                                                // 软删除时间

	Plan    *Plan    `gorm:"foreignKey:PlanID" json:"plan,omitempty"`     // 套餐
	Invoice *Invoice `gorm:"foreignKey:OrderID" json:"invoice,omitempty"` // 发票
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
