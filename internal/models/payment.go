package models

import (
	"time"

	"gorm.io/gorm"
)

// PaymentTransaction 支付流水（同一订单可有多次尝试）
type PaymentTransaction struct {
	ID                    uint           `gorm:"primarykey" json:"id"`                                                 // 主键
	OrderID               uint           `gorm:"not null;index" json:"order_id"`                                       // 订单ID
	UserID                uint           `gorm:"not null;index" json:"user_id"`                                        // 用户ID
	Provider              string         `gorm:"type:varchar(32);not null" json:"provider"`                            // 支付提供方
	GatewayOrderID        string         `gorm:"type:varchar(64);uniqueIndex;not null" json:"gateway_order_id"`        // 网关订单号
	GatewayPaymentID      string         `gorm:"type:varchar(64);index;not null;default:''" json:"gateway_payment_id"` // 网关支付号
	GatewaySignature      string         `gorm:"type:varchar(128);not null;default:''" json:"-"`                       // 回调签名
	Amount                Money          `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`                  // 金额
	Currency              string         `gorm:"type:varchar(8);not null" json:"currency"`                             // 币种
	Status                string         `gorm:"type:varchar(20);not null;index" json:"status"`                        // 状态
	CommissionDistributed bool           `gorm:"not null;default:false" json:"commission_distributed"`                 // 佣金是否已分发
	FailureReason         string         `gorm:"type:varchar(255);not null;default:''" json:"failure_reason"`          // 失败原因
	Payload               JSON           `gorm:"type:json" json:"-"`                                                   // 网关原始数据
	PaidAt                *time.Time     `json:"paid_at,omitempty"`                                                    // 支付时间
	CreatedAt             time.Time      `gorm:"index" json:"created_at"`                                              // 创建时间
	UpdatedAt             time.Time      `gorm:"index" json:"updated_at"`                                              // 更新时间
	DeletedAt             gorm.DeletedAt `gorm:"index" json:"-"`                                                       // 软删除时间
}

// TableName 指定表名
func (PaymentTransaction) TableName() string {
	return "payment_transactions"
}
