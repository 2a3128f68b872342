package models

import (
	"time"

	"gorm.io/gorm"
)

// Invoice 发票表（一单一票）
type Invoice struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                         // 主键
	InvoiceNo      string         `gorm:"type:varchar(32);uniqueIndex;not null" json:"invoice_no"`      // 发票号
	OrderID        uint           `gorm:"not null;uniqueIndex" json:"order_id"`                         // 订单ID
	UserID         uint           `gorm:"not null;index" json:"user_id"`                                // 用户ID
	OriginalAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"original_amount"` // 原价
	DiscountAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"` // 折扣
	Subtotal       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"`        // 折后未税
	TaxPercent     Money          `gorm:"type:decimal(10,2);not null;default:0" json:"tax_percent"`     // GST 百分比
	TaxAmount      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"tax_amount"`      // 税额
	Total          Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total"`           // 总额
	Currency       string         `gorm:"type:varchar(8);not null" json:"currency"`                     // 币种
	Status         string         `gorm:"type:varchar(16);not null;index" json:"status"`                // 发票状态
	IssuedAt       time.Time      `json:"issued_at"`                                                    // 开票时间
	DueAt          *time.Time     `json:"due_at,omitempty"`                                             // 付款截止
	PaidAt         *time.Time     `json:"paid_at,omitempty"`                                            // 支付时间
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                                      // 创建时间
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"`                                      // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                               // 软删除时间
}

// TableName 指定表名
func (Invoice) TableName() string {
	return "invoices"
}
