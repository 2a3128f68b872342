package models

import (
	"time"

	"gorm.io/gorm"
)

// Server 服务器开通记录
type Server struct {
	ID           uint           `gorm:"primarykey" json:"id"`                                   // 主键
	UserID       uint           `gorm:"not null;index" json:"user_id"`                          // 所属用户
	OrderID      uint           `gorm:"not null;uniqueIndex" json:"order_id"`                   // 来源订单
	PlanID       uint           `gorm:"not null;index" json:"plan_id"`                          // 套餐
	Hostname     string         `gorm:"type:varchar(255);not null" json:"hostname"`             // 主机名
	Region       string         `gorm:"type:varchar(64);not null;default:''" json:"region"`     // 地域
	OSImage      string         `gorm:"type:varchar(64);not null;default:''" json:"os_image"`   // 系统镜像
	Status       string         `gorm:"type:varchar(20);not null;index" json:"status"`          // 状态
	IPAddress    string         `gorm:"type:varchar(64);not null;default:''" json:"ip_address"` // IP 地址
	BillingCycle string         `gorm:"type:varchar(16);not null" json:"billing_cycle"`         // 计费周期
	ActivatedAt  *time.Time     `json:"activated_at,omitempty"`                                 // 激活时间
	ExpiresAt    *time.Time     `gorm:"index" json:"expires_at,omitempty"`                      // 到期时间
	TerminatedAt *time.Time     `json:"terminated_at,omitempty"`                                // 终止时间
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`                                // 创建时间
	UpdatedAt    time.Time      `gorm:"index" json:"updated_at"`                                // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                                         // 软删除时间

	Plan *Plan `gorm:"foreignKey:PlanID" json:"plan,omitempty"` // 套餐
}

// TableName 指定表名
func (Server) TableName() string {
	return "servers"
}
