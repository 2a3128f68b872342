package models

import "time"

// UserLoginLog 登录日志（客户与员工共用）
type UserLoginLog struct {
	ID         uint      `gorm:"primarykey" json:"id"`                          // 主键
	UserID     uint      `gorm:"index" json:"user_id"`                          // 用户ID（失败时可为0）
	Email      string    `gorm:"index;not null" json:"email"`                   // 登录尝试邮箱
	Status     string    `gorm:"type:varchar(16);index;not null" json:"status"` // 登录结果（success/failed）
	FailReason string    `gorm:"type:varchar(32);index" json:"fail_reason"`     // 失败原因枚举
	ClientIP   string    `gorm:"type:varchar(64);index" json:"client_ip"`       // 客户端IP
	UserAgent  string    `gorm:"type:text" json:"user_agent"`                   // 客户端UA
	RequestID  string    `gorm:"type:varchar(64);index" json:"request_id"`      // 请求追踪ID
	CreatedAt  time.Time `gorm:"index" json:"created_at"`                       // 记录时间
}

// TableName 指定表名
func (UserLoginLog) TableName() string {
	return "user_login_logs"
}

// StaffAuditLog 员工操作审计日志
type StaffAuditLog struct {
	ID         uint      `gorm:"primarykey" json:"id"`                                          // 主键
	OperatorID uint      `gorm:"index;not null" json:"operator_id"`                             // 操作人
	Action     string    `gorm:"type:varchar(64);index;not null" json:"action"`                 // 动作
	TargetType string    `gorm:"type:varchar(32);index;not null;default:''" json:"target_type"` // 目标类型
	TargetID   uint      `gorm:"index;not null;default:0" json:"target_id"`                     // 目标ID
	RequestID  string    `gorm:"type:varchar(64);index;not null;default:''" json:"request_id"`  // 请求追踪ID
	DetailJSON JSON      `gorm:"type:json" json:"detail"`                                       // 附加信息
	CreatedAt  time.Time `gorm:"index" json:"created_at"`                                       // 记录时间
}

// TableName 指定表名
func (StaffAuditLog) TableName() string {
	return "staff_audit_logs"
}
