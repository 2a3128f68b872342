package models

import (
	"time"

	"gorm.io/gorm"
)

// SupportTicket 工单
type SupportTicket struct {
	ID          uint           `gorm:"primarykey" json:"id"`                                        // 主键
	TicketNo    string         `gorm:"type:varchar(32);uniqueIndex;not null" json:"ticket_no"`      // 工单号
	UserID      uint           `gorm:"not null;index" json:"user_id"`                               // 提交用户
	Subject     string         `gorm:"type:varchar(255);not null" json:"subject"`                   // 主题
	Category    string         `gorm:"type:varchar(32);not null;default:'general'" json:"category"` // 分类
	Priority    string         `gorm:"type:varchar(16);not null;index" json:"priority"`             // 优先级
	Status      string         `gorm:"type:varchar(20);not null;index" json:"status"`               // 状态
	AssigneeID  *uint          `gorm:"index" json:"assignee_id,omitempty"`                          // 处理人
	LastReplyAt *time.Time     `gorm:"index" json:"last_reply_at,omitempty"`                        // 最近回复
	ClosedAt    *time.Time     `json:"closed_at,omitempty"`                                         // 关闭时间
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                                     // 创建时间
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`                                     // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                              // 软删除时间

	Messages    []TicketMessage    `gorm:"foreignKey:TicketID" json:"messages,omitempty"`    // 消息
	Attachments []TicketAttachment `gorm:"foreignKey:TicketID" json:"attachments,omitempty"` // 附件
}

// TableName 指定表名
func (SupportTicket) TableName() string {
	return "support_tickets"
}

// TicketMessage 工单消息
type TicketMessage struct {
	ID         uint      `gorm:"primarykey" json:"id"`                         // 主键
	TicketID   uint      `gorm:"not null;index" json:"ticket_id"`              // 工单
	AuthorID   uint      `gorm:"not null;index" json:"author_id"`              // 作者
	AuthorRole string    `gorm:"type:varchar(16);not null" json:"author_role"` // 作者角色
	Body       string    `gorm:"type:text;not null" json:"body"`               // 内容
	Internal   bool      `gorm:"not null;default:false" json:"internal"`       // 内部备注（客户不可见）
	CreatedAt  time.Time `gorm:"index" json:"created_at"`                      // 创建时间
}

// TableName 指定表名
func (TicketMessage) TableName() string {
	return "ticket_messages"
}

// TicketAttachment 工单附件（密文落盘）
type TicketAttachment struct {
	ID           uint      `gorm:"primarykey" json:"id"`                            // 主键
	TicketID     uint      `gorm:"not null;index" json:"ticket_id"`                 // 工单
	MessageID    *uint     `gorm:"index" json:"message_id,omitempty"`               // 关联消息
	Internal     bool      `gorm:"not null;default:false" json:"internal"`          // 内部附件（客户不可见）
	UploaderID   uint      `gorm:"not null;index" json:"uploader_id"`               // 上传人
	OriginalName string    `gorm:"type:varchar(255);not null" json:"original_name"` // 原始文件名
	ContentType  string    `gorm:"type:varchar(128);not null" json:"content_type"`  // 检测到的类型
	Size         int64     `gorm:"not null" json:"size"`                            // 明文大小
	StorageKey   string    `gorm:"type:varchar(128);uniqueIndex;not null" json:"-"` // 存储键
	Checksum     string    `gorm:"type:varchar(64);not null" json:"checksum"`       // 明文 sha256
	CreatedAt    time.Time `gorm:"index" json:"created_at"`                         // 创建时间
}

// TableName 指定表名
func (TicketAttachment) TableName() string {
	return "ticket_attachments"
}
