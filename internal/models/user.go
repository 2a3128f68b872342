package models

import (
	"time"

	"github.com/hostdesk/internal/constants"

	"gorm.io/gorm"
)

// User 用户表（客户与后台员工共用，按 Role 区分）
type User struct {
	ID               uint           `gorm:"primarykey" json:"id"`                                           // 主键
	Email            string         `gorm:"uniqueIndex;not null" json:"email"`                              // 邮箱
	PasswordHash     string         `gorm:"not null" json:"-"`                                              // 密码哈希（不返回给前端）
	DisplayName      string         `gorm:"default:''" json:"display_name"`                                 // 昵称
	Phone            string         `gorm:"type:varchar(32);default:''" json:"phone"`                       // 手机号
	Role             string         `gorm:"type:varchar(16);not null;default:'customer';index" json:"role"` // 角色 customer/admin/support
	Status           string         `gorm:"type:varchar(16);not null;default:'active';index" json:"status"` // 账号状态
	TokenVersion     uint64         `gorm:"not null;default:0" json:"-"`                                    // Token 版本（用于全量失效）
	ReferredByID     *uint          `gorm:"index" json:"referred_by_id,omitempty"`                          // 直接推荐人（一级）
	ReferrerL2ID     *uint          `gorm:"index" json:"referrer_l2_id,omitempty"`                          // 二级上级
	ReferrerL3ID     *uint          `gorm:"index" json:"referrer_l3_id,omitempty"`                          // 三级上级
	TotalEarnings    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_earnings"`    // 累计佣金（待确认+已确认）
	TotalWithdrawn   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_withdrawn"`   // 累计已提现
	AvailableBalance Money          `gorm:"type:decimal(20,2);not null;default:0" json:"available_balance"` // 可提现余额
	LastLoginAt      *time.Time     `json:"last_login_at"`                                                  // 最后登录时间
	CreatedAt        time.Time      `gorm:"index" json:"created_at"`                                        // 创建时间
	UpdatedAt        time.Time      `gorm:"index" json:"updated_at"`                                        // 更新时间
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`                                                 // 软删除时间
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// AncestorIDs 按层级返回缓存的上级用户 ID（1..3），空层级为 0
func (u *User) AncestorIDs() [3]uint {
	var ids [3]uint
	for i, ptr := range []*uint{u.ReferredByID, u.ReferrerL2ID, u.ReferrerL3ID} {
		if ptr != nil {
			ids[i] = *ptr
		}
	}
	return ids
}

// IsStaff 是否后台员工
func (u *User) IsStaff() bool {
	return u.Role == constants.UserRoleAdmin || u.Role == constants.UserRoleSupport
}
