package models

import (
	"time"

	"gorm.io/gorm"
)

// Plan 主机套餐
type Plan struct {
	ID                       uint           `gorm:"primarykey" json:"id"`                                                    // 主键
	Name                     string         `gorm:"type:varchar(128);not null" json:"name"`                                  // 名称
	Slug                     string         `gorm:"type:varchar(64);uniqueIndex;not null" json:"slug"`                       // 唯一标识
	Description              string         `gorm:"type:text" json:"description"`                                            // 描述
	CPUCores                 int            `gorm:"not null;default:1" json:"cpu_cores"`                                     // CPU 核数
	RAMMB                    int            `gorm:"not null;default:1024" json:"ram_mb"`                                     // 内存 MB
	DiskGB                   int            `gorm:"not null;default:20" json:"disk_gb"`                                      // 磁盘 GB
	BandwidthGB              int            `gorm:"not null;default:0" json:"bandwidth_gb"`                                  // 流量 GB（0 不限）
	MonthlyPrice             Money          `gorm:"type:decimal(20,2);not null;default:0" json:"monthly_price"`              // 月付价格
	QuarterlyDiscountPercent Money          `gorm:"type:decimal(10,2);not null;default:0" json:"quarterly_discount_percent"` // 季付折扣百分比
	YearlyDiscountPercent    Money          `gorm:"type:decimal(10,2);not null;default:0" json:"yearly_discount_percent"`    // 年付折扣百分比
	IsActive                 bool           `gorm:"not null;default:true;index" json:"is_active"`                            // 是否上架
	SortOrder                int            `gorm:"not null;default:0" json:"sort_order"`                                    // 排序
	CreatedAt                time.Time      `gorm:"index" json:"created_at"`                                                 // 创建时间
	UpdatedAt                time.Time      `gorm:"index" json:"updated_at"`                                                 // 更新时间
	DeletedAt                gorm.DeletedAt `gorm:"index" json:"-"`                                                          // 软删除时间
}

// TableName 指定表名
func (Plan) TableName() string {
	return "plans"
}
