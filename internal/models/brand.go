package models

import "time"

// Brand 品牌方（webhook 鉴权与归因策略的归属实体）
type Brand struct {
	ID                    uint      `gorm:"primarykey" json:"id"`                                        // 主键
	Name                  string    `gorm:"type:varchar(128);not null" json:"name"`                      // 品牌名称
	CommerceDomain        string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"commerce_domain"` // 电商平台店铺域名
	WebhookSecret         string    `gorm:"type:varchar(128);not null" json:"-"`                         // webhook 共享密钥
	DefaultCommissionRate Money     `gorm:"type:decimal(10,2);not null;default:0" json:"default_commission_rate"` // 默认佣金比例（百分比）
	AttributionWindowDays int       `gorm:"not null;default:30" json:"attribution_window_days"`          // 默认归因窗口天数
	CreatedAt             time.Time `json:"created_at"`                                                  // 创建时间
	UpdatedAt             time.Time `json:"updated_at"`                                                  // 更新时间
}

// TableName 指定表名
func (Brand) TableName() string {
	return "brands"
}
