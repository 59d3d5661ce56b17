package models

import "time"

// SampleHistory 派样记录（一次派样写入一行，创建后不可变）
type SampleHistory struct {
	ID                    uint      `gorm:"primarykey" json:"id"`                        // 主键
	CustomerID            uint      `gorm:"not null;index" json:"customer_id"`           // 顾客ID
	BrandID               uint      `gorm:"not null;index" json:"brand_id"`              // 品牌ID
	StoreID               uint      `gorm:"not null;index" json:"store_id"`              // 派样门店ID
	DisplayCode           string    `gorm:"type:varchar(64)" json:"display_code"`        // 陈列位编码
	SKU                   string    `gorm:"type:varchar(64)" json:"sku"`                 // 试用装SKU
	SampledAt             time.Time `gorm:"not null;index" json:"sampled_at"`            // 派样时间
	AttributionWindowDays int       `gorm:"not null" json:"attribution_window_days"`     // 归因窗口天数
	ExpiresAt             time.Time `gorm:"not null;index" json:"expires_at"`            // 归因窗口截止时间
	CreatedAt             time.Time `json:"created_at"`                                  // 创建时间
}

// TableName 指定表名
func (SampleHistory) TableName() string {
	return "sample_histories"
}
