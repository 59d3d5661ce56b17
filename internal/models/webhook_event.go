package models

import "time"

// WebhookEvent webhook 处理审计日志（每次投递一行，无论业务结果如何）
type WebhookEvent struct {
	ID              uint      `gorm:"primarykey" json:"id"`                          // 主键
	Topic           string    `gorm:"type:varchar(64);not null;index" json:"topic"`  // 事件主题
	CommerceDomain  string    `gorm:"type:varchar(255)" json:"commerce_domain"`      // 来源店铺域名
	BrandID         *uint     `gorm:"index" json:"brand_id,omitempty"`               // 品牌ID（域名未识别时为空）
	ExternalOrderID string    `gorm:"type:varchar(64);index" json:"external_order_id"` // 电商平台订单ID
	CustomerID      *uint     `gorm:"index" json:"customer_id,omitempty"`            // 识别出的顾客ID
	Status          string    `gorm:"type:varchar(20);not null;index" json:"status"` // 处理状态
	Reason          string    `gorm:"type:varchar(255)" json:"reason"`               // 人类可读的状态说明
	Payload         string    `gorm:"type:text" json:"-"`                            // 原始报文（仅鉴权/处理失败时保留）
	CreatedAt       time.Time `gorm:"index" json:"created_at"`                       // 创建时间
}

// TableName 指定表名
func (WebhookEvent) TableName() string {
	return "webhook_events"
}
