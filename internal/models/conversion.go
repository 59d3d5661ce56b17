package models

import "time"

// Conversion 归因转化记录（(品牌, 外部订单) 唯一，作为事件幂等键）
type Conversion struct {
	ID                uint      `gorm:"primarykey" json:"id"`                                                                       // 主键
	BrandID           uint      `gorm:"not null;index;index:idx_conversion_brand_order,unique" json:"brand_id"`                     // 品牌ID
	ExternalOrderID   string    `gorm:"type:varchar(64);not null;index:idx_conversion_brand_order,unique" json:"external_order_id"` // 电商平台订单ID
	CustomerID        uint      `gorm:"not null;index" json:"customer_id"`                                                          // 顾客ID
	StoreID           uint      `gorm:"not null;index" json:"store_id"`                                                             // 归因门店ID
	PartnershipID     uint      `gorm:"not null;index" json:"partnership_id"`                                                       // 合作关系ID
	OrderTotal        Money     `gorm:"type:decimal(20,2);not null;default:0" json:"order_total"`                                   // 订单金额
	RatePercent       Money     `gorm:"type:decimal(10,2);not null;default:0" json:"rate_percent"`                                  // 佣金比例（百分比）
	CommissionAmount  Money     `gorm:"type:decimal(20,2);not null;default:0" json:"commission_amount"`                             // 佣金金额
	CommissionContext string    `gorm:"type:varchar(20);not null" json:"commission_context"`                                        // 费率场景
	SampledAt         time.Time `gorm:"not null" json:"sampled_at"`                                                                 // 派样时间
	PurchasedAt       time.Time `gorm:"not null" json:"purchased_at"`                                                               // 购买时间
	DaysToConversion  int       `gorm:"not null;default:0" json:"days_to_conversion"`                                               // 转化耗时（天）
	Attributed        bool      `gorm:"not null;default:false" json:"attributed"`                                                   // 是否归因成功
	Paid              bool      `gorm:"not null;default:false;index" json:"paid"`                                                   // 佣金是否已入账
	CreatedAt         time.Time `gorm:"index" json:"created_at"`                                                                    // 创建时间
	UpdatedAt         time.Time `json:"updated_at"`                                                                                 // 更新时间

	Customer Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"` // 顾客信息
	Store    Store    `gorm:"foreignKey:StoreID" json:"store,omitempty"`       // 门店信息
}

// TableName 指定表名
func (Conversion) TableName() string {
	return "conversions"
}
