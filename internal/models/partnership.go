package models

import "time"

// BrandPartnership 门店与品牌的合作关系（持有积分余额与佣金费率）
type BrandPartnership struct {
	ID               uint      `gorm:"primarykey" json:"id"`                                                   // 主键
	StoreID          uint      `gorm:"not null;index;index:idx_partnership_store_brand,unique" json:"store_id"` // 门店ID
	BrandID          uint      `gorm:"not null;index;index:idx_partnership_store_brand,unique" json:"brand_id"` // 品牌ID
	CreditBalance    Money     `gorm:"type:decimal(20,2);not null;default:0" json:"credit_balance"`            // 当前积分余额
	OnlineRate       *Money    `gorm:"type:decimal(10,2)" json:"online_rate,omitempty"`                        // 线上成交佣金比例（空则用品牌默认）
	PromoRate        *Money    `gorm:"type:decimal(10,2)" json:"promo_rate,omitempty"`                         // 店内活动佣金比例
	SubscriptionRate *Money    `gorm:"type:decimal(10,2)" json:"subscription_rate,omitempty"`                  // 订阅订单佣金比例
	CreatedAt        time.Time `json:"created_at"`                                                             // 创建时间
	UpdatedAt        time.Time `json:"updated_at"`                                                             // 更新时间

	Store Store `gorm:"foreignKey:StoreID" json:"store,omitempty"` // 门店信息
	Brand Brand `gorm:"foreignKey:BrandID" json:"brand,omitempty"` // 品牌信息
}

// TableName 指定表名
func (BrandPartnership) TableName() string {
	return "brand_partnerships"
}
