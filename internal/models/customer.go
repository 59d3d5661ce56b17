package models

import "time"

// Customer 平台跟踪的顾客（首次领样时创建，永不删除）
type Customer struct {
	ID                 uint       `gorm:"primarykey" json:"id"`                                   // 主键
	MemberNo           string     `gorm:"type:varchar(32);not null;uniqueIndex" json:"member_no"` // 会员编号（平台写入顾客标签）
	BrandID            uint       `gorm:"not null;index" json:"brand_id"`                         // 归属品牌ID
	StoreID            uint       `gorm:"not null;index" json:"store_id"`                         // 归因门店ID
	Phone              string     `gorm:"type:varchar(32);index" json:"phone"`                    // 手机号
	Email              string     `gorm:"type:varchar(255);index" json:"email"`                   // 邮箱
	ExternalCustomerID *string    `gorm:"type:varchar(64);uniqueIndex" json:"external_customer_id,omitempty"` // 电商平台顾客ID（未关联时为空）
	LastSampledAt      *time.Time `gorm:"index" json:"last_sampled_at,omitempty"`                 // 最近领样时间
	Stage              string     `gorm:"type:varchar(20);not null;index" json:"stage"`           // 生命周期阶段
	CreatedAt          time.Time  `json:"created_at"`                                             // 创建时间
	UpdatedAt          time.Time  `json:"updated_at"`                                             // 更新时间

	Brand Brand `gorm:"foreignKey:BrandID" json:"brand,omitempty"` // 品牌信息
	Store Store `gorm:"foreignKey:StoreID" json:"store,omitempty"` // 门店信息
}

// TableName 指定表名
func (Customer) TableName() string {
	return "customers"
}
