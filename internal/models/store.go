package models

import "time"

// Store 线下门店
type Store struct {
	ID         uint      `gorm:"primarykey" json:"id"`                              // 主键
	Name       string    `gorm:"type:varchar(128);not null" json:"name"`            // 门店名称
	Code       string    `gorm:"type:varchar(32);not null;uniqueIndex" json:"code"` // 门店编码（写入平台顾客标签）
	Email      string    `gorm:"type:varchar(255)" json:"email"`                    // 联系邮箱
	Phone      string    `gorm:"type:varchar(32)" json:"phone"`                     // 联系电话
	APIKeyHash string    `gorm:"type:varchar(128)" json:"-"`                        // 门店 API Key 哈希（bcrypt）
	CreatedAt  time.Time `json:"created_at"`                                        // 创建时间
	UpdatedAt  time.Time `json:"updated_at"`                                        // 更新时间
}

// TableName 指定表名
func (Store) TableName() string {
	return "stores"
}
