package models

import "time"

// CreditTransaction 积分流水（只追加，不更新不删除，更正以新流水记录）
type CreditTransaction struct {
	ID               uint      `gorm:"primarykey" json:"id"`                                      // 主键
	PartnershipID    uint      `gorm:"not null;index" json:"partnership_id"`                      // 合作关系ID
	Type             string    `gorm:"type:varchar(20);not null;index" json:"type"`               // 流水类型（earned/deducted）
	Amount           Money     `gorm:"type:decimal(20,2);not null" json:"amount"`                 // 签名金额（earn 为正，deduct 为负）
	BalanceAfter     Money     `gorm:"type:decimal(20,2);not null" json:"balance_after"`          // 记账后余额快照
	Reason           string    `gorm:"type:varchar(64);not null" json:"reason"`                   // 记账原因
	Reference        string    `gorm:"type:varchar(128);not null;uniqueIndex" json:"reference"`   // 幂等参考号
	ConversionID     *uint     `gorm:"index" json:"conversion_id,omitempty"`                      // 关联转化记录
	WholesaleOrderID *uint     `gorm:"index" json:"wholesale_order_id,omitempty"`                 // 关联批发补货单
	CreatedAt        time.Time `gorm:"index" json:"created_at"`                                   // 创建时间

	Partnership BrandPartnership `gorm:"foreignKey:PartnershipID" json:"partnership,omitempty"` // 合作关系
}

// TableName 指定表名
func (CreditTransaction) TableName() string {
	return "credit_transactions"
}
