package models

import "time"

// InventoryTransaction 库存流水（只追加，镜像积分流水的审计模式）
type InventoryTransaction struct {
	ID               uint      `gorm:"primarykey" json:"id"`                                    // 主键
	StoreID          uint      `gorm:"not null;index" json:"store_id"`                          // 门店ID
	SKU              string    `gorm:"type:varchar(64);not null;index" json:"sku"`              // 零售SKU
	Type             string    `gorm:"type:varchar(32);not null;index" json:"type"`             // 流水类型
	Counter          string    `gorm:"type:varchar(20);not null" json:"counter"`                // 变动计数器（on_hand/incoming）
	Quantity         int       `gorm:"not null" json:"quantity"`                                // 签名数量
	BalanceAfter     int       `gorm:"not null" json:"balance_after"`                           // 变动后计数器数值
	Reference        string    `gorm:"type:varchar(128);not null;uniqueIndex" json:"reference"` // 幂等参考号
	WholesaleOrderID *uint     `gorm:"index" json:"wholesale_order_id,omitempty"`               // 关联批发补货单
	ConversionID     *uint     `gorm:"index" json:"conversion_id,omitempty"`                    // 关联转化记录
	Note             string    `gorm:"type:varchar(255)" json:"note"`                           // 备注
	CreatedAt        time.Time `gorm:"index" json:"created_at"`                                 // 创建时间
}

// TableName 指定表名
func (InventoryTransaction) TableName() string {
	return "inventory_transactions"
}
