package models

import "time"

// StoreInventory 门店库存（按门店+SKU 一行，四个计数器）
type StoreInventory struct {
	ID               uint      `gorm:"primarykey" json:"id"`                                                          // 主键
	StoreID          uint      `gorm:"not null;index;index:idx_store_inventory_store_sku,unique" json:"store_id"`     // 门店ID
	SKU              string    `gorm:"type:varchar(64);not null;index:idx_store_inventory_store_sku,unique" json:"sku"` // 零售SKU
	QuantityOnHand   int       `gorm:"not null;default:0" json:"quantity_on_hand"`                                    // 在库数量
	QuantityReserved int       `gorm:"not null;default:0" json:"quantity_reserved"`                                   // 预留数量
	QuantityAvailable int      `gorm:"not null;default:0" json:"quantity_available"`                                  // 可售数量
	QuantityIncoming int       `gorm:"not null;default:0" json:"quantity_incoming"`                                   // 在途数量（批发已订未确认收货）
	CreatedAt        time.Time `json:"created_at"`                                                                    // 创建时间
	UpdatedAt        time.Time `json:"updated_at"`                                                                    // 更新时间
}

// TableName 指定表名
func (StoreInventory) TableName() string {
	return "store_inventories"
}
