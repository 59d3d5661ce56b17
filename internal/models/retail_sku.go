package models

import "time"

// RetailSKU 零售SKU及其批发装映射（整箱 → 零售单件）
type RetailSKU struct {
	ID                 uint      `gorm:"primarykey" json:"id"`                                                         // 主键
	BrandID            uint      `gorm:"not null;index;index:idx_retail_sku_brand_sku,unique" json:"brand_id"`         // 品牌ID
	SKU                string    `gorm:"type:varchar(64);not null;index:idx_retail_sku_brand_sku,unique" json:"sku"`   // 零售SKU
	Name               string    `gorm:"type:varchar(128);not null" json:"name"`                                       // 商品名称
	UnitsPerBox        int       `gorm:"not null;default:1" json:"units_per_box"`                                      // 每箱零售单件数
	WholesaleSKU       string    `gorm:"type:varchar(64);index" json:"wholesale_sku"`                                  // 批发装SKU（约定为零售SKU加 -CS 后缀）
	WholesaleProductID string    `gorm:"type:varchar(64);index" json:"wholesale_product_id"`                           // 批发装平台商品ID
	WholesaleVariantID string    `gorm:"type:varchar(64);index" json:"wholesale_variant_id"`                           // 批发装平台变体ID
	CreatedAt          time.Time `json:"created_at"`                                                                   // 创建时间
	UpdatedAt          time.Time `json:"updated_at"`                                                                   // 更新时间
}

// TableName 指定表名
func (RetailSKU) TableName() string {
	return "retail_skus"
}
