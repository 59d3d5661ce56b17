package models

import "time"

// WholesaleOrder 批发补货单（pending → submitted → delivered → verified）
type WholesaleOrder struct {
	ID                uint       `gorm:"primarykey" json:"id"`                                   // 主键
	OrderNo           string     `gorm:"type:varchar(32);not null;uniqueIndex" json:"order_no"`  // 内部单号
	StoreID           uint       `gorm:"not null;index" json:"store_id"`                         // 门店ID
	BrandID           uint       `gorm:"not null;index" json:"brand_id"`                         // 品牌ID
	PartnershipID     uint       `gorm:"not null;index" json:"partnership_id"`                   // 合作关系ID
	ExternalOrderID   string     `gorm:"type:varchar(64);index" json:"external_order_id"`        // 电商平台订单ID（平台下单后回填）
	FulfillmentDomain string     `gorm:"type:varchar(255)" json:"fulfillment_domain"`            // 履约域名（行项目按此分组）
	Status            string     `gorm:"type:varchar(20);not null;index" json:"status"`          // 生命周期状态
	Subtotal          Money      `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"`  // 小计
	AppliedCredit     Money      `gorm:"type:decimal(20,2);not null;default:0" json:"applied_credit"` // 抵扣积分金额
	Total             Money      `gorm:"type:decimal(20,2);not null;default:0" json:"total"`     // 应付金额
	Notes             string     `gorm:"type:varchar(512)" json:"notes"`                         // 备注
	SubmittedAt       *time.Time `json:"submitted_at,omitempty"`                                 // 平台确认下单时间
	DeliveredAt       *time.Time `json:"delivered_at,omitempty"`                                 // 平台发货时间
	VerifiedAt        *time.Time `json:"verified_at,omitempty"`                                  // 门店确认收货时间
	CreatedAt         time.Time  `gorm:"index" json:"created_at"`                                // 创建时间
	UpdatedAt         time.Time  `json:"updated_at"`                                             // 更新时间

	Items []WholesaleOrderItem `gorm:"foreignKey:WholesaleOrderID" json:"items,omitempty"` // 行项目
}

// TableName 指定表名
func (WholesaleOrder) TableName() string {
	return "wholesale_orders"
}

// WholesaleOrderItem 批发补货单行项目
type WholesaleOrderItem struct {
	ID                uint      `gorm:"primarykey" json:"id"`                              // 主键
	WholesaleOrderID  uint      `gorm:"not null;index" json:"wholesale_order_id"`          // 批发补货单ID
	WholesaleSKU      string    `gorm:"type:varchar(64);not null" json:"wholesale_sku"`    // 批发装SKU
	RetailSKU         string    `gorm:"type:varchar(64);not null" json:"retail_sku"`       // 解析出的零售SKU
	ExternalProductID string    `gorm:"type:varchar(64)" json:"external_product_id"`       // 平台商品ID
	ExternalVariantID string    `gorm:"type:varchar(64)" json:"external_variant_id"`       // 平台变体ID
	Boxes             int       `gorm:"not null;default:0" json:"boxes"`                   // 订购箱数
	UnitsPerBox       int       `gorm:"not null;default:1" json:"units_per_box"`           // 每箱零售单件数
	ExpectedUnits     int       `gorm:"not null;default:0" json:"expected_units"`          // 预期到货单件数
	ReceivedUnits     *int      `json:"received_units,omitempty"`                          // 实收单件数（确认收货时回填）
	Discrepancy       int       `gorm:"not null;default:0" json:"discrepancy"`             // 差异数量（预期-实收）
	UnitPrice         Money     `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"` // 每箱单价
	LineTotal         Money     `gorm:"type:decimal(20,2);not null;default:0" json:"line_total"` // 行小计
	Notes             string    `gorm:"type:varchar(255)" json:"notes"`                    // 收货差异备注
	CreatedAt         time.Time `json:"created_at"`                                        // 创建时间
	UpdatedAt         time.Time `json:"updated_at"`                                        // 更新时间
}

// TableName 指定表名
func (WholesaleOrderItem) TableName() string {
	return "wholesale_order_items"
}
