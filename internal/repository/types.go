package repository

import "time"

// CreditTransactionListFilter 查询积分流水的过滤条件
type CreditTransactionListFilter struct {
	Page          int
	PageSize      int
	PartnershipID uint
	Type          string
	Reason        string
	CreatedFrom   *time.Time
	CreatedTo     *time.Time
}

// ConversionListFilter 查询转化记录的过滤条件
type ConversionListFilter struct {
	Page       int
	PageSize   int
	BrandID    uint
	StoreID    uint
	CustomerID uint
	Attributed *bool
	Paid       *bool
	From       *time.Time
	To         *time.Time
}

// InventoryTransactionListFilter 查询库存流水的过滤条件
type InventoryTransactionListFilter struct {
	Page     int
	PageSize int
	StoreID  uint
	SKU      string
	Type     string
}

// WholesaleOrderListFilter 查询批发补货单的过滤条件
type WholesaleOrderListFilter struct {
	Page     int
	PageSize int
	StoreID  uint
	BrandID  uint
	Status   string
}

// WebhookEventListFilter 查询 webhook 审计日志的过滤条件
type WebhookEventListFilter struct {
	Page            int
	PageSize        int
	BrandID         uint
	Topic           string
	Status          string
	ExternalOrderID string
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
}
