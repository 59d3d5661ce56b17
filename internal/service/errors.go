package service

import "errors"

var (
	// webhook 接入
	ErrBrandNotFound      = errors.New("brand not found for commerce domain")
	ErrSignatureInvalid   = errors.New("webhook signature invalid")
	ErrPayloadInvalid     = errors.New("webhook payload invalid")
	ErrExternalOrderEmpty = errors.New("external order id empty")

	// 门店认证
	ErrInvalidCredentials = errors.New("invalid store credentials")

	// 合作关系与积分账本
	ErrPartnershipNotFound     = errors.New("partnership not found")
	ErrLedgerInvalidAmount     = errors.New("ledger amount invalid")
	ErrLedgerReferenceEmpty    = errors.New("ledger reference empty")
	ErrLedgerPostFailed        = errors.New("ledger posting failed")
	ErrPartnershipUpdateFailed = errors.New("partnership update failed")
	ErrLedgerTransactionFailed = errors.New("ledger transaction create failed")

	// 转化与佣金
	ErrConversionCreateFailed = errors.New("conversion create failed")

	// 库存
	ErrInventoryUpdateFailed = errors.New("inventory update failed")
	ErrSKUMappingNotFound    = errors.New("retail sku mapping not found")

	// 批发补货单
	ErrWholesaleOrderNotFound   = errors.New("wholesale order not found")
	ErrWholesaleOrderEmpty      = errors.New("wholesale order has no items")
	ErrWholesaleStatusInvalid   = errors.New("wholesale order status invalid")
	ErrWholesaleAlreadyVerified = errors.New("wholesale order already verified")
	ErrWholesaleItemInvalid     = errors.New("wholesale order item invalid")
)
