package constants

// Webhook 事件主题常量（电商平台回调）
const (
	WebhookTopicOrderPaid      = "orders/paid"
	WebhookTopicOrderFulfilled = "orders/fulfilled"
)

// Webhook 事件处理状态常量
const (
	WebhookEventStatusProcessed = "processed"
	WebhookEventStatusIgnored   = "ignored"
	WebhookEventStatusDuplicate = "duplicate"
	WebhookEventStatusFailed    = "failed"
)

// Webhook 事件处理原因常量（业务非错误结果）
const (
	WebhookReasonConverted         = "converted"
	WebhookReasonCustomerNotFound  = "customer_not_tracked"
	WebhookReasonNoSampleHistory   = "no_sample_history"
	WebhookReasonWindowExpired     = "window_expired"
	WebhookReasonAlreadyAttributed = "already_attributed"
	WebhookReasonDuplicateDelivery = "duplicate_delivery"
	WebhookReasonTopicIgnored      = "topic_ignored"
	WebhookReasonWholesaleStaged   = "wholesale_staged"
	WebhookReasonNoWholesaleMatch  = "no_wholesale_match"
)

// 顾客生命周期阶段常量
const (
	CustomerStageSampled   = "sampled"
	CustomerStageConverted = "converted"
	CustomerStageRepeat    = "repeat"
)

// 顾客识别策略常量（按优先级排列）
const (
	IdentityStrategyMemberTag    = "member_tag"
	IdentityStrategyStoreContact = "store_tag_contact"
	IdentityStrategyExternalID   = "external_id"
	IdentityStrategyContact      = "contact"
)

// 平台写入电商顾客标签的前缀约定
const (
	CustomerTagMemberPrefix = "member:"
	CustomerTagStorePrefix  = "store:"
	OrderTagSubscription    = "subscription"
	OrderTagPromo           = "promo"
)

// 佣金费率场景常量
const (
	CommissionContextOnline       = "online"
	CommissionContextPromo        = "promo"
	CommissionContextSubscription = "subscription"
)

// 积分流水类型常量
const (
	CreditTxnTypeEarned   = "earned"
	CreditTxnTypeDeducted = "deducted"
)

// 积分流水原因常量
const (
	CreditReasonCommission      = "conversion_commission"
	CreditReasonWholesaleCredit = "wholesale_order_credit"
	CreditReasonAdjustment      = "manual_adjustment"
)

// 库存流水类型常量
const (
	InventoryTxnTypeSale             = "sale"
	InventoryTxnTypeWholesaleOrdered = "wholesale_ordered"
	InventoryTxnTypeWholesaleIn      = "wholesale_incoming"
	InventoryTxnTypeWholesaleReceive = "wholesale_received"
	InventoryTxnTypeAdjustment       = "adjustment"
)

// 库存流水计数器常量
const (
	InventoryCounterOnHand   = "on_hand"
	InventoryCounterIncoming = "incoming"
)

// 批发补货单状态常量（pending → submitted → delivered → verified）
const (
	WholesaleStatusPending   = "pending"
	WholesaleStatusSubmitted = "submitted"
	WholesaleStatusDelivered = "delivered"
	WholesaleStatusVerified  = "verified"
)

// 异步队列常量
const (
	QueueDefault = "default"

	TaskConversionNotice        = "notice:conversion_earned"
	TaskWholesaleVerifiedNotice = "notice:wholesale_verified"
)
