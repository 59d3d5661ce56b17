package commerce

import (
	"encoding/json"
	"strings"
	"time"
)

// HeaderDomain 等为电商平台 webhook 请求头
const (
	HeaderDomain    = "X-Commerce-Domain"
	HeaderTopic     = "X-Commerce-Topic"
	HeaderSignature = "X-Commerce-Hmac-Sha256"
)

// OrderEvent 电商平台订单 webhook 载荷
type OrderEvent struct {
	ID          int64      `json:"id"`           // 平台订单ID
	OrderNumber string     `json:"order_number"` // 平台订单号（展示用）
	TotalPrice  string     `json:"total_price"`  // 订单总额
	Currency    string     `json:"currency"`     // 币种
	Tags        string     `json:"tags"`         // 订单标签（逗号分隔）
	CreatedAt   *time.Time `json:"created_at"`   // 平台下单时间
	Customer    *Customer  `json:"customer"`     // 买家信息
	LineItems   []LineItem `json:"line_items"`   // 行项目
}

// Customer 买家信息
type Customer struct {
	ID    int64  `json:"id"`    // 平台顾客ID
	Phone string `json:"phone"` // 手机号
	Email string `json:"email"` // 邮箱
	Tags  string `json:"tags"`  // 顾客标签（逗号分隔）
}

// LineItem 订单行项目
type LineItem struct {
	ProductID int64  `json:"product_id"` // 平台商品ID
	VariantID int64  `json:"variant_id"` // 平台变体ID
	SKU       string `json:"sku"`        // SKU编码
	Title     string `json:"title"`      // 商品名称
	Quantity  int    `json:"quantity"`   // 数量
	Price     string `json:"price"`      // 单价
}

// ParseOrderEvent 解析订单 webhook 载荷
func ParseOrderEvent(body []byte) (*OrderEvent, error) {
	var event OrderEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// SplitTags 将逗号分隔的标签串拆为去空白的标签列表
func SplitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		tag := strings.TrimSpace(part)
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// PurchasedAt 订单时间，载荷缺失时回退为当前时间
func (e *OrderEvent) PurchasedAt() time.Time {
	if e.CreatedAt != nil {
		return *e.CreatedAt
	}
	return time.Now()
}

// CustomerTags 买家标签列表
func (e *OrderEvent) CustomerTags() []string {
	if e.Customer == nil {
		return nil
	}
	return SplitTags(e.Customer.Tags)
}

// OrderTags 订单标签列表
func (e *OrderEvent) OrderTags() []string {
	return SplitTags(e.Tags)
}
