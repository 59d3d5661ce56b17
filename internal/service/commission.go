package service

import (
	"github.com/sampleloop/internal/constants"
	"github.com/sampleloop/internal/models"

	"github.com/shopspring/decimal"
)

// CalculateCommission 计算佣金：订单总额 × 费率% 后四舍五入到分。
// 纯函数，不做费率解析。
func CalculateCommission(orderTotal, ratePercent decimal.Decimal) decimal.Decimal {
	return orderTotal.Mul(ratePercent).Div(decimal.NewFromInt(100)).Round(2)
}

// ResolveCommissionRate 解析佣金费率：合作关系按场景的覆盖费率优先，缺省回退品牌默认费率。
func ResolveCommissionRate(partnership *models.BrandPartnership, brand *models.Brand, context string) decimal.Decimal {
	if partnership != nil {
		var override *models.Money
		switch context {
		case constants.CommissionContextPromo:
			override = partnership.PromoRate
		case constants.CommissionContextSubscription:
			override = partnership.SubscriptionRate
		default:
			override = partnership.OnlineRate
		}
		if override != nil {
			return override.Decimal.Round(2)
		}
	}
	if brand != nil {
		return brand.DefaultCommissionRate.Decimal.Round(2)
	}
	return decimal.Zero
}

// ResolveCommissionContext 根据订单标签判定佣金场景。
// 订阅标签优先于促销标签，均无时按普通线上订单处理。
func ResolveCommissionContext(orderTags []string) string {
	hasPromo := false
	for _, tag := range orderTags {
		switch tag {
		case constants.OrderTagSubscription:
			return constants.CommissionContextSubscription
		case constants.OrderTagPromo:
			hasPromo = true
		}
	}
	if hasPromo {
		return constants.CommissionContextPromo
	}
	return constants.CommissionContextOnline
}
