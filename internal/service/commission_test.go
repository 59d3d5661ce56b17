package service

import (
	"testing"

	"github.com/sampleloop/internal/constants"
	"github.com/sampleloop/internal/models"

	"github.com/shopspring/decimal"
)

func TestCalculateCommission(t *testing.T) {
	cases := []struct {
		name  string
		total string
		rate  string
		want  string
	}{
		{name: "rounds half up", total: "133.33", rate: "10", want: "13.33"},
		{name: "zero total", total: "0", rate: "10", want: "0"},
		{name: "zero rate", total: "100", rate: "0", want: "0"},
		{name: "fractional rate", total: "100", rate: "12.5", want: "12.5"},
		{name: "sub cent rounds", total: "10.01", rate: "7.5", want: "0.75"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			total := decimal.RequireFromString(tc.total)
			rate := decimal.RequireFromString(tc.rate)
			got := CalculateCommission(total, rate)
			if !got.Equal(decimal.RequireFromString(tc.want)) {
				t.Fatalf("commission want %s got %s", tc.want, got)
			}
		})
	}
}

func TestResolveCommissionRate(t *testing.T) {
	promoRate := models.NewMoneyFromDecimal(decimal.NewFromInt(12))
	subscriptionRate := models.NewMoneyFromDecimal(decimal.NewFromInt(8))
	partnership := &models.BrandPartnership{
		PromoRate:        &promoRate,
		SubscriptionRate: &subscriptionRate,
	}
	brand := &models.Brand{
		DefaultCommissionRate: models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
	}

	got := ResolveCommissionRate(partnership, brand, constants.CommissionContextPromo)
	if !got.Equal(decimal.NewFromInt(12)) {
		t.Fatalf("promo override want 12 got %s", got)
	}

	got = ResolveCommissionRate(partnership, brand, constants.CommissionContextSubscription)
	if !got.Equal(decimal.NewFromInt(8)) {
		t.Fatalf("subscription override want 8 got %s", got)
	}

	// 线上场景未配置覆盖费率，回退品牌默认
	got = ResolveCommissionRate(partnership, brand, constants.CommissionContextOnline)
	if !got.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("online fallback want 10 got %s", got)
	}

	got = ResolveCommissionRate(nil, brand, constants.CommissionContextPromo)
	if !got.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("missing partnership want brand default 10 got %s", got)
	}

	got = ResolveCommissionRate(nil, nil, constants.CommissionContextOnline)
	if !got.Equal(decimal.Zero) {
		t.Fatalf("missing brand want 0 got %s", got)
	}
}

func TestResolveCommissionContext(t *testing.T) {
	cases := []struct {
		name string
		tags []string
		want string
	}{
		{name: "no tags", tags: nil, want: constants.CommissionContextOnline},
		{name: "unrelated tags", tags: []string{"gift", "vip"}, want: constants.CommissionContextOnline},
		{name: "promo tag", tags: []string{"gift", "promo"}, want: constants.CommissionContextPromo},
		{name: "subscription tag", tags: []string{"subscription"}, want: constants.CommissionContextSubscription},
		{name: "subscription beats promo", tags: []string{"promo", "subscription"}, want: constants.CommissionContextSubscription},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolveCommissionContext(tc.tags)
			if got != tc.want {
				t.Fatalf("context want %s got %s", tc.want, got)
			}
		})
	}
}
