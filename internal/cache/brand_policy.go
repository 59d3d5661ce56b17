package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sampleloop/internal/models"
)

const defaultBrandPolicyTTL = 5 * time.Minute

// BrandWebhookPolicy 品牌 webhook 校验快照
// 按电商域名缓存，避免每次回调都查库取密钥与归因窗口
type BrandWebhookPolicy struct {
	BrandID               uint   `json:"brand_id"`
	Name                  string `json:"name"`
	CommerceDomain        string `json:"commerce_domain"`
	WebhookSecret         string `json:"webhook_secret"`
	DefaultRate           string `json:"default_rate"`
	AttributionWindowDays int    `json:"attribution_window_days"`
	UpdatedAt             int64  `json:"updated_at"`
}

func brandPolicyKey(domain string) string {
	return fmt.Sprintf("brand:webhook_policy:%s", strings.ToLower(strings.TrimSpace(domain)))
}

// BuildBrandWebhookPolicy 从品牌模型构建校验快照
func BuildBrandWebhookPolicy(brand *models.Brand) *BrandWebhookPolicy {
	if brand == nil {
		return nil
	}
	return &BrandWebhookPolicy{
		BrandID:               brand.ID,
		Name:                  brand.Name,
		CommerceDomain:        brand.CommerceDomain,
		WebhookSecret:         brand.WebhookSecret,
		DefaultRate:           brand.DefaultCommissionRate.String(),
		AttributionWindowDays: brand.AttributionWindowDays,
		UpdatedAt:             time.Now().Unix(),
	}
}

// GetBrandWebhookPolicy 获取品牌校验快照
func GetBrandWebhookPolicy(ctx context.Context, domain string) (*BrandWebhookPolicy, bool, error) {
	if strings.TrimSpace(domain) == "" {
		return nil, false, nil
	}
	var policy BrandWebhookPolicy
	hit, err := GetJSON(ctx, brandPolicyKey(domain), &policy)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &policy, true, nil
}

// SetBrandWebhookPolicy 写入品牌校验快照
func SetBrandWebhookPolicy(ctx context.Context, policy *BrandWebhookPolicy, ttl time.Duration) error {
	if policy == nil || policy.BrandID == 0 {
		return nil
	}
	if ttl <= 0 {
		ttl = defaultBrandPolicyTTL
	}
	return SetJSON(ctx, brandPolicyKey(policy.CommerceDomain), policy, ttl)
}
