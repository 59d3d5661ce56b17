package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/sampleloop/internal/cache"
	"github.com/sampleloop/internal/commerce"
	"github.com/sampleloop/internal/config"
	"github.com/sampleloop/internal/constants"
	"github.com/sampleloop/internal/logger"
	"github.com/sampleloop/internal/models"
	"github.com/sampleloop/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WebhookService webhook 接入服务。
// 负责品牌解析、签名校验、重复投递检查与主题分发；
// 业务上的"未归因"是正常结果，只有鉴权失败和内部错误才对平台报错。
type WebhookService struct {
	cfg              *config.Config
	brandRepo        repository.BrandRepository
	conversionRepo   repository.ConversionRepository
	webhookEventRepo repository.WebhookEventRepository
	identitySvc      *IdentityService
	attributionSvc   *AttributionService
	wholesaleSvc     *WholesaleService
}

// NewWebhookService 创建 webhook 接入服务
func NewWebhookService(
	cfg *config.Config,
	brandRepo repository.BrandRepository,
	conversionRepo repository.ConversionRepository,
	webhookEventRepo repository.WebhookEventRepository,
	identitySvc *IdentityService,
	attributionSvc *AttributionService,
	wholesaleSvc *WholesaleService,
) *WebhookService {
	return &WebhookService{
		cfg:              cfg,
		brandRepo:        brandRepo,
		conversionRepo:   conversionRepo,
		webhookEventRepo: webhookEventRepo,
		identitySvc:      identitySvc,
		attributionSvc:   attributionSvc,
		wholesaleSvc:     wholesaleSvc,
	}
}

// WebhookInput webhook 请求输入
type WebhookInput struct {
	Domain    string
	Topic     string
	Signature string
	Body      []byte
}

// WebhookResult webhook 处理结果
type WebhookResult struct {
	Status string // processed / ignored / duplicate
	Reason string
}

// Process 处理一次 webhook 投递
func (s *WebhookService) Process(ctx context.Context, input WebhookInput) (*WebhookResult, error) {
	topic := strings.TrimSpace(input.Topic)
	domain := strings.ToLower(strings.TrimSpace(input.Domain))

	brand, err := s.resolveBrand(ctx, domain)
	if err != nil {
		return nil, err
	}
	if brand == nil {
		s.recordEvent(&models.WebhookEvent{
			Topic:          topic,
			CommerceDomain: domain,
			Status:         constants.WebhookEventStatusFailed,
			Reason:         "brand_not_found",
			Payload:        string(input.Body),
		})
		return nil, ErrBrandNotFound
	}

	if !commerce.VerifySignature(brand.WebhookSecret, input.Body, input.Signature) {
		brandID := brand.ID
		s.recordEvent(&models.WebhookEvent{
			Topic:          topic,
			CommerceDomain: domain,
			BrandID:        &brandID,
			Status:         constants.WebhookEventStatusFailed,
			Reason:         "signature_invalid",
			Payload:        string(input.Body),
		})
		logger.Warnw("webhook_signature_invalid",
			"brand_id", brand.ID,
			"commerce_domain", domain,
			"topic", topic,
		)
		return nil, ErrSignatureInvalid
	}

	event, err := commerce.ParseOrderEvent(input.Body)
	if err != nil || event.ID == 0 {
		brandID := brand.ID
		s.recordEvent(&models.WebhookEvent{
			Topic:          topic,
			CommerceDomain: domain,
			BrandID:        &brandID,
			Status:         constants.WebhookEventStatusFailed,
			Reason:         "payload_invalid",
			Payload:        string(input.Body),
		})
		if err == nil {
			return nil, ErrExternalOrderEmpty
		}
		return nil, ErrPayloadInvalid
	}

	switch topic {
	case constants.WebhookTopicOrderPaid:
		return s.handleOrderPaid(ctx, brand, topic, event)
	case constants.WebhookTopicOrderFulfilled:
		return s.handleOrderFulfilled(brand, topic, event)
	default:
		result := &WebhookResult{Status: constants.WebhookEventStatusIgnored, Reason: constants.WebhookReasonTopicIgnored}
		s.recordOutcome(brand, topic, event, nil, result)
		return result, nil
	}
}

// handleOrderPaid 处理付款事件：先匹配补货单暂存在途，否则走识别+归因
func (s *WebhookService) handleOrderPaid(ctx context.Context, brand *models.Brand, topic string, event *commerce.OrderEvent) (*WebhookResult, error) {
	externalOrderID := strconv.FormatInt(event.ID, 10)

	wholesale, err := s.wholesaleSvc.GetByExternalOrderID(externalOrderID)
	if err != nil {
		return nil, err
	}
	if wholesale != nil && wholesale.BrandID == brand.ID {
		if err := s.conversionRepo.Transaction(func(tx *gorm.DB) error {
			return s.wholesaleSvc.MarkSubmittedTx(tx, wholesale, event.PurchasedAt())
		}); err != nil {
			s.recordFailure(brand, topic, event, err)
			return nil, err
		}
		result := &WebhookResult{Status: constants.WebhookEventStatusProcessed, Reason: constants.WebhookReasonWholesaleStaged}
		s.recordOutcome(brand, topic, event, nil, result)
		return result, nil
	}

	existing, err := s.conversionRepo.GetByBrandAndExternalOrder(brand.ID, externalOrderID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		result := &WebhookResult{Status: constants.WebhookEventStatusDuplicate, Reason: constants.WebhookReasonDuplicateDelivery}
		s.recordOutcome(brand, topic, event, &existing.CustomerID, result)
		return result, nil
	}

	match, err := s.identitySvc.Resolve(ctx, brand, event)
	if err != nil {
		s.recordFailure(brand, topic, event, err)
		return nil, err
	}
	if match == nil {
		result := &WebhookResult{Status: constants.WebhookEventStatusProcessed, Reason: constants.WebhookReasonCustomerNotFound}
		s.recordOutcome(brand, topic, event, nil, result)
		return result, nil
	}

	attribution, err := s.attributionSvc.Attribute(brand, match.Customer, event)
	if err != nil {
		s.recordFailure(brand, topic, event, err)
		return nil, err
	}

	result := &WebhookResult{Status: constants.WebhookEventStatusProcessed, Reason: attribution.Reason}
	s.recordOutcome(brand, topic, event, &match.Customer.ID, result)
	logger.Infow("webhook_order_paid_processed",
		"brand_id", brand.ID,
		"external_order_id", externalOrderID,
		"customer_id", match.Customer.ID,
		"strategy", match.Strategy,
		"reason", attribution.Reason,
	)
	return result, nil
}

// handleOrderFulfilled 处理发货事件：仅对匹配的补货单记到货
func (s *WebhookService) handleOrderFulfilled(brand *models.Brand, topic string, event *commerce.OrderEvent) (*WebhookResult, error) {
	externalOrderID := strconv.FormatInt(event.ID, 10)

	wholesale, err := s.wholesaleSvc.GetByExternalOrderID(externalOrderID)
	if err != nil {
		return nil, err
	}
	if wholesale == nil || wholesale.BrandID != brand.ID {
		result := &WebhookResult{Status: constants.WebhookEventStatusIgnored, Reason: constants.WebhookReasonNoWholesaleMatch}
		s.recordOutcome(brand, topic, event, nil, result)
		return result, nil
	}

	if err := s.conversionRepo.Transaction(func(tx *gorm.DB) error {
		return s.wholesaleSvc.MarkDeliveredTx(tx, wholesale, event.PurchasedAt())
	}); err != nil {
		s.recordFailure(brand, topic, event, err)
		return nil, err
	}
	result := &WebhookResult{Status: constants.WebhookEventStatusProcessed, Reason: constants.WebhookReasonWholesaleStaged}
	s.recordOutcome(brand, topic, event, nil, result)
	return result, nil
}

// resolveBrand 按电商域名解析品牌，优先命中 Redis 快照
func (s *WebhookService) resolveBrand(ctx context.Context, domain string) (*models.Brand, error) {
	if domain == "" {
		return nil, nil
	}

	if policy, hit, err := cache.GetBrandWebhookPolicy(ctx, domain); err == nil && hit {
		rate, rateErr := models.NewMoneyFromString(policy.DefaultRate)
		if rateErr != nil {
			rate = models.NewMoneyFromDecimal(decimal.Zero)
		}
		return &models.Brand{
			ID:                    policy.BrandID,
			Name:                  policy.Name,
			CommerceDomain:        policy.CommerceDomain,
			WebhookSecret:         policy.WebhookSecret,
			DefaultCommissionRate: rate,
			AttributionWindowDays: policy.AttributionWindowDays,
		}, nil
	} else if err != nil {
		logger.Warnw("brand_policy_cache_read_failed", "commerce_domain", domain, "error", err)
	}

	brand, err := s.brandRepo.GetByCommerceDomain(domain)
	if err != nil {
		return nil, err
	}
	if brand == nil {
		return nil, nil
	}

	ttl := defaultBrandCacheTTL
	if s.cfg != nil && s.cfg.Commerce.BrandCacheTTLSec > 0 {
		ttl = time.Duration(s.cfg.Commerce.BrandCacheTTLSec) * time.Second
	}
	if err := cache.SetBrandWebhookPolicy(ctx, cache.BuildBrandWebhookPolicy(brand), ttl); err != nil {
		logger.Warnw("brand_policy_cache_write_failed", "commerce_domain", domain, "error", err)
	}
	return brand, nil
}

const defaultBrandCacheTTL = 5 * time.Minute

// recordOutcome 落一条处理结果审计（不保留载荷）
func (s *WebhookService) recordOutcome(brand *models.Brand, topic string, event *commerce.OrderEvent, customerID *uint, result *WebhookResult) {
	brandID := brand.ID
	s.recordEvent(&models.WebhookEvent{
		Topic:           topic,
		CommerceDomain:  brand.CommerceDomain,
		BrandID:         &brandID,
		ExternalOrderID: strconv.FormatInt(event.ID, 10),
		CustomerID:      customerID,
		Status:          result.Status,
		Reason:          result.Reason,
	})
}

// recordFailure 落一条处理失败审计（保留载荷供排查）
func (s *WebhookService) recordFailure(brand *models.Brand, topic string, event *commerce.OrderEvent, cause error) {
	brandID := brand.ID
	s.recordEvent(&models.WebhookEvent{
		Topic:           topic,
		CommerceDomain:  brand.CommerceDomain,
		BrandID:         &brandID,
		ExternalOrderID: strconv.FormatInt(event.ID, 10),
		Status:          constants.WebhookEventStatusFailed,
		Reason:          cause.Error(),
	})
}

// recordEvent 审计写入尽力而为，失败只记日志
func (s *WebhookService) recordEvent(event *models.WebhookEvent) {
	if s.webhookEventRepo == nil || event == nil {
		return
	}
	event.CreatedAt = time.Now()
	if err := s.webhookEventRepo.Create(event); err != nil {
		logger.Errorw("webhook_event_audit_failed",
			"topic", event.Topic,
			"commerce_domain", event.CommerceDomain,
			"error", err,
		)
	}
}

// ListEvents 分页查询 webhook 审计日志
func (s *WebhookService) ListEvents(filter repository.WebhookEventListFilter) ([]models.WebhookEvent, int64, error) {
	return s.webhookEventRepo.List(filter)
}
