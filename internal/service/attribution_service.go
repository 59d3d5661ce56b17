package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sampleloop/internal/commerce"
	"github.com/sampleloop/internal/constants"
	"github.com/sampleloop/internal/logger"
	"github.com/sampleloop/internal/models"
	"github.com/sampleloop/internal/queue"
	"github.com/sampleloop/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AttributionService 归因服务。
// 以顾客在品牌下最近一次派样为准判定窗口资格，归因成功后在同一事务内
// 创建转化记录、为派样门店入账佣金并扣减该门店在库。
type AttributionService struct {
	sampleRepo      repository.SampleRepository
	conversionRepo  repository.ConversionRepository
	partnershipRepo repository.PartnershipRepository
	customerRepo    repository.CustomerRepository
	ledgerSvc       *CreditLedgerService
	inventorySvc    *InventoryService
	notificationSvc *NotificationService
}

// NewAttributionService 创建归因服务
func NewAttributionService(
	sampleRepo repository.SampleRepository,
	conversionRepo repository.ConversionRepository,
	partnershipRepo repository.PartnershipRepository,
	customerRepo repository.CustomerRepository,
	ledgerSvc *CreditLedgerService,
	inventorySvc *InventoryService,
	notificationSvc *NotificationService,
) *AttributionService {
	return &AttributionService{
		sampleRepo:      sampleRepo,
		conversionRepo:  conversionRepo,
		partnershipRepo: partnershipRepo,
		customerRepo:    customerRepo,
		ledgerSvc:       ledgerSvc,
		inventorySvc:    inventorySvc,
		notificationSvc: notificationSvc,
	}
}

// AttributionResult 归因结果
type AttributionResult struct {
	Attributed bool
	Reason     string // 未归因时的原因码
	Conversion *models.Conversion
	Commission decimal.Decimal
}

// Attribute 对已识别顾客的付款订单执行归因评估与记账
func (s *AttributionService) Attribute(brand *models.Brand, customer *models.Customer, event *commerce.OrderEvent) (*AttributionResult, error) {
	if brand == nil || customer == nil || event == nil {
		return nil, ErrPayloadInvalid
	}
	externalOrderID := strconv.FormatInt(event.ID, 10)
	if event.ID == 0 {
		return nil, ErrExternalOrderEmpty
	}

	existing, err := s.conversionRepo.GetByBrandAndExternalOrder(brand.ID, externalOrderID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &AttributionResult{Reason: constants.WebhookReasonAlreadyAttributed, Conversion: existing}, nil
	}

	sample, err := s.sampleRepo.GetLatestForCustomerBrand(customer.ID, brand.ID)
	if err != nil {
		return nil, err
	}
	if sample == nil {
		return &AttributionResult{Reason: constants.WebhookReasonNoSampleHistory}, nil
	}

	purchasedAt := event.PurchasedAt()
	if sample.ExpiresAt.Before(purchasedAt) {
		return &AttributionResult{Reason: constants.WebhookReasonWindowExpired}, nil
	}

	orderTotal, err := parseOrderTotal(event.TotalPrice)
	if err != nil {
		return nil, ErrPayloadInvalid
	}

	partnership, err := s.partnershipRepo.GetByStoreAndBrand(sample.StoreID, brand.ID)
	if err != nil {
		return nil, err
	}
	if partnership == nil {
		logger.Warnw("attribution_partnership_missing",
			"brand_id", brand.ID,
			"store_id", sample.StoreID,
			"external_order_id", externalOrderID,
		)
	}

	commissionContext := ResolveCommissionContext(event.OrderTags())
	rate := ResolveCommissionRate(partnership, brand, commissionContext)
	commission := CalculateCommission(orderTotal, rate)

	days := int(purchasedAt.Sub(sample.SampledAt).Hours() / 24)
	if days < 0 {
		days = 0
	}

	conversion := &models.Conversion{
		BrandID:           brand.ID,
		ExternalOrderID:   externalOrderID,
		CustomerID:        customer.ID,
		StoreID:           sample.StoreID,
		OrderTotal:        models.NewMoneyFromDecimal(orderTotal),
		RatePercent:       models.NewMoneyFromDecimal(rate),
		CommissionAmount:  models.NewMoneyFromDecimal(commission),
		CommissionContext: commissionContext,
		SampledAt:         sample.SampledAt,
		PurchasedAt:       purchasedAt,
		DaysToConversion:  days,
		Attributed:        true,
	}
	if partnership != nil {
		conversion.PartnershipID = partnership.ID
	}

	if err := s.conversionRepo.Transaction(func(tx *gorm.DB) error {
		if err := s.conversionRepo.WithTx(tx).Create(conversion); err != nil {
			return ErrConversionCreateFailed
		}

		if partnership != nil && commission.GreaterThan(decimal.Zero) {
			conversionID := conversion.ID
			posted, postErr := s.ledgerSvc.EarnTx(tx, LedgerPostInput{
				PartnershipID: partnership.ID,
				Amount:        models.NewMoneyFromDecimal(commission),
				Reason:        constants.CreditReasonCommission,
				Reference:     fmt.Sprintf("conversion:%d:commission", conversion.ID),
				ConversionID:  &conversionID,
			})
			if postErr != nil {
				return postErr
			}
			if err := s.conversionRepo.WithTx(tx).MarkPaid(conversion.ID); err != nil {
				return err
			}
			conversion.Paid = true
			logger.Infow("commission_posted",
				"conversion_id", conversion.ID,
				"partnership_id", partnership.ID,
				"amount", posted.Applied.String(),
				"balance", posted.Balance.String(),
			)
		}

		if err := s.updateCustomerStageTx(tx, customer); err != nil {
			return err
		}

		return s.inventorySvc.RecordSaleTx(tx, sample.StoreID, conversion.ID, event.LineItems)
	}); err != nil {
		return nil, err
	}

	s.notifyConversion(brand, customer, conversion)

	return &AttributionResult{
		Attributed: true,
		Reason:     constants.WebhookReasonConverted,
		Conversion: conversion,
		Commission: commission,
	}, nil
}

// updateCustomerStageTx 推进顾客生命周期：sampled → converted → repeat
func (s *AttributionService) updateCustomerStageTx(tx *gorm.DB, customer *models.Customer) error {
	next := constants.CustomerStageConverted
	if customer.Stage == constants.CustomerStageConverted || customer.Stage == constants.CustomerStageRepeat {
		next = constants.CustomerStageRepeat
	}
	if err := s.customerRepo.WithTx(tx).UpdateStage(customer.ID, next); err != nil {
		return err
	}
	customer.Stage = next
	return nil
}

// notifyConversion 归因成功后投递通知任务（尽力而为，失败不回滚）
func (s *AttributionService) notifyConversion(brand *models.Brand, customer *models.Customer, conversion *models.Conversion) {
	if s.notificationSvc == nil || conversion == nil {
		return
	}
	s.notificationSvc.NotifyConversionEarned(queue.ConversionNoticePayload{
		ConversionID:  conversion.ID,
		BrandID:       brand.ID,
		StoreID:       conversion.StoreID,
		CustomerID:    customer.ID,
		PartnershipID: conversion.PartnershipID,
		Commission:    conversion.CommissionAmount.Decimal.String(),
	})
}

// parseOrderTotal 解析订单总额，空值按零处理
func parseOrderTotal(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	total, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, err
	}
	return total.Round(2), nil
}
