package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/sampleloop/internal/commerce"
	"github.com/sampleloop/internal/constants"
	"github.com/sampleloop/internal/logger"
	"github.com/sampleloop/internal/models"
	"github.com/sampleloop/internal/repository"
)

// IdentityService 顾客识别服务。
// 按固定优先级依次尝试识别策略，命中即停；识别结果可回填平台顾客ID。
type IdentityService struct {
	customerRepo   repository.CustomerRepository
	storeRepo      repository.StoreRepository
	commerceClient *commerce.Client
}

// NewIdentityService 创建顾客识别服务
func NewIdentityService(
	customerRepo repository.CustomerRepository,
	storeRepo repository.StoreRepository,
	commerceClient *commerce.Client,
) *IdentityService {
	return &IdentityService{
		customerRepo:   customerRepo,
		storeRepo:      storeRepo,
		commerceClient: commerceClient,
	}
}

// IdentityMatch 识别结果
type IdentityMatch struct {
	Customer *models.Customer
	Strategy string // 命中的识别策略
}

// Resolve 按优先级识别订单买家对应的派样顾客：
// 会员标签 → 门店标签+联系方式 → 已关联平台顾客ID → 裸联系方式。
// 未识别时返回 nil（业务非错误）。
func (s *IdentityService) Resolve(ctx context.Context, brand *models.Brand, event *commerce.OrderEvent) (*IdentityMatch, error) {
	if brand == nil || event == nil {
		return nil, nil
	}

	var (
		externalID string
		phone      string
		email      string
	)
	if event.Customer != nil {
		if event.Customer.ID != 0 {
			externalID = strconv.FormatInt(event.Customer.ID, 10)
		}
		phone = strings.TrimSpace(event.Customer.Phone)
		email = strings.TrimSpace(event.Customer.Email)
	}

	tags := s.resolveCustomerTags(ctx, brand, event)

	// 策略1：会员标签
	if memberNo := tagValue(tags, constants.CustomerTagMemberPrefix); memberNo != "" {
		customer, err := s.customerRepo.GetByMemberNo(brand.ID, memberNo)
		if err != nil {
			return nil, err
		}
		if customer != nil {
			s.linkExternalID(customer, externalID)
			return &IdentityMatch{Customer: customer, Strategy: constants.IdentityStrategyMemberTag}, nil
		}
	}

	// 策略2：门店标签 + 联系方式
	if storeCode := tagValue(tags, constants.CustomerTagStorePrefix); storeCode != "" {
		store, err := s.storeRepo.GetByCode(storeCode)
		if err != nil {
			return nil, err
		}
		if store != nil {
			customer, err := s.customerRepo.GetByStoreAndContact(brand.ID, store.ID, phone, email)
			if err != nil {
				return nil, err
			}
			if customer != nil {
				s.linkExternalID(customer, externalID)
				return &IdentityMatch{Customer: customer, Strategy: constants.IdentityStrategyStoreContact}, nil
			}
		}
	}

	// 策略3：已关联的平台顾客ID
	if externalID != "" {
		customer, err := s.customerRepo.GetByExternalID(brand.ID, externalID)
		if err != nil {
			return nil, err
		}
		if customer != nil {
			return &IdentityMatch{Customer: customer, Strategy: constants.IdentityStrategyExternalID}, nil
		}
	}

	// 策略4：裸联系方式
	customer, err := s.customerRepo.GetByContact(brand.ID, phone, email)
	if err != nil {
		return nil, err
	}
	if customer != nil {
		s.linkExternalID(customer, externalID)
		return &IdentityMatch{Customer: customer, Strategy: constants.IdentityStrategyContact}, nil
	}

	return nil, nil
}

// resolveCustomerTags 取顾客标签；载荷缺失时向平台补查，失败降级为无标签。
func (s *IdentityService) resolveCustomerTags(ctx context.Context, brand *models.Brand, event *commerce.OrderEvent) []string {
	tags := event.CustomerTags()
	if len(tags) > 0 {
		return tags
	}
	if event.Customer == nil || event.Customer.ID == 0 {
		return nil
	}
	if s.commerceClient == nil || !s.commerceClient.Enabled() {
		return nil
	}
	fetched, err := s.commerceClient.CustomerTags(ctx, brand.CommerceDomain, event.Customer.ID)
	if err != nil {
		logger.Warnw("identity_tag_lookup_failed",
			"brand_id", brand.ID,
			"external_customer_id", event.Customer.ID,
			"error", err,
		)
		return nil
	}
	return fetched
}

// linkExternalID 将平台顾客ID回填到尚未关联的顾客档案
func (s *IdentityService) linkExternalID(customer *models.Customer, externalID string) {
	if customer == nil || externalID == "" || customer.ExternalCustomerID != nil {
		return
	}
	if err := s.customerRepo.LinkExternalID(customer.ID, externalID); err != nil {
		logger.Warnw("identity_link_external_id_failed",
			"customer_id", customer.ID,
			"external_customer_id", externalID,
			"error", err,
		)
		return
	}
	linked := externalID
	customer.ExternalCustomerID = &linked
}

// tagValue 提取指定前缀标签的取值，首个命中生效
func tagValue(tags []string, prefix string) string {
	for _, tag := range tags {
		if strings.HasPrefix(tag, prefix) {
			if value := strings.TrimSpace(strings.TrimPrefix(tag, prefix)); value != "" {
				return value
			}
		}
	}
	return ""
}
