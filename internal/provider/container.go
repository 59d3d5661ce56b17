package provider

import (
	"time"

	"github.com/sampleloop/internal/cache"
	"github.com/sampleloop/internal/commerce"
	"github.com/sampleloop/internal/config"
	"github.com/sampleloop/internal/logger"
	"github.com/sampleloop/internal/models"
	"github.com/sampleloop/internal/queue"
	"github.com/sampleloop/internal/repository"
	"github.com/sampleloop/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config         *config.Config
	QueueClient    *queue.Client
	CommerceClient *commerce.Client

	// Repositories
	BrandRepo        repository.BrandRepository
	StoreRepo        repository.StoreRepository
	CustomerRepo     repository.CustomerRepository
	SampleRepo       repository.SampleRepository
	PartnershipRepo  repository.PartnershipRepository
	ConversionRepo   repository.ConversionRepository
	RetailSKURepo    repository.RetailSKURepository
	InventoryRepo    repository.InventoryRepository
	WholesaleRepo    repository.WholesaleRepository
	WebhookEventRepo repository.WebhookEventRepository

	// Services
	StoreAuthService    *service.StoreAuthService
	NotificationService *service.NotificationService
	CreditLedgerService *service.CreditLedgerService
	IdentityService     *service.IdentityService
	InventoryService    *service.InventoryService
	AttributionService  *service.AttributionService
	WholesaleService    *service.WholesaleService
	WebhookService      *service.WebhookService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	lookupTimeout := time.Duration(cfg.Commerce.LookupTimeoutMS) * time.Millisecond
	c.CommerceClient = commerce.NewClient(cfg.Commerce.APIBaseURL, lookupTimeout)

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.BrandRepo = repository.NewBrandRepository(db)
	c.StoreRepo = repository.NewStoreRepository(db)
	c.CustomerRepo = repository.NewCustomerRepository(db)
	c.SampleRepo = repository.NewSampleRepository(db)
	c.PartnershipRepo = repository.NewPartnershipRepository(db)
	c.ConversionRepo = repository.NewConversionRepository(db)
	c.RetailSKURepo = repository.NewRetailSKURepository(db)
	c.InventoryRepo = repository.NewInventoryRepository(db)
	c.WholesaleRepo = repository.NewWholesaleRepository(db)
	c.WebhookEventRepo = repository.NewWebhookEventRepository(db)
}

func (c *Container) initServices() {
	c.StoreAuthService = service.NewStoreAuthService(c.Config, c.StoreRepo)
	c.NotificationService = service.NewNotificationService(c.QueueClient)
	c.CreditLedgerService = service.NewCreditLedgerService(c.PartnershipRepo)
	c.IdentityService = service.NewIdentityService(c.CustomerRepo, c.StoreRepo, c.CommerceClient)
	c.InventoryService = service.NewInventoryService(c.InventoryRepo, c.RetailSKURepo)
	c.AttributionService = service.NewAttributionService(
		c.SampleRepo,
		c.ConversionRepo,
		c.PartnershipRepo,
		c.CustomerRepo,
		c.CreditLedgerService,
		c.InventoryService,
		c.NotificationService,
	)
	c.WholesaleService = service.NewWholesaleService(
		c.WholesaleRepo,
		c.PartnershipRepo,
		c.CreditLedgerService,
		c.InventoryService,
		c.NotificationService,
	)
	c.WebhookService = service.NewWebhookService(
		c.Config,
		c.BrandRepo,
		c.ConversionRepo,
		c.WebhookEventRepo,
		c.IdentityService,
		c.AttributionService,
		c.WholesaleService,
	)
}

// Close 释放容器资源
func (c *Container) Close() {
	if c == nil {
		return
	}
	if c.QueueClient != nil {
		if err := c.QueueClient.Close(); err != nil {
			logger.Warnw("provider_close_queue_client_failed", "error", err)
		}
	}
}
