package router

import (
	"fmt"
	"strings"

	"github.com/sampleloop/internal/cache"
	"github.com/sampleloop/internal/config"
	publichandlers "github.com/sampleloop/internal/http/handlers/public"
	storehandlers "github.com/sampleloop/internal/http/handlers/store"
	"github.com/sampleloop/internal/logger"
	"github.com/sampleloop/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按公开/门店分组）
	publicHandler := publichandlers.New(c)
	storeHandler := storehandlers.New(c)

	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "sl"
	}
	redisClient := cache.Client()
	tokenRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:store_token", redisPrefix),
		WindowSeconds: cfg.StoreAPI.TokenRate.WindowSeconds,
		MaxRequests:   cfg.StoreAPI.TokenRate.MaxAttempts,
		BlockSeconds:  cfg.StoreAPI.TokenRate.BlockSeconds,
		Message:       "too many token attempts",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 电商平台回调（HMAC 签名鉴权，不走 JWT）
		apiV1.POST("/webhooks/commerce", publicHandler.CommerceWebhook)

		// 门店接口
		store := apiV1.Group("/store")
		{
			// 换取 token（无需 JWT，按 IP+门店编码限流）
			store.POST("/auth/token",
				RateLimitMiddleware(redisClient, tokenRule, KeyByIPAndJSONField("store_code")),
				storeHandler.IssueToken,
			)

			// 需要门店 JWT 的接口
			authorized := store.Group("")
			authorized.Use(StoreJWTAuthMiddleware(c.StoreAuthService))
			{
				// 积分账本
				authorized.GET("/ledger/balance", storeHandler.GetLedgerBalance)
				authorized.GET("/ledger/transactions", storeHandler.ListLedgerTransactions)

				// 转化记录
				authorized.GET("/conversions", storeHandler.ListConversions)

				// 批发补货单
				authorized.POST("/wholesale-orders", storeHandler.CreateWholesaleOrder)
				authorized.GET("/wholesale-orders", storeHandler.ListWholesaleOrders)
				authorized.GET("/wholesale-orders/:id", storeHandler.GetWholesaleOrder)
				authorized.POST("/wholesale-orders/:id/verify", storeHandler.VerifyWholesaleOrder)

				// 门店库存
				authorized.GET("/inventory", storeHandler.ListInventory)
				authorized.GET("/inventory/transactions", storeHandler.ListInventoryTransactions)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
