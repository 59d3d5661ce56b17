package main

import (
	"fmt"
	"time"

	"github.com/sampleloop/internal/config"
	"github.com/sampleloop/internal/constants"
	"github.com/sampleloop/internal/logger"
	"github.com/sampleloop/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 品牌（webhook 域名与密钥为演示值）
	brand := models.Brand{
		Name:                  "Glow Labs",
		CommerceDomain:        "glow-labs.mycommerce.example",
		WebhookSecret:         "seed-webhook-secret",
		DefaultCommissionRate: models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		AttributionWindowDays: 30,
	}
	var existingBrand models.Brand
	if err := models.DB.Where("commerce_domain = ?", brand.CommerceDomain).First(&existingBrand).Error; err != nil {
		if err := models.DB.Create(&brand).Error; err != nil {
			stdLog.Fatalf("Failed to create brand: %v", err)
		}
		stdLog.Printf("Created brand: %s", brand.Name)
	} else {
		brand = existingBrand
		stdLog.Printf("Brand already exists: %s", brand.Name)
	}

	// 门店（API Key 仅打印一次，库里只存哈希）
	storePlans := []struct {
		Name   string
		Code   string
		APIKey string
	}{
		{Name: "Downtown Wellness", Code: "S001", APIKey: "seed-api-key-s001"},
		{Name: "Riverside Market", Code: "S002", APIKey: "seed-api-key-s002"},
	}
	stores := make(map[string]models.Store, len(storePlans))
	for _, plan := range storePlans {
		var store models.Store
		if err := models.DB.Where("code = ?", plan.Code).First(&store).Error; err != nil {
			hash, hashErr := bcrypt.GenerateFromPassword([]byte(plan.APIKey), bcrypt.DefaultCost)
			if hashErr != nil {
				stdLog.Fatalf("Failed to hash api key for %s: %v", plan.Code, hashErr)
			}
			store = models.Store{
				Name:       plan.Name,
				Code:       plan.Code,
				APIKeyHash: string(hash),
			}
			if err := models.DB.Create(&store).Error; err != nil {
				stdLog.Fatalf("Failed to create store %s: %v", plan.Code, err)
			}
			stdLog.Printf("Created store %s (api key: %s)", plan.Code, plan.APIKey)
		} else {
			stdLog.Printf("Store already exists: %s", plan.Code)
		}
		stores[plan.Code] = store
	}

	// 合作关系（S001 带活动费率覆盖，S002 用品牌默认）
	promoRate := models.NewMoneyFromDecimal(decimal.NewFromInt(12))
	partnershipPlans := []struct {
		StoreCode string
		Balance   decimal.Decimal
		PromoRate *models.Money
	}{
		{StoreCode: "S001", Balance: decimal.NewFromFloat(150.00), PromoRate: &promoRate},
		{StoreCode: "S002", Balance: decimal.Zero},
	}
	for _, plan := range partnershipPlans {
		store := stores[plan.StoreCode]
		var partnership models.BrandPartnership
		if err := models.DB.Where("store_id = ? AND brand_id = ?", store.ID, brand.ID).
			First(&partnership).Error; err != nil {
			partnership = models.BrandPartnership{
				StoreID:       store.ID,
				BrandID:       brand.ID,
				CreditBalance: models.NewMoneyFromDecimal(plan.Balance),
				PromoRate:     plan.PromoRate,
			}
			if err := models.DB.Create(&partnership).Error; err != nil {
				stdLog.Fatalf("Failed to create partnership for %s: %v", plan.StoreCode, err)
			}
			stdLog.Printf("Created partnership: %s x %s", plan.StoreCode, brand.Name)
		} else {
			stdLog.Printf("Partnership already exists: %s x %s", plan.StoreCode, brand.Name)
		}
	}

	// 零售SKU与批发装映射
	skus := []models.RetailSKU{
		{
			BrandID:            brand.ID,
			SKU:                "GLOW-SERUM",
			Name:               "Glow Facial Serum",
			UnitsPerBox:        6,
			WholesaleSKU:       "GLOW-SERUM-CS",
			WholesaleProductID: "9001",
			WholesaleVariantID: "9101",
		},
		{
			BrandID:            brand.ID,
			SKU:                "GLOW-MIST",
			Name:               "Glow Hydrating Mist",
			UnitsPerBox:        12,
			WholesaleSKU:       "GLOW-MIST-CS",
			WholesaleProductID: "9002",
			WholesaleVariantID: "9102",
		},
	}
	for _, sku := range skus {
		var existing models.RetailSKU
		if err := models.DB.Where("brand_id = ? AND sku = ?", sku.BrandID, sku.SKU).
			First(&existing).Error; err != nil {
			if err := models.DB.Create(&sku).Error; err != nil {
				stdLog.Printf("Failed to create retail sku %s: %v", sku.SKU, err)
			} else {
				stdLog.Printf("Created retail sku: %s", sku.SKU)
			}
		} else {
			stdLog.Printf("Retail sku already exists: %s", sku.SKU)
		}
	}

	// 顾客与派样记录（窗口内各一条，便于联调归因）
	now := time.Now()
	customerPlans := []struct {
		MemberNo  string
		StoreCode string
		Phone     string
		Email     string
	}{
		{MemberNo: "M1001", StoreCode: "S001", Phone: "+15550001001", Email: "amy@example.com"},
		{MemberNo: "M1002", StoreCode: "S002", Phone: "+15550001002", Email: "ben@example.com"},
	}
	for _, plan := range customerPlans {
		store := stores[plan.StoreCode]
		var customer models.Customer
		if err := models.DB.Where("member_no = ?", plan.MemberNo).First(&customer).Error; err != nil {
			sampledAt := now.Add(-72 * time.Hour)
			customer = models.Customer{
				MemberNo:      plan.MemberNo,
				BrandID:       brand.ID,
				StoreID:       store.ID,
				Phone:         plan.Phone,
				Email:         plan.Email,
				LastSampledAt: &sampledAt,
				Stage:         constants.CustomerStageSampled,
			}
			if err := models.DB.Create(&customer).Error; err != nil {
				stdLog.Printf("Failed to create customer %s: %v", plan.MemberNo, err)
				continue
			}
			sample := models.SampleHistory{
				CustomerID:            customer.ID,
				BrandID:               brand.ID,
				StoreID:               store.ID,
				DisplayCode:           "SHELF-A1",
				SKU:                   "GLOW-SERUM",
				SampledAt:             sampledAt,
				AttributionWindowDays: brand.AttributionWindowDays,
				ExpiresAt:             sampledAt.AddDate(0, 0, brand.AttributionWindowDays),
			}
			if err := models.DB.Create(&sample).Error; err != nil {
				stdLog.Printf("Failed to create sample history for %s: %v", plan.MemberNo, err)
			} else {
				stdLog.Printf("Created customer %s with sample history", plan.MemberNo)
			}
		} else {
			stdLog.Printf("Customer already exists: %s", plan.MemberNo)
		}
	}

	fmt.Println("\nSeed data ready:")
	fmt.Println("- 1 Brand (glow-labs.mycommerce.example)")
	fmt.Println("- 2 Stores (S001 / S002, api keys printed on first run)")
	fmt.Println("- 2 Partnerships (S001 carries promo rate override and credit)")
	fmt.Println("- 2 Retail SKUs with wholesale case mappings")
	fmt.Println("- 2 Customers with in-window sample history")
}
