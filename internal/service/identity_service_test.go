package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/sampleloop/internal/commerce"
	"github.com/sampleloop/internal/constants"
	"github.com/sampleloop/internal/models"
	"github.com/sampleloop/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupIdentityServiceTest(t *testing.T) (*IdentityService, *gorm.DB, *models.Brand, *models.Store) {
	t.Helper()
	dsn := fmt.Sprintf("file:identity_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Store{},
		&models.Brand{},
		&models.Customer{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	brand := models.Brand{
		Name:                  "Glow Labs",
		CommerceDomain:        "glow-labs.mycommerce.example",
		WebhookSecret:         "secret",
		DefaultCommissionRate: models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		AttributionWindowDays: 30,
	}
	if err := db.Create(&brand).Error; err != nil {
		t.Fatalf("create brand failed: %v", err)
	}
	store := models.Store{Name: "Downtown Wellness", Code: "S001", APIKeyHash: "hash"}
	if err := db.Create(&store).Error; err != nil {
		t.Fatalf("create store failed: %v", err)
	}

	svc := NewIdentityService(
		repository.NewCustomerRepository(db),
		repository.NewStoreRepository(db),
		nil,
	)
	return svc, db, &brand, &store
}

func createTestCustomer(t *testing.T, db *gorm.DB, brandID, storeID uint, memberNo, phone, email string) *models.Customer {
	t.Helper()
	customer := models.Customer{
		MemberNo: memberNo,
		BrandID:  brandID,
		StoreID:  storeID,
		Phone:    phone,
		Email:    email,
		Stage:    constants.CustomerStageSampled,
	}
	if err := db.Create(&customer).Error; err != nil {
		t.Fatalf("create customer failed: %v", err)
	}
	return &customer
}

func TestIdentityResolveMemberTag(t *testing.T) {
	svc, db, brand, store := setupIdentityServiceTest(t)
	tagged := createTestCustomer(t, db, brand.ID, store.ID, "M1001", "+15550001001", "amy@example.com")
	// 同联系方式的另一位顾客，验证会员标签优先于联系方式匹配
	createTestCustomer(t, db, brand.ID, store.ID, "M1002", "+15550001001", "")

	event := &commerce.OrderEvent{
		ID: 9001,
		Customer: &commerce.Customer{
			ID:    555,
			Phone: "+15550001001",
			Tags:  "vip, member:M1001",
		},
	}
	match, err := svc.Resolve(context.Background(), brand, event)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if match == nil || match.Customer.ID != tagged.ID {
		t.Fatalf("expected member tag match for customer %d, got %+v", tagged.ID, match)
	}
	if match.Strategy != constants.IdentityStrategyMemberTag {
		t.Fatalf("strategy want member_tag got %s", match.Strategy)
	}

	// 平台顾客ID应回填到命中的顾客档案
	var stored models.Customer
	if err := db.First(&stored, tagged.ID).Error; err != nil {
		t.Fatalf("reload customer failed: %v", err)
	}
	if stored.ExternalCustomerID == nil || *stored.ExternalCustomerID != "555" {
		t.Fatalf("external id should be linked, got %+v", stored.ExternalCustomerID)
	}
}

func TestIdentityResolveStoreTagContact(t *testing.T) {
	svc, db, brand, store := setupIdentityServiceTest(t)
	customer := createTestCustomer(t, db, brand.ID, store.ID, "M2001", "", "ben@example.com")

	event := &commerce.OrderEvent{
		ID: 9002,
		Customer: &commerce.Customer{
			Email: "Ben@Example.com",
			Tags:  "store:S001",
		},
	}
	match, err := svc.Resolve(context.Background(), brand, event)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if match == nil || match.Customer.ID != customer.ID {
		t.Fatalf("expected store contact match, got %+v", match)
	}
	if match.Strategy != constants.IdentityStrategyStoreContact {
		t.Fatalf("strategy want store_tag_contact got %s", match.Strategy)
	}
}

func TestIdentityResolveExternalID(t *testing.T) {
	svc, db, brand, store := setupIdentityServiceTest(t)
	customer := createTestCustomer(t, db, brand.ID, store.ID, "M3001", "", "")
	externalID := "777"
	if err := db.Model(&models.Customer{}).Where("id = ?", customer.ID).
		Update("external_customer_id", externalID).Error; err != nil {
		t.Fatalf("link external id failed: %v", err)
	}

	event := &commerce.OrderEvent{
		ID:       9003,
		Customer: &commerce.Customer{ID: 777},
	}
	match, err := svc.Resolve(context.Background(), brand, event)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if match == nil || match.Customer.ID != customer.ID {
		t.Fatalf("expected external id match, got %+v", match)
	}
	if match.Strategy != constants.IdentityStrategyExternalID {
		t.Fatalf("strategy want external_id got %s", match.Strategy)
	}
}

func TestIdentityResolveBareContact(t *testing.T) {
	svc, db, brand, store := setupIdentityServiceTest(t)
	customer := createTestCustomer(t, db, brand.ID, store.ID, "M4001", "+15550004001", "")

	event := &commerce.OrderEvent{
		ID:       9004,
		Customer: &commerce.Customer{Phone: "+15550004001"},
	}
	match, err := svc.Resolve(context.Background(), brand, event)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if match == nil || match.Customer.ID != customer.ID {
		t.Fatalf("expected contact match, got %+v", match)
	}
	if match.Strategy != constants.IdentityStrategyContact {
		t.Fatalf("strategy want contact got %s", match.Strategy)
	}
}

func TestIdentityResolveNoMatch(t *testing.T) {
	svc, db, brand, store := setupIdentityServiceTest(t)
	createTestCustomer(t, db, brand.ID, store.ID, "M5001", "+15550005001", "")

	event := &commerce.OrderEvent{
		ID:       9005,
		Customer: &commerce.Customer{ID: 999, Phone: "+15550009999"},
	}
	match, err := svc.Resolve(context.Background(), brand, event)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if match != nil {
		t.Fatalf("untracked buyer should not match, got %+v", match)
	}
}

func TestIdentityResolveMissingBuyerInfo(t *testing.T) {
	svc, _, brand, _ := setupIdentityServiceTest(t)

	match, err := svc.Resolve(context.Background(), brand, &commerce.OrderEvent{ID: 9006})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if match != nil {
		t.Fatalf("event without buyer info should not match, got %+v", match)
	}
}
