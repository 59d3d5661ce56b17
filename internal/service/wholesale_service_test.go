package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sampleloop/internal/constants"
	"github.com/sampleloop/internal/models"
	"github.com/sampleloop/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type wholesaleFixture struct {
	svc         *WholesaleService
	db          *gorm.DB
	brand       *models.Brand
	store       *models.Store
	partnership *models.BrandPartnership
}

func setupWholesaleServiceTest(t *testing.T, balance decimal.Decimal) *wholesaleFixture {
	t.Helper()
	dsn := fmt.Sprintf("file:wholesale_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Store{},
		&models.Brand{},
		&models.BrandPartnership{},
		&models.CreditTransaction{},
		&models.RetailSKU{},
		&models.WholesaleOrder{},
		&models.WholesaleOrderItem{},
		&models.StoreInventory{},
		&models.InventoryTransaction{},
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
	partnership := models.BrandPartnership{
		StoreID:       store.ID,
		BrandID:       brand.ID,
		CreditBalance: models.NewMoneyFromDecimal(balance),
	}
	if err := db.Create(&partnership).Error; err != nil {
		t.Fatalf("create partnership failed: %v", err)
	}
	sku := models.RetailSKU{
		BrandID:            brand.ID,
		SKU:                "GLOW-SERUM",
		Name:               "Glow Facial Serum",
		UnitsPerBox:        6,
		WholesaleSKU:       "GLOW-SERUM-CS",
		WholesaleProductID: "9001",
		WholesaleVariantID: "9101",
	}
	if err := db.Create(&sku).Error; err != nil {
		t.Fatalf("create retail sku failed: %v", err)
	}

	partnershipRepo := repository.NewPartnershipRepository(db)
	inventorySvc := NewInventoryService(
		repository.NewInventoryRepository(db),
		repository.NewRetailSKURepository(db),
	)
	svc := NewWholesaleService(
		repository.NewWholesaleRepository(db),
		partnershipRepo,
		NewCreditLedgerService(partnershipRepo),
		inventorySvc,
		NewNotificationService(nil),
	)
	return &wholesaleFixture{
		svc:         svc,
		db:          db,
		brand:       &brand,
		store:       &store,
		partnership: &partnership,
	}
}

func (f *wholesaleFixture) createOrder(t *testing.T, useCredit bool) *models.WholesaleOrder {
	t.Helper()
	order, err := f.svc.Create(WholesaleCreateInput{
		StoreID:   f.store.ID,
		BrandID:   f.brand.ID,
		UseCredit: useCredit,
		Items: []WholesaleItemInput{
			{
				WholesaleSKU: "GLOW-SERUM-CS",
				Boxes:        2,
				UnitPrice:    models.NewMoneyFromDecimal(decimal.NewFromInt(45)),
			},
		},
	})
	if err != nil {
		t.Fatalf("create wholesale order failed: %v", err)
	}
	return order
}

func TestWholesaleCreateExpandsUnits(t *testing.T) {
	f := setupWholesaleServiceTest(t, decimal.Zero)
	order := f.createOrder(t, false)

	if order.Status != constants.WholesaleStatusPending {
		t.Fatalf("status want pending got %s", order.Status)
	}
	if !order.Subtotal.Decimal.Equal(decimal.NewFromInt(90)) {
		t.Fatalf("subtotal want 90 got %s", order.Subtotal.Decimal)
	}
	if !order.AppliedCredit.Decimal.Equal(decimal.Zero) || !order.Total.Decimal.Equal(decimal.NewFromInt(90)) {
		t.Fatalf("no credit applied expected, got %s / %s", order.AppliedCredit.Decimal, order.Total.Decimal)
	}
	if len(order.Items) != 1 {
		t.Fatalf("items want 1 got %d", len(order.Items))
	}
	item := order.Items[0]
	if item.RetailSKU != "GLOW-SERUM" || item.UnitsPerBox != 6 || item.ExpectedUnits != 12 {
		t.Fatalf("unexpected item expansion: %+v", item)
	}
	if order.OrderNo == "" {
		t.Fatalf("order no should be generated")
	}
}

func TestWholesaleCreateAppliesCreditClamped(t *testing.T) {
	f := setupWholesaleServiceTest(t, decimal.NewFromInt(60))
	order := f.createOrder(t, true)

	if !order.AppliedCredit.Decimal.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("applied credit want 60 got %s", order.AppliedCredit.Decimal)
	}
	if !order.Total.Decimal.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("total want 30 got %s", order.Total.Decimal)
	}

	var partnership models.BrandPartnership
	if err := f.db.First(&partnership, f.partnership.ID).Error; err != nil {
		t.Fatalf("reload partnership failed: %v", err)
	}
	if !partnership.CreditBalance.Decimal.Equal(decimal.Zero) {
		t.Fatalf("balance want 0 got %s", partnership.CreditBalance.Decimal)
	}

	var txn models.CreditTransaction
	if err := f.db.Where("reference = ?", fmt.Sprintf("wholesale:%d:credit", order.ID)).First(&txn).Error; err != nil {
		t.Fatalf("load credit transaction failed: %v", err)
	}
	if txn.Type != constants.CreditTxnTypeDeducted || !txn.Amount.Decimal.Equal(decimal.NewFromInt(-60)) {
		t.Fatalf("unexpected deduction: %+v", txn)
	}
}

func TestWholesaleCreateFullCredit(t *testing.T) {
	f := setupWholesaleServiceTest(t, decimal.NewFromInt(150))
	order := f.createOrder(t, true)

	if !order.AppliedCredit.Decimal.Equal(decimal.NewFromInt(90)) {
		t.Fatalf("applied credit want 90 got %s", order.AppliedCredit.Decimal)
	}
	if !order.Total.Decimal.Equal(decimal.Zero) {
		t.Fatalf("total want 0 got %s", order.Total.Decimal)
	}

	var partnership models.BrandPartnership
	if err := f.db.First(&partnership, f.partnership.ID).Error; err != nil {
		t.Fatalf("reload partnership failed: %v", err)
	}
	if !partnership.CreditBalance.Decimal.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("balance want 60 got %s", partnership.CreditBalance.Decimal)
	}
}

func TestWholesaleCreateValidation(t *testing.T) {
	f := setupWholesaleServiceTest(t, decimal.Zero)

	_, err := f.svc.Create(WholesaleCreateInput{StoreID: f.store.ID, BrandID: f.brand.ID})
	if !errors.Is(err, ErrWholesaleOrderEmpty) {
		t.Fatalf("empty items want ErrWholesaleOrderEmpty got %v", err)
	}

	_, err = f.svc.Create(WholesaleCreateInput{
		StoreID: f.store.ID,
		BrandID: f.brand.ID,
		Items: []WholesaleItemInput{
			{WholesaleSKU: "UNKNOWN-CS", Boxes: 1, UnitPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(10))},
		},
	})
	if !errors.Is(err, ErrSKUMappingNotFound) {
		t.Fatalf("unknown sku want ErrSKUMappingNotFound got %v", err)
	}

	_, err = f.svc.Create(WholesaleCreateInput{
		StoreID: f.store.ID,
		BrandID: f.brand.ID,
		Items: []WholesaleItemInput{
			{WholesaleSKU: "GLOW-SERUM-CS", Boxes: 0, UnitPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(10))},
		},
	})
	if !errors.Is(err, ErrWholesaleItemInvalid) {
		t.Fatalf("zero boxes want ErrWholesaleItemInvalid got %v", err)
	}

	_, err = f.svc.Create(WholesaleCreateInput{
		StoreID: f.store.ID,
		BrandID: f.brand.ID + 100,
		Items: []WholesaleItemInput{
			{WholesaleSKU: "GLOW-SERUM-CS", Boxes: 1, UnitPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(10))},
		},
	})
	if !errors.Is(err, ErrPartnershipNotFound) {
		t.Fatalf("missing partnership want ErrPartnershipNotFound got %v", err)
	}
}

func TestWholesaleLifecycle(t *testing.T) {
	f := setupWholesaleServiceTest(t, decimal.Zero)
	order := f.createOrder(t, false)
	now := time.Now()

	// 平台付款：pending → submitted，预期件数进在途
	if err := f.db.Transaction(func(tx *gorm.DB) error {
		return f.svc.MarkSubmittedTx(tx, order, now)
	}); err != nil {
		t.Fatalf("mark submitted failed: %v", err)
	}
	if order.Status != constants.WholesaleStatusSubmitted {
		t.Fatalf("status want submitted got %s", order.Status)
	}
	var inventory models.StoreInventory
	if err := f.db.Where("store_id = ? AND sku = ?", f.store.ID, "GLOW-SERUM").First(&inventory).Error; err != nil {
		t.Fatalf("load inventory failed: %v", err)
	}
	if inventory.QuantityIncoming != 12 {
		t.Fatalf("incoming want 12 got %d", inventory.QuantityIncoming)
	}

	// 重复付款回调被状态机挡下
	if err := f.db.Transaction(func(tx *gorm.DB) error {
		return f.svc.MarkSubmittedTx(tx, order, now)
	}); err != nil {
		t.Fatalf("replay mark submitted failed: %v", err)
	}

	// 平台发货：submitted → delivered
	if err := f.db.Transaction(func(tx *gorm.DB) error {
		return f.svc.MarkDeliveredTx(tx, order, now)
	}); err != nil {
		t.Fatalf("mark delivered failed: %v", err)
	}
	if order.Status != constants.WholesaleStatusDelivered {
		t.Fatalf("status want delivered got %s", order.Status)
	}

	// 门店确认收货：实收10件，差异2件
	verified, err := f.svc.Verify(WholesaleVerifyInput{
		OrderID: order.ID,
		StoreID: f.store.ID,
		Items: []WholesaleVerifyItemInput{
			{ItemID: order.Items[0].ID, ReceivedUnits: 10, Notes: "one unit damaged, one missing"},
		},
	})
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if verified.Status != constants.WholesaleStatusVerified || verified.VerifiedAt == nil {
		t.Fatalf("order should be verified, got %+v", verified)
	}
	item := verified.Items[0]
	if item.ReceivedUnits == nil || *item.ReceivedUnits != 10 || item.Discrepancy != 2 {
		t.Fatalf("unexpected verified item: %+v", item)
	}

	if err := f.db.Where("store_id = ? AND sku = ?", f.store.ID, "GLOW-SERUM").First(&inventory).Error; err != nil {
		t.Fatalf("reload inventory failed: %v", err)
	}
	if inventory.QuantityIncoming != 0 || inventory.QuantityOnHand != 10 {
		t.Fatalf("counters want incoming 0 on hand 10, got %d/%d", inventory.QuantityIncoming, inventory.QuantityOnHand)
	}

	// 重复确认被拒绝
	_, err = f.svc.Verify(WholesaleVerifyInput{
		OrderID: order.ID,
		StoreID: f.store.ID,
		Items: []WholesaleVerifyItemInput{
			{ItemID: order.Items[0].ID, ReceivedUnits: 10},
		},
	})
	if !errors.Is(err, ErrWholesaleAlreadyVerified) {
		t.Fatalf("re-verify want ErrWholesaleAlreadyVerified got %v", err)
	}
}

func TestWholesaleVerifyFromSubmittedPassesThroughDelivered(t *testing.T) {
	f := setupWholesaleServiceTest(t, decimal.Zero)
	order := f.createOrder(t, false)
	if err := f.db.Transaction(func(tx *gorm.DB) error {
		return f.svc.MarkSubmittedTx(tx, order, time.Now())
	}); err != nil {
		t.Fatalf("mark submitted failed: %v", err)
	}

	// 发货回调丢失：直接确认收货也必须补齐 delivered 轨迹
	verified, err := f.svc.Verify(WholesaleVerifyInput{
		OrderID: order.ID,
		StoreID: f.store.ID,
		Items: []WholesaleVerifyItemInput{
			{ItemID: order.Items[0].ID, ReceivedUnits: 12},
		},
	})
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if verified.Status != constants.WholesaleStatusVerified {
		t.Fatalf("status want verified got %s", verified.Status)
	}

	var stored models.WholesaleOrder
	if err := f.db.First(&stored, order.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if stored.DeliveredAt == nil {
		t.Fatalf("delivered timestamp should be recorded before verification")
	}
	if stored.VerifiedAt == nil {
		t.Fatalf("verified timestamp should be recorded")
	}

	var txn models.InventoryTransaction
	if err := f.db.Where("reference = ?", fmt.Sprintf("wholesale:%d:incoming:GLOW-SERUM", order.ID)).
		First(&txn).Error; err != nil {
		t.Fatalf("load delivered audit transaction failed: %v", err)
	}
	if txn.Type != constants.InventoryTxnTypeWholesaleIn {
		t.Fatalf("audit transaction type want %s got %s", constants.InventoryTxnTypeWholesaleIn, txn.Type)
	}
}

func TestWholesaleVerifyRequiresAllItems(t *testing.T) {
	f := setupWholesaleServiceTest(t, decimal.Zero)
	order := f.createOrder(t, false)
	if err := f.db.Transaction(func(tx *gorm.DB) error {
		return f.svc.MarkSubmittedTx(tx, order, time.Now())
	}); err != nil {
		t.Fatalf("mark submitted failed: %v", err)
	}

	_, err := f.svc.Verify(WholesaleVerifyInput{
		OrderID: order.ID,
		StoreID: f.store.ID,
	})
	if !errors.Is(err, ErrWholesaleItemInvalid) {
		t.Fatalf("missing item confirmations want ErrWholesaleItemInvalid got %v", err)
	}
}

func TestWholesaleVerifyStoreScoped(t *testing.T) {
	f := setupWholesaleServiceTest(t, decimal.Zero)
	order := f.createOrder(t, false)
	if err := f.db.Transaction(func(tx *gorm.DB) error {
		return f.svc.MarkSubmittedTx(tx, order, time.Now())
	}); err != nil {
		t.Fatalf("mark submitted failed: %v", err)
	}

	_, err := f.svc.Verify(WholesaleVerifyInput{
		OrderID: order.ID,
		StoreID: f.store.ID + 1,
		Items: []WholesaleVerifyItemInput{
			{ItemID: order.Items[0].ID, ReceivedUnits: 12},
		},
	})
	if !errors.Is(err, ErrWholesaleOrderNotFound) {
		t.Fatalf("foreign store want ErrWholesaleOrderNotFound got %v", err)
	}
}

func TestWholesaleVerifyPendingRejected(t *testing.T) {
	f := setupWholesaleServiceTest(t, decimal.Zero)
	order := f.createOrder(t, false)

	_, err := f.svc.Verify(WholesaleVerifyInput{
		OrderID: order.ID,
		StoreID: f.store.ID,
		Items: []WholesaleVerifyItemInput{
			{ItemID: order.Items[0].ID, ReceivedUnits: 12},
		},
	})
	if !errors.Is(err, ErrWholesaleStatusInvalid) {
		t.Fatalf("pending order want ErrWholesaleStatusInvalid got %v", err)
	}
}

func TestWholesaleGetForStore(t *testing.T) {
	f := setupWholesaleServiceTest(t, decimal.Zero)
	order := f.createOrder(t, false)

	got, err := f.svc.GetForStore(order.ID, f.store.ID)
	if err != nil {
		t.Fatalf("get for store failed: %v", err)
	}
	if got.ID != order.ID {
		t.Fatalf("order id want %d got %d", order.ID, got.ID)
	}

	if _, err := f.svc.GetForStore(order.ID, f.store.ID+1); !errors.Is(err, ErrWholesaleOrderNotFound) {
		t.Fatalf("foreign store want ErrWholesaleOrderNotFound got %v", err)
	}
}
