package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/sampleloop/internal/commerce"
	"github.com/sampleloop/internal/constants"
	"github.com/sampleloop/internal/models"
	"github.com/sampleloop/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupInventoryServiceTest(t *testing.T) (*InventoryService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:inventory_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.RetailSKU{},
		&models.StoreInventory{},
		&models.InventoryTransaction{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	return NewInventoryService(
		repository.NewInventoryRepository(db),
		repository.NewRetailSKURepository(db),
	), db
}

func createTestRetailSKU(t *testing.T, db *gorm.DB, brandID uint) *models.RetailSKU {
	t.Helper()
	sku := models.RetailSKU{
		BrandID:            brandID,
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
	return &sku
}

func stagedTestOrder(storeID uint) *models.WholesaleOrder {
	return &models.WholesaleOrder{
		ID:      1,
		StoreID: storeID,
		Items: []models.WholesaleOrderItem{
			{ID: 1, WholesaleOrderID: 1, RetailSKU: "GLOW-SERUM", Boxes: 2, UnitsPerBox: 6, ExpectedUnits: 12},
		},
	}
}

func TestResolveRetailSKUPriority(t *testing.T) {
	svc, db := setupInventoryServiceTest(t)
	mapping := createTestRetailSKU(t, db, 1)

	// 变体ID优先
	got, err := svc.ResolveRetailSKU(1, commerce.LineItem{VariantID: 9101, ProductID: 12345, SKU: "other"})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if got == nil || got.ID != mapping.ID {
		t.Fatalf("variant id should resolve mapping, got %+v", got)
	}

	got, err = svc.ResolveRetailSKU(1, commerce.LineItem{ProductID: 9001})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if got == nil || got.ID != mapping.ID {
		t.Fatalf("product id should resolve mapping, got %+v", got)
	}

	got, err = svc.ResolveRetailSKU(1, commerce.LineItem{SKU: "GLOW-SERUM-CS"})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if got == nil || got.ID != mapping.ID {
		t.Fatalf("wholesale sku should resolve mapping, got %+v", got)
	}

	got, err = svc.ResolveRetailSKU(1, commerce.LineItem{SKU: "UNKNOWN-CS"})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if got != nil {
		t.Fatalf("unknown mapping should return nil, got %+v", got)
	}

	// 其他品牌的映射不可见
	got, err = svc.ResolveRetailSKU(2, commerce.LineItem{VariantID: 9101})
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if got != nil {
		t.Fatalf("mapping should be brand scoped, got %+v", got)
	}
}

func TestStageWholesaleOrderedIncoming(t *testing.T) {
	svc, db := setupInventoryServiceTest(t)
	order := stagedTestOrder(77)

	if err := db.Transaction(func(tx *gorm.DB) error {
		return svc.StageWholesaleOrderedTx(tx, order)
	}); err != nil {
		t.Fatalf("stage ordered failed: %v", err)
	}

	var inventory models.StoreInventory
	if err := db.Where("store_id = ? AND sku = ?", 77, "GLOW-SERUM").First(&inventory).Error; err != nil {
		t.Fatalf("load inventory failed: %v", err)
	}
	if inventory.QuantityIncoming != 12 || inventory.QuantityOnHand != 0 {
		t.Fatalf("incoming want 12 on hand 0, got %d/%d", inventory.QuantityIncoming, inventory.QuantityOnHand)
	}

	var txn models.InventoryTransaction
	if err := db.Where("reference = ?", "wholesale:1:ordered:GLOW-SERUM").First(&txn).Error; err != nil {
		t.Fatalf("load transaction failed: %v", err)
	}
	if txn.Type != constants.InventoryTxnTypeWholesaleOrdered || txn.Counter != constants.InventoryCounterIncoming {
		t.Fatalf("unexpected transaction: %+v", txn)
	}
	if txn.Quantity != 12 || txn.BalanceAfter != 12 {
		t.Fatalf("quantity/balance want 12/12 got %d/%d", txn.Quantity, txn.BalanceAfter)
	}

	// 重复投递同一参考号不再变更计数器
	if err := db.Transaction(func(tx *gorm.DB) error {
		return svc.StageWholesaleOrderedTx(tx, order)
	}); err != nil {
		t.Fatalf("replay stage failed: %v", err)
	}
	if err := db.Where("store_id = ? AND sku = ?", 77, "GLOW-SERUM").First(&inventory).Error; err != nil {
		t.Fatalf("reload inventory failed: %v", err)
	}
	if inventory.QuantityIncoming != 12 {
		t.Fatalf("replay should be idempotent, incoming %d", inventory.QuantityIncoming)
	}
	var count int64
	if err := db.Model(&models.InventoryTransaction{}).Count(&count).Error; err != nil {
		t.Fatalf("count transactions failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("transaction count want 1 got %d", count)
	}
}

func TestReceiveWholesaleItemMovesCounters(t *testing.T) {
	svc, db := setupInventoryServiceTest(t)
	order := stagedTestOrder(77)

	if err := db.Transaction(func(tx *gorm.DB) error {
		return svc.StageWholesaleOrderedTx(tx, order)
	}); err != nil {
		t.Fatalf("stage ordered failed: %v", err)
	}
	// 实收10件，少于预期12件
	if err := db.Transaction(func(tx *gorm.DB) error {
		return svc.ReceiveWholesaleItemTx(tx, order, &order.Items[0], 10)
	}); err != nil {
		t.Fatalf("receive failed: %v", err)
	}

	var inventory models.StoreInventory
	if err := db.Where("store_id = ? AND sku = ?", 77, "GLOW-SERUM").First(&inventory).Error; err != nil {
		t.Fatalf("load inventory failed: %v", err)
	}
	if inventory.QuantityIncoming != 0 {
		t.Fatalf("incoming want 0 got %d", inventory.QuantityIncoming)
	}
	if inventory.QuantityOnHand != 10 || inventory.QuantityAvailable != 10 {
		t.Fatalf("on hand want 10 got %d (available %d)", inventory.QuantityOnHand, inventory.QuantityAvailable)
	}

	var txns []models.InventoryTransaction
	if err := db.Where("type = ?", constants.InventoryTxnTypeWholesaleReceive).Find(&txns).Error; err != nil {
		t.Fatalf("load transactions failed: %v", err)
	}
	if len(txns) != 2 {
		t.Fatalf("receive should write incoming and on hand transactions, got %d", len(txns))
	}
}

func TestReceiveWholesaleItemClampsIncoming(t *testing.T) {
	svc, db := setupInventoryServiceTest(t)
	order := stagedTestOrder(77)

	// 未经下单暂存直接收货：在途扣减收敛到0，不出现负数
	if err := db.Transaction(func(tx *gorm.DB) error {
		return svc.ReceiveWholesaleItemTx(tx, order, &order.Items[0], 12)
	}); err != nil {
		t.Fatalf("receive failed: %v", err)
	}

	var inventory models.StoreInventory
	if err := db.Where("store_id = ? AND sku = ?", 77, "GLOW-SERUM").First(&inventory).Error; err != nil {
		t.Fatalf("load inventory failed: %v", err)
	}
	if inventory.QuantityIncoming != 0 {
		t.Fatalf("incoming should clamp at 0, got %d", inventory.QuantityIncoming)
	}
	if inventory.QuantityOnHand != 12 {
		t.Fatalf("on hand want 12 got %d", inventory.QuantityOnHand)
	}
}

func TestReceiveWholesaleItemRejectsNegativeUnits(t *testing.T) {
	svc, db := setupInventoryServiceTest(t)
	order := stagedTestOrder(77)

	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.ReceiveWholesaleItemTx(tx, order, &order.Items[0], -1)
	})
	if err != ErrWholesaleItemInvalid {
		t.Fatalf("negative units want ErrWholesaleItemInvalid got %v", err)
	}
}

func TestRecordSaleSkipsUntrackedSKU(t *testing.T) {
	svc, db := setupInventoryServiceTest(t)

	if err := db.Transaction(func(tx *gorm.DB) error {
		return svc.RecordSaleTx(tx, 77, 5, []commerce.LineItem{{SKU: "GLOW-SERUM", Quantity: 2}})
	}); err != nil {
		t.Fatalf("record sale failed: %v", err)
	}

	var count int64
	if err := db.Model(&models.InventoryTransaction{}).Count(&count).Error; err != nil {
		t.Fatalf("count transactions failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("untracked sku should not write transactions, count %d", count)
	}
}
