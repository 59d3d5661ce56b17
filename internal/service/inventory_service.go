package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sampleloop/internal/commerce"
	"github.com/sampleloop/internal/constants"
	"github.com/sampleloop/internal/logger"
	"github.com/sampleloop/internal/models"
	"github.com/sampleloop/internal/repository"

	"gorm.io/gorm"
)

// InventoryService 门店库存服务。
// 批发补货走两段式入库：下单先记在途（incoming），确认收货后转在库（on_hand）；
// 归因成功的零售订单按行项目扣减在库。所有计数器变更都落库存流水。
type InventoryService struct {
	inventoryRepo repository.InventoryRepository
	skuRepo       repository.RetailSKURepository
}

// NewInventoryService 创建门店库存服务
func NewInventoryService(inventoryRepo repository.InventoryRepository, skuRepo repository.RetailSKURepository) *InventoryService {
	return &InventoryService{
		inventoryRepo: inventoryRepo,
		skuRepo:       skuRepo,
	}
}

// counterDelta 单次计数器变更
type counterDelta struct {
	StoreID          uint
	SKU              string
	Counter          string // on_hand / incoming
	Delta            int
	TxnType          string
	Reference        string // 幂等参考号
	WholesaleOrderID *uint
	ConversionID     *uint
	Note             string
}

// ResolveRetailSKU 将平台行项目解析为零售SKU映射：
// 平台变体ID → 平台商品ID → 批发装SKU，按序首个命中生效。
func (s *InventoryService) ResolveRetailSKU(brandID uint, item commerce.LineItem) (*models.RetailSKU, error) {
	if item.VariantID != 0 {
		sku, err := s.skuRepo.GetByWholesaleVariantID(brandID, strconv.FormatInt(item.VariantID, 10))
		if err != nil || sku != nil {
			return sku, err
		}
	}
	if item.ProductID != 0 {
		sku, err := s.skuRepo.GetByWholesaleProductID(brandID, strconv.FormatInt(item.ProductID, 10))
		if err != nil || sku != nil {
			return sku, err
		}
	}
	if item.SKU != "" {
		sku, err := s.skuRepo.GetByWholesaleSKU(brandID, item.SKU)
		if err != nil || sku != nil {
			return sku, err
		}
	}
	return nil, nil
}

// StageWholesaleOrderedTx 批发下单后在事务内为各行项目增加在途数量
func (s *InventoryService) StageWholesaleOrderedTx(tx *gorm.DB, order *models.WholesaleOrder) error {
	if order == nil {
		return ErrWholesaleOrderNotFound
	}
	for _, item := range order.Items {
		orderID := order.ID
		if err := s.applyDeltaTx(tx, counterDelta{
			StoreID:          order.StoreID,
			SKU:              item.RetailSKU,
			Counter:          constants.InventoryCounterIncoming,
			Delta:            item.ExpectedUnits,
			TxnType:          constants.InventoryTxnTypeWholesaleOrdered,
			Reference:        fmt.Sprintf("wholesale:%d:ordered:%s", order.ID, item.RetailSKU),
			WholesaleOrderID: &orderID,
		}); err != nil {
			return err
		}
	}
	return nil
}

// RecordWholesaleIncomingTx 平台发货时在事务内记录到货在途流水（不改计数器）
func (s *InventoryService) RecordWholesaleIncomingTx(tx *gorm.DB, order *models.WholesaleOrder) error {
	if order == nil {
		return ErrWholesaleOrderNotFound
	}
	for _, item := range order.Items {
		orderID := order.ID
		if err := s.applyDeltaTx(tx, counterDelta{
			StoreID:          order.StoreID,
			SKU:              item.RetailSKU,
			Counter:          constants.InventoryCounterIncoming,
			Delta:            0,
			TxnType:          constants.InventoryTxnTypeWholesaleIn,
			Reference:        fmt.Sprintf("wholesale:%d:incoming:%s", order.ID, item.RetailSKU),
			WholesaleOrderID: &orderID,
		}); err != nil {
			return err
		}
	}
	return nil
}

// ReceiveWholesaleItemTx 确认收货时在事务内将单个行项目由在途转为在库。
// 在途按预期数量清零，在库按实收数量增加；差异在补货单行项目上记录。
func (s *InventoryService) ReceiveWholesaleItemTx(tx *gorm.DB, order *models.WholesaleOrder, item *models.WholesaleOrderItem, receivedUnits int) error {
	if order == nil || item == nil {
		return ErrWholesaleItemInvalid
	}
	if receivedUnits < 0 {
		return ErrWholesaleItemInvalid
	}
	orderID := order.ID
	if err := s.applyDeltaTx(tx, counterDelta{
		StoreID:          order.StoreID,
		SKU:              item.RetailSKU,
		Counter:          constants.InventoryCounterIncoming,
		Delta:            -item.ExpectedUnits,
		TxnType:          constants.InventoryTxnTypeWholesaleReceive,
		Reference:        fmt.Sprintf("wholesale:%d:received_incoming:%s", order.ID, item.RetailSKU),
		WholesaleOrderID: &orderID,
	}); err != nil {
		return err
	}
	return s.applyDeltaTx(tx, counterDelta{
		StoreID:          order.StoreID,
		SKU:              item.RetailSKU,
		Counter:          constants.InventoryCounterOnHand,
		Delta:            receivedUnits,
		TxnType:          constants.InventoryTxnTypeWholesaleReceive,
		Reference:        fmt.Sprintf("wholesale:%d:received_on_hand:%s", order.ID, item.RetailSKU),
		WholesaleOrderID: &orderID,
	})
}

// RecordSaleTx 归因成功后在事务内按行项目扣减归因门店在库数量。
// 未建库存档案的SKU跳过，不阻断归因。
func (s *InventoryService) RecordSaleTx(tx *gorm.DB, storeID uint, conversionID uint, items []commerce.LineItem) error {
	for _, item := range items {
		sku := strings.TrimSpace(item.SKU)
		if sku == "" || item.Quantity <= 0 {
			continue
		}
		existing, err := s.inventoryRepo.WithTx(tx).GetByStoreAndSKU(storeID, sku)
		if err != nil {
			return err
		}
		if existing == nil {
			logger.Debugw("inventory_sale_sku_untracked",
				"store_id", storeID,
				"sku", sku,
			)
			continue
		}
		convID := conversionID
		if err := s.applyDeltaTx(tx, counterDelta{
			StoreID:      storeID,
			SKU:          sku,
			Counter:      constants.InventoryCounterOnHand,
			Delta:        -item.Quantity,
			TxnType:      constants.InventoryTxnTypeSale,
			Reference:    fmt.Sprintf("conversion:%d:sale:%s", conversionID, sku),
			ConversionID: &convID,
		}); err != nil {
			return err
		}
	}
	return nil
}

// ListByStore 查询门店库存
func (s *InventoryService) ListByStore(storeID uint) ([]models.StoreInventory, error) {
	return s.inventoryRepo.ListByStore(storeID)
}

// ListTransactions 分页查询库存流水
func (s *InventoryService) ListTransactions(filter repository.InventoryTransactionListFilter) ([]models.InventoryTransaction, int64, error) {
	return s.inventoryRepo.ListTransactions(filter)
}

// applyDeltaTx 在事务内应用一次计数器变更并落流水。
// 参考号幂等：重复投递直接跳过。
func (s *InventoryService) applyDeltaTx(tx *gorm.DB, delta counterDelta) error {
	if tx == nil {
		return ErrInventoryUpdateFailed
	}
	if delta.StoreID == 0 || strings.TrimSpace(delta.SKU) == "" {
		return ErrInventoryUpdateFailed
	}

	repo := s.inventoryRepo.WithTx(tx)

	existing, err := repo.GetTransactionByReference(delta.Reference)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	now := time.Now()
	inventory, err := repo.GetByStoreAndSKUForUpdate(delta.StoreID, delta.SKU)
	if err != nil {
		return err
	}
	if inventory == nil {
		inventory = &models.StoreInventory{
			StoreID:   delta.StoreID,
			SKU:       delta.SKU,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := repo.Create(inventory); err != nil {
			return ErrInventoryUpdateFailed
		}
	}

	var balanceAfter int
	switch delta.Counter {
	case constants.InventoryCounterIncoming:
		inventory.QuantityIncoming += delta.Delta
		if inventory.QuantityIncoming < 0 {
			inventory.QuantityIncoming = 0
		}
		balanceAfter = inventory.QuantityIncoming
	default:
		inventory.QuantityOnHand += delta.Delta
		balanceAfter = inventory.QuantityOnHand
	}
	inventory.QuantityAvailable = inventory.QuantityOnHand - inventory.QuantityReserved
	inventory.UpdatedAt = now
	if err := repo.Update(inventory); err != nil {
		return ErrInventoryUpdateFailed
	}

	txn := &models.InventoryTransaction{
		StoreID:          delta.StoreID,
		SKU:              delta.SKU,
		Type:             delta.TxnType,
		Counter:          delta.Counter,
		Quantity:         delta.Delta,
		BalanceAfter:     balanceAfter,
		Reference:        delta.Reference,
		WholesaleOrderID: delta.WholesaleOrderID,
		ConversionID:     delta.ConversionID,
		Note:             delta.Note,
		CreatedAt:        now,
	}
	if err := repo.CreateTransaction(txn); err != nil {
		return ErrInventoryUpdateFailed
	}
	return nil
}
