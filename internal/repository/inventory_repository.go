package repository

import (
	"errors"
	"strings"

	"github.com/sampleloop/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InventoryRepository 门店库存数据访问接口
type InventoryRepository interface {
	GetByStoreAndSKU(storeID uint, sku string) (*models.StoreInventory, error)
	GetByStoreAndSKUForUpdate(storeID uint, sku string) (*models.StoreInventory, error)
	ListByStore(storeID uint) ([]models.StoreInventory, error)
	Create(inventory *models.StoreInventory) error
	Update(inventory *models.StoreInventory) error
	CreateTransaction(txn *models.InventoryTransaction) error
	GetTransactionByReference(reference string) (*models.InventoryTransaction, error)
	ListTransactions(filter InventoryTransactionListFilter) ([]models.InventoryTransaction, int64, error)
	WithTx(tx *gorm.DB) *GormInventoryRepository
}

// GormInventoryRepository GORM 门店库存仓储实现
type GormInventoryRepository struct {
	db *gorm.DB
}

// NewInventoryRepository 创建门店库存仓储
func NewInventoryRepository(db *gorm.DB) *GormInventoryRepository {
	return &GormInventoryRepository{db: db}
}

// WithTx 绑定事务
func (r *GormInventoryRepository) WithTx(tx *gorm.DB) *GormInventoryRepository {
	if tx == nil {
		return r
	}
	return &GormInventoryRepository{db: tx}
}

// GetByStoreAndSKU 按门店与SKU获取库存行
func (r *GormInventoryRepository) GetByStoreAndSKU(storeID uint, sku string) (*models.StoreInventory, error) {
	return r.getByStoreAndSKU(r.db, storeID, sku)
}

// GetByStoreAndSKUForUpdate 按门店与SKU加行锁获取库存行（计数器变更路径专用）
func (r *GormInventoryRepository) GetByStoreAndSKUForUpdate(storeID uint, sku string) (*models.StoreInventory, error) {
	return r.getByStoreAndSKU(r.db.Clauses(clause.Locking{Strength: "UPDATE"}), storeID, sku)
}

func (r *GormInventoryRepository) getByStoreAndSKU(db *gorm.DB, storeID uint, sku string) (*models.StoreInventory, error) {
	sku = strings.TrimSpace(sku)
	if storeID == 0 || sku == "" {
		return nil, nil
	}
	var inventory models.StoreInventory
	if err := db.Where("store_id = ? AND sku = ?", storeID, sku).
		First(&inventory).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &inventory, nil
}

// ListByStore 查询门店全部库存行
func (r *GormInventoryRepository) ListByStore(storeID uint) ([]models.StoreInventory, error) {
	if storeID == 0 {
		return []models.StoreInventory{}, nil
	}
	var rows []models.StoreInventory
	if err := r.db.Where("store_id = ?", storeID).
		Order("sku asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Create 创建库存行
func (r *GormInventoryRepository) Create(inventory *models.StoreInventory) error {
	return r.db.Create(inventory).Error
}

// Update 更新库存行
func (r *GormInventoryRepository) Update(inventory *models.StoreInventory) error {
	return r.db.Save(inventory).Error
}

// CreateTransaction 追加库存流水
func (r *GormInventoryRepository) CreateTransaction(txn *models.InventoryTransaction) error {
	return r.db.Create(txn).Error
}

// GetTransactionByReference 按幂等参考号获取库存流水
func (r *GormInventoryRepository) GetTransactionByReference(reference string) (*models.InventoryTransaction, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, nil
	}
	var txn models.InventoryTransaction
	if err := r.db.Where("reference = ?", reference).First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

// ListTransactions 分页查询库存流水
func (r *GormInventoryRepository) ListTransactions(filter InventoryTransactionListFilter) ([]models.InventoryTransaction, int64, error) {
	query := r.db.Model(&models.InventoryTransaction{})
	if filter.StoreID != 0 {
		query = query.Where("store_id = ?", filter.StoreID)
	}
	if filter.SKU != "" {
		query = query.Where("sku = ?", filter.SKU)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var txns []models.InventoryTransaction
	if err := query.Order("id desc").Find(&txns).Error; err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}
