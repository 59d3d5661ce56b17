package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/sampleloop/internal/constants"
	"github.com/sampleloop/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WholesaleRepository 批发补货单数据访问接口
type WholesaleRepository interface {
	Create(order *models.WholesaleOrder) error
	GetByID(id uint) (*models.WholesaleOrder, error)
	GetByIDForUpdate(id uint) (*models.WholesaleOrder, error)
	GetByExternalOrderID(externalOrderID string) (*models.WholesaleOrder, error)
	Update(order *models.WholesaleOrder) error
	UpdateItem(item *models.WholesaleOrderItem) error
	UpdateStatus(id uint, status string, at time.Time) error
	List(filter WholesaleOrderListFilter) ([]models.WholesaleOrder, int64, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormWholesaleRepository
}

// GormWholesaleRepository GORM 批发补货单仓储实现
type GormWholesaleRepository struct {
	db *gorm.DB
}

// NewWholesaleRepository 创建批发补货单仓储
func NewWholesaleRepository(db *gorm.DB) *GormWholesaleRepository {
	return &GormWholesaleRepository{db: db}
}

// WithTx 绑定事务
func (r *GormWholesaleRepository) WithTx(tx *gorm.DB) *GormWholesaleRepository {
	if tx == nil {
		return r
	}
	return &GormWholesaleRepository{db: tx}
}

// Transaction 在数据库事务内执行
func (r *GormWholesaleRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// Create 创建补货单及行项目
func (r *GormWholesaleRepository) Create(order *models.WholesaleOrder) error {
	return r.db.Create(order).Error
}

// GetByID 按ID获取补货单（含行项目）
func (r *GormWholesaleRepository) GetByID(id uint) (*models.WholesaleOrder, error) {
	if id == 0 {
		return nil, nil
	}
	var order models.WholesaleOrder
	if err := r.db.Preload("Items").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByIDForUpdate 按ID加行锁获取补货单（含行项目，状态流转路径专用）
func (r *GormWholesaleRepository) GetByIDForUpdate(id uint) (*models.WholesaleOrder, error) {
	if id == 0 {
		return nil, nil
	}
	var order models.WholesaleOrder
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items").
		First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByExternalOrderID 按电商平台订单ID获取补货单（含行项目，webhook 匹配入口）
func (r *GormWholesaleRepository) GetByExternalOrderID(externalOrderID string) (*models.WholesaleOrder, error) {
	externalOrderID = strings.TrimSpace(externalOrderID)
	if externalOrderID == "" {
		return nil, nil
	}
	var order models.WholesaleOrder
	if err := r.db.Preload("Items").
		Where("external_order_id = ?", externalOrderID).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// Update 保存补货单
func (r *GormWholesaleRepository) Update(order *models.WholesaleOrder) error {
	return r.db.Save(order).Error
}

// UpdateItem 保存补货单行项目
func (r *GormWholesaleRepository) UpdateItem(item *models.WholesaleOrderItem) error {
	return r.db.Save(item).Error
}

// UpdateStatus 更新补货单状态并记录对应时间点
func (r *GormWholesaleRepository) UpdateStatus(id uint, status string, at time.Time) error {
	if id == 0 || strings.TrimSpace(status) == "" {
		return nil
	}
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}
	switch status {
	case constants.WholesaleStatusSubmitted:
		updates["submitted_at"] = at
	case constants.WholesaleStatusDelivered:
		updates["delivered_at"] = at
	case constants.WholesaleStatusVerified:
		updates["verified_at"] = at
	}
	return r.db.Model(&models.WholesaleOrder{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// List 分页查询补货单（含行项目）
func (r *GormWholesaleRepository) List(filter WholesaleOrderListFilter) ([]models.WholesaleOrder, int64, error) {
	query := r.db.Model(&models.WholesaleOrder{})
	if filter.StoreID != 0 {
		query = query.Where("store_id = ?", filter.StoreID)
	}
	if filter.BrandID != 0 {
		query = query.Where("brand_id = ?", filter.BrandID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var orders []models.WholesaleOrder
	if err := query.Preload("Items").Order("id desc").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}
