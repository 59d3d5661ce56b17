package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/sampleloop/internal/models"

	"gorm.io/gorm"
)

// ConversionRepository 转化记录数据访问接口
type ConversionRepository interface {
	Create(conversion *models.Conversion) error
	GetByID(id uint) (*models.Conversion, error)
	GetByBrandAndExternalOrder(brandID uint, externalOrderID string) (*models.Conversion, error)
	MarkPaid(id uint) error
	List(filter ConversionListFilter) ([]models.Conversion, int64, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormConversionRepository
}

// GormConversionRepository GORM 转化记录仓储实现
type GormConversionRepository struct {
	db *gorm.DB
}

// NewConversionRepository 创建转化记录仓储
func NewConversionRepository(db *gorm.DB) *GormConversionRepository {
	return &GormConversionRepository{db: db}
}

// WithTx 绑定事务
func (r *GormConversionRepository) WithTx(tx *gorm.DB) *GormConversionRepository {
	if tx == nil {
		return r
	}
	return &GormConversionRepository{db: tx}
}

// Transaction 在数据库事务内执行
func (r *GormConversionRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// Create 创建转化记录（(brand_id, external_order_id) 唯一索引兜底幂等）
func (r *GormConversionRepository) Create(conversion *models.Conversion) error {
	return r.db.Create(conversion).Error
}

// GetByID 按ID获取转化记录
func (r *GormConversionRepository) GetByID(id uint) (*models.Conversion, error) {
	if id == 0 {
		return nil, nil
	}
	var conversion models.Conversion
	if err := r.db.First(&conversion, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conversion, nil
}

// GetByBrandAndExternalOrder 按品牌与外部订单ID获取转化记录（幂等检查入口）
func (r *GormConversionRepository) GetByBrandAndExternalOrder(brandID uint, externalOrderID string) (*models.Conversion, error) {
	externalOrderID = strings.TrimSpace(externalOrderID)
	if brandID == 0 || externalOrderID == "" {
		return nil, nil
	}
	var conversion models.Conversion
	if err := r.db.Where("brand_id = ? AND external_order_id = ?", brandID, externalOrderID).
		First(&conversion).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conversion, nil
}

// MarkPaid 标记佣金已入账
func (r *GormConversionRepository) MarkPaid(id uint) error {
	if id == 0 {
		return nil
	}
	return r.db.Model(&models.Conversion{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"paid":       true,
			"updated_at": time.Now(),
		}).Error
}

// List 分页查询转化记录
func (r *GormConversionRepository) List(filter ConversionListFilter) ([]models.Conversion, int64, error) {
	query := r.db.Model(&models.Conversion{})
	if filter.BrandID != 0 {
		query = query.Where("brand_id = ?", filter.BrandID)
	}
	if filter.StoreID != 0 {
		query = query.Where("store_id = ?", filter.StoreID)
	}
	if filter.CustomerID != 0 {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.Attributed != nil {
		query = query.Where("attributed = ?", *filter.Attributed)
	}
	if filter.Paid != nil {
		query = query.Where("paid = ?", *filter.Paid)
	}
	if filter.From != nil {
		query = query.Where("purchased_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("purchased_at <= ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var conversions []models.Conversion
	if err := query.Order("id desc").Find(&conversions).Error; err != nil {
		return nil, 0, err
	}
	return conversions, total, nil
}
