package repository

import (
	"errors"
	"strings"

	"github.com/sampleloop/internal/models"

	"gorm.io/gorm"
)

// RetailSKURepository 零售SKU数据访问接口
type RetailSKURepository interface {
	GetByWholesaleVariantID(brandID uint, variantID string) (*models.RetailSKU, error)
	GetByWholesaleProductID(brandID uint, productID string) (*models.RetailSKU, error)
	GetByWholesaleSKU(brandID uint, wholesaleSKU string) (*models.RetailSKU, error)
}

// GormRetailSKURepository GORM 零售SKU仓储实现
type GormRetailSKURepository struct {
	db *gorm.DB
}

// NewRetailSKURepository 创建零售SKU仓储
func NewRetailSKURepository(db *gorm.DB) *GormRetailSKURepository {
	return &GormRetailSKURepository{db: db}
}

// GetByWholesaleVariantID 按批发装平台变体ID获取
func (r *GormRetailSKURepository) GetByWholesaleVariantID(brandID uint, variantID string) (*models.RetailSKU, error) {
	return r.firstWhere(brandID, "wholesale_variant_id = ?", variantID)
}

// GetByWholesaleProductID 按批发装平台商品ID获取
func (r *GormRetailSKURepository) GetByWholesaleProductID(brandID uint, productID string) (*models.RetailSKU, error) {
	return r.firstWhere(brandID, "wholesale_product_id = ?", productID)
}

// GetByWholesaleSKU 按批发装SKU编码获取
func (r *GormRetailSKURepository) GetByWholesaleSKU(brandID uint, wholesaleSKU string) (*models.RetailSKU, error) {
	return r.firstWhere(brandID, "wholesale_sku = ?", wholesaleSKU)
}

func (r *GormRetailSKURepository) firstWhere(brandID uint, cond string, value string) (*models.RetailSKU, error) {
	value = strings.TrimSpace(value)
	if brandID == 0 || value == "" {
		return nil, nil
	}
	var sku models.RetailSKU
	if err := r.db.Where("brand_id = ?", brandID).Where(cond, value).
		First(&sku).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sku, nil
}
