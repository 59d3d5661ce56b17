package repository

import (
	"errors"
	"strings"

	"github.com/sampleloop/internal/models"

	"gorm.io/gorm"
)

// BrandRepository 品牌数据访问接口
type BrandRepository interface {
	GetByCommerceDomain(domain string) (*models.Brand, error)
}

// GormBrandRepository GORM 品牌仓储实现
type GormBrandRepository struct {
	db *gorm.DB
}

// NewBrandRepository 创建品牌仓储
func NewBrandRepository(db *gorm.DB) *GormBrandRepository {
	return &GormBrandRepository{db: db}
}

// GetByCommerceDomain 按电商店铺域名获取品牌
func (r *GormBrandRepository) GetByCommerceDomain(domain string) (*models.Brand, error) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return nil, nil
	}
	var brand models.Brand
	if err := r.db.Where("commerce_domain = ?", domain).First(&brand).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &brand, nil
}
