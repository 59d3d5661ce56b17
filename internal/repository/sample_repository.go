package repository

import (
	"errors"

	"github.com/sampleloop/internal/models"

	"gorm.io/gorm"
)

// SampleRepository 派样记录数据访问接口
type SampleRepository interface {
	GetLatestForCustomerBrand(customerID, brandID uint) (*models.SampleHistory, error)
}

// GormSampleRepository GORM 派样记录仓储实现
type GormSampleRepository struct {
	db *gorm.DB
}

// NewSampleRepository 创建派样记录仓储
func NewSampleRepository(db *gorm.DB) *GormSampleRepository {
	return &GormSampleRepository{db: db}
}

// GetLatestForCustomerBrand 获取顾客在指定品牌下最近一次派样
func (r *GormSampleRepository) GetLatestForCustomerBrand(customerID, brandID uint) (*models.SampleHistory, error) {
	if customerID == 0 || brandID == 0 {
		return nil, nil
	}
	var sample models.SampleHistory
	if err := r.db.Where("customer_id = ? AND brand_id = ?", customerID, brandID).
		Order("sampled_at DESC, id DESC").
		First(&sample).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sample, nil
}
