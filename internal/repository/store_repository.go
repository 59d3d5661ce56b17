package repository

import (
	"errors"
	"strings"

	"github.com/sampleloop/internal/models"

	"gorm.io/gorm"
)

// StoreRepository 门店数据访问接口
type StoreRepository interface {
	GetByCode(code string) (*models.Store, error)
}

// GormStoreRepository GORM 门店仓储实现
type GormStoreRepository struct {
	db *gorm.DB
}

// NewStoreRepository 创建门店仓储
func NewStoreRepository(db *gorm.DB) *GormStoreRepository {
	return &GormStoreRepository{db: db}
}

// GetByCode 按门店编码获取门店
func (r *GormStoreRepository) GetByCode(code string) (*models.Store, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	var store models.Store
	if err := r.db.Where("code = ?", code).First(&store).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &store, nil
}
