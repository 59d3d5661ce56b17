package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/sampleloop/internal/models"

	"gorm.io/gorm"
)

// CustomerRepository 顾客数据访问接口
type CustomerRepository interface {
	GetByMemberNo(brandID uint, memberNo string) (*models.Customer, error)
	GetByExternalID(brandID uint, externalID string) (*models.Customer, error)
	GetByStoreAndContact(brandID, storeID uint, phone, email string) (*models.Customer, error)
	GetByContact(brandID uint, phone, email string) (*models.Customer, error)
	LinkExternalID(customerID uint, externalID string) error
	UpdateStage(customerID uint, stage string) error
	WithTx(tx *gorm.DB) *GormCustomerRepository
}

// GormCustomerRepository GORM 顾客仓储实现
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository 创建顾客仓储
func NewCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCustomerRepository) WithTx(tx *gorm.DB) *GormCustomerRepository {
	if tx == nil {
		return r
	}
	return &GormCustomerRepository{db: tx}
}

// GetByMemberNo 按品牌与会员编号获取顾客
func (r *GormCustomerRepository) GetByMemberNo(brandID uint, memberNo string) (*models.Customer, error) {
	memberNo = strings.TrimSpace(memberNo)
	if brandID == 0 || memberNo == "" {
		return nil, nil
	}
	var customer models.Customer
	if err := r.db.Where("brand_id = ? AND member_no = ?", brandID, memberNo).
		First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

// GetByExternalID 按品牌与电商平台顾客ID获取顾客
func (r *GormCustomerRepository) GetByExternalID(brandID uint, externalID string) (*models.Customer, error) {
	externalID = strings.TrimSpace(externalID)
	if brandID == 0 || externalID == "" {
		return nil, nil
	}
	var customer models.Customer
	if err := r.db.Where("brand_id = ? AND external_customer_id = ?", brandID, externalID).
		First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

// GetByStoreAndContact 按品牌、门店与联系方式（手机号或邮箱）获取顾客
func (r *GormCustomerRepository) GetByStoreAndContact(brandID, storeID uint, phone, email string) (*models.Customer, error) {
	if brandID == 0 || storeID == 0 {
		return nil, nil
	}
	query := r.db.Where("brand_id = ? AND store_id = ?", brandID, storeID)
	query = applyContactMatch(query, phone, email)
	if query == nil {
		return nil, nil
	}
	var customer models.Customer
	if err := query.Order("id asc").First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

// GetByContact 按品牌与联系方式（手机号或邮箱）获取顾客
func (r *GormCustomerRepository) GetByContact(brandID uint, phone, email string) (*models.Customer, error) {
	if brandID == 0 {
		return nil, nil
	}
	query := applyContactMatch(r.db.Where("brand_id = ?", brandID), phone, email)
	if query == nil {
		return nil, nil
	}
	var customer models.Customer
	if err := query.Order("id asc").First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

// applyContactMatch 追加手机号/邮箱匹配条件；两者皆空时返回 nil。
func applyContactMatch(query *gorm.DB, phone, email string) *gorm.DB {
	phone = strings.TrimSpace(phone)
	email = strings.ToLower(strings.TrimSpace(email))
	switch {
	case phone != "" && email != "":
		return query.Where("(phone = ? OR lower(email) = ?)", phone, email)
	case phone != "":
		return query.Where("phone = ?", phone)
	case email != "":
		return query.Where("lower(email) = ?", email)
	default:
		return nil
	}
}

// LinkExternalID 回填电商平台顾客ID
func (r *GormCustomerRepository) LinkExternalID(customerID uint, externalID string) error {
	externalID = strings.TrimSpace(externalID)
	if customerID == 0 || externalID == "" {
		return nil
	}
	return r.db.Model(&models.Customer{}).
		Where("id = ? AND external_customer_id IS NULL", customerID).
		Updates(map[string]interface{}{
			"external_customer_id": externalID,
			"updated_at":           time.Now(),
		}).Error
}

// UpdateStage 更新顾客生命周期阶段
func (r *GormCustomerRepository) UpdateStage(customerID uint, stage string) error {
	if customerID == 0 || strings.TrimSpace(stage) == "" {
		return nil
	}
	return r.db.Model(&models.Customer{}).
		Where("id = ?", customerID).
		Updates(map[string]interface{}{
			"stage":      stage,
			"updated_at": time.Now(),
		}).Error
}
