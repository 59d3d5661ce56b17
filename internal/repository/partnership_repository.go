package repository

import (
	"errors"
	"strings"

	"github.com/sampleloop/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PartnershipRepository 合作关系数据访问接口
type PartnershipRepository interface {
	GetByID(id uint) (*models.BrandPartnership, error)
	GetByIDForUpdate(id uint) (*models.BrandPartnership, error)
	GetByStoreAndBrand(storeID, brandID uint) (*models.BrandPartnership, error)
	Update(partnership *models.BrandPartnership) error
	CreateTransaction(txn *models.CreditTransaction) error
	GetTransactionByReference(reference string) (*models.CreditTransaction, error)
	ListTransactions(filter CreditTransactionListFilter) ([]models.CreditTransaction, int64, error)
	SumTransactionAmounts(partnershipID uint) (decimal.Decimal, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormPartnershipRepository
}

// GormPartnershipRepository GORM 合作关系仓储实现
type GormPartnershipRepository struct {
	db *gorm.DB
}

// NewPartnershipRepository 创建合作关系仓储
func NewPartnershipRepository(db *gorm.DB) *GormPartnershipRepository {
	return &GormPartnershipRepository{db: db}
}

// WithTx 绑定事务
func (r *GormPartnershipRepository) WithTx(tx *gorm.DB) *GormPartnershipRepository {
	if tx == nil {
		return r
	}
	return &GormPartnershipRepository{db: tx}
}

// Transaction 在数据库事务内执行
func (r *GormPartnershipRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// GetByID 按ID获取合作关系
func (r *GormPartnershipRepository) GetByID(id uint) (*models.BrandPartnership, error) {
	if id == 0 {
		return nil, nil
	}
	var partnership models.BrandPartnership
	if err := r.db.First(&partnership, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &partnership, nil
}

// GetByIDForUpdate 按ID加行锁获取合作关系（记账路径专用）
func (r *GormPartnershipRepository) GetByIDForUpdate(id uint) (*models.BrandPartnership, error) {
	if id == 0 {
		return nil, nil
	}
	var partnership models.BrandPartnership
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&partnership, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &partnership, nil
}

// GetByStoreAndBrand 按门店与品牌获取合作关系
func (r *GormPartnershipRepository) GetByStoreAndBrand(storeID, brandID uint) (*models.BrandPartnership, error) {
	if storeID == 0 || brandID == 0 {
		return nil, nil
	}
	var partnership models.BrandPartnership
	if err := r.db.Where("store_id = ? AND brand_id = ?", storeID, brandID).
		First(&partnership).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &partnership, nil
}

// Update 更新合作关系
func (r *GormPartnershipRepository) Update(partnership *models.BrandPartnership) error {
	return r.db.Save(partnership).Error
}

// CreateTransaction 追加积分流水
func (r *GormPartnershipRepository) CreateTransaction(txn *models.CreditTransaction) error {
	return r.db.Create(txn).Error
}

// GetTransactionByReference 按幂等参考号获取积分流水
func (r *GormPartnershipRepository) GetTransactionByReference(reference string) (*models.CreditTransaction, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, nil
	}
	var txn models.CreditTransaction
	if err := r.db.Where("reference = ?", reference).First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

// ListTransactions 分页查询积分流水
func (r *GormPartnershipRepository) ListTransactions(filter CreditTransactionListFilter) ([]models.CreditTransaction, int64, error) {
	query := r.db.Model(&models.CreditTransaction{})
	if filter.PartnershipID != 0 {
		query = query.Where("partnership_id = ?", filter.PartnershipID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Reason != "" {
		query = query.Where("reason = ?", filter.Reason)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var txns []models.CreditTransaction
	if err := query.Order("id desc").Find(&txns).Error; err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}

// SumTransactionAmounts 汇总合作关系全部流水金额（仅用于对账校验，不在热路径使用）
func (r *GormPartnershipRepository) SumTransactionAmounts(partnershipID uint) (decimal.Decimal, error) {
	if partnershipID == 0 {
		return decimal.Zero, nil
	}
	var sum *string
	if err := r.db.Model(&models.CreditTransaction{}).
		Where("partnership_id = ?", partnershipID).
		Select("CAST(SUM(amount) AS TEXT)").
		Scan(&sum).Error; err != nil {
		return decimal.Zero, err
	}
	if sum == nil || strings.TrimSpace(*sum) == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(strings.TrimSpace(*sum))
}
