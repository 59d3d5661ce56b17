package repository

import (
	"github.com/sampleloop/internal/models"

	"gorm.io/gorm"
)

// WebhookEventRepository webhook 审计日志数据访问接口
type WebhookEventRepository interface {
	Create(event *models.WebhookEvent) error
	List(filter WebhookEventListFilter) ([]models.WebhookEvent, int64, error)
}

// GormWebhookEventRepository GORM webhook 审计日志仓储实现
type GormWebhookEventRepository struct {
	db *gorm.DB
}

// NewWebhookEventRepository 创建 webhook 审计日志仓储
func NewWebhookEventRepository(db *gorm.DB) *GormWebhookEventRepository {
	return &GormWebhookEventRepository{db: db}
}

// Create 写入审计日志（只追加，失败不阻断主流程）
func (r *GormWebhookEventRepository) Create(event *models.WebhookEvent) error {
	return r.db.Create(event).Error
}

// List 分页查询审计日志
func (r *GormWebhookEventRepository) List(filter WebhookEventListFilter) ([]models.WebhookEvent, int64, error) {
	query := r.db.Model(&models.WebhookEvent{})
	if filter.BrandID != 0 {
		query = query.Where("brand_id = ?", filter.BrandID)
	}
	if filter.Topic != "" {
		query = query.Where("topic = ?", filter.Topic)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ExternalOrderID != "" {
		query = query.Where("external_order_id = ?", filter.ExternalOrderID)
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

	var events []models.WebhookEvent
	if err := query.Order("id desc").Find(&events).Error; err != nil {
		return nil, 0, err
	}
	return events, total, nil
}
