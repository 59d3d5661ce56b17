package queue

import (
	"encoding/json"

	"github.com/sampleloop/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskConversionNotice 转化入账通知任务
	TaskConversionNotice = constants.TaskConversionNotice
	// TaskWholesaleVerifiedNotice 补货收货确认通知任务
	TaskWholesaleVerifiedNotice = constants.TaskWholesaleVerifiedNotice
)

// ConversionNoticePayload 转化入账通知任务载荷
type ConversionNoticePayload struct {
	ConversionID  uint   `json:"conversion_id"`
	BrandID       uint   `json:"brand_id"`
	StoreID       uint   `json:"store_id"`
	CustomerID    uint   `json:"customer_id"`
	PartnershipID uint   `json:"partnership_id"`
	Commission    string `json:"commission"`
}

// WholesaleVerifiedNoticePayload 补货收货确认通知任务载荷
type WholesaleVerifiedNoticePayload struct {
	WholesaleOrderID uint   `json:"wholesale_order_id"`
	OrderNo          string `json:"order_no"`
	StoreID          uint   `json:"store_id"`
	BrandID          uint   `json:"brand_id"`
	DiscrepancyUnits int    `json:"discrepancy_units"`
}

// NewConversionNoticeTask 创建转化入账通知任务
func NewConversionNoticeTask(payload ConversionNoticePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskConversionNotice, body), nil
}

// NewWholesaleVerifiedNoticeTask 创建补货收货确认通知任务
func NewWholesaleVerifiedNoticeTask(payload WholesaleVerifiedNoticePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskWholesaleVerifiedNotice, body), nil
}
