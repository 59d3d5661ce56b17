package worker

import (
	"context"
	"encoding/json"

	"github.com/sampleloop/internal/logger"
	"github.com/sampleloop/internal/provider"
	"github.com/sampleloop/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskConversionNotice, c.handleConversionNotice)
	mux.HandleFunc(queue.TaskWholesaleVerifiedNotice, c.handleWholesaleVerifiedNotice)
}

// handleConversionNotice 处理转化入账通知。
// 通知是尽力而为的：载荷非法或记录缺失直接跳过，不触发 asynq 重试。
func (c *Consumer) handleConversionNotice(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.ConversionNoticePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_conversion_notice_unmarshal_failed", "error", err)
		return nil
	}
	if payload.ConversionID == 0 {
		logger.Debugw("worker_conversion_notice_skip_invalid_payload")
		return nil
	}
	conversion, err := c.ConversionRepo.GetByID(payload.ConversionID)
	if err != nil {
		logger.Warnw("worker_conversion_notice_fetch_failed", "conversion_id", payload.ConversionID, "error", err)
		return err
	}
	if conversion == nil {
		logger.Debugw("worker_conversion_notice_skip_not_found", "conversion_id", payload.ConversionID)
		return nil
	}
	logger.Infow("conversion_notice_sent",
		"conversion_id", conversion.ID,
		"brand_id", conversion.BrandID,
		"store_id", conversion.StoreID,
		"customer_id", conversion.CustomerID,
		"commission", conversion.CommissionAmount.String(),
		"days_to_conversion", conversion.DaysToConversion,
	)
	return nil
}

// handleWholesaleVerifiedNotice 处理补货收货确认通知
func (c *Consumer) handleWholesaleVerifiedNotice(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.WholesaleVerifiedNoticePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_wholesale_verified_notice_unmarshal_failed", "error", err)
		return nil
	}
	if payload.WholesaleOrderID == 0 {
		logger.Debugw("worker_wholesale_verified_notice_skip_invalid_payload")
		return nil
	}
	order, err := c.WholesaleRepo.GetByID(payload.WholesaleOrderID)
	if err != nil {
		logger.Warnw("worker_wholesale_verified_notice_fetch_failed", "wholesale_order_id", payload.WholesaleOrderID, "error", err)
		return err
	}
	if order == nil {
		logger.Debugw("worker_wholesale_verified_notice_skip_not_found", "wholesale_order_id", payload.WholesaleOrderID)
		return nil
	}
	logger.Infow("wholesale_verified_notice_sent",
		"wholesale_order_id", order.ID,
		"order_no", order.OrderNo,
		"store_id", order.StoreID,
		"brand_id", order.BrandID,
		"discrepancy_units", payload.DiscrepancyUnits,
	)
	return nil
}
