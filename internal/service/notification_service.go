package service

import (
	"github.com/sampleloop/internal/logger"
	"github.com/sampleloop/internal/queue"
)

// NotificationService 通知服务。
// 只负责投递异步通知任务，投递失败记日志后吞掉，绝不影响记账主流程。
type NotificationService struct {
	queueClient *queue.Client
}

// NewNotificationService 创建通知服务
func NewNotificationService(queueClient *queue.Client) *NotificationService {
	return &NotificationService{queueClient: queueClient}
}

// NotifyConversionEarned 投递转化入账通知
func (s *NotificationService) NotifyConversionEarned(payload queue.ConversionNoticePayload) {
	if s == nil || s.queueClient == nil {
		return
	}
	if err := s.queueClient.EnqueueConversionNotice(payload); err != nil {
		logger.Warnw("conversion_notice_enqueue_failed",
			"conversion_id", payload.ConversionID,
			"partnership_id", payload.PartnershipID,
			"error", err,
		)
	}
}

// NotifyWholesaleVerified 投递补货收货确认通知
func (s *NotificationService) NotifyWholesaleVerified(payload queue.WholesaleVerifiedNoticePayload) {
	if s == nil || s.queueClient == nil {
		return
	}
	if err := s.queueClient.EnqueueWholesaleVerifiedNotice(payload); err != nil {
		logger.Warnw("wholesale_verified_notice_enqueue_failed",
			"wholesale_order_id", payload.WholesaleOrderID,
			"order_no", payload.OrderNo,
			"error", err,
		)
	}
}
