package public

import (
	"errors"
	"io"
	"net/http"

	"github.com/sampleloop/internal/commerce"
	"github.com/sampleloop/internal/http/handlers/shared"
	"github.com/sampleloop/internal/http/response"
	"github.com/sampleloop/internal/service"

	"github.com/gin-gonic/gin"
)

// 平台单次投递载荷上限（1MB），防止异常大包拖垮解析。
const maxWebhookBodyBytes = 1 << 20

// CommerceWebhook 接收电商平台订单事件回调。
// 鉴权失败（品牌未知/签名不符）返回 401 让平台停止重试敏感投递；
// 业务上的"未归因"是正常结果，始终回 200 以确认收货。
func (h *Handler) CommerceWebhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		shared.RespondError(c, response.CodeBadRequest, "read payload failed", err)
		return
	}

	result, err := h.WebhookService.Process(c.Request.Context(), service.WebhookInput{
		Domain:    c.GetHeader(commerce.HeaderDomain),
		Topic:     c.GetHeader(commerce.HeaderTopic),
		Signature: c.GetHeader(commerce.HeaderSignature),
		Body:      body,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBrandNotFound), errors.Is(err, service.ErrSignatureInvalid):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		case errors.Is(err, service.ErrPayloadInvalid), errors.Is(err, service.ErrExternalOrderEmpty):
			shared.RespondError(c, response.CodeBadRequest, "invalid payload", nil)
		default:
			shared.RespondError(c, response.CodeInternal, "webhook processing failed", err)
		}
		return
	}

	response.Success(c, gin.H{
		"status": result.Status,
		"reason": result.Reason,
	})
}
