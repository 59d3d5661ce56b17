package store

import (
	"errors"

	"github.com/sampleloop/internal/http/handlers/shared"
	"github.com/sampleloop/internal/http/response"
	"github.com/sampleloop/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondError(c *gin.Context, code int, msg string, err error) {
	shared.RespondError(c, code, msg, err)
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

var wholesaleCommonErrorRules = []mappedHandlerError{
	{target: service.ErrWholesaleOrderNotFound, code: response.CodeNotFound, msg: "wholesale order not found"},
	{target: service.ErrWholesaleOrderEmpty, code: response.CodeBadRequest, msg: "order items required"},
	{target: service.ErrWholesaleItemInvalid, code: response.CodeBadRequest, msg: "invalid order item"},
	{target: service.ErrWholesaleStatusInvalid, code: response.CodeBadRequest, msg: "order status does not allow this operation"},
	{target: service.ErrWholesaleAlreadyVerified, code: response.CodeBadRequest, msg: "order already verified"},
	{target: service.ErrSKUMappingNotFound, code: response.CodeBadRequest, msg: "unknown wholesale sku"},
	{target: service.ErrPartnershipNotFound, code: response.CodeBadRequest, msg: "no partnership with this brand"},
}
