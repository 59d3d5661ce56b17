package store

import (
	"errors"

	"github.com/sampleloop/internal/http/response"
	"github.com/sampleloop/internal/service"

	"github.com/gin-gonic/gin"
)

// TokenRequest 门店换取 token 请求
type TokenRequest struct {
	StoreCode string `json:"store_code" binding:"required"`
	APIKey    string `json:"api_key" binding:"required"`
}

// IssueToken 门店用 API Key 换取 JWT
func (h *Handler) IssueToken(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "store_code and api_key required", err)
		return
	}

	store, token, expiresAt, err := h.StoreAuthService.IssueToken(req.StoreCode, req.APIKey)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondError(c, response.CodeUnauthorized, "invalid store credentials", nil)
			return
		}
		respondError(c, response.CodeInternal, "token issue failed", err)
		return
	}

	response.Success(c, gin.H{
		"token":      token,
		"expires_at": expiresAt,
		"store": gin.H{
			"id":   store.ID,
			"code": store.Code,
			"name": store.Name,
		},
	})
}
