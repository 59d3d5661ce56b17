package store

import (
	"strconv"
	"strings"

	"github.com/sampleloop/internal/http/handlers/shared"
	"github.com/sampleloop/internal/http/response"
	"github.com/sampleloop/internal/repository"

	"github.com/gin-gonic/gin"
)

// resolvePartnership 按 JWT 门店与 brand_id 查询参数定位合作关系
func (h *Handler) resolvePartnership(c *gin.Context, storeID uint) (uint, bool) {
	brandID, err := strconv.ParseUint(c.Query("brand_id"), 10, 64)
	if err != nil || brandID == 0 {
		respondError(c, response.CodeBadRequest, "brand_id required", nil)
		return 0, false
	}
	partnership, err := h.PartnershipRepo.GetByStoreAndBrand(storeID, uint(brandID))
	if err != nil {
		respondError(c, response.CodeInternal, "partnership lookup failed", err)
		return 0, false
	}
	if partnership == nil {
		respondError(c, response.CodeNotFound, "no partnership with this brand", nil)
		return 0, false
	}
	return partnership.ID, true
}

// GetLedgerBalance 查询门店在指定品牌下的积分余额
func (h *Handler) GetLedgerBalance(c *gin.Context) {
	storeID, ok := getStoreID(c)
	if !ok {
		return
	}
	partnershipID, ok := h.resolvePartnership(c, storeID)
	if !ok {
		return
	}

	balance, err := h.CreditLedgerService.GetBalance(partnershipID)
	if err != nil {
		respondError(c, response.CodeInternal, "balance fetch failed", err)
		return
	}
	response.Success(c, gin.H{
		"partnership_id": partnershipID,
		"balance":        balance.StringFixed(2),
	})
}

// ListLedgerTransactions 分页查询门店积分流水
func (h *Handler) ListLedgerTransactions(c *gin.Context) {
	storeID, ok := getStoreID(c)
	if !ok {
		return
	}
	partnershipID, ok := h.resolvePartnership(c, storeID)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = shared.NormalizePagination(page, pageSize)

	txns, total, err := h.CreditLedgerService.ListTransactions(repository.CreditTransactionListFilter{
		Page:          page,
		PageSize:      pageSize,
		PartnershipID: partnershipID,
		Type:          strings.TrimSpace(c.Query("type")),
		Reason:        strings.TrimSpace(c.Query("reason")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "transaction list failed", err)
		return
	}
	response.SuccessWithPage(c, txns, response.BuildPagination(page, pageSize, total))
}
