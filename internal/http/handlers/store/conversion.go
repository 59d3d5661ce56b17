package store

import (
	"strconv"

	"github.com/sampleloop/internal/http/handlers/shared"
	"github.com/sampleloop/internal/http/response"
	"github.com/sampleloop/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListConversions 分页查询归因到本门店的转化记录
func (h *Handler) ListConversions(c *gin.Context) {
	storeID, ok := getStoreID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = shared.NormalizePagination(page, pageSize)

	brandID, _ := strconv.ParseUint(c.Query("brand_id"), 10, 64)

	filter := repository.ConversionListFilter{
		Page:     page,
		PageSize: pageSize,
		StoreID:  storeID,
		BrandID:  uint(brandID),
	}
	if raw := c.Query("paid"); raw != "" {
		paid := raw == "true" || raw == "1"
		filter.Paid = &paid
	}

	conversions, total, err := h.ConversionRepo.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "conversion list failed", err)
		return
	}
	response.SuccessWithPage(c, conversions, response.BuildPagination(page, pageSize, total))
}
