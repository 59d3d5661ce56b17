package store

import (
	"strconv"
	"strings"

	"github.com/sampleloop/internal/http/handlers/shared"
	"github.com/sampleloop/internal/http/response"
	"github.com/sampleloop/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListInventory 查询门店全部库存行
func (h *Handler) ListInventory(c *gin.Context) {
	storeID, ok := getStoreID(c)
	if !ok {
		return
	}
	rows, err := h.InventoryRepo.ListByStore(storeID)
	if err != nil {
		respondError(c, response.CodeInternal, "inventory list failed", err)
		return
	}
	response.Success(c, rows)
}

// ListInventoryTransactions 分页查询门店库存流水
func (h *Handler) ListInventoryTransactions(c *gin.Context) {
	storeID, ok := getStoreID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = shared.NormalizePagination(page, pageSize)

	txns, total, err := h.InventoryRepo.ListTransactions(repository.InventoryTransactionListFilter{
		Page:     page,
		PageSize: pageSize,
		StoreID:  storeID,
		SKU:      strings.TrimSpace(c.Query("sku")),
		Type:     strings.TrimSpace(c.Query("type")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "inventory transaction list failed", err)
		return
	}
	response.SuccessWithPage(c, txns, response.BuildPagination(page, pageSize, total))
}
