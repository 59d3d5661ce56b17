package store

import (
	"strconv"
	"strings"

	"github.com/sampleloop/internal/http/handlers/shared"
	"github.com/sampleloop/internal/http/response"
	"github.com/sampleloop/internal/models"
	"github.com/sampleloop/internal/repository"
	"github.com/sampleloop/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// WholesaleItemRequest 补货单行项目请求
type WholesaleItemRequest struct {
	WholesaleSKU      string `json:"wholesale_sku"`
	ExternalProductID string `json:"external_product_id"`
	ExternalVariantID string `json:"external_variant_id"`
	Boxes             int    `json:"boxes" binding:"required"`
	UnitPrice         string `json:"unit_price" binding:"required"`
}

// WholesaleCreateRequest 创建补货单请求
type WholesaleCreateRequest struct {
	BrandID           uint                   `json:"brand_id" binding:"required"`
	ExternalOrderID   string                 `json:"external_order_id"`
	FulfillmentDomain string                 `json:"fulfillment_domain"`
	UseCredit         bool                   `json:"use_credit"`
	Notes             string                 `json:"notes"`
	Items             []WholesaleItemRequest `json:"items" binding:"required"`
}

// WholesaleVerifyItemRequest 收货确认行项目请求
type WholesaleVerifyItemRequest struct {
	ItemID        uint   `json:"item_id" binding:"required"`
	ReceivedUnits *int   `json:"received_units" binding:"required"`
	Notes         string `json:"notes"`
}

// WholesaleVerifyRequest 收货确认请求
type WholesaleVerifyRequest struct {
	Items []WholesaleVerifyItemRequest `json:"items" binding:"required"`
}

// CreateWholesaleOrder 创建补货单
func (h *Handler) CreateWholesaleOrder(c *gin.Context) {
	storeID, ok := getStoreID(c)
	if !ok {
		return
	}
	var req WholesaleCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	items := make([]service.WholesaleItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		unitPrice, err := decimal.NewFromString(strings.TrimSpace(item.UnitPrice))
		if err != nil {
			respondError(c, response.CodeBadRequest, "invalid unit_price", err)
			return
		}
		items = append(items, service.WholesaleItemInput{
			WholesaleSKU:      item.WholesaleSKU,
			ExternalProductID: item.ExternalProductID,
			ExternalVariantID: item.ExternalVariantID,
			Boxes:             item.Boxes,
			UnitPrice:         models.NewMoneyFromDecimal(unitPrice),
		})
	}

	order, err := h.WholesaleService.Create(service.WholesaleCreateInput{
		StoreID:           storeID,
		BrandID:           req.BrandID,
		ExternalOrderID:   req.ExternalOrderID,
		FulfillmentDomain: req.FulfillmentDomain,
		UseCredit:         req.UseCredit,
		Notes:             req.Notes,
		Items:             items,
	})
	if err != nil {
		respondWithMappedError(c, err, wholesaleCommonErrorRules, response.CodeInternal, "wholesale order create failed")
		return
	}
	response.Success(c, order)
}

// GetWholesaleOrder 查询门店自己的补货单详情
func (h *Handler) GetWholesaleOrder(c *gin.Context) {
	storeID, ok := getStoreID(c)
	if !ok {
		return
	}
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeBadRequest, "invalid order id", nil)
		return
	}
	order, err := h.WholesaleService.GetForStore(uint(orderID), storeID)
	if err != nil {
		respondWithMappedError(c, err, wholesaleCommonErrorRules, response.CodeInternal, "wholesale order fetch failed")
		return
	}
	response.Success(c, order)
}

// ListWholesaleOrders 分页查询门店补货单
func (h *Handler) ListWholesaleOrders(c *gin.Context) {
	storeID, ok := getStoreID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = shared.NormalizePagination(page, pageSize)

	brandID, _ := strconv.ParseUint(c.Query("brand_id"), 10, 64)

	orders, total, err := h.WholesaleService.List(repository.WholesaleOrderListFilter{
		Page:     page,
		PageSize: pageSize,
		StoreID:  storeID,
		BrandID:  uint(brandID),
		Status:   strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "wholesale order list failed", err)
		return
	}
	response.SuccessWithPage(c, orders, response.BuildPagination(page, pageSize, total))
}

// VerifyWholesaleOrder 门店确认收货
func (h *Handler) VerifyWholesaleOrder(c *gin.Context) {
	storeID, ok := getStoreID(c)
	if !ok {
		return
	}
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeBadRequest, "invalid order id", nil)
		return
	}
	var req WholesaleVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid request body", err)
		return
	}

	items := make([]service.WholesaleVerifyItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		if item.ReceivedUnits == nil {
			respondError(c, response.CodeBadRequest, "received_units required", nil)
			return
		}
		items = append(items, service.WholesaleVerifyItemInput{
			ItemID:        item.ItemID,
			ReceivedUnits: *item.ReceivedUnits,
			Notes:         item.Notes,
		})
	}

	order, err := h.WholesaleService.Verify(service.WholesaleVerifyInput{
		OrderID: uint(orderID),
		StoreID: storeID,
		Items:   items,
	})
	if err != nil {
		respondWithMappedError(c, err, wholesaleCommonErrorRules, response.CodeInternal, "wholesale order verify failed")
		return
	}
	response.Success(c, order)
}
