package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/MrVishwakarma09/I-M-S-CLI/internal/domain"
	"github.com/MrVishwakarma09/I-M-S-CLI/internal/service"
)

type InventoryHandler struct {
	suppliers *service.SupplierService
	stock     *service.StockService
}

func NewInventoryHandler(suppliers *service.SupplierService, stock *service.StockService) *InventoryHandler {
	return &InventoryHandler{suppliers: suppliers, stock: stock}
}

// ListStock returns every stock record of the caller.
func (h *InventoryHandler) ListStock(c *gin.Context) {
	account, ok := currentAccount(c)
	if !ok {
		return
	}
	items, err := h.stock.ListStock(c.Request.Context(), account.ID)
	if err != nil {
		errorResponse(c, err)
		return
	}
	if items == nil {
		items = []domain.StockItem{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

func (h *InventoryHandler) GetStock(c *gin.Context) {
	account, ok := currentAccount(c)
	if !ok {
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		errorResponse(c, domain.Invalid("item id %q is not a positive integer", c.Param("id")))
		return
	}
	item, err := h.stock.GetStock(c.Request.Context(), account.ID, id)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *InventoryHandler) ListSuppliers(c *gin.Context) {
	account, ok := currentAccount(c)
	if !ok {
		return
	}
	suppliers, err := h.suppliers.ListSuppliers(c.Request.Context(), account.ID)
	if err != nil {
		errorResponse(c, err)
		return
	}
	if suppliers == nil {
		suppliers = []domain.Supplier{}
	}
	c.JSON(http.StatusOK, gin.H{"suppliers": suppliers, "count": len(suppliers)})
}
