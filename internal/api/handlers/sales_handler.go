package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MrVishwakarma09/I-M-S-CLI/internal/receipt"
	"github.com/MrVishwakarma09/I-M-S-CLI/internal/service"
)

type SalesHandler struct {
	history  *service.HistoryService
	receipts *receipt.Store
}

func NewSalesHandler(history *service.HistoryService, receipts *receipt.Store) *SalesHandler {
	return &SalesHandler{history: history, receipts: receipts}
}

// GetHistory returns the per-bill profit summaries and the net outcome.
func (h *SalesHandler) GetHistory(c *gin.Context) {
	account, ok := currentAccount(c)
	if !ok {
		return
	}
	report, err := h.history.Report(c.Request.Context(), account)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// ListBills returns the receipt file names, newest first.
func (h *SalesHandler) ListBills(c *gin.Context) {
	account, ok := currentAccount(c)
	if !ok {
		return
	}
	names, err := h.receipts.List(account.Username)
	if err != nil {
		errorResponse(c, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"bills": names, "count": len(names)})
}

func (h *SalesHandler) GetBill(c *gin.Context) {
	account, ok := currentAccount(c)
	if !ok {
		return
	}
	content, err := h.receipts.Read(account.Username, c.Param("name"))
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.String(http.StatusOK, content)
}
