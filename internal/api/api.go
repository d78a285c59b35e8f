// Package api exposes the read side of the inventory over HTTP.
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/MrVishwakarma09/I-M-S-CLI/internal/api/handlers"
	"github.com/MrVishwakarma09/I-M-S-CLI/internal/api/middleware"
	"github.com/MrVishwakarma09/I-M-S-CLI/internal/receipt"
	"github.com/MrVishwakarma09/I-M-S-CLI/internal/service"
)

type Services struct {
	Accounts  *service.AccountService
	Suppliers *service.SupplierService
	Stock     *service.StockService
	History   *service.HistoryService
	Receipts  *receipt.Store
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())

	corsConfig := cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalized, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(string) bool { return true }
		} else if len(normalized) > 0 {
			corsConfig.AllowOrigins = normalized
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if services == nil || services.Accounts == nil {
		return router
	}

	apiGroup := router.Group("/api/v1", middleware.BasicAuth(services.Accounts))

	inventory := handlers.NewInventoryHandler(services.Suppliers, services.Stock)
	apiGroup.GET("/stock", inventory.ListStock)
	apiGroup.GET("/stock/:id", inventory.GetStock)
	apiGroup.GET("/suppliers", inventory.ListSuppliers)

	sales := handlers.NewSalesHandler(services.History, services.Receipts)
	apiGroup.GET("/sales/history", sales.GetHistory)
	bills := apiGroup.Group("/bills")
	{
		bills.GET("", sales.ListBills)
		bills.GET("/:name", sales.GetBill)
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		for _, part := range strings.Split(origin, ",") {
			trimmed := strings.TrimSpace(part)
			switch trimmed {
			case "":
			case "*":
				allowAll = true
			default:
				parsed = append(parsed, trimmed)
			}
		}
	}
	return parsed, allowAll
}
