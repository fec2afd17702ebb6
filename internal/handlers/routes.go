package handlers

import (
	"eterno-store/internal/middleware"
	"eterno-store/internal/models"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts every endpoint on r.
func RegisterRoutes(r *gin.Engine, h *Handler) {
	r.GET("/health", h.Health)
	r.POST("/login", h.Login)
	r.POST("/register", h.Register)
	r.GET("/shop/products", h.ShopProducts)
	r.Static("/uploads", h.cfg.UploadDir)

	// navbar badge, works signed out too
	r.GET("/api/cart/count", middleware.OptionalAuth(h.tokens), h.CartCount)

	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(h.tokens))
	{
		api.GET("/me", h.Me)

		customer := api.Group("/")
		customer.Use(middleware.RequireRole(models.RoleCustomer))
		{
			customer.GET("/cart", h.Cart)
			customer.POST("/cart/add", h.AddToCart)
			customer.PUT("/cart/:id", h.UpdateCartItem)
			customer.DELETE("/cart/:id", h.RemoveCartItem)
			customer.POST("/checkout", h.Checkout)
			customer.GET("/orders", h.CustomerOrders)
			customer.GET("/orders/:id/receipt", h.OrderReceipt)
		}

		admin := api.Group("/admin")
		admin.Use(middleware.RequireRole(models.RoleAdmin))
		{
			admin.GET("/dashboard", h.Dashboard)
			admin.GET("/system/status", h.SystemStatus)

			admin.GET("/products", h.ListProducts)
			admin.POST("/products", h.CreateProduct)
			admin.PUT("/products/:id", h.UpdateProduct)
			admin.DELETE("/products/:id", h.DeleteProduct)
			admin.POST("/products/upload-image", h.UploadImage)
			admin.GET("/products/:id/orders", h.ProductOrders)

			admin.POST("/sales", h.CreateSale)
			admin.GET("/receipt/:id", h.SaleReceipt)

			admin.GET("/orders", h.ListOrders)
			admin.GET("/orders/:id", h.GetOrder)
			admin.PUT("/orders/:id/status", h.UpdateOrderStatus)

			admin.GET("/revenue", h.Revenue)
			admin.GET("/reports/checkpoints", h.Checkpoints)
			admin.POST("/reports/reset", h.ResetReport)
			admin.GET("/reports/summary", h.ReportSummary)
			admin.GET("/reports/pdf", h.ReportPDF)
			admin.GET("/reports/valuation", h.StockValuation)
			admin.GET("/reports/top-selling", h.TopSelling)
			admin.GET("/export", h.Export)

			admin.POST("/ask", h.AskAI)
		}
	}
}
