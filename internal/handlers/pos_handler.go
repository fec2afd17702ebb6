package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"eterno-store/internal/export"
	"eterno-store/internal/middleware"
	"eterno-store/internal/pricing"
	"eterno-store/internal/reports"
	"eterno-store/internal/shop"

	"github.com/gin-gonic/gin"
)

// --- POST: POS counter sale ---
func (h *Handler) CreateSale(c *gin.Context) {
	var input shop.SaleRequest
	if !h.bindJSON(c, "CreateSale", &input) {
		return
	}
	sale, err := h.shop.CreateSale(c.Request.Context(), middleware.CurrentPrincipal(c), input)
	if err != nil {
		h.fail(c, "CreateSale", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success":         true,
		"message":         "Sale completed successfully!",
		"sale_id":         sale.ID,
		"reference":       reports.SaleReference(sale.ID),
		"subtotal":        pricing.Round2(sale.Items.Subtotal()),
		"discount_amount": sale.DiscountAmount,
		"final_total":     sale.TotalAmount,
	})
}

func (h *Handler) SaleReceipt(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.fail(c, "SaleReceipt", err)
		return
	}
	sale, cashier, err := h.shop.GetSale(c.Request.Context(), middleware.CurrentPrincipal(c), id)
	if err != nil {
		h.fail(c, "SaleReceipt", err)
		return
	}

	f := h.reports.Formatter()
	tx := reports.FromSale(*sale, cashier, f)
	var buf bytes.Buffer
	if err := export.SaleReceiptPDF(&buf, tx, f); err != nil {
		h.fail(c, "SaleReceipt", err)
		return
	}
	sendPDF(c, fmt.Sprintf("receipt_%s.pdf", tx.Reference), buf.Bytes())
}
