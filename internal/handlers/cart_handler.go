package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"eterno-store/internal/export"
	"eterno-store/internal/middleware"
	"eterno-store/internal/reports"
	"eterno-store/internal/shop"

	"github.com/gin-gonic/gin"
)

type AddToCartRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity"`
}

type UpdateCartRequest struct {
	Change int `json:"change" binding:"required"`
}

func (h *Handler) Cart(c *gin.Context) {
	view, err := h.shop.Cart(c.Request.Context(), middleware.CurrentPrincipal(c))
	if err != nil {
		h.fail(c, "Cart", err)
		return
	}
	ok(c, gin.H{"cart": view})
}

// CartCount is polled by the navbar, anonymous callers just see 0.
func (h *Handler) CartCount(c *gin.Context) {
	p := middleware.CurrentPrincipal(c)
	if !p.Authenticated() {
		ok(c, gin.H{"count": 0})
		return
	}
	count, err := h.shop.CartCount(c.Request.Context(), p)
	if err != nil {
		h.fail(c, "CartCount", err)
		return
	}
	ok(c, gin.H{"count": count})
}

func (h *Handler) AddToCart(c *gin.Context) {
	var input AddToCartRequest
	if !h.bindJSON(c, "AddToCart", &input) {
		return
	}
	if input.Quantity == 0 {
		input.Quantity = 1
	}
	item, err := h.shop.AddToCart(c.Request.Context(), middleware.CurrentPrincipal(c), input.ProductID, input.Quantity)
	if err != nil {
		h.fail(c, "AddToCart", err)
		return
	}
	ok(c, gin.H{"message": "Item added to cart", "item": item})
}

func (h *Handler) UpdateCartItem(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.fail(c, "UpdateCartItem", err)
		return
	}
	var input UpdateCartRequest
	if !h.bindJSON(c, "UpdateCartItem", &input) {
		return
	}
	item, err := h.shop.UpdateCartItem(c.Request.Context(), middleware.CurrentPrincipal(c), id, input.Change)
	if err != nil {
		h.fail(c, "UpdateCartItem", err)
		return
	}
	if item == nil {
		ok(c, gin.H{"message": "Item removed from cart", "removed": true})
		return
	}
	ok(c, gin.H{"message": "Cart updated", "item": item})
}

func (h *Handler) RemoveCartItem(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.fail(c, "RemoveCartItem", err)
		return
	}
	if err := h.shop.RemoveCartItem(c.Request.Context(), middleware.CurrentPrincipal(c), id); err != nil {
		h.fail(c, "RemoveCartItem", err)
		return
	}
	ok(c, gin.H{"message": "Item removed from cart"})
}

// --- POST: online checkout ---
func (h *Handler) Checkout(c *gin.Context) {
	var input shop.CheckoutRequest
	if !h.bindJSON(c, "Checkout", &input) {
		return
	}
	order, err := h.shop.Checkout(c.Request.Context(), middleware.CurrentPrincipal(c), input)
	if err != nil {
		h.fail(c, "Checkout", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success":      true,
		"message":      "Order placed successfully!",
		"order_id":     order.ID,
		"reference":    reports.OrderReference(order.ID),
		"subtotal":     order.Subtotal,
		"shipping_fee": order.ShippingFee,
		"total_amount": order.TotalAmount,
		"status":       order.Status,
	})
}

func (h *Handler) CustomerOrders(c *gin.Context) {
	orders, err := h.shop.CustomerOrders(c.Request.Context(), middleware.CurrentPrincipal(c))
	if err != nil {
		h.fail(c, "CustomerOrders", err)
		return
	}
	f := h.reports.Formatter()
	out := make([]reports.Transaction, 0, len(orders))
	for _, o := range orders {
		out = append(out, reports.FromOrder(o, f))
	}
	ok(c, gin.H{"orders": out})
}

// --- GET: PDF receipt of the caller's own order ---
func (h *Handler) OrderReceipt(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.fail(c, "OrderReceipt", err)
		return
	}
	order, err := h.shop.GetOwnOrder(c.Request.Context(), middleware.CurrentPrincipal(c), id)
	if err != nil {
		h.fail(c, "OrderReceipt", err)
		return
	}

	f := h.reports.Formatter()
	tx := reports.FromOrder(*order, f)
	var buf bytes.Buffer
	if err := export.OrderReceiptPDF(&buf, tx, f); err != nil {
		h.fail(c, "OrderReceipt", err)
		return
	}
	sendPDF(c, fmt.Sprintf("receipt_%s.pdf", tx.Reference), buf.Bytes())
}

func sendPDF(c *gin.Context, filename string, body []byte) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/pdf", body)
}
