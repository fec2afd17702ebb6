package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"eterno-store/internal/export"
	"eterno-store/internal/middleware"
	"eterno-store/internal/reports"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type ResetRequest struct {
	Period string `json:"period" binding:"required"`
}

// --- GET: /api/admin/dashboard ---
func (h *Handler) Dashboard(c *gin.Context) {
	stats, err := h.reports.Dashboard(c.Request.Context(), middleware.CurrentPrincipal(c))
	if err != nil {
		h.fail(c, "Dashboard", err)
		return
	}
	ok(c, gin.H{"stats": stats})
}

// --- GET: unified POS + online ledger, newest first ---
func (h *Handler) ListOrders(c *gin.Context) {
	limit := queryInt(c, "limit", h.cfg.TransactionLimit)
	if limit > h.cfg.TransactionLimit {
		limit = h.cfg.TransactionLimit
	}
	list, err := h.reports.ListTransactions(c.Request.Context(), middleware.CurrentPrincipal(c), limit)
	if err != nil {
		h.fail(c, "ListOrders", err)
		return
	}
	ok(c, gin.H{"orders": list.Transactions, "totals": list.Totals})
}

func (h *Handler) GetOrder(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.fail(c, "GetOrder", err)
		return
	}
	tx, err := h.reports.GetTransaction(c.Request.Context(), middleware.CurrentPrincipal(c), id, reports.RecordType(c.Query("type")))
	if err != nil {
		h.fail(c, "GetOrder", err)
		return
	}
	ok(c, gin.H{"order": tx})
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		h.fail(c, "UpdateOrderStatus", err)
		return
	}
	var input StatusRequest
	if !h.bindJSON(c, "UpdateOrderStatus", &input) {
		return
	}
	order, err := h.shop.UpdateOrderStatus(c.Request.Context(), middleware.CurrentPrincipal(c), id, input.Status)
	if err != nil {
		h.fail(c, "UpdateOrderStatus", err)
		return
	}
	ok(c, gin.H{
		"message": fmt.Sprintf("Order %s is now %s", reports.OrderReference(order.ID), order.Status),
		"order":   reports.FromOrder(*order, h.reports.Formatter()),
	})
}

// --- GET: revenue since the overall checkpoint ---
func (h *Handler) Revenue(c *gin.Context) {
	summary, err := h.reports.Revenue(c.Request.Context(), middleware.CurrentPrincipal(c))
	if err != nil {
		h.fail(c, "Revenue", err)
		return
	}
	ok(c, gin.H{"revenue": summary})
}

func (h *Handler) Checkpoints(c *gin.Context) {
	cps, err := h.reports.Checkpoints(c.Request.Context(), middleware.CurrentPrincipal(c))
	if err != nil {
		h.fail(c, "Checkpoints", err)
		return
	}
	ok(c, gin.H{"checkpoints": cps})
}

// --- POST: start a new reporting window ---
func (h *Handler) ResetReport(c *gin.Context) {
	var input ResetRequest
	if !h.bindJSON(c, "ResetReport", &input) {
		return
	}
	cp, err := h.reports.Reset(c.Request.Context(), middleware.CurrentPrincipal(c), input.Period)
	if err != nil {
		h.fail(c, "ResetReport", err)
		return
	}
	ok(c, gin.H{
		"message":    fmt.Sprintf("%s report reset", reports.PeriodLabel(string(cp.Period))),
		"checkpoint": cp,
	})
}

func (h *Handler) ReportSummary(c *gin.Context) {
	report, err := h.reports.PeriodReport(c.Request.Context(), middleware.CurrentPrincipal(c), c.DefaultQuery("period", "weekly"))
	if err != nil {
		h.fail(c, "ReportSummary", err)
		return
	}
	ok(c, gin.H{"report": report})
}

func (h *Handler) ReportPDF(c *gin.Context) {
	report, err := h.reports.PeriodReport(c.Request.Context(), middleware.CurrentPrincipal(c), c.DefaultQuery("period", "weekly"))
	if err != nil {
		h.fail(c, "ReportPDF", err)
		return
	}
	var buf bytes.Buffer
	if err := export.PeriodReportPDF(&buf, report, h.reports.Formatter()); err != nil {
		h.fail(c, "ReportPDF", err)
		return
	}
	sendPDF(c, fmt.Sprintf("eterno_%s_report_%s.pdf", report.Period, time.Now().Format("20060102")), buf.Bytes())
}

// --- GET: inventory value grouped by category ---
func (h *Handler) StockValuation(c *gin.Context) {
	valuation, err := h.reports.StockValuation(c.Request.Context(), middleware.CurrentPrincipal(c))
	if err != nil {
		h.fail(c, "StockValuation", err)
		return
	}
	ok(c, gin.H{"valuation": valuation})
}

func (h *Handler) TopSelling(c *gin.Context) {
	top, err := h.reports.TopSelling(c.Request.Context(), middleware.CurrentPrincipal(c), queryInt(c, "limit", 5))
	if err != nil {
		h.fail(c, "TopSelling", err)
		return
	}
	ok(c, gin.H{"top_selling": top})
}

// --- GET: full workbook download ---
func (h *Handler) Export(c *gin.Context) {
	if err := middleware.CurrentPrincipal(c).RequireAdmin(); err != nil {
		h.fail(c, "Export", err)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteWorkbook(c.Request.Context(), h.db, &buf, h.reports.Formatter()); err != nil {
		h.fail(c, "Export", err)
		return
	}
	filename := fmt.Sprintf("eterno_export_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
