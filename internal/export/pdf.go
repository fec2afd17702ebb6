package export

import (
	"fmt"
	"io"
	"strings"

	"eterno-store/internal/reports"

	"github.com/go-pdf/fpdf"
)

// Core PDF fonts have no peso sign, so amounts carry the currency code.
const pdfCurrency = "PHP "

func pdfMoney(f reports.Formatter, v float64) string {
	f.Symbol = pdfCurrency
	return f.Money(v)
}

func newDocument(subtitle string) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(18, 18, 18)
	pdf.SetAutoPageBreak(true, 18)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 22)
	pdf.CellFormat(0, 10, "ETERNO", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 7, subtitle, "", 1, "C", false, 0, "")
	pdf.Ln(6)
	return pdf
}

func infoLine(pdf *fpdf.Fpdf, label, value string) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(35, 6, label, "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, value, "", 1, "L", false, 0, "")
}

var itemColumns = []struct {
	title string
	width float64
	align string
}{
	{"Item", 90, "L"},
	{"Qty", 20, "R"},
	{"Price", 32, "R"},
	{"Total", 32, "R"},
}

func itemTable(pdf *fpdf.Fpdf, tx reports.Transaction, f reports.Formatter) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(235, 235, 235)
	for _, c := range itemColumns {
		pdf.CellFormat(c.width, 7, c.title, "B", 0, c.align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range tx.Items {
		name := item.ProductName
		if name == "" {
			name = fmt.Sprintf("Product #%d", item.ProductID)
		}
		if len(name) > 45 {
			name = name[:45]
		}
		cells := []string{name, fmt.Sprint(item.Quantity), pdfMoney(f, item.Price), pdfMoney(f, item.Total())}
		for i, c := range itemColumns {
			pdf.CellFormat(c.width, 6, cells[i], "", 0, c.align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(3)
}

func totalLine(pdf *fpdf.Fpdf, label, value string, bold bool) {
	style := ""
	if bold {
		style = "B"
	}
	pdf.SetFont("Helvetica", style, 10)
	pdf.CellFormat(142, 6, label, "", 0, "R", false, 0, "")
	pdf.CellFormat(32, 6, value, "", 1, "R", false, 0, "")
}

// SaleReceiptPDF writes the receipt of a POS sale.
func SaleReceiptPDF(w io.Writer, tx reports.Transaction, f reports.Formatter) error {
	pdf := newDocument("Timeless Fashion - Receipt")
	infoLine(pdf, "Sale:", tx.Reference)
	infoLine(pdf, "Date:", tx.CreatedAtDisplay)
	infoLine(pdf, "Payment:", strings.ToUpper(tx.PaymentMethod))
	infoLine(pdf, "Cashier:", tx.ProcessedBy)
	pdf.Ln(4)

	itemTable(pdf, tx, f)
	totalLine(pdf, "Subtotal:", pdfMoney(f, tx.Subtotal), false)
	if tx.DiscountAmount > 0 && tx.DiscountType != nil {
		totalLine(pdf, fmt.Sprintf("Discount (%s):", *tx.DiscountType), "-"+pdfMoney(f, tx.DiscountAmount), false)
	}
	totalLine(pdf, "TOTAL:", pdfMoney(f, tx.TotalAmount), true)

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(0, 6, "Thank you for shopping at ETERNO!", "", 1, "C", false, 0, "")
	return pdf.Output(w)
}

// OrderReceiptPDF writes the receipt of an online order.
func OrderReceiptPDF(w io.Writer, tx reports.Transaction, f reports.Formatter) error {
	pdf := newDocument("Timeless Fashion - Order Receipt")
	infoLine(pdf, "Order:", tx.Reference)
	infoLine(pdf, "Date:", tx.CreatedAtDisplay)
	if tx.CustomerName != nil {
		infoLine(pdf, "Customer:", *tx.CustomerName)
	}
	if tx.CustomerEmail != nil {
		infoLine(pdf, "Email:", *tx.CustomerEmail)
	}
	infoLine(pdf, "Payment:", strings.ToUpper(tx.PaymentMethod))
	infoLine(pdf, "Status:", strings.ToUpper(tx.Status))
	if tx.CustomerAddress != nil && *tx.CustomerAddress != "" {
		addr := *tx.CustomerAddress
		if len(addr) > 60 {
			addr = addr[:60]
		}
		infoLine(pdf, "Address:", addr)
	}
	pdf.Ln(4)

	itemTable(pdf, tx, f)
	totalLine(pdf, "Subtotal:", pdfMoney(f, tx.Subtotal), false)
	if tx.DiscountAmount > 0 {
		totalLine(pdf, "Voucher:", "-"+pdfMoney(f, tx.DiscountAmount), false)
	}
	totalLine(pdf, "Shipping:", pdfMoney(f, tx.ShippingFee), false)
	totalLine(pdf, "TOTAL:", pdfMoney(f, tx.TotalAmount), true)
	return pdf.Output(w)
}

// PeriodReportPDF writes a weekly, monthly or yearly sales report.
func PeriodReportPDF(w io.Writer, r *reports.PeriodReport, f reports.Formatter) error {
	pdf := newDocument(r.Label + " Sales Report")
	infoLine(pdf, "From:", r.Start)
	infoLine(pdf, "To:", r.End)
	if r.ResetBased {
		infoLine(pdf, "Window:", "since last reset")
	} else {
		infoLine(pdf, "Window:", "rolling")
	}
	pdf.Ln(4)

	summary := [][2]string{
		{"Total revenue", pdfMoney(f, r.Revenue.Total)},
		{"Online orders", fmt.Sprintf("%s (%d)", pdfMoney(f, r.Revenue.FromOrders), r.Revenue.OrdersCount)},
		{"POS sales", fmt.Sprintf("%s (%d)", pdfMoney(f, r.Revenue.FromPOS), r.Revenue.POSCount)},
		{"Average order value", pdfMoney(f, r.Revenue.AvgOrderValue)},
		{"Discounts given", pdfMoney(f, r.Revenue.TotalDiscounts)},
		{"Shipping collected", pdfMoney(f, r.Revenue.TotalShipping)},
	}
	for _, row := range summary {
		infoLine(pdf, row[0]+":", row[1])
	}
	pdf.Ln(6)

	cols := []struct {
		title string
		width float64
		align string
	}{
		{"Reference", 28, "L"},
		{"Date", 44, "L"},
		{"Type", 24, "L"},
		{"Status", 26, "L"},
		{"Payment", 24, "L"},
		{"Total", 28, "R"},
	}
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(235, 235, 235)
	for _, c := range cols {
		pdf.CellFormat(c.width, 7, c.title, "B", 0, c.align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, tx := range r.Transactions {
		kind := "Online"
		if tx.RecordType == reports.RecordPOSSale {
			kind = "POS"
		}
		cells := []string{tx.Reference, tx.CreatedAtDisplay, kind, tx.Status, tx.PaymentMethod, pdfMoney(f, tx.TotalAmount)}
		for i, c := range cols {
			pdf.CellFormat(c.width, 6, cells[i], "", 0, c.align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	if len(r.Transactions) == 0 {
		pdf.SetFont("Helvetica", "I", 9)
		pdf.CellFormat(0, 6, "No transactions in this period.", "", 1, "C", false, 0, "")
	}
	return pdf.Output(w)
}
