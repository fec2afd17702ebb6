// Package export renders store data to files: the Excel data snapshot and
// PDF receipts and reports.
package export

import (
	"context"
	"fmt"
	"io"
	"strings"

	"eterno-store/internal/models"
	"eterno-store/internal/reports"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const (
	SheetUsers    = "Users"
	SheetProducts = "Products"
	SheetSales    = "POS_Sales"
	SheetOrders   = "Customer_Orders"
)

type sheet struct {
	name    string
	headers []string
	rows    [][]any
}

func itemsJSON(items models.LineItems) string {
	v, err := items.Value()
	if err != nil {
		return "[]"
	}
	s, _ := v.(string)
	return s
}

func loadSheets(ctx context.Context, db *gorm.DB, f reports.Formatter) ([]sheet, error) {
	db = db.WithContext(ctx)

	var users []models.User
	if err := db.Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	var products []models.Product
	if err := db.Order("id").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	var sales []models.Sale
	if err := db.Order("id").Find(&sales).Error; err != nil {
		return nil, fmt.Errorf("load sales: %w", err)
	}
	var orders []models.Order
	if err := db.Order("id").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}

	us := sheet{name: SheetUsers, headers: []string{"ID", "Username", "Email", "Role", "Created"}}
	for _, u := range users {
		us.rows = append(us.rows, []any{u.ID, u.Username, u.Email, string(u.Role), f.Display(u.CreatedAt)})
	}

	ps := sheet{name: SheetProducts, headers: []string{"ID", "Name", "Description", "Price", "Stock", "Category", "Image_URL", "Created"}}
	for _, p := range products {
		ps.rows = append(ps.rows, []any{p.ID, p.Name, p.Description, p.Price, p.Stock, p.Category, p.ImageURL, f.Display(p.CreatedAt)})
	}

	ss := sheet{name: SheetSales, headers: []string{"Sale_ID", "User_ID", "Total_Amount", "Payment_Method", "Discount_Type", "Discount_Amount", "Items", "Date"}}
	for _, s := range sales {
		discount := string(s.DiscountType)
		if discount == "" {
			discount = "None"
		}
		ss.rows = append(ss.rows, []any{s.ID, s.UserID, s.TotalAmount, string(s.PaymentMethod), discount, s.DiscountAmount, itemsJSON(s.Items), f.Display(s.CreatedAt)})
	}

	ord := sheet{name: SheetOrders, headers: []string{"Order_ID", "User_ID", "Customer_Name", "Customer_Email", "Customer_Address", "Subtotal", "Shipping_Fee", "Total_Amount", "Payment_Method", "Status", "Items", "Purchase_Date"}}
	for _, o := range orders {
		address := o.CustomerAddress
		if strings.TrimSpace(address) == "" {
			address = "N/A"
		}
		ord.rows = append(ord.rows, []any{o.ID, o.UserID, o.CustomerName, o.CustomerEmail, address, o.Subtotal, o.ShippingFee, o.TotalAmount, string(o.PaymentMethod), string(o.Status), itemsJSON(o.Items), f.Display(o.CreatedAt)})
	}

	return []sheet{us, ps, ss, ord}, nil
}

// BuildWorkbook loads every table into a four-sheet workbook. The caller
// closes the returned file.
func BuildWorkbook(ctx context.Context, db *gorm.DB, f reports.Formatter) (*excelize.File, error) {
	sheets, err := loadSheets(ctx, db, f)
	if err != nil {
		return nil, err
	}

	book := excelize.NewFile()
	for i, s := range sheets {
		if i == 0 {
			if err := book.SetSheetName("Sheet1", s.name); err != nil {
				book.Close()
				return nil, err
			}
		} else if _, err := book.NewSheet(s.name); err != nil {
			book.Close()
			return nil, err
		}

		header := make([]any, len(s.headers))
		for j, h := range s.headers {
			header[j] = h
		}
		if err := book.SetSheetRow(s.name, "A1", &header); err != nil {
			book.Close()
			return nil, err
		}
		for r, row := range s.rows {
			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				book.Close()
				return nil, err
			}
			if err := book.SetSheetRow(s.name, cell, &row); err != nil {
				book.Close()
				return nil, err
			}
		}
	}
	return book, nil
}

// WriteWorkbook streams a fresh workbook to w.
func WriteWorkbook(ctx context.Context, db *gorm.DB, w io.Writer, f reports.Formatter) error {
	book, err := BuildWorkbook(ctx, db, f)
	if err != nil {
		return err
	}
	defer book.Close()
	return book.Write(w)
}
