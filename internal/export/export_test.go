package export

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"eterno-store/internal/database"
	"eterno-store/internal/events"
	"eterno-store/internal/models"
	"eterno-store/internal/reports"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

func seeded(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenMemory()
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	rows := []any{
		&models.User{Username: "admin", Email: "admin@eterno.com", PasswordHash: "x", Role: models.RoleAdmin},
		&models.Product{Name: "Shirt", Price: 500, Stock: 3},
		&models.Sale{UserID: 1, TotalAmount: 400, PaymentMethod: models.PaymentCash, DiscountType: models.DiscountPWD, DiscountAmount: 100,
			Items: models.LineItems{{ProductID: 1, ProductName: "Shirt", Quantity: 1, Price: 500}}},
		&models.Order{UserID: 1, CustomerName: "ana", CustomerEmail: "ana@x.com", Subtotal: 500, ShippingFee: 60,
			TotalAmount: 560, PaymentMethod: models.PaymentCOD, Status: models.StatusCompleted},
	}
	for _, r := range rows {
		if err := db.Create(r).Error; err != nil {
			t.Fatalf("seed %T: %v", r, err)
		}
	}
	return db
}

func TestWriteWorkbookSheets(t *testing.T) {
	db := seeded(t)
	var buf bytes.Buffer
	if err := WriteWorkbook(context.Background(), db, &buf, reports.DefaultFormatter()); err != nil {
		t.Fatalf("write: %v", err)
	}

	book, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer book.Close()

	want := []string{SheetUsers, SheetProducts, SheetSales, SheetOrders}
	got := book.GetSheetList()
	if len(got) != len(want) {
		t.Fatalf("sheets: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sheet %d: got %s, want %s", i, got[i], want[i])
		}
	}

	sales, err := book.GetRows(SheetSales)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(sales) != 2 || sales[0][0] != "Sale_ID" || sales[1][4] != "pwd" {
		t.Errorf("sales sheet: %v", sales)
	}
	orders, _ := book.GetRows(SheetOrders)
	if len(orders) != 2 || orders[1][4] != "N/A" {
		t.Errorf("orders sheet should show N/A for a missing address: %v", orders)
	}
}

func TestLocalLocker(t *testing.T) {
	l := NewLocalLocker()
	ctx := context.Background()
	release, err := l.Lock(ctx, "k", time.Minute)
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	if _, err := l.Lock(ctx, "k", time.Minute); !errors.Is(err, ErrLocked) {
		t.Fatalf("second lock: got %v, want ErrLocked", err)
	}
	release()
	if _, err := l.Lock(ctx, "k", time.Minute); err != nil {
		t.Fatalf("lock after release: %v", err)
	}
}

func TestSnapshotSinkWritesFile(t *testing.T) {
	db := seeded(t)
	path := filepath.Join(t.TempDir(), "eterno_data.xlsx")
	locker := NewLocalLocker()
	sink := NewSnapshotSink(NewSnapshotter(db, path, reports.DefaultFormatter(), locker), nil)

	if err := sink.Handle(context.Background(), events.Event{Type: events.SaleCreated}); err != nil {
		t.Fatalf("handle: %v", err)
	}
	book, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open snapshot: %v", err)
	}
	book.Close()
}

func TestSnapshotSinkWaitsForLockHolder(t *testing.T) {
	db := seeded(t)
	path := filepath.Join(t.TempDir(), "eterno_data.xlsx")
	locker := NewLocalLocker()
	sink := NewSnapshotSink(NewSnapshotter(db, path, reports.DefaultFormatter(), locker), nil)
	sink.retryDelay = 10 * time.Millisecond

	release, err := locker.Lock(context.Background(), snapshotLockKey, time.Minute)
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	// committed while the other writer still holds the lock
	if err := db.Create(&models.Product{Name: "Late Jacket", Price: 900, Stock: 1}).Error; err != nil {
		t.Fatalf("create: %v", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- sink.Handle(context.Background(), events.Event{Type: events.ProductCreated})
	}()
	time.Sleep(50 * time.Millisecond)
	release()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("handle: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("sink never wrote after the lock was released")
	}

	book, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open snapshot: %v", err)
	}
	defer book.Close()
	rows, err := book.GetRows(SheetProducts)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	found := false
	for _, row := range rows {
		for _, cell := range row {
			if cell == "Late Jacket" {
				found = true
			}
		}
	}
	if !found {
		t.Fatalf("snapshot misses the product committed during the lock: %v", rows)
	}
}

func TestSnapshotSinkGivesUpWhenContextEnds(t *testing.T) {
	db := seeded(t)
	locker := NewLocalLocker()
	sink := NewSnapshotSink(NewSnapshotter(db, filepath.Join(t.TempDir(), "x.xlsx"), reports.DefaultFormatter(), locker), nil)
	sink.retryDelay = 5 * time.Millisecond

	release, _ := locker.Lock(context.Background(), snapshotLockKey, time.Minute)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	if err := sink.Handle(ctx, events.Event{Type: events.SaleCreated}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("got %v, want deadline exceeded", err)
	}
}

func TestPDFs(t *testing.T) {
	f := reports.DefaultFormatter()
	sale := reports.FromSale(models.Sale{ID: 12, TotalAmount: 400, PaymentMethod: models.PaymentCash,
		DiscountType: models.DiscountPWD, DiscountAmount: 100, CreatedAt: time.Now(),
		Items: models.LineItems{{ProductID: 1, ProductName: "Shirt", Quantity: 1, Price: 500}}}, "admin", f)
	order := reports.FromOrder(models.Order{ID: 34, CustomerName: "ana", CustomerEmail: "ana@x.com",
		CustomerAddress: "12 Rizal St", Subtotal: 500, ShippingFee: 60, TotalAmount: 460,
		PaymentMethod: models.PaymentGCash, Status: models.StatusPending, CreatedAt: time.Now()}, f)
	report := &reports.PeriodReport{Period: models.PeriodWeekly, Label: "Weekly", Transactions: []reports.Transaction{sale, order}}

	renders := map[string]func(*bytes.Buffer) error{
		"sale":   func(b *bytes.Buffer) error { return SaleReceiptPDF(b, sale, f) },
		"order":  func(b *bytes.Buffer) error { return OrderReceiptPDF(b, order, f) },
		"report": func(b *bytes.Buffer) error { return PeriodReportPDF(b, report, f) },
		"empty":  func(b *bytes.Buffer) error { return PeriodReportPDF(b, &reports.PeriodReport{Label: "Yearly"}, f) },
	}
	for name, render := range renders {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := render(&buf); err != nil {
				t.Fatalf("render: %v", err)
			}
			if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
				t.Errorf("output is not a PDF")
			}
		})
	}

	if got := pdfMoney(f, 1234.5); got != "PHP 1,234.50" {
		t.Errorf("pdfMoney: %q", got)
	}
}
