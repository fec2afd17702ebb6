package reports

import (
	"context"
	"errors"
	"math"
	"time"

	"eterno-store/internal/apperr"
	"eterno-store/internal/auth"
	"eterno-store/internal/database"
	"eterno-store/internal/events"
	"eterno-store/internal/models"
	"eterno-store/internal/pricing"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service answers the admin reporting questions over both ledgers. Every
// method re-checks that the caller is an admin.
type Service struct {
	db     *gorm.DB
	fmt    Formatter
	now    func() time.Time
	events events.Publisher
}

func NewService(db *gorm.DB, f Formatter) *Service {
	return &Service{db: db, fmt: f, now: time.Now, events: events.Nop{}}
}

func (s *Service) WithPublisher(p events.Publisher) *Service {
	if p != nil {
		s.events = p
	}
	return s
}

// WithClock replaces the service clock.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Formatter() Formatter { return s.fmt }

func (s *Service) checkpoint(ctx context.Context, period models.Period) (*models.ReportCheckpoint, error) {
	var cp models.ReportCheckpoint
	err := s.db.WithContext(ctx).Where("period = ?", period).First(&cp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Internal("Failed to read report checkpoint", err)
	}
	return &cp, nil
}

// baseline is the overall checkpoint window; open when none was recorded.
func (s *Service) baseline(ctx context.Context) (database.Window, error) {
	cp, err := s.checkpoint(ctx, models.PeriodOverall)
	if err != nil || cp == nil {
		return database.Window{}, err
	}
	return database.Window{Start: cp.LastResetAt}, nil
}

// fetch loads both ledgers inside w newest first. With limit > 0 each ledger
// is cut to limit rows, which still contains the top limit of the merge.
func (s *Service) fetch(ctx context.Context, w database.Window, limit int) ([]models.Order, []models.Sale, Totals, error) {
	var totals Totals
	db := s.db.WithContext(ctx)

	if err := w.Scope(db.Model(&models.Order{})).Count(&totals.CustomerOrders).Error; err != nil {
		return nil, nil, totals, apperr.Internal("Failed to count orders", err)
	}
	if err := w.Scope(db.Model(&models.Sale{})).Count(&totals.POSSales).Error; err != nil {
		return nil, nil, totals, apperr.Internal("Failed to count sales", err)
	}
	totals.Combined = totals.CustomerOrders + totals.POSSales

	orderQ := w.Scope(db.Model(&models.Order{})).Order("created_at desc").Order("id desc")
	saleQ := w.Scope(db.Model(&models.Sale{})).Order("created_at desc").Order("id desc")
	if limit > 0 {
		orderQ = orderQ.Limit(limit)
		saleQ = saleQ.Limit(limit)
	}

	var orders []models.Order
	if err := orderQ.Find(&orders).Error; err != nil {
		return nil, nil, totals, apperr.Internal("Failed to fetch orders", err)
	}
	var sales []models.Sale
	if err := saleQ.Find(&sales).Error; err != nil {
		return nil, nil, totals, apperr.Internal("Failed to fetch sales", err)
	}
	return orders, sales, totals, nil
}

func (s *Service) cashiers(ctx context.Context, sales []models.Sale) (map[uint]string, error) {
	names := make(map[uint]string)
	if len(sales) == 0 {
		return names, nil
	}
	seen := make(map[uint]bool)
	var ids []uint
	for _, sale := range sales {
		if !seen[sale.UserID] {
			seen[sale.UserID] = true
			ids = append(ids, sale.UserID)
		}
	}
	var users []models.User
	if err := s.db.WithContext(ctx).Select("id", "username").Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, apperr.Internal("Failed to load cashiers", err)
	}
	for _, u := range users {
		names[u.ID] = u.Username
	}
	return names, nil
}

// ListTransactions returns the merged POS/online ledger since the overall
// baseline, newest first, capped at limit after the merge.
func (s *Service) ListTransactions(ctx context.Context, p auth.Principal, limit int) (*TransactionList, error) {
	if err := p.RequireAdmin(); err != nil {
		return nil, err
	}
	w, err := s.baseline(ctx)
	if err != nil {
		return nil, err
	}
	orders, sales, totals, err := s.fetch(ctx, w, limit)
	if err != nil {
		return nil, err
	}
	names, err := s.cashiers(ctx, sales)
	if err != nil {
		return nil, err
	}
	return &TransactionList{
		Transactions: Merge(orders, sales, names, limit, s.fmt),
		Totals:       totals,
	}, nil
}

// GetTransaction loads one record. An empty recordType looks in the order
// ledger first, then the sale ledger.
func (s *Service) GetTransaction(ctx context.Context, p auth.Principal, id uint, recordType RecordType) (*Transaction, error) {
	if err := p.RequireAdmin(); err != nil {
		return nil, err
	}
	if recordType != "" && recordType != RecordCustomerOrder && recordType != RecordPOSSale {
		return nil, apperr.Validation("Invalid record type")
	}
	db := s.db.WithContext(ctx)

	if recordType == "" || recordType == RecordCustomerOrder {
		var o models.Order
		err := db.First(&o, id).Error
		if err == nil {
			t := FromOrder(o, s.fmt)
			return &t, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Internal("Failed to load order", err)
		}
	}
	if recordType == "" || recordType == RecordPOSSale {
		var sale models.Sale
		err := db.First(&sale, id).Error
		if err == nil {
			names, err := s.cashiers(ctx, []models.Sale{sale})
			if err != nil {
				return nil, err
			}
			t := FromSale(sale, names[sale.UserID], s.fmt)
			return &t, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Internal("Failed to load sale", err)
		}
	}
	return nil, apperr.NotFound("Transaction not found")
}

type RevenueSummary struct {
	Total          float64 `json:"total"`
	FromOrders     float64 `json:"from_orders"`
	FromPOS        float64 `json:"from_pos"`
	OrdersCount    int64   `json:"orders_count"`
	POSCount       int64   `json:"pos_count"`
	AvgOrderValue  float64 `json:"avg_order_value"`
	TotalDiscounts float64 `json:"total_discounts"`
	TotalShipping  float64 `json:"total_shipping"`
	Since          string  `json:"since,omitempty"`
}

func summarize(t *database.LedgerTotals) RevenueSummary {
	total := t.POSRevenue + t.OrderRevenue
	count := t.POSCount + t.OrderCount
	var avg float64
	if count > 0 {
		avg = total / float64(count)
	}
	return RevenueSummary{
		Total:          pricing.Round2(total),
		FromOrders:     pricing.Round2(t.OrderRevenue),
		FromPOS:        pricing.Round2(t.POSRevenue),
		OrdersCount:    t.OrderCount,
		POSCount:       t.POSCount,
		AvgOrderValue:  pricing.Round2(avg),
		TotalDiscounts: pricing.Round2(t.POSDiscounts + math.Max(0, t.OrderGross-t.OrderRevenue)),
		TotalShipping:  pricing.Round2(t.OrderShipping),
	}
}

// Revenue sums both ledgers since the overall baseline. Cancelled orders do
// not count as revenue.
func (s *Service) Revenue(ctx context.Context, p auth.Principal) (*RevenueSummary, error) {
	if err := p.RequireAdmin(); err != nil {
		return nil, err
	}
	w, err := s.baseline(ctx)
	if err != nil {
		return nil, err
	}
	totals, err := database.GetLedgerTotals(ctx, s.db, w)
	if err != nil {
		return nil, apperr.Internal("Failed to calculate revenue", err)
	}
	summary := summarize(totals)
	if !w.Start.IsZero() {
		summary.Since = s.fmt.Display(w.Start)
	}
	return &summary, nil
}

// RevenueBetween sums both ledgers over an explicit window.
func (s *Service) RevenueBetween(ctx context.Context, p auth.Principal, start, end time.Time) (*RevenueSummary, error) {
	if err := p.RequireAdmin(); err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, apperr.Validation("End date must not be before start date")
	}
	totals, err := database.GetLedgerTotals(ctx, s.db, database.Window{Start: start, End: end})
	if err != nil {
		return nil, apperr.Internal("Failed to calculate revenue", err)
	}
	summary := summarize(totals)
	return &summary, nil
}

type DashboardStats struct {
	TotalProducts  int64   `json:"total_products"`
	TotalCustomers int64   `json:"total_customers"`
	TotalRevenue   float64 `json:"total_revenue"`
	TotalOrders    int64   `json:"total_orders"`
}

func (s *Service) Dashboard(ctx context.Context, p auth.Principal) (*DashboardStats, error) {
	if err := p.RequireAdmin(); err != nil {
		return nil, err
	}
	var stats DashboardStats
	db := s.db.WithContext(ctx)
	if err := db.Model(&models.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, apperr.Internal("Failed to count products", err)
	}
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleCustomer).Count(&stats.TotalCustomers).Error; err != nil {
		return nil, apperr.Internal("Failed to count customers", err)
	}

	rev, err := s.Revenue(ctx, p)
	if err != nil {
		return nil, err
	}
	stats.TotalRevenue = rev.Total
	stats.TotalOrders = rev.OrdersCount + rev.POSCount
	return &stats, nil
}

// Reset moves the named period's baseline to now. The overall baseline is
// always moved to the same instant, which also resets dashboard totals.
func (s *Service) Reset(ctx context.Context, p auth.Principal, period string) (*CheckpointView, error) {
	if err := p.RequireAdmin(); err != nil {
		return nil, err
	}
	key, err := normalizeResetPeriod(period)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	keys := []models.Period{key}
	if key != models.PeriodOverall {
		keys = append(keys, models.PeriodOverall)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, k := range keys {
			cp := models.ReportCheckpoint{Period: k, LastResetAt: now}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "period"}},
				DoUpdates: clause.AssignmentColumns([]string{"last_reset_at"}),
			}).Create(&cp).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Internal("Failed to reset reports", err)
	}

	cp, err := s.checkpoint(ctx, key)
	if err != nil {
		return nil, err
	}
	if cp == nil {
		return nil, apperr.Internal("Checkpoint missing after reset", nil)
	}
	view := newCheckpointView(*cp, s.fmt)
	s.events.Publish(events.Event{
		Type:      events.ReportReset,
		Reference: string(key),
		ActorID:   p.UserID,
		At:        now,
		Data:      view,
	})
	return &view, nil
}

// Checkpoints returns every recorded baseline keyed by period.
func (s *Service) Checkpoints(ctx context.Context, p auth.Principal) (map[models.Period]CheckpointView, error) {
	if err := p.RequireAdmin(); err != nil {
		return nil, err
	}
	var rows []models.ReportCheckpoint
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, apperr.Internal("Failed to load checkpoints", err)
	}
	out := make(map[models.Period]CheckpointView, len(rows))
	for _, cp := range rows {
		out[cp.Period] = newCheckpointView(cp, s.fmt)
	}
	return out, nil
}

// PeriodReport is the weekly/monthly/yearly report rendered as JSON or PDF.
type PeriodReport struct {
	Period       models.Period  `json:"period"`
	Label        string         `json:"label"`
	Start        string         `json:"start"`
	End          string         `json:"end"`
	StartAt      time.Time      `json:"-"`
	EndAt        time.Time      `json:"-"`
	ResetBased   bool           `json:"reset_based"`
	Revenue      RevenueSummary `json:"revenue"`
	Totals       Totals         `json:"totals"`
	Transactions []Transaction  `json:"transactions"`
}

func (s *Service) PeriodReport(ctx context.Context, p auth.Principal, period string) (*PeriodReport, error) {
	if err := p.RequireAdmin(); err != nil {
		return nil, err
	}
	key, err := NormalizePeriod(period)
	if err != nil {
		return nil, err
	}
	cp, err := s.checkpoint(ctx, key)
	if err != nil {
		return nil, err
	}
	var lastReset *time.Time
	if cp != nil {
		lastReset = &cp.LastResetAt
	}
	start, end, err := GetPeriodRange(string(key), lastReset, s.now().UTC())
	if err != nil {
		return nil, err
	}

	w := database.Window{Start: start, End: end}
	orders, sales, totals, err := s.fetch(ctx, w, 0)
	if err != nil {
		return nil, err
	}
	names, err := s.cashiers(ctx, sales)
	if err != nil {
		return nil, err
	}
	ledger, err := database.GetLedgerTotals(ctx, s.db, w)
	if err != nil {
		return nil, apperr.Internal("Failed to calculate revenue", err)
	}

	return &PeriodReport{
		Period:       key,
		Label:        PeriodLabel(string(key)),
		Start:        s.fmt.Display(start),
		End:          s.fmt.Display(end),
		StartAt:      start,
		EndAt:        end,
		ResetBased:   lastReset != nil,
		Revenue:      summarize(ledger),
		Totals:       totals,
		Transactions: Merge(orders, sales, names, 0, s.fmt),
	}, nil
}
