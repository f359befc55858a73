package services

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/yeremiapane/dineflow/models"
	"github.com/yeremiapane/dineflow/repository"
	"github.com/yeremiapane/dineflow/utils"
	"gorm.io/gorm"
)

type FinanceSummary struct {
	From               time.Time          `json:"from"`
	To                 time.Time          `json:"to"`
	Revenue            float64            `json:"revenue"`
	OrderCount         int                `json:"order_count"`
	DeliveredCount     int                `json:"delivered_count"`
	CancelledCount     int                `json:"cancelled_count"`
	ExpensesTotal      float64            `json:"expenses_total"`
	ExpensesByCategory map[string]float64 `json:"expenses_by_category"`
	PaymentsByMethod   map[string]float64 `json:"payments_by_method"`
	Profit             float64            `json:"profit"`
}

type Dashboard struct {
	OrdersByStatus   map[models.OrderStatus]int64 `json:"orders_by_status"`
	TodayRevenue     float64                      `json:"today_revenue"`
	TodayOrders      int                          `json:"today_orders"`
	LowStockCount    int64                        `json:"low_stock_count"`
	AvailableRooms   int64                        `json:"available_rooms"`
	ActiveTables     int64                        `json:"active_tables"`
	KitchenQueueSize int                          `json:"kitchen_queue_size"`
}

type FinanceService struct {
	orders repository.OrderRepository
	db     *gorm.DB
	now    func() time.Time
}

func NewFinanceService(orders repository.OrderRepository, db *gorm.DB) *FinanceService {
	return &FinanceService{orders: orders, db: db, now: time.Now}
}

// Summary covers orders created, expenses spent and payments received in [from, to).
// Only delivered orders count as revenue.
func (s *FinanceService) Summary(ctx context.Context, from, to time.Time) (*FinanceSummary, error) {
	if !to.After(from) {
		return nil, fmt.Errorf("%w: 'to' must be after 'from'", models.ErrValidation)
	}

	orders, err := s.orders.List(ctx, repository.OrderFilter{From: &from, To: &to})
	if err != nil {
		return nil, err
	}

	summary := &FinanceSummary{
		From:               from,
		To:                 to,
		OrderCount:         len(orders),
		ExpensesByCategory: map[string]float64{},
		PaymentsByMethod:   map[string]float64{},
	}
	for _, o := range orders {
		switch o.Status {
		case models.StatusDelivered:
			summary.Revenue += o.TotalAmount
			summary.DeliveredCount++
		case models.StatusCancelled:
			summary.CancelledCount++
		}
	}

	var expenses []models.Expense
	if err := s.db.WithContext(ctx).
		Where("spent_at >= ? AND spent_at < ?", from, to).
		Find(&expenses).Error; err != nil {
		return nil, fmt.Errorf("load expenses: %w", err)
	}
	for _, e := range expenses {
		summary.ExpensesTotal += e.Amount
		summary.ExpensesByCategory[e.Category] += e.Amount
	}

	var payments []models.Payment
	if err := s.db.WithContext(ctx).
		Where("paid_at >= ? AND paid_at < ?", from, to).
		Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("load payments: %w", err)
	}
	for _, p := range payments {
		summary.PaymentsByMethod[p.Method] += p.Amount
	}

	summary.Profit = summary.Revenue - summary.ExpensesTotal
	return summary, nil
}

func (s *FinanceService) Dashboard(ctx context.Context) (*Dashboard, error) {
	counts, err := s.orders.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	dash := &Dashboard{OrdersByStatus: counts}

	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	tomorrow := midnight.AddDate(0, 0, 1)
	today, err := s.orders.List(ctx, repository.OrderFilter{From: &midnight, To: &tomorrow})
	if err != nil {
		return nil, err
	}
	dash.TodayOrders = len(today)
	for _, o := range today {
		if o.Status == models.StatusDelivered {
			dash.TodayRevenue += o.TotalAmount
		}
	}
	dash.KitchenQueueSize = int(counts[models.StatusConfirmed] + counts[models.StatusPreparing] + counts[models.StatusReady])

	db := s.db.WithContext(ctx)
	if err := db.Model(&models.Ingredient{}).Where("quantity <= reorder_level").Count(&dash.LowStockCount).Error; err != nil {
		return nil, fmt.Errorf("count low stock: %w", err)
	}
	if err := db.Model(&models.Room{}).Where("status = ?", models.RoomAvailable).Count(&dash.AvailableRooms).Error; err != nil {
		return nil, fmt.Errorf("count rooms: %w", err)
	}
	if err := db.Model(&models.DiningTable{}).Where("active = ?", true).Count(&dash.ActiveTables).Error; err != nil {
		return nil, fmt.Errorf("count tables: %w", err)
	}
	return dash, nil
}

// WriteReportPDF renders summary as a one-page A4 report.
func WriteReportPDF(w io.Writer, summary *FinanceSummary, restaurant, currency string) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(restaurant+" financial report", true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, restaurant, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	period := fmt.Sprintf("Period %s - %s", summary.From.Format("02 Jan 2006"), summary.To.Format("02 Jan 2006"))
	pdf.CellFormat(0, 8, period, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	row := func(label, value string) {
		pdf.CellFormat(90, 8, label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(90, 8, value, "1", 1, "R", false, 0, "")
	}
	money := func(v float64) string { return utils.FormatCurrency(v, currency) }

	section := func(title string) {
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
	}

	section("Overview")
	row("Orders", fmt.Sprintf("%d", summary.OrderCount))
	row("Delivered", fmt.Sprintf("%d", summary.DeliveredCount))
	row("Cancelled", fmt.Sprintf("%d", summary.CancelledCount))
	row("Revenue", money(summary.Revenue))
	row("Expenses", money(summary.ExpensesTotal))
	row("Profit", money(summary.Profit))

	if len(summary.ExpensesByCategory) > 0 {
		section("Expenses by category")
		for _, k := range sortedKeys(summary.ExpensesByCategory) {
			row(k, money(summary.ExpensesByCategory[k]))
		}
	}
	if len(summary.PaymentsByMethod) > 0 {
		section("Payments by method")
		for _, k := range sortedKeys(summary.PaymentsByMethod) {
			row(k, money(summary.PaymentsByMethod[k]))
		}
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return pdf.Output(w)
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
