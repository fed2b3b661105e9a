package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/Lixing-Zhang/restaurant-pos/internal/models"
	"github.com/Lixing-Zhang/restaurant-pos/internal/repository"
	"github.com/shopspring/decimal"
)

var ErrInvalidPeriod = errors.New("period must be today, week, month or year")

const (
	topItemsLimit    = 5
	recentSalesLimit = 5
)

// ReportService summarises paid checkouts and the live order registry
type ReportService struct {
	sales  repository.SalesRepository
	orders repository.OrderRepository
	now    func() time.Time
	logger *slog.Logger
}

func NewReportService(sales repository.SalesRepository, orders repository.OrderRepository, logger *slog.Logger) *ReportService {
	return &ReportService{sales: sales, orders: orders, now: time.Now, logger: logger}
}

// Sales builds the report for period. An empty period means today.
func (s *ReportService) Sales(ctx context.Context, period models.ReportPeriod) (*models.SalesReport, error) {
	if period == "" {
		period = models.PeriodToday
	}
	now := s.now()
	from, err := periodStart(period, now)
	if err != nil {
		return nil, err
	}

	sales, err := s.sales.Since(ctx, from)
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	report := &models.SalesReport{
		Period:       period,
		From:         from,
		To:           now,
		TotalRevenue: decimal.Zero,
		TotalTax:     decimal.Zero,
		AverageOrder: decimal.Zero,
		TotalOrders:  len(sales),
		TopItems:     []models.ItemSales{},
		RecentSales:  []models.Snapshot{},
	}

	byName := make(map[string]*models.ItemSales)
	for _, sale := range sales {
		report.TotalRevenue = report.TotalRevenue.Add(sale.Total)
		report.TotalTax = report.TotalTax.Add(sale.Tax)
		for _, item := range sale.Items {
			agg, ok := byName[item.Name]
			if !ok {
				agg = &models.ItemSales{Name: item.Name, Revenue: decimal.Zero}
				byName[item.Name] = agg
			}
			agg.Quantity += item.Quantity
			agg.Revenue = agg.Revenue.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
	}
	if len(sales) > 0 {
		report.AverageOrder = report.TotalRevenue.Div(decimal.NewFromInt(int64(len(sales)))).Round(2)
	}

	for _, agg := range byName {
		report.TopItems = append(report.TopItems, *agg)
	}
	sort.Slice(report.TopItems, func(i, j int) bool {
		a, b := report.TopItems[i], report.TopItems[j]
		if a.Quantity != b.Quantity {
			return a.Quantity > b.Quantity
		}
		if !a.Revenue.Equal(b.Revenue) {
			return a.Revenue.GreaterThan(b.Revenue)
		}
		return a.Name < b.Name
	})
	if len(report.TopItems) > topItemsLimit {
		report.TopItems = report.TopItems[:topItemsLimit]
	}

	if len(sales) > recentSalesLimit {
		sales = sales[:recentSalesLimit]
	}
	report.RecentSales = append(report.RecentSales, sales...)

	for _, order := range orders {
		if order.Status != models.StatusServed {
			report.ActiveOrders++
		}
	}

	s.logger.Debug("sales report built", "period", period, "orders", report.TotalOrders, "revenue", report.TotalRevenue)
	return report, nil
}

// periodStart returns the first instant a report for period covers
func periodStart(period models.ReportPeriod, now time.Time) (time.Time, error) {
	switch period {
	case models.PeriodToday:
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location()), nil
	case models.PeriodWeek:
		return now.AddDate(0, 0, -7), nil
	case models.PeriodMonth:
		return now.AddDate(0, -1, 0), nil
	case models.PeriodYear:
		return now.AddDate(-1, 0, 0), nil
	default:
		return time.Time{}, ErrInvalidPeriod
	}
}
