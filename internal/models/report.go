package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReportPeriod selects the window a sales report covers
type ReportPeriod string

const (
	PeriodToday ReportPeriod = "today"
	PeriodWeek  ReportPeriod = "week"
	PeriodMonth ReportPeriod = "month"
	PeriodYear  ReportPeriod = "year"
)

// ItemSales aggregates one menu item across paid sales
type ItemSales struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// SalesReport summarises paid checkouts in a period
type SalesReport struct {
	Period       ReportPeriod    `json:"period"`
	From         time.Time       `json:"from"`
	To           time.Time       `json:"to"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	TotalTax     decimal.Decimal `json:"totalTax"`
	TotalOrders  int             `json:"totalOrders"`
	AverageOrder decimal.Decimal `json:"averageOrder"`
	ActiveOrders int             `json:"activeOrders"`
	TopItems     []ItemSales     `json:"topItems"`
	RecentSales  []Snapshot      `json:"recentSales"`
}
