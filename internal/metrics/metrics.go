// Package metrics derives dashboard rollups from the sales ledger. All
// results are recomputed from the full ledger snapshot at query time.
package metrics

import (
	"sort"
	"strings"
	"time"

	"github.com/printloom/printloom/internal/inventory"
	"github.com/printloom/printloom/internal/ledger"
)

// DailySales is one point of the 7-day trend series.
type DailySales struct {
	Date         string `json:"date"`
	TotalSales   int64  `json:"total_sales"`
	TotalRevenue int64  `json:"total_revenue"`
}

// ItemSalesData aggregates sales of one item for top-seller rankings.
type ItemSalesData struct {
	ItemID       int64  `json:"item_id"`
	ItemName     string `json:"item_name"`
	UnitsSold    int64  `json:"units_sold"`
	TotalRevenue int64  `json:"total_revenue"`
}

// SalesMetrics is the full dashboard payload. Amounts are minor currency
// units; AverageSaleAmount is 0.0 on an empty ledger.
type SalesMetrics struct {
	TotalRevenue      int64   `json:"total_revenue"`
	TotalSales        int64   `json:"total_sales"`
	ProductSales      int64   `json:"product_sales"`
	ServiceSales      int64   `json:"service_sales"`
	PrintSales        int64   `json:"print_sales"`
	TodayRevenue      int64   `json:"today_revenue"`
	WeekRevenue       int64   `json:"week_revenue"`
	MonthRevenue      int64   `json:"month_revenue"`
	AverageSaleAmount float64 `json:"average_sale_amount"`

	RevenueByPaymentType map[string]int64 `json:"revenue_by_payment_type"`
	RevenueByItemType    map[string]int64 `json:"revenue_by_item_type"`

	DailyTrend []DailySales `json:"daily_trend"`

	TopProducts []ItemSalesData `json:"top_products"`
	TopServices []ItemSalesData `json:"top_services"`
	TopPrints   []ItemSalesData `json:"top_prints"`
}

const topSellerLimit = 10

// Build computes the dashboard metrics from a ledger snapshot. It is a
// pure function of sales and now; calling it twice with the same inputs
// yields identical results.
func Build(sales []ledger.Sale, now time.Time) SalesMetrics {
	metrics := SalesMetrics{
		RevenueByPaymentType: map[string]int64{},
		RevenueByItemType:    map[string]int64{},
	}

	today := now.Format(ledger.DayLayout)
	weekStart := now.AddDate(0, 0, -7).Format(ledger.DayLayout)
	monthStart := now.AddDate(0, 0, -30).Format(ledger.DayLayout)

	products := newTopSellers()
	services := newTopSellers()
	prints := newTopSellers()

	for _, sale := range sales {
		metrics.TotalSales++
		metrics.TotalRevenue += sale.TotalAmount

		switch sale.ItemType {
		case inventory.ItemTypeProduct:
			metrics.ProductSales++
			products.add(sale)
		case inventory.ItemTypeService:
			metrics.ServiceSales++
			services.add(sale)
		case inventory.ItemTypePrint:
			metrics.PrintSales++
			prints.add(sale)
		}

		if strings.HasPrefix(sale.SaleDate, today) {
			metrics.TodayRevenue += sale.TotalAmount
		}
		// SaleDate is sortable, so the day threshold compares directly.
		if sale.SaleDate >= weekStart {
			metrics.WeekRevenue += sale.TotalAmount
		}
		if sale.SaleDate >= monthStart {
			metrics.MonthRevenue += sale.TotalAmount
		}

		metrics.RevenueByPaymentType[sale.PaymentType] += sale.TotalAmount
		metrics.RevenueByItemType[string(sale.ItemType)] += sale.TotalAmount
	}

	if metrics.TotalSales > 0 {
		metrics.AverageSaleAmount = float64(metrics.TotalRevenue) / float64(metrics.TotalSales)
	}

	metrics.DailyTrend = buildDailyTrend(sales, now)
	metrics.TopProducts = products.ranked()
	metrics.TopServices = services.ranked()
	metrics.TopPrints = prints.ranked()
	return metrics
}

// buildDailyTrend buckets sales per calendar day over the last 7 days,
// oldest first.
func buildDailyTrend(sales []ledger.Sale, now time.Time) []DailySales {
	trend := make([]DailySales, 0, 7)
	for offset := 6; offset >= 0; offset-- {
		day := now.AddDate(0, 0, -offset).Format(ledger.DayLayout)
		point := DailySales{Date: day}
		for _, sale := range sales {
			if strings.HasPrefix(sale.SaleDate, day) {
				point.TotalSales++
				point.TotalRevenue += sale.TotalAmount
			}
		}
		trend = append(trend, point)
	}
	return trend
}

// topSellers accumulates per-item totals preserving first-occurrence order
// so revenue ties rank stably.
type topSellers struct {
	order  []int64
	byItem map[int64]*ItemSalesData
}

func newTopSellers() *topSellers {
	return &topSellers{byItem: map[int64]*ItemSalesData{}}
}

func (t *topSellers) add(sale ledger.Sale) {
	entry, ok := t.byItem[sale.ItemID]
	if !ok {
		entry = &ItemSalesData{ItemID: sale.ItemID, ItemName: sale.ItemName}
		t.byItem[sale.ItemID] = entry
		t.order = append(t.order, sale.ItemID)
	}
	entry.UnitsSold += sale.Quantity
	entry.TotalRevenue += sale.TotalAmount
}

func (t *topSellers) ranked() []ItemSalesData {
	result := make([]ItemSalesData, 0, len(t.order))
	for _, id := range t.order {
		result = append(result, *t.byItem[id])
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].TotalRevenue > result[j].TotalRevenue
	})
	if len(result) > topSellerLimit {
		result = result[:topSellerLimit]
	}
	return result
}
