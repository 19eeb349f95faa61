package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/printloom/printloom/internal/inventory"
	"github.com/printloom/printloom/internal/ledger"
)

var now = time.Date(2026, 8, 31, 15, 0, 0, 0, time.UTC)

func saleOn(day time.Time, itemID int64, itemType inventory.ItemType, name string, qty, unitPrice int64, payment string) ledger.Sale {
	return ledger.Sale{
		ItemID:      itemID,
		ItemType:    itemType,
		ItemName:    name,
		Quantity:    qty,
		UnitPrice:   unitPrice,
		TotalAmount: qty * unitPrice,
		PaymentType: payment,
		SaleDate:    day.Format(ledger.DateLayout),
		Timestamp:   day.UnixMilli(),
	}
}

func TestBuildEmptyLedger(t *testing.T) {
	m := Build(nil, now)

	require.Equal(t, int64(0), m.TotalSales)
	require.Equal(t, int64(0), m.TotalRevenue)
	require.Zero(t, m.AverageSaleAmount)
	require.NotNil(t, m.RevenueByPaymentType)
	require.Empty(t, m.RevenueByPaymentType)
	require.NotNil(t, m.RevenueByItemType)
	require.Empty(t, m.TopProducts)
	require.Empty(t, m.TopServices)
	require.Empty(t, m.TopPrints)

	require.Len(t, m.DailyTrend, 7)
	require.Equal(t, "2026-08-25", m.DailyTrend[0].Date)
	require.Equal(t, "2026-08-31", m.DailyTrend[6].Date)
	for _, point := range m.DailyTrend {
		require.Zero(t, point.TotalSales)
		require.Zero(t, point.TotalRevenue)
	}
}

func TestBuildTimeBuckets(t *testing.T) {
	sales := []ledger.Sale{
		saleOn(now, 1, inventory.ItemTypeProduct, "Widget", 1, 1000, "card"),
		saleOn(now.AddDate(0, 0, -3), 1, inventory.ItemTypeProduct, "Widget", 1, 2000, "cash"),
		saleOn(now.AddDate(0, 0, -10), 2, inventory.ItemTypeService, "Framing", 1, 4000, "card"),
		saleOn(now.AddDate(0, 0, -40), 3, inventory.ItemTypePrint, "Poster", 1, 8000, "transfer"),
	}

	m := Build(sales, now)

	require.Equal(t, int64(4), m.TotalSales)
	require.Equal(t, int64(15000), m.TotalRevenue)
	require.Equal(t, int64(1000), m.TodayRevenue)
	require.Equal(t, int64(3000), m.WeekRevenue)
	require.Equal(t, int64(7000), m.MonthRevenue)
	require.InDelta(t, 3750.0, m.AverageSaleAmount, 0.0001)

	require.Equal(t, int64(2), m.ProductSales)
	require.Equal(t, int64(1), m.ServiceSales)
	require.Equal(t, int64(1), m.PrintSales)

	require.Equal(t, int64(5000), m.RevenueByPaymentType["card"])
	require.Equal(t, int64(2000), m.RevenueByPaymentType["cash"])
	require.Equal(t, int64(8000), m.RevenueByPaymentType["transfer"])

	require.Equal(t, int64(3000), m.RevenueByItemType["product"])
	require.Equal(t, int64(4000), m.RevenueByItemType["service"])
	require.Equal(t, int64(8000), m.RevenueByItemType["print"])
}

func TestBuildDailyTrendBuckets(t *testing.T) {
	sales := []ledger.Sale{
		saleOn(now, 1, inventory.ItemTypeProduct, "Widget", 2, 500, "card"),
		saleOn(now, 1, inventory.ItemTypeProduct, "Widget", 1, 500, "card"),
		saleOn(now.AddDate(0, 0, -6), 1, inventory.ItemTypeProduct, "Widget", 1, 700, "card"),
		saleOn(now.AddDate(0, 0, -7), 1, inventory.ItemTypeProduct, "Widget", 1, 900, "card"),
	}

	m := Build(sales, now)

	require.Len(t, m.DailyTrend, 7)
	oldest := m.DailyTrend[0]
	require.Equal(t, "2026-08-25", oldest.Date)
	require.Equal(t, int64(1), oldest.TotalSales)
	require.Equal(t, int64(700), oldest.TotalRevenue)

	today := m.DailyTrend[6]
	require.Equal(t, int64(2), today.TotalSales)
	require.Equal(t, int64(1500), today.TotalRevenue)
}

func TestTopSellersRankingAndNames(t *testing.T) {
	sales := []ledger.Sale{
		saleOn(now, 1, inventory.ItemTypeProduct, "Widget", 1, 1000, "card"),
		saleOn(now, 2, inventory.ItemTypeProduct, "Gizmo", 5, 1000, "card"),
		saleOn(now, 1, inventory.ItemTypeProduct, "Widget Renamed", 2, 1000, "card"),
	}

	m := Build(sales, now)

	require.Len(t, m.TopProducts, 2)
	require.Equal(t, int64(2), m.TopProducts[0].ItemID)
	require.Equal(t, int64(5000), m.TopProducts[0].TotalRevenue)
	// Display name comes from the first sale seen for the item.
	require.Equal(t, "Widget", m.TopProducts[1].ItemName)
	require.Equal(t, int64(3), m.TopProducts[1].UnitsSold)
}

func TestTopSellersTieBreakIsFirstOccurrence(t *testing.T) {
	sales := []ledger.Sale{
		saleOn(now, 10, inventory.ItemTypePrint, "Poster A", 1, 2000, "card"),
		saleOn(now, 20, inventory.ItemTypePrint, "Poster B", 2, 1000, "card"),
		saleOn(now, 30, inventory.ItemTypePrint, "Poster C", 1, 2000, "card"),
	}

	m := Build(sales, now)

	require.Len(t, m.TopPrints, 3)
	require.Equal(t, int64(10), m.TopPrints[0].ItemID)
	require.Equal(t, int64(20), m.TopPrints[1].ItemID)
	require.Equal(t, int64(30), m.TopPrints[2].ItemID)
}

func TestTopSellersTruncatesToTen(t *testing.T) {
	var sales []ledger.Sale
	for i := int64(1); i <= 15; i++ {
		sales = append(sales, saleOn(now, i, inventory.ItemTypeService, fmt.Sprintf("Service %d", i), 1, i*100, "card"))
	}

	m := Build(sales, now)

	require.Len(t, m.TopServices, 10)
	require.Equal(t, int64(15), m.TopServices[0].ItemID)
	require.Equal(t, int64(6), m.TopServices[9].ItemID)
}

func TestBuildIsDeterministic(t *testing.T) {
	sales := []ledger.Sale{
		saleOn(now, 1, inventory.ItemTypeProduct, "Widget", 2, 500, "card"),
		saleOn(now.AddDate(0, 0, -2), 2, inventory.ItemTypeService, "Framing", 1, 4000, "cash"),
	}

	first := Build(sales, now)
	second := Build(sales, now)
	require.Equal(t, first, second)
}
