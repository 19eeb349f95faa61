package sales

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/printloom/printloom/internal/inventory"
	"github.com/printloom/printloom/internal/ledger"
)

type productRow struct {
	name  string
	stock int64
	sold  int64
}

type memoryRepo struct {
	products   map[int64]*productRow
	services   map[int64]int64
	prints     map[int64]int64
	sales      []ledger.Sale
	nextID     int64
	failInsert bool
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		products: make(map[int64]*productRow),
		services: make(map[int64]int64),
		prints:   make(map[int64]int64),
	}
}

type repoSnapshot struct {
	products map[int64]productRow
	services map[int64]int64
	prints   map[int64]int64
	sales    int
	nextID   int64
}

func (r *memoryRepo) snapshot() repoSnapshot {
	snap := repoSnapshot{
		products: make(map[int64]productRow, len(r.products)),
		services: make(map[int64]int64, len(r.services)),
		prints:   make(map[int64]int64, len(r.prints)),
		sales:    len(r.sales),
		nextID:   r.nextID,
	}
	for id, row := range r.products {
		snap.products[id] = *row
	}
	for id, offered := range r.services {
		snap.services[id] = offered
	}
	for id, copies := range r.prints {
		snap.prints[id] = copies
	}
	return snap
}

func (r *memoryRepo) restore(snap repoSnapshot) {
	r.products = make(map[int64]*productRow, len(snap.products))
	for id, row := range snap.products {
		copied := row
		r.products[id] = &copied
	}
	r.services = snap.services
	r.prints = snap.prints
	r.sales = r.sales[:snap.sales]
	r.nextID = snap.nextID
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	snap := r.snapshot()
	tx := &memoryTx{repo: r}
	if err := fn(ctx, tx); err != nil {
		r.restore(snap)
		return err
	}
	return nil
}

type memoryTx struct {
	repo *memoryRepo
}

func (tx *memoryTx) SellProduct(ctx context.Context, productID, qty int64, enforceStock bool) error {
	row, ok := tx.repo.products[productID]
	if !ok {
		return inventory.ErrItemNotFound
	}
	if enforceStock && row.stock < qty {
		return inventory.ErrInsufficientStock
	}
	row.stock -= qty
	row.sold += qty
	return nil
}

func (tx *memoryTx) SellService(ctx context.Context, serviceID, qty int64) error {
	if _, ok := tx.repo.services[serviceID]; !ok {
		return inventory.ErrItemNotFound
	}
	tx.repo.services[serviceID] += qty
	return nil
}

func (tx *memoryTx) SellPrint(ctx context.Context, printID, qty int64, enforceStock bool) error {
	copies, ok := tx.repo.prints[printID]
	if !ok {
		return inventory.ErrItemNotFound
	}
	if enforceStock && copies < qty {
		return inventory.ErrInsufficientStock
	}
	tx.repo.prints[printID] = copies - qty
	return nil
}

func (tx *memoryTx) InsertSale(ctx context.Context, sale ledger.Sale) (int64, error) {
	if tx.repo.failInsert {
		return 0, errors.New("insert failed")
	}
	tx.repo.nextID++
	sale.ID = tx.repo.nextID
	tx.repo.sales = append(tx.repo.sales, sale)
	return sale.ID, nil
}

func (r *memoryRepo) GetByID(ctx context.Context, id int64) (ledger.Sale, error) {
	for _, sale := range r.sales {
		if sale.ID == id {
			return sale, nil
		}
	}
	return ledger.Sale{}, ledger.ErrSaleNotFound
}

func (r *memoryRepo) List(ctx context.Context, filter ledger.Filter) ([]ledger.Sale, error) {
	var result []ledger.Sale
	for _, sale := range r.sales {
		if filter.UserID != 0 && sale.UserID != filter.UserID {
			continue
		}
		if filter.ItemType != "" && sale.ItemType != filter.ItemType {
			continue
		}
		if filter.From != "" && sale.SaleDate < filter.From {
			continue
		}
		if filter.To != "" && sale.SaleDate > filter.To {
			continue
		}
		result = append(result, sale)
	}
	return result, nil
}

func (r *memoryRepo) TotalRevenue(ctx context.Context) (int64, error) {
	var total int64
	for _, sale := range r.sales {
		total += sale.TotalAmount
	}
	return total, nil
}

func (r *memoryRepo) TotalCount(ctx context.Context) (int64, error) {
	return int64(len(r.sales)), nil
}

type countingInvalidator struct {
	bumps int
}

func (c *countingInvalidator) Bump(ctx context.Context) error {
	c.bumps++
	return nil
}

var fixedNow = time.Date(2026, 8, 31, 14, 30, 0, 0, time.UTC)

func newTestService(repo *memoryRepo, cfg ServiceConfig) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(repo, repo, nil, logger, cfg)
	svc.WithClock(func() time.Time { return fixedNow })
	return svc
}

func TestRecordSaleProduct(t *testing.T) {
	repo := newMemoryRepo()
	repo.products[1] = &productRow{name: "Widget", stock: 10}
	svc := newTestService(repo, ServiceConfig{})
	ctx := context.Background()

	sale, err := svc.RecordSale(ctx, RecordSaleInput{
		UserID:      1,
		ItemID:      1,
		ItemType:    "product",
		ItemName:    "Widget",
		Quantity:    3,
		UnitPrice:   500,
		PaymentType: "card",
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), sale.ID)
	require.Equal(t, int64(1500), sale.TotalAmount)
	require.Equal(t, "2026-08-31 14:30:00", sale.SaleDate)
	require.Equal(t, fixedNow.UnixMilli(), sale.Timestamp)

	require.Equal(t, int64(7), repo.products[1].stock)
	require.Equal(t, int64(3), repo.products[1].sold)

	revenue, err := svc.RevenueSummary(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1500), revenue.TotalRevenue)
	require.Equal(t, int64(1), revenue.TotalSales)
	require.InDelta(t, 1500.0, revenue.AverageRevenue, 0.0001)
}

func TestRecordSaleServiceIncrementsOffered(t *testing.T) {
	repo := newMemoryRepo()
	repo.services[7] = 2
	svc := newTestService(repo, ServiceConfig{})

	sale, err := svc.RecordSale(context.Background(), RecordSaleInput{
		UserID:      3,
		ItemID:      7,
		ItemType:    "service",
		ItemName:    "Framing",
		Quantity:    4,
		UnitPrice:   2500,
		PaymentType: "cash",
	})
	require.NoError(t, err)
	require.Equal(t, int64(10000), sale.TotalAmount)
	require.Equal(t, int64(6), repo.services[7])
}

func TestRecordSalePrintDecrementsCopies(t *testing.T) {
	repo := newMemoryRepo()
	repo.prints[5] = 20
	svc := newTestService(repo, ServiceConfig{})

	_, err := svc.RecordSale(context.Background(), RecordSaleInput{
		UserID:      2,
		ItemID:      5,
		ItemType:    "print",
		ItemName:    "Poster A2",
		Quantity:    6,
		UnitPrice:   900,
		PaymentType: "card",
	})
	require.NoError(t, err)
	require.Equal(t, int64(14), repo.prints[5])
}

func TestRecordSaleItemTypeCaseInsensitive(t *testing.T) {
	repo := newMemoryRepo()
	repo.products[1] = &productRow{name: "Widget", stock: 5}
	svc := newTestService(repo, ServiceConfig{})

	sale, err := svc.RecordSale(context.Background(), RecordSaleInput{
		UserID:      1,
		ItemID:      1,
		ItemType:    "PRODUCT",
		ItemName:    "Widget",
		Quantity:    1,
		UnitPrice:   100,
		PaymentType: "card",
	})
	require.NoError(t, err)
	require.Equal(t, inventory.ItemTypeProduct, sale.ItemType)
}

func TestRecordSaleRejectsUnknownItemType(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, ServiceConfig{})

	_, err := svc.RecordSale(context.Background(), RecordSaleInput{
		UserID:      1,
		ItemID:      1,
		ItemType:    "gadget",
		ItemName:    "Widget",
		Quantity:    1,
		UnitPrice:   100,
		PaymentType: "card",
	})
	require.ErrorIs(t, err, inventory.ErrInvalidItemType)
	require.Empty(t, repo.sales)
}

func TestRecordSaleRejectsNonPositiveQuantity(t *testing.T) {
	repo := newMemoryRepo()
	repo.products[1] = &productRow{name: "Widget", stock: 5}
	svc := newTestService(repo, ServiceConfig{})

	for _, qty := range []int64{0, -3} {
		_, err := svc.RecordSale(context.Background(), RecordSaleInput{
			UserID:      1,
			ItemID:      1,
			ItemType:    "product",
			ItemName:    "Widget",
			Quantity:    qty,
			UnitPrice:   100,
			PaymentType: "card",
		})
		require.ErrorIs(t, err, ErrInvalidQuantity)
	}
	require.Equal(t, int64(5), repo.products[1].stock)
}

func TestRecordSaleRejectsMissingItem(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, ServiceConfig{})

	_, err := svc.RecordSale(context.Background(), RecordSaleInput{
		UserID:      1,
		ItemID:      99,
		ItemType:    "product",
		ItemName:    "Ghost",
		Quantity:    1,
		UnitPrice:   100,
		PaymentType: "card",
	})
	require.ErrorIs(t, err, inventory.ErrItemNotFound)
	require.Empty(t, repo.sales)
}

func TestRecordSaleRejectsMalformedReference(t *testing.T) {
	repo := newMemoryRepo()
	repo.products[1] = &productRow{name: "Widget", stock: 5}
	svc := newTestService(repo, ServiceConfig{})

	_, err := svc.RecordSale(context.Background(), RecordSaleInput{
		UserID:      1,
		ItemID:      1,
		ItemType:    "product",
		ItemName:    "Widget",
		Quantity:    1,
		UnitPrice:   100,
		PaymentType: "card",
		ReferenceID: "not-a-uuid",
	})
	require.ErrorIs(t, err, ErrInvalidReference)
}

func TestOversellRejectedByDefault(t *testing.T) {
	repo := newMemoryRepo()
	repo.products[1] = &productRow{name: "Widget", stock: 5}
	svc := newTestService(repo, ServiceConfig{})
	ctx := context.Background()

	input := RecordSaleInput{
		UserID:      1,
		ItemID:      1,
		ItemType:    "product",
		ItemName:    "Widget",
		UnitPrice:   500,
		PaymentType: "card",
	}

	input.Quantity = 4
	_, err := svc.RecordSale(ctx, input)
	require.NoError(t, err)

	input.Quantity = 3
	_, err = svc.RecordSale(ctx, input)
	require.ErrorIs(t, err, inventory.ErrInsufficientStock)

	require.Equal(t, int64(1), repo.products[1].stock)
	require.Len(t, repo.sales, 1)
}

func TestOversellAllowedWhenPermissive(t *testing.T) {
	repo := newMemoryRepo()
	repo.products[1] = &productRow{name: "Widget", stock: 5}
	svc := newTestService(repo, ServiceConfig{AllowNegativeStock: true})
	ctx := context.Background()

	input := RecordSaleInput{
		UserID:      1,
		ItemID:      1,
		ItemType:    "product",
		ItemName:    "Widget",
		UnitPrice:   500,
		PaymentType: "card",
	}

	input.Quantity = 4
	_, err := svc.RecordSale(ctx, input)
	require.NoError(t, err)

	input.Quantity = 3
	_, err = svc.RecordSale(ctx, input)
	require.NoError(t, err)

	require.Equal(t, int64(-2), repo.products[1].stock)
	require.Len(t, repo.sales, 2)
}

func TestRecordSaleRollsBackOnLedgerFailure(t *testing.T) {
	repo := newMemoryRepo()
	repo.products[1] = &productRow{name: "Widget", stock: 10}
	repo.failInsert = true
	svc := newTestService(repo, ServiceConfig{})

	_, err := svc.RecordSale(context.Background(), RecordSaleInput{
		UserID:      1,
		ItemID:      1,
		ItemType:    "product",
		ItemName:    "Widget",
		Quantity:    3,
		UnitPrice:   500,
		PaymentType: "card",
	})
	require.ErrorIs(t, err, ErrTransactionFailed)

	// No partial effects: the adjustment rolled back with the append.
	require.Equal(t, int64(10), repo.products[1].stock)
	require.Equal(t, int64(0), repo.products[1].sold)
	require.Empty(t, repo.sales)
}

func TestRevenueIdentity(t *testing.T) {
	repo := newMemoryRepo()
	repo.products[1] = &productRow{name: "Widget", stock: 100}
	repo.services[2] = 0
	svc := newTestService(repo, ServiceConfig{})
	ctx := context.Background()

	inputs := []RecordSaleInput{
		{UserID: 1, ItemID: 1, ItemType: "product", ItemName: "Widget", Quantity: 2, UnitPrice: 300, PaymentType: "card"},
		{UserID: 2, ItemID: 1, ItemType: "product", ItemName: "Widget", Quantity: 5, UnitPrice: 300, PaymentType: "cash"},
		{UserID: 1, ItemID: 2, ItemType: "service", ItemName: "Framing", Quantity: 1, UnitPrice: 4500, PaymentType: "card"},
	}
	for _, input := range inputs {
		sale, err := svc.RecordSale(ctx, input)
		require.NoError(t, err)
		require.Equal(t, input.Quantity*input.UnitPrice, sale.TotalAmount)
	}

	all, err := svc.ListSales(ctx, ledger.Filter{})
	require.NoError(t, err)
	var sum int64
	for _, sale := range all {
		sum += sale.TotalAmount
	}
	summary, err := svc.RevenueSummary(ctx)
	require.NoError(t, err)
	require.Equal(t, sum, summary.TotalRevenue)
	require.Equal(t, int64(len(all)), summary.TotalSales)
}

func TestRevenueSummaryEmptyLedger(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, ServiceConfig{})

	summary, err := svc.RevenueSummary(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(0), summary.TotalRevenue)
	require.Equal(t, int64(0), summary.TotalSales)
	require.Zero(t, summary.AverageRevenue)
}

func TestRecordSaleBumpsMetricsCache(t *testing.T) {
	repo := newMemoryRepo()
	repo.products[1] = &productRow{name: "Widget", stock: 10}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	invalidator := &countingInvalidator{}
	svc := NewService(repo, repo, invalidator, logger, ServiceConfig{})
	svc.WithClock(func() time.Time { return fixedNow })

	_, err := svc.RecordSale(context.Background(), RecordSaleInput{
		UserID:      1,
		ItemID:      1,
		ItemType:    "product",
		ItemName:    "Widget",
		Quantity:    1,
		UnitPrice:   500,
		PaymentType: "card",
	})
	require.NoError(t, err)
	require.Equal(t, 1, invalidator.bumps)

	// A rejected sale leaves the cache untouched.
	_, err = svc.RecordSale(context.Background(), RecordSaleInput{
		UserID:      1,
		ItemID:      1,
		ItemType:    "gadget",
		ItemName:    "Widget",
		Quantity:    1,
		UnitPrice:   500,
		PaymentType: "card",
	})
	require.Error(t, err)
	require.Equal(t, 1, invalidator.bumps)
}

func TestListSalesFilters(t *testing.T) {
	repo := newMemoryRepo()
	repo.products[1] = &productRow{name: "Widget", stock: 100}
	repo.prints[2] = 50
	svc := newTestService(repo, ServiceConfig{})
	ctx := context.Background()

	_, err := svc.RecordSale(ctx, RecordSaleInput{UserID: 1, ItemID: 1, ItemType: "product", ItemName: "Widget", Quantity: 1, UnitPrice: 100, PaymentType: "card"})
	require.NoError(t, err)
	_, err = svc.RecordSale(ctx, RecordSaleInput{UserID: 2, ItemID: 2, ItemType: "print", ItemName: "Poster", Quantity: 2, UnitPrice: 700, PaymentType: "cash"})
	require.NoError(t, err)

	byUser, err := svc.ListSales(ctx, ledger.Filter{UserID: 2})
	require.NoError(t, err)
	require.Len(t, byUser, 1)
	require.Equal(t, "Poster", byUser[0].ItemName)

	byType, err := svc.ListSales(ctx, ledger.Filter{ItemType: inventory.ItemTypeProduct})
	require.NoError(t, err)
	require.Len(t, byType, 1)

	inRange, err := svc.ListSales(ctx, ledger.Filter{From: "2026-08-31 00:00:00", To: "2026-08-31 23:59:59"})
	require.NoError(t, err)
	require.Len(t, inRange, 2)

	outOfRange, err := svc.ListSales(ctx, ledger.Filter{From: "2026-09-01 00:00:00"})
	require.NoError(t, err)
	require.Empty(t, outOfRange)
}
