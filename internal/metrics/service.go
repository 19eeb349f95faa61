package metrics

import (
	"context"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/printloom/printloom/internal/ledger"
)

// LedgerPort exposes the ledger reads the aggregator depends on.
type LedgerPort interface {
	List(ctx context.Context, filter ledger.Filter) ([]ledger.Sale, error)
	TotalRevenue(ctx context.Context) (int64, error)
	TotalCount(ctx context.Context) (int64, error)
}

// Service coordinates dashboard aggregation with the cache layer.
type Service struct {
	ledger LedgerPort
	cache  *Cache
	clock  func() time.Time
}

// NewService wires the ledger with a Cache helper.
func NewService(ledgerRepo LedgerPort, cache *Cache) *Service {
	return &Service{
		ledger: ledgerRepo,
		cache:  cache,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// WithClock overrides the service clock for testing.
func (s *Service) WithClock(fn func() time.Time) {
	if fn != nil {
		s.clock = fn
	}
}

// DashboardMetrics returns the full dashboard rollup. The cache key
// carries the current day plus the ledger count and revenue high-water
// mark, so any committed sale (and every day rollover) produces a fresh
// key while an unchanged ledger keeps serving the cached payload.
func (s *Service) DashboardMetrics(ctx context.Context) (SalesMetrics, error) {
	now := s.clock()

	loader := func(ctx context.Context) (interface{}, error) {
		sales, err := s.ledger.List(ctx, ledger.Filter{})
		if err != nil {
			return nil, err
		}
		return Build(sales, now), nil
	}

	if s.cache == nil {
		value, err := loader(ctx)
		if err != nil {
			return SalesMetrics{}, err
		}
		return value.(SalesMetrics), nil
	}

	var count, revenue int64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		count, err = s.ledger.TotalCount(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		revenue, err = s.ledger.TotalRevenue(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return SalesMetrics{}, err
	}

	key, err := s.cache.BuildKey(ctx, keyDashboard(now, count, revenue)...)
	if err != nil {
		return SalesMetrics{}, err
	}
	var metrics SalesMetrics
	if err := s.cache.FetchJSON(ctx, key, &metrics, loader); err != nil {
		return SalesMetrics{}, err
	}
	return metrics, nil
}

func keyDashboard(now time.Time, count, revenue int64) []string {
	return []string{
		"metrics", "dashboard",
		now.Format(ledger.DayLayout),
		strconv.FormatInt(count, 10),
		strconv.FormatInt(revenue, 10),
	}
}
