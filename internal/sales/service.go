package sales

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/printloom/printloom/internal/inventory"
	"github.com/printloom/printloom/internal/ledger"
)

// RepositoryPort abstracts the transactional repository for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// LedgerPort exposes the read side of the sales ledger.
type LedgerPort interface {
	GetByID(ctx context.Context, id int64) (ledger.Sale, error)
	List(ctx context.Context, filter ledger.Filter) ([]ledger.Sale, error)
	TotalRevenue(ctx context.Context) (int64, error)
	TotalCount(ctx context.Context) (int64, error)
}

// MetricsInvalidator notifies the dashboard cache after a committed sale.
type MetricsInvalidator interface {
	Bump(ctx context.Context) error
}

// ServiceConfig groups optional settings.
type ServiceConfig struct {
	// AllowNegativeStock restores the permissive legacy behavior where
	// product stock and print copies may go negative on overselling.
	AllowNegativeStock bool
}

// Service orchestrates sale recording and ledger reads.
type Service struct {
	repo        RepositoryPort
	ledger      LedgerPort
	invalidator MetricsInvalidator
	logger      *slog.Logger
	allowNeg    bool
	clock       func() time.Time
}

// NewService builds Service.
func NewService(repo RepositoryPort, ledgerRepo LedgerPort, invalidator MetricsInvalidator, logger *slog.Logger, cfg ServiceConfig) *Service {
	return &Service{
		repo:        repo,
		ledger:      ledgerRepo,
		invalidator: invalidator,
		logger:      logger,
		allowNeg:    cfg.AllowNegativeStock,
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

// RecordSale validates the input, adjusts the inventory counter for the
// referenced item and appends the ledger entry, all inside one database
// transaction. On any failure the transaction rolls back and the sale is
// reported as not having happened.
func (s *Service) RecordSale(ctx context.Context, input RecordSaleInput) (ledger.Sale, error) {
	itemType, err := inventory.ParseItemType(input.ItemType)
	if err != nil {
		return ledger.Sale{}, err
	}
	if input.Quantity <= 0 {
		return ledger.Sale{}, ErrInvalidQuantity
	}
	if input.UnitPrice < 0 {
		return ledger.Sale{}, ErrInvalidUnitPrice
	}
	if input.UserID <= 0 || input.ItemID <= 0 || input.ItemName == "" || input.PaymentType == "" {
		return ledger.Sale{}, ErrMissingField
	}
	var refID *string
	if input.ReferenceID != "" {
		if _, err := uuid.Parse(input.ReferenceID); err != nil {
			return ledger.Sale{}, fmt.Errorf("%w: %q", ErrInvalidReference, input.ReferenceID)
		}
		refID = &input.ReferenceID
	}

	// Dispatch on the item type once; each variant carries its own
	// adjustment inside the transaction.
	enforce := !s.allowNeg
	var adjust func(context.Context, TxRepository) error
	switch itemType {
	case inventory.ItemTypeProduct:
		adjust = func(ctx context.Context, tx TxRepository) error {
			return tx.SellProduct(ctx, input.ItemID, input.Quantity, enforce)
		}
	case inventory.ItemTypeService:
		adjust = func(ctx context.Context, tx TxRepository) error {
			return tx.SellService(ctx, input.ItemID, input.Quantity)
		}
	case inventory.ItemTypePrint:
		adjust = func(ctx context.Context, tx TxRepository) error {
			return tx.SellPrint(ctx, input.ItemID, input.Quantity, enforce)
		}
	}

	now := s.clock()
	sale := ledger.Sale{
		UserID:      input.UserID,
		ItemID:      input.ItemID,
		ItemType:    itemType,
		ItemName:    input.ItemName,
		Quantity:    input.Quantity,
		UnitPrice:   input.UnitPrice,
		TotalAmount: input.Quantity * input.UnitPrice,
		PaymentType: input.PaymentType,
		ReferenceID: refID,
		SaleDate:    now.Format(ledger.DateLayout),
		Timestamp:   now.UnixMilli(),
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := adjust(ctx, tx); err != nil {
			return err
		}
		id, err := tx.InsertSale(ctx, sale)
		if err != nil {
			return err
		}
		sale.ID = id
		return nil
	})
	if err != nil {
		if errors.Is(err, inventory.ErrItemNotFound) || errors.Is(err, inventory.ErrInsufficientStock) {
			return ledger.Sale{}, err
		}
		if IsConstraintViolation(err) {
			s.logger.Warn("sale rejected by constraint", slog.Any("error", err))
		}
		return ledger.Sale{}, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}

	if s.invalidator != nil {
		if err := s.invalidator.Bump(ctx); err != nil {
			s.logger.Warn("metrics cache bump", slog.Any("error", err))
		}
	}
	s.logger.Info("sale recorded",
		slog.Int64("sale_id", sale.ID),
		slog.String("item_type", string(itemType)),
		slog.Int64("item_id", input.ItemID),
		slog.Int64("quantity", input.Quantity),
		slog.Int64("total_amount", sale.TotalAmount),
	)
	return sale, nil
}

// GetSale returns one sale by id.
func (s *Service) GetSale(ctx context.Context, id int64) (ledger.Sale, error) {
	return s.ledger.GetByID(ctx, id)
}

// ListSales returns all sales matching the filter.
func (s *Service) ListSales(ctx context.Context, filter ledger.Filter) ([]ledger.Sale, error) {
	return s.ledger.List(ctx, filter)
}

// RevenueSummary returns total revenue, sale count and the average sale
// amount, guarding the empty-ledger division.
func (s *Service) RevenueSummary(ctx context.Context) (RevenueSummary, error) {
	revenue, err := s.ledger.TotalRevenue(ctx)
	if err != nil {
		return RevenueSummary{}, err
	}
	count, err := s.ledger.TotalCount(ctx)
	if err != nil {
		return RevenueSummary{}, err
	}
	summary := RevenueSummary{TotalRevenue: revenue, TotalSales: count}
	if count > 0 {
		summary.AverageRevenue = float64(revenue) / float64(count)
	}
	return summary, nil
}
