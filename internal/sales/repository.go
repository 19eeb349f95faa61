package sales

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/printloom/printloom/internal/inventory"
	"github.com/printloom/printloom/internal/ledger"
	"github.com/printloom/printloom/internal/platform/db"
)

// Repository owns the sale transaction spanning inventory and ledger tables.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes the operations available inside one sale transaction.
// The Sell* methods apply the inventory adjustment as a single conditional
// UPDATE so two concurrent sales can never decrement from the same stale
// base value. With enforceStock the update refuses to drive the counter
// negative and reports inventory.ErrInsufficientStock.
type TxRepository interface {
	SellProduct(ctx context.Context, productID, qty int64, enforceStock bool) error
	SellService(ctx context.Context, serviceID, qty int64) error
	SellPrint(ctx context.Context, printID, qty int64, enforceStock bool) error
	InsertSale(ctx context.Context, sale ledger.Sale) (int64, error)
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx wraps the callback in a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

func (r *txRepo) SellProduct(ctx context.Context, productID, qty int64, enforceStock bool) error {
	query := `UPDATE products SET total_stock = total_stock - $2, sold = sold + $2, updated_at = now() WHERE id = $1`
	if enforceStock {
		query += ` AND total_stock >= $2`
	}
	tag, err := r.tx.Exec(ctx, query, productID, qty)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.classifyMiss(ctx, "products", productID, enforceStock)
	}
	return nil
}

func (r *txRepo) SellService(ctx context.Context, serviceID, qty int64) error {
	tag, err := r.tx.Exec(ctx, `UPDATE services SET offered = offered + $2, updated_at = now() WHERE id = $1`, serviceID, qty)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return inventory.ErrItemNotFound
	}
	return nil
}

func (r *txRepo) SellPrint(ctx context.Context, printID, qty int64, enforceStock bool) error {
	query := `UPDATE prints SET copies = copies - $2, updated_at = now() WHERE id = $1`
	if enforceStock {
		query += ` AND copies >= $2`
	}
	tag, err := r.tx.Exec(ctx, query, printID, qty)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.classifyMiss(ctx, "prints", printID, enforceStock)
	}
	return nil
}

func (r *txRepo) InsertSale(ctx context.Context, sale ledger.Sale) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO sales (user_id, item_id, item_type, item_name, quantity, unit_price, total_amount, payment_type, reference_id, sale_date, ts_millis)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`,
		sale.UserID, sale.ItemID, string(sale.ItemType), sale.ItemName,
		sale.Quantity, sale.UnitPrice, sale.TotalAmount, sale.PaymentType,
		sale.ReferenceID, sale.SaleDate, sale.Timestamp,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// classifyMiss disambiguates a zero-row conditional update: the row is
// either absent or the stock guard rejected the adjustment.
func (r *txRepo) classifyMiss(ctx context.Context, table string, id int64, enforceStock bool) error {
	if !enforceStock {
		return inventory.ErrItemNotFound
	}
	var exists bool
	err := r.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM `+table+` WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return err
	}
	if exists {
		return inventory.ErrInsufficientStock
	}
	return inventory.ErrItemNotFound
}

// IsConstraintViolation reports whether err is a PostgreSQL integrity
// constraint violation (SQLSTATE class 23).
func IsConstraintViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && len(pgErr.Code) >= 2 && pgErr.Code[:2] == "23"
}
