package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrSaleNotFound indicates the requested sale does not exist.
var ErrSaleNotFound = errors.New("ledger: sale not found")

const saleColumns = "id, user_id, item_id, item_type, item_name, quantity, unit_price, total_amount, payment_type, reference_id, sale_date, ts_millis"

// Repository provides read access to the sales ledger. Appends happen only
// inside the sales engine transaction, never through this type.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetByID returns one sale.
func (r *Repository) GetByID(ctx context.Context, id int64) (Sale, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT %s FROM sales WHERE id = $1", saleColumns), id)
	sale, err := scanSale(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Sale{}, ErrSaleNotFound
		}
		return Sale{}, err
	}
	return sale, nil
}

// List returns all sales matching the filter, oldest first by insertion id.
func (r *Repository) List(ctx context.Context, filter Filter) ([]Sale, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.UserID != 0 {
		args = append(args, filter.UserID)
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.ItemType != "" {
		args = append(args, string(filter.ItemType))
		conditions = append(conditions, fmt.Sprintf("item_type = $%d", len(args)))
	}
	if filter.From != "" {
		args = append(args, filter.From)
		conditions = append(conditions, fmt.Sprintf("sale_date >= $%d", len(args)))
	}
	if filter.To != "" {
		args = append(args, filter.To)
		conditions = append(conditions, fmt.Sprintf("sale_date <= $%d", len(args)))
	}

	query := fmt.Sprintf("SELECT %s FROM sales", saleColumns)
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sales []Sale
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sales, nil
}

// TotalRevenue sums total_amount across all sales, 0 when empty.
func (r *Repository) TotalRevenue(ctx context.Context) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(total_amount), 0) FROM sales`).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total, nil
}

// TotalCount counts all sales.
func (r *Repository) TotalCount(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sales`).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func scanSale(row pgx.Row) (Sale, error) {
	var s Sale
	err := row.Scan(
		&s.ID, &s.UserID, &s.ItemID, &s.ItemType, &s.ItemName,
		&s.Quantity, &s.UnitPrice, &s.TotalAmount, &s.PaymentType,
		&s.ReferenceID, &s.SaleDate, &s.Timestamp,
	)
	if err != nil {
		return Sale{}, err
	}
	return s, nil
}
