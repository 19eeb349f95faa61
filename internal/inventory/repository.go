package inventory

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists inventory items in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateProduct inserts a product row and returns it.
func (r *Repository) CreateProduct(ctx context.Context, input CreateProductInput) (Product, error) {
	var p Product
	err := r.pool.QueryRow(ctx, `INSERT INTO products (name, unit_price, total_stock, sold, created_at, updated_at)
VALUES ($1, $2, $3, 0, now(), now())
RETURNING id, name, unit_price, total_stock, sold, created_at, updated_at`,
		input.Name, input.UnitPrice, input.TotalStock,
	).Scan(&p.ID, &p.Name, &p.UnitPrice, &p.TotalStock, &p.Sold, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

// CreateService inserts a service row and returns it.
func (r *Repository) CreateService(ctx context.Context, input CreateServiceInput) (ServiceItem, error) {
	var s ServiceItem
	err := r.pool.QueryRow(ctx, `INSERT INTO services (name, unit_price, offered, created_at, updated_at)
VALUES ($1, $2, 0, now(), now())
RETURNING id, name, unit_price, offered, created_at, updated_at`,
		input.Name, input.UnitPrice,
	).Scan(&s.ID, &s.Name, &s.UnitPrice, &s.Offered, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return ServiceItem{}, err
	}
	return s, nil
}

// CreatePrint inserts a print row and returns it.
func (r *Repository) CreatePrint(ctx context.Context, input CreatePrintInput) (Print, error) {
	var p Print
	err := r.pool.QueryRow(ctx, `INSERT INTO prints (name, unit_price, copies, created_at, updated_at)
VALUES ($1, $2, $3, now(), now())
RETURNING id, name, unit_price, copies, created_at, updated_at`,
		input.Name, input.UnitPrice, input.Copies,
	).Scan(&p.ID, &p.Name, &p.UnitPrice, &p.Copies, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Print{}, err
	}
	return p, nil
}

// GetProduct returns one product by id.
func (r *Repository) GetProduct(ctx context.Context, id int64) (Product, error) {
	var p Product
	err := r.pool.QueryRow(ctx, `SELECT id, name, unit_price, total_stock, sold, created_at, updated_at
FROM products WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.UnitPrice, &p.TotalStock, &p.Sold, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrItemNotFound
		}
		return Product{}, err
	}
	return p, nil
}

// GetService returns one service offering by id.
func (r *Repository) GetService(ctx context.Context, id int64) (ServiceItem, error) {
	var s ServiceItem
	err := r.pool.QueryRow(ctx, `SELECT id, name, unit_price, offered, created_at, updated_at
FROM services WHERE id = $1`, id,
	).Scan(&s.ID, &s.Name, &s.UnitPrice, &s.Offered, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ServiceItem{}, ErrItemNotFound
		}
		return ServiceItem{}, err
	}
	return s, nil
}

// GetPrint returns one print run by id.
func (r *Repository) GetPrint(ctx context.Context, id int64) (Print, error) {
	var p Print
	err := r.pool.QueryRow(ctx, `SELECT id, name, unit_price, copies, created_at, updated_at
FROM prints WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.UnitPrice, &p.Copies, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Print{}, ErrItemNotFound
		}
		return Print{}, err
	}
	return p, nil
}

// ListProducts returns all products ordered by id.
func (r *Repository) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, unit_price, total_stock, sold, created_at, updated_at
FROM products ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.UnitPrice, &p.TotalStock, &p.Sold, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

// ListServices returns all service offerings ordered by id.
func (r *Repository) ListServices(ctx context.Context) ([]ServiceItem, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, unit_price, offered, created_at, updated_at
FROM services ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var services []ServiceItem
	for rows.Next() {
		var s ServiceItem
		if err := rows.Scan(&s.ID, &s.Name, &s.UnitPrice, &s.Offered, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		services = append(services, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return services, nil
}

// ListPrints returns all print runs ordered by id.
func (r *Repository) ListPrints(ctx context.Context) ([]Print, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, unit_price, copies, created_at, updated_at
FROM prints ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var prints []Print
	for rows.Next() {
		var p Print
		if err := rows.Scan(&p.ID, &p.Name, &p.UnitPrice, &p.Copies, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		prints = append(prints, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return prints, nil
}

// Snapshot returns the unified counter view for one item.
func (r *Repository) Snapshot(ctx context.Context, itemType ItemType, id int64) (ItemSnapshot, error) {
	switch itemType {
	case ItemTypeProduct:
		p, err := r.GetProduct(ctx, id)
		if err != nil {
			return ItemSnapshot{}, err
		}
		return ItemSnapshot{ItemID: p.ID, ItemType: ItemTypeProduct, Name: p.Name, Count: p.TotalStock}, nil
	case ItemTypeService:
		s, err := r.GetService(ctx, id)
		if err != nil {
			return ItemSnapshot{}, err
		}
		return ItemSnapshot{ItemID: s.ID, ItemType: ItemTypeService, Name: s.Name, Count: s.Offered}, nil
	case ItemTypePrint:
		p, err := r.GetPrint(ctx, id)
		if err != nil {
			return ItemSnapshot{}, err
		}
		return ItemSnapshot{ItemID: p.ID, ItemType: ItemTypePrint, Name: p.Name, Count: p.Copies}, nil
	default:
		return ItemSnapshot{}, ErrInvalidItemType
	}
}
