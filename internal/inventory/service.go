package inventory

import (
	"context"
	"errors"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (Product, error)
	CreateService(ctx context.Context, input CreateServiceInput) (ServiceItem, error)
	CreatePrint(ctx context.Context, input CreatePrintInput) (Print, error)
	GetProduct(ctx context.Context, id int64) (Product, error)
	GetService(ctx context.Context, id int64) (ServiceItem, error)
	GetPrint(ctx context.Context, id int64) (Print, error)
	ListProducts(ctx context.Context) ([]Product, error)
	ListServices(ctx context.Context) ([]ServiceItem, error)
	ListPrints(ctx context.Context) ([]Print, error)
	Snapshot(ctx context.Context, itemType ItemType, id int64) (ItemSnapshot, error)
}

// Service coordinates inventory item reads and item creation.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// CreateProduct registers a new product.
func (s *Service) CreateProduct(ctx context.Context, input CreateProductInput) (Product, error) {
	if input.Name == "" {
		return Product{}, errors.New("inventory: name required")
	}
	if input.UnitPrice < 0 || input.TotalStock < 0 {
		return Product{}, errors.New("inventory: price and stock must be >= 0")
	}
	return s.repo.CreateProduct(ctx, input)
}

// CreateService registers a new service offering.
func (s *Service) CreateService(ctx context.Context, input CreateServiceInput) (ServiceItem, error) {
	if input.Name == "" {
		return ServiceItem{}, errors.New("inventory: name required")
	}
	if input.UnitPrice < 0 {
		return ServiceItem{}, errors.New("inventory: price must be >= 0")
	}
	return s.repo.CreateService(ctx, input)
}

// CreatePrint registers a new print run.
func (s *Service) CreatePrint(ctx context.Context, input CreatePrintInput) (Print, error) {
	if input.Name == "" {
		return Print{}, errors.New("inventory: name required")
	}
	if input.UnitPrice < 0 || input.Copies < 0 {
		return Print{}, errors.New("inventory: price and copies must be >= 0")
	}
	return s.repo.CreatePrint(ctx, input)
}

// GetProduct returns one product.
func (s *Service) GetProduct(ctx context.Context, id int64) (Product, error) {
	return s.repo.GetProduct(ctx, id)
}

// GetService returns one service offering.
func (s *Service) GetService(ctx context.Context, id int64) (ServiceItem, error) {
	return s.repo.GetService(ctx, id)
}

// GetPrint returns one print run.
func (s *Service) GetPrint(ctx context.Context, id int64) (Print, error) {
	return s.repo.GetPrint(ctx, id)
}

// ListProducts lists all products.
func (s *Service) ListProducts(ctx context.Context) ([]Product, error) {
	return s.repo.ListProducts(ctx)
}

// ListServices lists all service offerings.
func (s *Service) ListServices(ctx context.Context) ([]ServiceItem, error) {
	return s.repo.ListServices(ctx)
}

// ListPrints lists all print runs.
func (s *Service) ListPrints(ctx context.Context) ([]Print, error) {
	return s.repo.ListPrints(ctx)
}

// Snapshot resolves the unified counter view for one item.
func (s *Service) Snapshot(ctx context.Context, rawType string, id int64) (ItemSnapshot, error) {
	itemType, err := ParseItemType(rawType)
	if err != nil {
		return ItemSnapshot{}, err
	}
	return s.repo.Snapshot(ctx, itemType, id)
}
