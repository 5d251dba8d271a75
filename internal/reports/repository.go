package reports

import (
	"context"
	"time"

	"github.com/stockerhq/stocker/internal/domain"
	"gorm.io/gorm"
)

// ProductRepository is the read-only catalog access the reporting engine
// needs. All reads hit the store at call time; nothing is cached.
type ProductRepository interface {
	// ListAll returns every product with category and suppliers loaded,
	// ordered by name ascending.
	ListAll(ctx context.Context) ([]*domain.Product, error)

	// ListLowStock returns products with quantity at or below the reorder level.
	ListLowStock(ctx context.Context) ([]*domain.Product, error)

	// ListNearExpiry returns products whose expiry date is set and not after
	// the given horizon.
	ListNearExpiry(ctx context.Context, horizon time.Time) ([]*domain.Product, error)
}

// GormProductRepository is the GORM implementation of ProductRepository
type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) ListAll(ctx context.Context) ([]*domain.Product, error) {
	var products []*domain.Product
	err := r.db.WithContext(ctx).
		Preload("Category").
		Preload("Suppliers").
		Order("name ASC").
		Find(&products).Error
	return products, err
}

func (r *GormProductRepository) ListLowStock(ctx context.Context) ([]*domain.Product, error) {
	var products []*domain.Product
	err := r.db.WithContext(ctx).
		Where("quantity <= reorder_level").
		Order("name ASC").
		Find(&products).Error
	return products, err
}

func (r *GormProductRepository) ListNearExpiry(ctx context.Context, horizon time.Time) ([]*domain.Product, error) {
	var products []*domain.Product
	err := r.db.WithContext(ctx).
		Where("expiry_date IS NOT NULL AND expiry_date <= ?", horizon).
		Order("name ASC").
		Find(&products).Error
	return products, err
}
