package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"productapi/internal/errs"
	"productapi/internal/models"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
// A zero timeout leaves the caller's deadline in charge.
func NewGORMProductRepository(db *gorm.DB, timeout time.Duration) *GORMProductRepository {
	return &GORMProductRepository{
		db:      db,
		timeout: timeout,
	}
}

// Migrate creates or updates the products table.
func (r *GORMProductRepository) Migrate() error {
	if err := r.db.AutoMigrate(&models.Product{}); err != nil {
		return fmt.Errorf("failed to migrate products table: %w", err)
	}
	return nil
}

func (r *GORMProductRepository) withTimeout(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	if r.timeout <= 0 {
		return r.db.WithContext(ctx), func() {}
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	return r.db.WithContext(ctx), cancel
}

// FindAll retrieves all products in insertion order.
func (r *GORMProductRepository) FindAll(ctx context.Context) ([]models.Product, error) {
	db, cancel := r.withTimeout(ctx)
	defer cancel()

	products := make([]models.Product, 0)
	if err := db.Order("created_at").Order("id").Find(&products).Error; err != nil {
		return nil, errs.Gateway("find all products", fmt.Errorf("failed to get all products: %w", err))
	}
	return products, nil
}

// FindByID retrieves a single product by its ID.
func (r *GORMProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errs.NotFound("find product", id)
	}

	db, cancel := r.withTimeout(ctx)
	defer cancel()

	var product models.Product
	if err := db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("find product", id)
		}
		return nil, errs.Gateway("find product", fmt.Errorf("failed to get product by ID %s: %w", id, err))
	}
	return &product, nil
}

// Create assigns an ID and creation time and inserts the product.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	product.ID = uuid.New().String()
	product.CreatedAt = time.Now().UTC()

	db, cancel := r.withTimeout(ctx)
	defer cancel()

	if err := db.Create(product).Error; err != nil {
		return errs.Gateway("create product", fmt.Errorf("failed to create product: %w", err))
	}
	return nil
}

// Update writes only the columns set in patch.
func (r *GORMProductRepository) Update(ctx context.Context, id string, patch models.ProductInput) (*models.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errs.NotFound("update product", id)
	}

	columns := patchColumns(patch)
	db, cancel := r.withTimeout(ctx)
	defer cancel()

	var product models.Product
	err := db.Transaction(func(tx *gorm.DB) error {
		if len(columns) > 0 {
			res := tx.Model(&models.Product{}).Where("id = ?", id).Updates(columns)
			if res.Error != nil {
				return res.Error
			}
		}
		return tx.First(&product, "id = ?", id).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("update product", id)
		}
		return nil, errs.Gateway("update product", fmt.Errorf("failed to update product %s: %w", id, err))
	}
	return &product, nil
}

// Delete removes a product by its ID.
func (r *GORMProductRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errs.NotFound("delete product", id)
	}

	db, cancel := r.withTimeout(ctx)
	defer cancel()

	res := db.Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return errs.Gateway("delete product", fmt.Errorf("failed to delete product: %w", res.Error))
	}
	if res.RowsAffected == 0 {
		return errs.NotFound("delete product", id)
	}
	return nil
}

// Ping checks the underlying SQL connection.
func (r *GORMProductRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout(r.timeout))
	defer cancel()
	return sqlDB.PingContext(ctx)
}

// patchColumns maps the set fields of patch to column values. A map is used
// so zero values are written.
func patchColumns(patch models.ProductInput) map[string]interface{} {
	cols := make(map[string]interface{}, 4)
	if patch.Name != nil {
		cols["name"] = *patch.Name
	}
	if patch.Price != nil {
		cols["price"] = *patch.Price
	}
	if patch.Quantity != nil {
		cols["quantity"] = int(*patch.Quantity)
	}
	if patch.Description != nil {
		cols["description"] = *patch.Description
	}
	return cols
}

func pingTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return 2 * time.Second
	}
	return d
}
