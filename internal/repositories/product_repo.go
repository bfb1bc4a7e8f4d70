package repositories

import (
	"context"

	"productapi/internal/models"
)

// ProductRepository defines the interface for product storage drivers.
//
// Implementations report a missing record, including one addressed by a
// malformed identifier, as an errs.KindNotFound error, and any driver
// failure as errs.KindGateway.
type ProductRepository interface {
	FindAll(ctx context.Context) ([]models.Product, error)
	FindByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	// Update persists the fields set in patch and returns the stored record.
	Update(ctx context.Context, id string, patch models.ProductInput) (*models.Product, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}
