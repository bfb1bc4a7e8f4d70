package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"productapi/internal/errs"
	"productapi/internal/models"
	"productapi/internal/repositories"
)

// EventPublisher receives product events after successful mutations.
type EventPublisher interface {
	PublishProductEvent(event models.ProductEvent) error
}

// ProductService is the persistence gateway for products. It validates
// candidates against the product schema before they reach the repository
// and guarantees every returned error carries an errs.Kind.
type ProductService struct {
	repo   repositories.ProductRepository
	events EventPublisher
	logger zerolog.Logger
}

// NewProductService creates a new ProductService. events may be nil.
func NewProductService(repo repositories.ProductRepository, events EventPublisher, logger zerolog.Logger) *ProductService {
	return &ProductService{
		repo:   repo,
		events: events,
		logger: logger.With().Str("component", "product_service").Logger(),
	}
}

// FindAll retrieves all products. The result is never nil.
func (s *ProductService) FindAll(ctx context.Context) ([]models.Product, error) {
	products, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, withKind("find all products", err)
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

// FindByID retrieves a single product by its ID.
func (s *ProductService) FindByID(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, withKind("find product", err)
	}
	return product, nil
}

// Create validates the candidate and stores it.
func (s *ProductService) Create(ctx context.Context, in models.ProductInput) (*models.Product, error) {
	product, err := models.ValidateProduct(in)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, &product); err != nil {
		return nil, withKind("create product", err)
	}

	s.publish(models.EventProductCreated, product.ID, &product)
	return &product, nil
}

// UpdateByID merges patch into the stored product, validates the merged
// record and persists the patched fields.
func (s *ProductService) UpdateByID(ctx context.Context, id string, patch models.ProductInput) (*models.Product, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, withKind("update product", err)
	}

	merged, err := models.ValidateProduct(models.ApplyPatch(*current, patch))
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, id, normalizePatch(patch, merged))
	if err != nil {
		return nil, withKind("update product", err)
	}

	s.publish(models.EventProductUpdated, updated.ID, updated)
	return updated, nil
}

// DeleteByID deletes a product by its ID.
func (s *ProductService) DeleteByID(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return withKind("delete product", err)
	}

	s.publish(models.EventProductDeleted, id, nil)
	return nil
}

// Ping reports whether the store is reachable.
func (s *ProductService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func (s *ProductService) publish(eventType, id string, product *models.Product) {
	if s.events == nil {
		return
	}
	event := models.ProductEvent{
		Type:       eventType,
		ProductID:  id,
		Product:    product,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.events.PublishProductEvent(event); err != nil {
		s.logger.Warn().Err(err).Str("event", eventType).Str("product_id", id).Msg("failed to publish product event")
	}
}

// normalizePatch keeps the fields present in patch, taking their values from
// the validated record so trimming and integer conversion are persisted.
func normalizePatch(patch models.ProductInput, validated models.Product) models.ProductInput {
	var out models.ProductInput
	if patch.Name != nil {
		out.Name = &validated.Name
	}
	if patch.Price != nil {
		out.Price = &validated.Price
	}
	if patch.Quantity != nil {
		q := float64(validated.Quantity)
		out.Quantity = &q
	}
	if patch.Description != nil {
		out.Description = &validated.Description
	}
	return out
}

// withKind wraps errors that do not already carry a kind as gateway faults.
func withKind(op string, err error) error {
	var e *errs.Error
	if errors.As(err, &e) {
		return err
	}
	return errs.Gateway(op, err)
}
