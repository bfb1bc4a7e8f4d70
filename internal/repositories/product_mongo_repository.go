package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"productapi/internal/errs"
	"productapi/internal/models"
)

// productDocument is the stored shape of a product.
type productDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Price       float64            `bson:"price"`
	Quantity    int                `bson:"quantity"`
	Description string             `bson:"description"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

func (d productDocument) toModel() models.Product {
	return models.Product{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Price:       d.Price,
		Quantity:    d.Quantity,
		Description: d.Description,
		CreatedAt:   d.CreatedAt.UTC(),
	}
}

// MongoProductRepository is a MongoDB implementation of ProductRepository.
type MongoProductRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

// NewMongoProductRepository creates a repository over the given collection.
// A zero timeout leaves the caller's deadline in charge.
func NewMongoProductRepository(coll *mongo.Collection, timeout time.Duration) *MongoProductRepository {
	return &MongoProductRepository{
		coll:    coll,
		timeout: timeout,
	}
}

func (r *MongoProductRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}

// FindAll returns every product in natural order.
func (r *MongoProductRepository) FindAll(ctx context.Context) ([]models.Product, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, errs.Gateway("find all products", fmt.Errorf("failed to query products: %w", err))
	}
	var docs []productDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, errs.Gateway("find all products", fmt.Errorf("failed to decode products: %w", err))
	}

	products := make([]models.Product, 0, len(docs))
	for _, d := range docs {
		products = append(products, d.toModel())
	}
	return products, nil
}

// FindByID returns the product with the given hex ObjectID.
func (r *MongoProductRepository) FindByID(ctx context.Context, id string) (*models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errs.NotFound("find product", id)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var doc productDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errs.NotFound("find product", id)
		}
		return nil, errs.Gateway("find product", fmt.Errorf("failed to get product by ID %s: %w", id, err))
	}
	p := doc.toModel()
	return &p, nil
}

// Create inserts the product and sets its ID and creation time.
func (r *MongoProductRepository) Create(ctx context.Context, product *models.Product) error {
	doc := productDocument{
		ID:          primitive.NewObjectID(),
		Name:        product.Name,
		Price:       product.Price,
		Quantity:    product.Quantity,
		Description: product.Description,
		// BSON dates carry millisecond precision.
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return errs.Gateway("create product", fmt.Errorf("failed to insert product: %w", err))
	}
	*product = doc.toModel()
	return nil
}

// Update applies the set fields of patch with a single $set and returns the
// updated document.
func (r *MongoProductRepository) Update(ctx context.Context, id string, patch models.ProductInput) (*models.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errs.NotFound("update product", id)
	}

	set := patchSet(patch)
	if len(set) == 0 {
		return r.FindByID(ctx, id)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc productDocument
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, errs.NotFound("update product", id)
		}
		return nil, errs.Gateway("update product", fmt.Errorf("failed to update product %s: %w", id, err))
	}
	p := doc.toModel()
	return &p, nil
}

// Delete removes the product with the given ID.
func (r *MongoProductRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return errs.NotFound("delete product", id)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return errs.Gateway("delete product", fmt.Errorf("failed to delete product %s: %w", id, err))
	}
	if res.DeletedCount == 0 {
		return errs.NotFound("delete product", id)
	}
	return nil
}

// Ping checks the primary is reachable.
func (r *MongoProductRepository) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout(r.timeout))
	defer cancel()
	return r.coll.Database().Client().Ping(ctx, readpref.Primary())
}

func patchSet(patch models.ProductInput) bson.M {
	set := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Price != nil {
		set["price"] = *patch.Price
	}
	if patch.Quantity != nil {
		set["quantity"] = int(*patch.Quantity)
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	return set
}
