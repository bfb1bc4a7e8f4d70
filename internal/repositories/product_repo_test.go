package repositories_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"productapi/internal/errs"
	"productapi/internal/models"
	"productapi/internal/repositories"
)

func strPtr(s string) *string   { return &s }
func numPtr(f float64) *float64 { return &f }

// testProductRepository exercises the behaviour every store driver shares.
// missingID is well formed but absent from the store.
func testProductRepository(t *testing.T, repo repositories.ProductRepository, missingID string) {
	ctx := context.Background()

	t.Run("empty store lists nothing", func(t *testing.T) {
		products, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assert.NotNil(t, products)
		assert.Empty(t, products)
	})

	first := &models.Product{Name: "Test Laptop", Price: 1000, Quantity: 5, Description: "For testing purposes"}
	second := &models.Product{Name: "Test Monitor", Price: 200, Quantity: 10}

	t.Run("create assigns id and timestamp", func(t *testing.T) {
		before := time.Now().Add(-time.Second)
		require.NoError(t, repo.Create(ctx, first))
		require.NoError(t, repo.Create(ctx, second))

		assert.NotEmpty(t, first.ID)
		assert.NotEqual(t, first.ID, second.ID)
		assert.True(t, first.CreatedAt.After(before))
	})

	t.Run("find all in insertion order", func(t *testing.T) {
		products, err := repo.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.Equal(t, first.ID, products[0].ID)
		assert.Equal(t, second.ID, products[1].ID)
	})

	t.Run("find by id", func(t *testing.T) {
		product, err := repo.FindByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, first.Name, product.Name)
		assert.Equal(t, first.Price, product.Price)
		assert.Equal(t, first.Quantity, product.Quantity)
		assert.Equal(t, first.Description, product.Description)
		assert.WithinDuration(t, first.CreatedAt, product.CreatedAt, time.Millisecond)
	})

	t.Run("missing and malformed ids are not found", func(t *testing.T) {
		for _, id := range []string{missingID, "not-an-id", ""} {
			_, err := repo.FindByID(ctx, id)
			assert.True(t, errs.IsNotFound(err), "find %q", id)

			_, err = repo.Update(ctx, id, models.ProductInput{Name: strPtr("X")})
			assert.True(t, errs.IsNotFound(err), "update %q", id)

			err = repo.Delete(ctx, id)
			assert.True(t, errs.IsNotFound(err), "delete %q", id)
		}
	})

	t.Run("update sets only patched fields", func(t *testing.T) {
		updated, err := repo.Update(ctx, first.ID, models.ProductInput{Name: strPtr("Updated Product"), Quantity: numPtr(0)})
		require.NoError(t, err)
		assert.Equal(t, first.ID, updated.ID)
		assert.Equal(t, "Updated Product", updated.Name)
		assert.Equal(t, 0, updated.Quantity)
		assert.Equal(t, first.Price, updated.Price)
		assert.Equal(t, first.Description, updated.Description)

		same, err := repo.Update(ctx, first.ID, models.ProductInput{})
		require.NoError(t, err)
		assert.Equal(t, "Updated Product", same.Name)
	})

	t.Run("delete is hard and not repeatable", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, second.ID))

		_, err := repo.FindByID(ctx, second.ID)
		assert.True(t, errs.IsNotFound(err))
		assert.True(t, errs.IsNotFound(repo.Delete(ctx, second.ID)))

		products, err := repo.FindAll(ctx)
		require.NoError(t, err)
		assert.Len(t, products, 1)
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, repo.Ping(ctx))
	})
}

func TestMemoryProductRepository(t *testing.T) {
	testProductRepository(t, repositories.NewMemoryProductRepository(), uuid.NewString())
}

func TestGORMProductRepository(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	repo := repositories.NewGORMProductRepository(db, 5*time.Second)
	require.NoError(t, repo.Migrate())

	testProductRepository(t, repo, uuid.NewString())
}

func TestGORMProductRepository_ClosedDatabaseIsGatewayError(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	repo := repositories.NewGORMProductRepository(db, 0)
	require.NoError(t, repo.Migrate())

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = repo.FindAll(context.Background())
	assert.Equal(t, errs.KindGateway, errs.KindOf(err))
	assert.Error(t, repo.Ping(context.Background()))
}

// TestMongoProductRepository runs against a live server named by
// MONGODB_TEST_URI and uses a throwaway database.
func TestMongoProductRepository(t *testing.T) {
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set")
	}

	ctx := context.Background()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(ctx) })

	db := client.Database("productapi_test_" + primitive.NewObjectID().Hex())
	t.Cleanup(func() { _ = db.Drop(ctx) })

	repo := repositories.NewMongoProductRepository(db.Collection("products"), 5*time.Second)
	testProductRepository(t, repo, primitive.NewObjectID().Hex())
}
