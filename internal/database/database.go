// Package database owns store connections: it opens the handle for the
// configured store, builds the matching product repository and closes the
// handle on shutdown.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"productapi/internal/config"
	"productapi/internal/repositories"
)

const connectTimeout = 10 * time.Second

// Database holds an open store handle and the repository built on it.
type Database struct {
	Products repositories.ProductRepository

	close func(ctx context.Context) error
}

// Open connects to the store selected by cfg. A Mongo server that cannot be
// reached at startup is logged and the database is returned anyway: the
// driver keeps reconnecting and requests fail individually until it is up.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Database, error) {
	switch cfg.Store {
	case config.StoreMongo:
		return openMongo(ctx, cfg, log)
	case config.StorePostgres:
		return openGORM(postgres.Open(cfg.SQL.DSN), cfg, log)
	case config.StoreSQLite:
		return openGORM(sqlite.Open(cfg.SQL.DSN), cfg, log)
	case config.StoreMemory:
		return &Database{
			Products: repositories.NewMemoryProductRepository(),
			close:    func(context.Context) error { return nil },
		}, nil
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

// Close releases the store handle.
func (d *Database) Close(ctx context.Context) error {
	if d.close == nil {
		return nil
	}
	return d.close(ctx)
}

// ConnectMongo creates a Mongo client for uri and pings the primary. The
// client is returned even when the ping fails.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetConnectTimeout(connectTimeout))
	if err != nil {
		return nil, fmt.Errorf("failed to create MongoDB client: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return client, fmt.Errorf("failed to reach MongoDB: %w", err)
	}
	return client, nil
}

func openMongo(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Database, error) {
	client, err := ConnectMongo(ctx, cfg.Mongo.URI)
	if client == nil {
		return nil, err
	}
	if err != nil {
		log.Error().Err(err).Msg("MongoDB connection error")
	} else {
		log.Info().Str("database", cfg.Mongo.Database).Msg("Successfully connected to MongoDB")
	}

	coll := client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection)
	return &Database{
		Products: repositories.NewMongoProductRepository(coll, cfg.DBTimeout),
		close:    client.Disconnect,
	}, nil
}

func openGORM(dialector gorm.Dialector, cfg *config.Config, log zerolog.Logger) (*Database, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", cfg.Store, err)
	}

	repo := repositories.NewGORMProductRepository(db, cfg.DBTimeout)
	if err := repo.Migrate(); err != nil {
		return nil, err
	}
	log.Info().Str("store", cfg.Store).Msg("Successfully connected to SQL database")

	return &Database{
		Products: repo,
		close: func(context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}, nil
}
