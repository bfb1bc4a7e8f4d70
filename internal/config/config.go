package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported product stores.
const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreMemory   = "memory"
)

// Config is the process configuration.
type Config struct {
	Port            string
	Store           string
	DBTimeout       time.Duration
	ShutdownTimeout time.Duration

	Mongo    MongoConfig
	SQL      SQLConfig
	RabbitMQ RabbitMQConfig
	Log      LogConfig

	CORSAllowOrigins string
}

type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

type SQLConfig struct {
	DSN string
}

// RabbitMQConfig enables product events when URL is set.
type RabbitMQConfig struct {
	URL   string
	Queue string
}

type LogConfig struct {
	Level  string
	Pretty bool
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "3000")
	v.SetDefault("STORE", StoreMongo)
	v.SetDefault("DB_TIMEOUT", "5s")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("MONGODB_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGODB_DATABASE", "products")
	v.SetDefault("MONGODB_COLLECTION", "products")
	v.SetDefault("DATABASE_DSN", "")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_QUEUE", "product_events")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", false)
	v.SetDefault("CORS_ALLOW_ORIGINS", "*")
}

// LoadEnvFile loads variables from a dotenv file into the process
// environment. A missing file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load reads the configuration from v, applying defaults and environment
// variables.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		Port:            strings.TrimPrefix(v.GetString("PORT"), ":"),
		Store:           strings.ToLower(v.GetString("STORE")),
		DBTimeout:       v.GetDuration("DB_TIMEOUT"),
		ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
		Mongo: MongoConfig{
			URI:        v.GetString("MONGODB_URI"),
			Database:   v.GetString("MONGODB_DATABASE"),
			Collection: v.GetString("MONGODB_COLLECTION"),
		},
		SQL: SQLConfig{
			DSN: v.GetString("DATABASE_DSN"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:   v.GetString("RABBITMQ_URL"),
			Queue: v.GetString("RABBITMQ_QUEUE"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Pretty: v.GetBool("LOG_PRETTY"),
		},
		CORSAllowOrigins: v.GetString("CORS_ALLOW_ORIGINS"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected store has what it needs.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT must not be empty")
	}
	switch c.Store {
	case StoreMongo:
		if c.Mongo.URI == "" {
			return errors.New("MONGODB_URI is required for the mongo store")
		}
	case StorePostgres:
		if c.SQL.DSN == "" {
			return errors.New("DATABASE_DSN is required for the postgres store")
		}
	case StoreSQLite:
		if c.SQL.DSN == "" {
			c.SQL.DSN = "file::memory:?cache=shared"
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown STORE %q", c.Store)
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return ":" + c.Port
}
