package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"productapi/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, ":3000", cfg.Addr())
	assert.Equal(t, config.StoreMongo, cfg.Store)
	assert.Equal(t, 5*time.Second, cfg.DBTimeout)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URI)
	assert.Equal(t, "products", cfg.Mongo.Collection)
	assert.Empty(t, cfg.RabbitMQ.URL)
	assert.Equal(t, "*", cfg.CORSAllowOrigins)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", ":8081")
	t.Setenv("STORE", "SQLite")
	t.Setenv("DB_TIMEOUT", "250ms")
	t.Setenv("LOG_PRETTY", "true")

	cfg, err := config.Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.Port)
	assert.Equal(t, config.StoreSQLite, cfg.Store)
	assert.Equal(t, 250*time.Millisecond, cfg.DBTimeout)
	assert.True(t, cfg.Log.Pretty)
	assert.NotEmpty(t, cfg.SQL.DSN)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("STORE", "cassandra")
	_, err := config.Load(viper.New())
	assert.ErrorContains(t, err, "unknown STORE")

	t.Setenv("STORE", config.StorePostgres)
	t.Setenv("DATABASE_DSN", "")
	_, err = config.Load(viper.New())
	assert.ErrorContains(t, err, "DATABASE_DSN")
}

func TestLoadEnvFile(t *testing.T) {
	assert.NoError(t, config.LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PRODUCTAPI_TEST_KEY=from-dotenv\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("PRODUCTAPI_TEST_KEY") })

	require.NoError(t, config.LoadEnvFile(path))
	assert.Equal(t, "from-dotenv", os.Getenv("PRODUCTAPI_TEST_KEY"))
}
