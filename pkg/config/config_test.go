package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, StoreMemory, cfg.Store.Driver)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, int64(5), cfg.Inventory.LowStockThreshold)
	assert.Equal(t, 25, cfg.DB.MaxConns)
	assert.False(t, cfg.DB.AutoMigrate)
}

func TestLoad_VariablesDeEntorno(t *testing.T) {
	t.Setenv("STORE_DRIVER", "MongoDB")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("LOW_STOCK_THRESHOLD", "12")
	t.Setenv("DB_AUTO_MIGRATE", "true")
	t.Setenv("MONGO_DATABASE", "bodega")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, StoreMongoDB, cfg.Store.Driver)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, int64(12), cfg.Inventory.LowStockThreshold)
	assert.True(t, cfg.DB.AutoMigrate)
	assert.Equal(t, "bodega", cfg.Mongo.Database)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"driver desconocido", Config{Store: StoreConfig{Driver: "sqlite"}}, false},
		{"produccion sin secreto", Config{App: AppConfig{Env: "production"}, Store: StoreConfig{Driver: StorePostgres}}, false},
		{"produccion en memoria", Config{App: AppConfig{Env: "production"}, Store: StoreConfig{Driver: StoreMemory}, JWT: JWTConfig{Secret: "s"}}, false},
		{"desarrollo", Config{App: AppConfig{Env: "development"}, Store: StoreConfig{Driver: StoreMemory}}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestDBConfig_DSN(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss", DBName: "warehouse", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss@db:5432/warehouse?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
