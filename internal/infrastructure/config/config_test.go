package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	assert.Equal(t, "grocer-backend", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 15*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, "pt-BR", cfg.List.Locale)
	assert.Equal(t, "BRL", cfg.List.CurrencyCode)
	assert.Empty(t, cfg.HTTP.CORSAllowOrigins)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("GROCER_APP_PORT", "9090")
	t.Setenv("GROCER_DATABASE_DRIVER", "sqlite")
	t.Setenv("GROCER_LIST_LOCALE", "en")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "en", cfg.List.Locale)
	// Untouched keys keep their defaults.
	assert.Equal(t, "BRL", cfg.List.CurrencyCode)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		applyDefaults(cfg)
		return cfg
	}

	t.Run("defaults pass", func(t *testing.T) {
		require.NoError(t, base().validate())
	})

	t.Run("rejects unknown driver", func(t *testing.T) {
		cfg := base()
		cfg.Database.Driver = "mysql"
		require.Error(t, cfg.validate())
	})

	t.Run("rejects idle conns above open conns", func(t *testing.T) {
		cfg := base()
		cfg.Database.MaxIdleConns = 100
		require.Error(t, cfg.validate())
	})

	t.Run("rejects malformed currency code", func(t *testing.T) {
		cfg := base()
		cfg.List.CurrencyCode = "REAL"
		require.Error(t, cfg.validate())
	})

	t.Run("production requires password and ssl for postgres", func(t *testing.T) {
		cfg := base()
		cfg.App.Env = "production"
		require.Error(t, cfg.validate())

		cfg.Database.Password = "secret"
		require.Error(t, cfg.validate())

		cfg.Database.SSLMode = "require"
		require.NoError(t, cfg.validate())
	})

	t.Run("production sqlite needs no password", func(t *testing.T) {
		cfg := base()
		cfg.App.Env = "production"
		cfg.Database.Driver = "sqlite"
		require.NoError(t, cfg.validate())
	})

	t.Run("production rejects wildcard CORS origin", func(t *testing.T) {
		cfg := base()
		cfg.App.Env = "production"
		cfg.Database.Driver = "sqlite"
		cfg.HTTP.CORSAllowOrigins = []string{"*"}
		require.Error(t, cfg.validate())
	})
}

func TestDSN(t *testing.T) {
	t.Run("postgres escapes credentials", func(t *testing.T) {
		cfg := DatabaseConfig{
			Driver:   "postgres",
			Host:     "db.local",
			Port:     5432,
			User:     "app",
			Password: "p@ss:word",
			DBName:   "grocer",
			SSLMode:  "require",
		}
		dsn := cfg.DSN()
		assert.Contains(t, dsn, "postgres://")
		assert.Contains(t, dsn, "db.local:5432")
		assert.Contains(t, dsn, "sslmode=require")
		assert.NotContains(t, dsn, "p@ss:word")
	})

	t.Run("sqlite returns the file path", func(t *testing.T) {
		cfg := DatabaseConfig{Driver: "sqlite", Path: "data/grocer.db"}
		assert.Equal(t, "data/grocer.db", cfg.DSN())
	})
}
