package persistence

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/grocer/backend/internal/domain/shared/valueobject"
	"github.com/grocer/backend/internal/domain/shopping"
	"github.com/grocer/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sqliteConfig(t *testing.T) *config.DatabaseConfig {
	t.Helper()
	return &config.DatabaseConfig{
		Driver:          "sqlite",
		Path:            filepath.Join(t.TempDir(), "grocer.db"),
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: 1,
		ConnMaxIdleTime: 1,
	}
}

func TestSqliteFreshStartup(t *testing.T) {
	ctx := context.Background()

	db, err := NewDatabase(sqliteConfig(t))
	require.NoError(t, err)
	defer func() {
		require.NoError(t, db.Close())
	}()

	store := NewGormStore(db.DB)

	// A fresh file has no rows yet; the schema must already be in place.
	list, err := store.EnsureActiveList(ctx, "Compras", "BRL")
	require.NoError(t, err)
	assert.Equal(t, "Compras", list.Name)

	again, err := store.EnsureActiveList(ctx, "Compras", "BRL")
	require.NoError(t, err)
	assert.Equal(t, list.ID, again.ID)

	category, err := shopping.NewCategory("mercearia", 1)
	require.NoError(t, err)
	require.NoError(t, store.SaveCategory(ctx, category))

	item, err := shopping.NewItem(list.ID, category.ID, "Arroz",
		valueobject.DefaultQuantity(), valueobject.DefaultUnit(), 1)
	require.NoError(t, err)
	require.NoError(t, store.SaveItem(ctx, item))

	items, err := store.Items(ctx, list.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Arroz", items[0].Name)
	assert.Equal(t, "un", items[0].Unit.Code())
}
