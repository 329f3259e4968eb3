package shopping

import (
	"context"
	"testing"
	"time"

	"github.com/grocer/backend/internal/domain/shared"
	"github.com/grocer/backend/internal/domain/shared/valueobject"
	"github.com/grocer/backend/internal/domain/shopping"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockStore is a mock implementation of shopping.Store
type MockStore struct {
	mock.Mock
}

func (m *MockStore) ActiveList(ctx context.Context) (*shopping.List, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shopping.List), args.Error(1)
}

func (m *MockStore) Categories(ctx context.Context) ([]shopping.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]shopping.Category), args.Error(1)
}

func (m *MockStore) Items(ctx context.Context, listID uuid.UUID) ([]shopping.Item, error) {
	args := m.Called(ctx, listID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]shopping.Item), args.Error(1)
}

func (m *MockStore) SaveItem(ctx context.Context, item *shopping.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockStore) DeleteItem(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStore) SaveCategory(ctx context.Context, category *shopping.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockStore) Transaction(ctx context.Context, fn func(shopping.Store) error) error {
	args := m.Called(ctx, fn)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(m)
}

func testQuantity(t *testing.T, value float64) valueobject.Quantity {
	t.Helper()
	q, err := valueobject.NewQuantityFromFloat(value)
	require.NoError(t, err)
	return q
}

func testList(t *testing.T) *shopping.List {
	t.Helper()
	list, err := shopping.NewList("Compras", "BRL")
	require.NoError(t, err)
	return list
}

func testCategory(t *testing.T, name string, sortOrder int) *shopping.Category {
	t.Helper()
	category, err := shopping.NewCategory(name, sortOrder)
	require.NoError(t, err)
	return category
}

func testItem(t *testing.T, list *shopping.List, category *shopping.Category, name string, position int) *shopping.Item {
	t.Helper()
	item, err := shopping.NewItem(list.ID, category.ID, name, testQuantity(t, 1), valueobject.DefaultUnit(), position)
	require.NoError(t, err)
	return item
}

func serviceAt(store shopping.Store, at time.Time) *ItemService {
	svc := NewItemService(store)
	svc.now = func() time.Time { return at }
	return svc
}

func TestItemService_Add(t *testing.T) {
	ctx := context.Background()

	t.Run("matches existing category case-insensitively", func(t *testing.T) {
		store := new(MockStore)
		list := testList(t)
		grocery := testCategory(t, "mercearia", 1)
		existing := testItem(t, list, grocery, "Arroz", 1)

		store.On("Transaction", mock.Anything, mock.Anything).Return(nil)
		store.On("ActiveList", ctx).Return(list, nil)
		store.On("Categories", ctx).Return([]shopping.Category{*grocery}, nil)
		store.On("Items", ctx, list.ID).Return([]shopping.Item{*existing}, nil)
		store.On("SaveItem", ctx, mock.AnythingOfType("*shopping.Item")).Return(nil)

		svc := NewItemService(store)
		item, err := svc.Add(ctx, &shopping.ParsedItem{
			Name:     "Feijão",
			Quantity: testQuantity(t, 2),
			Unit:     valueobject.DefaultUnit(),
			Category: "Mercearia",
		})
		require.NoError(t, err)

		assert.Equal(t, grocery.ID, item.CategoryID)
		assert.Equal(t, 2, item.Position)
		assert.Equal(t, shopping.ItemStatusPending, item.Status)
		store.AssertNotCalled(t, "SaveCategory", mock.Anything, mock.Anything)
	})

	t.Run("creates category when none matches", func(t *testing.T) {
		store := new(MockStore)
		list := testList(t)
		grocery := testCategory(t, "mercearia", 3)

		store.On("Transaction", mock.Anything, mock.Anything).Return(nil)
		store.On("ActiveList", ctx).Return(list, nil)
		store.On("Categories", ctx).Return([]shopping.Category{*grocery}, nil)
		store.On("Items", ctx, list.ID).Return([]shopping.Item{}, nil)
		store.On("SaveCategory", ctx, mock.AnythingOfType("*shopping.Category")).Return(nil)
		store.On("SaveItem", ctx, mock.AnythingOfType("*shopping.Item")).Return(nil)

		svc := NewItemService(store)
		item, err := svc.Add(ctx, &shopping.ParsedItem{
			Name:     "Pão",
			Quantity: testQuantity(t, 6),
			Unit:     valueobject.DefaultUnit(),
			Category: "padaria",
		})
		require.NoError(t, err)

		assert.Equal(t, 1, item.Position)
		store.AssertCalled(t, "SaveCategory", ctx, mock.MatchedBy(func(c *shopping.Category) bool {
			return c.Name == "padaria" && c.SortOrder == 4
		}))
	})

	t.Run("propagates save failures", func(t *testing.T) {
		store := new(MockStore)
		list := testList(t)
		grocery := testCategory(t, "mercearia", 1)

		store.On("Transaction", mock.Anything, mock.Anything).Return(nil)
		store.On("ActiveList", ctx).Return(list, nil)
		store.On("Categories", ctx).Return([]shopping.Category{*grocery}, nil)
		store.On("Items", ctx, list.ID).Return([]shopping.Item{}, nil)
		store.On("SaveItem", ctx, mock.Anything).Return(assert.AnError)

		svc := NewItemService(store)
		_, err := svc.Add(ctx, &shopping.ParsedItem{
			Name:     "Feijão",
			Quantity: testQuantity(t, 1),
			Unit:     valueobject.DefaultUnit(),
			Category: "mercearia",
		})
		require.ErrorIs(t, err, assert.AnError)
	})
}

func TestItemService_TogglePurchased(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	t.Run("pending item moves to end of purchased partition", func(t *testing.T) {
		store := new(MockStore)
		list := testList(t)
		grocery := testCategory(t, "mercearia", 1)
		target := testItem(t, list, grocery, "Arroz", 1)
		done := testItem(t, list, grocery, "Feijão", 4)
		done.MarkPurchased(4, now.Add(-time.Hour))

		store.On("Transaction", mock.Anything, mock.Anything).Return(nil)
		store.On("ActiveList", ctx).Return(list, nil)
		store.On("Items", ctx, list.ID).Return([]shopping.Item{*target, *done}, nil)
		store.On("SaveItem", ctx, mock.AnythingOfType("*shopping.Item")).Return(nil)

		svc := serviceAt(store, now)
		toggled, err := svc.TogglePurchased(ctx, target.ID)
		require.NoError(t, err)

		assert.Equal(t, shopping.ItemStatusPurchased, toggled.Status)
		assert.Equal(t, 5, toggled.Position)
		require.NotNil(t, toggled.PurchasedAt)
		assert.Equal(t, now, *toggled.PurchasedAt)
	})

	t.Run("purchased item returns to pending and clears timestamp", func(t *testing.T) {
		store := new(MockStore)
		list := testList(t)
		grocery := testCategory(t, "mercearia", 1)
		target := testItem(t, list, grocery, "Arroz", 1)
		target.MarkPurchased(1, now.Add(-time.Hour))
		pending := testItem(t, list, grocery, "Feijão", 2)

		store.On("Transaction", mock.Anything, mock.Anything).Return(nil)
		store.On("ActiveList", ctx).Return(list, nil)
		store.On("Items", ctx, list.ID).Return([]shopping.Item{*target, *pending}, nil)
		store.On("SaveItem", ctx, mock.AnythingOfType("*shopping.Item")).Return(nil)

		svc := serviceAt(store, now)
		toggled, err := svc.TogglePurchased(ctx, target.ID)
		require.NoError(t, err)

		assert.Equal(t, shopping.ItemStatusPending, toggled.Status)
		assert.Equal(t, 3, toggled.Position)
		assert.Nil(t, toggled.PurchasedAt)
	})

	t.Run("fails when item is not on the active list", func(t *testing.T) {
		store := new(MockStore)
		list := testList(t)

		store.On("Transaction", mock.Anything, mock.Anything).Return(nil)
		store.On("ActiveList", ctx).Return(list, nil)
		store.On("Items", ctx, list.ID).Return([]shopping.Item{}, nil)

		svc := NewItemService(store)
		_, err := svc.TogglePurchased(ctx, uuid.New())
		require.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestItemService_Update(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	setup := func(t *testing.T, target *shopping.Item, list *shopping.List, siblings ...shopping.Item) *MockStore {
		store := new(MockStore)
		store.On("Transaction", mock.Anything, mock.Anything).Return(nil)
		store.On("ActiveList", ctx).Return(list, nil)
		store.On("Items", ctx, list.ID).Return(append([]shopping.Item{*target}, siblings...), nil)
		store.On("SaveItem", ctx, mock.AnythingOfType("*shopping.Item")).Return(nil)
		return store
	}

	t.Run("new quantity re-derives total from unit price", func(t *testing.T) {
		list := testList(t)
		grocery := testCategory(t, "mercearia", 1)
		target := testItem(t, list, grocery, "Arroz", 1)
		target.Quantity = testQuantity(t, 2)
		unitPrice := int64(500)
		target.UnitPriceMinor = &unitPrice

		store := setup(t, target, list)
		svc := serviceAt(store, now)

		qty := testQuantity(t, 3)
		updated, err := svc.Update(ctx, UpdateItemInput{ItemID: target.ID, Quantity: &qty})
		require.NoError(t, err)

		require.NotNil(t, updated.TotalPriceMinor)
		assert.Equal(t, int64(1500), *updated.TotalPriceMinor)
	})

	t.Run("new quantity re-derives unit price from total", func(t *testing.T) {
		list := testList(t)
		grocery := testCategory(t, "mercearia", 1)
		target := testItem(t, list, grocery, "Arroz", 1)
		target.Quantity = testQuantity(t, 2)
		total := int64(900)
		target.TotalPriceMinor = &total

		store := setup(t, target, list)
		svc := serviceAt(store, now)

		qty := testQuantity(t, 3)
		updated, err := svc.Update(ctx, UpdateItemInput{ItemID: target.ID, Quantity: &qty})
		require.NoError(t, err)

		require.NotNil(t, updated.UnitPriceMinor)
		assert.Equal(t, int64(300), *updated.UnitPriceMinor)
	})

	t.Run("explicit total price source wins", func(t *testing.T) {
		list := testList(t)
		grocery := testCategory(t, "mercearia", 1)
		target := testItem(t, list, grocery, "Arroz", 1)
		target.Quantity = testQuantity(t, 4)
		unitPrice := int64(500)
		target.UnitPriceMinor = &unitPrice

		store := setup(t, target, list)
		svc := serviceAt(store, now)

		updated, err := svc.Update(ctx, UpdateItemInput{
			ItemID:          target.ID,
			TotalPriceMinor: Set(int64(1000)),
			PriceSource:     PriceSourceTotal,
		})
		require.NoError(t, err)

		require.NotNil(t, updated.TotalPriceMinor)
		assert.Equal(t, int64(1000), *updated.TotalPriceMinor)
		require.NotNil(t, updated.UnitPriceMinor)
		assert.Equal(t, int64(250), *updated.UnitPriceMinor)
	})

	t.Run("clearing a price leaves the other untouched", func(t *testing.T) {
		list := testList(t)
		grocery := testCategory(t, "mercearia", 1)
		target := testItem(t, list, grocery, "Arroz", 1)
		unitPrice := int64(500)
		total := int64(1000)
		target.UnitPriceMinor = &unitPrice
		target.TotalPriceMinor = &total

		store := setup(t, target, list)
		svc := serviceAt(store, now)

		updated, err := svc.Update(ctx, UpdateItemInput{
			ItemID:          target.ID,
			TotalPriceMinor: Clear[int64](),
		})
		require.NoError(t, err)

		assert.Nil(t, updated.TotalPriceMinor)
		require.NotNil(t, updated.UnitPriceMinor)
		assert.Equal(t, int64(500), *updated.UnitPriceMinor)
	})

	t.Run("category change assigns position in the new partition", func(t *testing.T) {
		list := testList(t)
		grocery := testCategory(t, "mercearia", 1)
		bakery := testCategory(t, "padaria", 2)
		target := testItem(t, list, grocery, "Pão", 1)
		sibling := testItem(t, list, bakery, "Bolo", 5)

		store := setup(t, target, list, *sibling)
		store.On("Categories", ctx).Return([]shopping.Category{*grocery, *bakery}, nil)
		svc := serviceAt(store, now)

		updated, err := svc.Update(ctx, UpdateItemInput{ItemID: target.ID, CategoryID: &bakery.ID})
		require.NoError(t, err)

		assert.Equal(t, bakery.ID, updated.CategoryID)
		assert.Equal(t, 6, updated.Position)
	})

	t.Run("move to unknown category fails", func(t *testing.T) {
		list := testList(t)
		grocery := testCategory(t, "mercearia", 1)
		target := testItem(t, list, grocery, "Pão", 1)

		store := setup(t, target, list)
		store.On("Categories", ctx).Return([]shopping.Category{*grocery}, nil)
		svc := serviceAt(store, now)

		ghost := uuid.New()
		_, err := svc.Update(ctx, UpdateItemInput{ItemID: target.ID, CategoryID: &ghost})
		require.ErrorIs(t, err, shared.ErrNotFound)
		store.AssertNotCalled(t, "SaveItem", mock.Anything, mock.Anything)
	})

	t.Run("blank name fails", func(t *testing.T) {
		list := testList(t)
		grocery := testCategory(t, "mercearia", 1)
		target := testItem(t, list, grocery, "Arroz", 1)

		store := setup(t, target, list)
		svc := serviceAt(store, now)

		blank := "   "
		_, err := svc.Update(ctx, UpdateItemInput{ItemID: target.ID, Name: &blank})
		require.ErrorIs(t, err, shared.ErrEmptyName)
	})

	t.Run("unknown item fails", func(t *testing.T) {
		store := new(MockStore)
		list := testList(t)
		store.On("Transaction", mock.Anything, mock.Anything).Return(nil)
		store.On("ActiveList", ctx).Return(list, nil)
		store.On("Items", ctx, list.ID).Return([]shopping.Item{}, nil)

		svc := NewItemService(store)
		_, err := svc.Update(ctx, UpdateItemInput{ItemID: uuid.New()})
		require.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestItemService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes an existing item", func(t *testing.T) {
		store := new(MockStore)
		list := testList(t)
		grocery := testCategory(t, "mercearia", 1)
		target := testItem(t, list, grocery, "Arroz", 1)

		store.On("Transaction", mock.Anything, mock.Anything).Return(nil)
		store.On("ActiveList", ctx).Return(list, nil)
		store.On("Items", ctx, list.ID).Return([]shopping.Item{*target}, nil)
		store.On("DeleteItem", ctx, target.ID).Return(nil)

		svc := NewItemService(store)
		require.NoError(t, svc.Delete(ctx, target.ID))
		store.AssertCalled(t, "DeleteItem", ctx, target.ID)
	})

	t.Run("fails for unknown item", func(t *testing.T) {
		store := new(MockStore)
		list := testList(t)
		store.On("Transaction", mock.Anything, mock.Anything).Return(nil)
		store.On("ActiveList", ctx).Return(list, nil)
		store.On("Items", ctx, list.ID).Return([]shopping.Item{}, nil)

		svc := NewItemService(store)
		err := svc.Delete(ctx, uuid.New())
		require.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestItemService_Restore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	store := new(MockStore)
	list := testList(t)
	grocery := testCategory(t, "mercearia", 1)
	removed := testItem(t, list, grocery, "Arroz", 1)
	sibling := testItem(t, list, grocery, "Feijão", 3)

	store.On("Transaction", mock.Anything, mock.Anything).Return(nil)
	store.On("ActiveList", ctx).Return(list, nil)
	store.On("Items", ctx, list.ID).Return([]shopping.Item{*sibling}, nil)
	store.On("SaveItem", ctx, mock.AnythingOfType("*shopping.Item")).Return(nil)

	svc := serviceAt(store, now)
	restored, err := svc.Restore(ctx, removed)
	require.NoError(t, err)

	assert.Equal(t, removed.ID, restored.ID)
	assert.Equal(t, 4, restored.Position)
}
