package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	appshopping "github.com/grocer/backend/internal/application/shopping"
	"github.com/grocer/backend/internal/domain/shared/valueobject"
	"github.com/grocer/backend/internal/domain/shopping"
	"github.com/grocer/backend/internal/interfaces/http/dto"
	"github.com/grocer/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memoryStore is an in-memory shopping.Store for handler tests.
type memoryStore struct {
	list       *shopping.List
	categories map[uuid.UUID]shopping.Category
	items      map[uuid.UUID]shopping.Item
}

func newMemoryStore(t *testing.T) *memoryStore {
	t.Helper()
	list, err := shopping.NewList("Compras", "BRL")
	require.NoError(t, err)
	return &memoryStore{
		list:       list,
		categories: make(map[uuid.UUID]shopping.Category),
		items:      make(map[uuid.UUID]shopping.Item),
	}
}

func (s *memoryStore) ActiveList(ctx context.Context) (*shopping.List, error) {
	list := *s.list
	return &list, nil
}

func (s *memoryStore) Categories(ctx context.Context) ([]shopping.Category, error) {
	categories := make([]shopping.Category, 0, len(s.categories))
	for _, category := range s.categories {
		categories = append(categories, category)
	}
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].SortOrder < categories[j].SortOrder
	})
	return categories, nil
}

func (s *memoryStore) Items(ctx context.Context, listID uuid.UUID) ([]shopping.Item, error) {
	items := make([]shopping.Item, 0, len(s.items))
	for _, item := range s.items {
		if item.ListID == listID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Position < items[j].Position
	})
	return items, nil
}

func (s *memoryStore) SaveItem(ctx context.Context, item *shopping.Item) error {
	s.items[item.ID] = *item
	return nil
}

func (s *memoryStore) DeleteItem(ctx context.Context, id uuid.UUID) error {
	delete(s.items, id)
	return nil
}

func (s *memoryStore) SaveCategory(ctx context.Context, category *shopping.Category) error {
	s.categories[category.ID] = *category
	return nil
}

func (s *memoryStore) Transaction(ctx context.Context, fn func(shopping.Store) error) error {
	return fn(s)
}

func (s *memoryStore) addCategory(t *testing.T, name string, sortOrder int) uuid.UUID {
	t.Helper()
	category, err := shopping.NewCategory(name, sortOrder)
	require.NoError(t, err)
	s.categories[category.ID] = *category
	return category.ID
}

func (s *memoryStore) addItem(t *testing.T, categoryID uuid.UUID, name string, position int) uuid.UUID {
	t.Helper()
	item, err := shopping.NewItem(s.list.ID, categoryID, name, valueobject.DefaultQuantity(), valueobject.DefaultUnit(), position)
	require.NoError(t, err)
	s.items[item.ID] = *item
	return item.ID
}

type apiResponse struct {
	Success bool               `json:"success"`
	Data    *dto.BoardResponse `json:"data"`
	Error   *dto.ErrorInfo     `json:"error"`
}

func newTestServer(t *testing.T, store *memoryStore) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	items := appshopping.NewItemService(store)
	controller := appshopping.NewController(store, items, shopping.ParseOptions{Locale: "pt-BR"}, zap.NewNop())
	require.NoError(t, controller.Load(context.Background()))

	engine := gin.New()
	require.NoError(t, router.RegisterValidators())
	router.NewRouter(engine).
		Register(NewBoardHandler(controller, "pt-BR")).
		Register(NewItemHandler(controller, "pt-BR")).
		Setup()
	return engine
}

func doJSON(t *testing.T, engine *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func findCategory(t *testing.T, board *dto.BoardResponse, name string) dto.CategoryGroupResponse {
	t.Helper()
	require.NotNil(t, board)
	for _, group := range board.Categories {
		if group.Name == name {
			return group
		}
	}
	t.Fatalf("category %q not in board", name)
	return dto.CategoryGroupResponse{}
}

func TestGetBoard(t *testing.T) {
	store := newMemoryStore(t)
	categoryID := store.addCategory(t, "hortifruti", 1)
	store.addItem(t, categoryID, "banana", 1)
	engine := newTestServer(t, store)

	w, resp := doJSON(t, engine, http.MethodGet, "/api/v1/board", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Data)
	require.NotNil(t, resp.Data.List)
	assert.Equal(t, "Compras", resp.Data.List.Name)
	assert.Equal(t, 1, resp.Data.Summary.Total)

	group := findCategory(t, resp.Data, "hortifruti")
	require.Len(t, group.Pending, 1)
	assert.Equal(t, "banana", group.Pending[0].Name)
}

func TestAddItem(t *testing.T) {
	t.Run("creates the item and returns the board", func(t *testing.T) {
		store := newMemoryStore(t)
		store.addCategory(t, "mercearia", 1)
		engine := newTestServer(t, store)

		w, resp := doJSON(t, engine, http.MethodPost, "/api/v1/items", `{"text":"2 kg arroz @mercearia"}`)

		require.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, resp.Success)
		group := findCategory(t, resp.Data, "mercearia")
		require.Len(t, group.Pending, 1)
		assert.Equal(t, "arroz", group.Pending[0].Name)
		assert.InEpsilon(t, 2.0, group.Pending[0].Quantity, 0.0001)
		assert.Equal(t, "kg", group.Pending[0].Unit)
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		engine := newTestServer(t, newMemoryStore(t))

		w, resp := doJSON(t, engine, http.MethodPost, "/api/v1/items", `{`)

		require.Equal(t, http.StatusBadRequest, w.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeInvalidJSON, resp.Error.Code)
	})

	t.Run("rejects a body without text", func(t *testing.T) {
		engine := newTestServer(t, newMemoryStore(t))

		w, resp := doJSON(t, engine, http.MethodPost, "/api/v1/items", `{}`)

		require.Equal(t, http.StatusBadRequest, w.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeInvalidJSON, resp.Error.Code)
	})
}

func TestToggleItem(t *testing.T) {
	t.Run("moves the item to purchased", func(t *testing.T) {
		store := newMemoryStore(t)
		categoryID := store.addCategory(t, "hortifruti", 1)
		itemID := store.addItem(t, categoryID, "banana", 1)
		engine := newTestServer(t, store)

		w, resp := doJSON(t, engine, http.MethodPost, "/api/v1/items/"+itemID.String()+"/toggle", "")

		require.Equal(t, http.StatusOK, w.Code)
		group := findCategory(t, resp.Data, "hortifruti")
		assert.Empty(t, group.Pending)
		require.Len(t, group.Purchased, 1)
		assert.Equal(t, "purchased", group.Purchased[0].Status)
		assert.NotNil(t, group.Purchased[0].PurchasedAt)
	})

	t.Run("rejects a malformed id", func(t *testing.T) {
		engine := newTestServer(t, newMemoryStore(t))

		w, resp := doJSON(t, engine, http.MethodPost, "/api/v1/items/not-a-uuid/toggle", "")

		require.Equal(t, http.StatusBadRequest, w.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeBadRequest, resp.Error.Code)
	})

	t.Run("returns not found for an unknown id", func(t *testing.T) {
		engine := newTestServer(t, newMemoryStore(t))

		w, resp := doJSON(t, engine, http.MethodPost, "/api/v1/items/"+uuid.NewString()+"/toggle", "")

		require.Equal(t, http.StatusNotFound, w.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeNotFound, resp.Error.Code)
	})
}

func TestUpdateItem(t *testing.T) {
	t.Run("renames the item", func(t *testing.T) {
		store := newMemoryStore(t)
		categoryID := store.addCategory(t, "hortifruti", 1)
		itemID := store.addItem(t, categoryID, "banana", 1)
		engine := newTestServer(t, store)

		w, resp := doJSON(t, engine, http.MethodPatch, "/api/v1/items/"+itemID.String(), `{"name":"banana prata"}`)

		require.Equal(t, http.StatusOK, w.Code)
		group := findCategory(t, resp.Data, "hortifruti")
		require.Len(t, group.Pending, 1)
		assert.Equal(t, "banana prata", group.Pending[0].Name)
	})

	t.Run("rejects a unit with whitespace", func(t *testing.T) {
		store := newMemoryStore(t)
		categoryID := store.addCategory(t, "hortifruti", 1)
		itemID := store.addItem(t, categoryID, "banana", 1)
		engine := newTestServer(t, store)

		w, resp := doJSON(t, engine, http.MethodPatch, "/api/v1/items/"+itemID.String(), `{"unit":"k g"}`)

		require.Equal(t, http.StatusBadRequest, w.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeInvalidJSON, resp.Error.Code)
	})
}

func TestDeleteAndUndo(t *testing.T) {
	store := newMemoryStore(t)
	categoryID := store.addCategory(t, "hortifruti", 1)
	itemID := store.addItem(t, categoryID, "banana", 1)
	engine := newTestServer(t, store)

	w, resp := doJSON(t, engine, http.MethodDelete, "/api/v1/items/"+itemID.String(), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Data.UndoAvailable)
	assert.Empty(t, findCategory(t, resp.Data, "hortifruti").Pending)

	w, resp = doJSON(t, engine, http.MethodPost, "/api/v1/undo", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, resp.Data.UndoAvailable)
	group := findCategory(t, resp.Data, "hortifruti")
	require.Len(t, group.Pending, 1)
	assert.Equal(t, "banana", group.Pending[0].Name)

	w, resp = doJSON(t, engine, http.MethodPost, "/api/v1/undo", "")
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeInvalidState, resp.Error.Code)
}

func TestDomainErrorCodes(t *testing.T) {
	t.Run("blank item name maps to invalid input", func(t *testing.T) {
		engine := newTestServer(t, newMemoryStore(t))

		w, resp := doJSON(t, engine, http.MethodPost, "/api/v1/items", `{"text":"@mercearia"}`)

		require.Equal(t, http.StatusBadRequest, w.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeInvalidInput, resp.Error.Code)
	})

	t.Run("empty undo slot maps to invalid state", func(t *testing.T) {
		engine := newTestServer(t, newMemoryStore(t))

		w, resp := doJSON(t, engine, http.MethodPost, "/api/v1/undo", "")

		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeInvalidState, resp.Error.Code)
	})
}
