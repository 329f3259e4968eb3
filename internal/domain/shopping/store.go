package shopping

import (
	"context"

	"github.com/google/uuid"
)

// Store is the persistence port for shopping list data.
//
// Transaction runs fn against a transactional view of the same interface and
// commits only if fn returns nil. Implementations map their own not-found
// conditions to shared.ErrNotFound.
type Store interface {
	// ActiveList returns the single list currently being shopped.
	ActiveList(ctx context.Context) (*List, error)

	// Categories returns all categories ordered by sort order, then name.
	Categories(ctx context.Context) ([]Category, error)

	// Items returns all items of a list.
	Items(ctx context.Context, listID uuid.UUID) ([]Item, error)

	// SaveItem creates or updates an item.
	SaveItem(ctx context.Context, item *Item) error

	// DeleteItem removes an item by id.
	DeleteItem(ctx context.Context, id uuid.UUID) error

	// SaveCategory creates or updates a category.
	SaveCategory(ctx context.Context, category *Category) error

	// Transaction runs fn against a transactional view of the store.
	Transaction(ctx context.Context, fn func(Store) error) error
}
