package shopping

import (
	"context"
	"fmt"
	"time"

	"github.com/grocer/backend/internal/domain/shared"
	"github.com/grocer/backend/internal/domain/shared/valueobject"
	"github.com/grocer/backend/internal/domain/shopping"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceSource flags which price field the caller treats as authoritative
// when updating an item.
type PriceSource string

const (
	PriceSourceNone  PriceSource = ""
	PriceSourceUnit  PriceSource = "unit"
	PriceSourceTotal PriceSource = "total"
)

// UpdateItemInput describes a partial item update. Pointer fields preserve
// the current value when nil; the price patches distinguish "leave alone",
// "clear" and "set".
type UpdateItemInput struct {
	ItemID          uuid.UUID
	Name            *string
	Quantity        *valueobject.Quantity
	Unit            *valueobject.Unit
	CategoryID      *uuid.UUID
	UnitPriceMinor  Patch[int64]
	TotalPriceMinor Patch[int64]
	PriceSource     PriceSource
}

// ItemService implements the item use-cases against the persistence port.
// Every mutation runs inside a store transaction so position assignment and
// the write commit or roll back together.
type ItemService struct {
	store shopping.Store
	now   func() time.Time
}

// NewItemService creates a new ItemService.
func NewItemService(store shopping.Store) *ItemService {
	return &ItemService{
		store: store,
		now:   time.Now,
	}
}

// Add parses nothing: it takes an already-parsed item and places it on the
// active list. The category is matched by name against existing categories;
// when none matches, a new one is created after the current last sort order.
func (s *ItemService) Add(ctx context.Context, parsed *shopping.ParsedItem) (*shopping.Item, error) {
	var created *shopping.Item
	err := s.store.Transaction(ctx, func(tx shopping.Store) error {
		list, err := tx.ActiveList(ctx)
		if err != nil {
			return fmt.Errorf("load active list: %w", err)
		}

		categories, err := tx.Categories(ctx)
		if err != nil {
			return fmt.Errorf("load categories: %w", err)
		}

		category := matchCategory(categories, parsed.Category)
		if category == nil {
			category, err = shopping.NewCategory(parsed.Category, nextSortOrder(categories))
			if err != nil {
				return err
			}
			if err := tx.SaveCategory(ctx, category); err != nil {
				return fmt.Errorf("save category: %w", err)
			}
		}

		items, err := tx.Items(ctx, list.ID)
		if err != nil {
			return fmt.Errorf("load items: %w", err)
		}

		position := shopping.NextPosition(items, category.ID, shopping.ItemStatusPending, uuid.Nil)
		item, err := shopping.NewItem(list.ID, category.ID, parsed.Name, parsed.Quantity, parsed.Unit, position)
		if err != nil {
			return err
		}
		if err := tx.SaveItem(ctx, item); err != nil {
			return fmt.Errorf("save item: %w", err)
		}
		created = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// TogglePurchased flips an item between pending and purchased. The item is
// repositioned at the end of its destination partition and the purchase
// timestamp is set or cleared accordingly.
func (s *ItemService) TogglePurchased(ctx context.Context, itemID uuid.UUID) (*shopping.Item, error) {
	var toggled *shopping.Item
	err := s.store.Transaction(ctx, func(tx shopping.Store) error {
		item, items, err := s.loadItem(ctx, tx, itemID)
		if err != nil {
			return err
		}

		next := item.Status.Toggled()
		position := shopping.NextPosition(items, item.CategoryID, next, item.ID)
		if next == shopping.ItemStatusPurchased {
			item.MarkPurchased(position, s.now())
		} else {
			item.MarkPending(position, s.now())
		}

		if err := tx.SaveItem(ctx, item); err != nil {
			return fmt.Errorf("save item: %w", err)
		}
		toggled = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toggled, nil
}

// Update applies a partial update to an item. Omitted fields keep their
// current values; prices are reconciled so that quantity, unit price and
// total price stay consistent with whichever side is authoritative.
func (s *ItemService) Update(ctx context.Context, input UpdateItemInput) (*shopping.Item, error) {
	var updated *shopping.Item
	err := s.store.Transaction(ctx, func(tx shopping.Store) error {
		item, items, err := s.loadItem(ctx, tx, input.ItemID)
		if err != nil {
			return err
		}

		if input.Name != nil {
			if err := item.Rename(*input.Name); err != nil {
				return err
			}
		}

		quantityChanged := false
		if input.Quantity != nil {
			item.Quantity = *input.Quantity
			quantityChanged = true
		}
		if input.Unit != nil {
			item.Unit = *input.Unit
		}

		item.UnitPriceMinor = input.UnitPriceMinor.Apply(item.UnitPriceMinor)
		item.TotalPriceMinor = input.TotalPriceMinor.Apply(item.TotalPriceMinor)
		reconcilePrices(item, input, quantityChanged)

		if input.CategoryID != nil && *input.CategoryID != item.CategoryID {
			categories, err := tx.Categories(ctx)
			if err != nil {
				return fmt.Errorf("load categories: %w", err)
			}
			if findCategoryByID(categories, *input.CategoryID) == nil {
				return fmt.Errorf("category %s: %w", *input.CategoryID, shared.ErrNotFound)
			}
			position := shopping.NextPosition(items, *input.CategoryID, item.Status, item.ID)
			item.MoveToCategory(*input.CategoryID, position)
		}
		item.UpdatedAt = s.now()

		if err := tx.SaveItem(ctx, item); err != nil {
			return fmt.Errorf("save item: %w", err)
		}
		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes an item from the active list.
func (s *ItemService) Delete(ctx context.Context, itemID uuid.UUID) error {
	return s.store.Transaction(ctx, func(tx shopping.Store) error {
		item, _, err := s.loadItem(ctx, tx, itemID)
		if err != nil {
			return err
		}
		if err := tx.DeleteItem(ctx, item.ID); err != nil {
			return fmt.Errorf("delete item: %w", err)
		}
		return nil
	})
}

// Restore re-inserts a previously deleted item, repositioning it at the end
// of its partition. The original id is kept so an undo round-trips cleanly.
func (s *ItemService) Restore(ctx context.Context, item *shopping.Item) (*shopping.Item, error) {
	var restored *shopping.Item
	err := s.store.Transaction(ctx, func(tx shopping.Store) error {
		list, err := tx.ActiveList(ctx)
		if err != nil {
			return fmt.Errorf("load active list: %w", err)
		}
		items, err := tx.Items(ctx, list.ID)
		if err != nil {
			return fmt.Errorf("load items: %w", err)
		}

		clone := *item
		clone.Position = shopping.NextPosition(items, clone.CategoryID, clone.Status, clone.ID)
		clone.UpdatedAt = s.now()
		if err := tx.SaveItem(ctx, &clone); err != nil {
			return fmt.Errorf("save item: %w", err)
		}
		restored = &clone
		return nil
	})
	if err != nil {
		return nil, err
	}
	return restored, nil
}

// loadItem fetches an item and its siblings from the active list.
func (s *ItemService) loadItem(ctx context.Context, tx shopping.Store, itemID uuid.UUID) (*shopping.Item, []shopping.Item, error) {
	list, err := tx.ActiveList(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load active list: %w", err)
	}
	items, err := tx.Items(ctx, list.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("load items: %w", err)
	}
	for idx := range items {
		if items[idx].ID == itemID {
			return &items[idx], items, nil
		}
	}
	return nil, nil, fmt.Errorf("item %s: %w", itemID, shared.ErrNotFound)
}

// reconcilePrices keeps unit and total price consistent after an update.
// The caller's explicit price source wins; otherwise a quantity change
// re-derives the side the caller did not touch.
func reconcilePrices(item *shopping.Item, input UpdateItemInput, quantityChanged bool) {
	_, unitSet := input.UnitPriceMinor.Get()
	_, totalSet := input.TotalPriceMinor.Get()

	deriveTotal := input.PriceSource == PriceSourceUnit ||
		(quantityChanged && item.UnitPriceMinor != nil && !totalSet && input.PriceSource == PriceSourceNone)
	deriveUnit := input.PriceSource == PriceSourceTotal ||
		(quantityChanged && item.TotalPriceMinor != nil && !unitSet && !deriveTotal && input.PriceSource == PriceSourceNone)

	switch {
	case deriveTotal && item.UnitPriceMinor != nil:
		total := item.Quantity.Decimal().
			Mul(decimal.NewFromInt(*item.UnitPriceMinor)).
			Round(0).
			IntPart()
		item.TotalPriceMinor = &total
	case deriveUnit && item.TotalPriceMinor != nil && !item.Quantity.IsZero():
		unit := decimal.NewFromInt(*item.TotalPriceMinor).
			Div(item.Quantity.Decimal()).
			Round(0).
			IntPart()
		item.UnitPriceMinor = &unit
	}
}

func findCategoryByID(categories []shopping.Category, id uuid.UUID) *shopping.Category {
	for idx := range categories {
		if categories[idx].ID == id {
			return &categories[idx]
		}
	}
	return nil
}

func matchCategory(categories []shopping.Category, name string) *shopping.Category {
	for idx := range categories {
		if categories[idx].Matches(name) {
			return &categories[idx]
		}
	}
	return nil
}

func nextSortOrder(categories []shopping.Category) int {
	maxOrder := 0
	for idx := range categories {
		if categories[idx].SortOrder > maxOrder {
			maxOrder = categories[idx].SortOrder
		}
	}
	return maxOrder + 1
}
