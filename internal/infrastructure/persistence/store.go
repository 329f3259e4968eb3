package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/grocer/backend/internal/domain/shared"
	"github.com/grocer/backend/internal/domain/shopping"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStore implements shopping.Store on top of GORM.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GormStore
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// ActiveList returns the oldest non-completed list.
func (s *GormStore) ActiveList(ctx context.Context) (*shopping.List, error) {
	var list shopping.List
	err := s.db.WithContext(ctx).
		Where("is_completed = ?", false).
		Order("created_at ASC").
		First(&list).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load active list: %w", err)
	}
	return &list, nil
}

// Categories returns all categories ordered by sort order, then name.
func (s *GormStore) Categories(ctx context.Context) ([]shopping.Category, error) {
	var categories []shopping.Category
	err := s.db.WithContext(ctx).
		Order("sort_order ASC, name ASC").
		Find(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	return categories, nil
}

// Items returns all items of a list ordered by position.
func (s *GormStore) Items(ctx context.Context, listID uuid.UUID) ([]shopping.Item, error) {
	var items []shopping.Item
	err := s.db.WithContext(ctx).
		Where("list_id = ?", listID).
		Order("position ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}
	return items, nil
}

// SaveItem creates or updates an item.
func (s *GormStore) SaveItem(ctx context.Context, item *shopping.Item) error {
	if err := s.db.WithContext(ctx).Save(item).Error; err != nil {
		return fmt.Errorf("failed to save item: %w", err)
	}
	return nil
}

// DeleteItem removes an item by id.
func (s *GormStore) DeleteItem(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Delete(&shopping.Item{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// SaveCategory creates or updates a category.
func (s *GormStore) SaveCategory(ctx context.Context, category *shopping.Category) error {
	if err := s.db.WithContext(ctx).Save(category).Error; err != nil {
		return fmt.Errorf("failed to save category: %w", err)
	}
	return nil
}

// Transaction runs fn against a store bound to a database transaction.
func (s *GormStore) Transaction(ctx context.Context, fn func(shopping.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGormStore(tx))
	})
}

// EnsureActiveList creates the initial list when none exists yet. It is run
// once at startup; migrations normally seed the list, this covers fresh
// sqlite files.
func (s *GormStore) EnsureActiveList(ctx context.Context, name, currencyCode string) (*shopping.List, error) {
	list, err := s.ActiveList(ctx)
	if err == nil {
		return list, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	list, err = shopping.NewList(name, currencyCode)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(list).Error; err != nil {
		return nil, fmt.Errorf("failed to create list: %w", err)
	}
	return list, nil
}
