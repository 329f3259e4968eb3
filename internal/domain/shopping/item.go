package shopping

import (
	"strings"
	"time"

	"github.com/grocer/backend/internal/domain/shared"
	"github.com/grocer/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemStatus represents the purchase status of an item
type ItemStatus string

const (
	ItemStatusPending   ItemStatus = "pending"
	ItemStatusPurchased ItemStatus = "purchased"
)

// Toggled returns the opposite status
func (s ItemStatus) Toggled() ItemStatus {
	if s == ItemStatusPurchased {
		return ItemStatusPending
	}
	return ItemStatusPurchased
}

// Item represents one entry on a shopping list.
//
// Position is unique and monotonically increasing within the partition
// (CategoryID, Status); an item moving to another partition is assigned
// max(positions there) + 1. At most one of the price fields is the source of
// truth at any moment, the other is derived from it.
type Item struct {
	shared.BaseEntity
	ListID          uuid.UUID            `gorm:"type:uuid;not null;index"`
	CategoryID      uuid.UUID            `gorm:"type:uuid;not null;index"`
	Name            string               `gorm:"type:varchar(200);not null"`
	Quantity        valueobject.Quantity `gorm:"type:numeric(12,3);not null"`
	Unit            valueobject.Unit     `gorm:"type:varchar(20);not null"`
	Status          ItemStatus           `gorm:"type:varchar(20);not null;default:'pending';index"`
	Position        int                  `gorm:"not null;default:0"`
	PurchasedAt     *time.Time
	UnitPriceMinor  *int64
	TotalPriceMinor *int64
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "shopping_items"
}

// NewItem creates a pending item in the given list and category.
func NewItem(listID, categoryID uuid.UUID, name string, quantity valueobject.Quantity, unit valueobject.Unit, position int) (*Item, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.ErrEmptyName
	}
	if quantity.IsZero() {
		quantity = valueobject.DefaultQuantity()
	}
	if unit.IsZero() {
		unit = valueobject.DefaultUnit()
	}

	return &Item{
		BaseEntity: shared.NewBaseEntity(),
		ListID:     listID,
		CategoryID: categoryID,
		Name:       name,
		Quantity:   quantity,
		Unit:       unit,
		Status:     ItemStatusPending,
		Position:   position,
	}, nil
}

// IsPurchased reports whether the item has been checked off.
func (i *Item) IsPurchased() bool {
	return i.Status == ItemStatusPurchased
}

// MarkPurchased flips the item to purchased at the given position.
func (i *Item) MarkPurchased(position int, at time.Time) {
	i.Status = ItemStatusPurchased
	i.Position = position
	i.PurchasedAt = &at
	i.UpdatedAt = at
}

// MarkPending flips the item back to pending at the given position and
// clears the purchase timestamp.
func (i *Item) MarkPending(position int, at time.Time) {
	i.Status = ItemStatusPending
	i.Position = position
	i.PurchasedAt = nil
	i.UpdatedAt = at
}

// Rename changes the item name. The name must stay non-blank.
func (i *Item) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.ErrEmptyName
	}
	i.Name = name
	i.UpdatedAt = time.Now()
	return nil
}

// MoveToCategory reassigns the item to another category at the given
// position within its new partition.
func (i *Item) MoveToCategory(categoryID uuid.UUID, position int) {
	i.CategoryID = categoryID
	i.Position = position
	i.UpdatedAt = time.Now()
}

// EffectivePriceMinor returns the price the item contributes to list totals:
// the total price when present, otherwise round(quantity × unit price).
// ok is false when the item carries no price at all.
func (i *Item) EffectivePriceMinor() (int64, bool) {
	if i.TotalPriceMinor != nil {
		return *i.TotalPriceMinor, true
	}
	if i.UnitPriceMinor != nil {
		derived := i.Quantity.Decimal().
			Mul(decimal.NewFromInt(*i.UnitPriceMinor)).
			Round(0).
			IntPart()
		return derived, true
	}
	return 0, false
}

// NextPosition computes the position for an item entering the partition
// (categoryID, status): max(existing positions) + 1. The item identified by
// exclude is skipped so an item re-entering its own partition does not count
// itself.
func NextPosition(items []Item, categoryID uuid.UUID, status ItemStatus, exclude uuid.UUID) int {
	maxPos := 0
	for idx := range items {
		it := &items[idx]
		if it.ID == exclude || it.CategoryID != categoryID || it.Status != status {
			continue
		}
		if it.Position > maxPos {
			maxPos = it.Position
		}
	}
	return maxPos + 1
}
