package shopping

import (
	"strings"
	"time"

	"github.com/grocer/backend/internal/domain/shared"
)

// Category groups items on the board. Categories are either predefined
// (seeded with the schema) or created on demand when a parsed category name
// has no existing match.
type Category struct {
	shared.BaseEntity
	Name         string `gorm:"type:varchar(100);not null"`
	IsPredefined bool   `gorm:"not null;default:false"`
	SortOrder    int    `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (Category) TableName() string {
	return "categories"
}

// NewCategory creates an ad-hoc category from a user-supplied name.
func NewCategory(name string, sortOrder int) (*Category, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}

	return &Category{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		SortOrder:  sortOrder,
	}, nil
}

// Matches reports whether the category answers to the given name.
// Matching is case-insensitive on trimmed input.
func (c *Category) Matches(name string) bool {
	return strings.EqualFold(c.Name, strings.TrimSpace(name))
}

// SetSortOrder sets the display order of the category
func (c *Category) SetSortOrder(order int) {
	c.SortOrder = order
	c.UpdatedAt = time.Now()
}
