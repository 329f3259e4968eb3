package shopping

import (
	"strings"
	"time"

	"github.com/grocer/backend/internal/domain/shared"
)

// List represents a shopping list. It owns the currency used by every
// monetary computation over its items.
type List struct {
	shared.BaseEntity
	Name                   string `gorm:"type:varchar(100);not null"`
	CurrencyCode           string `gorm:"type:varchar(3);not null"`
	IsCompleted            bool   `gorm:"not null;default:false"`
	HidePurchasedByDefault bool   `gorm:"not null;default:false"`
	AskPriceOnPurchase     bool   `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (List) TableName() string {
	return "shopping_lists"
}

// NewList creates a new shopping list
func NewList(name, currencyCode string) (*List, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "List name cannot be empty")
	}
	code := strings.ToUpper(strings.TrimSpace(currencyCode))
	if len(code) != 3 {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Currency code must be a 3-letter ISO code")
	}

	return &List{
		BaseEntity:   shared.NewBaseEntity(),
		Name:         name,
		CurrencyCode: code,
	}, nil
}

// Complete marks the list as completed
func (l *List) Complete() error {
	if l.IsCompleted {
		return shared.NewDomainError("ALREADY_COMPLETED", "List is already completed")
	}
	l.IsCompleted = true
	l.UpdatedAt = time.Now()
	return nil
}

// Reopen marks a completed list as active again
func (l *List) Reopen() error {
	if !l.IsCompleted {
		return shared.NewDomainError("NOT_COMPLETED", "List is not completed")
	}
	l.IsCompleted = false
	l.UpdatedAt = time.Now()
	return nil
}
