package shopping

import (
	"regexp"
	"strings"

	"github.com/grocer/backend/internal/domain/shared"
	"github.com/grocer/backend/internal/domain/shared/valueobject"
)

// FallbackCategoryName is used when neither the text nor the caller supplies
// a category.
const FallbackCategoryName = "outros"

// categoryPattern matches "@token" category markers. A token runs to the
// next whitespace or "@".
var categoryPattern = regexp.MustCompile(`@([^\s@]+)`)

// ParseOptions configures free-text item parsing.
type ParseOptions struct {
	// Locale drives unit synonym resolution ("pt-BR", "en").
	Locale string
	// DefaultCategory is used when the text carries no @category marker.
	DefaultCategory string
	// Units overrides the built-in synonym dictionaries when non-nil.
	Units valueobject.UnitDictionaries
}

// ParsedItem is the structured result of parsing one line of user input.
// It is not yet a persisted item.
type ParsedItem struct {
	Name     string
	Quantity valueobject.Quantity
	Unit     valueobject.Unit
	Category string
}

// ParseItemInput turns one line of free text into a structured item.
//
// Grammar (informal): [qty] [unit] name... [@category]*
// The quantity slot is probed before the unit slot, and the unit slot only
// consumes dictionary hits; both orderings matter, otherwise a legitimate
// product word could be swallowed as a unit. When several @category markers
// appear, the last one wins, but all of them are stripped from the name.
func ParseItemInput(text string, opts ParseOptions) (*ParsedItem, error) {
	if strings.TrimSpace(text) == "" {
		return nil, shared.ErrEmptyName
	}

	category := opts.DefaultCategory
	if matches := categoryPattern.FindAllStringSubmatch(text, -1); len(matches) > 0 {
		category = matches[len(matches)-1][1]
		text = categoryPattern.ReplaceAllString(text, " ")
	}

	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return nil, shared.ErrEmptyName
	}

	quantity := valueobject.DefaultQuantity()
	if q, ok := valueobject.ProbeQuantity(tokens[0]); ok {
		quantity = q
		tokens = tokens[1:]
	}

	unit := valueobject.DefaultUnit()
	if len(tokens) > 0 {
		if u, ok := valueobject.LookupUnit(tokens[0], opts.Locale, opts.Units); ok {
			unit = u
			tokens = tokens[1:]
		}
	}

	name := strings.Join(tokens, " ")
	if name == "" {
		return nil, shared.ErrEmptyName
	}

	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" {
		category = FallbackCategoryName
	}

	return &ParsedItem{
		Name:     name,
		Quantity: quantity,
		Unit:     unit,
		Category: category,
	}, nil
}
