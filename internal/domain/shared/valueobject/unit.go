package valueobject

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/grocer/backend/internal/domain/shared"
)

// DefaultUnitCode is the unit applied when input carries no unit token.
const DefaultUnitCode = "un"

// Unit is a value object representing a normalized unit code ("kg", "un").
// Unknown codes are tolerated: free text frequently carries units the
// dictionaries have never seen, and rejecting them would reject the item.
type Unit struct {
	code string
}

// NewUnit creates a Unit from a raw code. The code is lower-cased and trimmed.
func NewUnit(code string) (Unit, error) {
	normalized := strings.ToLower(strings.TrimSpace(code))
	if normalized == "" {
		return Unit{}, shared.NewDomainError("INVALID_UNIT", "Unit code cannot be empty")
	}
	if len(normalized) > 20 {
		return Unit{}, shared.NewDomainError("INVALID_UNIT", "Unit code cannot exceed 20 characters")
	}
	return Unit{code: normalized}, nil
}

// DefaultUnit returns the fallback unit ("un").
func DefaultUnit() Unit {
	return Unit{code: DefaultUnitCode}
}

// Code returns the normalized unit code.
func (u Unit) Code() string {
	return u.code
}

// IsDefault returns true for the fallback unit.
func (u Unit) IsDefault() bool {
	return u.code == DefaultUnitCode
}

// IsZero returns true for the zero-value Unit.
func (u Unit) IsZero() bool {
	return u.code == ""
}

// Equals returns true if both units share the same code.
func (u Unit) Equals(other Unit) bool {
	return u.code == other.code
}

// String returns the unit code.
func (u Unit) String() string {
	return u.code
}

// Value implements driver.Valuer for database storage.
func (u Unit) Value() (driver.Value, error) {
	return u.code, nil
}

// Scan implements sql.Scanner for database retrieval.
// A NULL column scans to the default unit.
func (u *Unit) Scan(value any) error {
	if value == nil {
		*u = DefaultUnit()
		return nil
	}

	var strVal string
	switch v := value.(type) {
	case string:
		strVal = v
	case []byte:
		strVal = string(v)
	default:
		return fmt.Errorf("cannot scan %T into Unit", value)
	}

	u.code = strings.ToLower(strings.TrimSpace(strVal))
	if u.code == "" {
		u.code = DefaultUnitCode
	}
	return nil
}

// UnitSynonyms maps a lower-cased token to its canonical unit code.
type UnitSynonyms map[string]string

// UnitDictionaries maps a locale tag to its synonym dictionary. The empty
// tag holds the locale-independent default dictionary.
type UnitDictionaries map[string]UnitSynonyms

// LookupUnit resolves a token against the dictionaries for a locale,
// falling back from the exact locale ("pt-BR") to its language ("pt") and
// finally to the default dictionary. It reports ok=false when no dictionary
// knows the token; lookup never falls through to the passthrough path, so a
// product word can never be mistaken for a unit.
func LookupUnit(token, locale string, dicts UnitDictionaries) (Unit, bool) {
	normalized := strings.ToLower(strings.TrimSpace(token))
	if normalized == "" {
		return Unit{}, false
	}
	if dicts == nil {
		dicts = DefaultUnitDictionaries()
	}

	for _, tag := range localeChain(locale) {
		if synonyms, ok := dicts[tag]; ok {
			if code, ok := synonyms[normalized]; ok {
				return Unit{code: code}, true
			}
		}
	}
	return Unit{}, false
}

// ParseUnit resolves user-supplied unit text. Empty input yields the default
// unit; a token no dictionary knows is kept verbatim as a free-form code.
func ParseUnit(input, locale string, dicts UnitDictionaries) Unit {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return DefaultUnit()
	}
	if unit, ok := LookupUnit(normalized, locale, dicts); ok {
		return unit
	}
	return Unit{code: normalized}
}

// localeChain expands a locale tag into its fallback sequence:
// "pt-BR" -> ["pt-br", "pt", ""].
func localeChain(locale string) []string {
	normalized := strings.ToLower(strings.TrimSpace(strings.ReplaceAll(locale, "_", "-")))
	if normalized == "" {
		return []string{""}
	}
	lang, _, found := strings.Cut(normalized, "-")
	if !found {
		return []string{normalized, ""}
	}
	return []string{normalized, lang, ""}
}

// DefaultUnitDictionaries returns the built-in synonym dictionaries.
// The default dictionary covers bare metric codes; the per-language
// dictionaries add spelled-out synonyms.
func DefaultUnitDictionaries() UnitDictionaries {
	return UnitDictionaries{
		"": {
			"un":  "un",
			"und": "un",
			"pc":  "un",
			"pcs": "un",
			"kg":  "kg",
			"kgs": "kg",
			"g":   "g",
			"gr":  "g",
			"mg":  "mg",
			"l":   "l",
			"lt":  "l",
			"ml":  "ml",
			"cx":  "cx",
			"dz":  "dz",
			"pct": "pct",
			"m":   "m",
			"cm":  "cm",
		},
		"pt": {
			"unidade":  "un",
			"unidades": "un",
			"quilo":    "kg",
			"quilos":   "kg",
			"kilo":     "kg",
			"kilos":    "kg",
			"grama":    "g",
			"gramas":   "g",
			"litro":    "l",
			"litros":   "l",
			"caixa":    "cx",
			"caixas":   "cx",
			"duzia":    "dz",
			"dúzia":    "dz",
			"pacote":   "pct",
			"pacotes":  "pct",
			"lata":     "lata",
			"latas":    "lata",
			"garrafa":  "grf",
			"garrafas": "grf",
			"metro":    "m",
			"metros":   "m",
		},
		"en": {
			"unit":    "un",
			"units":   "un",
			"piece":   "un",
			"pieces":  "un",
			"kilo":    "kg",
			"kilos":   "kg",
			"gram":    "g",
			"grams":   "g",
			"liter":   "l",
			"liters":  "l",
			"litre":   "l",
			"litres":  "l",
			"box":     "cx",
			"boxes":   "cx",
			"dozen":   "dz",
			"pack":    "pct",
			"packs":   "pct",
			"can":     "lata",
			"cans":    "lata",
			"bottle":  "grf",
			"bottles": "grf",
			"meter":   "m",
			"meters":  "m",
		},
	}
}
