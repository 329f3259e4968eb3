package shopping

import (
	"github.com/grocer/backend/internal/domain/shared/valueobject"
)

// Counts holds per-status item tallies for a list.
type Counts struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Purchased int `json:"purchased"`
}

// MoneySummary holds the monetary totals of a list in its currency.
// Planned is the sum of the pending estimate and the amount already spent.
type MoneySummary struct {
	EstimatedPending valueobject.Money
	Spent            valueobject.Money
	Planned          valueobject.Money
}

// Summary aggregates a list's items. Money is nil when no item carries a
// resolvable price - callers must treat "no monetary summary" and "zero
// totals" as distinct states.
type Summary struct {
	Counts Counts
	Money  *MoneySummary
}

// Summarize reduces a list's items to counts and, when at least one item
// carries a price, monetary totals in the list currency. An item's effective
// price prefers its total price and falls back to quantity × unit price;
// unpriced items still count toward the tallies.
//
// A non-nil error means priced items exist but the currency code cannot
// carry them; the counts are still valid and Money stays nil, so callers can
// tell this apart from a list without prices only through the error.
func Summarize(items []Item, currencyCode string) (Summary, error) {
	var (
		counts       Counts
		pendingMinor int64
		spentMinor   int64
		hasPrice     bool
	)

	for idx := range items {
		it := &items[idx]
		counts.Total++
		switch it.Status {
		case ItemStatusPurchased:
			counts.Purchased++
		default:
			counts.Pending++
		}

		price, ok := it.EffectivePriceMinor()
		if !ok {
			continue
		}
		hasPrice = true
		if it.IsPurchased() {
			spentMinor += price
		} else {
			pendingMinor += price
		}
	}

	summary := Summary{Counts: counts}
	if !hasPrice {
		return summary, nil
	}

	pending, err := valueobject.NewMoneyFromMinor(pendingMinor, currencyCode)
	if err != nil {
		return summary, err
	}
	spent, err := valueobject.NewMoneyFromMinor(spentMinor, currencyCode)
	if err != nil {
		return summary, err
	}
	summary.Money = &MoneySummary{
		EstimatedPending: pending,
		Spent:            spent,
		Planned:          pending.MustAdd(spent),
	}
	return summary, nil
}
