package dto

import (
	"encoding/json"
	"time"

	appshopping "github.com/grocer/backend/internal/application/shopping"
	"github.com/grocer/backend/internal/domain/shared/valueobject"
	"github.com/grocer/backend/internal/domain/shopping"
)

// AddItemRequest carries one line of free-text input.
type AddItemRequest struct {
	Text string `json:"text" binding:"required"`
}

// OptMinor is a tri-state minor-unit amount for PATCH bodies: an absent
// field preserves the current value, an explicit null clears it, a number
// sets it.
type OptMinor struct {
	Defined bool
	Value   *int64
}

// UnmarshalJSON records that the field was present in the body.
func (o *OptMinor) UnmarshalJSON(data []byte) error {
	o.Defined = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// Patch converts the wire value into an application-level patch.
func (o OptMinor) Patch() appshopping.Patch[int64] {
	if !o.Defined {
		return appshopping.Keep[int64]()
	}
	if o.Value == nil {
		return appshopping.Clear[int64]()
	}
	return appshopping.Set(*o.Value)
}

// UpdateItemRequest is a partial item update. Pointer fields preserve the
// current value when absent.
type UpdateItemRequest struct {
	Name            *string  `json:"name"`
	Quantity        *float64 `json:"quantity" binding:"omitempty,gt=0"`
	Unit            *string  `json:"unit" binding:"omitempty,unitcode"`
	CategoryID      *string  `json:"category_id" binding:"omitempty,uuid"`
	UnitPriceMinor  OptMinor `json:"unit_price_minor"`
	TotalPriceMinor OptMinor `json:"total_price_minor"`
	PriceSource     string   `json:"price_source" binding:"omitempty,oneof=unit total"`
}

// ItemResponse represents one shopping item.
type ItemResponse struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Quantity        float64    `json:"quantity"`
	Unit            string     `json:"unit"`
	CategoryID      string     `json:"category_id"`
	Status          string     `json:"status"`
	Position        int        `json:"position"`
	PurchasedAt     *time.Time `json:"purchased_at,omitempty"`
	UnitPriceMinor  *int64     `json:"unit_price_minor,omitempty"`
	TotalPriceMinor *int64     `json:"total_price_minor,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// CategoryGroupResponse is one category with its items split by status.
type CategoryGroupResponse struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	SortOrder int            `json:"sort_order"`
	Pending   []ItemResponse `json:"pending"`
	Purchased []ItemResponse `json:"purchased"`
}

// MoneyResponse is a monetary amount in minor units plus its localized
// rendering.
type MoneyResponse struct {
	Minor     int64  `json:"minor"`
	Currency  string `json:"currency"`
	Formatted string `json:"formatted"`
}

// SummaryResponse aggregates the board. Money is absent when no item
// carries a price.
type SummaryResponse struct {
	Total     int                   `json:"total"`
	Pending   int                   `json:"pending"`
	Purchased int                   `json:"purchased"`
	Money     *MoneySummaryResponse `json:"money,omitempty"`
}

// MoneySummaryResponse holds the monetary totals of the board.
type MoneySummaryResponse struct {
	EstimatedPending MoneyResponse `json:"estimated_pending"`
	Spent            MoneyResponse `json:"spent"`
	Planned          MoneyResponse `json:"planned"`
}

// ListResponse represents the active shopping list.
type ListResponse struct {
	ID                     string `json:"id"`
	Name                   string `json:"name"`
	CurrencyCode           string `json:"currency_code"`
	HidePurchasedByDefault bool   `json:"hide_purchased_by_default"`
	AskPriceOnPurchase     bool   `json:"ask_price_on_purchase"`
}

// BoardResponse is the full board state.
type BoardResponse struct {
	List          *ListResponse           `json:"list"`
	Categories    []CategoryGroupResponse `json:"categories"`
	Summary       SummaryResponse         `json:"summary"`
	UndoAvailable bool                    `json:"undo_available"`
	LastError     *ErrorInfo              `json:"last_error,omitempty"`
}

// ToItemResponse converts a domain item.
func ToItemResponse(item shopping.Item) ItemResponse {
	return ItemResponse{
		ID:              item.ID.String(),
		Name:            item.Name,
		Quantity:        item.Quantity.Float64(),
		Unit:            item.Unit.Code(),
		CategoryID:      item.CategoryID.String(),
		Status:          string(item.Status),
		Position:        item.Position,
		PurchasedAt:     item.PurchasedAt,
		UnitPriceMinor:  item.UnitPriceMinor,
		TotalPriceMinor: item.TotalPriceMinor,
		CreatedAt:       item.CreatedAt,
		UpdatedAt:       item.UpdatedAt,
	}
}

// ToBoardResponse converts the controller projection. locale drives money
// formatting.
func ToBoardResponse(proj appshopping.Projection, undoAvailable bool, lastErr *appshopping.OpError, locale string) BoardResponse {
	resp := BoardResponse{
		UndoAvailable: undoAvailable,
		Categories:    make([]CategoryGroupResponse, 0, len(proj.Groups)),
	}

	if proj.List != nil {
		resp.List = &ListResponse{
			ID:                     proj.List.ID.String(),
			Name:                   proj.List.Name,
			CurrencyCode:           proj.List.CurrencyCode,
			HidePurchasedByDefault: proj.List.HidePurchasedByDefault,
			AskPriceOnPurchase:     proj.List.AskPriceOnPurchase,
		}
	}

	for _, group := range proj.Groups {
		groupResp := CategoryGroupResponse{
			ID:        group.Category.ID.String(),
			Name:      group.Category.Name,
			SortOrder: group.Category.SortOrder,
			Pending:   make([]ItemResponse, 0, len(group.Pending)),
			Purchased: make([]ItemResponse, 0, len(group.Purchased)),
		}
		for _, item := range group.Pending {
			groupResp.Pending = append(groupResp.Pending, ToItemResponse(item))
		}
		for _, item := range group.Purchased {
			groupResp.Purchased = append(groupResp.Purchased, ToItemResponse(item))
		}
		resp.Categories = append(resp.Categories, groupResp)
	}

	resp.Summary = SummaryResponse{
		Total:     proj.Summary.Counts.Total,
		Pending:   proj.Summary.Counts.Pending,
		Purchased: proj.Summary.Counts.Purchased,
	}
	if money := proj.Summary.Money; money != nil {
		resp.Summary.Money = &MoneySummaryResponse{
			EstimatedPending: toMoneyResponse(money.EstimatedPending, locale),
			Spent:            toMoneyResponse(money.Spent, locale),
			Planned:          toMoneyResponse(money.Planned, locale),
		}
	}

	if lastErr != nil {
		code := ErrCodeWriteFailed
		if lastErr.Type == appshopping.ErrorTypeLoad {
			code = ErrCodeLoadFailed
		}
		resp.LastError = &ErrorInfo{Code: code, Message: lastErr.Message}
	}

	return resp
}

func toMoneyResponse(m valueobject.Money, locale string) MoneyResponse {
	return MoneyResponse{
		Minor:     m.Minor(),
		Currency:  m.Currency(),
		Formatted: m.Format(locale),
	}
}
