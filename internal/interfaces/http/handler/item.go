package handler

import (
	"net/http"

	appshopping "github.com/grocer/backend/internal/application/shopping"
	"github.com/grocer/backend/internal/domain/shared/valueobject"
	"github.com/grocer/backend/internal/infrastructure/logger"
	"github.com/grocer/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ItemHandler exposes the item mutations through the optimistic controller.
// Every response carries the resulting board so clients can render the
// post-mutation state without a second round trip.
type ItemHandler struct {
	BaseHandler
	controller *appshopping.Controller
	locale     string
}

// NewItemHandler creates a new ItemHandler
func NewItemHandler(controller *appshopping.Controller, locale string) *ItemHandler {
	return &ItemHandler{
		controller: controller,
		locale:     locale,
	}
}

// RegisterRoutes registers item routes
func (h *ItemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/items", h.AddItem)
	rg.POST("/items/:id/toggle", h.ToggleItem)
	rg.PATCH("/items/:id", h.UpdateItem)
	rg.DELETE("/items/:id", h.DeleteItem)
	rg.POST("/undo", h.UndoRemove)
}

// AddItem parses one line of free text and adds the resulting item.
// POST /api/v1/items
func (h *ItemHandler) AddItem(c *gin.Context) {
	var req dto.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, err.Error())
		return
	}

	if err := h.controller.AddItemFromInput(c.Request.Context(), req.Text); err != nil {
		logger.GetGinLogger(c).Warn("add item failed", zap.Error(err))
		h.HandleDomainError(c, err, dto.ErrCodeWriteFailed)
		return
	}

	h.board(c, http.StatusCreated)
}

// ToggleItem flips an item between pending and purchased.
// POST /api/v1/items/:id/toggle
func (h *ItemHandler) ToggleItem(c *gin.Context) {
	itemID, ok := h.itemID(c)
	if !ok {
		return
	}

	if err := h.controller.ToggleItemStatus(c.Request.Context(), itemID); err != nil {
		h.HandleDomainError(c, err, dto.ErrCodeWriteFailed)
		return
	}

	h.board(c, http.StatusOK)
}

// UpdateItem applies a partial update to an item.
// PATCH /api/v1/items/:id
func (h *ItemHandler) UpdateItem(c *gin.Context) {
	itemID, ok := h.itemID(c)
	if !ok {
		return
	}

	var req dto.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, err.Error())
		return
	}

	input, err := h.toUpdateInput(itemID, req)
	if err != nil {
		h.HandleDomainError(c, err, dto.ErrCodeInvalidInput)
		return
	}

	if err := h.controller.UpdateItem(c.Request.Context(), input); err != nil {
		h.HandleDomainError(c, err, dto.ErrCodeWriteFailed)
		return
	}

	h.board(c, http.StatusOK)
}

// DeleteItem removes an item. The removal can be undone through POST /undo
// until the next removal overwrites the slot.
// DELETE /api/v1/items/:id
func (h *ItemHandler) DeleteItem(c *gin.Context) {
	itemID, ok := h.itemID(c)
	if !ok {
		return
	}

	if err := h.controller.RemoveItem(c.Request.Context(), itemID); err != nil {
		h.HandleDomainError(c, err, dto.ErrCodeWriteFailed)
		return
	}

	h.board(c, http.StatusOK)
}

// UndoRemove restores the most recently removed item.
// POST /api/v1/undo
func (h *ItemHandler) UndoRemove(c *gin.Context) {
	if err := h.controller.UndoRemove(c.Request.Context()); err != nil {
		h.HandleDomainError(c, err, dto.ErrCodeWriteFailed)
		return
	}

	h.board(c, http.StatusOK)
}

func (h *ItemHandler) itemID(c *gin.Context) (uuid.UUID, bool) {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid item id")
		return uuid.Nil, false
	}
	return itemID, true
}

func (h *ItemHandler) board(c *gin.Context, status int) {
	c.JSON(status, dto.NewSuccessResponse(dto.ToBoardResponse(
		h.controller.State(),
		h.controller.UndoAvailable(),
		h.controller.LastError(),
		h.locale,
	)))
}

func (h *ItemHandler) toUpdateInput(itemID uuid.UUID, req dto.UpdateItemRequest) (appshopping.UpdateItemInput, error) {
	input := appshopping.UpdateItemInput{
		ItemID:          itemID,
		Name:            req.Name,
		UnitPriceMinor:  req.UnitPriceMinor.Patch(),
		TotalPriceMinor: req.TotalPriceMinor.Patch(),
		PriceSource:     appshopping.PriceSource(req.PriceSource),
	}

	if req.Quantity != nil {
		qty, err := valueobject.NewQuantityFromFloat(*req.Quantity)
		if err != nil {
			return appshopping.UpdateItemInput{}, err
		}
		input.Quantity = &qty
	}
	if req.Unit != nil {
		unit, err := valueobject.NewUnit(*req.Unit)
		if err != nil {
			return appshopping.UpdateItemInput{}, err
		}
		input.Unit = &unit
	}
	if req.CategoryID != nil {
		categoryID, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			return appshopping.UpdateItemInput{}, err
		}
		input.CategoryID = &categoryID
	}

	return input, nil
}
