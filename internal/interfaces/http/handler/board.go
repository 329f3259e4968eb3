package handler

import (
	appshopping "github.com/grocer/backend/internal/application/shopping"
	"github.com/grocer/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// BoardHandler serves the projected board state.
type BoardHandler struct {
	BaseHandler
	controller *appshopping.Controller
	locale     string
}

// NewBoardHandler creates a new BoardHandler
func NewBoardHandler(controller *appshopping.Controller, locale string) *BoardHandler {
	return &BoardHandler{
		controller: controller,
		locale:     locale,
	}
}

// RegisterRoutes registers board routes
func (h *BoardHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/board", h.GetBoard)
	rg.POST("/board/refresh", h.RefreshBoard)
}

// GetBoard returns the current board projection.
// GET /api/v1/board
func (h *BoardHandler) GetBoard(c *gin.Context) {
	h.Success(c, dto.ToBoardResponse(
		h.controller.State(),
		h.controller.UndoAvailable(),
		h.controller.LastError(),
		h.locale,
	))
}

// RefreshBoard rebuilds the projection from the store and returns it.
// POST /api/v1/board/refresh
func (h *BoardHandler) RefreshBoard(c *gin.Context) {
	if err := h.controller.Refresh(c.Request.Context()); err != nil {
		h.ErrorWithCode(c, dto.ErrCodeLoadFailed, err.Error())
		return
	}
	h.GetBoard(c)
}
