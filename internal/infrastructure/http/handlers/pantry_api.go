package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zerowastechef/server/internal/ports/inbound"
)

// PantryAPIHandlers handles ingredient requests
type PantryAPIHandlers struct {
	pantry inbound.PantryService
}

// NewPantryAPIHandlers creates a new pantry API handlers instance
func NewPantryAPIHandlers(pantry inbound.PantryService) *PantryAPIHandlers {
	return &PantryAPIHandlers{pantry: pantry}
}

// ListIngredients handles GET /api/ingredients
func (h *PantryAPIHandlers) ListIngredients(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	ingredients, err := h.pantry.ListIngredients(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, ingredients)
}

// AddIngredient handles POST /api/ingredients
func (h *PantryAPIHandlers) AddIngredient(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var cmd inbound.IngredientCommand
	if !bindJSON(c, &cmd) {
		return
	}
	cmd.UserID = userID

	id, err := h.pantry.AddIngredient(c.Request.Context(), cmd)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, CreatedResponse{ID: id})
}
