package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/chefai/backend/internal/service"
)

type PantryHandler struct {
	pantryService service.IPantryService
}

func NewPantryHandler(pantryService service.IPantryService) *PantryHandler {
	return &PantryHandler{pantryService: pantryService}
}

func (h *PantryHandler) RegisterRoutes(router *gin.RouterGroup) {
	pantry := router.Group("/pantry")
	pantry.POST("", h.AddItem)
	pantry.GET("", h.ListItems)
	pantry.DELETE("/by-name/:name", h.DeleteByName)
	pantry.DELETE("/:id", h.DeleteItem)
}

type PantryItemRequest struct {
	Category  string `json:"category" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Temporary bool   `json:"temporary"`
}

func (h *PantryHandler) AddItem(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req PantryItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	item, err := h.pantryService.Add(c.Request.Context(), userID, service.PantryInput{
		Category:  req.Category,
		Name:      req.Name,
		Temporary: req.Temporary,
	})
	if errors.Is(err, service.ErrDuplicate) {
		badRequest(c, fmt.Sprintf("Item '%s' already exists in your pantry.", req.Name))
		return
	}
	if err != nil {
		abortWithError(c, err, err.Error())
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *PantryHandler) ListItems(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	items, err := h.pantryService.List(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *PantryHandler) DeleteItem(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	itemID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.pantryService.Delete(c.Request.Context(), userID, itemID); err != nil {
		abortWithError(c, err, "Item not found")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PantryHandler) DeleteByName(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.pantryService.DeleteByName(c.Request.Context(), userID, c.Param("name")); err != nil {
		abortWithError(c, err, "Item not found")
		return
	}
	c.Status(http.StatusNoContent)
}
