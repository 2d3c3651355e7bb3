package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/chefai/backend/internal/service"
)

type FavoriteHandler struct {
	favoriteService service.IFavoriteService
}

func NewFavoriteHandler(favoriteService service.IFavoriteService) *FavoriteHandler {
	return &FavoriteHandler{favoriteService: favoriteService}
}

func (h *FavoriteHandler) RegisterRoutes(router *gin.RouterGroup) {
	favorites := router.Group("/favorites")
	favorites.POST("", h.AddFavorite)
	favorites.GET("", h.ListFavorites)
	favorites.DELETE("/:id", h.DeleteFavorite)
}

type FavoriteRequest struct {
	Title          string   `json:"title" binding:"required"`
	Image          *string  `json:"image"`
	ReadyInMinutes int      `json:"ready_in_minutes"`
	Servings       int      `json:"servings"`
	Ingredients    []string `json:"ingredients"`
	Instructions   string   `json:"instructions"`
}

func (h *FavoriteHandler) AddFavorite(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req FavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	in := service.FavoriteInput{
		Title:          req.Title,
		ReadyInMinutes: req.ReadyInMinutes,
		Servings:       req.Servings,
		Ingredients:    req.Ingredients,
		Instructions:   req.Instructions,
	}
	if req.Image != nil {
		in.Image = *req.Image
	}
	fav, err := h.favoriteService.Add(c.Request.Context(), userID, in)
	if err != nil {
		abortWithError(c, err, err.Error())
		return
	}
	c.JSON(http.StatusCreated, fav)
}

func (h *FavoriteHandler) ListFavorites(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	favs, err := h.favoriteService.List(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, favs)
}

func (h *FavoriteHandler) DeleteFavorite(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	favID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := h.favoriteService.Delete(c.Request.Context(), userID, favID); err != nil {
		abortWithError(c, err, "Recipe not found")
		return
	}
	c.Status(http.StatusNoContent)
}
