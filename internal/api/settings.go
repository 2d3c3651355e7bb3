package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/chefai/backend/internal/recommend"
	"github.com/pageza/chefai/backend/internal/service"
)

type SettingsHandler struct {
	settingsService service.ISettingsService
}

func NewSettingsHandler(settingsService service.ISettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

func (h *SettingsHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/settings", h.GetSettings)
	router.PUT("/settings", h.PutSettings)
}

// SettingsRequest replaces all settings; omitted lists are stored empty.
type SettingsRequest struct {
	Allergies      []string              `json:"allergies"`
	Dislikes       []string              `json:"dislikes"`
	Preferences    []string              `json:"preferences"`
	Favorites      []string              `json:"favorites"`
	Recommendation recommend.Preferences `json:"recommendation"`
}

func (h *SettingsHandler) GetSettings(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	settings, err := h.settingsService.Get(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *SettingsHandler) PutSettings(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req SettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	settings, err := h.settingsService.Put(c.Request.Context(), userID, service.SettingsInput{
		Allergies:      req.Allergies,
		Dislikes:       req.Dislikes,
		Preferences:    req.Preferences,
		Favorites:      req.Favorites,
		Recommendation: req.Recommendation,
	})
	if err != nil {
		abortWithError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, settings)
}
