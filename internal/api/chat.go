package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/chefai/backend/internal/chat"
	"github.com/pageza/chefai/backend/internal/logging"
	"github.com/pageza/chefai/backend/internal/middleware"
)

// ChatService answers chat messages and cooking requests. *chat.Service implements it.
type ChatService interface {
	Handle(ctx context.Context, userID uuid.UUID, req chat.Request) (*chat.Response, error)
	Cook(ctx context.Context, req chat.CookRequest) (*chat.CookResponse, error)
}

type ChatHandler struct {
	chatService ChatService
	limit       gin.HandlerFunc
}

// NewChatHandler creates a ChatHandler. limit, when not nil, guards the chat endpoint.
func NewChatHandler(chatService ChatService, limit gin.HandlerFunc) *ChatHandler {
	return &ChatHandler{chatService: chatService, limit: limit}
}

func (h *ChatHandler) RegisterRoutes(router *gin.RouterGroup) {
	handlers := []gin.HandlerFunc{h.Chat}
	if h.limit != nil {
		handlers = append([]gin.HandlerFunc{h.limit}, handlers...)
	}
	router.POST("/chat", handlers...)
	router.POST("/cook/rag", h.Cook)
}

func (h *ChatHandler) Chat(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req chat.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	resp, err := h.chatService.Handle(c.Request.Context(), userID, req)
	if err != nil {
		h.abortChat(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ChatHandler) Cook(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}
	var req chat.CookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	resp, err := h.chatService.Cook(c.Request.Context(), req)
	if err != nil {
		h.abortChat(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ChatHandler) abortChat(c *gin.Context, err error) {
	var status int
	var message string
	switch {
	case errors.Is(err, chat.ErrInvalidMode):
		status, message = http.StatusBadRequest, "Invalid mode"
	case errors.Is(err, chat.ErrEmptyQuery):
		status, message = http.StatusBadRequest, "Query must not be empty"
	case errors.Is(err, chat.ErrRAGUnavailable):
		status, message = http.StatusServiceUnavailable, "RAG service unavailable"
	case errors.Is(err, chat.ErrUpstream):
		status, message = http.StatusBadGateway, "Couldn't fetch recipes right now."
	case errors.Is(err, chat.ErrGeneration):
		status, message = http.StatusInternalServerError, "Failed to generate recipe"
	default:
		status, message = http.StatusInternalServerError, "Internal Server Error"
	}
	if status >= http.StatusInternalServerError {
		logging.Ctx(c.Request.Context()).Error().Err(err).Str("path", c.FullPath()).Msg("chat request failed")
	}
	c.AbortWithStatusJSON(status, middleware.ErrorResponse{Error: message})
}
