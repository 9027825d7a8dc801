package api

import (
	"errors"
	"net/http"

	"ai-persona-advisors/backend/ai"
	"ai-persona-advisors/backend/internal/models"
	"ai-persona-advisors/backend/internal/service"
	"ai-persona-advisors/backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ChatHandler handles message sending and round synthesis.
type ChatHandler struct {
	service *service.ChatService
	logger  *logger.Logger
}

func NewChatHandler(service *service.ChatService, logger *logger.Logger) *ChatHandler {
	return &ChatHandler{service: service, logger: logger}
}

// SendMessage posts one user turn and returns the messages appended by the
// round: the user message plus each persona's reply, in dispatch order.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	messages, err := h.service.SendMessage(c.Request.Context(), userID, c.Param("id"), req.Content)
	if err != nil {
		h.respondPipelineError(c, err, "Error sending message")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"messages": messages})
}

// Synthesize summarizes the latest round of persona replies into a moderator
// message.
func (h *ChatHandler) Synthesize(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	message, err := h.service.Synthesize(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrNothingToSynthesize) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "There are no persona replies to synthesize yet"})
			return
		}
		h.respondPipelineError(c, err, "Error synthesizing round")
		return
	}

	c.JSON(http.StatusCreated, message)
}

func (h *ChatHandler) respondPipelineError(c *gin.Context, err error, logMsg string) {
	var terminal *ai.TerminalError

	switch {
	case errors.Is(err, service.ErrConversationNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
	case errors.Is(err, service.ErrNotConversationOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not own this conversation"})
	case errors.Is(err, service.ErrPersonaNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Persona not found"})
	case errors.Is(err, ai.ErrNotConfigured):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "AI service is not configured"})
	case errors.As(err, &terminal):
		h.logger.Error(logMsg, "error", err.Error())
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to get a response from the AI service"})
	default:
		h.logger.Error(logMsg, "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
