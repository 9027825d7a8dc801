package api

import (
	"net/http"

	"ai-persona-advisors/backend/internal/models"
	"ai-persona-advisors/backend/internal/service"
	"ai-persona-advisors/backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ConversationHandler handles conversation thread management.
type ConversationHandler struct {
	service *service.ConversationService
	logger  *logger.Logger
}

func NewConversationHandler(service *service.ConversationService, logger *logger.Logger) *ConversationHandler {
	return &ConversationHandler{service: service, logger: logger}
}

func (h *ConversationHandler) CreateConversation(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conversation, err := h.service.CreateConversation(userID, req.PersonaIDs)
	if err != nil {
		switch err {
		case service.ErrInvalidPersonaCount:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Conversations require between 1 and 4 personas"})
		case service.ErrUnknownPersonaInList:
			c.JSON(http.StatusBadRequest, gin.H{"error": "One or more personas do not exist"})
		default:
			h.logger.Error("Error creating conversation", "error", err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create conversation"})
		}
		return
	}

	c.JSON(http.StatusCreated, conversation)
}

func (h *ConversationHandler) GetConversation(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	conversation, err := h.service.GetConversation(userID, c.Param("id"))
	if err != nil {
		h.respondConversationError(c, err, "Error getting conversation")
		return
	}

	c.JSON(http.StatusOK, conversation)
}

func (h *ConversationHandler) ListConversations(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	conversations, err := h.service.ListConversations(userID)
	if err != nil {
		h.logger.Error("Error listing conversations", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list conversations"})
		return
	}

	c.JSON(http.StatusOK, conversations)
}

func (h *ConversationHandler) RenameConversation(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.UpdateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.RenameConversation(userID, c.Param("id"), req.Title); err != nil {
		h.respondConversationError(c, err, "Error renaming conversation")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Conversation updated successfully"})
}

func (h *ConversationHandler) DeleteConversation(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteConversation(userID, c.Param("id")); err != nil {
		h.respondConversationError(c, err, "Error deleting conversation")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Conversation deleted successfully"})
}

// GetMessages returns the conversation's full message log in order.
func (h *ConversationHandler) GetMessages(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	messages, err := h.service.GetMessages(userID, c.Param("id"))
	if err != nil {
		h.respondConversationError(c, err, "Error getting messages")
		return
	}

	c.JSON(http.StatusOK, messages)
}

func (h *ConversationHandler) respondConversationError(c *gin.Context, err error, logMsg string) {
	switch err {
	case service.ErrConversationNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "Conversation not found"})
	case service.ErrNotConversationOwner:
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not own this conversation"})
	default:
		h.logger.Error(logMsg, "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
