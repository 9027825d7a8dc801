package api

import (
	"net/http"
	"strconv"

	"ai-persona-advisors/backend/internal/models"
	"ai-persona-advisors/backend/internal/service"
	"ai-persona-advisors/backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// PersonaHandler handles persona CRUD, the marketplace and upvoting.
type PersonaHandler struct {
	service *service.PersonaService
	logger  *logger.Logger
}

func NewPersonaHandler(service *service.PersonaService, logger *logger.Logger) *PersonaHandler {
	return &PersonaHandler{service: service, logger: logger}
}

// currentUserID pulls the authenticated user's id out of the request context.
// The auth middleware stores it under "userId".
func currentUserID(c *gin.Context) (uint, bool) {
	raw, exists := c.Get("userId")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return 0, false
	}
	userID, ok := raw.(uint)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID format"})
		return 0, false
	}
	return userID, true
}

func (h *PersonaHandler) CreatePersona(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.CreatePersonaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	persona, err := h.service.CreatePersona(userID, &req)
	if err != nil {
		switch err {
		case service.ErrInvalidCommunicationStyle:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Communication style must be one of: Formal, Casual, Humorous, Motivational, Philosophical, Direct"})
		default:
			h.logger.Error("Error creating persona", "error", err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create persona"})
		}
		return
	}

	c.JSON(http.StatusCreated, persona)
}

func (h *PersonaHandler) GetPersona(c *gin.Context) {
	persona, err := h.service.GetPersona(c.Param("id"))
	if err != nil {
		switch err {
		case service.ErrPersonaNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "Persona not found"})
		default:
			h.logger.Error("Error getting persona", "error", err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve persona"})
		}
		return
	}

	c.JSON(http.StatusOK, persona)
}

// ListPersonas returns the authenticated user's own personas.
func (h *PersonaHandler) ListPersonas(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	personas, err := h.service.ListPersonas(userID)
	if err != nil {
		h.logger.Error("Error listing personas", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list personas"})
		return
	}

	c.JSON(http.StatusOK, personas)
}

// Marketplace lists public personas ordered by upvotes.
func (h *PersonaHandler) Marketplace(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative number"})
			return
		}
		limit = parsed
	}

	personas, err := h.service.GetPublicPersonas(limit)
	if err != nil {
		h.logger.Error("Error listing marketplace personas", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list marketplace personas"})
		return
	}

	c.JSON(http.StatusOK, personas)
}

func (h *PersonaHandler) UpdatePersona(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.UpdatePersonaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	persona, err := h.service.UpdatePersona(userID, c.Param("id"), &req)
	if err != nil {
		switch err {
		case service.ErrPersonaNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "Persona not found"})
		case service.ErrNotPersonaOwner:
			c.JSON(http.StatusForbidden, gin.H{"error": "You do not own this persona"})
		case service.ErrInvalidCommunicationStyle:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Communication style must be one of: Formal, Casual, Humorous, Motivational, Philosophical, Direct"})
		default:
			h.logger.Error("Error updating persona", "error", err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update persona"})
		}
		return
	}

	c.JSON(http.StatusOK, persona)
}

func (h *PersonaHandler) DeletePersona(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.service.DeletePersona(userID, c.Param("id")); err != nil {
		switch err {
		case service.ErrPersonaNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "Persona not found"})
		case service.ErrNotPersonaOwner:
			c.JSON(http.StatusForbidden, gin.H{"error": "You do not own this persona"})
		default:
			h.logger.Error("Error deleting persona", "error", err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete persona"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Persona deleted successfully"})
}

// Upvote records an upvote for the authenticated user. Repeating the call is
// a no-op; the response says whether the vote was new.
func (h *PersonaHandler) Upvote(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	created, err := h.service.UpvotePersona(userID, c.Param("id"))
	if err != nil {
		switch err {
		case service.ErrPersonaNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "Persona not found"})
		default:
			h.logger.Error("Error upvoting persona", "error", err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upvote persona"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"upvoted": true, "changed": created})
}

// RemoveUpvote removes the user's upvote if present.
func (h *PersonaHandler) RemoveUpvote(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	removed, err := h.service.RemoveUpvote(userID, c.Param("id"))
	if err != nil {
		switch err {
		case service.ErrPersonaNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": "Persona not found"})
		default:
			h.logger.Error("Error removing upvote", "error", err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove upvote"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"upvoted": false, "changed": removed})
}

// UpvoteStatus reports whether the user has upvoted the persona.
func (h *PersonaHandler) UpvoteStatus(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	upvoted, err := h.service.HasUpvoted(userID, c.Param("id"))
	if err != nil {
		h.logger.Error("Error checking upvote status", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check upvote status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"upvoted": upvoted})
}
