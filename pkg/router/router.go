package router

import (
	"ai-persona-advisors/backend/internal/api"
	"ai-persona-advisors/backend/internal/ws"
	"ai-persona-advisors/backend/pkg/config"
	"ai-persona-advisors/backend/pkg/di"
	"ai-persona-advisors/backend/pkg/errors"
	"ai-persona-advisors/backend/pkg/logger"
	"ai-persona-advisors/backend/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// Router is the main router for the application
type Router struct {
	Engine    *gin.Engine
	Container *di.Container
	Logger    *logger.Logger
	Config    *config.Config
}

// New creates a new router with the given container
func New(container *di.Container) *Router {
	// Use the container's logger
	logger.SetGlobal(container.Logger)

	cfg := container.Config

	// Configure Gin mode based on environment
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize Gin router
	engine := gin.New()

	// Use the logger middleware first to capture all requests
	engine.Use(logger.Middleware(container.Logger))
	engine.Use(middleware.RequestIDMiddleware())

	// Add custom error handler middleware
	engine.Use(errors.ErrorHandler())

	// Add custom recovery middleware with structured logging instead of default
	engine.Use(errors.RecoveryWithLogger())

	// Apply rate limiting to all routes
	rateLimiter := middleware.NewRateLimiter(container.Logger)
	engine.Use(rateLimiter.Middleware())

	return &Router{
		Engine:    engine,
		Container: container,
		Logger:    container.Logger,
		Config:    cfg,
	}
}

// SetupRoutes registers all application routes
func (r *Router) SetupRoutes() {
	// Add CORS middleware
	r.Engine.Use(corsMiddleware())

	// Create JWT auth middleware
	jwtAuth := middleware.JWTAuthMiddleware(r.Container.JWTService, r.Logger)

	authHandler := api.NewAuthHandler(r.Container.UserService, r.Logger)
	personaHandler := api.NewPersonaHandler(r.Container.PersonaService, r.Logger)
	conversationHandler := api.NewConversationHandler(r.Container.ConversationService, r.Logger)
	chatHandler := api.NewChatHandler(r.Container.ChatService, r.Logger)
	wsHandler := ws.NewHandler(r.Container.Hub, r.Container.ConversationService, r.Logger)

	r.setupHealthRoutes()

	// API version 1 routes
	v1 := r.Engine.Group("/api/v1")

	// Auth routes
	authRoutes := v1.Group("/auth")
	{
		authRoutes.POST("/signup", authHandler.Signup)
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.GET("/me", jwtAuth, authHandler.Me)
	}

	// Protected routes (require authentication)
	protectedRoutes := v1.Group("/")
	protectedRoutes.Use(jwtAuth)
	{
		personaRoutes := protectedRoutes.Group("/personas")
		{
			personaRoutes.POST("", personaHandler.CreatePersona)
			personaRoutes.GET("", personaHandler.ListPersonas)
			personaRoutes.GET("/marketplace", personaHandler.Marketplace)
			personaRoutes.GET("/:id", personaHandler.GetPersona)
			personaRoutes.PUT("/:id", personaHandler.UpdatePersona)
			personaRoutes.DELETE("/:id", personaHandler.DeletePersona)

			personaRoutes.POST("/:id/upvote", personaHandler.Upvote)
			personaRoutes.DELETE("/:id/upvote", personaHandler.RemoveUpvote)
			personaRoutes.GET("/:id/upvote", personaHandler.UpvoteStatus)
		}

		conversationRoutes := protectedRoutes.Group("/conversations")
		{
			conversationRoutes.POST("", conversationHandler.CreateConversation)
			conversationRoutes.GET("", conversationHandler.ListConversations)
			conversationRoutes.GET("/:id", conversationHandler.GetConversation)
			conversationRoutes.PUT("/:id", conversationHandler.RenameConversation)
			conversationRoutes.DELETE("/:id", conversationHandler.DeleteConversation)

			conversationRoutes.GET("/:id/messages", conversationHandler.GetMessages)
			conversationRoutes.POST("/:id/messages", chatHandler.SendMessage)
			conversationRoutes.POST("/:id/synthesize", chatHandler.Synthesize)
		}
	}

	// WebSocket route for live conversation feeds
	r.Engine.GET("/ws/conversations/:id", jwtAuth, wsHandler.Subscribe)
}

// Enhance CORS middleware to explicitly allow WebSocket-specific headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept, Accept-Encoding, X-CSRF-Token, Authorization, Origin, Upgrade, Connection, Cache-Control")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Upgrade, Connection")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
