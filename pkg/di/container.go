package di

import (
	"context"
	"time"

	"ai-persona-advisors/backend/ai"
	"ai-persona-advisors/backend/internal/repository"
	"ai-persona-advisors/backend/internal/service"
	"ai-persona-advisors/backend/internal/ws"
	"ai-persona-advisors/backend/pkg/cache"
	"ai-persona-advisors/backend/pkg/config"
	"ai-persona-advisors/backend/pkg/jwt"
	"ai-persona-advisors/backend/pkg/logger"
	"ai-persona-advisors/backend/pkg/retry"
	"ai-persona-advisors/backend/pkg/secrets"
	"ai-persona-advisors/backend/shared/redis"

	"gorm.io/gorm"
)

// Container holds all the dependencies for the application
type Container struct {
	DB     *gorm.DB
	Logger *logger.Logger
	Config *config.Config

	JWTService   *jwt.Service
	Redis        *redis.RedisClient
	PersonaCache *cache.Cache
	Hub          *ws.Hub

	PersonaRepository      repository.PersonaRepository
	ConversationRepository repository.ConversationRepository
	MessageRepository      repository.MessageRepository

	UserService         *service.UserService
	PersonaService      *service.PersonaService
	ConversationService *service.ConversationService
	ChatService         *service.ChatService
}

// New creates a new dependency injection container
func New(db *gorm.DB, cfg *config.Config, log *logger.Logger) (*Container, error) {
	if cfg == nil {
		cfg = config.Get()
	}

	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.ExpiryHours)

	// Secrets manager resolves the Gemini key from Vault when configured,
	// falling back to the environment otherwise.
	if err := secrets.Init(log); err != nil {
		log.Warn("Secrets manager unavailable, using environment only", "error", err.Error())
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	apiKey := secrets.GetSecretWithDefault(ctx, "gemini-api-key", cfg.Gemini.APIKey)

	// Marketplace cache; a dead Redis degrades listings to the database.
	var market *redis.RedisClient
	if cfg.Cache.Enabled {
		market = redis.NewRedisClient()
		if err := market.Ping(); err != nil {
			log.Warn("Redis unavailable, marketplace caching disabled", "error", err.Error())
			market = nil
		}
	}

	var personaCache *cache.Cache
	if cfg.Cache.Enabled {
		personaCache = cache.NewCache()
	}

	// Storage layer
	personaRepo := repository.NewGormPersonaRepository(db)
	conversationRepo := repository.NewGormConversationRepository(db)
	messageRepo := repository.NewGormMessageRepository(db)

	// Generation pipeline
	client := ai.NewClient(ai.ClientConfig{
		APIKey:          apiKey,
		Model:           cfg.Gemini.Model,
		BaseURL:         cfg.Gemini.BaseURL,
		Timeout:         cfg.Gemini.Timeout,
		Temperature:     cfg.Gemini.Temperature,
		MaxOutputTokens: cfg.Gemini.MaxOutputTokens,
		TopP:            cfg.Gemini.TopP,
		TopK:            cfg.Gemini.TopK,
		Policy: retry.Policy{
			MaxAttempts: cfg.Gemini.MaxRetries,
			BaseDelay:   cfg.Gemini.RetryBaseDelay,
			MaxDelay:    30 * time.Second,
			Factor:      2,
		},
	}, log)

	responder := ai.NewResponder(client, cfg.Gemini.ContextWindow)
	orchestrator := ai.NewOrchestrator(responder, log)
	synthesizer := ai.NewSynthesizer(client)

	hub := ws.NewHub(log)

	// Services
	userService := service.NewUserService(db)

	// A typed nil would make the interface non-nil inside the service.
	var marketCache service.MarketplaceCache
	if market != nil {
		marketCache = market
	}
	personaService := service.NewPersonaService(personaRepo, marketCache, personaCache, log)
	conversationService := service.NewConversationService(conversationRepo, messageRepo, personaRepo)
	chatService := service.NewChatService(
		conversationService,
		personaRepo,
		messageRepo,
		responder,
		orchestrator,
		synthesizer,
		personaCache,
		hub,
		log,
	)

	return &Container{
		DB:                     db,
		Logger:                 log,
		Config:                 cfg,
		JWTService:             jwtService,
		Redis:                  market,
		PersonaCache:           personaCache,
		Hub:                    hub,
		PersonaRepository:      personaRepo,
		ConversationRepository: conversationRepo,
		MessageRepository:      messageRepo,
		UserService:            userService,
		PersonaService:         personaService,
		ConversationService:    conversationService,
		ChatService:            chatService,
	}, nil
}
