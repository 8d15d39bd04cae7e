package api

import (
	"net/http"

	"github.com/DevAthul-88/Sonnet-AI/internal/ai/gemini"
	"github.com/DevAthul-88/Sonnet-AI/internal/api/handler"
	customMiddleware "github.com/DevAthul-88/Sonnet-AI/internal/api/middleware"
	"github.com/DevAthul-88/Sonnet-AI/internal/config"
	"github.com/DevAthul-88/Sonnet-AI/internal/repository/postgres"
	"github.com/DevAthul-88/Sonnet-AI/internal/repository/redis"
	"github.com/DevAthul-88/Sonnet-AI/internal/security"
	"github.com/DevAthul-88/Sonnet-AI/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
)

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, db *postgres.DB, redisClient *redis.Client) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	jwtManager := security.NewJWTManager(
		cfg.Auth.JWTSecret,
		cfg.Auth.AccessTokenTTL,
		cfg.Auth.RefreshTokenTTL,
	)

	// Repositories
	userRepo := postgres.NewUserRepository(db.Pool)
	chatRepo := postgres.NewChatRepository(db.Pool)
	messageRepo := postgres.NewMessageRepository(db.Pool)

	// Rate limiter
	rateLimiter := redis.NewRateLimiter(
		redisClient,
		cfg.RateLimit.RequestsPerMinute,
		cfg.RateLimit.Burst,
	)

	// Completion gateway
	gateway := gemini.NewProvider(cfg.AI)
	if !gateway.IsConfigured() {
		log.Warn().Msg("Gemini API key is empty, completion calls will fail")
	}

	// Services
	authService := service.NewAuthService(userRepo, jwtManager)
	chatService := service.NewChatService(chatRepo, messageRepo, gateway, cfg.Chat)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	chatHandler := handler.NewChatHandler(chatService)
	shareHandler := handler.NewShareHandler(chatService)

	authMiddleware := customMiddleware.NewAuthMiddleware(jwtManager)
	rateLimitMiddleware := customMiddleware.NewRateLimitMiddleware(rateLimiter)

	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(db))

		// Auth routes (public)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
		})

		// Public share link (no auth)
		r.Get("/share/{chatID}/messages", shareHandler.GetTranscript)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Use(rateLimitMiddleware.Limit)

			// Session bootstrap: first message, no chat yet
			r.Post("/sendMessage", chatHandler.Start)

			// Turn within an existing chat
			r.Post("/messages/{chatID}/message", chatHandler.PostTurn)

			// Dashboard lists
			r.Get("/archived", chatHandler.ListArchived)

			r.Route("/chats", func(r chi.Router) {
				r.Get("/recent-messages", chatHandler.ListRecent)

				r.Route("/{chatID}", func(r chi.Router) {
					r.Get("/messages", chatHandler.GetTranscript)
					r.Post("/rename", chatHandler.Rename)
					r.Put("/privacy", chatHandler.SetPrivacy)
					r.Post("/archive", chatHandler.Archive)
					r.Post("/restore", chatHandler.Restore)
					r.Delete("/delete", chatHandler.Delete)
				})
			})
		})
	})

	return r
}
