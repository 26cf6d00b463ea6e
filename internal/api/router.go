package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/nexora-hq/nexora/internal/api/handler"
	customMiddleware "github.com/nexora-hq/nexora/internal/api/middleware"
	"github.com/nexora-hq/nexora/internal/config"
	"github.com/nexora-hq/nexora/internal/llm/gemini"
	"github.com/nexora-hq/nexora/internal/mail"
	"github.com/nexora-hq/nexora/internal/repository/mongo"
	"github.com/nexora-hq/nexora/internal/repository/redis"
	"github.com/nexora-hq/nexora/internal/security"
	"github.com/nexora-hq/nexora/internal/service"
)

// Services bundles the wired service layer. The scheduler shares the same
// instances as the HTTP surface.
type Services struct {
	Auth     *service.AuthService
	Users    *service.UserService
	Tasks    *service.TaskService
	Invoices *service.InvoiceService
	Chat     *service.ChatService
	Emails   *service.EmailService
}

// NewServices wires repositories, the completion provider and the mailer
// into the service layer.
func NewServices(cfg *config.Config, db *mongo.DB) *Services {
	userRepo := mongo.NewUserRepository(db)
	workspaceRepo := mongo.NewWorkspaceRepository(db)
	taskRepo := mongo.NewTaskRepository(db)
	invoiceRepo := mongo.NewInvoiceRepository(db)
	counterRepo := mongo.NewCounterRepository(db)
	emailRepo := mongo.NewEmailAutomationRepository(db)

	tokenManager := security.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	mailer := mail.NewSMTPMailer(cfg.SMTP)

	provider := gemini.NewProvider(cfg.LLM.Gemini)
	if provider.IsConfigured() {
		log.Info().Str("model", cfg.LLM.Gemini.Model).Msg("completion provider configured")
	} else {
		log.Warn().Msg("Gemini API key is empty, AI features degraded")
	}

	return &Services{
		Auth:     service.NewAuthService(userRepo, workspaceRepo, tokenManager, mailer, cfg.Auth.ResetTokenTTL, cfg.Frontend.BaseURL),
		Users:    service.NewUserService(userRepo),
		Tasks:    service.NewTaskService(taskRepo, userRepo, invoiceRepo, provider, mailer),
		Invoices: service.NewInvoiceService(invoiceRepo, taskRepo, userRepo, counterRepo, provider),
		Chat:     service.NewChatService(invoiceRepo, provider),
		Emails:   service.NewEmailService(emailRepo, userRepo, provider, mailer),
	}
}

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, db *mongo.DB, redisClient *redis.Client, svcs *Services) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.RequestTimeout))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.Frontend.BaseURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	tokenManager := security.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	rateLimiter := redis.NewRateLimiter(
		redisClient,
		cfg.Security.RateLimit.RequestsPerMinute,
		cfg.Security.RateLimit.Burst,
	)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(svcs.Auth)
	userHandler := handler.NewUserHandler(svcs.Users)
	taskHandler := handler.NewTaskHandler(svcs.Tasks)
	invoiceHandler := handler.NewInvoiceHandler(svcs.Invoices)
	chatHandler := handler.NewChatHandler(svcs.Chat)
	emailHandler := handler.NewEmailHandler(svcs.Emails)

	authMiddleware := customMiddleware.NewAuthMiddleware(tokenManager)
	rateLimitMiddleware := customMiddleware.NewRateLimitMiddleware(rateLimiter)

	r.Route("/api/v1", func(r chi.Router) {
		// Health check
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(db))

		// Auth routes (public)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", authHandler.Signup)
			r.Post("/login", authHandler.Login)
			r.Post("/forgot-password", authHandler.ForgotPassword)
			r.Post("/reset-password/{token}", authHandler.ResetPassword)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Use(rateLimitMiddleware.Limit)

			r.Route("/users", func(r chi.Router) {
				r.Get("/me", userHandler.Me)
				r.Get("/employees", userHandler.ListEmployees)
				r.Get("/members", userHandler.ListMembers)
				r.Post("/members", userHandler.CreateMember)
				r.Post("/members/{memberID}/reset-password", userHandler.ResetMemberPassword)
				r.Post("/me/email-notifications/toggle", userHandler.ToggleEmailNotifications)
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", taskHandler.List)
				r.Post("/", taskHandler.Create)
				r.Get("/stats", taskHandler.Stats)
				r.Post("/analyze", taskHandler.Analyze)

				r.Route("/{taskID}", func(r chi.Router) {
					r.Get("/", taskHandler.Get)
					r.Patch("/", taskHandler.Update)
					r.Delete("/", taskHandler.Delete)
					r.Post("/close", taskHandler.Close)
					r.Post("/remind", taskHandler.SendReminder)
				})
			})

			r.Route("/invoices", func(r chi.Router) {
				r.Get("/", invoiceHandler.List)
				r.Post("/", invoiceHandler.Create)
				r.Post("/extract", invoiceHandler.Extract)

				r.Route("/{invoiceID}", func(r chi.Router) {
					r.Get("/", invoiceHandler.Get)
					r.Patch("/", invoiceHandler.Update)
					r.Delete("/", invoiceHandler.Delete)
					r.Patch("/status", invoiceHandler.UpdateStatus)
				})
			})

			r.Post("/chat", chatHandler.Ask)

			r.Route("/email-automations", func(r chi.Router) {
				r.Get("/", emailHandler.List)
				r.Post("/", emailHandler.Create)
			})
		})
	})

	return r
}
