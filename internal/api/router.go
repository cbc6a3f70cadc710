package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tempmailhq/tempmail-api/internal/api/handler"
	"github.com/tempmailhq/tempmail-api/internal/api/middleware"
	"github.com/tempmailhq/tempmail-api/internal/core/domain"
	"github.com/tempmailhq/tempmail-api/internal/core/service"
	mongodb "github.com/tempmailhq/tempmail-api/internal/infrastructure/db/mongo"
	redisdb "github.com/tempmailhq/tempmail-api/internal/infrastructure/db/redis"
	"github.com/tempmailhq/tempmail-api/internal/infrastructure/queue"
	"github.com/tempmailhq/tempmail-api/internal/infrastructure/relay"
	"github.com/tempmailhq/tempmail-api/internal/pkg/config"
)

// NewRouter builds the Echo instance with all routes registered and returns
// it together with the inbound dispatcher, which the caller must Start.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) (*echo.Echo, *queue.Dispatcher) {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("tempmail"))

	// --- Dependencies ---
	emailRepo := mongodb.NewEmailRepository(db)
	messageRepo := mongodb.NewMessageRepository(db)
	userRepo := mongodb.NewUserRepository(db)
	configStore := redisdb.NewConfigStore(rdb)

	gate := service.NewQuotaService(userRepo, messageRepo, configStore, log)
	relayClient := relay.NewResendClient(configStore, cfg.RelayBaseURL)
	messageService := service.NewMessageService(emailRepo, messageRepo, gate, relayClient, log)
	emailService := service.NewEmailService(emailRepo, messageRepo, userRepo, configStore, log)
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, 24*time.Hour)

	dispatcher := queue.NewDispatcher(cfg.InboundWorkers, messageService, log)

	authHandler := handler.NewAuthHandler(authService)
	emailHandler := handler.NewEmailHandler(emailService)
	messageHandler := handler.NewMessageHandler(messageService, gate)
	inboundHandler := handler.NewInboundHandler(dispatcher)
	adminHandler := handler.NewAdminHandler(configStore, emailService)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	// --- Authenticated API ---
	v1 := e.Group("/v1", middleware.Auth(cfg.JWTSecret))

	v1.POST("/emails", emailHandler.Create)
	v1.DELETE("/emails/:id", emailHandler.Delete)
	v1.GET("/emails/:id/messages", messageHandler.List)
	v1.POST("/emails/:id/send", messageHandler.Send)
	v1.GET("/send-permission", messageHandler.SendPermission)

	// Inbound ingestion is restricted to the SMTP bridge's service account.
	inbound := v1.Group("/inbound", middleware.RBAC(domain.RoleEmperor))
	inbound.POST("", inboundHandler.Receive)
	inbound.POST("/batch", inboundHandler.ReceiveBatch)

	admin := v1.Group("/admin", middleware.RBAC(domain.RoleEmperor))
	admin.GET("/email-service", adminHandler.GetServiceConfig)
	admin.PUT("/email-service", adminHandler.UpdateServiceConfig)
	admin.POST("/cleanup", adminHandler.Cleanup)

	return e, dispatcher
}
