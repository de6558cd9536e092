package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/joshua-takyi/servicehub/internal/container"
	"github.com/joshua-takyi/servicehub/internal/handlers"
	"github.com/joshua-takyi/servicehub/internal/middleware"
	"github.com/joshua-takyi/servicehub/internal/storage"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(container *container.Container) *gin.Engine {
	cfg := container.Config
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.MaxMultipartMemory = cfg.UploadMaxBytes

	// ClientIP feeds the rate limiter, so forwarded headers only count
	// when they come from a configured proxy.
	var proxies []string
	if len(cfg.TrustedProxies) > 0 {
		proxies = cfg.TrustedProxies
	}
	if err := r.SetTrustedProxies(proxies); err != nil {
		container.Logger.Error("Invalid trusted proxies, forwarded headers ignored", "error", err)
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: true,
	}))

	// Add middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(container.Logger))
	r.Use(middleware.ErrorHandler(container.Logger))
	r.Use(middleware.SecureHeaders(cfg.IsDevelopment()))
	r.Use(gin.Recovery())

	limit := middleware.RateLimit(container.Redis, cfg.RateLimitMax, cfg.RateLimitWindow, middleware.KeyByIPAndPath(), container.Logger)

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "OK",
			"service": cfg.AppName,
		})
	})

	// public routes
	r.POST("/login", limit, handlers.AuthenticateUser(container.UserService))
	r.GET("/confirm", handlers.ConfirmEmail(container.VerificationService))
	r.POST("/confirm/resend", limit, handlers.ResendConfirmation(container.VerificationService, cfg.PublicBaseURL))
	r.GET("/verify-success", handlers.VerifySuccess())

	userRoutes := r.Group("/users")
	{
		userRoutes.POST("", limit, handlers.CreateUser(container.UserService, cfg.PublicBaseURL))
		userRoutes.GET("", handlers.ListUsers(container.UserService))
		userRoutes.GET("/:id", handlers.GetUser(container.UserService))
		userRoutes.PUT("/:id", handlers.UpdateUser(container.UserService))
		userRoutes.PATCH("/:id", handlers.UpdateUser(container.UserService))
		userRoutes.DELETE("/:id", handlers.DeleteUser(container.UserService))
	}

	if disk, ok := container.Uploader.(*storage.DiskUploader); ok {
		r.Static(storage.PublicPath, disk.Dir())
	}

	return r
}
