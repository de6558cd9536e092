package container

import (
	"log/slog"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/joshua-takyi/servicehub/internal/config"
	"github.com/joshua-takyi/servicehub/internal/mailer"
	"github.com/joshua-takyi/servicehub/internal/models"
	"github.com/joshua-takyi/servicehub/internal/services"
	"github.com/joshua-takyi/servicehub/internal/storage"
	"github.com/joshua-takyi/servicehub/internal/templates"
)

// Container holds all application dependencies
type Container struct {
	Config   *config.Config
	Logger   *slog.Logger
	Uploader storage.Uploader
	// Redis is nil when rate limiting is disabled.
	Redis *redis.Client
	// Database clients
	MongoDBClient       *mongo.Client
	UserService         *services.UserService
	VerificationService *services.VerificationService
}

// NewContainer creates a new dependency injection container
func NewContainer(
	cfg *config.Config,
	logger *slog.Logger,
	userRepo models.UserRepo,
	mongoDBClient *mongo.Client,
	rdb *redis.Client,
	m mailer.Mailer,
	uploader storage.Uploader,
	tpl *templates.Templates,
) *Container {
	verificationService := services.NewVerificationService(userRepo, m, tpl, cfg.AppName, logger)
	userService := services.NewUserService(userRepo, verificationService, uploader, logger)

	return &Container{
		Config:              cfg,
		Logger:              logger,
		Uploader:            uploader,
		Redis:               rdb,
		MongoDBClient:       mongoDBClient,
		UserService:         userService,
		VerificationService: verificationService,
	}
}
