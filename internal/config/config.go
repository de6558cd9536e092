package config

import (
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	UploadDriverDisk       = "disk"
	UploadDriverCloudinary = "cloudinary"

	MailDriverSMTP    = "smtp"
	MailDriverMailgun = "mailgun"
	MailDriverLog     = "log"
)

type Config struct {
	AppName     string `envconfig:"APP_NAME" default:"ServiceHub"`
	Port        string `envconfig:"PORT" default:"8080"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	MongoDBURI      string `envconfig:"MONGODB_URI"`
	MongoDBPassword string `envconfig:"MONGODB_PASSWORD"`
	MongoDBDatabase string `envconfig:"MONGODB_DATABASE" default:"servicehub"`

	// PublicBaseURL overrides the scheme://host taken from each request
	// when building confirmation and upload links.
	PublicBaseURL string   `envconfig:"PUBLIC_BASE_URL"`
	CORSOrigins   []string `envconfig:"CORS_ORIGINS" default:"http://localhost:3000"`

	// TrustedProxies lists the IPs or CIDRs whose X-Forwarded-For is
	// believed. Empty means the socket address is the client address.
	TrustedProxies []string `envconfig:"TRUSTED_PROXIES"`

	UploadDriver        string `envconfig:"UPLOAD_DRIVER" default:"disk"`
	UploadDir           string `envconfig:"UPLOAD_DIR" default:"./public/uploads"`
	UploadMaxBytes      int64  `envconfig:"UPLOAD_MAX_BYTES" default:"5242880"`
	CloudinaryCloudName string `envconfig:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `envconfig:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `envconfig:"CLOUDINARY_API_SECRET"`
	CloudinaryFolder    string `envconfig:"CLOUDINARY_FOLDER" default:"avatars"`

	MailDriver    string        `envconfig:"MAIL_DRIVER" default:"smtp"`
	MailFrom      string        `envconfig:"MAIL_FROM" default:"ServiceHub <no-reply@servicehub.local>"`
	MailTimeout   time.Duration `envconfig:"MAIL_TIMEOUT" default:"10s"`
	SMTPHost      string        `envconfig:"SMTP_HOST"`
	SMTPPort      string        `envconfig:"SMTP_PORT" default:"587"`
	SMTPUsername  string        `envconfig:"SMTP_USERNAME"`
	SMTPPassword  string        `envconfig:"SMTP_PASSWORD"`
	MailgunDomain string        `envconfig:"MAILGUN_DOMAIN"`
	MailgunAPIKey string        `envconfig:"MAILGUN_API_KEY"`

	// Rate limiting is disabled when RedisAddr is empty.
	RedisAddr       string        `envconfig:"REDIS_ADDR"`
	RedisPassword   string        `envconfig:"REDIS_PASSWORD"`
	RedisDB         int           `envconfig:"REDIS_DB" default:"0"`
	RateLimitMax    int           `envconfig:"RATE_LIMIT_MAX" default:"20"`
	RateLimitWindow time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
}

func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")
	cfg.CORSOrigins = compact(cfg.CORSOrigins)
	cfg.TrustedProxies = compact(cfg.TrustedProxies)
	cfg.UploadDriver = strings.ToLower(cfg.UploadDriver)
	cfg.MailDriver = strings.ToLower(cfg.MailDriver)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that every selected backend has what it needs.
func (c *Config) Validate() error {
	if c.MongoDBURI == "" {
		return fmt.Errorf("MONGODB_URI is required")
	}
	if strings.Contains(c.MongoDBURI, "<password>") && c.MongoDBPassword == "" {
		return fmt.Errorf("MONGODB_PASSWORD is required")
	}

	if c.IsProduction() && c.PublicBaseURL == "" {
		return fmt.Errorf("PUBLIC_BASE_URL is required in production")
	}
	if len(c.CORSOrigins) == 0 {
		return fmt.Errorf("CORS_ORIGINS must list at least one origin")
	}
	for _, proxy := range c.TrustedProxies {
		if net.ParseIP(proxy) == nil {
			if _, _, err := net.ParseCIDR(proxy); err != nil {
				return fmt.Errorf("invalid TRUSTED_PROXIES entry %q", proxy)
			}
		}
	}

	switch c.UploadDriver {
	case UploadDriverDisk:
		if c.UploadDir == "" {
			return fmt.Errorf("UPLOAD_DIR is required")
		}
	case UploadDriverCloudinary:
		if c.CloudinaryCloudName == "" || c.CloudinaryAPIKey == "" || c.CloudinaryAPISecret == "" {
			return fmt.Errorf("CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET are required")
		}
	default:
		return fmt.Errorf("unknown UPLOAD_DRIVER %q", c.UploadDriver)
	}

	switch c.MailDriver {
	case MailDriverSMTP:
		if c.SMTPHost == "" {
			return fmt.Errorf("SMTP_HOST is required")
		}
	case MailDriverMailgun:
		if c.MailgunDomain == "" || c.MailgunAPIKey == "" {
			return fmt.Errorf("MAILGUN_DOMAIN and MAILGUN_API_KEY are required")
		}
	case MailDriverLog:
	default:
		return fmt.Errorf("unknown MAIL_DRIVER %q", c.MailDriver)
	}

	if c.RedisAddr != "" && (c.RateLimitMax <= 0 || c.RateLimitWindow <= 0) {
		return fmt.Errorf("RATE_LIMIT_MAX and RATE_LIMIT_WINDOW must be positive")
	}
	return nil
}

// compact trims list entries and drops empty ones.
func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// SlogLevel parses LOG_LEVEL, falling back to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
